package server

import (
	"errors"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pthm-cable/petri/culture"
	"github.com/pthm-cable/petri/docking"
	"github.com/pthm-cable/petri/history"
	"github.com/pthm-cable/petri/pharm"
)

// defaultInitialCells seeds a simulate request that omits the count.
const defaultInitialCells = 100

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type healthResponse struct {
	Status   string   `json:"status"`
	Version  string   `json:"version"`
	Modules  []string `json:"modules"`
	Features []string `json:"features"`
}

// experimentParams is the classic frontend payload shape, durations in
// hours. InitialCells is a pointer so an explicit 0 (an empty dish)
// stays distinguishable from an omitted field.
type experimentParams struct {
	InitialCells *int    `json:"initialCells"`
	Duration     float64 `json:"duration" binding:"required"`
	TimeInterval float64 `json:"timeInterval" binding:"required"`
}

type simulateRequest struct {
	CellLineName     string           `json:"cellLineName" binding:"required"`
	ExperimentParams experimentParams `json:"experimentParams" binding:"required"`
	Seed             int64            `json:"seed"`
}

type simulateResponse struct {
	Success bool           `json:"success"`
	Data    culture.Series `json:"data"`
	RunID   string         `json:"run_id,omitempty"`
}

type dockRequest struct {
	ProteinID string `json:"proteinId" binding:"required"`
	LigandID  string `json:"ligandId" binding:"required"`
	NumModes  int    `json:"numModes"`
	Seed      int64  `json:"seed"`
}

type dockResponse struct {
	Success bool            `json:"success"`
	Data    *docking.Result `json:"data"`
}

type predictRequest struct {
	CellLineName  string  `json:"cellLineName" binding:"required"`
	DrugClass     string  `json:"drugClass" binding:"required"`
	Concentration float64 `json:"concentration"`
}

type predictResponse struct {
	CellLine  string `json:"cell_line"`
	DrugClass string `json:"drug_class"`
	pharm.Response
}

type runListResponse struct {
	Success bool             `json:"success"`
	Data    []history.Record `json:"data"`
	Count   int              `json:"count"`
}

type runResponse struct {
	Success bool           `json:"success"`
	Data    history.Record `json:"data"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, healthResponse{
		Status:  "healthy",
		Version: Version,
		Modules: []string{"molecular_docking", "cell_dynamics"},
		Features: []string{
			"Molecular docking simulation",
			"Cell culture modeling",
			"Drug-target interactions",
			"PK/PD simulation",
		},
	})
}

func (s *Server) handleCellLines(c *gin.Context) {
	c.JSON(http.StatusOK, s.catalog.All())
}

func (s *Server) handleProteins(c *gin.Context) {
	c.JSON(http.StatusOK, docking.Proteins())
}

func (s *Server) handleLigands(c *gin.Context) {
	c.JSON(http.StatusOK, docking.Ligands())
}

func (s *Server) handleSimulate(c *gin.Context) {
	logger := requestLogger(c, "simulate")

	var req simulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	line, err := s.catalog.Get(req.CellLineName)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "PROFILE_NOT_FOUND"})
		return
	}

	params := req.ExperimentParams
	initialCells := defaultInitialCells
	if params.InitialCells != nil {
		initialCells = *params.InitialCells
	}
	runCfg := culture.RunConfig{
		InitialCells: initialCells,
		Duration:     params.Duration,
		DT:           params.TimeInterval,
		Seed:         req.Seed,
	}
	if err := runCfg.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_CONFIG"})
		return
	}
	if runCfg.InitialCells > s.cfg.Limits.MaxInitialCells {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "initial cell count " + strconv.Itoa(runCfg.InitialCells) +
				" exceeds the limit of " + strconv.Itoa(s.cfg.Limits.MaxInitialCells),
			Code: "RUN_TOO_LARGE",
		})
		return
	}
	if steps := runCfg.Steps(); steps > s.cfg.Limits.MaxSteps {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "run of " + strconv.Itoa(steps) +
				" steps exceeds the limit of " + strconv.Itoa(s.cfg.Limits.MaxSteps),
			Code: "RUN_TOO_LARGE",
		})
		return
	}

	sim, err := culture.New(line, runCfg)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_CONFIG"})
		return
	}

	start := time.Now()
	series := sim.Run()
	elapsed := time.Since(start)
	s.metrics.ObserveSimulation(line.Name, sim.Tick(), elapsed)

	final := series[len(series)-1]
	resp := simulateResponse{Success: true, Data: series}

	if s.store != nil {
		effective := sim.Config()
		rec := history.Record{
			ID:             uuid.NewString(),
			CellLine:       line.Name,
			InitialCells:   effective.InitialCells,
			Duration:       effective.Duration,
			DT:             effective.DT,
			Seed:           effective.Seed,
			StartedAt:      start.UTC(),
			ElapsedMS:      elapsed.Milliseconds(),
			Snapshots:      len(series),
			FinalTotal:     final.Total,
			FinalViable:    final.Viable,
			FinalViability: final.Viability,
			Series:         series,
		}
		if err := s.store.Save(c.Request.Context(), rec); err != nil {
			// The run itself succeeded; report it even if persistence failed.
			logger.Error("failed to persist run", "error", err)
		} else {
			resp.RunID = rec.ID
		}
	}

	logger.Info("simulation complete",
		"cell_line", line.Name,
		"ticks", sim.Tick(),
		"final_total", final.Total,
		"final_viability", final.Viability,
		"elapsed_ms", elapsed.Milliseconds(),
	)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleDock(c *gin.Context) {
	logger := requestLogger(c, "docking_run")

	var req dockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	start := time.Now()
	result, err := docking.Run(req.ProteinID, req.LigandID, req.NumModes, rng)
	if err != nil {
		switch {
		case errors.Is(err, docking.ErrUnknownProtein):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "PROTEIN_NOT_FOUND"})
		case errors.Is(err, docking.ErrUnknownLigand):
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "LIGAND_NOT_FOUND"})
		default:
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "INTERNAL"})
		}
		return
	}
	s.metrics.ObserveDocking(req.ProteinID, req.LigandID)

	logger.Info("docking complete",
		"protein", req.ProteinID,
		"ligand", req.LigandID,
		"modes", len(result.Modes),
		"best_affinity", result.BestAffinity,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	c.JSON(http.StatusOK, dockResponse{Success: true, Data: result})
}

func (s *Server) handlePredict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Code: "INVALID_REQUEST"})
		return
	}

	line, err := s.catalog.Get(req.CellLineName)
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "PROFILE_NOT_FOUND"})
		return
	}

	pred, err := pharm.Predict(line, req.DrugClass, req.Concentration)
	if err != nil {
		if errors.Is(err, pharm.ErrInvalidConcentration) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "INVALID_CONCENTRATION"})
			return
		}
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Code: "INTERNAL"})
		return
	}

	c.JSON(http.StatusOK, predictResponse{
		CellLine:  line.Name,
		DrugClass: req.DrugClass,
		Response:  pred,
	})
}

func (s *Server) handleListRuns(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "run history is disabled", Code: "HISTORY_DISABLED"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a non-negative integer", Code: "INVALID_REQUEST"})
		return
	}

	records, err := s.store.List(c.Request.Context(), c.Query("line"), limit)
	if err != nil {
		requestLogger(c, "list_runs").Error("failed to list runs", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to list runs", Code: "INTERNAL"})
		return
	}
	c.JSON(http.StatusOK, runListResponse{Success: true, Data: records, Count: len(records)})
}

func (s *Server) handleGetRun(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "run history is disabled", Code: "HISTORY_DISABLED"})
		return
	}

	rec, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "RUN_NOT_FOUND"})
			return
		}
		requestLogger(c, "get_run").Error("failed to load run", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to load run", Code: "INTERNAL"})
		return
	}
	c.JSON(http.StatusOK, runResponse{Success: true, Data: rec})
}
