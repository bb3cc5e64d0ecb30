package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/petri/docking"
)

func simulateBody(line string, cells int, duration, dt float64, seed int64) simulateRequest {
	return simulateRequest{
		CellLineName: line,
		ExperimentParams: experimentParams{
			InitialCells: &cells,
			Duration:     duration,
			TimeInterval: dt,
		},
		Seed: seed,
	}
}

func TestSimulate(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/cells/simulate", simulateBody("HeLa", 30, 5, 0.5, 42))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp simulateResponse
	decodeJSON(t, w, &resp)
	require.True(t, resp.Success)
	require.Len(t, resp.Data, 10)
	assert.Empty(t, resp.RunID)

	assert.InDelta(t, 0.5, resp.Data[0].Time, 1e-9)
	assert.InDelta(t, 5.0, resp.Data[9].Time, 1e-9)

	// Five hours is a fraction of the HeLa cycle and health cannot fall
	// far enough to kill, so the population holds steady and viable.
	for _, snap := range resp.Data {
		assert.Equal(t, 30, snap.Total)
		assert.Equal(t, 30, snap.Viable)
		assert.Equal(t, 100.0, snap.Viability)
	}
}

func TestSimulateDefaultCellCount(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/cells/simulate", map[string]any{
		"cellLineName": "HEK293",
		"experimentParams": map[string]any{
			"duration":     2,
			"timeInterval": 1,
		},
		"seed": 7,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp simulateResponse
	decodeJSON(t, w, &resp)
	require.NotEmpty(t, resp.Data)
	assert.Equal(t, defaultInitialCells, resp.Data[0].Total)
}

func TestSimulateZeroCells(t *testing.T) {
	s := newTestServer(t)

	// An explicit zero is not the same as leaving the field out: it
	// seeds an empty dish, which runs to completion with zero-filled
	// snapshots.
	w := doJSON(t, s, http.MethodPost, "/api/cells/simulate", simulateBody("HEK293", 0, 2, 1, 7))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp simulateResponse
	decodeJSON(t, w, &resp)
	require.True(t, resp.Success)
	require.Len(t, resp.Data, 2)
	for _, snap := range resp.Data {
		assert.Equal(t, 0, snap.Total)
		assert.Equal(t, 0, snap.Viable)
		assert.Equal(t, 0.0, snap.Viability)
	}
}

func TestSimulateUnknownLine(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/cells/simulate", simulateBody("NIH3T3", 10, 2, 1, 1))
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "PROFILE_NOT_FOUND", resp.Code)
}

func TestSimulateInvalidBody(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/cells/simulate", map[string]any{"cellLineName": "HeLa"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "INVALID_REQUEST", resp.Code)
}

func TestSimulateInvalidConfig(t *testing.T) {
	s := newTestServer(t)

	// dt longer than the run itself.
	w := doJSON(t, s, http.MethodPost, "/api/cells/simulate", simulateBody("HeLa", 10, 1, 2, 1))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "INVALID_CONFIG", resp.Code)
}

func TestSimulateRunTooLarge(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/cells/simulate", simulateBody("HeLa", 100000, 2, 1, 1))
	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "RUN_TOO_LARGE", resp.Code)

	w = doJSON(t, s, http.MethodPost, "/api/cells/simulate", simulateBody("HeLa", 10, 30000, 0.1, 1))
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp = ErrorResponse{}
	decodeJSON(t, w, &resp)
	assert.Equal(t, "RUN_TOO_LARGE", resp.Code)
}

func TestSimulatePersistsRun(t *testing.T) {
	s := newTestServerWithStore(t)

	w := doJSON(t, s, http.MethodPost, "/api/cells/simulate", simulateBody("HeLa", 20, 3, 0.5, 99))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp simulateResponse
	decodeJSON(t, w, &resp)
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.RunID)

	w = doJSON(t, s, http.MethodGet, "/api/runs/"+resp.RunID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got runResponse
	decodeJSON(t, w, &got)
	assert.Equal(t, resp.RunID, got.Data.ID)
	assert.Equal(t, "HeLa", got.Data.CellLine)
	assert.Equal(t, 20, got.Data.InitialCells)
	assert.Equal(t, int64(99), got.Data.Seed)
	assert.Equal(t, len(resp.Data), got.Data.Snapshots)
	assert.Equal(t, resp.Data, got.Data.Series)
}

func TestListRuns(t *testing.T) {
	s := newTestServerWithStore(t)

	doJSON(t, s, http.MethodPost, "/api/cells/simulate", simulateBody("HeLa", 10, 2, 1, 1))
	doJSON(t, s, http.MethodPost, "/api/cells/simulate", simulateBody("A549", 10, 2, 1, 2))

	w := doJSON(t, s, http.MethodGet, "/api/runs", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp runListResponse
	decodeJSON(t, w, &resp)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "A549", resp.Data[0].CellLine)
	assert.Equal(t, "HeLa", resp.Data[1].CellLine)
	assert.Nil(t, resp.Data[0].Series)

	w = doJSON(t, s, http.MethodGet, "/api/runs?line=HeLa", nil)
	resp = runListResponse{}
	decodeJSON(t, w, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "HeLa", resp.Data[0].CellLine)

	w = doJSON(t, s, http.MethodGet, "/api/runs?limit=1", nil)
	resp = runListResponse{}
	decodeJSON(t, w, &resp)
	assert.Equal(t, 1, resp.Count)

	w = doJSON(t, s, http.MethodGet, "/api/runs?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunNotFound(t *testing.T) {
	s := newTestServerWithStore(t)

	w := doJSON(t, s, http.MethodGet, "/api/runs/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "RUN_NOT_FOUND", resp.Code)
}

func TestRunsDisabledWithoutStore(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/runs", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp ErrorResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "HISTORY_DISABLED", resp.Code)

	w = doJSON(t, s, http.MethodGet, "/api/runs/some-id", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDockingCatalogs(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/docking/proteins", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var proteins map[string]docking.Protein
	decodeJSON(t, w, &proteins)
	require.Len(t, proteins, 4)
	assert.Equal(t, "SARS-CoV-2 Main Protease", proteins["6LU7"].Name)

	w = doJSON(t, s, http.MethodGet, "/api/docking/ligands", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ligands map[string]docking.Ligand
	decodeJSON(t, w, &ligands)
	require.Len(t, ligands, 3)
	assert.Equal(t, 180.16, ligands["aspirin"].MolecularWeight)
}

func TestDockingRun(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/docking/run", dockRequest{
		ProteinID: "1HVH",
		LigandID:  "aspirin",
		NumModes:  5,
		Seed:      7,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dockResponse
	decodeJSON(t, w, &resp)
	require.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	require.Len(t, resp.Data.Modes, 5)

	assert.Equal(t, "1HVH", resp.Data.Protein.PDBID)
	assert.Equal(t, "Aspirin", resp.Data.Ligand.Name)
	assert.Equal(t, 180.16, resp.Data.Ligand.MolecularWeight)
	assert.Equal(t, 450.0, resp.Data.BindingSite.Volume)
	assert.Equal(t, resp.Data.Modes[0].Affinity, resp.Data.BestAffinity)
	for i := 1; i < len(resp.Data.Modes); i++ {
		assert.LessOrEqual(t, resp.Data.Modes[i-1].Affinity, resp.Data.Modes[i].Affinity)
	}
	for _, mode := range resp.Data.Modes {
		assert.NotEmpty(t, mode.Interactions)
	}
}

func TestDockingRunDefaultModes(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/docking/run", dockRequest{
		ProteinID: "5R81",
		LigandID:  "ibuprofen",
		Seed:      3,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp dockResponse
	decodeJSON(t, w, &resp)
	assert.Len(t, resp.Data.Modes, docking.DefaultNumModes)
}

func TestDockingRunUnknownIDs(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/docking/run", dockRequest{ProteinID: "9XYZ", LigandID: "aspirin"})
	require.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "PROTEIN_NOT_FOUND", resp.Code)

	w = doJSON(t, s, http.MethodPost, "/api/docking/run", dockRequest{ProteinID: "1HVH", LigandID: "unobtainium"})
	require.Equal(t, http.StatusNotFound, w.Code)
	resp = ErrorResponse{}
	decodeJSON(t, w, &resp)
	assert.Equal(t, "LIGAND_NOT_FOUND", resp.Code)
}

func TestPredictDrugEfficacy(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/predict/drug-efficacy", predictRequest{
		CellLineName:  "HeLa",
		DrugClass:     "taxol",
		Concentration: 8.5,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp predictResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "HeLa", resp.CellLine)
	assert.Equal(t, "taxol", resp.DrugClass)
	assert.Equal(t, 8.5, resp.IC50)
	assert.Equal(t, 8.5, resp.Concentration)
	// Dosing at the IC50 sits exactly on the curve midpoint.
	assert.Equal(t, 50.0, resp.Efficacy)
	assert.Equal(t, 50.0, resp.Viability)
}

func TestPredictUnknownDrugClassFallsBack(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/predict/drug-efficacy", predictRequest{
		CellLineName:  "A549",
		DrugClass:     "statin",
		Concentration: 10,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp predictResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, 10.0, resp.IC50)
	assert.Equal(t, 50.0, resp.Efficacy)
}

func TestPredictNegativeConcentration(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/predict/drug-efficacy", predictRequest{
		CellLineName:  "HeLa",
		DrugClass:     "taxol",
		Concentration: -1,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "INVALID_CONCENTRATION", resp.Code)
}

func TestPredictUnknownLine(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/predict/drug-efficacy", predictRequest{
		CellLineName:  "BHK-21",
		DrugClass:     "taxol",
		Concentration: 1,
	})
	require.Equal(t, http.StatusNotFound, w.Code)

	var resp ErrorResponse
	decodeJSON(t, w, &resp)
	assert.Equal(t, "PROFILE_NOT_FOUND", resp.Code)
}
