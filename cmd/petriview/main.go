// Interactive dish viewer: steps one culture in real time and draws
// every cell, colored by cycle phase or fate. Click a cell to inspect
// it; the mouse wheel zooms and the right button pans.
//
// Usage: go run ./cmd/petriview
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/petri/camera"
	"github.com/pthm-cable/petri/components"
	"github.com/pthm-cable/petri/culture"
	"github.com/pthm-cable/petri/profile"
)

const (
	windowWidth  = 1060
	windowHeight = 620
	dishWidth    = 800
	panelX       = dishWidth + 15
	panelWidth   = windowWidth - dishWidth - 30
)

var dishBackground = rl.Color{R: 18, G: 24, B: 32, A: 255}

// phaseColor maps a cycle phase to its dish color.
func phaseColor(p components.Phase) rl.Color {
	switch p {
	case components.PhaseG1:
		return rl.Green
	case components.PhaseS:
		return rl.Yellow
	case components.PhaseG2:
		return rl.Orange
	case components.PhaseM:
		return rl.Red
	default:
		return rl.White
	}
}

// cellColor picks the draw color: fate gray for corpses, phase color
// for live cells.
func cellColor(c culture.CellInfo) rl.Color {
	if !c.Alive {
		if c.Necrotic {
			return rl.DarkGray
		}
		return rl.LightGray
	}
	return phaseColor(c.Phase)
}

// pickCell returns the id of the cell under the world point, preferring
// the closest center when circles overlap.
func pickCell(cells []culture.CellInfo, wx, wy float64) (uint32, bool) {
	var bestID uint32
	bestDist := -1.0
	for _, c := range cells {
		dx := c.X - wx
		dy := c.Y - wy
		dist := dx*dx + dy*dy
		reach := c.Radius + 2
		if dist > reach*reach {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			bestDist = dist
			bestID = c.ID
		}
	}
	return bestID, bestDist >= 0
}

func main() {
	// CLI flags
	line := flag.String("line", "HeLa", "Cell line name from the catalog")
	catalogPath := flag.String("catalog", "", "Extra cell line YAML (empty = built-ins only)")
	cells := flag.Int("cells", 150, "Initial cell count")
	dt := flag.Float64("dt", 0.1, "Tick length in hours")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	catalog, err := profile.Load(*catalogPath)
	if err != nil {
		slog.Error("failed to load cell line catalog", "error", err)
		os.Exit(1)
	}
	names := catalog.Names()
	lineIdx := 0
	for i, name := range names {
		if name == *line {
			lineIdx = i
		}
	}

	// The viewer steps manually and never calls Run, so the duration
	// just needs to satisfy validation at any dt.
	newSim := func(simSeed int64) *culture.Simulation {
		cellLine, err := catalog.Get(names[lineIdx])
		if err != nil {
			slog.Error("unknown cell line", "error", err)
			os.Exit(1)
		}
		sim, err := culture.New(cellLine, culture.RunConfig{
			InitialCells: *cells,
			Duration:     *dt * 1e6,
			DT:           *dt,
			Seed:         simSeed,
		})
		if err != nil {
			slog.Error("failed to start culture", "error", err)
			os.Exit(1)
		}
		return sim
	}
	sim := newSim(*seed)

	rl.InitWindow(windowWidth, windowHeight, "Petri Dish Viewer")
	defer rl.CloseWindow()
	rl.SetTargetFPS(60)

	cam := camera.New(dishWidth, windowHeight, dishWidth, windowHeight)

	paused := false
	speed := float32(1) // ticks per frame
	var selectedID uint32
	haveSelection := false

	for !rl.WindowShouldClose() {
		// Keyboard shortcuts
		if rl.IsKeyPressed(rl.KeySpace) {
			paused = !paused
		}
		if rl.IsKeyPressed(rl.KeyR) {
			sim = newSim(time.Now().UnixNano())
			haveSelection = false
		}
		if rl.IsKeyPressed(rl.KeyHome) {
			cam.Reset()
		}

		if !paused {
			for i := 0; i < int(speed); i++ {
				sim.Step()
			}
		}

		dishCells := sim.Cells()
		snap := sim.Sample()
		stats := sim.Stats()

		// Arrow key panning, in screen pixels per frame
		panSpeed := float32(8.0)
		if rl.IsKeyDown(rl.KeyRight) {
			cam.Pan(panSpeed, 0)
		}
		if rl.IsKeyDown(rl.KeyLeft) {
			cam.Pan(-panSpeed, 0)
		}
		if rl.IsKeyDown(rl.KeyDown) {
			cam.Pan(0, panSpeed)
		}
		if rl.IsKeyDown(rl.KeyUp) {
			cam.Pan(0, -panSpeed)
		}

		// Mouse input over the dish
		mouse := rl.GetMousePosition()
		if mouse.X < dishWidth {
			if wheel := rl.GetMouseWheelMove(); wheel != 0 {
				cam.ZoomAt(mouse.X, mouse.Y, 1+wheel*0.1)
			}
			if rl.IsMouseButtonDown(rl.MouseButtonRight) {
				delta := rl.GetMouseDelta()
				cam.Pan(-delta.X, -delta.Y)
			}
			if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
				wx, wy := cam.ScreenToWorld(mouse.X, mouse.Y)
				selectedID, haveSelection = pickCell(dishCells, float64(wx), float64(wy))
			}
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Dish
		rl.DrawRectangle(0, 0, dishWidth, windowHeight, dishBackground)
		x0, y0 := cam.WorldToScreen(culture.DishMinX, culture.DishMinY)
		x1, y1 := cam.WorldToScreen(culture.DishMaxX, culture.DishMaxY)
		rl.DrawRectangleLines(int32(x0), int32(y0), int32(x1-x0), int32(y1-y0), rl.Gray)

		var selected culture.CellInfo
		selectionAlive := false
		for _, cell := range dishCells {
			if haveSelection && cell.ID == selectedID {
				selected = cell
				selectionAlive = true
			}
			if !cam.IsVisible(float32(cell.X), float32(cell.Y), float32(cell.Radius)) {
				continue
			}
			sx, sy := cam.WorldToScreen(float32(cell.X), float32(cell.Y))
			rl.DrawCircle(int32(sx), int32(sy), float32(cell.Radius)*cam.Zoom, cellColor(cell))
			if haveSelection && cell.ID == selectedID {
				rl.DrawCircleLines(int32(sx), int32(sy), float32(cell.Radius)*cam.Zoom+3, rl.SkyBlue)
			}
		}
		// A cleared corpse takes its selection with it.
		if haveSelection && !selectionAlive {
			haveSelection = false
		}

		// Stats panel
		panelY := float32(10)
		rl.DrawText(sim.Line().Name, int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 24
		rl.DrawText(string(sim.Line().Category)+" / "+sim.Line().Origin, int32(panelX), int32(panelY), 12, rl.Gray)
		panelY += 28

		statLines := []string{
			fmt.Sprintf("Time: %.1f h (tick %d)", sim.Time(), sim.Tick()),
			fmt.Sprintf("Cells: %d (%d viable)", snap.Total, snap.Viable),
			fmt.Sprintf("Viability: %.1f%%", snap.Viability),
			fmt.Sprintf("Avg health: %.3f", snap.AvgHealth),
			fmt.Sprintf("Avg ATP: %.3f", snap.AvgATP),
			fmt.Sprintf("Divisions: %d", stats.Divisions),
			fmt.Sprintf("Deaths: %d", stats.Deaths),
			fmt.Sprintf("Cleared: %d", stats.Cleared),
		}
		for _, s := range statLines {
			rl.DrawText(s, int32(panelX), int32(panelY), 16, rl.DarkGray)
			panelY += 20
		}
		panelY += 8

		// Speed slider
		rl.DrawText("Speed (ticks/frame)", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		speed = gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 50), Height: 20},
			"0", "20",
			speed, 0, 20,
		)
		rl.DrawText(fmt.Sprintf("%d", int(speed)), int32(panelX+panelWidth-40), int32(panelY+2), 16, rl.DarkGray)
		panelY += 32

		// Buttons
		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 110, Height: 28}, toggleText(paused, "Resume", "Pause")) {
			paused = !paused
		}
		if gui.Button(rl.Rectangle{X: panelX + 120, Y: panelY, Width: 110, Height: 28}, "Step") {
			sim.Step()
		}
		panelY += 36

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 110, Height: 28}, "Reseed") {
			sim = newSim(time.Now().UnixNano())
			haveSelection = false
		}
		if gui.Button(rl.Rectangle{X: panelX + 120, Y: panelY, Width: 110, Height: 28}, "Next Line") {
			lineIdx = (lineIdx + 1) % len(names)
			sim = newSim(time.Now().UnixNano())
			haveSelection = false
		}
		panelY += 40

		// Selected cell
		if haveSelection {
			rl.DrawText(fmt.Sprintf("Cell #%d", selected.ID), int32(panelX), int32(panelY), 16, rl.DarkGray)
			panelY += 20

			state := "alive"
			if !selected.Alive {
				state = "apoptotic"
				if selected.Necrotic {
					state = "necrotic"
				}
			}
			cellLines := []string{
				fmt.Sprintf("State: %s", state),
				fmt.Sprintf("Phase: %s (%.0f%%)", selected.Phase, selected.Progress*100),
				fmt.Sprintf("Health: %.3f", selected.Health),
				fmt.Sprintf("ATP: %.3f", selected.ATP),
				fmt.Sprintf("Glucose: %.3f  O2: %.3f", selected.Glucose, selected.Oxygen),
				fmt.Sprintf("Divisions: %d", selected.Divisions),
			}
			for _, s := range cellLines {
				rl.DrawText(s, int32(panelX), int32(panelY), 13, rl.Gray)
				panelY += 16
			}
			panelY += 8
		}

		// Legend
		rl.DrawText("Legend", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 20
		type legendEntry struct {
			label string
			color rl.Color
		}
		legend := make([]legendEntry, 0, components.PhaseCount()+2)
		for i, name := range components.PhaseNames() {
			legend = append(legend, legendEntry{name, phaseColor(components.Phase(i))})
		}
		legend = append(legend,
			legendEntry{"Apoptotic", rl.LightGray},
			legendEntry{"Necrotic", rl.DarkGray},
		)
		for _, item := range legend {
			rl.DrawRectangle(int32(panelX), int32(panelY), 12, 12, item.color)
			rl.DrawText(item.label, int32(panelX)+18, int32(panelY), 12, rl.DarkGray)
			panelY += 16
		}

		rl.DrawText("Space = pause, R = reseed, Home = reset view", int32(panelX), int32(windowHeight-36), 11, rl.LightGray)
		rl.DrawText("Wheel = zoom, right-drag = pan, click = inspect", int32(panelX), int32(windowHeight-22), 11, rl.LightGray)

		rl.EndDrawing()
	}
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
