// Command analyze prints quick, human-readable heuristics about the difficulty
// profiles in the project's configs directory. It summarizes the speed curve
// of each profile, the score at which the speed floor is reached, and
// highlights profiles whose curve cannot play out on the board.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/mcp-training/snakegame/game/engine"
)

// maxCurveRows bounds the per-level table printed for each profile
const maxCurveRows = 10

// CurvePoint is the tick interval in effect from a level onwards
type CurvePoint struct {
	Level      int
	Score      int
	IntervalMs int
}

// Analysis summarizes how a difficulty plays out on the board
type Analysis struct {
	Difficulty *engine.Difficulty

	// MaxScore is the score of a snake filling the whole board
	MaxScore int
	MaxLevel int

	// FloorLevel is the first level running at MinIntervalMs, 0 if never
	FloorLevel int
	FloorScore int

	// CrossingSeconds is the time to cross the board at the starting speed
	CrossingSeconds float64

	Curve    []CurvePoint
	Warnings []string
}

func main() {
	dir := "configs"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		fmt.Printf("Error listing %s: %v\n", dir, err)
		os.Exit(1)
	}
	sort.Strings(files)

	for _, path := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(path))
		analyzeConfig(os.Stdout, path)
	}
}

func analyzeConfig(w io.Writer, path string) {
	d, err := engine.LoadDifficultyFile(path)
	if err != nil {
		fmt.Fprintf(w, "Error loading file: %v\n", err)
		return
	}
	printAnalysis(w, analyzeDifficulty(d))
}

// analyzeDifficulty walks the level curve of a validated difficulty
func analyzeDifficulty(d *engine.Difficulty) *Analysis {
	a := &Analysis{
		Difficulty:      d,
		MaxScore:        engine.GridSize*engine.GridSize - 1,
		CrossingSeconds: float64(engine.GridSize*d.InitialSpeedMs) / 1000,
	}
	a.MaxLevel = engine.LevelForScore(a.MaxScore, d.LevelThreshold)

	for level := 1; level <= a.MaxLevel; level++ {
		interval := engine.IntervalForLevel(d, level)
		if len(a.Curve) < maxCurveRows {
			a.Curve = append(a.Curve, CurvePoint{
				Level:      level,
				Score:      (level - 1) * d.LevelThreshold,
				IntervalMs: interval,
			})
		}
		if interval == engine.MinIntervalMs {
			a.FloorLevel = level
			a.FloorScore = (level - 1) * d.LevelThreshold
			break
		}
		// Constant speed from here on
		if d.SpeedDecrementMs == 0 {
			break
		}
	}

	switch {
	case d.SpeedDecrementMs == 0:
		a.Warnings = append(a.Warnings, "speed never increases (speed_decrement_ms is 0)")
	case a.FloorLevel == 0:
		a.Warnings = append(a.Warnings, fmt.Sprintf(
			"speed floor of %dms is never reached: a full board only gets to level %d at %dms",
			engine.MinIntervalMs, a.MaxLevel, engine.IntervalForLevel(d, a.MaxLevel)))
	case a.FloorLevel == 1:
		a.Warnings = append(a.Warnings, "starts at the speed floor, so levels never change the pace")
	}
	if a.MaxLevel == 1 {
		a.Warnings = append(a.Warnings, fmt.Sprintf(
			"level_threshold %d is above the best possible score %d", d.LevelThreshold, a.MaxScore))
	}

	return a
}

func printAnalysis(w io.Writer, a *Analysis) {
	d := a.Difficulty
	fmt.Fprintf(w, "Name: %s\n", d.Name)
	if d.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", d.Description)
	}
	fmt.Fprintf(w, "Start Speed: %dms (%.1fs to cross the board)\n", d.InitialSpeedMs, a.CrossingSeconds)
	fmt.Fprintf(w, "Speed Step: -%dms every %d points\n", d.SpeedDecrementMs, d.LevelThreshold)
	fmt.Fprintf(w, "Max Score: %d (level %d)\n", a.MaxScore, a.MaxLevel)

	fmt.Fprintf(w, "Level  Score  Interval\n")
	for _, p := range a.Curve {
		fmt.Fprintf(w, "%5d  %5d  %6dms\n", p.Level, p.Score, p.IntervalMs)
	}

	if a.FloorLevel > 0 {
		fmt.Fprintf(w, "✅ Speed floor %dms reached at level %d (score %d)\n", engine.MinIntervalMs, a.FloorLevel, a.FloorScore)
	}
	for _, warning := range a.Warnings {
		fmt.Fprintf(w, "⚠️  WARNING: %s\n", warning)
	}
}
