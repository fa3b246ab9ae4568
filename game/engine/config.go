package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

var (
	ErrUnknownDifficulty = errors.New("unknown difficulty")
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrInvalidDirection  = errors.New("invalid direction")
	ErrInvalidState      = errors.New("invalid game state")
)

// DefaultDifficulty is the profile selected when none is given
const DefaultDifficulty = "easy"

var builtinDifficulties = map[string]Difficulty{
	"easy": {
		Name:             "easy",
		Description:      "Slow start, speeds up every 5 points",
		InitialSpeedMs:   200,
		SpeedDecrementMs: 3,
		LevelThreshold:   5,
	},
	"medium": {
		Name:             "medium",
		Description:      "Balanced speed, levels up every 3 points",
		InitialSpeedMs:   150,
		SpeedDecrementMs: 5,
		LevelThreshold:   3,
	},
	"hard": {
		Name:             "hard",
		Description:      "Fast start, levels up every 2 points",
		InitialSpeedMs:   100,
		SpeedDecrementMs: 7,
		LevelThreshold:   2,
	},
	"classic": {
		Name:             "classic",
		Description:      "Original rules: 5ms faster every 5 points",
		InitialSpeedMs:   150,
		SpeedDecrementMs: 5,
		LevelThreshold:   5,
	},
}

// LookupDifficulty returns a copy of a built-in difficulty profile by key
func LookupDifficulty(name string) (*Difficulty, error) {
	d, ok := builtinDifficulties[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownDifficulty, name, strings.Join(BuiltinDifficultyNames(), ", "))
	}
	return &d, nil
}

// BuiltinDifficultyNames returns the sorted keys of the built-in profiles
func BuiltinDifficultyNames() []string {
	names := make([]string, 0, len(builtinDifficulties))
	for name := range builtinDifficulties {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidateDifficulty validates a difficulty profile for correctness and playability
func ValidateDifficulty(d *Difficulty) error {
	if d == nil {
		return fmt.Errorf("%w: difficulty is nil", ErrInvalidDifficulty)
	}
	if d.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDifficulty)
	}
	if d.InitialSpeedMs < MinSpeedMs || d.InitialSpeedMs > MaxSpeedMs {
		return fmt.Errorf("%w: initial_speed_ms must be between %d and %d, got %d",
			ErrInvalidDifficulty, MinSpeedMs, MaxSpeedMs, d.InitialSpeedMs)
	}
	if d.SpeedDecrementMs < 0 || d.SpeedDecrementMs > MaxDecrementMs {
		return fmt.Errorf("%w: speed_decrement_ms must be between 0 and %d, got %d",
			ErrInvalidDifficulty, MaxDecrementMs, d.SpeedDecrementMs)
	}
	if d.LevelThreshold < 1 || d.LevelThreshold > MaxThreshold {
		return fmt.Errorf("%w: level_threshold must be between 1 and %d, got %d",
			ErrInvalidDifficulty, MaxThreshold, d.LevelThreshold)
	}
	return nil
}

// LoadDifficultyFile loads and validates a difficulty profile from a JSON file
func LoadDifficultyFile(path string) (*Difficulty, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var d Difficulty
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse difficulty file '%s': %w", path, err)
	}

	if err := ValidateDifficulty(&d); err != nil {
		return nil, err
	}

	return &d, nil
}

// LevelForScore returns the level reached at score under a threshold
func LevelForScore(score, threshold int) int {
	if threshold < 1 {
		return 1
	}
	return score/threshold + 1
}

// IntervalForLevel returns the tick interval in ms after reaching level
func IntervalForLevel(d *Difficulty, level int) int {
	interval := d.InitialSpeedMs
	for l := 1; l < level; l++ {
		interval = nextInterval(interval, d.SpeedDecrementMs)
	}
	return interval
}

func nextInterval(current, decrement int) int {
	next := current - decrement
	if next < MinIntervalMs {
		return MinIntervalMs
	}
	return next
}

// InitGameState creates an idle state for the given difficulty
func InitGameState(d *Difficulty) *GameState {
	return &GameState{
		Snake:            []Cell{Origin},
		Direction:        Right,
		PendingDirection: Right,
		Food:             Cell{X: 15, Y: 15},
		Level:            1,
		IntervalMs:       d.InitialSpeedMs,
		Difficulty:       d.Name,
		GridSize:         GridSize,
		SoundEnabled:     true,
		Message:          "Press start to play",
	}
}

// ValidateGameState checks the structural invariants of a state
func ValidateGameState(gs *GameState) error {
	if gs == nil {
		return fmt.Errorf("%w: state cannot be nil", ErrInvalidState)
	}
	if len(gs.Snake) == 0 {
		return fmt.Errorf("%w: snake must have at least one cell", ErrInvalidState)
	}
	seen := make(map[Cell]bool, len(gs.Snake))
	for i, c := range gs.Snake {
		if !c.InBounds() {
			return fmt.Errorf("%w: snake cell %d (%d,%d) is off the board", ErrInvalidState, i, c.X, c.Y)
		}
		if seen[c] {
			return fmt.Errorf("%w: snake overlaps itself at (%d,%d)", ErrInvalidState, c.X, c.Y)
		}
		seen[c] = true
	}
	if !gs.Direction.IsValid() || !gs.PendingDirection.IsValid() {
		return fmt.Errorf("%w: direction must be a unit vector", ErrInvalidState)
	}
	if !gs.Food.InBounds() {
		return fmt.Errorf("%w: food (%d,%d) is off the board", ErrInvalidState, gs.Food.X, gs.Food.Y)
	}
	if seen[gs.Food] {
		return fmt.Errorf("%w: food (%d,%d) is on the snake", ErrInvalidState, gs.Food.X, gs.Food.Y)
	}
	if gs.Score < 0 || gs.Level < 1 {
		return fmt.Errorf("%w: score must be >= 0 and level >= 1", ErrInvalidState)
	}
	return nil
}
