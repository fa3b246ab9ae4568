package engine

import (
	"fmt"
	"strings"
)

const (
	// GridSize is the width and height of the square board
	GridSize = 20

	// MinIntervalMs is the fastest tick interval a level-up can reach
	MinIntervalMs = 50

	// MaxFoodAttempts bounds random food draws before falling back to a scan
	MaxFoodAttempts = GridSize * GridSize

	// Validation constants
	MinSpeedMs     = MinIntervalMs
	MaxSpeedMs     = 2000
	MaxDecrementMs = 500
	MaxThreshold   = 1000
)

// Origin is where the snake spawns on Start
var Origin = Cell{X: 10, Y: 10}

// Cell represents a single board coordinate
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// InBounds reports whether the cell lies on the board
func (c Cell) InBounds() bool {
	return c.X >= 0 && c.X < GridSize && c.Y >= 0 && c.Y < GridSize
}

// Add returns the cell moved one step along d
func (c Cell) Add(d Direction) Cell {
	return Cell{X: c.X + d.X, Y: c.Y + d.Y}
}

// Direction is a unit vector on the grid
type Direction struct {
	X int `json:"x"`
	Y int `json:"y"`
}

var (
	Up    = Direction{X: 0, Y: -1}
	Down  = Direction{X: 0, Y: 1}
	Left  = Direction{X: -1, Y: 0}
	Right = Direction{X: 1, Y: 0}
)

// Directions lists the four valid directions
var Directions = []Direction{Up, Down, Left, Right}

// Opposite returns the reverse direction
func (d Direction) Opposite() Direction {
	return Direction{X: -d.X, Y: -d.Y}
}

// IsValid reports whether d is one of the four unit vectors
func (d Direction) IsValid() bool {
	for _, v := range Directions {
		if d == v {
			return true
		}
	}
	return false
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("(%d,%d)", d.X, d.Y)
	}
}

// ParseDirection converts "up", "down", "left" or "right" (any case) to a Direction
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	default:
		return Direction{}, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// Result is the outcome of a single tick
type Result int

const (
	// ResultNone means the tick was skipped (not running or paused)
	ResultNone Result = iota
	ResultMoved
	ResultAte
	ResultGameOver
)

func (r Result) String() string {
	switch r {
	case ResultMoved:
		return "moved"
	case ResultAte:
		return "ate"
	case ResultGameOver:
		return "game_over"
	default:
		return "none"
	}
}

// MarshalText encodes the result as its name
func (r Result) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a result name
func (r *Result) UnmarshalText(text []byte) error {
	switch string(text) {
	case "moved":
		*r = ResultMoved
	case "ate":
		*r = ResultAte
	case "game_over":
		*r = ResultGameOver
	case "none", "":
		*r = ResultNone
	default:
		return fmt.Errorf("unknown tick result %q", string(text))
	}
	return nil
}

// Event is a discrete gameplay event consumed by sound players
type Event string

const (
	EventAte      Event = "ate"
	EventGameOver Event = "game_over"
	EventLevelUp  Event = "level_up"
)

// Game over reasons
const (
	ReasonWall      = "wall"
	ReasonSelf      = "self"
	ReasonBoardFull = "board_full"
)

// Difficulty is a speed/level profile selected before a run
type Difficulty struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	InitialSpeedMs   int    `json:"initial_speed_ms"`
	SpeedDecrementMs int    `json:"speed_decrement_ms"`
	LevelThreshold   int    `json:"level_threshold"`
}

// GameState represents the complete game state
type GameState struct {
	Snake            []Cell    `json:"snake"`
	Direction        Direction `json:"direction"`
	PendingDirection Direction `json:"pending_direction"`
	Food             Cell      `json:"food"`
	Score            int       `json:"score"`
	Level            int       `json:"level"`
	IntervalMs       int       `json:"interval_ms"`
	Running          bool      `json:"running"`
	Paused           bool      `json:"paused"`
	GameOver         bool      `json:"game_over"`
	GameOverReason   string    `json:"game_over_reason,omitempty"`
	HighScore        int       `json:"high_score"`
	NewHighScore     bool      `json:"new_high_score"`
	Difficulty       string    `json:"difficulty"`
	GridSize         int       `json:"grid_size"`
	Ticks            int       `json:"ticks"`
	LastResult       Result    `json:"last_result"`
	Message          string    `json:"message"`
	SoundEnabled     bool      `json:"sound_enabled"`
	RunID            string    `json:"run_id,omitempty"`

	// Events holds the gameplay events raised by the most recent tick
	Events []Event `json:"events,omitempty"`
}

// Head returns the first snake cell
func (gs *GameState) Head() Cell {
	return gs.Snake[0]
}

// Occupies reports whether any snake segment sits on c
func (gs *GameState) Occupies(c Cell) bool {
	for _, seg := range gs.Snake {
		if seg == c {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the state
func (gs *GameState) Clone() *GameState {
	cp := *gs
	cp.Snake = append([]Cell(nil), gs.Snake...)
	if gs.Events != nil {
		cp.Events = append([]Event(nil), gs.Events...)
	}
	return &cp
}
