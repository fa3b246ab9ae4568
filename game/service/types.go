package service

import (
	"time"

	"github.com/wricardo/mcp-training/snakegame/game/engine"
	"github.com/wricardo/mcp-training/snakegame/game/input"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	DifficultyID   string             `json:"difficulty_id"`
	Manual         bool               `json:"manual"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	Difficulty     *engine.Difficulty `json:"difficulty"`
}

// StepResult contains the outcome of a single manual tick
type StepResult struct {
	Result    engine.Result     `json:"result"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Events    []GameEvent       `json:"events,omitempty"`
	// SafeDirections lists the turns that survive the next tick
	SafeDirections []string `json:"safe_directions,omitempty"`
}

// DirectionResult reports whether a direction change was recorded
type DirectionResult struct {
	Accepted  bool              `json:"accepted"`
	Direction string            `json:"direction"`
	GameState *engine.GameState `json:"game_state"`
}

// InputResult reports how a normalized input was applied
type InputResult struct {
	Command   input.Command     `json:"command"`
	Applied   bool              `json:"applied"`
	GameState *engine.GameState `json:"game_state"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string    `json:"type"` // "start", "ate", "level_up", "game_over", "stop"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// HighScoreInfo is the persisted best score
type HighScoreInfo struct {
	Key   string `json:"key"`
	Score int    `json:"score"`
}

// DifficultyInfo provides information about a difficulty profile
type DifficultyInfo struct {
	Filename         string `json:"filename,omitempty"`
	DifficultyID     string `json:"difficulty_id"` // The identifier to use for session creation
	Name             string `json:"name"`
	Description      string `json:"description"`
	InitialSpeedMs   int    `json:"initial_speed_ms"`
	SpeedDecrementMs int    `json:"speed_decrement_ms"`
	LevelThreshold   int    `json:"level_threshold"`
	Builtin          bool   `json:"builtin"`
}
