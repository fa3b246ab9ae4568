package engine

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Lifecycle
	Start(difficulty *Difficulty) error
	Stop()
	TogglePause() bool

	// Input and simulation
	SetDirection(d Direction) bool
	Tick() Result

	// Game state
	GetState() *GameState
	SetState(state *GameState) error
	IsRunning() bool
	IsPaused() bool
	IsGameOver() bool
	GetScore() int
	GetLevel() int
	GetInterval() time.Duration
	GetDifficulty() *Difficulty

	// Sound
	ToggleSound() bool
}

// SoundPlayer receives discrete gameplay events. Play must not block.
type SoundPlayer interface {
	Play(event Event)
}

// SoundFunc adapts a function to SoundPlayer
type SoundFunc func(event Event)

// Play calls f(event)
func (f SoundFunc) Play(event Event) {
	f(event)
}

// ScoreKeeper loads and stores the persisted high score
type ScoreKeeper interface {
	LoadHighScore() int
	SaveHighScore(score int) error
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithSoundPlayer routes gameplay events to p
func WithSoundPlayer(p SoundPlayer) Option {
	return func(e *GameEngine) {
		e.sound = p
	}
}

// WithScoreKeeper sets the high score persistence
func WithScoreKeeper(k ScoreKeeper) Option {
	return func(e *GameEngine) {
		e.scores = k
	}
}

// WithSpeedListener registers fn to be told about every tick interval change
func WithSpeedListener(fn func(interval time.Duration)) Option {
	return func(e *GameEngine) {
		e.onSpeed = fn
	}
}

// WithRand sets the random source used for food placement
func WithRand(r *rand.Rand) Option {
	return func(e *GameEngine) {
		e.rng = r
	}
}

// GameEngine implements the Engine interface
type GameEngine struct {
	mu         sync.Mutex
	state      *GameState
	difficulty *Difficulty
	rng        *rand.Rand
	sound      SoundPlayer
	scores     ScoreKeeper
	onSpeed    func(interval time.Duration)
}

// NewEngine creates an idle engine with the given difficulty preselected
func NewEngine(difficulty *Difficulty, opts ...Option) (*GameEngine, error) {
	if err := ValidateDifficulty(difficulty); err != nil {
		return nil, err
	}

	d := *difficulty
	e := &GameEngine{
		difficulty: &d,
		state:      InitGameState(&d),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	if e.scores != nil {
		e.state.HighScore = e.scores.LoadHighScore()
	}

	return e, nil
}

// NewEngineWithDefaults creates an engine using the default difficulty
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	d, _ := LookupDifficulty(DefaultDifficulty)
	e, _ := NewEngine(d, opts...)
	return e
}

// Start resets the game for a new run. A nil difficulty reuses the current one.
func (e *GameEngine) Start(difficulty *Difficulty) error {
	if difficulty != nil {
		if err := ValidateDifficulty(difficulty); err != nil {
			return err
		}
	}

	e.mu.Lock()
	if difficulty != nil {
		d := *difficulty
		e.difficulty = &d
	}

	soundEnabled := e.state.SoundEnabled
	highScore := e.state.HighScore
	if e.scores != nil {
		highScore = e.scores.LoadHighScore()
	}

	e.state = InitGameState(e.difficulty)
	e.state.SoundEnabled = soundEnabled
	e.state.HighScore = highScore
	e.state.RunID = uuid.NewString()
	e.state.Running = true
	e.state.placeFood(e.rng)
	e.state.Message = fmt.Sprintf("Game started (%s)", e.difficulty.Name)
	interval := e.intervalLocked()
	e.mu.Unlock()

	if e.onSpeed != nil {
		e.onSpeed(interval)
	}
	return nil
}

// Stop ends the current run without touching score or high score
func (e *GameEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Running {
		return
	}
	e.state.Running = false
	e.state.Paused = false
	e.state.Message = "Game stopped"
}

// TogglePause flips the paused flag and returns the new value.
// It is a no-op when the game is not running.
func (e *GameEngine) TogglePause() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.state.Running {
		return e.state.Paused
	}
	e.state.Paused = !e.state.Paused
	if e.state.Paused {
		e.state.Message = "Paused"
	} else {
		e.state.Message = "Resumed"
	}
	return e.state.Paused
}

// SetDirection records d as the pending direction for the next tick.
// Reversing onto the direction applied in the last tick is ignored.
func (e *GameEngine) SetDirection(d Direction) bool {
	if !d.IsValid() {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if d == e.state.Direction.Opposite() {
		return false
	}
	e.state.PendingDirection = d
	return true
}

// Tick advances the game by one step
func (e *GameEngine) Tick() Result {
	e.mu.Lock()
	if !e.state.Running || e.state.Paused {
		e.mu.Unlock()
		return ResultNone
	}

	prevInterval := e.state.IntervalMs
	result := e.state.advance(e.difficulty, e.rng)
	if result == ResultGameOver {
		e.recordHighScoreLocked()
	}

	events := e.state.Events
	soundOn := e.state.SoundEnabled
	speedChanged := e.state.IntervalMs != prevInterval
	interval := e.intervalLocked()
	e.mu.Unlock()

	if e.sound != nil && soundOn {
		for _, ev := range events {
			e.sound.Play(ev)
		}
	}
	if speedChanged && e.onSpeed != nil {
		e.onSpeed(interval)
	}

	return result
}

// recordHighScoreLocked saves the final score when it beats the stored high score
func (e *GameEngine) recordHighScoreLocked() {
	if e.state.Score <= e.state.HighScore {
		return
	}

	e.state.HighScore = e.state.Score
	e.state.NewHighScore = true
	if e.scores != nil {
		if err := e.scores.SaveHighScore(e.state.Score); err != nil {
			log.Printf("Warning: failed to save high score %d: %v", e.state.Score, err)
		}
	}
}

// GetState returns a snapshot of the current game state
func (e *GameEngine) GetState() *GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// SetState installs a validated state (used for fixtures and tests)
func (e *GameEngine) SetState(state *GameState) error {
	if err := ValidateGameState(state); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = state.Clone()
	e.state.GridSize = GridSize
	if e.state.IntervalMs == 0 {
		e.state.IntervalMs = e.difficulty.InitialSpeedMs
	}
	return nil
}

// IsRunning returns whether a run is in progress
func (e *GameEngine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Running
}

// IsPaused returns whether the run is paused
func (e *GameEngine) IsPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Paused
}

// IsGameOver returns whether the last run ended in a collision
func (e *GameEngine) IsGameOver() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.GameOver
}

// GetScore returns the current score
func (e *GameEngine) GetScore() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Score
}

// GetLevel returns the current level
func (e *GameEngine) GetLevel() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Level
}

// GetInterval returns the current tick interval
func (e *GameEngine) GetInterval() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.intervalLocked()
}

func (e *GameEngine) intervalLocked() time.Duration {
	return time.Duration(e.state.IntervalMs) * time.Millisecond
}

// GetDifficulty returns a copy of the selected difficulty profile
func (e *GameEngine) GetDifficulty() *Difficulty {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := *e.difficulty
	return &d
}

// ToggleSound flips sound output and returns the new setting
func (e *GameEngine) ToggleSound() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.SoundEnabled = !e.state.SoundEnabled
	return e.state.SoundEnabled
}
