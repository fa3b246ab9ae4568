package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/snakegame/game/engine"
	"github.com/wricardo/mcp-training/snakegame/game/input"
	"github.com/wricardo/mcp-training/snakegame/game/scheduler"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrRealtimeSession = errors.New("session is driven by its scheduler; create a manual session to step")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, difficulty string, manual bool) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error
	CleanupExpiredSessions(ctx context.Context, maxAge time.Duration) (int, error)

	// Game Operations
	StartGame(ctx context.Context, sessionID, difficulty string) (*engine.GameState, error)
	SetDirection(ctx context.Context, sessionID, direction string) (*DirectionResult, error)
	TogglePause(ctx context.Context, sessionID string) (*engine.GameState, error)
	StopGame(ctx context.Context, sessionID string) (*engine.GameState, error)
	Step(ctx context.Context, sessionID string) (*StepResult, error)
	HandleInput(ctx context.Context, sessionID string, cmd input.Command) (*InputResult, error)
	ToggleSound(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetHighScore(ctx context.Context) (*HighScoreInfo, error)

	// Configuration
	ListDifficulties(ctx context.Context) ([]*DifficultyInfo, error)
	LoadDifficulty(ctx context.Context, name string) (*engine.Difficulty, error)
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, difficulty *engine.Difficulty, manual bool, hooks SessionHooks) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	CleanupExpiredSessions(maxAge time.Duration) int
}

// ConfigManager handles difficulty profile loading
type ConfigManager interface {
	LoadDifficulty(name string) (*engine.Difficulty, error)
	ListDifficulties() ([]*DifficultyInfo, error)
	GetDefault() *engine.Difficulty
}

// ScoreKeeper is the persisted high score shared by all sessions
type ScoreKeeper interface {
	engine.ScoreKeeper
	Key() string
}

// Notifier pushes session updates to connected renderers
type Notifier interface {
	BroadcastToSession(sessionID string, state *engine.GameState)
	BroadcastEvent(sessionID string, event string, data interface{})
}

// SessionHooks are the callbacks a session's engine and scheduler report to.
// OnTick runs on the scheduler goroutine after every realtime tick; it must not
// stop the session's scheduler.
type SessionHooks struct {
	Scores  engine.ScoreKeeper
	OnTick  func(sess *Session, result engine.Result)
	OnSound func(sess *Session, event engine.Event)
}

// Session represents an active game session
type Session struct {
	ID           string
	Engine       *engine.GameEngine
	Scheduler    *scheduler.Scheduler
	Difficulty   *engine.Difficulty
	DifficultyID string
	Manual       bool
	CreatedAt    time.Time

	accessMu       sync.Mutex
	lastAccessedAt time.Time
}

// Touch records an access now
func (s *Session) Touch() {
	s.TouchAt(time.Now())
}

// TouchAt records an access at t
func (s *Session) TouchAt(t time.Time) {
	s.accessMu.Lock()
	s.lastAccessedAt = t
	s.accessMu.Unlock()
}

// LastAccessed returns the time of the latest recorded access
func (s *Session) LastAccessed() time.Time {
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	return s.lastAccessedAt
}
