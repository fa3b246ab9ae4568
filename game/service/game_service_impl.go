package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/snakegame/game/engine"
	"github.com/wricardo/mcp-training/snakegame/game/input"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	scores   ScoreKeeper
	notifier Notifier
	mu       sync.RWMutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithNotifier broadcasts state and sound events to n
func WithNotifier(n Notifier) Option {
	return func(s *gameServiceImpl) {
		s.notifier = n
	}
}

// WithScoreKeeper shares a persisted high score between all sessions
func WithScoreKeeper(k ScoreKeeper) Option {
	return func(s *gameServiceImpl) {
		s.scores = k
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// hooks binds a new session's engine and scheduler to this service
func (s *gameServiceImpl) hooks() SessionHooks {
	h := SessionHooks{
		OnTick:  s.onTick,
		OnSound: s.onSound,
	}
	if s.scores != nil {
		h.Scores = s.scores
	}
	return h
}

// onTick runs on a session's scheduler goroutine. It must not take s.mu:
// StopGame and DeleteSession wait for the in-flight tick while holding it.
func (s *gameServiceImpl) onTick(sess *Session, result engine.Result) {
	if result == engine.ResultNone {
		return
	}

	state := sess.Engine.GetState()
	if result == engine.ResultGameOver {
		log.Printf("[GAME OVER] session=%s score=%d level=%d reason=%s ticks=%d",
			sess.ID, state.Score, state.Level, state.GameOverReason, state.Ticks)
	}
	s.broadcastState(sess.ID, state)
}

func (s *gameServiceImpl) onSound(sess *Session, event engine.Event) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastEvent(sess.ID, "sound", event)
}

func (s *gameServiceImpl) broadcastState(sessionID string, state *engine.GameState) {
	if s.notifier == nil {
		return
	}
	s.notifier.BroadcastToSession(sessionID, state)
}

// loadDifficulty resolves a name through the config manager; empty means default
func (s *gameServiceImpl) loadDifficulty(name string) (*engine.Difficulty, string, error) {
	if name == "" {
		d := s.configs.GetDefault()
		return d, d.Name, nil
	}

	d, err := s.configs.LoadDifficulty(name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load difficulty %q: %w", name, err)
	}
	return d, name, nil
}

// getSession looks a session up and records the access
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", sessionID, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

func toSessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		DifficultyID:   sess.DifficultyID,
		Manual:         sess.Manual,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessed(),
		GameState:      sess.Engine.GetState(),
		Difficulty:     sess.Engine.GetDifficulty(),
	}
}

// CreateSession creates a new idle game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, difficulty string, manual bool) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, id, err := s.loadDifficulty(difficulty)
	if err != nil {
		return nil, err
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", d, manual, s.hooks())
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	sess.DifficultyID = id

	log.Printf("[SESSION] created id=%s difficulty=%s manual=%v", sess.ID, id, manual)
	return toSessionInfo(sess), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return toSessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, toSessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session and stops its clock
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("session %q: %w", sessionID, err)
	}
	log.Printf("[SESSION] deleted id=%s", sessionID)
	return nil
}

// CleanupExpiredSessions removes sessions idle for longer than maxAge. It holds
// the service lock so no StartGame can restart the clock of a session being
// removed.
func (s *gameServiceImpl) CleanupExpiredSessions(ctx context.Context, maxAge time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.sessions.CleanupExpiredSessions(maxAge)
	if removed > 0 {
		log.Printf("[SESSION] cleaned up %d expired sessions", removed)
	}
	return removed, nil
}

// StartGame begins a new run. An empty difficulty keeps the session's current
// one; an unknown difficulty fails before anything changes.
func (s *gameServiceImpl) StartGame(ctx context.Context, sessionID, difficulty string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	var d *engine.Difficulty
	if difficulty != "" {
		var id string
		d, id, err = s.loadDifficulty(difficulty)
		if err != nil {
			return nil, err
		}
		sess.DifficultyID = id
	}

	// No tick of the previous run may land on the new one
	sess.Scheduler.Stop()

	if err := sess.Engine.Start(d); err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}
	sess.Difficulty = sess.Engine.GetDifficulty()

	if !sess.Manual {
		if err := sess.Scheduler.Start(sess.Engine.GetInterval()); err != nil {
			return nil, fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	state := sess.Engine.GetState()
	log.Printf("[START] session=%s difficulty=%s interval=%dms run=%s",
		sess.ID, sess.DifficultyID, state.IntervalMs, state.RunID)
	s.broadcastState(sess.ID, state)
	return state, nil
}

// SetDirection records the next direction for a session's snake
func (s *gameServiceImpl) SetDirection(ctx context.Context, sessionID, direction string) (*DirectionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	d, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}

	accepted := sess.Engine.SetDirection(d)
	return &DirectionResult{
		Accepted:  accepted,
		Direction: d.String(),
		GameState: sess.Engine.GetState(),
	}, nil
}

// TogglePause pauses or resumes a running game
func (s *gameServiceImpl) TogglePause(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Engine.TogglePause()
	state := sess.Engine.GetState()
	s.broadcastState(sess.ID, state)
	return state, nil
}

// StopGame ends the current run without recording a high score
func (s *gameServiceImpl) StopGame(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Scheduler.Stop()
	sess.Engine.Stop()

	state := sess.Engine.GetState()
	log.Printf("[STOP] session=%s score=%d", sess.ID, state.Score)
	s.broadcastState(sess.ID, state)
	return state, nil
}

// Step advances a manual session by one tick
func (s *gameServiceImpl) Step(ctx context.Context, sessionID string) (*StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Manual {
		return nil, ErrRealtimeSession
	}

	result := sess.Engine.Tick()
	state := sess.Engine.GetState()

	step := &StepResult{
		Result:    result,
		GameState: state,
		Message:   state.Message,
		Events:    eventsFor(result, state),
	}
	if state.Running {
		for _, d := range engine.SafeDirections(state) {
			step.SafeDirections = append(step.SafeDirections, d.String())
		}
	}

	if result != engine.ResultNone {
		s.broadcastState(sess.ID, state)
	}
	return step, nil
}

// eventsFor turns a tick's engine events into timestamped service events
func eventsFor(result engine.Result, state *engine.GameState) []GameEvent {
	if result == engine.ResultNone {
		return nil
	}

	now := time.Now()
	var events []GameEvent
	for _, ev := range state.Events {
		msg := ""
		switch ev {
		case engine.EventAte:
			msg = fmt.Sprintf("Ate food, score %d", state.Score)
		case engine.EventLevelUp:
			msg = fmt.Sprintf("Reached level %d, tick %dms", state.Level, state.IntervalMs)
		case engine.EventGameOver:
			msg = state.Message
		}
		events = append(events, GameEvent{Type: string(ev), Message: msg, Timestamp: now})
	}
	return events
}

// HandleInput applies a normalized input from a client, dropping inputs the
// game is not in a state to accept
func (s *gameServiceImpl) HandleInput(ctx context.Context, sessionID string, cmd input.Command) (*InputResult, error) {
	s.mu.RLock()
	sess, err := s.getSession(sessionID)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	res := &InputResult{Command: cmd}
	if !input.Allowed(cmd, sess.Engine.IsRunning(), sess.Engine.IsPaused()) {
		res.GameState = sess.Engine.GetState()
		return res, nil
	}

	switch cmd.Action {
	case input.ActionDirection:
		res.Applied = sess.Engine.SetDirection(cmd.Direction)
		res.GameState = sess.Engine.GetState()
	case input.ActionPause:
		res.GameState, err = s.TogglePause(ctx, sessionID)
		res.Applied = err == nil
	case input.ActionStart:
		res.GameState, err = s.StartGame(ctx, sessionID, "")
		res.Applied = err == nil
	case input.ActionQuit:
		res.GameState, err = s.StopGame(ctx, sessionID)
		res.Applied = err == nil
	case input.ActionSound:
		res.GameState, err = s.ToggleSound(ctx, sessionID)
		res.Applied = err == nil
	default:
		return nil, fmt.Errorf("%w: action %q", input.ErrUnknownInput, cmd.Action)
	}

	if err != nil {
		return nil, err
	}
	return res, nil
}

// ToggleSound turns sound events on or off for a session
func (s *gameServiceImpl) ToggleSound(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Engine.ToggleSound()
	state := sess.Engine.GetState()
	s.broadcastState(sess.ID, state)
	return state, nil
}

// GetGameState returns the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetHighScore returns the persisted high score
func (s *gameServiceImpl) GetHighScore(ctx context.Context) (*HighScoreInfo, error) {
	if s.scores == nil {
		return nil, errors.New("high score persistence is not configured")
	}
	return &HighScoreInfo{Key: s.scores.Key(), Score: s.scores.LoadHighScore()}, nil
}

// ListDifficulties returns all available difficulty profiles
func (s *gameServiceImpl) ListDifficulties(ctx context.Context) ([]*DifficultyInfo, error) {
	return s.configs.ListDifficulties()
}

// LoadDifficulty loads a specific difficulty profile
func (s *gameServiceImpl) LoadDifficulty(ctx context.Context, name string) (*engine.Difficulty, error) {
	return s.configs.LoadDifficulty(name)
}
