package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/snakegame/game/engine"
	"github.com/wricardo/mcp-training/snakegame/game/scheduler"
	"github.com/wricardo/mcp-training/snakegame/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// maxIDAttempts bounds ID generation when the random space collides
const maxIDAttempts = 16

// Manager handles game session lifecycle
type Manager struct {
	sessions map[string]*service.Session
	mu       sync.RWMutex
}

// NewManager creates a new session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
	}
}

// Create creates a new session with its own engine and tick scheduler.
// An empty id gets a random 4-character one.
func (m *Manager) Create(id string, difficulty *engine.Difficulty, manual bool, hooks service.SessionHooks) (*service.Session, error) {
	if strings.ContainsAny(id, " /?#") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	var (
		sess *service.Session
		eng  *engine.GameEngine
	)

	sched := scheduler.New(func() bool {
		result := eng.Tick()
		if hooks.OnTick != nil {
			hooks.OnTick(sess, result)
		}
		// Paused runs keep their clock; finished or stopped runs release it
		return eng.IsRunning()
	})

	var opts []engine.Option
	if hooks.Scores != nil {
		opts = append(opts, engine.WithScoreKeeper(hooks.Scores))
	}
	if hooks.OnSound != nil {
		opts = append(opts, engine.WithSoundPlayer(engine.SoundFunc(func(event engine.Event) {
			hooks.OnSound(sess, event)
		})))
	}
	if !manual {
		opts = append(opts, engine.WithSpeedListener(sched.SetPeriod))
	}

	eng, err := engine.NewEngine(difficulty, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id, err = m.generateUniqueIDLocked()
		if err != nil {
			return nil, err
		}
	} else if m.sessionExists(id) {
		// Check if session already exists (case-insensitive)
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	sess = &service.Session{
		ID:           id,
		Engine:       eng,
		Scheduler:    sched,
		Difficulty:   eng.GetDifficulty(),
		DifficultyID: difficulty.Name,
		Manual:       manual,
		CreatedAt:    now,
	}
	sess.TouchAt(now)

	m.sessions[strings.ToLower(id)] = sess
	return sess, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// List returns all active sessions, oldest first
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// Delete removes a session and stops its scheduler
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	lowerID := strings.ToLower(id)
	sess, exists := m.sessions[lowerID]
	if exists {
		delete(m.sessions, lowerID)
	}
	m.mu.Unlock()

	if !exists {
		return ErrSessionNotFound
	}

	// Outside the lock: an in-flight tick may still be looking sessions up
	shutdown(sess)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.RLock()
	sess, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()

	if !exists {
		return ErrSessionNotFound
	}

	sess.Touch()
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the
// given duration and stops their schedulers
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	var expired []*service.Session
	for id, sess := range m.sessions {
		if sess.LastAccessed().Before(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, sess)
		}
	}
	m.mu.Unlock()

	for _, sess := range expired {
		shutdown(sess)
	}
	return len(expired)
}

// StopAll stops every running session's scheduler, keeping the sessions
func (m *Manager) StopAll() {
	for _, sess := range m.List() {
		shutdown(sess)
	}
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateUniqueIDLocked returns an unused random ID; caller holds mu
func (m *Manager) generateUniqueIDLocked() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := generateSessionID()
		if err != nil {
			return "", err
		}
		if !m.sessionExists(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: could not generate a unique ID", ErrInvalidSessionID)
}

// generateSessionID generates a random 4-character session ID
func generateSessionID() (string, error) {
	// Generate 2 random bytes (4 hex characters)
	bytes := make([]byte, 2)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session ID: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}

func shutdown(sess *service.Session) {
	sess.Scheduler.Stop()
	sess.Engine.Stop()
}

