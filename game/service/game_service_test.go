package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/snakegame/game/engine"
	"github.com/wricardo/mcp-training/snakegame/game/highscore"
	"github.com/wricardo/mcp-training/snakegame/game/input"
	"github.com/wricardo/mcp-training/snakegame/game/service"
	"github.com/wricardo/mcp-training/snakegame/game/session"
)

var errNotFound = errors.New("difficulty not found")

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	difficulties map[string]*engine.Difficulty
}

func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		difficulties: map[string]*engine.Difficulty{
			"test": {
				Name:             "test",
				Description:      "Test difficulty",
				InitialSpeedMs:   50,
				SpeedDecrementMs: 5,
				LevelThreshold:   2,
			},
			"slow": {
				Name:             "slow",
				Description:      "Slow difficulty",
				InitialSpeedMs:   1000,
				SpeedDecrementMs: 10,
				LevelThreshold:   5,
			},
		},
	}
}

func (m *MockConfigManager) LoadDifficulty(name string) (*engine.Difficulty, error) {
	d, ok := m.difficulties[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errNotFound, name)
	}
	c := *d
	return &c, nil
}

func (m *MockConfigManager) ListDifficulties() ([]*service.DifficultyInfo, error) {
	var infos []*service.DifficultyInfo
	for id, d := range m.difficulties {
		infos = append(infos, &service.DifficultyInfo{
			DifficultyID:   id,
			Name:           d.Name,
			InitialSpeedMs: d.InitialSpeedMs,
		})
	}
	return infos, nil
}

func (m *MockConfigManager) GetDefault() *engine.Difficulty {
	d, _ := m.LoadDifficulty("test")
	return d
}

// recordingNotifier captures broadcasts
type recordingNotifier struct {
	mu     sync.Mutex
	states map[string][]*engine.GameState
	events map[string][]interface{}
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{
		states: make(map[string][]*engine.GameState),
		events: make(map[string][]interface{}),
	}
}

func (n *recordingNotifier) BroadcastToSession(sessionID string, state *engine.GameState) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.states[sessionID] = append(n.states[sessionID], state)
}

func (n *recordingNotifier) BroadcastEvent(sessionID string, event string, data interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events[sessionID] = append(n.events[sessionID], data)
}

func (n *recordingNotifier) stateCount(sessionID string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.states[sessionID])
}

func (n *recordingNotifier) lastState(sessionID string) *engine.GameState {
	n.mu.Lock()
	defer n.mu.Unlock()
	states := n.states[sessionID]
	if len(states) == 0 {
		return nil
	}
	return states[len(states)-1]
}

type testEnv struct {
	svc      service.GameService
	sessions *session.Manager
	notifier *recordingNotifier
	store    *highscore.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	sessions := session.NewManager()
	notifier := newRecordingNotifier()
	store := highscore.NewMemoryStore()
	svc := service.NewGameService(sessions, NewMockConfigManager(),
		service.WithNotifier(notifier),
		service.WithScoreKeeper(highscore.NewKeeper(store, highscore.DefaultKey)),
	)
	t.Cleanup(sessions.StopAll)
	return &testEnv{svc: svc, sessions: sessions, notifier: notifier, store: store}
}

// placeSnake installs a running state for deterministic manual play
func placeSnake(t *testing.T, env *testEnv, id string, snake []engine.Cell, dir engine.Direction, food engine.Cell) {
	t.Helper()
	sess, err := env.sessions.Get(id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	state := sess.Engine.GetState()
	state.Snake = snake
	state.Direction = dir
	state.PendingDirection = dir
	state.Food = food
	state.Running = true
	state.GameOver = false
	if err := sess.Engine.SetState(state); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
}

func TestCreateSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("default difficulty", func(t *testing.T) {
		info, err := env.svc.CreateSession(ctx, "", false)
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if info.DifficultyID != "test" {
			t.Errorf("Expected default difficulty test, got %s", info.DifficultyID)
		}
		if info.GameState == nil || info.GameState.Running {
			t.Error("Expected an idle game state")
		}
		if len(info.ID) != 4 {
			t.Errorf("Expected 4-char ID, got %q", info.ID)
		}
	})

	t.Run("named difficulty", func(t *testing.T) {
		info, err := env.svc.CreateSession(ctx, "slow", true)
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if info.Difficulty.InitialSpeedMs != 1000 || !info.Manual {
			t.Errorf("Unexpected session info: %+v", info)
		}
	})

	t.Run("unknown difficulty fails fast", func(t *testing.T) {
		_, err := env.svc.CreateSession(ctx, "nightmare", false)
		if !errors.Is(err, errNotFound) {
			t.Errorf("Expected wrapped not-found error, got %v", err)
		}
	})
}

func TestGetListDeleteSession(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, _ := env.svc.CreateSession(ctx, "", true)
	env.svc.CreateSession(ctx, "", true)

	got, err := env.svc.GetSession(ctx, a.ID)
	if err != nil || got.ID != a.ID {
		t.Fatalf("GetSession failed: %v", err)
	}

	list, _ := env.svc.ListSessions(ctx)
	if len(list) != 2 {
		t.Errorf("Expected 2 sessions, got %d", len(list))
	}

	if err := env.svc.DeleteSession(ctx, a.ID); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := env.svc.GetSession(ctx, a.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := env.svc.DeleteSession(ctx, a.ID); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound on second delete, got %v", err)
	}
}

func TestCleanupExpiredSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	stale, _ := env.svc.CreateSession(ctx, "", false)
	fresh, _ := env.svc.CreateSession(ctx, "", true)
	if _, err := env.svc.StartGame(ctx, stale.ID, ""); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	sess, _ := env.sessions.Get(stale.ID)
	sess.TouchAt(time.Now().Add(-2 * time.Hour))

	removed, err := env.svc.CleanupExpiredSessions(ctx, time.Hour)
	if err != nil {
		t.Fatalf("CleanupExpiredSessions failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 removed session, got %d", removed)
	}
	if sess.Scheduler.Running() || sess.Engine.IsRunning() {
		t.Error("Expired session should be stopped")
	}
	if _, err := env.svc.StartGame(ctx, stale.ID, ""); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound starting an expired session, got %v", err)
	}
	if _, err := env.svc.GetSession(ctx, fresh.ID); err != nil {
		t.Errorf("Fresh session should survive cleanup: %v", err)
	}
}

func TestStartGame(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	info, _ := env.svc.CreateSession(ctx, "", true)

	state, err := env.svc.StartGame(ctx, info.ID, "")
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	if !state.Running || state.Paused || state.Score != 0 || len(state.Snake) != 1 {
		t.Errorf("Unexpected start state: %+v", state)
	}
	if env.notifier.stateCount(info.ID) != 1 {
		t.Error("Expected start to broadcast the state")
	}

	t.Run("switch difficulty", func(t *testing.T) {
		state, err := env.svc.StartGame(ctx, info.ID, "slow")
		if err != nil {
			t.Fatalf("StartGame failed: %v", err)
		}
		if state.Difficulty != "slow" || state.IntervalMs != 1000 {
			t.Errorf("Expected slow profile, got %s/%dms", state.Difficulty, state.IntervalMs)
		}
	})

	t.Run("unknown difficulty leaves the run alone", func(t *testing.T) {
		before, _ := env.svc.GetGameState(ctx, info.ID)
		if _, err := env.svc.StartGame(ctx, info.ID, "bogus"); !errors.Is(err, errNotFound) {
			t.Fatalf("Expected not-found error, got %v", err)
		}
		after, _ := env.svc.GetGameState(ctx, info.ID)
		if after.RunID != before.RunID {
			t.Error("Failed start must not reset the run")
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		if _, err := env.svc.StartGame(ctx, "zzzz", ""); !errors.Is(err, service.ErrSessionNotFound) {
			t.Errorf("Expected ErrSessionNotFound, got %v", err)
		}
	})
}

func TestStep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	info, _ := env.svc.CreateSession(ctx, "", true)
	env.svc.StartGame(ctx, info.ID, "")

	placeSnake(t, env, info.ID, []engine.Cell{{X: 10, Y: 10}}, engine.Right, engine.Cell{X: 11, Y: 10})

	step, err := env.svc.Step(ctx, info.ID)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if step.Result != engine.ResultAte {
		t.Fatalf("Expected ate, got %v", step.Result)
	}
	if step.GameState.Score != 1 || len(step.GameState.Snake) != 2 {
		t.Errorf("Unexpected state after eating: %+v", step.GameState)
	}
	if len(step.Events) == 0 || step.Events[0].Type != string(engine.EventAte) {
		t.Errorf("Expected ate event, got %+v", step.Events)
	}
	if len(step.SafeDirections) == 0 {
		t.Error("Expected safe directions while running")
	}

	// Sound event went out through the notifier
	env.notifier.mu.Lock()
	sounds := env.notifier.events[info.ID]
	env.notifier.mu.Unlock()
	if len(sounds) != 1 || sounds[0] != engine.EventAte {
		t.Errorf("Expected one ate sound event, got %v", sounds)
	}
}

func TestStep_RealtimeRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	info, _ := env.svc.CreateSession(ctx, "slow", false)

	if _, err := env.svc.Step(ctx, info.ID); !errors.Is(err, service.ErrRealtimeSession) {
		t.Errorf("Expected ErrRealtimeSession, got %v", err)
	}
}

func TestStep_GameOverSavesHighScore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	info, _ := env.svc.CreateSession(ctx, "", true)
	env.svc.StartGame(ctx, info.ID, "")

	sess, _ := env.sessions.Get(info.ID)
	state := sess.Engine.GetState()
	state.Snake = []engine.Cell{{X: 0, Y: 5}}
	state.Direction, state.PendingDirection = engine.Left, engine.Left
	state.Food = engine.Cell{X: 9, Y: 9}
	state.Score = 4
	sess.Engine.SetState(state)

	step, err := env.svc.Step(ctx, info.ID)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if step.Result != engine.ResultGameOver || !step.GameState.GameOver {
		t.Fatalf("Expected game over, got %v", step.Result)
	}
	if !step.GameState.NewHighScore {
		t.Error("Expected a new high score")
	}

	hs, err := env.svc.GetHighScore(ctx)
	if err != nil {
		t.Fatalf("GetHighScore failed: %v", err)
	}
	if hs.Score != 4 || hs.Key != highscore.DefaultKey {
		t.Errorf("Expected stored high score 4, got %+v", hs)
	}

	// Stepping a finished run changes nothing
	again, _ := env.svc.Step(ctx, info.ID)
	if again.Result != engine.ResultNone {
		t.Errorf("Expected ResultNone after game over, got %v", again.Result)
	}
}

func TestSetDirection(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	info, _ := env.svc.CreateSession(ctx, "", true)
	env.svc.StartGame(ctx, info.ID, "")

	res, err := env.svc.SetDirection(ctx, info.ID, "up")
	if err != nil {
		t.Fatalf("SetDirection failed: %v", err)
	}
	if !res.Accepted || res.GameState.PendingDirection != engine.Up {
		t.Errorf("Expected up accepted, got %+v", res)
	}

	res, _ = env.svc.SetDirection(ctx, info.ID, "left")
	if res.Accepted {
		t.Error("Reversal of the applied direction (right) must be rejected")
	}

	if _, err := env.svc.SetDirection(ctx, info.ID, "diagonal"); !errors.Is(err, engine.ErrInvalidDirection) {
		t.Errorf("Expected ErrInvalidDirection, got %v", err)
	}
}

func TestTogglePauseAndStop(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	info, _ := env.svc.CreateSession(ctx, "", true)

	state, _ := env.svc.TogglePause(ctx, info.ID)
	if state.Paused {
		t.Error("Pause must be a no-op before start")
	}

	env.svc.StartGame(ctx, info.ID, "")
	state, _ = env.svc.TogglePause(ctx, info.ID)
	if !state.Paused {
		t.Error("Expected paused")
	}

	step, _ := env.svc.Step(ctx, info.ID)
	if step.Result != engine.ResultNone {
		t.Errorf("Expected no movement while paused, got %v", step.Result)
	}

	state, _ = env.svc.TogglePause(ctx, info.ID)
	if state.Paused {
		t.Error("Expected resumed")
	}

	state, err := env.svc.StopGame(ctx, info.ID)
	if err != nil {
		t.Fatalf("StopGame failed: %v", err)
	}
	if state.Running {
		t.Error("Expected stopped")
	}
	if hs, _ := env.svc.GetHighScore(ctx); hs.Score != 0 {
		t.Error("Stop must not record a high score")
	}
}

func TestHandleInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	info, _ := env.svc.CreateSession(ctx, "", true)

	up := input.Command{Action: input.ActionDirection, Direction: engine.Up}

	res, err := env.svc.HandleInput(ctx, info.ID, up)
	if err != nil {
		t.Fatalf("HandleInput failed: %v", err)
	}
	if res.Applied {
		t.Error("Direction must be dropped before the game starts")
	}

	res, _ = env.svc.HandleInput(ctx, info.ID, input.Command{Action: input.ActionStart})
	if !res.Applied || !res.GameState.Running {
		t.Fatalf("Expected start applied, got %+v", res)
	}

	res, _ = env.svc.HandleInput(ctx, info.ID, up)
	if !res.Applied || res.GameState.PendingDirection != engine.Up {
		t.Errorf("Expected up applied, got %+v", res)
	}

	env.svc.HandleInput(ctx, info.ID, input.Command{Action: input.ActionPause})
	res, _ = env.svc.HandleInput(ctx, info.ID, input.Command{Action: input.ActionDirection, Direction: engine.Left})
	if res.Applied {
		t.Error("Direction must be dropped while paused")
	}

	res, _ = env.svc.HandleInput(ctx, info.ID, input.Command{Action: input.ActionSound})
	if !res.Applied || res.GameState.SoundEnabled {
		t.Errorf("Expected sound toggled off, got %+v", res)
	}

	res, _ = env.svc.HandleInput(ctx, info.ID, input.Command{Action: input.ActionQuit})
	if !res.Applied || res.GameState.Running {
		t.Errorf("Expected quit to stop the game, got %+v", res)
	}

	if _, err := env.svc.HandleInput(ctx, "none", up); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestRealtimeSessionBroadcastsTicks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	info, err := env.svc.CreateSession(ctx, "", false)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if _, err := env.svc.StartGame(ctx, info.ID, ""); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for env.notifier.stateCount(info.ID) < 4 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if env.notifier.stateCount(info.ID) < 4 {
		t.Fatalf("Expected tick broadcasts, got %d", env.notifier.stateCount(info.ID))
	}
	if last := env.notifier.lastState(info.ID); last.Ticks == 0 {
		t.Error("Expected broadcast states to come from ticks")
	}

	if _, err := env.svc.StopGame(ctx, info.ID); err != nil {
		t.Fatalf("StopGame failed: %v", err)
	}
	count := env.notifier.stateCount(info.ID)
	time.Sleep(150 * time.Millisecond)
	if got := env.notifier.stateCount(info.ID); got != count {
		t.Errorf("Expected no broadcasts after stop, got %d more", got-count)
	}
}

func TestRealtimeSessionEndsAtWall(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	info, _ := env.svc.CreateSession(ctx, "", false)
	env.svc.StartGame(ctx, info.ID, "")

	// Snake starts at (10,10) heading right: 10 ticks to the wall at 50ms
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		state, _ := env.svc.GetGameState(ctx, info.ID)
		if state.GameOver {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	state, _ := env.svc.GetGameState(ctx, info.ID)
	if !state.GameOver {
		t.Fatal("Expected the run to end at the wall")
	}
	sess, _ := env.sessions.Get(info.ID)
	if sess.Scheduler.Running() {
		t.Error("Scheduler should stop after game over")
	}
}

func TestDifficulties(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	infos, err := env.svc.ListDifficulties(ctx)
	if err != nil || len(infos) != 2 {
		t.Errorf("Expected 2 difficulties, got %d (%v)", len(infos), err)
	}

	d, err := env.svc.LoadDifficulty(ctx, "slow")
	if err != nil || d.InitialSpeedMs != 1000 {
		t.Errorf("Expected slow profile, got %+v (%v)", d, err)
	}
}

func TestGetHighScore_NotConfigured(t *testing.T) {
	svc := service.NewGameService(session.NewManager(), NewMockConfigManager())
	if _, err := svc.GetHighScore(context.Background()); err == nil {
		t.Error("Expected error without a score keeper")
	}
}
