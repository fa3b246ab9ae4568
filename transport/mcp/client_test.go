package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/wricardo/mcp-training/snakegame/game/engine"
	"github.com/wricardo/mcp-training/snakegame/game/service"
)

func callTool(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if result == nil {
		t.Fatal("Expected result, got nil")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatal("Expected text content in result")
	}
	return text.Text
}

func runningState() *engine.GameState {
	return &engine.GameState{
		Snake:      []engine.Cell{{X: 10, Y: 10}, {X: 9, Y: 10}, {X: 8, Y: 10}},
		Direction:  engine.Right,
		Food:       engine.Cell{X: 14, Y: 10},
		Score:      2,
		Level:      1,
		IntervalMs: 150,
		Running:    true,
		GridSize:   engine.GridSize,
	}
}

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080/"
	client := NewClient(baseURL)

	if client == nil {
		t.Fatal("Expected client to be created")
	}

	if client.baseURL != "http://localhost:8080" {
		t.Errorf("Expected trailing slash trimmed, got %s", client.baseURL)
	}

	if client.httpClient == nil {
		t.Error("Expected HTTP client to be initialized")
	}

	if client.GetMCPServer() == nil {
		t.Error("Expected MCP server to be initialized")
	}
}

func TestClient_apiCall(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Expected JSON content type, got %q", r.Header.Get("Content-Type"))
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"echo": body["direction"]})
	}))
	defer server.Close()

	client := NewClient(server.URL)

	var response map[string]interface{}
	err := client.apiCall(context.Background(), "POST", "/api/echo", map[string]string{"direction": "up"}, &response)
	if err != nil {
		t.Fatalf("apiCall failed: %v", err)
	}

	if response["echo"] != "up" {
		t.Errorf("Expected echo up, got %v", response["echo"])
	}
}

func TestClient_apiCall_Error(t *testing.T) {
	client := NewClient("http://invalid-url-that-does-not-exist:9999")

	if err := client.apiCall(context.Background(), "GET", "/api/health", nil, nil); err == nil {
		t.Error("Expected error for invalid URL")
	}
}

func TestClient_apiCall_HTTPError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{name: "plain body", status: http.StatusInternalServerError, body: "Internal Server Error", expected: "API error: 500"},
		{name: "json error", status: http.StatusNotFound, body: `{"error":"session \"zz99\": session not found"}`, expected: "session not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL)
			err := client.apiCall(context.Background(), "GET", "/api/sessions/zz99", nil, nil)
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.expected) {
				t.Errorf("Expected %q in error, got: %v", tt.expected, err)
			}
		})
	}
}

func TestClient_createSession(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "POST" || r.URL.Path != "/api/sessions" {
			t.Errorf("Expected POST /api/sessions, got %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)

		manual, _ := gotBody["manual"].(bool)
		resp := service.SessionInfo{
			ID:           "ab12",
			DifficultyID: "medium",
			Manual:       manual,
			GameState:    &engine.GameState{},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, err := client.handleCreateSession(context.Background(), callTool("create_session", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("createSession failed: %v", err)
	}

	text := resultText(t, result)
	if !strings.Contains(text, "ab12") || !strings.Contains(text, "manual") {
		t.Errorf("Expected manual session ab12 in result, got: %s", text)
	}
	if gotBody["manual"] != true {
		t.Errorf("Expected sessions to be manual by default, got body %v", gotBody)
	}

	result, _ = client.handleCreateSession(context.Background(), callTool("create_session", map[string]interface{}{
		"difficulty": "hard",
		"realtime":   true,
	}))
	if gotBody["manual"] != false || gotBody["difficulty"] != "hard" {
		t.Errorf("Expected realtime hard session, got body %v", gotBody)
	}
	if text := resultText(t, result); !strings.Contains(text, "realtime") {
		t.Errorf("Expected realtime mode in result, got: %s", text)
	}
}

func TestClient_requiresSessionID(t *testing.T) {
	client := NewClient("http://localhost:8080")

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){
		"game_state":    client.handleGameState,
		"start_game":    client.handleStartGame,
		"set_direction": client.handleSetDirection,
		"step":          client.handleStep,
		"toggle_pause":  client.handleTogglePause,
		"stop_game":     client.handleStopGame,
	}

	for name, handler := range handlers {
		t.Run(name, func(t *testing.T) {
			result, err := handler(context.Background(), callTool(name, map[string]interface{}{}))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !result.IsError {
				t.Error("Expected tool error result")
			}
			if text := resultText(t, result); !strings.Contains(text, "session_id is required") {
				t.Errorf("Unexpected message: %s", text)
			}
		})
	}
}

// fakeAPI serves the endpoints used by the step tool
type fakeAPI struct {
	mu         sync.Mutex
	steps      int
	gameOverAt int
	directions []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/api/sessions/ab12/direction":
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		f.directions = append(f.directions, body["direction"])
		json.NewEncoder(w).Encode(service.DirectionResult{Accepted: true, Direction: body["direction"], GameState: runningState()})
	case "/api/sessions/ab12/step":
		f.steps++
		state := runningState()
		state.Snake[0].Y -= f.steps
		res := service.StepResult{Result: engine.ResultMoved, GameState: state}
		if f.steps == f.gameOverAt {
			state.Running = false
			state.GameOver = true
			state.GameOverReason = engine.ReasonWall
			res.Result = engine.ResultGameOver
			res.Events = []service.GameEvent{{Type: "game_over"}}
		}
		json.NewEncoder(w).Encode(res)
	default:
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
	}
}

func TestClient_step(t *testing.T) {
	tests := []struct {
		name          string
		args          map[string]interface{}
		gameOverAt    int
		expectedSteps int
		expectedTurns int
		contains      []string
	}{
		{
			name:          "single step",
			args:          map[string]interface{}{"session_id": "ab12"},
			expectedSteps: 1,
			contains:      []string{"Steps: 1/1", "1. moved head=(10,9)"},
		},
		{
			name:          "turn then several steps",
			args:          map[string]interface{}{"session_id": "ab12", "direction": "up", "steps": float64(3), "intent": "head for the food"},
			expectedSteps: 3,
			expectedTurns: 1,
			contains:      []string{"✓ Turn up queued", "Steps: 3/3", "3. moved head=(10,7)"},
		},
		{
			name:          "stops at game over",
			args:          map[string]interface{}{"session_id": "ab12", "steps": float64(10)},
			gameOverAt:    2,
			expectedSteps: 2,
			contains:      []string{"Steps: 2/10", "2. game_over", "[game_over]", "💀 GAME OVER (wall)"},
		},
		{
			name:          "steps are capped",
			args:          map[string]interface{}{"session_id": "ab12", "steps": float64(500)},
			expectedSteps: maxStepsPerCall,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{gameOverAt: tt.gameOverAt}
			server := httptest.NewServer(api)
			defer server.Close()

			client := NewClient(server.URL)
			result, err := client.handleStep(context.Background(), callTool("step", tt.args))
			if err != nil {
				t.Fatalf("step failed: %v", err)
			}
			text := resultText(t, result)

			if api.steps != tt.expectedSteps {
				t.Errorf("Expected %d steps, got %d", tt.expectedSteps, api.steps)
			}
			if len(api.directions) != tt.expectedTurns {
				t.Errorf("Expected %d turns, got %d", tt.expectedTurns, len(api.directions))
			}
			for _, want := range tt.contains {
				if !strings.Contains(text, want) {
					t.Errorf("Expected %q in output, got:\n%s", want, text)
				}
			}
		})
	}
}

func TestClient_stepRealtimeSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": service.ErrRealtimeSession.Error()})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.handleStep(context.Background(), callTool("step", map[string]interface{}{"session_id": "ab12"}))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.IsError {
		t.Error("Expected tool error for realtime session")
	}
}

func TestFormatGameState(t *testing.T) {
	result := formatGameState(runningState())

	expectedFields := []string{
		"Score: 2",
		"Level: 1",
		"Length: 3",
		"Speed: 150ms",
		"Head: (10,10) moving right",
		"Food: (14,10) distance 4",
		"Safe: up, down, right",
		"........SSH...F.....",
	}

	for _, field := range expectedFields {
		if !strings.Contains(result, field) {
			t.Errorf("Expected field '%s' in formatted output, got:\n%s", field, result)
		}
	}
}

func TestFormatGameState_GameOver(t *testing.T) {
	state := runningState()
	state.Running = false
	state.GameOver = true
	state.GameOverReason = engine.ReasonSelf
	state.NewHighScore = true

	result := formatGameState(state)

	if !strings.Contains(result, "💀 GAME OVER (self)") {
		t.Errorf("Expected game over line, got: %s", result)
	}
	if !strings.Contains(result, "NEW HIGH SCORE") {
		t.Errorf("Expected new high score line, got: %s", result)
	}
	if strings.Contains(result, "Safe:") {
		t.Errorf("Safe directions should not be listed after game over: %s", result)
	}
}

func TestFormatGameState_Nil(t *testing.T) {
	if got := formatGameState(nil); got != "No game state available" {
		t.Errorf("Unexpected output for nil state: %s", got)
	}
}

func TestFormatDirectionResult(t *testing.T) {
	accepted := formatDirectionResult(&service.DirectionResult{Accepted: true, Direction: "up"})
	if !strings.Contains(accepted, "✓ Turn up queued") {
		t.Errorf("Unexpected accepted output: %s", accepted)
	}

	rejected := formatDirectionResult(&service.DirectionResult{
		Accepted:  false,
		Direction: "left",
		GameState: runningState(),
	})
	if !strings.Contains(rejected, "✗ Turn left ignored") || !strings.Contains(rejected, "moving right") {
		t.Errorf("Unexpected rejected output: %s", rejected)
	}
}

func TestClient_handleGameInstructions(t *testing.T) {
	client := NewClient("http://localhost:8080")

	result, err := client.handleGameInstructions(context.Background(), callTool("game_instructions", map[string]interface{}{}))
	if err != nil {
		t.Fatalf("handleGameInstructions failed: %v", err)
	}

	text := resultText(t, result)
	expectedContent := []string{
		"Snake Game - Complete Instructions",
		"GAME OBJECTIVE:",
		"BOARD LEGEND:",
		"GAME MECHANICS:",
		"LEVELS AND SPEED:",
		"MOVEMENT COMMANDS:",
		"AI AGENTS - STRATEGY NOTES:",
		"CRITICAL PITFALLS TO AVOID:",
		"GAME OVER:",
	}

	for _, content := range expectedContent {
		if !strings.Contains(text, content) {
			t.Errorf("Expected '%s' in instructions", content)
		}
	}
}

func TestClient_listDifficultiesAndHighScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/difficulties":
			json.NewEncoder(w).Encode([]service.DifficultyInfo{
				{DifficultyID: "easy", Name: "Easy", InitialSpeedMs: 200, SpeedDecrementMs: 3, LevelThreshold: 5},
			})
		case "/api/highscore":
			json.NewEncoder(w).Encode(service.HighScoreInfo{Key: "snakeHighScore", Score: 31})
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)

	result, _ := client.handleListDifficulties(context.Background(), callTool("list_difficulties", nil))
	if text := resultText(t, result); !strings.Contains(text, "easy (Easy)") || !strings.Contains(text, "200ms per tick, -3ms every 5 points") {
		t.Errorf("Unexpected difficulties output: %s", text)
	}

	result, _ = client.handleHighScore(context.Background(), callTool("high_score", nil))
	if text := resultText(t, result); text != "High score: 31" {
		t.Errorf("Unexpected high score output: %s", text)
	}
}
