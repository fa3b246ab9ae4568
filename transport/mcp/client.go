package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/mcp-training/snakegame/game/engine"
	"github.com/wricardo/mcp-training/snakegame/game/service"
)

// maxStepsPerCall bounds the steps tool so one call cannot run a whole game
const maxStepsPerCall = 20

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Snake Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Snake Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Steer the snake (H head, S body) to the food (F) on a 20x20 board. Each
food grows the snake by one and scores a point. Hitting a wall or the
snake's own body ends the run.

AVAILABLE TOOLS:
- create_session: Create a game session (manual by default, so you control time)
- start_game: Start or restart a run
- set_direction: Queue a turn for the next tick - requires intent explanation
- step: Advance a manual session one or more ticks, optionally turning first
- game_state: Board, score, level and safe directions
- toggle_pause / stop_game: Pause or end a run
- get_session / list_sessions / delete_session: Session management
- list_difficulties: Speed profiles
- high_score: Best score so far
- game_instructions: Full rules and strategy notes

NOTE: The 'intent' parameter on set_direction/step serves as rubber duck debugging - explain your reasoning!`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func directionProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"enum":        []string{"up", "down", "left", "right"},
		"description": description,
	}
}

func sessionOnlySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": sessionIDProperty(),
		},
		Required: []string{"session_id"},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session with optional difficulty selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"difficulty": map[string]interface{}{
					"type":        "string",
					"description": "Difficulty to use (optional, see list_difficulties)",
				},
				"realtime": map[string]interface{}{
					"type":        "boolean",
					"description": "Let the server clock drive the snake instead of calling step (default false)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionOnlySchema(),
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "Delete a session and stop its clock",
		InputSchema: sessionOnlySchema(),
	}, c.handleDeleteSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current game state with the board",
		InputSchema: sessionOnlySchema(),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start a new run, optionally switching difficulty",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"difficulty": map[string]interface{}{
					"type":        "string",
					"description": "Difficulty for this run (optional, keeps the current one)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleStartGame)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "set_direction",
		Description: "Queue the direction the snake takes on the next tick. Reversing is ignored.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction":  directionProperty("Direction to turn"),
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this turn (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleSetDirection)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "step",
		Description: "Advance a manual session by one or more ticks, stopping early when the game ends",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction":  directionProperty("Turn to queue before the first tick (optional)"),
				"steps": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Number of ticks to advance (default 1, max %d)", maxStepsPerCall),
					"minimum":     1,
					"maximum":     maxStepsPerCall,
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind these steps (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleStep)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "toggle_pause",
		Description: "Pause or resume a running game",
		InputSchema: sessionOnlySchema(),
	}, c.handleTogglePause)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "stop_game",
		Description: "End the current run and return to the menu",
		InputSchema: sessionOnlySchema(),
	}, c.handleStopGame)

	// Difficulties and scores
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_difficulties",
		Description: "List available difficulty profiles",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListDifficulties)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "high_score",
		Description: "Get the persisted high score",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleHighScore)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get comprehensive game instructions and rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// arguments returns the tool call arguments as a map
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	if args == nil {
		return map[string]interface{}{}
	}
	return args
}

// requireSessionID extracts session_id or returns a tool error result
func requireSessionID(args map[string]interface{}) (string, *mcp.CallToolResult) {
	sessionID, _ := args["session_id"].(string)
	if strings.TrimSpace(sessionID) == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return sessionID, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	difficulty, _ := args["difficulty"].(string)
	realtime, _ := args["realtime"].(bool)

	body := map[string]interface{}{"manual": !realtime}
	if difficulty != "" {
		body["difficulty"] = difficulty
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	mode := "manual (call step to advance)"
	if !session.Manual {
		mode = "realtime (server clock)"
	}
	result := fmt.Sprintf("Created session: %s\nDifficulty: %s\nMode: %s\n\nCall start_game to begin.",
		session.ID, session.DifficultyID, mode)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Active Sessions (%d):\n\n", response.Count))
	for _, s := range response.Sessions {
		status := "idle"
		score := 0
		if s.GameState != nil {
			score = s.GameState.Score
			status = statusLabel(s.GameState)
		}
		result.WriteString(fmt.Sprintf("- %s (Difficulty: %s, Status: %s, Score: %d, Created: %s)\n",
			s.ID, s.DifficultyID, status, score, s.CreatedAt.Format("15:04:05")))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSessionID(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSessionID(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	if err := c.apiCall(ctx, "DELETE", sessionPath(sessionID, ""), nil, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Session %s deleted", sessionID)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSessionID(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(&state)), nil
}

func (c *Client) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSessionID(args)
	if errResult != nil {
		return errResult, nil
	}
	difficulty, _ := args["difficulty"].(string)

	var state engine.GameState
	body := map[string]string{"difficulty": difficulty}
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/start"), body, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Game started\n\n" + formatGameState(&state)), nil
}

func (c *Client) handleSetDirection(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSessionID(args)
	if errResult != nil {
		return errResult, nil
	}
	direction, _ := args["direction"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = args["intent"]

	var result service.DirectionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/direction"), map[string]string{"direction": direction}, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatDirectionResult(&result)), nil
}

func (c *Client) handleStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSessionID(args)
	if errResult != nil {
		return errResult, nil
	}
	direction, _ := args["direction"].(string)

	steps := 1
	if n, ok := args["steps"].(float64); ok {
		steps = int(n)
	}
	if steps < 1 {
		steps = 1
	}
	if steps > maxStepsPerCall {
		steps = maxStepsPerCall
	}

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = args["intent"]

	var turn *service.DirectionResult
	if direction != "" {
		turn = &service.DirectionResult{}
		if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/direction"), map[string]string{"direction": direction}, turn); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	results := make([]*service.StepResult, 0, steps)
	for i := 0; i < steps; i++ {
		var result service.StepResult
		if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/step"), nil, &result); err != nil {
			if len(results) == 0 {
				return mcp.NewToolResultError(err.Error()), nil
			}
			break
		}
		results = append(results, &result)
		if result.Result == engine.ResultGameOver || result.Result == engine.ResultNone {
			break
		}
	}

	return mcp.NewToolResultText(formatStepResults(turn, results, steps)), nil
}

func (c *Client) handleTogglePause(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSessionID(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/pause"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	label := "Resumed"
	if state.Paused {
		label = "Paused"
	} else if !state.Running {
		label = "Nothing to pause: the game is not running"
	}
	return mcp.NewToolResultText(label + "\n\n" + formatGameState(&state)), nil
}

func (c *Client) handleStopGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSessionID(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	var state engine.GameState
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/stop"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Game stopped. Final score: %d", state.Score)), nil
}

func (c *Client) handleListDifficulties(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var difficulties []service.DifficultyInfo
	if err := c.apiCall(ctx, "GET", "/api/difficulties", nil, &difficulties); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result strings.Builder
	result.WriteString("Available Difficulties:\n\n")
	for _, d := range difficulties {
		result.WriteString(fmt.Sprintf("• %s (%s)\n  %s\n  Start: %dms per tick, -%dms every %d points\n\n",
			d.DifficultyID, d.Name, d.Description, d.InitialSpeedMs, d.SpeedDecrementMs, d.LevelThreshold))
	}

	return mcp.NewToolResultText(result.String()), nil
}

func (c *Client) handleHighScore(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var info service.HighScoreInfo
	if err := c.apiCall(ctx, "GET", "/api/highscore", nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("High score: %d", info.Score)), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `🐍 Snake Game - Complete Instructions

GAME OBJECTIVE:
Eat as much food as possible without crashing. Every food eaten adds one
point and one segment to the snake.

BOARD LEGEND:
• H = Snake head
• S = Snake body
• F = Food
• . = Empty cell
The board is 20x20. (0,0) is the top-left corner; x grows to the right and
y grows downward. "up" decreases y.

GAME MECHANICS:
• Each tick the head moves one cell in the current direction
• A turn queued with set_direction is applied on the next tick
• Reversing straight into the body (e.g. left while moving right) is ignored
• Eating food grows the snake; otherwise the tail follows the head
• Leaving the board or touching any body segment ends the run
• The cell the tail is leaving still counts as body for that tick

LEVELS AND SPEED:
• The level rises every N points (N depends on the difficulty)
• Each level makes ticks faster, down to 50ms per tick
• In manual sessions speed does not matter: time only moves when you call step

MOVEMENT COMMANDS:
• set_direction: queue a turn without advancing time
• step: optionally turn, then advance 1-20 ticks; stops early on game over
• game_state: shows the board plus the directions that survive the next tick

AI AGENTS - STRATEGY NOTES:
1. Read the "Safe" line before every step; it lists turns that do not crash immediately
2. Prefer short step batches near walls or your own body
3. Compare head and food coordinates to pick the axis to close first
4. As the snake grows, avoid enclosing yourself: leave a path back to open space
5. Explain each turn in the intent parameter

CRITICAL PITFALLS TO AVOID:
• Forgetting that the tail cell is not free on the tick you move into it
• Batching many steps without checking where the head will end up
• Calling step on a realtime session (use a manual session instead)

GAME OVER:
• The reason is reported as wall, self or board_full
• Call start_game to play again; the high score is kept

Good luck, and keep that snake fed!`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func statusLabel(state *engine.GameState) string {
	switch {
	case state.GameOver:
		return "game over"
	case state.Running && state.Paused:
		return "paused"
	case state.Running:
		return "running"
	default:
		return "menu"
	}
}

func formatSessionInfo(session *service.SessionInfo) string {
	mode := "realtime"
	if session.Manual {
		mode = "manual"
	}
	return fmt.Sprintf("Session: %s\nDifficulty: %s\nMode: %s\nCreated: %s\n\n%s",
		session.ID, session.DifficultyID, mode,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var result strings.Builder

	result.WriteString(fmt.Sprintf("Score: %d | Level: %d | Length: %d | High: %d | Speed: %dms\n",
		state.Score, state.Level, len(state.Snake), state.HighScore, state.IntervalMs))

	if len(state.Snake) > 0 {
		head := state.Head()
		result.WriteString(fmt.Sprintf("Head: (%d,%d) moving %s | Food: (%d,%d) distance %d\n",
			head.X, head.Y, state.Direction, state.Food.X, state.Food.Y,
			engine.ManhattanDistance(head, state.Food)))

		if state.Running && !state.Paused {
			safe := engine.SafeDirections(state)
			names := make([]string, 0, len(safe))
			for _, d := range safe {
				names = append(names, d.String())
			}
			if len(names) == 0 {
				result.WriteString("Safe: none\n")
			} else {
				result.WriteString("Safe: " + strings.Join(names, ", ") + "\n")
			}
		}
	}
	result.WriteString("\n")

	for _, row := range engine.RenderBoard(state) {
		result.WriteString(row)
		result.WriteString("\n")
	}

	switch {
	case state.GameOver:
		result.WriteString(fmt.Sprintf("\n💀 GAME OVER (%s)", state.GameOverReason))
		if state.NewHighScore {
			result.WriteString("\n🏆 NEW HIGH SCORE!")
		}
	case state.Paused:
		result.WriteString("\n⏸ PAUSED")
	case !state.Running:
		result.WriteString("\nNot running - call start_game")
	}

	if state.Message != "" {
		result.WriteString(fmt.Sprintf("\nMessage: %s", state.Message))
	}

	return result.String()
}

func formatDirectionResult(result *service.DirectionResult) string {
	if result.Accepted {
		return fmt.Sprintf("✓ Turn %s queued for the next tick", result.Direction)
	}
	current := "its current direction"
	if result.GameState != nil {
		current = result.GameState.Direction.String()
	}
	return fmt.Sprintf("✗ Turn %s ignored: cannot reverse while moving %s", result.Direction, current)
}

func formatStepResults(turn *service.DirectionResult, results []*service.StepResult, requested int) string {
	var out strings.Builder

	if turn != nil {
		out.WriteString(formatDirectionResult(turn))
		out.WriteString("\n")
	}

	if len(results) == 0 {
		out.WriteString("No steps executed")
		return out.String()
	}

	out.WriteString(fmt.Sprintf("Steps: %d/%d\n", len(results), requested))
	for i, r := range results {
		line := fmt.Sprintf("%d. %s", i+1, r.Result)
		if r.GameState != nil && len(r.GameState.Snake) > 0 {
			head := r.GameState.Head()
			line += fmt.Sprintf(" head=(%d,%d)", head.X, head.Y)
		}
		for _, ev := range r.Events {
			line += " [" + ev.Type + "]"
		}
		out.WriteString(line + "\n")
	}

	last := results[len(results)-1]
	if last.Result == engine.ResultNone {
		out.WriteString("\nThe game is not advancing (not started, paused or over)\n")
	}
	out.WriteString("\n")
	out.WriteString(formatGameState(last.GameState))
	return out.String()
}
