// Package mcp provides a Model Context Protocol server for the Snake game.
//
// The mcp package implements:
//   - MCP tool server for AI agent integration
//   - Tool definitions that proxy the REST API
//   - Text renderings of the board tuned for language models
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - create_session: Create a session (manual unless realtime is requested)
//   - list_sessions, get_session, delete_session: Session management
//   - start_game: Start or restart a run
//   - set_direction: Queue a turn for the next tick
//   - step: Optionally turn, then advance a manual session up to 20 ticks
//   - game_state: Board, HUD and safe directions
//   - toggle_pause, stop_game: Pause or end a run
//   - list_difficulties, high_score: Speed profiles and best score
//   - game_instructions: Rules and strategy notes
//
// Manual Sessions:
//
// Agents are slower than a realtime clock, so create_session defaults to a
// manual session whose time advances only through step. Realtime sessions
// reject step with an error.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := server.ServeStdio(client.GetMCPServer()); err != nil {
//		log.Fatal(err)
//	}
package mcp
