// Package api provides HTTP REST API handlers for the Snake game.
//
// The api package implements:
//   - Session management endpoints
//   - Game control endpoints (start, direction, pause, stop, step)
//   - Raw input normalization for key, button and swipe events
//   - Difficulty listing and lookup
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"difficulty": "hard", "manual": true})
//   - GET /api/sessions - List sessions (?sort=created|accessed|score&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session and stop its clock
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current game state
//   - GET /api/sessions/{id}/board - Board as text rows
//   - POST /api/sessions/{id}/start - Start a run ({"difficulty": "easy"} optional)
//   - POST /api/sessions/{id}/direction - Queue a turn ({"direction": "up"})
//   - POST /api/sessions/{id}/pause - Toggle pause
//   - POST /api/sessions/{id}/stop - Return to the menu
//   - POST /api/sessions/{id}/step - Advance a manual session by one tick
//   - POST /api/sessions/{id}/input - Apply a raw input ({"type": "key", "key": "ArrowUp"})
//   - POST /api/sessions/{id}/sound - Toggle sound events
//
// Difficulties and scores:
//   - GET /api/difficulties - List difficulty profiles
//   - GET /api/difficulties/{name} - Get one profile
//   - GET /api/highscore - Persisted best score
//
// WebSocket:
//   - GET /ws?session={id} - State updates for a session. Clients may send
//     input messages in the same shape as POST /input.
//
// Error Handling:
//
// Errors are returned as JSON with an HTTP status derived from the
// underlying error: 404 for unknown sessions and difficulties, 409 when
// stepping a realtime session, 400 for invalid directions and inputs.
//
//	{"error": "session \"zz99\": session not found"}
package api
