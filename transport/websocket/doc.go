// Package websocket provides WebSocket transport for the Snake game.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - State and sound event broadcasting
//   - Client input forwarding
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. The hub's event loop owns the session map; each
// client has a read pump and a write pump goroutine.
//
// Message Protocol:
//
// Outgoing messages carry the session ID and either a game state or an event:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "sound", "data": "ate"}
//	{"session_id": "ab12", "event": "error", "data": "unknown input: key \"F5\""}
//
// Incoming messages are raw inputs, handed to the function set with OnInput:
//
//	{"type": "key", "key": "ArrowUp"}
//	{"type": "button", "button": "pause"}
//	{"type": "swipe", "dx": -80, "dy": 12}
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.OnInput(applyInput)
//	go hub.Run()
//	defer hub.Stop()
//
// Concurrency:
//
// BroadcastToSession and BroadcastEvent are called from game tick
// goroutines. They queue the message for the event loop and never block;
// when the queue is full the message is dropped and logged.
package websocket
