// Package service provides the business logic layer for the Snake game.
//
// The service package implements:
//   - Multi-session game management
//   - Difficulty selection and loading
//   - Realtime tick loops and manual stepping
//   - Input dispatch with the gating rules of package input
//   - High score lookups and state broadcasting
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages difficulty loading and validation.
// Notifier receives state updates and sound events for connected renderers.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP/
// terminal) and the game engine. Each session owns an engine and a
// scheduler. Realtime sessions are ticked by their scheduler and broadcast
// the state after every tick; manual sessions advance only when Step is
// called, which is how agents play through MCP.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr,
//		service.WithNotifier(hub),
//		service.WithScoreKeeper(keeper),
//	)
//
//	info, err := gameService.CreateSession(ctx, "medium", false)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameService.StartGame(ctx, info.ID, "")
//	gameService.SetDirection(ctx, info.ID, "up")
//
// Locking:
//
// Tick callbacks run on scheduler goroutines and never take the service
// lock, so StartGame, StopGame and DeleteSession can wait for an in-flight
// tick while holding it.
package service
