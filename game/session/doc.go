// Package session provides session management for the Snake game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Per-session engine and tick scheduler wiring
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the session registry. Each service.Session owns one engine and
// one scheduler; realtime sessions have the engine's speed changes wired to
// the scheduler period, manual sessions are advanced one step at a time by
// the caller.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs generated with crypto/rand. Lookups are
// case-insensitive.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", difficulty, false, service.SessionHooks{
//		OnTick: func(s *service.Session, r engine.Result) { ... },
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess.Engine.Start(nil)
//	sess.Scheduler.Start(sess.Engine.GetInterval())
//
// Cleanup:
//
// Deleting or expiring a session stops its scheduler synchronously, so no
// tick runs after Delete returns. Sessions live in memory only.
package session
