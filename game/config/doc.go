// Package config provides difficulty management for the Snake game.
//
// The config package handles:
//   - Loading difficulty profiles from JSON files
//   - Validation of speed and level parameters
//   - Default difficulty management
//   - Discovery and listing of available profiles
//
// Configuration Format:
//
// Difficulty profiles are stored as JSON files in the configs directory, one
// file per profile named after its lowercase key:
//
//	{
//	  "name": "medium",
//	  "description": "Balanced speed, levels up every 3 points",
//	  "initial_speed_ms": 150,
//	  "speed_decrement_ms": 5,
//	  "level_threshold": 3
//	}
//
// A file overrides the built-in profile of the same name. The built-in
// easy, medium, hard and classic profiles remain available when no file
// exists, and easy is the default.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	difficulty, err := manager.LoadDifficulty("hard")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	difficulties, err := manager.ListDifficulties()
//
// Unknown names fail with ErrConfigNotFound and malformed or out-of-range
// files with ErrInvalidConfig; nothing silently falls back to a default.
package config
