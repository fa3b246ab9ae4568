// Package engine provides the core game logic for the Snake game.
//
// The engine package implements the game mechanics including:
//   - Grid movement on a fixed 20x20 board
//   - Wall and self collision detection
//   - Food placement, scoring and growth
//   - Difficulty-driven levels and tick speed
//   - High score evaluation at the end of a run
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState holds the snake, food, score, level
// and run flags, while Difficulty defines the speed and level profile
// selected before a run.
//
// Usage:
//
//	difficulty, err := engine.LookupDifficulty("medium")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(difficulty)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine.Start(nil)
//	gameEngine.SetDirection(engine.Up)
//	result := gameEngine.Tick()
//	state := gameEngine.GetState()
//
// Game Rules:
//
// The snake moves one cell per tick in its current direction and can never
// reverse onto itself in a single tick. Eating food grows the snake by one
// cell and scores a point; every level threshold reached makes the ticks
// faster, down to 50ms. Leaving the board or running into the snake body
// ends the run.
package engine
