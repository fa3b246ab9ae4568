// Package scheduler runs a game's periodic tick.
//
// A Scheduler owns one goroutine with a time.Ticker. The period can be
// changed while running (the game speeds up on every level) and the tick
// function can end the loop by returning false, which is how a finished
// run stops its own clock.
//
//	s := scheduler.New(func() bool {
//		return gameEngine.Tick() != engine.ResultGameOver
//	})
//	s.Start(150 * time.Millisecond)
//	defer s.Stop()
package scheduler
