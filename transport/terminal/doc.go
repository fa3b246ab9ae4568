// Package terminal plays the Snake game in a terminal using tcell.
//
// A Game owns a local engine and scheduler. The scheduler ticks the engine
// on its own goroutine and posts a redraw event to the screen; the key loop
// in Run applies commands through the same gating rules as the network
// transports (package input). Sound events ring the terminal bell.
//
//	keeper := highscore.NewKeeper(store, "")
//	d, _ := engine.LookupDifficulty("medium")
//	if err := terminal.Play(ctx, d, keeper); err != nil {
//		log.Fatal(err)
//	}
package terminal
