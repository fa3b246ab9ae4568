// Package highscore persists the best score reached in the game.
//
// A Store keeps one integer per game identity. FileStore writes a small JSON
// object to disk, replacing the file atomically on every save, and
// MemoryStore serves tests and ephemeral servers. Keeper binds a store to a
// single key and plugs into the engine as its ScoreKeeper:
//
//	store, err := highscore.NewFileStore("data/highscores.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//	keeper := highscore.NewKeeper(store, highscore.DefaultKey)
//	gameEngine, _ := engine.NewEngine(difficulty, engine.WithScoreKeeper(keeper))
package highscore
