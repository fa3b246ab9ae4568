package highscore

import (
	"log"
	"sync"
)

// DefaultKey identifies the game's high score in a store
const DefaultKey = "snakeHighScore"

// Keeper binds a Store to one key and satisfies engine.ScoreKeeper
type Keeper struct {
	mu    sync.Mutex
	store Store
	key   string
}

// NewKeeper creates a keeper for key, DefaultKey when key is empty
func NewKeeper(store Store, key string) *Keeper {
	if key == "" {
		key = DefaultKey
	}
	return &Keeper{store: store, key: key}
}

// Key returns the game identity the keeper reads and writes
func (k *Keeper) Key() string {
	return k.key
}

// LoadHighScore returns the stored high score. Read failures count as no score.
func (k *Keeper) LoadHighScore() int {
	k.mu.Lock()
	defer k.mu.Unlock()

	score, err := k.store.Load(k.key)
	if err != nil {
		log.Printf("Warning: failed to load high score %q: %v", k.key, err)
		return 0
	}
	return score
}

// SaveHighScore stores score if it beats the stored value. Several sessions
// share one keeper, so a lower score finishing later never overwrites a
// higher one.
func (k *Keeper) SaveHighScore(score int) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	current, err := k.store.Load(k.key)
	if err == nil && score <= current {
		return nil
	}
	return k.store.Save(k.key, score)
}
