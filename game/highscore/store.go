package highscore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

var (
	ErrInvalidKey   = errors.New("high score key cannot be empty")
	ErrInvalidScore = errors.New("high score cannot be negative")
)

// Store persists one high score per game identity
type Store interface {
	// Load returns the stored score for key, 0 if none was saved
	Load(key string) (int, error)

	// Save stores score for key
	Save(key string, score int) error
}

// FileStore implements Store on a single JSON file of the form {"key": score}
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a file-backed store, creating the parent directory if needed.
// The file itself is written on the first Save.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("high score file path cannot be empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create high score directory: %w", err)
	}

	return &FileStore{path: path}, nil
}

// Path returns the backing file path
func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads the score for key
func (fs *FileStore) Load(key string) (int, error) {
	if key == "" {
		return 0, ErrInvalidKey
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	scores, err := fs.readLocked()
	if err != nil {
		return 0, err
	}
	return scores[key], nil
}

// Save writes the score for key, keeping the other keys in the file
func (fs *FileStore) Save(key string, score int) error {
	if key == "" {
		return ErrInvalidKey
	}
	if score < 0 {
		return ErrInvalidScore
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	scores, err := fs.readLocked()
	if err != nil {
		return err
	}
	scores[key] = score

	jsonData, err := json.MarshalIndent(scores, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal high scores: %w", err)
	}

	// Write to a temp file and rename so a crash never leaves a torn file
	tmp, err := os.CreateTemp(filepath.Dir(fs.path), ".highscore-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(jsonData); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write high score file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close high score file: %w", err)
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace high score file: %w", err)
	}

	return nil
}

// Keys returns all stored keys in sorted order
func (fs *FileStore) Keys() ([]string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	scores, err := fs.readLocked()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (fs *FileStore) readLocked() (map[string]int, error) {
	scores := make(map[string]int)

	jsonData, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return scores, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read high score file: %w", err)
	}
	if len(jsonData) == 0 {
		return scores, nil
	}

	if err := json.Unmarshal(jsonData, &scores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal high scores: %w", err)
	}
	return scores, nil
}

// MemoryStore is an in-process Store
type MemoryStore struct {
	mu     sync.Mutex
	scores map[string]int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{scores: make(map[string]int)}
}

// Load returns the score for key
func (ms *MemoryStore) Load(key string) (int, error) {
	if key == "" {
		return 0, ErrInvalidKey
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.scores[key], nil
}

// Save stores score for key
func (ms *MemoryStore) Save(key string, score int) error {
	if key == "" {
		return ErrInvalidKey
	}
	if score < 0 {
		return ErrInvalidScore
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.scores[key] = score
	return nil
}
