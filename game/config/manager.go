package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/mcp-training/snakegame/game/engine"
	"github.com/wricardo/mcp-training/snakegame/game/service"
)

var (
	ErrConfigNotFound = errors.New("difficulty not found")
	ErrInvalidConfig  = errors.New("invalid difficulty")
)

// Manager handles difficulty profile loading and caching
type Manager struct {
	configDir         string
	defaultDifficulty *engine.Difficulty
	difficulties      map[string]*engine.Difficulty
	mu                sync.RWMutex
}

// NewManager creates a new difficulty manager over the JSON files in configDir
func NewManager(configDir string) (*Manager, error) {
	// Ensure config directory exists
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir:    configDir,
		difficulties: make(map[string]*engine.Difficulty),
	}

	if err := m.loadDefaultDifficulty(); err != nil {
		return nil, fmt.Errorf("failed to load default difficulty: %w", err)
	}

	return m, nil
}

// LoadDifficulty loads a difficulty by name. Files in the config directory
// take precedence over the built-in profiles of the same name.
func (m *Manager) LoadDifficulty(name string) (*engine.Difficulty, error) {
	id := normalizeName(name)
	if id == "" {
		return nil, fmt.Errorf("%w: empty name", ErrConfigNotFound)
	}

	m.mu.RLock()
	// Check cache first
	if d, exists := m.difficulties[id]; exists {
		m.mu.RUnlock()
		return copyDifficulty(d), nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if d, exists := m.difficulties[id]; exists {
		return copyDifficulty(d), nil
	}

	d, err := m.readDifficultyLocked(id)
	if err != nil {
		return nil, err
	}

	m.difficulties[id] = d
	return copyDifficulty(d), nil
}

// readDifficultyLocked reads id from disk, falling back to the built-in profiles
func (m *Manager) readDifficultyLocked(id string) (*engine.Difficulty, error) {
	configPath := filepath.Join(m.configDir, id+".json")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read difficulty file: %w", err)
		}

		builtin, lookupErr := engine.LookupDifficulty(id)
		if lookupErr != nil {
			return nil, fmt.Errorf("%w: %q (available: %s)", ErrConfigNotFound, id, strings.Join(m.availableLocked(), ", "))
		}
		return builtin, nil
	}

	var d engine.Difficulty
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, filepath.Base(configPath), err)
	}
	if d.Name == "" {
		d.Name = id
	}

	if err := engine.ValidateDifficulty(&d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &d, nil
}

// ListDifficulties returns information about all available difficulties,
// files first, then built-ins not overridden by a file
func (m *Manager) ListDifficulties() ([]*service.DifficultyInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var infos []*service.DifficultyInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")

		d, err := m.LoadDifficulty(id)
		if err != nil {
			// Skip invalid files
			continue
		}

		seen[normalizeName(id)] = true
		infos = append(infos, newDifficultyInfo(normalizeName(id), entry.Name(), d, false))
	}

	for _, id := range engine.BuiltinDifficultyNames() {
		if seen[id] {
			continue
		}
		d, err := engine.LookupDifficulty(id)
		if err != nil {
			continue
		}
		infos = append(infos, newDifficultyInfo(id, "", d, true))
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].InitialSpeedMs > infos[j].InitialSpeedMs ||
			(infos[i].InitialSpeedMs == infos[j].InitialSpeedMs && infos[i].DifficultyID < infos[j].DifficultyID)
	})

	return infos, nil
}

// GetDefault returns the default difficulty
func (m *Manager) GetDefault() *engine.Difficulty {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyDifficulty(m.defaultDifficulty)
}

// SetDefault sets the default difficulty by name
func (m *Manager) SetDefault(name string) error {
	d, err := m.LoadDifficulty(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultDifficulty = d
	return nil
}

// RefreshCache drops cached difficulties so the next load rereads the files
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.difficulties = make(map[string]*engine.Difficulty)
	m.mu.Unlock()

	return m.loadDefaultDifficulty()
}

// loadDefaultDifficulty selects easy (file or built-in) as the default
func (m *Manager) loadDefaultDifficulty() error {
	d, err := m.LoadDifficulty(engine.DefaultDifficulty)
	if err != nil {
		// A broken easy.json must not stop the server; use the built-in
		d, err = engine.LookupDifficulty(engine.DefaultDifficulty)
		if err != nil {
			return err
		}
	}

	m.mu.Lock()
	m.defaultDifficulty = d
	m.mu.Unlock()
	return nil
}

// SaveDifficulty writes a difficulty to disk as <name>.json
func (m *Manager) SaveDifficulty(name string, d *engine.Difficulty) error {
	if err := engine.ValidateDifficulty(d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	id := normalizeName(name)
	if id == "" || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: bad name %q", ErrInvalidConfig, name)
	}

	configPath := filepath.Join(m.configDir, id+".json")

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal difficulty: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write difficulty file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.difficulties[id] = copyDifficulty(d)
	m.mu.Unlock()

	return nil
}

// availableLocked lists loadable names for error messages; caller holds mu
func (m *Manager) availableLocked() []string {
	names := make(map[string]bool)
	for _, n := range engine.BuiltinDifficultyNames() {
		names[n] = true
	}
	if entries, err := os.ReadDir(m.configDir); err == nil {
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
				names[normalizeName(strings.TrimSuffix(entry.Name(), ".json"))] = true
			}
		}
	}

	list := make([]string, 0, len(names))
	for n := range names {
		list = append(list, n)
	}
	sort.Strings(list)
	return list
}

func newDifficultyInfo(id, filename string, d *engine.Difficulty, builtin bool) *service.DifficultyInfo {
	return &service.DifficultyInfo{
		Filename:         filename,
		DifficultyID:     id,
		Name:             d.Name,
		Description:      d.Description,
		InitialSpeedMs:   d.InitialSpeedMs,
		SpeedDecrementMs: d.SpeedDecrementMs,
		LevelThreshold:   d.LevelThreshold,
		Builtin:          builtin,
	}
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), ".json"))
}

func copyDifficulty(d *engine.Difficulty) *engine.Difficulty {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
