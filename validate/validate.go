// Command validate provides a small CLI that validates difficulty JSON files
// in the ../configs directory. It checks:
//   - JSON structure, unknown keys and required fields
//   - Speed and threshold ranges accepted by the engine
//   - File name matching the profile name (the file name is the difficulty id)
//   - Profile names unique across files
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/mcp-training/snakegame/game/engine"
)

// Config mirrors the JSON schema for a difficulty profile. Pointers tell a
// missing field from a zero value.
type Config struct {
	Name             *string `json:"name"`
	Description      string  `json:"description"`
	InitialSpeedMs   *int    `json:"initial_speed_ms"`
	SpeedDecrementMs *int    `json:"speed_decrement_ms"`
	LevelThreshold   *int    `json:"level_threshold"`
}

// ValidationResult captures the outcome of validating a single file.
// Info is only filled for valid files.
type ValidationResult struct {
	File     string
	Name     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single difficulty file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	required := []struct {
		field   string
		missing bool
	}{
		{"name", config.Name == nil},
		{"initial_speed_ms", config.InitialSpeedMs == nil},
		{"speed_decrement_ms", config.SpeedDecrementMs == nil},
		{"level_threshold", config.LevelThreshold == nil},
	}
	for _, r := range required {
		if r.missing {
			result.fail("Missing required field: %s", r.field)
		}
	}
	if !result.Valid {
		return result
	}

	d := &engine.Difficulty{
		Name:             *config.Name,
		Description:      config.Description,
		InitialSpeedMs:   *config.InitialSpeedMs,
		SpeedDecrementMs: *config.SpeedDecrementMs,
		LevelThreshold:   *config.LevelThreshold,
	}
	result.Name = d.Name

	if err := engine.ValidateDifficulty(d); err != nil {
		result.fail("%v", err)
		return result
	}

	id := strings.TrimSuffix(result.File, filepath.Ext(result.File))
	if !strings.EqualFold(id, d.Name) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Name %q differs from file id %q; sessions select it as %q", d.Name, id, strings.ToLower(id)))
	}
	if d.Description == "" {
		result.Warnings = append(result.Warnings, "Description is empty")
	}

	result.Info = append(result.Info,
		fmt.Sprintf("✓ Name: %s", d.Name),
		fmt.Sprintf("✓ Start: %dms, -%dms every %d points", d.InitialSpeedMs, d.SpeedDecrementMs, d.LevelThreshold),
		fmt.Sprintf("✓ Level 5: %dms", engine.IntervalForLevel(d, 5)),
	)
	return result
}

// validateAll validates every file and flags profile names used more than once
func validateAll(files []string) []ValidationResult {
	results := make([]ValidationResult, 0, len(files))
	owners := make(map[string]string)

	for _, file := range files {
		result := validateConfig(file)
		if result.Valid {
			key := strings.ToLower(result.Name)
			if first, ok := owners[key]; ok {
				result.fail("Duplicate name %q (already used by %s)", result.Name, first)
				result.Info = nil
			} else {
				owners[key] = result.File
			}
		}
		results = append(results, result)
	}
	return results
}

// main scans ../configs (or the directory given as the first argument) for
// *.json files and validates each one, printing a concise report and exiting
// with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	allValid := true
	for _, result := range validateAll(files) {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Info {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
		for _, warning := range result.Warnings {
			fmt.Println("  ⚠️  " + warning)
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
