// Command validate checks the board presets in a config directory
// (../configs by default). For every *.json file it checks:
//   - JSON structure and known keys, flagging keys left over from older formats
//   - Engine validation (name, description, grid size, edit cap)
//   - Required message keys and their format placeholders
//   - Playability: a fresh board has a first move for the selector
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wraith4081/2048/game/engine"
	"github.com/wraith4081/2048/game/selector"
)

// knownKeys are the top-level keys a preset may carry
var knownKeys = map[string]bool{
	"name":           true,
	"description":    true,
	"grid_size":      true,
	"max_edit_value": true,
	"messages":       true,
}

// legacyKeys belonged to the map-based config format and are rejected
var legacyKeys = map[string]bool{
	"layout":               true,
	"legend":               true,
	"max_battery":          true,
	"starting_battery":     true,
	"wall_crash_ends_game": true,
}

// requiredMessages lists every message key with the placeholders it must carry
var requiredMessages = []struct {
	Key         string
	Placeholder string
}{
	{"welcome", ""},
	{"game_over", ""},
	{"no_moves", ""},
	{"board_full", ""},
	{"ai_selected", "%s"},
	{"cant_move", ""},
	{"score", "%d"},
}

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single preset file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		switch {
		case legacyKeys[key]:
			result.fail("Legacy key %q is not part of the board preset format", key)
		case !knownKeys[key]:
			result.fail("Unknown key %q", key)
		}
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid config: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%v", err)
	}

	var messages map[string]string
	if rawMessages, ok := raw["messages"]; ok {
		if err := json.Unmarshal(rawMessages, &messages); err != nil {
			result.fail("messages must be an object of strings: %v", err)
		}
	}
	for _, msg := range checkMessages(messages) {
		result.fail("%s", msg)
	}
	if !result.Valid {
		return result
	}

	result.Errors = append(result.Errors, checkPlayable(&config)...)

	name := strings.TrimSuffix(result.File, filepath.Ext(result.File))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
	if config.Name != name {
		result.Errors = append(result.Errors, fmt.Sprintf("⚠ Name differs from file name %q", name))
	}
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d", config.GridSize, config.GridSize))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Edit cap: %d", config.EditCap()))
	result.Errors = append(result.Errors, fmt.Sprintf("✓ Messages: %d", len(messages)))

	return result
}

// checkMessages returns one error per missing, unknown or malformed message
func checkMessages(messages map[string]string) []string {
	var errs []string
	known := make(map[string]bool, len(requiredMessages))

	for _, req := range requiredMessages {
		known[req.Key] = true
		text, ok := messages[req.Key]
		if !ok || text == "" {
			errs = append(errs, fmt.Sprintf("Missing required message: %s", req.Key))
			continue
		}

		verbs := strings.Count(text, "%") - 2*strings.Count(text, "%%")
		switch {
		case req.Placeholder == "" && strings.Contains(text, "%"):
			errs = append(errs, fmt.Sprintf("Message %s must not contain format verbs", req.Key))
		case req.Placeholder != "" && (verbs != 1 || strings.Count(text, req.Placeholder) != 1):
			errs = append(errs, fmt.Sprintf("Message %s must contain exactly one %s", req.Key, req.Placeholder))
		}
	}

	extra := []string{}
	for key := range messages {
		if !known[key] {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		errs = append(errs, fmt.Sprintf("Unknown message: %s", key))
	}

	return errs
}

// checkPlayable starts a seeded game on the preset and asks the selector for
// a first move
func checkPlayable(config *engine.GameConfig) []string {
	e, err := engine.NewEngine(config, engine.WithSource(engine.NewSeededSource(1)))
	if err != nil {
		return []string{fmt.Sprintf("⚠ Playability not checked: %v", err)}
	}
	if e.IsGameOver() {
		return []string{"⚠ Playability: the opening board is already over"}
	}

	dir, ok := selector.New().BestMove(e.GetState())
	if !ok {
		return []string{"⚠ Playability: no opening move can change the board"}
	}
	return []string{fmt.Sprintf("✓ Playability: opening move %s", dir.Title())}
}

// validateDir validates every *.json preset in dir, in name order
func validateDir(dir string) ([]ValidationResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no *.json files in %s", dir)
	}
	sort.Strings(files)

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateConfig(file))
	}
	return results, nil
}

// printReport writes one block per file and reports whether all passed
func printReport(out io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(out, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(out, "✅ VALID")
			for _, info := range result.Errors {
				fmt.Fprintln(out, "  "+info)
			}
		} else {
			fmt.Fprintln(out, "❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") && !strings.HasPrefix(err, "⚠") {
					fmt.Fprintln(out, "  ❌ "+err)
				}
			}
		}
	}

	fmt.Fprintf(out, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(out, "✅ All configurations are valid!")
	} else {
		fmt.Fprintln(out, "❌ Some configurations have errors")
	}
	return allValid
}

// main validates the presets in -dir and exits non-zero if any are invalid
func main() {
	configDir := flag.String("dir", "../configs", "Directory containing board presets")
	flag.Parse()
	if flag.NArg() > 0 {
		*configDir = flag.Arg(0)
	}

	results, err := validateDir(*configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}

	if !printReport(os.Stdout, results) {
		os.Exit(1)
	}
}
