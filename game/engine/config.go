package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidConfig is wrapped by every config validation failure
var ErrInvalidConfig = errors.New("config validation")

// ValidateGameConfig validates a game configuration for correctness and playability
func ValidateGameConfig(config *GameConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}

	// Validate required fields
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfig)
	}
	if config.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidConfig)
	}

	// Validate grid size
	if config.GridSize < MinGridSize || config.GridSize > MaxGridSize {
		return fmt.Errorf("%w: grid_size must be between %d and %d, got %d",
			ErrInvalidConfig, MinGridSize, MaxGridSize, config.GridSize)
	}

	// Edit cap must itself be a tile value
	if config.MaxEditValue > MaxTileValue {
		return fmt.Errorf("%w: max_edit_value must be at most %d, got %d",
			ErrInvalidConfig, MaxTileValue, config.MaxEditValue)
	}
	if config.MaxEditValue != 0 && !IsPowerOfTwo(config.MaxEditValue) {
		return fmt.Errorf("%w: max_edit_value must be a power of two, got %d",
			ErrInvalidConfig, config.MaxEditValue)
	}

	// Validate messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("%w: messages.welcome is required", ErrInvalidConfig)
	}
	if config.Messages.GameOver == "" {
		return fmt.Errorf("%w: messages.game_over is required", ErrInvalidConfig)
	}
	if config.Messages.NoMoves == "" {
		return fmt.Errorf("%w: messages.no_moves is required", ErrInvalidConfig)
	}

	// Validate format strings
	if config.Messages.AISelected != "" && strings.Count(config.Messages.AISelected, "%s") != 1 {
		return fmt.Errorf("%w: messages.ai_selected must contain exactly one %%s for the direction", ErrInvalidConfig)
	}
	if config.Messages.Score != "" && strings.Count(config.Messages.Score, "%d") != 1 {
		return fmt.Errorf("%w: messages.score must contain exactly one %%d for the score", ErrInvalidConfig)
	}

	return nil
}

// LoadGameConfig loads a game configuration from a JSON file
func LoadGameConfig(filename string) (*GameConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", configPath, err)
	}

	if err := ValidateGameConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadConfigByName loads a game configuration by name from the configs directory
func LoadConfigByName(configName string) (*GameConfig, error) {
	if !strings.HasSuffix(configName, ".json") {
		configName = configName + ".json"
	}

	config, err := LoadGameConfig(filepath.Join("configs", configName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file '%s' not found: %w", configName, err)
		}
		return nil, fmt.Errorf("invalid config '%s': %w", configName, err)
	}
	return config, nil
}

// DefaultGameConfig returns the built-in classic 4x4 preset
func DefaultGameConfig() *GameConfig {
	config := &GameConfig{
		Name:         "classic",
		Description:  "Classic 4x4 board driven by the greedy one-move lookahead",
		GridSize:     DefaultGridSize,
		MaxEditValue: MaxEditValue,
	}
	config.Messages.Welcome = "Welcome! Press Enter for an AI move or slide the tiles yourself."
	config.Messages.GameOver = "Game Over!"
	config.Messages.NoMoves = "No possible moves. Game Over!"
	config.Messages.BoardFull = "Board is full. Game Over!"
	config.Messages.AISelected = "AI selected move: %s"
	config.Messages.CantMove = "Nothing moves that way"
	config.Messages.Score = "Score: %d"
	return config
}

// ConfigForSize returns a copy of base with its grid size replaced
func ConfigForSize(base *GameConfig, size int) *GameConfig {
	if base == nil {
		base = DefaultGameConfig()
	}
	config := *base
	config.GridSize = size
	return &config
}

// Message helpers fall back to the built-in preset text when a config leaves
// an optional message out.

func (c *GameConfig) gameOverMessage() string {
	if c == nil || c.Messages.GameOver == "" {
		return DefaultGameConfig().Messages.GameOver
	}
	return c.Messages.GameOver
}

func (c *GameConfig) noMovesMessage() string {
	if c == nil || c.Messages.NoMoves == "" {
		return DefaultGameConfig().Messages.NoMoves
	}
	return c.Messages.NoMoves
}

func (c *GameConfig) boardFullMessage() string {
	if c == nil || c.Messages.BoardFull == "" {
		return DefaultGameConfig().Messages.BoardFull
	}
	return c.Messages.BoardFull
}

func (c *GameConfig) cantMoveMessage() string {
	if c == nil || c.Messages.CantMove == "" {
		return DefaultGameConfig().Messages.CantMove
	}
	return c.Messages.CantMove
}

func (c *GameConfig) welcomeMessage() string {
	if c == nil || c.Messages.Welcome == "" {
		return DefaultGameConfig().Messages.Welcome
	}
	return c.Messages.Welcome
}

// AISelectedMessage formats the announcement for an AI-chosen direction
func (c *GameConfig) AISelectedMessage(dir Direction) string {
	format := DefaultGameConfig().Messages.AISelected
	if c != nil && c.Messages.AISelected != "" {
		format = c.Messages.AISelected
	}
	return fmt.Sprintf(format, dir.Title())
}

// EditCap returns the ceiling for incremented cells
func (c *GameConfig) EditCap() Tile {
	if c == nil || c.MaxEditValue == 0 {
		return MaxEditValue
	}
	return c.MaxEditValue
}
