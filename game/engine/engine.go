package engine

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrCellOutOfBounds = errors.New("cell out of bounds")
	ErrInvalidState    = errors.New("invalid game state")
	ErrUnknownEdit     = errors.New("unknown edit operation")
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	IsGameOver() bool
	GetScore() uint32
	GetSize() int

	// Movement operations
	Move(dir Direction) bool
	ApplyAIMove(dir Direction) bool
	MarkNoMoves()
	CanMove(dir Direction) bool
	EditCell(row, col int, op EditOp) error

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithSource injects the random source used for spawns
func WithSource(src Source) Option {
	return func(e *GameEngine) {
		e.source = src
	}
}

// WithClock overrides the timestamp source for history entries
func WithClock(now func() time.Time) Option {
	return func(e *GameEngine) {
		e.now = now
	}
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state   *GameState
	config  *GameConfig
	source  Source
	now     func() time.Time
	history []MoveHistoryEntry
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig, opts ...Option) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{
		config: config,
		source: DefaultSource(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.state = e.newState()

	return e, nil
}

// NewEngineWithDefaults creates a new game engine with the built-in classic preset
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	e, err := NewEngine(DefaultGameConfig(), opts...)
	if err != nil {
		// The built-in preset always validates
		panic(err)
	}
	return e
}

func (e *GameEngine) newState() *GameState {
	state := NewGameState(e.config.GridSize, e.source)
	state.ConfigName = e.config.Name
	state.Message = e.config.welcomeMessage()
	if state.GameOver {
		state.Message = e.config.boardFullMessage()
	}
	return state
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState replaces the game state after checking its shape (used for snapshot import)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("%w: state cannot be nil", ErrInvalidState)
	}
	if err := ValidateGrid(state.Grid, state.Size); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	state.SetSource(e.source)
	if state.ConfigName == "" {
		state.ConfigName = e.config.Name
	}
	e.state = state
	return nil
}

// Reset starts a fresh game with the same configuration. History is cumulative
// and survives resets.
func (e *GameEngine) Reset() *GameState {
	total := e.state.TotalMoves
	e.state = e.newState()
	e.state.TotalMoves = total
	return e.state
}

// IsGameOver returns whether the game is over
func (e *GameEngine) IsGameOver() bool {
	return e.state.GameOver
}

// GetScore returns the current score
func (e *GameEngine) GetScore() uint32 {
	return e.state.Score
}

// GetSize returns the grid dimension
func (e *GameEngine) GetSize() int {
	return e.state.Size
}

// Move slides the tiles in the requested direction on behalf of the player
func (e *GameEngine) Move(dir Direction) bool {
	return e.apply(dir, SourceManual)
}

// ApplyAIMove applies a direction chosen by the selector
func (e *GameEngine) ApplyAIMove(dir Direction) bool {
	if !e.apply(dir, SourceAI) {
		return false
	}
	if !e.state.GameOver {
		e.state.Message = e.config.AISelectedMessage(dir)
	}
	return true
}

func (e *GameEngine) apply(dir Direction, source MoveSource) bool {
	if e.state.GameOver || !dir.Valid() {
		return false
	}

	scoreBefore := e.state.Score
	e.state.LastSpawn = nil
	moved, merges := e.state.move(dir)

	switch {
	case e.state.GameOver:
		e.state.Message = e.config.boardFullMessage()
	case moved:
		e.state.Message = fmt.Sprintf(e.scoreFormat(), e.state.Score)
	default:
		e.state.Message = e.config.cantMoveMessage()
	}

	e.record(MoveHistoryEntry{
		Action:      dir.String(),
		Source:      source,
		Moved:       moved,
		ScoreBefore: scoreBefore,
		ScoreAfter:  e.state.Score,
		Merges:      merges,
		Spawn:       e.state.LastSpawn,
		GameOver:    e.state.GameOver,
	})

	return moved
}

func (e *GameEngine) scoreFormat() string {
	if e.config.Messages.Score != "" {
		return e.config.Messages.Score
	}
	return DefaultGameConfig().Messages.Score
}

// MarkNoMoves ends the game because the selector found no legal direction
func (e *GameEngine) MarkNoMoves() {
	e.state.GameOver = true
	e.state.Message = e.config.noMovesMessage()
}

// GameOverMessage returns the configured game over text
func (e *GameEngine) GameOverMessage() string {
	return e.config.gameOverMessage()
}

// CanMove reports whether dir would change the grid, without touching the live state
func (e *GameEngine) CanMove(dir Direction) bool {
	if e.state.GameOver || !dir.Valid() {
		return false
	}
	moved, _ := slide(e.state.Grid.Clone(), dir)
	return moved
}

// GetPossibleMoves returns the directions that would change the grid, in
// enumeration order
func (e *GameEngine) GetPossibleMoves() []Direction {
	var possible []Direction
	for _, dir := range Directions {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// EditCell applies a manual edit. Edits are accepted after game over.
func (e *GameEngine) EditCell(row, col int, op EditOp) error {
	if row < 0 || row >= e.state.Size || col < 0 || col >= e.state.Size {
		return fmt.Errorf("%w: (%d, %d) on a %dx%d grid", ErrCellOutOfBounds, row, col, e.state.Size, e.state.Size)
	}
	if op != EditIncrement && op != EditClear {
		return fmt.Errorf("%w: %q", ErrUnknownEdit, op)
	}
	e.state.EditCell(row, col, op, e.config.EditCap())
	return nil
}

// BulkMove executes multiple moves in sequence, returning the moved flag for each
func (e *GameEngine) BulkMove(moves []Direction) []bool {
	results := make([]bool, 0, len(moves))

	for _, dir := range moves {
		// Stop if game is over
		if e.IsGameOver() {
			break
		}
		results = append(results, e.Move(dir))
	}

	return results
}

// GetConfig returns the current game configuration
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig sets a new game configuration and resets the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}
	e.config = config
	e.Reset()
	return nil
}

func (e *GameEngine) record(entry MoveHistoryEntry) {
	e.state.TotalMoves++
	entry.MoveNumber = e.state.TotalMoves
	entry.Timestamp = e.now().Unix()
	e.history = append(e.history, entry)
}

// GetMoveHistory returns every recorded move attempt across resets
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.history
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	return &e.history[len(e.history)-1]
}
