package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Tile is the value of a single grid cell. Empty is the zero value.
type Tile uint32

const (
	// Empty marks an unoccupied cell
	Empty Tile = 0

	// Validation and gameplay constants
	MinGridSize         = 1
	MaxGridSize         = 16
	DefaultGridSize     = 4
	ScorePerMove        = 1
	MaxEditValue        = 2048
	MaxTileValue        = 1 << 30
	MaxScore            = 1<<32 - 1
	SpawnTwoProbability = 0.9
	MaxBulkMoves        = 50
	MaxAutoPlayMoves    = 5000
	WebSocketBufferSize = 256
)

var ErrInvalidDirection = errors.New("invalid direction")

// MarshalJSON encodes empty cells as null
func (t Tile) MarshalJSON() ([]byte, error) {
	if t == Empty {
		return []byte("null"), nil
	}
	return json.Marshal(uint32(t))
}

// UnmarshalJSON decodes null as an empty cell
func (t *Tile) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Empty
		return nil
	}
	var v uint32
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*t = Tile(v)
	return nil
}

// Grid is a square, row-major matrix of tiles
type Grid [][]Tile

// NewGrid builds an all-empty size x size grid
func NewGrid(size int) Grid {
	grid := make(Grid, size)
	for i := range grid {
		grid[i] = make([]Tile, size)
	}
	return grid
}

// NewGridFromRows copies the provided rows into a new grid
func NewGridFromRows(rows [][]Tile) Grid {
	grid := make(Grid, len(rows))
	for i, row := range rows {
		grid[i] = append([]Tile(nil), row...)
	}
	return grid
}

// Clone returns a deep copy of the grid
func (g Grid) Clone() Grid {
	return NewGridFromRows(g)
}

// Equal reports whether two grids hold the same tiles
func (g Grid) Equal(other Grid) bool {
	if len(g) != len(other) {
		return false
	}
	for i := range g {
		if len(g[i]) != len(other[i]) {
			return false
		}
		for j := range g[i] {
			if g[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// String renders the grid with '.' for empty cells
func (g Grid) String() string {
	var b strings.Builder
	for _, row := range g {
		for j, cell := range row {
			if j > 0 {
				b.WriteByte(' ')
			}
			if cell == Empty {
				b.WriteString(fmt.Sprintf("%5s", "."))
			} else {
				b.WriteString(fmt.Sprintf("%5d", cell))
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Direction is the closed set of move directions. The declaration order is the
// selector's enumeration order.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Directions lists every direction in enumeration order
var Directions = []Direction{Left, Right, Up, Down}

// String returns the lowercase name of the direction
func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Title returns the capitalized name used in player-facing messages
func (d Direction) Title() string {
	name := d.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

// Valid reports whether d is one of the four directions
func (d Direction) Valid() bool {
	return d >= Left && d <= Down
}

// MarshalText implements encoding.TextMarshaler
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection converts a direction name (case-insensitive) to a Direction
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "up":
		return Up, nil
	case "down":
		return Down, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// EditOp is a manual cell edit
type EditOp string

const (
	EditIncrement EditOp = "increment"
	EditClear     EditOp = "clear"
)

// MoveSource records who requested a move
type MoveSource string

const (
	SourceManual MoveSource = "manual"
	SourceAI     MoveSource = "ai"
)

// Position represents row/column coordinates
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Spawn describes a tile placed by SpawnTile
type Spawn struct {
	Row   int  `json:"row"`
	Col   int  `json:"col"`
	Value Tile `json:"value"`
}

// GameConfig represents a game preset loaded from JSON
type GameConfig struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	GridSize     int    `json:"grid_size"`
	MaxEditValue Tile   `json:"max_edit_value,omitempty"`
	Messages     struct {
		Welcome    string `json:"welcome"`
		GameOver   string `json:"game_over"`
		NoMoves    string `json:"no_moves"`
		BoardFull  string `json:"board_full"`
		AISelected string `json:"ai_selected"`
		CantMove   string `json:"cant_move"`
		Score      string `json:"score"`
	} `json:"messages"`
}

// GameState represents the complete state of one game
type GameState struct {
	Size       int    `json:"size"`
	Grid       Grid   `json:"grid"`
	Score      uint32 `json:"score"`
	GameOver   bool   `json:"game_over"`
	Message    string `json:"message,omitempty"`
	ConfigName string `json:"config_name,omitempty"`
	TotalMoves int    `json:"total_moves"`
	LastSpawn  *Spawn `json:"last_spawn,omitempty"`

	rng Source
}

// MoveHistoryEntry represents a single move attempt in the game history
type MoveHistoryEntry struct {
	Action      string     `json:"action"`
	Source      MoveSource `json:"source"`
	Moved       bool       `json:"moved"`
	ScoreBefore uint32     `json:"score_before"`
	ScoreAfter  uint32     `json:"score_after"`
	Merges      int        `json:"merges"`
	Spawn       *Spawn     `json:"spawn,omitempty"`
	GameOver    bool       `json:"game_over"`
	Timestamp   int64      `json:"timestamp"`
	MoveNumber  int        `json:"move_number"`
}
