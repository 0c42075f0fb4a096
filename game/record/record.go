package record

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"

	"github.com/wraith4081/2048/game/engine"
)

// SchemaVersion is stored in every file's key/value metadata
const SchemaVersion = "move_row_v1"

// readBatch is how many rows ReadFile pulls per call
const readBatch = 1024

// MoveRow is one attempted move in a recorded game. Grid is the board after
// the move and its spawn, flattened row-major with 0 for empty cells.
type MoveRow struct {
	GameID     string  `parquet:"game_id,dict"`
	Move       int32   `parquet:"move"`
	Direction  string  `parquet:"direction,dict"`
	Source     string  `parquet:"source,dict"`
	Moved      bool    `parquet:"moved"`
	Score      int64   `parquet:"score"`
	MaxTile    int32   `parquet:"max_tile"`
	EmptyCells int32   `parquet:"empty_cells"`
	Size       int32   `parquet:"size"`
	Grid       []int32 `parquet:"grid"`
	GameOver   bool    `parquet:"game_over"`
}

// NewRow snapshots state after move number move was attempted in direction dir
func NewRow(gameID string, move int, dir engine.Direction, source engine.MoveSource, moved bool, state *engine.GameState) MoveRow {
	grid := make([]int32, 0, state.Size*state.Size)
	for _, row := range state.Grid {
		for _, cell := range row {
			grid = append(grid, int32(cell))
		}
	}

	return MoveRow{
		GameID:     gameID,
		Move:       int32(move),
		Direction:  dir.String(),
		Source:     string(source),
		Moved:      moved,
		Score:      int64(state.Score),
		MaxTile:    int32(engine.MaxTile(state.Grid)),
		EmptyCells: int32(len(engine.EmptyCells(state.Grid))),
		Size:       int32(state.Size),
		Grid:       grid,
		GameOver:   state.GameOver,
	}
}

// Board rebuilds the grid stored in the row
func (r MoveRow) Board() (engine.Grid, error) {
	size := int(r.Size)
	if size*size != len(r.Grid) {
		return nil, fmt.Errorf("row %s/%d: %d cells for size %d", r.GameID, r.Move, len(r.Grid), size)
	}
	grid := engine.NewGrid(size)
	for i, cell := range r.Grid {
		grid[i/size][i%size] = engine.Tile(cell)
	}
	return grid, nil
}

// Writer streams rows into a zstd-compressed parquet file. Rows go to a
// temporary file that Close renames into place.
type Writer struct {
	outPath string
	tmpPath string

	file   *os.File
	writer *parquet.GenericWriter[MoveRow]

	rows  int
	games int
}

// NewWriter creates the output directory and opens the temporary file
func NewWriter(outPath string) (*Writer, error) {
	if outPath == "" {
		return nil, errors.New("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	tmpPath := outPath + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open tmp parquet: %w", err)
	}

	w := parquet.NewGenericWriter[MoveRow](
		f,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
	)
	w.SetKeyValueMetadata("schema", SchemaVersion)

	return &Writer{
		outPath: outPath,
		tmpPath: tmpPath,
		file:    f,
		writer:  w,
	}, nil
}

// WriteGame appends the rows of one finished game
func (w *Writer) WriteGame(rows []MoveRow) error {
	if w.writer == nil {
		return errors.New("record writer is closed")
	}
	if len(rows) == 0 {
		return nil
	}
	if _, err := w.writer.Write(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	w.rows += len(rows)
	w.games++
	return nil
}

// Rows returns how many rows have been written
func (w *Writer) Rows() int { return w.rows }

// Games returns how many games have been written
func (w *Writer) Games() int { return w.games }

// Close flushes the file and moves it to its final path
func (w *Writer) Close() error {
	if w.writer == nil {
		return nil
	}

	closeErr := w.writer.Close()
	w.writer = nil
	_ = w.file.Sync()
	fileErr := w.file.Close()

	if closeErr != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("close parquet writer: %w", closeErr)
	}
	if fileErr != nil {
		os.Remove(w.tmpPath)
		return fmt.Errorf("close parquet file: %w", fileErr)
	}
	if err := os.Rename(w.tmpPath, w.outPath); err != nil {
		return fmt.Errorf("rename parquet: %w", err)
	}
	return nil
}

// ReadFile loads every row from a record file
func ReadFile(path string) ([]MoveRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet %s: %w", path, err)
	}

	reader := parquet.NewGenericReader[MoveRow](pf)
	defer reader.Close()

	rows := make([]MoveRow, 0, reader.NumRows())
	for {
		// Fresh buffer each pass; the reader may reuse slice backing arrays
		batch := make([]MoveRow, readBatch)
		n, err := reader.Read(batch)
		rows = append(rows, batch[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet %s: %w", path, err)
		}
		if n == 0 {
			break
		}
	}
	return rows, nil
}
