package record

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wraith4081/2048/game/engine"
	"github.com/wraith4081/2048/game/selector"
)

func TestNewRow(t *testing.T) {
	state := &engine.GameState{
		Size: 2,
		Grid: engine.NewGridFromRows([][]engine.Tile{
			{4, 0},
			{2, 8},
		}),
		Score: 3,
	}

	row := NewRow("g1", 3, engine.Up, engine.SourceManual, true, state)

	if row.Direction != "up" || row.Source != "manual" {
		t.Errorf("Expected up/manual, got %s/%s", row.Direction, row.Source)
	}
	if row.Score != 3 || row.MaxTile != 8 || row.EmptyCells != 1 {
		t.Errorf("Unexpected stats %+v", row)
	}
	want := []int32{4, 0, 2, 8}
	for i, v := range want {
		if row.Grid[i] != v {
			t.Fatalf("Expected flattened grid %v, got %v", want, row.Grid)
		}
	}

	board, err := row.Board()
	if err != nil {
		t.Fatalf("Board failed: %v", err)
	}
	if !board.Equal(state.Grid) {
		t.Errorf("Expected board to round-trip, got %v", board)
	}

	row.Size = 3
	if _, err := row.Board(); err == nil {
		t.Error("Expected error for mismatched size")
	}
}

func TestNewRowLargestTile(t *testing.T) {
	state := &engine.GameState{
		Size:  2,
		Grid:  engine.NewGridFromRows([][]engine.Tile{{engine.MaxTileValue, 2}, {0, 0}}),
		Score: engine.MaxScore,
	}

	row := NewRow("g1", 1, engine.Left, engine.SourceAI, true, state)
	if row.MaxTile != engine.MaxTileValue || row.Grid[0] != engine.MaxTileValue {
		t.Errorf("Expected largest tile %d to survive the row, got %d and %v", engine.MaxTileValue, row.MaxTile, row.Grid)
	}
	if row.Score != int64(engine.MaxScore) {
		t.Errorf("Expected score %d, got %d", int64(engine.MaxScore), row.Score)
	}
}

func TestWriterAndReadFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "runs", "games.parquet")

	w, err := NewWriter(outPath)
	if err != nil {
		t.Fatalf("NewWriter failed: %v", err)
	}

	state := &engine.GameState{Size: 2, Grid: engine.NewGridFromRows([][]engine.Tile{{2, 2}, {0, 0}})}
	game1 := []MoveRow{
		NewRow("a", 1, engine.Left, engine.SourceAI, true, state),
		NewRow("a", 2, engine.Down, engine.SourceAI, true, state),
	}
	game2 := []MoveRow{NewRow("b", 1, engine.Right, engine.SourceAI, true, state)}

	if err := w.WriteGame(game1); err != nil {
		t.Fatalf("WriteGame failed: %v", err)
	}
	if err := w.WriteGame(nil); err != nil {
		t.Fatalf("Empty WriteGame failed: %v", err)
	}
	if err := w.WriteGame(game2); err != nil {
		t.Fatalf("WriteGame failed: %v", err)
	}

	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Error("Final file should not exist before Close")
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("Second Close should be a no-op, got %v", err)
	}
	if w.Rows() != 3 || w.Games() != 2 {
		t.Errorf("Expected 3 rows in 2 games, got %d/%d", w.Rows(), w.Games())
	}
	if _, err := os.Stat(outPath + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file should be gone after Close")
	}
	if err := w.WriteGame(game2); err == nil {
		t.Error("Expected error writing to a closed writer")
	}

	rows, err := ReadFile(outPath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}
	if rows[1].GameID != "a" || rows[1].Direction != "down" || rows[2].GameID != "b" {
		t.Errorf("Rows out of order: %+v", rows)
	}
	if len(rows[0].Grid) != 4 || rows[0].Grid[0] != 2 {
		t.Errorf("Expected grid to survive, got %v", rows[0].Grid)
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.parquet")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestPlay(t *testing.T) {
	e, err := engine.NewEngine(engine.ConfigForSize(engine.DefaultGameConfig(), 3), engine.WithSource(engine.NewSeededSource(11)))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	rows := Play(e, selector.New(), "seeded", 0)
	if len(rows) == 0 {
		t.Fatal("Expected at least one move")
	}
	if !e.IsGameOver() {
		t.Error("Expected uncapped play to finish the game")
	}

	last := rows[len(rows)-1]
	if !last.GameOver {
		t.Error("Expected the final row to be marked game over")
	}
	if last.Score != int64(len(rows)) {
		t.Errorf("Expected one point per move, got score %d after %d moves", last.Score, len(rows))
	}
	for i, row := range rows {
		if int(row.Move) != i+1 || row.Source != "ai" || !row.Moved {
			t.Fatalf("Unexpected row %d: %+v", i, row)
		}
	}
}

func TestPlayCapped(t *testing.T) {
	e, _ := engine.NewEngine(engine.DefaultGameConfig(), engine.WithSource(engine.NewSeededSource(5)))

	rows := Play(e, selector.New(), "capped", 3)
	if len(rows) != 3 {
		t.Errorf("Expected 3 moves, got %d", len(rows))
	}
	if e.GetState().TotalMoves != 3 {
		t.Errorf("Expected engine to record 3 moves, got %d", e.GetState().TotalMoves)
	}
}

func TestSummarizeAndCombine(t *testing.T) {
	rows := []MoveRow{
		{GameID: "x", Move: 1, Score: 1, MaxTile: 4, Size: 4},
		{GameID: "y", Move: 1, Score: 1, MaxTile: 2, Size: 3},
		{GameID: "x", Move: 2, Score: 2, MaxTile: 8, Size: 4, GameOver: true},
		{GameID: "y", Move: 2, Score: 2, MaxTile: 8, Size: 3},
		{GameID: "y", Move: 3, Score: 3, MaxTile: 16, Size: 3},
	}

	games := Summarize(rows)
	if len(games) != 2 || games[0].GameID != "x" || games[1].GameID != "y" {
		t.Fatalf("Expected games x then y, got %+v", games)
	}
	if games[0].Moves != 2 || games[0].FinalScore != 2 || games[0].MaxTile != 8 || !games[0].GameOver {
		t.Errorf("Unexpected summary for x: %+v", games[0])
	}
	if games[1].Moves != 3 || games[1].FinalScore != 3 || games[1].Size != 3 || games[1].GameOver {
		t.Errorf("Unexpected summary for y: %+v", games[1])
	}

	agg := Combine(games)
	if agg.Games != 2 || agg.TotalMoves != 5 || agg.BestScore != 3 || agg.Finished != 1 {
		t.Errorf("Unexpected aggregate %+v", agg)
	}
	if agg.MeanScore != 2.5 {
		t.Errorf("Expected mean 2.5, got %v", agg.MeanScore)
	}
	if agg.MaxTiles[8] != 1 || agg.MaxTiles[16] != 1 {
		t.Errorf("Unexpected histogram %v", agg.MaxTiles)
	}
	tiles := agg.SortedTiles()
	if len(tiles) != 2 || tiles[0] != 8 || tiles[1] != 16 {
		t.Errorf("Expected [8 16], got %v", tiles)
	}

	if empty := Combine(nil); empty.Games != 0 || empty.MeanScore != 0 {
		t.Errorf("Expected zero aggregate, got %+v", empty)
	}
}
