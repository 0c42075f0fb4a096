package main

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/wraith4081/2048/api"
	"github.com/wraith4081/2048/game/config"
	"github.com/wraith4081/2048/game/engine"
	"github.com/wraith4081/2048/game/record"
	"github.com/wraith4081/2048/game/service"
	"github.com/wraith4081/2048/game/session"
)

func TestRunValidation(t *testing.T) {
	tests := []struct {
		name string
		opts options
	}{
		{"no games", options{Games: 0, Size: 4}},
		{"size too small", options{Games: 1, Size: 0}},
		{"size too large", options{Games: 1, Size: engine.MaxGridSize + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(context.Background(), tt.opts); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestRunLocalRecordsGames(t *testing.T) {
	out := filepath.Join(t.TempDir(), "local.parquet")

	agg, err := run(context.Background(), options{Games: 3, Size: 3, Seed: 21, Out: out})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if agg.Games != 3 || agg.Finished != 3 {
		t.Errorf("Expected 3 finished games, got %+v", agg)
	}

	rows, err := record.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(rows) != agg.TotalMoves {
		t.Errorf("Expected %d rows, got %d", agg.TotalMoves, len(rows))
	}
	games := record.Summarize(rows)
	if len(games) != 3 || games[0].GameID != "game-0001" || games[0].Size != 3 {
		t.Errorf("Unexpected games %+v", games)
	}

	again, err := run(context.Background(), options{Games: 3, Size: 3, Seed: 21})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if again.TotalMoves != agg.TotalMoves || again.BestScore != agg.BestScore {
		t.Errorf("Expected seeded runs to match, got %+v and %+v", agg, again)
	}
}

func TestRunLocalMaxMoves(t *testing.T) {
	agg, err := run(context.Background(), options{Games: 2, Size: 4, Seed: 1, MaxMoves: 4})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if agg.TotalMoves != 8 {
		t.Errorf("Expected 4 moves per game, got %d total", agg.TotalMoves)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := run(ctx, options{Games: 2, Size: 4}); err != context.Canceled {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRunRemote(t *testing.T) {
	configs, err := config.NewManager(filepath.Join("..", "..", "configs"))
	if err != nil {
		t.Fatalf("Failed to load presets: %v", err)
	}
	sessions := session.NewManager(engine.WithSource(engine.NewSeededSource(8)))
	server := httptest.NewServer(api.NewServer(service.NewGameService(sessions, configs), nil))
	defer server.Close()

	out := filepath.Join(t.TempDir(), "remote.parquet")
	agg, err := run(context.Background(), options{Games: 2, Size: 3, MaxMoves: 6, Out: out, Server: server.URL, Preset: "mini"})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if agg.Games != 2 {
		t.Errorf("Expected 2 games, got %d", agg.Games)
	}
	if sessions.Count() != 0 {
		t.Errorf("Expected remote sessions to be deleted, got %d", sessions.Count())
	}

	rows, err := record.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	for _, row := range rows {
		if row.Size != 3 || row.Source != "ai" {
			t.Fatalf("Unexpected remote row %+v", row)
		}
	}
}

func TestCommandFlags(t *testing.T) {
	out := filepath.Join(t.TempDir(), "cli.parquet")
	cmd := newCommand()

	err := cmd.Run(context.Background(), []string{"autoplay", "--games", "1", "--size", "2", "--seed", "4", "--out", out, "--log-level", "warn"})
	if err != nil {
		t.Fatalf("Command failed: %v", err)
	}

	rows, err := record.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if len(rows) == 0 || rows[0].Size != 2 {
		t.Errorf("Expected 2x2 rows, got %+v", rows)
	}
}
