// Command autoplay lets the greedy selector play batches of games and records
// every move to a parquet file. Games run in-process by default, or against a
// running server with --server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wraith4081/2048/game/engine"
	"github.com/wraith4081/2048/game/record"
	"github.com/wraith4081/2048/game/selector"
	"github.com/wraith4081/2048/logging"
	"github.com/wraith4081/2048/transport/rest"
)

// options mirrors the command line flags
type options struct {
	Games    int
	Size     int
	Seed     int64
	MaxMoves int
	Out      string
	Server   string
	Preset   string
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Error().Err(err).Msg("autoplay failed")
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "play games with the greedy selector and record every move",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "games", Value: 10, Usage: "number of games to play"},
			&cli.IntFlag{Name: "size", Value: engine.DefaultGridSize, Usage: "board side length"},
			&cli.Int64Flag{Name: "seed", Usage: "seed for tile spawns; game i uses seed+i (0 = random)"},
			&cli.IntFlag{Name: "max-moves", Usage: "stop each game after this many moves (0 = play to the end)"},
			&cli.StringFlag{Name: "out", Usage: "parquet file to write the trajectories to"},
			&cli.StringFlag{Name: "server", Usage: "base URL of a running server to play against", Sources: cli.EnvVars("GAME_SERVER")},
			&cli.StringFlag{Name: "preset", Usage: "preset to start remote games from (server default when empty)"},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error", Sources: cli.EnvVars("LOG_LEVEL")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.Setup(cmd.String("log-level"), logging.IsTerminal(os.Stderr))

			opts := options{
				Games:    cmd.Int("games"),
				Size:     cmd.Int("size"),
				Seed:     cmd.Int64("seed"),
				MaxMoves: cmd.Int("max-moves"),
				Out:      cmd.String("out"),
				Server:   cmd.String("server"),
				Preset:   cmd.String("preset"),
			}
			_, err := run(ctx, opts)
			return err
		},
	}
}

// gamePlayer plays one game and returns its rows
type gamePlayer func(ctx context.Context, index int) ([]record.MoveRow, error)

// run plays opts.Games games, writing them to opts.Out when set
func run(ctx context.Context, opts options) (record.Aggregate, error) {
	if opts.Games <= 0 {
		return record.Aggregate{}, errors.New("--games must be positive")
	}
	if opts.Size < engine.MinGridSize || opts.Size > engine.MaxGridSize {
		return record.Aggregate{}, fmt.Errorf("--size must be between %d and %d", engine.MinGridSize, engine.MaxGridSize)
	}

	var play gamePlayer
	if opts.Server != "" {
		if opts.Seed != 0 {
			log.Warn().Msg("--seed is ignored when playing against a server")
		}
		play = remotePlayer(rest.NewClient(opts.Server), opts)
	} else {
		play = localPlayer(opts)
	}

	var writer *record.Writer
	if opts.Out != "" {
		w, err := record.NewWriter(opts.Out)
		if err != nil {
			return record.Aggregate{}, err
		}
		writer = w
	}

	var summaries []record.GameSummary
	var playErr error
	for i := 0; i < opts.Games; i++ {
		if err := ctx.Err(); err != nil {
			playErr = err
			break
		}

		rows, err := play(ctx, i)
		if err != nil {
			playErr = fmt.Errorf("game %d: %w", i+1, err)
			break
		}
		if writer != nil {
			if err := writer.WriteGame(rows); err != nil {
				playErr = err
				break
			}
		}

		for _, s := range record.Summarize(rows) {
			summaries = append(summaries, s)
			log.Info().
				Str("game", s.GameID).
				Int("moves", s.Moves).
				Int64("score", s.FinalScore).
				Int32("max_tile", s.MaxTile).
				Bool("over", s.GameOver).
				Msg("game finished")
		}
	}

	// Keep whatever finished before an interruption
	if writer != nil {
		if err := writer.Close(); err != nil && playErr == nil {
			playErr = err
		}
		if playErr == nil {
			log.Info().Str("file", opts.Out).Int("rows", writer.Rows()).Int("games", writer.Games()).Msg("trajectories written")
		}
	}

	agg := record.Combine(summaries)
	log.Info().
		Int("games", agg.Games).
		Int("moves", agg.TotalMoves).
		Float64("mean_score", agg.MeanScore).
		Int64("best_score", agg.BestScore).
		Msg("autoplay complete")

	return agg, playErr
}

// localPlayer runs games on an in-process engine
func localPlayer(opts options) gamePlayer {
	sel := selector.New()
	config := engine.ConfigForSize(engine.DefaultGameConfig(), opts.Size)

	return func(ctx context.Context, index int) ([]record.MoveRow, error) {
		src := engine.DefaultSource()
		if opts.Seed != 0 {
			src = engine.NewSeededSource(opts.Seed + int64(index))
		}

		e, err := engine.NewEngine(config, engine.WithSource(src))
		if err != nil {
			return nil, err
		}
		return record.Play(e, sel, fmt.Sprintf("game-%04d", index+1), opts.MaxMoves), nil
	}
}

// remotePlayer runs each game in a fresh server session driven by AI moves
func remotePlayer(client *rest.Client, opts options) gamePlayer {
	return func(ctx context.Context, index int) ([]record.MoveRow, error) {
		info, err := client.CreateSession(ctx, opts.Preset, opts.Size)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := client.DeleteSession(context.Background(), info.ID); err != nil {
				log.Warn().Err(err).Str("session", info.ID).Msg("failed to delete session")
			}
		}()

		var rows []record.MoveRow
		for opts.MaxMoves <= 0 || len(rows) < opts.MaxMoves {
			if err := ctx.Err(); err != nil {
				return rows, err
			}

			result, err := client.AIMove(ctx, info.ID)
			if err != nil {
				return rows, err
			}
			if result.Selected == "" {
				if n := len(rows); n > 0 {
					rows[n-1].GameOver = true
				}
				break
			}

			dir, err := engine.ParseDirection(result.Selected)
			if err != nil {
				return rows, err
			}
			rows = append(rows, record.NewRow(info.ID, len(rows)+1, dir, engine.SourceAI, result.Success, result.GameState))
			if result.GameState.GameOver {
				break
			}
		}
		return rows, nil
	}
}
