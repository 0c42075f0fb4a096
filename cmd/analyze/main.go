// Command analyze prints quick, human-readable statistics about recorded
// autoplay trajectories: moves, final score and max tile per game, plus an
// aggregate with a max tile histogram.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wraith4081/2048/game/record"
	"github.com/wraith4081/2048/logging"
)

// Report is what analyze prints, also available as JSON
type Report struct {
	Files     []string             `json:"files"`
	Games     []record.GameSummary `json:"games"`
	Aggregate record.Aggregate     `json:"aggregate"`
}

func main() {
	if err := newCommand(os.Stdout).Run(context.Background(), os.Args); err != nil {
		log.Error().Err(err).Msg("analyze failed")
		os.Exit(1)
	}
}

func newCommand(out io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "summarize recorded autoplay trajectories",
		ArgsUsage: "<file.parquet|dir>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print the report as JSON"},
			&cli.BoolFlag{Name: "games", Value: true, Usage: "include one line per game"},
			&cli.StringFlag{Name: "log-level", Value: "warn", Usage: "debug, info, warn or error", Sources: cli.EnvVars("LOG_LEVEL")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.Setup(cmd.String("log-level"), logging.IsTerminal(os.Stderr))

			files, err := expandInputs(cmd.Args().Slice())
			if err != nil {
				return err
			}

			report, err := analyze(files)
			if err != nil {
				return err
			}

			if cmd.Bool("json") {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			printReport(out, report, cmd.Bool("games"))
			return nil
		},
	}
}

// expandInputs turns directories into the parquet files they contain
func expandInputs(args []string) ([]string, error) {
	if len(args) == 0 {
		return nil, errors.New("no record files given")
	}

	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		matches, err := filepath.Glob(filepath.Join(arg, "*.parquet"))
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			log.Warn().Str("dir", arg).Msg("no parquet files found")
		}
		files = append(files, matches...)
	}
	return files, nil
}

// analyze reads every file and summarizes the games across all of them
func analyze(files []string) (*Report, error) {
	report := &Report{Files: files}
	for _, file := range files {
		rows, err := record.ReadFile(file)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("file", file).Int("rows", len(rows)).Msg("loaded records")
		report.Games = append(report.Games, record.Summarize(rows)...)
	}
	report.Aggregate = record.Combine(report.Games)
	return report, nil
}

func printReport(out io.Writer, report *Report, perGame bool) {
	if perGame {
		fmt.Fprintf(out, "%-16s %5s %6s %8s %8s %5s\n", "GAME", "SIZE", "MOVES", "SCORE", "MAX", "OVER")
		for _, g := range report.Games {
			fmt.Fprintf(out, "%-16s %5d %6d %8d %8d %5t\n", g.GameID, g.Size, g.Moves, g.FinalScore, g.MaxTile, g.GameOver)
		}
		fmt.Fprintln(out)
	}

	agg := report.Aggregate
	fmt.Fprintf(out, "Files: %d\n", len(report.Files))
	fmt.Fprintf(out, "Games: %d (%d finished)\n", agg.Games, agg.Finished)
	fmt.Fprintf(out, "Total moves: %d\n", agg.TotalMoves)
	fmt.Fprintf(out, "Mean score: %.2f\n", agg.MeanScore)
	fmt.Fprintf(out, "Best score: %d\n", agg.BestScore)

	if len(agg.MaxTiles) == 0 {
		return
	}
	fmt.Fprintln(out, "\nMax tile histogram:")
	for _, tile := range agg.SortedTiles() {
		count := agg.MaxTiles[tile]
		fmt.Fprintf(out, "%8d %4d %s\n", tile, count, strings.Repeat("#", count))
	}
}
