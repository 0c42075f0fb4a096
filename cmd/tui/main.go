// Command tui plays 2048 in the terminal. The cursor edits cells, Enter asks
// the greedy selector for a move and w/a/s/d slide the tiles by hand.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/wraith4081/2048/game/engine"
	"github.com/wraith4081/2048/game/selector"
	"github.com/wraith4081/2048/logging"
)

const (
	sizePrompt   = "Enter grid size (e.g., 4 for 4x4): "
	sizeInvalid  = "Invalid input. Defaulting to 4x4 grid."
	sizeTooLarge = "Grid sizes above %d are not supported. Defaulting to 4x4 grid."
	initFailed   = "Failed to initialize the game. Exiting."
)

func main() {
	if err := newCommand(os.Stdin, os.Stdout).Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "tui: %v\n", err)
		os.Exit(1)
	}
}

func newCommand(in io.Reader, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "play 2048 in the terminal with an AI move on Enter",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "size", Usage: "board side length (prompted when unset)"},
			&cli.Int64Flag{Name: "seed", Usage: "seed for tile spawns (0 = random)"},
			&cli.StringFlag{Name: "log-file", Usage: "write logs to this file; the screen belongs to the game", Sources: cli.EnvVars("TUI_LOG_FILE")},
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error", Sources: cli.EnvVars("LOG_LEVEL")},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			closeLog, err := setupLogging(cmd.String("log-file"), cmd.String("log-level"))
			if err != nil {
				return err
			}
			defer closeLog()

			reader := bufio.NewReader(in)
			size := cmd.Int("size")
			if size == 0 {
				size = promptGridSize(reader, out)
			} else if size < engine.MinGridSize || size > engine.MaxGridSize {
				fmt.Fprintln(out, sizeNotice(size))
				size = engine.DefaultGridSize
			}

			game, err := newGame(size, cmd.Int64("seed"))
			if err != nil {
				return err
			}
			if game.IsGameOver() {
				log.Warn().Int("size", size).Msg("opening board is already over")
				fmt.Fprintln(out, initFailed)
				return nil
			}
			log.Info().Int("size", size).Msg("game started")

			opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(out), tea.WithAltScreen()}
			// A terminal stays the default input so bubbletea can switch it to raw mode
			if _, ok := in.(*os.File); !ok {
				opts = append(opts, tea.WithInput(reader))
			}
			program := tea.NewProgram(newModel(game, selector.New()), opts...)
			if _, err := program.Run(); err != nil {
				return err
			}

			log.Info().Uint32("score", game.GetScore()).Int("moves", game.GetState().TotalMoves).Msg("game closed")
			fmt.Fprintln(out, "Exiting game. Goodbye!")
			return nil
		},
	}
}

// setupLogging sends logs to path, or discards them when path is empty
func setupLogging(path, level string) (func(), error) {
	if path == "" {
		logging.SetupWriter(io.Discard, level, false)
		return func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	logging.SetupWriter(f, level, false)
	return func() { f.Close() }, nil
}

// promptGridSize asks for the board size on out and reads one line from in
func promptGridSize(in *bufio.Reader, out io.Writer) int {
	fmt.Fprintln(out, sizePrompt)
	line, _ := in.ReadString('\n')

	size, ok := parseGridSize(line)
	if !ok {
		requested, _ := strconv.Atoi(strings.TrimSpace(line))
		fmt.Fprintln(out, sizeNotice(requested))
	}
	return size
}

// sizeNotice explains why a requested size was replaced by the default
func sizeNotice(requested int) string {
	if requested > engine.MaxGridSize {
		return fmt.Sprintf(sizeTooLarge, engine.MaxGridSize)
	}
	return sizeInvalid
}

// parseGridSize accepts a positive size the engine supports, otherwise it
// returns the default size and false
func parseGridSize(input string) (int, bool) {
	size, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || size < engine.MinGridSize || size > engine.MaxGridSize {
		return engine.DefaultGridSize, false
	}
	return size, true
}

func newGame(size int, seed int64) (*engine.GameEngine, error) {
	var opts []engine.Option
	if seed != 0 {
		opts = append(opts, engine.WithSource(engine.NewSeededSource(seed)))
	}
	return engine.NewEngine(engine.ConfigForSize(engine.DefaultGameConfig(), size), opts...)
}
