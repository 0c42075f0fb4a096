package main

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog/log"

	"github.com/wraith4081/2048/game/engine"
	"github.com/wraith4081/2048/game/selector"
)

const (
	cellWidth    = 7
	instructions = "Left/Right: column | Tab/Shift+Tab: row | Up: +Value | Down: Clear | Enter: AI Move | w/a/s/d: Slide | Esc: Exit"
	exitMessage  = "Exiting game."
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("0")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2).
			Align(lipgloss.Center)
	gridStyle   = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1)
	tileStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Width(cellWidth).Align(lipgloss.Center)
	cursorStyle = tileStyle.
			Foreground(lipgloss.Color("11")).
			Background(lipgloss.Color("4")).
			Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// manualKeys maps the slide keys to directions
var manualKeys = map[string]engine.Direction{
	"w": engine.Up,
	"a": engine.Left,
	"s": engine.Down,
	"d": engine.Right,
}

// model is the bubbletea state for one game: the engine, the edit cursor and
// the last status line
type model struct {
	game     *engine.GameEngine
	selector *selector.Selector
	row      int
	col      int
	message  string
	quitting bool
}

func newModel(game *engine.GameEngine, sel *selector.Selector) model {
	return model{
		game:     game,
		selector: sel,
		message:  game.GetState().Message,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	size := m.game.GetSize()
	switch key.String() {
	case "esc", "q", "ctrl+c":
		m.quitting = true
		m.message = exitMessage
		return m, tea.Quit
	case "left":
		if m.col > 0 {
			m.col--
		}
		m.message = ""
	case "right":
		if m.col < size-1 {
			m.col++
		}
		m.message = ""
	case "tab":
		m.row = (m.row + 1) % size
		m.message = ""
	case "shift+tab":
		m.row = (m.row + size - 1) % size
		m.message = ""
	case "up":
		m.edit(engine.EditIncrement)
	case "down":
		m.edit(engine.EditClear)
	case "enter":
		m.aiMove()
	default:
		if dir, ok := manualKeys[key.String()]; ok {
			m.slide(dir)
		}
	}
	return m, nil
}

func (m *model) edit(op engine.EditOp) {
	if err := m.game.EditCell(m.row, m.col, op); err != nil {
		m.message = err.Error()
		return
	}
	m.message = ""
	log.Debug().Int("row", m.row).Int("col", m.col).Str("op", string(op)).Msg("cell edited")
}

func (m *model) aiMove() {
	if m.game.IsGameOver() {
		m.message = m.game.GameOverMessage()
		return
	}

	dir, ok := m.selector.Play(m.game)
	if ok {
		log.Debug().Str("direction", dir.String()).Uint32("score", m.game.GetScore()).Msg("ai move")
	} else {
		log.Debug().Msg("no possible moves")
	}
	m.message = m.game.GetState().Message
}

func (m *model) slide(dir engine.Direction) {
	if m.game.IsGameOver() {
		m.message = m.game.GameOverMessage()
		return
	}
	m.game.Move(dir)
	m.message = m.game.GetState().Message
}

func (m model) View() string {
	if m.quitting {
		return exitMessage + "\n"
	}

	state := m.game.GetState()
	header := headerStyle.Render(fmt.Sprintf("2048 - Score: %d", state.Score))

	rows := make([]string, 0, state.Size)
	for i, line := range state.Grid {
		cells := make([]string, 0, len(line))
		for j, tile := range line {
			cells = append(cells, m.renderCell(i, j, tile))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	grid := gridStyle.Render(strings.Join(rows, "\n\n"))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		grid,
		helpStyle.Render(instructions),
		messageStyle.Render(m.message),
	) + "\n"
}

func (m model) renderCell(row, col int, tile engine.Tile) string {
	content := " "
	if tile != engine.Empty {
		content = strconv.Itoa(int(tile))
	}
	if row == m.row && col == m.col {
		return cursorStyle.Render(content)
	}
	return tileStyle.Render(content)
}
