package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wraith4081/2048/game/engine"
	"github.com/wraith4081/2048/game/service"
	"github.com/wraith4081/2048/transport/rest"
)

const (
	ServerName    = "2048 Autopilot"
	ServerVersion = "1.0.0"
)

const instructions = `2048 Autopilot - MCP Interface

Every tool proxies to the REST API of a running game server.

BOARD:
A square grid of tiles. Empty cells are shown as '.'. Tiles are powers of two.

AVAILABLE TOOLS:
- create_session: Start a game from a preset, optionally resized
- list_sessions / get_session: Inspect running games
- game_state: Current board, score and status
- move / bulk_move: Slide tiles left, right, up or down
- ai_move: Let the greedy selector play one move
- autoplay: Let the selector play until the game ends or a move cap is reached
- hint: See what the selector would play and how each move scores
- edit_cell: Double (increment) or clear a single cell
- reset_game: Start over with a fresh board
- move_history: Paged list of past moves
- list_configs: Available presets
- game_instructions: Rules and scoring`

// Client is a thin MCP server that proxies to the REST API
type Client struct {
	api       *rest.Client
	mcpServer *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL string) *Client {
	return NewClientWithAPI(rest.NewClient(baseURL))
}

// NewClientWithAPI creates an MCP client on top of an existing REST client
func NewClientWithAPI(api *rest.Client) *Client {
	c := &Client{api: api}
	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(instructions),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func sessionOnlySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": sessionIDProperty(),
		},
		Required: []string{"session_id"},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new game session from a preset, optionally with a different board size",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Preset to start from (see list_configs). Defaults to the server default.",
				},
				"size": map[string]interface{}{
					"type":        "integer",
					"description": "Board side length. Out-of-range values keep the preset size.",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"sort": map[string]interface{}{
					"type":        "string",
					"description": "Sort key",
					"enum":        []string{"accessed", "created", "score"},
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of sessions to list",
				},
			},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: sessionOnlySchema(),
	}, c.handleGetSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_state",
		Description: "Get the current board, score and status",
		InputSchema: sessionOnlySchema(),
	}, c.handleGameState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move",
		Description: "Slide every tile in one direction. A move that changes nothing is not counted.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"direction": map[string]interface{}{
					"type":        "string",
					"description": "Direction to slide",
					"enum":        []string{"left", "right", "up", "down"},
				},
			},
			Required: []string{"session_id", "direction"},
		},
	}, c.handleMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "bulk_move",
		Description: fmt.Sprintf("Apply up to %d moves in order, stopping at the first that changes nothing", engine.MaxBulkMoves),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"moves": map[string]interface{}{
					"type":        "array",
					"description": "Directions to apply",
					"items": map[string]interface{}{
						"type": "string",
						"enum": []string{"left", "right", "up", "down"},
					},
				},
			},
			Required: []string{"session_id", "moves"},
		},
	}, c.handleBulkMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "ai_move",
		Description: "Let the greedy selector choose and play one move",
		InputSchema: sessionOnlySchema(),
	}, c.handleAIMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "autoplay",
		Description: "Let the selector play until the game ends or max_moves is reached",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"max_moves": map[string]interface{}{
					"type":        "integer",
					"description": fmt.Sprintf("Move cap (default and maximum %d)", engine.MaxAutoPlayMoves),
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleAutoPlay)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "hint",
		Description: "Show the selector's choice and the score of every legal move without playing it",
		InputSchema: sessionOnlySchema(),
	}, c.handleHint)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "edit_cell",
		Description: "Edit one cell: increment places a 2 or doubles the tile, clear empties it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Zero-based row",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Zero-based column",
				},
				"op": map[string]interface{}{
					"type":        "string",
					"description": "Edit operation",
					"enum":        []string{string(engine.EditIncrement), string(engine.EditClear)},
				},
			},
			Required: []string{"session_id", "row", "col", "op"},
		},
	}, c.handleEditCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_game",
		Description: "Start the session over with a fresh board",
		InputSchema: sessionOnlySchema(),
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get the paginated move history",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (1-based)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Moves per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Rules, scoring and selector behaviour",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	args, _ := request.Params.Arguments.(map[string]interface{})
	return args
}

// intArg reads a JSON number argument; ok is false when it is absent
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	default:
		return 0, false
	}
}

func requireSession(args map[string]interface{}) (string, *mcp.CallToolResult) {
	sessionID, _ := args["session_id"].(string)
	if sessionID == "" {
		return "", mcp.NewToolResultError("session_id is required")
	}
	return sessionID, nil
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)
	size, _ := intArg(args, "size")

	session, err := c.api.CreateSession(ctx, configID, size)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Created " + formatSessionInfo(session)), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	opts := rest.ListOptions{}
	opts.Sort, _ = args["sort"].(string)
	opts.Limit, _ = intArg(args, "limit")

	list, err := c.api.ListSessions(ctx, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d of %d):\n\n", list.Count, list.Total)
	for _, s := range list.Sessions {
		score, status := uint32(0), "playing"
		if s.GameState != nil {
			score = s.GameState.Score
			if s.GameState.GameOver {
				status = "over"
			}
		}
		fmt.Fprintf(&b, "- %s (Config: %s, Score: %d, %s, Created: %s)\n",
			s.ID, s.ConfigName, score, status, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	session, err := c.api.GetSession(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(session)), nil
}

func (c *Client) handleGameState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	state, err := c.api.GetState(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGameState(state)), nil
}

func (c *Client) handleMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	direction, _ := args["direction"].(string)

	result, err := c.api.Move(ctx, sessionID, direction)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(result)), nil
}

func (c *Client) handleBulkMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	movesRaw, _ := args["moves"].([]interface{})

	moves := make([]string, 0, len(movesRaw))
	for _, m := range movesRaw {
		if move, ok := m.(string); ok {
			moves = append(moves, move)
		}
	}

	result, err := c.api.BulkMove(ctx, sessionID, moves)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, result)), nil
}

func (c *Client) handleAIMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	result, err := c.api.AIMove(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResult(result)), nil
}

func (c *Client) handleAutoPlay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	maxMoves, _ := intArg(args, "max_moves")

	result, err := c.api.AutoPlay(ctx, sessionID, maxMoves)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBulkMoveResult(sessionID, result)), nil
}

func (c *Client) handleHint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	hint, err := c.api.Hint(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHint(hint)), nil
}

func (c *Client) handleEditCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}
	row, hasRow := intArg(args, "row")
	col, hasCol := intArg(args, "col")
	if !hasRow || !hasCol {
		return mcp.NewToolResultError("row and col are required"), nil
	}
	op, _ := args["op"].(string)

	state, err := c.api.EditCell(ctx, sessionID, row, col, engine.EditOp(op))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Edited (%d,%d) with %s\n\n%s", row, col, op, formatGameState(state))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, errResult := requireSession(arguments(request))
	if errResult != nil {
		return errResult, nil
	}

	state, err := c.api.Reset(ctx, sessionID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Game reset successfully\n\n" + formatGameState(state)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, errResult := requireSession(args)
	if errResult != nil {
		return errResult, nil
	}

	opts := service.HistoryOptions{}
	opts.Page, _ = intArg(args, "page")
	opts.Limit, _ = intArg(args, "limit")

	history, err := c.api.History(ctx, sessionID, opts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configs, err := c.api.ListConfigs(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Configurations:\n\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "- %s (config_id: %s)\n  %s\n  Grid: %dx%d, Edit cap: %d\n\n",
			config.Name, config.ConfigID, config.Description,
			config.GridSize, config.GridSize, config.MaxEditValue)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := fmt.Sprintf(`2048 Autopilot - Rules

BOARD:
- A square grid (%d to %d cells per side, default %d) of empty cells or power-of-two tiles
- A new game starts with two tiles; each tile is a 2 (90%%) or a 4 (10%%)

MOVES:
- left, right, up, down slide every tile as far as it goes in that direction
- Two equal tiles that meet merge into one tile of double value, once per move
- A move that changes nothing is refused and does not count
- After every move that changes the board, one new tile appears in a random empty cell

SCORING:
- Every move that changes the board scores 1 point; merges do not add extra points

GAME OVER:
- The game ends when a move leaves no empty cell for the new tile
- ai_move and autoplay also end the game when no direction can change the board

AI SELECTOR (ai_move, autoplay, hint):
- Tries every legal direction on a copy of the board, one move ahead
- Keeps the direction with the highest resulting score; ties go to the first in
  the order left, right, up, down

EDITING (edit_cell):
- increment places a 2 in an empty cell or doubles a tile, up to the preset's edit cap
- clear empties the cell

TIPS:
- Use hint to see every legal move before committing
- bulk_move accepts up to %d moves and stops at the first one that changes nothing`,
		engine.MinGridSize, engine.MaxGridSize, engine.DefaultGridSize, engine.MaxBulkMoves)

	return mcp.NewToolResultText(text), nil
}

// Formatting

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\n\n%s",
		session.ID, session.ConfigName,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatGameState(session.GameState))
}

// formatGrid renders the board as aligned columns with '.' for empty cells
func formatGrid(grid engine.Grid) string {
	width := 1
	for _, row := range grid {
		for _, cell := range row {
			if w := len(fmt.Sprint(uint32(cell))); cell != engine.Empty && w > width {
				width = w
			}
		}
	}

	var b strings.Builder
	for _, row := range grid {
		for j, cell := range row {
			if j > 0 {
				b.WriteByte(' ')
			}
			if cell == engine.Empty {
				fmt.Fprintf(&b, "%*s", width, ".")
			} else {
				fmt.Fprintf(&b, "%*d", width, cell)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Size: %dx%d | Score: %d | Moves: %d | Max tile: %d | Empty: %d\n\n",
		state.Size, state.Size, state.Score, state.TotalMoves,
		engine.MaxTile(state.Grid), len(engine.EmptyCells(state.Grid)))

	b.WriteString(formatGrid(state.Grid))

	if state.LastSpawn != nil {
		fmt.Fprintf(&b, "\nLast spawn: %d at (%d,%d)", state.LastSpawn.Value, state.LastSpawn.Row, state.LastSpawn.Col)
	}
	if state.GameOver {
		b.WriteString("\nGAME OVER")
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "\nMessage: %s", state.Message)
	}

	return b.String()
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		b.WriteString("✓ Move successful\n")
	} else {
		b.WriteString("✗ Move not applied\n")
	}

	if result.Selected != "" {
		fmt.Fprintf(&b, "Selected: %s\n", result.Selected)
	}
	if s := result.Step; s != nil {
		fmt.Fprintf(&b, "Step: %s merges=%d score %d→%d\n", s.Dir, s.Merges, s.ScoreBefore, s.ScoreAfter)
	}

	if len(result.Events) > 0 {
		b.WriteString("Events:\n")
		for _, event := range result.Events {
			fmt.Fprintf(&b, "- %s: %s\n", event.Type, event.Message)
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder

	size, configName := 0, ""
	if result.GameState != nil {
		size = result.GameState.Size
		configName = result.GameState.ConfigName
	}
	fmt.Fprintf(&b, "Session: %s • Config: %s • Grid: %dx%d\n", sessionID, configName, size, size)

	fmt.Fprintf(&b, "Executed %d/%d moves • Score %d→%d (+%d) • Max tile %d\n",
		result.MovesExecuted, result.RequestedMoves,
		result.StartScore, result.EndScore, result.ScoreDelta, result.MaxTile)
	if result.StoppedReason != "" {
		fmt.Fprintf(&b, "Stopped: %s", result.StoppedReason)
		if result.StoppedOnMove > 0 {
			fmt.Fprintf(&b, " (move %d)", result.StoppedOnMove)
		}
		b.WriteString("\n")
	}
	if result.Truncated {
		fmt.Fprintf(&b, "Truncated to %d moves\n", result.Limit)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps (this call):\n")
		for _, s := range result.Steps {
			b.WriteString(formatStepLine(s))
		}
	}

	if len(result.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "\nPossible moves: %s\n", strings.Join(result.PossibleMoves, ","))
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatStepLine(s service.StepInfo) string {
	status := "✓"
	if !s.Moved {
		status = "✗"
	}
	line := fmt.Sprintf("%d. %s [%s] merges=%d score=%d max=%d %s",
		s.Idx, s.Dir, s.Source, s.Merges, s.ScoreAfter, s.MaxTile, status)
	if s.Spawn != nil {
		line += fmt.Sprintf(" spawn=%d@(%d,%d)", s.Spawn.Value, s.Spawn.Row, s.Spawn.Col)
	}
	return line + "\n"
}

func formatHint(hint *service.HintResult) string {
	var b strings.Builder
	switch {
	case hint.GameOver:
		b.WriteString("Game is over; no move to suggest\n")
	case !hint.HasMove:
		b.WriteString("No possible moves\n")
	default:
		fmt.Fprintf(&b, "Suggested move: %s\n", hint.Direction)
	}

	if len(hint.Legal) > 0 {
		fmt.Fprintf(&b, "Legal moves: %s\n", strings.Join(hint.Legal, ","))
	}
	if len(hint.Outcomes) > 0 {
		b.WriteString("\nOutcomes:\n")
		for _, o := range hint.Outcomes {
			fmt.Fprintf(&b, "- %s: score %.0f\n", o.Direction, o.Score)
		}
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Move History (Page %d/%d, Total: %d moves):\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	for _, move := range history.Moves {
		status := "✓"
		if !move.Moved {
			status = "✗"
		}
		fmt.Fprintf(&b, "#%d %s [%s] score %d→%d merges=%d %s\n",
			move.MoveNumber, move.Action, move.Source,
			move.ScoreBefore, move.ScoreAfter, move.Merges, status)
	}

	if history.HasNext {
		b.WriteString("\n(More moves available on next page)")
	}
	return b.String()
}
