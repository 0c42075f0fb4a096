package service

import (
	"time"

	"github.com/wraith4081/2048/game/engine"
	"github.com/wraith4081/2048/game/selector"
)

// Event types emitted by game operations
const (
	EventMove     = "move"
	EventSpawn    = "spawn"
	EventGameOver = "game_over"
	EventReset    = "reset"
	EventAISelect = "ai_select"
	EventNoMoves  = "no_moves"
	EventEdit     = "edit"
)

// Stop reason codes reported by bulk operations
const (
	StopNoMove    = "no_move"
	StopGameOver  = "game_over"
	StopNoMoves   = "no_moves"
	StopLimit     = "limit"
	StopCancelled = "cancelled"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string             `json:"id"`
	ConfigName     string             `json:"config_name"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	GameState      *engine.GameState  `json:"game_state"`
	GameConfig     *engine.GameConfig `json:"game_config"`
}

// LeaderboardEntry ranks a session by score
type LeaderboardEntry struct {
	Rank       int         `json:"rank"`
	SessionID  string      `json:"session_id"`
	ConfigName string      `json:"config_name"`
	Size       int         `json:"size"`
	Score      uint32      `json:"score"`
	MaxTile    engine.Tile `json:"max_tile"`
	TotalMoves int         `json:"total_moves"`
	GameOver   bool        `json:"game_over"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success   bool              `json:"success"`
	GameState *engine.GameState `json:"game_state"`
	Message   string            `json:"message"`
	Selected  string            `json:"selected,omitempty"`
	Events    []GameEvent       `json:"events,omitempty"`
	Step      *StepInfo         `json:"step,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // no_move|game_over|no_moves|limit|cancelled
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartScore uint32      `json:"start_score"`
	EndScore   uint32      `json:"end_score"`
	ScoreDelta uint32      `json:"score_delta"`
	MaxTile    engine.Tile `json:"max_tile"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	// Final status aids
	GameOver      bool     `json:"game_over"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx         int               `json:"idx"`
	Dir         string            `json:"dir"`
	Source      engine.MoveSource `json:"source"`
	Moved       bool              `json:"moved"`
	ScoreBefore uint32            `json:"score_before"`
	ScoreAfter  uint32            `json:"score_after"`
	Merges      int               `json:"merges"`
	Spawn       *engine.Spawn     `json:"spawn,omitempty"`
	MaxTile     engine.Tile       `json:"max_tile"`
}

// HintResult explains what the selector would do without changing the game
type HintResult struct {
	Direction string             `json:"direction,omitempty"`
	HasMove   bool               `json:"has_move"`
	Legal     []string           `json:"legal"`
	Outcomes  []selector.Outcome `json:"outcomes"`
	GameOver  bool               `json:"game_over"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string        `json:"type"` // "move", "spawn", "game_over", "reset", "ai_select", "no_moves", "edit"
	Message   string        `json:"message"`
	Timestamp time.Time     `json:"timestamp"`
	Direction string        `json:"direction,omitempty"`
	Spawn     *engine.Spawn `json:"spawn,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo provides information about a game configuration
type ConfigInfo struct {
	Filename     string      `json:"filename"`
	ConfigID     string      `json:"config_id"` // The identifier to use for session creation
	Name         string      `json:"name"`      // Display name
	Description  string      `json:"description"`
	GridSize     int         `json:"grid_size"`
	MaxEditValue engine.Tile `json:"max_edit_value"`
}
