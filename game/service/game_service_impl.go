package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wraith4081/2048/game/engine"
	"github.com/wraith4081/2048/game/selector"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	selector *selector.Selector
	now      func() time.Time
	mu       sync.RWMutex
}

// Option configures the game service
type Option func(*gameServiceImpl)

// WithSelector replaces the default move selector
func WithSelector(sel *selector.Selector) Option {
	return func(s *gameServiceImpl) {
		s.selector = sel
	}
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		selector: selector.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// getConfigID returns the config_id for a given config name, used for consistent API responses
func (s *gameServiceImpl) getConfigID(configName string) string {
	availableConfigs, err := s.configs.ListConfigs()
	if err == nil {
		for _, cfg := range availableConfigs {
			if cfg.Name == configName {
				return cfg.ConfigID
			}
		}
	}
	// Fallback: return as-is or "default"
	if configName == "" {
		return "default"
	}
	return configName
}

// resolveConfig loads a preset by name (or the default) and resizes it when
// size is in range. Out of range sizes keep the preset's own size.
func (s *gameServiceImpl) resolveConfig(configName string, size int) (*engine.GameConfig, error) {
	var config *engine.GameConfig
	if configName != "" {
		loaded, err := s.configs.LoadConfig(configName)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				availableConfigs, listErr := s.configs.ListConfigs()
				if listErr == nil && len(availableConfigs) > 0 {
					var configIDs []string
					for _, cfg := range availableConfigs {
						configIDs = append(configIDs, cfg.ConfigID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available configs: %v", ErrConfigNotFound, configName, configIDs)
				}
				return nil, fmt.Errorf("%w: '%s'. Use /api/configs to list available configurations", ErrConfigNotFound, configName)
			}
			return nil, fmt.Errorf("failed to load config %s: %w", configName, err)
		}
		config = loaded
	} else {
		config = s.configs.GetDefault()
	}

	switch {
	case size == 0 || size == config.GridSize:
	case size < engine.MinGridSize || size > engine.MaxGridSize:
		log.Warn().Int("size", size).Int("default", config.GridSize).Msg("invalid grid size, using preset size")
	default:
		config = engine.ConfigForSize(config, size)
	}
	return config, nil
}

func (s *gameServiceImpl) sessionInfo(sess *Session, configID string) *SessionInfo {
	if configID == "" {
		configID = s.getConfigID(sess.Config.Name)
	}
	return &SessionInfo{
		ID:             sess.ID,
		ConfigName:     configID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState().Clone(),
		GameConfig:     sess.Config,
	}
}

// getSession looks up a session and refreshes its access time
func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionNotFound, err)
	}
	s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// CreateSession creates a new game session
func (s *gameServiceImpl) CreateSession(ctx context.Context, configName string, size int) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.resolveConfig(configName, size)
	if err != nil {
		return nil, err
	}

	// Let session manager generate a proper 4-character ID
	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Debug().Str("session", session.ID).Str("config", config.Name).Int("size", config.GridSize).Msg("session created")
	return s.sessionInfo(session, configName), nil
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return s.sessionInfo(sess, ""), nil
}

// ListSessions returns all active sessions, oldest first
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess, ""))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// Leaderboard ranks sessions by score, then by largest tile
func (s *gameServiceImpl) Leaderboard(ctx context.Context, limit int) ([]*LeaderboardEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	entries := make([]*LeaderboardEntry, 0, len(sessions))
	for _, sess := range sessions {
		state := sess.Engine.GetState()
		entries = append(entries, &LeaderboardEntry{
			SessionID:  sess.ID,
			ConfigName: s.getConfigID(sess.Config.Name),
			Size:       state.Size,
			Score:      state.Score,
			MaxTile:    engine.MaxTile(state.Grid),
			TotalMoves: state.TotalMoves,
			GameOver:   state.GameOver,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if entries[i].MaxTile != entries[j].MaxTile {
			return entries[i].MaxTile > entries[j].MaxTile
		}
		return entries[i].SessionID < entries[j].SessionID
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i, entry := range entries {
		entry.Rank = i + 1
	}
	return entries, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move executes a single manual move for a session
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	dir, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, s.event(EventReset, "Game reset to initial state"))
	}

	wasOver := sess.Engine.IsGameOver()
	moved := sess.Engine.Move(dir)
	state := sess.Engine.GetState()

	result := &MoveResult{
		Success: moved,
		Message: state.Message,
		Events:  events,
	}
	if wasOver {
		result.Message = sess.Engine.GameOverMessage()
	} else {
		step := s.lastStep(sess, 1)
		result.Step = &step
		result.Events = append(result.Events, s.moveEvents(state, step)...)
	}
	result.GameState = state.Clone()

	return result, nil
}

// BulkMove executes multiple manual moves, stopping at the first one that
// changes nothing or when the game ends
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	dirs := make([]engine.Direction, 0, len(moves))
	for i, move := range moves {
		dir, err := engine.ParseDirection(move)
		if err != nil {
			return nil, fmt.Errorf("%w: move %d: %w", ErrInvalidInput, i+1, err)
		}
		dirs = append(dirs, dir)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := s.startBulk(sess, len(moves), reset)

	// Limit moves to prevent abuse
	if len(dirs) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		dirs = dirs[:engine.MaxBulkMoves]
	}

	for i, dir := range dirs {
		if sess.Engine.IsGameOver() {
			result.StoppedReason = "game over"
			result.StopReasonCode = StopGameOver
			result.StoppedOnMove = i + 1
			break
		}

		moved := sess.Engine.Move(dir)
		step := s.lastStep(sess, i+1)
		result.Steps = append(result.Steps, step)

		if !moved {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d changed nothing: %s", i+1, dir)
			result.StopReasonCode = StopNoMove
			result.StoppedOnMove = i + 1
			break
		}

		result.MovesExecuted++
		result.Events = append(result.Events, s.moveEvents(sess.Engine.GetState(), step)...)
	}

	s.finishBulk(sess, result)
	return result, nil
}

// AIMove asks the selector for a direction and applies it once
func (s *gameServiceImpl) AIMove(ctx context.Context, sessionID string) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if sess.Engine.IsGameOver() {
		return &MoveResult{
			Success:   false,
			GameState: sess.Engine.GetState().Clone(),
			Message:   sess.Engine.GameOverMessage(),
		}, nil
	}

	result := &MoveResult{}
	result.Events, result.Step = s.playAI(sess, 1)
	state := sess.Engine.GetState()

	result.Success = result.Step != nil
	if result.Step != nil {
		result.Selected = result.Step.Dir
	}
	result.Message = state.Message
	result.GameState = state.Clone()
	return result, nil
}

// playAI runs one selector decision against the session. The returned step
// is nil when no direction was legal and the game was ended.
func (s *gameServiceImpl) playAI(sess *Session, idx int) ([]GameEvent, *StepInfo) {
	dir, ok := s.selector.Play(sess.Engine)
	state := sess.Engine.GetState()
	if !ok {
		log.Debug().Str("session", sess.ID).Uint32("score", state.Score).Msg("selector found no legal move")
		return []GameEvent{
			s.event(EventNoMoves, state.Message),
			s.event(EventGameOver, state.Message),
		}, nil
	}

	step := s.lastStep(sess, idx)
	selected := s.event(EventAISelect, sess.Config.AISelectedMessage(dir))
	selected.Direction = dir.String()
	events := append([]GameEvent{selected}, s.moveEvents(state, step)...)
	return events, &step
}

// AutoPlay lets the selector play until the game ends, maxMoves is reached or
// the context is cancelled
func (s *gameServiceImpl) AutoPlay(ctx context.Context, sessionID string, maxMoves int) (*BulkMoveResult, error) {
	if maxMoves <= 0 || maxMoves > engine.MaxAutoPlayMoves {
		maxMoves = engine.MaxAutoPlayMoves
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	result := s.startBulk(sess, maxMoves, false)
	result.Limit = maxMoves

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			result.StoppedReason = err.Error()
			result.StopReasonCode = StopCancelled
			result.StoppedOnMove = i + 1
			break
		}
		if sess.Engine.IsGameOver() {
			result.StoppedReason = "game over"
			result.StopReasonCode = StopGameOver
			result.StoppedOnMove = i + 1
			break
		}
		if i >= maxMoves {
			result.StoppedReason = fmt.Sprintf("move limit %d reached", maxMoves)
			result.StopReasonCode = StopLimit
			break
		}

		events, step := s.playAI(sess, i+1)
		result.Events = append(result.Events, events...)
		if step == nil {
			result.StoppedReason = "no legal moves"
			result.StopReasonCode = StopNoMoves
			result.StoppedOnMove = i + 1
			break
		}
		result.Steps = append(result.Steps, *step)
		result.MovesExecuted++
	}

	s.finishBulk(sess, result)
	log.Info().
		Str("session", sess.ID).
		Int("moves", result.MovesExecuted).
		Uint32("score", result.EndScore).
		Uint32("max_tile", uint32(result.MaxTile)).
		Str("stop", result.StopReasonCode).
		Msg("autoplay finished")
	return result, nil
}

// Hint reports the selector's choice without mutating the session
func (s *gameServiceImpl) Hint(ctx context.Context, sessionID string) (*HintResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	state := sess.Engine.GetState()
	hint := &HintResult{
		Legal:    []string{},
		Outcomes: []selector.Outcome{},
		GameOver: state.GameOver,
	}
	if state.GameOver {
		return hint, nil
	}

	decision := s.selector.Analyze(state)
	for _, dir := range decision.Legal {
		hint.Legal = append(hint.Legal, dir.String())
	}
	if decision.Outcomes != nil {
		hint.Outcomes = decision.Outcomes
	}
	hint.HasMove = decision.HasMove
	if decision.HasMove {
		hint.Direction = decision.Best.String()
	}
	return hint, nil
}

// EditCell applies a manual cell edit
func (s *gameServiceImpl) EditCell(ctx context.Context, sessionID string, row, col int, op string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.Engine.EditCell(row, col, engine.EditOp(op)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return sess.Engine.GetState().Clone(), nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.Engine.Reset().Clone(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState().Clone(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	moves := []engine.MoveHistoryEntry{}
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else if start < total {
		moves = append(moves, history[start:end]...)
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ExportSnapshot returns a copy of the session state in its serializable form
func (s *gameServiceImpl) ExportSnapshot(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState().Clone(), nil
}

// ImportSnapshot starts a new session from a previously exported state
func (s *gameServiceImpl) ImportSnapshot(ctx context.Context, configName string, state *engine.GameState) (*SessionInfo, error) {
	if state == nil {
		return nil, fmt.Errorf("%w: snapshot is required", ErrInvalidInput)
	}
	if err := engine.ValidateGrid(state.Grid, state.Size); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	config, err := s.resolveConfig(configName, state.Size)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Adopt("", config, state.Clone())
	if err != nil {
		if errors.Is(err, engine.ErrInvalidState) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return nil, fmt.Errorf("failed to import snapshot: %w", err)
	}

	log.Debug().Str("session", sess.ID).Int("size", state.Size).Uint32("score", state.Score).Msg("snapshot imported")
	return s.sessionInfo(sess, configName), nil
}

// ListConfigs returns available game configurations
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific game configuration
func (s *gameServiceImpl) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	return s.configs.LoadConfig(configName)
}

// SaveConfig saves a game configuration to disk
func (s *gameServiceImpl) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	return s.configs.SaveConfig(configName, config)
}

func (s *gameServiceImpl) event(kind, message string) GameEvent {
	return GameEvent{Type: kind, Message: message, Timestamp: s.now()}
}

// lastStep converts the engine's newest history entry into a step record
func (s *gameServiceImpl) lastStep(sess *Session, idx int) StepInfo {
	step := StepInfo{Idx: idx, MaxTile: engine.MaxTile(sess.Engine.GetState().Grid)}
	if last := sess.Engine.GetLastMove(); last != nil {
		step.Dir = last.Action
		step.Source = last.Source
		step.Moved = last.Moved
		step.ScoreBefore = last.ScoreBefore
		step.ScoreAfter = last.ScoreAfter
		step.Merges = last.Merges
		step.Spawn = last.Spawn
	}
	return step
}

// moveEvents generates events from a move
func (s *gameServiceImpl) moveEvents(state *engine.GameState, step StepInfo) []GameEvent {
	if !step.Moved {
		return nil
	}

	move := s.event(EventMove, fmt.Sprintf("Moved %s, score %d", step.Dir, step.ScoreAfter))
	move.Direction = step.Dir
	events := []GameEvent{move}

	if step.Spawn != nil {
		spawn := s.event(EventSpawn, fmt.Sprintf("Spawned %d at (%d,%d)", step.Spawn.Value, step.Spawn.Row, step.Spawn.Col))
		spawn.Spawn = step.Spawn
		events = append(events, spawn)
	}

	if state.GameOver {
		events = append(events, s.event(EventGameOver, state.Message))
	}
	return events
}

func (s *gameServiceImpl) startBulk(sess *Session, requested int, reset bool) *BulkMoveResult {
	result := &BulkMoveResult{
		RequestedMoves: requested,
		Events:         make([]GameEvent, 0),
		Success:        true,
	}
	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, s.event(EventReset, "Game reset to initial state"))
	}
	result.StartScore = sess.Engine.GetScore()
	return result
}

func (s *gameServiceImpl) finishBulk(sess *Session, result *BulkMoveResult) {
	state := sess.Engine.GetState()
	result.GameState = state.Clone()
	result.EndScore = state.Score
	result.ScoreDelta = state.Score - result.StartScore
	result.MaxTile = engine.MaxTile(state.Grid)
	result.GameOver = state.GameOver
	result.Message = state.Message

	for _, dir := range sess.Engine.GetPossibleMoves() {
		result.PossibleMoves = append(result.PossibleMoves, dir.String())
	}
}
