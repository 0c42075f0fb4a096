package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wraith4081/2048/game/engine"
	"github.com/wraith4081/2048/game/service"
)

// DefaultTimeout bounds every request made by a client built with NewClient
const DefaultTimeout = 10 * time.Second

// ErrNotFound is matched by APIError values carrying a 404
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("API error: %d", e.StatusCode)
	}
	return e.Message
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client talks to the game server's JSON API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the server at baseURL
func NewClient(baseURL string) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: DefaultTimeout})
}

// NewClientWithHTTP creates a client that sends requests through httpClient
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the server address the client targets
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SessionList is the response of ListSessions
type SessionList struct {
	Count    int                    `json:"count"`
	Total    int                    `json:"total"`
	Sessions []*service.SessionInfo `json:"sessions"`
	Sort     string                 `json:"sort"`
	Order    string                 `json:"order"`
}

// ListOptions filters ListSessions
type ListOptions struct {
	Sort  string // accessed, created or score
	Order string // asc or desc
	Limit int
}

// Leaderboard is the response of Leaderboard
type Leaderboard struct {
	Count   int                         `json:"count"`
	Entries []*service.LeaderboardEntry `json:"entries"`
}

type resetResponse struct {
	Message string            `json:"message"`
	State   *engine.GameState `json:"state"`
}

// CreateSession starts a session from a preset. Empty configID selects the
// server default and a zero size keeps the preset's size.
func (c *Client) CreateSession(ctx context.Context, configID string, size int) (*service.SessionInfo, error) {
	body := map[string]interface{}{}
	if configID != "" {
		body["config_id"] = configID
	}
	if size != 0 {
		body["size"] = size
	}

	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &info, nil
}

// ImportSnapshot creates a session that resumes from state
func (c *Client) ImportSnapshot(ctx context.Context, configID string, state *engine.GameState) (*service.SessionInfo, error) {
	body := map[string]interface{}{"state": state}
	if configID != "" {
		body["config_id"] = configID
	}

	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/snapshots", body, &info); err != nil {
		return nil, fmt.Errorf("import snapshot: %w", err)
	}
	return &info, nil
}

// GetSession returns session metadata including the current state
func (c *Client) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	var info service.SessionInfo
	if err := c.do(ctx, http.MethodGet, sessionPath(sessionID, ""), nil, &info); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &info, nil
}

// ListSessions lists active sessions
func (c *Client) ListSessions(ctx context.Context, opts ListOptions) (*SessionList, error) {
	query := url.Values{}
	if opts.Sort != "" {
		query.Set("sort", opts.Sort)
	}
	if opts.Order != "" {
		query.Set("order", opts.Order)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	var list SessionList
	if err := c.do(ctx, http.MethodGet, withQuery("/api/sessions", query), nil, &list); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return &list, nil
}

// DeleteSession removes a session
func (c *Client) DeleteSession(ctx context.Context, sessionID string) error {
	if err := c.do(ctx, http.MethodDelete, sessionPath(sessionID, ""), nil, nil); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Leaderboard returns the top sessions by score
func (c *Client) Leaderboard(ctx context.Context, limit int) (*Leaderboard, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var board Leaderboard
	if err := c.do(ctx, http.MethodGet, withQuery("/api/sessions/leaderboard", query), nil, &board); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return &board, nil
}

// GetState returns the current board of a session
func (c *Client) GetState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &state, nil
}

// Move applies a manual move
func (c *Client) Move(ctx context.Context, sessionID, direction string) (*service.MoveResult, error) {
	var result service.MoveResult
	body := map[string]string{"direction": direction}
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/move"), body, &result); err != nil {
		return nil, fmt.Errorf("move: %w", err)
	}
	return &result, nil
}

// BulkMove applies several manual moves, stopping at the first that changes nothing
func (c *Client) BulkMove(ctx context.Context, sessionID string, directions []string) (*service.BulkMoveResult, error) {
	var result service.BulkMoveResult
	body := map[string]interface{}{"moves": directions}
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/bulk-move"), body, &result); err != nil {
		return nil, fmt.Errorf("bulk move: %w", err)
	}
	return &result, nil
}

// AIMove asks the server's selector to pick and apply one move
func (c *Client) AIMove(ctx context.Context, sessionID string) (*service.MoveResult, error) {
	var result service.MoveResult
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/ai-move"), nil, &result); err != nil {
		return nil, fmt.Errorf("ai move: %w", err)
	}
	return &result, nil
}

// AutoPlay lets the selector play up to maxMoves moves. Zero uses the server cap.
func (c *Client) AutoPlay(ctx context.Context, sessionID string, maxMoves int) (*service.BulkMoveResult, error) {
	var body interface{}
	if maxMoves > 0 {
		body = map[string]int{"max_moves": maxMoves}
	}

	var result service.BulkMoveResult
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/autoplay"), body, &result); err != nil {
		return nil, fmt.Errorf("autoplay: %w", err)
	}
	return &result, nil
}

// Hint reports what the selector would play without changing the board
func (c *Client) Hint(ctx context.Context, sessionID string) (*service.HintResult, error) {
	var hint service.HintResult
	if err := c.do(ctx, http.MethodGet, sessionPath(sessionID, "/hint"), nil, &hint); err != nil {
		return nil, fmt.Errorf("hint: %w", err)
	}
	return &hint, nil
}

// EditCell increments or clears one cell
func (c *Client) EditCell(ctx context.Context, sessionID string, row, col int, op engine.EditOp) (*engine.GameState, error) {
	body := map[string]interface{}{"row": row, "col": col, "op": op}

	var state engine.GameState
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/edit"), body, &state); err != nil {
		return nil, fmt.Errorf("edit cell: %w", err)
	}
	return &state, nil
}

// Reset starts the session over with a fresh board
func (c *Client) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	var resp resetResponse
	if err := c.do(ctx, http.MethodPost, sessionPath(sessionID, "/reset"), nil, &resp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resp.State, nil
}

// History returns one page of the session's move history
func (c *Client) History(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	query := url.Values{}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Order != "" {
		query.Set("order", opts.Order)
	}

	var history service.HistoryResponse
	if err := c.do(ctx, http.MethodGet, withQuery(sessionPath(sessionID, "/history"), query), nil, &history); err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return &history, nil
}

// ListConfigs lists the presets the server can start games from
func (c *Client) ListConfigs(ctx context.Context) ([]service.ConfigInfo, error) {
	var configs []service.ConfigInfo
	if err := c.do(ctx, http.MethodGet, "/api/configs", nil, &configs); err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	return configs, nil
}

// Health checks that the server is answering
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

func withQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

// do sends one request and decodes a JSON response into result
func (c *Client) do(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			apiErr.Message = errResp["error"]
		}
		return apiErr
	}

	if result == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
