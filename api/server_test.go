package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/wraith4081/2048/game/engine"
	"github.com/wraith4081/2048/game/service"
	"github.com/wraith4081/2048/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string, size int) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	LeaderboardFunc   func(ctx context.Context, limit int) ([]*service.LeaderboardEntry, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	MoveFunc     func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error)
	BulkMoveFunc func(ctx context.Context, sessionID string, moves []string, reset bool) (*service.BulkMoveResult, error)
	AIMoveFunc   func(ctx context.Context, sessionID string) (*service.MoveResult, error)
	AutoPlayFunc func(ctx context.Context, sessionID string, maxMoves int) (*service.BulkMoveResult, error)
	HintFunc     func(ctx context.Context, sessionID string) (*service.HintResult, error)
	EditCellFunc func(ctx context.Context, sessionID string, row, col int, op string) (*engine.GameState, error)
	ResetFunc    func(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameStateFunc   func(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	ExportSnapshotFunc func(ctx context.Context, sessionID string) (*engine.GameState, error)
	ImportSnapshotFunc func(ctx context.Context, configName string, state *engine.GameState) (*service.SessionInfo, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *engine.GameConfig) error
}

func (m *MockGameService) CreateSession(ctx context.Context, configName string, size int) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName, size)
	}
	return &service.SessionInfo{ID: "ab12", ConfigName: configName, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ConfigName: "classic", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) Leaderboard(ctx context.Context, limit int) ([]*service.LeaderboardEntry, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc(ctx, limit)
	}
	return []*service.LeaderboardEntry{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction, reset)
	}
	return &service.MoveResult{Success: true, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*service.BulkMoveResult, error) {
	if m.BulkMoveFunc != nil {
		return m.BulkMoveFunc(ctx, sessionID, moves, reset)
	}
	return &service.BulkMoveResult{Success: true, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) AIMove(ctx context.Context, sessionID string) (*service.MoveResult, error) {
	if m.AIMoveFunc != nil {
		return m.AIMoveFunc(ctx, sessionID)
	}
	return &service.MoveResult{Success: true, Selected: "left", GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) AutoPlay(ctx context.Context, sessionID string, maxMoves int) (*service.BulkMoveResult, error) {
	if m.AutoPlayFunc != nil {
		return m.AutoPlayFunc(ctx, sessionID, maxMoves)
	}
	return &service.BulkMoveResult{Success: true, GameState: &engine.GameState{}}, nil
}

func (m *MockGameService) Hint(ctx context.Context, sessionID string) (*service.HintResult, error) {
	if m.HintFunc != nil {
		return m.HintFunc(ctx, sessionID)
	}
	return &service.HintResult{}, nil
}

func (m *MockGameService) EditCell(ctx context.Context, sessionID string, row, col int, op string) (*engine.GameState, error) {
	if m.EditCellFunc != nil {
		return m.EditCellFunc(ctx, sessionID, row, col, op)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.ResetFunc != nil {
		return m.ResetFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) GetMoveHistory(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
	if m.GetMoveHistoryFunc != nil {
		return m.GetMoveHistoryFunc(ctx, sessionID, opts)
	}
	return &service.HistoryResponse{
		Moves:      []engine.MoveHistoryEntry{},
		Page:       opts.Page,
		PageSize:   opts.Limit,
		TotalPages: 1,
	}, nil
}

func (m *MockGameService) ExportSnapshot(ctx context.Context, sessionID string) (*engine.GameState, error) {
	if m.ExportSnapshotFunc != nil {
		return m.ExportSnapshotFunc(ctx, sessionID)
	}
	return &engine.GameState{}, nil
}

func (m *MockGameService) ImportSnapshot(ctx context.Context, configName string, state *engine.GameState) (*service.SessionInfo, error) {
	if m.ImportSnapshotFunc != nil {
		return m.ImportSnapshotFunc(ctx, configName, state)
	}
	return &service.SessionInfo{ID: "cd34", ConfigName: configName, GameState: state}, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	config := engine.DefaultGameConfig()
	config.Name = configName
	return config, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

// Test helpers
func setupTestServer(t *testing.T, mockService *MockGameService) *Server {
	t.Helper()
	hub := websocket.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)
	return NewServer(mockService, hub)
}

func makeRequest(method, path string, body interface{}) *http.Request {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v (body %s)", err, w.Body.String())
	}
}

func sampleState(score uint32) *engine.GameState {
	return &engine.GameState{
		Size: 2,
		Grid: engine.NewGridFromRows([][]engine.Tile{
			{2, 4},
			{0, 8},
		}),
		Score: score,
	}
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name: "config id and size",
			body: map[string]interface{}{"config_id": "mini", "size": 5},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, size int) (*service.SessionInfo, error) {
					if configName != "mini" || size != 5 {
						t.Errorf("Expected mini/5, got %s/%d", configName, size)
					}
					return &service.SessionInfo{ID: "ab12", ConfigName: configName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "config_name alias",
			body: map[string]interface{}{"config_name": "large"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, size int) (*service.SessionInfo, error) {
					if configName != "large" {
						t.Errorf("Expected config 'large', got %s", configName)
					}
					return &service.SessionInfo{ID: "ab12", ConfigName: configName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "empty body uses defaults",
			body:           nil,
			expectedStatus: http.StatusCreated,
		},
		{
			name: "unknown config",
			body: map[string]interface{}{"config_id": "nope"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string, size int) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: 'nope'", service.ErrConfigNotFound)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}
			server := setupTestServer(t, mockService)

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions", tt.body))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old1", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Hour), GameState: sampleState(3)},
				{ID: "new1", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now, GameState: sampleState(9)},
				{ID: "mid1", CreatedAt: now.Add(-90 * time.Minute), LastAccessedAt: now.Add(-30 * time.Minute), GameState: sampleState(5)},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		name    string
		query   string
		wantIDs []string
		total   int
	}{
		{name: "default accessed desc", query: "", wantIDs: []string{"new1", "mid1", "old1"}, total: 3},
		{name: "created asc", query: "?sort=created&order=asc", wantIDs: []string{"old1", "mid1", "new1"}, total: 3},
		{name: "score with limit", query: "?sort=score&limit=2", wantIDs: []string{"new1", "mid1"}, total: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}

			var resp struct {
				Count    int                    `json:"count"`
				Total    int                    `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Total != tt.total || resp.Count != len(tt.wantIDs) {
				t.Errorf("Expected count %d total %d, got %d/%d", len(tt.wantIDs), tt.total, resp.Count, resp.Total)
			}
			for i, id := range tt.wantIDs {
				if i >= len(resp.Sessions) || resp.Sessions[i].ID != id {
					t.Errorf("Expected session %d to be %s", i, id)
				}
			}
		})
	}
}

func TestLeaderboard(t *testing.T) {
	mockService := &MockGameService{
		LeaderboardFunc: func(ctx context.Context, limit int) ([]*service.LeaderboardEntry, error) {
			if limit != 3 {
				t.Errorf("Expected limit 3, got %d", limit)
			}
			return []*service.LeaderboardEntry{
				{Rank: 1, SessionID: "ab12", Score: 40, MaxTile: 128},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/leaderboard?limit=3", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Count   int                         `json:"count"`
		Entries []*service.LeaderboardEntry `json:"entries"`
	}
	parseResponse(t, w, &resp)
	if resp.Count != 1 || resp.Entries[0].MaxTile != 128 {
		t.Errorf("Unexpected leaderboard response: %+v", resp)
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID == "ab12" {
				return &service.SessionInfo{ID: sessionID, GameState: sampleState(1)}, nil
			}
			return nil, service.ErrSessionNotFound
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID == "ab12" {
				return nil
			}
			return service.ErrSessionNotFound
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"get existing", "GET", "/api/sessions/ab12", http.StatusOK},
		{"get missing", "GET", "/api/sessions/zz99", http.StatusNotFound},
		{"delete existing", "DELETE", "/api/sessions/ab12", http.StatusOK},
		{"delete missing", "DELETE", "/api/sessions/zz99", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest(tt.method, tt.path, nil))
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

// Game Operation Tests

func TestMove(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "valid move left",
			requestBody: map[string]interface{}{"direction": "left"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
					if direction != "left" {
						t.Errorf("Expected direction 'left', got %s", direction)
					}
					return &service.MoveResult{
						Success:   true,
						GameState: sampleState(1),
						Step:      &service.StepInfo{Idx: 1, Dir: "left", Moved: true, ScoreAfter: 1},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.MoveResult
				parseResponse(t, w, &resp)
				if !resp.Success {
					t.Error("Expected success to be true")
				}
				if resp.GameState.Score != 1 {
					t.Errorf("Expected score 1, got %d", resp.GameState.Score)
				}
				if resp.GameState.Grid[1][0] != engine.Empty {
					t.Error("Expected empty cell to stay empty")
				}
			},
		},
		{
			name:        "move with reset",
			requestBody: map[string]interface{}{"direction": "up", "reset": true},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
					if !reset {
						t.Error("Expected reset to be true")
					}
					return &service.MoveResult{Success: true, GameState: sampleState(0)}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "malformed body",
			requestBody:    "not an object",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "invalid direction",
			requestBody: map[string]interface{}{"direction": "sideways"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
					return nil, fmt.Errorf("%w: %w", service.ErrInvalidInput, engine.ErrInvalidDirection)
				}
			},
			expectedStatus: http.StatusBadRequest,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]string
				parseResponse(t, w, &resp)
				if resp["error"] == "" {
					t.Error("Expected an error message")
				}
			},
		},
		{
			name:        "session not found",
			requestBody: map[string]interface{}{"direction": "up"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
					return nil, service.ErrSessionNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:        "unexpected failure",
			requestBody: map[string]interface{}{"direction": "up"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, reset bool) (*service.MoveResult, error) {
					return nil, errors.New("disk on fire")
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{}
			if tt.setupMock != nil {
				tt.setupMock(mockService)
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			req := makeRequest("POST", "/api/sessions/ab12/move", tt.requestBody)
			req = mux.SetURLVars(req, map[string]string{"id": "ab12"})

			server.handleMove(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestBulkMove(t *testing.T) {
	mockService := &MockGameService{
		BulkMoveFunc: func(ctx context.Context, sessionID string, moves []string, reset bool) (*service.BulkMoveResult, error) {
			if len(moves) != 3 || moves[2] != "down" {
				t.Errorf("Unexpected moves %v", moves)
			}
			return &service.BulkMoveResult{
				MovesExecuted:  2,
				RequestedMoves: 3,
				StopReasonCode: service.StopNoMove,
				StoppedOnMove:  3,
				GameState:      sampleState(2),
				ScoreDelta:     2,
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/bulk-move", map[string]interface{}{
		"moves": []string{"left", "up", "down"},
	}))

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp service.BulkMoveResult
	parseResponse(t, w, &resp)
	if resp.MovesExecuted != 2 || resp.StopReasonCode != service.StopNoMove || resp.StoppedOnMove != 3 {
		t.Errorf("Unexpected bulk result: %+v", resp)
	}
}

func TestAIMove(t *testing.T) {
	tests := []struct {
		name           string
		result         *service.MoveResult
		err            error
		expectedStatus int
		wantSelected   string
	}{
		{
			name: "selects a direction",
			result: &service.MoveResult{
				Success:   true,
				Selected:  "left",
				Message:   "AI selected move: Left",
				GameState: sampleState(1),
			},
			expectedStatus: http.StatusOK,
			wantSelected:   "left",
		},
		{
			name: "no moves",
			result: &service.MoveResult{
				Success:   false,
				Message:   "No possible moves. Game Over!",
				GameState: &engine.GameState{GameOver: true},
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing session",
			err:            service.ErrSessionNotFound,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupTestServer(t, &MockGameService{
				AIMoveFunc: func(ctx context.Context, sessionID string) (*service.MoveResult, error) {
					return tt.result, tt.err
				},
			})

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/ai-move", nil))

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.result == nil {
				return
			}
			var resp service.MoveResult
			parseResponse(t, w, &resp)
			if resp.Selected != tt.wantSelected {
				t.Errorf("Expected selected %q, got %q", tt.wantSelected, resp.Selected)
			}
			if resp.Message != tt.result.Message {
				t.Errorf("Expected message %q, got %q", tt.result.Message, resp.Message)
			}
		})
	}
}

func TestAutoPlay(t *testing.T) {
	var gotLimit int
	server := setupTestServer(t, &MockGameService{
		AutoPlayFunc: func(ctx context.Context, sessionID string, maxMoves int) (*service.BulkMoveResult, error) {
			gotLimit = maxMoves
			return &service.BulkMoveResult{MovesExecuted: maxMoves, GameState: sampleState(uint32(maxMoves))}, nil
		},
	})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/autoplay", map[string]int{"max_moves": 25}))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if gotLimit != 25 {
		t.Errorf("Expected limit 25, got %d", gotLimit)
	}

	// No body means the service default
	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/autoplay", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if gotLimit != 0 {
		t.Errorf("Expected limit 0 without a body, got %d", gotLimit)
	}
}

func TestHint(t *testing.T) {
	server := setupTestServer(t, &MockGameService{
		HintFunc: func(ctx context.Context, sessionID string) (*service.HintResult, error) {
			return &service.HintResult{Direction: "down", HasMove: true, Legal: []string{"left", "down"}}, nil
		},
	})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/hint", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp service.HintResult
	parseResponse(t, w, &resp)
	if resp.Direction != "down" || len(resp.Legal) != 2 {
		t.Errorf("Unexpected hint: %+v", resp)
	}
}

func TestEditCell(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		err            error
		expectedStatus int
	}{
		{name: "increment", body: map[string]interface{}{"row": 0, "col": 1, "op": "increment"}, expectedStatus: http.StatusOK},
		{name: "row zero is allowed", body: map[string]interface{}{"row": 0, "col": 0, "op": "clear"}, expectedStatus: http.StatusOK},
		{name: "missing coordinates", body: map[string]interface{}{"op": "clear"}, expectedStatus: http.StatusBadRequest},
		{
			name:           "out of bounds",
			body:           map[string]interface{}{"row": 9, "col": 0, "op": "clear"},
			err:            fmt.Errorf("%w: %w", service.ErrInvalidInput, engine.ErrCellOutOfBounds),
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupTestServer(t, &MockGameService{
				EditCellFunc: func(ctx context.Context, sessionID string, row, col int, op string) (*engine.GameState, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return sampleState(0), nil
				},
			})

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/edit", tt.body))
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestReset(t *testing.T) {
	server := setupTestServer(t, &MockGameService{
		ResetFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			return sampleState(0), nil
		},
	})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/reset", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Message string            `json:"message"`
		State   *engine.GameState `json:"state"`
	}
	parseResponse(t, w, &resp)
	if resp.Message != "Game reset successfully" || resp.State == nil {
		t.Errorf("Unexpected reset response: %+v", resp)
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  service.HistoryOptions
	}{
		{name: "defaults", query: "", want: service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{name: "explicit", query: "?page=2&limit=5&order=asc", want: service.HistoryOptions{Page: 2, Limit: 5, Order: "asc"}},
		{name: "garbage ignored", query: "?page=-1&limit=abc&order=random", want: service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.HistoryOptions
			server := setupTestServer(t, &MockGameService{
				GetMoveHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Page: opts.Page, PageSize: opts.Limit}, nil
				},
			})

			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/history"+tt.query, nil))
			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if got != tt.want {
				t.Errorf("Expected options %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestGetGameState(t *testing.T) {
	server := setupTestServer(t, &MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			if sessionID != "ab12" {
				return nil, service.ErrSessionNotFound
			}
			return sampleState(4), nil
		},
	})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/state", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var state engine.GameState
	parseResponse(t, w, &state)
	if state.Score != 4 || state.Grid[0][1] != 4 {
		t.Errorf("Unexpected state: %+v", state)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/zz99/state", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

// Snapshot Tests

func TestSnapshots(t *testing.T) {
	server := setupTestServer(t, &MockGameService{
		ExportSnapshotFunc: func(ctx context.Context, sessionID string) (*engine.GameState, error) {
			return sampleState(6), nil
		},
		ImportSnapshotFunc: func(ctx context.Context, configName string, state *engine.GameState) (*service.SessionInfo, error) {
			if state == nil {
				return nil, fmt.Errorf("%w: snapshot is required", service.ErrInvalidInput)
			}
			if state.Score != 6 || state.Grid[1][1] != 8 {
				t.Errorf("Unexpected imported state: %+v", state)
			}
			return &service.SessionInfo{ID: "cd34", ConfigName: configName, GameState: state}, nil
		},
	})

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/snapshot", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var snapshot engine.GameState
	parseResponse(t, w, &snapshot)

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/snapshots", map[string]interface{}{
		"config_id": "classic",
		"state":     snapshot,
	}))
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/snapshots", map[string]interface{}{}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without a state, got %d", w.Code)
	}
}

// Configuration Tests

func TestConfigs(t *testing.T) {
	var saved *engine.GameConfig
	server := setupTestServer(t, &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{{ConfigID: "mini", GridSize: 3}, {ConfigID: "classic", GridSize: 4}}, nil
		},
		LoadConfigFunc: func(ctx context.Context, configName string) (*engine.GameConfig, error) {
			if configName != "mini" {
				return nil, service.ErrConfigNotFound
			}
			return engine.ConfigForSize(engine.DefaultGameConfig(), 3), nil
		},
		SaveConfigFunc: func(ctx context.Context, configName string, config *engine.GameConfig) error {
			if config.GridSize > engine.MaxGridSize {
				return fmt.Errorf("%w: too big", service.ErrInvalidConfig)
			}
			saved = config
			return nil
		},
	})

	t.Run("list", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs", nil))
		var configs []*service.ConfigInfo
		parseResponse(t, w, &configs)
		if len(configs) != 2 {
			t.Errorf("Expected 2 configs, got %d", len(configs))
		}
	})

	t.Run("get with extension", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs/mini.json", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var config engine.GameConfig
		parseResponse(t, w, &config)
		if config.GridSize != 3 {
			t.Errorf("Expected grid size 3, got %d", config.GridSize)
		}
	})

	t.Run("get missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs/huge", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("create", func(t *testing.T) {
		config := engine.ConfigForSize(engine.DefaultGameConfig(), 8)
		config.Name = "octo"
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/configs", config))
		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d", w.Code)
		}
		if saved == nil || saved.GridSize != 8 {
			t.Error("Expected config to be saved")
		}
	})

	t.Run("create invalid", func(t *testing.T) {
		config := engine.ConfigForSize(engine.DefaultGameConfig(), 99)
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/configs", config))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("create without name", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("POST", "/api/configs", map[string]int{"grid_size": 4}))
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestHealth(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/health", nil))

	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy status, got %v", resp)
	}
}

func TestWebSocketHandler(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		hub            bool
		expectedStatus int
	}{
		{name: "missing session parameter", queryParams: "", hub: true, expectedStatus: http.StatusBadRequest},
		{name: "unknown session", queryParams: "?session=zz99", hub: true, expectedStatus: http.StatusNotFound},
		{name: "hub disabled", queryParams: "?session=ab12", hub: false, expectedStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockGameService{
				GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
					if sessionID == "ab12" {
						return &service.SessionInfo{ID: sessionID}, nil
					}
					return nil, service.ErrSessionNotFound
				},
			}

			var server *Server
			if tt.hub {
				server = setupTestServer(t, mockService)
			} else {
				server = NewServer(mockService, nil)
			}

			w := httptest.NewRecorder()
			server.ServeHTTP(w, httptest.NewRequest("GET", "/ws"+tt.queryParams, nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}
