package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	gorillaws "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/wricardo/coincrate/game/config"
	"github.com/wricardo/coincrate/game/engine"
	"github.com/wricardo/coincrate/game/service"
	"github.com/wricardo/coincrate/transport/websocket"
)

// MockGameService implements service.GameService for testing
type MockGameService struct {
	// Session Management
	CreateSessionFunc func(ctx context.Context, configName string) (*service.SessionInfo, error)
	GetSessionFunc    func(ctx context.Context, sessionID string) (*service.SessionInfo, error)
	ListSessionsFunc  func(ctx context.Context) ([]*service.SessionInfo, error)
	DeleteSessionFunc func(ctx context.Context, sessionID string) error

	// Game Operations
	MoveFunc     func(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error)
	BulkMoveFunc func(ctx context.Context, sessionID string, moves []string, restart bool) (*service.BulkMoveResult, error)
	RestartFunc  func(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	// Game State
	GetGameStateFunc   func(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GetMoveHistoryFunc func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error)
	HintFunc           func(ctx context.Context, sessionID string) (*service.HintResult, error)

	// Configuration
	ListConfigsFunc func(ctx context.Context) ([]*service.ConfigInfo, error)
	LoadConfigFunc  func(ctx context.Context, configName string) (*engine.RoundConfig, error)
	SaveConfigFunc  func(ctx context.Context, configName string, config *engine.RoundConfig) error
}

func (m *MockGameService) CreateSession(ctx context.Context, configName string) (*service.SessionInfo, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, configName)
	}
	return &service.SessionInfo{ID: "test-session", ConfigName: configName, CreatedAt: time.Now()}, nil
}

func (m *MockGameService) GetSession(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, sessionID)
	}
	return &service.SessionInfo{ID: sessionID, ConfigName: "test-config", CreatedAt: time.Now()}, nil
}

func (m *MockGameService) ListSessions(ctx context.Context) ([]*service.SessionInfo, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx)
	}
	return []*service.SessionInfo{}, nil
}

func (m *MockGameService) DeleteSession(ctx context.Context, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, sessionID)
	}
	return nil
}

func (m *MockGameService) Move(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error) {
	if m.MoveFunc != nil {
		return m.MoveFunc(ctx, sessionID, direction, restart)
	}
	return &service.MoveResult{Success: true, State: &engine.Snapshot{}}, nil
}

func (m *MockGameService) BulkMove(ctx context.Context, sessionID string, moves []string, restart bool) (*service.BulkMoveResult, error) {
	if m.BulkMoveFunc != nil {
		return m.BulkMoveFunc(ctx, sessionID, moves, restart)
	}
	return &service.BulkMoveResult{Success: true, State: &engine.Snapshot{}}, nil
}

func (m *MockGameService) Restart(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.RestartFunc != nil {
		return m.RestartFunc(ctx, sessionID)
	}
	return &engine.Snapshot{}, nil
}

func (m *MockGameService) GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	if m.GetGameStateFunc != nil {
		return m.GetGameStateFunc(ctx, sessionID)
	}
	return &engine.Snapshot{}, nil
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

func (m *MockGameService) Hint(ctx context.Context, sessionID string) (*service.HintResult, error) {
	if m.HintFunc != nil {
		return m.HintFunc(ctx, sessionID)
	}
	return &service.HintResult{}, nil
}

func (m *MockGameService) ListConfigs(ctx context.Context) ([]*service.ConfigInfo, error) {
	if m.ListConfigsFunc != nil {
		return m.ListConfigsFunc(ctx)
	}
	return []*service.ConfigInfo{}, nil
}

func (m *MockGameService) LoadConfig(ctx context.Context, configName string) (*engine.RoundConfig, error) {
	if m.LoadConfigFunc != nil {
		return m.LoadConfigFunc(ctx, configName)
	}
	return &engine.RoundConfig{Name: configName, Description: "Test config"}, nil
}

func (m *MockGameService) SaveConfig(ctx context.Context, configName string, config *engine.RoundConfig) error {
	if m.SaveConfigFunc != nil {
		return m.SaveConfigFunc(ctx, configName, config)
	}
	return nil
}

// Test helpers
func setupTestServer(t *testing.T, mockService *MockGameService) *Server {
	t.Helper()
	logger, _ := test.NewNullLogger()

	hub := websocket.NewHub()
	hub.SetLogger(logger)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := NewServer(mockService, hub)
	server.SetLogger(logger)
	return server
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

func waitRegistered(t *testing.T, server *Server, sessionID string) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for server.hub.ClientCount(sessionID) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Timed out waiting for registration")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	parseResponse(t, w, &resp)
	return resp["error"]
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"session not found", fmt.Errorf("lookup: %w", service.ErrSessionNotFound), http.StatusNotFound},
		{"config not found", service.ErrConfigNotFound, http.StatusNotFound},
		{"unknown direction", fmt.Errorf("move 2: %w", service.ErrUnknownDirection), http.StatusBadRequest},
		{"invalid round config", engine.ErrInvalidConfig, http.StatusBadRequest},
		{"invalid config file", fmt.Errorf("%w: bad", config.ErrInvalidConfig), http.StatusBadRequest},
		{"anything else", fmt.Errorf("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.expected {
				t.Errorf("Expected status %d, got %d", tt.expected, got)
			}
		})
	}
}

// Session Management Tests

func TestCreateSession(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    map[string]string
		setupMock      func(*MockGameService)
		expectedStatus int
		validateResp   func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:        "Create session with default config",
			requestBody: nil,
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					if configName != "" {
						t.Errorf("Expected empty config name, got %s", configName)
					}
					return &service.SessionInfo{ID: "ab12", ConfigName: "classic"}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.SessionInfo
				parseResponse(t, w, &resp)
				if resp.ID != "ab12" {
					t.Errorf("Expected session ID ab12, got %s", resp.ID)
				}
			},
		},
		{
			name:        "Create session with config_id",
			requestBody: map[string]string{"config_id": "small", "config_name": "ignored"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					if configName != "small" {
						t.Errorf("Expected config name 'small', got %s", configName)
					}
					return &service.SessionInfo{ID: "cd34", ConfigName: configName}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:        "Unknown config",
			requestBody: map[string]string{"config_name": "nope"},
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("%w: '%s'", service.ErrConfigNotFound, configName)
				}
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "Handle service error",
			setupMock: func(m *MockGameService) {
				m.CreateSessionFunc = func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					return nil, fmt.Errorf("service error")
				}
			},
			expectedStatus: http.StatusInternalServerError,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				if msg := errorMessage(t, w); msg != "service error" {
					t.Errorf("Expected error message 'service error', got %s", msg)
				}
			},
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
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.validateResp != nil {
				tt.validateResp(t, w)
			}
		})
	}
}

func TestListSessions(t *testing.T) {
	now := time.Now()
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "old", CreatedAt: now.Add(-2 * time.Hour), LastAccessedAt: now.Add(-time.Minute)},
				{ID: "mid", CreatedAt: now.Add(-time.Hour), LastAccessedAt: now.Add(-time.Hour)},
				{ID: "new", CreatedAt: now, LastAccessedAt: now},
			}, nil
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		name     string
		query    string
		expected []string
		total    float64
	}{
		{"default sorts by last access, newest first", "", []string{"new", "old", "mid"}, 3},
		{"created ascending", "?sort=created&order=asc", []string{"old", "mid", "new"}, 3},
		{"limit", "?sort=created&limit=2", []string{"new", "mid"}, 3},
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
				Total    float64                `json:"total"`
				Sessions []*service.SessionInfo `json:"sessions"`
			}
			parseResponse(t, w, &resp)

			if resp.Count != len(tt.expected) || resp.Total != tt.total {
				t.Errorf("Expected count %d of %v, got %d of %v", len(tt.expected), tt.total, resp.Count, resp.Total)
			}
			for i, id := range tt.expected {
				if i >= len(resp.Sessions) || resp.Sessions[i].ID != id {
					t.Errorf("Expected session %d to be %s, got %+v", i, id, resp.Sessions)
					break
				}
			}
		})
	}
}

func TestGetAndDeleteSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID != "ab12" {
				return nil, service.ErrSessionNotFound
			}
			return &service.SessionInfo{ID: sessionID, ConfigName: "classic"}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			if sessionID != "ab12" {
				return fmt.Errorf("delete %s: %w", sessionID, service.ErrSessionNotFound)
			}
			return nil
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
			name:        "Valid move",
			requestBody: map[string]interface{}{"direction": "up"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error) {
					if direction != "up" || restart {
						t.Errorf("Expected plain move up, got %s restart=%v", direction, restart)
					}
					return &service.MoveResult{
						Success: true,
						Outcome: engine.Moved,
						State:   &engine.Snapshot{Player: engine.Position{X: 1, Y: 1}, TotalCoins: 5},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.MoveResult
				parseResponse(t, w, &resp)
				if !resp.Success || resp.Outcome != engine.Moved {
					t.Errorf("Expected a successful move, got %+v", resp)
				}
				if resp.State.Player.Y != 1 {
					t.Errorf("Expected Y position 1, got %d", resp.State.Player.Y)
				}
			},
		},
		{
			name:        "Move with restart",
			requestBody: map[string]interface{}{"direction": "right", "restart": true},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error) {
					if !restart {
						t.Error("Expected restart to be true")
					}
					return &service.MoveResult{Success: true, State: &engine.Snapshot{}}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "Blocked move is not an HTTP error",
			requestBody: map[string]interface{}{"direction": "left"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error) {
					return &service.MoveResult{
						Outcome:     engine.Blocked,
						State:       &engine.Snapshot{},
						AttemptedTo: &service.AttemptInfo{X: 0, Y: 1, Cell: engine.Wall, Glyph: "0"},
					}, nil
				}
			},
			expectedStatus: http.StatusOK,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp service.MoveResult
				parseResponse(t, w, &resp)
				if resp.Success || resp.AttemptedTo == nil || resp.AttemptedTo.Cell != engine.Wall {
					t.Errorf("Expected a blocked move against a wall, got %+v", resp)
				}
			},
		},
		{
			name:        "Unknown direction",
			requestBody: map[string]interface{}{"direction": "north"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error) {
					return nil, fmt.Errorf("%w: %q", service.ErrUnknownDirection, direction)
				}
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Invalid request body",
			requestBody:    "not an object",
			expectedStatus: http.StatusBadRequest,
			validateResp: func(t *testing.T, w *httptest.ResponseRecorder) {
				if msg := errorMessage(t, w); msg != "Invalid request body" {
					t.Errorf("Expected error 'Invalid request body', got %s", msg)
				}
			},
		},
		{
			name:        "Session not found",
			requestBody: map[string]interface{}{"direction": "up"},
			setupMock: func(m *MockGameService) {
				m.MoveFunc = func(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error) {
					return nil, service.ErrSessionNotFound
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
	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		setupMock      func(*MockGameService)
		expectedStatus int
	}{
		{
			name:        "Moves are passed through",
			requestBody: map[string]interface{}{"moves": []string{"up", "left"}, "restart": true},
			setupMock: func(m *MockGameService) {
				m.BulkMoveFunc = func(ctx context.Context, sessionID string, moves []string, restart bool) (*service.BulkMoveResult, error) {
					if len(moves) != 2 || moves[1] != "left" || !restart {
						t.Errorf("Unexpected bulk move %v restart=%v", moves, restart)
					}
					return &service.BulkMoveResult{MovesExecuted: 2, RequestedMoves: 2, Success: true, State: &engine.Snapshot{}}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Empty move list",
			requestBody:    map[string]interface{}{"moves": []string{}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:        "Unknown direction",
			requestBody: map[string]interface{}{"moves": []string{"up", "sideways"}},
			setupMock: func(m *MockGameService) {
				m.BulkMoveFunc = func(ctx context.Context, sessionID string, moves []string, restart bool) (*service.BulkMoveResult, error) {
					return nil, fmt.Errorf("move 2: %w", service.ErrUnknownDirection)
				}
			},
			expectedStatus: http.StatusBadRequest,
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
			server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/bulk-move", tt.requestBody))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestRestart(t *testing.T) {
	mockService := &MockGameService{
		RestartFunc: func(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
			if sessionID != "ab12" {
				return nil, service.ErrSessionNotFound
			}
			return &engine.Snapshot{RoundID: "r2", Status: engine.Playing}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/ab12/restart", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp struct {
		Message string          `json:"message"`
		State   engine.Snapshot `json:"state"`
	}
	parseResponse(t, w, &resp)
	if resp.Message != "New round started" || resp.State.RoundID != "r2" {
		t.Errorf("Unexpected restart response %+v", resp)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("POST", "/api/sessions/zz99/restart", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestGetHistory(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected service.HistoryOptions
	}{
		{"defaults", "", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
		{"explicit", "?page=3&limit=5&order=asc", service.HistoryOptions{Page: 3, Limit: 5, Order: "asc"}},
		{"invalid values fall back", "?page=-1&limit=abc&order=sideways", service.HistoryOptions{Page: 1, Limit: 20, Order: "desc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got service.HistoryOptions
			mockService := &MockGameService{
				GetMoveHistoryFunc: func(ctx context.Context, sessionID string, opts service.HistoryOptions) (*service.HistoryResponse, error) {
					got = opts
					return &service.HistoryResponse{Moves: []engine.MoveHistoryEntry{}, Page: opts.Page}, nil
				},
			}

			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/history"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", w.Code)
			}
			if got != tt.expected {
				t.Errorf("Expected options %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestGetGameStateAndHint(t *testing.T) {
	mockService := &MockGameService{
		GetGameStateFunc: func(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
			return &engine.Snapshot{RoundID: "r1", CoinsCollected: 2, TotalCoins: 5}, nil
		},
		HintFunc: func(ctx context.Context, sessionID string) (*service.HintResult, error) {
			return &service.HintResult{Found: true, Direction: "down", Distance: 3}, nil
		},
	}
	server := setupTestServer(t, mockService)

	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/state", nil))
	var state engine.Snapshot
	parseResponse(t, w, &state)
	if state.CoinsCollected != 2 || state.TotalCoins != 5 {
		t.Errorf("Expected coins 2/5, got %d/%d", state.CoinsCollected, state.TotalCoins)
	}

	w = httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/api/sessions/ab12/hint", nil))
	var hint service.HintResult
	parseResponse(t, w, &hint)
	if !hint.Found || hint.Direction != "down" || hint.Distance != 3 {
		t.Errorf("Unexpected hint %+v", hint)
	}
}

// Configuration Tests

func TestConfigs(t *testing.T) {
	var saved *engine.RoundConfig
	var savedName string
	mockService := &MockGameService{
		ListConfigsFunc: func(ctx context.Context) ([]*service.ConfigInfo, error) {
			return []*service.ConfigInfo{{ConfigID: "classic", Name: "classic", Rows: 10, Cols: 30}}, nil
		},
		LoadConfigFunc: func(ctx context.Context, configName string) (*engine.RoundConfig, error) {
			if configName != "classic" {
				return nil, service.ErrConfigNotFound
			}
			c := engine.DefaultRoundConfig()
			return &c, nil
		},
		SaveConfigFunc: func(ctx context.Context, configName string, cfg *engine.RoundConfig) error {
			if err := engine.ValidateRoundConfig(cfg); err != nil {
				return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
			}
			saved, savedName = cfg, configName
			return nil
		},
	}
	server := setupTestServer(t, mockService)

	t.Run("list", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs", nil))
		var configs []service.ConfigInfo
		parseResponse(t, w, &configs)
		if len(configs) != 1 || configs[0].ConfigID != "classic" {
			t.Errorf("Unexpected configs %+v", configs)
		}
	})

	t.Run("get", func(t *testing.T) {
		w := httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs/classic", nil))
		var cfg engine.RoundConfig
		parseResponse(t, w, &cfg)
		if cfg.Rows != 10 || cfg.Cols != 30 || cfg.CoinCount != 5 {
			t.Errorf("Expected the classic board, got %+v", cfg)
		}

		w = httptest.NewRecorder()
		server.ServeHTTP(w, makeRequest("GET", "/api/configs/missing", nil))
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	tests := []struct {
		name           string
		body           map[string]interface{}
		expectedStatus int
		expectedFile   string
	}{
		{"valid json", map[string]interface{}{"name": "tiny", "rows": 5, "cols": 5, "coin_count": 1}, http.StatusCreated, "tiny"},
		{"valid yaml filename", map[string]interface{}{"name": "Tiny", "filename": "tiny.yaml", "rows": 5, "cols": 5}, http.StatusCreated, "tiny.yaml"},
		{"missing name", map[string]interface{}{"rows": 5, "cols": 5}, http.StatusBadRequest, ""},
		{"invalid board", map[string]interface{}{"name": "bad", "rows": 2, "cols": 5}, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run("save "+tt.name, func(t *testing.T) {
			savedName = ""
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("POST", "/api/configs", tt.body))
			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
			if savedName != tt.expectedFile {
				t.Errorf("Expected saved file %q, got %q", tt.expectedFile, savedName)
			}
		})
	}

	if saved == nil || saved.Rows != 5 {
		t.Errorf("Expected a saved 5x5 config, got %+v", saved)
	}
}

func TestUnifiedSessions(t *testing.T) {
	mockService := &MockGameService{
		ListSessionsFunc: func(ctx context.Context) ([]*service.SessionInfo, error) {
			return []*service.SessionInfo{
				{ID: "a", ConfigName: "classic", RoundConfig: &engine.RoundConfig{CoinCount: 5}},
				{ID: "b", ConfigName: "small", RoundConfig: &engine.RoundConfig{CoinCount: 2}},
			}, nil
		},
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			if sessionID == "b" {
				return &service.SessionInfo{ID: "b", ConfigName: "small", RoundConfig: &engine.RoundConfig{CoinCount: 2}}, nil
			}
			return nil, service.ErrSessionNotFound
		},
	}
	server := setupTestServer(t, mockService)

	tests := []struct {
		name       string
		query      string
		sessions   int
		totalCoins float64
	}{
		{"all sessions", "", 2, 5},
		{"by config", "?configName=small", 1, 2},
		{"by ids skips unknown", "?sessionIds=b,%20zz", 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			server.ServeHTTP(w, makeRequest("GET", "/api/sessions/unified"+tt.query, nil))

			var resp map[string]interface{}
			parseResponse(t, w, &resp)
			if n := len(resp["sessions"].([]interface{})); n != tt.sessions {
				t.Errorf("Expected %d sessions, got %d", tt.sessions, n)
			}
			if resp["total_coins"].(float64) != tt.totalCoins {
				t.Errorf("Expected total_coins %v, got %v", tt.totalCoins, resp["total_coins"])
			}
		})
	}
}

func TestHealth(t *testing.T) {
	server := setupTestServer(t, &MockGameService{})
	w := httptest.NewRecorder()
	server.ServeHTTP(w, makeRequest("GET", "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]string
	parseResponse(t, w, &resp)
	if resp["status"] != "healthy" {
		t.Errorf("Expected healthy, got %s", resp["status"])
	}
}

// WebSocket Tests

func TestWebSocketValidation(t *testing.T) {
	tests := []struct {
		name           string
		queryParams    string
		expectedStatus int
	}{
		{"Missing session parameter", "", http.StatusBadRequest},
		{"Invalid session", "?session=zz99", http.StatusNotFound},
	}

	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return nil, service.ErrSessionNotFound
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := setupTestServer(t, mockService)
			w := httptest.NewRecorder()
			server.handleWebSocket(w, httptest.NewRequest("GET", "/ws"+tt.queryParams, nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestWebSocketIntentsAndBroadcast(t *testing.T) {
	var mu sync.Mutex
	var moves []string
	restarts := 0

	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return &service.SessionInfo{ID: sessionID, State: &engine.Snapshot{RoundID: "r1"}}, nil
		},
		MoveFunc: func(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error) {
			mu.Lock()
			moves = append(moves, direction)
			mu.Unlock()
			return &service.MoveResult{Success: true, State: &engine.Snapshot{RoundID: "r1", CoinsCollected: 1}}, nil
		},
		RestartFunc: func(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
			mu.Lock()
			restarts++
			mu.Unlock()
			return &engine.Snapshot{RoundID: "r2"}, nil
		},
	}

	server := setupTestServer(t, mockService)
	ts := httptest.NewServer(server)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=ab12"
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	read := func() websocket.Message {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(time.Second))
		var message websocket.Message
		if err := conn.ReadJSON(&message); err != nil {
			t.Fatalf("Failed to read message: %v", err)
		}
		return message
	}

	if message := read(); message.State == nil || message.State.RoundID != "r1" {
		t.Fatalf("Expected the initial state, got %+v", message)
	}
	waitRegistered(t, server, "ab12")

	conn.WriteJSON(websocket.ClientMessage{Intent: "d"})
	if message := read(); message.State == nil || message.State.CoinsCollected != 1 {
		t.Errorf("Expected the state after the move, got %+v", message)
	}

	conn.WriteJSON(websocket.ClientMessage{Intent: "restart"})
	if message := read(); message.State == nil || message.State.RoundID != "r2" {
		t.Errorf("Expected the new round, got %+v", message)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(moves) != 1 || moves[0] != "right" || restarts != 1 {
		t.Errorf("Expected one move right and one restart, got moves=%v restarts=%d", moves, restarts)
	}
}

func TestMoveBroadcastsToWebSocket(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return &service.SessionInfo{ID: sessionID}, nil
		},
		MoveFunc: func(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error) {
			return &service.MoveResult{Success: true, State: &engine.Snapshot{RoundID: "r9"}}, nil
		},
	}

	server := setupTestServer(t, mockService)
	ts := httptest.NewServer(server)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=ab12"
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitRegistered(t, server, "ab12")

	resp, err := http.Post(ts.URL+"/api/sessions/ab12/move", "application/json", strings.NewReader(`{"direction":"up"}`))
	if err != nil {
		t.Fatalf("Move request failed: %v", err)
	}
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var message websocket.Message
	if err := conn.ReadJSON(&message); err != nil {
		t.Fatalf("Failed to read broadcast: %v", err)
	}
	if message.State == nil || message.State.RoundID != "r9" {
		t.Errorf("Expected the broadcast state, got %+v", message)
	}
}

func TestCreateSessionRequestBody(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedConfig string
	}{
		{"empty body", "", http.StatusCreated, ""},
		{"config id", `{"config_id":"small"}`, http.StatusCreated, "small"},
		{"malformed json", `{"config_id":`, http.StatusBadRequest, ""},
		{"wrong type", `{"config_id":7}`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created := false
			mockService := &MockGameService{
				CreateSessionFunc: func(ctx context.Context, configName string) (*service.SessionInfo, error) {
					created = true
					if configName != tt.expectedConfig {
						t.Errorf("Expected config %q, got %q", tt.expectedConfig, configName)
					}
					return &service.SessionInfo{ID: "ab12"}, nil
				},
			}
			server := setupTestServer(t, mockService)

			req := httptest.NewRequest("POST", "/api/sessions", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			server.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if tt.expectedStatus == http.StatusBadRequest {
				if created {
					t.Error("Expected no session for a malformed body")
				}
				if msg := errorMessage(t, w); msg != "Invalid request body" {
					t.Errorf("Expected error message 'Invalid request body', got %s", msg)
				}
			}
		})
	}
}

func TestWebSocketMixedCaseSession(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return &service.SessionInfo{ID: strings.ToLower(sessionID)}, nil
		},
		MoveFunc: func(ctx context.Context, sessionID, direction string, restart bool) (*service.MoveResult, error) {
			return &service.MoveResult{Success: true, State: &engine.Snapshot{RoundID: "r5"}}, nil
		},
	}

	server := setupTestServer(t, mockService)
	ts := httptest.NewServer(server)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=AB12"
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitRegistered(t, server, "ab12")

	resp, err := http.Post(ts.URL+"/api/sessions/ab12/move", "application/json", strings.NewReader(`{"direction":"up"}`))
	if err != nil {
		t.Fatalf("Move request failed: %v", err)
	}
	resp.Body.Close()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var message websocket.Message
	if err := conn.ReadJSON(&message); err != nil {
		t.Fatalf("Failed to read broadcast: %v", err)
	}
	if message.State == nil || message.State.RoundID != "r5" {
		t.Errorf("Expected the broadcast state, got %+v", message)
	}
}

func TestDeleteSessionNotifiesWebSocket(t *testing.T) {
	mockService := &MockGameService{
		GetSessionFunc: func(ctx context.Context, sessionID string) (*service.SessionInfo, error) {
			return &service.SessionInfo{ID: sessionID}, nil
		},
		DeleteSessionFunc: func(ctx context.Context, sessionID string) error {
			return nil
		},
	}

	server := setupTestServer(t, mockService)
	ts := httptest.NewServer(server)
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?session=ab12"
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	waitRegistered(t, server, "ab12")

	req, _ := http.NewRequest("DELETE", ts.URL+"/api/sessions/ab12", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Delete request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var message websocket.Message
	if err := conn.ReadJSON(&message); err != nil {
		t.Fatalf("Failed to read event: %v", err)
	}
	if message.Event != websocket.EventSessionDeleted || message.SessionID != "ab12" {
		t.Errorf("Expected a session_deleted event for ab12, got %+v", message)
	}
}
