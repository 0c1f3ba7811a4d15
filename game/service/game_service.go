package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/coincrate/game/engine"
)

var (
	// ErrUnknownDirection is returned when a move names no known direction
	ErrUnknownDirection = engine.ErrUnknownDirection
	ErrSessionNotFound  = errors.New("session not found")
	ErrConfigNotFound   = errors.New("configuration not found")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string, restart bool) (*MoveResult, error)
	BulkMove(ctx context.Context, sessionID string, moves []string, restart bool) (*BulkMoveResult, error)
	Restart(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)
	Hint(ctx context.Context, sessionID string) (*HintResult, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.RoundConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.RoundConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.RoundConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.RoundConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
}

// ConfigManager handles round configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.RoundConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.RoundConfig
	SaveConfig(name string, config *engine.RoundConfig) error
}

// Session represents an active game session. Once a session is shared,
// LastAccessedAt is read and written through LastAccessed and Touch only.
type Session struct {
	ID             string
	ConfigID       string
	Engine         *engine.GameEngine
	Config         *engine.RoundConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time

	accessMu sync.Mutex
}

// Touch records an access at now
func (s *Session) Touch(now time.Time) {
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	s.LastAccessedAt = now
}

// LastAccessed returns when the session was last accessed
func (s *Session) LastAccessed() time.Time {
	s.accessMu.Lock()
	defer s.accessMu.Unlock()
	return s.LastAccessedAt
}
