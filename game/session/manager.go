package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/coincrate/game/engine"
	"github.com/wricardo/coincrate/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrNilConfig            = errors.New("round config cannot be nil")
)

// idAttempts bounds how often Create retries a colliding generated ID
const idAttempts = 16

// Manager handles game session lifecycle. Sessions live in memory only.
type Manager struct {
	sessions map[string]*service.Session
	log      logrus.FieldLogger
	mu       sync.RWMutex
}

// NewManager creates a new session manager
func NewManager() *Manager {
	return NewManagerWithLogger(logrus.StandardLogger())
}

// NewManagerWithLogger creates a new session manager that logs lifecycle events to log
func NewManagerWithLogger(log logrus.FieldLogger) *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		log:      log,
	}
}

// Create creates a new session with the given ID and round configuration.
// An empty ID is replaced by a generated 4-character one.
func (m *Manager) Create(id string, config *engine.RoundConfig) (*service.Session, error) {
	if config == nil {
		return nil, ErrNilConfig
	}

	// Each session draws from its own source; a seeded config replays the same rounds.
	eng, err := engine.NewEngine(*config, engine.NewRandomSource(config.Seed))
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateUniqueID()
		if id == "" {
			return nil, ErrSessionAlreadyExists
		}
	} else if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	sess := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[strings.ToLower(id)] = sess

	m.log.WithFields(logrus.Fields{
		"session": id,
		"round":   eng.GetRoundID(),
		"config":  config.Name,
	}).Debug("Session created")

	return sess, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id string, config *engine.RoundConfig) (*service.Session, error) {
	sess, err := m.Get(id)
	if err == nil {
		return sess, nil
	}

	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, config)
	}

	return nil, err
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}

	return result
}

// Delete removes a session
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, key)

	m.log.WithField("session", id).Debug("Session deleted")
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}

	sess.Touch(time.Now())
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for key, sess := range m.sessions {
		if sess.LastAccessed().Before(cutoff) {
			delete(m.sessions, key)
			removed++
		}
	}

	if removed > 0 {
		m.log.WithField("removed", removed).Info("Expired sessions cleaned up")
	}

	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateUniqueID returns an unused 4-character ID, or "" after idAttempts
// collisions. Callers hold m.mu.
func (m *Manager) generateUniqueID() string {
	for i := 0; i < idAttempts; i++ {
		id := generateSessionID()
		if !m.sessionExists(id) {
			return id
		}
	}
	return ""
}

// generateSessionID generates a random 4-character session ID
func generateSessionID() string {
	// 2 random bytes (4 hex characters)
	bytes := make([]byte, 2)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
