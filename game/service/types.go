package service

import (
	"time"

	"github.com/wricardo/coincrate/game/engine"
)

// Event types reported in MoveResult and BulkMoveResult
const (
	EventMove    = "move"
	EventPush    = "push"
	EventCoin    = "coin"
	EventVictory = "victory"
	EventRestart = "restart"
	EventBlocked = "blocked"
)

// Stop reason codes reported by BulkMove
const (
	StopBlocked    = "blocked"
	StopVictory    = "victory"
	StopAlreadyWon = "already_won"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	ConfigName     string              `json:"config_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	RoundsPlayed   int                 `json:"rounds_played"`
	State          *engine.Snapshot    `json:"state"`
	RoundConfig    *engine.RoundConfig `json:"round_config"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success     bool               `json:"success"`
	Outcome     engine.MoveOutcome `json:"outcome"`
	State       *engine.Snapshot   `json:"state"`
	Message     string             `json:"message"`
	Events      []GameEvent        `json:"events,omitempty"`
	Step        *StepInfo          `json:"step,omitempty"`
	AttemptedTo *AttemptInfo       `json:"attempted_to,omitempty"`
	LocalView   []string           `json:"local_view_3x3,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	MovesExecuted  int              `json:"moves_executed"`
	RequestedMoves int              `json:"requested_moves"`
	Success        bool             `json:"success"`
	State          *engine.Snapshot `json:"state"`
	Events         []GameEvent      `json:"events"`
	StoppedReason  string           `json:"stopped_reason,omitempty"`
	StopReasonCode string           `json:"stop_reason_code,omitempty"` // blocked|victory|already_won
	StoppedOnMove  int              `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused the stop
	Truncated      bool             `json:"truncated,omitempty"`
	Limit          int              `json:"limit,omitempty"`

	StartPos    engine.Position `json:"start_pos"`
	EndPos      engine.Position `json:"end_pos"`
	CoinsBefore int             `json:"coins_before"`
	CoinsAfter  int             `json:"coins_after"`

	Steps       []StepInfo   `json:"steps,omitempty"`
	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	Won           bool     `json:"won"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
	LocalView     []string `json:"local_view_3x3,omitempty"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx         int                `json:"idx"`
	Dir         string             `json:"dir"`
	From        engine.Position    `json:"from"`
	To          engine.Position    `json:"to"`
	Outcome     engine.MoveOutcome `json:"outcome"`
	CoinsBefore int                `json:"coins_before"`
	CoinsAfter  int                `json:"coins_after"`
	Victory     bool               `json:"victory,omitempty"`
}

// AttemptInfo details the cell a blocked move tried to enter
type AttemptInfo struct {
	X     int         `json:"x"`
	Y     int         `json:"y"`
	Cell  engine.Cell `json:"cell"`
	Glyph string      `json:"glyph"`
	// Beyond is the cell behind a box the player tried to push
	Beyond engine.Cell `json:"beyond,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "move", "push", "coin", "victory", "restart", "blocked"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
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

// HintResult suggests the next step towards the nearest reachable coin
type HintResult struct {
	Found     bool              `json:"found"`
	Direction string            `json:"direction,omitempty"`
	Path      []engine.Position `json:"path,omitempty"`
	Moves     []string          `json:"moves,omitempty"`
	Distance  int               `json:"distance"`
	Message   string            `json:"message"`
	// CrowDistance is the Manhattan distance to the closest coin on the
	// board, walls and boxes ignored. Zero when no coin is left.
	CrowDistance int `json:"crow_distance,omitempty"`
	// Unreachable counts coins lost to placement collisions
	Unreachable int `json:"unreachable,omitempty"`
}

// ConfigInfo provides information about a round configuration
type ConfigInfo struct {
	Filename      string `json:"filename"`
	ConfigID      string `json:"config_id"` // The identifier to use for session creation
	Name          string `json:"name"`      // Display name
	Description   string `json:"description"`
	Rows          int    `json:"rows"`
	Cols          int    `json:"cols"`
	ObstacleCount int    `json:"obstacle_count"`
	CoinCount     int    `json:"coin_count"`
}
