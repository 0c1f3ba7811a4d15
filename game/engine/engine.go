package engine

import "fmt"

// Engine provides the main interface for game operations
type Engine interface {
	// Round state
	Snapshot() *Snapshot
	Render() string
	Restart() (*Snapshot, error)
	SetRound(round *RoundState) error
	Status() Status
	IsWon() bool
	GetCoinsCollected() int
	GetTotalCoins() int
	GetPlayerPosition() Position
	GetRoundID() string
	GetRoundsPlayed() int

	// Movement operations
	Move(dir Direction) MoveOutcome
	CanMove(dir Direction) bool
	GetPossibleMoves() []Direction

	// Configuration
	GetConfig() RoundConfig

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetCurrentMoves() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Local view
	GetLocalView() []string
}

// GameEngine implements the Engine interface. It holds one live round and
// rebuilds it from the same configuration and random source on Restart.
type GameEngine struct {
	config       RoundConfig
	rnd          RandomSource
	round        *RoundState
	roundsPlayed int

	// history is cumulative across restarts, currentMoves only covers the live round
	history      []MoveHistoryEntry
	currentMoves []MoveHistoryEntry
}

// NewEngine creates a new game engine and builds its first round
func NewEngine(config RoundConfig, rnd RandomSource) (*GameEngine, error) {
	round, err := NewRound(config, rnd)
	if err != nil {
		return nil, err
	}

	return &GameEngine{
		config:       config,
		rnd:          rnd,
		round:        round,
		roundsPlayed: 1,
		history:      []MoveHistoryEntry{},
		currentMoves: []MoveHistoryEntry{},
	}, nil
}

// Snapshot returns a read-only copy of the live round
func (e *GameEngine) Snapshot() *Snapshot {
	return e.round.Snapshot()
}

// Render draws the live round as text
func (e *GameEngine) Render() string {
	return e.round.Render()
}

// Restart discards the live round and builds a brand-new one
func (e *GameEngine) Restart() (*Snapshot, error) {
	round, err := NewRound(e.config, e.rnd)
	if err != nil {
		return nil, err
	}
	e.round = round
	e.roundsPlayed++
	e.currentMoves = []MoveHistoryEntry{}
	return e.round.Snapshot(), nil
}

// SetRound replaces the live round, used to load a prepared board
func (e *GameEngine) SetRound(round *RoundState) error {
	if round == nil {
		return fmt.Errorf("round cannot be nil")
	}
	e.round = round
	e.currentMoves = []MoveHistoryEntry{}
	return nil
}

// Status returns whether the live round is still being played
func (e *GameEngine) Status() Status {
	return e.round.Status()
}

// IsWon returns whether every coin of the live round has been collected
func (e *GameEngine) IsWon() bool {
	return e.round.Won()
}

// GetCoinsCollected returns the coins collected in the live round
func (e *GameEngine) GetCoinsCollected() int {
	return e.round.CoinsCollected()
}

// GetTotalCoins returns the coins needed to win the live round
func (e *GameEngine) GetTotalCoins() int {
	return e.round.TotalCoins()
}

// GetPlayerPosition returns the current player position
func (e *GameEngine) GetPlayerPosition() Position {
	return e.round.Player()
}

// GetRoundID returns the identifier of the live round
func (e *GameEngine) GetRoundID() string {
	return e.round.ID()
}

// GetRoundsPlayed returns how many rounds this engine has built
func (e *GameEngine) GetRoundsPlayed() int {
	return e.roundsPlayed
}

// Move attempts to move the player and records the attempt in the history
func (e *GameEngine) Move(dir Direction) MoveOutcome {
	from := e.round.Player()
	outcome := e.round.AttemptMove(dir)

	entry := newHistoryEntry(e.round.ID(), dir, from, e.round.Player(), outcome,
		e.round.CoinsCollected(), len(e.history)+1)
	e.history = append(e.history, entry)
	e.currentMoves = append(e.currentMoves, entry)

	return outcome
}

// CanMove checks if the player can move in the specified direction
func (e *GameEngine) CanMove(dir Direction) bool {
	return e.round.CanMove(dir)
}

// GetPossibleMoves returns all directions that would not be blocked
func (e *GameEngine) GetPossibleMoves() []Direction {
	var possible []Direction
	for _, dir := range Directions {
		if e.CanMove(dir) {
			possible = append(possible, dir)
		}
	}
	return possible
}

// GetConfig returns the round configuration
func (e *GameEngine) GetConfig() RoundConfig {
	return e.config
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.history
}

// GetCurrentMoves returns the moves made in the live round
func (e *GameEngine) GetCurrentMoves() []MoveHistoryEntry {
	return e.currentMoves
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.history) == 0 {
		return nil
	}
	return &e.history[len(e.history)-1]
}

// GetLocalView returns the 3x3 neighbourhood of the player
func (e *GameEngine) GetLocalView() []string {
	return e.round.LocalView()
}

// BulkMove executes moves in sequence and stops once the round is won
func (e *GameEngine) BulkMove(moves []Direction) []MoveOutcome {
	results := make([]MoveOutcome, 0, len(moves))

	for _, dir := range moves {
		if e.IsWon() {
			break
		}
		results = append(results, e.Move(dir))
	}

	return results
}
