package engine

import (
	"fmt"
	"strings"
	"time"
)

// Cell represents the content of a single grid position
type Cell string

const (
	Wall     Cell = "wall"
	Floor    Cell = "floor"
	Obstacle Cell = "obstacle"
	Coin     Cell = "coin"
	Player   Cell = "player"

	// Validation constants
	MinRows      = 3
	MinCols      = 3
	MaxRows      = 100
	MaxCols      = 200
	MaxBulkMoves = 50
)

// Glyph returns the single character used to draw the cell as text
func (c Cell) Glyph() rune {
	switch c {
	case Wall:
		return '0'
	case Floor:
		return '_'
	case Obstacle:
		return '#'
	case Coin:
		return '*'
	case Player:
		return 'x'
	}
	return '?'
}

// CellFromGlyph maps a text glyph back to its cell
func CellFromGlyph(r rune) (Cell, bool) {
	switch r {
	case '0':
		return Wall, true
	case '_':
		return Floor, true
	case '#':
		return Obstacle, true
	case '*':
		return Coin, true
	case 'x':
		return Player, true
	}
	return "", false
}

// Direction is one of the four movement directions
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists every direction in a stable order
var Directions = []Direction{Up, Down, Left, Right}

// Delta returns the unit vector for the direction
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	}
	return 0, 0
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// MarshalText encodes the direction by name
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes any spelling accepted by ParseDirection
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection accepts direction names, compass points and WASD keys, case-insensitive
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "north", "w":
		return Up, nil
	case "down", "south", "s":
		return Down, nil
	case "left", "west", "a":
		return Left, nil
	case "right", "east", "d":
		return Right, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDirection, s)
}

// MoveOutcome reports how a single move attempt was resolved
type MoveOutcome int

const (
	Blocked MoveOutcome = iota
	Moved
	Pushed
	CoinCollected
)

func (o MoveOutcome) String() string {
	switch o {
	case Blocked:
		return "blocked"
	case Moved:
		return "moved"
	case Pushed:
		return "pushed"
	case CoinCollected:
		return "coin_collected"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// MarshalText encodes the outcome by name
func (o MoveOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes an outcome name
func (o *MoveOutcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "blocked":
		*o = Blocked
	case "moved":
		*o = Moved
	case "pushed":
		*o = Pushed
	case "coin_collected":
		*o = CoinCollected
	default:
		return fmt.Errorf("unknown move outcome %q", text)
	}
	return nil
}

// Accepted reports whether the move changed the grid
func (o MoveOutcome) Accepted() bool {
	return o != Blocked
}

// Status is the round state machine: Playing until every coin is collected
type Status string

const (
	Playing Status = "playing"
	Won     Status = "won"
)

// Position represents x,y coordinates (x = column, y = row)
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns the position shifted by one step in the given direction
func (p Position) Add(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// RoundConfig holds the parameters used to build every round of a game
type RoundConfig struct {
	Name          string `json:"name" yaml:"name"`
	Description   string `json:"description" yaml:"description"`
	Rows          int    `json:"rows" yaml:"rows"`
	Cols          int    `json:"cols" yaml:"cols"`
	ObstacleCount int    `json:"obstacle_count" yaml:"obstacle_count"`
	CoinCount     int    `json:"coin_count" yaml:"coin_count"`
	// Seed makes round placement reproducible when non-zero.
	Seed int64 `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// Snapshot is a read-only copy of a round handed to renderers and clients
type Snapshot struct {
	RoundID        string   `json:"round_id"`
	Rows           int      `json:"rows"`
	Cols           int      `json:"cols"`
	Grid           [][]Cell `json:"grid"`
	Player         Position `json:"player"`
	CoinsCollected int      `json:"coins_collected"`
	TotalCoins     int      `json:"total_coins"`
	Status         Status   `json:"status"`
	Board          []string `json:"board"`
}

// At returns the cell at p, or Wall when p is off the grid
func (s *Snapshot) At(p Position) Cell {
	if p.Y < 0 || p.Y >= len(s.Grid) || p.X < 0 || p.X >= len(s.Grid[p.Y]) {
		return Wall
	}
	return s.Grid[p.Y][p.X]
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	RoundID        string      `json:"round_id"`
	Direction      Direction   `json:"direction"`
	FromPosition   Position    `json:"from_position"`
	ToPosition     Position    `json:"to_position"`
	Outcome        MoveOutcome `json:"outcome"`
	CoinsCollected int         `json:"coins_collected"`
	Timestamp      int64       `json:"timestamp"`
	MoveNumber     int         `json:"move_number"`
}

func newHistoryEntry(roundID string, dir Direction, from, to Position, outcome MoveOutcome, coins, number int) MoveHistoryEntry {
	return MoveHistoryEntry{
		RoundID:        roundID,
		Direction:      dir,
		FromPosition:   from,
		ToPosition:     to,
		Outcome:        outcome,
		CoinsCollected: coins,
		Timestamp:      time.Now().Unix(),
		MoveNumber:     number,
	}
}
