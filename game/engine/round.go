package engine

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RoundState owns the grid and counters of a single round.
// The grid is only ever mutated through AttemptMove.
type RoundState struct {
	id             string
	rows, cols     int
	grid           [][]Cell
	player         Position
	coinsCollected int
	totalCoins     int
}

func newWalledRound(rows, cols int) *RoundState {
	grid := make([][]Cell, rows)
	for y := range grid {
		grid[y] = make([]Cell, cols)
		for x := range grid[y] {
			if x == 0 || y == 0 || x == cols-1 || y == rows-1 {
				grid[y][x] = Wall
				continue
			}
			grid[y][x] = Floor
		}
	}
	return &RoundState{
		id:   uuid.NewString(),
		rows: rows,
		cols: cols,
		grid: grid,
	}
}

// ParseRound builds a round from glyph rows (see Cell.Glyph). The board must
// be rectangular, walled on every border and hold exactly one player.
// TotalCoins is the number of coin glyphs on the board.
func ParseRound(board []string) (*RoundState, error) {
	rows := len(board)
	if rows < MinRows {
		return nil, fmt.Errorf("%w: board needs at least %d rows, got %d", ErrInvalidConfig, MinRows, rows)
	}
	cols := len([]rune(board[0]))
	if cols < MinCols {
		return nil, fmt.Errorf("%w: board needs at least %d columns, got %d", ErrInvalidConfig, MinCols, cols)
	}

	r := newWalledRound(rows, cols)
	players := 0
	for y, line := range board {
		runes := []rune(line)
		if len(runes) != cols {
			return nil, fmt.Errorf("%w: row %d has %d columns, expected %d", ErrInvalidConfig, y, len(runes), cols)
		}
		for x, g := range runes {
			cell, ok := CellFromGlyph(g)
			if !ok {
				return nil, fmt.Errorf("%w: unknown glyph %q at (%d,%d)", ErrInvalidConfig, g, x, y)
			}
			border := x == 0 || y == 0 || x == cols-1 || y == rows-1
			if border != (cell == Wall) {
				return nil, fmt.Errorf("%w: walls must form exactly the border, found %s at (%d,%d)", ErrInvalidConfig, cell, x, y)
			}
			switch cell {
			case Player:
				players++
				r.player = Position{X: x, Y: y}
			case Coin:
				r.totalCoins++
			}
			r.grid[y][x] = cell
		}
	}
	if players != 1 {
		return nil, fmt.Errorf("%w: board must contain exactly one player, found %d", ErrInvalidConfig, players)
	}
	return r, nil
}

// ID returns the unique identifier of the round
func (r *RoundState) ID() string { return r.id }

// Rows returns the grid height
func (r *RoundState) Rows() int { return r.rows }

// Cols returns the grid width
func (r *RoundState) Cols() int { return r.cols }

// Player returns the tracked player position
func (r *RoundState) Player() Position { return r.player }

// CoinsCollected returns how many coins were picked up this round
func (r *RoundState) CoinsCollected() int { return r.coinsCollected }

// TotalCoins returns the number of coins needed to win
func (r *RoundState) TotalCoins() int { return r.totalCoins }

// Won reports whether every coin has been collected
func (r *RoundState) Won() bool {
	return r.coinsCollected == r.totalCoins
}

// Status returns the state machine position of the round
func (r *RoundState) Status() Status {
	if r.Won() {
		return Won
	}
	return Playing
}

// At returns the cell at p, or Wall when p is off the grid
func (r *RoundState) At(p Position) Cell {
	if p.Y < 0 || p.Y >= r.rows || p.X < 0 || p.X >= r.cols {
		return Wall
	}
	return r.grid[p.Y][p.X]
}

// Clone returns a deep copy sharing nothing with r
func (r *RoundState) Clone() *RoundState {
	c := *r
	c.grid = copyGrid(r.grid)
	return &c
}

// Snapshot returns a read-only copy of the round for rendering
func (r *RoundState) Snapshot() *Snapshot {
	return &Snapshot{
		RoundID:        r.id,
		Rows:           r.rows,
		Cols:           r.cols,
		Grid:           copyGrid(r.grid),
		Player:         r.player,
		CoinsCollected: r.coinsCollected,
		TotalCoins:     r.totalCoins,
		Status:         r.Status(),
		Board:          r.lines(),
	}
}

// Render draws the grid one row per line using the conventional glyphs
func (r *RoundState) Render() string {
	return strings.Join(r.lines(), "\n")
}

func (r *RoundState) lines() []string {
	lines := make([]string, r.rows)
	var b strings.Builder
	for y, row := range r.grid {
		b.Reset()
		for _, cell := range row {
			b.WriteRune(cell.Glyph())
		}
		lines[y] = b.String()
	}
	return lines
}

func copyGrid(grid [][]Cell) [][]Cell {
	out := make([][]Cell, len(grid))
	for y, row := range grid {
		out[y] = append([]Cell(nil), row...)
	}
	return out
}
