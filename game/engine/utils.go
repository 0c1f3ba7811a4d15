package engine

// CountCells counts the cells of a given kind in the grid
func CountCells(grid [][]Cell, kind Cell) int {
	count := 0
	for _, row := range grid {
		for _, cell := range row {
			if cell == kind {
				count++
			}
		}
	}
	return count
}

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// FindNearestCoin finds the coin closest to the player as the crow walks,
// ignoring walls and boxes in between
func FindNearestCoin(s *Snapshot) (Position, int, bool) {
	minDistance := -1
	var nearest Position
	found := false

	for y := 0; y < len(s.Grid); y++ {
		for x := 0; x < len(s.Grid[y]); x++ {
			if s.Grid[y][x] != Coin {
				continue
			}
			pos := Position{X: x, Y: y}
			distance := ManhattanDistance(s.Player, pos)
			if minDistance == -1 || distance < minDistance {
				minDistance = distance
				nearest = pos
				found = true
			}
		}
	}

	return nearest, minDistance, found
}

// UnreachableCoins reports coins counted in the total that are no longer on
// the board, which happens when random placements collide. Such a round can
// never be won.
func UnreachableCoins(s *Snapshot) int {
	missing := s.TotalCoins - s.CoinsCollected - CountCells(s.Grid, Coin)
	if missing < 0 {
		return 0
	}
	return missing
}
