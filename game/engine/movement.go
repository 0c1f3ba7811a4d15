package engine

// outOfBounds reports whether p lies on or outside the walled border
func (r *RoundState) outOfBounds(p Position) bool {
	return p.X <= 0 || p.Y <= 0 || p.X >= r.cols-1 || p.Y >= r.rows-1
}

// AttemptMove resolves one move of the player. A move either applies fully or
// leaves the round untouched and reports Blocked. Once the round is won every
// attempt is Blocked until a new round is started.
func (r *RoundState) AttemptMove(dir Direction) MoveOutcome {
	if r.Won() {
		return Blocked
	}
	if dx, dy := dir.Delta(); dx == 0 && dy == 0 {
		return Blocked
	}

	target := r.player.Add(dir)
	if r.outOfBounds(target) {
		return Blocked
	}

	switch r.grid[target.Y][target.X] {
	case Obstacle:
		beyond := target.Add(dir)
		if r.outOfBounds(beyond) || r.grid[beyond.Y][beyond.X] != Floor {
			return Blocked
		}
		r.grid[beyond.Y][beyond.X] = Obstacle
		r.stepPlayer(target)
		return Pushed

	case Coin:
		r.coinsCollected++
		r.stepPlayer(target)
		return CoinCollected

	case Floor:
		r.stepPlayer(target)
		return Moved
	}

	// Wall inside the border or the player itself: nothing to do.
	return Blocked
}

// CanMove reports whether AttemptMove would be accepted, without mutating r
func (r *RoundState) CanMove(dir Direction) bool {
	return r.Clone().AttemptMove(dir).Accepted()
}

func (r *RoundState) stepPlayer(to Position) {
	r.grid[to.Y][to.X] = Player
	r.grid[r.player.Y][r.player.X] = Floor
	r.player = to
}

// LocalView returns the 3x3 glyph rows centred on the player.
// Cells beyond the grid are drawn as walls.
func (r *RoundState) LocalView() []string {
	rows := make([]string, 0, 3)
	for dy := -1; dy <= 1; dy++ {
		line := make([]rune, 0, 3)
		for dx := -1; dx <= 1; dx++ {
			line = append(line, r.At(Position{X: r.player.X + dx, Y: r.player.Y + dy}).Glyph())
		}
		rows = append(rows, string(line))
	}
	return rows
}
