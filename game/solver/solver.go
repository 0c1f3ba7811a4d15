// Package solver finds moves that bring the player closer to a coin.
//
// PathToNearestCoin walks only over floor and coin cells and never pushes a
// box. When every coin is walled in by boxes, SearchWithPushes explores whole
// board states, pushes included, up to a fixed number of states.
package solver

import (
	"github.com/wricardo/coincrate/game/engine"
)

// DefaultSearchLimit bounds the number of board states SearchWithPushes visits
const DefaultSearchLimit = 20000

// PathToNearestCoin returns the shortest push-free path from the player to the
// closest coin, or false when no coin can be reached by walking.
func PathToNearestCoin(s *engine.Snapshot) ([]engine.Direction, bool) {
	if s == nil || s.Status == engine.Won {
		return nil, false
	}

	type queueItem struct {
		pos  engine.Position
		path []engine.Direction
	}

	start := s.Player
	queue := []queueItem{{pos: start}}
	visited := map[engine.Position]bool{start: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dir := range engine.Directions {
			next := current.pos.Add(dir)
			if visited[next] || !walkable(s, next) {
				continue
			}

			path := append(append([]engine.Direction{}, current.path...), dir)
			if s.At(next) == engine.Coin {
				return path, true
			}

			visited[next] = true
			queue = append(queue, queueItem{pos: next, path: path})
		}
	}

	return nil, false
}

// walkable reports whether the player can enter p without pushing anything
func walkable(s *engine.Snapshot, p engine.Position) bool {
	if p.X <= 0 || p.Y <= 0 || p.X >= s.Cols-1 || p.Y >= s.Rows-1 {
		return false
	}
	cell := s.At(p)
	return cell == engine.Floor || cell == engine.Coin
}

// SearchWithPushes runs a breadth-first search over board states, pushing boxes
// where needed, until a coin is collected. At most limit states are expanded.
func SearchWithPushes(s *engine.Snapshot, limit int) ([]engine.Direction, bool) {
	if s == nil || s.Status == engine.Won {
		return nil, false
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	root, err := engine.ParseRound(s.Board)
	if err != nil {
		return nil, false
	}

	type queueItem struct {
		round *engine.RoundState
		path  []engine.Direction
	}

	queue := []queueItem{{round: root}}
	seen := map[string]bool{root.Render(): true}

	for expanded := 0; len(queue) > 0 && expanded < limit; expanded++ {
		current := queue[0]
		queue = queue[1:]

		for _, dir := range engine.Directions {
			next := current.round.Clone()
			outcome := next.AttemptMove(dir)
			if outcome == engine.Blocked {
				continue
			}

			path := append(append([]engine.Direction{}, current.path...), dir)
			if outcome == engine.CoinCollected {
				return path, true
			}

			key := next.Render()
			if seen[key] {
				continue
			}
			seen[key] = true
			queue = append(queue, queueItem{round: next, path: path})
		}
	}

	return nil, false
}

// NextStep returns the first move of the best known path to a coin. It
// prefers a push-free path and falls back to a bounded search with pushes.
func NextStep(s *engine.Snapshot) (engine.Direction, bool) {
	path, ok := PathToNearestCoin(s)
	if !ok {
		path, ok = SearchWithPushes(s, DefaultSearchLimit)
	}
	if !ok || len(path) == 0 {
		return 0, false
	}
	return path[0], true
}

// NextMoves returns up to maxMoves moves of the best known path to a coin
func NextMoves(s *engine.Snapshot, maxMoves int) []engine.Direction {
	path, ok := PathToNearestCoin(s)
	if !ok {
		path, ok = SearchWithPushes(s, DefaultSearchLimit)
	}
	if !ok {
		return nil
	}
	if maxMoves > 0 && len(path) > maxMoves {
		path = path[:maxMoves]
	}
	return path
}
