package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/coincrate/game/engine"
	"github.com/wricardo/coincrate/game/service"
)

const instructions = `COIN CRATE - GAME INSTRUCTIONS

OBJECTIVE:
Collect every coin on the board. The round is won the moment the last coin
is picked up.

MAP LEGEND:
  x = You (the player)
  0 = Wall (impassable, lines the whole border)
  _ = Floor (free to walk on)
  # = Box (pushable)
  * = Coin (walk onto it to collect)

MOVEMENT:
- Move one tile up, down, left or right per move
- Walking onto a coin collects it
- Walking into a box pushes it one tile, but only onto empty floor
- A box cannot be pushed into a wall, a coin or another box
- Blocked moves leave the board unchanged but are still recorded in history

ROUNDS:
- Every round places the player, the boxes and the coins at random
- restart_round (or move/bulk_move with restart=true) starts a new round
- After a win, moves are refused until the round is restarted

TIPS:
- Use hint to get the first step of a shortest path to the nearest coin
- Use describe_cell before pushing a box to see what lies behind it
- bulk_move stops at the first blocked move or at the win`

// formatSnapshot renders the board with its header line
func formatSnapshot(state *engine.Snapshot) string {
	if state == nil {
		return "No round in progress"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Round: %s\n", state.RoundID)
	fmt.Fprintf(&b, "Coins: %d/%d\n", state.CoinsCollected, state.TotalCoins)
	fmt.Fprintf(&b, "Player: (%d, %d)\n", state.Player.X, state.Player.Y)
	fmt.Fprintf(&b, "Status: %s\n\n", state.Status)
	for _, row := range state.Board {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	b.WriteString("\nLegend: x=you 0=wall _=floor #=box *=coin")
	return b.String()
}

func formatSession(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", session.ID)
	fmt.Fprintf(&b, "Config: %s\n", session.ConfigName)
	fmt.Fprintf(&b, "Created: %s\n", session.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Last accessed: %s\n", session.LastAccessedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Rounds played: %d\n\n", session.RoundsPlayed)
	b.WriteString(formatSnapshot(session.State))
	return b.String()
}

func formatSessions(sessions []*service.SessionInfo) string {
	if len(sessions) == 0 {
		return "No active sessions"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active sessions (%d):\n", len(sessions))
	for _, session := range sessions {
		coins := "-"
		status := "-"
		if session.State != nil {
			coins = fmt.Sprintf("%d/%d", session.State.CoinsCollected, session.State.TotalCoins)
			status = string(session.State.Status)
		}
		fmt.Fprintf(&b, "- %s (config: %s, coins: %s, status: %s, rounds: %d)\n",
			session.ID, session.ConfigName, coins, status, session.RoundsPlayed)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder
	if result.Success {
		fmt.Fprintf(&b, "Move %s: %s\n", result.Outcome, result.Message)
	} else {
		fmt.Fprintf(&b, "Move blocked: %s\n", result.Message)
	}

	if result.AttemptedTo != nil {
		a := result.AttemptedTo
		fmt.Fprintf(&b, "Attempted cell (%d, %d) is %s (%s)", a.X, a.Y, a.Cell, a.Glyph)
		if a.Beyond != "" {
			fmt.Fprintf(&b, ", behind it: %s", a.Beyond)
		}
		b.WriteByte('\n')
	}

	for _, event := range result.Events {
		fmt.Fprintf(&b, "[%s] %s\n", event.Type, event.Message)
	}

	if len(result.LocalView) > 0 {
		b.WriteString("\nLocal view:\n")
		for _, row := range result.LocalView {
			b.WriteString(row)
			b.WriteByte('\n')
		}
	}

	b.WriteByte('\n')
	b.WriteString(formatSnapshot(result.State))
	return b.String()
}

func formatBulkMoveResult(sessionID string, result *service.BulkMoveResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session %s: executed %d of %d moves\n", sessionID, result.MovesExecuted, result.RequestedMoves)
	if result.Truncated {
		fmt.Fprintf(&b, "Request truncated to the first %d moves\n", result.Limit)
	}
	fmt.Fprintf(&b, "From (%d, %d) to (%d, %d), coins %d -> %d\n",
		result.StartPos.X, result.StartPos.Y, result.EndPos.X, result.EndPos.Y,
		result.CoinsBefore, result.CoinsAfter)

	if result.StopReasonCode != "" {
		fmt.Fprintf(&b, "Stopped on move %d (%s): %s\n", result.StoppedOnMove, result.StopReasonCode, result.StoppedReason)
	}
	if result.AttemptedTo != nil {
		a := result.AttemptedTo
		fmt.Fprintf(&b, "Attempted cell (%d, %d) is %s (%s)\n", a.X, a.Y, a.Cell, a.Glyph)
	}

	if len(result.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for _, step := range result.Steps {
			fmt.Fprintf(&b, "%d. %s (%d,%d)->(%d,%d) %s\n",
				step.Idx, step.Dir, step.From.X, step.From.Y, step.To.X, step.To.Y, step.Outcome)
		}
	}

	if result.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", result.Message)
	}
	if len(result.PossibleMoves) > 0 {
		fmt.Fprintf(&b, "Possible moves: %s\n", strings.Join(result.PossibleMoves, ", "))
	}

	b.WriteByte('\n')
	b.WriteString(formatSnapshot(result.State))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	if history.TotalMoves == 0 {
		return "No moves yet"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Move history (page %d of %d, %d moves total):\n",
		history.Page, history.TotalPages, history.TotalMoves)
	for _, move := range history.Moves {
		fmt.Fprintf(&b, "#%d %s (%d,%d)->(%d,%d) %s, coins: %d\n",
			move.MoveNumber, move.Direction,
			move.FromPosition.X, move.FromPosition.Y,
			move.ToPosition.X, move.ToPosition.Y,
			move.Outcome, move.CoinsCollected)
	}
	if history.HasNext {
		fmt.Fprintf(&b, "More moves on page %d\n", history.Page+1)
	}
	return strings.TrimRight(b.String(), "\n")
}

// hintPreviewMoves caps how much of the hinted path is spelled out
const hintPreviewMoves = 5

func formatHint(hint *service.HintResult) string {
	if !hint.Found {
		if hint.CrowDistance > 0 {
			return fmt.Sprintf("%s The closest coin is %d steps away as the crow walks.", hint.Message, hint.CrowDistance)
		}
		return hint.Message
	}
	text := fmt.Sprintf("Go %s. Nearest reachable coin is %d moves away.", hint.Direction, hint.Distance)
	if hint.CrowDistance > 0 && hint.CrowDistance < hint.Distance {
		text += fmt.Sprintf(" As the crow walks it is %d steps.", hint.CrowDistance)
	}
	if len(hint.Moves) > 0 {
		preview := hint.Moves
		if len(preview) > hintPreviewMoves {
			preview = preview[:hintPreviewMoves]
		}
		text += " Path: " + strings.Join(preview, ", ")
		if len(hint.Moves) > hintPreviewMoves {
			text += ", ..."
		}
		text += "."
	}
	if hint.Unreachable > 0 {
		text += fmt.Sprintf(" Warning: %d coin(s) were lost to placement collisions, this round cannot be won.", hint.Unreachable)
	}
	return text
}

func formatConfigs(configs []*service.ConfigInfo) string {
	if len(configs) == 0 {
		return "No configurations available"
	}

	var b strings.Builder
	b.WriteString("Available configs:\n")
	for _, config := range configs {
		fmt.Fprintf(&b, "- %s: %s (%dx%d, %d boxes, %d coins)",
			config.ConfigID, config.Name, config.Rows, config.Cols, config.ObstacleCount, config.CoinCount)
		if config.Description != "" {
			fmt.Fprintf(&b, " - %s", config.Description)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// describeCell explains what the player can do with the cell at p
func describeCell(state *engine.Snapshot, p engine.Position) string {
	cell := state.At(p)

	var b strings.Builder
	fmt.Fprintf(&b, "Cell (%d, %d): %s '%c'\n", p.X, p.Y, cell, cell.Glyph())

	switch cell {
	case engine.Wall:
		b.WriteString("Impassable.")
	case engine.Floor:
		b.WriteString("Passable.")
	case engine.Coin:
		b.WriteString("Passable. Stepping here collects the coin.")
	case engine.Player:
		b.WriteString("This is you.")
	case engine.Obstacle:
		b.WriteString("Pushable box. It moves only onto empty floor.")
	}

	distance := engine.ManhattanDistance(state.Player, p)
	if distance == 1 {
		for _, dir := range engine.Directions {
			if state.Player.Add(dir) != p {
				continue
			}
			fmt.Fprintf(&b, "\nAdjacent: move %s to reach it.", dir)
			if cell == engine.Obstacle {
				if state.At(p.Add(dir)) == engine.Floor {
					b.WriteString(" The push would succeed.")
				} else {
					fmt.Fprintf(&b, " The push would fail, behind it is %s.", state.At(p.Add(dir)))
				}
			}
		}
	} else if distance > 1 {
		fmt.Fprintf(&b, "\nDistance from player: %d", distance)
	}
	return b.String()
}
