package engine

import (
	"testing"
)

// sixByTenConfig is the 10x6 board with one coin used across engine tests.
func sixByTenConfig() RoundConfig {
	return RoundConfig{
		Name:        "Engine Test Config",
		Description: "Configuration for engine tests",
		Rows:        6,
		Cols:        10,
		CoinCount:   1,
	}
}

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine(sixByTenConfig(), newScriptedSource(t, 4, 2))
	if err != nil {
		t.Fatalf("Failed to create new engine: %v", err)
	}

	if engine.GetCoinsCollected() != 0 {
		t.Errorf("Expected 0 coins collected, got %d", engine.GetCoinsCollected())
	}
	if engine.GetTotalCoins() != 1 {
		t.Errorf("Expected 1 total coin, got %d", engine.GetTotalCoins())
	}
	if engine.IsWon() {
		t.Error("Expected round not to be won initially")
	}
	if engine.GetPlayerPosition() != (Position{X: 1, Y: 1}) {
		t.Errorf("Expected player at (1,1), got %+v", engine.GetPlayerPosition())
	}
	if engine.GetRoundsPlayed() != 1 {
		t.Errorf("Expected 1 round played, got %d", engine.GetRoundsPlayed())
	}
	if len(engine.GetMoveHistory()) != 0 {
		t.Errorf("Expected empty history, got %d entries", len(engine.GetMoveHistory()))
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	_, err := NewEngine(RoundConfig{Rows: 1, Cols: 1}, NewRandomSource(1))
	if err == nil {
		t.Error("Expected error for degenerate board")
	}
}

func TestEngine_CollectOnlyCoinWins(t *testing.T) {
	// Coin at (5,3): x = 1 + 4, y = 1 + 2.
	engine, err := NewEngine(sixByTenConfig(), newScriptedSource(t, 4, 2))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	moves := []Direction{Right, Right, Right, Right, Down}
	for i, dir := range moves {
		if outcome := engine.Move(dir); outcome != Moved {
			t.Fatalf("Move %d (%s): expected Moved, got %s", i+1, dir, outcome)
		}
		if engine.Status() != Playing {
			t.Fatalf("Move %d: expected Playing, got %s", i+1, engine.Status())
		}
	}

	if outcome := engine.Move(Down); outcome != CoinCollected {
		t.Fatalf("Expected CoinCollected, got %s", outcome)
	}
	if engine.GetPlayerPosition() != (Position{X: 5, Y: 3}) {
		t.Errorf("Expected player at (5,3), got %+v", engine.GetPlayerPosition())
	}
	if engine.GetCoinsCollected() != 1 {
		t.Errorf("Expected 1 coin, got %d", engine.GetCoinsCollected())
	}
	if engine.Status() != Won {
		t.Errorf("Expected Won, got %s", engine.Status())
	}

	if outcome := engine.Move(Left); outcome != Blocked {
		t.Errorf("Expected moves after the win to be Blocked, got %s", outcome)
	}
	if len(engine.GetPossibleMoves()) != 0 {
		t.Errorf("Expected no possible moves after the win, got %v", engine.GetPossibleMoves())
	}
}

func TestEngine_MoveHistory(t *testing.T) {
	engine, err := NewEngine(sixByTenConfig(), newScriptedSource(t, 4, 2))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	engine.Move(Up)
	engine.Move(Right)

	history := engine.GetMoveHistory()
	if len(history) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(history))
	}

	first := history[0]
	if first.Outcome != Blocked || first.Direction != Up {
		t.Errorf("Expected blocked up move first, got %s %s", first.Direction, first.Outcome)
	}
	if first.FromPosition != first.ToPosition {
		t.Errorf("Blocked move should not change position: %+v -> %+v", first.FromPosition, first.ToPosition)
	}

	second := history[1]
	if second.Outcome != Moved || second.MoveNumber != 2 {
		t.Errorf("Expected move #2 to be Moved, got #%d %s", second.MoveNumber, second.Outcome)
	}
	if second.ToPosition != (Position{X: 2, Y: 1}) {
		t.Errorf("Expected move to (2,1), got %+v", second.ToPosition)
	}
	if second.RoundID != engine.GetRoundID() {
		t.Errorf("Expected entry round ID %s, got %s", engine.GetRoundID(), second.RoundID)
	}

	last := engine.GetLastMove()
	if last == nil || last.MoveNumber != 2 {
		t.Errorf("Expected last move #2, got %+v", last)
	}
}

func TestEngine_Restart(t *testing.T) {
	// Second round places its coin on the player start.
	engine, err := NewEngine(sixByTenConfig(), newScriptedSource(t, 4, 2, 0, 0))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	firstRound := engine.GetRoundID()

	engine.BulkMove([]Direction{Right, Right, Right, Right, Down, Down})
	if !engine.IsWon() {
		t.Fatal("Expected first round to be won")
	}

	snapshot, err := engine.Restart()
	if err != nil {
		t.Fatalf("Failed to restart: %v", err)
	}

	if snapshot.RoundID == firstRound {
		t.Error("Expected a new round ID after restart")
	}
	if snapshot.CoinsCollected != 0 || snapshot.Status != Playing {
		t.Errorf("Expected a fresh playing round, got %d coins and %s", snapshot.CoinsCollected, snapshot.Status)
	}
	if snapshot.Player != (Position{X: 1, Y: 1}) {
		t.Errorf("Expected player back at (1,1), got %+v", snapshot.Player)
	}
	if engine.GetRoundsPlayed() != 2 {
		t.Errorf("Expected 2 rounds played, got %d", engine.GetRoundsPlayed())
	}
	if len(engine.GetCurrentMoves()) != 0 {
		t.Errorf("Expected current moves to be cleared, got %d", len(engine.GetCurrentMoves()))
	}
	if len(engine.GetMoveHistory()) != 6 {
		t.Errorf("Expected cumulative history of 6 moves, got %d", len(engine.GetMoveHistory()))
	}
	if UnreachableCoins(snapshot) != 1 {
		t.Errorf("Expected the overwritten coin to be reported unreachable")
	}
}

func TestEngine_BulkMoveStopsOnWin(t *testing.T) {
	engine, err := NewEngine(sixByTenConfig(), newScriptedSource(t, 0, 1))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	// Coin at (1,2), directly below the start.
	results := engine.BulkMove([]Direction{Down, Right, Right})
	if len(results) != 1 {
		t.Fatalf("Expected bulk move to stop after the win, got %d results", len(results))
	}
	if results[0] != CoinCollected {
		t.Errorf("Expected CoinCollected, got %s", results[0])
	}
}

func TestEngine_SnapshotIsACopy(t *testing.T) {
	engine, err := NewEngine(sixByTenConfig(), newScriptedSource(t, 4, 2))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	snapshot := engine.Snapshot()
	snapshot.Grid[2][2] = Obstacle
	snapshot.Grid[0][0] = Floor

	fresh := engine.Snapshot()
	if fresh.Grid[2][2] != Floor || fresh.Grid[0][0] != Wall {
		t.Error("Mutating a snapshot leaked into the engine")
	}
}

func TestEngine_SetRound(t *testing.T) {
	engine, err := NewEngine(DefaultRoundConfig(), NewRandomSource(3))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if err := engine.SetRound(nil); err == nil {
		t.Error("Expected error for nil round")
	}

	r := mustParseRound(t,
		"00000",
		"0x#_0",
		"0___0",
		"0__*0",
		"00000",
	)
	if err := engine.SetRound(r); err != nil {
		t.Fatalf("Failed to set round: %v", err)
	}
	if engine.Move(Right) != Pushed {
		t.Error("Expected push on the loaded board")
	}

	possible := engine.GetPossibleMoves()
	if len(possible) != 2 {
		t.Errorf("Expected 2 possible moves from (2,1), got %v", possible)
	}
}

func TestEngine_LocalViewAndRender(t *testing.T) {
	engine, err := NewEngine(RoundConfig{Rows: 3, Cols: 4, CoinCount: 1}, newScriptedSource(t, 1, 0))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	if engine.Render() != "0000\n0x*0\n0000" {
		t.Errorf("Unexpected render:\n%s", engine.Render())
	}
	view := engine.GetLocalView()
	if view[1] != "0x*" {
		t.Errorf("Expected middle row 0x*, got %q", view[1])
	}
}
