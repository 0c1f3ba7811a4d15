// Package engine provides the core game logic for the Coin Crate puzzle.
//
// The engine package implements the game mechanics including:
//   - Walled rectangular grids with randomly scattered boxes and coins
//   - Movement resolution: plain steps, single-box pushes, coin pickup
//   - The Playing/Won round state machine
//   - Read-only snapshots and text rendering for shells
//
// Core Types:
//
// RoundState owns one round: the grid, the tracked player position and the
// coin counters. It is mutated only by AttemptMove. GameEngine wraps a live
// round together with its RoundConfig and RandomSource, rebuilds it on
// Restart and keeps the move history.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultRoundConfig(), engine.NewRandomSource(42))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	outcome := gameEngine.Move(engine.Right)
//	fmt.Println(outcome, gameEngine.Render())
//
// Game Rules:
//
// The player starts at (1,1). Walls line the border and can never be entered.
// Walking into a box pushes it one tile when the tile beyond is empty floor;
// otherwise the move is blocked. Walking onto a coin collects it. The round is
// won once the number of collected coins equals the number requested when the
// round was built, after which every move is blocked until a restart.
//
// Placement draws are not deduplicated: a coin may overwrite a box or another
// coin, and the player start overwrites whatever was drawn at (1,1). The coin
// target stays at the requested count, so such rounds cannot be won.
package engine
