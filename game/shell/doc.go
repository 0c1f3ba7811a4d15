// Package shell connects players to the engine.
//
// A shell repeatedly takes an Intent (a move, a restart or a quit) from an
// IntentSource, hands it to a Controller and re-renders the resulting
// snapshot. Sources decouple the loop from the input mechanism: ReaderSource
// plays scripts, SliceSource drives tests, and the terminal UI and the
// WebSocket hub parse their own input with ParseIntent.
//
// Usage:
//
//	game, _ := engine.NewEngine(engine.DefaultRoundConfig(), engine.NewRandomSource(7))
//	controller := shell.NewController(game)
//	err := controller.Run(ctx, shell.NewReaderSource(os.Stdin), shell.TextRenderer(os.Stdout))
package shell
