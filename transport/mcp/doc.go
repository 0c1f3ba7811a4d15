// Package mcp provides the Model Context Protocol server for Coin Crate.
//
// The mcp package implements:
//   - MCP server for AI agent integration
//   - Tool definitions for game operations
//   - Stdio and HTTP transport modes
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - create_session: Create new game session with config selection
//   - list_sessions: List all active sessions
//   - get_session: Get specific session details
//   - game_state: Get the board, coin count and round status
//   - move: Execute single directional movement
//   - bulk_move: Execute multiple moves in sequence
//   - restart_round: Start a new round
//   - move_history: Retrieve move history with pagination
//   - hint: Shortest path to the nearest coin, with a short move preview
//   - list_configs: List available board configurations
//   - game_instructions: Full rules and legend
//   - describe_cell: Explain a single cell relative to the player
//
// Tools call the game service directly. Moves and restarts made through a
// tool are reported to the StateNotifier so WebSocket viewers stay in sync.
//
// Usage:
//
//	server := mcp.NewServer(gameService)
//	server.SetNotifier(hub.BroadcastToSession)
//
//	// Stdio mode
//	server.ServeStdio()
//
//	// HTTP mode
//	router.Handle("/mcp", server)
package mcp
