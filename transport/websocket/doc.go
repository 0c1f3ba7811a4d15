// Package websocket provides the WebSocket transport for the Coin Crate game.
//
// The websocket package implements:
//   - Session-aware WebSocket connections
//   - State broadcasting after every change
//   - Intents sent by networked players
//   - Connection lifecycle management
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Each client connection is handled by a read and a
// write goroutine.
//
// Message Protocol:
//
// Messages are JSON-encoded with the following structure:
//   - Incoming: {"intent": "left"} (any spelling shell.ParseIntent accepts)
//   - Outgoing: {"session_id": "ab12", "event": "state_update", "state": {...}}
//
// Incoming intents are handed to the hub's IntentHandler; the server applies
// them to the session and broadcasts the new state. A "quit" intent closes
// the connection. Invalid frames are answered with an "error" event sent to
// that client only.
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.SetIntentHandler(apply)
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, sessionID, snapshot)
//	hub.BroadcastToSession(sessionID, snapshot)
package websocket
