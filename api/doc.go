// Package api provides HTTP REST API handlers for Coin Crate.
//
// The api package implements:
//   - RESTful endpoints for game operations
//   - Session management endpoints
//   - Configuration listing and saving
//   - WebSocket upgrade handling
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create new session ({"config_id": "small"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/unified - Sessions for a multi-board view (?sessionIds= or ?configName=)
//   - GET /api/sessions/{id} - Get specific session
//   - DELETE /api/sessions/{id} - Delete session
//
// Game Operations:
//   - GET /api/sessions/{id}/state - Current board
//   - POST /api/sessions/{id}/move - {"direction": "up", "restart": false}
//   - POST /api/sessions/{id}/bulk-move - {"moves": ["up", "left"], "restart": false}
//   - POST /api/sessions/{id}/restart - Start a new round
//   - GET /api/sessions/{id}/history - Move history (?page=&limit=&order=)
//   - GET /api/sessions/{id}/hint - Next step towards the nearest coin
//
// Configuration:
//   - GET /api/configs - List available configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs - Save a configuration (optional "filename": "tiny.yaml")
//
// Other:
//   - GET /ws?session={id} - WebSocket stream of state updates
//   - GET /healthz - Health check
//
// A blocked move is a normal 200 response with "success": false and an
// "attempted_to" description of the cell that stopped the player.
//
// Error Handling:
//
// Errors are returned as JSON: {"error": "error message"}. Unknown sessions
// and configurations map to 404, unknown directions and invalid
// configurations to 400, anything else to 500.
package api
