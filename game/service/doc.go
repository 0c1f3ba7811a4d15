// Package service provides the business logic layer for the Coin Crate game.
//
// The service package implements:
//   - Multi-session game management
//   - Move processing, bulk moves and round restarts
//   - Move history tracking with pagination
//   - Hints towards the nearest reachable coin
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages round configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the shells (HTTP/WebSocket/MCP/terminal) and
// the game engine. Each session owns its own engine, so rounds in different
// sessions never share state. Sentinel errors (ErrSessionNotFound,
// ErrConfigNotFound, ErrUnknownDirection) are shared with the session and
// config packages so callers can match them with errors.Is.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, info.ID, "right", false)
//	fmt.Println(result.Message)
package service
