// Package service provides the business logic layer for the 2048 autopilot.
//
// The service package implements:
//   - Multi-session game management
//   - Manual moves, AI moves and bounded autoplay
//   - Selector hints and manual cell edits
//   - Move history pagination and a score leaderboard
//   - In-process snapshot export and import
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages game configuration loading and validation.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine; the selector package
// picks AI moves, which the service applies through the engine so that they
// are recorded in the session history with an "ai" source.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	// Create a new 5x5 session from the default preset
//	sessionInfo, err := gameService.CreateSession(ctx, "", 5)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Let the selector play one move
//	result, err := gameService.AIMove(ctx, sessionInfo.ID)
//
// Errors:
//
// Game over is never an error; it is reported in the returned state.
// Failures at the service boundary wrap ErrSessionNotFound,
// ErrConfigNotFound, ErrInvalidConfig or ErrInvalidInput.
package service
