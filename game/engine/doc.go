// Package engine provides the core game logic for the 2048 autopilot.
//
// The engine package implements the game mechanics including:
//   - Tile representation and square grids of any size from 1 to 16
//   - The four directional moves built on a single left-merge pass
//   - Random tile spawning behind an injectable Source
//   - Score accounting and board-full terminal detection
//   - Configuration loading and validation
//
// Core Types:
//
// GameState holds the grid, score and game over flag and carries the move
// operations themselves. The Engine interface wraps a GameState with a
// GameConfig, message text and a cumulative move history; GameEngine is its
// implementation.
//
// Usage:
//
//	config, err := engine.LoadConfigByName("classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gameEngine, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	moved := gameEngine.Move(engine.Left)
//	state := gameEngine.GetState()
//
// Game Rules:
//
// A move compacts every row (or column) toward one edge and merges equal
// neighbours once per pass, the merged tile doubling in value. A move that
// changes any cell adds one point to the score and spawns a 2 (90%) or a 4
// (10%) on a random empty cell. Game over is reached when a spawn finds no
// empty cell, or when the selector finds no direction that changes the grid.
// Game over is state, not an error: callers keep rendering it.
package engine
