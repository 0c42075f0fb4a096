// Package mcp exposes the game server to AI agents over the Model Context Protocol.
//
// The Client registers one tool per game operation and forwards every call to
// the REST API through the rest package, so an agent sees exactly what HTTP
// clients see. Boards are rendered as aligned text with '.' for empty cells.
//
// Tools:
//   - create_session, list_sessions, get_session
//   - game_state, move, bulk_move, reset_game, edit_cell, move_history
//   - ai_move, autoplay, hint
//   - list_configs, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
