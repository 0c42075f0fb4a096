// Package api exposes the 2048 autopilot over HTTP.
//
// Routes (all JSON, mounted under /api):
//
// Sessions:
//   - POST   /sessions                   create {config_id, size}
//   - GET    /sessions                   list (?sort=accessed|created|score&order=&limit=)
//   - GET    /sessions/leaderboard       top sessions by score (?limit=)
//   - GET    /sessions/{id}              session info
//   - DELETE /sessions/{id}              remove a session
//
// Play:
//   - GET  /sessions/{id}/state          current board
//   - POST /sessions/{id}/move           {direction, reset}
//   - POST /sessions/{id}/bulk-move      {moves: [...], reset}
//   - POST /sessions/{id}/ai-move        one greedy selector move
//   - POST /sessions/{id}/autoplay       {max_moves}
//   - GET  /sessions/{id}/hint           selector outcomes without moving
//   - POST /sessions/{id}/edit           {row, col, op: increment|clear}
//   - POST /sessions/{id}/reset          fresh board, same preset
//   - GET  /sessions/{id}/history        ?page=&limit=&order=asc|desc
//
// Snapshots and presets:
//   - GET  /sessions/{id}/snapshot       serializable game state
//   - POST /snapshots                    {config_id, state} starts a session from it
//   - GET  /configs, GET /configs/{name}, POST /configs
//   - GET  /health
//
// The /ws?session=<id> endpoint streams state updates for one session.
//
// Errors are returned as {"error": "..."}. Unknown sessions or presets map
// to 404, malformed input to 400 and anything else to 500. Reaching game
// over is not an error; it shows up in the returned state.
package api
