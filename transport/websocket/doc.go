// Package websocket pushes live board updates to browsers and other watchers.
//
// A Hub keeps the clients of every session and fans out messages to them.
// Registration, removal and broadcasts are all serialized through the hub's
// Run goroutine, so callers from HTTP handlers never touch client state.
//
// Message Protocol:
//
// Clients connect with ?session=<id> and only receive messages. Every
// message is a JSON envelope:
//
//	{"session_id": "ab12", "event": "state_update", "game_state": {...}}
//	{"session_id": "ab12", "event": "ai_select", "data": {...}}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	defer hub.Stop()
//
//	hub.ServeWS(w, r, sessionID)
//	hub.BroadcastToSession(sessionID, state)
//
// A client whose send buffer fills up is dropped instead of stalling the hub.
package websocket
