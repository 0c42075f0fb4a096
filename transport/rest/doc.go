// Package rest is a typed client for the game server's HTTP API.
//
// Non-2xx responses come back as *APIError carrying the status code and the
// server's error message; errors.Is(err, ErrNotFound) matches unknown sessions
// and presets.
package rest
