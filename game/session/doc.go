// Package session keeps the live 2048 games of a server process.
//
// Each session owns its own engine instance along with creation and
// last-access timestamps. Sessions are held in memory only and vanish
// when the process exits; snapshots exported through the service layer
// are the way to carry a board between runs.
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters drawn from crypto/rand. Lookups are
// case-insensitive, and a collision with a live session triggers a fresh
// draw.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Restore a board captured earlier
//	restored, err := manager.Adopt("", config, snapshot)
//
// Stale sessions can be dropped with CleanupExpiredSessions.
package session
