// Package session provides in-memory session management for Coin Crate.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique 4-character session ID generation
//   - Session cleanup and expiration
//
// Each session owns a GameEngine built from the round configuration it was
// created with. A configuration with a non-zero seed gives every session the
// same sequence of rounds; otherwise each session is seeded from crypto/rand.
//
// Session IDs are case-insensitive. Sessions are not persisted and disappear
// when the process exits.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", roundConfig)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sess.ID)
//	removed := manager.CleanupExpiredSessions(time.Hour)
package session
