// Package session provides session management for maze robots.
//
// Manager keeps one engine per session in memory behind an RWMutex. IDs
// are case-insensitive; generated IDs are UUIDs. A SessionPersistence
// backend stores sessions so they survive restarts:
//
//   - FilePersistence writes one indented JSON file per session.
//   - RedisPersistence stores JSON strings in Redis with an optional TTL
//     and a sorted-set index used for listing.
//
// Persisted sessions embed the maze in text format together with the
// navigation state, so a session restores exactly even when its config
// has changed or produced an unseeded random maze.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := manager.Create("", "classic", config)
package session
