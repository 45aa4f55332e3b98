// Package websocket pushes maze state to browsers and other watchers.
//
// A Hub groups connections by session ID. The API calls BroadcastState
// after every command, so watchers see the robot move without polling.
// Each connection first receives an EventState frame with the state at
// connect time, then EventStateUpdate frames as the session changes.
//
// Frames are JSON:
//
//	{"session_id": "abc", "event": "state_update", "state": {...}}
//
// Clients do not send commands over the socket; incoming frames are read
// only to keep the connection alive. A client that falls behind by more
// than the send buffer is disconnected.
//
// Usage:
//
//	hub := websocket.NewHubWithLogger(logger)
//	go hub.Run(ctx)
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"), nil)
//	})
package websocket
