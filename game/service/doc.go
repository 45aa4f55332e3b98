// Package service provides the business logic layer for maze sessions.
//
// GameService is the one entry point for the transports (HTTP, WebSocket,
// MCP and the play driver). It resolves a session, runs navigation commands
// on its engine while holding the service lock, persists the session and
// reports the outcome with a human-readable message.
//
// SessionManager and ConfigManager are implemented by the session and
// config packages; tests substitute in-memory mocks.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	svc := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := svc.CreateSession(ctx, service.CreateSessionRequest{ConfigName: "classic"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := svc.Command(ctx, info.ID, "forward")
package service
