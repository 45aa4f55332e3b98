// Package api serves the maze sessions over HTTP.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions              create ({"config_name"}, {"config"} or empty)
//   - GET    /api/sessions              list (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/{id}         session info with public state
//   - DELETE /api/sessions/{id}
//
// Navigation:
//   - GET  /api/sessions/{id}/state        navigation state
//   - GET  /api/sessions/{id}/grid         maze in text format (text/plain)
//   - POST /api/sessions/{id}/command      {"command": "forward"}
//   - POST /api/sessions/{id}/bulk-command {"commands": [...], "restart": false}
//   - POST /api/sessions/{id}/restart
//   - GET  /api/sessions/{id}/history      ?page&limit&order&current_run
//
// Configuration:
//   - GET  /api/configs
//   - POST /api/configs                 (?id=file_id, defaults to the lower-cased name)
//   - GET  /api/configs/{name}
//
// Also served: /health, /ws?session={id} when a hub is given, and /metrics
// and /mcp when their handlers are configured.
//
// Errors are JSON objects with an "error" field. Unknown sessions and
// configs answer 404, malformed commands and configs 400, duplicate
// session IDs 409.
package api
