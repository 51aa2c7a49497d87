// Package server is the HTTP control surface of riv, built on Gin.
//
// Requests pass through a net/http middleware stack (server/middleware)
// wrapped around the Gin engine: recovery, OpenTelemetry request spans,
// request id, CORS, body size limit and request logging.
//
// Probe and info endpoints live in server/endpoint:
//
//   - /health: aggregated component health
//   - /alive: liveness probe, 503 once the run worker has exited
//   - /ready: readiness probe
//   - /info: build version and uptime
//   - /metrics: runtime memory and goroutine counts
//
// RegisterRuns mounts the run API, which hands commands to an
// engine.Worker one at a time:
//
//	POST /api/v1/runs      {"command":"publish","path":"in.csv","sink":{"kind":"json","path":"out.json"}}
//	GET  /api/v1/runs
//	GET  /api/v1/runs/:id
//
// The server listens on 127.0.0.1 unless configured otherwise and sends no
// CORS headers until origins are listed. Every input and output path a run
// names must resolve inside Config.BaseDir; relative paths resolve against
// it and anything else is rejected with INVALID_INPUT.
package server
