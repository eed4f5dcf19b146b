// Package api provides the HTTP endpoint sensors post readings to, plus
// health and metrics endpoints for operators.
//
// Routes:
//   - {ingest_path} (default "/"): POST a reading as the raw body. Any other
//     method gets a usage hint. The response is one plain-text line per
//     storage step.
//   - GET /api/v1/health: JSON status including InfluxDB reachability.
//   - GET /api/v1/metrics: ingest counters and Go runtime statistics.
//
// The server follows the same lifecycle as the infrastructure clients:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
