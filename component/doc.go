// Package component holds the identity and lifecycle pieces shared by
// pipeline stages and long-running services.
//
//   - IDGenerator: injectable sequence of non-zero stage ids
//   - Describable: self-description for summaries and the HTTP API
//   - Component and Registry: ordered start/stop of the worker, the HTTP
//     server and telemetry exporters in serve mode
package component
