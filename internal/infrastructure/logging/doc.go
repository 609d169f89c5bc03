// Package logging provides structured logging for the door lock nodes.
//
// This package wraps Go's standard log/slog package so the controller,
// the panel, the link tracer and the telemetry sinks share one format.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stderr"   # stdout, stderr, file
//	  file: ""           # path when output is file
//
// The frontend draws its display on stdout, so its logs belong on stderr
// or in a file.
//
// # Security
//
// Never log passcode digits. The link tracer masks digit bytes, and the
// controller logs outcomes and opcodes only.
package logging
