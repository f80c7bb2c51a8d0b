// Package app wires configuration, logging, telemetry, the exchange scraper,
// the decomposition engine and the HTTP API into one Application.
//
// # Initialization Flow
//
//  1. Load configuration from defaults, the optional YAML file and TWX_* variables
//  2. Resolve and create the data, exports and logs directories
//  3. Initialize logging and OpenTelemetry
//  4. Build the scraper, engine, report service and exporter (BuildServices)
//  5. Set up the chi router and middleware
//  6. Configure the HTTP server
//
// BuildServices is shared with cmd/decompose so the CLI and the server
// decompose reports through the same stack.
//
// # Lifecycle
//
// Run starts the server and blocks until SIGINT or SIGTERM, then shuts the
// server down within Server.ShutdownTimeout and flushes telemetry.
package app
