// Package cli provides the interactive valuation desk command-line client.
//
// It wires configuration, local storage, the request gateway, the dashboard
// aggregator and the report exporter behind a REPL. A background watcher
// probes server health and switches between online and offline mode; in
// offline mode the dashboard shows the last loaded records.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
