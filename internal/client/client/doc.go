// Package client probes the backend's gRPC health service. The CLI uses it
// to switch between online and offline mode.
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrNotServing.
package client
