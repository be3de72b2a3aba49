// Package client is the Go client for the wifid HTTP API.
//
// It wraps the JSON endpoints served by internal/server with typed methods,
// transient-failure retries with exponential backoff, and an error taxonomy
// that lets callers distinguish "the daemon is not running" from "the
// request was rejected". wifictl is the main consumer.
package client
