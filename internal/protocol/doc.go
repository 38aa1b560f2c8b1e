// Package protocol defines the daemon's socket wire format.
//
// Clients connect to the daemon's Unix socket and exchange
// newline-delimited JSON envelopes. Each envelope names a command and
// carries a command-specific payload. A connection holds exactly one
// request-response exchange.
package protocol
