package server

// options.go handles setting of handler options

// Each option function returns a closure with the signature func(*Handler) which captures the
// option's parameter(s). New passes the closures to SetOptions which runs them, then fills in
// defaults for anything left unset. So in:
//
//   server.New(loader, server.MaxBody(1<<20))
//
// server.MaxBody(1<<20) returns a closure that sets the maxBody field when SetOptions runs it.
// If the same option is used more than once only the last use has any effect.

import (
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultMaxBody        = 4 << 20          // largest request body accepted by /prune and /usage
	defaultReadLimit      = 1 << 20          // largest websocket message accepted
	defaultInitialTimeout = 10 * time.Second // how long to wait for connection_init after the WS is opened
)

// SetOptions takes a slice of handler options (closures) and executes them
func (h *Handler) SetOptions(options ...func(*Handler)) {
	h.log = zerolog.Nop()
	for _, option := range options {
		option(h)
	}

	// Set any options that still have their unset (zero) value
	if h.maxBody <= 0 {
		h.maxBody = defaultMaxBody
	}
	if h.readLimit <= 0 {
		h.readLimit = defaultReadLimit
	}
	if h.initialTimeout <= 0 {
		h.initialTimeout = defaultInitialTimeout
	}
}

// Logger sets the logger for requests, websocket sessions and their sessions' pruning
func Logger(log zerolog.Logger) func(*Handler) {
	return func(h *Handler) {
		h.log = log
	}
}

// MaxBody limits the size (in bytes) of the body of a POST request
func MaxBody(n int64) func(*Handler) {
	return func(h *Handler) {
		h.maxBody = n
	}
}

// ReadLimit limits the size (in bytes) of a message received on a websocket.
// A bigger message closes the connection.
func ReadLimit(n int64) func(*Handler) {
	return func(h *Handler) {
		h.readLimit = n
	}
}

// InitialTimeout sets the length time to wait from when the websocket is opened until the
// "connection_init" message is received. If the message is not received from the client
// within the time limit the WS is closed with code 4408.
func InitialTimeout(timeout time.Duration) func(*Handler) {
	return func(h *Handler) {
		h.initialTimeout = timeout
	}
}

// NoInlineSchema rejects requests that include their own schema, so only the Loader's schema is pruned
func NoInlineSchema(on bool) func(*Handler) {
	return func(h *Handler) {
		h.noInlineSchema = on
	}
}
