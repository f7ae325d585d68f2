package domain

import "errors"

var (
	// ErrTransport covers network failures, timeouts and refused connections.
	ErrTransport = errors.New("transport failure")
	// ErrProtocol covers non-success statuses and malformed payloads.
	ErrProtocol = errors.New("protocol failure")
	// ErrPinRejected is returned when the server refuses a PIN.
	ErrPinRejected = errors.New("pin rejected")
	// ErrPinIncomplete is returned locally; no request was made.
	ErrPinIncomplete = errors.New("pin incomplete")
	// ErrCompletionInFlight refuses a second completion for the same mesa key.
	ErrCompletionInFlight = errors.New("completion already in flight")
	ErrMissingMesaKey     = errors.New("missing mesa key")
)
