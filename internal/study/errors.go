package study

import "errors"

// Error taxonomy shared across the service and the HTTP layer. Handlers map
// these to status codes with errors.Is; anything unwrapped is a store failure.
var (
	ErrValidation = errors.New("invalid input")
	ErrAuth       = errors.New("authentication required")
	ErrNotFound   = errors.New("not found")
)
