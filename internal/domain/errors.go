package domain

import "errors"

// Domain errors represent error conditions in the johnbot2 domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running instance.
	ErrAlreadyRunning = errors.New("johnbot2: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped instance.
	ErrNotRunning = errors.New("johnbot2: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("johnbot2: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("johnbot2: invalid configuration")

	// ErrUnknownRobot is returned when a command targets an identity that has
	// no configured network endpoint.
	ErrUnknownRobot = errors.New("johnbot2: unknown robot")
)
