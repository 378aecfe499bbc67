package swarm

import "github.com/johnsmith-uni/johnbot2/internal/domain"

// Sentinel errors returned by Swarm operations. Match with errors.Is;
// returned errors may wrap these with detail.
var (
	// ErrAlreadyRunning is returned by Start when the pipeline is
	// already up.
	ErrAlreadyRunning = domain.ErrAlreadyRunning

	// ErrNotRunning is returned by Stop and the pipeline accessors
	// when the pipeline is down.
	ErrNotRunning = domain.ErrNotRunning

	// ErrShutdownTimeout is returned by Stop when the loops did not
	// drain in time and shutdown was forced.
	ErrShutdownTimeout = domain.ErrShutdownTimeout

	// ErrInvalidConfig is wrapped by every New configuration error.
	ErrInvalidConfig = domain.ErrInvalidConfig

	// ErrUnknownRobot is wrapped by send failures for identities the
	// transport has no client for.
	ErrUnknownRobot = domain.ErrUnknownRobot
)
