package swarm

import "time"

// State represents the lifecycle state of a Swarm instance.
type State int

const (
	// StateStopped means the swarm is not running. Initial state.
	StateStopped State = iota

	// StateStarting means Start() was called and the pipeline is
	// binding its sockets and initializing plugins.
	StateStarting

	// StateRunning means the pipeline is dispatching commands and
	// logging frames.
	StateRunning

	// StateStopping means Stop() was called and shutdown is in
	// progress.
	StateStopping

	// StateCrashed means the pipeline failed to start or shut down
	// cleanly. Start() may be called again.
	StateCrashed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateCrashed:
		return "Crashed"
	default:
		return "Unknown"
	}
}

// CanStart reports whether Start() may be called from this state.
func (s State) CanStart() bool {
	return s == StateStopped || s == StateCrashed
}

// CanStop reports whether Stop() may be called from this state.
func (s State) CanStop() bool {
	return s == StateRunning || s == StateStarting
}

// IsRunning reports whether the pipeline is actively running.
func (s State) IsRunning() bool {
	return s == StateRunning
}

// StateChangeEvent is emitted on every lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// RobotStaleEvent is emitted once when a robot falls silent past the
// liveness timeout. Silence is how long the robot had been quiet when
// the sweep caught it.
type RobotStaleEvent struct {
	Robot   RobotID
	Silence time.Duration
}

// RobotRecoveredEvent is emitted when a stale robot reports again.
type RobotRecoveredEvent struct {
	Robot RobotID
}

// SendErrorEvent is emitted when a command could not be sent to a
// robot. The pipeline keeps running; the event exists for visibility.
type SendErrorEvent struct {
	Robot RobotID
	Err   error
}

// EventHandler receives notifications about swarm operations. Handlers
// are called synchronously from pipeline goroutines and should return
// quickly. Embed BaseEventHandler to get no-op defaults for events you
// do not care about.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnRobotStale(event RobotStaleEvent)
	OnRobotRecovered(event RobotRecoveredEvent)
	OnSendError(event SendErrorEvent)
}

// BaseEventHandler provides no-op implementations of all EventHandler
// methods.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent)       {}
func (BaseEventHandler) OnRobotStale(RobotStaleEvent)         {}
func (BaseEventHandler) OnRobotRecovered(RobotRecoveredEvent) {}
func (BaseEventHandler) OnSendError(SendErrorEvent)           {}
