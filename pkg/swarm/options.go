package swarm

import (
	"github.com/johnsmith-uni/johnbot2/internal/app"
	"github.com/johnsmith-uni/johnbot2/internal/domain"
	"github.com/johnsmith-uni/johnbot2/internal/ports"
)

// Logger is the interface for structured logging. Adapters for zerolog
// and a no-op logger ship with the johnbot2 CLI.
type Logger = ports.Logger

// LogField represents a structured log field.
type LogField = ports.Field

// CommandSender delivers motor and LED commands to robots.
// The default implementation speaks OSC over UDP.
type CommandSender = ports.CommandSender

// FrameSink receives one frame of per-robot snapshots per log tick.
// The default implementation writes timestamped CSV files.
type FrameSink = ports.FrameSink

// Clock abstracts wall-clock time for tests.
type Clock = ports.Clock

// Re-export domain types so embedders rarely need the internal
// packages.
type (
	// RobotID identifies one robot in the swarm.
	RobotID = domain.RobotID

	// SensorSample is one pair of light sensor readings.
	SensorSample = domain.SensorSample

	// MotorCommand is one pair of motor speeds.
	MotorCommand = domain.MotorCommand

	// LEDColor is an RGB color.
	LEDColor = domain.LEDColor

	// Liveness is a robot's reporting state.
	Liveness = domain.Liveness

	// Snapshot is one robot's state as seen by Snapshots.
	Snapshot = domain.Snapshot

	// Tunables are the parameters adjustable mid-run via ApplyTunables.
	// Nil fields leave the current value unchanged.
	Tunables = app.Tunables
)

// Liveness states, in lifecycle order.
const (
	LivenessUnseen     = domain.LivenessUnseen
	LivenessActive     = domain.LivenessActive
	LivenessStale      = domain.LivenessStale
	LivenessTerminated = domain.LivenessTerminated
)

// Option configures optional behavior of a Swarm.
type Option func(*options)

// options holds the optional configuration for a Swarm instance.
type options struct {
	logger        ports.Logger
	eventHandler  EventHandler
	plugins       []Plugin
	sender        ports.CommandSender
	sink          ports.FrameSink
	clock         ports.Clock
	cleanupConfig *CleanupConfig
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler sets a handler for swarm events.
// Events are called synchronously from pipeline goroutines.
// If not provided, no events are emitted.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the swarm
// starts. Plugins are initialized in registration order and shut down
// in reverse order. For built-in plugins, use their own options such
// as configwatcher.WithConfigWatcher.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithCommandSender replaces the OSC command transport, for tests or
// alternative robot links.
func WithCommandSender(sender CommandSender) Option {
	return func(o *options) {
		o.sender = sender
	}
}

// WithFrameSink replaces the CSV frame log. The sink is closed when
// the swarm stops, so an injected sink serves a single run.
func WithFrameSink(sink FrameSink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}
