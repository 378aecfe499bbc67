package swarm

import (
	"context"
	"sync"
	"time"

	"github.com/johnsmith-uni/johnbot2/internal/adapters/framelog"
	logAdapter "github.com/johnsmith-uni/johnbot2/internal/adapters/log"
	oscAdapter "github.com/johnsmith-uni/johnbot2/internal/adapters/osc"
	"github.com/johnsmith-uni/johnbot2/internal/app"
	"github.com/johnsmith-uni/johnbot2/internal/domain"
	"github.com/johnsmith-uni/johnbot2/internal/ports"
)

// Swarm is the host side of a phototactic robot swarm: it listens for
// per-robot sensor reports, answers each with a motor command, logs the
// swarm state at a fixed rate, and tracks per-robot liveness. Use New()
// to create an instance, then Start() to bring the pipeline up.
type Swarm struct {
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	sender    ports.CommandSender
	clock     ports.Clock
	logger    ports.Logger
	emitter   *eventEmitterWrapper

	// Plugin support
	plugins []Plugin

	// Cleanup runner (config-based, not a plugin)
	cleanup *cleanupRunner

	// mu serializes Start and Stop.
	mu sync.Mutex

	// runMu guards the per-run pipeline below. Each Start builds a
	// fresh pipeline: its own session state, sensor sockets, and frame
	// log file.
	runMu       sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	coordinator *app.Coordinator
	receiver    *oscAdapter.Receiver
	sink        ports.FrameSink
	logPath     string
}

// New creates a new Swarm instance with the given configuration.
// The instance is created in StateStopped; call Start() to bring the
// pipeline up. Returns an error if the configuration is invalid.
func New(cfg Config, opts ...Option) (*Swarm, error) {
	// Set defaults
	cfg.SetDefaults()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Apply options
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Create logger
	var logger ports.Logger
	if o.logger != nil {
		logger = o.logger
	} else {
		logger = logAdapter.NewNoopLogger()
	}

	clock := o.clock
	if clock == nil {
		clock = ports.SystemClock{}
	}

	// Create event emitter wrapper
	emitter := &eventEmitterWrapper{handler: o.eventHandler}

	// Create lifecycle manager
	lifecycle := app.NewLifecycle(logger, emitter)

	// Create the command transport. One instance serves every run; the
	// UDP clients carry no per-run state.
	sender := o.sender
	if sender == nil {
		sender = oscAdapter.NewCommandSender(oscAdapter.SenderConfig{
			Robots:          cfg.Robots,
			RobotIPTemplate: cfg.RobotIPTemplate,
			RobotIPOffset:   cfg.RobotIPOffset,
			CommandBasePort: cfg.CommandBasePort,
		}, logger)
	}

	// Create cleanup runner if configured
	var cleanup *cleanupRunner
	if o.cleanupConfig != nil && o.cleanupConfig.Enabled {
		cleanup = newCleanupRunner(*o.cleanupConfig, cfg.LogDir, logger)
	}

	return &Swarm{
		config:    cfg,
		opts:      o,
		lifecycle: lifecycle,
		sender:    sender,
		clock:     clock,
		logger:    logger,
		emitter:   emitter,
		plugins:   o.plugins,
		cleanup:   cleanup,
	}, nil
}

// Start brings the control pipeline up in the background: it opens the
// frame log, binds the sensor sockets, initializes plugins, and starts
// the logging and liveness loops. Returns immediately once running.
// Returns an error if already running or if startup fails.
// The provided context bounds the lifetime of the pipeline.
func (s *Swarm) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}

	// Transition to starting
	if err := s.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	// Create cancellable context
	runCtx, cancel := context.WithCancel(ctx)
	s.lifecycle.SetCancel(cancel)

	// Open the frame log
	sink, logPath, err := s.openSink()
	if err != nil {
		cancel()
		_ = s.lifecycle.TransitionTo(app.StateCrashed, "frame log open failed")
		return err
	}

	// Build this run's pipeline around a fresh session table
	coordinator := app.NewCoordinator(app.CoordinatorConfig{
		Roster:          s.config.Robots,
		Alpha:           s.config.Alpha,
		MotorMax:        s.config.MotorMax,
		FrameInterval:   s.config.FrameInterval(),
		LivenessTimeout: s.config.LivenessTimeout,
		SweepInterval:   s.config.SweepInterval,
		StopAttempts:    s.config.StopAttempts,
		StopPause:       s.config.StopPause,
		LEDEnabled:      s.config.LEDEnabled,
		LEDColor:        s.config.LEDColor,
	}, s.sender, sink, s.clock, s.logger, s.emitter)

	receiver := oscAdapter.NewReceiver(oscAdapter.ReceiverConfig{
		Robots:         s.config.Robots,
		BindAddr:       s.config.BindAddr,
		SensorBasePort: s.config.SensorBasePort,
	}, coordinator.HandleSensorReport, s.logger)

	if err := receiver.Start(); err != nil {
		s.closeSink(sink)
		cancel()
		_ = s.lifecycle.TransitionTo(app.StateCrashed, "sensor bind failed")
		return err
	}

	// Publish the pipeline before plugin init so plugins can reach
	// ApplyTunables and Snapshots from Initialize.
	s.runMu.Lock()
	s.ctx = runCtx
	s.cancel = cancel
	s.coordinator = coordinator
	s.receiver = receiver
	s.sink = sink
	s.logPath = logPath
	s.runMu.Unlock()

	// Initialize plugins
	pluginCfg := PluginConfig{
		ConfigFile: s.config.ConfigFile,
		LogDir:     s.config.LogDir,
		Robots:     s.config.Robots,
		Swarm:      s,
		Logger:     s.logger,
	}
	for _, p := range s.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			s.teardownRun()
			_ = s.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return err
		}
		s.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	// Start cleanup runner if configured
	if s.cleanup != nil {
		s.cleanup.start(runCtx, logPath)
	}

	// Start the pipeline loops
	s.lifecycle.AddWorker()
	go func() {
		defer s.lifecycle.WorkerDone()

		// Transition to running
		if err := s.lifecycle.TransitionTo(app.StateRunning, "pipeline started"); err != nil {
			s.logger.Error("failed to transition to running", ports.Err(err))
			return
		}

		coordinator.RunFrameLoop(runCtx)
	}()

	s.lifecycle.AddWorker()
	go func() {
		defer s.lifecycle.WorkerDone()
		coordinator.RunLivenessLoop(runCtx)
	}()

	return nil
}

// Stop gracefully shuts the pipeline down: it closes the sensor
// sockets, drains the loops, broadcasts the stop command to every
// robot, and closes the frame log. Waits up to ShutdownTimeout for the
// loops before forcing shutdown. Returns nil on graceful shutdown,
// ErrShutdownTimeout if forced.
func (s *Swarm) Stop() error {
	s.mu.Lock()

	if !s.lifecycle.CanStop() {
		s.mu.Unlock()
		return domain.ErrNotRunning
	}

	// Transition to stopping
	if err := s.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		s.mu.Unlock()
		return err
	}

	s.runMu.RLock()
	cancel := s.cancel
	receiver := s.receiver
	coordinator := s.coordinator
	s.runMu.RUnlock()

	// Cancel the context
	if cancel != nil {
		cancel()
	}

	s.mu.Unlock()

	// No new reports past this point
	if receiver != nil {
		if err := receiver.Close(); err != nil {
			s.logger.Warn("sensor receiver close failed", ports.Err(err))
		}
	}

	// Wait for the loops with timeout
	err := s.lifecycle.WaitWithTimeout(app.ShutdownTimeout)

	// Park the robots, then seal the log
	if coordinator != nil {
		coordinator.StopAll()
	}
	s.runMu.RLock()
	sink := s.sink
	s.runMu.RUnlock()
	s.closeSink(sink)

	// Stop cleanup runner
	if s.cleanup != nil {
		s.cleanup.stop()
	}

	// Shutdown plugins (in reverse order)
	shutdownCtx := context.Background()
	for i := len(s.plugins) - 1; i >= 0; i-- {
		p := s.plugins[i]
		if shutdownErr := p.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(shutdownErr))
		} else {
			s.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}

	s.runMu.Lock()
	s.ctx = nil
	s.cancel = nil
	s.coordinator = nil
	s.receiver = nil
	s.sink = nil
	s.logPath = ""
	s.runMu.Unlock()

	// Transition to stopped
	if err != nil {
		_ = s.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = s.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}

	return err
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Swarm) Status() State {
	return convertState(s.lifecycle.State())
}

// Report feeds one sensor report into the pipeline directly, bypassing
// the OSC transport. It behaves exactly like a report arriving on the
// robot's socket: the readings are clamped, the session updated, and a
// command dispatched. Returns ErrNotRunning when the pipeline is down.
func (s *Swarm) Report(id RobotID, left, right float64) error {
	s.runMu.RLock()
	coordinator := s.coordinator
	s.runMu.RUnlock()

	if coordinator == nil {
		return domain.ErrNotRunning
	}
	coordinator.HandleSensorReport(id, left, right)
	return nil
}

// Snapshots returns the per-robot state in ascending robot ID order,
// or nil when the pipeline is down.
func (s *Swarm) Snapshots() []Snapshot {
	s.runMu.RLock()
	coordinator := s.coordinator
	s.runMu.RUnlock()

	if coordinator == nil {
		return nil
	}
	return coordinator.Snapshots()
}

// Snapshot returns one robot's state. The second return is false when
// the robot is unknown or the pipeline is down.
func (s *Swarm) Snapshot(id RobotID) (Snapshot, bool) {
	s.runMu.RLock()
	coordinator := s.coordinator
	s.runMu.RUnlock()

	if coordinator == nil {
		return Snapshot{}, false
	}
	return coordinator.Snapshot(id)
}

// ApplyTunables adjusts control parameters mid-run and reports which
// ones changed. Returns ErrNotRunning when the pipeline is down.
func (s *Swarm) ApplyTunables(t Tunables) ([]string, error) {
	s.runMu.RLock()
	coordinator := s.coordinator
	s.runMu.RUnlock()

	if coordinator == nil {
		return nil, domain.ErrNotRunning
	}
	changed := coordinator.ApplyTunables(t)
	if len(changed) > 0 {
		s.logger.Info("tunables applied", ports.Any("changed", changed))
	}
	return changed, nil
}

// SensorPorts returns the bound sensor port for every robot in robot
// ID order, or nil when the pipeline is down. Useful with a zero
// SensorBasePort, where every robot gets an ephemeral port.
func (s *Swarm) SensorPorts() []int {
	s.runMu.RLock()
	receiver := s.receiver
	s.runMu.RUnlock()

	if receiver == nil {
		return nil
	}
	return receiver.Ports()
}

// LogPath returns the active CSV frame log's location, or "" when the
// pipeline is down or a custom sink was injected.
func (s *Swarm) LogPath() string {
	s.runMu.RLock()
	defer s.runMu.RUnlock()
	return s.logPath
}

// openSink opens this run's frame log, or hands back the injected sink.
func (s *Swarm) openSink() (ports.FrameSink, string, error) {
	if s.opts.sink != nil {
		return s.opts.sink, "", nil
	}
	sink, err := framelog.NewCSVSink(s.config.LogDir, s.clock.Now(), s.config.FlushEvery, s.logger)
	if err != nil {
		return nil, "", err
	}
	return sink, sink.Path(), nil
}

func (s *Swarm) closeSink(sink ports.FrameSink) {
	if sink == nil {
		return
	}
	if err := sink.Close(); err != nil {
		s.logger.Error("frame log close failed", ports.Err(err))
	}
}

// teardownRun unwinds a partially started run after a startup failure.
func (s *Swarm) teardownRun() {
	s.runMu.Lock()
	cancel := s.cancel
	receiver := s.receiver
	sink := s.sink
	s.ctx = nil
	s.cancel = nil
	s.coordinator = nil
	s.receiver = nil
	s.sink = nil
	s.logPath = ""
	s.runMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if receiver != nil {
		_ = receiver.Close()
	}
	s.closeSink(sink)
}

// eventEmitterWrapper adapts EventHandler to the internal emitter
// interfaces.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

func (e *eventEmitterWrapper) OnRobotStale(id domain.RobotID, silence time.Duration) {
	if e.handler == nil {
		return
	}
	e.handler.OnRobotStale(RobotStaleEvent{Robot: id, Silence: silence})
}

func (e *eventEmitterWrapper) OnRobotRecovered(id domain.RobotID) {
	if e.handler == nil {
		return
	}
	e.handler.OnRobotRecovered(RobotRecoveredEvent{Robot: id})
}

func (e *eventEmitterWrapper) OnSendError(id domain.RobotID, err error) {
	if e.handler == nil {
		return
	}
	e.handler.OnSendError(SendErrorEvent{Robot: id, Err: err})
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}
