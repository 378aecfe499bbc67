package app

import (
	"context"
	"time"

	"github.com/johnsmith-uni/johnbot2/internal/domain"
	"github.com/johnsmith-uni/johnbot2/internal/ports"
	"github.com/johnsmith-uni/johnbot2/internal/session"
)

// CoordinatorConfig contains configuration for the control pipeline.
type CoordinatorConfig struct {
	// Roster is the number of robots pre-seeded into the session table.
	Roster int

	// Alpha is the sigmoid sharpening exponent of the control law.
	Alpha float64

	// MotorMax is the full-scale motor speed.
	MotorMax int

	// FrameInterval is the period of the fixed-rate logging loop.
	FrameInterval time.Duration

	// LivenessTimeout is the silence duration after which a robot is
	// considered stale.
	LivenessTimeout time.Duration

	// SweepInterval is the period of the liveness check loop.
	SweepInterval time.Duration

	// StopAttempts and StopPause bound the shutdown stop broadcast:
	// each robot is sent the stop command StopAttempts times with
	// StopPause between rounds.
	StopAttempts int
	StopPause    time.Duration

	// LEDEnabled gates LED command dispatch; LEDColor is the color sent
	// alongside every motor command when enabled.
	LEDEnabled bool
	LEDColor   domain.LEDColor
}

// RobotEventEmitter is called on per-robot liveness changes and
// transport failures.
type RobotEventEmitter interface {
	OnRobotStale(id domain.RobotID, silence time.Duration)
	OnRobotRecovered(id domain.RobotID)
	OnSendError(id domain.RobotID, err error)
}

// Coordinator orchestrates the three concurrent paths of the control
// pipeline: the message-triggered dispatch path, the fixed-rate frame
// logger, and the periodic liveness sweep. All three share the session
// table; none of them blocks another in steady state.
type Coordinator struct {
	config  CoordinatorConfig
	table   *session.Table
	sender  ports.CommandSender
	sink    ports.FrameSink
	clock   ports.Clock
	logger  ports.Logger
	emitter RobotEventEmitter

	tunables tunableState
}

// NewCoordinator creates a coordinator with the given dependencies.
func NewCoordinator(
	config CoordinatorConfig,
	sender ports.CommandSender,
	sink ports.FrameSink,
	clock ports.Clock,
	logger ports.Logger,
	emitter RobotEventEmitter,
) *Coordinator {
	c := &Coordinator{
		config:  config,
		table:   session.NewTable(config.Roster),
		sender:  sender,
		sink:    sink,
		clock:   clock,
		logger:  logger,
		emitter: emitter,
	}
	c.tunables.init(config)
	return c
}

// HandleSensorReport is the dispatch path: one call per inbound sensor
// report. It clamps the readings, records the sample, computes the motor
// command, and sends it straight back to the reporting robot. Transport
// failures are logged and reported but never propagate; one robot's
// failure must not affect another robot's session.
func (c *Coordinator) HandleSensorReport(id domain.RobotID, left, right float64) {
	now := c.clock.Now()

	clampedL, outL := domain.ClampSensor(left)
	clampedR, outR := domain.ClampSensor(right)
	if outL || outR {
		c.logger.Warn("sensor reading out of range",
			ports.Int("robot", int(id)),
			ports.Float64("left", left),
			ports.Float64("right", right),
		)
	}

	mapper, led := c.tunables.mapperAndLED()
	sample := domain.SensorSample{Left: clampedL, Right: clampedR, At: now}
	cmd := mapper.Command(sample.Left, sample.Right)

	recovered := c.table.RecordSample(id, sample, cmd)
	if recovered {
		c.logger.Info("robot recovered", ports.Int("robot", int(id)))
		if c.emitter != nil {
			c.emitter.OnRobotRecovered(id)
		}
	}

	c.logger.Trace("dispatching command",
		ports.Int("robot", int(id)),
		ports.Int("motor_left", cmd.Left),
		ports.Int("motor_right", cmd.Right),
	)

	if err := c.sender.SendMotor(id, cmd); err != nil {
		c.logger.Error("motor send failed",
			ports.Int("robot", int(id)),
			ports.Err(err),
		)
		if c.emitter != nil {
			c.emitter.OnSendError(id, err)
		}
	}

	if led.enabled {
		if err := c.sender.SendLED(id, led.color); err != nil {
			c.logger.Error("led send failed",
				ports.Int("robot", int(id)),
				ports.Err(err),
			)
			if c.emitter != nil {
				c.emitter.OnSendError(id, err)
			}
		}
	}
}

// RunFrameLoop writes one frame of per-robot snapshots to the sink per
// frame interval until the context is canceled. Frames are stamped at
// their scheduled times, not at write time: when the loop falls behind,
// the missed frames are written in a burst so the log always carries one
// row per robot per interval. The loop polls at half the frame interval
// to keep the schedule drift-free.
func (c *Coordinator) RunFrameLoop(ctx context.Context) {
	ticker := time.NewTicker(c.config.FrameInterval / 2)
	defer ticker.Stop()

	next := c.clock.Now().Add(c.config.FrameInterval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			next = c.writeDueFrames(next)
		}
	}
}

// writeDueFrames writes every frame whose scheduled time has passed and
// returns the next schedule point.
func (c *Coordinator) writeDueFrames(next time.Time) time.Time {
	now := c.clock.Now()
	for !next.After(now) {
		c.writeFrame(next)
		next = next.Add(c.config.FrameInterval)
	}
	return next
}

// writeFrame snapshots the table and appends one frame to the sink.
func (c *Coordinator) writeFrame(at time.Time) {
	if err := c.sink.WriteFrame(at, c.table.Snapshots()); err != nil {
		c.logger.Error("frame write failed", ports.Err(err))
	}
}

// RunLivenessLoop sweeps the session table on the configured period
// until the context is canceled, warning once per robot per silence.
func (c *Coordinator) RunLivenessLoop(ctx context.Context) {
	ticker := time.NewTicker(c.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sweepOnce()
		}
	}
}

// sweepOnce runs one liveness sweep. Robots transitioning to stale are
// warned about exactly once; their last command stays in force.
func (c *Coordinator) sweepOnce() {
	stale := c.table.Sweep(c.clock.Now(), c.tunables.livenessTimeout())
	for _, s := range stale {
		c.logger.Warn("robot silent past liveness timeout",
			ports.Int("robot", int(s.ID)),
			ports.Duration("silence", s.Silence),
		)
		if c.emitter != nil {
			c.emitter.OnRobotStale(s.ID, s.Silence)
		}
	}
}

// StopAll broadcasts the stop command to every known robot and moves all
// sessions to the terminated state. Delivery is best-effort over a lossy
// link, so the broadcast is repeated StopAttempts times with StopPause
// between rounds; failures are logged, never retried beyond that.
func (c *Coordinator) StopAll() {
	roster := c.table.Roster()
	stop := domain.MotorCommand{}
	_, led := c.tunables.mapperAndLED()

	c.logger.Info("broadcasting stop to swarm",
		ports.Int("robots", len(roster)),
		ports.Int("attempts", c.config.StopAttempts),
	)

	for attempt := 0; attempt < c.config.StopAttempts; attempt++ {
		for _, id := range roster {
			if err := c.sender.SendMotor(id, stop); err != nil {
				c.logger.Warn("stop command failed",
					ports.Int("robot", int(id)),
					ports.Int("attempt", attempt+1),
					ports.Err(err),
				)
			}
			if led.enabled {
				if err := c.sender.SendLED(id, domain.LEDColor{}); err != nil {
					c.logger.Warn("led off command failed",
						ports.Int("robot", int(id)),
						ports.Int("attempt", attempt+1),
						ports.Err(err),
					)
				}
			}
		}
		if attempt < c.config.StopAttempts-1 {
			time.Sleep(c.config.StopPause)
		}
	}

	c.table.Terminate()
}

// Snapshots returns a consistent per-robot view of the session table in
// ascending robot ID order.
func (c *Coordinator) Snapshots() []domain.Snapshot {
	return c.table.Snapshots()
}

// Snapshot returns one robot's state.
func (c *Coordinator) Snapshot(id domain.RobotID) (domain.Snapshot, bool) {
	return c.table.Snapshot(id)
}

// Command returns the last motor command computed for a robot, or false
// if the robot has never reported.
func (c *Coordinator) Command(id domain.RobotID) (domain.MotorCommand, bool) {
	return c.table.Command(id)
}
