package swarm

import (
	"fmt"
	"time"

	"github.com/johnsmith-uni/johnbot2/internal/domain"
)

// Deployment defaults matching the lab swarm. The firmware listens for
// commands on DefaultCommandBasePort plus its robot ID and reports
// sensors to DefaultSensorBasePort plus its robot ID.
const (
	DefaultBindAddr        = "0.0.0.0"
	DefaultSensorBasePort  = 60000
	DefaultCommandBasePort = 61000
	DefaultRobotIPTemplate = "192.168.50.%d"
	DefaultRobotIPOffset   = 50
	DefaultLogDir          = "robot_logs"
)

// Config holds the swarm host configuration. Robots is required; zero
// values elsewhere are filled in by [Config.SetDefaults], which New
// calls for you.
type Config struct {
	// Robots is the roster size. Robot IDs run 0..Robots-1. Required.
	Robots int

	// BindAddr is the local address sensor listeners bind to.
	BindAddr string

	// SensorBasePort plus the robot ID is the UDP port its sensor
	// reports arrive on. Zero binds an ephemeral port per robot, which
	// is what tests want; the bound ports are available from
	// [Swarm.SensorPorts]. Use DefaultSensorBasePort to match the
	// firmware.
	SensorBasePort int

	// CommandBasePort plus the robot ID is the UDP port its commands
	// are sent to.
	CommandBasePort int

	// RobotIPTemplate is a fmt template producing a robot's IP from
	// its host number, e.g. "192.168.50.%d". A template without a
	// format verb is used verbatim for every robot, so a simulated
	// swarm can live on one host.
	RobotIPTemplate string

	// RobotIPOffset is added to the robot ID to form the host number
	// filled into RobotIPTemplate.
	RobotIPOffset int

	// Alpha is the sigmoid sharpening exponent of the control law.
	Alpha float64

	// MotorMax is the full-scale motor speed, 1..255.
	MotorMax int

	// FrameRate is the frame log cadence in rows per robot per second.
	FrameRate int

	// LivenessTimeout is the silence duration after which a robot is
	// reported stale. SweepInterval is how often silence is checked.
	LivenessTimeout time.Duration
	SweepInterval   time.Duration

	// LogDir receives the timestamped CSV frame logs. FlushEvery is
	// the number of frames buffered between flushes to disk.
	LogDir     string
	FlushEvery int

	// StopAttempts and StopPause bound the shutdown stop broadcast:
	// every robot is sent the stop command StopAttempts times with
	// StopPause between rounds, delivery being best effort over UDP.
	StopAttempts int
	StopPause    time.Duration

	// LEDEnabled gates LED dispatch; LEDColor is sent alongside every
	// motor command when enabled and turned off at shutdown.
	LEDEnabled bool
	LEDColor   LEDColor

	// ConfigFile is the TOML file the config watcher plugin observes
	// for mid-run tuning. Empty disables watching.
	ConfigFile string
}

// SetDefaults fills in default values for unset fields. Robots and
// SensorBasePort are left alone: the first is required, the second
// keeps zero as its ephemeral-port meaning.
func (c *Config) SetDefaults() {
	if c.BindAddr == "" {
		c.BindAddr = DefaultBindAddr
	}
	if c.CommandBasePort == 0 {
		c.CommandBasePort = DefaultCommandBasePort
	}
	if c.RobotIPTemplate == "" {
		c.RobotIPTemplate = DefaultRobotIPTemplate
		c.RobotIPOffset = DefaultRobotIPOffset
	}
	if c.Alpha == 0 {
		c.Alpha = 8
	}
	if c.MotorMax == 0 {
		c.MotorMax = 200
	}
	if c.FrameRate == 0 {
		c.FrameRate = 24
	}
	if c.LivenessTimeout == 0 {
		c.LivenessTimeout = 5 * time.Second
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = time.Second
	}
	if c.LogDir == "" {
		c.LogDir = DefaultLogDir
	}
	if c.FlushEvery == 0 {
		c.FlushEvery = 10
	}
	if c.StopAttempts == 0 {
		c.StopAttempts = 3
	}
	if c.StopPause == 0 {
		c.StopPause = 10 * time.Millisecond
	}
}

// Validate checks the configuration. All errors wrap ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Robots < 1 {
		return fmt.Errorf("%w: robots must be at least 1", domain.ErrInvalidConfig)
	}
	if c.SensorBasePort < 0 || (c.SensorBasePort > 0 && c.SensorBasePort+c.Robots-1 > 65535) {
		return fmt.Errorf("%w: sensor port range %d..%d out of bounds",
			domain.ErrInvalidConfig, c.SensorBasePort, c.SensorBasePort+c.Robots-1)
	}
	if c.CommandBasePort < 1 || c.CommandBasePort+c.Robots-1 > 65535 {
		return fmt.Errorf("%w: command port range %d..%d out of bounds",
			domain.ErrInvalidConfig, c.CommandBasePort, c.CommandBasePort+c.Robots-1)
	}
	if c.RobotIPTemplate == "" {
		return fmt.Errorf("%w: robot IP template is required", domain.ErrInvalidConfig)
	}
	if c.RobotIPOffset < 0 {
		return fmt.Errorf("%w: robot IP offset must not be negative", domain.ErrInvalidConfig)
	}
	if c.Alpha <= 0 {
		return fmt.Errorf("%w: alpha must be positive", domain.ErrInvalidConfig)
	}
	if c.MotorMax < 1 || c.MotorMax > 255 {
		return fmt.Errorf("%w: motor max must be in 1..255", domain.ErrInvalidConfig)
	}
	if c.FrameRate < 1 {
		return fmt.Errorf("%w: frame rate must be at least 1", domain.ErrInvalidConfig)
	}
	if c.LivenessTimeout <= 0 {
		return fmt.Errorf("%w: liveness timeout must be positive", domain.ErrInvalidConfig)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("%w: sweep interval must be positive", domain.ErrInvalidConfig)
	}
	if c.LogDir == "" {
		return fmt.Errorf("%w: log directory is required", domain.ErrInvalidConfig)
	}
	if c.FlushEvery < 1 {
		return fmt.Errorf("%w: flush interval must be at least 1 frame", domain.ErrInvalidConfig)
	}
	if c.StopAttempts < 1 {
		return fmt.Errorf("%w: stop attempts must be at least 1", domain.ErrInvalidConfig)
	}
	if c.StopPause < 0 {
		return fmt.Errorf("%w: stop pause must not be negative", domain.ErrInvalidConfig)
	}
	return nil
}

// FrameInterval derives the frame log tick period from the frame rate.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}
