package domain

import "time"

// SensorMax is the upper bound of a raw light-sensor reading.
const SensorMax = 255.0

// RobotID identifies one physical robot in the swarm.
// Network addressing (sensor port, command port, IP) is derived from it by the
// transport layer; the session layer treats it as opaque. An identity is never
// reused for a different physical robot within a run.
type RobotID int

// SensorSample is one pair of raw light-sensor readings as reported by a robot.
// A sample is immutable once stored; the next report for the same identity
// supersedes it whole, never merges with it.
type SensorSample struct {
	// Left and Right are the raw readings, expected in [0, SensorMax].
	Left  float64
	Right float64

	// At is the time the report was received by the host.
	At time.Time
}

// MotorCommand is a differential drive command, each side in [0, motor max].
// The zero value is the terminal stop command.
type MotorCommand struct {
	Left  int
	Right int
}

// IsStop reports whether the command halts both motors.
func (c MotorCommand) IsStop() bool {
	return c.Left == 0 && c.Right == 0
}

// LEDColor is an RGB color sent to a robot's LED when LED control is enabled.
// The zero value turns the LED off.
type LEDColor struct {
	R, G, B uint8
}

// Liveness describes the reporting state of one robot session.
type Liveness int

const (
	// LivenessUnseen means no sensor report has ever arrived for the identity.
	LivenessUnseen Liveness = iota

	// LivenessActive means a report arrived within the liveness timeout.
	LivenessActive

	// LivenessStale means the robot was active but has been silent for longer
	// than the liveness timeout. The last command stays in force.
	LivenessStale

	// LivenessTerminated is the absorbing shutdown state. Reports arriving
	// after termination are ignored.
	LivenessTerminated
)

// String returns the lowercase name of the state, as used in log output.
func (l Liveness) String() string {
	switch l {
	case LivenessUnseen:
		return "unseen"
	case LivenessActive:
		return "active"
	case LivenessStale:
		return "stale"
	case LivenessTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent per-robot view of session state, taken under the
// session's own lock. HasSample is false until the first report arrives; in
// that case Sample and Command carry zero values and consumers must emit
// explicit missing-data markers rather than the zeros.
type Snapshot struct {
	Robot     RobotID
	HasSample bool
	Sample    SensorSample
	Command   MotorCommand
	LastSeen  time.Time
	Liveness  Liveness
}

// ClampSensor clamps a raw reading into [0, SensorMax] and reports whether
// clamping occurred. Out-of-range inbound values hint at a sensor fault and
// are diagnosed by the caller.
func ClampSensor(v float64) (float64, bool) {
	if v < 0 {
		return 0, true
	}
	if v > SensorMax {
		return SensorMax, true
	}
	return v, false
}

// ClampMotor clamps a motor value into [0, max]. The control law's output is
// already bounded, so clamping before transmission is silent.
func ClampMotor(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
