// Package control implements the phototaxis control law that maps a pair
// of light sensor readings to a pair of motor speeds.
//
// The mapping is cross-excitatory: the left motor speed is driven by the
// right sensor and vice versa, so a robot turns toward the brighter side.
// Readings are first converted to a Laplace-smoothed brightness ratio and
// then sharpened through a sigmoid before scaling to the motor range.
package control

import (
	"math"

	"github.com/johnsmith-uni/johnbot2/internal/domain"
)

// Default tuning parameters.
const (
	DefaultAlpha    = 8.0
	DefaultMotorMax = 200
)

// Sigmoid sharpens a ratio in [0, 1] around the midpoint 0.5. The exponent
// alpha controls the steepness: alpha=1 is the identity, larger values push
// the output toward 0 or 1. Inputs at or outside the unit interval saturate.
func Sigmoid(x, alpha float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}
	xa := math.Pow(x, alpha)
	return xa / (xa + math.Pow(1-x, alpha))
}

// Mapper converts sensor samples to motor commands. The zero value is not
// usable; construct with [NewMapper] or set both fields explicitly.
type Mapper struct {
	// Alpha is the sigmoid sharpening exponent.
	Alpha float64

	// MotorMax is the speed written for a fully saturated side.
	MotorMax int
}

// NewMapper returns a Mapper with the default tuning.
func NewMapper() Mapper {
	return Mapper{Alpha: DefaultAlpha, MotorMax: DefaultMotorMax}
}

// Command computes the motor command for one pair of sensor readings.
//
// Negative readings are treated as zero. Two dark sensors produce equal
// mid-range speeds (straight ahead at half power); any imbalance steers
// the robot toward the brighter side through the cross-wired ratios.
func (m Mapper) Command(left, right float64) domain.MotorCommand {
	if left < 0 {
		left = 0
	}
	if right < 0 {
		right = 0
	}

	// Laplace-smoothed share of total brightness, cross-wired: the right
	// sensor excites the left motor and vice versa.
	total := left + right + 2
	ratioL := (right + 1) / total
	ratioR := (left + 1) / total

	return domain.MotorCommand{
		Left:  int(math.Round(float64(m.MotorMax) * Sigmoid(ratioL, m.Alpha))),
		Right: int(math.Round(float64(m.MotorMax) * Sigmoid(ratioR, m.Alpha))),
	}
}
