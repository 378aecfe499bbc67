package control

import (
	"testing"

	"github.com/johnsmith-uni/johnbot2/internal/domain"
)

func TestSigmoidGuards(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		want float64
	}{
		{"zero", 0, 0},
		{"negative", -0.25, 0},
		{"one", 1, 1},
		{"above one", 1.5, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sigmoid(tt.x, DefaultAlpha); got != tt.want {
				t.Errorf("Sigmoid(%v, %v) = %v, want %v", tt.x, DefaultAlpha, got, tt.want)
			}
		})
	}
}

func TestSigmoidMidpoint(t *testing.T) {
	// 0.5^alpha is a power of two for integer alpha, so the midpoint is
	// exact in float64, not merely close.
	if got := Sigmoid(0.5, 8); got != 0.5 {
		t.Errorf("Sigmoid(0.5, 8) = %v, want exactly 0.5", got)
	}
}

func TestSigmoidMonotonic(t *testing.T) {
	prev := Sigmoid(0.05, DefaultAlpha)
	for x := 0.10; x < 1.0; x += 0.05 {
		cur := Sigmoid(x, DefaultAlpha)
		if cur <= prev {
			t.Fatalf("Sigmoid not strictly increasing at x=%v: %v <= %v", x, cur, prev)
		}
		prev = cur
	}
}

func TestCommandValues(t *testing.T) {
	m := NewMapper()

	tests := []struct {
		name        string
		left, right float64
		want        domain.MotorCommand
	}{
		{"both dark", 0, 0, domain.MotorCommand{Left: 100, Right: 100}},
		{"equal light", 50, 50, domain.MotorCommand{Left: 100, Right: 100}},
		{"brighter right", 10, 20, domain.MotorCommand{Left: 199, Right: 1}},
		{"brighter left", 20, 10, domain.MotorCommand{Left: 1, Right: 199}},
		{"saturated left", 255, 0, domain.MotorCommand{Left: 0, Right: 200}},
		{"saturated right", 0, 255, domain.MotorCommand{Left: 200, Right: 0}},
		{"negative floored", -5, -7, domain.MotorCommand{Left: 100, Right: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Command(tt.left, tt.right); got != tt.want {
				t.Errorf("Command(%v, %v) = %+v, want %+v", tt.left, tt.right, got, tt.want)
			}
		})
	}
}

// TestCommandSteersTowardLight checks the cross-wiring: the motor opposite
// the brighter sensor spins faster, pivoting the robot toward the light.
func TestCommandSteersTowardLight(t *testing.T) {
	m := NewMapper()

	pairs := [][2]float64{{5, 3}, {100, 40}, {200, 199}, {30, 0}}
	for _, p := range pairs {
		cmd := m.Command(p[0], p[1])
		if cmd.Left >= cmd.Right {
			t.Errorf("Command(%v, %v) = %+v: left sensor brighter, want Left < Right",
				p[0], p[1], cmd)
		}
	}
}

func TestCommandRange(t *testing.T) {
	m := NewMapper()

	for l := 0.0; l <= 255; l += 15 {
		for r := 0.0; r <= 255; r += 15 {
			cmd := m.Command(l, r)
			if cmd.Left < 0 || cmd.Left > m.MotorMax || cmd.Right < 0 || cmd.Right > m.MotorMax {
				t.Fatalf("Command(%v, %v) = %+v out of [0, %d]", l, r, cmd, m.MotorMax)
			}
		}
	}
}
