package app

import (
	"sync"
	"time"

	"github.com/johnsmith-uni/johnbot2/internal/control"
	"github.com/johnsmith-uni/johnbot2/internal/domain"
)

// Tunables are the parameters that may be adjusted while the pipeline is
// running, typically from a watched configuration file mid-experiment.
// Nil fields leave the current value unchanged.
type Tunables struct {
	Alpha           *float64
	MotorMax        *int
	LivenessTimeout *time.Duration
	LEDEnabled      *bool
	LEDColor        *domain.LEDColor
}

// ledState is the LED dispatch setting read on every report.
type ledState struct {
	enabled bool
	color   domain.LEDColor
}

// tunableState holds the mutable runtime parameters behind one mutex.
// Reads happen on every inbound report, so the critical section is a
// couple of copies, nothing more.
type tunableState struct {
	mu      sync.Mutex
	mapper  control.Mapper
	timeout time.Duration
	led     ledState
}

func (t *tunableState) init(cfg CoordinatorConfig) {
	t.mapper = control.Mapper{Alpha: cfg.Alpha, MotorMax: cfg.MotorMax}
	t.timeout = cfg.LivenessTimeout
	t.led = ledState{enabled: cfg.LEDEnabled, color: cfg.LEDColor}
}

func (t *tunableState) mapperAndLED() (control.Mapper, ledState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mapper, t.led
}

func (t *tunableState) livenessTimeout() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timeout
}

// ApplyTunables applies the non-nil fields and reports which parameters
// changed, for logging at the call site.
func (c *Coordinator) ApplyTunables(t Tunables) []string {
	c.tunables.mu.Lock()
	defer c.tunables.mu.Unlock()

	var changed []string
	if t.Alpha != nil && *t.Alpha != c.tunables.mapper.Alpha {
		c.tunables.mapper.Alpha = *t.Alpha
		changed = append(changed, "alpha")
	}
	if t.MotorMax != nil && *t.MotorMax != c.tunables.mapper.MotorMax {
		c.tunables.mapper.MotorMax = *t.MotorMax
		changed = append(changed, "motor_max")
	}
	if t.LivenessTimeout != nil && *t.LivenessTimeout != c.tunables.timeout {
		c.tunables.timeout = *t.LivenessTimeout
		changed = append(changed, "liveness_timeout")
	}
	if t.LEDEnabled != nil && *t.LEDEnabled != c.tunables.led.enabled {
		c.tunables.led.enabled = *t.LEDEnabled
		changed = append(changed, "led_enabled")
	}
	if t.LEDColor != nil && *t.LEDColor != c.tunables.led.color {
		c.tunables.led.color = *t.LEDColor
		changed = append(changed, "led_color")
	}
	return changed
}
