// Package configwatcher provides live retuning for a running swarm.
// When enabled, it watches the coordinator's TOML config file and
// applies the runtime-tunable subset on every change, so an experiment
// can be adjusted without restarting the pipeline.
package configwatcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/johnsmith-uni/johnbot2/internal/cliconfig"
	"github.com/johnsmith-uni/johnbot2/pkg/swarm"
)

// Plugin implements config file watching.
// It monitors the swarm's config file and applies the tunable subset
// (alpha, motor_max, liveness_timeout, led_enabled, led_color) to the
// running pipeline when the file changes. Settings that need a restart,
// like ports and roster size, are ignored here.
type Plugin struct {
	mu sync.RWMutex

	// Configuration
	debounceDelay time.Duration

	// Runtime state
	configFile string
	swarm      *swarm.Swarm
	logger     swarm.Logger
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	debounce   *time.Timer
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// DebounceDelay is the delay to wait after a file change before
	// re-reading. Editors tend to produce bursts of write events.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}

	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize sets up the plugin and starts the watcher loop.
func (p *Plugin) Initialize(ctx context.Context, cfg swarm.PluginConfig) error {
	p.mu.Lock()
	p.configFile = cfg.ConfigFile
	p.swarm = cfg.Swarm
	p.logger = cfg.Logger
	p.mu.Unlock()

	if p.configFile == "" {
		p.logger.Warn("config watcher disabled: no config file")
		return nil
	}

	// Create cancellable context for the watcher loop
	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher initialized")

	// Start watcher loop
	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	return nil
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

// watchLoop applies the file once, then re-applies on every change.
// The watch is on the file's directory so that editors which replace
// the file wholesale are still seen.
func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Error("config watcher: failed to create watcher")
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(p.configFile)); err != nil {
		p.logger.Error("config watcher: failed to watch directory")
		// Still apply the file as configured at start
		p.applyFile()
		return
	}

	// Apply the tunables as configured at start
	p.applyFile()

	base := filepath.Base(p.configFile)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceApply(ctx, p.debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			_ = err // logged as generic error
			p.logger.Error("config watcher: watcher error")
		}
	}
}

func (p *Plugin) debounceApply(ctx context.Context, delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}

	p.debounce = time.AfterFunc(delay, func() {
		if ctx.Err() != nil {
			return
		}
		p.applyFile()
	})
}

// applyFile re-reads the config file and applies the tunable subset.
// A file that fails to parse is skipped, leaving the previous values
// in force.
func (p *Plugin) applyFile() {
	fc, err := cliconfig.LoadFileConfig(p.configFile)
	if err != nil {
		p.logger.Warn("config watcher: reload skipped, file unreadable")
		return
	}

	if ignored := restartOnly(fc); len(ignored) > 0 {
		p.logger.Debug("config watcher: restart-only settings ignored: " + strings.Join(ignored, ", "))
	}

	if _, err := p.swarm.ApplyTunables(p.tunables(fc)); err != nil {
		p.logger.Warn("config watcher: apply failed, pipeline not running")
	}
}

// restartOnly lists the settings present in fc that only take effect on
// restart. The watcher leaves them alone.
func restartOnly(fc cliconfig.FileConfig) []string {
	var fields []string
	if fc.Robots != 0 {
		fields = append(fields, "robots")
	}
	if fc.BindAddr != "" {
		fields = append(fields, "bind_addr")
	}
	if fc.SensorBasePort != 0 {
		fields = append(fields, "sensor_base_port")
	}
	if fc.CommandBasePort != 0 {
		fields = append(fields, "command_base_port")
	}
	if fc.RobotIPTemplate != "" {
		fields = append(fields, "robot_ip_template")
	}
	if fc.RobotIPOffset != nil {
		fields = append(fields, "robot_ip_offset")
	}
	if fc.FrameRate != 0 {
		fields = append(fields, "frame_rate")
	}
	if fc.SweepInterval != "" {
		fields = append(fields, "sweep_interval")
	}
	if fc.LogDir != "" {
		fields = append(fields, "log_dir")
	}
	if fc.FlushEvery != 0 {
		fields = append(fields, "flush_every")
	}
	if fc.StopAttempts != 0 {
		fields = append(fields, "stop_attempts")
	}
	if fc.StopPause != "" {
		fields = append(fields, "stop_pause")
	}
	if fc.LogLevel != "" {
		fields = append(fields, "log_level")
	}
	if fc.LogFormat != "" {
		fields = append(fields, "log_format")
	}
	return fields
}

// tunables extracts the runtime-tunable fields, dropping any that fail
// their range check so a bad edit never degrades the running values.
func (p *Plugin) tunables(fc cliconfig.FileConfig) swarm.Tunables {
	var t swarm.Tunables

	if fc.Alpha > 0 {
		t.Alpha = &fc.Alpha
	}
	if fc.MotorMax >= 1 && fc.MotorMax <= 255 {
		t.MotorMax = &fc.MotorMax
	} else if fc.MotorMax != 0 {
		p.logger.Warn("config watcher: motor_max out of range, keeping previous")
	}
	if fc.LivenessTimeout != "" {
		if d, err := time.ParseDuration(fc.LivenessTimeout); err == nil && d > 0 {
			t.LivenessTimeout = &d
		} else {
			p.logger.Warn("config watcher: bad liveness_timeout, keeping previous")
		}
	}
	t.LEDEnabled = fc.LEDEnabled
	if fc.LEDColor != "" {
		if rgb, err := cliconfig.ParseLEDColor(fc.LEDColor); err == nil {
			t.LEDColor = &swarm.LEDColor{R: rgb[0], G: rgb[1], B: rgb[2]}
		} else {
			p.logger.Warn("config watcher: bad led_color, keeping previous")
		}
	}

	return t
}

// Ensure Plugin implements swarm.Plugin.
var _ swarm.Plugin = (*Plugin)(nil)
