package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Robots          int     `toml:"robots"`
	BindAddr        string  `toml:"bind_addr"`
	SensorBasePort  int     `toml:"sensor_base_port"`
	CommandBasePort int     `toml:"command_base_port"`
	RobotIPTemplate string  `toml:"robot_ip_template"`
	RobotIPOffset   *int    `toml:"robot_ip_offset"`
	Alpha           float64 `toml:"alpha"`
	MotorMax        int     `toml:"motor_max"`
	FrameRate       int     `toml:"frame_rate"`
	LivenessTimeout string  `toml:"liveness_timeout"`
	SweepInterval   string  `toml:"sweep_interval"`
	LogDir          string  `toml:"log_dir"`
	FlushEvery      int     `toml:"flush_every"`
	StopAttempts    int     `toml:"stop_attempts"`
	StopPause       string  `toml:"stop_pause"`
	LEDEnabled      *bool   `toml:"led_enabled"`
	LEDColor        string  `toml:"led_color"`
	LogLevel        string  `toml:"log_level"`
	LogFormat       string  `toml:"log_format"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.johnbot2/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".johnbot2", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("bind-addr", fc.BindAddr, &cfg.BindAddr)
	s.setString("robot-ip-template", fc.RobotIPTemplate, &cfg.RobotIPTemplate)
	s.setString("log-dir", fc.LogDir, &cfg.LogDir)
	s.setString("led-color", fc.LEDColor, &cfg.LEDColor)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)

	s.setInt("robots", fc.Robots, &cfg.Robots)
	s.setInt("sensor-base-port", fc.SensorBasePort, &cfg.SensorBasePort)
	s.setInt("command-base-port", fc.CommandBasePort, &cfg.CommandBasePort)
	s.setIntPtr("robot-ip-offset", fc.RobotIPOffset, &cfg.RobotIPOffset)
	s.setInt("motor-max", fc.MotorMax, &cfg.MotorMax)
	s.setInt("frame-rate", fc.FrameRate, &cfg.FrameRate)
	s.setInt("flush-every", fc.FlushEvery, &cfg.FlushEvery)
	s.setInt("stop-attempts", fc.StopAttempts, &cfg.StopAttempts)

	s.setFloat("alpha", fc.Alpha, &cfg.Alpha)

	if err := s.setDuration("liveness-timeout", fc.LivenessTimeout, &cfg.LivenessTimeout); err != nil {
		return err
	}
	if err := s.setDuration("sweep-interval", fc.SweepInterval, &cfg.SweepInterval); err != nil {
		return err
	}
	if err := s.setDuration("stop-pause", fc.StopPause, &cfg.StopPause); err != nil {
		return err
	}

	s.setBool("led", fc.LEDEnabled, &cfg.LEDEnabled)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
