// Package cliconfig assembles the host configuration from its three
// sources in precedence order: command-line flags, then JOHNBOT_*
// environment variables, then a TOML config file.
package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Defaults matching the lab swarm deployment.
const (
	DefaultRobots          = 10
	DefaultBindAddr        = "0.0.0.0"
	DefaultSensorBasePort  = 60000
	DefaultCommandBasePort = 61000
	DefaultRobotIPTemplate = "192.168.50.%d"
	DefaultRobotIPOffset   = 50
	DefaultLogDir          = "robot_logs"
)

// Config holds CLI configuration for the host coordinator.
type Config struct {
	Robots          int
	BindAddr        string
	SensorBasePort  int
	CommandBasePort int
	RobotIPTemplate string
	RobotIPOffset   int

	Alpha    float64
	MotorMax int

	FrameRate       int
	LivenessTimeout time.Duration
	SweepInterval   time.Duration

	LogDir     string
	FlushEvery int

	StopAttempts int
	StopPause    time.Duration

	LEDEnabled bool
	LEDColor   string

	LogLevel  string
	LogFormat string

	Monitor bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Robots:          DefaultRobots,
		BindAddr:        DefaultBindAddr,
		SensorBasePort:  DefaultSensorBasePort,
		CommandBasePort: DefaultCommandBasePort,
		RobotIPTemplate: DefaultRobotIPTemplate,
		RobotIPOffset:   DefaultRobotIPOffset,
		Alpha:           8,
		MotorMax:        200,
		FrameRate:       24,
		LivenessTimeout: 5 * time.Second,
		SweepInterval:   time.Second,
		LogDir:          DefaultLogDir,
		FlushEvery:      10,
		StopAttempts:    3,
		StopPause:       10 * time.Millisecond,
		LEDColor:        "0,0,0",
		LogLevel:        "info",
		LogFormat:       "console",
	}
}

// FrameInterval derives the logging tick period from the frame rate.
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.FrameRate)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Robots < 1 {
		return fmt.Errorf("robots must be at least 1")
	}
	if c.SensorBasePort < 1 || c.SensorBasePort+c.Robots-1 > 65535 {
		return fmt.Errorf("sensor port range %d..%d out of bounds", c.SensorBasePort, c.SensorBasePort+c.Robots-1)
	}
	if c.CommandBasePort < 1 || c.CommandBasePort+c.Robots-1 > 65535 {
		return fmt.Errorf("command port range %d..%d out of bounds", c.CommandBasePort, c.CommandBasePort+c.Robots-1)
	}
	if c.RobotIPTemplate == "" {
		return fmt.Errorf("robot-ip-template is required")
	}
	if c.RobotIPOffset < 0 {
		return fmt.Errorf("robot-ip-offset must not be negative")
	}
	if c.Alpha <= 0 {
		return fmt.Errorf("alpha must be positive")
	}
	if c.MotorMax < 1 || c.MotorMax > 255 {
		return fmt.Errorf("motor-max must be in 1..255")
	}
	if c.FrameRate < 1 {
		return fmt.Errorf("frame-rate must be at least 1")
	}
	if c.LivenessTimeout <= 0 {
		return fmt.Errorf("liveness-timeout must be positive")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("sweep-interval must be positive")
	}
	if c.LogDir == "" {
		return fmt.Errorf("log-dir is required")
	}
	if c.FlushEvery < 1 {
		return fmt.Errorf("flush-every must be at least 1")
	}
	if c.StopAttempts < 1 {
		return fmt.Errorf("stop-attempts must be at least 1")
	}
	if c.StopPause < 0 {
		return fmt.Errorf("stop-pause must not be negative")
	}
	if _, err := ParseLEDColor(c.LEDColor); err != nil {
		return err
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log-format must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// ParseLEDColor parses an "r,g,b" triple with each channel in 0..255.
func ParseLEDColor(s string) ([3]uint8, error) {
	var color [3]uint8
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return color, fmt.Errorf("led-color must be r,g,b, got %q", s)
	}
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return color, fmt.Errorf("led-color channel %d: %w", i, err)
		}
		if v < 0 || v > 255 {
			return color, fmt.Errorf("led-color channel %d out of 0..255: %d", i, v)
		}
		color[i] = uint8(v)
	}
	return color, nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntPtr sets an int from an optional value if present and flag not changed.
// Unlike setInt it accepts zero, which is a legal value for offsets.
func (s *configSetter) setIntPtr(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setFloat sets a float64 value if positive and flag not changed.
func (s *configSetter) setFloat(flag string, value float64, dst *float64) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setNonNegativeIntFromString is setIntFromString for values where zero
// is legal, like the robot IP offset.
func (s *configSetter) setNonNegativeIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i < 0 {
		return nil
	}
	*dst = i
	return nil
}

// setFloatFromString parses a string to float64 and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setFloatFromString(flag, value string, dst *float64) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if f <= 0 {
		return nil
	}
	*dst = f
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
