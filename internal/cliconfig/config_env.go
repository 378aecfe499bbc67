package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (JOHNBOT_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("bind-addr", os.Getenv("JOHNBOT_BIND_ADDR"), &cfg.BindAddr)
	s.setString("robot-ip-template", os.Getenv("JOHNBOT_ROBOT_IP_TEMPLATE"), &cfg.RobotIPTemplate)
	s.setString("log-dir", os.Getenv("JOHNBOT_LOG_DIR"), &cfg.LogDir)
	s.setString("led-color", os.Getenv("JOHNBOT_LED_COLOR"), &cfg.LEDColor)
	s.setString("log-level", os.Getenv("JOHNBOT_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv("JOHNBOT_LOG_FORMAT"), &cfg.LogFormat)

	if err := s.setIntFromString("robots", os.Getenv("JOHNBOT_ROBOTS"), &cfg.Robots); err != nil {
		return err
	}
	if err := s.setIntFromString("sensor-base-port", os.Getenv("JOHNBOT_SENSOR_BASE_PORT"), &cfg.SensorBasePort); err != nil {
		return err
	}
	if err := s.setIntFromString("command-base-port", os.Getenv("JOHNBOT_COMMAND_BASE_PORT"), &cfg.CommandBasePort); err != nil {
		return err
	}
	if err := s.setNonNegativeIntFromString("robot-ip-offset", os.Getenv("JOHNBOT_ROBOT_IP_OFFSET"), &cfg.RobotIPOffset); err != nil {
		return err
	}
	if err := s.setIntFromString("motor-max", os.Getenv("JOHNBOT_MOTOR_MAX"), &cfg.MotorMax); err != nil {
		return err
	}
	if err := s.setIntFromString("frame-rate", os.Getenv("JOHNBOT_FRAME_RATE"), &cfg.FrameRate); err != nil {
		return err
	}
	if err := s.setIntFromString("flush-every", os.Getenv("JOHNBOT_FLUSH_EVERY"), &cfg.FlushEvery); err != nil {
		return err
	}
	if err := s.setIntFromString("stop-attempts", os.Getenv("JOHNBOT_STOP_ATTEMPTS"), &cfg.StopAttempts); err != nil {
		return err
	}

	if err := s.setFloatFromString("alpha", os.Getenv("JOHNBOT_ALPHA"), &cfg.Alpha); err != nil {
		return err
	}

	if err := s.setDuration("liveness-timeout", os.Getenv("JOHNBOT_LIVENESS_TIMEOUT"), &cfg.LivenessTimeout); err != nil {
		return err
	}
	if err := s.setDuration("sweep-interval", os.Getenv("JOHNBOT_SWEEP_INTERVAL"), &cfg.SweepInterval); err != nil {
		return err
	}
	if err := s.setDuration("stop-pause", os.Getenv("JOHNBOT_STOP_PAUSE"), &cfg.StopPause); err != nil {
		return err
	}

	s.setBoolFromString("led", os.Getenv("JOHNBOT_LED_ENABLED"), &cfg.LEDEnabled)

	return nil
}
