// Package osc implements the robot-facing transport adapters using OSC
// (Open Sound Control) messages over UDP.
//
// The addressing scheme matches the swarm firmware: each robot reports
// its light sensors to the host on its own UDP port, and the host sends
// commands back to per-robot destination ports, so the robot identity is
// carried by the socket, never by message arguments.
package osc

// OSC addresses understood by the swarm firmware.
const (
	// SensorAddress carries two numeric arguments: left and right
	// light sensor readings.
	SensorAddress = "/sensor"

	// MotorAddress carries two int32 arguments: left and right motor
	// speeds.
	MotorAddress = "/motor"

	// LEDAddress carries three int32 arguments: red, green, blue.
	LEDAddress = "/LED"
)
