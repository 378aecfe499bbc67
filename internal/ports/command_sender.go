package ports

import "github.com/johnsmith-uni/johnbot2/internal/domain"

// CommandSender transmits actuation commands to individual robots.
// Implementations handle addressing, serialization, and transport.
//
// Sends are fire-and-forget over an unreliable link: a nil return means
// the command was handed to the transport, not that the robot applied it.
type CommandSender interface {
	// SendMotor transmits a motor speed pair to one robot.
	SendMotor(id domain.RobotID, cmd domain.MotorCommand) error

	// SendLED transmits an LED color to one robot.
	SendLED(id domain.RobotID, color domain.LEDColor) error
}
