package osc

import (
	"fmt"
	"strings"

	"github.com/hypebeast/go-osc/osc"

	"github.com/johnsmith-uni/johnbot2/internal/domain"
	"github.com/johnsmith-uni/johnbot2/internal/ports"
)

// SenderConfig describes how robots are addressed on the network.
type SenderConfig struct {
	// Robots is the number of robots to create clients for.
	Robots int

	// RobotIPTemplate is a fmt template producing a robot's IP from its
	// offset host number, e.g. "192.168.50.%d". A template without a
	// format verb is used verbatim for every robot, which is useful when
	// the whole swarm is simulated on one host.
	RobotIPTemplate string

	// RobotIPOffset is added to the robot ID to form the host number
	// filled into RobotIPTemplate.
	RobotIPOffset int

	// CommandBasePort plus the robot ID is the destination UDP port.
	CommandBasePort int
}

// wireMotorMax is the largest speed the firmware accepts.
const wireMotorMax = 255

// CommandSender implements ports.CommandSender with one OSC UDP client
// per robot. Sends are fire-and-forget; delivery is not acknowledged.
type CommandSender struct {
	clients map[domain.RobotID]*osc.Client
	logger  ports.Logger
}

// NewCommandSender creates clients for every robot in the roster.
func NewCommandSender(cfg SenderConfig, logger ports.Logger) *CommandSender {
	clients := make(map[domain.RobotID]*osc.Client, cfg.Robots)
	for i := 0; i < cfg.Robots; i++ {
		ip := robotIP(cfg.RobotIPTemplate, cfg.RobotIPOffset+i)
		port := cfg.CommandBasePort + i
		clients[domain.RobotID(i)] = osc.NewClient(ip, port)
		logger.Info("command client configured",
			ports.Int("robot", i),
			ports.String("ip", ip),
			ports.Int("port", port),
		)
	}
	return &CommandSender{clients: clients, logger: logger}
}

// robotIP fills template with host, or returns it verbatim when it has
// no format verb.
func robotIP(template string, host int) string {
	if !strings.Contains(template, "%") {
		return template
	}
	return fmt.Sprintf(template, host)
}

// SendMotor transmits a motor speed pair to one robot. Speeds are
// clamped to the firmware's byte range before hitting the wire.
func (s *CommandSender) SendMotor(id domain.RobotID, cmd domain.MotorCommand) error {
	client, ok := s.clients[id]
	if !ok {
		return fmt.Errorf("robot %d: %w", id, domain.ErrUnknownRobot)
	}

	msg := osc.NewMessage(MotorAddress)
	msg.Append(int32(domain.ClampMotor(cmd.Left, wireMotorMax)))
	msg.Append(int32(domain.ClampMotor(cmd.Right, wireMotorMax)))
	if err := client.Send(msg); err != nil {
		return fmt.Errorf("send motor command to robot %d: %w", id, err)
	}
	return nil
}

// SendLED transmits an LED color to one robot.
func (s *CommandSender) SendLED(id domain.RobotID, color domain.LEDColor) error {
	client, ok := s.clients[id]
	if !ok {
		return fmt.Errorf("robot %d: %w", id, domain.ErrUnknownRobot)
	}

	msg := osc.NewMessage(LEDAddress)
	msg.Append(int32(color.R))
	msg.Append(int32(color.G))
	msg.Append(int32(color.B))
	if err := client.Send(msg); err != nil {
		return fmt.Errorf("send led command to robot %d: %w", id, err)
	}
	return nil
}
