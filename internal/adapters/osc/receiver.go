package osc

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"

	"github.com/hypebeast/go-osc/osc"

	"github.com/johnsmith-uni/johnbot2/internal/domain"
	"github.com/johnsmith-uni/johnbot2/internal/ports"
)

// SensorHandler consumes one validated sensor report.
type SensorHandler func(id domain.RobotID, left, right float64)

// ReceiverConfig describes how the host listens for sensor reports.
type ReceiverConfig struct {
	// Robots is the number of listening sockets to open.
	Robots int

	// BindAddr is the local address to bind, typically "0.0.0.0".
	BindAddr string

	// SensorBasePort plus the robot ID is the listening UDP port.
	// Zero binds ephemeral ports for every robot, which is useful in
	// tests; the actual ports are available from [Receiver.Ports].
	SensorBasePort int
}

// Receiver listens for sensor reports with one UDP socket per robot.
// The reporting robot's identity comes from the socket the message
// arrived on, matching the firmware's addressing scheme, so a handler
// never has to trust identity claims inside the message.
type Receiver struct {
	config  ReceiverConfig
	handler SensorHandler
	logger  ports.Logger

	mu      sync.Mutex
	conns   []net.PacketConn
	ports   []int
	closed  bool
	serveWG sync.WaitGroup
}

// NewReceiver creates a receiver. Call Start to bind and serve.
func NewReceiver(cfg ReceiverConfig, handler SensorHandler, logger ports.Logger) *Receiver {
	return &Receiver{
		config:  cfg,
		handler: handler,
		logger:  logger,
	}
}

// Start binds one socket per robot and begins serving in background
// goroutines. On any bind failure it closes whatever it already opened
// and returns the error.
func (r *Receiver) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return domain.ErrNotRunning
	}

	for i := 0; i < r.config.Robots; i++ {
		port := 0
		if r.config.SensorBasePort != 0 {
			port = r.config.SensorBasePort + i
		}

		conn, err := net.ListenPacket("udp", net.JoinHostPort(r.config.BindAddr, strconv.Itoa(port)))
		if err != nil {
			r.closeLocked()
			return fmt.Errorf("bind sensor port for robot %d: %w", i, err)
		}
		actual := conn.LocalAddr().(*net.UDPAddr).Port
		r.conns = append(r.conns, conn)
		r.ports = append(r.ports, actual)

		id := domain.RobotID(i)
		dispatcher := osc.NewStandardDispatcher()
		if err := dispatcher.AddMsgHandler(SensorAddress, func(msg *osc.Message) {
			r.handleSensor(id, msg)
		}); err != nil {
			r.closeLocked()
			return fmt.Errorf("register sensor handler for robot %d: %w", i, err)
		}

		server := &osc.Server{Dispatcher: dispatcher}
		r.serveWG.Add(1)
		go func(id domain.RobotID, conn net.PacketConn) {
			defer r.serveWG.Done()
			if err := server.Serve(conn); err != nil && !r.isClosed() {
				r.logger.Error("sensor server stopped",
					ports.Int("robot", int(id)),
					ports.Err(err),
				)
			}
		}(id, conn)

		r.logger.Info("listening for sensor reports",
			ports.Int("robot", i),
			ports.Int("port", actual),
		)
	}

	return nil
}

// handleSensor validates one inbound message and forwards it. Malformed
// messages are dropped with a diagnostic; the session stays untouched.
func (r *Receiver) handleSensor(id domain.RobotID, msg *osc.Message) {
	if len(msg.Arguments) != 2 {
		r.logger.Warn("invalid sensor message",
			ports.Int("robot", int(id)),
			ports.Int("args", len(msg.Arguments)),
		)
		return
	}

	left, okL := numericArg(msg.Arguments[0])
	right, okR := numericArg(msg.Arguments[1])
	if !okL || !okR {
		r.logger.Warn("unparseable sensor values",
			ports.Int("robot", int(id)),
			ports.Any("arguments", msg.Arguments),
		)
		return
	}

	r.handler(id, left, right)
}

// numericArg converts any numeric OSC argument type to float64.
func numericArg(arg interface{}) (float64, bool) {
	switch v := arg.(type) {
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// Ports returns the bound UDP port for every robot, in robot ID order.
func (r *Receiver) Ports() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.ports))
	copy(out, r.ports)
	return out
}

func (r *Receiver) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Close shuts every socket and waits for the serve goroutines to drain.
// After Close no further reports are delivered to the handler.
func (r *Receiver) Close() error {
	r.mu.Lock()
	err := r.closeLocked()
	r.mu.Unlock()

	r.serveWG.Wait()
	return err
}

func (r *Receiver) closeLocked() error {
	if r.closed {
		return nil
	}
	r.closed = true

	var firstErr error
	for _, conn := range r.conns {
		if err := conn.Close(); err != nil && firstErr == nil && !errors.Is(err, net.ErrClosed) {
			firstErr = err
		}
	}
	return firstErr
}
