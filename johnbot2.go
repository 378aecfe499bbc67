// Package johnbot2 drives a swarm of phototactic robots from a single host.
//
// Example usage:
//
//	cfg := johnbot2.Config{
//	    Robots: 10,
//	    LogDir: "robot_logs",
//	}
//	sw, err := johnbot2.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := sw.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	defer sw.Stop()
package johnbot2

import (
	"github.com/johnsmith-uni/johnbot2/pkg/swarm"
)

// Swarm coordinates sensor intake, motor dispatch, frame logging and
// liveness tracking for every robot in the roster.
// Use New() to build one, then Start and Stop to run it.
type Swarm = swarm.Swarm

// Config holds the swarm configuration. Zero-valued fields fall back to
// the package defaults at New time.
type Config = swarm.Config

// Option customizes a Swarm at construction time.
// The available options live in the pkg/swarm package.
type Option = swarm.Option

// Snapshot is a point-in-time view of one robot: last sensor sample,
// last motor command and liveness.
type Snapshot = swarm.Snapshot

// New builds a stopped swarm from cfg. Call Start on the result to bind
// the sensor listeners and begin answering reports.
func New(cfg Config, opts ...Option) (*Swarm, error) {
	return swarm.New(cfg, opts...)
}

// DefaultSensorBasePort is the UDP port robot 0's sensor reports arrive on.
// Robot i reports to DefaultSensorBasePort+i.
const DefaultSensorBasePort = swarm.DefaultSensorBasePort

// DefaultCommandBasePort is the UDP port robot 0 listens on for motor
// commands. Robot i listens on DefaultCommandBasePort+i.
const DefaultCommandBasePort = swarm.DefaultCommandBasePort
