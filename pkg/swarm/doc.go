// Package swarm provides an embeddable host controller for a swarm of
// phototactic robots.
//
// The controller listens for per-robot light sensor reports over OSC,
// answers every report with a differential motor command steering the
// robot toward light, records the whole swarm's state to a CSV frame
// log at a fixed rate, and watches per-robot liveness. It can be used
// through the johnbot2 CLI or embedded as a library in other Go
// programs.
//
// # Basic Usage
//
// To embed the controller in your application:
//
//	cfg := swarm.Config{
//	    Robots:         10,
//	    SensorBasePort: swarm.DefaultSensorBasePort,
//	    LogDir:         "robot_logs",
//	}
//
//	sw, err := swarm.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx := context.Background()
//	if err := sw.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal ...
//
//	if err := sw.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// # Configuration
//
// Create a [Config] with at minimum Robots. All other fields have
// defaults matching the lab deployment, set via [Config.SetDefaults].
// A zero SensorBasePort binds ephemeral ports, which tests combine
// with [Swarm.SensorPorts].
//
// # Event Handling
//
// To receive notifications about lifecycle transitions, stale robots,
// and transport failures, implement [EventHandler] and pass it via
// [WithEventHandler]:
//
//	handler := &myEventHandler{}
//	sw, err := swarm.New(cfg, swarm.WithEventHandler(handler))
//
// Events are called synchronously from pipeline goroutines.
// Implementations should return quickly to avoid stalling dispatch.
//
// # Dependency Injection
//
// For testing, you can inject custom implementations of external
// dependencies:
//
//	sw, err := swarm.New(cfg,
//	    swarm.WithCommandSender(mockSender),
//	    swarm.WithFrameSink(mockSink),
//	    swarm.WithClock(fakeClock),
//	    swarm.WithLogger(customLogger),
//	)
//
// # Lifecycle States
//
// A Swarm instance can be in one of five states: [StateStopped],
// [StateStarting], [StateRunning], [StateStopping], or [StateCrashed].
// Use [Swarm.Status] to query the current state. Each Start opens a
// fresh frame log and session table.
//
// # Plugins and Cleanup
//
// The swarm supports optional plugins for extended functionality:
//
//	import "github.com/johnsmith-uni/johnbot2/plugins/configwatcher"
//
//	sw, err := swarm.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.DefaultConfig()),
//	    swarm.WithCleanupConfig(swarm.DefaultCleanupConfig()),
//	)
//
// Plugins are initialized on Start() and shut down on Stop(). Cleanup
// is config-based and prunes old frame logs automatically when
// enabled.
package swarm
