package swarm

import "context"

// Plugin extends a Swarm with optional functionality. Plugins are
// initialized in registration order when the swarm starts and shut down
// in reverse order when it stops.
type Plugin interface {
	// Name identifies the plugin in logs.
	Name() string

	// Initialize is called during Start(). The context is canceled
	// when the swarm stops; long-lived plugin goroutines should watch
	// it. Returning an error aborts the start.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called during Stop(), after the pipeline loops have
	// drained.
	Shutdown(ctx context.Context) error
}

// PluginConfig carries the swarm's configuration and handles into a
// plugin's Initialize.
type PluginConfig struct {
	// ConfigFile is the TOML file configured for mid-run tuning, empty
	// when none was configured.
	ConfigFile string

	// LogDir is where the swarm writes its CSV frame logs.
	LogDir string

	// Robots is the roster size.
	Robots int

	// Swarm is the running instance, for plugins that feed tuning or
	// read snapshots. Plugins must not call Start or Stop on it.
	Swarm *Swarm

	// Logger is the swarm's logger.
	Logger Logger
}

// BasePlugin provides a default Plugin implementation. Embed it and
// override the methods you need.
type BasePlugin struct {
	name string
}

// NewBasePlugin creates a BasePlugin with the given name.
func NewBasePlugin(name string) BasePlugin {
	return BasePlugin{name: name}
}

// Name returns the plugin name.
func (p BasePlugin) Name() string { return p.name }

// Initialize is a no-op.
func (p BasePlugin) Initialize(ctx context.Context, cfg PluginConfig) error { return nil }

// Shutdown is a no-op.
func (p BasePlugin) Shutdown(ctx context.Context) error { return nil }
