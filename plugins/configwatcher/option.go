package configwatcher

import "github.com/johnsmith-uni/johnbot2/pkg/swarm"

// WithConfigWatcher returns a swarm Option that enables config file
// watching. When enabled, the plugin monitors the swarm's config file
// and applies the runtime-tunable settings to the pipeline on change.
//
// Usage:
//
//	sw, err := swarm.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) swarm.Option {
	plugin := New(cfg)
	return swarm.WithPlugin(plugin)
}

// WithDefaultConfigWatcher returns a swarm Option that enables config
// watching with default settings (debounce 100ms).
//
// Usage:
//
//	sw, err := swarm.New(cfg, configwatcher.WithDefaultConfigWatcher())
func WithDefaultConfigWatcher() swarm.Option {
	return WithConfigWatcher(DefaultConfig())
}
