package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	logAdapter "github.com/johnsmith-uni/johnbot2/internal/adapters/log"
	"github.com/johnsmith-uni/johnbot2/internal/cliconfig"
	"github.com/johnsmith-uni/johnbot2/internal/monitor"
	"github.com/johnsmith-uni/johnbot2/pkg/swarm"
	"github.com/johnsmith-uni/johnbot2/plugins/configwatcher"
)

const helpBanner = `
     ██╗ ██████╗ ██╗  ██╗███╗   ██╗██████╗  ██████╗ ████████╗██████╗
     ██║██╔═══██╗██║  ██║████╗  ██║██╔══██╗██╔═══██╗╚══██╔══╝╚════██╗
     ██║██║   ██║███████║██╔██╗ ██║██████╔╝██║   ██║   ██║    █████╔╝
██   ██║██║   ██║██╔══██║██║╚██╗██║██╔══██╗██║   ██║   ██║   ██╔═══╝
╚█████╔╝╚██████╔╝██║  ██║██║ ╚████║██████╔╝╚██████╔╝   ██║   ███████╗
 ╚════╝  ╚═════╝ ╚═╝  ╚═╝╚═╝  ╚═══╝╚═════╝  ╚═════╝    ╚═╝   ╚══════╝
`

const helpDescription = `
Drive a swarm of phototactic robots from one host: per-robot OSC sensor
streams in, differential motor commands out.

Highlights:
  - Answers every sensor report with a fresh motor command, no queueing.
  - Logs the whole swarm to timestamped CSV at a fixed frame rate.
  - Tracks per-robot liveness and broadcasts stop commands on shutdown.
  - Configure via file, env (JOHNBOT_*), or flags; edits to the config
    file retune the control law while the swarm runs.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  johnbot2 --robots 10 --led --led-color 0,128,255
  johnbot2 --config ~/.johnbot2/config.toml --monitor
  johnbot2 --robots 4 --robot-ip-template 127.0.0.1 --sensor-base-port 60000
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// buildAppLogger builds the configured logger; in monitor mode the log
// stream is redirected into the monitor's log pane.
func buildAppLogger(cfg cliconfig.Config, feed *monitor.Feed) (zerolog.Logger, error) {
	if feed != nil {
		return cliconfig.MonitorLogger(cfg.LogLevel, feed)
	}
	return cliconfig.BuildLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "johnbot2",
		Short:   "Host coordinator for a swarm of phototactic robots",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.johnbot2/config.toml),
			// then env, then flag overrides
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Apply environment variables (JOHNBOT_*)
			// These override file config but are overridden by flags
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			ledColor, err := cliconfig.ParseLEDColor(cfg.LEDColor)
			if err != nil {
				return err
			}

			// In monitor mode the terminal belongs to the TUI, so both
			// log output and swarm events flow through the feed.
			var feed *monitor.Feed
			if cfg.Monitor {
				feed = monitor.NewFeed()
			}

			appLog, err := buildAppLogger(cfg, feed)
			if err != nil {
				return err
			}
			appLog.Info().Interface("config", cfg).Msg("configuration")

			libCfg := swarm.Config{
				Robots:          cfg.Robots,
				BindAddr:        cfg.BindAddr,
				SensorBasePort:  cfg.SensorBasePort,
				CommandBasePort: cfg.CommandBasePort,
				RobotIPTemplate: cfg.RobotIPTemplate,
				RobotIPOffset:   cfg.RobotIPOffset,
				Alpha:           cfg.Alpha,
				MotorMax:        cfg.MotorMax,
				FrameRate:       cfg.FrameRate,
				LivenessTimeout: cfg.LivenessTimeout,
				SweepInterval:   cfg.SweepInterval,
				LogDir:          cfg.LogDir,
				FlushEvery:      cfg.FlushEvery,
				StopAttempts:    cfg.StopAttempts,
				StopPause:       cfg.StopPause,
				LEDEnabled:      cfg.LEDEnabled,
				LEDColor:        swarm.LEDColor{R: ledColor[0], G: ledColor[1], B: ledColor[2]},
			}
			// The watcher needs an existing file to follow
			if cliconfig.FileExists(cfgFile) {
				libCfg.ConfigFile = cfgFile
			}

			opts := []swarm.Option{
				swarm.WithLogger(logAdapter.NewZerologAdapterWithLogger(appLog)),
				// Retune alpha, motor-max, liveness and LED settings mid-run
				configwatcher.WithConfigWatcher(configwatcher.DefaultConfig()),
				// Keep the frame log directory bounded
				swarm.WithCleanupConfig(swarm.DefaultCleanupConfig()),
			}
			if feed != nil {
				opts = append(opts, swarm.WithEventHandler(feed))
			}

			sw, err := swarm.New(libCfg, opts...)
			if err != nil {
				return fmt.Errorf("create swarm: %w", err)
			}

			// Setup signal handling for graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			if err := sw.Start(ctx); err != nil {
				return fmt.Errorf("start swarm: %w", err)
			}

			if feed != nil {
				// Monitor mode: quitting the TUI, or a signal, stops
				// the swarm.
				model := monitor.New(sw, feed, monitor.Options{
					Robots:    cfg.Robots,
					FrameRate: cfg.FrameRate,
				})
				prog := tea.NewProgram(model, tea.WithAltScreen())

				go func() {
					select {
					case <-sigCh:
						prog.Quit()
					case <-ctx.Done():
					}
				}()

				if _, err := prog.Run(); err != nil {
					_ = sw.Stop()
					return fmt.Errorf("run monitor: %w", err)
				}
			} else {
				// Headless: run until signaled or the pipeline dies
				doneCh := make(chan struct{})
				go func() {
					ticker := time.NewTicker(100 * time.Millisecond)
					defer ticker.Stop()
					for {
						select {
						case <-ctx.Done():
							return
						case <-ticker.C:
							status := sw.Status()
							if status == swarm.StateStopped || status == swarm.StateCrashed {
								close(doneCh)
								return
							}
						}
					}
				}()

				select {
				case <-sigCh:
					appLog.Info().Msg("received signal, stopping...")
				case <-doneCh:
				}
			}

			if sw.Status() == swarm.StateCrashed {
				return fmt.Errorf("swarm crashed")
			}

			// Graceful shutdown: broadcast stop commands, close the log
			if err := sw.Stop(); err != nil {
				return fmt.Errorf("stop swarm: %w", err)
			}
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.johnbot2/config.toml)")
	root.Flags().IntVar(&cfg.Robots, "robots", cfg.Robots, "number of robots in the roster")

	root.Flags().StringVar(&cfg.BindAddr, "bind-addr", cfg.BindAddr, "local address the sensor listeners bind to")
	root.Flags().IntVar(&cfg.SensorBasePort, "sensor-base-port", cfg.SensorBasePort, "UDP port of robot 0's sensor listener")
	root.Flags().IntVar(&cfg.CommandBasePort, "command-base-port", cfg.CommandBasePort, "UDP port robot 0 listens on for commands")
	root.Flags().StringVar(&cfg.RobotIPTemplate, "robot-ip-template", cfg.RobotIPTemplate, "fmt template producing a robot's IP from its host number")
	root.Flags().IntVar(&cfg.RobotIPOffset, "robot-ip-offset", cfg.RobotIPOffset, "host number of robot 0")

	root.Flags().Float64Var(&cfg.Alpha, "alpha", cfg.Alpha, "sigmoid sharpening exponent of the control law")
	root.Flags().IntVar(&cfg.MotorMax, "motor-max", cfg.MotorMax, "full-scale motor speed (1..255)")

	root.Flags().IntVar(&cfg.FrameRate, "frame-rate", cfg.FrameRate, "frame log rows per robot per second")
	root.Flags().DurationVar(&cfg.LivenessTimeout, "liveness-timeout", cfg.LivenessTimeout, "silence before a robot is reported stale")
	root.Flags().DurationVar(&cfg.SweepInterval, "sweep-interval", cfg.SweepInterval, "how often robot silence is checked")

	root.Flags().StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "directory receiving CSV frame logs")
	root.Flags().IntVar(&cfg.FlushEvery, "flush-every", cfg.FlushEvery, "frames buffered between flushes to disk")

	root.Flags().IntVar(&cfg.StopAttempts, "stop-attempts", cfg.StopAttempts, "stop broadcast rounds at shutdown")
	root.Flags().DurationVar(&cfg.StopPause, "stop-pause", cfg.StopPause, "pause between stop broadcast rounds")

	root.Flags().BoolVar(&cfg.LEDEnabled, "led", cfg.LEDEnabled, "send LED color alongside every motor command")
	root.Flags().StringVar(&cfg.LEDColor, "led-color", cfg.LEDColor, "LED color as r,g,b (each 0..255)")

	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	root.Flags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (console or json)")
	root.Flags().BoolVar(&cfg.Monitor, "monitor", cfg.Monitor, "run the live terminal monitor")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("johnbot2")
		os.Exit(1)
	}
}
