package swarm

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/johnsmith-uni/johnbot2/internal/ports"
)

// CleanupConfig holds configuration options for automatic frame log
// cleanup. When enabled, the swarm periodically checks the log
// directory size and removes the oldest CSV logs when it exceeds the
// high watermark. The active log is never removed.
type CleanupConfig struct {
	// Enabled controls whether cleanup is active. Default: false
	Enabled bool

	// CheckInterval is how often to check the log directory size.
	// Default: 1 hour
	CheckInterval time.Duration

	// HighWatermark is the size in bytes above which cleanup begins.
	// Default: 1 GiB
	HighWatermark int64

	// LowWatermark is the target size in bytes after cleanup.
	// Default: 768 MiB
	LowWatermark int64
}

// DefaultCleanupConfig returns a CleanupConfig with sensible defaults.
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		Enabled:       true,
		CheckInterval: time.Hour,
		HighWatermark: 1 << 30,
		LowWatermark:  3 << 28,
	}
}

// WithCleanupConfig enables automatic frame log cleanup with the
// specified configuration. A multi-day experiment at 24 rows per robot
// per second fills disks surprisingly fast; cleanup keeps the log
// directory bounded by discarding the oldest runs first.
//
// Usage:
//
//	sw, err := swarm.New(cfg,
//	    swarm.WithCleanupConfig(swarm.CleanupConfig{
//	        Enabled:       true,
//	        HighWatermark: 4 << 30, // 4GB
//	        LowWatermark:  2 << 30, // 2GB
//	        CheckInterval: 30 * time.Minute,
//	    }),
//	)
func WithCleanupConfig(cfg CleanupConfig) Option {
	if !cfg.Enabled {
		return func(o *options) {} // No-op if not enabled
	}

	// Apply defaults for zero values
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Hour
	}
	if cfg.HighWatermark <= 0 {
		cfg.HighWatermark = 1 << 30
	}
	if cfg.LowWatermark <= 0 {
		cfg.LowWatermark = 3 << 28
	}

	return func(o *options) {
		o.cleanupConfig = &cfg
	}
}

// cleanupRunner manages the frame log cleanup goroutine.
type cleanupRunner struct {
	mu sync.RWMutex

	// Configuration
	checkInterval time.Duration
	highWatermark int64
	lowWatermark  int64

	// Runtime state
	logDir     string
	activePath string
	logger     ports.Logger
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

func newCleanupRunner(cfg CleanupConfig, logDir string, logger ports.Logger) *cleanupRunner {
	return &cleanupRunner{
		checkInterval: cfg.CheckInterval,
		highWatermark: cfg.HighWatermark,
		lowWatermark:  cfg.LowWatermark,
		logDir:        logDir,
		logger:        logger,
	}
}

// start begins the cleanup loop. activePath is this run's log file,
// which is never removed; empty protects nothing.
func (c *cleanupRunner) start(ctx context.Context, activePath string) {
	if c.logDir == "" {
		c.logger.Warn("frame log cleanup disabled: no log directory configured")
		return
	}

	cleanupCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.activePath = activePath
	c.mu.Unlock()

	c.logger.Info("frame log cleanup enabled")

	c.wg.Add(1)
	go c.cleanupLoop(cleanupCtx)
}

func (c *cleanupRunner) stop() {
	c.mu.RLock()
	cancel := c.cancel
	c.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
}

func (c *cleanupRunner) cleanupLoop(ctx context.Context) {
	defer c.wg.Done()

	// Run immediately on startup
	c.cleanupOnce(ctx)

	ticker := time.NewTicker(c.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanupOnce(ctx)
		}
	}
}

func (c *cleanupRunner) cleanupOnce(ctx context.Context) {
	c.mu.RLock()
	logDir := c.logDir
	activePath := c.activePath
	c.mu.RUnlock()

	logs, curSize, err := orderedLogs(logDir, activePath)
	if err != nil {
		c.logger.Error("frame log cleanup: scan failed", ports.Err(err))
		return
	}

	if curSize <= c.highWatermark {
		return
	}

	removed := int64(0)
	for _, lf := range logs {
		if ctx.Err() != nil {
			return
		}
		if curSize <= c.lowWatermark {
			break
		}

		if rmErr := os.Remove(lf.path); rmErr != nil {
			c.logger.Error("frame log cleanup: remove failed", ports.Err(rmErr))
			continue
		}
		curSize -= lf.size
		removed += lf.size
	}

	if removed > 0 {
		c.logger.Info("frame log cleanup completed", ports.Int64("bytes_freed", removed))
	}
}

// logFile is one removable frame log.
type logFile struct {
	path string
	size int64
}

// orderedLogs lists the frame logs in logDir oldest first, excluding
// skipPath, along with the directory's total frame log size including
// skipPath. The timestamped file names sort chronologically.
func orderedLogs(logDir, skipPath string) ([]logFile, int64, error) {
	ents, err := os.ReadDir(logDir)
	if err != nil {
		return nil, 0, err
	}

	var logs []logFile
	var total int64
	for _, e := range ents {
		if e.IsDir() || !isFrameLog(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, 0, err
		}
		total += info.Size()

		path := filepath.Join(logDir, e.Name())
		if path == skipPath {
			continue
		}
		logs = append(logs, logFile{path: path, size: info.Size()})
	}

	sort.Slice(logs, func(i, j int) bool { return logs[i].path < logs[j].path })
	return logs, total, nil
}

func isFrameLog(name string) bool {
	return strings.HasPrefix(name, "johnbot2_") && strings.HasSuffix(name, ".csv")
}
