package swarm_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	goosc "github.com/hypebeast/go-osc/osc"

	"github.com/johnsmith-uni/johnbot2/pkg/swarm"
)

// testLogger implements swarm.Logger, capturing log output for tests.
type testLogger struct {
	mu       sync.Mutex
	messages []string
}

func newTestLogger() *testLogger {
	return &testLogger{messages: make([]string, 0)}
}

func (l *testLogger) Trace(msg string, fields ...swarm.LogField) { l.log("TRACE", msg) }
func (l *testLogger) Debug(msg string, fields ...swarm.LogField) { l.log("DEBUG", msg) }
func (l *testLogger) Info(msg string, fields ...swarm.LogField)  { l.log("INFO", msg) }
func (l *testLogger) Warn(msg string, fields ...swarm.LogField)  { l.log("WARN", msg) }
func (l *testLogger) Error(msg string, fields ...swarm.LogField) { l.log("ERROR", msg) }

func (l *testLogger) WithFields(fields ...swarm.LogField) swarm.Logger { return l }

func (l *testLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, fmt.Sprintf("[%s] %s", level, msg))
}

func (l *testLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := make([]string, len(l.messages))
	copy(cp, l.messages)
	return cp
}

type motorSend struct {
	id  swarm.RobotID
	cmd swarm.MotorCommand
}

// mockSender implements swarm.CommandSender, recording every send.
type mockSender struct {
	mu     sync.Mutex
	motors []motorSend
	leds   int
}

func (m *mockSender) SendMotor(id swarm.RobotID, cmd swarm.MotorCommand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.motors = append(m.motors, motorSend{id, cmd})
	return nil
}

func (m *mockSender) SendLED(id swarm.RobotID, color swarm.LEDColor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leds++
	return nil
}

func (m *mockSender) motorSends() []motorSend {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]motorSend{}, m.motors...)
}

// eventTracker records swarm events.
type eventTracker struct {
	swarm.BaseEventHandler
	mu           sync.Mutex
	stateChanges []swarm.StateChangeEvent
	stale        []swarm.RobotStaleEvent
	recovered    []swarm.RobotRecoveredEvent
	sendErrors   []swarm.SendErrorEvent
}

func (e *eventTracker) OnStateChange(event swarm.StateChangeEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stateChanges = append(e.stateChanges, event)
}

func (e *eventTracker) OnRobotStale(event swarm.RobotStaleEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stale = append(e.stale, event)
}

func (e *eventTracker) OnRobotRecovered(event swarm.RobotRecoveredEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.recovered = append(e.recovered, event)
}

func (e *eventTracker) OnSendError(event swarm.SendErrorEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sendErrors = append(e.sendErrors, event)
}

func (e *eventTracker) staleEvents() []swarm.RobotStaleEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]swarm.RobotStaleEvent{}, e.stale...)
}

func (e *eventTracker) recoveredEvents() []swarm.RobotRecoveredEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]swarm.RobotRecoveredEvent{}, e.recovered...)
}

// fakeClock implements swarm.Clock with a settable time.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

// createTestConfig creates a loopback config with ephemeral sensor
// ports and fast timers.
func createTestConfig(t *testing.T) swarm.Config {
	t.Helper()
	return swarm.Config{
		Robots:          3,
		SensorBasePort:  0,
		RobotIPTemplate: "127.0.0.1",
		LogDir:          t.TempDir(),
		FrameRate:       50,
		LivenessTimeout: 50 * time.Millisecond,
		SweepInterval:   10 * time.Millisecond,
		StopAttempts:    2,
		StopPause:       time.Millisecond,
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*swarm.Config)
	}{
		{"no robots", func(c *swarm.Config) { c.Robots = 0 }},
		{"motor max too high", func(c *swarm.Config) { c.MotorMax = 300 }},
		{"negative alpha", func(c *swarm.Config) { c.Alpha = -1 }},
		{"negative frame rate", func(c *swarm.Config) { c.FrameRate = -1 }},
		{"command port overflow", func(c *swarm.Config) { c.CommandBasePort = 65530; c.Robots = 10 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := createTestConfig(t)
			tc.mutate(&cfg)
			if _, err := swarm.New(cfg); !errors.Is(err, swarm.ErrInvalidConfig) {
				t.Errorf("New() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestSwarm_StartStopWritesFrameLog(t *testing.T) {
	cfg := createTestConfig(t)
	sender := &mockSender{}

	sw, err := swarm.New(cfg, swarm.WithCommandSender(sender), swarm.WithLogger(newTestLogger()))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if err := sw.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return sw.Status() == swarm.StateRunning },
		"swarm never reached Running")

	logPath := sw.LogPath()
	if logPath == "" {
		t.Fatal("LogPath() empty while running")
	}
	if base := filepath.Base(logPath); !strings.HasPrefix(base, "johnbot2_") || !strings.HasSuffix(base, ".csv") {
		t.Errorf("log file name = %q, want johnbot2_<timestamp>.csv", base)
	}

	if ports := sw.SensorPorts(); len(ports) != cfg.Robots {
		t.Errorf("SensorPorts() returned %d ports, want %d", len(ports), cfg.Robots)
	}

	// Let a few frames land.
	time.Sleep(100 * time.Millisecond)

	if err := sw.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if sw.Status() != swarm.StateStopped {
		t.Errorf("Status = %v after Stop, want Stopped", sw.Status())
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading frame log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "timestamp,robot,sensor_left,sensor_right,motor_left,motor_right,liveness" {
		t.Errorf("frame log header = %q", lines[0])
	}
	rows := len(lines) - 1
	if rows < cfg.Robots {
		t.Fatalf("frame log has %d rows, want at least one frame of %d", rows, cfg.Robots)
	}
	if rows%cfg.Robots != 0 {
		t.Errorf("frame log has %d rows, want a multiple of the roster %d", rows, cfg.Robots)
	}

	// Robots never reported, so their fields carry missing markers.
	fields := strings.Split(lines[1], ",")
	if fields[2] != "NA" || fields[4] != "NA" {
		t.Errorf("silent robot row = %q, want NA sensor and motor fields", lines[1])
	}
}

func TestSwarm_SensorReportOverOSC(t *testing.T) {
	cfg := createTestConfig(t)
	sender := &mockSender{}

	sw, err := swarm.New(cfg, swarm.WithCommandSender(sender))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := sw.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer func() { _ = sw.Stop() }()

	ports := sw.SensorPorts()
	if len(ports) != cfg.Robots {
		t.Fatalf("SensorPorts() = %v, want %d ports", ports, cfg.Robots)
	}

	// Report as robot 1 on its own socket.
	client := goosc.NewClient("127.0.0.1", ports[1])
	msg := goosc.NewMessage("/sensor")
	msg.Append(float32(10))
	msg.Append(float32(20))

	deadline := time.Now().Add(2 * time.Second)
	for len(sender.motorSends()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("sensor report never produced a motor command")
		}
		if err := client.Send(msg); err != nil {
			t.Fatalf("sending sensor report: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	sends := sender.motorSends()
	want := swarm.MotorCommand{Left: 199, Right: 1}
	if sends[0].id != 1 || sends[0].cmd != want {
		t.Errorf("dispatched %+v to robot %d, want %+v to robot 1", sends[0].cmd, sends[0].id, want)
	}

	snap, ok := sw.Snapshot(1)
	if !ok || !snap.HasSample {
		t.Fatalf("Snapshot(1) = (%+v, %v), want a recorded sample", snap, ok)
	}
	if snap.Sample.Left != 10 || snap.Sample.Right != 20 {
		t.Errorf("recorded sample = %+v, want (10, 20)", snap.Sample)
	}
	if snap.Liveness != swarm.LivenessActive {
		t.Errorf("liveness = %v, want active", snap.Liveness)
	}
}

func TestSwarm_ReportBypassesTransport(t *testing.T) {
	cfg := createTestConfig(t)
	sender := &mockSender{}

	sw, err := swarm.New(cfg, swarm.WithCommandSender(sender))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if err := sw.Report(0, 1, 2); !errors.Is(err, swarm.ErrNotRunning) {
		t.Errorf("Report() before Start = %v, want ErrNotRunning", err)
	}

	if err := sw.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer func() { _ = sw.Stop() }()

	if err := sw.Report(2, 0, 0); err != nil {
		t.Fatalf("Report() failed: %v", err)
	}

	sends := sender.motorSends()
	if len(sends) != 1 {
		t.Fatalf("got %d motor sends, want 1", len(sends))
	}
	want := swarm.MotorCommand{Left: 100, Right: 100}
	if sends[0].id != 2 || sends[0].cmd != want {
		t.Errorf("dispatched %+v to robot %d, want %+v to robot 2", sends[0].cmd, sends[0].id, want)
	}
}

func TestSwarm_StaleAndRecoveryEvents(t *testing.T) {
	cfg := createTestConfig(t)
	sender := &mockSender{}
	tracker := &eventTracker{}

	sw, err := swarm.New(cfg,
		swarm.WithCommandSender(sender),
		swarm.WithEventHandler(tracker),
	)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := sw.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer func() { _ = sw.Stop() }()

	if err := sw.Report(0, 5, 5); err != nil {
		t.Fatalf("Report() failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return len(tracker.staleEvents()) > 0 },
		"robot never reported stale")

	stale := tracker.staleEvents()
	if stale[0].Robot != 0 {
		t.Errorf("stale event for robot %d, want 0", stale[0].Robot)
	}
	if stale[0].Silence <= cfg.LivenessTimeout {
		t.Errorf("stale silence = %v, want > %v", stale[0].Silence, cfg.LivenessTimeout)
	}

	// The next report recovers the robot.
	if err := sw.Report(0, 5, 5); err != nil {
		t.Fatalf("Report() failed: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return len(tracker.recoveredEvents()) > 0 },
		"robot never recovered")
	if rec := tracker.recoveredEvents(); rec[0].Robot != 0 {
		t.Errorf("recovered event for robot %d, want 0", rec[0].Robot)
	}
}

func TestSwarm_StopBroadcastsStopCommands(t *testing.T) {
	cfg := createTestConfig(t)
	sender := &mockSender{}

	sw, err := swarm.New(cfg, swarm.WithCommandSender(sender))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := sw.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	if err := sw.Report(1, 3, 4); err != nil {
		t.Fatalf("Report() failed: %v", err)
	}
	before := len(sender.motorSends())

	if err := sw.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}

	sends := sender.motorSends()[before:]
	want := cfg.StopAttempts * cfg.Robots
	if len(sends) != want {
		t.Fatalf("got %d shutdown sends, want %d", len(sends), want)
	}
	for _, s := range sends {
		if !s.cmd.IsStop() {
			t.Fatalf("shutdown sent %+v to robot %d, want stop", s.cmd, s.id)
		}
	}

	if snaps := sw.Snapshots(); snaps != nil {
		t.Errorf("Snapshots() after Stop = %v, want nil", snaps)
	}
	if path := sw.LogPath(); path != "" {
		t.Errorf("LogPath() after Stop = %q, want empty", path)
	}
}

func TestSwarm_ApplyTunablesMidRun(t *testing.T) {
	cfg := createTestConfig(t)
	sender := &mockSender{}

	sw, err := swarm.New(cfg, swarm.WithCommandSender(sender))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	motorMax := 100
	if _, err := sw.ApplyTunables(swarm.Tunables{MotorMax: &motorMax}); !errors.Is(err, swarm.ErrNotRunning) {
		t.Errorf("ApplyTunables() before Start = %v, want ErrNotRunning", err)
	}

	if err := sw.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer func() { _ = sw.Stop() }()

	changed, err := sw.ApplyTunables(swarm.Tunables{MotorMax: &motorMax})
	if err != nil {
		t.Fatalf("ApplyTunables() failed: %v", err)
	}
	if len(changed) != 1 || changed[0] != "motor_max" {
		t.Errorf("changed = %v, want [motor_max]", changed)
	}

	// The retuned full-scale speed applies to the next dispatch.
	if err := sw.Report(0, 0, 0); err != nil {
		t.Fatalf("Report() failed: %v", err)
	}
	sends := sender.motorSends()
	want := swarm.MotorCommand{Left: 50, Right: 50}
	if sends[len(sends)-1].cmd != want {
		t.Errorf("dispatch after retune = %+v, want %+v", sends[len(sends)-1].cmd, want)
	}

	// Re-applying the same value reports no change.
	if changed, _ := sw.ApplyTunables(swarm.Tunables{MotorMax: &motorMax}); len(changed) != 0 {
		t.Errorf("re-applying same value changed %v", changed)
	}
}

func TestSwarm_RestartOpensFreshLog(t *testing.T) {
	cfg := createTestConfig(t)
	sender := &mockSender{}
	clock := &fakeClock{now: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)}

	sw, err := swarm.New(cfg, swarm.WithCommandSender(sender), swarm.WithClock(clock))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if err := sw.Start(context.Background()); err != nil {
		t.Fatalf("first Start() failed: %v", err)
	}
	first := sw.LogPath()
	if err := sw.Stop(); err != nil {
		t.Fatalf("first Stop() failed: %v", err)
	}

	clock.Advance(time.Minute)

	if err := sw.Start(context.Background()); err != nil {
		t.Fatalf("second Start() failed: %v", err)
	}
	second := sw.LogPath()
	if err := sw.Stop(); err != nil {
		t.Fatalf("second Stop() failed: %v", err)
	}

	if first == second {
		t.Fatalf("restart reused frame log %q", first)
	}
	for _, path := range []string{first, second} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("frame log %q missing after restart: %v", path, err)
		}
	}
}

func TestSwarm_CleanupPrunesOldLogs(t *testing.T) {
	cfg := createTestConfig(t)
	cfg.FlushEvery = 1000

	oldest := filepath.Join(cfg.LogDir, "johnbot2_20200101_000000.csv")
	newer := filepath.Join(cfg.LogDir, "johnbot2_20200102_000000.csv")
	junk := strings.Repeat("x", 600)
	for _, path := range []string{oldest, newer} {
		if err := os.WriteFile(path, []byte(junk), 0o644); err != nil {
			t.Fatalf("seeding old log: %v", err)
		}
	}

	sw, err := swarm.New(cfg,
		swarm.WithCommandSender(&mockSender{}),
		swarm.WithCleanupConfig(swarm.CleanupConfig{
			Enabled:       true,
			CheckInterval: time.Hour,
			HighWatermark: 1000,
			LowWatermark:  700,
		}),
	)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if err := sw.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer func() { _ = sw.Stop() }()

	active := sw.LogPath()

	waitFor(t, 2*time.Second, func() bool {
		_, err := os.Stat(oldest)
		return os.IsNotExist(err)
	}, "cleanup never removed the oldest log")

	if _, err := os.Stat(newer); err != nil {
		t.Errorf("cleanup removed %q, which was under the low watermark: %v", newer, err)
	}
	if _, err := os.Stat(active); err != nil {
		t.Errorf("cleanup removed the active log %q: %v", active, err)
	}
}
