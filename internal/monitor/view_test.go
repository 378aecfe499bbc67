package monitor

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnsmith-uni/johnbot2/pkg/swarm"
)

// stubSource feeds the model fixed state.
type stubSource struct {
	state swarm.State
	snaps []swarm.Snapshot
	path  string
}

func (s *stubSource) Status() swarm.State         { return s.state }
func (s *stubSource) Snapshots() []swarm.Snapshot { return s.snaps }
func (s *stubSource) LogPath() string             { return s.path }

func testSnapshots(now time.Time) []swarm.Snapshot {
	return []swarm.Snapshot{
		{
			Robot:     0,
			HasSample: true,
			Sample:    swarm.SensorSample{Left: 12, Right: 200, At: now.Add(-300 * time.Millisecond)},
			Command:   swarm.MotorCommand{Left: 199, Right: 1},
			LastSeen:  now.Add(-300 * time.Millisecond),
			Liveness:  swarm.LivenessActive,
		},
		{
			Robot:     1,
			HasSample: true,
			Sample:    swarm.SensorSample{Left: 80, Right: 80, At: now.Add(-8 * time.Second)},
			Command:   swarm.MotorCommand{Left: 100, Right: 100},
			LastSeen:  now.Add(-8 * time.Second),
			Liveness:  swarm.LivenessStale,
		},
		{
			Robot:    2,
			Liveness: swarm.LivenessUnseen,
		},
	}
}

func TestRenderRosterShowsEveryRobot(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 4, 5, 0, time.UTC)

	out := renderRoster(testSnapshots(now), now, newStyles())

	assert.Contains(t, out, "LIVENESS")
	assert.Contains(t, out, "active")
	assert.Contains(t, out, "stale")
	assert.Contains(t, out, "unseen")
	assert.Contains(t, out, "12.0")
	assert.Contains(t, out, "200.0")
	assert.Contains(t, out, "199 /   1")
	assert.Contains(t, out, "0.3s ago")
	assert.Contains(t, out, "8.0s ago")
}

func TestRenderRosterMarksNeverReported(t *testing.T) {
	now := time.Date(2026, 3, 2, 15, 4, 5, 0, time.UTC)
	snaps := []swarm.Snapshot{{Robot: 0, Liveness: swarm.LivenessUnseen}}

	out := renderRoster(snaps, now, newStyles())

	assert.Contains(t, out, "never")
	assert.Contains(t, out, "--- /")
	assert.Contains(t, out, "-- /")
	assert.NotContains(t, out, "ago")
}

func TestRenderLogsEmptyShowsQuitHint(t *testing.T) {
	out := renderLogs(nil, 80, newStyles())
	assert.Contains(t, out, "Press 'q' to quit")
}

func TestRenderLogsJoinsMessages(t *testing.T) {
	out := renderLogs([]string{"robot 1 stale, silent for 5.2s", "robot 1 reporting again"}, 0, newStyles())
	assert.Contains(t, out, "silent for 5.2s")
	assert.Contains(t, out, "reporting again")
}

func TestFeedFormatsEvents(t *testing.T) {
	feed := NewFeed()

	feed.OnStateChange(swarm.StateChangeEvent{
		Previous: swarm.StateStopped,
		Current:  swarm.StateStarting,
		Reason:   "starting",
	})
	feed.OnRobotStale(swarm.RobotStaleEvent{Robot: 3, Silence: 5200 * time.Millisecond})
	feed.OnRobotRecovered(swarm.RobotRecoveredEvent{Robot: 3})
	feed.OnSendError(swarm.SendErrorEvent{Robot: 1, Err: assert.AnError})

	assert.Equal(t, "state Stopped -> Starting: starting", <-feed.Lines())
	assert.Equal(t, "robot 3 stale, silent for 5.2s", <-feed.Lines())
	assert.Equal(t, "robot 3 reporting again", <-feed.Lines())
	assert.Contains(t, <-feed.Lines(), "robot 1 send failed")
}

func TestFeedWriteSplitsLines(t *testing.T) {
	feed := NewFeed()

	n, err := feed.Write([]byte("first line\nsecond line\n"))
	require.NoError(t, err)
	assert.Equal(t, 23, n)

	assert.Equal(t, "first line", <-feed.Lines())
	assert.Equal(t, "second line", <-feed.Lines())
}

func TestFeedDropsWhenFull(t *testing.T) {
	feed := NewFeed()

	// Writing past the buffer must not block.
	for i := 0; i < feedBuffer+10; i++ {
		_, err := feed.Write([]byte("line\n"))
		require.NoError(t, err)
	}

	assert.Equal(t, feedBuffer, len(feed.lines))
}

func TestModelViewComposes(t *testing.T) {
	now := time.Now()
	src := &stubSource{
		state: swarm.StateRunning,
		snaps: testSnapshots(now),
		path:  "robot_logs/johnbot2_20260302_150405.csv",
	}

	m := New(src, NewFeed(), Options{Robots: 3, FrameRate: 24})

	updated, cmd := m.Update(tickMsg(now))
	require.NotNil(t, cmd)
	m = updated.(Model)

	out := m.View()
	assert.Contains(t, out, "johnbot2 swarm monitor")
	assert.Contains(t, out, "Running")
	assert.Contains(t, out, "3 robots @ 24 fps")
	assert.Contains(t, out, "frames -> robot_logs/johnbot2_20260302_150405.csv")
	assert.Contains(t, out, "active")
	assert.Contains(t, out, "Press 'q' to quit")
}

func TestModelResizeReflectsDimensions(t *testing.T) {
	src := &stubSource{state: swarm.StateRunning}
	m := New(src, NewFeed(), Options{Robots: 2, FrameRate: 24})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(Model)

	assert.Contains(t, m.View(), "[100x40]")
}

func TestModelQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		src := &stubSource{state: swarm.StateRunning}
		m := New(src, NewFeed(), Options{Robots: 2, FrameRate: 24})

		updated, cmd := m.Update(key)
		m = updated.(Model)

		require.NotNil(t, cmd, "quit key %q should produce a command", key.String())
		assert.Equal(t, "Monitor stopped.\n", m.View())
	}
}

func TestModelLogMessagesScroll(t *testing.T) {
	src := &stubSource{state: swarm.StateRunning}
	feed := NewFeed()
	m := New(src, feed, Options{Robots: 2, FrameRate: 24})

	for i := 0; i < maxLogs+2; i++ {
		updated, cmd := m.Update(logMsg("message " + string(rune('a'+i))))
		require.NotNil(t, cmd)
		m = updated.(Model)
	}

	assert.Len(t, m.logs, maxLogs)
	assert.Equal(t, "message c", m.logs[0])
	assert.Equal(t, "message g", m.logs[len(m.logs)-1])
}
