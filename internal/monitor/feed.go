package monitor

import (
	"fmt"
	"io"
	"strings"

	"github.com/johnsmith-uni/johnbot2/pkg/swarm"
)

const feedBuffer = 64

// Feed carries swarm events and log lines into the monitor. It
// implements swarm.EventHandler for the event side and io.Writer so a
// console logger can be pointed at the monitor instead of stderr,
// keeping log output from tearing the display.
type Feed struct {
	lines chan string
}

// NewFeed creates a feed with a bounded buffer.
func NewFeed() *Feed {
	return &Feed{lines: make(chan string, feedBuffer)}
}

// Lines is the stream the monitor drains.
func (f *Feed) Lines() <-chan string {
	return f.lines
}

// push enqueues one line, dropping it when the buffer is full so the
// pipeline never blocks on a slow display.
func (f *Feed) push(line string) {
	select {
	case f.lines <- line:
	default:
	}
}

// Write splits log output into lines and feeds them to the display.
func (f *Feed) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		if line != "" {
			f.push(line)
		}
	}
	return len(p), nil
}

// OnStateChange reports pipeline transitions.
func (f *Feed) OnStateChange(e swarm.StateChangeEvent) {
	f.push(fmt.Sprintf("state %s -> %s: %s", e.Previous, e.Current, e.Reason))
}

// OnRobotStale reports a robot going silent.
func (f *Feed) OnRobotStale(e swarm.RobotStaleEvent) {
	f.push(fmt.Sprintf("robot %d stale, silent for %.1fs", e.Robot, e.Silence.Seconds()))
}

// OnRobotRecovered reports a robot resuming after staleness.
func (f *Feed) OnRobotRecovered(e swarm.RobotRecoveredEvent) {
	f.push(fmt.Sprintf("robot %d reporting again", e.Robot))
}

// OnSendError reports a failed command transmission.
func (f *Feed) OnSendError(e swarm.SendErrorEvent) {
	f.push(fmt.Sprintf("robot %d send failed: %v", e.Robot, e.Err))
}

var (
	_ swarm.EventHandler = (*Feed)(nil)
	_ io.Writer          = (*Feed)(nil)
)
