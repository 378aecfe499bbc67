// Package monitor renders a live terminal view of a running swarm: a
// streaming chart of each robot's light level, a roster table with
// liveness and the latest commands, and a scrolling event log.
package monitor

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/johnsmith-uni/johnbot2/pkg/swarm"
)

const (
	headerHeight = 3 // title + frame log path + blank line
	rosterGap    = 1 // blank line between chart and roster
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// Source is the live swarm state the monitor renders. *swarm.Swarm
// satisfies it.
type Source interface {
	Status() swarm.State
	Snapshots() []swarm.Snapshot
	LogPath() string
}

// Options configure the monitor display.
type Options struct {
	// Robots is the roster size, used for chart colors and layout.
	Robots int

	// FrameRate is the snapshot poll rate in ticks per second,
	// normally the swarm's own frame rate.
	FrameRate int
}

// Messages from the swarm side
type tickMsg time.Time
type logMsg string

func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForLog(feed *Feed) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-feed.Lines())
	}
}

// Model is the bubbletea model for the swarm monitor.
type Model struct {
	source   Source
	feed     *Feed
	opts     Options
	styles   styles
	chart    *streamlinechart.Model
	interval time.Duration
	width    int // terminal width
	height   int // terminal height
	snaps    []swarm.Snapshot
	now      time.Time
	logs     []string // last N log messages
	quitting bool
}

// New builds a monitor over the given source. The feed supplies the
// log pane; pass the same feed wired into the swarm's event handler
// and logger.
func New(source Source, feed *Feed, opts Options) Model {
	if opts.FrameRate < 1 {
		opts.FrameRate = 24
	}

	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(0, 255),
	)

	// One colored stream per robot
	for i := 0; i < opts.Robots; i++ {
		style := lipgloss.NewStyle().Foreground(robotColor(i))
		chart.SetDataSetStyles(datasetName(i), runes.ThinLineStyle, style)
	}

	return Model{
		source:   source,
		feed:     feed,
		opts:     opts,
		styles:   newStyles(),
		chart:    &chart,
		interval: time.Second / time.Duration(opts.FrameRate),
		now:      time.Now(),
	}
}

func datasetName(id int) string {
	return fmt.Sprintf("robot %d", id)
}

func (m *Model) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// chartSize calculates the size of the chart from terminal dimensions
func (m *Model) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - m.rosterHeight() - rosterGap - footerHeight - borderSize
	if height < 8 {
		height = 8
	}
	return width, height
}

func (m *Model) rosterHeight() int {
	return m.opts.Robots + 1 // one row per robot plus the column header
}

func (m *Model) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func (m Model) Init() tea.Cmd {
	// Start polling snapshots and draining the log feed
	return tea.Batch(
		tick(m.interval),
		waitForLog(m.feed),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tickMsg:
		m.now = time.Time(msg)
		m.snaps = m.source.Snapshots()
		for _, snap := range m.snaps {
			if !snap.HasSample {
				continue
			}
			level := (snap.Sample.Left + snap.Sample.Right) / 2
			m.chart.PushDataSet(datasetName(int(snap.Robot)), level)
		}
		m.chart.DrawAll()
		return m, tick(m.interval)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.feed)
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return "Monitor stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(m.styles.title.Render("johnbot2 swarm monitor"))
	sb.WriteString(m.styles.status.Render(fmt.Sprintf("  %s - %d robots @ %d fps",
		m.source.Status(), m.opts.Robots, m.opts.FrameRate)))
	if m.width > 0 {
		sb.WriteString(m.styles.status.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n")
	if path := m.source.LogPath(); path != "" {
		sb.WriteString(m.styles.logPath.Render("frames -> " + path))
	}
	sb.WriteString("\n\n")

	// Chart
	sb.WriteString(m.styles.chartBox.Render(m.chart.View()))
	sb.WriteString("\n\n")

	// Roster
	sb.WriteString(renderRoster(m.snaps, m.now, m.styles))
	sb.WriteString("\n")

	// Log box
	sb.WriteString(renderLogs(m.logs, m.width, m.styles))
	sb.WriteString("\n")

	return sb.String()
}
