package monitor

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/johnsmith-uni/johnbot2/pkg/swarm"
)

type styles struct {
	title      lipgloss.Style
	status     lipgloss.Style
	logPath    lipgloss.Style
	chartBox   lipgloss.Style
	rosterHead lipgloss.Style
	active     lipgloss.Style
	stale      lipgloss.Style
	unseen     lipgloss.Style
	terminated lipgloss.Style
	logBox     lipgloss.Style
	logEmpty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		status:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		logPath:    lipgloss.NewStyle().Faint(true),
		chartBox:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
		rosterHead: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		active:     lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		stale:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		unseen:     lipgloss.NewStyle().Faint(true),
		terminated: lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		logBox:     lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")),
		logEmpty:   lipgloss.NewStyle().Faint(true),
	}
}

// robotPalette assigns each robot a distinct ANSI color; rosters larger
// than the palette wrap around.
var robotPalette = []string{
	"196", // red
	"208", // orange
	"226", // yellow
	"46",  // green
	"51",  // cyan
	"201", // magenta
	"39",  // blue
	"118", // lime
	"214", // amber
	"129", // purple
}

func robotColor(id int) lipgloss.Color {
	return lipgloss.Color(robotPalette[id%len(robotPalette)])
}

func (s styles) liveness(l swarm.Liveness) lipgloss.Style {
	switch l {
	case swarm.LivenessActive:
		return s.active
	case swarm.LivenessStale:
		return s.stale
	case swarm.LivenessTerminated:
		return s.terminated
	default:
		return s.unseen
	}
}
