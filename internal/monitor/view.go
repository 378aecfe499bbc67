package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/johnsmith-uni/johnbot2/pkg/swarm"
)

// renderRoster lays out one row per robot: color mark, ID, liveness,
// latest sensor pair, latest motor pair, and time since last report.
func renderRoster(snaps []swarm.Snapshot, now time.Time, s styles) string {
	rows := []string{s.rosterHead.Render(fmt.Sprintf("   %-3s %-11s %-15s %-11s %s",
		"ID", "LIVENESS", "SENSORS L/R", "MOTORS L/R", "LAST SEEN"))}
	for _, snap := range snaps {
		rows = append(rows, rosterRow(snap, now, s))
	}
	return strings.Join(rows, "\n")
}

func rosterRow(snap swarm.Snapshot, now time.Time, s styles) string {
	mark := lipgloss.NewStyle().Foreground(robotColor(int(snap.Robot))).Render("━━")

	// Pad cells before styling so ANSI codes do not skew the columns.
	liveness := s.liveness(snap.Liveness).Render(fmt.Sprintf("%-11s", snap.Liveness))

	sensors := "  --- /   ---"
	motors := " -- /  --"
	lastSeen := "never"
	if snap.HasSample {
		sensors = fmt.Sprintf("%5.1f / %5.1f", snap.Sample.Left, snap.Sample.Right)
		motors = fmt.Sprintf("%3d / %3d", snap.Command.Left, snap.Command.Right)
		lastSeen = fmt.Sprintf("%.1fs ago", now.Sub(snap.LastSeen).Seconds())
	}

	return fmt.Sprintf("%s %-3d %s %-15s %-11s %s",
		mark, snap.Robot, liveness, sensors, motors, lastSeen)
}

// renderLogs draws the scrolling event pane at the bottom.
func renderLogs(logs []string, width int, s styles) string {
	style := s.logBox
	if width > 0 {
		style = style.Width(width - 4)
	}

	if len(logs) == 0 {
		return style.Render(s.logEmpty.Render("Press 'q' to quit"))
	}
	return style.Render(strings.Join(logs, "\n"))
}
