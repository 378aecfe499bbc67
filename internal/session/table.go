package session

import (
	"sort"
	"sync"
	"time"

	"github.com/johnsmith-uni/johnbot2/internal/domain"
)

// StaleInfo describes one robot that a sweep just transitioned to stale.
type StaleInfo struct {
	ID      domain.RobotID
	Silence time.Duration
}

// Table is the session table: the single source of truth for per-robot
// state, read by the dispatch, logging, and liveness paths.
type Table struct {
	mu       sync.RWMutex
	sessions map[domain.RobotID]*robotSession
	order    []domain.RobotID
}

// NewTable creates a table pre-seeded with roster sessions for robots
// 0..roster-1 in the unseen state, so the logging path covers the whole
// swarm from the first tick. Identities outside the roster are still
// accepted and get a session on first contact.
func NewTable(roster int) *Table {
	t := &Table{
		sessions: make(map[domain.RobotID]*robotSession, roster),
		order:    make([]domain.RobotID, 0, roster),
	}
	for i := 0; i < roster; i++ {
		id := domain.RobotID(i)
		t.sessions[id] = &robotSession{id: id, liveness: domain.LivenessUnseen}
		t.order = append(t.order, id)
	}
	return t
}

// getOrCreate returns the session for id, creating it on first contact.
func (t *Table) getOrCreate(id domain.RobotID) *robotSession {
	t.mu.RLock()
	s, ok := t.sessions[id]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok = t.sessions[id]; ok {
		return s
	}
	s = &robotSession{id: id, liveness: domain.LivenessUnseen}
	t.sessions[id] = s
	i := sort.Search(len(t.order), func(i int) bool { return t.order[i] >= id })
	t.order = append(t.order, 0)
	copy(t.order[i+1:], t.order[i:])
	t.order[i] = id
	return s
}

// RecordSample stores a sensor sample and the command computed from it,
// creating the session if the identity is new. Any identity is accepted.
// Reports whether the robot recovered from the stale state.
func (t *Table) RecordSample(id domain.RobotID, sample domain.SensorSample, cmd domain.MotorCommand) (recovered bool) {
	return t.getOrCreate(id).apply(sample, cmd)
}

// Command returns the robot's last computed motor command. The second
// return is false when the robot is unknown or has never reported.
func (t *Table) Command(id domain.RobotID) (domain.MotorCommand, bool) {
	t.mu.RLock()
	s, ok := t.sessions[id]
	t.mu.RUnlock()
	if !ok {
		return domain.MotorCommand{}, false
	}
	snap := s.snapshot()
	if !snap.HasSample {
		return domain.MotorCommand{}, false
	}
	return snap.Command, true
}

// Sweep transitions every active session that has been silent for longer
// than timeout to the stale state. It returns one entry per transition
// taken by this call, so a robot that stays stale across repeated sweeps
// is reported exactly once. Last commands are left in force.
func (t *Table) Sweep(now time.Time, timeout time.Duration) []StaleInfo {
	var stale []StaleInfo
	for _, s := range t.all() {
		if became, silence := s.markStale(now, timeout); became {
			stale = append(stale, StaleInfo{ID: s.id, Silence: silence})
		}
	}
	return stale
}

// Terminate moves every session to the terminated state. Terminated is
// absorbing: later samples for these identities are dropped.
func (t *Table) Terminate() {
	for _, s := range t.all() {
		s.terminate()
	}
}

// Snapshot returns a consistent view of one robot's state.
func (t *Table) Snapshot(id domain.RobotID) (domain.Snapshot, bool) {
	t.mu.RLock()
	s, ok := t.sessions[id]
	t.mu.RUnlock()
	if !ok {
		return domain.Snapshot{}, false
	}
	return s.snapshot(), true
}

// Snapshots returns a consistent per-robot view of the whole table in
// ascending robot ID order. Each snapshot's (sample, command) pair is
// taken atomically per robot; the frame as a whole is not a global
// atomic cut, which is fine for logging.
func (t *Table) Snapshots() []domain.Snapshot {
	all := t.all()
	snaps := make([]domain.Snapshot, len(all))
	for i, s := range all {
		snaps[i] = s.snapshot()
	}
	return snaps
}

// Roster returns the known robot identities in ascending order.
func (t *Table) Roster() []domain.RobotID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]domain.RobotID, len(t.order))
	copy(ids, t.order)
	return ids
}

// Len returns the number of known sessions.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// all returns the sessions in ascending ID order.
func (t *Table) all() []*robotSession {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*robotSession, len(t.order))
	for i, id := range t.order {
		out[i] = t.sessions[id]
	}
	return out
}
