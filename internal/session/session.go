// Package session owns the per-robot state shared by the dispatch,
// logging, and liveness paths.
//
// The [Table] maps robot identities to sessions. A session records the
// latest sensor sample, the command computed from it, and a liveness
// state: unseen until the first report, active while reporting, stale
// after a silence timeout, terminated after shutdown. Stale is
// recoverable; terminated is absorbing.
//
// Locking is two-level: the table guards its map with a RWMutex used
// only for lookup and first-contact insertion, and each session guards
// its own fields with a Mutex. Steady-state traffic for different
// robots never serializes on a shared lock, and every reader sees a
// consistent (sample, command) pair.
package session

import (
	"sync"
	"time"

	"github.com/johnsmith-uni/johnbot2/internal/domain"
)

// robotSession holds the mutable state for one robot.
type robotSession struct {
	mu        sync.Mutex
	id        domain.RobotID
	liveness  domain.Liveness
	hasSample bool
	sample    domain.SensorSample
	command   domain.MotorCommand
	lastSeen  time.Time
}

// apply overwrites the session's sample and command and marks it active.
// Reports whether the session recovered from the stale state. Samples
// arriving after termination are dropped.
func (s *robotSession) apply(sample domain.SensorSample, cmd domain.MotorCommand) (recovered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.liveness == domain.LivenessTerminated {
		return false
	}
	recovered = s.liveness == domain.LivenessStale
	s.liveness = domain.LivenessActive
	s.hasSample = true
	s.sample = sample
	s.command = cmd
	s.lastSeen = sample.At
	return recovered
}

// markStale transitions an active session to stale when it has been
// silent for longer than timeout. Sessions that never reported are left
// unseen. Reports whether this call performed the transition.
func (s *robotSession) markStale(now time.Time, timeout time.Duration) (became bool, silence time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.liveness != domain.LivenessActive || !s.hasSample {
		return false, 0
	}
	silence = now.Sub(s.lastSeen)
	if silence <= timeout {
		return false, 0
	}
	s.liveness = domain.LivenessStale
	return true, silence
}

// terminate moves the session to the terminated state.
func (s *robotSession) terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = domain.LivenessTerminated
}

// snapshot returns a consistent copy of the session's state.
func (s *robotSession) snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return domain.Snapshot{
		Robot:     s.id,
		HasSample: s.hasSample,
		Sample:    s.sample,
		Command:   s.command,
		LastSeen:  s.lastSeen,
		Liveness:  s.liveness,
	}
}
