package ports

import (
	"time"

	"github.com/johnsmith-uni/johnbot2/internal/domain"
)

// FrameSink persists one frame of per-robot snapshots at a time.
// Implementations decide the on-disk format and flushing policy.
type FrameSink interface {
	// WriteFrame appends one frame. The snapshots cover every robot in
	// the roster, in robot ID order, including robots that have never
	// reported.
	WriteFrame(at time.Time, snapshots []domain.Snapshot) error

	// Close flushes buffered frames and releases the underlying resource.
	Close() error
}
