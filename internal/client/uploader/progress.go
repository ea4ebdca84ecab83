package uploader

import (
	"sync"
	"time"
)

// Status is the lifecycle state of one transfer.
type Status string

const (
	StatusUploading Status = "uploading"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Progress is one observer update for a named transfer.
type Progress struct {
	Name    string
	Percent int
	Status  Status
}

// ProgressFunc receives throttled progress updates. It may be called from
// multiple goroutines, one per file in flight.
type ProgressFunc func(p Progress)

// emitInterval throttles intermediate updates so observers are not flooded.
const emitInterval = 250 * time.Millisecond

// tracker turns acknowledged byte counts into a monotonically non-decreasing
// percentage, capped below 100 until the transfer finalizes.
type tracker struct {
	mu sync.Mutex

	name        string
	size        int64
	acked       int64
	lastPercent int
	lastEmit    time.Time
	emit        ProgressFunc

	now func() time.Time
}

func newTracker(name string, size int64, emit ProgressFunc) *tracker {
	return &tracker{name: name, size: size, emit: emit, now: time.Now}
}

// add records n more bytes handed to the transport and emits an update when
// the percentage grew and the throttle window has passed.
func (t *tracker) add(n int64) {
	if t.emit == nil {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.acked += n
	if t.size <= 0 {
		return
	}

	percent := int(t.acked * 100 / t.size)
	if percent > 99 {
		percent = 99
	}
	if percent <= t.lastPercent {
		return
	}

	now := t.now()
	if now.Sub(t.lastEmit) < emitInterval {
		return
	}

	t.lastPercent = percent
	t.lastEmit = now
	t.emit(Progress{Name: t.name, Percent: percent, Status: StatusUploading})
}

// done snaps the transfer to 100%.
func (t *tracker) done() {
	t.finish(100, StatusDone)
}

func (t *tracker) failed() {
	t.mu.Lock()
	p := t.lastPercent
	t.mu.Unlock()
	t.finish(p, StatusFailed)
}

func (t *tracker) cancelled() {
	t.mu.Lock()
	p := t.lastPercent
	t.mu.Unlock()
	t.finish(p, StatusCancelled)
}

func (t *tracker) finish(percent int, status Status) {
	if t.emit == nil {
		return
	}
	t.mu.Lock()
	t.lastPercent = percent
	t.mu.Unlock()
	t.emit(Progress{Name: t.name, Percent: percent, Status: status})
}
