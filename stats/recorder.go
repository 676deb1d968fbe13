// Package stats accumulates the per-run counters original_source/ssd.h's
// Stats class tracks (numFTLRead, numFTLWrite, ...), plus an optional
// SQLite-backed trace sink for post-run analysis.
package stats

import "sync"

// Recorder is a thread-safe counter bag. The zero value (via New) is ready
// to use; mnftl.New and ftlpage.New substitute a fresh one when given a
// nil *Recorder.
type Recorder struct {
	mu sync.Mutex

	ftlRead  int64
	ftlWrite int64
	ftlTrim  int64

	gcBlocksErased  int64
	validPageCopies int64

	failures int64
}

// New creates an empty Recorder.
func New() *Recorder {
	return &Recorder{}
}

// IncrFTLRead records a logical read.
func (r *Recorder) IncrFTLRead() {
	r.mu.Lock()
	r.ftlRead++
	r.mu.Unlock()
}

// IncrFTLWrite records a logical write.
func (r *Recorder) IncrFTLWrite() {
	r.mu.Lock()
	r.ftlWrite++
	r.mu.Unlock()
}

// IncrFTLTrim records a logical trim.
func (r *Recorder) IncrFTLTrim() {
	r.mu.Lock()
	r.ftlTrim++
	r.mu.Unlock()
}

// IncrGCBlocksErased records one cleanup_block completing.
func (r *Recorder) IncrGCBlocksErased() {
	r.mu.Lock()
	r.gcBlocksErased++
	r.mu.Unlock()
}

// IncrValidPageCopy records one valid page relocated during cleanup.
func (r *Recorder) IncrValidPageCopy() {
	r.mu.Lock()
	r.validPageCopies++
	r.mu.Unlock()
}

// IncrFailure records a FAILURE status returned to a driver.
func (r *Recorder) IncrFailure() {
	r.mu.Lock()
	r.failures++
	r.mu.Unlock()
}

// Summary is a point-in-time, lock-free snapshot of the counters.
type Summary struct {
	FTLRead  int64
	FTLWrite int64
	FTLTrim  int64

	GCBlocksErased  int64
	ValidPageCopies int64

	Failures int64
}

// Snapshot returns the current counter values.
func (r *Recorder) Snapshot() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Summary{
		FTLRead:         r.ftlRead,
		FTLWrite:        r.ftlWrite,
		FTLTrim:         r.ftlTrim,
		GCBlocksErased:  r.gcBlocksErased,
		ValidPageCopies: r.validPageCopies,
		Failures:        r.failures,
	}
}
