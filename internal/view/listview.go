package view

import (
	"slices"
	"sync"
)

// maxBuffered bounds the pre-first-snapshot event buffer. When the initial
// snapshot keeps failing under a live event stream, the oldest buffered
// events are dropped first; a later snapshot re-fetches them anyway.
const maxBuffered = 1024

// Record is the submission shape the reconciler works over. Implemented by
// *models.Contact and *models.Demo.
type Record interface {
	RecordID() string
	RecordStatus() string
	SetRecordStatus(status string)
}

// Phase is the lifecycle state of a mounted list view.
type Phase int

const (
	// PhaseLoading covers the window between a snapshot request being issued
	// and its result (or failure) arriving.
	PhaseLoading Phase = iota
	// PhaseReady means a snapshot has been applied and events are merging.
	PhaseReady
	// PhaseFailed means the latest snapshot request failed. Terminal until the
	// next BeginSnapshot retries.
	PhaseFailed
)

// ListView reconciles one snapshot result and an unbounded stream of events
// into a single authoritative list state.
//
// Two races the naive merge has are guarded here: every snapshot request is
// tagged with a monotonic sequence number and stale responses are discarded
// (latest request wins), and events that arrive before the first snapshot
// resolves are buffered and replayed against it instead of being silently
// overwritten.
//
// All methods are safe for concurrent use; snapshot completions and event
// deliveries arrive on different goroutines.
type ListView[T Record] struct {
	mu      sync.Mutex
	phase   Phase
	err     error
	items   []T
	total   int
	count   int
	seq     uint64
	applied bool

	buffered []pendingEvent[T]

	watchers    []changeListener
	nextWatcher uint64
}

type pendingEvent[T Record] struct {
	record T
	isNew  bool
	id     string
	status string
}

type changeListener struct {
	id uint64
	fn func()
}

// Snapshot is a point-in-time copy of the view state. Items shares the
// underlying records but not the slice, so callers may range freely.
type Snapshot[T Record] struct {
	Phase Phase
	Err   error
	Items []T
	Total int
	Count int
}

func NewListView[T Record]() *ListView[T] {
	return &ListView[T]{}
}

// BeginSnapshot marks the start of a snapshot request and returns its
// sequence number. Issuing a new request supersedes any still in flight.
func (v *ListView[T]) BeginSnapshot() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seq++
	v.phase = PhaseLoading
	v.err = nil
	return v.seq
}

// ApplySnapshot replaces the state wholesale with a snapshot result. Results
// from superseded requests are discarded and the return value reports whether
// the snapshot was applied. The first applied snapshot replays any events
// buffered while it was in flight.
func (v *ListView[T]) ApplySnapshot(seq uint64, items []T, total, count int) bool {
	v.mu.Lock()
	if seq != v.seq {
		v.mu.Unlock()
		return false
	}
	v.items = slices.Clone(items)
	v.total = total
	v.count = count
	v.phase = PhaseReady
	v.err = nil

	first := !v.applied
	v.applied = true
	if first {
		for _, ev := range v.buffered {
			if ev.isNew {
				v.addNewLocked(ev.record)
			} else {
				v.setStatusLocked(ev.id, ev.status)
			}
		}
		v.buffered = nil
	}
	v.mu.Unlock()

	v.notify()
	return true
}

// FailSnapshot records a snapshot failure. Failures of superseded requests
// are discarded.
func (v *ListView[T]) FailSnapshot(seq uint64, err error) bool {
	v.mu.Lock()
	if seq != v.seq {
		v.mu.Unlock()
		return false
	}
	v.phase = PhaseFailed
	v.err = err
	v.mu.Unlock()

	v.notify()
	return true
}

// AddNew merges a new-submission event. Duplicate ids are ignored, which
// absorbs at-least-once delivery and the race with a snapshot that already
// contains the record.
func (v *ListView[T]) AddNew(rec T) {
	v.mu.Lock()
	if !v.applied {
		v.bufferLocked(pendingEvent[T]{record: rec, isNew: true})
		v.mu.Unlock()
		return
	}
	changed := v.addNewLocked(rec)
	v.mu.Unlock()

	if changed {
		v.notify()
	}
}

// UpdateStatus merges a status-change event. Only the status field of the
// matching record changes; its position is preserved. Unknown ids are
// ignored since the record may sit outside the loaded page.
func (v *ListView[T]) UpdateStatus(id, status string) {
	v.mu.Lock()
	if !v.applied {
		v.bufferLocked(pendingEvent[T]{id: id, status: status})
		v.mu.Unlock()
		return
	}
	changed := v.setStatusLocked(id, status)
	v.mu.Unlock()

	if changed {
		v.notify()
	}
}

// SetStatus applies a local status mutation and returns the previous status
// so a failed backend call can roll it back. ok is false when the id is not
// currently held.
func (v *ListView[T]) SetStatus(id, status string) (previous string, ok bool) {
	v.mu.Lock()
	for _, rec := range v.items {
		if rec.RecordID() == id {
			previous = rec.RecordStatus()
			ok = true
			break
		}
	}
	changed := false
	if ok {
		changed = v.setStatusLocked(id, status)
	}
	v.mu.Unlock()

	if changed {
		v.notify()
	}
	return previous, ok
}

// Remove drops a record locally (optimistic delete) and returns it with its
// position so a failed delete can reinsert it.
func (v *ListView[T]) Remove(id string) (removed T, index int, ok bool) {
	v.mu.Lock()
	for i, rec := range v.items {
		if rec.RecordID() == id {
			removed = rec
			index = i
			ok = true
			v.items = slices.Delete(v.items, i, i+1)
			if v.total > 0 {
				v.total--
			}
			v.count = len(v.items)
			break
		}
	}
	v.mu.Unlock()

	if ok {
		v.notify()
	}
	return removed, index, ok
}

// Insert restores a record at the given position, rolling back a Remove.
func (v *ListView[T]) Insert(index int, rec T) {
	v.mu.Lock()
	exists := false
	for _, r := range v.items {
		if r.RecordID() == rec.RecordID() {
			exists = true
			break
		}
	}
	if !exists {
		if index < 0 {
			index = 0
		}
		if index > len(v.items) {
			index = len(v.items)
		}
		v.items = slices.Insert(v.items, index, rec)
		v.total++
		v.count = len(v.items)
	}
	v.mu.Unlock()

	if !exists {
		v.notify()
	}
}

// State returns a copy of the current view state.
func (v *ListView[T]) State() Snapshot[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Snapshot[T]{
		Phase: v.phase,
		Err:   v.err,
		Items: slices.Clone(v.items),
		Total: v.total,
		Count: v.count,
	}
}

// StatusCounts returns a histogram of held items by status.
func (v *ListView[T]) StatusCounts() map[string]int {
	v.mu.Lock()
	defer v.mu.Unlock()
	counts := make(map[string]int)
	for _, rec := range v.items {
		counts[rec.RecordStatus()]++
	}
	return counts
}

// CountWithStatus reports how many held items carry the given status.
func (v *ListView[T]) CountWithStatus(status string) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, rec := range v.items {
		if rec.RecordStatus() == status {
			n++
		}
	}
	return n
}

// OnChange registers a re-render hook invoked after every state change and
// returns its unsubscribe func. Unsubscribing mid-notification is safe and
// takes effect from the next change.
func (v *ListView[T]) OnChange(fn func()) func() {
	v.mu.Lock()
	v.nextWatcher++
	id := v.nextWatcher
	v.watchers = append(v.watchers, changeListener{id: id, fn: fn})
	v.mu.Unlock()

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		for i, w := range v.watchers {
			if w.id == id {
				v.watchers = slices.Delete(v.watchers, i, i+1)
				return
			}
		}
	}
}

func (v *ListView[T]) notify() {
	v.mu.Lock()
	watchers := slices.Clone(v.watchers)
	v.mu.Unlock()
	for _, w := range watchers {
		w.fn()
	}
}

func (v *ListView[T]) bufferLocked(ev pendingEvent[T]) {
	if len(v.buffered) >= maxBuffered {
		v.buffered = slices.Delete(v.buffered, 0, 1)
	}
	v.buffered = append(v.buffered, ev)
}

func (v *ListView[T]) addNewLocked(rec T) bool {
	for _, r := range v.items {
		if r.RecordID() == rec.RecordID() {
			return false
		}
	}
	v.items = slices.Insert(v.items, 0, rec)
	v.total++
	v.count = len(v.items)
	return true
}

func (v *ListView[T]) setStatusLocked(id, status string) bool {
	for _, r := range v.items {
		if r.RecordID() == id {
			if r.RecordStatus() == status {
				return false
			}
			r.SetRecordStatus(status)
			return true
		}
	}
	return false
}
