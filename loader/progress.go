package loader

import "sync"

// Phase identifies one stage of a module load.
type Phase int

const (
	// PhaseCacheCheck probes the memory and persistent caches. Always the
	// first phase of a load.
	PhaseCacheCheck Phase = iota

	// PhaseDownloading streams module bytes from the network. Only reached
	// on a cold miss of both caches.
	PhaseDownloading

	// PhaseCompiling compiles and instantiates raw bytes. Reached on every
	// path except a memory-cache hit.
	PhaseCompiling

	// PhaseReady is the terminal success phase.
	PhaseReady

	// PhaseError is the terminal failure phase.
	PhaseError
)

// String returns the wire name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseCacheCheck:
		return "cache-check"
	case PhaseDownloading:
		return "downloading"
	case PhaseCompiling:
		return "compiling"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Progress is one progress event of a module load. Within a single load,
// Percent and BytesLoaded never decrease.
type Progress struct {
	ModuleID    string
	Phase       Phase
	BytesLoaded int64
	BytesTotal  int64
	Percent     float64 // 0..100
}

// ProgressFunc receives progress events. Callbacks run on the loading
// goroutine; keep them fast.
type ProgressFunc func(Progress)

// Percent milestones. Download progress is capped below 100 to reserve
// headroom for compilation.
const (
	percentDownloadCap = 90
	percentCompiling   = 95
	percentReady       = 100
)

// tracker enforces monotonic progress for one load and fans events out to
// every subscribed callback. Concurrent callers of Load for the same id
// subscribe to the shared tracker, so each receives the shared events
// through its own callback.
type tracker struct {
	moduleID string

	mu   sync.Mutex
	subs []ProgressFunc
	last Progress
}

func newTracker(moduleID string) *tracker {
	return &tracker{moduleID: moduleID}
}

// subscribe registers a callback. Events emitted after subscription are
// delivered; earlier ones are not replayed.
func (t *tracker) subscribe(fn ProgressFunc) {
	t.mu.Lock()
	t.subs = append(t.subs, fn)
	t.mu.Unlock()
}

// emit publishes one event, clamped so Percent and BytesLoaded never
// decrease within the load. Callbacks are invoked outside the lock.
func (t *tracker) emit(phase Phase, loaded, total int64, percent float64) {
	t.mu.Lock()
	if percent < t.last.Percent {
		percent = t.last.Percent
	}
	if percent > 100 {
		percent = 100
	}
	if loaded < t.last.BytesLoaded {
		loaded = t.last.BytesLoaded
	}
	p := Progress{
		ModuleID:    t.moduleID,
		Phase:       phase,
		BytesLoaded: loaded,
		BytesTotal:  total,
		Percent:     percent,
	}
	t.last = p
	subs := make([]ProgressFunc, len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()

	for _, fn := range subs {
		fn(p)
	}
}

// fail publishes the terminal error event at the last reached percent.
func (t *tracker) fail() {
	t.mu.Lock()
	last := t.last
	t.mu.Unlock()
	t.emit(PhaseError, last.BytesLoaded, last.BytesTotal, last.Percent)
}
