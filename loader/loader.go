package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/docaccel"
	"github.com/gogpu/docaccel/internal/cache"
	"github.com/gogpu/docaccel/manifest"
)

var (
	// ErrUnknownModule reports a module id absent from the manifest.
	// A load failing with it is a configuration error, fatal to that call
	// only.
	ErrUnknownModule = errors.New("docaccel: unknown module id")

	// ErrNoTransport reports a cold miss of both cache tiers with no
	// network transport configured.
	ErrNoTransport = errors.New("docaccel: network transport unavailable")
)

// DefaultCacheName is the persistent-storage namespace used when none is
// configured.
const DefaultCacheName = "docaccel-modules"

// downloadChunkSize is the read granularity for streamed module bodies.
const downloadChunkSize = 32 * 1024

// inflight is one shared outstanding load: the de-duplication table maps a
// module id to at most one of these at a time.
type inflight struct {
	t    *tracker
	done chan struct{}
	mod  *Module
	err  error
}

// Loader resolves accelerator modules through the memory → persistent
// storage → network cascade described in the package documentation.
//
// The memory cache and in-flight table are private to each Loader; the
// persistent-storage namespace may be shared across instances.
//
// Loader is safe for concurrent use.
type Loader struct {
	manifest  *manifest.Manifest
	storage   Storage
	transport Transport
	toolchain Toolchain
	cacheName string
	log       *slog.Logger

	modules *cache.Cache[string, *Module]

	mu     sync.Mutex
	flight map[string]*inflight

	storageOnce sync.Once
	storageOK   atomic.Bool

	memoryHits   atomic.Uint64
	storageHits  atomic.Uint64
	networkLoads atomic.Uint64
	failures     atomic.Uint64
}

// New creates a loader over the given manifest.
//
// A loader with no storage skips the persistent tier; a loader with no
// transport can only serve loads satisfiable from cache. The toolchain is
// required to produce ready modules: without one, every path except a
// memory hit fails at the compile step.
func New(m *manifest.Manifest, opts ...Option) *Loader {
	l := &Loader{
		manifest:  m,
		cacheName: DefaultCacheName,
		modules:   cache.New[string, *Module](),
		flight:    make(map[string]*inflight),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// logger returns the loader's logger, falling back to the shared docaccel
// logger so SetLogger configures subpackages too.
func (l *Loader) logger() *slog.Logger {
	if l.log != nil {
		return l.log
	}
	return docaccel.Logger()
}

// Load returns the ready module for moduleID, resolving it through the
// cache cascade on first use.
//
// A second concurrent Load for the same id before the first settles shares
// the same underlying work — at most one network fetch and one compile per
// id at a time — and onProgress still receives the shared events. A Load
// whose context is canceled returns early, but the shared work keeps
// running and still populates the caches on completion.
//
// onProgress may be nil.
func (l *Loader) Load(ctx context.Context, moduleID string, onProgress ProgressFunc) (*Module, error) {
	entry, ok := l.manifest.Lookup(moduleID)
	if !ok {
		l.failures.Add(1)
		return nil, fmt.Errorf("%w: %q", ErrUnknownModule, moduleID)
	}

	// Memory hit: short-circuit straight to ready.
	if mod, hit := l.modules.Get(moduleID); hit {
		l.memoryHits.Add(1)
		t := newTracker(moduleID)
		if onProgress != nil {
			t.subscribe(onProgress)
		}
		t.emit(PhaseCacheCheck, 0, entry.Size, 0)
		t.emit(PhaseReady, entry.Size, entry.Size, percentReady)
		return mod, nil
	}

	l.mu.Lock()
	if fl, joined := l.flight[moduleID]; joined {
		if onProgress != nil {
			fl.t.subscribe(onProgress)
		}
		l.mu.Unlock()
		select {
		case <-fl.done:
			return fl.mod, fl.err
		case <-ctx.Done():
			// Only this caller gives up; the shared load keeps going.
			return nil, ctx.Err()
		}
	}
	fl := &inflight{t: newTracker(moduleID), done: make(chan struct{})}
	if onProgress != nil {
		fl.t.subscribe(onProgress)
	}
	l.flight[moduleID] = fl
	l.mu.Unlock()

	go func() {
		// Detach from the initiating caller: an abandoned load still runs
		// to completion and populates the caches.
		mod, err := l.loadSlow(context.WithoutCancel(ctx), entry, fl.t)
		fl.mod, fl.err = mod, err

		// Drop the in-flight entry before waking waiters, so a load that
		// starts after settlement restarts the cascade instead of reusing
		// a stale entry.
		l.mu.Lock()
		delete(l.flight, moduleID)
		l.mu.Unlock()
		close(fl.done)
	}()

	select {
	case <-fl.done:
		return fl.mod, fl.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// IsLoaded reports memory-cache membership only; it never probes storage
// or network.
func (l *Loader) IsLoaded(moduleID string) bool {
	return l.modules.Contains(moduleID)
}

// Preload fires a load for each id in parallel. Every individual failure is
// swallowed (logged at warn); Preload never fails.
func (l *Loader) Preload(ctx context.Context, moduleIDs []string) {
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range moduleIDs {
		id := id
		g.Go(func() error {
			if _, err := l.Load(ctx, id, nil); err != nil {
				l.logger().Warn("preload failed", "module", id, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// ClearCache drops the memory cache and best-effort deletes the
// persistent-storage namespace. In-flight loads are not canceled; the next
// Load after the clear repeats the full cascade.
func (l *Loader) ClearCache(ctx context.Context) {
	l.modules.Clear()
	if l.storage == nil {
		return
	}
	if err := l.storage.Delete(ctx, l.cacheName); err != nil {
		l.logger().Warn("clearing persistent cache failed",
			"namespace", l.cacheName, "error", err)
	}
}

// Stats reports loader activity counters.
type Stats struct {
	// Loaded is the number of modules currently in the memory cache.
	Loaded int

	// MemoryHits counts loads served from the memory cache.
	MemoryHits uint64

	// StorageHits counts loads whose bytes came from the persistent store.
	StorageHits uint64

	// NetworkLoads counts completed network fetches.
	NetworkLoads uint64

	// Failures counts failed loads.
	Failures uint64
}

// Stats returns current loader statistics.
func (l *Loader) Stats() Stats {
	return Stats{
		Loaded:       l.modules.Len(),
		MemoryHits:   l.memoryHits.Load(),
		StorageHits:  l.storageHits.Load(),
		NetworkLoads: l.networkLoads.Load(),
		Failures:     l.failures.Load(),
	}
}

// loadSlow runs the non-memory part of the cascade: persistent storage,
// network, compile, instantiate. It owns the tracker's terminal event.
func (l *Loader) loadSlow(ctx context.Context, entry manifest.Entry, t *tracker) (mod *Module, err error) {
	defer func() {
		if err != nil {
			l.failures.Add(1)
			t.fail()
		}
	}()

	t.emit(PhaseCacheCheck, 0, entry.Size, 0)

	key := entry.CacheKey()
	data, fromStorage := l.storageMatch(ctx, key)

	if !fromStorage {
		data, err = l.fetch(ctx, entry, t)
		if err != nil {
			return nil, err
		}
		l.storagePut(ctx, key, data)
	}

	mod, err = l.compile(ctx, entry, data, t)
	if err != nil && fromStorage && l.transport != nil {
		// Persisted bytes that no longer compile are treated as a tier
		// miss: refetch, and let the Put overwrite the corrupt copy.
		l.logger().Warn("persisted module bytes failed to compile; refetching",
			"module", entry.ID, "error", err)
		fresh, ferr := l.fetch(ctx, entry, t)
		if ferr != nil {
			return nil, err
		}
		l.storagePut(ctx, key, fresh)
		data = fresh
		mod, err = l.compile(ctx, entry, data, t)
	}
	if err != nil {
		return nil, err
	}

	l.modules.Set(entry.ID, mod)
	l.logger().Info("accelerator module ready",
		"module", entry.ID, "version", entry.Version, "fromCache", fromStorage)
	t.emit(PhaseReady, int64(len(data)), int64(len(data)), percentReady)
	return mod, nil
}

// storageReady lazily opens the persistent namespace once. A failed open
// degrades the loader to a storage-less cascade.
func (l *Loader) storageReady(ctx context.Context) bool {
	if l.storage == nil {
		return false
	}
	l.storageOnce.Do(func() {
		if err := l.storage.Open(ctx, l.cacheName); err != nil {
			l.logger().Warn("persistent cache unavailable",
				"namespace", l.cacheName, "error", err)
			return
		}
		l.storageOK.Store(true)
	})
	return l.storageOK.Load()
}

func (l *Loader) storageMatch(ctx context.Context, key string) ([]byte, bool) {
	if !l.storageReady(ctx) {
		return nil, false
	}
	data, ok, err := l.storage.Match(ctx, key)
	if err != nil {
		l.logger().Warn("persistent cache lookup failed", "key", key, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	l.storageHits.Add(1)
	l.logger().Debug("persistent cache hit", "key", key, "bytes", len(data))
	return data, true
}

// storagePut persists fetched bytes best-effort: a storage failure never
// fails the load.
func (l *Loader) storagePut(ctx context.Context, key string, data []byte) {
	if !l.storageReady(ctx) {
		return
	}
	if err := l.storage.Put(ctx, key, data); err != nil {
		l.logger().Warn("persisting module bytes failed", "key", key, "error", err)
	}
}

// fetch downloads the entry's bytes, streaming the body and reporting
// download progress capped below 100%.
func (l *Loader) fetch(ctx context.Context, entry manifest.Entry, t *tracker) ([]byte, error) {
	if l.transport == nil {
		return nil, fmt.Errorf("%w: module %q is not cached and cannot be fetched",
			ErrNoTransport, entry.ID)
	}
	url := l.manifest.ResolveURL(entry)
	resp, err := l.transport.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("docaccel: fetching module %q from %s: %w", entry.ID, url, err)
	}
	defer resp.Body.Close()

	if resp.Status < 200 || resp.Status >= 300 {
		return nil, fmt.Errorf("docaccel: fetching module %q: unexpected status %d",
			entry.ID, resp.Status)
	}

	total := resp.ContentLength
	if total <= 0 {
		total = entry.Size
	}
	t.emit(PhaseDownloading, 0, total, 0)

	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(total))
	}
	chunk := make([]byte, downloadChunkSize)
	var loaded int64
	for {
		n, rerr := resp.Body.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			loaded += int64(n)
			var pct float64
			if total > 0 {
				pct = percentDownloadCap * float64(loaded) / float64(total)
				if pct > percentDownloadCap {
					pct = percentDownloadCap
				}
			}
			t.emit(PhaseDownloading, loaded, total, pct)
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, fmt.Errorf("docaccel: downloading module %q: %w", entry.ID, rerr)
		}
	}

	l.networkLoads.Add(1)
	l.logger().Debug("module downloaded", "module", entry.ID, "bytes", loaded, "url", url)
	return buf.Bytes(), nil
}

// compile turns raw bytes into a ready module. Runs on every path except a
// memory hit, including persistent-cache hits: compiled objects are never
// persisted.
func (l *Loader) compile(ctx context.Context, entry manifest.Entry, data []byte, t *tracker) (*Module, error) {
	if l.toolchain == nil {
		return nil, fmt.Errorf("docaccel: compiling module %q: no toolchain configured", entry.ID)
	}
	t.emit(PhaseCompiling, int64(len(data)), int64(len(data)), percentCompiling)

	cm, err := l.toolchain.Compile(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("docaccel: compiling module %q: %w", entry.ID, err)
	}
	inst, exports, err := l.toolchain.Instantiate(ctx, cm)
	if err != nil {
		return nil, fmt.Errorf("docaccel: instantiating module %q: %w", entry.ID, err)
	}
	return &Module{ID: entry.ID, Instance: inst, Exports: exports}, nil
}
