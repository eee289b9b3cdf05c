// Package loader resolves, caches and instantiates accelerator modules
// through a three-tier cascade: an in-memory cache, an optional persistent
// byte store, and finally a network fetch-and-compile path.
//
// # Cascade
//
// Every load starts with a cache check. A memory hit short-circuits
// straight to ready. A persistent-cache hit skips the network but still
// compiles, because compiled module objects are never persisted — only raw
// bytes are. A cold miss of both caches downloads the module, writes the
// bytes back to the persistent store best-effort, then compiles and
// instantiates.
//
// # Failure isolation
//
// Storage failures are always non-fatal: the cascade proceeds to the next
// tier or simply without persistence. A missing transport is an error only
// when both cache tiers miss. A failed load affects only its own callers;
// concurrent callers for other ids, and later retries for the same id, are
// untouched.
//
// # Concurrency
//
// Concurrent loads of the same id share one underlying fetch-and-compile;
// each caller's progress callback still observes the shared events. The
// in-flight entry is dropped the instant the shared work settles, so a
// later load always restarts the cache cascade. There is no cancellation:
// a load whose caller gives up keeps running in the background and still
// populates the caches on completion.
package loader
