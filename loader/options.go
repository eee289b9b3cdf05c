package loader

import "log/slog"

// Option configures a Loader during creation.
// Use functional options to customize Loader behavior.
//
// Example:
//
//	// Cache-only loader (no network)
//	l := loader.New(m, loader.WithStorage(store), loader.WithToolchain(tc))
//
//	// Full three-tier loader
//	l := loader.New(m,
//	    loader.WithStorage(fsstore.New("")),
//	    loader.WithTransport(httprt.New()),
//	    loader.WithToolchain(tc),
//	)
type Option func(*Loader)

// WithStorage sets the persistent byte store backing the second cache tier.
// Without one the cascade silently skips that tier.
func WithStorage(s Storage) Option {
	return func(l *Loader) {
		l.storage = s
	}
}

// WithTransport sets the network transport backing the third tier. Without
// one, a load that misses both cache tiers fails with ErrNoTransport.
func WithTransport(t Transport) Option {
	return func(l *Loader) {
		l.transport = t
	}
}

// WithToolchain sets the module toolchain used to compile and instantiate
// raw module bytes.
func WithToolchain(tc Toolchain) Option {
	return func(l *Loader) {
		l.toolchain = tc
	}
}

// WithCacheName sets the persistent-storage namespace. The namespace is
// safe to share across loader instances; storage writes are idempotent and
// reads never mutate. Defaults to DefaultCacheName.
func WithCacheName(name string) Option {
	return func(l *Loader) {
		if name != "" {
			l.cacheName = name
		}
	}
}

// WithLogger sets a dedicated logger for this loader. By default the loader
// shares the package-wide docaccel logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loader) {
		l.log = log
	}
}
