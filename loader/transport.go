package loader

import (
	"context"
	"io"
)

// Response is the result of a transport fetch. The body always streams;
// a bulk buffer is just a reader that returns everything at once.
type Response struct {
	// Status is the transport status code (HTTP semantics: 2xx is success).
	Status int

	// Body streams the module bytes. The loader closes it.
	Body io.ReadCloser

	// ContentLength is the body size when known, otherwise <= 0.
	ContentLength int64
}

// Transport is the optional network capability backing the cascade's third
// tier. A nil Transport on the loader makes a cold miss of both cache tiers
// a transport error.
type Transport interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}
