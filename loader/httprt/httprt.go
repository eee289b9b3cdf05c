// Package httprt fetches accelerator module bytes over HTTP with net/http,
// exposing the raw status and the streaming response body to the loader.
package httprt

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gogpu/docaccel/loader"
)

// DefaultTimeout bounds one whole fetch, including the streamed body read.
const DefaultTimeout = 60 * time.Second

// Transport implements loader.Transport over HTTP.
type Transport struct {
	client *http.Client
}

// Option configures a Transport during creation.
type Option func(*Transport)

// WithClient sets a custom *http.Client. Use this to control TLS,
// proxies or redirect policy.
func WithClient(c *http.Client) Option {
	return func(t *Transport) {
		t.client = c
	}
}

// WithTimeout replaces the client with a default one bounded by the given
// whole-fetch timeout. Apply after WithClient or not at all.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		t.client = &http.Client{Timeout: d}
	}
}

// New creates an HTTP transport. Without options it uses a client with
// DefaultTimeout.
func New(opts ...Option) *Transport {
	t := &Transport{client: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Fetch issues a GET for the given URL. The response body streams; the
// caller closes it. Non-2xx statuses are returned as-is for the caller to
// interpret — only request construction and connection failures error here.
func (t *Transport) Fetch(ctx context.Context, url string) (*loader.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("httprt: building request for %s: %w", url, err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httprt: fetching %s: %w", url, err)
	}
	return &loader.Response{
		Status:        resp.StatusCode,
		Body:          resp.Body,
		ContentLength: resp.ContentLength,
	}, nil
}
