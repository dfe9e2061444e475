package remotefs

import (
	"context"

	"github.com/mwantia/remotefs/backend"
	"github.com/mwantia/remotefs/log"
	"github.com/mwantia/remotefs/staging"
)

// Filesystem is the root handle over one remote backend. It owns the
// backend lifecycle and hands out Node values; nodes themselves keep a
// non-owning reference back to it.
type Filesystem struct {
	backend  backend.Backend
	staging  staging.Provider
	endpoint *Endpoint
	urls     PublicURLProvider
	log      *log.Logger
}

// New creates a Filesystem over the given backend.
// The backend is not opened; call Open before issuing operations.
func New(b backend.Backend, opts ...Option) (*Filesystem, error) {
	options := newDefaultOptions()
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}

	logger := log.NewLogger("remotefs", options.LogLevel, options.LogFile, options.NoTerminalLog)

	return &Filesystem{
		backend:  b,
		staging:  options.Staging,
		endpoint: options.Endpoint,
		urls:     options.URLProvider,
		log:      logger.Named(b.Name()),
	}, nil
}

// Open opens the underlying backend.
func (f *Filesystem) Open(ctx context.Context) error {
	return f.backend.Open(ctx)
}

// Close closes the underlying backend.
func (f *Filesystem) Close(ctx context.Context) error {
	return f.backend.Close(ctx)
}

// Backend exposes the backend handle for capability queries.
func (f *Filesystem) Backend() backend.Backend {
	return f.backend
}

// Node returns a node for the given path. No I/O is performed;
// the path is normalized and the node constructed in place.
func (f *Filesystem) Node(path string) (*Node, error) {
	normalized, err := NormalizePath(path)
	if err != nil {
		return nil, err
	}

	return &Node{
		path: normalized,
		fs:   f,
	}, nil
}

// Root returns the node for "/".
func (f *Filesystem) Root() *Node {
	return &Node{
		path: "/",
		fs:   f,
	}
}
