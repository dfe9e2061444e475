package backend

import (
	"context"
	"io"

	"github.com/mwantia/remotefs/data"
)

// Backend is the minimal set of remote operations the node layer needs.
// Implementations wrap one protocol session (FTP, object store, database)
// and are stateless per call from the caller's perspective: no retry,
// pooling or caching is assumed at this level.
//
// All paths are normalized absolute paths. Operations on missing entries
// return data.ErrNotExist; operations a backend cannot ever provide return
// data.ErrUnsupported.
type Backend interface {
	// Name returns the identifier name defined for this backend.
	Name() string

	// Open is part of the lifecycle behaviour and gets called when opening this backend.
	Open(ctx context.Context) error

	// Close is part of the lifecycle behaviour and gets called when closing this backend.
	Close(ctx context.Context) error

	// GetCapabilities returns a list of capabilities supported by this backend.
	GetCapabilities() *BackendCapabilities

	// Stat returns a fresh metadata snapshot for the entry at path.
	// Returns data.ErrNotExist if the entry is absent.
	Stat(ctx context.Context, path string) (*data.FileStat, error)

	// List returns snapshots for the direct children of the directory at path.
	// Returns data.ErrNotDirectory if path is not a directory.
	List(ctx context.Context, path string) ([]*data.FileStat, error)

	// Mkdir creates a single directory at path. The parent must exist.
	Mkdir(ctx context.Context, path string) error

	// Delete removes the single entry at path. Directories must be empty;
	// recursion is the caller's responsibility.
	Delete(ctx context.Context, path string) error

	// Rename moves an entry within this backend in a single remote operation.
	Rename(ctx context.Context, from, to string) error

	// Get downloads the content of the file at path into dst.
	Get(ctx context.Context, path string, dst io.Writer) error

	// Put uploads size bytes from src as the new content of path,
	// replacing any previous content.
	Put(ctx context.Context, path string, src io.Reader, size int64) error

	// Chmod changes the permission bits of the entry at path.
	// Backends without CapabilityPermissions return data.ErrUnsupported.
	Chmod(ctx context.Context, path string, mode data.FileMode) error

	// SupportsNativeRenameWith reports whether a Rename issued on this
	// backend can move entries owned by other. This replaces type
	// introspection on the destination for the move fast path.
	SupportsNativeRenameWith(other Backend) bool
}
