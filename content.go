package remotefs

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mwantia/remotefs/data"
	"github.com/mwantia/remotefs/staging"
)

// All content transfer is staged through a throwaway local file: the
// backend only exposes whole-object get/put, so every read/write cycle
// is download-into-staging or staging-then-upload. The staging file is
// removed after use regardless of outcome.

// Contents downloads the full content of the file. An absent entry is
// reported as data.ErrNotExist, which is distinct from empty content.
func (n *Node) Contents(ctx context.Context) ([]byte, error) {
	stat, err := n.Stat(ctx)
	if err != nil {
		return nil, err
	}

	if stat.IsDir() {
		return nil, fmt.Errorf("%w: %s", data.ErrIsDirectory, n.path)
	}

	file, err := n.fs.staging.CreateTemp("remotefs-get")
	if err != nil {
		return nil, err
	}
	defer file.Remove()

	if err := n.download(ctx, file); err != nil {
		return nil, err
	}

	return file.Contents()
}

// SetContents replaces the remote content with the given bytes. The
// upload goes through a write-once staging file, so no partial remote
// write is ever visible to other callers of this backend.
func (n *Node) SetContents(ctx context.Context, content []byte) error {
	stat, err := n.stat(ctx)
	if err != nil {
		return err
	}

	if stat != nil && stat.IsDir() {
		return fmt.Errorf("%w: %s", data.ErrIsDirectory, n.path)
	}

	file, err := n.fs.staging.CreateTemp("remotefs-put")
	if err != nil {
		return err
	}
	defer file.Remove()

	if err := file.SetContents(content); err != nil {
		return err
	}

	return n.upload(ctx, file)
}

// AppendContents concatenates the given bytes after the current content
// and re-uploads the whole object. This is a read-modify-write and not
// atomic against concurrent writers of the same path.
func (n *Node) AppendContents(ctx context.Context, content []byte) error {
	current, err := n.Contents(ctx)
	if err != nil {
		return err
	}

	return n.SetContents(ctx, append(current, content...))
}

// Truncate cuts the content down to the first size bytes and re-uploads
// the whole object. Size 0 uploads empty content without a prior
// download.
func (n *Node) Truncate(ctx context.Context, size int64) error {
	if size < 0 {
		return fmt.Errorf("%w: negative truncate size", data.ErrInvalid)
	}

	if size == 0 {
		return n.SetContents(ctx, []byte{})
	}

	current, err := n.Contents(ctx)
	if err != nil {
		return err
	}

	if size < int64(len(current)) {
		current = current[:size]
	}

	return n.SetContents(ctx, current)
}

// download fills the staging file with the remote content of this node.
func (n *Node) download(ctx context.Context, file staging.File) error {
	local, err := os.OpenFile(file.Path(), os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if err := n.fs.backend.Get(ctx, n.path, local); err != nil {
		local.Close()
		return err
	}

	return local.Close()
}

// upload replaces the remote content of this node with the staging file.
func (n *Node) upload(ctx context.Context, file staging.File) error {
	size, err := file.Size()
	if err != nil {
		return err
	}

	local, err := os.Open(file.Path())
	if err != nil {
		return err
	}
	defer local.Close()

	n.fs.log.Debug("Uploading %d bytes to '%s'", size, n.path)
	return n.fs.backend.Put(ctx, n.path, local, size)
}

// File is an open handle over one node. Reads and writes operate on a
// local staging copy; written content reaches the backend when the
// handle is closed.
type File struct {
	node    *Node
	flags   data.AccessMode
	staging staging.File
	local   *os.File
	closed  bool

	ctx context.Context
}

// Open opens the node for streaming access as an escape hatch from the
// whole-object Contents/SetContents cycle. Existing content is staged
// locally first unless truncation was requested; on Close the staging
// copy is uploaded when the handle was writable.
func (n *Node) Open(ctx context.Context, flags data.AccessMode) (*File, error) {
	stat, err := n.stat(ctx)
	if err != nil {
		return nil, err
	}

	if stat != nil && stat.IsDir() {
		return nil, fmt.Errorf("%w: %s", data.ErrIsDirectory, n.path)
	}

	if stat == nil && !flags.HasCreate() {
		return nil, fmt.Errorf("%w: %s", data.ErrNotExist, n.path)
	}

	file, err := n.fs.staging.CreateTemp("remotefs-open")
	if err != nil {
		return nil, err
	}

	if stat != nil && !flags.HasTrunc() {
		if err := n.download(ctx, file); err != nil {
			file.Remove()
			return nil, err
		}
	}

	local, err := os.OpenFile(file.Path(), os.O_RDWR, 0600)
	if err != nil {
		file.Remove()
		return nil, err
	}

	if flags.HasAppend() {
		if _, err := local.Seek(0, io.SeekEnd); err != nil {
			local.Close()
			file.Remove()
			return nil, err
		}
	}

	return &File{
		node:    n,
		flags:   flags,
		staging: file,
		local:   local,
		ctx:     ctx,
	}, nil
}

// Read reads from the staging copy at the current offset.
func (f *File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, data.ErrClosed
	}

	if !f.flags.CanRead() {
		return 0, data.ErrPermission
	}

	return f.local.Read(p)
}

// Write writes to the staging copy at the current offset.
func (f *File) Write(p []byte) (int, error) {
	if f.closed {
		return 0, data.ErrClosed
	}

	if !f.flags.CanWrite() {
		return 0, data.ErrPermission
	}

	return f.local.Write(p)
}

// Seek sets the offset for the next Read or Write on the staging copy.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if f.closed {
		return 0, data.ErrClosed
	}

	return f.local.Seek(offset, whence)
}

// Close flushes the staging copy to the backend when the handle was
// writable and removes the staging file.
func (f *File) Close() error {
	if f.closed {
		return data.ErrClosed
	}
	f.closed = true

	defer f.staging.Remove()

	if err := f.local.Close(); err != nil {
		return err
	}

	if !f.flags.CanWrite() {
		return nil
	}

	return f.node.upload(f.ctx, f.staging)
}
