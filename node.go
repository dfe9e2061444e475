package remotefs

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/mwantia/remotefs/backend"
	"github.com/mwantia/remotefs/data"
)

// Node represents one remote path. It carries no state beyond the
// normalized path and a non-owning reference to its Filesystem; every
// metadata query issues a fresh stat round-trip, so two calls may observe
// different states of the remote entry. Construction is cheap and
// performs no I/O.
//
// Two nodes with equal path on the same Filesystem are interchangeable.
type Node struct {
	path string
	fs   *Filesystem
}

// Path returns the normalized absolute path of the node.
func (n *Node) Path() string {
	return n.path
}

// Name returns the base name of the node.
func (n *Node) Name() string {
	return path.Base(n.path)
}

// Parent returns the parent node. The second return is false at the
// root, which has no parent.
func (n *Node) Parent() (*Node, bool) {
	parent, ok := parentPath(n.path)
	if !ok {
		return nil, false
	}

	return &Node{path: parent, fs: n.fs}, true
}

// Child returns the node for a direct child entry name.
func (n *Node) Child(name string) (*Node, error) {
	if name == "" || name == "." || name == ".." {
		return nil, fmt.Errorf("%w: invalid child name %q", data.ErrInvalidPath, name)
	}

	return &Node{path: childPath(n.path, name), fs: n.fs}, nil
}

// Stat fetches a fresh metadata snapshot for this node.
// Returns data.ErrNotExist when the entry is absent.
func (n *Node) Stat(ctx context.Context) (*data.FileStat, error) {
	return n.fs.backend.Stat(ctx, n.path)
}

// stat is the shared accessor backbone: absence is a normal outcome and
// reported as a nil snapshot, any other failure is surfaced.
func (n *Node) stat(ctx context.Context) (*data.FileStat, error) {
	stat, err := n.fs.backend.Stat(ctx, n.path)
	if err != nil {
		if errors.Is(err, data.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	return stat, nil
}

// Exists reports whether a metadata snapshot is obtainable for this path.
func (n *Node) Exists(ctx context.Context) (bool, error) {
	stat, err := n.stat(ctx)
	if err != nil {
		return false, err
	}

	return stat != nil, nil
}

// IsFile reports whether the entry exists and is a regular file.
func (n *Node) IsFile(ctx context.Context) (bool, error) {
	stat, err := n.stat(ctx)
	if err != nil || stat == nil {
		return false, err
	}

	return stat.Mode.IsRegular(), nil
}

// IsDir reports whether the entry exists and is a directory.
func (n *Node) IsDir(ctx context.Context) (bool, error) {
	stat, err := n.stat(ctx)
	if err != nil || stat == nil {
		return false, err
	}

	return stat.IsDir(), nil
}

// IsSymlink reports whether the entry exists and is a symbolic link.
func (n *Node) IsSymlink(ctx context.Context) (bool, error) {
	stat, err := n.stat(ctx)
	if err != nil || stat == nil {
		return false, err
	}

	return stat.IsSymlink(), nil
}

// Size returns the size in bytes, 0 for an absent entry.
func (n *Node) Size(ctx context.Context) (int64, error) {
	stat, err := n.stat(ctx)
	if err != nil || stat == nil {
		return 0, err
	}

	return stat.Size, nil
}

// Mode returns the mode bits, 0 for an absent entry.
func (n *Node) Mode(ctx context.Context) (data.FileMode, error) {
	stat, err := n.stat(ctx)
	if err != nil || stat == nil {
		return 0, err
	}

	return stat.Mode, nil
}

// ModTime returns the modification time, zero for an absent entry.
func (n *Node) ModTime(ctx context.Context) (time.Time, error) {
	stat, err := n.stat(ctx)
	if err != nil || stat == nil {
		return time.Time{}, err
	}

	return stat.ModifyTime, nil
}

// AccessTime aliases ModTime. The backend does not track access times
// independently.
func (n *Node) AccessTime(ctx context.Context) (time.Time, error) {
	return n.ModTime(ctx)
}

// CreateTime aliases ModTime. The backend does not track creation times
// independently.
func (n *Node) CreateTime(ctx context.Context) (time.Time, error) {
	return n.ModTime(ctx)
}

// Owner returns the owner name, empty for an absent entry or a backend
// without ownership reporting.
func (n *Node) Owner(ctx context.Context) (string, error) {
	stat, err := n.stat(ctx)
	if err != nil || stat == nil {
		return "", err
	}

	return stat.Owner, nil
}

// Group returns the group name, empty for an absent entry or a backend
// without ownership reporting.
func (n *Node) Group(ctx context.Context) (string, error) {
	stat, err := n.stat(ctx)
	if err != nil || stat == nil {
		return "", err
	}

	return stat.Group, nil
}

// LinkTarget returns the symlink target, empty when the entry is absent
// or not a link.
func (n *Node) LinkTarget(ctx context.Context) (string, error) {
	stat, err := n.stat(ctx)
	if err != nil || stat == nil {
		return "", err
	}

	return stat.LinkTarget, nil
}

// IsReadable reports whether any read bit is set on the entry mode.
func (n *Node) IsReadable(ctx context.Context) (bool, error) {
	mode, err := n.Mode(ctx)
	if err != nil {
		return false, err
	}

	return mode.CanRead(), nil
}

// IsWritable reports whether any write bit is set on the entry mode.
func (n *Node) IsWritable(ctx context.Context) (bool, error) {
	mode, err := n.Mode(ctx)
	if err != nil {
		return false, err
	}

	return mode.CanWrite(), nil
}

// IsExecutable reports whether any execute bit is set on the entry mode.
func (n *Node) IsExecutable(ctx context.Context) (bool, error) {
	mode, err := n.Mode(ctx)
	if err != nil {
		return false, err
	}

	return mode.CanExecute(), nil
}

// SetMode delegates to the backend permission-change primitive.
// Backends without CapabilityPermissions report data.ErrUnsupported.
func (n *Node) SetMode(ctx context.Context, mode data.FileMode) error {
	if !n.fs.backend.GetCapabilities().Contains(backend.CapabilityPermissions) {
		return fmt.Errorf("%w: chmod", data.ErrUnsupported)
	}

	return n.fs.backend.Chmod(ctx, n.path, mode)
}

// SetModTime is not supported by this backend family. The contract
// exists for interface symmetry and deterministically reports failure.
func (n *Node) SetModTime(ctx context.Context, t time.Time) error {
	return fmt.Errorf("%w: set modify time", data.ErrUnsupported)
}

// SetAccessTime is not supported by this backend family.
func (n *Node) SetAccessTime(ctx context.Context, t time.Time) error {
	return fmt.Errorf("%w: set access time", data.ErrUnsupported)
}

// Touch is not supported by this backend family.
func (n *Node) Touch(ctx context.Context) error {
	return fmt.Errorf("%w: touch", data.ErrUnsupported)
}

// SetOwner is not supported; the protocol has no such primitive.
func (n *Node) SetOwner(ctx context.Context, owner string) error {
	return fmt.Errorf("%w: set owner", data.ErrUnsupported)
}

// SetGroup is not supported; the protocol has no such primitive.
func (n *Node) SetGroup(ctx context.Context, group string) error {
	return fmt.Errorf("%w: set group", data.ErrUnsupported)
}

// ListAll returns a freshly constructed child node for every direct
// entry of this directory. Listing is not recursive.
func (n *Node) ListAll(ctx context.Context) ([]*Node, error) {
	stat, err := n.Stat(ctx)
	if err != nil {
		return nil, err
	}

	if !stat.IsDir() {
		return nil, fmt.Errorf("%w: %s", data.ErrNotDirectory, n.path)
	}

	entries, err := n.fs.backend.List(ctx, n.path)
	if err != nil {
		return nil, err
	}

	children := make([]*Node, 0, len(entries))
	for _, entry := range entries {
		children = append(children, &Node{
			path: childPath(n.path, entry.Name),
			fs:   n.fs,
		})
	}

	return children, nil
}

// Delete removes the entry at this path. Directories require recursive
// unless empty; children are removed depth-first and the first child
// failure aborts the remaining steps without rollback. Deleting an
// absent path succeeds.
func (n *Node) Delete(ctx context.Context, recursive bool) error {
	stat, err := n.stat(ctx)
	if err != nil {
		return err
	}

	// Nothing to delete
	if stat == nil {
		return nil
	}

	if stat.IsDir() {
		children, err := n.fs.backend.List(ctx, n.path)
		if err != nil {
			return err
		}

		if len(children) > 0 && !recursive {
			return fmt.Errorf("%w: %s", data.ErrDirectoryNotEmpty, n.path)
		}

		for _, child := range children {
			node := &Node{path: childPath(n.path, child.Name), fs: n.fs}
			if err := node.Delete(ctx, true); err != nil {
				return err
			}
		}
	}

	n.fs.log.Debug("Deleting entry '%s'", n.path)
	return n.fs.backend.Delete(ctx, n.path)
}

// CreateDirectory creates the directory at this path. An existing
// directory succeeds; an existing file is a hard failure. With recursive
// the missing ancestor chain is created first, recursing toward the root
// which is the base case.
func (n *Node) CreateDirectory(ctx context.Context, recursive bool) error {
	stat, err := n.stat(ctx)
	if err != nil {
		return err
	}

	if stat != nil {
		if stat.IsDir() {
			return nil
		}
		return fmt.Errorf("%w: %s exists as file", data.ErrNotDirectory, n.path)
	}

	if parent, ok := n.Parent(); ok {
		pstat, err := parent.stat(ctx)
		if err != nil {
			return err
		}

		switch {
		case pstat != nil && !pstat.IsDir():
			return fmt.Errorf("%w: parent of %s", data.ErrNotDirectory, n.path)
		case pstat == nil && !recursive:
			return fmt.Errorf("%w: parent of %s", data.ErrNotExist, n.path)
		case pstat == nil:
			if err := parent.CreateDirectory(ctx, true); err != nil {
				return err
			}
		}
	}

	n.fs.log.Debug("Creating directory '%s'", n.path)
	return n.fs.backend.Mkdir(ctx, n.path)
}

// CreateFile creates a zero-length file at this path by uploading an
// empty payload, proving write capability in the same round-trip. With
// parents the parent directory chain is created as needed; otherwise it
// must already exist and be a directory.
func (n *Node) CreateFile(ctx context.Context, parents bool) error {
	if parent, ok := n.Parent(); ok {
		if parents {
			if err := parent.CreateDirectory(ctx, true); err != nil {
				return err
			}
		} else {
			isDir, err := parent.IsDir(ctx)
			if err != nil {
				return err
			}
			if !isDir {
				return fmt.Errorf("%w: parent of %s", data.ErrNotDirectory, n.path)
			}
		}
	}

	return n.SetContents(ctx, []byte{})
}
