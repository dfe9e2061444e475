package remotefs

import (
	"context"
	"fmt"

	"github.com/mwantia/remotefs/data"
)

// MoveError reports a cross-backend move that failed after part of the
// copy-then-delete sequence completed. Copied tells the caller whether
// both the source and destination currently hold the content, so cleanup
// can be decided at the call site.
type MoveError struct {
	Source      string
	Destination string

	// Copied is true when the copy step finished before the failure,
	// leaving both entries present.
	Copied bool

	Err error
}

func (e *MoveError) Error() string {
	if e.Copied {
		return fmt.Sprintf("remotefs: move %s -> %s: source delete failed after copy: %v", e.Source, e.Destination, e.Err)
	}

	return fmt.Sprintf("remotefs: move %s -> %s: %v", e.Source, e.Destination, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

// CopyTo copies this entry to the destination node through the
// destination's own content contract. This generic stream copy is the
// only portable path when source and destination live on different
// backend types. Directory sources are copied entry by entry when
// recursive is set and rejected otherwise.
func (n *Node) CopyTo(ctx context.Context, dst *Node, recursive bool) error {
	stat, err := n.Stat(ctx)
	if err != nil {
		return err
	}

	if stat.IsDir() {
		if !recursive {
			return fmt.Errorf("%w: copy of directory %s requires recursive", data.ErrIsDirectory, n.path)
		}
		return n.copyTree(ctx, dst)
	}

	content, err := n.Contents(ctx)
	if err != nil {
		return err
	}

	return dst.SetContents(ctx, content)
}

func (n *Node) copyTree(ctx context.Context, dst *Node) error {
	if err := dst.CreateDirectory(ctx, true); err != nil {
		return err
	}

	children, err := n.ListAll(ctx)
	if err != nil {
		return err
	}

	for _, child := range children {
		target, err := dst.Child(child.Name())
		if err != nil {
			return err
		}

		if err := child.CopyTo(ctx, target, true); err != nil {
			return err
		}
	}

	return nil
}

// MoveTo moves this entry to the destination node. When the destination
// backend accepts native renames from this backend, a single remote
// rename preserves any server-side atomicity. Otherwise the move falls
// back to copy followed by a best-effort delete of the source; a failure
// between the two steps leaves both copies present and is reported as a
// *MoveError with Copied set.
func (n *Node) MoveTo(ctx context.Context, dst *Node) error {
	if n.fs.backend.SupportsNativeRenameWith(dst.fs.backend) {
		n.fs.log.Debug("Renaming '%s' to '%s'", n.path, dst.path)
		return n.fs.backend.Rename(ctx, n.path, dst.path)
	}

	stat, err := n.Stat(ctx)
	if err != nil {
		return err
	}

	n.fs.log.Debug("Moving '%s' to '%s' via copy", n.path, dst.path)
	if err := n.CopyTo(ctx, dst, stat.IsDir()); err != nil {
		return &MoveError{Source: n.path, Destination: dst.path, Err: err}
	}

	if err := n.Delete(ctx, true); err != nil {
		return &MoveError{Source: n.path, Destination: dst.path, Copied: true, Err: err}
	}

	return nil
}
