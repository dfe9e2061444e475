package remotefs_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/mwantia/remotefs/data"
)

// TestFile_WriteThenRead verifies the streaming handle round trip:
// content written through a handle reaches the backend on Close.
func TestFile_WriteThenRead(t *testing.T) {
	ctx := context.Background()
	fs := newTestFilesystem(t)

	node, err := fs.Node("/stream.txt")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}

	f, err := node.Open(ctx, data.AccessModeWrite|data.AccessModeCreate)
	if err != nil {
		t.Fatalf("Open for write failed: %v", err)
	}

	content := []byte("streamed content")
	if _, err := f.Write(content); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Nothing reaches the backend until Close
	exists, err := node.Exists(ctx)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Expected entry to be absent before Close")
	}

	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err = node.Open(ctx, data.AccessModeRead)
	if err != nil {
		t.Fatalf("Open for read failed: %v", err)
	}
	defer f.Close()

	got, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("Expected %q, got %q", content, got)
	}
}

// TestFile_AppendMode verifies that append handles start at the end of
// the staged content.
func TestFile_AppendMode(t *testing.T) {
	ctx := context.Background()
	fs := newTestFilesystem(t)

	node, err := fs.Node("/append.txt")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}
	if err := node.SetContents(ctx, []byte("head-")); err != nil {
		t.Fatalf("SetContents failed: %v", err)
	}

	f, err := node.Open(ctx, data.AccessModeAppend)
	if err != nil {
		t.Fatalf("Open for append failed: %v", err)
	}
	if _, err := f.Write([]byte("tail")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	got, err := node.Contents(ctx)
	if err != nil {
		t.Fatalf("Contents failed: %v", err)
	}
	if string(got) != "head-tail" {
		t.Errorf("Expected 'head-tail', got %q", got)
	}
}

// TestFile_FlagEnforcement verifies access mode gating on the handle.
func TestFile_FlagEnforcement(t *testing.T) {
	ctx := context.Background()
	fs := newTestFilesystem(t)

	node, err := fs.Node("/gated.txt")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}
	if err := node.SetContents(ctx, []byte("content")); err != nil {
		t.Fatalf("SetContents failed: %v", err)
	}

	f, err := node.Open(ctx, data.AccessModeRead)
	if err != nil {
		t.Fatalf("Open for read failed: %v", err)
	}
	defer f.Close()

	if _, err := f.Write([]byte("x")); !errors.Is(err, data.ErrPermission) {
		t.Errorf("Expected ErrPermission on write to read handle, got %v", err)
	}

	w, err := node.Open(ctx, data.AccessModeWrite)
	if err != nil {
		t.Fatalf("Open for write failed: %v", err)
	}
	defer w.Close()

	buffer := make([]byte, 8)
	if _, err := w.Read(buffer); !errors.Is(err, data.ErrPermission) {
		t.Errorf("Expected ErrPermission on read from write handle, got %v", err)
	}
}

// TestFile_OpenErrors verifies handle creation failure modes.
func TestFile_OpenErrors(t *testing.T) {
	ctx := context.Background()
	fs := newTestFilesystem(t)

	missing, err := fs.Node("/gone.txt")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}
	if _, err := missing.Open(ctx, data.AccessModeRead); !errors.Is(err, data.ErrNotExist) {
		t.Errorf("Expected ErrNotExist, got %v", err)
	}

	dir, err := fs.Node("/dir")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}
	if err := dir.CreateDirectory(ctx, false); err != nil {
		t.Fatalf("CreateDirectory failed: %v", err)
	}
	if _, err := dir.Open(ctx, data.AccessModeRead); !errors.Is(err, data.ErrIsDirectory) {
		t.Errorf("Expected ErrIsDirectory, got %v", err)
	}
}

// TestFile_ClosedHandle verifies that a closed handle rejects further use.
func TestFile_ClosedHandle(t *testing.T) {
	ctx := context.Background()
	fs := newTestFilesystem(t)

	node, err := fs.Node("/closed.txt")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}

	f, err := node.Open(ctx, data.AccessModeWrite|data.AccessModeCreate)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := f.Read(make([]byte, 1)); !errors.Is(err, data.ErrClosed) {
		t.Errorf("Expected ErrClosed on read, got %v", err)
	}
	if _, err := f.Write([]byte("x")); !errors.Is(err, data.ErrClosed) {
		t.Errorf("Expected ErrClosed on write, got %v", err)
	}
	if err := f.Close(); !errors.Is(err, data.ErrClosed) {
		t.Errorf("Expected ErrClosed on double close, got %v", err)
	}
}
