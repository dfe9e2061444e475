package remotefs_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/mwantia/remotefs"
	"github.com/mwantia/remotefs/backend/memory"
	"github.com/mwantia/remotefs/data"
)

func newTestFilesystem(t *testing.T) *remotefs.Filesystem {
	t.Helper()

	fs, err := remotefs.New(memory.NewMemoryBackend(), remotefs.WithoutTerminalLog())
	if err != nil {
		t.Fatalf("Filesystem init failed: %v", err)
	}

	ctx := context.Background()
	if err := fs.Open(ctx); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		fs.Close(ctx)
	})

	return fs
}

// TestNode_FreshStat verifies that nodes never cache state: a node handle
// created before the entry exists observes the entry once written.
func TestNode_FreshStat(t *testing.T) {
	ctx := context.Background()
	fs := newTestFilesystem(t)

	node, err := fs.Node("/later.txt")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}

	exists, err := node.Exists(ctx)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Expected node to be absent before write")
	}

	if err := node.SetContents(ctx, []byte("now")); err != nil {
		t.Fatalf("SetContents failed: %v", err)
	}

	exists, err = node.Exists(ctx)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("Expected node to exist after write")
	}
}

// TestNode_AbsentPredicates verifies that predicates on absent entries
// report false without error.
func TestNode_AbsentPredicates(t *testing.T) {
	ctx := context.Background()
	fs := newTestFilesystem(t)

	node, err := fs.Node("/missing")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}

	checks := map[string]func() (bool, error){
		"IsFile":    func() (bool, error) { return node.IsFile(ctx) },
		"IsDir":     func() (bool, error) { return node.IsDir(ctx) },
		"IsSymlink": func() (bool, error) { return node.IsSymlink(ctx) },
	}

	for name, check := range checks {
		got, err := check()
		if err != nil {
			t.Errorf("%s on absent entry failed: %v", name, err)
		}
		if got {
			t.Errorf("%s on absent entry should be false", name)
		}
	}

	size, err := node.Size(ctx)
	if err != nil {
		t.Errorf("Size on absent entry failed: %v", err)
	}
	if size != 0 {
		t.Errorf("Expected size 0 for absent entry, got %d", size)
	}

	if _, err := node.Stat(ctx); !errors.Is(err, data.ErrNotExist) {
		t.Errorf("Expected ErrNotExist from Stat, got %v", err)
	}
}

// TestNode_ContentsRoundTrip verifies writing and reading contents,
// including the empty file case.
func TestNode_ContentsRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := newTestFilesystem(t)

	cases := map[string][]byte{
		"/empty.txt": {},
		"/small.txt": []byte("hello world"),
		"/blob.bin":  bytes.Repeat([]byte{0x42}, 4096),
	}

	for path, content := range cases {
		node, err := fs.Node(path)
		if err != nil {
			t.Fatalf("Node %s failed: %v", path, err)
		}

		if err := node.SetContents(ctx, content); err != nil {
			t.Fatalf("SetContents %s failed: %v", path, err)
		}

		got, err := node.Contents(ctx)
		if err != nil {
			t.Fatalf("Contents %s failed: %v", path, err)
		}
		if !bytes.Equal(got, content) {
			t.Errorf("%s: expected %d bytes, got %d", path, len(content), len(got))
		}

		size, err := node.Size(ctx)
		if err != nil {
			t.Fatalf("Size %s failed: %v", path, err)
		}
		if size != int64(len(content)) {
			t.Errorf("%s: expected size %d, got %d", path, len(content), size)
		}
	}
}

// TestNode_AppendAndTruncate verifies the read-modify-write content helpers.
func TestNode_AppendAndTruncate(t *testing.T) {
	ctx := context.Background()
	fs := newTestFilesystem(t)

	node, err := fs.Node("/log.txt")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}

	if err := node.SetContents(ctx, []byte("hel")); err != nil {
		t.Fatalf("SetContents failed: %v", err)
	}

	if err := node.AppendContents(ctx, []byte("lo")); err != nil {
		t.Fatalf("AppendContents failed: %v", err)
	}

	got, err := node.Contents(ctx)
	if err != nil {
		t.Fatalf("Contents failed: %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Expected 'hello', got %q", got)
	}

	if err := node.Truncate(ctx, 3); err != nil {
		t.Fatalf("Truncate failed: %v", err)
	}

	got, err = node.Contents(ctx)
	if err != nil {
		t.Fatalf("Contents after truncate failed: %v", err)
	}
	if string(got) != "hel" {
		t.Errorf("Expected 'hel', got %q", got)
	}

	if err := node.Truncate(ctx, 0); err != nil {
		t.Fatalf("Truncate to zero failed: %v", err)
	}

	got, err = node.Contents(ctx)
	if err != nil {
		t.Fatalf("Contents after zero truncate failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty content, got %q", got)
	}
}

// TestNode_DirectoryContents verifies that content accessors reject
// directories.
func TestNode_DirectoryContents(t *testing.T) {
	ctx := context.Background()
	fs := newTestFilesystem(t)

	dir, err := fs.Node("/data")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}

	if err := dir.CreateDirectory(ctx, false); err != nil {
		t.Fatalf("CreateDirectory failed: %v", err)
	}

	if _, err := dir.Contents(ctx); !errors.Is(err, data.ErrIsDirectory) {
		t.Errorf("Expected ErrIsDirectory from Contents, got %v", err)
	}

	if err := dir.SetContents(ctx, []byte("nope")); !errors.Is(err, data.ErrIsDirectory) {
		t.Errorf("Expected ErrIsDirectory from SetContents, got %v", err)
	}
}

// TestNode_CreateDirectory verifies single and recursive directory creation.
func TestNode_CreateDirectory(t *testing.T) {
	ctx := context.Background()
	fs := newTestFilesystem(t)

	dir, err := fs.Node("/a/b/c")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}

	// Without recursive the missing parents must fail
	if err := dir.CreateDirectory(ctx, false); err == nil {
		t.Error("Expected error creating directory without parents")
	}

	if err := dir.CreateDirectory(ctx, true); err != nil {
		t.Fatalf("Recursive CreateDirectory failed: %v", err)
	}

	// Repeating the call is a no-op
	if err := dir.CreateDirectory(ctx, true); err != nil {
		t.Errorf("CreateDirectory on existing directory failed: %v", err)
	}

	for _, path := range []string{"/a", "/a/b", "/a/b/c"} {
		node, err := fs.Node(path)
		if err != nil {
			t.Fatalf("Node %s failed: %v", path, err)
		}

		isDir, err := node.IsDir(ctx)
		if err != nil {
			t.Fatalf("IsDir %s failed: %v", path, err)
		}
		if !isDir {
			t.Errorf("Expected %s to be a directory", path)
		}
	}

	// A file in the way blocks CreateDirectory
	file, err := fs.Node("/a/b/c/taken")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}
	if err := file.SetContents(ctx, []byte("x")); err != nil {
		t.Fatalf("SetContents failed: %v", err)
	}
	if err := file.CreateDirectory(ctx, false); !errors.Is(err, data.ErrNotDirectory) {
		t.Errorf("Expected ErrNotDirectory, got %v", err)
	}

	// A parent that exists as a file is a type mismatch, not absence
	below, err := fs.Node("/a/b/c/taken/sub")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}
	if err := below.CreateDirectory(ctx, false); !errors.Is(err, data.ErrNotDirectory) {
		t.Errorf("Expected ErrNotDirectory for file parent, got %v", err)
	}
	if err := below.CreateDirectory(ctx, true); !errors.Is(err, data.ErrNotDirectory) {
		t.Errorf("Expected ErrNotDirectory for recursive file parent, got %v", err)
	}
}

// TestNode_Delete verifies delete semantics for files and directories.
func TestNode_Delete(t *testing.T) {
	ctx := context.Background()
	fs := newTestFilesystem(t)

	dir, err := fs.Node("/data")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}
	if err := dir.CreateDirectory(ctx, false); err != nil {
		t.Fatalf("CreateDirectory failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		node, err := fs.Node(fmt.Sprintf("/data/file%d.txt", i))
		if err != nil {
			t.Fatalf("Node failed: %v", err)
		}
		if err := node.SetContents(ctx, []byte{byte(i)}); err != nil {
			t.Fatalf("SetContents failed: %v", err)
		}
	}

	// Non-recursive delete of a populated directory fails and leaves
	// the tree untouched
	if err := dir.Delete(ctx, false); !errors.Is(err, data.ErrDirectoryNotEmpty) {
		t.Errorf("Expected ErrDirectoryNotEmpty, got %v", err)
	}

	children, err := dir.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(children) != 3 {
		t.Errorf("Expected 3 children after failed delete, got %d", len(children))
	}

	if err := dir.Delete(ctx, true); err != nil {
		t.Fatalf("Recursive delete failed: %v", err)
	}

	exists, err := dir.Exists(ctx)
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if exists {
		t.Error("Expected directory to be gone after recursive delete")
	}

	// Deleting an absent entry succeeds
	if err := dir.Delete(ctx, false); err != nil {
		t.Errorf("Delete of absent entry failed: %v", err)
	}
}

// TestNode_ListAll verifies directory listing returns fresh child nodes.
func TestNode_ListAll(t *testing.T) {
	ctx := context.Background()
	fs := newTestFilesystem(t)

	dir, err := fs.Node("/docs")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}
	if err := dir.CreateDirectory(ctx, false); err != nil {
		t.Fatalf("CreateDirectory failed: %v", err)
	}

	names := []string{"a.txt", "b.txt", "sub"}
	for _, name := range names[:2] {
		child, err := dir.Child(name)
		if err != nil {
			t.Fatalf("Child %s failed: %v", name, err)
		}
		if err := child.SetContents(ctx, []byte(name)); err != nil {
			t.Fatalf("SetContents %s failed: %v", name, err)
		}
	}
	sub, err := dir.Child("sub")
	if err != nil {
		t.Fatalf("Child sub failed: %v", err)
	}
	if err := sub.CreateDirectory(ctx, false); err != nil {
		t.Fatalf("CreateDirectory sub failed: %v", err)
	}

	children, err := dir.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(children) != 3 {
		t.Fatalf("Expected 3 children, got %d", len(children))
	}

	for _, child := range children {
		parent, ok := child.Parent()
		if !ok {
			t.Errorf("Child %s has no parent", child.Path())
			continue
		}
		if parent.Path() != "/docs" {
			t.Errorf("Expected parent /docs, got %s", parent.Path())
		}
	}

	// Listing a file is an error
	file, err := fs.Node("/docs/a.txt")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}
	if _, err := file.ListAll(ctx); !errors.Is(err, data.ErrNotDirectory) {
		t.Errorf("Expected ErrNotDirectory, got %v", err)
	}
}

// TestNode_Modes verifies permission predicates and SetMode.
func TestNode_Modes(t *testing.T) {
	ctx := context.Background()
	fs := newTestFilesystem(t)

	node, err := fs.Node("/perm.txt")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}
	if err := node.SetContents(ctx, []byte("x")); err != nil {
		t.Fatalf("SetContents failed: %v", err)
	}

	mode, err := node.Mode(ctx)
	if err != nil {
		t.Fatalf("Mode failed: %v", err)
	}
	if mode.Perm() != 0644 {
		t.Errorf("Expected default mode 0644, got %o", mode.Perm())
	}

	readable, err := node.IsReadable(ctx)
	if err != nil {
		t.Fatalf("IsReadable failed: %v", err)
	}
	if !readable {
		t.Error("Expected 0644 entry to be readable")
	}

	executable, err := node.IsExecutable(ctx)
	if err != nil {
		t.Fatalf("IsExecutable failed: %v", err)
	}
	if executable {
		t.Error("Expected 0644 entry to not be executable")
	}

	if err := node.SetMode(ctx, 0444); err != nil {
		t.Fatalf("SetMode failed: %v", err)
	}

	writable, err := node.IsWritable(ctx)
	if err != nil {
		t.Fatalf("IsWritable failed: %v", err)
	}
	if writable {
		t.Error("Expected 0444 entry to not be writable")
	}
}

// TestNode_UnsupportedMetadata verifies that metadata setters the backend
// cannot honor fail with ErrUnsupported instead of silently succeeding.
func TestNode_UnsupportedMetadata(t *testing.T) {
	ctx := context.Background()
	fs := newTestFilesystem(t)

	node, err := fs.Node("/meta.txt")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}
	if err := node.SetContents(ctx, []byte("x")); err != nil {
		t.Fatalf("SetContents failed: %v", err)
	}

	if err := node.SetOwner(ctx, "nobody"); !errors.Is(err, data.ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported from SetOwner, got %v", err)
	}
	if err := node.Touch(ctx); !errors.Is(err, data.ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported from Touch, got %v", err)
	}
}

// TestNode_Paths verifies path navigation helpers.
func TestNode_Paths(t *testing.T) {
	fs := newTestFilesystem(t)

	node, err := fs.Node("/a/b/file.txt")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}

	if node.Name() != "file.txt" {
		t.Errorf("Expected name 'file.txt', got %q", node.Name())
	}

	parent, ok := node.Parent()
	if !ok {
		t.Fatal("Expected parent for nested node")
	}
	if parent.Path() != "/a/b" {
		t.Errorf("Expected parent /a/b, got %s", parent.Path())
	}

	root := fs.Root()
	if root.Path() != "/" {
		t.Errorf("Expected root path /, got %s", root.Path())
	}
	if _, ok := root.Parent(); ok {
		t.Error("Expected root to have no parent")
	}
}
