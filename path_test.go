package remotefs

import (
	"errors"
	"testing"

	"github.com/mwantia/remotefs/data"
)

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/":                "/",
		"/foo":             "/foo",
		"foo":              "/foo",
		"foo/bar":          "/foo/bar",
		"/foo/":            "/foo",
		"//foo//bar":       "/foo/bar",
		"/foo/./bar":       "/foo/bar",
		"/foo/../bar":      "/bar",
		"/../foo":          "/foo",
		"/foo/bar/..":      "/foo",
		".":                "/",
		"/foo/bar/baz.txt": "/foo/bar/baz.txt",
	}

	for input, expected := range cases {
		got, err := NormalizePath(input)
		if err != nil {
			t.Errorf("NormalizePath(%q) failed: %v", input, err)
			continue
		}
		if got != expected {
			t.Errorf("NormalizePath(%q): expected %q, got %q", input, expected, got)
		}
	}
}

func TestNormalizePath_Empty(t *testing.T) {
	if _, err := NormalizePath(""); !errors.Is(err, data.ErrInvalidPath) {
		t.Errorf("Expected ErrInvalidPath, got %v", err)
	}
}

func TestParentPath(t *testing.T) {
	cases := map[string]string{
		"/foo":         "/",
		"/foo/bar":     "/foo",
		"/foo/bar/baz": "/foo/bar",
	}

	for input, expected := range cases {
		got, ok := parentPath(input)
		if !ok {
			t.Errorf("parentPath(%q): expected a parent", input)
			continue
		}
		if got != expected {
			t.Errorf("parentPath(%q): expected %q, got %q", input, expected, got)
		}
	}

	if _, ok := parentPath("/"); ok {
		t.Error("parentPath(/): root must have no parent")
	}
}

func TestChildPath(t *testing.T) {
	if got := childPath("/", "foo"); got != "/foo" {
		t.Errorf("Expected /foo, got %q", got)
	}
	if got := childPath("/foo", "bar.txt"); got != "/foo/bar.txt" {
		t.Errorf("Expected /foo/bar.txt, got %q", got)
	}
}
