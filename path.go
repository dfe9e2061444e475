package remotefs

import (
	"path"
	"strings"

	"github.com/mwantia/remotefs/data"
)

// NormalizePath turns an arbitrary path string into its canonical absolute
// form: leading slash, no ".." or "." segments, no duplicate separators.
func NormalizePath(p string) (string, error) {
	if len(p) == 0 {
		return "", data.ErrInvalidPath
	}

	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	return path.Clean(p), nil
}

// parentPath returns the parent of a normalized path.
// The second return is false at the root, which has no parent.
func parentPath(p string) (string, bool) {
	if p == "/" {
		return "", false
	}

	return path.Dir(p), true
}

// childPath joins a normalized directory path with an entry name.
func childPath(dir, name string) string {
	return path.Join(dir, name)
}
