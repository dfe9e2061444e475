// Package staging provides throwaway local files used to shuttle content
// between a remote backend and the caller. Every content transfer at the
// node layer goes through one staging file: download into it, operate on
// the local bytes, upload it back.
package staging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// File is one throwaway staging file. The creator is responsible for
// calling Remove once the transfer is done, regardless of outcome.
type File interface {
	// Path returns the local filesystem path of the staging file.
	Path() string

	// Contents reads the full content of the staging file.
	Contents() ([]byte, error)

	// SetContents replaces the full content of the staging file.
	SetContents(content []byte) error

	// Size returns the current size of the staging file in bytes.
	Size() (int64, error)

	// Remove deletes the staging file.
	Remove() error
}

// Provider hands out staging files with unique names.
type Provider interface {
	CreateTemp(prefix string) (File, error)
}

// LocalProvider creates staging files in a local directory,
// defaulting to the system temporary directory.
type LocalProvider struct {
	dir string
}

// NewLocalProvider creates a provider writing into dir.
// An empty dir falls back to os.TempDir.
func NewLocalProvider(dir string) *LocalProvider {
	if dir == "" {
		dir = os.TempDir()
	}

	return &LocalProvider{
		dir: dir,
	}
}

// CreateTemp creates a new zero-length staging file.
// The name combines the prefix with a UUID to avoid collisions between
// concurrent transfers staging the same remote path.
func (lp *LocalProvider) CreateTemp(prefix string) (File, error) {
	name := fmt.Sprintf("%s-%s", prefix, uuid.Must(uuid.NewV7()).String())
	path := filepath.Join(lp.dir, name)

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return nil, err
	}

	if err := file.Close(); err != nil {
		return nil, err
	}

	return &localFile{path: path}, nil
}

type localFile struct {
	path string
}

func (lf *localFile) Path() string {
	return lf.path
}

func (lf *localFile) Contents() ([]byte, error) {
	return os.ReadFile(lf.path)
}

func (lf *localFile) SetContents(content []byte) error {
	return os.WriteFile(lf.path, content, 0600)
}

func (lf *localFile) Size() (int64, error) {
	info, err := os.Stat(lf.path)
	if err != nil {
		return 0, err
	}

	return info.Size(), nil
}

func (lf *localFile) Remove() error {
	return os.Remove(lf.path)
}
