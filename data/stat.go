package data

import (
	"path"
	"time"
)

// FileStat is the immutable snapshot a backend returns for one remote entry
// at one point in time. Backends produce a fresh snapshot on every Stat or
// List call; nothing in this package caches across calls.
//
// The absence of an entry is reported as ErrNotExist, never as a
// zero-valued snapshot.
type FileStat struct {
	// Key is the normalized absolute path of the entry within the backend.
	Key string `json:"key"`

	// Name is the base name of the entry.
	Name string `json:"name"`

	// Mode holds Unix-style type and permission bits.
	Mode FileMode `json:"mode"`

	// Size in bytes (0 for directories).
	Size int64 `json:"size"`

	ModifyTime time.Time `json:"modify_time"`

	// Owner and Group are free-form names as reported by the backend.
	// Backends without ownership reporting leave them empty.
	Owner string `json:"owner,omitempty"`
	Group string `json:"group,omitempty"`

	// LinkTarget holds the target path when Mode describes a symlink.
	LinkTarget string `json:"link_target,omitempty"`
}

// NewFileStat creates a snapshot for a regular file.
func NewFileStat(key string, size int64, mode FileMode) *FileStat {
	return &FileStat{
		Key:        key,
		Name:       path.Base(key),
		Mode:       mode,
		Size:       size,
		ModifyTime: time.Now(),
	}
}

// NewDirStat creates a snapshot for a directory.
func NewDirStat(key string, mode FileMode) *FileStat {
	return &FileStat{
		Key:        key,
		Name:       path.Base(key),
		Mode:       mode | ModeDir,
		ModifyTime: time.Now(),
	}
}

// NewSymlinkStat creates a snapshot for a symbolic link.
func NewSymlinkStat(key string, target string) *FileStat {
	return &FileStat{
		Key:        key,
		Name:       path.Base(key),
		Mode:       ModeSymlink | 0777,
		ModifyTime: time.Now(),
		LinkTarget: target,
	}
}

// IsDir reports whether the snapshot describes a directory.
func (fs *FileStat) IsDir() bool {
	return fs.Mode.IsDir()
}

// IsSymlink reports whether the snapshot describes a symbolic link.
func (fs *FileStat) IsSymlink() bool {
	return fs.Mode.IsSymlink()
}
