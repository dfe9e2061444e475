package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/mwantia/remotefs/data"
)

// Stat returns a copy of the stored snapshot so callers never observe
// later mutations.
func (mb *MemoryBackend) Stat(ctx context.Context, key string) (*data.FileStat, error) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	stat, err := mb.statUnsafe(key)
	if err != nil {
		return nil, err
	}

	clone := *stat
	return &clone, nil
}

func (mb *MemoryBackend) statUnsafe(key string) (*data.FileStat, error) {
	if key == "/" {
		return data.NewDirStat("/", 0755), nil
	}

	stat, exists := mb.stats[key]
	if !exists {
		return nil, data.ErrNotExist
	}

	return stat, nil
}

// List returns snapshots for the direct children of the directory.
func (mb *MemoryBackend) List(ctx context.Context, key string) ([]*data.FileStat, error) {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	stat, err := mb.statUnsafe(key)
	if err != nil {
		return nil, err
	}

	if !stat.IsDir() {
		return nil, fmt.Errorf("%w: %s", data.ErrNotDirectory, key)
	}

	prefix := key
	if prefix != "/" {
		prefix += "/"
	}

	entries := make([]*data.FileStat, 0)
	mb.keys.Scan(func(child string, _ string) bool {
		if !strings.HasPrefix(child, prefix) || child == key {
			return true
		}

		// Direct children only
		rel := strings.TrimPrefix(child, prefix)
		if strings.Contains(rel, "/") {
			return true
		}

		clone := *mb.stats[child]
		entries = append(entries, &clone)
		return true
	})

	return entries, nil
}

// Mkdir creates a single directory. The parent must already exist.
func (mb *MemoryBackend) Mkdir(ctx context.Context, key string) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if _, exists := mb.stats[key]; exists || key == "/" {
		return fmt.Errorf("%w: %s", data.ErrExist, key)
	}

	if err := mb.requireParentDir(key); err != nil {
		return err
	}

	mb.putStatUnsafe(data.NewDirStat(key, 0755))
	return nil
}

// Delete removes a single entry; directories must be empty.
func (mb *MemoryBackend) Delete(ctx context.Context, key string) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	stat, err := mb.statUnsafe(key)
	if err != nil {
		return err
	}

	if stat.IsDir() {
		if mb.hasChildrenUnsafe(key) {
			return fmt.Errorf("%w: %s", data.ErrDirectoryNotEmpty, key)
		}
	}

	mb.keys.Delete(key)
	delete(mb.stats, key)
	delete(mb.datas, key)
	return nil
}

// Rename moves an entry, and for directories every descendant, in one
// call. No other goroutine observes an intermediate state.
func (mb *MemoryBackend) Rename(ctx context.Context, from, to string) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	stat, err := mb.statUnsafe(from)
	if err != nil {
		return err
	}

	if _, exists := mb.stats[to]; exists {
		return fmt.Errorf("%w: %s", data.ErrExist, to)
	}

	if err := mb.requireParentDir(to); err != nil {
		return err
	}

	moves := map[string]string{from: to}
	if stat.IsDir() {
		prefix := from + "/"
		mb.keys.Scan(func(child string, _ string) bool {
			if strings.HasPrefix(child, prefix) {
				moves[child] = to + strings.TrimPrefix(child, from)
			}
			return true
		})
	}

	for src, dst := range moves {
		entry := mb.stats[src]
		entry.Key = dst
		entry.Name = path.Base(dst)

		mb.keys.Delete(src)
		delete(mb.stats, src)

		mb.stats[dst] = entry
		mb.keys.Set(dst, dst)

		if content, exists := mb.datas[src]; exists {
			delete(mb.datas, src)
			mb.datas[dst] = content
		}
	}

	return nil
}

// Get copies the stored content into dst.
func (mb *MemoryBackend) Get(ctx context.Context, key string, dst io.Writer) error {
	mb.mu.RLock()
	defer mb.mu.RUnlock()

	stat, err := mb.statUnsafe(key)
	if err != nil {
		return err
	}

	if stat.IsDir() {
		return fmt.Errorf("%w: %s", data.ErrIsDirectory, key)
	}

	_, err = io.Copy(dst, bytes.NewReader(mb.datas[key]))
	return err
}

// Put replaces the stored content, creating the entry when absent.
func (mb *MemoryBackend) Put(ctx context.Context, key string, src io.Reader, size int64) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if size > mb.GetCapabilities().MaxObjectSize {
		return fmt.Errorf("%w: %d bytes", data.ErrTooLarge, size)
	}

	stat, statErr := mb.statUnsafe(key)
	if statErr == nil && stat.IsDir() {
		return fmt.Errorf("%w: %s", data.ErrIsDirectory, key)
	}

	if statErr != nil {
		if err := mb.requireParentDir(key); err != nil {
			return err
		}
	}

	content, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	if statErr != nil {
		stat = data.NewFileStat(key, int64(len(content)), 0644)
		stat.Owner = "remote"
		stat.Group = "remote"
	}

	stat.Size = int64(len(content))
	stat.ModifyTime = time.Now()

	mb.putStatUnsafe(stat)
	mb.datas[key] = content
	return nil
}

// Chmod replaces the permission bits while keeping the type bits.
func (mb *MemoryBackend) Chmod(ctx context.Context, key string, mode data.FileMode) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	stat, err := mb.statUnsafe(key)
	if err != nil {
		return err
	}

	stat.Mode = (stat.Mode &^ data.ModePerm) | mode.Perm()
	return nil
}

func (mb *MemoryBackend) putStatUnsafe(stat *data.FileStat) {
	mb.stats[stat.Key] = stat
	mb.keys.Set(stat.Key, stat.Key)
}

func (mb *MemoryBackend) hasChildrenUnsafe(key string) bool {
	prefix := key
	if prefix != "/" {
		prefix += "/"
	}

	found := false
	mb.keys.Scan(func(child string, _ string) bool {
		if strings.HasPrefix(child, prefix) && child != key {
			found = true
			return false
		}
		return true
	})

	return found
}

func (mb *MemoryBackend) requireParentDir(key string) error {
	parent := path.Dir(key)
	if parent == key {
		return nil
	}

	stat, err := mb.statUnsafe(parent)
	if err != nil {
		return fmt.Errorf("%w: parent of %s", data.ErrNotExist, key)
	}

	if !stat.IsDir() {
		return fmt.Errorf("%w: parent of %s", data.ErrNotDirectory, key)
	}

	return nil
}
