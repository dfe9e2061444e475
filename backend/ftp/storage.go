package ftp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"path"

	"github.com/jlaffaye/ftp"
	"github.com/mwantia/remotefs/data"
)

// Stat issues one metadata round-trip for the entry at key.
func (fb *FTPBackend) Stat(ctx context.Context, key string) (*data.FileStat, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if key == "/" {
		// Servers rarely answer MLST for the root itself
		return data.NewDirStat("/", 0755), nil
	}

	entry, err := fb.conn.GetEntry(key)
	if err != nil {
		return nil, mapError(err, key)
	}

	return entryToStat(key, entry), nil
}

// List returns the direct children of the directory at key.
func (fb *FTPBackend) List(ctx context.Context, key string) ([]*data.FileStat, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	entries, err := fb.conn.List(key)
	if err != nil {
		return nil, mapError(err, key)
	}

	stats := make([]*data.FileStat, 0, len(entries))
	for _, entry := range entries {
		if entry.Name == "." || entry.Name == ".." {
			continue
		}

		stats = append(stats, entryToStat(path.Join(key, entry.Name), entry))
	}

	return stats, nil
}

// Mkdir creates a single directory via MKD.
func (fb *FTPBackend) Mkdir(ctx context.Context, key string) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if err := fb.conn.MakeDir(key); err != nil {
		return mapError(err, key)
	}

	return nil
}

// Delete removes a single entry, choosing DELE or RMD based on a fresh
// stat of the entry type.
func (fb *FTPBackend) Delete(ctx context.Context, key string) error {
	stat, err := fb.Stat(ctx, key)
	if err != nil {
		return err
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	if stat.IsDir() {
		if err := fb.conn.RemoveDir(key); err != nil {
			return mapError(err, key)
		}
		return nil
	}

	if err := fb.conn.Delete(key); err != nil {
		return mapError(err, key)
	}

	return nil
}

// Rename issues a single RNFR/RNTO pair, preserving the server-side
// atomicity of the move.
func (fb *FTPBackend) Rename(ctx context.Context, from, to string) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if err := fb.conn.Rename(from, to); err != nil {
		return mapError(err, from)
	}

	return nil
}

// Get downloads the file at key into dst via RETR.
func (fb *FTPBackend) Get(ctx context.Context, key string, dst io.Writer) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	resp, err := fb.conn.Retr(key)
	if err != nil {
		return mapError(err, key)
	}
	defer resp.Close()

	if _, err := io.Copy(dst, resp); err != nil {
		return err
	}

	return nil
}

// Put uploads src as the new content of key via STOR, replacing any
// previous content.
func (fb *FTPBackend) Put(ctx context.Context, key string, src io.Reader, size int64) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if err := fb.conn.Stor(key, src); err != nil {
		return mapError(err, key)
	}

	return nil
}

// Chmod is not provided by the protocol; SITE CHMOD is a non-standard
// extension this backend does not rely on.
func (fb *FTPBackend) Chmod(ctx context.Context, key string, mode data.FileMode) error {
	return fmt.Errorf("%w: chmod on ftp", data.ErrUnsupported)
}

// entryToStat converts a directory listing entry into a snapshot.
// FTP listings carry no owner or group information.
func entryToStat(key string, entry *ftp.Entry) *data.FileStat {
	mode := data.FileMode(0644)

	switch entry.Type {
	case ftp.EntryTypeFolder:
		mode = data.ModeDir | 0755
	case ftp.EntryTypeLink:
		mode = data.ModeSymlink | 0777
	}

	return &data.FileStat{
		Key:        key,
		Name:       path.Base(key),
		Mode:       mode,
		Size:       int64(entry.Size),
		ModifyTime: entry.Time,
		LinkTarget: entry.Target,
	}
}

// mapError folds the common FTP status codes into the shared error set.
// The client library reports server replies as typed textproto errors;
// anything untyped or unmapped passes through wrapped.
func mapError(err error, key string) error {
	var proto *textproto.Error
	if !errors.As(err, &proto) {
		return fmt.Errorf("remotefs: ftp %s: %w", key, err)
	}

	switch proto.Code {
	case ftp.StatusFileUnavailable:
		return fmt.Errorf("%w: %s", data.ErrNotExist, key)
	case ftp.StatusBadFileName, ftp.StatusStorNeedAccount:
		return fmt.Errorf("%w: %s", data.ErrPermission, key)
	}

	return fmt.Errorf("remotefs: ftp %s: %w", key, err)
}
