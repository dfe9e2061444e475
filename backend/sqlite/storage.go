package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/mwantia/remotefs/data"
)

func (sb *SQLiteBackend) Stat(ctx context.Context, key string) (*data.FileStat, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	return sb.statUnsafe(ctx, key)
}

func (sb *SQLiteBackend) statUnsafe(ctx context.Context, key string) (*data.FileStat, error) {
	if key == "/" {
		return data.NewDirStat("/", 0755), nil
	}

	row := sb.db.QueryRowContext(ctx,
		"SELECT key, name, mode, size, owner, grp, link_target, modify_time FROM remote_entries WHERE key = ?", key)

	return scanStat(row)
}

func scanStat(row *sql.Row) (*data.FileStat, error) {
	var stat data.FileStat
	var modifyTime int64

	err := row.Scan(&stat.Key, &stat.Name, &stat.Mode, &stat.Size,
		&stat.Owner, &stat.Group, &stat.LinkTarget, &modifyTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, data.ErrNotExist
		}
		return nil, err
	}

	stat.ModifyTime = time.Unix(modifyTime, 0)
	return &stat, nil
}

func (sb *SQLiteBackend) List(ctx context.Context, key string) ([]*data.FileStat, error) {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	stat, err := sb.statUnsafe(ctx, key)
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

	// Collect direct children from the B-tree, then hydrate from SQLite
	children := make([]string, 0)
	sb.keys.Scan(func(child string, _ string) bool {
		if !strings.HasPrefix(child, prefix) || child == key {
			return true
		}
		if strings.Contains(strings.TrimPrefix(child, prefix), "/") {
			return true
		}

		children = append(children, child)
		return true
	})

	stats := make([]*data.FileStat, 0, len(children))
	for _, child := range children {
		stat, err := sb.statUnsafe(ctx, child)
		if err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}

	return stats, nil
}

func (sb *SQLiteBackend) Mkdir(ctx context.Context, key string) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if _, exists := sb.keys.Get(key); exists || key == "/" {
		return fmt.Errorf("%w: %s", data.ErrExist, key)
	}

	if err := sb.requireParentDir(ctx, key); err != nil {
		return err
	}

	stat := data.NewDirStat(key, 0755)
	if err := sb.insertUnsafe(ctx, stat, nil); err != nil {
		return err
	}

	return nil
}

func (sb *SQLiteBackend) Delete(ctx context.Context, key string) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	stat, err := sb.statUnsafe(ctx, key)
	if err != nil {
		return err
	}

	if stat.IsDir() && sb.hasChildrenUnsafe(key) {
		return fmt.Errorf("%w: %s", data.ErrDirectoryNotEmpty, key)
	}

	if _, err := sb.db.ExecContext(ctx, "DELETE FROM remote_entries WHERE key = ?", key); err != nil {
		return err
	}

	sb.keys.Delete(key)
	return nil
}

func (sb *SQLiteBackend) Rename(ctx context.Context, from, to string) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	stat, err := sb.statUnsafe(ctx, from)
	if err != nil {
		return err
	}

	if _, exists := sb.keys.Get(to); exists {
		return fmt.Errorf("%w: %s", data.ErrExist, to)
	}

	if err := sb.requireParentDir(ctx, to); err != nil {
		return err
	}

	moves := map[string]string{from: to}
	if stat.IsDir() {
		prefix := from + "/"
		sb.keys.Scan(func(child string, _ string) bool {
			if strings.HasPrefix(child, prefix) {
				moves[child] = to + strings.TrimPrefix(child, from)
			}
			return true
		})
	}

	tx, err := sb.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for src, dst := range moves {
		if _, err := tx.ExecContext(ctx,
			"UPDATE remote_entries SET key = ?, name = ? WHERE key = ?",
			dst, path.Base(dst), src); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	for src, dst := range moves {
		sb.keys.Delete(src)
		sb.keys.Set(dst, dst)
	}

	return nil
}

func (sb *SQLiteBackend) Get(ctx context.Context, key string, dst io.Writer) error {
	sb.mu.RLock()
	defer sb.mu.RUnlock()

	stat, err := sb.statUnsafe(ctx, key)
	if err != nil {
		return err
	}

	if stat.IsDir() {
		return fmt.Errorf("%w: %s", data.ErrIsDirectory, key)
	}

	var content []byte
	row := sb.db.QueryRowContext(ctx, "SELECT content FROM remote_entries WHERE key = ?", key)
	if err := row.Scan(&content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", data.ErrNotExist, key)
		}
		return err
	}

	_, err = io.Copy(dst, bytes.NewReader(content))
	return err
}

func (sb *SQLiteBackend) Put(ctx context.Context, key string, src io.Reader, size int64) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	stat, statErr := sb.statUnsafe(ctx, key)
	if statErr == nil && stat.IsDir() {
		return fmt.Errorf("%w: %s", data.ErrIsDirectory, key)
	}

	if statErr != nil {
		if !errors.Is(statErr, data.ErrNotExist) {
			return statErr
		}
		if err := sb.requireParentDir(ctx, key); err != nil {
			return err
		}
	}

	content, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	if statErr != nil {
		stat = data.NewFileStat(key, int64(len(content)), 0644)
	}

	stat.Size = int64(len(content))
	stat.ModifyTime = time.Now()

	return sb.insertUnsafe(ctx, stat, content)
}

func (sb *SQLiteBackend) Chmod(ctx context.Context, key string, mode data.FileMode) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	stat, err := sb.statUnsafe(ctx, key)
	if err != nil {
		return err
	}

	newMode := (stat.Mode &^ data.ModePerm) | mode.Perm()

	_, err = sb.db.ExecContext(ctx,
		"UPDATE remote_entries SET mode = ? WHERE key = ?", newMode, key)
	return err
}

// insertUnsafe upserts one entry row and records its key in the B-tree.
func (sb *SQLiteBackend) insertUnsafe(ctx context.Context, stat *data.FileStat, content []byte) error {
	_, err := sb.db.ExecContext(ctx, `
		INSERT INTO remote_entries (key, name, mode, size, owner, grp, link_target, modify_time, content)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			mode = excluded.mode,
			size = excluded.size,
			modify_time = excluded.modify_time,
			content = excluded.content`,
		stat.Key, stat.Name, stat.Mode, stat.Size, stat.Owner, stat.Group,
		stat.LinkTarget, stat.ModifyTime.Unix(), content)
	if err != nil {
		return err
	}

	sb.keys.Set(stat.Key, stat.Key)
	return nil
}

func (sb *SQLiteBackend) hasChildrenUnsafe(key string) bool {
	prefix := key
	if prefix != "/" {
		prefix += "/"
	}

	found := false
	sb.keys.Scan(func(child string, _ string) bool {
		if strings.HasPrefix(child, prefix) && child != key {
			found = true
			return false
		}
		return true
	})

	return found
}

func (sb *SQLiteBackend) requireParentDir(ctx context.Context, key string) error {
	parent := path.Dir(key)
	if parent == key {
		return nil
	}

	stat, err := sb.statUnsafe(ctx, parent)
	if err != nil {
		return fmt.Errorf("%w: parent of %s", data.ErrNotExist, key)
	}

	if !stat.IsDir() {
		return fmt.Errorf("%w: parent of %s", data.ErrNotDirectory, key)
	}

	return nil
}
