package postgres

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mwantia/remotefs/data"
)

func (pb *PostgresBackend) Stat(ctx context.Context, key string) (*data.FileStat, error) {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	return pb.statUnsafe(ctx, key)
}

func (pb *PostgresBackend) statUnsafe(ctx context.Context, key string) (*data.FileStat, error) {
	if key == "/" {
		return data.NewDirStat("/", 0755), nil
	}

	var stat data.FileStat
	var modifyTime int64

	err := pb.pool.QueryRow(ctx,
		"SELECT key, name, mode, size, owner, grp, link_target, modify_time FROM remote_entries WHERE key = $1", key).
		Scan(&stat.Key, &stat.Name, &stat.Mode, &stat.Size,
			&stat.Owner, &stat.Group, &stat.LinkTarget, &modifyTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, data.ErrNotExist
		}
		return nil, err
	}

	stat.ModifyTime = time.Unix(modifyTime, 0)
	return &stat, nil
}

func (pb *PostgresBackend) List(ctx context.Context, key string) ([]*data.FileStat, error) {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	stat, err := pb.statUnsafe(ctx, key)
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

	children := make([]string, 0)
	pb.keys.Scan(func(child string, _ string) bool {
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
		stat, err := pb.statUnsafe(ctx, child)
		if err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}

	return stats, nil
}

func (pb *PostgresBackend) Mkdir(ctx context.Context, key string) error {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	if _, exists := pb.keys.Get(key); exists || key == "/" {
		return fmt.Errorf("%w: %s", data.ErrExist, key)
	}

	if err := pb.requireParentDir(ctx, key); err != nil {
		return err
	}

	return pb.insertUnsafe(ctx, data.NewDirStat(key, 0755), nil)
}

func (pb *PostgresBackend) Delete(ctx context.Context, key string) error {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	stat, err := pb.statUnsafe(ctx, key)
	if err != nil {
		return err
	}

	if stat.IsDir() && pb.hasChildrenUnsafe(key) {
		return fmt.Errorf("%w: %s", data.ErrDirectoryNotEmpty, key)
	}

	if _, err := pb.pool.Exec(ctx, "DELETE FROM remote_entries WHERE key = $1", key); err != nil {
		return err
	}

	pb.keys.Delete(key)
	return nil
}

func (pb *PostgresBackend) Rename(ctx context.Context, from, to string) error {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	stat, err := pb.statUnsafe(ctx, from)
	if err != nil {
		return err
	}

	if _, exists := pb.keys.Get(to); exists {
		return fmt.Errorf("%w: %s", data.ErrExist, to)
	}

	if err := pb.requireParentDir(ctx, to); err != nil {
		return err
	}

	moves := map[string]string{from: to}
	if stat.IsDir() {
		prefix := from + "/"
		pb.keys.Scan(func(child string, _ string) bool {
			if strings.HasPrefix(child, prefix) {
				moves[child] = to + strings.TrimPrefix(child, from)
			}
			return true
		})
	}

	tx, err := pb.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for src, dst := range moves {
		if _, err := tx.Exec(ctx,
			"UPDATE remote_entries SET key = $1, name = $2 WHERE key = $3",
			dst, path.Base(dst), src); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	for src, dst := range moves {
		pb.keys.Delete(src)
		pb.keys.Set(dst, dst)
	}

	return nil
}

func (pb *PostgresBackend) Get(ctx context.Context, key string, dst io.Writer) error {
	pb.mu.RLock()
	defer pb.mu.RUnlock()

	stat, err := pb.statUnsafe(ctx, key)
	if err != nil {
		return err
	}

	if stat.IsDir() {
		return fmt.Errorf("%w: %s", data.ErrIsDirectory, key)
	}

	var content []byte
	err = pb.pool.QueryRow(ctx, "SELECT content FROM remote_entries WHERE key = $1", key).Scan(&content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", data.ErrNotExist, key)
		}
		return err
	}

	_, err = io.Copy(dst, bytes.NewReader(content))
	return err
}

func (pb *PostgresBackend) Put(ctx context.Context, key string, src io.Reader, size int64) error {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	stat, statErr := pb.statUnsafe(ctx, key)
	if statErr == nil && stat.IsDir() {
		return fmt.Errorf("%w: %s", data.ErrIsDirectory, key)
	}

	if statErr != nil {
		if !errors.Is(statErr, data.ErrNotExist) {
			return statErr
		}
		if err := pb.requireParentDir(ctx, key); err != nil {
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

	return pb.insertUnsafe(ctx, stat, content)
}

func (pb *PostgresBackend) Chmod(ctx context.Context, key string, mode data.FileMode) error {
	pb.mu.Lock()
	defer pb.mu.Unlock()

	stat, err := pb.statUnsafe(ctx, key)
	if err != nil {
		return err
	}

	newMode := (stat.Mode &^ data.ModePerm) | mode.Perm()

	_, err = pb.pool.Exec(ctx,
		"UPDATE remote_entries SET mode = $1 WHERE key = $2", newMode, key)
	return err
}

func (pb *PostgresBackend) insertUnsafe(ctx context.Context, stat *data.FileStat, content []byte) error {
	_, err := pb.pool.Exec(ctx, `
		INSERT INTO remote_entries (key, name, mode, size, owner, grp, link_target, modify_time, content)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (key) DO UPDATE SET
			mode = EXCLUDED.mode,
			size = EXCLUDED.size,
			modify_time = EXCLUDED.modify_time,
			content = EXCLUDED.content`,
		stat.Key, stat.Name, stat.Mode, stat.Size, stat.Owner, stat.Group,
		stat.LinkTarget, stat.ModifyTime.Unix(), content)
	if err != nil {
		return err
	}

	pb.keys.Set(stat.Key, stat.Key)
	return nil
}

func (pb *PostgresBackend) hasChildrenUnsafe(key string) bool {
	prefix := key
	if prefix != "/" {
		prefix += "/"
	}

	found := false
	pb.keys.Scan(func(child string, _ string) bool {
		if strings.HasPrefix(child, prefix) && child != key {
			found = true
			return false
		}
		return true
	})

	return found
}

func (pb *PostgresBackend) requireParentDir(ctx context.Context, key string) error {
	parent := path.Dir(key)
	if parent == key {
		return nil
	}

	stat, err := pb.statUnsafe(ctx, parent)
	if err != nil {
		return fmt.Errorf("%w: parent of %s", data.ErrNotExist, key)
	}

	if !stat.IsDir() {
		return fmt.Errorf("%w: parent of %s", data.ErrNotDirectory, key)
	}

	return nil
}
