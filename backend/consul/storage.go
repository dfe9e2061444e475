package consul

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/remotefs/data"
)

// entry is the JSON envelope stored per KV value.
type entry struct {
	Stat    *data.FileStat `json:"stat"`
	Content []byte         `json:"content,omitempty"`
}

// kvKey maps a normalized path onto the configured Consul prefix.
func (cb *ConsulBackend) kvKey(key string) string {
	return cb.config.Prefix + key
}

func (cb *ConsulBackend) Stat(ctx context.Context, key string) (*data.FileStat, error) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	ent, err := cb.readEntry(ctx, key)
	if err != nil {
		return nil, err
	}

	return ent.Stat, nil
}

func (cb *ConsulBackend) readEntry(ctx context.Context, key string) (*entry, error) {
	if key == "/" {
		return &entry{Stat: data.NewDirStat("/", 0755)}, nil
	}

	pair, _, err := cb.kv.Get(cb.kvKey(key), (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}

	if pair == nil {
		return nil, fmt.Errorf("%w: %s", data.ErrNotExist, key)
	}

	var ent entry
	if err := json.Unmarshal(pair.Value, &ent); err != nil {
		return nil, err
	}

	return &ent, nil
}

func (cb *ConsulBackend) writeEntry(ctx context.Context, key string, ent *entry) error {
	value, err := json.Marshal(ent)
	if err != nil {
		return err
	}

	_, err = cb.kv.Put(&api.KVPair{
		Key:   cb.kvKey(key),
		Value: value,
	}, (&api.WriteOptions{}).WithContext(ctx))
	return err
}

func (cb *ConsulBackend) List(ctx context.Context, key string) ([]*data.FileStat, error) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	ent, err := cb.readEntry(ctx, key)
	if err != nil {
		return nil, err
	}

	if !ent.Stat.IsDir() {
		return nil, fmt.Errorf("%w: %s", data.ErrNotDirectory, key)
	}

	prefix := cb.kvKey(key)
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	keys, _, err := cb.kv.Keys(prefix, "/", (&api.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}

	// Keys reports a directory child twice, once as its entry key and
	// once as the rolled-up "child/" prefix.
	seen := make(map[string]bool, len(keys))
	stats := make([]*data.FileStat, 0, len(keys))
	for _, child := range keys {
		childPath := strings.TrimPrefix(strings.TrimSuffix(child, "/"), cb.config.Prefix)
		if childPath == key || seen[childPath] {
			continue
		}
		seen[childPath] = true

		childEnt, err := cb.readEntry(ctx, childPath)
		if err != nil {
			return nil, err
		}
		stats = append(stats, childEnt.Stat)
	}

	return stats, nil
}

func (cb *ConsulBackend) Mkdir(ctx context.Context, key string) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if _, err := cb.readEntry(ctx, key); err == nil {
		return fmt.Errorf("%w: %s", data.ErrExist, key)
	}

	if err := cb.requireParentDir(ctx, key); err != nil {
		return err
	}

	return cb.writeEntry(ctx, key, &entry{Stat: data.NewDirStat(key, 0755)})
}

func (cb *ConsulBackend) Delete(ctx context.Context, key string) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	ent, err := cb.readEntry(ctx, key)
	if err != nil {
		return err
	}

	if ent.Stat.IsDir() {
		prefix := cb.kvKey(key) + "/"
		keys, _, err := cb.kv.Keys(prefix, "/", (&api.QueryOptions{}).WithContext(ctx))
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			return fmt.Errorf("%w: %s", data.ErrDirectoryNotEmpty, key)
		}
	}

	_, err = cb.kv.Delete(cb.kvKey(key), (&api.WriteOptions{}).WithContext(ctx))
	return err
}

func (cb *ConsulBackend) Rename(ctx context.Context, from, to string) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	ent, err := cb.readEntry(ctx, from)
	if err != nil {
		return err
	}

	if _, err := cb.readEntry(ctx, to); err == nil {
		return fmt.Errorf("%w: %s", data.ErrExist, to)
	}

	if err := cb.requireParentDir(ctx, to); err != nil {
		return err
	}

	moves := map[string]string{from: to}
	if ent.Stat.IsDir() {
		prefix := cb.kvKey(from) + "/"
		keys, _, err := cb.kv.Keys(prefix, "", (&api.QueryOptions{}).WithContext(ctx))
		if err != nil {
			return err
		}

		for _, child := range keys {
			childPath := strings.TrimPrefix(child, cb.config.Prefix)
			moves[childPath] = to + strings.TrimPrefix(childPath, from)
		}
	}

	for src, dst := range moves {
		srcEnt, err := cb.readEntry(ctx, src)
		if err != nil {
			return err
		}

		srcEnt.Stat.Key = dst
		srcEnt.Stat.Name = path.Base(dst)

		if err := cb.writeEntry(ctx, dst, srcEnt); err != nil {
			return err
		}

		if _, err := cb.kv.Delete(cb.kvKey(src), (&api.WriteOptions{}).WithContext(ctx)); err != nil {
			return err
		}
	}

	return nil
}

func (cb *ConsulBackend) Get(ctx context.Context, key string, dst io.Writer) error {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	ent, err := cb.readEntry(ctx, key)
	if err != nil {
		return err
	}

	if ent.Stat.IsDir() {
		return fmt.Errorf("%w: %s", data.ErrIsDirectory, key)
	}

	_, err = dst.Write(ent.Content)
	return err
}

func (cb *ConsulBackend) Put(ctx context.Context, key string, src io.Reader, size int64) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if size > cb.GetCapabilities().MaxObjectSize {
		return fmt.Errorf("%w: %d bytes", data.ErrTooLarge, size)
	}

	ent, statErr := cb.readEntry(ctx, key)
	if statErr == nil && ent.Stat.IsDir() {
		return fmt.Errorf("%w: %s", data.ErrIsDirectory, key)
	}

	if statErr != nil {
		if err := cb.requireParentDir(ctx, key); err != nil {
			return err
		}
		ent = &entry{Stat: data.NewFileStat(key, 0, 0644)}
	}

	content, err := io.ReadAll(src)
	if err != nil {
		return err
	}

	ent.Content = content
	ent.Stat.Size = int64(len(content))
	ent.Stat.ModifyTime = time.Now()

	return cb.writeEntry(ctx, key, ent)
}

func (cb *ConsulBackend) Chmod(ctx context.Context, key string, mode data.FileMode) error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	ent, err := cb.readEntry(ctx, key)
	if err != nil {
		return err
	}

	ent.Stat.Mode = (ent.Stat.Mode &^ data.ModePerm) | mode.Perm()
	return cb.writeEntry(ctx, key, ent)
}

func (cb *ConsulBackend) requireParentDir(ctx context.Context, key string) error {
	parent := path.Dir(key)
	if parent == key {
		return nil
	}

	ent, err := cb.readEntry(ctx, parent)
	if err != nil {
		return fmt.Errorf("%w: parent of %s", data.ErrNotExist, key)
	}

	if !ent.Stat.IsDir() {
		return fmt.Errorf("%w: parent of %s", data.ErrNotDirectory, key)
	}

	return nil
}
