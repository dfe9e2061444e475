package sqlite

import (
	"context"
	"database/sql"
	"sync"

	"github.com/mwantia/remotefs/backend"
	"github.com/tidwall/btree"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteBackend persists entries in SQLite with a two-layer layout:
//
// Layer 1: In-memory B-tree for ordered key lookups and prefix scans
// Layer 2: SQLite table (remote_entries) holding metadata and content
//
// The B-tree is rebuilt from the table in Open, so a database file can
// be reopened across processes.
type SQLiteBackend struct {
	mu sync.RWMutex
	db *sql.DB

	keys *btree.Map[string, string]
}

// NewSQLiteBackend creates a new SQLite-backed remote backend.
// The dbPath can be ":memory:" for an in-memory database or a file path.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}

	sb := &SQLiteBackend{
		db:   db,
		keys: btree.NewMap[string, string](0),
	}

	if err := sb.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return sb, nil
}

func (sb *SQLiteBackend) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS remote_entries (
		key TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		mode INTEGER NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		owner TEXT NOT NULL DEFAULT '',
		grp TEXT NOT NULL DEFAULT '',
		link_target TEXT NOT NULL DEFAULT '',
		modify_time INTEGER NOT NULL,
		content BLOB
	);
	CREATE INDEX IF NOT EXISTS idx_remote_entries_key ON remote_entries(key);
	`

	_, err := sb.db.Exec(schema)
	return err
}

// Name returns the identifier name defined for this backend.
func (*SQLiteBackend) Name() string {
	return "sqlite"
}

// Open verifies the connection and loads all keys into the B-tree.
func (sb *SQLiteBackend) Open(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	if err := sb.db.PingContext(ctx); err != nil {
		return err
	}

	rows, err := sb.db.QueryContext(ctx, "SELECT key FROM remote_entries")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return err
		}
		sb.keys.Set(key, key)
	}

	return rows.Err()
}

// Close closes the database handle.
func (sb *SQLiteBackend) Close(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	sb.keys.Clear()
	return sb.db.Close()
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (sb *SQLiteBackend) GetCapabilities() *backend.BackendCapabilities {
	return &backend.BackendCapabilities{
		Capabilities: []backend.BackendCapability{
			backend.CapabilityObjectStorage,
			backend.CapabilityPermissions,
			backend.CapabilityOwnership,
			backend.CapabilitySymlinks,
		},
	}
}

// SupportsNativeRenameWith accepts renames only within the same database.
func (sb *SQLiteBackend) SupportsNativeRenameWith(other backend.Backend) bool {
	o, ok := other.(*SQLiteBackend)
	return ok && o == sb
}
