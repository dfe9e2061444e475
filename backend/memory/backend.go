package memory

import (
	"context"
	"sync"

	"github.com/mwantia/remotefs/backend"
	"github.com/mwantia/remotefs/data"
	"github.com/tidwall/btree"
)

// MemoryBackend keeps every entry in process memory. It is the primary
// test double for the node layer and a reference for the backend
// contract.
//
// Entries are indexed in a B-tree keyed by normalized path, which gives
// ordered prefix scans for listing and empty-directory checks.
type MemoryBackend struct {
	mu sync.RWMutex

	keys  *btree.Map[string, string]
	stats map[string]*data.FileStat
	datas map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		keys:  btree.NewMap[string, string](0),
		stats: make(map[string]*data.FileStat),
		datas: make(map[string][]byte),
	}
}

// Name returns the identifier name defined for this backend.
func (*MemoryBackend) Name() string {
	return "memory"
}

// Open is part of the lifecycle behaviour and gets called when opening this backend.
func (mb *MemoryBackend) Open(ctx context.Context) error {
	// Nothing to initialize - backend is ready to use
	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this backend.
func (mb *MemoryBackend) Close(ctx context.Context) error {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	mb.keys.Clear()
	for k := range mb.stats {
		delete(mb.stats, k)
	}
	for k := range mb.datas {
		delete(mb.datas, k)
	}

	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (mb *MemoryBackend) GetCapabilities() *backend.BackendCapabilities {
	return &backend.BackendCapabilities{
		Capabilities: []backend.BackendCapability{
			backend.CapabilityObjectStorage,
			backend.CapabilityPermissions,
			backend.CapabilityOwnership,
			backend.CapabilitySymlinks,
		},
		MaxObjectSize: 10485760, // 10 MB
	}
}

// SupportsNativeRenameWith accepts renames only within the same instance.
func (mb *MemoryBackend) SupportsNativeRenameWith(other backend.Backend) bool {
	o, ok := other.(*MemoryBackend)
	return ok && o == mb
}
