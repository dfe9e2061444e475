package consul

import (
	"context"
	"sync"

	"github.com/hashicorp/consul/api"
	"github.com/mwantia/remotefs/backend"
)

// ConsulBackend stores entries in the HashiCorp Consul KV store.
//
// Each entry is one KV value holding the metadata snapshot and content
// together as JSON. Consul limits values to 512KB, so this backend is
// best suited for configuration files and small assets.
type ConsulBackend struct {
	mu     sync.RWMutex
	client *api.Client
	kv     *api.KV

	config *ConsulBackendConfig
}

// ConsulBackendConfig contains configuration options for the Consul backend.
type ConsulBackendConfig struct {
	// Address of the Consul server (default: "127.0.0.1:8500")
	Address string

	// Token for Consul ACL authentication (optional)
	Token string

	// Datacenter to use (optional)
	Datacenter string

	// Prefix for all keys in Consul KV (default: "remotefs")
	Prefix string
}

// NewConsulBackend creates a new Consul-backed remote backend.
func NewConsulBackend(config *ConsulBackendConfig) (*ConsulBackend, error) {
	if config == nil {
		config = &ConsulBackendConfig{}
	}

	if config.Address == "" {
		config.Address = "127.0.0.1:8500"
	}
	if config.Prefix == "" {
		config.Prefix = "remotefs"
	}

	clientConfig := api.DefaultConfig()
	clientConfig.Address = config.Address
	if config.Token != "" {
		clientConfig.Token = config.Token
	}
	if config.Datacenter != "" {
		clientConfig.Datacenter = config.Datacenter
	}

	client, err := api.NewClient(clientConfig)
	if err != nil {
		return nil, err
	}

	return &ConsulBackend{
		client: client,
		kv:     client.KV(),
		config: config,
	}, nil
}

// Name returns the identifier name defined for this backend.
func (*ConsulBackend) Name() string {
	return "consul"
}

// Open is part of the lifecycle behaviour and gets called when opening this backend.
func (cb *ConsulBackend) Open(ctx context.Context) error {
	// Nothing to initialize - Consul handles connections
	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this backend.
func (cb *ConsulBackend) Close(ctx context.Context) error {
	// Nothing to clean up - the Consul client is stateless
	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend.
func (cb *ConsulBackend) GetCapabilities() *backend.BackendCapabilities {
	return &backend.BackendCapabilities{
		Capabilities: []backend.BackendCapability{
			backend.CapabilityObjectStorage,
			backend.CapabilityPermissions,
		},
		// Consul KV limits values to 512KB; keep headroom for the
		// metadata envelope
		MaxObjectSize: 500 * 1024,
	}
}

// SupportsNativeRenameWith accepts renames only within the same client
// and prefix.
func (cb *ConsulBackend) SupportsNativeRenameWith(other backend.Backend) bool {
	o, ok := other.(*ConsulBackend)
	return ok && o == cb
}
