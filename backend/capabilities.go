package backend

import "slices"

// BackendCapability represents a capability that a backend can provide.
type BackendCapability string

const (
	// Core capability shared by every backend
	CapabilityObjectStorage BackendCapability = "object_storage"

	// Optional capabilities gated per backend
	CapabilityPermissions BackendCapability = "permissions"
	CapabilityOwnership   BackendCapability = "ownership"
	CapabilityTimestamps  BackendCapability = "timestamps"
	CapabilitySymlinks    BackendCapability = "symlinks"
	CapabilityStreaming   BackendCapability = "streaming"
)

// BackendCapabilities describes what a backend supports.
type BackendCapabilities struct {
	Capabilities  []BackendCapability `json:"capabilities"`
	MaxObjectSize int64               `json:"max_object_size"`
}

// Contains checks if a capability is supported.
func (bc *BackendCapabilities) Contains(cap BackendCapability) bool {
	return slices.Contains(bc.Capabilities, cap)
}
