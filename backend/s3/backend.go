package s3

import (
	"context"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/mwantia/remotefs/backend"
	"github.com/mwantia/remotefs/data"
)

// S3Backend stores entries as objects in one bucket. Directories exist
// as zero-byte marker objects with a trailing slash and the
// "application/x-directory" content type.
type S3Backend struct {
	mu sync.RWMutex

	client     *minio.Client
	bucketName string
}

func NewS3Backend(endpoint, bucketName, accessKey, secretKey string, useSsl bool) (*S3Backend, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSsl,
	})
	if err != nil {
		return nil, err
	}

	return &S3Backend{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// Name returns the identifier name defined for this backend.
func (*S3Backend) Name() string {
	return "s3"
}

// Open verifies that the configured bucket exists.
func (sb *S3Backend) Open(ctx context.Context) error {
	sb.mu.Lock()
	defer sb.mu.Unlock()

	exists, err := sb.client.BucketExists(ctx, sb.bucketName)
	if err != nil {
		return err
	}

	if !exists {
		return data.ErrBackendFailed
	}

	return nil
}

// Close is part of the lifecycle behaviour and gets called when closing this backend.
func (sb *S3Backend) Close(ctx context.Context) error {
	// Nothing to clean up - the client is stateless
	return nil
}

// GetCapabilities returns a list of capabilities supported by this backend.
// Object stores carry no permission bits, so chmod stays unlisted.
func (sb *S3Backend) GetCapabilities() *backend.BackendCapabilities {
	return &backend.BackendCapabilities{
		Capabilities: []backend.BackendCapability{
			backend.CapabilityObjectStorage,
			backend.CapabilityStreaming,
		},
	}
}

// SupportsNativeRenameWith accepts renames only within the same client
// and bucket, where server-side copy applies.
func (sb *S3Backend) SupportsNativeRenameWith(other backend.Backend) bool {
	o, ok := other.(*S3Backend)
	return ok && o == sb
}
