package ftp

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/mwantia/remotefs/backend"
	"github.com/mwantia/remotefs/data"
)

// FTPBackend implements the backend contract over one FTP/FTPS control
// connection. The protocol allows a single transfer per connection, so
// every operation holds the session mutex for its full duration.
//
// Connection pooling, retry and timeouts beyond the dial timeout are
// out of scope here; callers see whatever failure the server reports.
type FTPBackend struct {
	mu   sync.Mutex
	conn *ftp.ServerConn
	done chan struct{}

	config *Config
}

// Config contains the connection values for an FTP server.
type Config struct {
	// Address of the FTP server (default: port 21)
	Host string
	Port int

	User     string
	Password string

	// ExplicitTLS upgrades the connection with AUTH TLS after connect.
	ExplicitTLS bool
	TLSConfig   *tls.Config

	// DialTimeout bounds the initial connect (default: 10s).
	DialTimeout time.Duration

	// KeepAlive is the NOOP interval holding the control connection
	// open between operations (default: 60s).
	KeepAlive time.Duration
}

// NewFTPBackend creates an FTP backend from the given config.
// The connection is established in Open.
func NewFTPBackend(config *Config) (*FTPBackend, error) {
	if config == nil || config.Host == "" {
		return nil, fmt.Errorf("%w: missing host", data.ErrInvalid)
	}

	if config.Port == 0 {
		config.Port = 21
	}
	if config.DialTimeout == 0 {
		config.DialTimeout = 10 * time.Second
	}
	if config.KeepAlive == 0 {
		config.KeepAlive = 60 * time.Second
	}

	return &FTPBackend{
		config: config,
	}, nil
}

// Name returns the identifier name defined for this backend.
func (*FTPBackend) Name() string {
	return "ftp"
}

// Open dials the control connection, authenticates and starts the
// keep-alive loop.
func (fb *FTPBackend) Open(ctx context.Context) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	addr := fmt.Sprintf("%s:%d", fb.config.Host, fb.config.Port)

	opts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(fb.config.DialTimeout),
	}

	if fb.config.ExplicitTLS {
		tlsConfig := fb.config.TLSConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{ServerName: fb.config.Host}
		}
		opts = append(opts, ftp.DialWithExplicitTLS(tlsConfig))
	}

	conn, err := ftp.Dial(addr, opts...)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", data.ErrBackendFailed, addr, err)
	}

	if err := conn.Login(fb.config.User, fb.config.Password); err != nil {
		conn.Quit()
		return fmt.Errorf("%w: login: %v", data.ErrBackendFailed, err)
	}

	fb.conn = conn
	fb.done = make(chan struct{})
	go fb.keepAlive()

	return nil
}

// Close stops the keep-alive loop and quits the session.
func (fb *FTPBackend) Close(ctx context.Context) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	if fb.conn == nil {
		return nil
	}

	close(fb.done)
	err := fb.conn.Quit()
	fb.conn = nil

	return err
}

func (fb *FTPBackend) keepAlive() {
	ticker := time.NewTicker(fb.config.KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fb.mu.Lock()
			if fb.conn != nil {
				fb.conn.NoOp()
			}
			fb.mu.Unlock()
		case <-fb.done:
			return
		}
	}
}

// GetCapabilities returns a list of capabilities supported by this backend.
// Permission, ownership and timestamp mutation have no portable FTP
// primitive and stay unlisted.
func (fb *FTPBackend) GetCapabilities() *backend.BackendCapabilities {
	return &backend.BackendCapabilities{
		Capabilities: []backend.BackendCapability{
			backend.CapabilityObjectStorage,
			backend.CapabilitySymlinks,
			backend.CapabilityStreaming,
		},
	}
}

// SupportsNativeRenameWith accepts renames only within the same session;
// RNFR/RNTO cannot cross servers.
func (fb *FTPBackend) SupportsNativeRenameWith(other backend.Backend) bool {
	o, ok := other.(*FTPBackend)
	return ok && o == fb
}
