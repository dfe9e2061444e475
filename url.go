package remotefs

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// ErrNoURLProvider is returned by Node.PublicURL when no provider
// was configured. A missing provider is a hard failure, not a
// best-effort guess at a public address.
var ErrNoURLProvider = errors.New("remotefs: no public url provider configured")

// ErrNoEndpoint is returned when URL rendering is requested without
// a configured endpoint.
var ErrNoEndpoint = errors.New("remotefs: no endpoint configured")

// Endpoint carries the connection values needed to render backend URLs.
type Endpoint struct {
	Host     string
	Port     int
	User     string
	Password string

	// Secure selects the TLS variant of the protocol scheme.
	Secure bool

	// BasePath is prepended to every entry path when rendering URLs.
	BasePath string

	// ShowPassword renders the real password in public URLs.
	// When false the password is masked as "***".
	ShowPassword bool
}

// Scheme returns the protocol identifier, secure variant when TLS is set.
func (e *Endpoint) Scheme() string {
	if e.Secure {
		return "ftps"
	}

	return "ftp"
}

// render builds scheme://[user[:password]@]host[:port]/basePath/entryPath.
func (e *Endpoint) render(entryPath string, maskPassword bool) string {
	host := e.Host
	if e.Port != 0 {
		host = fmt.Sprintf("%s:%d", e.Host, e.Port)
	}

	u := url.URL{
		Scheme: e.Scheme(),
		Host:   host,
		Path:   path.Join("/", e.BasePath, entryPath),
	}

	if e.User != "" {
		switch {
		case e.Password == "":
			u.User = url.User(e.User)
		case maskPassword:
			// url.URL percent-encodes the mask to %2A%2A%2A, so the
			// literal is spliced in after rendering. The encoded user
			// cannot contain a raw "@", making the first one the
			// userinfo separator.
			u.User = url.User(e.User)
			return strings.Replace(u.String(), "@", ":***@", 1)
		default:
			u.User = url.UserPassword(e.User, e.Password)
		}
	}

	return u.String()
}

// PublicURLProvider resolves the public-facing address of a node for
// deployments where it differs from the backend address.
type PublicURLProvider interface {
	Resolve(node *Node) (string, error)
}

// MaskedURLProvider renders the backend URL of the node with the
// password masked unless the endpoint explicitly shows it.
type MaskedURLProvider struct{}

func (MaskedURLProvider) Resolve(node *Node) (string, error) {
	endpoint := node.fs.endpoint
	if endpoint == nil {
		return "", ErrNoEndpoint
	}

	return endpoint.render(node.path, !endpoint.ShowPassword), nil
}

// RealURL renders the fully-qualified backend URL including credentials
// in clear text. It is intended for backend consumption when building
// stream URLs, never for display.
func (n *Node) RealURL() (string, error) {
	if n.fs.endpoint == nil {
		return "", ErrNoEndpoint
	}

	return n.fs.endpoint.render(n.path, false), nil
}

// PublicURL delegates to the configured PublicURLProvider.
// Returns ErrNoURLProvider when none is configured.
func (n *Node) PublicURL() (string, error) {
	if n.fs.urls == nil {
		return "", ErrNoURLProvider
	}

	return n.fs.urls.Resolve(n)
}
