package remotefs

import (
	"github.com/mwantia/remotefs/log"
	"github.com/mwantia/remotefs/staging"
)

type Options struct {
	LogLevel      log.LogLevel
	LogFile       string
	NoTerminalLog bool

	Staging     staging.Provider
	Endpoint    *Endpoint
	URLProvider PublicURLProvider
}

type Option func(*Options) error

func newDefaultOptions() *Options {
	return &Options{
		LogLevel: log.Info,
		Staging:  staging.NewLocalProvider(""),
	}
}

func WithLogLevel(level log.LogLevel) Option {
	return func(opts *Options) error {
		opts.LogLevel = level
		return nil
	}
}

func WithLogFile(logFile string) Option {
	return func(opts *Options) error {
		opts.LogFile = logFile
		return nil
	}
}

func WithoutTerminalLog() Option {
	return func(opts *Options) error {
		opts.NoTerminalLog = true
		return nil
	}
}

// WithStaging overrides the staging filesystem used for content transfer.
func WithStaging(provider staging.Provider) Option {
	return func(opts *Options) error {
		opts.Staging = provider
		return nil
	}
}

// WithEndpoint sets the endpoint used for URL rendering.
func WithEndpoint(endpoint Endpoint) Option {
	return func(opts *Options) error {
		opts.Endpoint = &endpoint
		return nil
	}
}

// WithPublicURLProvider sets the provider consulted by Node.PublicURL.
func WithPublicURLProvider(provider PublicURLProvider) Option {
	return func(opts *Options) error {
		opts.URLProvider = provider
		return nil
	}
}
