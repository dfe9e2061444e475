package data

import "errors"

// Standard errors that Backend implementations should use.
// Callers match them with errors.Is after arbitrary wrapping.
var (
	// Path errors
	ErrInvalidPath = errors.New("remotefs: invalid path detected")

	// File operation errors
	ErrNotExist          = errors.New("remotefs: file does not exist")
	ErrExist             = errors.New("remotefs: file already exists")
	ErrIsDirectory       = errors.New("remotefs: is a directory")
	ErrNotDirectory      = errors.New("remotefs: not a directory")
	ErrPermission        = errors.New("remotefs: permission denied")
	ErrDirectoryNotEmpty = errors.New("remotefs: directory not empty")

	// ErrUnsupported marks operations the backend will never provide,
	// as opposed to a transient backend failure that may clear on retry.
	ErrUnsupported = errors.New("remotefs: operation not supported by backend")

	// I/O errors
	ErrClosed  = errors.New("remotefs: file already closed")
	ErrInvalid = errors.New("remotefs: invalid argument")

	// Backend lifecycle errors
	ErrBackendFailed = errors.New("remotefs: backend initialization failed")
	ErrTooLarge      = errors.New("remotefs: object exceeds backend size limit")
)
