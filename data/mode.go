package data

// FileMode represents file mode and permission bits.
// It follows Unix file mode conventions with type and permission bits.
type FileMode uint32

// File mode constants for type and permission bits.
// These match Unix file mode semantics.
const (
	// Type bits
	ModeDir     FileMode = 1 << 31 // d: directory
	ModeSymlink FileMode = 1 << 30 // L: symbolic link

	// Permission bits
	ModePerm FileMode = 0777 // Unix permission bits

	// Permission masks across owner, group and other
	MaskRead    FileMode = 0444
	MaskWrite   FileMode = 0222
	MaskExecute FileMode = 0111
)

// IsDir reports whether m describes a directory.
func (m FileMode) IsDir() bool {
	return m&ModeDir != 0
}

// IsSymlink reports whether m describes a symbolic link.
func (m FileMode) IsSymlink() bool {
	return m&ModeSymlink != 0
}

// IsRegular reports whether m describes a regular file.
// A regular file has no type bits set.
func (m FileMode) IsRegular() bool {
	return m&(ModeDir|ModeSymlink) == 0
}

// Perm returns the Unix permission bits in m (the lower 9 bits).
func (m FileMode) Perm() FileMode {
	return m & ModePerm
}

// CanRead reports whether any of the owner, group or other read bits are set.
func (m FileMode) CanRead() bool {
	return m&MaskRead != 0
}

// CanWrite reports whether any of the owner, group or other write bits are set.
func (m FileMode) CanWrite() bool {
	return m&MaskWrite != 0
}

// CanExecute reports whether any of the owner, group or other execute bits are set.
func (m FileMode) CanExecute() bool {
	return m&MaskExecute != 0
}

// String returns a textual representation of the mode in Unix ls -l format.
// Example: "drwxr-xr-x" for a directory with 755 permissions.
func (m FileMode) String() string {
	var buf [10]byte
	w := 0

	switch {
	case m.IsDir():
		buf[w] = 'd'
	case m.IsSymlink():
		buf[w] = 'l'
	default:
		buf[w] = '-'
	}
	w++

	const rwx = "rwxrwxrwx"
	for i, c := range rwx {
		if m&(1<<uint(9-1-i)) != 0 {
			buf[w] = byte(c)
		} else {
			buf[w] = '-'
		}
		w++
	}

	return string(buf[:w])
}
