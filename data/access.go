package data

// AccessMode represents file access modes for opening files.
// These modes control how files are opened and can be combined
// using bitwise OR.
type AccessMode int

const (
	AccessModeRead   AccessMode = 1 << iota // open for reading
	AccessModeWrite                         // open for writing
	AccessModeAppend                        // append to file
	AccessModeCreate                        // create if not exists
	AccessModeTrunc                         // truncate on open
)

// CanRead checks if the mode allows reading.
func (m AccessMode) CanRead() bool {
	return m&AccessModeRead != 0
}

// CanWrite checks if the mode allows writing.
func (m AccessMode) CanWrite() bool {
	return m&(AccessModeWrite|AccessModeAppend) != 0
}

// HasAppend checks if the mode includes append.
func (m AccessMode) HasAppend() bool {
	return m&AccessModeAppend != 0
}

// HasCreate checks if the mode includes create.
func (m AccessMode) HasCreate() bool {
	return m&AccessModeCreate != 0
}

// HasTrunc checks if the mode includes truncate.
func (m AccessMode) HasTrunc() bool {
	return m&AccessModeTrunc != 0
}
