//go:build !unix && !windows

package netconn

// Linux numbering; no backend reports connections on these platforms.
const (
	familyInet  uint32 = 2
	familyInet6 uint32 = 10
	familyUnix  uint32 = 1
	sockStream  uint32 = 1
	sockDgram   uint32 = 2
)
