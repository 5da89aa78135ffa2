//go:build unix

package netconn

import "golang.org/x/sys/unix"

const (
	familyInet  = uint32(unix.AF_INET)
	familyInet6 = uint32(unix.AF_INET6)
	familyUnix  = uint32(unix.AF_UNIX)
	sockStream  = uint32(unix.SOCK_STREAM)
	sockDgram   = uint32(unix.SOCK_DGRAM)
)
