//go:build windows

package netconn

import "golang.org/x/sys/windows"

const (
	familyInet  = uint32(windows.AF_INET)
	familyInet6 = uint32(windows.AF_INET6)
	familyUnix  = uint32(windows.AF_UNIX)
	sockStream  = uint32(windows.SOCK_STREAM)
	sockDgram   = uint32(windows.SOCK_DGRAM)
)
