//go:build linux

package process

import "golang.org/x/sys/unix"

// Resource ids accepted by Rlimit and SetRlimit.
const (
	RlimitCPU        = unix.RLIMIT_CPU
	RlimitFsize      = unix.RLIMIT_FSIZE
	RlimitData       = unix.RLIMIT_DATA
	RlimitStack      = unix.RLIMIT_STACK
	RlimitCore       = unix.RLIMIT_CORE
	RlimitRSS        = unix.RLIMIT_RSS
	RlimitNproc      = unix.RLIMIT_NPROC
	RlimitNofile     = unix.RLIMIT_NOFILE
	RlimitMemlock    = unix.RLIMIT_MEMLOCK
	RlimitAS         = unix.RLIMIT_AS
	RlimitLocks      = unix.RLIMIT_LOCKS
	RlimitSigpending = unix.RLIMIT_SIGPENDING
	RlimitMsgqueue   = unix.RLIMIT_MSGQUEUE
	RlimitNice       = unix.RLIMIT_NICE
	RlimitRtprio     = unix.RLIMIT_RTPRIO
	RlimitRttime     = unix.RLIMIT_RTTIME
)
