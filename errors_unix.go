//go:build unix

package psutil

import (
	"errors"

	"golang.org/x/sys/unix"
)

func classifyOS(err error) (Kind, rule, bool) {
	switch {
	case errors.Is(err, unix.ESRCH):
		return NoSuchProcess, ruleRefineZombie, true
	case errors.Is(err, unix.EINVAL):
		return InvalidArgument, ruleUnlessGone, true
	case errors.Is(err, unix.ENOSYS), errors.Is(err, unix.EOPNOTSUPP):
		return UnsupportedOnPlatform, ruleFinal, true
	}
	return Unclassified, ruleFinal, false
}
