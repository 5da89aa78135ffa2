//go:build windows

package psutil

import (
	"errors"

	"golang.org/x/sys/windows"
)

func classifyOS(err error) (Kind, rule, bool) {
	switch {
	// OpenProcess reports a missing pid as an invalid parameter.
	case errors.Is(err, windows.ERROR_INVALID_PARAMETER):
		return InvalidArgument, ruleUnlessGone, true
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return AccessDenied, ruleUnlessGone, true
	case errors.Is(err, windows.ERROR_NOT_SUPPORTED),
		errors.Is(err, windows.ERROR_CALL_NOT_IMPLEMENTED):
		return UnsupportedOnPlatform, ruleFinal, true
	}
	return Unclassified, ruleFinal, false
}
