//go:build !linux && !darwin && !windows && !freebsd && !openbsd

package backend

func newPlatform() Backend {
	return Unsupported{}
}
