//go:build linux || darwin || freebsd || openbsd

package backend

import (
	"context"
	"errors"

	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sys/unix"
)

func (b *gopsutilBackend) SetNice(_ context.Context, pid int32, value int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, int(pid), value)
}

// Reap polls wait4 with WNOHANG. For a process that is not a child of the
// caller only its disappearance can be observed, and the exit code is lost.
func (b *gopsutilBackend) Reap(ctx context.Context, pid int32) (ExitStatus, bool, error) {
	var ws unix.WaitStatus
	wpid, err := unix.Wait4(int(pid), &ws, unix.WNOHANG, nil)
	switch {
	case errors.Is(err, unix.EINTR):
		return ExitStatus{}, false, nil
	case errors.Is(err, unix.ECHILD):
		exists, err := process.PidExistsWithContext(ctx, pid)
		if err != nil {
			return ExitStatus{}, false, err
		}
		return ExitStatus{}, !exists, nil
	case err != nil:
		return ExitStatus{}, false, err
	case wpid == 0:
		return ExitStatus{}, false, nil
	}

	switch {
	case ws.Exited():
		return ExitStatus{Code: ws.ExitStatus(), Known: true}, true, nil
	case ws.Signaled():
		return ExitStatus{Code: -int(ws.Signal()), Known: true}, true, nil
	default:
		return ExitStatus{}, false, nil
	}
}
