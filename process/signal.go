package process

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	psutil "github.com/reugn/go-psutil"
	"github.com/reugn/go-psutil/backend"
	"github.com/reugn/go-psutil/util"
)

// SendSignal delivers sig to the process. A process that is gone or whose
// pid was reused fails with NoSuchProcess.
func (p *Process) SendSignal(ctx context.Context, sig backend.Signal) error {
	a := attr{op: sig.String(), cap: backend.CapSignal, zombie: true, ends: true}
	return do(ctx, p, a, func(ctx context.Context, pid int32) error {
		return p.reg.b.SendSignal(ctx, pid, sig)
	})
}

// Kill forcibly stops the process.
func (p *Process) Kill(ctx context.Context) error {
	return p.SendSignal(ctx, backend.SignalKill)
}

// Terminate asks the process to stop.
func (p *Process) Terminate(ctx context.Context) error {
	return p.SendSignal(ctx, backend.SignalTerminate)
}

func (p *Process) Suspend(ctx context.Context) error {
	return p.SendSignal(ctx, backend.SignalSuspend)
}

func (p *Process) Resume(ctx context.Context) error {
	return p.SendSignal(ctx, backend.SignalResume)
}

// Wait blocks until the process terminates and returns its exit status.
// A zero timeout waits indefinitely; otherwise Wait fails with
// TimeoutExpired once timeout elapses. If the process is already gone, or
// its pid now belongs to another process, Wait returns immediately with a
// status whose Known field is false. The exit code is only known for
// children of the caller, and on Windows.
func (p *Process) Wait(ctx context.Context, timeout time.Duration) (backend.ExitStatus, error) {
	const op = "wait"
	if timeout < 0 {
		return backend.ExitStatus{}, psutil.NewError(psutil.InvalidArgument, op, p.pid,
			fmt.Errorf("negative timeout %v", timeout))
	}
	if !p.reg.b.Supports(backend.CapReap) {
		return backend.ExitStatus{}, p.reg.unsupported(op, p.pid)
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	bo := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(p.reg.config.WaitMinInterval),
		backoff.WithMaxInterval(p.reg.config.WaitMaxInterval),
		backoff.WithMultiplier(2),
		backoff.WithRandomizationFactor(0),
		backoff.WithMaxElapsedTime(0),
	)

	for {
		if _, err := p.identity(ctx, op); err != nil {
			if errors.Is(err, psutil.NoSuchProcess) {
				return backend.ExitStatus{}, nil
			}
			return backend.ExitStatus{}, err
		}

		status, done, err := p.reg.b.Reap(ctx, p.pid)
		if err != nil {
			err = p.translate(ctx, op, err)
			if errors.Is(err, psutil.NoSuchProcess) {
				return backend.ExitStatus{}, nil
			}
			return backend.ExitStatus{}, err
		}
		if done {
			return status, nil
		}

		next := bo.NextBackOff()
		if !deadline.IsZero() {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				return backend.ExitStatus{}, psutil.NewError(psutil.TimeoutExpired, op, p.pid,
					fmt.Errorf("process still running after %v", timeout))
			}
			next = min(next, remaining)
		}
		if err := util.Sleep(ctx, next); err != nil {
			return backend.ExitStatus{}, psutil.Translate(op, p.pid, err, nil)
		}
	}
}
