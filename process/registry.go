package process

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math"
	"sync"
	"time"

	psutil "github.com/reugn/go-psutil"
	"github.com/reugn/go-psutil/backend"
)

// Registry enumerates processes and builds Process handles bound to one
// backend. A Registry holds no mutable state and is safe for concurrent use.
type Registry struct {
	b         backend.Backend
	config    Config
	tolerance float64
	logger    *slog.Logger
}

// NewRegistry returns a new Registry. A nil backend selects backend.Default(),
// a nil config selects DefaultConfig() and a nil logger slog.Default().
func NewRegistry(b backend.Backend, config *Config, logger *slog.Logger) (*Registry, error) {
	if b == nil {
		b = backend.Default()
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.Group("process",
		slog.String("platform", b.Platform())))

	tolerance := config.CreateTimeTolerance
	if tolerance == 0 {
		tolerance = max(b.CreateTimeResolution(), time.Millisecond)
	}

	return &Registry{
		b:         b,
		config:    *config,
		tolerance: tolerance.Seconds(),
		logger:    logger,
	}, nil
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(nil, nil, nil)
	if err != nil {
		panic(fmt.Sprintf("process: default registry: %v", err))
	}
	return r
})

// Default returns the registry bound to the backend of the running OS.
func Default() *Registry {
	return defaultRegistry()
}

// Backend returns the backend r dispatches to.
func (r *Registry) Backend() backend.Backend {
	return r.b
}

func (r *Registry) unsupported(op string, pid int32) error {
	return psutil.NewError(psutil.UnsupportedOnPlatform, op, pid, nil)
}

// Pids returns the pids currently visible to the caller, in ascending order.
// Every call enumerates afresh.
func (r *Registry) Pids(ctx context.Context) ([]int32, error) {
	if !r.b.Supports(backend.CapPids) {
		return nil, r.unsupported("pids", 0)
	}
	pids, err := r.b.Pids(ctx)
	if err != nil {
		return nil, psutil.Translate("pids", 0, err, nil)
	}
	return pids, nil
}

// PidExists reports whether pid denotes a live process. It is always false
// for pids <= 0.
func (r *Registry) PidExists(ctx context.Context, pid int32) (bool, error) {
	if pid <= 0 {
		return false, nil
	}
	if !r.b.Supports(backend.CapPids) {
		return false, r.unsupported("pid_exists", pid)
	}
	exists, err := r.b.PidExists(ctx, pid)
	if err != nil {
		return false, psutil.Translate("pid_exists", pid, err, nil)
	}
	return exists, nil
}

// NewProcess returns a handle to the live process pid, fingerprinted by its
// create time. It fails with NoSuchProcess if pid does not exist and with
// InvalidArgument if pid is negative.
func (r *Registry) NewProcess(ctx context.Context, pid int32) (*Process, error) {
	const op = "process"
	switch {
	case pid < 0:
		return nil, psutil.NewError(psutil.InvalidArgument, op, pid,
			fmt.Errorf("pid must be a positive integer"))
	case pid == 0:
		return nil, psutil.NewError(psutil.NoSuchProcess, op, pid, nil)
	case !r.b.Supports(backend.CapIdentity):
		return nil, r.unsupported(op, pid)
	}

	id, err := r.b.Identity(ctx, pid)
	if err != nil {
		return nil, psutil.Translate(op, pid, err, r.prober(ctx, pid, 0))
	}
	if id.Status == backend.StatusDead {
		return nil, psutil.NewError(psutil.NoSuchProcess, op, pid, nil)
	}
	return &Process{pid: pid, createTime: id.CreateTime, reg: r}, nil
}

// Processes yields a handle for every visible process. Processes that
// vanish between enumeration and construction are skipped, as are
// processes whose create time the caller may not read, since no handle
// can be fingerprinted without it. Any other failure is yielded and
// iteration continues.
func (r *Registry) Processes(ctx context.Context) iter.Seq2[*Process, error] {
	return func(yield func(*Process, error) bool) {
		pids, err := r.Pids(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, pid := range pids {
			if pid <= 0 {
				continue
			}
			p, err := r.NewProcess(ctx, pid)
			if err != nil {
				switch {
				case errors.Is(err, psutil.NoSuchProcess):
					r.logger.Debug("Skipping vanished process", slog.Int("pid", int(pid)))
					continue
				case errors.Is(err, psutil.AccessDenied):
					r.logger.Debug("Skipping inaccessible process", slog.Int("pid", int(pid)))
					continue
				}
				if !yield(nil, err) {
					return
				}
				continue
			}
			if !yield(p, nil) {
				return
			}
		}
	}
}

func (r *Registry) sameTime(a, b float64) bool {
	return math.Abs(a-b) <= r.tolerance
}

// presence is the fallback existence check. A non-zero createTime also
// detects pid reuse.
func (r *Registry) presence(ctx context.Context, pid int32, createTime float64) psutil.Presence {
	exists, err := r.b.PidExists(ctx, pid)
	if err != nil {
		return psutil.Unknown
	}
	if !exists {
		return psutil.Gone
	}
	id, err := r.b.Identity(ctx, pid)
	if err != nil {
		return psutil.Unknown
	}
	if createTime != 0 && !r.sameTime(id.CreateTime, createTime) {
		return psutil.Gone
	}
	switch id.Status {
	case backend.StatusZombie:
		return psutil.Zombie
	case backend.StatusDead:
		return psutil.Gone
	default:
		return psutil.Alive
	}
}

func (r *Registry) prober(ctx context.Context, pid int32, createTime float64) psutil.Prober {
	return func() psutil.Presence {
		return r.presence(ctx, pid, createTime)
	}
}

// Pids returns the visible pids using the default registry.
func Pids(ctx context.Context) ([]int32, error) {
	return Default().Pids(ctx)
}

// PidExists reports whether pid exists using the default registry.
func PidExists(ctx context.Context, pid int32) (bool, error) {
	return Default().PidExists(ctx, pid)
}

// NewProcess returns a handle to pid using the default registry.
func NewProcess(ctx context.Context, pid int32) (*Process, error) {
	return Default().NewProcess(ctx, pid)
}

// Processes iterates over all processes using the default registry.
func Processes(ctx context.Context) iter.Seq2[*Process, error] {
	return Default().Processes(ctx)
}
