package netconn

import (
	"context"
	"errors"
	"log/slog"

	psutil "github.com/reugn/go-psutil"
	"github.com/reugn/go-psutil/backend"
)

const opConnections = "net_connections"

// Enumerator lists the open network endpoints of every visible process.
type Enumerator struct {
	b      backend.Backend
	logger *slog.Logger
}

// NewEnumerator returns a new Enumerator over b. A nil logger means
// slog.Default().
func NewEnumerator(b backend.Backend, logger *slog.Logger) *Enumerator {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.Group("netconn",
		slog.String("platform", b.Platform())))

	return &Enumerator{
		b:      b,
		logger: logger,
	}
}

// Connections returns the system-wide endpoints matching kind.
//
// When the backend offers a system-wide listing, entries it cannot
// attribute for lack of privilege are omitted by the backend, and an
// AccessDenied failure means the platform refuses the listing as a whole.
// Otherwise the listing is assembled per process, skipping processes that
// vanish or deny access.
func (e *Enumerator) Connections(ctx context.Context, kind Kind) ([]Record, error) {
	if _, ok := kinds[kind]; !ok {
		_, err := ParseKind(string(kind))
		return nil, err
	}

	if e.b.Supports(backend.CapConnections) {
		conns, err := e.b.Connections(ctx, string(kind))
		if err != nil {
			return nil, psutil.Translate(opConnections, 0, err, nil)
		}
		return Filter(conns, kind), nil
	}

	if !e.b.Supports(backend.CapPids) || !e.b.Supports(backend.CapProcessConnections) {
		return nil, psutil.NewError(psutil.UnsupportedOnPlatform, opConnections, 0, nil)
	}
	return e.aggregate(ctx, kind)
}

func (e *Enumerator) aggregate(ctx context.Context, kind Kind) ([]Record, error) {
	pids, err := e.b.Pids(ctx)
	if err != nil {
		return nil, psutil.Translate(opConnections, 0, err, nil)
	}

	var out []Record
	for _, pid := range pids {
		conns, err := e.b.ProcessConnections(ctx, pid, string(kind))
		if err != nil {
			err = psutil.Translate(opConnections, pid, err, e.existence(ctx, pid))
			if skippable(err) {
				e.logger.Debug("Skipping process",
					slog.Int("pid", int(pid)),
					slog.Any("error", err))
				continue
			}
			return nil, err
		}
		out = append(out, Filter(conns, kind)...)
	}
	return out, nil
}

func (e *Enumerator) existence(ctx context.Context, pid int32) psutil.Prober {
	return func() psutil.Presence {
		exists, err := e.b.PidExists(ctx, pid)
		switch {
		case err != nil:
			return psutil.Unknown
		case !exists:
			return psutil.Gone
		default:
			return psutil.Alive
		}
	}
}

func skippable(err error) bool {
	return errors.Is(err, psutil.NoSuchProcess) ||
		errors.Is(err, psutil.ZombieProcess) ||
		errors.Is(err, psutil.AccessDenied)
}
