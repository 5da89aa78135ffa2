//go:build unix

package netconn_test

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	psutil "github.com/reugn/go-psutil"
	"github.com/reugn/go-psutil/backend"
	"github.com/reugn/go-psutil/internal/assert"
	"github.com/reugn/go-psutil/netconn"
)

type fakeBackend struct {
	backend.Unsupported
	caps      backend.Capabilities
	pids      []int32
	alive     map[int32]bool
	perPid    map[int32][]netconn.Record
	perPidErr map[int32]error
	system    []netconn.Record
	systemErr error
}

func (f *fakeBackend) Platform() string { return "fake" }

func (f *fakeBackend) Supports(c backend.Capability) bool { return f.caps.Has(c) }

func (f *fakeBackend) Pids(context.Context) ([]int32, error) { return f.pids, nil }

func (f *fakeBackend) PidExists(_ context.Context, pid int32) (bool, error) {
	return f.alive[pid], nil
}

func (f *fakeBackend) ProcessConnections(_ context.Context, pid int32, _ string) ([]netconn.Record, error) {
	if err := f.perPidErr[pid]; err != nil {
		return nil, err
	}
	return f.perPid[pid], nil
}

func (f *fakeBackend) Connections(context.Context, string) ([]netconn.Record, error) {
	return f.system, f.systemErr
}

func perPidBackend() *fakeBackend {
	return &fakeBackend{
		caps:  backend.NewCapabilities(backend.CapPids, backend.CapProcessConnections),
		pids:  []int32{10, 11, 12, 13, 14},
		alive: map[int32]bool{10: true, 11: true, 12: true, 13: true},
		perPid: map[int32][]netconn.Record{
			10: {tcp4, tcp6},
			11: {udp4, udp6},
			12: {sock},
		},
		perPidErr: map[int32]error{
			13: fs.ErrPermission,
			14: fs.ErrNotExist,
		},
	}
}

func TestEnumerator_SystemWide(t *testing.T) {
	b := &fakeBackend{
		caps:   backend.NewCapabilities(backend.CapConnections),
		system: records,
	}
	e := netconn.NewEnumerator(b, nil)

	conns, err := e.Connections(context.Background(), netconn.KindTCP)
	assert.NoError(t, err)
	assert.Equal(t, []netconn.Record{tcp4, tcp6}, conns)

	conns, err = e.Connections(context.Background(), netconn.KindAll)
	assert.NoError(t, err)
	assert.Equal(t, records, conns)
}

func TestEnumerator_SystemWideAccessDenied(t *testing.T) {
	b := &fakeBackend{
		caps:      backend.NewCapabilities(backend.CapConnections),
		systemErr: fs.ErrPermission,
	}
	_, err := netconn.NewEnumerator(b, nil).Connections(context.Background(), netconn.KindAll)
	assert.ErrorIs(t, err, psutil.AccessDenied)
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestEnumerator_Aggregate(t *testing.T) {
	e := netconn.NewEnumerator(perPidBackend(), nil)

	conns, err := e.Connections(context.Background(), netconn.KindAll)
	assert.NoError(t, err)
	assert.Equal(t, records, conns)

	conns, err = e.Connections(context.Background(), netconn.KindUDP)
	assert.NoError(t, err)
	assert.Equal(t, []netconn.Record{udp4, udp6}, conns)
}

func TestEnumerator_AggregateFailure(t *testing.T) {
	b := perPidBackend()
	boom := errors.New("boom")
	b.pids = append(b.pids, 15)
	b.alive[15] = true
	b.perPidErr[15] = boom

	_, err := netconn.NewEnumerator(b, nil).Connections(context.Background(), netconn.KindAll)
	assert.ErrorIs(t, err, psutil.Unclassified)
	assert.ErrorIs(t, err, boom)

	kind, _ := psutil.KindOf(err)
	assert.Equal(t, psutil.Unclassified, kind)
}

func TestEnumerator_Unsupported(t *testing.T) {
	b := &fakeBackend{caps: backend.NewCapabilities(backend.CapPids)}
	_, err := netconn.NewEnumerator(b, nil).Connections(context.Background(), netconn.KindAll)
	assert.ErrorIs(t, err, psutil.UnsupportedOnPlatform)
}

func TestEnumerator_InvalidKind(t *testing.T) {
	_, err := netconn.NewEnumerator(perPidBackend(), nil).Connections(context.Background(), "tcp7")
	assert.ErrorIs(t, err, psutil.InvalidArgument)
}
