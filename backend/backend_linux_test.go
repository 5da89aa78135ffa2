package backend_test

import (
	"context"
	"math"
	"os"
	"os/exec"
	"testing"
	"time"

	psutil "github.com/reugn/go-psutil"
	"github.com/reugn/go-psutil/backend"
	"github.com/reugn/go-psutil/internal/assert"
	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sys/unix"
)

var self = int32(os.Getpid())

func TestLinux_Identity(t *testing.T) {
	ctx := context.Background()
	b := backend.Default()
	assert.Equal(t, "linux", b.Platform())
	assert.True(t, b.Supports(backend.CapIdentity), "identity")
	assert.True(t, !b.Supports(backend.CapServices), "services")

	id, err := b.Identity(ctx, self)
	assert.NoError(t, err)
	assert.True(t, id.Status != backend.StatusZombie && id.Status != backend.StatusDead,
		string(id.Status))

	created, err := (&process.Process{Pid: self}).CreateTime()
	assert.NoError(t, err)
	assert.True(t, math.Abs(id.CreateTime-float64(created)/1000) < 1,
		"create time agrees with gopsutil")
	assert.True(t, id.CreateTime <= float64(time.Now().Unix())+1, "create time in the past")

	again, err := b.Identity(ctx, self)
	assert.NoError(t, err)
	assert.Equal(t, id.CreateTime, again.CreateTime)
}

func TestLinux_IdentityMissing(t *testing.T) {
	_, err := backend.Default().Identity(context.Background(), math.MaxInt32)
	assert.True(t, err != nil, "missing pid")
}

func TestLinux_ZombieAndReap(t *testing.T) {
	ctx := context.Background()
	b := backend.Default()

	cmd := exec.Command("sh", "-c", "exit 3")
	assert.NoError(t, cmd.Start())
	defer cmd.Process.Release()
	pid := int32(cmd.Process.Pid)

	var id backend.Identity
	for range 500 {
		var err error
		id, err = b.Identity(ctx, pid)
		assert.NoError(t, err)
		if id.Status == backend.StatusZombie {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, backend.StatusZombie, id.Status)

	name, err := b.Name(ctx, pid)
	assert.NoError(t, err)
	assert.Equal(t, "sh", name)

	status, done, err := b.Reap(ctx, pid)
	assert.NoError(t, err)
	assert.True(t, done, "reaped")
	assert.Equal(t, backend.ExitStatus{Code: 3, Known: true}, status)

	status, done, err = b.Reap(ctx, pid)
	assert.NoError(t, err)
	assert.True(t, done, "already reaped")
	assert.True(t, !status.Known, "status no longer known")
}

func TestLinux_ReapRunning(t *testing.T) {
	ctx := context.Background()
	b := backend.Default()

	cmd := exec.Command("sleep", "10")
	assert.NoError(t, cmd.Start())
	pid := int32(cmd.Process.Pid)

	_, done, err := b.Reap(ctx, pid)
	assert.NoError(t, err)
	assert.True(t, !done, "still running")

	assert.NoError(t, b.SendSignal(ctx, pid, backend.SignalKill))
	_ = cmd.Wait()
}

func TestLinux_CPUAffinity(t *testing.T) {
	ctx := context.Background()
	b := backend.Default()

	orig, err := b.CPUAffinity(ctx, self)
	assert.NoError(t, err)
	assert.True(t, len(orig) > 0, "at least one cpu")
	defer func() {
		assert.NoError(t, b.SetCPUAffinity(ctx, self, orig))
	}()

	assert.NoError(t, b.SetCPUAffinity(ctx, self, orig[:1]))
	got, err := b.CPUAffinity(ctx, self)
	assert.NoError(t, err)
	assert.Equal(t, orig[:1], got)

	err = b.SetCPUAffinity(ctx, self, []int{-1})
	assert.ErrorIs(t, err, psutil.InvalidArgument)
	err = b.SetCPUAffinity(ctx, self, []int{1 << 16})
	assert.ErrorIs(t, err, psutil.InvalidArgument)
}

func TestLinux_Rlimit(t *testing.T) {
	ctx := context.Background()
	b := backend.Default()

	limit, err := b.Rlimit(ctx, self, unix.RLIMIT_NOFILE)
	assert.NoError(t, err)
	assert.True(t, limit.Soft <= limit.Hard, "soft <= hard")

	// Rewriting the current limits is always permitted.
	assert.NoError(t, b.SetRlimit(ctx, self, unix.RLIMIT_NOFILE, limit))

	err = b.SetRlimit(ctx, self, unix.RLIMIT_NOFILE, backend.Rlimit{Soft: 2, Hard: 1})
	assert.ErrorIs(t, err, psutil.InvalidArgument)
}

func TestLinux_IONice(t *testing.T) {
	ctx := context.Background()
	b := backend.Default()

	v, err := b.IONice(ctx, self)
	assert.NoError(t, err)
	assert.True(t, v.Class >= backend.IOPrioClassNone && v.Class <= backend.IOPrioClassIdle, "class")

	tests := []backend.IONice{
		{Class: 9},
		{Class: backend.IOPrioClassBE, Value: 8},
		{Class: backend.IOPrioClassIdle, Value: 1},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, b.SetIONice(ctx, self, tt), psutil.InvalidArgument)
	}
}

func TestLinux_CPUStats(t *testing.T) {
	stats, err := backend.Default().CPUStats(context.Background())
	assert.NoError(t, err)
	assert.True(t, stats.CtxSwitches > 0, "context switches")
	assert.True(t, stats.ProcessesForked > 0, "forks")
}
