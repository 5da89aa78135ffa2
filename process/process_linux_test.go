package process_test

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"testing"
	"time"

	psutil "github.com/reugn/go-psutil"
	"github.com/reugn/go-psutil/backend"
	"github.com/reugn/go-psutil/internal/assert"
	"github.com/reugn/go-psutil/internal/leakcheck"
	"github.com/reugn/go-psutil/process"
)

func self(t *testing.T) *process.Process {
	t.Helper()
	p, err := process.NewProcess(context.Background(), int32(os.Getpid()))
	assert.NoError(t, err)
	return p
}

func TestLinux_Self(t *testing.T) {
	ctx := context.Background()
	p := self(t)

	exe, err := p.Exe(ctx)
	assert.NoError(t, err)
	want, err := os.Executable()
	assert.NoError(t, err)
	assert.Equal(t, filepath.Base(want), filepath.Base(exe))

	ppid, err := p.Ppid(ctx)
	assert.NoError(t, err)
	assert.Equal(t, int32(os.Getppid()), ppid)

	cwd, err := p.Cwd(ctx)
	assert.NoError(t, err)
	wd, err := os.Getwd()
	assert.NoError(t, err)
	wd, err = filepath.EvalSymlinks(wd)
	assert.NoError(t, err)
	assert.Equal(t, wd, cwd)

	uids, err := p.Uids(ctx)
	assert.NoError(t, err)
	assert.Equal(t, uint32(os.Getuid()), uids.Real)

	threads, err := p.NumThreads(ctx)
	assert.NoError(t, err)
	assert.True(t, threads > 0, "threads")

	mem, err := p.MemoryInfo(ctx)
	assert.NoError(t, err)
	assert.True(t, mem.RSS > 0, "rss")

	fds, err := p.NumFDs(ctx)
	assert.NoError(t, err)
	assert.True(t, fds > 0, "fds")

	limit, err := p.Rlimit(ctx, process.RlimitNofile)
	assert.NoError(t, err)
	assert.True(t, limit.Soft <= limit.Hard, "soft <= hard")

	_, err = p.NumHandles(ctx)
	assert.ErrorIs(t, err, psutil.UnsupportedOnPlatform)
}

func TestLinux_IdentityStable(t *testing.T) {
	ctx := context.Background()
	p := self(t)
	for range 10 {
		q := self(t)
		assert.True(t, p.Equal(q), "same fingerprint")
		assert.True(t, p.IsRunning(ctx), "running")
	}
}

func TestLinux_CPUAffinity(t *testing.T) {
	ctx := context.Background()
	p := self(t)

	orig, err := p.CPUAffinity(ctx)
	assert.NoError(t, err)
	defer func() {
		assert.NoError(t, p.SetCPUAffinity(ctx, orig))
	}()

	subset := orig[len(orig)-1:]
	assert.NoError(t, p.SetCPUAffinity(ctx, subset))
	got, err := p.CPUAffinity(ctx)
	assert.NoError(t, err)
	assert.Equal(t, subset, got)

	assert.ErrorIs(t, p.SetCPUAffinity(ctx, []int{-1}), psutil.InvalidArgument)
}

func TestLinux_KillAndWait(t *testing.T) {
	ctx := context.Background()
	cmd := exec.Command("sleep", "30")
	assert.NoError(t, cmd.Start())
	defer cmd.Process.Release()

	p, err := process.NewProcess(ctx, int32(cmd.Process.Pid))
	assert.NoError(t, err)

	parent, err := p.Parent(ctx)
	assert.NoError(t, err)
	assert.True(t, parent.Equal(self(t)), "parent is the test process")

	start := time.Now()
	_, err = p.Wait(ctx, 200*time.Millisecond)
	assert.ErrorIs(t, err, psutil.TimeoutExpired)
	assert.True(t, time.Since(start) >= 200*time.Millisecond, "waited for the timeout")

	assert.NoError(t, p.Kill(ctx))
	status, err := p.Wait(ctx, 5*time.Second)
	assert.NoError(t, err)
	assert.Equal(t, backend.ExitStatus{Code: -9, Known: true}, status)

	// A reaped process is gone; every query fails consistently.
	_, err = p.Name(ctx)
	assert.ErrorIs(t, err, psutil.NoSuchProcess)
	_, err = p.Status(ctx)
	assert.ErrorIs(t, err, psutil.NoSuchProcess)
	assert.ErrorIs(t, p.Terminate(ctx), psutil.NoSuchProcess)

	start = time.Now()
	status, err = p.Wait(ctx, 0)
	assert.NoError(t, err)
	assert.True(t, !status.Known, "exit status already collected")
	assert.True(t, time.Since(start) < time.Second, "returns immediately")
}

func TestLinux_Zombie(t *testing.T) {
	ctx := context.Background()
	cmd := exec.Command("sh", "-c", "exit 0")
	assert.NoError(t, cmd.Start())
	defer cmd.Process.Release()

	p, err := process.NewProcess(ctx, int32(cmd.Process.Pid))
	assert.NoError(t, err)

	status := backend.StatusRunning
	for i := 0; i < 500 && status != backend.StatusZombie; i++ {
		time.Sleep(10 * time.Millisecond)
		status, err = p.Status(ctx)
		assert.NoError(t, err)
	}
	assert.Equal(t, backend.StatusZombie, status)

	name, err := p.Name(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "sh", name)
	_, err = p.Cmdline(ctx)
	assert.ErrorIs(t, err, psutil.ZombieProcess)

	exit, err := p.Wait(ctx, time.Second)
	assert.NoError(t, err)
	assert.Equal(t, backend.ExitStatus{Code: 0, Known: true}, exit)
}

func TestLinux_Connections(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	assert.NoError(t, err)
	defer ln.Close()
	port := uint32(ln.Addr().(*net.TCPAddr).Port)

	conns, err := self(t).Connections(context.Background(), "tcp")
	assert.NoError(t, err)
	assert.True(t, slices.ContainsFunc(conns, func(c backend.Connection) bool {
		return c.Local.Port == port && c.Status == "LISTEN"
	}), "listener reported")

	udp, err := self(t).Connections(context.Background(), "udp")
	assert.NoError(t, err)
	assert.True(t, !slices.ContainsFunc(udp, func(c backend.Connection) bool {
		return c.Local.Port == port
	}), "tcp listener filtered out")
}

func TestLinux_MemoryFullInfo(t *testing.T) {
	full, err := self(t).MemoryFullInfo(context.Background())
	assert.NoError(t, err)
	assert.True(t, full.RSS > 0, "rss")
	assert.True(t, full.USS > 0, "uss")
	assert.True(t, full.PSS >= full.USS, "pss includes uss")
}

type leakTest struct {
	name  string
	loops int
	fn    func() error
}

func runLeakTests(t *testing.T, tests []leakTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := leakcheck.DefaultConfig()
			if tt.loops > 0 {
				config.Loops = tt.loops
			}
			leakcheck.Run(t, config, tt.fn)
		})
	}
}

func TestLinux_Leaks(t *testing.T) {
	if testing.Short() {
		t.Skip("leak checks are slow")
	}
	ctx := context.Background()
	p := self(t)
	affinity, err := p.CPUAffinity(ctx)
	assert.NoError(t, err)
	nice, err := p.Nice(ctx)
	assert.NoError(t, err)
	limit, err := p.Rlimit(ctx, process.RlimitNofile)
	assert.NoError(t, err)

	runLeakTests(t, []leakTest{
		{name: "name", fn: func() error { _, err := p.Name(ctx); return err }},
		{name: "cmdline", fn: func() error { _, err := p.Cmdline(ctx); return err }},
		{name: "environ", fn: func() error { _, err := p.Environ(ctx); return err }},
		{name: "status", fn: func() error { _, err := p.Status(ctx); return err }},
		{name: "threads", fn: func() error { _, err := p.Threads(ctx); return err }},
		{name: "io_counters", fn: func() error { _, err := p.IOCounters(ctx); return err }},
		{name: "ionice", fn: func() error { _, err := p.IONice(ctx); return err }},
		{name: "memory_info", fn: func() error { _, err := p.MemoryInfo(ctx); return err }},
		{name: "memory_maps", loops: 100, fn: func() error { _, err := p.MemoryMaps(ctx, false); return err }},
		{name: "memory_full_info", loops: 100, fn: func() error { _, err := p.MemoryFullInfo(ctx); return err }},
		{name: "open_files", fn: func() error { _, err := p.OpenFiles(ctx); return err }},
		{name: "num_fds", fn: func() error { _, err := p.NumFDs(ctx); return err }},
		{name: "connections", loops: 100, fn: func() error { _, err := p.Connections(ctx, "inet"); return err }},
		{name: "cpu_affinity", fn: func() error { _, err := p.CPUAffinity(ctx); return err }},
		{name: "set_cpu_affinity", fn: func() error { return p.SetCPUAffinity(ctx, affinity) }},
		{name: "nice", fn: func() error { _, err := p.Nice(ctx); return err }},
		{name: "set_nice", fn: func() error { return p.SetNice(ctx, nice) }},
		{name: "rlimit", fn: func() error { _, err := p.Rlimit(ctx, process.RlimitNofile); return err }},
		{name: "set_rlimit", fn: func() error { return p.SetRlimit(ctx, process.RlimitNofile, limit) }},
		{name: "pid_exists", fn: func() error { _, err := process.PidExists(ctx, p.Pid()); return err }},
		{name: "missing process", fn: leakcheck.ExpectKind(psutil.NoSuchProcess, func() error {
			_, err := process.NewProcess(ctx, 1<<30)
			return err
		})},
	})
}

func TestLinux_TerminatedLeaks(t *testing.T) {
	if testing.Short() {
		t.Skip("leak checks are slow")
	}
	ctx := context.Background()
	cmd := exec.Command("sleep", "30")
	assert.NoError(t, cmd.Start())
	defer cmd.Process.Release()
	p, err := process.NewProcess(ctx, int32(cmd.Process.Pid))
	assert.NoError(t, err)
	assert.NoError(t, p.Kill(ctx))
	_, err = p.Wait(ctx, 5*time.Second)
	assert.NoError(t, err)

	gone := func(fn func() error) func() error {
		return leakcheck.ExpectKind(psutil.NoSuchProcess, fn)
	}
	runLeakTests(t, []leakTest{
		{name: "kill", fn: gone(func() error { return p.Kill(ctx) })},
		{name: "terminate", fn: gone(func() error { return p.Terminate(ctx) })},
		{name: "suspend", fn: gone(func() error { return p.Suspend(ctx) })},
		{name: "resume", fn: gone(func() error { return p.Resume(ctx) })},
		{name: "name", fn: gone(func() error { _, err := p.Name(ctx); return err })},
		{name: "memory_info", fn: gone(func() error { _, err := p.MemoryInfo(ctx); return err })},
		{name: "wait", fn: func() error {
			status, err := p.Wait(ctx, 0)
			if err == nil && status.Known {
				return fmt.Errorf("exit status of a reaped process reported again: %+v", status)
			}
			return err
		}},
	})
}
