package process

import (
	"context"
	"fmt"
	"time"

	psutil "github.com/reugn/go-psutil"
	"github.com/reugn/go-psutil/backend"
	"github.com/reugn/go-psutil/netconn"
	"github.com/reugn/go-psutil/util"
)

// Process is a handle to one process, identified by its pid and create
// time. Only the create time is fixed at construction; every other
// attribute is read from the OS on each call. A Process holds no OS
// resources and is safe for concurrent use.
type Process struct {
	pid        int32
	createTime float64
	reg        *Registry
}

// Pid returns the process id.
func (p *Process) Pid() int32 {
	return p.pid
}

// CreateTime returns the process start as seconds since the epoch.
func (p *Process) CreateTime() float64 {
	return p.createTime
}

// StartTime returns the process start time.
func (p *Process) StartTime() time.Time {
	return util.Seconds(p.createTime)
}

// Equal reports whether p and other denote the same process.
func (p *Process) Equal(other *Process) bool {
	if other == nil {
		return false
	}
	return p.pid == other.pid && p.reg.sameTime(p.createTime, other.createTime)
}

func (p *Process) String() string {
	return fmt.Sprintf("Process(pid=%d, create_time=%.2f)", p.pid, p.createTime)
}

// attr describes one process-scoped operation.
type attr struct {
	op  string
	cap backend.Capability
	// zombie is true for attributes still readable from a zombie.
	zombie bool
	// ends is true for operations that may end the process; their success
	// is not re-verified against the fingerprint.
	ends bool
}

var (
	attrName           = attr{op: "name", cap: backend.CapName, zombie: true}
	attrExe            = attr{op: "exe", cap: backend.CapExe}
	attrCmdline        = attr{op: "cmdline", cap: backend.CapCmdline}
	attrCwd            = attr{op: "cwd", cap: backend.CapCwd}
	attrEnviron        = attr{op: "environ", cap: backend.CapEnviron}
	attrTerminal       = attr{op: "terminal", cap: backend.CapTerminal}
	attrStatus         = attr{op: "status", cap: backend.CapIdentity, zombie: true}
	attrPpid           = attr{op: "ppid", cap: backend.CapPpid, zombie: true}
	attrChildren       = attr{op: "children", cap: backend.CapChildren}
	attrUids           = attr{op: "uids", cap: backend.CapUids, zombie: true}
	attrGids           = attr{op: "gids", cap: backend.CapGids, zombie: true}
	attrUsername       = attr{op: "username", cap: backend.CapUsername, zombie: true}
	attrNice           = attr{op: "nice", cap: backend.CapNice, zombie: true}
	attrSetNice        = attr{op: "nice", cap: backend.CapSetNice}
	attrIONice         = attr{op: "ionice", cap: backend.CapIONice}
	attrSetIONice      = attr{op: "ionice", cap: backend.CapSetIONice}
	attrIOCounters     = attr{op: "io_counters", cap: backend.CapIOCounters}
	attrNumCtxSwitches = attr{op: "num_ctx_switches", cap: backend.CapNumCtxSwitches}
	attrNumThreads     = attr{op: "num_threads", cap: backend.CapNumThreads, zombie: true}
	attrThreads        = attr{op: "threads", cap: backend.CapThreads}
	attrTimes          = attr{op: "cpu_times", cap: backend.CapTimes, zombie: true}
	attrMemoryInfo     = attr{op: "memory_info", cap: backend.CapMemoryInfo, zombie: true}
	attrMemoryMaps     = attr{op: "memory_maps", cap: backend.CapMemoryMaps}
	attrMemoryFullInfo = attr{op: "memory_full_info", cap: backend.CapMemoryMaps}
	attrOpenFiles      = attr{op: "open_files", cap: backend.CapOpenFiles}
	attrNumFDs         = attr{op: "num_fds", cap: backend.CapNumFDs}
	attrNumHandles     = attr{op: "num_handles", cap: backend.CapNumHandles}
	attrCPUAffinity    = attr{op: "cpu_affinity", cap: backend.CapCPUAffinity}
	attrSetCPUAffinity = attr{op: "cpu_affinity", cap: backend.CapSetCPUAffinity}
	attrRlimit         = attr{op: "rlimit", cap: backend.CapRlimit}
	attrSetRlimit      = attr{op: "rlimit", cap: backend.CapSetRlimit}
	attrConnections    = attr{op: "connections", cap: backend.CapProcessConnections}
)

// call verifies the fingerprint, dispatches fn and translates its failure.
// The fingerprint is verified again after fn succeeds, so a pid reused
// during the call never yields the new process's data.
func call[T any](ctx context.Context, p *Process, a attr,
	fn func(ctx context.Context, pid int32) (T, error)) (T, error) {
	var zero T
	if !p.reg.b.Supports(a.cap) {
		return zero, p.reg.unsupported(a.op, p.pid)
	}
	if err := p.check(ctx, a); err != nil {
		return zero, err
	}
	v, err := fn(ctx, p.pid)
	if err != nil {
		return zero, p.translate(ctx, a.op, err)
	}
	if !a.ends {
		if _, err := p.identity(ctx, a.op); err != nil {
			return zero, err
		}
	}
	return v, nil
}

func do(ctx context.Context, p *Process, a attr, fn func(ctx context.Context, pid int32) error) error {
	_, err := call(ctx, p, a, func(ctx context.Context, pid int32) (struct{}, error) {
		return struct{}{}, fn(ctx, pid)
	})
	return err
}

func (p *Process) translate(ctx context.Context, op string, err error) error {
	return psutil.Translate(op, p.pid, err, p.reg.prober(ctx, p.pid, p.createTime))
}

// identity returns the current identity of the pid after verifying it
// still denotes this process.
func (p *Process) identity(ctx context.Context, op string) (backend.Identity, error) {
	id, err := p.reg.b.Identity(ctx, p.pid)
	if err != nil {
		return backend.Identity{}, p.translate(ctx, op, err)
	}
	if id.Status == backend.StatusDead || !p.reg.sameTime(id.CreateTime, p.createTime) {
		return backend.Identity{}, psutil.NewError(psutil.NoSuchProcess, op, p.pid,
			fmt.Errorf("process no longer exists or its pid has been reused"))
	}
	return id, nil
}

func (p *Process) check(ctx context.Context, a attr) error {
	id, err := p.identity(ctx, a.op)
	if err != nil {
		return err
	}
	if id.Status == backend.StatusZombie && !a.zombie {
		return psutil.NewError(psutil.ZombieProcess, a.op, p.pid, nil)
	}
	return nil
}

// IsRunning reports whether the process is still alive and has not been
// replaced by another process with the same pid. Zombies count as running.
func (p *Process) IsRunning(ctx context.Context) bool {
	_, err := p.identity(ctx, "is_running")
	return err == nil
}

// Status returns the scheduling state of the process.
func (p *Process) Status(ctx context.Context) (backend.Status, error) {
	if !p.reg.b.Supports(attrStatus.cap) {
		return "", p.reg.unsupported(attrStatus.op, p.pid)
	}
	id, err := p.identity(ctx, attrStatus.op)
	if err != nil {
		return "", err
	}
	return id.Status, nil
}

func (p *Process) Name(ctx context.Context) (string, error) {
	return call(ctx, p, attrName, p.reg.b.Name)
}

func (p *Process) Exe(ctx context.Context) (string, error) {
	return call(ctx, p, attrExe, p.reg.b.Exe)
}

func (p *Process) Cmdline(ctx context.Context) ([]string, error) {
	return call(ctx, p, attrCmdline, p.reg.b.Cmdline)
}

func (p *Process) Cwd(ctx context.Context) (string, error) {
	return call(ctx, p, attrCwd, p.reg.b.Cwd)
}

func (p *Process) Environ(ctx context.Context) ([]string, error) {
	return call(ctx, p, attrEnviron, p.reg.b.Environ)
}

// Terminal returns the controlling terminal, empty if there is none.
func (p *Process) Terminal(ctx context.Context) (string, error) {
	return call(ctx, p, attrTerminal, p.reg.b.Terminal)
}

func (p *Process) Ppid(ctx context.Context) (int32, error) {
	return call(ctx, p, attrPpid, p.reg.b.Ppid)
}

// Parent returns the parent process. A parent that started after p is a
// reused pid and reported as NoSuchProcess.
func (p *Process) Parent(ctx context.Context) (*Process, error) {
	ppid, err := p.Ppid(ctx)
	if err != nil {
		return nil, err
	}
	parent, err := p.reg.NewProcess(ctx, ppid)
	if err != nil {
		return nil, err
	}
	if parent.createTime > p.createTime+p.reg.tolerance {
		return nil, psutil.NewError(psutil.NoSuchProcess, "parent", ppid, nil)
	}
	return parent, nil
}

// Children returns the direct children of the process. Children that exit
// during the call are skipped.
func (p *Process) Children(ctx context.Context) ([]*Process, error) {
	pids, err := call(ctx, p, attrChildren, p.reg.b.Children)
	if err != nil {
		return nil, err
	}
	children := make([]*Process, 0, len(pids))
	for _, pid := range pids {
		c, err := p.reg.NewProcess(ctx, pid)
		if err != nil {
			continue
		}
		if c.createTime+p.reg.tolerance < p.createTime {
			continue
		}
		children = append(children, c)
	}
	return children, nil
}

func (p *Process) Uids(ctx context.Context) (backend.IDs, error) {
	return call(ctx, p, attrUids, p.reg.b.Uids)
}

func (p *Process) Gids(ctx context.Context) (backend.IDs, error) {
	return call(ctx, p, attrGids, p.reg.b.Gids)
}

func (p *Process) Username(ctx context.Context) (string, error) {
	return call(ctx, p, attrUsername, p.reg.b.Username)
}

// Nice returns the niceness, or the priority class on Windows.
func (p *Process) Nice(ctx context.Context) (int, error) {
	return call(ctx, p, attrNice, p.reg.b.Nice)
}

func (p *Process) SetNice(ctx context.Context, value int) error {
	return do(ctx, p, attrSetNice, func(ctx context.Context, pid int32) error {
		return p.reg.b.SetNice(ctx, pid, value)
	})
}

func (p *Process) IONice(ctx context.Context) (backend.IONice, error) {
	return call(ctx, p, attrIONice, p.reg.b.IONice)
}

func (p *Process) SetIONice(ctx context.Context, value backend.IONice) error {
	return do(ctx, p, attrSetIONice, func(ctx context.Context, pid int32) error {
		return p.reg.b.SetIONice(ctx, pid, value)
	})
}

func (p *Process) IOCounters(ctx context.Context) (backend.IOCounters, error) {
	return call(ctx, p, attrIOCounters, p.reg.b.IOCounters)
}

func (p *Process) NumCtxSwitches(ctx context.Context) (backend.CtxSwitches, error) {
	return call(ctx, p, attrNumCtxSwitches, p.reg.b.NumCtxSwitches)
}

func (p *Process) NumThreads(ctx context.Context) (int, error) {
	return call(ctx, p, attrNumThreads, p.reg.b.NumThreads)
}

func (p *Process) Threads(ctx context.Context) ([]backend.Thread, error) {
	return call(ctx, p, attrThreads, p.reg.b.Threads)
}

// Times returns the cumulative user and system CPU seconds.
func (p *Process) Times(ctx context.Context) (backend.ProcessTimes, error) {
	return call(ctx, p, attrTimes, p.reg.b.Times)
}

func (p *Process) MemoryInfo(ctx context.Context) (backend.MemoryInfo, error) {
	return call(ctx, p, attrMemoryInfo, p.reg.b.MemoryInfo)
}

// MemoryMaps returns the mapped memory regions. When grouped is true,
// regions are merged per path.
func (p *Process) MemoryMaps(ctx context.Context, grouped bool) ([]backend.MemoryMap, error) {
	return call(ctx, p, attrMemoryMaps, func(ctx context.Context, pid int32) ([]backend.MemoryMap, error) {
		return p.reg.b.MemoryMaps(ctx, pid, grouped)
	})
}

// MemoryFullInfo returns MemoryInfo extended with USS and PSS. It reads
// every memory mapping and is considerably slower than MemoryInfo.
func (p *Process) MemoryFullInfo(ctx context.Context) (backend.MemoryFullInfo, error) {
	info, err := p.MemoryInfo(ctx)
	if err != nil {
		return backend.MemoryFullInfo{}, err
	}
	maps, err := call(ctx, p, attrMemoryFullInfo, func(ctx context.Context, pid int32) ([]backend.MemoryMap, error) {
		return p.reg.b.MemoryMaps(ctx, pid, true)
	})
	if err != nil {
		return backend.MemoryFullInfo{}, err
	}
	full := backend.MemoryFullInfo{MemoryInfo: info}
	full.Swap = 0
	for _, m := range maps {
		full.USS += m.PrivateClean + m.PrivateDirty
		full.PSS += m.PSS
		full.Swap += m.Swap
	}
	return full, nil
}

func (p *Process) OpenFiles(ctx context.Context) ([]backend.OpenFile, error) {
	return call(ctx, p, attrOpenFiles, p.reg.b.OpenFiles)
}

func (p *Process) NumFDs(ctx context.Context) (int, error) {
	return call(ctx, p, attrNumFDs, p.reg.b.NumFDs)
}

func (p *Process) NumHandles(ctx context.Context) (int, error) {
	return call(ctx, p, attrNumHandles, p.reg.b.NumHandles)
}

// CPUAffinity returns the CPUs the process may run on, in ascending order.
func (p *Process) CPUAffinity(ctx context.Context) ([]int, error) {
	return call(ctx, p, attrCPUAffinity, p.reg.b.CPUAffinity)
}

// SetCPUAffinity restricts the process to cpus. An empty list resets the
// affinity to every eligible CPU.
func (p *Process) SetCPUAffinity(ctx context.Context, cpus []int) error {
	for _, c := range cpus {
		if c < 0 {
			return psutil.NewError(psutil.InvalidArgument, attrSetCPUAffinity.op, p.pid,
				fmt.Errorf("invalid CPU %d", c))
		}
	}
	return do(ctx, p, attrSetCPUAffinity, func(ctx context.Context, pid int32) error {
		return p.reg.b.SetCPUAffinity(ctx, pid, cpus)
	})
}

// Rlimit returns the soft and hard limits of resource.
func (p *Process) Rlimit(ctx context.Context, resource int) (backend.Rlimit, error) {
	if resource < 0 {
		return backend.Rlimit{}, invalidResource(p.pid, resource)
	}
	return call(ctx, p, attrRlimit, func(ctx context.Context, pid int32) (backend.Rlimit, error) {
		return p.reg.b.Rlimit(ctx, pid, resource)
	})
}

// SetRlimit sets the soft and hard limits of resource.
func (p *Process) SetRlimit(ctx context.Context, resource int, limit backend.Rlimit) error {
	if resource < 0 {
		return invalidResource(p.pid, resource)
	}
	return do(ctx, p, attrSetRlimit, func(ctx context.Context, pid int32) error {
		return p.reg.b.SetRlimit(ctx, pid, resource, limit)
	})
}

func invalidResource(pid int32, resource int) error {
	return psutil.NewError(psutil.InvalidArgument, attrRlimit.op, pid,
		fmt.Errorf("invalid resource %d", resource))
}

// Connections returns the network endpoints owned by the process. kind is
// one of netconn.Kinds().
func (p *Process) Connections(ctx context.Context, kind string) ([]netconn.Record, error) {
	k, err := netconn.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	conns, err := call(ctx, p, attrConnections, func(ctx context.Context, pid int32) ([]netconn.Record, error) {
		return p.reg.b.ProcessConnections(ctx, pid, string(k))
	})
	if err != nil {
		return nil, err
	}
	return netconn.Filter(conns, k), nil
}

// CPUPercent measures the CPU utilization of the process over interval,
// blocking for its duration. The result is relative to one CPU and may
// exceed 100 on multi-core hosts.
func (p *Process) CPUPercent(ctx context.Context, interval time.Duration) (float64, error) {
	if interval <= 0 {
		return 0, psutil.NewError(psutil.InvalidArgument, "cpu_percent", p.pid,
			fmt.Errorf("interval must be positive, got %v", interval))
	}
	before, err := p.Times(ctx)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	if err := util.Sleep(ctx, interval); err != nil {
		return 0, p.translate(ctx, "cpu_percent", err)
	}
	after, err := p.Times(ctx)
	if err != nil {
		return 0, err
	}
	return cpuPercent(before, after, time.Since(start)), nil
}

func cpuPercent(before, after backend.ProcessTimes, elapsed time.Duration) float64 {
	wall := elapsed.Seconds()
	if wall <= 0 {
		return 0
	}
	busy := (after.User + after.System) - (before.User + before.System)
	return max(busy/wall*100, 0)
}
