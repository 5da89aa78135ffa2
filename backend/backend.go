package backend

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ProcessBackend is the process-scoped part of the contract. Every method
// either returns a complete value or a raw OS failure, and releases whatever
// it opened before returning.
type ProcessBackend interface {
	Pids(ctx context.Context) ([]int32, error)
	PidExists(ctx context.Context, pid int32) (bool, error)
	// Identity returns the create time and state used to fingerprint pid.
	Identity(ctx context.Context, pid int32) (Identity, error)

	Name(ctx context.Context, pid int32) (string, error)
	Exe(ctx context.Context, pid int32) (string, error)
	Cmdline(ctx context.Context, pid int32) ([]string, error)
	Cwd(ctx context.Context, pid int32) (string, error)
	Environ(ctx context.Context, pid int32) ([]string, error)
	Terminal(ctx context.Context, pid int32) (string, error)
	Ppid(ctx context.Context, pid int32) (int32, error)
	Children(ctx context.Context, pid int32) ([]int32, error)
	Uids(ctx context.Context, pid int32) (IDs, error)
	Gids(ctx context.Context, pid int32) (IDs, error)
	Username(ctx context.Context, pid int32) (string, error)
	Nice(ctx context.Context, pid int32) (int, error)
	SetNice(ctx context.Context, pid int32, value int) error
	IONice(ctx context.Context, pid int32) (IONice, error)
	SetIONice(ctx context.Context, pid int32, value IONice) error
	IOCounters(ctx context.Context, pid int32) (IOCounters, error)
	NumCtxSwitches(ctx context.Context, pid int32) (CtxSwitches, error)
	NumThreads(ctx context.Context, pid int32) (int, error)
	Threads(ctx context.Context, pid int32) ([]Thread, error)
	Times(ctx context.Context, pid int32) (ProcessTimes, error)
	MemoryInfo(ctx context.Context, pid int32) (MemoryInfo, error)
	MemoryMaps(ctx context.Context, pid int32, grouped bool) ([]MemoryMap, error)
	OpenFiles(ctx context.Context, pid int32) ([]OpenFile, error)
	NumFDs(ctx context.Context, pid int32) (int, error)
	NumHandles(ctx context.Context, pid int32) (int, error)
	CPUAffinity(ctx context.Context, pid int32) ([]int, error)
	SetCPUAffinity(ctx context.Context, pid int32, cpus []int) error
	Rlimit(ctx context.Context, pid int32, resource int) (Rlimit, error)
	SetRlimit(ctx context.Context, pid int32, resource int, limit Rlimit) error
	SendSignal(ctx context.Context, pid int32, sig Signal) error
	// Reap collects the exit status of pid without blocking. done is false
	// while the process is still running.
	Reap(ctx context.Context, pid int32) (status ExitStatus, done bool, err error)
}

// ConnectionBackend lists open network endpoints. kind is one of the
// connection kinds understood by the netconn package.
type ConnectionBackend interface {
	Connections(ctx context.Context, kind string) ([]Connection, error)
	ProcessConnections(ctx context.Context, pid int32, kind string) ([]Connection, error)
}

// SystemBackend is the host-wide part of the contract.
type SystemBackend interface {
	CPUTimes(ctx context.Context, percpu bool) ([]CPUTimes, error)
	CPUCount(ctx context.Context, logical bool) (int, error)
	CPUStats(ctx context.Context) (CPUStats, error)
	VirtualMemory(ctx context.Context) (VirtualMemory, error)
	SwapMemory(ctx context.Context) (SwapMemory, error)
	ContainerMemory(ctx context.Context) (ContainerMemory, error)
	DiskUsage(ctx context.Context, path string) (DiskUsage, error)
	DiskPartitions(ctx context.Context, all bool) ([]Partition, error)
	DiskIOCounters(ctx context.Context) ([]DiskIOCounters, error)
	NetIOCounters(ctx context.Context) ([]NetIOCounters, error)
	NetInterfaces(ctx context.Context) ([]NetInterface, error)
	Users(ctx context.Context) ([]User, error)
	BootTime(ctx context.Context) (time.Time, error)
	Services(ctx context.Context) ([]Service, error)
}

// Backend is the full capability contract of one operating system.
type Backend interface {
	// Platform names the running OS backend, e.g. "linux".
	Platform() string
	// Supports reports statically whether the backend implements c.
	Supports(c Capability) bool
	// CreateTimeResolution is the granularity of Identity create times.
	CreateTimeResolution() time.Duration

	ProcessBackend
	ConnectionBackend
	SystemBackend
}

var defaultBackend = sync.OnceValue(func() Backend {
	return selectBackend(slog.Default(), newPlatform)
})

func selectBackend(logger *slog.Logger, newFn func() Backend) Backend {
	b := newFn()
	logger.Debug("Selected platform backend", slog.String("platform", b.Platform()))
	return b
}

// Default returns the backend of the running OS. It is selected once.
func Default() Backend {
	return defaultBackend()
}
