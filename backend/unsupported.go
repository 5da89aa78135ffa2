package backend

import (
	"context"
	"time"

	psutil "github.com/reugn/go-psutil"
)

// Unsupported implements Backend by failing every operation with
// psutil.ErrNotImplemented. Embed it to implement a subset of the contract.
type Unsupported struct{}

var _ Backend = Unsupported{}

func (Unsupported) Platform() string { return "unsupported" }
func (Unsupported) Supports(Capability) bool { return false }
func (Unsupported) CreateTimeResolution() time.Duration { return time.Millisecond }

func (Unsupported) Pids(context.Context) ([]int32, error) { return nil, psutil.ErrNotImplemented }
func (Unsupported) PidExists(context.Context, int32) (bool, error) {
	return false, psutil.ErrNotImplemented
}
func (Unsupported) Identity(context.Context, int32) (Identity, error) {
	return Identity{}, psutil.ErrNotImplemented
}
func (Unsupported) Name(context.Context, int32) (string, error) { return "", psutil.ErrNotImplemented }
func (Unsupported) Exe(context.Context, int32) (string, error) { return "", psutil.ErrNotImplemented }
func (Unsupported) Cmdline(context.Context, int32) ([]string, error) {
	return nil, psutil.ErrNotImplemented
}
func (Unsupported) Cwd(context.Context, int32) (string, error) { return "", psutil.ErrNotImplemented }
func (Unsupported) Environ(context.Context, int32) ([]string, error) {
	return nil, psutil.ErrNotImplemented
}
func (Unsupported) Terminal(context.Context, int32) (string, error) {
	return "", psutil.ErrNotImplemented
}
func (Unsupported) Ppid(context.Context, int32) (int32, error) { return 0, psutil.ErrNotImplemented }
func (Unsupported) Children(context.Context, int32) ([]int32, error) {
	return nil, psutil.ErrNotImplemented
}
func (Unsupported) Uids(context.Context, int32) (IDs, error) { return IDs{}, psutil.ErrNotImplemented }
func (Unsupported) Gids(context.Context, int32) (IDs, error) { return IDs{}, psutil.ErrNotImplemented }
func (Unsupported) Username(context.Context, int32) (string, error) {
	return "", psutil.ErrNotImplemented
}
func (Unsupported) Nice(context.Context, int32) (int, error) { return 0, psutil.ErrNotImplemented }
func (Unsupported) SetNice(context.Context, int32, int) error { return psutil.ErrNotImplemented }
func (Unsupported) IONice(context.Context, int32) (IONice, error) {
	return IONice{}, psutil.ErrNotImplemented
}
func (Unsupported) SetIONice(context.Context, int32, IONice) error { return psutil.ErrNotImplemented }
func (Unsupported) IOCounters(context.Context, int32) (IOCounters, error) {
	return IOCounters{}, psutil.ErrNotImplemented
}
func (Unsupported) NumCtxSwitches(context.Context, int32) (CtxSwitches, error) {
	return CtxSwitches{}, psutil.ErrNotImplemented
}
func (Unsupported) NumThreads(context.Context, int32) (int, error) {
	return 0, psutil.ErrNotImplemented
}
func (Unsupported) Threads(context.Context, int32) ([]Thread, error) {
	return nil, psutil.ErrNotImplemented
}
func (Unsupported) Times(context.Context, int32) (ProcessTimes, error) {
	return ProcessTimes{}, psutil.ErrNotImplemented
}
func (Unsupported) MemoryInfo(context.Context, int32) (MemoryInfo, error) {
	return MemoryInfo{}, psutil.ErrNotImplemented
}
func (Unsupported) MemoryMaps(context.Context, int32, bool) ([]MemoryMap, error) {
	return nil, psutil.ErrNotImplemented
}
func (Unsupported) OpenFiles(context.Context, int32) ([]OpenFile, error) {
	return nil, psutil.ErrNotImplemented
}
func (Unsupported) NumFDs(context.Context, int32) (int, error) { return 0, psutil.ErrNotImplemented }
func (Unsupported) NumHandles(context.Context, int32) (int, error) { return 0, psutil.ErrNotImplemented }
func (Unsupported) CPUAffinity(context.Context, int32) ([]int, error) {
	return nil, psutil.ErrNotImplemented
}
func (Unsupported) SetCPUAffinity(context.Context, int32, []int) error {
	return psutil.ErrNotImplemented
}
func (Unsupported) Rlimit(context.Context, int32, int) (Rlimit, error) {
	return Rlimit{}, psutil.ErrNotImplemented
}
func (Unsupported) SetRlimit(context.Context, int32, int, Rlimit) error {
	return psutil.ErrNotImplemented
}
func (Unsupported) SendSignal(context.Context, int32, Signal) error { return psutil.ErrNotImplemented }
func (Unsupported) Reap(context.Context, int32) (ExitStatus, bool, error) {
	return ExitStatus{}, false, psutil.ErrNotImplemented
}

func (Unsupported) Connections(context.Context, string) ([]Connection, error) {
	return nil, psutil.ErrNotImplemented
}
func (Unsupported) ProcessConnections(context.Context, int32, string) ([]Connection, error) {
	return nil, psutil.ErrNotImplemented
}

func (Unsupported) CPUTimes(context.Context, bool) ([]CPUTimes, error) {
	return nil, psutil.ErrNotImplemented
}
func (Unsupported) CPUCount(context.Context, bool) (int, error) { return 0, psutil.ErrNotImplemented }
func (Unsupported) CPUStats(context.Context) (CPUStats, error) {
	return CPUStats{}, psutil.ErrNotImplemented
}
func (Unsupported) VirtualMemory(context.Context) (VirtualMemory, error) {
	return VirtualMemory{}, psutil.ErrNotImplemented
}
func (Unsupported) SwapMemory(context.Context) (SwapMemory, error) {
	return SwapMemory{}, psutil.ErrNotImplemented
}
func (Unsupported) ContainerMemory(context.Context) (ContainerMemory, error) {
	return ContainerMemory{}, psutil.ErrNotImplemented
}
func (Unsupported) DiskUsage(context.Context, string) (DiskUsage, error) {
	return DiskUsage{}, psutil.ErrNotImplemented
}
func (Unsupported) DiskPartitions(context.Context, bool) ([]Partition, error) {
	return nil, psutil.ErrNotImplemented
}
func (Unsupported) DiskIOCounters(context.Context) ([]DiskIOCounters, error) {
	return nil, psutil.ErrNotImplemented
}
func (Unsupported) NetIOCounters(context.Context) ([]NetIOCounters, error) {
	return nil, psutil.ErrNotImplemented
}
func (Unsupported) NetInterfaces(context.Context) ([]NetInterface, error) {
	return nil, psutil.ErrNotImplemented
}
func (Unsupported) Users(context.Context) ([]User, error) { return nil, psutil.ErrNotImplemented }
func (Unsupported) BootTime(context.Context) (time.Time, error) {
	return time.Time{}, psutil.ErrNotImplemented
}
func (Unsupported) Services(context.Context) ([]Service, error) {
	return nil, psutil.ErrNotImplemented
}
