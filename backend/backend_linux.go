//go:build linux

package backend

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/prometheus/procfs"
	"github.com/prometheus/procfs/sysfs"
	psutil "github.com/reugn/go-psutil"
	"github.com/reugn/go-psutil/internal/cgroup"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/tklauser/go-sysconf"
	"github.com/tklauser/numcpus"
	"golang.org/x/sys/unix"
)

// platformState is fixed when the backend is selected.
type platformState struct {
	proc     procfs.FS
	procErr  error
	sys      sysfs.FS
	sysErr   error
	clkTck   int64
	bootTime uint64
	cgroupFS cgroup.FileSystem
}

const defaultClockTicks = 100

func newPlatform() Backend {
	st := platformState{
		clkTck:   defaultClockTicks,
		cgroupFS: cgroup.OSFileSystem{},
	}
	if tck, err := sysconf.Sysconf(sysconf.SC_CLK_TCK); err == nil && tck > 0 {
		st.clkTck = tck
	}
	st.proc, st.procErr = procfs.NewDefaultFS()
	if st.procErr == nil {
		if stat, err := st.proc.Stat(); err == nil {
			st.bootTime = stat.BootTime
		} else {
			st.procErr = fmt.Errorf("boot time: %w", err)
		}
	}
	st.sys, st.sysErr = sysfs.NewDefaultFS()

	return &gopsutilBackend{
		platform:   "linux",
		caps:       All().Without(CapNumHandles, CapServices),
		resolution: time.Second / time.Duration(st.clkTck),
		os:         st,
	}
}

var linuxStates = map[string]Status{
	"R": StatusRunning,
	"S": StatusSleeping,
	"D": StatusDiskSleep,
	"T": StatusStopped,
	"t": StatusTracingStop,
	"Z": StatusZombie,
	"X": StatusDead,
	"x": StatusDead,
	"I": StatusIdle,
	"W": StatusWaiting,
	"P": StatusParked,
}

// Identity reads /proc/<pid>/stat once for both the start time and the state.
func (b *gopsutilBackend) Identity(_ context.Context, pid int32) (Identity, error) {
	if b.os.procErr != nil {
		return Identity{}, b.os.procErr
	}
	p, err := b.os.proc.Proc(int(pid))
	if err != nil {
		return Identity{}, err
	}
	stat, err := p.Stat()
	if err != nil {
		return Identity{}, err
	}
	status, ok := linuxStates[stat.State]
	if !ok {
		status = StatusUnknown
	}
	return Identity{
		CreateTime: float64(b.os.bootTime) + float64(stat.Starttime)/float64(b.os.clkTck),
		Status:     status,
	}, nil
}

func (b *gopsutilBackend) CPUAffinity(_ context.Context, pid int32) ([]int, error) {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(int(pid), &set); err != nil {
		return nil, err
	}
	n := set.Count()
	cpus := make([]int, 0, n)
	for i := 0; len(cpus) < n; i++ {
		if set.IsSet(i) {
			cpus = append(cpus, i)
		}
	}
	return cpus, nil
}

// SetCPUAffinity pins pid to cpus. An empty list means every online CPU.
func (b *gopsutilBackend) SetCPUAffinity(_ context.Context, pid int32, cpus []int) error {
	online, err := numcpus.ListOnline()
	if err != nil {
		return err
	}
	if len(cpus) == 0 {
		cpus = online
	}
	var set unix.CPUSet
	for _, c := range cpus {
		if !slices.Contains(online, c) {
			return fmt.Errorf("cpu %d is not online: %w", c, psutil.InvalidArgument)
		}
		set.Set(c)
	}
	return unix.SchedSetaffinity(int(pid), &set)
}

func (b *gopsutilBackend) Rlimit(_ context.Context, pid int32, resource int) (Rlimit, error) {
	var old unix.Rlimit
	if err := unix.Prlimit(int(pid), resource, nil, &old); err != nil {
		return Rlimit{}, err
	}
	return Rlimit{Soft: old.Cur, Hard: old.Max}, nil
}

func (b *gopsutilBackend) SetRlimit(_ context.Context, pid int32, resource int, limit Rlimit) error {
	if limit.Soft > limit.Hard {
		return fmt.Errorf("soft limit %d exceeds hard limit %d: %w", limit.Soft, limit.Hard, psutil.InvalidArgument)
	}
	return unix.Prlimit(int(pid), resource, &unix.Rlimit{Cur: limit.Soft, Max: limit.Hard}, nil)
}

const (
	ioprioWhoProcess = 1
	ioprioClassShift = 13
	ioprioPrioMask   = 1<<ioprioClassShift - 1
)

// I/O scheduling classes.
const (
	IOPrioClassNone = iota
	IOPrioClassRT
	IOPrioClassBE
	IOPrioClassIdle
)

func (b *gopsutilBackend) IONice(_ context.Context, pid int32) (IONice, error) {
	r, _, errno := unix.Syscall(unix.SYS_IOPRIO_GET, ioprioWhoProcess, uintptr(pid), 0)
	if errno != 0 {
		return IONice{}, errno
	}
	return IONice{Class: int(r >> ioprioClassShift), Value: int(r & ioprioPrioMask)}, nil
}

func (b *gopsutilBackend) SetIONice(_ context.Context, pid int32, v IONice) error {
	switch v.Class {
	case IOPrioClassNone, IOPrioClassIdle:
		if v.Value != 0 {
			return fmt.Errorf("class %d takes no value: %w", v.Class, psutil.InvalidArgument)
		}
	case IOPrioClassRT, IOPrioClassBE:
		if v.Value < 0 || v.Value > 7 {
			return fmt.Errorf("value %d out of range [0, 7]: %w", v.Value, psutil.InvalidArgument)
		}
	default:
		return fmt.Errorf("ionice class %d: %w", v.Class, psutil.InvalidArgument)
	}
	prio := uintptr(v.Class<<ioprioClassShift | v.Value)
	if _, _, errno := unix.Syscall(unix.SYS_IOPRIO_SET, ioprioWhoProcess, uintptr(pid), prio); errno != 0 {
		return errno
	}
	return nil
}

func (b *gopsutilBackend) MemoryMaps(ctx context.Context, pid int32, grouped bool) ([]MemoryMap, error) {
	stats, err := handle(pid).MemoryMapsWithContext(ctx, grouped)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return []MemoryMap{}, nil
	}
	maps := make([]MemoryMap, 0, len(*stats))
	for _, m := range *stats {
		maps = append(maps, memoryMapFrom(m))
	}
	return maps, nil
}

// memoryMapFrom converts the kB values of smaps to bytes.
func memoryMapFrom(m process.MemoryMapsStat) MemoryMap {
	const kB = 1024
	return MemoryMap{
		Path:         m.Path,
		RSS:          m.Rss * kB,
		Size:         m.Size * kB,
		PSS:          m.Pss * kB,
		SharedClean:  m.SharedClean * kB,
		SharedDirty:  m.SharedDirty * kB,
		PrivateClean: m.PrivateClean * kB,
		PrivateDirty: m.PrivateDirty * kB,
		Referenced:   m.Referenced * kB,
		Anonymous:    m.Anonymous * kB,
		Swap:         m.Swap * kB,
	}
}

func (b *gopsutilBackend) CPUStats(context.Context) (CPUStats, error) {
	if b.os.procErr != nil {
		return CPUStats{}, b.os.procErr
	}
	stat, err := b.os.proc.Stat()
	if err != nil {
		return CPUStats{}, err
	}
	return CPUStats{
		CtxSwitches:     stat.ContextSwitches,
		Interrupts:      stat.IRQTotal,
		SoftInterrupts:  stat.SoftIRQTotal,
		ProcessesForked: stat.ProcessCreated,
	}, nil
}

func (b *gopsutilBackend) ContainerMemory(context.Context) (ContainerMemory, error) {
	m, err := cgroup.ReadMemory(b.os.cgroupFS)
	if err != nil {
		return ContainerMemory{}, err
	}
	return ContainerMemory{Limit: m.Limit, Usage: m.Usage, Available: m.Available}, nil
}

// fillLinkStats adds speed and duplex from /sys/class/net. Interfaces
// without link attributes, such as loopback, keep zero values.
func (b *gopsutilBackend) fillLinkStats(ifaces []NetInterface) {
	if b.os.sysErr != nil {
		return
	}
	class, err := b.os.sys.NetClass()
	if err != nil {
		return
	}
	for i := range ifaces {
		link, ok := class[ifaces[i].Name]
		if !ok {
			continue
		}
		if link.Speed != nil && *link.Speed > 0 {
			ifaces[i].Speed = *link.Speed
		}
		ifaces[i].Duplex = link.Duplex
	}
}
