//go:build linux || darwin || windows || freebsd || openbsd

package backend

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"time"

	psutil "github.com/reugn/go-psutil"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"
)

// gopsutilBackend serves the contract through gopsutil. Every call builds a
// fresh process.Process; gopsutil memoizes per handle. OS-specific files add
// or override methods, anything else falls through to Unsupported.
type gopsutilBackend struct {
	Unsupported
	platform   string
	caps       Capabilities
	resolution time.Duration
	os         platformState
}

func (b *gopsutilBackend) Platform() string { return b.platform }

func (b *gopsutilBackend) Supports(c Capability) bool { return b.caps.Has(c) }

func (b *gopsutilBackend) CreateTimeResolution() time.Duration { return b.resolution }

func handle(pid int32) *process.Process {
	return &process.Process{Pid: pid}
}

func (b *gopsutilBackend) Pids(ctx context.Context) ([]int32, error) {
	pids, err := process.PidsWithContext(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids, nil
}

func (b *gopsutilBackend) PidExists(ctx context.Context, pid int32) (bool, error) {
	return process.PidExistsWithContext(ctx, pid)
}

func (b *gopsutilBackend) Name(ctx context.Context, pid int32) (string, error) {
	return handle(pid).NameWithContext(ctx)
}

func (b *gopsutilBackend) Exe(ctx context.Context, pid int32) (string, error) {
	return handle(pid).ExeWithContext(ctx)
}

func (b *gopsutilBackend) Cmdline(ctx context.Context, pid int32) ([]string, error) {
	return handle(pid).CmdlineSliceWithContext(ctx)
}

func (b *gopsutilBackend) Cwd(ctx context.Context, pid int32) (string, error) {
	return handle(pid).CwdWithContext(ctx)
}

func (b *gopsutilBackend) Environ(ctx context.Context, pid int32) ([]string, error) {
	return handle(pid).EnvironWithContext(ctx)
}

func (b *gopsutilBackend) Terminal(ctx context.Context, pid int32) (string, error) {
	return handle(pid).TerminalWithContext(ctx)
}

func (b *gopsutilBackend) Ppid(ctx context.Context, pid int32) (int32, error) {
	return handle(pid).PpidWithContext(ctx)
}

func (b *gopsutilBackend) Children(ctx context.Context, pid int32) ([]int32, error) {
	children, err := handle(pid).ChildrenWithContext(ctx)
	if err != nil {
		return nil, err
	}
	pids := make([]int32, 0, len(children))
	for _, c := range children {
		pids = append(pids, c.Pid)
	}
	return pids, nil
}

func idsFrom(v []uint32) (IDs, error) {
	switch len(v) {
	case 0:
		return IDs{}, errors.New("empty id list")
	case 1:
		return IDs{Real: v[0], Effective: v[0], Saved: v[0]}, nil
	case 2:
		return IDs{Real: v[0], Effective: v[1], Saved: v[1]}, nil
	default:
		return IDs{Real: v[0], Effective: v[1], Saved: v[2]}, nil
	}
}

func (b *gopsutilBackend) Uids(ctx context.Context, pid int32) (IDs, error) {
	v, err := handle(pid).UidsWithContext(ctx)
	if err != nil {
		return IDs{}, err
	}
	return idsFrom(v)
}

func (b *gopsutilBackend) Gids(ctx context.Context, pid int32) (IDs, error) {
	v, err := handle(pid).GidsWithContext(ctx)
	if err != nil {
		return IDs{}, err
	}
	return idsFrom(v)
}

func (b *gopsutilBackend) Username(ctx context.Context, pid int32) (string, error) {
	return handle(pid).UsernameWithContext(ctx)
}

func (b *gopsutilBackend) Nice(ctx context.Context, pid int32) (int, error) {
	n, err := handle(pid).NiceWithContext(ctx)
	return int(n), err
}

func (b *gopsutilBackend) IOCounters(ctx context.Context, pid int32) (IOCounters, error) {
	c, err := handle(pid).IOCountersWithContext(ctx)
	if err != nil {
		return IOCounters{}, err
	}
	return IOCounters{
		ReadCount:  c.ReadCount,
		WriteCount: c.WriteCount,
		ReadBytes:  c.ReadBytes,
		WriteBytes: c.WriteBytes,
	}, nil
}

func (b *gopsutilBackend) NumCtxSwitches(ctx context.Context, pid int32) (CtxSwitches, error) {
	c, err := handle(pid).NumCtxSwitchesWithContext(ctx)
	if err != nil {
		return CtxSwitches{}, err
	}
	return CtxSwitches{Voluntary: c.Voluntary, Involuntary: c.Involuntary}, nil
}

func (b *gopsutilBackend) NumThreads(ctx context.Context, pid int32) (int, error) {
	n, err := handle(pid).NumThreadsWithContext(ctx)
	return int(n), err
}

func (b *gopsutilBackend) Threads(ctx context.Context, pid int32) ([]Thread, error) {
	m, err := handle(pid).ThreadsWithContext(ctx)
	if err != nil {
		return nil, err
	}
	threads := make([]Thread, 0, len(m))
	for id, t := range m {
		threads = append(threads, Thread{ID: id, User: t.User, System: t.System})
	}
	sort.Slice(threads, func(i, j int) bool { return threads[i].ID < threads[j].ID })
	return threads, nil
}

func (b *gopsutilBackend) Times(ctx context.Context, pid int32) (ProcessTimes, error) {
	t, err := handle(pid).TimesWithContext(ctx)
	if err != nil {
		return ProcessTimes{}, err
	}
	return ProcessTimes{User: t.User, System: t.System, Iowait: t.Iowait}, nil
}

func (b *gopsutilBackend) MemoryInfo(ctx context.Context, pid int32) (MemoryInfo, error) {
	m, err := handle(pid).MemoryInfoWithContext(ctx)
	if err != nil {
		return MemoryInfo{}, err
	}
	return MemoryInfo{
		RSS:    m.RSS,
		VMS:    m.VMS,
		HWM:    m.HWM,
		Data:   m.Data,
		Stack:  m.Stack,
		Locked: m.Locked,
		Swap:   m.Swap,
	}, nil
}

func (b *gopsutilBackend) OpenFiles(ctx context.Context, pid int32) ([]OpenFile, error) {
	stats, err := handle(pid).OpenFilesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	files := make([]OpenFile, 0, len(stats))
	for _, f := range stats {
		files = append(files, OpenFile{Path: f.Path, FD: f.Fd})
	}
	return files, nil
}

func (b *gopsutilBackend) NumFDs(ctx context.Context, pid int32) (int, error) {
	n, err := handle(pid).NumFDsWithContext(ctx)
	return int(n), err
}

func (b *gopsutilBackend) SendSignal(ctx context.Context, pid int32, sig Signal) error {
	p := handle(pid)
	switch sig {
	case SignalTerminate:
		return p.TerminateWithContext(ctx)
	case SignalKill:
		return p.KillWithContext(ctx)
	case SignalSuspend:
		return p.SuspendWithContext(ctx)
	case SignalResume:
		return p.ResumeWithContext(ctx)
	default:
		return fmt.Errorf("signal %d: %w", sig, psutil.InvalidArgument)
	}
}

func connectionsFrom(stats []net.ConnectionStat) []Connection {
	conns := make([]Connection, 0, len(stats))
	for _, c := range stats {
		conns = append(conns, Connection{
			FD:     c.Fd,
			Family: c.Family,
			Type:   c.Type,
			Local:  Addr{IP: c.Laddr.IP, Port: c.Laddr.Port},
			Remote: Addr{IP: c.Raddr.IP, Port: c.Raddr.Port},
			Status: c.Status,
			Pid:    c.Pid,
		})
	}
	return conns
}

func (b *gopsutilBackend) Connections(ctx context.Context, kind string) ([]Connection, error) {
	stats, err := net.ConnectionsWithContext(ctx, kind)
	if err != nil {
		return nil, err
	}
	return connectionsFrom(stats), nil
}

func (b *gopsutilBackend) ProcessConnections(ctx context.Context, pid int32, kind string) ([]Connection, error) {
	stats, err := net.ConnectionsPidWithContext(ctx, kind, pid)
	if err != nil {
		return nil, err
	}
	return connectionsFrom(stats), nil
}

func (b *gopsutilBackend) CPUTimes(ctx context.Context, percpu bool) ([]CPUTimes, error) {
	stats, err := cpu.TimesWithContext(ctx, percpu)
	if err != nil {
		return nil, err
	}
	times := make([]CPUTimes, 0, len(stats))
	for _, t := range stats {
		times = append(times, CPUTimes{
			CPU:       t.CPU,
			User:      t.User,
			System:    t.System,
			Idle:      t.Idle,
			Nice:      t.Nice,
			Iowait:    t.Iowait,
			Irq:       t.Irq,
			Softirq:   t.Softirq,
			Steal:     t.Steal,
			Guest:     t.Guest,
			GuestNice: t.GuestNice,
		})
	}
	return times, nil
}

func (b *gopsutilBackend) CPUCount(ctx context.Context, logical bool) (int, error) {
	return cpu.CountsWithContext(ctx, logical)
}

func (b *gopsutilBackend) VirtualMemory(ctx context.Context) (VirtualMemory, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return VirtualMemory{}, err
	}
	return VirtualMemory{
		Total:       v.Total,
		Available:   v.Available,
		Used:        v.Used,
		Free:        v.Free,
		UsedPercent: v.UsedPercent,
		Buffers:     v.Buffers,
		Cached:      v.Cached,
		Shared:      v.Shared,
	}, nil
}

func (b *gopsutilBackend) SwapMemory(ctx context.Context) (SwapMemory, error) {
	s, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return SwapMemory{}, err
	}
	return SwapMemory{
		Total:       s.Total,
		Used:        s.Used,
		Free:        s.Free,
		UsedPercent: s.UsedPercent,
		Sin:         s.Sin,
		Sout:        s.Sout,
	}, nil
}

func (b *gopsutilBackend) DiskUsage(ctx context.Context, path string) (DiskUsage, error) {
	u, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return DiskUsage{}, err
	}
	return DiskUsage{
		Path:        u.Path,
		Fstype:      u.Fstype,
		Total:       u.Total,
		Free:        u.Free,
		Used:        u.Used,
		UsedPercent: u.UsedPercent,
	}, nil
}

func (b *gopsutilBackend) DiskPartitions(ctx context.Context, all bool) ([]Partition, error) {
	stats, err := disk.PartitionsWithContext(ctx, all)
	if err != nil {
		return nil, err
	}
	parts := make([]Partition, 0, len(stats))
	for _, p := range stats {
		parts = append(parts, Partition{
			Device:     p.Device,
			Mountpoint: p.Mountpoint,
			Fstype:     p.Fstype,
			Opts:       p.Opts,
		})
	}
	return parts, nil
}

func (b *gopsutilBackend) DiskIOCounters(ctx context.Context) ([]DiskIOCounters, error) {
	stats, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		return nil, err
	}
	counters := make([]DiskIOCounters, 0, len(stats))
	for name, c := range stats {
		counters = append(counters, DiskIOCounters{
			Name:       name,
			ReadCount:  c.ReadCount,
			WriteCount: c.WriteCount,
			ReadBytes:  c.ReadBytes,
			WriteBytes: c.WriteBytes,
			ReadTime:   c.ReadTime,
			WriteTime:  c.WriteTime,
			BusyTime:   c.IoTime,
		})
	}
	sort.Slice(counters, func(i, j int) bool { return counters[i].Name < counters[j].Name })
	return counters, nil
}

func (b *gopsutilBackend) NetIOCounters(ctx context.Context) ([]NetIOCounters, error) {
	stats, err := net.IOCountersWithContext(ctx, true)
	if err != nil {
		return nil, err
	}
	counters := make([]NetIOCounters, 0, len(stats))
	for _, c := range stats {
		counters = append(counters, NetIOCounters{
			Name:        c.Name,
			BytesSent:   c.BytesSent,
			BytesRecv:   c.BytesRecv,
			PacketsSent: c.PacketsSent,
			PacketsRecv: c.PacketsRecv,
			Errin:       c.Errin,
			Errout:      c.Errout,
			Dropin:      c.Dropin,
			Dropout:     c.Dropout,
		})
	}
	return counters, nil
}

func (b *gopsutilBackend) NetInterfaces(ctx context.Context) ([]NetInterface, error) {
	stats, err := net.InterfacesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	ifaces := make([]NetInterface, 0, len(stats))
	for _, s := range stats {
		iface := NetInterface{
			Name:         s.Name,
			Index:        s.Index,
			HardwareAddr: s.HardwareAddr,
			Flags:        s.Flags,
			MTU:          s.MTU,
		}
		for _, f := range s.Flags {
			if f == "up" {
				iface.IsUp = true
			}
		}
		for _, a := range s.Addrs {
			iface.Addrs = append(iface.Addrs, a.Addr)
		}
		ifaces = append(ifaces, iface)
	}
	b.fillLinkStats(ifaces)
	return ifaces, nil
}

func (b *gopsutilBackend) Users(ctx context.Context) ([]User, error) {
	stats, err := host.UsersWithContext(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		// no utmp file, nobody logged in
		return []User{}, nil
	}
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(stats))
	for _, u := range stats {
		users = append(users, User{Name: u.User, Terminal: u.Terminal, Host: u.Host, Started: u.Started})
	}
	return users, nil
}

func (b *gopsutilBackend) BootTime(ctx context.Context) (time.Time, error) {
	secs, err := host.BootTimeWithContext(ctx)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(secs), 0), nil
}
