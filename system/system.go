package system

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	psutil "github.com/reugn/go-psutil"
	"github.com/reugn/go-psutil/backend"
	"github.com/reugn/go-psutil/netconn"
	"github.com/reugn/go-psutil/util"
)

// Snapshot answers host-wide queries through one backend. Every call reads
// the OS afresh; a Snapshot holds no state beyond its backend.
type Snapshot struct {
	b     backend.Backend
	conns *netconn.Enumerator
}

// New returns a new Snapshot. A nil backend selects backend.Default() and
// a nil logger slog.Default().
func New(b backend.Backend, logger *slog.Logger) *Snapshot {
	if b == nil {
		b = backend.Default()
	}
	return &Snapshot{
		b:     b,
		conns: netconn.NewEnumerator(b, logger),
	}
}

var defaultSnapshot = sync.OnceValue(func() *Snapshot {
	return New(nil, nil)
})

// Default returns the snapshot bound to the backend of the running OS.
func Default() *Snapshot {
	return defaultSnapshot()
}

func query[T any](s *Snapshot, op string, c backend.Capability, fn func() (T, error)) (T, error) {
	var zero T
	if !s.b.Supports(c) {
		return zero, psutil.NewError(psutil.UnsupportedOnPlatform, op, 0, nil)
	}
	v, err := fn()
	if err != nil {
		return zero, psutil.Translate(op, 0, err, nil)
	}
	return v, nil
}

// CPUTimes returns the host-wide CPU times as accounted by the OS.
func (s *Snapshot) CPUTimes(ctx context.Context) (backend.CPUTimes, error) {
	times, err := query(s, "cpu_times", backend.CapCPUTimes, func() ([]backend.CPUTimes, error) {
		return s.b.CPUTimes(ctx, false)
	})
	if err != nil {
		return backend.CPUTimes{}, err
	}
	if len(times) == 0 {
		return backend.CPUTimes{}, psutil.NewError(psutil.Unclassified, "cpu_times", 0,
			fmt.Errorf("no aggregate cpu times reported"))
	}
	return times[0], nil
}

// PerCPUTimes returns one record per logical CPU, in OS order.
func (s *Snapshot) PerCPUTimes(ctx context.Context) ([]backend.CPUTimes, error) {
	return query(s, "cpu_times", backend.CapCPUTimes, func() ([]backend.CPUTimes, error) {
		return s.b.CPUTimes(ctx, true)
	})
}

// CPUPercent measures host CPU utilization over interval, blocking for its
// duration. With percpu it returns one value per logical CPU, otherwise a
// single aggregate value.
func (s *Snapshot) CPUPercent(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error) {
	const op = "cpu_percent"
	if interval <= 0 {
		return nil, psutil.NewError(psutil.InvalidArgument, op, 0,
			fmt.Errorf("interval must be positive, got %v", interval))
	}
	sample := func() ([]backend.CPUTimes, error) {
		return query(s, op, backend.CapCPUTimes, func() ([]backend.CPUTimes, error) {
			return s.b.CPUTimes(ctx, percpu)
		})
	}

	before, err := sample()
	if err != nil {
		return nil, err
	}
	if err := util.Sleep(ctx, interval); err != nil {
		return nil, psutil.Translate(op, 0, err, nil)
	}
	after, err := sample()
	if err != nil {
		return nil, err
	}
	if len(before) != len(after) {
		return nil, psutil.NewError(psutil.Unclassified, op, 0,
			fmt.Errorf("cpu count changed from %d to %d", len(before), len(after)))
	}

	percents := make([]float64, len(after))
	for i := range after {
		percents[i] = busyPercent(before[i], after[i])
	}
	return percents, nil
}

func busyPercent(before, after backend.CPUTimes) float64 {
	total := after.Total() - before.Total()
	if total <= 0 {
		return 0
	}
	busy := after.Busy() - before.Busy()
	return min(max(busy/total*100, 0), 100)
}

// CPUCount returns the number of logical or physical CPUs.
func (s *Snapshot) CPUCount(ctx context.Context, logical bool) (int, error) {
	return query(s, "cpu_count", backend.CapCPUCount, func() (int, error) {
		return s.b.CPUCount(ctx, logical)
	})
}

// CPUStats returns cumulative scheduler and interrupt counters.
func (s *Snapshot) CPUStats(ctx context.Context) (backend.CPUStats, error) {
	return query(s, "cpu_stats", backend.CapCPUStats, func() (backend.CPUStats, error) {
		return s.b.CPUStats(ctx)
	})
}

func (s *Snapshot) VirtualMemory(ctx context.Context) (backend.VirtualMemory, error) {
	return query(s, "virtual_memory", backend.CapVirtualMemory, func() (backend.VirtualMemory, error) {
		return s.b.VirtualMemory(ctx)
	})
}

func (s *Snapshot) SwapMemory(ctx context.Context) (backend.SwapMemory, error) {
	return query(s, "swap_memory", backend.CapSwapMemory, func() (backend.SwapMemory, error) {
		return s.b.SwapMemory(ctx)
	})
}

// ContainerMemory returns the memory limit of the control group the
// caller runs in.
func (s *Snapshot) ContainerMemory(ctx context.Context) (backend.ContainerMemory, error) {
	return query(s, "container_memory", backend.CapContainerMemory, func() (backend.ContainerMemory, error) {
		return s.b.ContainerMemory(ctx)
	})
}

// DiskUsage returns usage statistics of the file system holding path.
func (s *Snapshot) DiskUsage(ctx context.Context, path string) (backend.DiskUsage, error) {
	if path == "" {
		return backend.DiskUsage{}, psutil.NewError(psutil.InvalidArgument, "disk_usage", 0,
			fmt.Errorf("empty path"))
	}
	return query(s, "disk_usage", backend.CapDiskUsage, func() (backend.DiskUsage, error) {
		return s.b.DiskUsage(ctx, path)
	})
}

// DiskPartitions returns mounted partitions. Unless all is set, only
// physical devices are listed.
func (s *Snapshot) DiskPartitions(ctx context.Context, all bool) ([]backend.Partition, error) {
	return query(s, "disk_partitions", backend.CapDiskPartitions, func() ([]backend.Partition, error) {
		return s.b.DiskPartitions(ctx, all)
	})
}

// PerDiskIOCounters returns I/O counters per disk, sorted by name.
func (s *Snapshot) PerDiskIOCounters(ctx context.Context) ([]backend.DiskIOCounters, error) {
	return query(s, "disk_io_counters", backend.CapDiskIOCounters, func() ([]backend.DiskIOCounters, error) {
		return s.b.DiskIOCounters(ctx)
	})
}

// DiskIOCounters returns the sum of the per-disk I/O counters.
func (s *Snapshot) DiskIOCounters(ctx context.Context) (backend.DiskIOCounters, error) {
	disks, err := s.PerDiskIOCounters(ctx)
	if err != nil {
		return backend.DiskIOCounters{}, err
	}
	var total backend.DiskIOCounters
	for _, d := range disks {
		total.ReadCount += d.ReadCount
		total.WriteCount += d.WriteCount
		total.ReadBytes += d.ReadBytes
		total.WriteBytes += d.WriteBytes
		total.ReadTime += d.ReadTime
		total.WriteTime += d.WriteTime
		total.BusyTime += d.BusyTime
	}
	return total, nil
}

// PerNICIOCounters returns I/O counters per network interface.
func (s *Snapshot) PerNICIOCounters(ctx context.Context) ([]backend.NetIOCounters, error) {
	return query(s, "net_io_counters", backend.CapNetIOCounters, func() ([]backend.NetIOCounters, error) {
		return s.b.NetIOCounters(ctx)
	})
}

// NetIOCounters returns the sum of the per-interface I/O counters.
func (s *Snapshot) NetIOCounters(ctx context.Context) (backend.NetIOCounters, error) {
	nics, err := s.PerNICIOCounters(ctx)
	if err != nil {
		return backend.NetIOCounters{}, err
	}
	var total backend.NetIOCounters
	for _, n := range nics {
		total.BytesSent += n.BytesSent
		total.BytesRecv += n.BytesRecv
		total.PacketsSent += n.PacketsSent
		total.PacketsRecv += n.PacketsRecv
		total.Errin += n.Errin
		total.Errout += n.Errout
		total.Dropin += n.Dropin
		total.Dropout += n.Dropout
	}
	return total, nil
}

// NetInterfaces returns the addresses and link state of every interface.
func (s *Snapshot) NetInterfaces(ctx context.Context) ([]backend.NetInterface, error) {
	return query(s, "net_if_stats", backend.CapNetInterfaces, func() ([]backend.NetInterface, error) {
		return s.b.NetInterfaces(ctx)
	})
}

// NetIfAddrs returns the addresses of each interface, keyed by name.
func (s *Snapshot) NetIfAddrs(ctx context.Context) (map[string][]string, error) {
	ifaces, err := s.NetInterfaces(ctx)
	if err != nil {
		return nil, err
	}
	addrs := make(map[string][]string, len(ifaces))
	for _, iface := range ifaces {
		addrs[iface.Name] = iface.Addrs
	}
	return addrs, nil
}

// NetIfStat is the link state of one interface.
type NetIfStat struct {
	IsUp   bool
	Duplex string
	// Speed is in Mbit/s, zero when unknown.
	Speed int64
	MTU   int
	Flags []string
}

// NetIfStats returns the link state of each interface, keyed by name.
func (s *Snapshot) NetIfStats(ctx context.Context) (map[string]NetIfStat, error) {
	ifaces, err := s.NetInterfaces(ctx)
	if err != nil {
		return nil, err
	}
	stats := make(map[string]NetIfStat, len(ifaces))
	for _, iface := range ifaces {
		stats[iface.Name] = NetIfStat{
			IsUp:   iface.IsUp,
			Duplex: iface.Duplex,
			Speed:  iface.Speed,
			MTU:    iface.MTU,
			Flags:  iface.Flags,
		}
	}
	return stats, nil
}

// Users returns the logged-in sessions.
func (s *Snapshot) Users(ctx context.Context) ([]backend.User, error) {
	return query(s, "users", backend.CapUsers, func() ([]backend.User, error) {
		return s.b.Users(ctx)
	})
}

func (s *Snapshot) BootTime(ctx context.Context) (time.Time, error) {
	return query(s, "boot_time", backend.CapBootTime, func() (time.Time, error) {
		return s.b.BootTime(ctx)
	})
}

// Services returns the installed Windows services.
func (s *Snapshot) Services(ctx context.Context) ([]backend.Service, error) {
	return query(s, "win_service_iter", backend.CapServices, func() ([]backend.Service, error) {
		return s.b.Services(ctx)
	})
}

// Connections returns the system-wide network endpoints of kind.
func (s *Snapshot) Connections(ctx context.Context, kind string) ([]netconn.Record, error) {
	k, err := netconn.ParseKind(kind)
	if err != nil {
		return nil, err
	}
	return s.conns.Connections(ctx, k)
}
