package system

import (
	"context"
	"time"

	"github.com/reugn/go-psutil/backend"
	"github.com/reugn/go-psutil/netconn"
)

func CPUTimes(ctx context.Context) (backend.CPUTimes, error) {
	return Default().CPUTimes(ctx)
}

func PerCPUTimes(ctx context.Context) ([]backend.CPUTimes, error) {
	return Default().PerCPUTimes(ctx)
}

func CPUPercent(ctx context.Context, interval time.Duration, percpu bool) ([]float64, error) {
	return Default().CPUPercent(ctx, interval, percpu)
}

func CPUCount(ctx context.Context, logical bool) (int, error) {
	return Default().CPUCount(ctx, logical)
}

func CPUStats(ctx context.Context) (backend.CPUStats, error) {
	return Default().CPUStats(ctx)
}

func VirtualMemory(ctx context.Context) (backend.VirtualMemory, error) {
	return Default().VirtualMemory(ctx)
}

func SwapMemory(ctx context.Context) (backend.SwapMemory, error) {
	return Default().SwapMemory(ctx)
}

func ContainerMemory(ctx context.Context) (backend.ContainerMemory, error) {
	return Default().ContainerMemory(ctx)
}

func DiskUsage(ctx context.Context, path string) (backend.DiskUsage, error) {
	return Default().DiskUsage(ctx, path)
}

func DiskPartitions(ctx context.Context, all bool) ([]backend.Partition, error) {
	return Default().DiskPartitions(ctx, all)
}

func DiskIOCounters(ctx context.Context) (backend.DiskIOCounters, error) {
	return Default().DiskIOCounters(ctx)
}

func PerDiskIOCounters(ctx context.Context) ([]backend.DiskIOCounters, error) {
	return Default().PerDiskIOCounters(ctx)
}

func NetIOCounters(ctx context.Context) (backend.NetIOCounters, error) {
	return Default().NetIOCounters(ctx)
}

func PerNICIOCounters(ctx context.Context) ([]backend.NetIOCounters, error) {
	return Default().PerNICIOCounters(ctx)
}

func NetInterfaces(ctx context.Context) ([]backend.NetInterface, error) {
	return Default().NetInterfaces(ctx)
}

func NetIfAddrs(ctx context.Context) (map[string][]string, error) {
	return Default().NetIfAddrs(ctx)
}

func NetIfStats(ctx context.Context) (map[string]NetIfStat, error) {
	return Default().NetIfStats(ctx)
}

func Users(ctx context.Context) ([]backend.User, error) {
	return Default().Users(ctx)
}

func BootTime(ctx context.Context) (time.Time, error) {
	return Default().BootTime(ctx)
}

func Services(ctx context.Context) ([]backend.Service, error) {
	return Default().Services(ctx)
}

func Connections(ctx context.Context, kind string) ([]netconn.Record, error) {
	return Default().Connections(ctx, kind)
}
