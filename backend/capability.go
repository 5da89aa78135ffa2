package backend

import (
	"fmt"
	"strings"
)

// Capability names one queryable attribute or action of a backend.
type Capability int

const (
	CapPids Capability = iota
	CapIdentity
	CapName
	CapExe
	CapCmdline
	CapCwd
	CapEnviron
	CapTerminal
	CapPpid
	CapChildren
	CapUids
	CapGids
	CapUsername
	CapNice
	CapSetNice
	CapIONice
	CapSetIONice
	CapIOCounters
	CapNumCtxSwitches
	CapNumThreads
	CapThreads
	CapTimes
	CapMemoryInfo
	CapMemoryMaps
	CapOpenFiles
	CapNumFDs
	CapNumHandles
	CapCPUAffinity
	CapSetCPUAffinity
	CapRlimit
	CapSetRlimit
	CapSignal
	CapReap
	CapProcessConnections
	CapConnections
	CapCPUTimes
	CapCPUCount
	CapCPUStats
	CapVirtualMemory
	CapSwapMemory
	CapContainerMemory
	CapDiskUsage
	CapDiskPartitions
	CapDiskIOCounters
	CapNetIOCounters
	CapNetInterfaces
	CapUsers
	CapBootTime
	CapServices

	capCount
)

var capabilityNames = [...]string{
	CapPids:               "pids",
	CapIdentity:           "identity",
	CapName:               "name",
	CapExe:                "exe",
	CapCmdline:            "cmdline",
	CapCwd:                "cwd",
	CapEnviron:            "environ",
	CapTerminal:           "terminal",
	CapPpid:               "ppid",
	CapChildren:           "children",
	CapUids:               "uids",
	CapGids:               "gids",
	CapUsername:           "username",
	CapNice:               "nice",
	CapSetNice:            "set_nice",
	CapIONice:             "ionice",
	CapSetIONice:          "set_ionice",
	CapIOCounters:         "io_counters",
	CapNumCtxSwitches:     "num_ctx_switches",
	CapNumThreads:         "num_threads",
	CapThreads:            "threads",
	CapTimes:              "proc_cpu_times",
	CapMemoryInfo:         "memory_info",
	CapMemoryMaps:         "memory_maps",
	CapOpenFiles:          "open_files",
	CapNumFDs:             "num_fds",
	CapNumHandles:         "num_handles",
	CapCPUAffinity:        "cpu_affinity",
	CapSetCPUAffinity:     "set_cpu_affinity",
	CapRlimit:             "rlimit",
	CapSetRlimit:          "set_rlimit",
	CapSignal:             "send_signal",
	CapReap:               "wait",
	CapProcessConnections: "connections",
	CapConnections:        "net_connections",
	CapCPUTimes:           "cpu_times",
	CapCPUCount:           "cpu_count",
	CapCPUStats:           "cpu_stats",
	CapVirtualMemory:      "virtual_memory",
	CapSwapMemory:         "swap_memory",
	CapContainerMemory:    "container_memory",
	CapDiskUsage:          "disk_usage",
	CapDiskPartitions:     "disk_partitions",
	CapDiskIOCounters:     "disk_io_counters",
	CapNetIOCounters:      "net_io_counters",
	CapNetInterfaces:      "net_if_stats",
	CapUsers:              "users",
	CapBootTime:           "boot_time",
	CapServices:           "win_service_iter",
}

func (c Capability) String() string {
	if c < 0 || c >= capCount {
		return fmt.Sprintf("capability(%d)", int(c))
	}
	return capabilityNames[c]
}

// Capabilities is a set of Capability values.
type Capabilities uint64

// NewCapabilities returns the set holding caps.
func NewCapabilities(caps ...Capability) Capabilities {
	var s Capabilities
	for _, c := range caps {
		s = s.With(c)
	}
	return s
}

// All returns the set of every known capability.
func All() Capabilities {
	return Capabilities(1)<<capCount - 1
}

// With returns s with c added.
func (s Capabilities) With(c Capability) Capabilities {
	return s | 1<<c
}

// Without returns s with caps removed.
func (s Capabilities) Without(caps ...Capability) Capabilities {
	for _, c := range caps {
		s &^= 1 << c
	}
	return s
}

// Has reports whether c is in s.
func (s Capabilities) Has(c Capability) bool {
	return c >= 0 && c < capCount && s&(1<<c) != 0
}

func (s Capabilities) String() string {
	names := make([]string, 0, capCount)
	for c := Capability(0); c < capCount; c++ {
		if s.Has(c) {
			names = append(names, c.String())
		}
	}
	return "[" + strings.Join(names, " ") + "]"
}
