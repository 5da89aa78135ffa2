package backend

// Status is a process scheduling state.
type Status string

const (
	StatusRunning     Status = "running"
	StatusSleeping    Status = "sleeping"
	StatusDiskSleep   Status = "disk-sleep"
	StatusStopped     Status = "stopped"
	StatusTracingStop Status = "tracing-stop"
	StatusZombie      Status = "zombie"
	StatusDead        Status = "dead"
	StatusIdle        Status = "idle"
	StatusWaiting     Status = "waiting"
	StatusLocked      Status = "locked"
	StatusParked      Status = "parked"
	StatusUnknown     Status = "unknown"
)

// Identity is the cheap per-call view of a process used for fingerprinting.
type Identity struct {
	// CreateTime is seconds since the epoch at process start.
	CreateTime float64
	Status     Status
}

// IDs holds real, effective and saved user or group ids.
type IDs struct {
	Real      uint32
	Effective uint32
	Saved     uint32
}

// IONice is an I/O scheduling class and priority.
type IONice struct {
	Class int
	Value int
}

type IOCounters struct {
	ReadCount  uint64
	WriteCount uint64
	ReadBytes  uint64
	WriteBytes uint64
}

type CtxSwitches struct {
	Voluntary   int64
	Involuntary int64
}

// ProcessTimes are cumulative CPU seconds.
type ProcessTimes struct {
	User   float64
	System float64
	Iowait float64
}

// Thread is a single thread of a process with its CPU times.
type Thread struct {
	ID     int32
	User   float64
	System float64
}

type MemoryInfo struct {
	RSS    uint64
	VMS    uint64
	HWM    uint64
	Data   uint64
	Stack  uint64
	Locked uint64
	Swap   uint64
}

// MemoryFullInfo is MemoryInfo plus the memory unique to the process (USS)
// and its proportional share of shared memory (PSS). Swap is summed over
// the mappings.
type MemoryFullInfo struct {
	MemoryInfo
	USS uint64
	PSS uint64
}

// MemoryMap is one mapped region, or every region summed when grouped.
// Sizes are in bytes.
type MemoryMap struct {
	Path         string
	RSS          uint64
	Size         uint64
	PSS          uint64
	SharedClean  uint64
	SharedDirty  uint64
	PrivateClean uint64
	PrivateDirty uint64
	Referenced   uint64
	Anonymous    uint64
	Swap         uint64
}

type OpenFile struct {
	Path string
	FD   uint64
}

// RlimInfinity is the value of an unlimited resource limit.
const RlimInfinity = ^uint64(0)

type Rlimit struct {
	Soft uint64
	Hard uint64
}

// Signal is a portable process control action.
type Signal int

const (
	SignalTerminate Signal = iota
	SignalKill
	SignalSuspend
	SignalResume
)

func (s Signal) String() string {
	switch s {
	case SignalTerminate:
		return "terminate"
	case SignalKill:
		return "kill"
	case SignalSuspend:
		return "suspend"
	case SignalResume:
		return "resume"
	default:
		return "unknown"
	}
}

// ExitStatus is the outcome of reaping a process.
// Known is false when the OS no longer retains the exit code.
type ExitStatus struct {
	Code  int
	Known bool
}

// Addr is a socket endpoint. IP is empty for unconnected or UNIX sockets.
type Addr struct {
	IP   string
	Port uint32
}

// Connection is an open network endpoint.
type Connection struct {
	FD     uint32
	Family uint32
	Type   uint32
	Local  Addr
	Remote Addr
	Status string
	// Pid is zero when the owner is unknown.
	Pid int32
}

// CPUTimes are cumulative seconds spent in each CPU mode.
type CPUTimes struct {
	CPU       string
	User      float64
	System    float64
	Idle      float64
	Nice      float64
	Iowait    float64
	Irq       float64
	Softirq   float64
	Steal     float64
	Guest     float64
	GuestNice float64
}

// Total returns the sum of all modes, excluding guest time already
// counted in user and nice.
func (t CPUTimes) Total() float64 {
	return t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq + t.Softirq + t.Steal
}

// Busy returns Total minus idle and iowait.
func (t CPUTimes) Busy() float64 {
	return t.Total() - t.Idle - t.Iowait
}

type CPUStats struct {
	CtxSwitches     uint64
	Interrupts      uint64
	SoftInterrupts  uint64
	ProcessesForked uint64
}

type VirtualMemory struct {
	Total       uint64
	Available   uint64
	Used        uint64
	Free        uint64
	UsedPercent float64
	Buffers     uint64
	Cached      uint64
	Shared      uint64
}

type SwapMemory struct {
	Total       uint64
	Used        uint64
	Free        uint64
	UsedPercent float64
	Sin         uint64
	Sout        uint64
}

// ContainerMemory is the memory limit imposed on the host's control group.
type ContainerMemory struct {
	Limit     uint64
	Usage     uint64
	Available uint64
}

type DiskUsage struct {
	Path        string
	Fstype      string
	Total       uint64
	Free        uint64
	Used        uint64
	UsedPercent float64
}

type Partition struct {
	Device     string
	Mountpoint string
	Fstype     string
	Opts       []string
}

type DiskIOCounters struct {
	Name       string
	ReadCount  uint64
	WriteCount uint64
	ReadBytes  uint64
	WriteBytes uint64
	ReadTime   uint64
	WriteTime  uint64
	BusyTime   uint64
}

type NetIOCounters struct {
	Name        string
	BytesSent   uint64
	BytesRecv   uint64
	PacketsSent uint64
	PacketsRecv uint64
	Errin       uint64
	Errout      uint64
	Dropin      uint64
	Dropout     uint64
}

// NetInterface combines the addresses and link state of a NIC.
type NetInterface struct {
	Name         string
	Index        int
	HardwareAddr string
	Addrs        []string
	Flags        []string
	IsUp         bool
	MTU          int
	// Speed is in Mbit/s, zero when unknown.
	Speed  int64
	Duplex string
}

// User is a logged-in session.
type User struct {
	Name     string
	Terminal string
	Host     string
	Started  int
}

// Service is a Windows service entry.
type Service struct {
	Name        string
	DisplayName string
	Description string
	State       uint32
	Pid         uint32
}
