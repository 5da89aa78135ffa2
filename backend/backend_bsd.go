//go:build darwin || freebsd || openbsd

package backend

import (
	"context"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

type platformState struct{}

func newPlatform() Backend {
	return &gopsutilBackend{
		platform: runtime.GOOS,
		caps: All().Without(
			CapCPUAffinity, CapSetCPUAffinity,
			CapIONice, CapSetIONice,
			CapRlimit, CapSetRlimit,
			CapMemoryMaps, CapCPUStats, CapContainerMemory,
			CapNumHandles, CapServices,
		),
		resolution: time.Millisecond,
	}
}

var gopsutilStates = map[string]Status{
	process.Running: StatusRunning,
	process.Sleep:   StatusSleeping,
	process.Blocked: StatusDiskSleep,
	process.Stop:    StatusStopped,
	process.Zombie:  StatusZombie,
	process.Idle:    StatusIdle,
	process.Wait:    StatusWaiting,
	process.Lock:    StatusLocked,
}

func (b *gopsutilBackend) Identity(ctx context.Context, pid int32) (Identity, error) {
	p := handle(pid)
	ms, err := p.CreateTimeWithContext(ctx)
	if err != nil {
		return Identity{}, err
	}
	status := StatusUnknown
	if states, err := p.StatusWithContext(ctx); err == nil && len(states) > 0 {
		if s, ok := gopsutilStates[states[0]]; ok {
			status = s
		}
	}
	return Identity{CreateTime: float64(ms) / 1e3, Status: status}, nil
}

func (b *gopsutilBackend) fillLinkStats([]NetInterface) {}
