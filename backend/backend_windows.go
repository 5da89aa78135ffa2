//go:build windows

package backend

import (
	"context"
	"errors"
	"time"

	"github.com/shirou/gopsutil/v4/winservices"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc/mgr"
)

type platformState struct{}

// stillActive is the exit code GetExitCodeProcess reports for a live process.
const stillActive = 259

func newPlatform() Backend {
	return &gopsutilBackend{
		platform: "windows",
		caps: All().Without(
			CapUids, CapGids, CapTerminal,
			CapIONice, CapSetIONice,
			CapRlimit, CapSetRlimit,
			CapCPUAffinity, CapSetCPUAffinity,
			CapMemoryMaps, CapNumFDs,
			CapCPUStats, CapContainerMemory,
		),
		resolution: time.Millisecond,
	}
}

// Identity reports an exited process whose object is still referenced as
// dead; Windows has no zombie state.
func (b *gopsutilBackend) Identity(ctx context.Context, pid int32) (Identity, error) {
	ms, err := handle(pid).CreateTimeWithContext(ctx)
	if err != nil {
		return Identity{}, err
	}
	status := StatusRunning
	h, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err == nil {
		var code uint32
		if windows.GetExitCodeProcess(h, &code) == nil && code != stillActive {
			status = StatusDead
		}
		windows.CloseHandle(h)
	}
	return Identity{CreateTime: float64(ms) / 1e3, Status: status}, nil
}

func (b *gopsutilBackend) NumHandles(ctx context.Context, pid int32) (int, error) {
	n, err := handle(pid).NumFDsWithContext(ctx)
	return int(n), err
}

func (b *gopsutilBackend) SetNice(_ context.Context, pid int32, value int) error {
	h, err := windows.OpenProcess(windows.PROCESS_SET_INFORMATION, false, uint32(pid))
	if err != nil {
		return err
	}
	defer windows.CloseHandle(h)
	return windows.SetPriorityClass(h, uint32(value))
}

func (b *gopsutilBackend) Reap(_ context.Context, pid int32) (ExitStatus, bool, error) {
	h, err := windows.OpenProcess(windows.SYNCHRONIZE|windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if errors.Is(err, windows.ERROR_INVALID_PARAMETER) {
		return ExitStatus{}, true, nil
	}
	if err != nil {
		return ExitStatus{}, false, err
	}
	defer windows.CloseHandle(h)

	event, err := windows.WaitForSingleObject(h, 0)
	if err != nil {
		return ExitStatus{}, false, err
	}
	if event == uint32(windows.WAIT_TIMEOUT) {
		return ExitStatus{}, false, nil
	}
	var code uint32
	if err := windows.GetExitCodeProcess(h, &code); err != nil {
		return ExitStatus{}, true, nil
	}
	return ExitStatus{Code: int(code), Known: true}, true, nil
}

// Services lists services through the service control manager, closing
// every service handle it opens.
func (b *gopsutilBackend) Services(context.Context) ([]Service, error) {
	list, err := winservices.ListServices()
	if err != nil {
		return nil, err
	}
	m, err := mgr.Connect()
	if err != nil {
		return nil, err
	}
	defer m.Disconnect()

	services := make([]Service, 0, len(list))
	for _, entry := range list {
		s, err := m.OpenService(entry.Name)
		if err != nil {
			continue
		}
		svc := Service{Name: entry.Name}
		if cfg, err := s.Config(); err == nil {
			svc.DisplayName = cfg.DisplayName
			svc.Description = cfg.Description
		}
		if st, err := s.Query(); err == nil {
			svc.State = uint32(st.State)
			svc.Pid = st.ProcessId
		}
		s.Close()
		services = append(services, svc)
	}
	return services, nil
}

func (b *gopsutilBackend) fillLinkStats([]NetInterface) {}
