package cgroup

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// FileSystem abstracts file system operations for testing
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	Open(name string) (fs.File, error)
}

// OSFileSystem implements FileSystem using the os package
type OSFileSystem struct{}

func (OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

func (OSFileSystem) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ErrUnlimited is returned when the control group sets no memory limit.
var ErrUnlimited = errors.New("unlimited memory limit")

// Memory is the memory accounting of the current control group in bytes.
type Memory struct {
	Limit     uint64
	Usage     uint64
	Available uint64
}

// layout locates the memory controller files of one cgroup version.
type layout struct {
	version     string
	usagePath   string
	limitPath   string
	statPath    string
	inactiveKey string
}

var (
	v2Layout = layout{
		version:     "v2",
		usagePath:   "/sys/fs/cgroup/memory.current",
		limitPath:   "/sys/fs/cgroup/memory.max",
		statPath:    "/sys/fs/cgroup/memory.stat",
		inactiveKey: "inactive_file",
	}
	v1Layout = layout{
		version:     "v1",
		usagePath:   "/sys/fs/cgroup/memory/memory.usage_in_bytes",
		limitPath:   "/sys/fs/cgroup/memory/memory.limit_in_bytes",
		statPath:    "/sys/fs/cgroup/memory/memory.stat",
		inactiveKey: "total_inactive_file",
	}
)

// v1 reports "no limit" as a huge page-aligned number.
const v1UnlimitedThreshold = 1 << 60

// ReadMemory reads the memory limit of the current control group, trying
// cgroup v2 before v1. Every file opened is closed before returning.
func ReadMemory(fsys FileSystem) (Memory, error) {
	m, err := readMemory(fsys, v2Layout)
	if err == nil {
		return m, nil
	}
	m, errV1 := readMemory(fsys, v1Layout)
	if errV1 == nil {
		return m, nil
	}
	return Memory{}, errors.Join(err, errV1)
}

func readMemory(fsys FileSystem, l layout) (Memory, error) {
	usage, err := readValue(fsys, l.usagePath)
	if err != nil {
		return Memory{}, fmt.Errorf("cgroup %s usage: %w", l.version, err)
	}
	limit, err := readValue(fsys, l.limitPath)
	if err != nil {
		return Memory{}, fmt.Errorf("cgroup %s limit: %w", l.version, err)
	}
	if limit > v1UnlimitedThreshold {
		return Memory{}, fmt.Errorf("cgroup %s limit: %w", l.version, ErrUnlimited)
	}

	// inactive_file is reclaimable; it is absent on some kernels
	inactive, err := readStat(fsys, l.statPath, l.inactiveKey)
	if err != nil {
		inactive = 0
	}

	var available uint64
	if usage > limit {
		available = inactive
	} else {
		available = limit - usage + inactive
	}
	available = min(available, limit)

	return Memory{
		Limit:     limit,
		Usage:     usage,
		Available: available,
	}, nil
}

func readValue(fsys FileSystem, path string) (uint64, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return 0, err
	}
	str := strings.TrimSpace(string(data))
	if str == "max" {
		return 0, ErrUnlimited
	}
	val, err := strconv.ParseUint(str, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse value %q from %s: %w", str, path, err)
	}
	return val, nil
}

func readStat(fsys FileSystem, path string, key string) (uint64, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := bytes.Fields(scanner.Bytes())
		if len(fields) >= 2 && string(fields[0]) == key {
			val, err := strconv.ParseUint(string(fields[1]), 10, 64)
			if err != nil {
				return 0, fmt.Errorf("failed to parse value for key %q in %s: %w", key, path, err)
			}
			return val, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("error reading %s: %w", path, err)
	}
	return 0, fmt.Errorf("key %q not found in %s", key, path)
}
