package leakcheck

import (
	"fmt"
	"os"
	"runtime"
	"testing"
	"time"

	psutil "github.com/reugn/go-psutil"
	"github.com/shirou/gopsutil/v4/process"
)

// Sampler reports the memory currently used by the test process, in bytes.
type Sampler func() (uint64, error)

// HeapSampler returns the live heap size after a forced collection.
func HeapSampler() (uint64, error) {
	runtime.GC()
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc, nil
}

// RSSSampler returns the resident set size of the test process.
func RSSSampler() (uint64, error) {
	runtime.GC()
	p := &process.Process{Pid: int32(os.Getpid())}
	mem, err := p.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return mem.RSS, nil
}

// Config configures a leak check.
type Config struct {
	// Loops is the number of calls in each measured batch.
	// Default config value: 1000
	Loops int

	// Tolerance is the memory growth in bytes accepted between two batches.
	// Default config value: 4096
	Tolerance uint64

	// ExtraDuration is how long calls continue after the batches exceeded
	// Tolerance, to tell a one-off allocation from a leak.
	// Default config value: 3s
	ExtraDuration time.Duration

	// Sampler measures memory. If nil, HeapSampler is used.
	Sampler Sampler
}

// DefaultConfig returns the default leak check configuration.
func DefaultConfig() *Config {
	return &Config{
		Loops:         1000,
		Tolerance:     4096,
		ExtraDuration: 3 * time.Second,
		Sampler:       HeapSampler,
	}
}

func (c *Config) validate() error {
	if c.Loops < 1 {
		return fmt.Errorf("Loops must be positive, got %d", c.Loops)
	}
	if c.ExtraDuration < 0 {
		return fmt.Errorf("ExtraDuration must not be negative")
	}
	return nil
}

// Run calls fn repeatedly and fails t if doing so leaks memory, file
// descriptors or goroutines. Classified failures of fn are expected
// outcomes and ignored; Unclassified or plain errors fail t.
func Run(t testing.TB, config *Config, fn func() error) {
	t.Helper()
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.validate(); err != nil {
		t.Fatalf("leakcheck: %v", err)
	}
	sampler := config.Sampler
	if sampler == nil {
		sampler = HeapSampler
	}

	call := func() {
		t.Helper()
		if err := unexpected(fn()); err != nil {
			t.Fatalf("leakcheck: %v", err)
		}
	}
	sample := func() uint64 {
		t.Helper()
		n, err := sampler()
		if err != nil {
			t.Fatalf("leakcheck: sample memory: %v", err)
		}
		return n
	}
	batch := func() uint64 {
		t.Helper()
		for range config.Loops {
			call()
		}
		return sample()
	}

	// the first call may initialize lazily built state
	call()
	fds, fdsOK := openFDs()
	goroutines := runtime.NumGoroutine()
	call()
	if n := runtime.NumGoroutine(); n > goroutines {
		t.Fatalf("leakcheck: goroutines grew from %d to %d", goroutines, n)
	}
	if n, ok := openFDs(); fdsOK && ok && n > fds {
		t.Fatalf("leakcheck: open file descriptors grew from %d to %d", fds, n)
	}

	first := batch()
	second := batch()
	if growth(first, second) <= config.Tolerance {
		return
	}

	stopAt := time.Now().Add(config.ExtraDuration)
	for time.Now().Before(stopAt) {
		call()
	}
	third := sample()
	if diff := growth(second, third); diff > config.Tolerance {
		t.Fatalf("leakcheck: memory keeps growing: first=%d, second=%d, third=%d, diff=%d",
			first, second, third, diff)
	}
}

// ExpectKind wraps fn so that it succeeds only when fn fails with kind.
func ExpectKind(kind psutil.Kind, fn func() error) func() error {
	return func() error {
		err := fn()
		if err == nil {
			return fmt.Errorf("expected %q, got no error", kind)
		}
		if k, ok := psutil.KindOf(err); !ok || k != kind {
			return fmt.Errorf("expected %q, got: %v", kind, err)
		}
		return nil
	}
}

func unexpected(err error) error {
	if err == nil {
		return nil
	}
	kind, ok := psutil.KindOf(err)
	switch {
	case !ok:
		return fmt.Errorf("unexpected failure: %w", err)
	case kind == psutil.Unclassified:
		return fmt.Errorf("unclassified failure: %w", err)
	}
	return nil
}

func growth(before, after uint64) uint64 {
	if after <= before {
		return 0
	}
	return after - before
}

func openFDs() (int, bool) {
	p := &process.Process{Pid: int32(os.Getpid())}
	n, err := p.NumFDs()
	if err != nil {
		return 0, false
	}
	return int(n), true
}
