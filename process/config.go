package process

import (
	"fmt"
	"time"
)

// Config configures a Registry.
type Config struct {
	// CreateTimeTolerance is the largest difference between two create times
	// still considered the same process.
	// If zero, the create time resolution of the backend is used.
	CreateTimeTolerance time.Duration

	// WaitMinInterval is the first polling interval of Wait.
	// Default config value: 100µs
	WaitMinInterval time.Duration

	// WaitMaxInterval caps the exponentially growing polling interval of Wait.
	// Must be >= WaitMinInterval.
	// Default config value: 40ms
	WaitMaxInterval time.Duration
}

// DefaultConfig returns the default registry configuration.
func DefaultConfig() *Config {
	return &Config{
		WaitMinInterval: 100 * time.Microsecond,
		WaitMaxInterval: 40 * time.Millisecond,
	}
}

func (c *Config) validate() error {
	if c.CreateTimeTolerance < 0 {
		return fmt.Errorf("CreateTimeTolerance must not be negative")
	}
	if c.WaitMinInterval <= 0 {
		return fmt.Errorf("WaitMinInterval must be positive")
	}
	if c.WaitMaxInterval < c.WaitMinInterval {
		return fmt.Errorf("WaitMaxInterval (%v) must be at least WaitMinInterval (%v)",
			c.WaitMaxInterval, c.WaitMinInterval)
	}
	return nil
}
