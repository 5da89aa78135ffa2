package util_test

import (
	"context"
	"testing"
	"time"

	"github.com/reugn/go-psutil/internal/assert"
	"github.com/reugn/go-psutil/util"
)

func TestSleep(t *testing.T) {
	start := time.Now()
	assert.NoError(t, util.Sleep(context.Background(), 20*time.Millisecond))
	assert.True(t, time.Since(start) >= 20*time.Millisecond, "slept")

	assert.NoError(t, util.Sleep(context.Background(), 0))
}

func TestSleep_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	assert.ErrorIs(t, util.Sleep(ctx, time.Hour), context.Canceled)
	assert.ErrorIs(t, util.Sleep(ctx, 0), context.Canceled)
	assert.True(t, time.Since(start) < time.Second, "returned early")
}

func TestSeconds(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want time.Time
	}{
		{"epoch", 0, time.Unix(0, 0)},
		{"whole", 1700000000, time.Unix(1700000000, 0)},
		{"fraction", 12.5, time.Unix(12, 500000000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(util.Seconds(tt.in)), tt.name)
		})
	}
}
