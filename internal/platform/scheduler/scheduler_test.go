package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvery_InvalidSpec(t *testing.T) {
	t.Parallel()

	err := Every(context.Background(), "not a schedule", func(context.Context) {})
	assert.Error(t, err)
}

func TestEvery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		// job runs once per start; blocking jobs hold until ctx is done
		blocking bool
		check    func(t *testing.T, starts int32)
	}{
		{"quick job runs on every tick", false, func(t *testing.T, starts int32) { assert.GreaterOrEqual(t, starts, int32(2)) }},
		{"overlapping tick is skipped", true, func(t *testing.T, starts int32) { assert.Equal(t, int32(1), starts) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
			defer cancel()

			var starts atomic.Int32
			err := Every(ctx, "@every 1s", func(ctx context.Context) {
				starts.Add(1)
				if tt.blocking {
					<-ctx.Done()
				}
			})

			require.NoError(t, err)
			tt.check(t, starts.Load())
		})
	}
}

func TestEvery_WaitsForRunningJob(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	var finished atomic.Bool
	err := Every(ctx, "@every 1s", func(ctx context.Context) {
		<-ctx.Done()
		time.Sleep(100 * time.Millisecond)
		finished.Store(true)
	})

	require.NoError(t, err)
	assert.True(t, finished.Load())
}
