package sim

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GSDV/solomo/internal/core/domain"
	"github.com/GSDV/solomo/internal/core/ports"
)

func TestCurrentStaysNearStart(t *testing.T) {
	p := New(40.4168, -3.7038)

	pos, err := p.Current(context.Background(), domain.AccuracyHigh)
	require.NoError(t, err)
	assert.InDelta(t, 40.4168, pos.Latitude, 0.001)
	assert.InDelta(t, -3.7038, pos.Longitude, 0.001)
	assert.Equal(t, 5.0, pos.Accuracy)
	assert.False(t, pos.Timestamp.IsZero())
}

func TestPermissionDenial(t *testing.T) {
	p := New(0, 0)
	granted, err := p.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.True(t, granted)

	p.SetDenied(true)
	granted, err = p.RequestPermission(context.Background())
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestWatchDeliversAndStops(t *testing.T) {
	p := New(0, 0)

	var count atomic.Int64
	sub, err := p.Watch(ports.WatchOptions{UpdateInterval: 10}, func(domain.Position) {
		count.Add(1)
	}, nil)
	require.NoError(t, err)

	time.Sleep(80 * time.Millisecond)
	sub.Stop()
	delivered := count.Load()
	assert.Greater(t, delivered, int64(0))

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, delivered, count.Load(), "no deliveries after Stop")

	sub.Stop() // idempotent
}

func TestCurrentRespectsContext(t *testing.T) {
	p := New(0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Current(ctx, domain.AccuracyLow)
	assert.Error(t, err)
}
