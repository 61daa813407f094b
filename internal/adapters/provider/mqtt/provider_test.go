package mqtt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GSDV/solomo/internal/core/domain"
	"github.com/GSDV/solomo/internal/core/ports"
)

func watchOpts() ports.WatchOptions {
	return ports.WatchOptions{Accuracy: domain.AccuracyBalanced}
}

func TestParsePosition(t *testing.T) {
	payload := []byte(`{"device_id":"dev-1","latitude":40.4168,"longitude":-3.7038,"accuracy":12.5,"speed":1.2,"timestamp":1748779200}`)

	pos, err := parsePosition(payload)
	require.NoError(t, err)
	assert.Equal(t, 40.4168, pos.Latitude)
	assert.Equal(t, -3.7038, pos.Longitude)
	assert.Equal(t, 12.5, pos.Accuracy)
	assert.Equal(t, int64(1748779200), pos.Timestamp.Unix())
}

func TestParsePositionRejectsGarbage(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `hello`},
		{"latitude out of range", `{"latitude":91,"longitude":0,"timestamp":1}`},
		{"longitude out of range", `{"latitude":0,"longitude":-181,"timestamp":1}`},
		{"missing timestamp", `{"latitude":0,"longitude":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePosition([]byte(tt.payload))
			assert.Error(t, err)
		})
	}
}

func TestDispatchWakesWaitersAndWatchers(t *testing.T) {
	p := New(Config{Broker: "tcp://localhost:1883", Topic: "solomo/device/+/position"})
	p.connected = true

	got := make(chan domain.Position, 1)
	sub, err := p.Watch(watchOpts(), func(pos domain.Position) {
		got <- pos
	}, nil)
	require.NoError(t, err)
	defer sub.Stop()

	fetchDone := make(chan domain.Position, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		pos, err := p.Current(ctx, domain.AccuracyBalanced)
		if err == nil {
			fetchDone <- pos
		}
	}()
	time.Sleep(20 * time.Millisecond) // let Current register its waiter

	p.dispatch(domain.Position{Latitude: 1, Longitude: 2, Timestamp: time.Now()})

	select {
	case pos := <-got:
		assert.Equal(t, 1.0, pos.Latitude)
	case <-time.After(time.Second):
		t.Fatal("watch callback never fired")
	}

	select {
	case pos := <-fetchDone:
		assert.Equal(t, 2.0, pos.Longitude)
	case <-time.After(time.Second):
		t.Fatal("pending fetch never woke up")
	}

	// Subsequent fetches return the retained sample immediately.
	pos, err := p.Current(context.Background(), domain.AccuracyBalanced)
	require.NoError(t, err)
	assert.Equal(t, 1.0, pos.Latitude)
}

func TestCurrentTimesOutWithoutSamples(t *testing.T) {
	p := New(Config{Broker: "tcp://localhost:1883", Topic: "t"})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := p.Current(ctx, domain.AccuracyBalanced)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStopDeregistersWatcher(t *testing.T) {
	p := New(Config{Broker: "tcp://localhost:1883", Topic: "t"})
	p.connected = true

	calls := 0
	sub, err := p.Watch(watchOpts(), func(domain.Position) { calls++ }, nil)
	require.NoError(t, err)

	sub.Stop()
	sub.Stop() // idempotent
	p.dispatch(domain.Position{Timestamp: time.Now()})
	assert.Equal(t, 0, calls)
}

func TestWatchRequiresConnection(t *testing.T) {
	p := New(Config{Broker: "tcp://localhost:1883", Topic: "t"})
	_, err := p.Watch(watchOpts(), func(domain.Position) {}, nil)
	require.Error(t, err)

	le := domain.AsLocationError(err, domain.ErrUnknown)
	assert.Equal(t, domain.ErrNetwork, le.Kind)
}
