// Package sim implements a simulated platform location backend: a
// random walk around a starting coordinate. It stands in for the
// mobile OS API so the daemon can run end to end without hardware.
package sim

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/GSDV/solomo/internal/core/domain"
	"github.com/GSDV/solomo/internal/core/ports"
)

// stepDegrees is the max random-walk step per update, ~11m of latitude.
const stepDegrees = 0.0001

// Provider is a simulated location source.
type Provider struct {
	mu sync.Mutex

	lat, lng float64
	denied   bool
	rng      *rand.Rand
}

// New creates a simulator starting at the given coordinate.
func New(lat, lng float64) *Provider {
	return &Provider{
		lat: lat,
		lng: lng,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetDenied makes permission requests fail, for exercising the denied
// paths from the CLI.
func (p *Provider) SetDenied(denied bool) {
	p.mu.Lock()
	p.denied = denied
	p.mu.Unlock()
}

// RequestPermission grants unless configured to deny.
func (p *Provider) RequestPermission(ctx context.Context) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.denied, nil
}

// Current returns the walker's position after one step.
func (p *Provider) Current(ctx context.Context, accuracy domain.AccuracyLevel) (domain.Position, error) {
	if err := ctx.Err(); err != nil {
		return domain.Position{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stepLocked()
	return p.sampleLocked(accuracy), nil
}

// Watch delivers a stepped sample on every interval tick until the
// subscription is stopped.
func (p *Provider) Watch(opts ports.WatchOptions, onUpdate func(domain.Position), onError func(error)) (ports.Subscription, error) {
	interval := time.Duration(opts.UpdateInterval) * time.Millisecond
	if interval <= 0 {
		interval = time.Second
	}

	sub := &subscription{done: make(chan struct{})}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-sub.done:
				return
			case <-ticker.C:
				p.mu.Lock()
				p.stepLocked()
				sample := p.sampleLocked(opts.Accuracy)
				p.mu.Unlock()
				onUpdate(sample)
			}
		}
	}()

	return sub, nil
}

// OpenSettings is a no-op for the simulator.
func (p *Provider) OpenSettings() error { return nil }

func (p *Provider) stepLocked() {
	p.lat += (p.rng.Float64() - 0.5) * 2 * stepDegrees
	p.lng += (p.rng.Float64() - 0.5) * 2 * stepDegrees
}

func (p *Provider) sampleLocked(accuracy domain.AccuracyLevel) domain.Position {
	acc := 25.0
	switch accuracy {
	case domain.AccuracyHigh:
		acc = 5.0
	case domain.AccuracyBalanced:
		acc = 15.0
	}
	return domain.Position{
		Latitude:  p.lat,
		Longitude: p.lng,
		Accuracy:  acc,
		Speed:     p.rng.Float64() * 2,
		Heading:   p.rng.Float64() * 360,
		Timestamp: time.Now(),
	}
}

type subscription struct {
	once sync.Once
	done chan struct{}
}

// Stop ends delivery. Idempotent.
func (s *subscription) Stop() {
	s.once.Do(func() { close(s.done) })
}
