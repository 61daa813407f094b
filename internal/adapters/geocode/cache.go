package geocode

import (
	"context"
	"fmt"
	"sync"

	"github.com/GSDV/solomo/internal/core/domain"
	"github.com/GSDV/solomo/internal/core/ports"
	"github.com/GSDV/solomo/internal/telemetry"
)

// coordinates are bucketed to ~11m so nearby lookups share an entry.
const keyPrecision = "%.4f,%.4f"

// CachingGeocoder wraps any Geocoder with a size-bounded cache. The
// same lookup twice never hits the network. Eviction is random-ish
// (map iteration order), which is good enough for a bounded memo.
type CachingGeocoder struct {
	inner ports.Geocoder

	mu      sync.Mutex
	entries map[string]domain.Address
	maxSize int
}

// NewCaching wraps inner with a cache of at most maxSize entries.
func NewCaching(inner ports.Geocoder, maxSize int) *CachingGeocoder {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &CachingGeocoder{
		inner:   inner,
		entries: make(map[string]domain.Address),
		maxSize: maxSize,
	}
}

// Reverse serves from cache when possible.
func (c *CachingGeocoder) Reverse(ctx context.Context, lat, lng float64) (domain.Address, error) {
	key := fmt.Sprintf(keyPrecision, lat, lng)

	c.mu.Lock()
	if addr, ok := c.entries[key]; ok {
		c.mu.Unlock()
		telemetry.GeocodeRequests.WithLabelValues("hit").Inc()
		return addr, nil
	}
	c.mu.Unlock()

	addr, err := c.inner.Reverse(ctx, lat, lng)
	if err != nil {
		telemetry.GeocodeRequests.WithLabelValues("error").Inc()
		return domain.Address{}, err
	}
	telemetry.GeocodeRequests.WithLabelValues("miss").Inc()

	c.mu.Lock()
	if len(c.entries) >= c.maxSize {
		for k := range c.entries {
			delete(c.entries, k)
			break
		}
	}
	c.entries[key] = addr
	c.mu.Unlock()

	return addr, nil
}

// Len returns the number of cached entries.
func (c *CachingGeocoder) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
