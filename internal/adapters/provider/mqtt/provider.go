// Package mqtt implements a broker-fed location provider: position
// samples published as JSON on a topic drive the watch callback, and
// single-shot fetches return the last retained sample or wait for the
// next one.
package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/GSDV/solomo/internal/core/domain"
	"github.com/GSDV/solomo/internal/core/ports"
)

// Config describes the broker feed.
type Config struct {
	Broker   string // e.g. tcp://localhost:1883
	ClientID string
	Topic    string // e.g. solomo/device/+/position
}

// positionMessage is the wire format published by feeders.
type positionMessage struct {
	DeviceID  string  `json:"device_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
	Altitude  float64 `json:"altitude"`
	Speed     float64 `json:"speed"`
	Heading   float64 `json:"heading"`
	Timestamp int64   `json:"timestamp"`
}

// Provider adapts a paho MQTT subscription to ports.Provider.
type Provider struct {
	cfg    Config
	client paho.Client

	mu        sync.Mutex
	connected bool
	last      *domain.Position
	waiters   []chan domain.Position
	watchers  map[*subscription]watcher
}

type watcher struct {
	onUpdate func(domain.Position)
	onError  func(error)
}

// New creates a provider. No connection is made until the first
// permission request.
func New(cfg Config) *Provider {
	if cfg.ClientID == "" {
		cfg.ClientID = "solomo"
	}
	p := &Provider{
		cfg:      cfg,
		watchers: make(map[*subscription]watcher),
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)
	return p
}

// RequestPermission connects to the broker and subscribes to the
// position topic. An unreachable or unauthorized feed is the broker
// analogue of a denied permission.
func (p *Provider) RequestPermission(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.connected {
		p.mu.Unlock()
		return true, nil
	}
	p.mu.Unlock()

	token := p.client.Connect()
	if !token.WaitTimeout(deadlineIn(ctx)) {
		return false, domain.NewLocationError(domain.ErrTimeout, "broker connect timed out")
	}
	if err := token.Error(); err != nil {
		return false, domain.NewLocationError(domain.ErrPermissionDenied, "broker rejected connection: %v", err)
	}

	sub := p.client.Subscribe(p.cfg.Topic, 1, p.handleMessage)
	if sub.Wait(); sub.Error() != nil {
		return false, domain.NewLocationError(domain.ErrPermissionDenied, "topic subscribe failed: %v", sub.Error())
	}

	p.mu.Lock()
	p.connected = true
	p.mu.Unlock()
	slog.Info("MQTT feed connected", "broker", p.cfg.Broker, "topic", p.cfg.Topic)
	return true, nil
}

// Current returns the last retained sample or blocks until the next
// message arrives or ctx expires.
func (p *Provider) Current(ctx context.Context, _ domain.AccuracyLevel) (domain.Position, error) {
	p.mu.Lock()
	if p.last != nil {
		pos := *p.last
		p.mu.Unlock()
		return pos, nil
	}
	ch := make(chan domain.Position, 1)
	p.waiters = append(p.waiters, ch)
	p.mu.Unlock()

	select {
	case pos := <-ch:
		return pos, nil
	case <-ctx.Done():
		p.removeWaiter(ch)
		return domain.Position{}, ctx.Err()
	}
}

// Watch registers a delivery callback fed by the topic stream.
func (p *Provider) Watch(_ ports.WatchOptions, onUpdate func(domain.Position), onError func(error)) (ports.Subscription, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected {
		return nil, domain.NewLocationError(domain.ErrNetwork, "broker feed is not connected")
	}

	sub := &subscription{provider: p}
	p.watchers[sub] = watcher{onUpdate: onUpdate, onError: onError}
	return sub, nil
}

// OpenSettings has no meaning for a broker feed.
func (p *Provider) OpenSettings() error {
	return domain.NewLocationError(domain.ErrSettings, "broker-fed provider has no settings surface")
}

// Close disconnects from the broker.
func (p *Provider) Close() {
	p.client.Disconnect(250)
}

func (p *Provider) handleMessage(_ paho.Client, msg paho.Message) {
	pos, err := parsePosition(msg.Payload())
	if err != nil {
		slog.Warn("Dropping invalid position message", "topic", msg.Topic(), "error", err)
		return
	}
	p.dispatch(pos)
}

// dispatch stores the sample, wakes pending fetches and fans out to
// watch callbacks.
func (p *Provider) dispatch(pos domain.Position) {
	p.mu.Lock()
	p.last = &pos
	waiters := p.waiters
	p.waiters = nil
	callbacks := make([]func(domain.Position), 0, len(p.watchers))
	for _, w := range p.watchers {
		callbacks = append(callbacks, w.onUpdate)
	}
	p.mu.Unlock()

	for _, ch := range waiters {
		ch <- pos
	}
	for _, cb := range callbacks {
		cb(pos)
	}
}

func (p *Provider) onConnectionLost(_ paho.Client, err error) {
	slog.Error("MQTT connection lost", "error", err)
	le := domain.NewLocationError(domain.ErrNetwork, "broker connection lost: %v", err)

	p.mu.Lock()
	p.connected = false
	callbacks := make([]func(error), 0, len(p.watchers))
	for _, w := range p.watchers {
		if w.onError != nil {
			callbacks = append(callbacks, w.onError)
		}
	}
	p.mu.Unlock()

	for _, cb := range callbacks {
		cb(le)
	}
}

func (p *Provider) removeWaiter(ch chan domain.Position) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, w := range p.waiters {
		if w == ch {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			return
		}
	}
}

func (p *Provider) unwatch(sub *subscription) {
	p.mu.Lock()
	delete(p.watchers, sub)
	p.mu.Unlock()
}

// parsePosition validates and converts one wire message.
func parsePosition(payload []byte) (domain.Position, error) {
	var raw positionMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return domain.Position{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := domain.ValidateCoordinates(raw.Latitude, raw.Longitude); err != nil {
		return domain.Position{}, err
	}
	if raw.Timestamp <= 0 {
		return domain.Position{}, fmt.Errorf("timestamp must be positive")
	}

	return domain.Position{
		Latitude:  raw.Latitude,
		Longitude: raw.Longitude,
		Accuracy:  raw.Accuracy,
		Altitude:  raw.Altitude,
		Speed:     raw.Speed,
		Heading:   raw.Heading,
		Timestamp: time.Unix(raw.Timestamp, 0),
	}, nil
}

// deadlineIn converts a context deadline into the wait timeout paho
// tokens expect.
func deadlineIn(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
		return time.Millisecond
	}
	return 10 * time.Second
}

type subscription struct {
	once     sync.Once
	provider *Provider
}

// Stop deregisters the callback. The broker connection stays up for
// other consumers.
func (s *subscription) Stop() {
	s.once.Do(func() { s.provider.unwatch(s) })
}
