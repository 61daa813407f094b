package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/GSDV/solomo/internal/adapters/geocode"
	mqttprovider "github.com/GSDV/solomo/internal/adapters/provider/mqtt"
	"github.com/GSDV/solomo/internal/adapters/provider/sim"
	"github.com/GSDV/solomo/internal/adapters/storage"
	webserver "github.com/GSDV/solomo/internal/adapters/web/server"
	"github.com/GSDV/solomo/internal/adapters/web/websocket"
	"github.com/GSDV/solomo/internal/config"
	"github.com/GSDV/solomo/internal/core/domain"
	"github.com/GSDV/solomo/internal/core/ports"
	"github.com/GSDV/solomo/internal/core/services/capability"
	"github.com/GSDV/solomo/internal/core/services/tracker"
	"github.com/GSDV/solomo/internal/telemetry"
)

// Geocode cache size; at ~11m key buckets this covers a whole city.
const geocodeCacheSize = 4096

// Application holds the core components of the daemon. It acts as the
// facade for the system, orchestrating the tracker, its provider and
// the adapters around them.
type Application struct {
	Config      *config.Config
	Tracker     *tracker.Tracker
	Provider    ports.Provider
	Store       *storage.SQLiteStore
	EventWriter *storage.EventWriter
	Geocoder    ports.Geocoder
	WSManager   *websocket.WSManager
	WebServer   *webserver.Server
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	if err := app.bootstrap(); err != nil {
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}

	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation & Infrastructure
	telemetry.InitMetrics()

	if err := app.initStorage(); err != nil {
		return err
	}

	// 2. Location provider
	if err := app.initProvider(); err != nil {
		return err
	}

	// 3. Tracker and its observers
	app.initTracker()

	// 4. Geocoding & web server
	app.initGeocoder()
	app.initServer()

	// Restore the persisted geofence set, if any.
	if app.Store != nil {
		if regions, err := app.Store.LoadRegions(context.Background()); err != nil {
			log.Printf("Warning: could not load persisted regions: %v", err)
		} else if len(regions) > 0 {
			if err := app.Tracker.RegisterRegions(regions); err != nil {
				log.Printf("Warning: persisted regions rejected: %v", err)
			} else {
				slog.Info("Restored persisted regions", "count", len(regions))
			}
		}
	}

	return nil
}

func (app *Application) initStorage() error {
	if app.Config.DBPath == "" {
		slog.Info("Persistence disabled (no database path)")
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(app.Config.DBPath), 0755); err != nil {
		return fmt.Errorf("failed to create DB directory: %w", err)
	}

	store, err := storage.NewSQLiteStore(app.Config.DBPath)
	if err != nil {
		return fmt.Errorf("failed to init storage: %w", err)
	}
	app.Store = store
	app.EventWriter = storage.NewEventWriter(store, 256)
	return nil
}

func (app *Application) initProvider() error {
	switch app.Config.Provider {
	case "mqtt":
		app.Provider = mqttprovider.New(mqttprovider.Config{
			Broker:   app.Config.MQTTBroker,
			ClientID: app.Config.MQTTClientID,
			Topic:    app.Config.MQTTTopic,
		})
		slog.Info("Using MQTT provider", "broker", app.Config.MQTTBroker, "topic", app.Config.MQTTTopic)
	case "sim", "":
		// Simulator walks from a fixed seed position.
		app.Provider = sim.New(40.4168, -3.7038)
		slog.Info("Using simulated provider")
	default:
		return fmt.Errorf("unknown provider %q", app.Config.Provider)
	}
	return nil
}

func (app *Application) initTracker() {
	// The WS manager needs the service and the tracker needs the
	// notifier; break the cycle by constructing the manager first and
	// pointing it at the tracker afterwards.
	app.WSManager = websocket.NewWSManager(nil)

	notifier := &fanoutNotifier{ws: app.WSManager, writer: app.EventWriter}
	app.Tracker = tracker.New(app.Provider, app.Config.Tracker, notifier)
	app.WSManager.Service = app.Tracker

	if app.Config.Sandbox == string(capability.SandboxPreview) {
		app.Tracker.SetSandbox(capability.SandboxPreview)
	}
}

func (app *Application) initGeocoder() {
	if app.Config.GeocodeURL == "" {
		slog.Info("Reverse geocoding disabled")
		return
	}
	app.Geocoder = geocode.NewCaching(geocode.New(app.Config.GeocodeURL), geocodeCacheSize)
}

func (app *Application) initServer() {
	opts := webserver.Options{
		Geocoder:   app.Geocoder,
		APIKeyHash: app.Config.APIKeyHash,
		Sandbox:    app.Config.Sandbox,
	}
	if app.Store != nil {
		opts.Store = app.Store
		opts.Persistence = app.EventWriter
	}
	app.WebServer = webserver.NewServer(app.Config.Addr, app.Tracker, app.WSManager, opts)
}

// Run starts the application components and manages their execution lifecycle.
func (app *Application) Run(ctx context.Context) error {
	slog.Info("Starting solomo components...")

	if app.EventWriter != nil {
		app.EventWriter.Start(ctx)
	}

	errChan := make(chan error, 1)
	go func() {
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	slog.Info("solomo ready", "addr", app.Config.Addr)

	select {
	case <-ctx.Done():
		slog.Info("Termination signal received")
	case err := <-errChan:
		app.cleanup()
		return err
	}

	// Give the HTTP server a moment to drain before tearing the
	// tracker down under it.
	time.Sleep(100 * time.Millisecond)
	return app.cleanup()
}

func (app *Application) cleanup() error {
	slog.Info("Cleaning up resources...")

	if app.Tracker != nil {
		app.Tracker.Close()
	}
	if app.Store != nil {
		if err := app.Store.Close(); err != nil {
			log.Printf("Storage close error: %v", err)
		}
	}
	return nil
}

// fanoutNotifier feeds tracker output to the WebSocket clients and, when
// persistence is configured, to the batching event writer.
type fanoutNotifier struct {
	ws     *websocket.WSManager
	writer *storage.EventWriter
}

func (n *fanoutNotifier) NotifyPosition(p domain.Position) {
	n.ws.NotifyPosition(p)
}

func (n *fanoutNotifier) NotifyEvent(e domain.Event) {
	n.ws.NotifyEvent(e)
	if n.writer != nil {
		n.writer.Enqueue(e)
	}
}

func (n *fanoutNotifier) NotifyState(s domain.Snapshot) {
	n.ws.NotifyState(s)
}
