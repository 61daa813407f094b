package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/GSDV/solomo/internal/adapters/web/handlers"
	"github.com/GSDV/solomo/internal/adapters/web/websocket"
	"github.com/GSDV/solomo/internal/core/ports"
)

// Options carries the optional collaborators a Server may run without.
type Options struct {
	Store       ports.RegionStore // nil disables persistence endpoints
	Geocoder    ports.Geocoder    // nil disables /api/geocode
	Persistence interface {
		SetEnabled(bool)
		IsEnabled() bool
	}
	APIKeyHash string // bcrypt hash; empty disables auth
	Sandbox    string // "full" or "preview"
}

// Server handles HTTP and WebSocket connections.
type Server struct {
	Addr    string
	Service ports.LocationService

	WSManager         *websocket.WSManager
	LocationHandler   *handlers.LocationHandler
	RegionHandler     *handlers.RegionHandler
	ConfigHandler     *handlers.ConfigHandler
	ExportHandler     *handlers.ExportHandler
	GeocodeHandler    *handlers.GeocodeHandler
	CapabilityHandler *handlers.CapabilityHandler

	apiKeyHash string
	srv        *http.Server
}

// NewServer creates a new web server.
func NewServer(addr string, service ports.LocationService, wsManager *websocket.WSManager, opts Options) *Server {
	s := &Server{
		Addr:    addr,
		Service: service,

		WSManager:       wsManager,
		LocationHandler: handlers.NewLocationHandler(service),
		RegionHandler:   handlers.NewRegionHandler(service, opts.Store),
		ConfigHandler:   handlers.NewConfigHandler(service, opts.Persistence),
		ExportHandler:   handlers.NewExportHandler(service),

		apiKeyHash: opts.APIKeyHash,
	}
	if s.WSManager == nil {
		s.WSManager = websocket.NewWSManager(service)
	}
	if opts.Geocoder != nil {
		s.GeocodeHandler = handlers.NewGeocodeHandler(opts.Geocoder)
	}
	s.CapabilityHandler = handlers.NewCapabilityHandler(sandboxFrom(opts.Sandbox))
	return s
}

// Run starts the server and the state broadcaster.
func (s *Server) Run(ctx context.Context) error {
	s.WSManager.Start(ctx)

	handler := SetupRoutes(s)

	// Instrument with OpenTelemetry
	instrumentedHandler := otelhttp.NewHandler(handler, "solomo-server")

	s.srv = &http.Server{
		Addr:              s.Addr,
		Handler:           instrumentedHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful Shutdown implementation
	go func() {
		<-ctx.Done()
		log.Println("Web Server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Web Server shutdown error: %v", err)
		}
	}()

	log.Printf("Web server listening on %s", s.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
