package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"github.com/nerrad567/parkzone-core/internal/canvas"
	"github.com/nerrad567/parkzone-core/internal/editor"
	"github.com/nerrad567/parkzone-core/internal/geoplace"
	"github.com/nerrad567/parkzone-core/internal/infrastructure/config"
	"github.com/nerrad567/parkzone-core/internal/infrastructure/logging"
	"github.com/nerrad567/parkzone-core/internal/infrastructure/metrics"
	"github.com/nerrad567/parkzone-core/internal/journal"
	"github.com/nerrad567/parkzone-core/internal/panel"
	"github.com/nerrad567/parkzone-core/internal/parktrack"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// CameraService lists cameras and updates camera positions.
// *parktrack.Client satisfies it.
type CameraService interface {
	ListCameras(ctx context.Context) ([]zone.Camera, error)
	geoplace.CameraService
}

// HealthChecker is implemented by every infrastructure client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config config.APIConfig
	WS     config.WebSocketConfig
	Logger *logging.Logger

	Store   *editor.Store
	Canvas  *canvas.Controller // built from Store with default options when nil
	Cameras CameraService

	Requests *parktrack.RequestLog // optional
	Journal  journal.Repository    // optional
	Metrics  *metrics.Registry     // optional

	// Checks are reported by /health, keyed by component name.
	Checks map[string]HealthChecker

	// MapCenter seeds zone placement when a zone has no coordinates.
	MapCenter zone.Geo

	Version string
}

// Server is the HTTP API server for the zone editor.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	logger    *logging.Logger
	store     *editor.Store
	canvas    *canvas.Controller
	cameras   CameraService
	requests  *parktrack.RequestLog
	journal   journal.Repository
	metrics   *metrics.Registry
	checks    map[string]HealthChecker
	mapCenter zone.Geo
	version   string
	startTime time.Time

	validate *validator.Validate
	upgrader websocket.Upgrader
	hub      *Hub
	ui       http.Handler
	server   *http.Server
	cancel   context.CancelFunc
	unsub    func()

	unsubPlace func()
	placeMu    sync.Mutex
	zonePlace  *geoplace.ZonePlacer
	camPlace   *geoplace.CameraPlacer
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("editor store is required")
	}
	if deps.Cameras == nil {
		return nil, fmt.Errorf("camera service is required")
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		logger:    deps.Logger,
		store:     deps.Store,
		canvas:    deps.Canvas,
		cameras:   deps.Cameras,
		requests:  deps.Requests,
		journal:   deps.Journal,
		metrics:   deps.Metrics,
		checks:    deps.Checks,
		mapCenter: deps.MapCenter,
		version:   deps.Version,
		startTime: time.Now(),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	s.validate.RegisterTagNameFunc(jsonFieldName)
	if s.canvas == nil {
		s.canvas = canvas.New(deps.Store, canvas.DefaultOptions())
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.isAllowedOrigin(origin)
		},
	}
	s.hub = NewHub(s.wsCfg, s.logger)

	if s.cfg.UIDir != "" {
		ui, err := panel.Handler(s.cfg.UIDir)
		if err != nil {
			return nil, fmt.Errorf("editor UI: %w", err)
		}
		s.ui = ui
	}
	s.unsubPlace = s.store.Subscribe(s.followPromotion)

	return s, nil
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub, relays store events to it, and launches the
// HTTP listener in a background goroutine. The server can be stopped with
// Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	go s.hub.Run(srvCtx)
	s.unsub = s.store.Subscribe(s.relayEvent)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.unsubPlace != nil {
		s.unsubPlace()
	}
	if s.server == nil {
		return nil
	}
	if s.unsub != nil {
		s.unsub()
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}

// relayEvent forwards a store event to WebSocket clients subscribed to its type.
func (s *Server) relayEvent(ev editor.Event) {
	s.hub.Broadcast(string(ev.Type), ev)
}

// jsonFieldName reports request fields by their JSON name.
func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}
