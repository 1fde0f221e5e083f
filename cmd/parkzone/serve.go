package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"time"

	"github.com/nerrad567/parkzone-core/internal/api"
	"github.com/nerrad567/parkzone-core/internal/canvas"
	"github.com/nerrad567/parkzone-core/internal/editor"
	"github.com/nerrad567/parkzone-core/internal/events"
	"github.com/nerrad567/parkzone-core/internal/infrastructure/config"
	"github.com/nerrad567/parkzone-core/internal/infrastructure/database"
	"github.com/nerrad567/parkzone-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/parkzone-core/internal/infrastructure/logging"
	"github.com/nerrad567/parkzone-core/internal/infrastructure/metrics"
	"github.com/nerrad567/parkzone-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/parkzone-core/internal/journal"
	"github.com/nerrad567/parkzone-core/internal/parktrack"
	"github.com/nerrad567/parkzone-core/internal/telemetry"
	"github.com/nerrad567/parkzone-core/internal/zone"
	"github.com/nerrad567/parkzone-core/migrations"
)

// startupLoadTimeout bounds loading the --camera selection at startup.
const startupLoadTimeout = 30 * time.Second

type serveOptions struct {
	configPath string
	cameraID   int64
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - opts: Config path and optional startup camera
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, opts serveOptions) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting parkzone",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", opts.configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	reg := metrics.New()
	checks := make(map[string]api.HealthChecker)

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		checks["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	// ParkTrack client and editor
	client := newParkTrackClient(cfg.ParkTrack, log, reg, influxClient)
	log.Info("ParkTrack client ready", "base_url", client.BaseURL())

	edOpts, err := editorOptions(cfg.Editor)
	if err != nil {
		return err
	}
	store := editor.New(client, edOpts)
	store.SetLogger(log)

	var occupancy telemetry.OccupancyWriter
	if influxClient != nil {
		occupancy = influxClient
	}
	defer store.Subscribe(telemetry.NewRecorder(reg, occupancy).Handle)()

	// Open the edit journal (optional)
	var journalRepo journal.Repository
	if cfg.Database.Enabled {
		db, openErr := openJournal(ctx, cfg.Database)
		if openErr != nil {
			return openErr
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		log.Info("edit journal ready", "path", cfg.Database.Path)

		repo := journal.NewSQLiteRepository(db.DB)
		recorder := journal.NewRecorder(repo)
		recorder.SetLogger(log)
		defer recorder.Attach(store)()
		journalRepo = repo
		checks["database"] = db
	} else {
		log.Info("edit journal disabled")
	}

	// Connect to MQTT broker (optional)
	if cfg.MQTT.Enabled {
		mqttClient, connErr := mqtt.Connect(cfg.MQTT)
		if connErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", connErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		stopBridge, bridgeErr := startEventBridge(mqttClient, store, log)
		if bridgeErr != nil {
			return bridgeErr
		}
		defer stopBridge()
		checks["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	// Verify local infrastructure before serving
	if err := healthCheck(ctx, checks); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed", "components", len(checks))

	// The remote server is reported by /health but not required to start.
	checks["parktrack"] = healthFunc(func(ctx context.Context) error {
		_, err := client.Health(ctx)
		return err
	})

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Logger:   log,
		Store:    store,
		Canvas:   canvas.New(store, canvasOptions(cfg.Editor)),
		Cameras:  client,
		Requests: client.RequestLog(),
		Journal:  journalRepo,
		Metrics:  reg,
		Checks:   checks,
		MapCenter: zone.Geo{
			Lat: cfg.Editor.MapCenter.Latitude,
			Lon: cfg.Editor.MapCenter.Longitude,
		},
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if opts.cameraID > 0 {
		selectStartupCamera(ctx, store, opts.cameraID, log)
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order:
	// 1. API server
	// 2. MQTT bridge and client (if enabled)
	// 3. Journal recorder and database (if enabled)
	// 4. Telemetry subscription
	// 5. InfluxDB (if enabled)

	log.Info("parkzone stopped")
	return nil
}

// newParkTrackClient builds the remote API client with its observers.
// A nil influx client is skipped.
func newParkTrackClient(cfg config.ParkTrackConfig, log *logging.Logger, reg *metrics.Registry, influxClient *influxdb.Client) *parktrack.Client {
	opts := []parktrack.Option{
		parktrack.WithLogger(log),
		parktrack.WithObserver(reg),
	}
	if influxClient != nil {
		opts = append(opts, parktrack.WithObserver(influxClient))
	}
	return parktrack.New(cfg, opts...)
}

// editorOptions converts the editor config section to store options.
func editorOptions(cfg config.EditorConfig) (editor.Options, error) {
	opts := editor.DefaultOptions()
	opts.RequireGeo = cfg.RequireGeo

	t, err := zone.ParseType(cfg.DefaultZoneType)
	if err != nil {
		return editor.Options{}, fmt.Errorf("editor.default_zone_type: %w", err)
	}
	opts.DefaultType = t

	if cfg.PlaceholderImage != "" {
		snap, err := loadPlaceholder(cfg.PlaceholderImage)
		if err != nil {
			return editor.Options{}, err
		}
		opts.Placeholder = snap
	}
	return opts, nil
}

// canvasOptions converts the editor config section to pointer settings.
// Zero values keep the canvas defaults.
func canvasOptions(cfg config.EditorConfig) canvas.Options {
	opts := canvas.DefaultOptions()
	if cfg.HitRadius > 0 {
		opts.HitRadius = cfg.HitRadius
	}
	if cfg.LotCloseRadius > 0 {
		opts.LotCloseRadius = cfg.LotCloseRadius
	}
	if cfg.ZoomIn > 0 {
		opts.ZoomIn = cfg.ZoomIn
	}
	if cfg.ZoomOut > 0 {
		opts.ZoomOut = cfg.ZoomOut
	}
	if cfg.MinScale > 0 {
		opts.MinScale = cfg.MinScale
	}
	if cfg.MaxScale > 0 {
		opts.MaxScale = cfg.MaxScale
	}
	return opts
}

// loadPlaceholder reads the image shown when a camera frame is unavailable.
func loadPlaceholder(path string) (*zone.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading placeholder image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("placeholder image %s is empty", path)
	}
	return &zone.Snapshot{Data: data, ContentType: http.DetectContentType(data)}, nil
}

// openJournal opens the journal database and applies migrations.
func openJournal(ctx context.Context, cfg config.DatabaseConfig) (*database.DB, error) {
	db, err := database.Open(database.Config{
		Path:        cfg.Path,
		WALMode:     cfg.WALMode,
		BusyTimeout: cfg.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(ctx, migrations.FS); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// startEventBridge mirrors store events to MQTT and subscribes to editor
// commands. The returned stop function detaches the bridge and publishes
// whatever is still queued.
func startEventBridge(client *mqtt.Client, store *editor.Store, log *logging.Logger) (func(), error) {
	bridge := events.NewBridge(client, client.QoS())
	bridge.SetLogger(log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		bridge.Run(ctx)
	}()
	detach := bridge.Attach(store)

	commands := events.NewCommands(store)
	commands.SetLogger(log)
	topic := mqtt.Topics{}.AllEditorCommands()
	if err := client.Subscribe(topic, client.QoS(), commands.Handle); err != nil {
		detach()
		cancel()
		<-done
		return nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	log.Info("MQTT event bridge started", "commands", topic)

	return func() {
		detach()
		cancel()
		<-done
		published, dropped := bridge.Stats()
		log.Info("MQTT event bridge stopped", "published", published, "dropped", dropped)
	}, nil
}

// selectStartupCamera selects a camera and loads it. Load failures are
// logged; the editor keeps running with the camera selected.
func selectStartupCamera(ctx context.Context, store *editor.Store, id int64, log *logging.Logger) {
	ctx, cancel := context.WithTimeout(ctx, startupLoadTimeout)
	defer cancel()

	store.SelectCamera(id)
	err := errors.Join(
		store.LoadCamera(ctx),
		store.LoadSnapshot(ctx),
		store.LoadZones(ctx),
	)
	if err != nil {
		log.Warn("loading startup camera failed", "camera_id", id, "error", err)
		return
	}
	log.Info("startup camera loaded", "camera_id", id, "zones", len(store.Snapshot().Zones))
}

// healthFunc adapts a function to api.HealthChecker.
type healthFunc func(ctx context.Context) error

func (f healthFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - checks: Enabled components keyed by name
//
// Returns:
//   - error: First health check failure in name order, or nil if all healthy
func healthCheck(ctx context.Context, checks map[string]api.HealthChecker) error {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := checks[name].HealthCheck(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
