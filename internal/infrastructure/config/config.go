package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for parkzone.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	ParkTrack ParkTrackConfig `yaml:"parktrack"`
	Editor    EditorConfig    `yaml:"editor"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ParkTrackConfig contains the remote ParkTrack API settings.
type ParkTrackConfig struct {
	BaseURL string `yaml:"base_url"`
	// Token is forwarded as a bearer token. Prefer PARKZONE_PARKTRACK_TOKEN.
	Token string `yaml:"token"`
	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout"`
	// RequestLogSize bounds the in-memory request log.
	RequestLogSize int `yaml:"request_log_size"`
}

// EditorConfig contains geometric editing behaviour.
type EditorConfig struct {
	// RequireGeo rejects saves while any zone point lacks coordinates.
	RequireGeo bool `yaml:"require_geo"`

	// HitRadius is the vertex pick radius in screen pixels.
	HitRadius float64 `yaml:"hit_radius"`

	// LotCloseRadius is the distance from the first lot draft point
	// that closes the polygon, in image pixels.
	LotCloseRadius float64 `yaml:"lot_close_radius"`

	// ZoomIn and ZoomOut are the wheel scale factors.
	ZoomIn  float64 `yaml:"zoom_in"`
	ZoomOut float64 `yaml:"zoom_out"`

	MinScale float64 `yaml:"min_scale"`
	MaxScale float64 `yaml:"max_scale"`

	// PlaceholderImage is served when a camera snapshot cannot be fetched.
	PlaceholderImage string `yaml:"placeholder_image"`

	// DefaultZoneType is applied to zones created from a draft.
	DefaultZoneType string `yaml:"default_zone_type"`

	// MapCenter is used by geo placement when a zone has no coordinates yet.
	MapCenter MapCenterConfig `yaml:"map_center"`
}

// MapCenterConfig is a fallback map centre.
type MapCenterConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// DatabaseConfig contains settings for the local SQLite edit journal.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains settings for the local editor HTTP surface.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`

	// UIDir holds a built editor front end served under /editor/.
	// Empty disables it.
	UIDir string `yaml:"ui_dir"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// An empty path skips step 2, so a deployment can be configured from the
// environment alone.
//
// Environment variables follow the pattern: PARKZONE_SECTION_KEY
// For example: PARKZONE_PARKTRACK_TOKEN, PARKZONE_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file, or ""
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration without reading any file.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		ParkTrack: ParkTrackConfig{
			BaseURL:        "https://api.parktrack.live/api/v0",
			Timeout:        15,
			RequestLogSize: 200,
		},
		Editor: EditorConfig{
			RequireGeo:      true,
			HitRadius:       8,
			LotCloseRadius:  10,
			ZoomIn:          1.1,
			ZoomOut:         0.9,
			MinScale:        0.05,
			MaxScale:        20,
			DefaultZoneType: "standard",
			MapCenter: MapCenterConfig{
				Latitude:  55.751244,
				Longitude: 37.618423,
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/parkzone.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "parkzone-editor",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8090,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: PARKZONE_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// ParkTrack
	if v := os.Getenv("PARKZONE_PARKTRACK_BASE_URL"); v != "" {
		cfg.ParkTrack.BaseURL = v
	}
	if v := os.Getenv("PARKZONE_PARKTRACK_TOKEN"); v != "" {
		cfg.ParkTrack.Token = v
	}

	// Editor
	if v := os.Getenv("PARKZONE_EDITOR_REQUIRE_GEO"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Editor.RequireGeo = b
		}
	}
	if v := os.Getenv("PARKZONE_EDITOR_PLACEHOLDER_IMAGE"); v != "" {
		cfg.Editor.PlaceholderImage = v
	}

	// Database
	if v := os.Getenv("PARKZONE_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("PARKZONE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("PARKZONE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("PARKZONE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// API
	if v := os.Getenv("PARKZONE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("PARKZONE_API_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.API.Port = p
		}
	}
	if v := os.Getenv("PARKZONE_API_UI_DIR"); v != "" {
		cfg.API.UIDir = v
	}

	// InfluxDB
	if v := os.Getenv("PARKZONE_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// ParkTrack validation
	if c.ParkTrack.BaseURL == "" {
		errs = append(errs, "parktrack.base_url is required")
	} else if u, err := url.Parse(c.ParkTrack.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "parktrack.base_url must be an absolute URL")
	}
	if c.ParkTrack.Timeout < 1 {
		errs = append(errs, "parktrack.timeout must be at least 1 second")
	}
	if c.ParkTrack.RequestLogSize < 0 {
		errs = append(errs, "parktrack.request_log_size must not be negative")
	}

	// Editor validation
	if c.Editor.HitRadius <= 0 {
		errs = append(errs, "editor.hit_radius must be positive")
	}
	if c.Editor.LotCloseRadius <= 0 {
		errs = append(errs, "editor.lot_close_radius must be positive")
	}
	if c.Editor.ZoomIn <= 1 {
		errs = append(errs, "editor.zoom_in must be greater than 1")
	}
	if c.Editor.ZoomOut <= 0 || c.Editor.ZoomOut >= 1 {
		errs = append(errs, "editor.zoom_out must be between 0 and 1")
	}
	if c.Editor.MinScale <= 0 || c.Editor.MaxScale < c.Editor.MinScale {
		errs = append(errs, "editor.min_scale must be positive and not above editor.max_scale")
	}
	switch c.Editor.DefaultZoneType {
	case "standard", "parallel", "disabled":
	default:
		errs = append(errs, "editor.default_zone_type must be standard, parallel, or disabled")
	}

	// Database validation
	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when the journal is enabled")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled && (c.InfluxDB.URL == "" || c.InfluxDB.Bucket == "") {
		errs = append(errs, "influxdb.url and influxdb.bucket are required when influxdb is enabled")
	}

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetParkTrackTimeout returns the remote API request timeout as a Duration.
func (c *Config) GetParkTrackTimeout() time.Duration {
	return time.Duration(c.ParkTrack.Timeout) * time.Second
}
