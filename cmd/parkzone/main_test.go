package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/parkzone-core/internal/api"
	"github.com/nerrad567/parkzone-core/internal/infrastructure/config"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// ─── Config Path ────────────────────────────────────────────────────────────

func TestGetConfigPath(t *testing.T) {
	t.Setenv(configEnv, "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv(configEnv, "/etc/parkzone/config.yaml")
	if got := getConfigPath(); got != "/etc/parkzone/config.yaml" {
		t.Errorf("getConfigPath() = %q, want env value", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "PARKZONE_TEST_DOTENV"
	os.Unsetenv(key) //nolint:errcheck // test setup
	t.Cleanup(func() { os.Unsetenv(key) }) //nolint:errcheck // test cleanup

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(key+"=from-file\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv() error = %v", err)
	}
	if got := os.Getenv(key); got != "from-file" {
		t.Errorf("%s = %q, want from-file", key, got)
	}

	if err := loadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

// ─── run ────────────────────────────────────────────────────────────────────

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, serveOptions{configPath: "/nonexistent/path/config.yaml"})
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
	if !strings.Contains(err.Error(), "loading config") {
		t.Errorf("error = %v, want config load failure", err)
	}
}

// TestRun_InvalidConfigValues verifies validation errors stop startup.
func TestRun_InvalidConfigValues(t *testing.T) {
	path := writeConfig(t, `
api:
  port: 0
logging:
  level: error
  format: text
`)
	err := run(context.Background(), serveOptions{configPath: path})
	if err == nil || !strings.Contains(err.Error(), "api.port") {
		t.Errorf("run() error = %v, want api.port validation failure", err)
	}
}

// TestRun_MissingPlaceholder verifies a configured placeholder must exist.
func TestRun_MissingPlaceholder(t *testing.T) {
	path := writeConfig(t, `
editor:
  placeholder_image: "/nonexistent/placeholder.png"
logging:
  level: error
  format: text
`)
	err := run(context.Background(), serveOptions{configPath: path})
	if err == nil || !strings.Contains(err.Error(), "placeholder") {
		t.Errorf("run() error = %v, want placeholder failure", err)
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close() //nolint:errcheck // port probe
	return port
}

// TestRun_ServesUntilCancelled starts the full service with the journal
// enabled and a fake ParkTrack server, then shuts it down.
func TestRun_ServesUntilCancelled(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/health" {
			fmt.Fprint(w, `{"status": "ok"}`)
			return
		}
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"detail": "not found"}`)
	}))
	defer remote.Close()
	t.Setenv("PARKZONE_PARKTRACK_BASE_URL", remote.URL)

	port := freePort(t)
	path := writeConfig(t, fmt.Sprintf(`
api:
  host: "127.0.0.1"
  port: %d
database:
  enabled: true
  path: %q
logging:
  level: error
  format: text
`, port, filepath.Join(t.TempDir(), "journal.db")))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, serveOptions{configPath: path}) }()

	url := fmt.Sprintf("http://127.0.0.1:%d/api/v1/health", port)
	deadline := time.Now().Add(5 * time.Second)
	var status int
	for time.Now().Before(deadline) {
		resp, err := http.Get(url) //nolint:gosec,noctx // test URL
		if err == nil {
			status = resp.StatusCode
			resp.Body.Close() //nolint:errcheck // test
			break
		}
		select {
		case err := <-done:
			cancel()
			t.Fatalf("run() exited early: %v", err)
		case <-time.After(50 * time.Millisecond):
		}
	}
	if status != http.StatusOK {
		t.Errorf("health status = %d, want 200", status)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("run() error = %v, want clean shutdown", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("run() did not return after cancel")
	}
}

// ─── Option Mapping ─────────────────────────────────────────────────────────

func TestEditorOptions(t *testing.T) {
	cfg := config.Default().Editor
	cfg.RequireGeo = false
	cfg.DefaultZoneType = "parallel"

	opts, err := editorOptions(cfg)
	if err != nil {
		t.Fatalf("editorOptions() error = %v", err)
	}
	if opts.RequireGeo || opts.DefaultType != zone.TypeParallel || opts.Placeholder != nil {
		t.Errorf("options = %+v", opts)
	}

	cfg.DefaultZoneType = "vip"
	if _, err := editorOptions(cfg); err == nil {
		t.Error("unknown zone type should fail")
	}
}

func TestLoadPlaceholder(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "placeholder.png")
	data := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if err := os.WriteFile(png, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	snap, err := loadPlaceholder(png)
	if err != nil {
		t.Fatalf("loadPlaceholder() error = %v", err)
	}
	if snap.ContentType != "image/png" || !bytes.Equal(snap.Data, data) {
		t.Errorf("snapshot = %s (%d bytes), want image/png", snap.ContentType, len(snap.Data))
	}

	empty := filepath.Join(dir, "empty.png")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := loadPlaceholder(empty); err == nil {
		t.Error("empty placeholder should fail")
	}
}

func TestCanvasOptions(t *testing.T) {
	cfg := config.EditorConfig{HitRadius: 12, ZoomIn: 1.25}
	opts := canvasOptions(cfg)
	if opts.HitRadius != 12 || opts.ZoomIn != 1.25 {
		t.Errorf("configured values not applied: %+v", opts)
	}
	if opts.ZoomOut != 0.9 || opts.ClickSlop != 3 {
		t.Errorf("zero values should keep defaults: %+v", opts)
	}
}

// ─── Health Check ───────────────────────────────────────────────────────────

func TestHealthCheck(t *testing.T) {
	down := errors.New("connection refused")
	ok := healthFunc(func(context.Context) error { return nil })
	fail := healthFunc(func(context.Context) error { return down })

	if err := healthCheck(context.Background(), map[string]api.HealthChecker{"database": ok, "mqtt": ok}); err != nil {
		t.Errorf("healthy components: %v", err)
	}
	if err := healthCheck(context.Background(), nil); err != nil {
		t.Errorf("no components: %v", err)
	}

	err := healthCheck(context.Background(), map[string]api.HealthChecker{
		"database": ok,
		"influxdb": fail,
		"mqtt":     fail,
	})
	if !errors.Is(err, down) || !strings.HasPrefix(err.Error(), "influxdb:") {
		t.Errorf("error = %v, want first failure by name", err)
	}
}

// ─── Commands ───────────────────────────────────────────────────────────────

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func fakeParkTrack(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	t.Setenv("PARKZONE_PARKTRACK_BASE_URL", ts.URL)
}

func TestVersionFlag(t *testing.T) {
	out, err := execute(t, "--version")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if !strings.Contains(out, "version "+version) {
		t.Errorf("output = %q, want version", out)
	}
}

func TestCamerasList(t *testing.T) {
	fakeParkTrack(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cameras" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"camera_id": 7, "title": "north lot", "latitude": 55.7}, {"id": "8", "title": "gate"}]`)
	})

	out, err := execute(t, "cameras", "list", "--config=")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	for _, want := range []string{"north lot", "55.700000", "gate"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "cameras", "list", "--json", "--config=")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if !strings.Contains(out, `"camera_id": 7`) {
		t.Errorf("JSON output = %s", out)
	}
}

func TestCamerasList_RemoteError(t *testing.T) {
	fakeParkTrack(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"detail": "database unavailable"}`)
	})

	if _, err := execute(t, "cameras", "list", "--config="); err == nil {
		t.Error("execute() should fail when the server errors")
	}
}

func TestZonesExport(t *testing.T) {
	queries := make(chan string, 4)
	fakeParkTrack(t, func(w http.ResponseWriter, r *http.Request) {
		queries <- r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[]`)
	})

	out, err := execute(t, "zones", "export", "7", "--config=")
	if err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if q := <-queries; q != "camera_id=7" {
		t.Errorf("query = %q, want camera_id=7", q)
	}
	if !strings.Contains(out, `"FeatureCollection"`) {
		t.Errorf("output = %s, want a FeatureCollection", out)
	}

	file := filepath.Join(t.TempDir(), "zones.geojson")
	if _, err := execute(t, "zones", "export", "7", "-o", file, "--config="); err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if data, err := os.ReadFile(file); err != nil || !strings.Contains(string(data), "FeatureCollection") {
		t.Errorf("export file = %q (%v)", data, err)
	}
}

func TestZones_InvalidCameraID(t *testing.T) {
	for _, arg := range []string{"abc", "0", "-3"} {
		if _, err := execute(t, "zones", "list", "--config=", "--", arg); err == nil {
			t.Errorf("camera id %q should be rejected", arg)
		}
	}
}
