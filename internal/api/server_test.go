package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/nerrad567/parkzone-core/internal/editor"
	"github.com/nerrad567/parkzone-core/internal/geometry"
	"github.com/nerrad567/parkzone-core/internal/infrastructure/config"
	"github.com/nerrad567/parkzone-core/internal/infrastructure/logging"
	"github.com/nerrad567/parkzone-core/internal/infrastructure/metrics"
	"github.com/nerrad567/parkzone-core/internal/parktrack"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

// ─── Mock Dependencies ──────────────────────────────────────────────────────

// fakeParkTrack is an in-memory ParkTrack API.
type fakeParkTrack struct {
	mu sync.Mutex

	cameras   map[int64]zone.Camera
	zones     map[int64][]zone.Zone
	snapshots map[int64]zone.Snapshot
	nextID    int

	listCamerasErr error
	createErr      error
	lastCameraIn   *zone.CameraInput
	deleted        []string
}

func newFakeParkTrack() *fakeParkTrack {
	return &fakeParkTrack{
		cameras:   make(map[int64]zone.Camera),
		zones:     make(map[int64][]zone.Zone),
		snapshots: make(map[int64]zone.Snapshot),
		nextID:    500,
	}
}

func (f *fakeParkTrack) ListCameras(_ context.Context) ([]zone.Camera, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listCamerasErr != nil {
		return nil, f.listCamerasErr
	}
	out := make([]zone.Camera, 0, len(f.cameras))
	for _, c := range f.cameras {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeParkTrack) GetCamera(_ context.Context, id int64) (zone.Camera, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cameras[id]
	if !ok {
		return zone.Camera{}, &parktrack.APIError{Status: http.StatusNotFound, Message: "camera not found"}
	}
	return c, nil
}

func (f *fakeParkTrack) UpdateCamera(_ context.Context, id int64, in zone.CameraInput) (zone.Camera, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cameras[id]
	if !ok {
		return zone.Camera{}, &parktrack.APIError{Status: http.StatusNotFound, Message: "camera not found"}
	}
	f.lastCameraIn = &in
	if in.Latitude != nil {
		c.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		c.Longitude = in.Longitude
	}
	f.cameras[id] = c
	return c, nil
}

func (f *fakeParkTrack) ListZones(_ context.Context, cameraID int64) ([]zone.Zone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]zone.Zone, len(f.zones[cameraID]))
	for i, z := range f.zones[cameraID] {
		out[i] = z.Clone()
	}
	return out, nil
}

func (f *fakeParkTrack) CreateZone(_ context.Context, z zone.Zone) (parktrack.CreatedZone, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return parktrack.CreatedZone{}, f.createErr
	}
	f.nextID++
	id := zone.RemoteID(strconv.Itoa(f.nextID))
	saved := z.Clone()
	saved.ID = id
	f.zones[z.CameraID] = append(f.zones[z.CameraID], saved)
	return parktrack.CreatedZone{ID: id}, nil
}

func (f *fakeParkTrack) UpdateZone(_ context.Context, id string, z zone.Zone) (zone.Zone, error) {
	echo := z.Clone()
	echo.ID = zone.RemoteID(id)
	return echo, nil
}

func (f *fakeParkTrack) DeleteZone(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeParkTrack) Snapshot(_ context.Context, cameraID int64) (zone.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, ok := f.snapshots[cameraID]
	if !ok {
		return zone.Snapshot{}, &parktrack.APIError{Status: http.StatusNotFound, Message: "no snapshot"}
	}
	return snap, nil
}

var parkTrackError = parktrack.APIError{
	Status:  http.StatusUnprocessableEntity,
	Message: "zone overlaps an existing zone",
	Method:  http.MethodPost,
	Path:    "/zones",
}

type fakeChecker struct{ err error }

func (c fakeChecker) HealthCheck(context.Context) error { return c.err }

// ─── Helpers ────────────────────────────────────────────────────────────────

var testSquare = [4]geometry.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100}}

func testLogger() *logging.Logger {
	return logging.NewWithWriter(config.LoggingConfig{Level: "error", Format: "text"}, "test", io.Discard)
}

func testDeps(svc *fakeParkTrack) Deps {
	opts := editor.DefaultOptions()
	opts.RequireGeo = false
	return Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		WS: config.WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logger:    testLogger(),
		Store:     editor.New(svc, opts),
		Cameras:   svc,
		Requests:  parktrack.NewRequestLog(10),
		MapCenter: zone.Geo{Lon: 37.6, Lat: 55.7},
		Version:   "test",
	}
}

// testServer creates a Server over an in-memory ParkTrack with camera 7
// selected.
func testServer(t *testing.T) (*Server, *fakeParkTrack) {
	t.Helper()
	svc := newFakeParkTrack()
	svc.cameras[7] = zone.Camera{ID: 7, Title: "north lot"}

	srv, err := New(testDeps(svc))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	srv.store.SelectCamera(7)
	return srv, svc
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("unmarshal %q: %v", w.Body.String(), err)
	}
	return v
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, want, w.Body.String())
	}
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

// ─── Construction ───────────────────────────────────────────────────────────

func TestNew_RequiredDeps(t *testing.T) {
	svc := newFakeParkTrack()
	tests := []struct {
		name   string
		modify func(*Deps)
	}{
		{"no logger", func(d *Deps) { d.Logger = nil }},
		{"no store", func(d *Deps) { d.Store = nil }},
		{"no cameras", func(d *Deps) { d.Cameras = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testDeps(svc)
			tt.modify(&d)
			if _, err := New(d); err == nil {
				t.Error("New() error = nil, want error")
			}
		})
	}
}

func TestServer_LifecycleWithoutStart(t *testing.T) {
	srv, _ := testServer(t)
	if err := srv.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() before Start = nil, want error")
	}
	if err := srv.Close(); err != nil {
		t.Errorf("Close() before Start = %v, want nil", err)
	}
}

// ─── Health Endpoint Tests ──────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]HealthChecker
		wantCode   int
		wantStatus string
	}{
		{"no checks", nil, http.StatusOK, "ok"},
		{"all healthy", map[string]HealthChecker{"mqtt": fakeChecker{}}, http.StatusOK, "ok"},
		{
			"one failing",
			map[string]HealthChecker{"mqtt": fakeChecker{}, "influxdb": fakeChecker{err: errors.New("down")}},
			http.StatusServiceUnavailable,
			"degraded",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := testServer(t)
			srv.checks = tt.checks

			w := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/health", "")
			wantStatus(t, w, tt.wantCode)

			resp := decodeJSON[map[string]any](t, w)
			if resp["status"] != tt.wantStatus {
				t.Errorf("status = %v, want %s", resp["status"], tt.wantStatus)
			}
			if resp["version"] != "test" {
				t.Errorf("version = %v, want test", resp["version"])
			}
		})
	}
}

func TestHealth_ContentType(t *testing.T) {
	srv, _ := testServer(t)
	w := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/health", "")
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestSystem(t *testing.T) {
	srv, _ := testServer(t)
	if _, err := srv.store.AddZone(&testSquare); err != nil {
		t.Fatalf("AddZone: %v", err)
	}

	w := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/system", "")
	wantStatus(t, w, http.StatusOK)

	info := decodeJSON[SystemInfo](t, w)
	if info.Editor.CameraID != 7 || info.Editor.Zones != 1 {
		t.Errorf("editor = %+v, want camera 7 with 1 zone", info.Editor)
	}
	if info.Editor.Tool != editor.ToolEditZone {
		t.Errorf("tool = %v, want editZone", info.Editor.Tool)
	}
	if info.Runtime.Goroutines == 0 {
		t.Error("goroutines = 0")
	}
}

// ─── Middleware Tests ───────────────────────────────────────────────────────

func TestRequestID_Generated(t *testing.T) {
	srv, _ := testServer(t)
	w := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/health", "")
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header to be set")
	}
}

func TestRequestID_PreservesClient(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "client-123")
	w := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "client-123" {
		t.Errorf("X-Request-ID = %q, want client-123", got)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{"dev mode allows any", nil, "http://localhost:5173", "http://localhost:5173"},
		{"listed origin", []string{"http://editor.local"}, "http://editor.local", "http://editor.local"},
		{"unlisted origin", []string{"http://editor.local"}, "http://evil.test", ""},
		{"wildcard", []string{"*"}, "http://any.test", "http://any.test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := testServer(t)
			srv.cfg.CORS.AllowedOrigins = tt.allowed

			req := httptest.NewRequest(http.MethodOptions, "/api/v1/state", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			srv.buildRouter().ServeHTTP(w, req)

			if w.Code != http.StatusNoContent {
				t.Errorf("preflight status = %d, want 204", w.Code)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	srv, _ := testServer(t)
	h := srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := do(t, h, http.MethodGet, "/", "")
	wantStatus(t, w, http.StatusInternalServerError)
	if e := decodeJSON[Error](t, w); e.Code != ErrCodeInternal {
		t.Errorf("code = %q, want %q", e.Code, ErrCodeInternal)
	}
}

func TestBodySizeLimit(t *testing.T) {
	srv, _ := testServer(t)
	big := `{"x": 1, "y": 1, "pad": "` + strings.Repeat("a", maxRequestBodySize) + `"}`

	w := do(t, srv.buildRouter(), http.MethodPost, "/api/v1/draft/zone/points", big)
	wantStatus(t, w, http.StatusRequestEntityTooLarge)
}

func TestMetricsMiddleware(t *testing.T) {
	svc := newFakeParkTrack()
	d := testDeps(svc)
	d.Metrics = metrics.New()
	srv, err := New(d)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	router := srv.buildRouter()

	do(t, router, http.MethodGet, "/api/v1/health", "")
	do(t, router, http.MethodGet, "/api/v1/zones/42", "")

	w := do(t, router, http.MethodGet, "/metrics", "")
	wantStatus(t, w, http.StatusOK)
	body := w.Body.String()
	for _, want := range []string{
		`route="/api/v1/health"`,
		`route="/api/v1/zones/{zoneID}"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("/metrics missing %s", want)
		}
	}
}

func TestNotFound(t *testing.T) {
	srv, _ := testServer(t)
	w := do(t, srv.buildRouter(), http.MethodGet, "/api/v1/nonexistent", "")
	wantStatus(t, w, http.StatusNotFound)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
		wantMsg  string
	}{
		{"empty body", "", ErrCodeBadRequest, "required"},
		{"malformed", "{", ErrCodeBadRequest, "invalid JSON"},
		{"missing field", `{"x": 1}`, ErrCodeValidation, "y: is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := testServer(t)
			srv.store.BeginDrawZone()

			req := httptest.NewRequest(http.MethodPost, "/api/v1/draft/zone/points", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			srv.buildRouter().ServeHTTP(w, req)

			wantStatus(t, w, http.StatusBadRequest)
			e := decodeJSON[Error](t, w)
			if e.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", e.Code, tt.wantCode)
			}
			if !strings.Contains(e.Message, tt.wantMsg) {
				t.Errorf("message = %q, want it to contain %q", e.Message, tt.wantMsg)
			}
		})
	}
}
