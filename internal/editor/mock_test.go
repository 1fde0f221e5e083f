package editor

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"github.com/nerrad567/parkzone-core/internal/geometry"
	"github.com/nerrad567/parkzone-core/internal/parktrack"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

// ─── Mock Service ───────────────────────────────────────────────────────────

// mockService is an in-memory ParkTrack API with call counters and error
// injection.
type mockService struct {
	mu sync.Mutex

	zones     map[int64][]zone.Zone
	cameras   map[int64]zone.Camera
	snapshots map[int64]zone.Snapshot

	// createResult is returned by CreateZone when set.
	createResult *parktrack.CreatedZone
	// updateResult overrides the echo of UpdateZone when set.
	updateResult *zone.Zone

	listErr     error
	listErrFor  map[int64]error
	createErr   error
	updateErr   error
	deleteErr   error
	cameraErr   error
	snapshotErr error

	// onList runs inside ListZones before it answers.
	onList func(cameraID int64)
	// gate, when set, blocks CreateZone and UpdateZone until closed.
	gate    chan struct{}
	entered chan struct{}

	listCalls   int
	createCalls int
	updateCalls int
	deleteCalls int
	lastCreated zone.Zone
	lastUpdated zone.Zone
	deletedIDs  []string
	nextID      int
}

func newMockService() *mockService {
	return &mockService{
		zones:      make(map[int64][]zone.Zone),
		cameras:    make(map[int64]zone.Camera),
		snapshots:  make(map[int64]zone.Snapshot),
		listErrFor: make(map[int64]error),
		nextID:     100,
	}
}

func (m *mockService) ListZones(_ context.Context, cameraID int64) ([]zone.Zone, error) {
	m.mu.Lock()
	m.listCalls++
	hook := m.onList
	err := m.listErr
	if e, ok := m.listErrFor[cameraID]; ok {
		err = e
	}
	out := make([]zone.Zone, len(m.zones[cameraID]))
	for i, z := range m.zones[cameraID] {
		out[i] = z.Clone()
	}
	m.mu.Unlock()

	if hook != nil {
		hook(cameraID)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *mockService) wait() {
	m.mu.Lock()
	gate, entered := m.gate, m.entered
	m.mu.Unlock()
	if gate == nil {
		return
	}
	if entered != nil {
		entered <- struct{}{}
	}
	<-gate
}

func (m *mockService) CreateZone(_ context.Context, z zone.Zone) (parktrack.CreatedZone, error) {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createCalls++
	m.lastCreated = z.Clone()
	if m.createErr != nil {
		return parktrack.CreatedZone{}, m.createErr
	}
	if m.createResult != nil {
		return *m.createResult, nil
	}
	m.nextID++
	return parktrack.CreatedZone{ID: zone.RemoteID(strconv.Itoa(m.nextID))}, nil
}

func (m *mockService) UpdateZone(_ context.Context, id string, z zone.Zone) (zone.Zone, error) {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++
	m.lastUpdated = z.Clone()
	if m.updateErr != nil {
		return zone.Zone{}, m.updateErr
	}
	if m.updateResult != nil {
		return m.updateResult.Clone(), nil
	}
	echo := z.Clone()
	echo.ID = zone.RemoteID(id)
	echo.Lots = nil
	return echo, nil
}

func (m *mockService) DeleteZone(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	m.deletedIDs = append(m.deletedIDs, id)
	return m.deleteErr
}

func (m *mockService) GetCamera(_ context.Context, id int64) (zone.Camera, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cameraErr != nil {
		return zone.Camera{}, m.cameraErr
	}
	cam, ok := m.cameras[id]
	if !ok {
		return zone.Camera{}, parktrack.ErrNotFound
	}
	return cam, nil
}

func (m *mockService) Snapshot(_ context.Context, cameraID int64) (zone.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snapshotErr != nil {
		return zone.Snapshot{}, m.snapshotErr
	}
	snap, ok := m.snapshots[cameraID]
	if !ok {
		return zone.Snapshot{}, parktrack.ErrNotFound
	}
	return snap, nil
}

func (m *mockService) calls() (list, create, update, del int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls, m.createCalls, m.updateCalls, m.deleteCalls
}

var errBoom = errors.New("boom")

// ─── Helpers ────────────────────────────────────────────────────────────────

var square = [4]geometry.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}

var squareGeo = [4]zone.Geo{
	{Lon: 37.60, Lat: 55.70},
	{Lon: 37.61, Lat: 55.70},
	{Lon: 37.61, Lat: 55.71},
	{Lon: 37.60, Lat: 55.71},
}

func newTestStore(t testing.TB, svc *mockService, requireGeo bool) *Store {
	t.Helper()
	opts := DefaultOptions()
	opts.RequireGeo = requireGeo
	s := New(svc, opts)
	s.SelectCamera(7)
	return s
}

// remoteZone builds a saved zone on camera 7.
func remoteZone(id string) zone.Zone {
	z := zone.Zone{
		ID:       zone.RemoteID(id),
		CameraID: 7,
		Type:     zone.TypeStandard,
		Capacity: 3,
		Points:   zone.NewQuad(square),
	}
	for i := range z.Points {
		z.Points[i] = z.Points[i].WithGeo(squareGeo[i])
	}
	return z
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *recorder) last(t EventType) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == t {
			return r.events[i], true
		}
	}
	return Event{}, false
}
