package editor

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/nerrad567/parkzone-core/internal/geometry"
	"github.com/nerrad567/parkzone-core/internal/parktrack"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

func nan() float64 { return math.NaN() }

func TestSaveZone_CreatePromotesID(t *testing.T) {
	svc := newMockService()
	svc.createResult = &parktrack.CreatedZone{ID: zone.RemoteID("42")}
	s := newTestStore(t, svc, false)
	rec := &recorder{}
	s.Subscribe(rec.record)

	local, _ := s.AddZone(&square)
	s.ClearSelection()

	got, err := s.SaveZone(context.Background(), local)
	if err != nil {
		t.Fatalf("SaveZone() error = %v", err)
	}
	if got != zone.RemoteID("42") {
		t.Errorf("SaveZone() = %v, want 42", got)
	}

	st := s.Snapshot()
	if len(st.Zones) != 1 {
		t.Fatalf("len(Zones) = %d, want 1", len(st.Zones))
	}
	if st.Zones[0].ID != zone.RemoteID("42") {
		t.Errorf("zone ID = %v, want 42", st.Zones[0].ID)
	}
	if st.ActiveZone != zone.RemoteID("42") {
		t.Errorf("ActiveZone = %v, want 42", st.ActiveZone)
	}
	if st.Status.Info != InfoZoneCreated || st.Status.Error != "" || st.Status.Loading {
		t.Errorf("Status = %+v, want info %q and no error or loading", st.Status, InfoZoneCreated)
	}
	if len(st.Saving) != 0 {
		t.Errorf("Saving = %v, want empty", st.Saving)
	}
	if svc.lastCreated.CameraID != 7 {
		t.Errorf("sent CameraID = %d, want 7", svc.lastCreated.CameraID)
	}

	ev, ok := rec.last(EventZoneCreated)
	if !ok {
		t.Fatal("no zone_created event")
	}
	if ev.PreviousID != local || ev.ZoneID != got {
		t.Errorf("event ids = %v <- %v, want %v <- %v", ev.ZoneID, ev.PreviousID, got, local)
	}
}

func TestSaveZone_CreateWithFullRecord(t *testing.T) {
	svc := newMockService()
	echo := remoteZone("77")
	echo.Capacity = 4
	echo.CameraID = 0
	svc.createResult = &parktrack.CreatedZone{ID: echo.ID, Zone: &echo}
	s := newTestStore(t, svc, false)

	local, _ := s.AddZone(&square)
	if _, err := s.SaveZone(context.Background(), local); err != nil {
		t.Fatalf("SaveZone() error = %v", err)
	}

	z, ok := s.Zone(zone.RemoteID("77"))
	if !ok {
		t.Fatal("promoted zone not found")
	}
	if z.Capacity != 4 {
		t.Errorf("Capacity = %d, want server value 4", z.Capacity)
	}
	if z.CameraID != 7 {
		t.Errorf("CameraID = %d, want 7 kept from the request", z.CameraID)
	}
}

func TestSaveZone_CapacityBelowMinimumIsLocal(t *testing.T) {
	svc := newMockService()
	s := newTestStore(t, svc, false)
	id, _ := s.AddZone(&square)

	zero := 0
	if err := s.UpdateZone(id, ZonePatch{Capacity: &zero}); err != nil {
		t.Fatalf("UpdateZone() error = %v", err)
	}

	_, err := s.SaveZone(context.Background(), id)
	if !errors.Is(err, zone.ErrCapacityTooLow) {
		t.Errorf("SaveZone() error = %v, want ErrCapacityTooLow", err)
	}
	if _, create, update, _ := svc.calls(); create+update != 0 {
		t.Errorf("network calls = %d, want 0", create+update)
	}
	st := s.Snapshot()
	if st.Status.Error == "" {
		t.Error("Status.Error is empty, want validation message")
	}
	if !st.Zones[0].ID.IsLocal() {
		t.Errorf("zone ID = %v, want still local", st.Zones[0].ID)
	}
}

func TestSaveZone_RequiresGeo(t *testing.T) {
	svc := newMockService()
	s := newTestStore(t, svc, true)
	id, _ := s.AddZone(&square)

	_, err := s.SaveZone(context.Background(), id)
	if !errors.Is(err, zone.ErrMissingCoordinates) {
		t.Fatalf("SaveZone() error = %v, want ErrMissingCoordinates", err)
	}
	if msg := s.Snapshot().Status.Error; !strings.Contains(msg, "point 1") {
		t.Errorf("Status.Error = %q, want it to name point 1", msg)
	}
	if _, create, _, _ := svc.calls(); create != 0 {
		t.Errorf("createCalls = %d, want 0", create)
	}

	if err := s.SetZoneGeo(id, squareGeo); err != nil {
		t.Fatalf("SetZoneGeo() error = %v", err)
	}
	if _, err := s.SaveZone(context.Background(), id); err != nil {
		t.Fatalf("SaveZone() after SetZoneGeo error = %v", err)
	}
	for i, p := range svc.lastCreated.Points {
		if p.Geo == nil || *p.Geo != squareGeo[i] {
			t.Errorf("sent point %d geo = %v, want %v", i, p.Geo, squareGeo[i])
		}
	}
}

func TestSaveZone_CreateFailureLeavesState(t *testing.T) {
	svc := newMockService()
	svc.createErr = &parktrack.APIError{Status: 500, Message: "database unavailable"}
	s := newTestStore(t, svc, false)
	id, _ := s.AddZone(&square)

	if _, err := s.SaveZone(context.Background(), id); err == nil {
		t.Fatal("SaveZone() error = nil, want error")
	}

	st := s.Snapshot()
	if len(st.Zones) != 1 || st.Zones[0].ID != id {
		t.Fatalf("zones = %+v, want the local zone untouched", st.Zones)
	}
	if st.Status.Error != "database unavailable" {
		t.Errorf("Status.Error = %q, want server message", st.Status.Error)
	}
	if st.Status.Loading || len(st.Saving) != 0 {
		t.Errorf("Loading/Saving = %v/%v, want cleared", st.Status.Loading, st.Saving)
	}
}

func TestSaveZone_UpdateKeepsLocalLots(t *testing.T) {
	svc := newMockService()
	svc.zones[7] = []zone.Zone{remoteZone("5")}
	s := newTestStore(t, svc, true)
	if err := s.LoadZones(context.Background()); err != nil {
		t.Fatalf("LoadZones() error = %v", err)
	}

	id := zone.RemoteID("5")
	lot := []geometry.Point{{X: 1, Y: 1}, {X: 4, Y: 1}, {X: 4, Y: 4}}
	lid, err := s.AddLot(id, lot)
	if err != nil {
		t.Fatalf("AddLot() error = %v", err)
	}

	if _, err := s.SaveZone(context.Background(), id); err != nil {
		t.Fatalf("SaveZone() error = %v", err)
	}
	if _, _, update, _ := svc.calls(); update != 1 {
		t.Errorf("updateCalls = %d, want 1", update)
	}
	if svc.lastUpdated.Capacity != 1 {
		t.Errorf("sent Capacity = %d, want lot count 1", svc.lastUpdated.Capacity)
	}

	z, _ := s.Zone(id)
	if len(z.Lots) != 1 || z.Lots[0].ID != lid {
		t.Errorf("lots after update = %+v, want local lot %v kept", z.Lots, lid)
	}
	if z.Capacity != 1 {
		t.Errorf("Capacity = %d, want 1", z.Capacity)
	}
	if got := s.Snapshot().Status.Info; got != InfoZoneUpdated {
		t.Errorf("Status.Info = %q, want %q", got, InfoZoneUpdated)
	}
}

func TestSaveZone_UpdateServerIsAuthoritative(t *testing.T) {
	svc := newMockService()
	svc.zones[7] = []zone.Zone{remoteZone("5")}
	server := remoteZone("5")
	server.Pay = 1
	server.CameraID = 0
	occupied := 2
	server.Occupied = &occupied
	svc.updateResult = &server
	s := newTestStore(t, svc, true)
	_ = s.LoadZones(context.Background())

	if _, err := s.SaveZone(context.Background(), zone.RemoteID("5")); err != nil {
		t.Fatalf("SaveZone() error = %v", err)
	}

	z, _ := s.Zone(zone.RemoteID("5"))
	if z.Pay != 1 || z.Occupied == nil || *z.Occupied != 2 {
		t.Errorf("zone = %+v, want server fields", z)
	}
	if z.CameraID != 7 {
		t.Errorf("CameraID = %d, want 7", z.CameraID)
	}
}

func TestSaveZone_UpdateFailureLeavesState(t *testing.T) {
	svc := newMockService()
	svc.zones[7] = []zone.Zone{remoteZone("5")}
	svc.updateErr = errBoom
	s := newTestStore(t, svc, true)
	_ = s.LoadZones(context.Background())

	pay := 1
	_ = s.UpdateZone(zone.RemoteID("5"), ZonePatch{Pay: &pay})
	if _, err := s.SaveZone(context.Background(), zone.RemoteID("5")); !errors.Is(err, errBoom) {
		t.Fatalf("SaveZone() error = %v, want errBoom", err)
	}

	z, _ := s.Zone(zone.RemoteID("5"))
	if z.Pay != 1 {
		t.Errorf("Pay = %d, want local edit kept", z.Pay)
	}
	if !strings.Contains(s.Snapshot().Status.Error, "boom") {
		t.Errorf("Status.Error = %q, want boom", s.Snapshot().Status.Error)
	}
}

func TestSaveZone_SingleFlight(t *testing.T) {
	svc := newMockService()
	svc.gate = make(chan struct{})
	svc.entered = make(chan struct{}, 1)
	s := newTestStore(t, svc, false)
	id, _ := s.AddZone(&square)

	done := make(chan error, 1)
	go func() {
		_, err := s.SaveZone(context.Background(), id)
		done <- err
	}()
	<-svc.entered

	st := s.Snapshot()
	if !st.Status.Loading || len(st.Saving) != 1 || st.Saving[0] != id {
		t.Errorf("during save Loading/Saving = %v/%v, want true/[%v]", st.Status.Loading, st.Saving, id)
	}
	if _, err := s.SaveZone(context.Background(), id); !errors.Is(err, ErrSaveInFlight) {
		t.Errorf("second SaveZone() error = %v, want ErrSaveInFlight", err)
	}

	close(svc.gate)
	if err := <-done; err != nil {
		t.Fatalf("SaveZone() error = %v", err)
	}
	if _, create, _, _ := svc.calls(); create != 1 {
		t.Errorf("createCalls = %d, want 1", create)
	}
	if got := s.Snapshot().Saving; len(got) != 0 {
		t.Errorf("Saving = %v, want empty", got)
	}
}

func TestRemoveZone_DuringSave(t *testing.T) {
	svc := newMockService()
	svc.gate = make(chan struct{})
	svc.entered = make(chan struct{}, 1)
	s := newTestStore(t, svc, false)
	id, _ := s.AddZone(&square)

	done := make(chan error, 1)
	go func() {
		_, err := s.SaveZone(context.Background(), id)
		done <- err
	}()
	<-svc.entered

	if err := s.RemoveZone(context.Background(), id); !errors.Is(err, ErrSaveInFlight) {
		t.Errorf("RemoveZone() during save error = %v, want ErrSaveInFlight", err)
	}

	close(svc.gate)
	if err := <-done; err != nil {
		t.Fatalf("SaveZone() error = %v", err)
	}
	st := s.Snapshot()
	if len(st.Zones) != 1 || st.Zones[0].ID != zone.RemoteID("101") {
		t.Fatalf("zones = %+v, want the promoted zone 101", st.Zones)
	}
	if _, _, _, del := svc.calls(); del != 0 {
		t.Errorf("deleteCalls = %d, want 0", del)
	}
}

func TestSaveZone_ZoneDroppedWhileSaving(t *testing.T) {
	svc := newMockService()
	svc.gate = make(chan struct{})
	svc.entered = make(chan struct{}, 1)
	s := newTestStore(t, svc, false)
	rec := &recorder{}
	s.Subscribe(rec.record)
	id, _ := s.AddZone(&square)

	done := make(chan error, 1)
	go func() {
		_, err := s.SaveZone(context.Background(), id)
		done <- err
	}()
	<-svc.entered

	// Switching cameras drops every zone, including the one being saved.
	s.SelectCamera(8)
	close(svc.gate)

	if err := <-done; !errors.Is(err, ErrZoneNotFound) {
		t.Fatalf("SaveZone() error = %v, want ErrZoneNotFound", err)
	}
	if _, ok := rec.last(EventZoneCreated); ok {
		t.Error("zone_created published for a zone that no longer exists")
	}
	st := s.Snapshot()
	if len(st.Zones) != 0 || len(st.Saving) != 0 {
		t.Errorf("zones=%d saving=%v, want none", len(st.Zones), st.Saving)
	}
}

func TestSaveZone_UpdateOfDroppedZone(t *testing.T) {
	svc := newMockService()
	svc.zones[7] = []zone.Zone{remoteZone("5")}
	s := newTestStore(t, svc, false)
	_ = s.LoadZones(context.Background())
	rec := &recorder{}
	s.Subscribe(rec.record)

	svc.mu.Lock()
	svc.gate = make(chan struct{})
	svc.entered = make(chan struct{}, 1)
	svc.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := s.SaveZone(context.Background(), zone.RemoteID("5"))
		done <- err
	}()
	<-svc.entered

	s.SelectCamera(8)
	close(svc.gate)

	if err := <-done; !errors.Is(err, ErrZoneNotFound) {
		t.Fatalf("SaveZone() error = %v, want ErrZoneNotFound", err)
	}
	if _, ok := rec.last(EventZoneUpdated); ok {
		t.Error("zone_updated published for a zone that no longer exists")
	}
}

func TestSaveZone_ValidationFailureKeepsWinding(t *testing.T) {
	s := newTestStore(t, newMockService(), true)
	ccw := [4]geometry.Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}}
	id, _ := s.AddZone(&ccw)

	if _, err := s.SaveZone(context.Background(), id); !errors.Is(err, zone.ErrMissingCoordinates) {
		t.Fatalf("SaveZone() error = %v, want ErrMissingCoordinates", err)
	}
	z, _ := s.Zone(id)
	for i, p := range z.Points {
		if p.Pixel != ccw[i] {
			t.Errorf("point %d = %v, want %v untouched", i, p.Pixel, ccw[i])
		}
	}

	if err := s.SetZoneGeo(id, squareGeo); err != nil {
		t.Fatalf("SetZoneGeo() error = %v", err)
	}
	if _, err := s.SaveZone(context.Background(), id); err != nil {
		t.Fatalf("SaveZone() error = %v", err)
	}
	saved := s.Snapshot().Zones[0]
	quad := saved.Quad()
	if !geometry.IsClockwise(quad[:]) {
		t.Errorf("saved quad %v not clockwise", saved.Quad())
	}
}

func TestSaveZone_UnknownZone(t *testing.T) {
	s := newTestStore(t, newMockService(), false)
	if _, err := s.SaveZone(context.Background(), zone.RemoteID("nope")); !errors.Is(err, ErrZoneNotFound) {
		t.Errorf("SaveZone() error = %v, want ErrZoneNotFound", err)
	}
}

func TestRemoveZone(t *testing.T) {
	t.Run("local zone without network", func(t *testing.T) {
		svc := newMockService()
		s := newTestStore(t, svc, false)
		id, _ := s.AddZone(&square)

		if err := s.RemoveZone(context.Background(), id); err != nil {
			t.Fatalf("RemoveZone() error = %v", err)
		}
		if _, _, _, del := svc.calls(); del != 0 {
			t.Errorf("deleteCalls = %d, want 0", del)
		}
		st := s.Snapshot()
		if len(st.Zones) != 0 || !st.ActiveZone.IsZero() {
			t.Errorf("zones=%d active=%v, want 0 and none", len(st.Zones), st.ActiveZone)
		}
		if st.Tool != ToolSelect {
			t.Errorf("Tool = %v, want %v", st.Tool, ToolSelect)
		}
	})

	t.Run("remote zone after delete succeeds", func(t *testing.T) {
		svc := newMockService()
		svc.zones[7] = []zone.Zone{remoteZone("5")}
		s := newTestStore(t, svc, false)
		rec := &recorder{}
		s.Subscribe(rec.record)
		_ = s.LoadZones(context.Background())
		_ = s.SelectZone(zone.RemoteID("5"))

		if err := s.RemoveZone(context.Background(), zone.RemoteID("5")); err != nil {
			t.Fatalf("RemoveZone() error = %v", err)
		}
		if _, _, _, del := svc.calls(); del != 1 || svc.deletedIDs[0] != "5" {
			t.Errorf("delete calls = %d %v, want one for 5", del, svc.deletedIDs)
		}
		st := s.Snapshot()
		if len(st.Zones) != 0 || !st.ActiveZone.IsZero() {
			t.Errorf("zones=%d active=%v, want 0 and none", len(st.Zones), st.ActiveZone)
		}
		if st.Status.Info != InfoZoneDeleted {
			t.Errorf("Status.Info = %q, want %q", st.Status.Info, InfoZoneDeleted)
		}
		ev, ok := rec.last(EventZoneDeleted)
		if !ok || ev.Zone == nil || ev.Zone.ID != zone.RemoteID("5") {
			t.Errorf("zone_deleted event = %+v, want removed zone attached", ev)
		}
	})

	t.Run("remote zone kept when delete fails", func(t *testing.T) {
		svc := newMockService()
		svc.zones[7] = []zone.Zone{remoteZone("5")}
		svc.deleteErr = &parktrack.APIError{Status: 409, Message: "zone in use"}
		s := newTestStore(t, svc, false)
		_ = s.LoadZones(context.Background())

		if err := s.RemoveZone(context.Background(), zone.RemoteID("5")); err == nil {
			t.Fatal("RemoveZone() error = nil, want error")
		}
		if _, _, _, del := svc.calls(); del != 1 {
			t.Errorf("deleteCalls = %d, want 1", del)
		}
		st := s.Snapshot()
		if len(st.Zones) != 1 {
			t.Errorf("len(Zones) = %d, want 1", len(st.Zones))
		}
		if st.Status.Error != "zone in use" {
			t.Errorf("Status.Error = %q, want %q", st.Status.Error, "zone in use")
		}
	})
}

func TestLoadZones(t *testing.T) {
	t.Run("empty camera", func(t *testing.T) {
		svc := newMockService()
		s := newTestStore(t, svc, false)

		if err := s.LoadZones(context.Background()); err != nil {
			t.Fatalf("LoadZones() error = %v", err)
		}
		st := s.Snapshot()
		if len(st.Zones) != 0 || st.Status.Error != "" || st.Status.Loading {
			t.Errorf("zones=%d status=%+v, want empty with no error", len(st.Zones), st.Status)
		}
	})

	t.Run("replaces local zones", func(t *testing.T) {
		svc := newMockService()
		svc.zones[7] = []zone.Zone{remoteZone("5"), remoteZone("6")}
		s := newTestStore(t, svc, false)
		_, _ = s.AddZone(&square)

		if err := s.LoadZones(context.Background()); err != nil {
			t.Fatalf("LoadZones() error = %v", err)
		}
		st := s.Snapshot()
		if len(st.Zones) != 2 {
			t.Errorf("len(Zones) = %d, want 2", len(st.Zones))
		}
		if !st.ActiveZone.IsZero() {
			t.Errorf("ActiveZone = %v, want cleared stale selection", st.ActiveZone)
		}
	})

	t.Run("failure keeps zones", func(t *testing.T) {
		svc := newMockService()
		svc.zones[7] = []zone.Zone{remoteZone("5")}
		s := newTestStore(t, svc, false)
		_ = s.LoadZones(context.Background())

		svc.mu.Lock()
		svc.listErr = errBoom
		svc.mu.Unlock()

		if err := s.LoadZones(context.Background()); !errors.Is(err, errBoom) {
			t.Fatalf("LoadZones() error = %v, want errBoom", err)
		}
		st := s.Snapshot()
		if len(st.Zones) != 1 {
			t.Errorf("len(Zones) = %d, want 1", len(st.Zones))
		}
		if st.Status.Error == "" || st.Status.Loading {
			t.Errorf("Status = %+v, want error set and loading cleared", st.Status)
		}
	})

	t.Run("response for previous camera discarded", func(t *testing.T) {
		svc := newMockService()
		svc.zones[7] = []zone.Zone{remoteZone("5")}
		s := newTestStore(t, svc, false)
		svc.onList = func(int64) { s.SelectCamera(8) }

		if err := s.LoadZones(context.Background()); err != nil {
			t.Fatalf("LoadZones() error = %v", err)
		}
		st := s.Snapshot()
		if st.CameraID != 8 || len(st.Zones) != 0 {
			t.Errorf("camera=%d zones=%d, want 8 with no zones", st.CameraID, len(st.Zones))
		}
	})

	t.Run("no camera", func(t *testing.T) {
		s := New(newMockService(), DefaultOptions())
		if err := s.LoadZones(context.Background()); !errors.Is(err, ErrNoCamera) {
			t.Errorf("LoadZones() error = %v, want ErrNoCamera", err)
		}
	})
}

func TestUpdateZone_DoesNotNormalize(t *testing.T) {
	s := newTestStore(t, newMockService(), false)
	id, _ := s.AddZone(&square)

	ccw := zone.NewQuad([4]geometry.Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}})
	if err := s.UpdateZone(id, ZonePatch{Points: &ccw}); err != nil {
		t.Fatalf("UpdateZone() error = %v", err)
	}
	z, _ := s.Zone(id)
	for i := range ccw {
		if z.Points[i].Pixel != ccw[i].Pixel {
			t.Errorf("point %d = %v, want %v", i, z.Points[i].Pixel, ccw[i].Pixel)
		}
	}
}

func TestUpdateZone_Validation(t *testing.T) {
	s := newTestStore(t, newMockService(), false)
	id, _ := s.AddZone(&square)

	bad := zone.Type("diagonal")
	if err := s.UpdateZone(id, ZonePatch{Type: &bad}); !errors.Is(err, zone.ErrInvalidZoneType) {
		t.Errorf("UpdateZone(type) error = %v, want ErrInvalidZoneType", err)
	}
	if err := s.UpdateZone(zone.RemoteID("x"), ZonePatch{}); !errors.Is(err, ErrZoneNotFound) {
		t.Errorf("UpdateZone(unknown) error = %v, want ErrZoneNotFound", err)
	}

	parallel := zone.TypeParallel
	if err := s.UpdateZone(id, ZonePatch{Type: &parallel}); err != nil {
		t.Fatalf("UpdateZone() error = %v", err)
	}
	if z, _ := s.Zone(id); z.Type != zone.TypeParallel {
		t.Errorf("Type = %q, want %q", z.Type, zone.TypeParallel)
	}
}

func TestNormalizeZoneWinding_KeepsGeoIndex(t *testing.T) {
	s := newTestStore(t, newMockService(), false)
	id, _ := s.AddZone(&square)

	pts := zone.NewQuad([4]geometry.Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}})
	for i := range pts {
		pts[i] = pts[i].WithGeo(squareGeo[i])
	}
	_ = s.UpdateZone(id, ZonePatch{Points: &pts})

	if err := s.NormalizeZoneWinding(id); err != nil {
		t.Fatalf("NormalizeZoneWinding() error = %v", err)
	}

	z, _ := s.Zone(id)
	if z.Quad() != square {
		t.Errorf("Quad() = %v, want %v", z.Quad(), square)
	}
	for i, p := range z.Points {
		if p.Geo == nil || *p.Geo != squareGeo[i] {
			t.Errorf("point %d geo = %v, want %v", i, p.Geo, squareGeo[i])
		}
	}
}

func TestMoveZoneVertex(t *testing.T) {
	s := newTestStore(t, newMockService(), false)
	id, _ := s.AddZone(&square)
	_ = s.SetZoneGeo(id, squareGeo)

	if err := s.MoveZoneVertex(id, 2, geometry.Point{X: 12, Y: 11}); err != nil {
		t.Fatalf("MoveZoneVertex() error = %v", err)
	}
	z, _ := s.Zone(id)
	if z.Points[2].Pixel != (geometry.Point{X: 12, Y: 11}) {
		t.Errorf("pixel = %v, want (12,11)", z.Points[2].Pixel)
	}
	if z.Points[2].Geo == nil || *z.Points[2].Geo != squareGeo[2] {
		t.Errorf("geo = %v, want %v", z.Points[2].Geo, squareGeo[2])
	}

	if err := s.MoveZoneVertex(id, 4, geometry.Point{}); !errors.Is(err, zone.ErrVertexOutOfRange) {
		t.Errorf("MoveZoneVertex(4) error = %v, want ErrVertexOutOfRange", err)
	}
	if err := s.MoveZoneVertex(id, 0, geometry.Point{X: nan()}); !errors.Is(err, ErrInvalidPoint) {
		t.Errorf("MoveZoneVertex(NaN) error = %v, want ErrInvalidPoint", err)
	}
}

func TestZoneGeo(t *testing.T) {
	s := newTestStore(t, newMockService(), false)
	id, _ := s.AddZone(&square)

	bad := squareGeo
	bad[1].Lat = 91
	if err := s.SetZoneGeo(id, bad); !errors.Is(err, zone.ErrInvalidCoordinates) {
		t.Errorf("SetZoneGeo() error = %v, want ErrInvalidCoordinates", err)
	}

	if err := s.SetZoneVertexGeo(id, 3, squareGeo[3]); err != nil {
		t.Fatalf("SetZoneVertexGeo() error = %v", err)
	}
	z, _ := s.Zone(id)
	if z.Points[3].Geo == nil || z.Points[0].Geo != nil {
		t.Errorf("geo = %v, want only point 3 set", z.GeoPoints())
	}

	_ = s.SetZoneGeo(id, squareGeo)
	if z, _ := s.Zone(id); !z.HasCompleteGeo() {
		t.Error("HasCompleteGeo() = false after SetZoneGeo")
	}
	if err := s.ClearZoneGeo(id); err != nil {
		t.Fatalf("ClearZoneGeo() error = %v", err)
	}
	z, _ = s.Zone(id)
	for i, p := range z.Points {
		if p.Geo != nil {
			t.Errorf("point %d geo = %v, want nil", i, p.Geo)
		}
		if p.Pixel != square[i] {
			t.Errorf("point %d pixel = %v, want %v", i, p.Pixel, square[i])
		}
	}
}
