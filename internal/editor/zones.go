package editor

import (
	"context"
	"fmt"

	"github.com/nerrad567/parkzone-core/internal/geometry"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

// ZonePatch holds the zone fields to replace; nil fields are kept.
type ZonePatch struct {
	Type     *zone.Type
	Capacity *int
	Pay      *int
	CameraID *int64
	Points   *[4]zone.Point
}

// UpdateZone shallow-merges patch into the zone. Geometry is taken as
// given and never re-ordered here; see NormalizeZoneWinding.
func (s *Store) UpdateZone(id zone.ID, patch ZonePatch) error {
	if patch.Type != nil && !patch.Type.Valid() {
		return fmt.Errorf("%w: %q", zone.ErrInvalidZoneType, *patch.Type)
	}
	if patch.Points != nil {
		if err := zone.ValidatePoints(patch.Points[:], false); err != nil {
			return err
		}
	}

	s.mu.Lock()
	zi := s.indexLocked(id)
	if zi < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrZoneNotFound, id)
	}
	s.mergeLocked(zi, patch)
	s.commit(EventZoneChanged, id)
	return nil
}

func (s *Store) mergeLocked(zi int, patch ZonePatch) {
	z := &s.st.Zones[zi]
	if patch.Type != nil {
		z.Type = *patch.Type
	}
	if patch.Capacity != nil {
		z.Capacity = *patch.Capacity
	}
	if patch.Pay != nil {
		z.Pay = *patch.Pay
	}
	if patch.CameraID != nil {
		z.CameraID = *patch.CameraID
	}
	if patch.Points != nil {
		for i, p := range patch.Points {
			z.Points[i] = zone.Point{Pixel: p.Pixel}
			if p.Geo != nil {
				z.Points[i] = z.Points[i].WithGeo(*p.Geo)
			}
		}
	}
}

// MoveZoneVertex sets the pixel position of vertex i, keeping its
// coordinate.
func (s *Store) MoveZoneVertex(id zone.ID, i int, px geometry.Point) error {
	if !px.Finite() {
		return fmt.Errorf("%w: %+v", ErrInvalidPoint, px)
	}
	return s.patchPoints(id, func(pts *[4]zone.Point) error {
		if i < 0 || i >= len(pts) {
			return fmt.Errorf("%w: %d", zone.ErrVertexOutOfRange, i)
		}
		pts[i] = pts[i].WithPixel(px)
		return nil
	})
}

// SetZoneGeo assigns a coordinate to each of the zone's four points by
// index. Pixel positions are unchanged.
func (s *Store) SetZoneGeo(id zone.ID, geo [4]zone.Geo) error {
	for i, g := range geo {
		if err := zone.ValidateGeo(g); err != nil {
			return fmt.Errorf("point %d: %w", i+1, err)
		}
	}
	return s.patchPoints(id, func(pts *[4]zone.Point) error {
		for i := range pts {
			pts[i] = pts[i].WithGeo(geo[i])
		}
		return nil
	})
}

// SetZoneVertexGeo assigns a coordinate to a single point.
func (s *Store) SetZoneVertexGeo(id zone.ID, i int, g zone.Geo) error {
	if err := zone.ValidateGeo(g); err != nil {
		return err
	}
	return s.patchPoints(id, func(pts *[4]zone.Point) error {
		if i < 0 || i >= len(pts) {
			return fmt.Errorf("%w: %d", zone.ErrVertexOutOfRange, i)
		}
		pts[i] = pts[i].WithGeo(g)
		return nil
	})
}

// ClearZoneGeo removes every coordinate from the zone.
func (s *Store) ClearZoneGeo(id zone.ID) error {
	return s.patchPoints(id, func(pts *[4]zone.Point) error {
		for i := range pts {
			pts[i] = pts[i].WithoutGeo()
		}
		return nil
	})
}

// patchPoints edits a copy of the zone's points and merges it back.
func (s *Store) patchPoints(id zone.ID, edit func(*[4]zone.Point) error) error {
	s.mu.Lock()
	zi := s.indexLocked(id)
	if zi < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrZoneNotFound, id)
	}
	pts := s.st.Zones[zi].Clone().Points
	if err := edit(&pts); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mergeLocked(zi, ZonePatch{Points: &pts})
	s.commit(EventZoneChanged, id)
	return nil
}

// NormalizeZoneWinding re-orders the zone's pixel quad clockwise. Each
// point keeps its coordinate at its index; only pixels move.
func (s *Store) NormalizeZoneWinding(id zone.ID) error {
	s.mu.Lock()
	zi := s.indexLocked(id)
	if zi < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrZoneNotFound, id)
	}
	s.normalizeLocked(zi)
	s.commit(EventZoneChanged, id)
	return nil
}

func (s *Store) normalizeLocked(zi int) {
	normalizeQuad(&s.st.Zones[zi])
}

func normalizeQuad(z *zone.Zone) {
	q := geometry.NormalizeClockwise(z.Quad())
	for i := range z.Points {
		z.Points[i] = z.Points[i].WithPixel(q[i])
	}
}

// RemoveZone deletes a zone. Zones never saved are dropped at once;
// saved zones are dropped only after the server confirms the delete.
func (s *Store) RemoveZone(ctx context.Context, id zone.ID) error {
	s.mu.Lock()
	zi := s.indexLocked(id)
	if zi < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrZoneNotFound, id)
	}

	if _, busy := s.saving[id]; busy {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrSaveInFlight, id)
	}

	remote, ok := id.Remote()
	if !ok {
		s.removeLocked(id)
		return nil
	}

	s.beginRequestLocked()
	s.commit(EventStatus, id)

	err := s.svc.DeleteZone(ctx, remote)

	s.mu.Lock()
	s.pending--
	if err != nil {
		return s.fail(fmt.Errorf("delete zone %s: %w", remote, err), id)
	}
	s.st.Status.Info = InfoZoneDeleted
	s.logger.Info("zone deleted", "zone_id", remote, "camera_id", s.st.CameraID)
	s.removeLocked(id)
	return nil
}

// removeLocked drops the zone, clears its selection and publishes
// EventZoneDeleted. Must be called with s.mu held.
func (s *Store) removeLocked(id zone.ID) {
	zi := s.indexLocked(id)
	if zi < 0 {
		s.commit(EventZoneDeleted, id)
		return
	}
	removed := s.st.Zones[zi].Clone()
	s.st.Zones = append(s.st.Zones[:zi], s.st.Zones[zi+1:]...)
	if s.st.ActiveZone == id {
		s.selectZoneLocked(zone.ID{})
		if s.st.Tool == ToolEditZone {
			s.st.Tool = ToolSelect
		}
	}

	ev := s.eventLocked(EventZoneDeleted, id)
	ev.Zone = &removed
	s.mu.Unlock()
	s.publish(ev)
}

// SaveZone persists a zone and returns its server ID.
//
// The quad is normalized clockwise first. A zone with lots gets its
// capacity set to the lot count. Validation failures are reported without
// contacting the server. A zone with a placeholder ID is created and
// promoted to the server's ID; a saved zone is updated and replaced by
// the server's record, keeping local lots the server did not echo. On
// failure the zone is left exactly as it was.
func (s *Store) SaveZone(ctx context.Context, id zone.ID) (zone.ID, error) {
	s.mu.Lock()
	zi := s.indexLocked(id)
	if zi < 0 {
		s.mu.Unlock()
		return zone.ID{}, fmt.Errorf("%w: %s", ErrZoneNotFound, id)
	}
	if _, busy := s.saving[id]; busy {
		s.mu.Unlock()
		return zone.ID{}, fmt.Errorf("%w: %s", ErrSaveInFlight, id)
	}

	candidate := s.st.Zones[zi].Clone()
	normalizeQuad(&candidate)
	if len(candidate.Lots) > 0 {
		candidate.Capacity = len(candidate.Lots)
	}
	if candidate.CameraID == 0 {
		candidate.CameraID = s.st.CameraID
	}
	if err := zone.ValidateForSave(candidate, s.opts.RequireGeo); err != nil {
		return zone.ID{}, s.fail(err, id)
	}
	for i := range candidate.Points {
		s.st.Zones[zi].Points[i] = s.st.Zones[zi].Points[i].WithPixel(candidate.Points[i].Pixel)
	}

	s.saving[id] = struct{}{}
	s.beginRequestLocked()
	s.commit(EventStatus, id)

	if remote, ok := id.Remote(); ok {
		got, err := s.svc.UpdateZone(ctx, remote, candidate)
		return s.finishUpdate(id, candidate, got, err)
	}
	created, err := s.svc.CreateZone(ctx, candidate)
	return s.finishCreate(id, candidate, created.ID, created.Zone, err)
}

func (s *Store) finishCreate(localID zone.ID, sent zone.Zone, newID zone.ID, echoed *zone.Zone, err error) (zone.ID, error) {
	s.mu.Lock()
	s.pending--
	delete(s.saving, localID)
	if _, ok := newID.Remote(); err == nil && !ok {
		err = fmt.Errorf("create returned a non-server id %q", newID)
	}
	if err != nil {
		return zone.ID{}, s.fail(fmt.Errorf("create zone: %w", err), localID)
	}

	zi := s.indexLocked(localID)
	if zi < 0 {
		return zone.ID{}, s.fail(fmt.Errorf("%w: %s dropped while saving as %s", ErrZoneNotFound, localID, newID), localID)
	}

	merged := sent
	if echoed != nil {
		merged = s.mergeServerLocked(sent, *echoed)
	}
	merged.ID = newID

	s.st.Zones[zi] = merged
	if s.st.ActiveZone == localID {
		s.st.ActiveZone = newID
		if s.activeLotLocked() == nil {
			s.st.ActiveLot = zone.ID{}
		}
	} else {
		s.selectZoneLocked(newID)
	}
	s.st.Status.Info = InfoZoneCreated
	s.logger.Info("zone created", "zone_id", newID.String(), "previous_id", localID.String(), "camera_id", merged.CameraID)

	ev := s.eventLocked(EventZoneCreated, newID)
	ev.PreviousID = localID
	s.mu.Unlock()
	s.publish(ev)
	return newID, nil
}

func (s *Store) finishUpdate(id zone.ID, sent, got zone.Zone, err error) (zone.ID, error) {
	s.mu.Lock()
	s.pending--
	delete(s.saving, id)
	if err != nil {
		return zone.ID{}, s.fail(fmt.Errorf("update zone %s: %w", id, err), id)
	}

	zi := s.indexLocked(id)
	if zi < 0 {
		return zone.ID{}, s.fail(fmt.Errorf("%w: %s dropped while saving", ErrZoneNotFound, id), id)
	}

	merged := s.mergeServerLocked(sent, got)
	merged.ID = id
	s.st.Zones[zi] = merged
	if s.st.ActiveZone == id && !s.st.ActiveLot.IsZero() && s.activeLotLocked() == nil {
		s.st.ActiveLot = zone.ID{}
		if s.st.Tool == ToolEditLot {
			s.st.Tool = ToolSelect
		}
	}
	s.st.Status.Info = InfoZoneUpdated
	s.logger.Info("zone updated", "zone_id", id.String(), "camera_id", merged.CameraID)
	s.commit(EventZoneUpdated, id)
	return id, nil
}

// mergeServerLocked takes the server's record as authoritative and fills
// in what it left out: lots and the camera.
func (s *Store) mergeServerLocked(sent, got zone.Zone) zone.Zone {
	merged := got.Clone()
	if len(merged.Lots) == 0 && len(sent.Lots) > 0 {
		merged.Lots = sent.Clone().Lots
	}
	for i := range merged.Lots {
		if merged.Lots[i].ID.IsZero() {
			merged.Lots[i].ID = s.newLocalIDLocked()
		}
	}
	if merged.CameraID == 0 {
		merged.CameraID = sent.CameraID
	}
	if !merged.Type.Valid() {
		merged.Type = sent.Type
	}
	return merged
}

// LoadZones replaces the zone collection with the server's zones for the
// selected camera. On failure the current zones are kept. A response for
// a camera that is no longer selected is discarded.
func (s *Store) LoadZones(ctx context.Context) error {
	s.mu.Lock()
	cameraID := s.st.CameraID
	if cameraID == 0 {
		return s.fail(ErrNoCamera, zone.ID{})
	}
	s.beginRequestLocked()
	s.commit(EventStatus, zone.ID{})

	zones, err := s.svc.ListZones(ctx, cameraID)

	s.mu.Lock()
	s.pending--
	if s.st.CameraID != cameraID {
		s.logger.Debug("discarding zones for previous camera", "camera_id", cameraID)
		s.commit(EventStatus, zone.ID{})
		return nil
	}
	if err != nil {
		return s.fail(fmt.Errorf("load zones: %w", err), zone.ID{})
	}

	s.st.Zones = make([]zone.Zone, len(zones))
	for i, z := range zones {
		c := z.Clone()
		for j := range c.Lots {
			if c.Lots[j].ID.IsZero() {
				c.Lots[j].ID = s.newLocalIDLocked()
			}
		}
		s.st.Zones[i] = c
	}
	if s.indexLocked(s.st.ActiveZone) < 0 {
		s.selectZoneLocked(zone.ID{})
		if s.st.Tool == ToolEditZone {
			s.st.Tool = ToolSelect
		}
	} else if s.activeLotLocked() == nil && !s.st.ActiveLot.IsZero() {
		s.st.ActiveLot = zone.ID{}
		if s.st.Tool == ToolEditLot {
			s.st.Tool = ToolSelect
		}
	}
	s.logger.Debug("zones loaded", "camera_id", cameraID, "count", len(zones))
	s.commit(EventZonesLoaded, zone.ID{})
	return nil
}
