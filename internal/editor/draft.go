package editor

import (
	"fmt"

	"github.com/nerrad567/parkzone-core/internal/geometry"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

// zoneDraftSize is the number of clicks that completes a zone draft.
const zoneDraftSize = 4

// defaultQuad is the rectangle AddZone uses when given no geometry.
var defaultQuad = [4]geometry.Point{
	{X: 10, Y: 10}, {X: 140, Y: 10}, {X: 140, Y: 90}, {X: 10, Y: 90},
}

// DraftAddPoint appends an image point to the zone draft. The fourth
// point finalizes the draft into a new zone: its quad is normalized
// clockwise, it gets a placeholder ID, becomes the active zone, and the
// store returns to select mode. The new zone's ID is returned; it is the
// zero ID while the draft is still open.
//
// Outside drawZone the call is rejected with ErrToolUnavailable and
// nothing changes, so clicks after completion cannot reopen the draft.
func (s *Store) DraftAddPoint(p geometry.Point) (zone.ID, error) {
	if !p.Finite() {
		return zone.ID{}, fmt.Errorf("%w: %+v", ErrInvalidPoint, p)
	}

	s.mu.Lock()
	if s.st.Tool != ToolDrawZone {
		s.mu.Unlock()
		return zone.ID{}, fmt.Errorf("%w: not drawing a zone", ErrToolUnavailable)
	}
	if len(s.st.ZoneDraft) >= zoneDraftSize {
		s.mu.Unlock()
		return zone.ID{}, ErrDraftFull
	}

	s.st.ZoneDraft = append(s.st.ZoneDraft, p)
	if len(s.st.ZoneDraft) < zoneDraftSize {
		s.commit(EventDraftChanged, zone.ID{})
		return zone.ID{}, nil
	}

	var q [4]geometry.Point
	copy(q[:], s.st.ZoneDraft)
	id := s.addZoneLocked(geometry.NormalizeClockwise(q))
	s.selectZoneLocked(id)
	s.st.ZoneDraft = nil
	s.st.Tool = ToolSelect
	s.logger.Debug("zone drafted", "zone_id", id.String(), "camera_id", s.st.CameraID)
	s.commit(EventZoneAdded, id)
	return id, nil
}

// DraftClear discards the zone draft and returns to select mode.
func (s *Store) DraftClear() {
	s.mu.Lock()
	s.st.ZoneDraft = nil
	if s.st.Tool == ToolDrawZone {
		s.st.Tool = ToolSelect
	}
	s.commit(EventDraftChanged, zone.ID{})
}

// AddZone inserts a zone directly, without the click-by-click draft, and
// opens it for vertex editing. A nil quad uses a default rectangle.
func (s *Store) AddZone(quad *[4]geometry.Point) (zone.ID, error) {
	q := defaultQuad
	if quad != nil {
		q = *quad
	}
	for _, p := range q {
		if !p.Finite() {
			return zone.ID{}, fmt.Errorf("%w: %+v", ErrInvalidPoint, p)
		}
	}

	s.mu.Lock()
	id := s.addZoneLocked(geometry.NormalizeClockwise(q))
	s.selectZoneLocked(id)
	s.setToolLocked(ToolEditZone)
	s.commit(EventZoneAdded, id)
	return id, nil
}

func (s *Store) addZoneLocked(q [4]geometry.Point) zone.ID {
	id := s.newLocalIDLocked()
	s.st.Zones = append(s.st.Zones, zone.Zone{
		ID:       id,
		CameraID: s.st.CameraID,
		Type:     s.opts.DefaultType,
		Capacity: zone.MinCapacity,
		Pay:      0,
		Points:   zone.NewQuad(q),
	})
	return id
}

// LotDraftAddPoint appends an image point to the lot draft of the active
// zone. Only allowed in drawLot.
func (s *Store) LotDraftAddPoint(p geometry.Point) error {
	if !p.Finite() {
		return fmt.Errorf("%w: %+v", ErrInvalidPoint, p)
	}

	s.mu.Lock()
	if s.st.Tool != ToolDrawLot {
		s.mu.Unlock()
		return fmt.Errorf("%w: not drawing a lot", ErrToolUnavailable)
	}
	if s.indexLocked(s.st.ActiveZone) < 0 {
		s.mu.Unlock()
		return ErrNoActiveZone
	}
	s.st.LotDraft = append(s.st.LotDraft, p)
	s.commit(EventDraftChanged, s.st.ActiveZone)
	return nil
}

// LotDraftClear discards the lot draft and leaves drawLot.
func (s *Store) LotDraftClear() {
	s.mu.Lock()
	s.st.LotDraft = nil
	if s.st.Tool == ToolDrawLot {
		s.st.Tool = ToolSelect
	}
	s.commit(EventDraftChanged, s.st.ActiveZone)
}

// LotDraftComplete turns a draft of at least three points into a lot of
// the active zone. Shorter drafts are left untouched.
func (s *Store) LotDraftComplete() (zone.ID, error) {
	s.mu.Lock()
	if s.st.Tool != ToolDrawLot {
		s.mu.Unlock()
		return zone.ID{}, fmt.Errorf("%w: not drawing a lot", ErrToolUnavailable)
	}
	zi := s.indexLocked(s.st.ActiveZone)
	if zi < 0 {
		s.mu.Unlock()
		return zone.ID{}, ErrNoActiveZone
	}
	if len(s.st.LotDraft) < zone.MinLotPoints {
		n := len(s.st.LotDraft)
		s.mu.Unlock()
		return zone.ID{}, fmt.Errorf("%w: draft has %d", zone.ErrLotTooSmall, n)
	}

	poly := append([]geometry.Point(nil), s.st.LotDraft...)
	id := s.addLotLocked(zi, poly)
	zoneID := s.st.ActiveZone
	s.commit(EventZoneChanged, zoneID)
	return id, nil
}
