package editor

import (
	"fmt"

	"github.com/nerrad567/parkzone-core/internal/geometry"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

// SetTool switches the interaction mode. Modes that act on a zone need an
// active zone, editLot needs an active lot. Entering a draw mode starts an
// empty draft; leaving it discards the draft.
func (s *Store) SetTool(t Tool) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %v", ErrToolUnavailable, t)
	}

	s.mu.Lock()
	switch t.requirement() {
	case needsZone:
		if s.indexLocked(s.st.ActiveZone) < 0 {
			s.mu.Unlock()
			return fmt.Errorf("%w: %s needs an active zone", ErrToolUnavailable, t)
		}
	case needsLot:
		if s.activeLotLocked() == nil {
			s.mu.Unlock()
			return fmt.Errorf("%w: %s needs an active lot", ErrToolUnavailable, t)
		}
	}
	s.setToolLocked(t)
	s.commit(EventToolChanged, s.st.ActiveZone)
	return nil
}

func (s *Store) setToolLocked(t Tool) {
	if s.st.Tool == ToolDrawZone && t != ToolDrawZone {
		s.st.ZoneDraft = nil
	}
	if s.st.Tool == ToolDrawLot && t != ToolDrawLot {
		s.st.LotDraft = nil
	}
	switch t {
	case ToolDrawZone:
		s.st.ZoneDraft = []geometry.Point{}
	case ToolDrawLot:
		s.st.LotDraft = []geometry.Point{}
	}
	s.st.Tool = t
}

// BeginDrawZone enters drawZone with an empty draft.
func (s *Store) BeginDrawZone() {
	_ = s.SetTool(ToolDrawZone)
}

// BeginEditZone enters editZone for the active zone.
func (s *Store) BeginEditZone() error {
	return s.SetTool(ToolEditZone)
}

// BeginDrawLot enters drawLot for the active zone.
func (s *Store) BeginDrawLot() error {
	return s.SetTool(ToolDrawLot)
}

// BeginEditLot enters editLot for the active lot.
func (s *Store) BeginEditLot() error {
	return s.SetTool(ToolEditLot)
}

// FinishEditing returns to select mode.
func (s *Store) FinishEditing() {
	_ = s.SetTool(ToolSelect)
}

// SelectZone makes id the active zone; the zero ID clears the selection.
// Changing zones clears the lot selection and any lot draft, and leaves
// lot modes.
func (s *Store) SelectZone(id zone.ID) error {
	s.mu.Lock()
	if !id.IsZero() && s.indexLocked(id) < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrZoneNotFound, id)
	}
	s.selectZoneLocked(id)
	s.commit(EventSelection, id)
	return nil
}

func (s *Store) selectZoneLocked(id zone.ID) {
	if s.st.ActiveZone != id {
		s.st.ActiveLot = zone.ID{}
		s.st.LotDraft = nil
		switch s.st.Tool {
		case ToolDrawLot, ToolEditLot:
			s.st.Tool = ToolSelect
		case ToolEditZone:
			if id.IsZero() {
				s.st.Tool = ToolSelect
			}
		}
	}
	s.st.ActiveZone = id
}

// SelectLot makes id the active lot of the active zone; the zero ID
// clears the lot selection.
func (s *Store) SelectLot(id zone.ID) error {
	s.mu.Lock()
	if !id.IsZero() {
		zi := s.indexLocked(s.st.ActiveZone)
		if zi < 0 {
			s.mu.Unlock()
			return ErrNoActiveZone
		}
		if s.st.Zones[zi].LotIndex(id) < 0 {
			s.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrLotNotFound, id)
		}
	}
	s.st.ActiveLot = id
	if id.IsZero() && s.st.Tool == ToolEditLot {
		s.st.Tool = ToolSelect
	}
	s.commit(EventSelection, s.st.ActiveZone)
	return nil
}

// ClearSelection deselects everything and returns to select mode.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.selectZoneLocked(zone.ID{})
	s.setToolLocked(ToolSelect)
	s.commit(EventSelection, zone.ID{})
}

// SetView replaces the view transform.
func (s *Store) SetView(v geometry.View) error {
	if !v.Valid() {
		return fmt.Errorf("%w: %+v", ErrInvalidView, v)
	}
	s.mu.Lock()
	s.st.View = v
	s.commit(EventViewChanged, zone.ID{})
	return nil
}

// activeLotLocked returns the active lot, or nil.
func (s *Store) activeLotLocked() *zone.Lot {
	zi := s.indexLocked(s.st.ActiveZone)
	if zi < 0 || s.st.ActiveLot.IsZero() {
		return nil
	}
	li := s.st.Zones[zi].LotIndex(s.st.ActiveLot)
	if li < 0 {
		return nil
	}
	return &s.st.Zones[zi].Lots[li]
}
