package editor

import (
	"fmt"

	"github.com/nerrad567/parkzone-core/internal/geometry"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

// LotPatch holds the lot fields to replace; nil fields are kept.
type LotPatch struct {
	Points   *[]zone.Point
	Centroid *zone.Geo
}

// AddLot appends a lot polygon to a zone, selects it and opens it for
// vertex editing. When the zone then has more lots than its capacity, the
// capacity is raised to the lot count.
func (s *Store) AddLot(zoneID zone.ID, poly []geometry.Point) (zone.ID, error) {
	if err := zone.ValidateLot(zone.NewPolygon(poly)); err != nil {
		return zone.ID{}, err
	}

	s.mu.Lock()
	zi := s.indexLocked(zoneID)
	if zi < 0 {
		s.mu.Unlock()
		return zone.ID{}, fmt.Errorf("%w: %s", ErrZoneNotFound, zoneID)
	}
	id := s.addLotLocked(zi, append([]geometry.Point(nil), poly...))
	s.commit(EventZoneChanged, zoneID)
	return id, nil
}

func (s *Store) addLotLocked(zi int, poly []geometry.Point) zone.ID {
	id := s.newLocalIDLocked()
	z := &s.st.Zones[zi]
	z.Lots = append(z.Lots, zone.Lot{ID: id, Points: zone.NewPolygon(poly)})
	if len(z.Lots) > z.Capacity {
		z.Capacity = len(z.Lots)
	}

	if s.st.ActiveZone != z.ID {
		s.selectZoneLocked(z.ID)
	}
	s.st.ActiveLot = id
	s.st.LotDraft = nil
	s.st.Tool = ToolEditLot
	return id
}

// UpdateLot merges patch into a lot.
func (s *Store) UpdateLot(zoneID, lotID zone.ID, patch LotPatch) error {
	if patch.Points != nil {
		if err := zone.ValidateLot(*patch.Points); err != nil {
			return err
		}
	}
	if patch.Centroid != nil {
		if err := zone.ValidateGeo(*patch.Centroid); err != nil {
			return err
		}
	}

	s.mu.Lock()
	l, err := s.lotLocked(zoneID, lotID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if patch.Points != nil {
		l.Points = make([]zone.Point, len(*patch.Points))
		for i, p := range *patch.Points {
			l.Points[i] = p.WithoutGeo()
			if p.Geo != nil {
				l.Points[i] = p.WithGeo(*p.Geo)
			}
		}
	}
	if patch.Centroid != nil {
		g := *patch.Centroid
		l.Centroid = &g
	}
	s.commit(EventZoneChanged, zoneID)
	return nil
}

// MoveLotVertex moves one lot vertex. The polygon is not re-ordered.
func (s *Store) MoveLotVertex(zoneID, lotID zone.ID, i int, px geometry.Point) error {
	if !px.Finite() {
		return fmt.Errorf("%w: %+v", ErrInvalidPoint, px)
	}

	s.mu.Lock()
	l, err := s.lotLocked(zoneID, lotID)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if i < 0 || i >= len(l.Points) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", zone.ErrVertexOutOfRange, i)
	}
	l.Points[i] = l.Points[i].WithPixel(px)
	s.commit(EventZoneChanged, zoneID)
	return nil
}

// RemoveLot deletes a lot from a zone. The zone's capacity is left as is
// until the next save.
func (s *Store) RemoveLot(zoneID, lotID zone.ID) error {
	s.mu.Lock()
	zi := s.indexLocked(zoneID)
	if zi < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrZoneNotFound, zoneID)
	}
	z := &s.st.Zones[zi]
	li := z.LotIndex(lotID)
	if li < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrLotNotFound, lotID)
	}
	z.Lots = append(z.Lots[:li], z.Lots[li+1:]...)
	if s.st.ActiveLot == lotID {
		s.st.ActiveLot = zone.ID{}
		if s.st.Tool == ToolEditLot {
			s.st.Tool = ToolSelect
		}
	}
	s.commit(EventZoneChanged, zoneID)
	return nil
}

func (s *Store) lotLocked(zoneID, lotID zone.ID) (*zone.Lot, error) {
	zi := s.indexLocked(zoneID)
	if zi < 0 {
		return nil, fmt.Errorf("%w: %s", ErrZoneNotFound, zoneID)
	}
	li := s.st.Zones[zi].LotIndex(lotID)
	if li < 0 {
		return nil, fmt.Errorf("%w: %s", ErrLotNotFound, lotID)
	}
	return &s.st.Zones[zi].Lots[li], nil
}
