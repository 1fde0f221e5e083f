package geoplace

import (
	"context"
	"fmt"
	"sync"

	"github.com/nerrad567/parkzone-core/internal/zone"
)

// QuadSize is the number of map points a zone needs.
const QuadSize = 4

// ZoneEditor is the part of *editor.Store a ZonePlacer writes through.
type ZoneEditor interface {
	Zone(id zone.ID) (zone.Zone, bool)
	SetZoneGeo(id zone.ID, geo [4]zone.Geo) error
	SetZoneVertexGeo(id zone.ID, i int, g zone.Geo) error
	ClearZoneGeo(id zone.ID) error
	SaveZone(ctx context.Context, id zone.ID) (zone.ID, error)
}

// ZonePlacer places one zone on the map.
type ZonePlacer struct {
	ed     ZoneEditor
	center zone.Geo

	mu     sync.Mutex
	id     zone.ID
	points []zone.Geo
}

// NewZonePlacer starts a placement for zone id. The zone's existing
// coordinates are used only when all four are set and not all equal.
// center is returned by Center while no point is placed.
func NewZonePlacer(ed ZoneEditor, id zone.ID, center zone.Geo) (*ZonePlacer, error) {
	z, ok := ed.Zone(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrZoneNotFound, id)
	}
	p := &ZonePlacer{ed: ed, id: id, center: center}
	if seed, ok := placed(z); ok {
		p.points = seed
	}
	return p, nil
}

// placed returns the zone's coordinates when they form a real placement.
func placed(z zone.Zone) ([]zone.Geo, bool) {
	if !z.HasCompleteGeo() {
		return nil, false
	}
	pts := make([]zone.Geo, QuadSize)
	same := true
	for i, p := range z.Points {
		pts[i] = *p.Geo
		if pts[i] != pts[0] {
			same = false
		}
	}
	if same {
		return nil, false
	}
	return pts, true
}

// ZoneID returns the zone being placed. It changes when the zone is
// promoted to its server ID, by Save or by Promote.
func (p *ZonePlacer) ZoneID() zone.ID {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.id
}

// Promote rebinds the placement to to when it is placing from. It reports
// whether the placement followed. Callers relay zone creation events here
// so a zone saved elsewhere stays placeable.
func (p *ZonePlacer) Promote(from, to zone.ID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if from.IsZero() || to.IsZero() || p.id != from {
		return false
	}
	p.id = to
	return true
}

// Points returns the placed coordinates in vertex order.
func (p *ZonePlacer) Points() []zone.Geo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]zone.Geo(nil), p.points...)
}

// Complete reports whether all four points are placed.
func (p *ZonePlacer) Complete() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.points) == QuadSize
}

// Click places the next point. The fourth click writes all four
// coordinates to the zone.
func (p *ZonePlacer) Click(g zone.Geo) error {
	if err := zone.ValidateGeo(g); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.points) >= QuadSize {
		return ErrPlacementComplete
	}
	p.points = append(p.points, g)
	if len(p.points) < QuadSize {
		return nil
	}
	return p.pushLocked()
}

// Drag moves placed point i. The zone is updated only once all four
// points are placed.
func (p *ZonePlacer) Drag(i int, g zone.Geo) error {
	if err := zone.ValidateGeo(g); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.points) {
		return fmt.Errorf("%w: %d", ErrPointOutOfRange, i)
	}
	p.points[i] = g
	if len(p.points) < QuadSize {
		return nil
	}
	return p.ed.SetZoneVertexGeo(p.id, i, g)
}

// Reset forgets the placed points and removes the zone's coordinates.
func (p *ZonePlacer) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.points = nil
	return p.ed.ClearZoneGeo(p.id)
}

// Save writes the placement to the zone and persists the zone.
func (p *ZonePlacer) Save(ctx context.Context) (zone.ID, error) {
	p.mu.Lock()
	if len(p.points) < QuadSize {
		n := len(p.points)
		p.mu.Unlock()
		return zone.ID{}, fmt.Errorf("%w: %d of %d", ErrPlacementIncomplete, n, QuadSize)
	}
	if err := p.pushLocked(); err != nil {
		p.mu.Unlock()
		return zone.ID{}, err
	}
	id := p.id
	p.mu.Unlock()

	saved, err := p.ed.SaveZone(ctx, id)
	if err != nil {
		return zone.ID{}, err
	}

	p.Promote(id, saved)
	return saved, nil
}

func (p *ZonePlacer) pushLocked() error {
	var geo [4]zone.Geo
	copy(geo[:], p.points)
	return p.ed.SetZoneGeo(p.id, geo)
}

// Center is where the map should be centred: the mean of the placed
// points, or the fallback centre when none are placed.
func (p *ZonePlacer) Center() zone.Geo {
	p.mu.Lock()
	defer p.mu.Unlock()
	return mean(p.points, p.center)
}

func mean(pts []zone.Geo, fallback zone.Geo) zone.Geo {
	if len(pts) == 0 {
		return fallback
	}
	var c zone.Geo
	for _, g := range pts {
		c.Lon += g.Lon
		c.Lat += g.Lat
	}
	n := float64(len(pts))
	return zone.Geo{Lon: c.Lon / n, Lat: c.Lat / n}
}
