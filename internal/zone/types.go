package zone

import (
	"fmt"
	"time"

	"github.com/nerrad567/parkzone-core/internal/geometry"
)

// Type is the kind of parking a zone offers.
type Type string

const (
	TypeStandard Type = "standard"
	TypeParallel Type = "parallel"
	TypeDisabled Type = "disabled"
)

// AllTypes returns all valid zone types.
func AllTypes() []Type {
	return []Type{TypeStandard, TypeParallel, TypeDisabled}
}

// Valid reports whether t is a known zone type.
func (t Type) Valid() bool {
	switch t {
	case TypeStandard, TypeParallel, TypeDisabled:
		return true
	}
	return false
}

// ParseType converts a string to a zone Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidZoneType, s)
	}
	return t, nil
}

// Geo is a WGS84 coordinate.
type Geo struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Point is a zone or lot vertex. Pixel is always set; Geo is nil until the
// vertex has been placed on the map.
type Point struct {
	Pixel geometry.Point `json:"pixel"`
	Geo   *Geo           `json:"geo,omitempty"`
}

// NewPoint returns a vertex with a pixel position and no coordinate.
func NewPoint(px geometry.Point) Point {
	return Point{Pixel: px}
}

// WithPixel returns p moved to px, keeping its coordinate.
func (p Point) WithPixel(px geometry.Point) Point {
	return Point{Pixel: px, Geo: p.Geo.clone()}
}

// WithGeo returns p with coordinate g, keeping its pixel position.
func (p Point) WithGeo(g Geo) Point {
	return Point{Pixel: p.Pixel, Geo: &g}
}

// WithoutGeo returns p with its coordinate cleared.
func (p Point) WithoutGeo() Point {
	return Point{Pixel: p.Pixel}
}

// HasGeo reports whether the vertex has a coordinate.
func (p Point) HasGeo() bool {
	return p.Geo != nil
}

func (g *Geo) clone() *Geo {
	if g == nil {
		return nil
	}
	c := *g
	return &c
}

// Zone is a parking zone quadrilateral on a camera image.
type Zone struct {
	ID       ID       `json:"id"`
	CameraID int64    `json:"camera_id"`
	Type     Type     `json:"zone_type"`
	Capacity int      `json:"capacity"`
	Pay      int      `json:"pay"`
	Points   [4]Point `json:"points"`
	Lots     []Lot    `json:"lots,omitempty"`

	// Server-reported occupancy telemetry, read-only in the editor.
	Occupied   *int     `json:"occupied,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Quad returns the pixel projection of the zone's points.
func (z Zone) Quad() [4]geometry.Point {
	var q [4]geometry.Point
	for i, p := range z.Points {
		q[i] = p.Pixel
	}
	return q
}

// GeoPoints returns the coordinate projection of the zone's points.
// Unplaced vertices are nil.
func (z Zone) GeoPoints() [4]*Geo {
	var g [4]*Geo
	for i, p := range z.Points {
		g[i] = p.Geo.clone()
	}
	return g
}

// HasCompleteGeo reports whether every point has a coordinate.
func (z Zone) HasCompleteGeo() bool {
	for _, p := range z.Points {
		if p.Geo == nil {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of z.
func (z Zone) Clone() Zone {
	c := z
	for i, p := range z.Points {
		c.Points[i] = Point{Pixel: p.Pixel, Geo: p.Geo.clone()}
	}
	if z.Lots != nil {
		c.Lots = make([]Lot, len(z.Lots))
		for i, l := range z.Lots {
			c.Lots[i] = l.Clone()
		}
	}
	if z.Occupied != nil {
		v := *z.Occupied
		c.Occupied = &v
	}
	if z.Confidence != nil {
		v := *z.Confidence
		c.Confidence = &v
	}
	if z.CreatedAt != nil {
		v := *z.CreatedAt
		c.CreatedAt = &v
	}
	if z.UpdatedAt != nil {
		v := *z.UpdatedAt
		c.UpdatedAt = &v
	}
	return c
}

// LotIndex returns the index of the lot with the given ID, or -1.
func (z Zone) LotIndex(id ID) int {
	for i, l := range z.Lots {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// NewQuad builds zone points from four pixel positions.
func NewQuad(q [4]geometry.Point) [4]Point {
	var pts [4]Point
	for i, px := range q {
		pts[i] = NewPoint(px)
	}
	return pts
}

// Lot is an individual parking space inside a zone.
type Lot struct {
	ID       ID      `json:"id"`
	Points   []Point `json:"points"`
	Centroid *Geo    `json:"centroid,omitempty"`
}

// Polygon returns the pixel projection of the lot's points.
func (l Lot) Polygon() []geometry.Point {
	poly := make([]geometry.Point, len(l.Points))
	for i, p := range l.Points {
		poly[i] = p.Pixel
	}
	return poly
}

// Clone returns a deep copy of l.
func (l Lot) Clone() Lot {
	c := Lot{ID: l.ID, Centroid: l.Centroid.clone()}
	if l.Points != nil {
		c.Points = make([]Point, len(l.Points))
		for i, p := range l.Points {
			c.Points[i] = Point{Pixel: p.Pixel, Geo: p.Geo.clone()}
		}
	}
	return c
}

// NewPolygon builds lot points from pixel positions.
func NewPolygon(poly []geometry.Point) []Point {
	pts := make([]Point, len(poly))
	for i, px := range poly {
		pts[i] = NewPoint(px)
	}
	return pts
}
