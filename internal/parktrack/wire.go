package parktrack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/parkzone-core/internal/geometry"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

// flexID accepts an identifier encoded as a JSON string or number.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

// flexTime tolerates timestamp formats the server has been seen to emit
// and leaves the value nil for anything else.
type flexTime struct {
	t *time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func (f *flexTime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil || s == "" {
		f.t = nil
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			f.t = &t
			return nil
		}
	}
	f.t = nil
	return nil
}

// pointDTO is a zone or lot vertex on the wire.
type pointDTO struct {
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type lotDTO struct {
	LotID  flexID     `json:"lot_id,omitempty"`
	Points []pointDTO `json:"points"`
}

// zoneDTO is a zone record as returned by the API.
type zoneDTO struct {
	ZoneID     flexID     `json:"zone_id"`
	ID         flexID     `json:"id"`
	CameraID   flexID     `json:"camera_id"`
	ZoneType   string     `json:"zone_type"`
	Capacity   float64    `json:"capacity"`
	Pay        float64    `json:"pay"`
	Points     []pointDTO `json:"points"`
	Lots       []lotDTO   `json:"lots"`
	Occupied   *float64   `json:"occupied"`
	Confidence *float64   `json:"confidence"`
	CreatedAt  flexTime   `json:"created_at"`
	UpdatedAt  flexTime   `json:"updated_at"`
}

func (d zoneDTO) id() string {
	if d.ZoneID != "" {
		return string(d.ZoneID)
	}
	return string(d.ID)
}

// zoneBody is the create/update request body.
type zoneBody struct {
	CameraID int64      `json:"camera_id"`
	ZoneType string     `json:"zone_type"`
	Capacity int        `json:"capacity"`
	Pay      int        `json:"pay"`
	Points   []pointDTO `json:"points"`
	Lots     []lotDTO   `json:"lots,omitempty"`
}

func pointToDTO(p zone.Point) pointDTO {
	d := pointDTO{X: p.Pixel.X, Y: p.Pixel.Y}
	if p.Geo != nil {
		lat, lon := p.Geo.Lat, p.Geo.Lon
		d.Latitude = &lat
		d.Longitude = &lon
	}
	return d
}

func pointFromDTO(d pointDTO) zone.Point {
	p := zone.NewPoint(geometry.Point{X: d.X, Y: d.Y})
	if d.Latitude != nil && d.Longitude != nil {
		p = p.WithGeo(zone.Geo{Lon: *d.Longitude, Lat: *d.Latitude})
	}
	return p
}

func buildZoneBody(z zone.Zone) zoneBody {
	b := zoneBody{
		CameraID: z.CameraID,
		ZoneType: string(z.Type),
		Capacity: z.Capacity,
		Pay:      z.Pay,
		Points:   make([]pointDTO, len(z.Points)),
	}
	for i, p := range z.Points {
		b.Points[i] = pointToDTO(p)
	}
	for _, l := range z.Lots {
		ld := lotDTO{Points: make([]pointDTO, len(l.Points))}
		if rid, ok := l.ID.Remote(); ok {
			ld.LotID = flexID(rid)
		}
		for i, p := range l.Points {
			ld.Points[i] = pointToDTO(p)
		}
		b.Lots = append(b.Lots, ld)
	}
	return b
}

// zoneFromDTO maps an API record. Only the first four points are used;
// missing points are left at the origin.
func zoneFromDTO(d zoneDTO) (zone.Zone, error) {
	id := d.id()
	if id == "" {
		return zone.Zone{}, fmt.Errorf("%w: zone record without zone_id", ErrMalformedResponse)
	}

	z := zone.Zone{
		ID:        zone.RemoteID(id),
		Type:      zone.Type(d.ZoneType),
		Capacity:  int(d.Capacity),
		Pay:       int(d.Pay),
		CreatedAt: d.CreatedAt.t,
		UpdatedAt: d.UpdatedAt.t,
	}
	if z.Type == "" {
		z.Type = zone.TypeStandard
	}
	if d.CameraID != "" {
		cam, err := strconv.ParseInt(string(d.CameraID), 10, 64)
		if err != nil {
			return zone.Zone{}, fmt.Errorf("%w: zone %s camera_id %q", ErrMalformedResponse, id, d.CameraID)
		}
		z.CameraID = cam
	}
	for i := 0; i < len(d.Points) && i < len(z.Points); i++ {
		z.Points[i] = pointFromDTO(d.Points[i])
	}
	for _, ld := range d.Lots {
		l := zone.Lot{Points: make([]zone.Point, len(ld.Points))}
		if ld.LotID != "" {
			l.ID = zone.RemoteID(string(ld.LotID))
		}
		for i, p := range ld.Points {
			l.Points[i] = pointFromDTO(p)
		}
		z.Lots = append(z.Lots, l)
	}
	if d.Occupied != nil {
		v := int(*d.Occupied)
		z.Occupied = &v
	}
	if d.Confidence != nil {
		v := *d.Confidence
		z.Confidence = &v
	}
	return z, nil
}

// CreatedZone is the outcome of CreateZone. Zone is set only when the
// server echoed a full record.
type CreatedZone struct {
	ID   zone.ID
	Zone *zone.Zone
}

// parseCreated accepts a bare id, {"zone_id": ...}, {"id": ...}, or a
// full zone record.
func parseCreated(body []byte) (CreatedZone, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return CreatedZone{}, fmt.Errorf("%w: empty create response", ErrMalformedResponse)
	}

	if body[0] != '{' {
		var id flexID
		if err := json.Unmarshal(body, &id); err != nil || id == "" {
			return CreatedZone{}, fmt.Errorf("%w: create response %q", ErrMalformedResponse, truncate(body))
		}
		return CreatedZone{ID: zone.RemoteID(string(id))}, nil
	}

	var d zoneDTO
	if err := json.Unmarshal(body, &d); err != nil {
		return CreatedZone{}, fmt.Errorf("%w: create response: %w", ErrMalformedResponse, err)
	}
	id := d.id()
	if id == "" {
		return CreatedZone{}, fmt.Errorf("%w: create response without zone_id", ErrMalformedResponse)
	}

	out := CreatedZone{ID: zone.RemoteID(id)}
	if len(d.Points) >= len(zone.Zone{}.Points) {
		z, err := zoneFromDTO(d)
		if err != nil {
			return CreatedZone{}, err
		}
		out.Zone = &z
	}
	return out, nil
}

// cameraDTO is a camera record on the wire.
type cameraDTO struct {
	CameraID    flexID          `json:"camera_id"`
	ID          flexID          `json:"id"`
	Title       string          `json:"title"`
	Source      string          `json:"source"`
	ImageWidth  *int            `json:"image_width"`
	ImageHeight *int            `json:"image_height"`
	Calib       json.RawMessage `json:"calib"`
	Latitude    *float64        `json:"latitude"`
	Longitude   *float64        `json:"longitude"`
	IsActive    *bool           `json:"is_active"`
	CreatedAt   flexTime        `json:"created_at"`
	UpdatedAt   flexTime        `json:"updated_at"`
}

func cameraFromDTO(d cameraDTO) (zone.Camera, error) {
	raw := d.CameraID
	if raw == "" {
		raw = d.ID
	}
	id, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return zone.Camera{}, fmt.Errorf("%w: camera_id %q", ErrMalformedResponse, raw)
	}
	c := zone.Camera{
		ID:          id,
		Title:       d.Title,
		Source:      d.Source,
		ImageWidth:  d.ImageWidth,
		ImageHeight: d.ImageHeight,
		Latitude:    d.Latitude,
		Longitude:   d.Longitude,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt.t,
		UpdatedAt:   d.UpdatedAt.t,
	}
	if len(d.Calib) > 0 && string(d.Calib) != "null" {
		c.Calib = append(json.RawMessage(nil), d.Calib...)
	}
	return c, nil
}

func truncate(b []byte) string {
	const limit = 64
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
