package zone

import (
	"encoding/json"
	"time"
)

// Camera is a ParkTrack camera record. Calib is passed through untouched.
type Camera struct {
	ID          int64           `json:"camera_id"`
	Title       string          `json:"title,omitempty"`
	Source      string          `json:"source,omitempty"`
	ImageWidth  *int            `json:"image_width,omitempty"`
	ImageHeight *int            `json:"image_height,omitempty"`
	Calib       json.RawMessage `json:"calib,omitempty"`
	Latitude    *float64        `json:"latitude,omitempty"`
	Longitude   *float64        `json:"longitude,omitempty"`
	IsActive    *bool           `json:"is_active,omitempty"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

// Position returns the camera's coordinate when both parts are set.
func (c Camera) Position() (Geo, bool) {
	if c.Latitude == nil || c.Longitude == nil {
		return Geo{}, false
	}
	return Geo{Lon: *c.Longitude, Lat: *c.Latitude}, true
}

// CameraInput is the body of a camera create or update. Nil fields are
// left out of the request so an update touches only what is set.
type CameraInput struct {
	Title       *string         `json:"title,omitempty"`
	Source      *string         `json:"source,omitempty"`
	ImageWidth  *int            `json:"image_width,omitempty"`
	ImageHeight *int            `json:"image_height,omitempty"`
	Calib       json.RawMessage `json:"calib,omitempty"`
	Latitude    *float64        `json:"latitude,omitempty"`
	Longitude   *float64        `json:"longitude,omitempty"`
	IsActive    *bool           `json:"is_active,omitempty"`
}

// Snapshot is a camera frame.
type Snapshot struct {
	CameraID    int64
	Data        []byte
	ContentType string
	CapturedAt  *time.Time
}
