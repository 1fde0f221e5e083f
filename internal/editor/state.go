package editor

import (
	"encoding/json"
	"time"

	"github.com/nerrad567/parkzone-core/internal/geometry"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

// Info values reported after successful persistence.
const (
	InfoZoneCreated = "zone-created"
	InfoZoneUpdated = "zone-updated"
	InfoZoneDeleted = "zone-deleted"
)

// Status is the user-visible outcome of the latest operations.
type Status struct {
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
	Info    string `json:"info,omitempty"`
}

// ImageMeta describes the frame the zones are drawn over.
type ImageMeta struct {
	CameraID    int64      `json:"camera_id"`
	ContentType string     `json:"content_type,omitempty"`
	Width       int        `json:"width,omitempty"`
	Height      int        `json:"height,omitempty"`
	Size        int        `json:"size"`
	CapturedAt  *time.Time `json:"captured_at,omitempty"`
	Placeholder bool       `json:"placeholder,omitempty"`
}

// State is a point-in-time copy of the editing session. Values returned
// by the Store never alias its internal state.
type State struct {
	CameraID   int64            `json:"camera_id"`
	Camera     *zone.Camera     `json:"camera,omitempty"`
	Image      *ImageMeta       `json:"image,omitempty"`
	Zones      []zone.Zone      `json:"zones"`
	ActiveZone zone.ID          `json:"active_zone"`
	ActiveLot  zone.ID          `json:"active_lot"`
	Tool       Tool             `json:"tool"`
	ZoneDraft  []geometry.Point `json:"zone_draft"`
	LotDraft   []geometry.Point `json:"lot_draft"`
	View       geometry.View    `json:"view"`
	Status     Status           `json:"status"`
	Saving     []zone.ID        `json:"saving,omitempty"`
}

// Zone returns the zone with the given ID.
func (s State) Zone(id zone.ID) (zone.Zone, bool) {
	for _, z := range s.Zones {
		if z.ID == id {
			return z, true
		}
	}
	return zone.Zone{}, false
}

// EventType names what changed.
type EventType string

const (
	EventCameraSelected EventType = "camera_selected"
	EventCameraLoaded   EventType = "camera_loaded"
	EventImageChanged   EventType = "image_changed"
	EventZonesLoaded    EventType = "zones_loaded"
	EventZoneAdded      EventType = "zone_added"
	EventZoneChanged    EventType = "zone_changed"
	EventZoneCreated    EventType = "zone_created"
	EventZoneUpdated    EventType = "zone_updated"
	EventZoneDeleted    EventType = "zone_deleted"
	EventSelection      EventType = "selection_changed"
	EventToolChanged    EventType = "tool_changed"
	EventDraftChanged   EventType = "draft_changed"
	EventViewChanged    EventType = "view_changed"
	EventStatus         EventType = "status_changed"
	EventError          EventType = "error"
)

// Event is published after every mutation.
type Event struct {
	Type     EventType `json:"type"`
	CameraID int64     `json:"camera_id"`
	ZoneID   zone.ID   `json:"zone_id,omitzero"`

	// PreviousID is the placeholder a created zone was promoted from.
	PreviousID zone.ID `json:"previous_id,omitzero"`

	// Zone is the affected zone after the change, when there is one.
	Zone *zone.Zone `json:"zone,omitempty"`

	State State     `json:"state"`
	At    time.Time `json:"at"`
}

func cloneState(s State) State {
	c := s
	if s.Camera != nil {
		cam := *s.Camera
		cam.Calib = append(json.RawMessage(nil), s.Camera.Calib...)
		c.Camera = &cam
	}
	if s.Image != nil {
		img := *s.Image
		c.Image = &img
	}
	c.Zones = make([]zone.Zone, len(s.Zones))
	for i, z := range s.Zones {
		c.Zones[i] = z.Clone()
	}
	c.ZoneDraft = append([]geometry.Point(nil), s.ZoneDraft...)
	c.LotDraft = append([]geometry.Point(nil), s.LotDraft...)
	c.Saving = append([]zone.ID(nil), s.Saving...)
	return c
}
