// Package telemetry feeds editor events into metrics and the occupancy
// time series.
package telemetry

import (
	"github.com/nerrad567/parkzone-core/internal/editor"
	"github.com/nerrad567/parkzone-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

// Counter is implemented by *metrics.Registry.
type Counter interface {
	CountEvent(eventType string)
	SetZones(cameraID int64, n int)
}

// OccupancyWriter is implemented by *influxdb.Client.
type OccupancyWriter interface {
	WriteOccupancy(o influxdb.Occupancy)
}

// Recorder routes editor events to its sinks. Either sink may be nil.
type Recorder struct {
	counter   Counter
	occupancy OccupancyWriter
}

// NewRecorder creates a Recorder.
func NewRecorder(counter Counter, occupancy OccupancyWriter) *Recorder {
	return &Recorder{counter: counter, occupancy: occupancy}
}

// Handle is an editor subscriber.
func (r *Recorder) Handle(ev editor.Event) {
	if r.counter != nil {
		r.counter.CountEvent(string(ev.Type))
		switch ev.Type {
		case editor.EventZonesLoaded, editor.EventCameraSelected,
			editor.EventZoneAdded, editor.EventZoneCreated, editor.EventZoneDeleted:
			r.counter.SetZones(ev.CameraID, len(ev.State.Zones))
		}
	}

	if r.occupancy == nil {
		return
	}
	switch ev.Type {
	case editor.EventZonesLoaded:
		for _, z := range ev.State.Zones {
			r.writeZone(z, ev)
		}
	case editor.EventZoneCreated, editor.EventZoneUpdated:
		if ev.Zone != nil {
			r.writeZone(*ev.Zone, ev)
		}
	}
}

// writeZone records server zones that report occupancy.
func (r *Recorder) writeZone(z zone.Zone, ev editor.Event) {
	id, ok := z.ID.Remote()
	if !ok || z.Occupied == nil {
		return
	}
	cameraID := z.CameraID
	if cameraID == 0 {
		cameraID = ev.CameraID
	}
	r.occupancy.WriteOccupancy(influxdb.Occupancy{
		CameraID:   cameraID,
		ZoneID:     id,
		ZoneType:   string(z.Type),
		Capacity:   z.Capacity,
		Occupied:   *z.Occupied,
		Confidence: z.Confidence,
		At:         ev.At,
	})
}
