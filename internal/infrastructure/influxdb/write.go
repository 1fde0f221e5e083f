package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

const (
	MeasurementRequests  = "parktrack_requests"
	MeasurementOccupancy = "zone_occupancy"
)

// ObserveRequest records one ParkTrack API call. Status 0 means the
// request never got a response.
func (c *Client) ObserveRequest(method, route string, status int, elapsed time.Duration, err error) {
	c.WritePoint(MeasurementRequests,
		map[string]string{
			"method": method,
			"route":  route,
			"status": statusClass(status),
		},
		map[string]any{
			"duration_ms": float64(elapsed) / float64(time.Millisecond),
			"status_code": status,
			"failed":      err != nil,
		},
		time.Now(),
	)
}

func statusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}

// Occupancy is one zone's reported occupancy.
type Occupancy struct {
	CameraID   int64
	ZoneID     string
	ZoneType   string
	Capacity   int
	Occupied   int
	Confidence *float64
	At         time.Time
}

// WriteOccupancy records o. A zero At means now.
func (c *Client) WriteOccupancy(o Occupancy) {
	fields := map[string]any{
		"capacity": o.Capacity,
		"occupied": o.Occupied,
		"free":     max(o.Capacity-o.Occupied, 0),
	}
	if o.Confidence != nil {
		fields["confidence"] = *o.Confidence
	}
	at := o.At
	if at.IsZero() {
		at = time.Now()
	}
	c.WritePoint(MeasurementOccupancy,
		map[string]string{
			"camera_id": strconv.FormatInt(o.CameraID, 10),
			"zone_id":   o.ZoneID,
			"zone_type": o.ZoneType,
		},
		fields, at)
}

// WritePoint queues a point. It is dropped while the client is closed.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]any, at time.Time) {
	if c == nil {
		return
	}
	// Held across the write so Close cannot shut the write API underneath it.
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected {
		return
	}
	c.writeAPI.WritePoint(write.NewPoint(measurement, tags, fields, at))
}
