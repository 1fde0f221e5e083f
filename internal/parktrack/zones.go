package parktrack

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/nerrad567/parkzone-core/internal/zone"
)

// ListZones returns the zones of a camera, or every zone when cameraID is 0.
func (c *Client) ListZones(ctx context.Context, cameraID int64) ([]zone.Zone, error) {
	var query url.Values
	if cameraID != 0 {
		query = url.Values{"camera_id": {strconv.FormatInt(cameraID, 10)}}
	}

	var dtos []zoneDTO
	if err := c.do(ctx, http.MethodGet, "/zones", "/zones", query, nil, &dtos); err != nil {
		return nil, err
	}

	zones := make([]zone.Zone, 0, len(dtos))
	for _, d := range dtos {
		z, err := zoneFromDTO(d)
		if err != nil {
			return nil, err
		}
		zones = append(zones, z)
	}
	return zones, nil
}

// GetZone fetches one zone.
func (c *Client) GetZone(ctx context.Context, id string) (zone.Zone, error) {
	var d zoneDTO
	if err := c.do(ctx, http.MethodGet, "/zones/{id}", idPath("/zones", id), nil, nil, &d); err != nil {
		return zone.Zone{}, err
	}
	return zoneFromDTO(d)
}

// CreateZone posts a new zone. The server may answer with only the new ID.
func (c *Client) CreateZone(ctx context.Context, z zone.Zone) (CreatedZone, error) {
	resp, err := c.roundTrip(ctx, http.MethodPost, "/zones/new", "/zones/new", nil, buildZoneBody(z))
	if err != nil {
		return CreatedZone{}, err
	}
	return parseCreated(resp.body)
}

// UpdateZone replaces a zone and returns the server's record.
func (c *Client) UpdateZone(ctx context.Context, id string, z zone.Zone) (zone.Zone, error) {
	var d zoneDTO
	if err := c.do(ctx, http.MethodPut, "/zones/{id}", idPath("/zones", id), nil, buildZoneBody(z), &d); err != nil {
		return zone.Zone{}, err
	}
	if d.id() == "" {
		// Some deployments answer 200 with an empty object; trust the request.
		d.ZoneID = flexID(id)
		if len(d.Points) == 0 {
			return withRemoteID(z, id), nil
		}
	}
	return zoneFromDTO(d)
}

// DeleteZone removes a zone.
func (c *Client) DeleteZone(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("parktrack: delete zone: empty id")
	}
	return c.do(ctx, http.MethodDelete, "/zones/{id}", idPath("/zones", id), nil, nil, nil)
}

func withRemoteID(z zone.Zone, id string) zone.Zone {
	out := z.Clone()
	out.ID = zone.RemoteID(id)
	return out
}
