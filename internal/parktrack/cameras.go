package parktrack

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/parkzone-core/internal/zone"
)

// NextCamera is the camera the server wants processed next.
type NextCamera struct {
	CameraID    int64  `json:"camera_id"`
	Source      string `json:"source"`
	ImageWidth  int    `json:"image_width"`
	ImageHeight int    `json:"image_height"`
}

func cameraPath(id int64) string {
	return idPath("/cameras", strconv.FormatInt(id, 10))
}

// ListCameras returns every camera.
func (c *Client) ListCameras(ctx context.Context) ([]zone.Camera, error) {
	var dtos []cameraDTO
	if err := c.do(ctx, http.MethodGet, "/cameras", "/cameras", nil, nil, &dtos); err != nil {
		return nil, err
	}
	cams := make([]zone.Camera, 0, len(dtos))
	for _, d := range dtos {
		cam, err := cameraFromDTO(d)
		if err != nil {
			return nil, err
		}
		cams = append(cams, cam)
	}
	return cams, nil
}

// GetCamera fetches one camera.
func (c *Client) GetCamera(ctx context.Context, id int64) (zone.Camera, error) {
	var d cameraDTO
	if err := c.do(ctx, http.MethodGet, "/cameras/{id}", cameraPath(id), nil, nil, &d); err != nil {
		return zone.Camera{}, err
	}
	return cameraFromDTO(d)
}

// CreateCamera registers a camera.
func (c *Client) CreateCamera(ctx context.Context, in zone.CameraInput) (zone.Camera, error) {
	var d cameraDTO
	if err := c.do(ctx, http.MethodPost, "/cameras/new", "/cameras/new", nil, in, &d); err != nil {
		return zone.Camera{}, err
	}
	return cameraFromDTO(d)
}

// UpdateCamera applies a partial update; nil fields are not sent.
func (c *Client) UpdateCamera(ctx context.Context, id int64, in zone.CameraInput) (zone.Camera, error) {
	var d cameraDTO
	if err := c.do(ctx, http.MethodPut, "/cameras/{id}", cameraPath(id), nil, in, &d); err != nil {
		return zone.Camera{}, err
	}
	if d.CameraID == "" && d.ID == "" {
		d.CameraID = flexID(strconv.FormatInt(id, 10))
	}
	return cameraFromDTO(d)
}

// DeleteCamera removes a camera.
func (c *Client) DeleteCamera(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/cameras/{id}", cameraPath(id), nil, nil, nil)
}

// NextCamera asks the server for the next camera to annotate.
func (c *Client) NextCamera(ctx context.Context) (NextCamera, error) {
	var next NextCamera
	err := c.do(ctx, http.MethodGet, "/cameras/next", "/cameras/next", nil, nil, &next)
	return next, err
}

// Snapshot fetches the latest frame of a camera as raw image bytes.
func (c *Client) Snapshot(ctx context.Context, cameraID int64) (zone.Snapshot, error) {
	resp, err := c.roundTrip(ctx, http.MethodGet, "/cameras/{id}/snapshot", cameraPath(cameraID)+"/snapshot", nil, nil)
	if err != nil {
		return zone.Snapshot{}, err
	}

	snap := zone.Snapshot{
		CameraID:    cameraID,
		Data:        resp.body,
		ContentType: resp.header.Get("Content-Type"),
	}
	if v := strings.TrimSpace(resp.header.Get("X-Captured-At")); v != "" {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			t = t.UTC()
			snap.CapturedAt = &t
		}
	}
	return snap, nil
}
