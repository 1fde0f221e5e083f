package geoplace

import (
	"context"
	"fmt"
	"sync"

	"github.com/nerrad567/parkzone-core/internal/zone"
)

// CameraService reads and updates cameras. *parktrack.Client satisfies it.
type CameraService interface {
	GetCamera(ctx context.Context, id int64) (zone.Camera, error)
	UpdateCamera(ctx context.Context, id int64, in zone.CameraInput) (zone.Camera, error)
}

// CameraPlacer sets the map position of one camera.
type CameraPlacer struct {
	svc CameraService

	mu     sync.Mutex
	camera zone.Camera
	pos    *zone.Geo
}

// NewCameraPlacer loads the camera and seeds the position from it.
func NewCameraPlacer(ctx context.Context, svc CameraService, cameraID int64) (*CameraPlacer, error) {
	cam, err := svc.GetCamera(ctx, cameraID)
	if err != nil {
		return nil, fmt.Errorf("load camera %d: %w", cameraID, err)
	}
	p := &CameraPlacer{svc: svc, camera: cam}
	if g, ok := cam.Position(); ok {
		p.pos = &g
	}
	return p, nil
}

// Camera returns the camera as last loaded or saved.
func (p *CameraPlacer) Camera() zone.Camera {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.camera
}

// Position returns the pending position.
func (p *CameraPlacer) Position() (zone.Geo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pos == nil {
		return zone.Geo{}, false
	}
	return *p.pos, true
}

// Click moves the camera marker. Nothing is sent until Save.
func (p *CameraPlacer) Click(g zone.Geo) error {
	if err := zone.ValidateGeo(g); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = &g
	return nil
}

// Save sends the position. Only latitude and longitude are updated.
func (p *CameraPlacer) Save(ctx context.Context) (zone.Camera, error) {
	p.mu.Lock()
	if p.pos == nil {
		p.mu.Unlock()
		return zone.Camera{}, ErrNoPosition
	}
	lat, lon := p.pos.Lat, p.pos.Lon
	id := p.camera.ID
	p.mu.Unlock()

	cam, err := p.svc.UpdateCamera(ctx, id, zone.CameraInput{Latitude: &lat, Longitude: &lon})
	if err != nil {
		return zone.Camera{}, fmt.Errorf("update camera %d: %w", id, err)
	}

	p.mu.Lock()
	p.camera = cam
	p.mu.Unlock()
	return cam, nil
}
