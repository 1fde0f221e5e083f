package editor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"sync"

	"github.com/nerrad567/parkzone-core/internal/zone"
)

// countWorkers bounds concurrent ListZones calls in CountZones.
const countWorkers = 4

// SelectCamera switches the session to another camera. Zones, selection,
// drafts, camera metadata and the image of the previous camera are
// dropped; call LoadCamera, LoadSnapshot and LoadZones afterwards.
func (s *Store) SelectCamera(id int64) {
	s.mu.Lock()
	if s.st.CameraID == id {
		s.mu.Unlock()
		return
	}
	s.st.CameraID = id
	s.st.Camera = nil
	s.st.Image = nil
	s.image = nil
	s.st.Zones = nil
	s.st.ActiveZone = zone.ID{}
	s.st.ActiveLot = zone.ID{}
	s.st.ZoneDraft = nil
	s.st.LotDraft = nil
	s.st.Tool = ToolSelect
	s.st.Status.Error = ""
	s.st.Status.Info = ""
	s.logger.Debug("camera selected", "camera_id", id)
	s.commit(EventCameraSelected, zone.ID{})
}

// LoadCamera fetches the selected camera's metadata.
func (s *Store) LoadCamera(ctx context.Context) error {
	s.mu.Lock()
	cameraID := s.st.CameraID
	if cameraID == 0 {
		return s.fail(ErrNoCamera, zone.ID{})
	}
	s.beginRequestLocked()
	s.commit(EventStatus, zone.ID{})

	cam, err := s.svc.GetCamera(ctx, cameraID)

	s.mu.Lock()
	s.pending--
	if s.st.CameraID != cameraID {
		s.commit(EventStatus, zone.ID{})
		return nil
	}
	if err != nil {
		return s.fail(fmt.Errorf("load camera %d: %w", cameraID, err), zone.ID{})
	}
	s.st.Camera = &cam
	s.commit(EventCameraLoaded, zone.ID{})
	return nil
}

// LoadSnapshot fetches the current frame of the selected camera. When the
// fetch fails and a placeholder is configured, the placeholder is shown
// instead and no error is returned.
func (s *Store) LoadSnapshot(ctx context.Context) error {
	s.mu.Lock()
	cameraID := s.st.CameraID
	if cameraID == 0 {
		return s.fail(ErrNoCamera, zone.ID{})
	}
	s.beginRequestLocked()
	s.commit(EventStatus, zone.ID{})

	snap, err := s.svc.Snapshot(ctx, cameraID)

	s.mu.Lock()
	s.pending--
	if s.st.CameraID != cameraID {
		s.commit(EventStatus, zone.ID{})
		return nil
	}
	if err != nil {
		if s.opts.Placeholder == nil {
			return s.fail(fmt.Errorf("load snapshot %d: %w", cameraID, err), zone.ID{})
		}
		s.logger.Warn("snapshot unavailable, using placeholder", "camera_id", cameraID, "error", err)
		s.setImageLocked(cameraID, *s.opts.Placeholder, true)
		s.commit(EventImageChanged, zone.ID{})
		return nil
	}
	s.setImageLocked(cameraID, snap, false)
	s.commit(EventImageChanged, zone.ID{})
	return nil
}

// SetImage replaces the frame with an image supplied by the caller.
func (s *Store) SetImage(data []byte, contentType string) {
	s.mu.Lock()
	s.setImageLocked(s.st.CameraID, zone.Snapshot{Data: data, ContentType: contentType}, false)
	s.commit(EventImageChanged, zone.ID{})
}

func (s *Store) setImageLocked(cameraID int64, snap zone.Snapshot, placeholder bool) {
	s.image = append([]byte(nil), snap.Data...)
	meta := &ImageMeta{
		CameraID:    cameraID,
		ContentType: snap.ContentType,
		Size:        len(snap.Data),
		CapturedAt:  snap.CapturedAt,
		Placeholder: placeholder,
	}
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(snap.Data)); err == nil {
		meta.Width = cfg.Width
		meta.Height = cfg.Height
		if meta.ContentType == "" {
			meta.ContentType = "image/" + format
		}
	}
	s.st.Image = meta
}

// Image returns the current frame and its metadata.
func (s *Store) Image() ([]byte, ImageMeta, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.st.Image == nil {
		return nil, ImageMeta{}, false
	}
	return append([]byte(nil), s.image...), *s.st.Image, true
}

// CountZones returns the number of zones per camera for a camera list.
// Failures count as zero and are not reported; the store state is not
// touched.
func (s *Store) CountZones(ctx context.Context, cameraIDs []int64) map[int64]int {
	counts := make(map[int64]int, len(cameraIDs))
	for _, id := range cameraIDs {
		counts[id] = 0
	}
	s.mu.Lock()
	logger := s.logger
	s.mu.Unlock()

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, countWorkers)
	)

	for _, id := range cameraIDs {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			zones, err := s.svc.ListZones(ctx, id)
			if err != nil {
				logger.Debug("zone count failed", "camera_id", id, "error", err)
				return
			}
			mu.Lock()
			counts[id] = len(zones)
			mu.Unlock()
		}(id)
	}
	wg.Wait()
	return counts
}
