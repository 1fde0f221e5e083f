package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"
)

// zoneCountTimeout bounds the per-camera zone count fan-out.
const zoneCountTimeout = 30 * time.Second

// handleListCameras returns every camera known to ParkTrack.
//
// GET /cameras
func (s *Server) handleListCameras(w http.ResponseWriter, r *http.Request) {
	cams, err := s.cameras.ListCameras(r.Context())
	if err != nil {
		s.writeOpError(w, r, "list cameras", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cameras": cams, "count": len(cams)})
}

// handleZoneCounts returns the zone count of every camera. A camera whose
// zones cannot be listed counts as zero.
//
// GET /cameras/zone-counts
// Response: {"counts": {"<camera_id>": N}}
func (s *Server) handleZoneCounts(w http.ResponseWriter, r *http.Request) {
	cams, err := s.cameras.ListCameras(r.Context())
	if err != nil {
		s.writeOpError(w, r, "list cameras", err)
		return
	}
	ids := make([]int64, len(cams))
	for i, c := range cams {
		ids[i] = c.ID
	}

	ctx, cancel := context.WithTimeout(r.Context(), zoneCountTimeout)
	defer cancel()
	counts := s.store.CountZones(ctx, ids)

	out := make(map[string]int, len(counts))
	for id, n := range counts {
		out[strconv.FormatInt(id, 10)] = n
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": out})
}

// handleSelectCamera makes a camera current and loads its record, frame,
// and zones. Load failures are reported but leave the camera selected.
//
// POST /cameras/{cameraID}/select
func (s *Server) handleSelectCamera(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "cameraID")
	if !ok {
		writeBadRequest(w, "invalid camera id")
		return
	}

	s.clearPlacements()
	s.store.SelectCamera(id)
	if err := s.loadCamera(r.Context()); err != nil {
		s.writeOpError(w, r, "load camera", err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// handleReloadCamera reloads the selected camera's record, frame, and zones.
//
// POST /camera/reload
func (s *Server) handleReloadCamera(w http.ResponseWriter, r *http.Request) {
	if err := s.loadCamera(r.Context()); err != nil {
		s.writeOpError(w, r, "reload camera", err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) loadCamera(ctx context.Context) error {
	return errors.Join(
		s.store.LoadCamera(ctx),
		s.store.LoadSnapshot(ctx),
		s.store.LoadZones(ctx),
	)
}

// handleLoadSnapshot fetches a fresh frame for the selected camera.
//
// POST /camera/snapshot
func (s *Server) handleLoadSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.store.LoadSnapshot(r.Context()); err != nil {
		s.writeOpError(w, r, "load snapshot", err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Snapshot().Image)
}

// handleGetImage serves the current frame bytes.
//
// GET /camera/image
func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	data, meta, ok := s.store.Image()
	if !ok {
		s.writeOpError(w, r, "get image", errNoImage)
		return
	}
	ct := meta.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write(data)
}

// handlePutImage replaces the current frame with an uploaded image.
//
// PUT /camera/image
// Body: raw image bytes; Content-Type names the format.
func (s *Server) handlePutImage(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "image too large")
			return
		}
		writeBadRequest(w, "failed to read image")
		return
	}
	if len(data) == 0 {
		writeBadRequest(w, "image body is required")
		return
	}
	s.store.SetImage(data, r.Header.Get("Content-Type"))
	writeJSON(w, http.StatusOK, s.store.Snapshot().Image)
}
