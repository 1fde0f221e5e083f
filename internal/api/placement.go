package api

import (
	"net/http"

	"github.com/nerrad567/parkzone-core/internal/editor"
	"github.com/nerrad567/parkzone-core/internal/geoplace"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

type startZonePlacementRequest struct {
	ZoneID string `json:"zone_id" validate:"required"`
}

type startCameraPlacementRequest struct {
	CameraID int64 `json:"camera_id" validate:"required,gt=0"`
}

// ZonePlacement is the state of a zone placement session.
type ZonePlacement struct {
	ZoneID   zone.ID    `json:"zone_id"`
	Points   []zone.Geo `json:"points"`
	Complete bool       `json:"complete"`
	Center   zone.Geo   `json:"center"`
}

// CameraPlacement is the state of a camera placement session.
type CameraPlacement struct {
	Camera   zone.Camera `json:"camera"`
	Position *zone.Geo   `json:"position,omitempty"`
}

func zonePlacementOf(p *geoplace.ZonePlacer) ZonePlacement {
	return ZonePlacement{
		ZoneID:   p.ZoneID(),
		Points:   p.Points(),
		Complete: p.Complete(),
		Center:   p.Center(),
	}
}

func cameraPlacementOf(p *geoplace.CameraPlacer) CameraPlacement {
	out := CameraPlacement{Camera: p.Camera()}
	if g, ok := p.Position(); ok {
		out.Position = &g
	}
	return out
}

// clearPlacements ends both placement sessions.
func (s *Server) clearPlacements() {
	s.placeMu.Lock()
	s.zonePlace = nil
	s.camPlace = nil
	s.placeMu.Unlock()
}

// followPromotion keeps the zone placement on a zone that was saved
// outside the placement session.
func (s *Server) followPromotion(ev editor.Event) {
	if ev.Type != editor.EventZoneCreated {
		return
	}
	s.placeMu.Lock()
	p := s.zonePlace
	s.placeMu.Unlock()
	if p != nil && p.Promote(ev.PreviousID, ev.ZoneID) {
		s.logger.Debug("zone placement followed promotion", "from", ev.PreviousID.String(), "to", ev.ZoneID.String())
	}
}

func (s *Server) zonePlacer() (*geoplace.ZonePlacer, error) {
	s.placeMu.Lock()
	defer s.placeMu.Unlock()
	if s.zonePlace == nil {
		return nil, errNoPlacement
	}
	return s.zonePlace, nil
}

func (s *Server) cameraPlacer() (*geoplace.CameraPlacer, error) {
	s.placeMu.Lock()
	defer s.placeMu.Unlock()
	if s.camPlace == nil {
		return nil, errNoPlacement
	}
	return s.camPlace, nil
}

// handleStartZonePlacement begins placing a zone on the map, replacing any
// session in progress.
//
// POST /placement/zone
// Body: {"zone_id": "42"}
func (s *Server) handleStartZonePlacement(w http.ResponseWriter, r *http.Request) {
	var req startZonePlacementRequest
	if !s.decode(w, r, &req) {
		return
	}
	id, err := zone.ParseID(req.ZoneID)
	if err != nil {
		s.writeOpError(w, r, "start placement", err)
		return
	}
	p, err := geoplace.NewZonePlacer(s.store, id, s.mapCenter)
	if err != nil {
		s.writeOpError(w, r, "start placement", err)
		return
	}

	s.placeMu.Lock()
	s.zonePlace = p
	s.placeMu.Unlock()

	writeJSON(w, http.StatusCreated, zonePlacementOf(p))
}

// handleGetZonePlacement returns the session in progress.
//
// GET /placement/zone
func (s *Server) handleGetZonePlacement(w http.ResponseWriter, r *http.Request) {
	p, err := s.zonePlacer()
	if err != nil {
		s.writeOpError(w, r, "get placement", err)
		return
	}
	writeJSON(w, http.StatusOK, zonePlacementOf(p))
}

// handleCancelZonePlacement ends the session. Coordinates already written
// to the zone are kept.
//
// DELETE /placement/zone
func (s *Server) handleCancelZonePlacement(w http.ResponseWriter, _ *http.Request) {
	s.placeMu.Lock()
	s.zonePlace = nil
	s.placeMu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// handleZonePlacementClick places the next map point.
//
// POST /placement/zone/points
// Body: {"lon": .., "lat": ..}
func (s *Server) handleZonePlacementClick(w http.ResponseWriter, r *http.Request) {
	p, err := s.zonePlacer()
	if err != nil {
		s.writeOpError(w, r, "place point", err)
		return
	}
	var req geoRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := p.Click(req.geo()); err != nil {
		s.writeOpError(w, r, "place point", err)
		return
	}
	writeJSON(w, http.StatusOK, zonePlacementOf(p))
}

// handleZonePlacementDrag moves a placed map point.
//
// PUT /placement/zone/points/{index}
func (s *Server) handleZonePlacementDrag(w http.ResponseWriter, r *http.Request) {
	p, err := s.zonePlacer()
	if err != nil {
		s.writeOpError(w, r, "move point", err)
		return
	}
	i, ok := indexParam(r)
	if !ok {
		writeBadRequest(w, "invalid point index")
		return
	}
	var req geoRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := p.Drag(i, req.geo()); err != nil {
		s.writeOpError(w, r, "move point", err)
		return
	}
	writeJSON(w, http.StatusOK, zonePlacementOf(p))
}

// handleZonePlacementReset forgets the placed points and clears the
// zone's coordinates.
//
// POST /placement/zone/reset
func (s *Server) handleZonePlacementReset(w http.ResponseWriter, r *http.Request) {
	p, err := s.zonePlacer()
	if err != nil {
		s.writeOpError(w, r, "reset placement", err)
		return
	}
	if err := p.Reset(); err != nil {
		s.writeOpError(w, r, "reset placement", err)
		return
	}
	writeJSON(w, http.StatusOK, zonePlacementOf(p))
}

// handleZonePlacementSave writes the placement to the zone and saves it.
//
// POST /placement/zone/save
func (s *Server) handleZonePlacementSave(w http.ResponseWriter, r *http.Request) {
	p, err := s.zonePlacer()
	if err != nil {
		s.writeOpError(w, r, "save placement", err)
		return
	}
	if _, err := p.Save(r.Context()); err != nil {
		s.writeOpError(w, r, "save placement", err)
		return
	}
	writeJSON(w, http.StatusOK, zonePlacementOf(p))
}

// handleStartCameraPlacement loads a camera for positioning.
//
// POST /placement/camera
// Body: {"camera_id": 7}
func (s *Server) handleStartCameraPlacement(w http.ResponseWriter, r *http.Request) {
	var req startCameraPlacementRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := geoplace.NewCameraPlacer(r.Context(), s.cameras, req.CameraID)
	if err != nil {
		s.writeOpError(w, r, "start camera placement", err)
		return
	}

	s.placeMu.Lock()
	s.camPlace = p
	s.placeMu.Unlock()

	writeJSON(w, http.StatusCreated, cameraPlacementOf(p))
}

// handleGetCameraPlacement returns the camera session in progress.
//
// GET /placement/camera
func (s *Server) handleGetCameraPlacement(w http.ResponseWriter, r *http.Request) {
	p, err := s.cameraPlacer()
	if err != nil {
		s.writeOpError(w, r, "get camera placement", err)
		return
	}
	writeJSON(w, http.StatusOK, cameraPlacementOf(p))
}

// handleCancelCameraPlacement ends the camera session without saving.
//
// DELETE /placement/camera
func (s *Server) handleCancelCameraPlacement(w http.ResponseWriter, _ *http.Request) {
	s.placeMu.Lock()
	s.camPlace = nil
	s.placeMu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// handleCameraPlacementClick moves the camera marker.
//
// PUT /placement/camera/position
// Body: {"lon": .., "lat": ..}
func (s *Server) handleCameraPlacementClick(w http.ResponseWriter, r *http.Request) {
	p, err := s.cameraPlacer()
	if err != nil {
		s.writeOpError(w, r, "place camera", err)
		return
	}
	var req geoRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := p.Click(req.geo()); err != nil {
		s.writeOpError(w, r, "place camera", err)
		return
	}
	writeJSON(w, http.StatusOK, cameraPlacementOf(p))
}

// handleCameraPlacementSave sends the camera position to ParkTrack.
//
// POST /placement/camera/save
func (s *Server) handleCameraPlacementSave(w http.ResponseWriter, r *http.Request) {
	p, err := s.cameraPlacer()
	if err != nil {
		s.writeOpError(w, r, "save camera position", err)
		return
	}
	if _, err := p.Save(r.Context()); err != nil {
		s.writeOpError(w, r, "save camera position", err)
		return
	}
	writeJSON(w, http.StatusOK, cameraPlacementOf(p))
}
