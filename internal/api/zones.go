package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/parkzone-core/internal/editor"
	"github.com/nerrad567/parkzone-core/internal/geometry"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

type addZoneRequest struct {
	// Points is optional; the default quad is used when absent.
	Points *[4]geometry.Point `json:"points"`
}

type zonePatchRequest struct {
	Type     *zone.Type     `json:"zone_type" validate:"omitempty,oneof=standard parallel disabled"`
	Capacity *int           `json:"capacity" validate:"omitempty,gte=0"`
	Pay      *int           `json:"pay" validate:"omitempty,gte=0"`
	CameraID *int64         `json:"camera_id" validate:"omitempty,gt=0"`
	Points   *[4]zone.Point `json:"points"`
}

type pixelRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

func (p pixelRequest) point() geometry.Point {
	return geometry.Point{X: *p.X, Y: *p.Y}
}

type geoRequest struct {
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
}

func (g geoRequest) geo() zone.Geo {
	return zone.Geo{Lon: *g.Lon, Lat: *g.Lat}
}

type zoneGeoRequest struct {
	Points []geoRequest `json:"points" validate:"len=4,dive"`
}

// zoneResponse pairs the affected zone ID with the session state.
type zoneResponse struct {
	ZoneID zone.ID      `json:"zone_id,omitzero"`
	State  editor.State `json:"state"`
}

// handleListZones returns the selected camera's zones.
//
// GET /zones
// Response: {"camera_id": N, "zones": [...], "count": N}
func (s *Server) handleListZones(w http.ResponseWriter, _ *http.Request) {
	st := s.store.Snapshot()
	zones := st.Zones
	if zones == nil {
		zones = []zone.Zone{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"camera_id": st.CameraID,
		"zones":     zones,
		"count":     len(zones),
	})
}

// handleLoadZones refetches the selected camera's zones from ParkTrack.
//
// POST /zones/load
func (s *Server) handleLoadZones(w http.ResponseWriter, r *http.Request) {
	if err := s.store.LoadZones(r.Context()); err != nil {
		s.writeOpError(w, r, "load zones", err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// handleAddZone adds an unsaved zone.
//
// POST /zones
// Body: {"points": [{x,y} x4]} or {}
// Response: 201 Created with the placeholder ID
func (s *Server) handleAddZone(w http.ResponseWriter, r *http.Request) {
	var req addZoneRequest
	if !s.decode(w, r, &req) {
		return
	}
	id, err := s.store.AddZone(req.Points)
	if err != nil {
		s.writeOpError(w, r, "add zone", err)
		return
	}
	writeJSON(w, http.StatusCreated, zoneResponse{ZoneID: id, State: s.store.Snapshot()})
}

// handleGetZone returns one zone.
//
// GET /zones/{zoneID}
func (s *Server) handleGetZone(w http.ResponseWriter, r *http.Request) {
	id, ok := zoneIDParam(r, "zoneID")
	if !ok {
		writeBadRequest(w, "invalid zone id")
		return
	}
	z, found := s.store.Zone(id)
	if !found {
		writeNotFound(w, "zone not found")
		return
	}
	writeJSON(w, http.StatusOK, z)
}

// handleUpdateZone merges fields into a zone without saving it.
//
// PATCH /zones/{zoneID}
func (s *Server) handleUpdateZone(w http.ResponseWriter, r *http.Request) {
	id, ok := zoneIDParam(r, "zoneID")
	if !ok {
		writeBadRequest(w, "invalid zone id")
		return
	}
	var req zonePatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	patch := editor.ZonePatch{
		Type:     req.Type,
		Capacity: req.Capacity,
		Pay:      req.Pay,
		CameraID: req.CameraID,
		Points:   req.Points,
	}
	if err := s.store.UpdateZone(id, patch); err != nil {
		s.writeOpError(w, r, "update zone", err)
		return
	}
	writeJSON(w, http.StatusOK, zoneResponse{ZoneID: id, State: s.store.Snapshot()})
}

// handleDeleteZone removes a zone, remotely when it has a server ID.
//
// DELETE /zones/{zoneID}
func (s *Server) handleDeleteZone(w http.ResponseWriter, r *http.Request) {
	id, ok := zoneIDParam(r, "zoneID")
	if !ok {
		writeBadRequest(w, "invalid zone id")
		return
	}
	if err := s.store.RemoveZone(r.Context(), id); err != nil {
		s.writeOpError(w, r, "delete zone", err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// handleSaveZone creates or updates a zone on ParkTrack. A created zone
// answers with its new server ID.
//
// POST /zones/{zoneID}/save
func (s *Server) handleSaveZone(w http.ResponseWriter, r *http.Request) {
	id, ok := zoneIDParam(r, "zoneID")
	if !ok {
		writeBadRequest(w, "invalid zone id")
		return
	}
	saved, err := s.store.SaveZone(r.Context(), id)
	if err != nil {
		s.writeOpError(w, r, "save zone", err)
		return
	}
	writeJSON(w, http.StatusOK, zoneResponse{ZoneID: saved, State: s.store.Snapshot()})
}

// handleNormalizeZone reorders a zone's vertices clockwise.
//
// POST /zones/{zoneID}/normalize
func (s *Server) handleNormalizeZone(w http.ResponseWriter, r *http.Request) {
	s.zoneOp(w, r, "normalize zone", s.store.NormalizeZoneWinding)
}

// handleSelectZone makes a zone active.
//
// POST /zones/{zoneID}/select
func (s *Server) handleSelectZone(w http.ResponseWriter, r *http.Request) {
	s.zoneOp(w, r, "select zone", s.store.SelectZone)
}

// handleClearZoneGeo removes every coordinate from a zone.
//
// DELETE /zones/{zoneID}/geo
func (s *Server) handleClearZoneGeo(w http.ResponseWriter, r *http.Request) {
	s.zoneOp(w, r, "clear zone coordinates", s.store.ClearZoneGeo)
}

// zoneOp runs a store operation that takes only the path zone ID.
func (s *Server) zoneOp(w http.ResponseWriter, r *http.Request, op string, fn func(zone.ID) error) {
	id, ok := zoneIDParam(r, "zoneID")
	if !ok {
		writeBadRequest(w, "invalid zone id")
		return
	}
	if err := fn(id); err != nil {
		s.writeOpError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, zoneResponse{ZoneID: id, State: s.store.Snapshot()})
}

// handleMoveZoneVertex moves one zone vertex in image pixels.
//
// PUT /zones/{zoneID}/vertices/{index}
// Body: {"x": 10, "y": 20}
func (s *Server) handleMoveZoneVertex(w http.ResponseWriter, r *http.Request) {
	id, ok := zoneIDParam(r, "zoneID")
	if !ok {
		writeBadRequest(w, "invalid zone id")
		return
	}
	i, ok := indexParam(r)
	if !ok {
		writeBadRequest(w, "invalid vertex index")
		return
	}
	var req pixelRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.store.MoveZoneVertex(id, i, req.point()); err != nil {
		s.writeOpError(w, r, "move vertex", err)
		return
	}
	writeJSON(w, http.StatusOK, zoneResponse{ZoneID: id, State: s.store.Snapshot()})
}

// handleSetZoneGeo sets all four zone coordinates.
//
// PUT /zones/{zoneID}/geo
// Body: {"points": [{"lon": .., "lat": ..} x4]}
func (s *Server) handleSetZoneGeo(w http.ResponseWriter, r *http.Request) {
	id, ok := zoneIDParam(r, "zoneID")
	if !ok {
		writeBadRequest(w, "invalid zone id")
		return
	}
	var req zoneGeoRequest
	if !s.decode(w, r, &req) {
		return
	}
	var geo [4]zone.Geo
	for i, g := range req.Points {
		geo[i] = g.geo()
	}
	if err := s.store.SetZoneGeo(id, geo); err != nil {
		s.writeOpError(w, r, "set zone coordinates", err)
		return
	}
	writeJSON(w, http.StatusOK, zoneResponse{ZoneID: id, State: s.store.Snapshot()})
}

// handleSetZoneVertexGeo sets the coordinate of one vertex.
//
// PUT /zones/{zoneID}/geo/{index}
// Body: {"lon": .., "lat": ..}
func (s *Server) handleSetZoneVertexGeo(w http.ResponseWriter, r *http.Request) {
	id, ok := zoneIDParam(r, "zoneID")
	if !ok {
		writeBadRequest(w, "invalid zone id")
		return
	}
	i, ok := indexParam(r)
	if !ok {
		writeBadRequest(w, "invalid vertex index")
		return
	}
	var req geoRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.store.SetZoneVertexGeo(id, i, req.geo()); err != nil {
		s.writeOpError(w, r, "set vertex coordinate", err)
		return
	}
	writeJSON(w, http.StatusOK, zoneResponse{ZoneID: id, State: s.store.Snapshot()})
}

// handleExportZones returns the placed zones of the selected camera as a
// GeoJSON FeatureCollection. Zones without complete coordinates are left
// out and counted in X-Skipped-Zones.
//
// GET /zones/export
func (s *Server) handleExportZones(w http.ResponseWriter, r *http.Request) {
	fc, skipped := zone.FeatureCollection(s.store.Snapshot().Zones)
	data, err := fc.MarshalJSON()
	if err != nil {
		s.writeOpError(w, r, "export zones", err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("X-Skipped-Zones", strconv.Itoa(skipped))
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write(data)
}
