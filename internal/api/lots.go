package api

import (
	"net/http"

	"github.com/nerrad567/parkzone-core/internal/editor"
	"github.com/nerrad567/parkzone-core/internal/geometry"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

type lotRequest struct {
	Points []pixelRequest `json:"points" validate:"min=3,dive"`
}

type lotPatchRequest struct {
	Points   *[]zone.Point `json:"points" validate:"omitempty,min=3"`
	Centroid *geoRequest   `json:"centroid"`
}

// lotResponse pairs a lot with its zone and the session state.
type lotResponse struct {
	ZoneID zone.ID      `json:"zone_id"`
	LotID  zone.ID      `json:"lot_id,omitzero"`
	State  editor.State `json:"state"`
}

// handleDraftZonePoint adds a click to the zone draft. The fourth point
// creates the zone.
//
// POST /draft/zone/points
// Body: {"x": 10, "y": 20}
func (s *Server) handleDraftZonePoint(w http.ResponseWriter, r *http.Request) {
	var req pixelRequest
	if !s.decode(w, r, &req) {
		return
	}
	id, err := s.store.DraftAddPoint(req.point())
	if err != nil {
		s.writeOpError(w, r, "add draft point", err)
		return
	}
	status := http.StatusOK
	if !id.IsZero() {
		status = http.StatusCreated
	}
	writeJSON(w, status, zoneResponse{ZoneID: id, State: s.store.Snapshot()})
}

// handleDraftZoneClear discards the zone draft.
//
// DELETE /draft/zone
func (s *Server) handleDraftZoneClear(w http.ResponseWriter, _ *http.Request) {
	s.store.DraftClear()
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// handleDraftLotPoint adds a click to the lot draft of the active zone.
//
// POST /draft/lot/points
func (s *Server) handleDraftLotPoint(w http.ResponseWriter, r *http.Request) {
	var req pixelRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.store.LotDraftAddPoint(req.point()); err != nil {
		s.writeOpError(w, r, "add lot point", err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// handleDraftLotComplete turns the lot draft into a lot.
//
// POST /draft/lot/complete
func (s *Server) handleDraftLotComplete(w http.ResponseWriter, r *http.Request) {
	id, err := s.store.LotDraftComplete()
	if err != nil {
		s.writeOpError(w, r, "complete lot", err)
		return
	}
	st := s.store.Snapshot()
	writeJSON(w, http.StatusCreated, lotResponse{ZoneID: st.ActiveZone, LotID: id, State: st})
}

// handleDraftLotClear discards the lot draft.
//
// DELETE /draft/lot
func (s *Server) handleDraftLotClear(w http.ResponseWriter, _ *http.Request) {
	s.store.LotDraftClear()
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// handleAddLot appends a lot polygon to a zone.
//
// POST /zones/{zoneID}/lots
// Body: {"points": [{x,y}, ...]}
func (s *Server) handleAddLot(w http.ResponseWriter, r *http.Request) {
	zoneID, ok := zoneIDParam(r, "zoneID")
	if !ok {
		writeBadRequest(w, "invalid zone id")
		return
	}
	var req lotRequest
	if !s.decode(w, r, &req) {
		return
	}
	poly := make([]geometry.Point, len(req.Points))
	for i, p := range req.Points {
		poly[i] = p.point()
	}
	id, err := s.store.AddLot(zoneID, poly)
	if err != nil {
		s.writeOpError(w, r, "add lot", err)
		return
	}
	writeJSON(w, http.StatusCreated, lotResponse{ZoneID: zoneID, LotID: id, State: s.store.Snapshot()})
}

// handleUpdateLot replaces a lot's points or centroid.
//
// PATCH /zones/{zoneID}/lots/{lotID}
func (s *Server) handleUpdateLot(w http.ResponseWriter, r *http.Request) {
	zoneID, lotID, ok := lotParams(w, r)
	if !ok {
		return
	}
	var req lotPatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	patch := editor.LotPatch{Points: req.Points}
	if req.Centroid != nil {
		c := req.Centroid.geo()
		patch.Centroid = &c
	}
	if err := s.store.UpdateLot(zoneID, lotID, patch); err != nil {
		s.writeOpError(w, r, "update lot", err)
		return
	}
	writeJSON(w, http.StatusOK, lotResponse{ZoneID: zoneID, LotID: lotID, State: s.store.Snapshot()})
}

// handleRemoveLot deletes a lot from a zone.
//
// DELETE /zones/{zoneID}/lots/{lotID}
func (s *Server) handleRemoveLot(w http.ResponseWriter, r *http.Request) {
	zoneID, lotID, ok := lotParams(w, r)
	if !ok {
		return
	}
	if err := s.store.RemoveLot(zoneID, lotID); err != nil {
		s.writeOpError(w, r, "remove lot", err)
		return
	}
	writeJSON(w, http.StatusOK, lotResponse{ZoneID: zoneID, State: s.store.Snapshot()})
}

// handleSelectLot selects the zone when needed, then the lot.
//
// POST /zones/{zoneID}/lots/{lotID}/select
func (s *Server) handleSelectLot(w http.ResponseWriter, r *http.Request) {
	zoneID, lotID, ok := lotParams(w, r)
	if !ok {
		return
	}
	if active, found := s.store.ActiveZone(); !found || active.ID != zoneID {
		if err := s.store.SelectZone(zoneID); err != nil {
			s.writeOpError(w, r, "select zone", err)
			return
		}
	}
	if err := s.store.SelectLot(lotID); err != nil {
		s.writeOpError(w, r, "select lot", err)
		return
	}
	writeJSON(w, http.StatusOK, lotResponse{ZoneID: zoneID, LotID: lotID, State: s.store.Snapshot()})
}

// handleMoveLotVertex moves one lot vertex in image pixels.
//
// PUT /zones/{zoneID}/lots/{lotID}/vertices/{index}
func (s *Server) handleMoveLotVertex(w http.ResponseWriter, r *http.Request) {
	zoneID, lotID, ok := lotParams(w, r)
	if !ok {
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
	if err := s.store.MoveLotVertex(zoneID, lotID, i, req.point()); err != nil {
		s.writeOpError(w, r, "move lot vertex", err)
		return
	}
	writeJSON(w, http.StatusOK, lotResponse{ZoneID: zoneID, LotID: lotID, State: s.store.Snapshot()})
}

func lotParams(w http.ResponseWriter, r *http.Request) (zone.ID, zone.ID, bool) {
	zoneID, ok := zoneIDParam(r, "zoneID")
	if !ok {
		writeBadRequest(w, "invalid zone id")
		return zone.ID{}, zone.ID{}, false
	}
	lotID, ok := zoneIDParam(r, "lotID")
	if !ok {
		writeBadRequest(w, "invalid lot id")
		return zone.ID{}, zone.ID{}, false
	}
	return zoneID, lotID, true
}
