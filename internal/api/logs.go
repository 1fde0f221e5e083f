package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/parkzone-core/internal/journal"
	"github.com/nerrad567/parkzone-core/internal/parktrack"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

// handleListRequests returns the ParkTrack request log, newest first.
//
// GET /requests
func (s *Server) handleListRequests(w http.ResponseWriter, _ *http.Request) {
	entries := []parktrack.Entry{}
	if s.requests != nil {
		entries = s.requests.Entries()
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}

// handleClearRequests empties the request log.
//
// DELETE /requests
func (s *Server) handleClearRequests(w http.ResponseWriter, _ *http.Request) {
	if s.requests != nil {
		s.requests.Clear()
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListJournal returns saved zone changes, newest first.
//
// GET /journal?camera_id=7&zone_id=42&action=update&limit=50&offset=0
func (s *Server) handleListJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeUnavailable(w, "journal is disabled")
		return
	}

	q := r.URL.Query()
	var f journal.Filter
	if v := q.Get("camera_id"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			writeBadRequest(w, "invalid camera_id")
			return
		}
		f.CameraID = n
	}
	if v := q.Get("zone_id"); v != "" {
		id, err := zone.ParseID(v)
		if err != nil {
			writeBadRequest(w, "invalid zone_id")
			return
		}
		f.ZoneID = id
	}
	if v := q.Get("action"); v != "" {
		f.Action = journal.Action(v)
		if !f.Action.Valid() {
			writeBadRequest(w, "invalid action")
			return
		}
	}
	for _, p := range []struct {
		name string
		dst  *int
	}{{"limit", &f.Limit}, {"offset", &f.Offset}} {
		v := q.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, "invalid "+p.name)
			return
		}
		*p.dst = n
	}

	res, err := s.journal.List(r.Context(), f)
	if err != nil {
		s.logger.Error("failed to list journal", "error", err)
		writeInternalError(w, "failed to list journal")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
