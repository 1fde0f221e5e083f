package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/nerrad567/parkzone-core/internal/editor"
	"github.com/nerrad567/parkzone-core/internal/geometry"
)

type toolRequest struct {
	Tool string `json:"tool" validate:"required,oneof=select drawZone editZone drawLot editLot"`
}

type viewRequest struct {
	Scale   float64 `json:"scale" validate:"gt=0"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// handleGetState returns a snapshot of the editing session.
//
// GET /state
func (s *Server) handleGetState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// handleClearStatus dismisses the current error and info messages.
//
// DELETE /state/status
func (s *Server) handleClearStatus(w http.ResponseWriter, _ *http.Request) {
	s.store.ClearStatus()
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// handleSetTool switches the interaction mode.
//
// PUT /state/tool
// Body: {"tool": "drawZone"}
func (s *Server) handleSetTool(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if !s.decode(w, r, &req) {
		return
	}
	tool, err := editor.ParseTool(req.Tool)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.store.SetTool(tool); err != nil {
		s.writeOpError(w, r, "set tool", err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// handleSetView replaces the pan/zoom transform.
//
// PUT /state/view
// Body: {"scale": 1.5, "offset_x": -40, "offset_y": 0}
func (s *Server) handleSetView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if !s.decode(w, r, &req) {
		return
	}
	v := geometry.View{Scale: req.Scale, OffsetX: req.OffsetX, OffsetY: req.OffsetY}
	if err := s.store.SetView(v); err != nil {
		s.writeOpError(w, r, "set view", err)
		return
	}
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// handleClearSelection deselects the active zone and lot.
//
// DELETE /state/selection
func (s *Server) handleClearSelection(w http.ResponseWriter, _ *http.Request) {
	s.store.ClearSelection()
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// SystemInfo is the /system response.
type SystemInfo struct {
	Timestamp     string         `json:"timestamp"`
	Version       string         `json:"version"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	Runtime       RuntimeInfo    `json:"runtime"`
	WebSocket     WebSocketInfo  `json:"websocket"`
	Editor        EditorInfo     `json:"editor"`
	Requests      RequestLogInfo `json:"requests"`
}

// RuntimeInfo contains Go runtime statistics.
type RuntimeInfo struct {
	Goroutines    int     `json:"goroutines"`
	MemoryAllocMB float64 `json:"memory_alloc_mb"`
	NumGC         uint32  `json:"num_gc"`
}

// WebSocketInfo contains WebSocket hub statistics.
type WebSocketInfo struct {
	ConnectedClients int `json:"connected_clients"`
}

// EditorInfo summarises the editing session.
type EditorInfo struct {
	CameraID int64       `json:"camera_id"`
	Zones    int         `json:"zones"`
	Tool     editor.Tool `json:"tool"`
	Saving   int         `json:"saving"`
	Loading  bool        `json:"loading"`
}

// RequestLogInfo reports the ParkTrack request log fill.
type RequestLogInfo struct {
	Entries int `json:"entries"`
}

// handleSystem returns process and session statistics.
//
// GET /system
func (s *Server) handleSystem(w http.ResponseWriter, _ *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	st := s.store.Snapshot()
	info := SystemInfo{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Version:       s.version,
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		Runtime: RuntimeInfo{
			Goroutines:    runtime.NumGoroutine(),
			MemoryAllocMB: float64(mem.Alloc) / 1024 / 1024,
			NumGC:         mem.NumGC,
		},
		WebSocket: WebSocketInfo{ConnectedClients: s.hub.ClientCount()},
		Editor: EditorInfo{
			CameraID: st.CameraID,
			Zones:    len(st.Zones),
			Tool:     st.Tool,
			Saving:   len(st.Saving),
			Loading:  st.Status.Loading,
		},
	}
	if s.requests != nil {
		info.Requests.Entries = s.requests.Len()
	}

	writeJSON(w, http.StatusOK, info)
}
