package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type wheelRequest struct {
	X      *float64 `json:"x" validate:"required"`
	Y      *float64 `json:"y" validate:"required"`
	DeltaY float64  `json:"delta_y"`
}

// handleScene returns the render primitives for the current state.
//
// GET /canvas/scene
func (s *Server) handleScene(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.canvas.Scene())
}

// handlePointer feeds a pointer event in screen pixels to the canvas
// controller and answers with the resulting scene.
//
// POST /canvas/pointer/{down|move|up}
// Body: {"x": 120, "y": 80}
func (s *Server) handlePointer(w http.ResponseWriter, r *http.Request) {
	phase := chi.URLParam(r, "phase")
	switch phase {
	case "down", "move", "up":
	default:
		writeNotFound(w, "unknown pointer phase")
		return
	}

	var req pixelRequest
	if !s.decode(w, r, &req) {
		return
	}

	var err error
	switch phase {
	case "down":
		err = s.canvas.PointerDown(req.point())
	case "move":
		err = s.canvas.PointerMove(req.point())
	case "up":
		err = s.canvas.PointerUp(req.point())
	}
	if err != nil {
		s.writeOpError(w, r, "pointer "+phase, err)
		return
	}
	writeJSON(w, http.StatusOK, s.canvas.Scene())
}

// handleWheel zooms about the pointer.
//
// POST /canvas/wheel
// Body: {"x": 120, "y": 80, "delta_y": -100}
func (s *Server) handleWheel(w http.ResponseWriter, r *http.Request) {
	var req wheelRequest
	if !s.decode(w, r, &req) {
		return
	}
	p := pixelRequest{X: req.X, Y: req.Y}
	if err := s.canvas.Wheel(p.point(), req.DeltaY); err != nil {
		s.writeOpError(w, r, "wheel", err)
		return
	}
	writeJSON(w, http.StatusOK, s.canvas.Scene())
}
