package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/parkzone-core/internal/zone"
)

// healthCheckTimeout bounds each component check in /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}

	if s.ui != nil {
		r.Get("/editor", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/editor/", http.StatusMovedPermanently)
		})
		r.Handle("/editor/*", http.StripPrefix("/editor", s.ui))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Frames can be far larger than any JSON body.
		r.With(bodySizeLimit(maxImageBodySize)).Put("/camera/image", s.handlePutImage)

		r.Group(func(r chi.Router) {
			r.Use(bodySizeLimit(maxRequestBodySize))

			r.Get("/health", s.handleHealth)
			r.Get("/system", s.handleSystem)

			// Session state
			r.Route("/state", func(r chi.Router) {
				r.Get("/", s.handleGetState)
				r.Delete("/status", s.handleClearStatus)
				r.Put("/tool", s.handleSetTool)
				r.Put("/view", s.handleSetView)
				r.Delete("/selection", s.handleClearSelection)
			})

			// Cameras
			r.Route("/cameras", func(r chi.Router) {
				r.Get("/", s.handleListCameras)
				r.Get("/zone-counts", s.handleZoneCounts)
				r.Post("/{cameraID}/select", s.handleSelectCamera)
			})
			r.Post("/camera/reload", s.handleReloadCamera)
			r.Post("/camera/snapshot", s.handleLoadSnapshot)
			r.Get("/camera/image", s.handleGetImage)

			// Zones of the selected camera
			r.Route("/zones", func(r chi.Router) {
				r.Get("/", s.handleListZones)
				r.Post("/", s.handleAddZone)
				r.Post("/load", s.handleLoadZones)
				r.Get("/export", s.handleExportZones)

				r.Route("/{zoneID}", func(r chi.Router) {
					r.Get("/", s.handleGetZone)
					r.Patch("/", s.handleUpdateZone)
					r.Delete("/", s.handleDeleteZone)
					r.Post("/save", s.handleSaveZone)
					r.Post("/normalize", s.handleNormalizeZone)
					r.Post("/select", s.handleSelectZone)
					r.Put("/vertices/{index}", s.handleMoveZoneVertex)
					r.Put("/geo", s.handleSetZoneGeo)
					r.Delete("/geo", s.handleClearZoneGeo)
					r.Put("/geo/{index}", s.handleSetZoneVertexGeo)

					r.Route("/lots", func(r chi.Router) {
						r.Post("/", s.handleAddLot)
						r.Patch("/{lotID}", s.handleUpdateLot)
						r.Delete("/{lotID}", s.handleRemoveLot)
						r.Post("/{lotID}/select", s.handleSelectLot)
						r.Put("/{lotID}/vertices/{index}", s.handleMoveLotVertex)
					})
				})
			})

			// Drafts
			r.Route("/draft", func(r chi.Router) {
				r.Post("/zone/points", s.handleDraftZonePoint)
				r.Delete("/zone", s.handleDraftZoneClear)
				r.Post("/lot/points", s.handleDraftLotPoint)
				r.Post("/lot/complete", s.handleDraftLotComplete)
				r.Delete("/lot", s.handleDraftLotClear)
			})

			// Canvas pointer input
			r.Route("/canvas", func(r chi.Router) {
				r.Get("/scene", s.handleScene)
				r.Post("/pointer/{phase}", s.handlePointer)
				r.Post("/wheel", s.handleWheel)
			})

			// Map placement
			r.Route("/placement", func(r chi.Router) {
				r.Route("/zone", func(r chi.Router) {
					r.Post("/", s.handleStartZonePlacement)
					r.Get("/", s.handleGetZonePlacement)
					r.Delete("/", s.handleCancelZonePlacement)
					r.Post("/points", s.handleZonePlacementClick)
					r.Put("/points/{index}", s.handleZonePlacementDrag)
					r.Post("/reset", s.handleZonePlacementReset)
					r.Post("/save", s.handleZonePlacementSave)
				})
				r.Route("/camera", func(r chi.Router) {
					r.Post("/", s.handleStartCameraPlacement)
					r.Get("/", s.handleGetCameraPlacement)
					r.Delete("/", s.handleCancelCameraPlacement)
					r.Put("/position", s.handleCameraPlacementClick)
					r.Post("/save", s.handleCameraPlacementSave)
				})
			})

			// Logs
			r.Get("/requests", s.handleListRequests)
			r.Delete("/requests", s.handleClearRequests)
			r.Get("/journal", s.handleListJournal)

			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth reports the server and each configured component.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	checks := make(map[string]string, len(s.checks))
	for name, c := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := c.HealthCheck(ctx)
		cancel()
		if err != nil {
			checks[name] = err.Error()
			status = "degraded"
			continue
		}
		checks[name] = "ok"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"status":  status,
		"version": s.version,
		"checks":  checks,
	})
}

// decode reads a JSON body into v and validates it. It writes the error
// response and returns false on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "request body too large")
			return false
		}
		if errors.Is(err, io.EOF) {
			writeBadRequest(w, "request body is required")
			return false
		}
		writeBadRequest(w, "invalid JSON body")
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeValidationError(w, err)
		return false
	}
	return true
}

// zoneIDParam parses the {zoneID} path segment.
func zoneIDParam(r *http.Request, name string) (zone.ID, bool) {
	id, err := zone.ParseID(chi.URLParam(r, name))
	return id, err == nil
}

// indexParam parses a non-negative {index} path segment.
func indexParam(r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	return i, err == nil && i >= 0
}

// int64Param parses a positive integer path segment.
func int64Param(r *http.Request, name string) (int64, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return n, err == nil && n > 0
}
