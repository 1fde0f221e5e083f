package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nerrad567/parkzone-core/internal/canvas"
	"github.com/nerrad567/parkzone-core/internal/editor"
	"github.com/nerrad567/parkzone-core/internal/geoplace"
	"github.com/nerrad567/parkzone-core/internal/parktrack"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotFound    = "not_found"
	ErrCodeConflict    = "conflict"
	ErrCodeInternal    = "internal_error"
	ErrCodeValidation  = "validation_error"
	ErrCodeUpstream    = "upstream_error"
	ErrCodeTimeout     = "upstream_timeout"
	ErrCodeUnavailable = "unavailable"
)

var (
	errNoPlacement = errors.New("api: no placement in progress")
	errNoImage     = errors.New("api: no image loaded")
)

// errorClass maps a sentinel to an HTTP status.
type errorClass struct {
	err    error
	status int
	code   string
}

// errorClasses is checked in order; the first match wins.
var errorClasses = []errorClass{
	{editor.ErrZoneNotFound, http.StatusNotFound, ErrCodeNotFound},
	{editor.ErrLotNotFound, http.StatusNotFound, ErrCodeNotFound},
	{geoplace.ErrZoneNotFound, http.StatusNotFound, ErrCodeNotFound},
	{errNoImage, http.StatusNotFound, ErrCodeNotFound},
	{parktrack.ErrNotFound, http.StatusNotFound, ErrCodeNotFound},

	{editor.ErrSaveInFlight, http.StatusConflict, ErrCodeConflict},
	{editor.ErrNoCamera, http.StatusConflict, ErrCodeConflict},
	{editor.ErrNoActiveZone, http.StatusConflict, ErrCodeConflict},
	{editor.ErrToolUnavailable, http.StatusConflict, ErrCodeConflict},
	{editor.ErrDraftFull, http.StatusConflict, ErrCodeConflict},
	{canvas.ErrNotAllowed, http.StatusConflict, ErrCodeConflict},
	{geoplace.ErrPlacementComplete, http.StatusConflict, ErrCodeConflict},
	{geoplace.ErrPlacementIncomplete, http.StatusConflict, ErrCodeConflict},
	{geoplace.ErrNoPosition, http.StatusConflict, ErrCodeConflict},
	{errNoPlacement, http.StatusConflict, ErrCodeConflict},

	{editor.ErrInvalidView, http.StatusBadRequest, ErrCodeValidation},
	{editor.ErrInvalidPoint, http.StatusBadRequest, ErrCodeValidation},
	{canvas.ErrInvalidPointer, http.StatusBadRequest, ErrCodeValidation},
	{geoplace.ErrPointOutOfRange, http.StatusBadRequest, ErrCodeValidation},
	{zone.ErrInvalidID, http.StatusBadRequest, ErrCodeValidation},
	{zone.ErrInvalidZoneType, http.StatusBadRequest, ErrCodeValidation},
	{zone.ErrCapacityTooLow, http.StatusBadRequest, ErrCodeValidation},
	{zone.ErrMissingCoordinates, http.StatusBadRequest, ErrCodeValidation},
	{zone.ErrInvalidCoordinates, http.StatusBadRequest, ErrCodeValidation},
	{zone.ErrInvalidPoint, http.StatusBadRequest, ErrCodeValidation},
	{zone.ErrLotTooSmall, http.StatusBadRequest, ErrCodeValidation},
	{zone.ErrVertexOutOfRange, http.StatusBadRequest, ErrCodeValidation},

	{context.DeadlineExceeded, http.StatusGatewayTimeout, ErrCodeTimeout},
	{parktrack.ErrUnauthorized, http.StatusBadGateway, ErrCodeUpstream},
	{parktrack.ErrRequestFailed, http.StatusBadGateway, ErrCodeUpstream},
	{parktrack.ErrMalformedResponse, http.StatusBadGateway, ErrCodeUpstream},
}

// classify returns the status and code for err.
func classify(err error) (int, string) {
	for _, c := range errorClasses {
		if errors.Is(err, c.err) {
			return c.status, c.code
		}
	}
	var apiErr *parktrack.APIError
	if errors.As(err, &apiErr) {
		return http.StatusBadGateway, ErrCodeUpstream
	}
	return http.StatusInternalServerError, ErrCodeInternal
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeUnavailable writes a 503 error response for a disabled component.
func writeUnavailable(w http.ResponseWriter, message string) {
	writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeOpError writes the response for a failed editor, placement, or
// remote operation. Unclassified errors are logged and hidden.
func (s *Server) writeOpError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(op+" failed", "error", err, "request_id", r.Context().Value(ctxKeyRequestID))
		writeInternalError(w, op+" failed")
		return
	}
	msg := err.Error()
	if code == ErrCodeUpstream {
		msg = parktrack.Message(err)
	}
	writeError(w, status, code, msg)
}

// writeValidationError reports every failed field of a request body.
func writeValidationError(w http.ResponseWriter, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
		return
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fieldName(fe), validationMessage(fe)))
	}
	writeError(w, http.StatusBadRequest, ErrCodeValidation, strings.Join(msgs, "; "))
}

// fieldName is the namespace of fe without the request type prefix.
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "min":
		return "must have at least " + fe.Param() + " items"
	case "len":
		return "must have exactly " + fe.Param() + " items"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "failed validation: " + fe.Tag()
	}
}
