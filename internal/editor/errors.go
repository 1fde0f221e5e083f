package editor

import "errors"

var (
	// ErrZoneNotFound is returned when an operation names an unknown zone.
	ErrZoneNotFound = errors.New("editor: zone not found")

	// ErrLotNotFound is returned when an operation names an unknown lot.
	ErrLotNotFound = errors.New("editor: lot not found")

	// ErrNoActiveZone is returned by lot operations without a selected zone.
	ErrNoActiveZone = errors.New("editor: no active zone")

	// ErrNoCamera is returned by camera operations before SelectCamera.
	ErrNoCamera = errors.New("editor: no camera selected")

	// ErrToolUnavailable is returned for a tool change or pointer action
	// the current mode does not allow.
	ErrToolUnavailable = errors.New("editor: tool not available")

	// ErrDraftFull is returned when a point is added to a complete zone draft.
	ErrDraftFull = errors.New("editor: draft already has 4 points")

	// ErrSaveInFlight is returned when a zone is already being saved.
	ErrSaveInFlight = errors.New("editor: save already in progress")

	// ErrInvalidView is returned for a non-invertible view transform.
	ErrInvalidView = errors.New("editor: invalid view")

	// ErrInvalidPoint is returned for a non-finite pointer position.
	ErrInvalidPoint = errors.New("editor: invalid point")
)
