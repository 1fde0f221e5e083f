package geoplace

import "errors"

var (
	// ErrZoneNotFound is returned when the placer's zone no longer exists.
	ErrZoneNotFound = errors.New("geoplace: zone not found")

	// ErrPlacementComplete is returned by Click once four points are set.
	ErrPlacementComplete = errors.New("geoplace: all four points already placed")

	// ErrPlacementIncomplete is returned by Save before four points are set.
	ErrPlacementIncomplete = errors.New("geoplace: fewer than four points placed")

	// ErrPointOutOfRange is returned by Drag for an unset point.
	ErrPointOutOfRange = errors.New("geoplace: point index out of range")

	// ErrNoPosition is returned by CameraPlacer.Save before a click.
	ErrNoPosition = errors.New("geoplace: camera position not set")
)
