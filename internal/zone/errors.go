package zone

import "errors"

var (
	// ErrInvalidID is returned when an ID string cannot be parsed.
	ErrInvalidID = errors.New("zone: invalid id")

	// ErrInvalidZoneType is returned for a zone type outside the known set.
	ErrInvalidZoneType = errors.New("zone: invalid zone type")

	// ErrCapacityTooLow is returned when a zone's capacity is below MinCapacity.
	ErrCapacityTooLow = errors.New("zone: capacity too low")

	// ErrMissingCoordinates is returned when a zone point has no geographic coordinate.
	ErrMissingCoordinates = errors.New("zone: missing coordinates")

	// ErrInvalidCoordinates is returned for latitude/longitude out of range.
	ErrInvalidCoordinates = errors.New("zone: invalid coordinates")

	// ErrInvalidPoint is returned for a non-finite pixel position.
	ErrInvalidPoint = errors.New("zone: invalid point")

	// ErrLotTooSmall is returned when a lot polygon has fewer than MinLotPoints points.
	ErrLotTooSmall = errors.New("zone: lot needs at least 3 points")

	// ErrVertexOutOfRange is returned for a vertex index outside the polygon.
	ErrVertexOutOfRange = errors.New("zone: vertex index out of range")
)
