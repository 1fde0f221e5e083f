package zone

import (
	"fmt"
	"math"
)

const (
	// MinCapacity is the smallest capacity a zone may be saved with.
	MinCapacity = 1

	// MinLotPoints is the smallest lot polygon.
	MinLotPoints = 3
)

// ValidateCapacity checks the capacity lower bound.
func ValidateCapacity(c int) error {
	if c < MinCapacity {
		return fmt.Errorf("%w: capacity must be at least %d, got %d", ErrCapacityTooLow, MinCapacity, c)
	}
	return nil
}

// ValidateGeo checks a coordinate is finite and within WGS84 bounds.
func ValidateGeo(g Geo) error {
	if math.IsNaN(g.Lat) || math.IsNaN(g.Lon) || math.IsInf(g.Lat, 0) || math.IsInf(g.Lon, 0) {
		return fmt.Errorf("%w: not a finite number", ErrInvalidCoordinates)
	}
	if g.Lat < -90 || g.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinates, g.Lat)
	}
	if g.Lon < -180 || g.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinates, g.Lon)
	}
	return nil
}

// ValidatePoints checks the pixel positions and any coordinates present.
// With requireGeo every point must also have a coordinate; the error
// names the first offending point, counting from 1.
func ValidatePoints(points []Point, requireGeo bool) error {
	for i, p := range points {
		if !p.Pixel.Finite() {
			return fmt.Errorf("%w: point %d has a non-finite position", ErrInvalidPoint, i+1)
		}
		if p.Geo == nil {
			if requireGeo {
				return fmt.Errorf("%w: point %d is missing coordinates, place the zone on the map first", ErrMissingCoordinates, i+1)
			}
			continue
		}
		if err := ValidateGeo(*p.Geo); err != nil {
			return fmt.Errorf("point %d: %w", i+1, err)
		}
	}
	return nil
}

// ValidateLot checks a lot polygon.
func ValidateLot(points []Point) error {
	if len(points) < MinLotPoints {
		return fmt.Errorf("%w: got %d", ErrLotTooSmall, len(points))
	}
	return ValidatePoints(points, false)
}

// ValidateForSave checks everything the editor enforces before a zone is
// sent to the server.
func ValidateForSave(z Zone, requireGeo bool) error {
	if !z.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidZoneType, z.Type)
	}
	if err := ValidateCapacity(z.Capacity); err != nil {
		return err
	}
	if err := ValidatePoints(z.Points[:], requireGeo); err != nil {
		return err
	}
	for _, l := range z.Lots {
		if err := ValidateLot(l.Points); err != nil {
			return fmt.Errorf("lot %s: %w", l.ID, err)
		}
	}
	return nil
}
