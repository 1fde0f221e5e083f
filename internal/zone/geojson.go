package zone

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature converts a zone with complete coordinates to a GeoJSON polygon
// feature. Zones not yet placed on the map return false.
func Feature(z Zone) (*geojson.Feature, bool) {
	if !z.HasCompleteGeo() {
		return nil, false
	}

	ring := make(orb.Ring, 0, len(z.Points)+1)
	for _, p := range z.Points {
		ring = append(ring, orb.Point{p.Geo.Lon, p.Geo.Lat})
	}
	ring = append(ring, ring[0])

	f := geojson.NewFeature(orb.Polygon{ring})
	f.ID = z.ID.String()
	f.Properties["zone_id"] = z.ID.String()
	f.Properties["camera_id"] = z.CameraID
	f.Properties["zone_type"] = string(z.Type)
	f.Properties["capacity"] = z.Capacity
	f.Properties["pay"] = z.Pay
	f.Properties["lots"] = len(z.Lots)
	if z.Occupied != nil {
		f.Properties["occupied"] = *z.Occupied
	}
	return f, true
}

// FeatureCollection exports every placed zone. The second result counts
// zones skipped for missing coordinates.
func FeatureCollection(zones []Zone) (*geojson.FeatureCollection, int) {
	fc := geojson.NewFeatureCollection()
	skipped := 0
	for _, z := range zones {
		f, ok := Feature(z)
		if !ok {
			skipped++
			continue
		}
		fc.Append(f)
	}
	return fc, skipped
}

// Bound returns the geographic bounding box of the placed zones.
func Bound(zones []Zone) (orb.Bound, bool) {
	var (
		b     orb.Bound
		found bool
	)
	for _, z := range zones {
		for _, p := range z.Points {
			if p.Geo == nil {
				continue
			}
			pt := orb.Point{p.Geo.Lon, p.Geo.Lat}
			if !found {
				b = pt.Bound()
				found = true
				continue
			}
			b = b.Extend(pt)
		}
	}
	return b, found
}
