package geometry

import "math"

// View is the pan/zoom transform between image and screen space:
// screen = image*Scale + Offset.
type View struct {
	Scale   float64 `json:"scale"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
}

// IdentityView maps image pixels one-to-one onto the screen.
var IdentityView = View{Scale: 1}

// Valid reports whether the view can be inverted.
func (v View) Valid() bool {
	return v.Scale > 0 && !math.IsInf(v.Scale, 0) &&
		!math.IsNaN(v.OffsetX) && !math.IsNaN(v.OffsetY)
}

// ScreenToImage converts a screen position to image pixels.
func ScreenToImage(x, y float64, v View) Point {
	return Point{X: (x - v.OffsetX) / v.Scale, Y: (y - v.OffsetY) / v.Scale}
}

// ImageToScreen converts image pixels to a screen position.
func ImageToScreen(x, y float64, v View) Point {
	return Point{X: x*v.Scale + v.OffsetX, Y: y*v.Scale + v.OffsetY}
}

// Pan shifts the view by a screen-space delta.
func (v View) Pan(dx, dy float64) View {
	return View{Scale: v.Scale, OffsetX: v.OffsetX + dx, OffsetY: v.OffsetY + dy}
}

// ZoomAt rescales v to newScale while keeping the image point under the
// screen position pointer fixed.
func ZoomAt(v View, pointer Point, newScale float64) View {
	anchor := ScreenToImage(pointer.X, pointer.Y, v)
	return View{
		Scale:   newScale,
		OffsetX: pointer.X - anchor.X*newScale,
		OffsetY: pointer.Y - anchor.Y*newScale,
	}
}

// WheelFactor returns the zoom multiplier for a wheel delta: zoomOut when
// the wheel moves down (deltaY > 0), zoomIn otherwise.
func WheelFactor(deltaY, zoomIn, zoomOut float64) float64 {
	if deltaY > 0 {
		return zoomOut
	}
	return zoomIn
}

// ClampScale bounds s to [minScale, maxScale].
func ClampScale(s, minScale, maxScale float64) float64 {
	return math.Max(minScale, math.Min(maxScale, s))
}
