// Package geometry holds the pure planar math behind zone editing.
//
// Coordinates are image pixels with Y growing downward. Nothing in this
// package keeps state; every function is safe for concurrent use.
//
// Quadrilaterals are normalised to a single winding (negative signed area)
// before they are persisted, so the remote service always receives the
// same vertex order for the same shape.
package geometry
