// Package geoplace assigns map coordinates to zones and cameras.
//
// A ZonePlacer collects four map clicks and writes them, by index, onto
// the four pixel points of an existing zone. Coordinates reach the editor
// only when all four are known, so the shared zone never holds a partial
// placement. A zone whose four coordinates are all identical counts as
// unplaced: that state comes from a default fill and must not block
// re-placing the zone.
//
// A CameraPlacer sets a camera's position with a single click.
package geoplace
