// Package zone defines the parking domain model shared by the editor,
// the ParkTrack client and the export paths.
//
// A Zone is a quadrilateral over a camera image. Each of its four points
// carries the pixel position and, once placed on the map, a geographic
// coordinate; both live in a single Point so the two views of a vertex
// cannot drift apart. A Lot is an individual parking space polygon inside
// a zone.
//
// Identity is tagged: zones and lots created in the editor carry a local
// placeholder ID until the server assigns a remote one. The two kinds can
// never be confused, which is what decides create-versus-update on save.
package zone
