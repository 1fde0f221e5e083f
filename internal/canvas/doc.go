// Package canvas turns pointer input on the camera image into editor
// operations.
//
// Events arrive in screen coordinates and are mapped to image pixels with
// the store's current view. What a gesture does depends on the tool:
//
//	select    drag pans, click selects, wheel zooms about the pointer
//	drawZone  click adds a draft point
//	drawLot   click adds a draft point; a click near the first point closes the lot
//	editZone  drag moves a vertex of the active zone
//	editLot   drag moves a vertex of the active lot
//
// Only select mode moves the view, so a vertex drag never pans. Vertex
// moves go straight to the store without re-normalizing the winding.
package canvas
