// Package api provides the HTTP REST API and WebSocket server for the zone editor.
//
// It exposes the editing session held by an editor.Store to a browser UI:
// camera selection, zone and lot editing, canvas pointer input, map
// placement, GeoJSON export, and the ParkTrack request log. Every store
// event is pushed to WebSocket clients subscribed to its type.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api
