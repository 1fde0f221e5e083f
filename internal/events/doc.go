// Package events mirrors the editor session onto MQTT.
//
// A Bridge subscribes to an editor store and publishes a compact JSON
// Message for every camera and zone lifecycle event to
// parkzone/editor/{camera}/{event}. Publishing happens on a background
// goroutine so a slow broker never stalls editing; when the queue is full
// the newest message is dropped and counted.
//
// Commands handles parkzone/editor/{camera}/command/reload by reloading
// the zones of the selected camera, so another tool that changed zones
// server-side can ask open editors to refresh.
package events
