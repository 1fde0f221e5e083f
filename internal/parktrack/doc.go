// Package parktrack is the HTTP client for the ParkTrack zone and camera API.
//
// All calls are JSON over HTTP with an optional bearer token. Non-2xx
// responses become *APIError, whose message prefers the server's
// error_description, then error, then message, and falls back to
// "HTTP <status>".
//
// Every request and response is recorded in a bounded RequestLog (newest
// first, Authorization masked) so an operator can inspect what the editor
// sent. An Observer hook reports per-call timings for metrics.
//
// # Thread Safety
//
// Client and RequestLog are safe for concurrent use.
package parktrack
