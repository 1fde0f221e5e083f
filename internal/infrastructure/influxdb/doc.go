// Package influxdb writes parkzone telemetry to InfluxDB 2.x.
//
// Two measurements are written:
//   - parktrack_requests: one point per ParkTrack API call (method, route,
//     status class; duration and failure flag). Client satisfies
//     parktrack.Observer.
//   - zone_occupancy: server-reported occupancy of each zone whenever the
//     editor loads or saves it.
//
// Writes are non-blocking and batched; asynchronous write failures are
// reported through SetOnError.
package influxdb
