// Package journal keeps a local history of the zones saved to and deleted
// from ParkTrack.
//
// A Recorder subscribes to an editor store and writes one Entry per
// created, updated or deleted server zone into the zone_journal table.
// Entries carry the zone as it was after the change (or, for deletes,
// as it was before), so a zone removed by mistake can be recreated from
// its last payload.
package journal
