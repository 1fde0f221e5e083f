// Package editor owns the zone editing session for one camera.
//
// A Store holds every piece of shared editing state: the zone and lot
// collection, the active selection, the tool mode, the zone and lot
// drafts, the view transform and the status fields (loading, last error,
// last info). Other components never mutate that state directly; they
// call Store operations and observe changes through Subscribe.
//
// Network operations (load, save, delete, snapshot) go through a Service,
// normally *parktrack.Client. They report failure both as a returned error
// and in the Status of the next published Event, and every failure leaves
// the store in its previous valid state.
//
// # Tool modes
//
//	select   -> drawZone              BeginDrawZone
//	drawZone -> select                4th point, DraftClear
//	select   <-> editZone             BeginEditZone / FinishEditing (needs active zone)
//	select   -> drawLot -> editLot    BeginDrawLot, LotDraftComplete (needs active zone)
//	editLot  -> select                FinishEditing
//
// # Thread Safety
//
// All Store methods are safe for concurrent use. The internal lock is
// never held across a Service call or while subscribers run, so
// concurrent responses resolve last-response-wins. At most one save per
// zone may be in flight; a second SaveZone returns ErrSaveInFlight.
package editor
