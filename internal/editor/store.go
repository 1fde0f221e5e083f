package editor

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/nerrad567/parkzone-core/internal/geometry"
	"github.com/nerrad567/parkzone-core/internal/parktrack"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

// ZoneService is the remote zone collaborator.
type ZoneService interface {
	ListZones(ctx context.Context, cameraID int64) ([]zone.Zone, error)
	CreateZone(ctx context.Context, z zone.Zone) (parktrack.CreatedZone, error)
	UpdateZone(ctx context.Context, id string, z zone.Zone) (zone.Zone, error)
	DeleteZone(ctx context.Context, id string) error
}

// CameraService is the remote camera collaborator.
type CameraService interface {
	GetCamera(ctx context.Context, id int64) (zone.Camera, error)
	Snapshot(ctx context.Context, cameraID int64) (zone.Snapshot, error)
}

// Service is everything the Store needs from the remote API.
// *parktrack.Client satisfies it.
type Service interface {
	ZoneService
	CameraService
}

// Logger defines the logging interface used by the Store.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Options tunes editing behaviour.
type Options struct {
	// RequireGeo blocks saves until every zone point has a coordinate.
	RequireGeo bool

	// DefaultType is the zone type of newly drawn zones.
	DefaultType zone.Type

	// Placeholder is shown when a camera snapshot cannot be fetched.
	Placeholder *zone.Snapshot
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		RequireGeo:  true,
		DefaultType: zone.TypeStandard,
	}
}

type subscriber struct {
	id int
	fn func(Event)
}

// Store is the editing session. Create one with New.
type Store struct {
	svc    Service
	opts   Options
	logger Logger
	now    func() time.Time

	mu        sync.Mutex
	st        State
	pending   int
	nextLocal int64
	saving    map[zone.ID]struct{}
	image     []byte

	subMu   sync.Mutex
	subs    []subscriber
	nextSub int
}

// New creates a Store in select mode with an identity view.
func New(svc Service, opts Options) *Store {
	if !opts.DefaultType.Valid() {
		opts.DefaultType = zone.TypeStandard
	}
	return &Store{
		svc:    svc,
		opts:   opts,
		logger: noopLogger{},
		now:    time.Now,
		st: State{
			Tool: ToolSelect,
			View: geometry.IdentityView,
		},
		saving: make(map[zone.ID]struct{}),
	}
}

// SetLogger sets the logger for the store.
func (s *Store) SetLogger(logger Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if logger == nil {
		logger = noopLogger{}
	}
	s.logger = logger
}

// Options returns the store's options.
func (s *Store) Options() Options {
	return s.opts
}

// Subscribe registers fn to receive every Event. Subscribers run on the
// goroutine that caused the change, after the store lock is released.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Zone returns a copy of the zone with the given ID.
func (s *Store) Zone(id zone.ID) (zone.Zone, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return zone.Zone{}, false
	}
	return s.st.Zones[i].Clone(), true
}

// ActiveZone returns a copy of the selected zone.
func (s *Store) ActiveZone() (zone.Zone, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(s.st.ActiveZone)
	if i < 0 {
		return zone.Zone{}, false
	}
	return s.st.Zones[i].Clone(), true
}

// Tool returns the current tool mode.
func (s *Store) Tool() Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Tool
}

// View returns the current view transform.
func (s *Store) View() geometry.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.View
}

func (s *Store) snapshotLocked() State {
	c := cloneState(s.st)
	c.Status.Loading = s.pending > 0
	c.Saving = c.Saving[:0]
	for id := range s.saving {
		c.Saving = append(c.Saving, id)
	}
	sort.Slice(c.Saving, func(i, j int) bool { return c.Saving[i].String() < c.Saving[j].String() })
	return c
}

// eventLocked builds an event carrying the current state.
func (s *Store) eventLocked(t EventType, id zone.ID) Event {
	ev := Event{
		Type:     t,
		CameraID: s.st.CameraID,
		ZoneID:   id,
		State:    s.snapshotLocked(),
		At:       s.now(),
	}
	if i := s.indexLocked(id); i >= 0 {
		z := s.st.Zones[i].Clone()
		ev.Zone = &z
	}
	return ev
}

// publish delivers ev to every subscriber. Must be called without s.mu held.
func (s *Store) publish(ev Event) {
	s.subMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}

// commit builds the event for a finished mutation, releases s.mu and
// publishes the event. Must be called with s.mu held.
func (s *Store) commit(t EventType, id zone.ID) {
	ev := s.eventLocked(t, id)
	s.mu.Unlock()
	s.publish(ev)
}

func (s *Store) indexLocked(id zone.ID) int {
	if id.IsZero() {
		return -1
	}
	for i := range s.st.Zones {
		if s.st.Zones[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) newLocalIDLocked() zone.ID {
	s.nextLocal--
	return zone.LocalID(s.nextLocal)
}

// beginRequestLocked marks a network call as started.
func (s *Store) beginRequestLocked() {
	s.pending++
	s.st.Status.Error = ""
	s.st.Status.Info = ""
}

// fail records err as the status error. Must be called with s.mu held;
// it unlocks and publishes an EventError.
func (s *Store) fail(err error, id zone.ID) error {
	s.st.Status.Error = statusMessage(err)
	s.logger.Warn("editor operation failed", "zone_id", id.String(), "error", err)
	s.commit(EventError, id)
	return err
}

// statusMessage renders err for the status field.
func statusMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *parktrack.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// ClearStatus resets the error and info fields.
func (s *Store) ClearStatus() {
	s.mu.Lock()
	s.st.Status.Error = ""
	s.st.Status.Info = ""
	s.commit(EventStatus, zone.ID{})
}
