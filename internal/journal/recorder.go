package journal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nerrad567/parkzone-core/internal/editor"
)

const recordTimeout = 5 * time.Second

// Logger defines the logging interface used by the Recorder.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Source is anything that publishes editor events. *editor.Store is one.
type Source interface {
	Subscribe(fn func(editor.Event)) (cancel func())
}

// Recorder turns editor events into journal entries.
type Recorder struct {
	repo   Repository
	logger Logger
}

// NewRecorder creates a Recorder writing to repo.
func NewRecorder(repo Repository) *Recorder {
	return &Recorder{repo: repo, logger: noopLogger{}}
}

// SetLogger sets the logger for the recorder. Call before Attach.
func (r *Recorder) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	r.logger = l
}

// Attach subscribes the recorder to src.
func (r *Recorder) Attach(src Source) (cancel func()) {
	return src.Subscribe(r.Handle)
}

// Handle records ev if it is a server-side zone change. Events about
// placeholder zones never reached the server and are skipped. Write
// failures are logged, never returned to the editor.
func (r *Recorder) Handle(ev editor.Event) {
	e, ok := entryFor(ev)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if err := r.repo.Record(ctx, &e); err != nil {
		r.logger.Warn("journal write failed", "zone_id", e.ZoneID.String(), "action", string(e.Action), "error", err)
		return
	}
	r.logger.Debug("journal entry recorded", "id", e.ID, "zone_id", e.ZoneID.String(), "action", string(e.Action))
}

func entryFor(ev editor.Event) (Entry, bool) {
	var action Action
	switch ev.Type {
	case editor.EventZoneCreated:
		action = ActionCreate
	case editor.EventZoneUpdated:
		action = ActionUpdate
	case editor.EventZoneDeleted:
		action = ActionDelete
	default:
		return Entry{}, false
	}
	if _, remote := ev.ZoneID.Remote(); !remote {
		return Entry{}, false
	}

	e := Entry{
		CameraID:   ev.CameraID,
		ZoneID:     ev.ZoneID,
		PreviousID: ev.PreviousID,
		Action:     action,
		CreatedAt:  ev.At.UTC(),
	}
	if ev.Zone != nil {
		if b, err := json.Marshal(ev.Zone); err == nil {
			e.Payload = b
		}
	}
	return e, true
}
