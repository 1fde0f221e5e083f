package events

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/nerrad567/parkzone-core/internal/editor"
	"github.com/nerrad567/parkzone-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/parkzone-core/internal/zone"
)

const queueSize = 256

// Publisher sends one MQTT message. *mqtt.Client satisfies it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Logger defines the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Message is the payload published for an editor event.
type Message struct {
	Type       editor.EventType `json:"type"`
	CameraID   int64            `json:"camera_id"`
	ZoneID     zone.ID          `json:"zone_id,omitzero"`
	PreviousID zone.ID          `json:"previous_id,omitzero"`
	Zone       *zone.Zone       `json:"zone,omitempty"`
	ZoneCount  *int             `json:"zone_count,omitempty"`
	Error      string           `json:"error,omitempty"`
	At         time.Time        `json:"at"`
}

type outgoing struct {
	topic   string
	payload []byte
}

// Bridge publishes editor events.
type Bridge struct {
	pub    Publisher
	qos    byte
	logger Logger
	queue  chan outgoing

	dropped   atomic.Int64
	published atomic.Int64
}

// NewBridge creates a Bridge publishing with the given QoS.
func NewBridge(pub Publisher, qos byte) *Bridge {
	return &Bridge{
		pub:    pub,
		qos:    qos,
		logger: noopLogger{},
		queue:  make(chan outgoing, queueSize),
	}
}

// SetLogger sets the logger. Call before Run.
func (b *Bridge) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	b.logger = l
}

// Source publishes editor events. *editor.Store is one.
type Source interface {
	Subscribe(fn func(editor.Event)) (cancel func())
}

// Attach subscribes the bridge to src.
func (b *Bridge) Attach(src Source) (cancel func()) {
	return src.Subscribe(b.Handle)
}

// Handle queues ev for publishing if it is worth mirroring. It never
// blocks.
func (b *Bridge) Handle(ev editor.Event) {
	msg, ok := messageFor(ev)
	if !ok {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		b.logger.Warn("encoding editor event failed", "type", string(ev.Type), "error", err)
		return
	}

	select {
	case b.queue <- outgoing{topic: mqtt.Topics{}.EditorEvent(ev.CameraID, string(ev.Type)), payload: payload}:
	default:
		b.dropped.Add(1)
		b.logger.Warn("mqtt event queue full, dropping", "type", string(ev.Type), "camera_id", ev.CameraID)
	}
}

// Run publishes queued messages until ctx is cancelled, then drains what
// is already queued.
func (b *Bridge) Run(ctx context.Context) {
	for {
		select {
		case out := <-b.queue:
			b.send(out)
		case <-ctx.Done():
			for {
				select {
				case out := <-b.queue:
					b.send(out)
				default:
					return
				}
			}
		}
	}
}

func (b *Bridge) send(out outgoing) {
	if err := b.pub.Publish(out.topic, out.payload, b.qos, false); err != nil {
		b.logger.Warn("publishing editor event failed", "topic", out.topic, "error", err)
		return
	}
	b.published.Add(1)
	b.logger.Debug("editor event published", "topic", out.topic)
}

// Stats returns how many messages were published and dropped.
func (b *Bridge) Stats() (published, dropped int64) {
	return b.published.Load(), b.dropped.Load()
}

func messageFor(ev editor.Event) (Message, bool) {
	if ev.CameraID == 0 {
		return Message{}, false
	}
	msg := Message{
		Type:       ev.Type,
		CameraID:   ev.CameraID,
		ZoneID:     ev.ZoneID,
		PreviousID: ev.PreviousID,
		At:         ev.At.UTC(),
	}

	switch ev.Type {
	case editor.EventZoneCreated, editor.EventZoneUpdated, editor.EventZoneDeleted:
		if _, remote := ev.ZoneID.Remote(); !remote {
			return Message{}, false
		}
		msg.Zone = ev.Zone
	case editor.EventZonesLoaded:
		n := len(ev.State.Zones)
		msg.ZoneCount = &n
	case editor.EventCameraSelected, editor.EventCameraLoaded:
	case editor.EventError:
		msg.Error = ev.State.Status.Error
	default:
		return Message{}, false
	}
	return msg, true
}
