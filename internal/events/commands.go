package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/parkzone-core/internal/editor"
	"github.com/nerrad567/parkzone-core/internal/infrastructure/mqtt"
)

// CommandReload asks the editor to reload zones from the server.
const CommandReload = "reload"

const commandTimeout = 30 * time.Second

// Reloader is the part of *editor.Store that commands act on.
type Reloader interface {
	Snapshot() editor.State
	LoadZones(ctx context.Context) error
}

// Commands handles editor commands received over MQTT.
type Commands struct {
	ed     Reloader
	logger Logger
}

// NewCommands creates a command handler for ed.
func NewCommands(ed Reloader) *Commands {
	return &Commands{ed: ed, logger: noopLogger{}}
}

// SetLogger sets the logger.
func (c *Commands) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	c.logger = l
}

// Handle is an mqtt.MessageHandler for mqtt.Topics.AllEditorCommands.
// Commands for a camera other than the selected one are ignored.
func (c *Commands) Handle(topic string, _ []byte) error {
	cameraID, command, ok := mqtt.Topics{}.ParseEditorCommand(topic)
	if !ok {
		return fmt.Errorf("unrecognised command topic %q", topic)
	}
	if current := c.ed.Snapshot().CameraID; current != cameraID {
		c.logger.Debug("ignoring command for another camera", "camera_id", cameraID, "selected", current)
		return nil
	}

	switch command {
	case CommandReload:
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if err := c.ed.LoadZones(ctx); err != nil {
			return fmt.Errorf("reload camera %d: %w", cameraID, err)
		}
		c.logger.Info("zones reloaded on request", "camera_id", cameraID)
		return nil
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}
