package mqtt

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// TopicPrefix is the root of every parkzone topic.
	TopicPrefix = "parkzone"

	TopicPrefixEditor = TopicPrefix + "/editor"
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics builds parkzone topic names.
type Topics struct{}

// EditorEvent is where an editor event about a camera is published.
//
// Example: parkzone/editor/7/zone_updated
func (Topics) EditorEvent(cameraID int64, event string) string {
	return fmt.Sprintf("%s/%d/%s", TopicPrefixEditor, cameraID, event)
}

// EditorCommand is where a command for a camera's editor is received.
//
// Example: parkzone/editor/7/command/reload
func (Topics) EditorCommand(cameraID int64, command string) string {
	return fmt.Sprintf("%s/%d/command/%s", TopicPrefixEditor, cameraID, command)
}

// AllEditorCommands matches commands for every camera.
func (Topics) AllEditorCommands() string {
	return TopicPrefixEditor + "/+/command/+"
}

// AllEditorEvents matches every editor event.
func (Topics) AllEditorEvents() string {
	return TopicPrefixEditor + "/+/+"
}

// SystemStatus carries the retained online/offline status.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// ParseEditorCommand extracts the camera and command from a topic matched
// by AllEditorCommands.
func (Topics) ParseEditorCommand(topic string) (cameraID int64, command string, ok bool) {
	rest, found := strings.CutPrefix(topic, TopicPrefixEditor+"/")
	if !found {
		return 0, "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[1] != "command" || parts[2] == "" {
		return 0, "", false
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	return id, parts[2], true
}
