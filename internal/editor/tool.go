package editor

import "fmt"

// Tool is the active interaction mode.
type Tool int

const (
	ToolSelect Tool = iota
	ToolDrawZone
	ToolEditZone
	ToolDrawLot
	ToolEditLot
)

var toolNames = [...]string{
	ToolSelect:   "select",
	ToolDrawZone: "drawZone",
	ToolEditZone: "editZone",
	ToolDrawLot:  "drawLot",
	ToolEditLot:  "editLot",
}

// String returns the mode name.
func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return fmt.Sprintf("Tool(%d)", int(t))
	}
	return toolNames[t]
}

// Valid reports whether t is a known mode.
func (t Tool) Valid() bool {
	return t >= ToolSelect && t <= ToolEditLot
}

// ParseTool converts a mode name to a Tool.
func ParseTool(s string) (Tool, error) {
	for i, name := range toolNames {
		if name == s {
			return Tool(i), nil
		}
	}
	return ToolSelect, fmt.Errorf("%w: unknown tool %q", ErrToolUnavailable, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tool) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("editor: invalid tool %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tool) UnmarshalText(b []byte) error {
	parsed, err := ParseTool(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// requirement is what the selection must hold before a tool can be entered.
type requirement int

const (
	needsNothing requirement = iota
	needsZone
	needsLot
)

func (t Tool) requirement() requirement {
	switch t {
	case ToolSelect, ToolDrawZone:
		return needsNothing
	case ToolEditZone, ToolDrawLot:
		return needsZone
	case ToolEditLot:
		return needsLot
	}
	return needsNothing
}
