package zone

import (
	"fmt"
	"strconv"
	"strings"
)

const localPrefix = "local:"

// ID identifies a zone or lot. It is either a local placeholder, assigned
// by the editor before the entity exists on the server, or a remote ID
// assigned by the server. The zero ID is neither.
type ID struct {
	local  int64
	remote string
}

// LocalID returns a placeholder ID. Placeholders are negative; the editor
// hands them out from a strictly decreasing counter.
func LocalID(n int64) ID {
	return ID{local: n}
}

// RemoteID returns a server-assigned ID.
func RemoteID(s string) ID {
	return ID{remote: s}
}

// IsZero reports whether id is unset.
func (id ID) IsZero() bool {
	return id.local == 0 && id.remote == ""
}

// IsLocal reports whether id is a placeholder not yet known to the server.
func (id ID) IsLocal() bool {
	return id.local != 0
}

// Remote returns the server ID, if any.
func (id ID) Remote() (string, bool) {
	if id.local != 0 || id.remote == "" {
		return "", false
	}
	return id.remote, true
}

// Local returns the placeholder counter value, if any.
func (id ID) Local() (int64, bool) {
	return id.local, id.local != 0
}

// String renders placeholders as "local:<n>" and remote IDs verbatim.
func (id ID) String() string {
	switch {
	case id.local != 0:
		return localPrefix + strconv.FormatInt(id.local, 10)
	default:
		return id.remote
	}
}

// ParseID parses the String form of an ID.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ID{}, fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if rest, ok := strings.CutPrefix(s, localPrefix); ok {
		n, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || n == 0 {
			return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, s)
		}
		return LocalID(n), nil
	}
	return RemoteID(s), nil
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty input
// yields the zero ID.
func (id *ID) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*id = ID{}
		return nil
	}
	parsed, err := ParseID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
