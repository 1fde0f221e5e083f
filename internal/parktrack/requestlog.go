package parktrack

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// DefaultRequestLogSize is the number of entries kept when no size is configured.
const DefaultRequestLogSize = 200

// Entry is one side of an API exchange. A call produces a request entry
// and, once answered, a response entry whose ID is the request ID with a
// "-resp" suffix.
type Entry struct {
	ID       string            `json:"id"`
	Time     time.Time         `json:"ts"`
	Method   string            `json:"method"`
	URL      string            `json:"url"`
	Headers  map[string]string `json:"headers,omitempty"`
	Body     json.RawMessage   `json:"body,omitempty"`
	Status   int               `json:"status,omitempty"`
	Response json.RawMessage   `json:"response,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// RequestLog is a fixed-size, newest-first log of API exchanges.
//
// Thread Safety: all methods are safe for concurrent use.
type RequestLog struct {
	mu      sync.Mutex
	size    int
	entries []Entry
}

// NewRequestLog creates a log holding at most size entries. A size of
// zero or less disables recording.
func NewRequestLog(size int) *RequestLog {
	if size < 0 {
		size = 0
	}
	return &RequestLog{size: size}
}

// Add prepends e, dropping the oldest entry when full.
func (l *RequestLog) Add(e Entry) {
	if l == nil || l.size == 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) < l.size {
		l.entries = append(l.entries, Entry{})
	}
	copy(l.entries[1:], l.entries[:len(l.entries)-1])
	l.entries[0] = e
}

// Entries returns a copy of the log, newest first.
func (l *RequestLog) Entries() []Entry {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries held.
func (l *RequestLog) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear drops every entry.
func (l *RequestLog) Clear() {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// loggedHeaders flattens h for the log with Authorization masked.
func loggedHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k := range h {
		v := h.Get(k)
		if http.CanonicalHeaderKey(k) == "Authorization" {
			v = MaskBearer(v)
		}
		out[k] = v
	}
	return out
}

// loggedBody keeps JSON bodies as-is and wraps anything else as a JSON string.
func loggedBody(b []byte) json.RawMessage {
	if len(b) == 0 {
		return nil
	}
	if json.Valid(b) {
		return json.RawMessage(b)
	}
	quoted, err := json.Marshal(string(b))
	if err != nil {
		return nil
	}
	return quoted
}
