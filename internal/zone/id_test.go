package zone

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestID_Kinds(t *testing.T) {
	local := LocalID(-3)
	if !local.IsLocal() {
		t.Error("LocalID(-3).IsLocal() = false")
	}
	if _, ok := local.Remote(); ok {
		t.Error("local ID reported a remote value")
	}

	remote := RemoteID("42")
	if remote.IsLocal() {
		t.Error("RemoteID(42).IsLocal() = true")
	}
	if got, ok := remote.Remote(); !ok || got != "42" {
		t.Errorf("Remote() = %q, %v, want 42, true", got, ok)
	}

	if local == remote {
		t.Error("local and remote IDs compare equal")
	}
	if !(ID{}).IsZero() {
		t.Error("zero ID not reported zero")
	}
}

func TestParseID(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{in: "local:-1", want: LocalID(-1)},
		{in: "42", want: RemoteID("42")},
		{in: "zone-abc", want: RemoteID("zone-abc")},
		{in: "", wantErr: true},
		{in: "local:x", wantErr: true},
		{in: "local:0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidID) {
					t.Errorf("error %v does not wrap ErrInvalidID", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ParseID(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
		})
	}
}

func TestID_JSON(t *testing.T) {
	type holder struct {
		ID ID `json:"id"`
	}
	data, err := json.Marshal(holder{ID: LocalID(-7)})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"id":"local:-7"}` {
		t.Errorf("Marshal = %s", data)
	}

	var h holder
	if err := json.Unmarshal([]byte(`{"id":"15"}`), &h); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if h.ID != RemoteID("15") {
		t.Errorf("Unmarshal ID = %v, want remote 15", h.ID)
	}
}
