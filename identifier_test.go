package optid

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestIdentifierString(t *testing.T) {
	id := NewIdentifier[int]("foo", "video.renderDistance")
	if id.String() != "foo:video.renderDistance" {
		t.Fatalf("unexpected string %q", id.String())
	}
	if id.IsZero() || !(Identifier[int]{}).IsZero() {
		t.Fatalf("unexpected IsZero result")
	}
	if untyped := id.Untyped(); untyped.Owner != "foo" || untyped.Path != id.Path {
		t.Fatalf("unexpected untyped %+v", untyped)
	}
}

func TestParseIdentifier(t *testing.T) {
	id, err := ParseIdentifier[bool]("foo:a:b")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.Owner != "foo" || id.Path != "a:b" {
		t.Fatalf("expected split at first separator, got %+v", id)
	}

	for _, input := range []string{"", "foo", ":path", "foo:", "  :x"} {
		if _, err := ParseIdentifier[bool](input); !errors.Is(err, ErrInvalidIdentifier) {
			t.Fatalf("%q: expected invalid identifier, got %v", input, err)
		}
	}
}

func TestIdentifierTextEncoding(t *testing.T) {
	type payload struct {
		ID Identifier[int] `json:"id"`
	}
	raw, err := json.Marshal(payload{ID: NewIdentifier[int]("foo", "fov")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"id":"foo:fov"}` {
		t.Fatalf("unexpected json %s", raw)
	}
	var decoded payload
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.ID.String() != "foo:fov" {
		t.Fatalf("unexpected decoded id %+v", decoded.ID)
	}

	if _, err := json.Marshal(payload{}); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("expected zero identifier to fail encoding, got %v", err)
	}
}
