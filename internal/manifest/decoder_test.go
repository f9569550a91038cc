package manifest

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

type sampleManifest struct {
	ID       string   `json:"id"`
	Provides []string `json:"provides"`
	Roots    []string `json:"roots"`
}

func TestDecodeBytesFormats(t *testing.T) {
	cases := []struct {
		name   string
		format string
		raw    string
		expect sampleManifest
	}{
		{
			name:   "yaml",
			format: FormatYAML,
			raw:    "id: foo\nprovides:\n  - foo\n  - foo_extras\n",
			expect: sampleManifest{ID: "foo", Provides: []string{"foo", "foo_extras"}},
		},
		{
			name:   "json",
			format: FormatJSON,
			raw:    `{"id":"bar","roots":["classes","resources"]}`,
			expect: sampleManifest{ID: "bar", Roots: []string{"classes", "resources"}},
		},
		{
			name:   "empty yaml",
			format: FormatYAML,
			raw:    "",
			expect: sampleManifest{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewDecoder[sampleManifest]().DecodeBytes(Context{Source: tc.name, Format: tc.format}, []byte(tc.raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(tc.expect, got) {
				t.Fatalf("manifest mismatch:\nwant: %#v\n got: %#v", tc.expect, got)
			}
		})
	}
}

func TestDecodeBytesRejectsUnknownFormat(t *testing.T) {
	_, err := NewDecoder[sampleManifest]().DecodeBytes(Context{Source: "mod.toml", Format: "toml"}, []byte("id = 1"))
	if err == nil || !strings.Contains(err.Error(), `unsupported manifest format "toml"`) {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestDecodeHooksRunInOrder(t *testing.T) {
	var calls []string
	decoder := NewDecoder(
		WithPreHook[sampleManifest](func(ctx Context, payload map[string]any) (map[string]any, error) {
			calls = append(calls, "pre")
			if _, ok := payload["modid"]; ok {
				payload["id"] = payload["modid"]
				delete(payload, "modid")
			}
			return payload, nil
		}),
		WithPostHook[sampleManifest](func(ctx Context, m *sampleManifest) error {
			calls = append(calls, "post")
			if len(m.Provides) == 0 {
				m.Provides = []string{m.ID}
			}
			return nil
		}),
	)

	got, err := decoder.Decode(Context{Source: "mod.yaml"}, map[string]any{"modid": "legacy"})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "legacy" || len(got.Provides) != 1 || got.Provides[0] != "legacy" {
		t.Fatalf("unexpected manifest %#v", got)
	}
	if strings.Join(calls, ",") != "pre,post" {
		t.Fatalf("unexpected hook order %v", calls)
	}
}

func TestDecodePostHookErrorWrapped(t *testing.T) {
	boom := errors.New("id required")
	decoder := NewDecoder(WithPostHook[sampleManifest](func(Context, *sampleManifest) error { return boom }))
	_, err := decoder.Decode(Context{Source: "mods/x/mod.yaml"}, map[string]any{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped hook error, got %v", err)
	}
	if !strings.Contains(err.Error(), `"mods/x/mod.yaml"`) {
		t.Fatalf("expected source in error, got %v", err)
	}
}

func TestDecodeDisallowUnknownFields(t *testing.T) {
	decoder := NewDecoder(WithDisallowUnknownFields[sampleManifest]())
	_, err := decoder.Decode(Context{Source: "strict"}, map[string]any{"id": "x", "extra": true})
	if err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestDecodeDoesNotMutatePayload(t *testing.T) {
	payload := map[string]any{"modid": "x"}
	decoder := NewDecoder(WithPreHook[sampleManifest](func(_ Context, p map[string]any) (map[string]any, error) {
		delete(p, "modid")
		return p, nil
	}))
	if _, err := decoder.Decode(Context{}, payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["modid"] != "x" {
		t.Fatalf("expected caller payload untouched, got %v", payload)
	}
}

func TestFormatFor(t *testing.T) {
	for name, want := range map[string]string{"mod.yaml": FormatYAML, "MOD.YML": FormatYAML, "mod.json": FormatJSON} {
		got, ok := FormatFor(name)
		if !ok || got != want {
			t.Fatalf("FormatFor(%q) = %q, %v", name, got, ok)
		}
	}
	if _, ok := FormatFor("mod.toml"); ok {
		t.Fatalf("expected toml to be unsupported")
	}
}
