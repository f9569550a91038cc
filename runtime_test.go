package optid_test

import (
	"errors"
	"path/filepath"
	"runtime"
	"testing"

	optid "github.com/goliatone/go-optid"
)

// moduleRoot is the directory holding go.mod, which the runtime loader
// reports as the location of this test package.
func moduleRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok || !filepath.IsAbs(file) {
		t.Skip("source paths unavailable (built with -trimpath?)")
	}
	return filepath.Dir(file)
}

func registerOption(g *optid.Generator, path string) (optid.Identifier[int], bool) {
	return optid.Generate[int](g, path)
}

func TestGenerateAttributesRuntimeCaller(t *testing.T) {
	root := moduleRoot(t)
	g, err := optid.NewGenerator(optid.NewOriginIndex(map[string]string{root: "selftest"}))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}

	id, ok := registerOption(g, "renderDistance")
	if !ok {
		payload, _ := g.Trace("renderDistance").ToJSON()
		t.Fatalf("expected runtime caller to resolve, trace: %s", payload)
	}
	if id.String() != "selftest:renderDistance" {
		t.Fatalf("unexpected identifier %q", id.String())
	}

	owner, ok := g.Owner()
	if !ok || owner != "selftest" {
		t.Fatalf("expected selftest owner, got %q ok=%v", owner, ok)
	}
}

func TestGenerateRuntimeCallerBlocked(t *testing.T) {
	root := moduleRoot(t)
	g, err := optid.NewGenerator(
		optid.NewOriginIndex(map[string]string{root: "selftest"}),
		optid.WithBlockedPrefixes("github.com/goliatone/go-optid_test."),
	)
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	if id, ok := optid.Generate[int](g, "x"); ok {
		t.Fatalf("expected every frame blocked, got %+v", id)
	}

	trace := g.Trace("x")
	for _, c := range trace.Candidates {
		if c.Stage != optid.StageBlocked {
			t.Fatalf("expected only blocked frames, got %+v", c)
		}
	}
}

func TestGenerateRuntimeCallerHostSuppressed(t *testing.T) {
	root := moduleRoot(t)
	g, err := optid.NewGenerator(optid.NewOriginIndex(map[string]string{root: optid.DefaultHostID}))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	if _, ok := optid.Generate[int](g, "x"); ok {
		t.Fatalf("expected host owned caller to be absent")
	}
	if !g.Trace("x").HostMatch {
		t.Fatalf("expected host match recorded")
	}
}

func TestInstallDefault(t *testing.T) {
	root := moduleRoot(t)
	g, err := optid.NewGenerator(optid.NewOriginIndex(map[string]string{root: "selftest"}))
	if err != nil {
		t.Fatalf("new generator: %v", err)
	}
	if err := optid.Install(nil); err == nil {
		t.Fatalf("expected nil generator to be rejected")
	}
	if err := optid.Install(g); err != nil {
		t.Fatalf("install: %v", err)
	}
	if err := optid.Install(g); !errors.Is(err, optid.ErrAlreadyInstalled) {
		t.Fatalf("expected second install to fail, got %v", err)
	}

	current, err := optid.Default()
	if err != nil || current != g {
		t.Fatalf("expected installed generator, got %p err=%v", current, err)
	}
	id, ok := optid.GenerateID[string]("language")
	if !ok || id.String() != "selftest:language" {
		t.Fatalf("expected default generator to attribute, got %+v ok=%v", id, ok)
	}
}
