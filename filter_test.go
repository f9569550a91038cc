package optid

import "testing"

func TestFrameFilter(t *testing.T) {
	filter := NewFrameFilter(
		append([]string{"net.minecraft.", "dev.isxander.yacl."}, DefaultBlockedPrefixes...),
		DefaultBlockedSubstrings,
	)

	cases := []struct {
		name    string
		allowed bool
		rule    string
	}{
		{name: "com.foo.Thing", allowed: true},
		{name: "github.com/acme/foo/render.(*Pass).Run", allowed: true},
		{name: "github.com/goliatone/go-optid_test.TestGenerate", allowed: true},
		{name: "net.minecraft.client.Options", rule: "net.minecraft."},
		{name: "dev.isxander.yacl.gui.Screen", rule: "dev.isxander.yacl."},
		{name: "github.com/goliatone/go-optid.Generate[...]", rule: "github.com/goliatone/go-optid."},
		{name: "github.com/goliatone/go-optid/pkg/registry.(*MemoryRegistry).Modules", rule: "github.com/goliatone/go-optid/"},
		{name: "runtime.goexit", rule: "runtime."},
		{name: "reflect.Value.Call", rule: "reflect."},
		{name: "testing.tRunner", rule: "testing."},
		{name: "com.moulberry.axiom.Hook", rule: "moulberry"},
		{name: "io.github.dynamic_fps.Mixin", rule: "dynamic_fps"},
	}
	for _, tc := range cases {
		rule, blocked := filter.blockedBy(tc.name)
		if blocked == tc.allowed {
			t.Fatalf("%s: expected allowed=%v, got blocked by %q", tc.name, tc.allowed, rule)
		}
		if filter.Allowed(tc.name) != tc.allowed {
			t.Fatalf("%s: Allowed disagrees with blockedBy", tc.name)
		}
		if rule != tc.rule {
			t.Fatalf("%s: expected rule %q, got %q", tc.name, tc.rule, rule)
		}
	}
}

func TestFrameFilterAlwaysBlocksFramework(t *testing.T) {
	filter := NewFrameFilter(nil, nil)
	if filter.Allowed("github.com/goliatone/go-optid.(*Generator).resolve") {
		t.Fatalf("expected framework frames blocked by an empty filter")
	}
	if !filter.Allowed("runtime.goexit") {
		t.Fatalf("expected runtime frames allowed without defaults")
	}
}

func TestWithoutDefaultBlocklist(t *testing.T) {
	cfg := applyOptions([]Option{WithoutDefaultBlocklist(), WithBlockedSubstrings("", "proxy")})
	if len(cfg.prefixes()) != 0 {
		t.Fatalf("expected default prefixes dropped, got %v", cfg.prefixes())
	}
	if len(cfg.blockedSubstrings) != 1 || cfg.blockedSubstrings[0] != "proxy" {
		t.Fatalf("expected only the explicit substring, got %v", cfg.blockedSubstrings)
	}
}

func TestDefaultPrefixesIncludeHostNamespaces(t *testing.T) {
	cfg := applyOptions([]Option{WithHostNamespaces("dev.isxander.yacl"), WithBlockedPrefixes("com.proxy.")})
	filter := NewFrameFilter(cfg.prefixes(), cfg.blockedSubstrings)
	for _, name := range []string{
		"net.minecraft.client.Options",
		"net.neoforged.fml.ModList",
		"me.jellysquid.mods.sodium.client.gui.SodiumOptionsGUI",
		"org.embeddedt.embeddium.impl.gui.EmbeddiumVideoOptionsScreen",
		"dev.isxander.yacl.gui.Screen",
		"com.proxy.Shim",
	} {
		if filter.Allowed(name) {
			t.Fatalf("expected %s blocked by default", name)
		}
	}
	if !filter.Allowed("com.foo.Thing") {
		t.Fatalf("expected mod frames allowed")
	}
}
