package optid

import (
	"path/filepath"
	"slices"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HostID != DefaultHostID || cfg.RuleEngine != EngineExpr || cfg.CacheSize != 512 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if !slices.Equal(cfg.HostNamespaces, DefaultHostNamespaces) {
		t.Fatalf("expected default host namespaces, got %v", cfg.HostNamespaces)
	}
	if cfg.Registry() != nil {
		t.Fatalf("expected no registry without a mods directory")
	}
}

func TestLoadConfigHostNamespacesReplaceDefaults(t *testing.T) {
	t.Setenv("OPTID_HOST_NAMESPACES", "org.bukkit,io.papermc")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	resolved := applyOptions(opts)
	if !slices.Equal(resolved.hostNamespaces, []string{"org.bukkit", "io.papermc"}) {
		t.Fatalf("expected env namespaces to replace defaults, got %v", resolved.hostNamespaces)
	}
}

func TestLoadConfigEnvironmentOverridesFiles(t *testing.T) {
	dir := t.TempDir()
	envFile := writeTestFile(t, dir, "optid.env", `OPTID_MODS_DIR=/srv/mods
OPTID_HOST_ID=fromfile
OPTID_DENY_RULES=name == "a";line > 3
`)
	t.Setenv("OPTID_HOST_ID", "server")
	t.Setenv("OPTID_BLOCKED_SUBSTRINGS", "proxy,shim")
	t.Setenv("OPTID_CACHE_SIZE", "8")

	cfg, err := LoadConfig(envFile)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ModsDir != "/srv/mods" {
		t.Fatalf("expected mods dir from file, got %q", cfg.ModsDir)
	}
	if cfg.HostID != "server" {
		t.Fatalf("expected process env to win, got %q", cfg.HostID)
	}
	if !slices.Equal(cfg.BlockedSubstrings, []string{"proxy", "shim"}) {
		t.Fatalf("unexpected substrings %v", cfg.BlockedSubstrings)
	}
	if !slices.Equal(cfg.DenyRules, []string{`name == "a"`, "line > 3"}) {
		t.Fatalf("unexpected deny rules %q", cfg.DenyRules)
	}
	if cfg.CacheSize != 8 {
		t.Fatalf("expected cache size 8, got %d", cfg.CacheSize)
	}
	if cfg.Registry() == nil {
		t.Fatalf("expected directory registry")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatalf("expected missing env file to fail")
	}
	t.Setenv("OPTID_CACHE_SIZE", "lots")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected invalid cache size to fail")
	}
}

func TestConfigOptions(t *testing.T) {
	cfg := Config{
		HostID:          "server",
		HostNamespaces:  []string{"net.minecraft."},
		BlockedPrefixes: []string{"com.proxy."},
		DenyRules:       []string{`name == "x"`},
		RuleEngine:      EngineCEL,
		CacheSize:       4,
		LogLevel:        "debug",
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	resolved := applyOptions(opts)
	if resolved.hostID != "server" || resolved.ruleEngine != EngineCEL {
		t.Fatalf("unexpected resolved config %+v", resolved)
	}
	if !slices.Equal(resolved.hostNamespaces, []string{"net.minecraft."}) || !slices.Contains(resolved.blockedPrefixes, "com.proxy.") {
		t.Fatalf("expected host and blocked prefixes, got %v %v", resolved.hostNamespaces, resolved.blockedPrefixes)
	}
	if resolved.programCache == nil || resolved.locationCache == nil {
		t.Fatalf("expected caches configured")
	}
	if _, ok := resolved.logger.(noopResolutionLogger); ok {
		t.Fatalf("expected slog logger for a configured level")
	}

	g, err := NewGenerator(nil, opts...)
	if err != nil {
		t.Fatalf("generator: %v", err)
	}
	if g.engine != EngineCEL || len(g.rules) != 1 {
		t.Fatalf("expected compiled cel rule, got engine=%s rules=%d", g.engine, len(g.rules))
	}

	if _, err := (Config{LogLevel: "chatty"}).Options(); err == nil {
		t.Fatalf("expected invalid log level to fail")
	}
}
