package optid

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-optid/pkg/activity"
	"github.com/goliatone/go-optid/pkg/registry"
	"github.com/joho/godotenv"
)

// Config is the environment driven setup of the default generator.
type Config struct {
	ModsDir           string   `env:"OPTID_MODS_DIR"`
	HostID            string   `env:"OPTID_HOST_ID"            envDefault:"minecraft"`
	HostNamespaces    []string `env:"OPTID_HOST_NAMESPACES"    envSeparator:"," envDefault:"net.caffeinemc.mods.sodium,me.jellysquid.mods.sodium,org.embeddedt.embeddium,net.minecraft,net.neoforged"`
	BlockedPrefixes   []string `env:"OPTID_BLOCKED_PREFIXES"   envSeparator:","`
	BlockedSubstrings []string `env:"OPTID_BLOCKED_SUBSTRINGS" envSeparator:","`
	DenyRules         []string `env:"OPTID_DENY_RULES"         envSeparator:";"`
	RuleEngine        string   `env:"OPTID_RULE_ENGINE"        envDefault:"expr"`
	CacheSize         int      `env:"OPTID_CACHE_SIZE"         envDefault:"512"`
	LogLevel          string   `env:"OPTID_LOG_LEVEL"`
	ActivityChannel   string   `env:"OPTID_ACTIVITY_CHANNEL"`
}

// LoadConfig parses OPTID_* variables. Values from the given dotenv files
// fill in anything the process environment does not set.
func LoadConfig(files ...string) (Config, error) {
	vars := map[string]string{}
	if len(files) > 0 {
		loaded, err := godotenv.Read(files...)
		if err != nil {
			return Config{}, fmt.Errorf("optid: read env files: %w", err)
		}
		for k, v := range loaded {
			vars[k] = v
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("optid: parse env: %w", err)
	}
	return cfg, nil
}

// Registry returns the module registry described by the config, or nil when
// no mods directory is set.
func (c Config) Registry(opts ...registry.DirectoryOption) registry.Registry {
	if strings.TrimSpace(c.ModsDir) == "" {
		return nil
	}
	return registry.NewDirectoryRegistry(c.ModsDir, opts...)
}

// Options translates the config into generator options.
func (c Config) Options() ([]Option, error) {
	opts := []Option{
		WithHostID(c.HostID),
		withHostNamespaceList(c.HostNamespaces),
		WithBlockedPrefixes(c.BlockedPrefixes...),
		WithBlockedSubstrings(c.BlockedSubstrings...),
		WithActivityChannel(c.ActivityChannel),
	}
	if logger, err := c.logger(); err != nil {
		return nil, err
	} else if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	if c.CacheSize > 0 {
		programs, err := NewLRUCache(c.CacheSize)
		if err != nil {
			return nil, err
		}
		locations, err := NewLRUCache(c.CacheSize)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithProgramCache(programs), WithLocationCache(locations))
	}
	if len(c.DenyRules) > 0 {
		opts = append(opts, WithDenyRules(c.DenyRules...), WithRuleEngine(c.RuleEngine))
	}
	return opts, nil
}

func (c Config) logger() (ResolutionLogger, error) {
	if strings.TrimSpace(c.LogLevel) == "" {
		return nil, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("optid: log level: %w", err)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return SlogLogger(slog.New(handler)), nil
}

// NewFromConfig builds the origin index from the configured registry and
// returns a generator over it.
func NewFromConfig(ctx context.Context, cfg Config, extra ...Option) (*Generator, error) {
	opts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, extra...)
	resolved := applyOptions(opts)
	logger := resolved.logger

	skipped := func(path string, err error) {
		logger.LogResolution(ResolutionEvent{Op: OpIndexSkip, Path: path, Err: err})
	}
	index, err := BuildOriginIndex(ctx, cfg.Registry(registry.WithSkipFunc(skipped)), WithIndexLogger(logger))
	if err != nil {
		return nil, err
	}

	emitter := activity.NewEmitter(resolved.activityHooks, activity.Config{
		Enabled: resolved.activityHooks.Enabled(),
		Channel: resolved.activityChannel,
	})
	event := activity.BuildIndexBuiltEvent(activity.IndexEventInput{
		Source: cfg.ModsDir,
		Roots:  index.Len(),
		Owners: index.Owners(),
	})
	if err := emitter.Emit(ctx, event); err != nil {
		logger.LogResolution(ResolutionEvent{Op: OpActivity, Path: cfg.ModsDir, Err: err})
	}
	return NewGenerator(index, opts...)
}
