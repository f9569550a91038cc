package optid

import (
	"time"

	"github.com/goliatone/go-optid/internal/callstack"
	"github.com/goliatone/go-optid/pkg/activity"
)

// DefaultHostID is the identifier reserved for the host itself. A match on it
// never produces an owner.
const DefaultHostID = "minecraft"

// Frame is one entry of a captured call stack, innermost first.
type Frame struct {
	// Function is the fully qualified function name and doubles as the
	// candidate name matched against blocked prefixes and substrings.
	Function string
	Package  string
	Symbol   string
	File     string
	Line     int
}

// StackSource captures call frames for the goroutine calling Frames.
type StackSource interface {
	Frames(skip int) []Frame
}

// StackSourceFunc adapts a function to StackSource.
type StackSourceFunc func(skip int) []Frame

// Frames implements StackSource.
func (f StackSourceFunc) Frames(skip int) []Frame {
	if f == nil {
		return nil
	}
	return f(skip)
}

type runtimeStack struct{}

func (runtimeStack) Frames(skip int) []Frame {
	captured := callstack.Capture(skip + 1)
	out := make([]Frame, 0, len(captured))
	for _, fr := range captured {
		out = append(out, Frame(fr))
	}
	return out
}

// FrameFor builds a Frame from a runtime function name.
func FrameFor(function, file string, line int) Frame {
	return Frame(callstack.FromFunction(function, file, line))
}

// RuleContext carries a candidate frame into deny rule evaluation.
type RuleContext struct {
	Frame    Frame
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

func (ctx RuleContext) candidateLabel() string {
	if ctx.Frame.Function != "" {
		return ctx.Frame.Function
	}
	return "unknown"
}

// frameBinding exposes the candidate to rule expressions. "package" is a
// reserved word in CEL and JS, hence "pkg".
func (ctx RuleContext) frameBinding() map[string]any {
	return map[string]any{
		"name":   ctx.Frame.Function,
		"pkg":    ctx.Frame.Package,
		"symbol": ctx.Frame.Symbol,
		"file":   ctx.Frame.File,
		"line":   int64(ctx.Frame.Line),
	}
}

// Evaluator executes deny rule expressions against a rule context.
type Evaluator interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string, opts ...CompileOption) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// CompileOption configures evaluator compile behaviour.
type CompileOption interface {
	applyCompileOption(*compileConfig)
}

type compileConfig struct{}

// Option configures a Generator.
type Option func(*config)

type config struct {
	hostID            string
	hostNamespaces    []string
	blockedPrefixes   []string
	blockedSubstrings []string
	denyRules         []string
	ruleArgs          map[string]any
	evaluator         Evaluator
	ruleEngine        string
	programCache      Cache
	functions         *FunctionRegistry
	locationCache     Cache
	loader            Loader
	stack             StackSource
	logger            ResolutionLogger
	activityHooks     activity.Hooks
	activityChannel   string
	activityActorID   string
	activityTenantID  string
	optionErrs        []error
}

func applyOptions(opts []Option) config {
	cfg := config{
		hostID:            DefaultHostID,
		hostNamespaces:    append([]string(nil), DefaultHostNamespaces...),
		blockedPrefixes:   append([]string(nil), DefaultBlockedPrefixes...),
		blockedSubstrings: append([]string(nil), DefaultBlockedSubstrings...),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.logger == nil {
		cfg.logger = noopResolutionLogger{}
	}
	if cfg.loader == nil {
		cfg.loader = NewRuntimeLoader()
	}
	if cfg.stack == nil {
		cfg.stack = runtimeStack{}
	}
	return cfg
}

// prefixes returns every blocked name prefix, host namespaces first.
func (cfg config) prefixes() []string {
	return appendNonEmpty(append([]string(nil), cfg.hostNamespaces...), cfg.blockedPrefixes)
}

// WithHostID overrides the identifier reserved for the host.
func WithHostID(id string) Option {
	return func(cfg *config) {
		if id != "" {
			cfg.hostID = id
		}
	}
}

// WithHostNamespaces blocks frames from further host or menu packages, on top
// of DefaultHostNamespaces.
func WithHostNamespaces(prefixes ...string) Option {
	return func(cfg *config) {
		cfg.hostNamespaces = appendNonEmpty(cfg.hostNamespaces, prefixes)
	}
}

// withHostNamespaceList replaces the host namespaces outright. An empty list
// keeps the current ones.
func withHostNamespaceList(prefixes []string) Option {
	return func(cfg *config) {
		if list := appendNonEmpty(nil, prefixes); len(list) > 0 {
			cfg.hostNamespaces = list
		}
	}
}

// WithBlockedPrefixes adds candidate name prefixes that are never attributed.
func WithBlockedPrefixes(prefixes ...string) Option {
	return func(cfg *config) {
		cfg.blockedPrefixes = appendNonEmpty(cfg.blockedPrefixes, prefixes)
	}
}

// WithBlockedSubstrings adds substrings that exclude any candidate name
// containing them.
func WithBlockedSubstrings(substrings ...string) Option {
	return func(cfg *config) {
		cfg.blockedSubstrings = appendNonEmpty(cfg.blockedSubstrings, substrings)
	}
}

// WithoutDefaultBlocklist drops DefaultHostNamespaces, DefaultBlockedPrefixes
// and DefaultBlockedSubstrings. Later With* options still apply.
func WithoutDefaultBlocklist() Option {
	return func(cfg *config) {
		cfg.hostNamespaces = nil
		cfg.blockedPrefixes = nil
		cfg.blockedSubstrings = nil
	}
}

// WithLoader replaces the runtime loader.
func WithLoader(loader Loader) Option {
	return func(cfg *config) {
		cfg.loader = loader
	}
}

// WithStackSource replaces the runtime call stack capture.
func WithStackSource(source StackSource) Option {
	return func(cfg *config) {
		cfg.stack = source
	}
}

// WithEvaluator sets the engine used to compile deny rules.
func WithEvaluator(e Evaluator) Option {
	return func(cfg *config) {
		cfg.evaluator = e
	}
}

// WithRuleEngine selects the engine deny rules compile with when no
// evaluator is set: "expr" (default), "cel" or "js".
func WithRuleEngine(engine string) Option {
	return func(cfg *config) {
		cfg.ruleEngine = engine
	}
}

// WithDenyRules adds expressions evaluated per candidate; a rule returning
// true drops the candidate. Rules see name, pkg, symbol, file, line, now,
// args and metadata.
func WithDenyRules(exprs ...string) Option {
	return func(cfg *config) {
		cfg.denyRules = appendNonEmpty(cfg.denyRules, exprs)
	}
}

// WithRuleArgs exposes args to deny rules.
func WithRuleArgs(args map[string]any) Option {
	return func(cfg *config) {
		cfg.ruleArgs = copyMap(args)
	}
}

func appendNonEmpty(dst, values []string) []string {
	for _, v := range values {
		if v != "" {
			dst = append(dst, v)
		}
	}
	return dst
}

func copyMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
