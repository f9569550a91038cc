package optid

import (
	"fmt"
	"strings"
	"time"
)

// Rule engines accepted by NewEvaluator.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// NewEvaluator constructs the named rule engine with the frame helpers from
// FrameFunctions layered under registry. The JS engine requires the js_eval
// build tag.
func NewEvaluator(engine string, cache Cache, registry *FunctionRegistry) (Evaluator, error) {
	registry = withFrameFunctions(registry)
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineExpr:
		return NewExprEvaluator(ExprWithProgramCache(cache), ExprWithFunctionRegistry(registry)), nil
	case EngineCEL:
		return NewCELEvaluator(CELWithProgramCache(cache), CELWithFunctionRegistry(registry)), nil
	case EngineJS:
		if !jsEvaluatorAvailable() {
			return nil, fmt.Errorf("%w: js engine requires the js_eval build tag", ErrNoEvaluator)
		}
		return NewJSEvaluator(JSWithProgramCache(cache), JSWithFunctionRegistry(registry)), nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrNoEvaluator, engine)
	}
}

// engineConfig is what every engine is built from: a compiled program cache
// and the helpers rules may call.
type engineConfig struct {
	cache    Cache
	registry *FunctionRegistry
}

// JSEvaluatorOption configures the JS evaluator. The options compile with or
// without the js_eval tag.
type JSEvaluatorOption func(*engineConfig)

// JSWithProgramCache keeps compiled goja programs in cache.
func JSWithProgramCache(cache Cache) JSEvaluatorOption {
	return func(cfg *engineConfig) {
		cfg.cache = cache
	}
}

// JSWithFunctionRegistry exposes the helpers in registry to JS rules.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(cfg *engineConfig) {
		cfg.registry = registry.Clone()
	}
}

type denyRule struct {
	expr string
	rule CompiledRule
}

func compileDenyRules(cfg config) (Evaluator, []denyRule, error) {
	if len(cfg.denyRules) == 0 {
		return cfg.evaluator, nil, nil
	}
	evaluator := cfg.evaluator
	if evaluator == nil {
		var err error
		evaluator, err = NewEvaluator(cfg.ruleEngine, cfg.programCache, cfg.functions)
		if err != nil {
			return nil, nil, err
		}
	}
	rules := make([]denyRule, 0, len(cfg.denyRules))
	for _, expr := range cfg.denyRules {
		compiled, err := evaluator.Compile(expr)
		if err != nil {
			return nil, nil, fmt.Errorf("optid: compile deny rule %q: %w", expr, err)
		}
		rules = append(rules, denyRule{expr: expr, rule: compiled})
	}
	return evaluator, rules, nil
}

// denied evaluates deny rules against frame. A rule that fails or yields a
// non-boolean is logged and treated as not matching.
func (g *Generator) denied(frame Frame) (string, bool) {
	if len(g.rules) == 0 {
		return "", false
	}
	now := time.Now()
	ctx := RuleContext{Frame: frame, Now: &now, Args: g.ruleArgs}.withDefaults()
	for _, r := range g.rules {
		start := time.Now()
		value, err := r.rule.Evaluate(ctx)
		if err == nil {
			if _, ok := value.(bool); !ok {
				err = fmt.Errorf("optid: deny rule %q returned %T, want bool", r.expr, value)
			}
		}
		if err != nil {
			g.logger.LogResolution(ResolutionEvent{
				Op:        OpRule,
				Candidate: frame.Function,
				Duration:  time.Since(start),
				Err:       wrapEvaluationError(g.engine, r.expr, frame.Function, err),
			})
			continue
		}
		if value.(bool) {
			return r.expr, true
		}
	}
	return "", false
}

// namedEngine is implemented by the built in evaluators.
type namedEngine interface {
	engine() string
}

func evaluatorEngineName(e Evaluator) string {
	if e == nil {
		return "unknown"
	}
	if named, ok := e.(namedEngine); ok {
		return named.engine()
	}
	return "custom"
}
