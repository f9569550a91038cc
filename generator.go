package optid

import (
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-optid/pkg/activity"
)

// Generator attributes option paths to the module whose code is calling. It
// holds no mutable state besides the optional caches and is safe for
// concurrent use.
type Generator struct {
	index  *OriginIndex
	hostID string
	filter FrameFilter

	engine   string
	rules    []denyRule
	ruleArgs map[string]any

	loader    Loader
	stack     StackSource
	locations Cache
	logger    ResolutionLogger

	hooks    activity.Hooks
	emitter  *activity.Emitter
	actorID  string
	tenantID string
}

// NewGenerator returns a Generator resolving owners against index. A nil
// index resolves nothing. Deny rules are compiled here so a bad expression
// fails construction rather than individual lookups, and so does any option
// that could not be applied.
func NewGenerator(index *OriginIndex, opts ...Option) (*Generator, error) {
	cfg := applyOptions(opts)
	if err := errors.Join(cfg.optionErrs...); err != nil {
		return nil, err
	}
	evaluator, rules, err := compileDenyRules(cfg)
	if err != nil {
		return nil, err
	}
	if index == nil {
		index = NewOriginIndex(nil)
	}
	return &Generator{
		index:     index,
		hostID:    cfg.hostID,
		filter:    NewFrameFilter(cfg.prefixes(), cfg.blockedSubstrings),
		engine:    evaluatorEngineName(evaluator),
		rules:     rules,
		ruleArgs:  cfg.ruleArgs,
		loader:    cfg.loader,
		stack:     cfg.stack,
		locations: cfg.locationCache,
		logger:    cfg.logger,
		hooks:     cfg.activityHooks,
		emitter: activity.NewEmitter(cfg.activityHooks, activity.Config{
			Enabled: cfg.activityHooks.Enabled(),
			Channel: cfg.activityChannel,
		}),
		actorID:  cfg.activityActorID,
		tenantID: cfg.activityTenantID,
	}, nil
}

// HostID returns the identifier that is never reported as an owner.
func (g *Generator) HostID() string {
	if g == nil {
		return DefaultHostID
	}
	return g.hostID
}

// Index returns the origin index the generator reads.
func (g *Generator) Index() *OriginIndex {
	if g == nil {
		return nil
	}
	return g.index
}

// Generate attributes path to the innermost calling module. The second return
// is false when no frame resolves to an indexed module, or when the match is
// the host itself; the caller must then name the owner explicitly.
func Generate[T any](g *Generator, path string) (Identifier[T], bool) {
	if g == nil {
		return Identifier[T]{}, false
	}
	trace := g.resolve(path, false)
	if !trace.Found {
		return Identifier[T]{}, false
	}
	return NewIdentifier[T](trace.Owner, path), true
}

// Identify returns owner:path when owner is given and falls back to stack
// inference otherwise.
func Identify[T any](g *Generator, owner, path string) (Identifier[T], error) {
	if owner != "" {
		if owner == g.HostID() {
			return Identifier[T]{}, fmt.Errorf("%w: %q", ErrReservedOwner, owner)
		}
		id := NewIdentifier[T](owner, path)
		if err := id.Validate(); err != nil {
			return Identifier[T]{}, err
		}
		return id, nil
	}
	if g == nil {
		return Identifier[T]{}, fmt.Errorf("%w: path=%q", ErrOwnerUnresolved, path)
	}
	trace := g.resolve(path, false)
	if !trace.Found {
		return Identifier[T]{}, fmt.Errorf("%w: path=%q", ErrOwnerUnresolved, path)
	}
	id := NewIdentifier[T](trace.Owner, path)
	if err := id.Validate(); err != nil {
		return Identifier[T]{}, err
	}
	return id, nil
}

// Owner reports the module the calling code belongs to.
func (g *Generator) Owner() (string, bool) {
	if g == nil {
		return "", false
	}
	trace := g.resolve("", false)
	return trace.Owner, trace.Found
}

// Trace resolves path like Generate and records the outcome of every frame
// visited on the way.
func (g *Generator) Trace(path string) Trace {
	if g == nil {
		return Trace{Path: path}
	}
	return g.resolve(path, true)
}

// resolve walks the stack innermost first. Frames are filtered before any
// loading so blocked frames cost nothing, and the first indexed frame ends the
// walk. Every per-frame failure drops only that frame.
func (g *Generator) resolve(path string, detailed bool) Trace {
	start := time.Now()
	trace := Trace{Path: path}
	rec := traceRecorder{}
	if detailed {
		rec.trace = &trace
	}

	var (
		examined  int
		candidate string
		location  string
	)
	for _, frame := range g.stack.Frames(1) {
		examined++
		name := frame.Function
		if entry, blocked := g.filter.blockedBy(name); blocked {
			rec.add(CandidateTrace{Name: name, Stage: StageBlocked, Rule: entry})
			continue
		}
		if rule, denied := g.denied(frame); denied {
			rec.add(CandidateTrace{Name: name, Stage: StageDenied, Rule: rule})
			continue
		}

		root, stage, err := g.originOf(frame)
		if err != nil {
			cerr := &CandidateError{Stage: stage, Candidate: name, Err: err}
			g.logger.LogResolution(ResolutionEvent{Op: OpCandidate, Path: path, Candidate: name, Err: cerr})
			rec.add(CandidateTrace{Name: name, Stage: stage, Err: err.Error()})
			continue
		}

		owner, ok := g.index.Lookup(root)
		if !ok {
			rec.add(CandidateTrace{Name: name, Stage: StageUnindexed, Location: root})
			continue
		}
		rec.add(CandidateTrace{Name: name, Stage: StageMatched, Location: root, Owner: owner})
		candidate, location = name, root
		if owner == g.hostID {
			trace.HostMatch = true
			break
		}
		trace.Owner = owner
		trace.Found = true
		break
	}

	g.logger.LogResolution(ResolutionEvent{
		Op:        OpResolve,
		Path:      path,
		Candidate: candidate,
		Owner:     trace.Owner,
		Found:     trace.Found,
		Examined:  examined,
		Duration:  time.Since(start),
	})
	g.emit(&trace, candidate, location, examined)
	return trace
}

// originOf loads frame and translates its code location into an index key.
// The returned stage says which step failed.
func (g *Generator) originOf(frame Frame) (root string, stage Stage, err error) {
	key := frame.Function + "\x00" + frame.File
	if g.locations != nil {
		if cached, ok := g.locations.Get(key); ok {
			if root, ok := cached.(string); ok {
				return root, StageLocation, nil
			}
		}
	}

	stage = StageLoad
	defer func() {
		if r := recover(); r != nil {
			root, err = "", fmt.Errorf("panic: %v", r)
		}
	}()

	symbol, err := g.loader.Load(frame)
	if err != nil {
		return "", stage, err
	}
	if symbol == nil {
		return "", stage, fmt.Errorf("%w: %q", ErrNotLoadable, frame.Function)
	}

	stage = StageLocation
	uri, err := symbol.Location()
	if err != nil {
		return "", stage, err
	}
	root, err = LocationPath(uri)
	if err != nil {
		return "", stage, err
	}
	if g.locations != nil {
		g.locations.Set(key, root)
	}
	return root, stage, nil
}
