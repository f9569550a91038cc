package optid

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Function is a helper deny rules can invoke, directly by its lowercased name
// in expr and JS rules or through call(name, ...) in every engine.
type Function func(args ...any) (any, error)

// FunctionRegistry holds the helpers visible to deny rules. Names are case
// insensitive.
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry returns a registry without the frame helpers.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// Register adds fn under name. A name can be registered once.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("optid: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("optid: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("optid: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Clone returns a copy that later registrations on r do not affect.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	clone := NewFunctionRegistry()
	r.copyInto(clone)
	return clone
}

func (r *FunctionRegistry) copyInto(dst *FunctionRegistry) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name, fn := range r.functions {
		dst.functions[name] = fn
	}
}

// Call runs the helper registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("optid: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("optid: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns the lowercased helper names in order.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithFunctionRegistry exposes the helpers in registry to deny rules.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *config) {
		if registry == nil {
			return
		}
		cfg.functions = registry.Clone()
	}
}

// WithCustomFunction registers fn under name for deny rules. A nil fn, an
// empty name or a duplicate makes NewGenerator fail.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *config) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		if err := cfg.functions.Register(name, fn); err != nil {
			cfg.optionErrs = append(cfg.optionErrs, err)
		}
	}
}

// FrameFunctions returns a registry with the frame helpers every built in
// engine provides:
//
//	within(name, namespace)  name is namespace or a member of it
//	under(file, root)        file sits below root, a path or a location
func FrameFunctions() *FunctionRegistry {
	r := NewFunctionRegistry()
	r.functions["within"] = within
	r.functions["under"] = under
	return r
}

// withFrameFunctions layers registry over the frame helpers. Helpers in
// registry shadow frame helpers of the same name.
func withFrameFunctions(registry *FunctionRegistry) *FunctionRegistry {
	merged := FrameFunctions()
	if registry != nil {
		registry.copyInto(merged)
	}
	return merged
}

// within matches dotted class names and Go symbol names alike, so
// "com.foo" holds "com.foo.Thing" and "github.com/acme/foo" holds
// "github.com/acme/foo/render.Run", while "com.foo" does not hold
// "com.foobar.Thing".
func within(args ...any) (any, error) {
	name, namespace, err := stringPair("within", args)
	if err != nil {
		return nil, err
	}
	if namespace == "" || !strings.HasPrefix(name, namespace) {
		return false, nil
	}
	if strings.HasSuffix(namespace, ".") || strings.HasSuffix(namespace, "/") {
		return true, nil
	}
	rest := name[len(namespace):]
	return rest == "" || rest[0] == '.' || rest[0] == '/', nil
}

func under(args ...any) (any, error) {
	file, root, err := stringPair("under", args)
	if err != nil {
		return nil, err
	}
	if file == "" || root == "" {
		return false, nil
	}
	if strings.Contains(root, ":") && !filepath.IsAbs(root) {
		if root, err = LocationPath(root); err != nil {
			return nil, err
		}
	}
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(file))
	if err != nil {
		return false, nil
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)), nil
}

func stringPair(fn string, args []any) (string, string, error) {
	if len(args) != 2 {
		return "", "", fmt.Errorf("optid: %s expects 2 arguments, got %d", fn, len(args))
	}
	first, ok := args[0].(string)
	if !ok {
		return "", "", fmt.Errorf("optid: %s argument 1 must be string, got %T", fn, args[0])
	}
	second, ok := args[1].(string)
	if !ok {
		return "", "", fmt.Errorf("optid: %s argument 2 must be string, got %T", fn, args[1])
	}
	return first, second, nil
}
