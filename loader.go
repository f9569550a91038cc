package optid

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
)

// Symbol is a loaded candidate whose code location can be queried.
type Symbol interface {
	Name() string
	// Location returns where the symbol's code was loaded from as a URI or
	// absolute path.
	Location() (string, error)
}

// Loader resolves a candidate frame to a Symbol.
type Loader interface {
	Load(frame Frame) (Symbol, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(frame Frame) (Symbol, error)

// Load implements Loader.
func (f LoaderFunc) Load(frame Frame) (Symbol, error) {
	if f == nil {
		return nil, ErrNotLoadable
	}
	return f(frame)
}

// StaticSymbol is a Symbol with a precomputed location.
type StaticSymbol struct {
	SymbolName string
	URI        string
}

func (s StaticSymbol) Name() string { return s.SymbolName }

func (s StaticSymbol) Location() (string, error) {
	if s.URI == "" {
		return "", ErrNoLocation
	}
	return s.URI, nil
}

type runtimeLoader struct {
	// modules holds the build's module paths, longest first.
	modules []string
}

// NewRuntimeLoader returns a Loader for frames of the running binary. A
// frame's location is the root directory of the Go module its package belongs
// to: the source directory with the package's path inside the module trimmed,
// or else the nearest ancestor directory holding a go.mod. Binaries built with
// -trimpath carry no absolute source paths and resolve nothing.
func NewRuntimeLoader() Loader {
	l := &runtimeLoader{}
	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Path != "" {
			l.modules = append(l.modules, info.Main.Path)
		}
		for _, dep := range info.Deps {
			if dep != nil && dep.Path != "" {
				l.modules = append(l.modules, dep.Path)
			}
		}
	}
	sort.Slice(l.modules, func(i, j int) bool {
		return len(l.modules[i]) > len(l.modules[j])
	})
	return l
}

func (l *runtimeLoader) Load(frame Frame) (Symbol, error) {
	if frame.Package == "" {
		return nil, fmt.Errorf("%w: %q has no package", ErrNotLoadable, frame.Function)
	}
	if frame.File == "" || !filepath.IsAbs(frame.File) {
		return nil, fmt.Errorf("%w: %q has no source path", ErrNotLoadable, frame.Function)
	}
	return runtimeSymbol{frame: frame, module: l.moduleFor(frame.Package)}, nil
}

func (l *runtimeLoader) moduleFor(pkg string) string {
	for _, mod := range l.modules {
		if pkg == mod || strings.HasPrefix(pkg, mod+"/") {
			return mod
		}
	}
	return ""
}

type runtimeSymbol struct {
	frame  Frame
	module string
}

func (s runtimeSymbol) Name() string { return s.frame.Function }

func (s runtimeSymbol) Location() (string, error) {
	dir := filepath.Dir(s.frame.File)
	if root := trimPackageDir(dir, s.frame.Package, s.module); root != "" {
		return FileLocation(root), nil
	}
	if root := findModuleRoot(dir); root != "" {
		return FileLocation(root), nil
	}
	return "", fmt.Errorf("%w: %q", ErrNoLocation, s.frame.File)
}

// trimPackageDir strips the package's path below its module from dir.
func trimPackageDir(dir, pkg, module string) string {
	if module == "" {
		return ""
	}
	sub := strings.TrimPrefix(strings.TrimPrefix(pkg, module), "/")
	if sub == "" {
		return dir
	}
	slashed := filepath.ToSlash(dir)
	if !strings.HasSuffix(slashed, "/"+sub) {
		return ""
	}
	return filepath.FromSlash(strings.TrimSuffix(slashed, "/"+sub))
}

func findModuleRoot(dir string) string {
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
