package optid

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-optid/pkg/registry"
)

// OriginIndex maps module root paths to the owning module identifier. It is
// never mutated after construction and is safe for concurrent reads.
type OriginIndex struct {
	roots map[string]string
}

// IndexEntry is one root/owner pair.
type IndexEntry struct {
	Root  string `json:"root"`
	Owner string `json:"owner"`
}

// IndexOption configures BuildOriginIndex.
type IndexOption func(*indexConfig)

type indexConfig struct {
	logger ResolutionLogger
}

// WithIndexLogger reports skipped modules and root collisions.
func WithIndexLogger(logger ResolutionLogger) IndexOption {
	return func(cfg *indexConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// NewOriginIndex builds an index from literal root/owner pairs.
func NewOriginIndex(roots map[string]string) *OriginIndex {
	idx := &OriginIndex{roots: make(map[string]string, len(roots))}
	for root, owner := range roots {
		if key := normalizeRoot(root); key != "" && owner != "" {
			idx.roots[key] = owner
		}
	}
	return idx
}

// BuildOriginIndex enumerates reg once and indexes every resolvable module
// root. Modules whose root cannot be resolved are skipped; only a failure to
// enumerate the registry is returned.
//
// Two modules claiming the same root resolve to whichever the registry lists
// last.
func BuildOriginIndex(ctx context.Context, reg registry.Registry, opts ...IndexOption) (*OriginIndex, error) {
	cfg := indexConfig{logger: noopResolutionLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	idx := &OriginIndex{roots: map[string]string{}}
	if reg == nil {
		return idx, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	modules, err := reg.Modules(ctx)
	if err != nil {
		return nil, fmt.Errorf("optid: enumerate modules: %w", err)
	}

	for _, module := range modules {
		owner := module.OwnerID()
		if module.Placeholder() {
			cfg.logger.LogResolution(ResolutionEvent{Op: OpIndexSkip, Owner: module.ID, Err: ErrNoComponents})
			continue
		}
		if owner == "" {
			cfg.logger.LogResolution(ResolutionEvent{Op: OpIndexSkip, Path: strings.Join(module.Origin.Paths, ","), Err: ErrNoModuleID})
			continue
		}
		for _, root := range moduleRoots(module, owner, cfg.logger) {
			key := normalizeRoot(root)
			if key == "" {
				continue
			}
			if previous, ok := idx.roots[key]; ok && previous != owner {
				cfg.logger.LogResolution(ResolutionEvent{
					Op:    OpIndexCollision,
					Path:  key,
					Owner: owner,
					Err:   fmt.Errorf("root already owned by %q", previous),
				})
			}
			idx.roots[key] = owner
		}
	}
	return idx, nil
}

func moduleRoots(module registry.ModuleRecord, owner string, logger ResolutionLogger) []string {
	switch module.Origin.Kind {
	case registry.OriginPaths:
		return module.Origin.Paths
	case registry.OriginArchive:
		root, err := archiveRoot(module.Origin.Archive)
		if err != nil {
			logger.LogResolution(ResolutionEvent{Op: OpIndexSkip, Owner: owner, Err: err})
			return nil
		}
		return []string{root}
	default:
		logger.LogResolution(ResolutionEvent{
			Op:    OpIndexSkip,
			Owner: owner,
			Err:   fmt.Errorf("origin kind %q is not indexed", module.Origin.Kind),
		})
		return nil
	}
}

func archiveRoot(archive registry.Archive) (root string, err error) {
	if archive == nil {
		return "", registry.ErrResourceNotFound
	}
	defer func() {
		if r := recover(); r != nil {
			root, err = "", fmt.Errorf("optid: archive root: panic: %v", r)
		}
	}()
	return archive.FindResource("/")
}

// Lookup returns the owner of root, if any.
func (i *OriginIndex) Lookup(root string) (string, bool) {
	if i == nil || root == "" {
		return "", false
	}
	owner, ok := i.roots[normalizeRoot(root)]
	return owner, ok
}

// Len returns the number of indexed roots.
func (i *OriginIndex) Len() int {
	if i == nil {
		return 0
	}
	return len(i.roots)
}

// Owners returns the number of distinct owners.
func (i *OriginIndex) Owners() int {
	if i == nil {
		return 0
	}
	seen := make(map[string]struct{}, len(i.roots))
	for _, owner := range i.roots {
		seen[owner] = struct{}{}
	}
	return len(seen)
}

// Entries returns the indexed roots sorted by path.
func (i *OriginIndex) Entries() []IndexEntry {
	if i == nil {
		return nil
	}
	out := make([]IndexEntry, 0, len(i.roots))
	for root, owner := range i.roots {
		out = append(out, IndexEntry{Root: root, Owner: owner})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Root < out[b].Root })
	return out
}
