package registry

import (
	"context"
	"errors"
	"strings"
)

var ErrResourceNotFound = errors.New("registry: resource not found")

// OriginKind identifies how the host loaded a module's code.
type OriginKind string

const (
	// OriginPaths marks a module loaded from one or more plain directories or files.
	OriginPaths OriginKind = "paths"
	// OriginArchive marks a module packaged in an archive whose root has to be
	// resolved before it can be indexed.
	OriginArchive OriginKind = "archive"
	// OriginNested marks a module shipped inside another module's archive.
	OriginNested OriginKind = "nested"
)

// Archive resolves resources packaged inside a module archive.
type Archive interface {
	// FindResource returns the concrete filesystem location of name. The root
	// resource is requested as "/".
	FindResource(name string) (string, error)
}

// Origin describes where a module's code was loaded from.
type Origin struct {
	Kind    OriginKind
	Paths   []string
	Archive Archive
}

// ModuleRecord is one installed module as reported by the host.
type ModuleRecord struct {
	ID         string
	Components []string
	Origin     Origin
}

// Registry enumerates installed modules.
type Registry interface {
	Modules(ctx context.Context) ([]ModuleRecord, error)
}

// Func adapts a plain function to Registry.
type Func func(ctx context.Context) ([]ModuleRecord, error)

// Modules implements Registry.
func (fn Func) Modules(ctx context.Context) ([]ModuleRecord, error) {
	if fn == nil {
		return nil, nil
	}
	return fn(ctx)
}

// OwnerID returns the identifier options should be attributed to. An archive
// belongs to the first module it packages, whatever the archive calls itself.
// Other records use their own ID and fall back to the first component.
func (r ModuleRecord) OwnerID() string {
	if r.Origin.Kind == OriginArchive {
		if id := r.firstComponent(); id != "" {
			return id
		}
	}
	if id := strings.TrimSpace(r.ID); id != "" {
		return id
	}
	return r.firstComponent()
}

func (r ModuleRecord) firstComponent() string {
	for _, component := range r.Components {
		if id := strings.TrimSpace(component); id != "" {
			return id
		}
	}
	return ""
}

// Placeholder reports whether the host listed an archive that packages no
// modules at all.
func (r ModuleRecord) Placeholder() bool {
	return r.Origin.Kind == OriginArchive && len(r.Components) == 0
}

func (r ModuleRecord) clone() ModuleRecord {
	out := r
	if r.Components != nil {
		out.Components = append([]string(nil), r.Components...)
	}
	if r.Origin.Paths != nil {
		out.Origin.Paths = append([]string(nil), r.Origin.Paths...)
	}
	return out
}

// PathsRecord is a shorthand for a module loaded from plain filesystem roots.
func PathsRecord(id string, paths ...string) ModuleRecord {
	return ModuleRecord{
		ID:         id,
		Components: []string{id},
		Origin:     Origin{Kind: OriginPaths, Paths: append([]string(nil), paths...)},
	}
}

// ArchiveRecord is a shorthand for a module packaged in archive.
func ArchiveRecord(archive Archive, components ...string) ModuleRecord {
	return ModuleRecord{
		Components: append([]string(nil), components...),
		Origin:     Origin{Kind: OriginArchive, Archive: archive},
	}
}
