package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-optid/internal/manifest"
	"github.com/klauspost/compress/zip"
	"golang.org/x/mod/modfile"
)

// ManifestNames lists the manifest files looked up in module directories and
// archives, in order of preference.
var ManifestNames = []string{"mod.yaml", "mod.yml", "mod.json"}

// Manifest is the descriptor a module ships next to its code.
type Manifest struct {
	ID         string   `json:"id"`
	Components []string `json:"provides,omitempty"`
	Roots      []string `json:"roots,omitempty"`
}

// SkipFunc is notified when a directory entry cannot be turned into a record.
type SkipFunc func(path string, err error)

// DirectoryOption configures a DirectoryRegistry.
type DirectoryOption func(*DirectoryRegistry)

// WithSkipFunc reports entries the scan ignores.
func WithSkipFunc(fn SkipFunc) DirectoryOption {
	return func(r *DirectoryRegistry) {
		r.onSkip = fn
	}
}

// DirectoryRegistry discovers modules installed under a single mods directory.
// Each entry is one of:
//
//	<dir>/mod.yaml|mod.yml|mod.json   module rooted at <dir> (or its declared roots)
//	<dir>/go.mod                      Go module rooted at <dir>, owner is the module path
//	<file>.zip|<file>.jar             packaged module, components read from its manifest
type DirectoryRegistry struct {
	root   string
	onSkip SkipFunc
}

func NewDirectoryRegistry(root string, opts ...DirectoryOption) *DirectoryRegistry {
	r := &DirectoryRegistry{root: root}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Root returns the scanned directory.
func (r *DirectoryRegistry) Root() string {
	return r.root
}

func (r *DirectoryRegistry) Modules(ctx context.Context) ([]ModuleRecord, error) {
	if r.root == "" {
		return nil, fmt.Errorf("registry: mods directory is required")
	}
	root, err := filepath.Abs(r.root)
	if err != nil {
		return nil, fmt.Errorf("registry: resolve %q: %w", r.root, err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("registry: scan %q: %w", root, err)
	}

	records := make([]ModuleRecord, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(root, entry.Name())
		var (
			record ModuleRecord
			ok     bool
			err    error
		)
		if entry.IsDir() {
			record, ok, err = directoryRecord(path)
		} else if isArchiveName(entry.Name()) {
			record, ok, err = archiveRecord(path)
		}
		if err != nil {
			r.skip(path, err)
			continue
		}
		if ok {
			records = append(records, record)
		}
	}
	return records, nil
}

func (r *DirectoryRegistry) skip(path string, err error) {
	if r.onSkip != nil {
		r.onSkip(path, err)
	}
}

func directoryRecord(dir string) (ModuleRecord, bool, error) {
	for _, name := range ManifestNames {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return ModuleRecord{}, false, err
		}
		m, err := decodeManifest(filepath.Join(dir, name), raw, true)
		if err != nil {
			return ModuleRecord{}, false, err
		}
		roots := make([]string, 0, len(m.Roots))
		for _, sub := range m.Roots {
			roots = append(roots, filepath.Join(dir, filepath.FromSlash(sub)))
		}
		if len(roots) == 0 {
			roots = append(roots, dir)
		}
		record := PathsRecord(m.ID, roots...)
		record.Components = append([]string(nil), m.Components...)
		return record, true, nil
	}

	raw, err := os.ReadFile(filepath.Join(dir, "go.mod"))
	if errors.Is(err, os.ErrNotExist) {
		return ModuleRecord{}, false, nil
	}
	if err != nil {
		return ModuleRecord{}, false, err
	}
	modulePath := modfile.ModulePath(raw)
	if modulePath == "" {
		return ModuleRecord{}, false, fmt.Errorf("registry: %s declares no module path", filepath.Join(dir, "go.mod"))
	}
	return PathsRecord(modulePath, dir), true, nil
}

func archiveRecord(path string) (ModuleRecord, bool, error) {
	archive := ZipArchive{Path: path}
	m, err := archive.Manifest()
	if err != nil && !errors.Is(err, ErrResourceNotFound) {
		return ModuleRecord{}, false, err
	}
	record := ArchiveRecord(archive, m.Components...)
	record.ID = m.ID
	return record, true, nil
}

func isArchiveName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zip", ".jar":
		return true
	default:
		return false
	}
}

func decodeManifest(source string, raw []byte, requireID bool) (Manifest, error) {
	format, ok := manifest.FormatFor(source)
	if !ok {
		return Manifest{}, fmt.Errorf("registry: unsupported manifest %q", source)
	}
	decoder := manifest.NewDecoder(
		manifest.WithPreHook[Manifest](normalizeManifestKeys),
		manifest.WithPostHook[Manifest](func(ctx manifest.Context, m *Manifest) error {
			m.ID = strings.TrimSpace(m.ID)
			if m.ID == "" && requireID {
				return fmt.Errorf("manifest id is required")
			}
			if len(m.Components) == 0 && m.ID != "" {
				m.Components = []string{m.ID}
			}
			return nil
		}),
	)
	return decoder.DecodeBytes(manifest.Context{Source: source, Format: format}, raw)
}

// normalizeManifestKeys accepts the "modid" and "mods" spellings used by
// loader-style descriptors.
func normalizeManifestKeys(_ manifest.Context, payload map[string]any) (map[string]any, error) {
	if _, ok := payload["id"]; !ok {
		if legacy, ok := payload["modid"]; ok {
			payload["id"] = legacy
		}
	}
	delete(payload, "modid")
	if _, ok := payload["provides"]; !ok {
		if mods, ok := payload["mods"]; ok {
			payload["provides"] = mods
		}
	}
	delete(payload, "mods")
	return payload, nil
}

// ZipArchive is a module packaged as a zip (or jar) file on disk. Its root
// resource resolves to the archive file itself, which is what code loaded
// from the archive reports as its location.
type ZipArchive struct {
	Path string
}

func (a ZipArchive) FindResource(name string) (string, error) {
	reader, err := zip.OpenReader(a.Path)
	if err != nil {
		return "", fmt.Errorf("registry: open archive %q: %w", a.Path, err)
	}
	defer reader.Close()

	if name == "/" || name == "" {
		abs, err := filepath.Abs(a.Path)
		if err != nil {
			return "", err
		}
		return abs, nil
	}
	entry := strings.TrimPrefix(name, "/")
	for _, file := range reader.File {
		if file.Name == entry {
			return "", fmt.Errorf("registry: %q is packaged in %q and has no filesystem path", entry, a.Path)
		}
	}
	return "", ErrResourceNotFound
}

// Manifest reads the first manifest packaged at the archive root.
func (a ZipArchive) Manifest() (Manifest, error) {
	reader, err := zip.OpenReader(a.Path)
	if err != nil {
		return Manifest{}, fmt.Errorf("registry: open archive %q: %w", a.Path, err)
	}
	defer reader.Close()

	for _, name := range ManifestNames {
		for _, file := range reader.File {
			if file.Name != name {
				continue
			}
			rc, err := file.Open()
			if err != nil {
				return Manifest{}, err
			}
			raw, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return Manifest{}, err
			}
			return decodeManifest(a.Path+"!/"+name, raw, false)
		}
	}
	return Manifest{}, ErrResourceNotFound
}
