package optid

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// LocationPath translates a code location into the filesystem path used as an
// Origin Index key. Accepted forms:
//
//	file:///mods/foo/           -> /mods/foo
//	jar:file:/mods/foo.jar!/    -> /mods/foo.jar
//	/mods/foo                   -> /mods/foo
func LocationPath(location string) (string, error) {
	if location == "" {
		return "", ErrNoLocation
	}
	if filepath.IsAbs(location) {
		return filepath.Clean(location), nil
	}
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedLocation, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "file":
		p := u.Path
		if p == "" {
			p = u.Opaque
		}
		if p == "" {
			return "", fmt.Errorf("%w: %q has no path", ErrMalformedLocation, location)
		}
		return filepath.Clean(filepath.FromSlash(p)), nil
	case "jar", "zip":
		inner := u.Opaque
		if idx := strings.Index(inner, "!/"); idx >= 0 {
			inner = inner[:idx]
		}
		if !strings.HasPrefix(strings.ToLower(inner), "file:") {
			return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, location)
		}
		return LocationPath(inner)
	case "":
		return "", fmt.Errorf("%w: %q is not absolute", ErrMalformedLocation, location)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

// FileLocation renders path as a file URI.
func FileLocation(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

func normalizeRoot(path string) string {
	if path == "" {
		return ""
	}
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	}
	return filepath.Clean(path)
}
