package optid

import (
	"fmt"
	"strings"
)

// Separator joins the owner and the option path in the rendered identifier.
const Separator = ":"

// Identifier names option Path owned by module Owner. T carries the option's
// value type for callers and has no runtime representation.
type Identifier[T any] struct {
	Owner string
	Path  string
}

// NewIdentifier pairs owner and path without validating either.
func NewIdentifier[T any](owner, path string) Identifier[T] {
	return Identifier[T]{Owner: owner, Path: path}
}

// ParseIdentifier splits s at the first separator and validates the result.
func ParseIdentifier[T any](s string) (Identifier[T], error) {
	owner, path, ok := strings.Cut(s, Separator)
	if !ok {
		return Identifier[T]{}, fmt.Errorf("%w: %q has no owner separator", ErrInvalidIdentifier, s)
	}
	id := NewIdentifier[T](owner, path)
	if err := id.Validate(); err != nil {
		return Identifier[T]{}, err
	}
	return id, nil
}

// String renders the identifier as owner:path.
func (id Identifier[T]) String() string {
	return id.Owner + Separator + id.Path
}

// IsZero reports whether neither owner nor path is set.
func (id Identifier[T]) IsZero() bool {
	return id.Owner == "" && id.Path == ""
}

// Validate rejects identifiers that cannot round-trip through String.
func (id Identifier[T]) Validate() error {
	switch {
	case strings.TrimSpace(id.Owner) == "":
		return fmt.Errorf("%w: owner is required", ErrInvalidIdentifier)
	case strings.Contains(id.Owner, Separator):
		return fmt.Errorf("%w: owner %q contains %q", ErrInvalidIdentifier, id.Owner, Separator)
	case id.Path == "":
		return fmt.Errorf("%w: path is required", ErrInvalidIdentifier)
	}
	return nil
}

// Untyped drops the value type, e.g. to key heterogeneous option maps.
func (id Identifier[T]) Untyped() Identifier[any] {
	return Identifier[any]{Owner: id.Owner, Path: id.Path}
}

// MarshalText implements encoding.TextMarshaler.
func (id Identifier[T]) MarshalText() ([]byte, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identifier[T]) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentifier[T](string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
