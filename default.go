package optid

import (
	"context"
	"fmt"
	"sync"
)

var (
	defaultOnce      sync.Once
	defaultGenerator *Generator
	defaultErr       error
)

// Install makes g the process default used by GenerateID. It must run before
// the first GenerateID or Default call; afterwards it returns
// ErrAlreadyInstalled.
func Install(g *Generator) error {
	if g == nil {
		return fmt.Errorf("optid: install: nil generator")
	}
	installed := false
	defaultOnce.Do(func() {
		defaultGenerator = g
		installed = true
	})
	if !installed {
		return ErrAlreadyInstalled
	}
	return nil
}

// Default returns the process default generator, building it from the
// environment on first use when nothing was installed. The index is built
// once and shared by every later caller.
func Default() (*Generator, error) {
	defaultOnce.Do(func() {
		cfg, err := LoadConfig()
		if err != nil {
			defaultErr = err
			return
		}
		defaultGenerator, defaultErr = NewFromConfig(context.Background(), cfg)
	})
	return defaultGenerator, defaultErr
}

// GenerateID attributes path using the process default generator.
func GenerateID[T any](path string) (Identifier[T], bool) {
	g, err := Default()
	if err != nil || g == nil {
		return Identifier[T]{}, false
	}
	return Generate[T](g, path)
}
