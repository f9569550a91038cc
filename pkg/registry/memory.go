package registry

import (
	"context"
	"sync"
)

// MemoryRegistry is a minimal in-memory Registry intended for tests, examples
// and hosts that already hold their module list. Modules are reported in
// registration order.
type MemoryRegistry struct {
	mu      sync.RWMutex
	records []ModuleRecord
}

func NewMemoryRegistry(records ...ModuleRecord) *MemoryRegistry {
	r := &MemoryRegistry{}
	for _, record := range records {
		r.Register(record)
	}
	return r
}

// Register appends record. The record is copied so later mutations by the
// caller are not observed.
func (r *MemoryRegistry) Register(record ModuleRecord) {
	r.mu.Lock()
	r.records = append(r.records, record.clone())
	r.mu.Unlock()
}

func (r *MemoryRegistry) Modules(_ context.Context) ([]ModuleRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ModuleRecord, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record.clone())
	}
	return out, nil
}

// Len returns the number of registered records.
func (r *MemoryRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// StaticArchive is an Archive whose root is already known. An empty Root
// reports ErrResourceNotFound.
type StaticArchive struct {
	Root string
}

func (a StaticArchive) FindResource(name string) (string, error) {
	if a.Root == "" || name != "/" {
		return "", ErrResourceNotFound
	}
	return a.Root, nil
}
