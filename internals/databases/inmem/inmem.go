// Package inmem holds map-backed repositories for service tests. They keep
// the uniqueness rules of the real schema and return the same typed errors.
package inmem

import "sync"

func page[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

// failures lets a test inject errors per call site.
type failures struct {
	mu sync.Mutex
	fn map[string]func() error
}

func (f *failures) set(op string, fn func() error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fn == nil {
		f.fn = map[string]func() error{}
	}
	f.fn[op] = fn
}

func (f *failures) check(op string) error {
	f.mu.Lock()
	fn := f.fn[op]
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn()
}
