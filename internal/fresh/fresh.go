// Package fresh provides a request-scoped fresh-type-variable generator.
// Each pipeline run owns exactly one Source; no package-level mutable
// counter is shared across runs, so concurrent compilations (one per
// module, see types.Env) never collide.
package fresh

import "fmt"

// Source hands out strictly increasing variable names. The zero value is
// ready to use.
type Source struct {
	n      int
	prefix string
}

// NewSource creates a Source whose names are prefix followed by a
// monotonic counter, e.g. NewSource("t") yields t1, t2, t3, ...
func NewSource(prefix string) *Source {
	if prefix == "" {
		prefix = "t"
	}
	return &Source{prefix: prefix}
}

// Next returns the next fresh variable name.
func (s *Source) Next() string {
	s.n++
	return fmt.Sprintf("%s%d", s.prefix, s.n)
}

// Count returns how many names have been handed out so far.
func (s *Source) Count() int { return s.n }
