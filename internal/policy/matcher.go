package policy

import (
	"fmt"

	"github.com/gobwas/glob"
)

// NameMatcher matches filenames against glob patterns. Patterns support
// wildcards and brace alternation ("*.{zip,tar.gz}") and are matched
// against the basename only, independent of directory.
type NameMatcher struct {
	patterns []glob.Glob
	raw      []string // original pattern strings, for error reporting
}

// NewNameMatcher compiles the given patterns. Returns an error if any
// pattern fails to compile.
func NewNameMatcher(patterns []string) (*NameMatcher, error) {
	m := &NameMatcher{
		patterns: make([]glob.Glob, 0, len(patterns)),
		raw:      make([]string, 0, len(patterns)),
	}

	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid file pattern %q: %w", p, err)
		}
		m.patterns = append(m.patterns, g)
		m.raw = append(m.raw, p)
	}

	return m, nil
}

// Match checks if name matches any pattern. Empty patterns means nothing
// matches.
func (m *NameMatcher) Match(name string) bool {
	for _, pat := range m.patterns {
		if pat.Match(name) {
			return true
		}
	}
	return false
}

// Patterns returns the original pattern strings.
func (m *NameMatcher) Patterns() []string {
	return append([]string{}, m.raw...)
}
