package pathmatch

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher decides whether a path should be considered by a walk. It is built
// once from configuration and evaluated through Match; the zero value matches
// everything.
type Matcher struct {
	globs []string
	fn    func(string) bool
}

// New builds a matcher from glob patterns (doublestar syntax). A pattern
// without a separator is matched against the basename, so "*.js" matches
// "foo/bar.js".
func New(globs ...string) Matcher {
	return Matcher{globs: globs}
}

// NewFunc builds a matcher from an arbitrary predicate.
func NewFunc(fn func(string) bool) Matcher {
	return Matcher{fn: fn}
}

// IsZero reports whether the matcher has no patterns and no predicate.
func (m Matcher) IsZero() bool {
	return len(m.globs) == 0 && m.fn == nil
}

// Match reports whether p matches. A zero matcher matches every path.
func (m Matcher) Match(p string) bool {
	if m.fn != nil {
		return m.fn(p)
	}
	if len(m.globs) == 0 {
		return true
	}
	p = strings.ReplaceAll(p, "\\", "/")
	for _, g := range m.globs {
		if ok, err := doublestar.Match(g, p); err == nil && ok {
			return true
		}
		if !strings.Contains(g, "/") {
			if ok, err := doublestar.Match(g, path.Base(p)); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// MatchAny reports whether any of the path's components matches. Used for
// directory excludes such as ".git" or "*lib*", which apply anywhere in the
// tree.
func (m Matcher) MatchAny(p string) bool {
	if m.IsZero() {
		return false
	}
	if m.Match(p) {
		return true
	}
	p = strings.ReplaceAll(p, "\\", "/")
	for _, part := range strings.Split(p, "/") {
		if part == "" {
			continue
		}
		if m.Match(part) {
			return true
		}
	}
	return false
}
