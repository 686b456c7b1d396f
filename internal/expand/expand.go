// Package expand turns a reference path containing multibust markers into the
// set of concrete variant paths the reference stands for.
package expand

import (
	"sort"
	"strings"
)

// Markers maps a literal marker substring (e.g. "${lang}") to its replacement
// strings.
type Markers map[string][]string

// Expand returns the variant paths for refPath. The original path is always
// included, so a reference to a literal, unexpanded file still resolves. Each
// marker found in refPath contributes one path per replacement. The result is
// sorted and deduplicated.
func Expand(refPath string, markers Markers) []string {
	if len(markers) == 0 {
		return []string{refPath}
	}

	seen := map[string]struct{}{refPath: {}}
	for marker, replacements := range markers {
		if !strings.Contains(refPath, marker) {
			continue
		}
		for _, r := range replacements {
			seen[strings.ReplaceAll(refPath, marker, r)] = struct{}{}
		}
	}

	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
