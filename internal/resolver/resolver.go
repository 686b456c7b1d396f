// Package resolver maps the textual path of a parsed reference to the static
// file it most plausibly denotes. A reference's written path is usually
// web-root-relative rather than a filesystem path, and the same filename can
// live in several asset directories, so resolution is a textual-locality
// heuristic over the known static files rather than a filesystem probe.
package resolver

import (
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// Index maps a static filename (case-sensitive) to the sorted set of
// directories containing a file of that name. Built once per scan and
// read-only afterward. A filename is never present with zero directories.
type Index map[string][]string

// NewIndex builds an index from the enumerated static file paths.
func NewIndex(staticPaths []string) Index {
	dirSets := make(map[string]map[string]struct{})
	for _, p := range staticPaths {
		p = filepath.ToSlash(p)
		dir, file := path.Split(p)
		if file == "" {
			continue
		}
		dir = strings.TrimSuffix(dir, "/")
		set, ok := dirSets[file]
		if !ok {
			set = make(map[string]struct{})
			dirSets[file] = set
		}
		set[dir] = struct{}{}
	}

	ix := make(Index, len(dirSets))
	for file, set := range dirSets {
		dirs := make([]string, 0, len(set))
		for d := range set {
			dirs = append(dirs, d)
		}
		sort.Strings(dirs)
		ix[file] = dirs
	}
	return ix
}

// Contains reports whether any static file with the given name exists.
func (ix Index) Contains(filename string) bool {
	return len(ix[filename]) > 0
}

// Resolve picks the static file refPath denotes, given the directory of the
// referencing source file. Disambiguation between candidate directories runs
// in two phases: first the longest trailing component run shared with the
// reference's own directory portion (no shared suffix keeps all candidates),
// then the longest leading component run shared with the referencing file's
// directory. A remaining tie goes to the lexicographically smallest directory
// so resolution is stable across runs. Returns false when the filename is
// unknown.
func (ix Index) Resolve(codeDir, refPath string) (string, bool) {
	refPath = filepath.ToSlash(refPath)
	refDir, filename := path.Split(refPath)

	dirs := ix[filename]
	if len(dirs) == 0 {
		return "", false
	}
	if len(dirs) == 1 {
		return path.Join(dirs[0], filename), true
	}

	refComps := components(refDir)
	codeComps := components(filepath.ToSlash(codeDir))

	candidates := phase(dirs, func(dir []string) int {
		return suffixLen(dir, refComps)
	})
	candidates = phase(candidates, func(dir []string) int {
		return prefixLen(dir, codeComps)
	})

	// candidates inherit the index's sorted order, so the first one is the
	// lexicographic tie-break.
	return path.Join(candidates[0], filename), true
}

// phase keeps the candidates scoring highest under score. A uniform score of
// zero keeps everything.
func phase(dirs []string, score func([]string) int) []string {
	best := 0
	scores := make([]int, len(dirs))
	for i, d := range dirs {
		scores[i] = score(components(d))
		if scores[i] > best {
			best = scores[i]
		}
	}
	if best == 0 {
		return dirs
	}
	var kept []string
	for i, d := range dirs {
		if scores[i] == best {
			kept = append(kept, d)
		}
	}
	return kept
}

func suffixLen(dir, ref []string) int {
	n := 0
	for n < len(dir) && n < len(ref) {
		if dir[len(dir)-1-n] != ref[len(ref)-1-n] {
			break
		}
		n++
	}
	return n
}

func prefixLen(dir, code []string) int {
	n := 0
	for n < len(dir) && n < len(code) {
		if dir[n] != code[n] {
			break
		}
		n++
	}
	return n
}

func components(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
