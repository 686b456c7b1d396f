// Package walker enumerates candidate files under the configured project
// roots, applying the include/exclude matchers built from configuration.
package walker

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"omnibust/internal/pathmatch"
)

// DefaultMaxFileSize skips files unlikely to be text or hashable assets worth
// scanning inline.
const DefaultMaxFileSize = 10 * 1024 * 1024

// Options controls one enumeration pass.
type Options struct {
	Roots       []string
	FileFilter  pathmatch.Matcher
	FileExclude pathmatch.Matcher
	DirExclude  pathmatch.Matcher
	MaxFileSize int64
}

// Walk returns the matching file paths under every root, sorted for
// deterministic downstream ordering. A missing root is skipped with a debug
// log rather than failing the run.
func Walk(opts Options) ([]string, error) {
	maxSize := opts.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	seen := make(map[string]struct{})
	var paths []string

	for _, root := range opts.Roots {
		if _, err := os.Stat(root); err != nil {
			slog.Debug("Skipping missing root", "root", root, "error", err)
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				slog.Debug("Walk error, skipping", "path", path, "error", err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				// Excludes apply below the root only; a project living under
				// /var/lib must not be excluded by a "lib" ignore glob.
				if path != root {
					if rel, relErr := filepath.Rel(root, path); relErr == nil &&
						opts.DirExclude.MatchAny(filepath.ToSlash(rel)) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			rel := filepath.ToSlash(path)
			if !opts.FileExclude.IsZero() && opts.FileExclude.Match(rel) {
				return nil
			}
			if !opts.FileFilter.Match(rel) {
				return nil
			}
			if info, err := d.Info(); err != nil || info.Size() > maxSize {
				return nil
			}
			if _, dup := seen[path]; !dup {
				seen[path] = struct{}{}
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(paths)
	return paths, nil
}

// Partition splits paths into static-asset and code candidates by extension
// allow-lists. A file such as a .css can be both: it is a bustable asset and
// may itself contain references.
func Partition(paths, staticExts, codeExts []string) (static, code []string) {
	staticSet := extSet(staticExts)
	codeSet := extSet(codeExts)
	for _, p := range paths {
		ext := strings.ToLower(filepath.Ext(p))
		if _, ok := staticSet[ext]; ok {
			static = append(static, p)
		}
		if _, ok := codeSet[ext]; ok {
			code = append(code, p)
		}
	}
	return static, code
}

func extSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(e, "*"))
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = struct{}{}
	}
	return set
}
