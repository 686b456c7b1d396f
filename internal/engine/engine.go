// Package engine drives a bust run: it walks each code file through
// parse -> expand -> resolve -> bust -> rewrite and applies the resulting
// edits, reading and writing every file at most once.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"omnibust/internal/bust"
	"omnibust/internal/expand"
	"omnibust/internal/resolver"
	"omnibust/internal/rewrite"
	"omnibust/internal/scanner"
)

// Mode selects which references a run touches.
type Mode int

const (
	// ModeUpdate refreshes tokens of references that are already busted.
	ModeUpdate Mode = iota
	// ModeRewrite additionally busts plain references.
	ModeRewrite
)

// Status classifies the outcome for one reference.
type Status string

const (
	StatusBusted    Status = "busted"
	StatusUnchanged Status = "unchanged"
	StatusMissing   Status = "missing"
)

// Change records the outcome for one reference in one file.
type Change struct {
	Line   int      `json:"line"`
	Old    string   `json:"old"`
	New    string   `json:"new,omitempty"`
	Status Status   `json:"status"`
	Paths  []string `json:"paths,omitempty"`
}

// FileResult aggregates the outcomes for one code file.
type FileResult struct {
	Path      string   `json:"path"`
	Changes   []Change `json:"changes,omitempty"`
	Rewritten bool     `json:"rewritten,omitempty"`
	Err       string   `json:"error,omitempty"`
}

// Summary totals one run.
type Summary struct {
	FilesScanned  int `json:"files_scanned"`
	FilesChanged  int `json:"files_changed"`
	FilesSkipped  int `json:"files_skipped"`
	RefsFound     int `json:"refs_found"`
	RefsBusted    int `json:"refs_busted"`
	RefsUnchanged int `json:"refs_unchanged"`
	RefsMissing   int `json:"refs_missing"`
}

// Result is the merged outcome of a run, ordered by file path and line.
type Result struct {
	Files   []FileResult `json:"files"`
	Summary Summary      `json:"summary"`
}

// Options configures a run.
type Options struct {
	Mode        Mode
	PlainKind   scanner.Kind // kind given to freshly busted plain references
	TargetKind  scanner.Kind // 0 keeps each marked reference's existing kind
	Force       bool         // recompute even when the fingerprint matches
	DryRun      bool         // report changes without writing files
	Concurrency int
	Markers     expand.Markers
}

// Engine holds the per-run collaborators: the static index built from this
// scan's enumeration and the token generator whose cache lives exactly as
// long as the run.
type Engine struct {
	buster *bust.Buster
	index  resolver.Index
	opts   Options
}

func New(buster *bust.Buster, index resolver.Index, opts Options) *Engine {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.PlainKind == 0 {
		opts.PlainKind = scanner.KindQuery
	}
	return &Engine{buster: buster, index: index, opts: opts}
}

// Run scans the given code files. Per-file read failures are recorded and
// skipped; a rewriter contract violation aborts the run. Cancellation stops
// launching new file scans and lets in-flight ones finish, yielding a smaller
// but valid result.
func (e *Engine) Run(ctx context.Context, codeFiles []string) (*Result, error) {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		results   []FileResult
		summary   Summary
		runErr    error
		semaphore = make(chan struct{}, e.opts.Concurrency)
	)

	for _, path := range codeFiles {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			res, err := e.processFile(path)

			mu.Lock()
			defer mu.Unlock()
			summary.FilesScanned++
			if err != nil {
				if runErr == nil {
					runErr = fmt.Errorf("%s: %w", path, err)
				}
				return
			}
			if res.Err != "" {
				summary.FilesSkipped++
			}
			for _, c := range res.Changes {
				summary.RefsFound++
				switch c.Status {
				case StatusBusted:
					summary.RefsBusted++
				case StatusUnchanged:
					summary.RefsUnchanged++
				case StatusMissing:
					summary.RefsMissing++
				}
			}
			if res.Rewritten {
				summary.FilesChanged++
			}
			if len(res.Changes) > 0 || res.Err != "" {
				results = append(results, res)
			}
		}(path)
	}

	wg.Wait()
	if runErr != nil {
		return nil, runErr
	}

	// Workers finish in arbitrary order; merge deterministically.
	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return &Result{Files: results, Summary: summary}, nil
}

// edit is one pending text replacement, located precisely so that
// overlapping reference texts on the same line can never clobber each other.
type edit struct {
	line, col int
	old, new  string
}

func (e *Engine) processFile(path string) (FileResult, error) {
	res := FileResult{Path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("Skipping unreadable file", "path", path, "error", err)
		res.Err = err.Error()
		return res, nil
	}
	content := string(raw)
	if strings.ContainsRune(content, 0) {
		slog.Debug("Skipping binary file", "path", path)
		return res, nil
	}

	var refs []scanner.Reference
	if e.opts.Mode == ModeRewrite {
		refs, err = scanner.ParseAll(content)
	} else {
		refs, err = scanner.ParseMarked(content)
	}
	if err != nil {
		slog.Warn("Skipping unparseable file", "path", path, "error", err)
		res.Err = err.Error()
		return res, nil
	}

	codeDir := filepath.Dir(path)
	var edits []edit

	for _, ref := range refs {
		ref.SourceDir = codeDir
		ref.SourceFile = filepath.Base(path)

		targetKind := ref.Kind
		if ref.Kind == scanner.KindPlain {
			targetKind = e.opts.PlainKind
		}
		if e.opts.TargetKind != 0 {
			targetKind = e.opts.TargetKind
		}

		paths := e.resolvePaths(codeDir, ref.Path)
		if len(paths) == 0 {
			if ref.Kind == scanner.KindPlain {
				// A plain match that resolves to nothing is just text that
				// looked like a path, not a finding.
				continue
			}
			slog.Debug("Missing static file", "path", path, "ref", ref.FullText)
			res.Changes = append(res.Changes, Change{
				Line: ref.Line, Old: ref.FullText, Status: StatusMissing,
			})
			continue
		}

		// Fingerprint fast path: an unchanged mtime on a single-path
		// reference means the token is current without reading content.
		if !e.opts.Force && targetKind == ref.Kind && ref.Kind != scanner.KindPlain && len(paths) == 1 {
			if fp, err := e.buster.Fingerprint(paths[0]); err == nil && fp != "" && strings.HasPrefix(ref.BustCode, fp) {
				res.Changes = append(res.Changes, Change{
					Line: ref.Line, Old: ref.FullText, Status: StatusUnchanged, Paths: paths,
				})
				continue
			}
		}

		token, err := e.buster.Token(paths)
		if err != nil {
			slog.Warn("Cannot bust reference", "path", path, "ref", ref.FullText, "error", err)
			res.Changes = append(res.Changes, Change{
				Line: ref.Line, Old: ref.FullText, Status: StatusMissing, Paths: paths,
			})
			continue
		}

		newText, err := rewrite.Rewrite(ref, token, targetKind)
		if err == rewrite.ErrUnchanged {
			res.Changes = append(res.Changes, Change{
				Line: ref.Line, Old: ref.FullText, Status: StatusUnchanged, Paths: paths,
			})
			continue
		}
		if err != nil {
			// Parser/rewriter contract violation: fail the run loudly
			// rather than risk corrupting source text.
			return res, err
		}

		edits = append(edits, edit{line: ref.Line, col: ref.Col, old: ref.FullText, new: newText})
		res.Changes = append(res.Changes, Change{
			Line: ref.Line, Old: ref.FullText, New: newText, Status: StatusBusted, Paths: paths,
		})
	}

	if len(edits) == 0 {
		return res, nil
	}

	updated, err := applyEdits(content, edits)
	if err != nil {
		return res, err
	}
	if updated == content {
		return res, nil
	}

	if !e.opts.DryRun {
		mode := os.FileMode(0644)
		if fi, err := os.Stat(path); err == nil {
			mode = fi.Mode()
		}
		if err := os.WriteFile(path, []byte(updated), mode); err != nil {
			slog.Warn("Cannot write file", "path", path, "error", err)
			res.Err = err.Error()
			return res, nil
		}
	}
	res.Rewritten = true
	return res, nil
}

// resolvePaths expands multibust markers and resolves every variant against
// the static index, returning the sorted, deduplicated concrete paths.
func (e *Engine) resolvePaths(codeDir, refPath string) []string {
	var resolved []string
	seen := make(map[string]struct{})
	for _, variant := range expand.Expand(refPath, e.opts.Markers) {
		p, ok := e.index.Resolve(codeDir, variant)
		if !ok {
			continue
		}
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			resolved = append(resolved, p)
		}
	}
	sort.Strings(resolved)
	return resolved
}

// applyEdits rewrites content by exact (line, column) spans, applying edits
// on each line right to left so earlier spans stay valid.
func applyEdits(content string, edits []edit) (string, error) {
	lines := strings.Split(content, "\n")
	sort.Slice(edits, func(i, j int) bool {
		if edits[i].line != edits[j].line {
			return edits[i].line < edits[j].line
		}
		return edits[i].col > edits[j].col
	})

	for _, ed := range edits {
		if ed.line < 1 || ed.line > len(lines) {
			return "", fmt.Errorf("edit out of range: line %d", ed.line)
		}
		line := lines[ed.line-1]
		if ed.col < 0 || ed.col+len(ed.old) > len(line) || line[ed.col:ed.col+len(ed.old)] != ed.old {
			return "", fmt.Errorf("edit mismatch at line %d: %q not found at column %d", ed.line, ed.old, ed.col)
		}
		lines[ed.line-1] = line[:ed.col] + ed.new + line[ed.col+len(ed.old):]
	}
	return strings.Join(lines, "\n"), nil
}
