// Package baseline persists missing-reference findings between runs so a
// scan can report what changed since an accepted state.
package baseline

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"omnibust/internal/engine"
)

// Finding identifies one missing-reference problem. Line numbers are kept
// for display but excluded from identity so that unrelated edits moving a
// reference do not churn the diff.
type Finding struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Ref  string `json:"ref"`
}

// Key is the stable identity of a finding.
func (f Finding) Key() string {
	return f.File + "|" + f.Ref
}

// File is the on-disk baseline format.
type File struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Findings  []Finding `json:"findings"`
}

// Diff partitions current findings against a previous baseline.
type Diff struct {
	New       []Finding `json:"new"`
	Resolved  []Finding `json:"resolved"`
	Unchanged []Finding `json:"unchanged"`
}

// FromResult flattens a run result to its missing-reference findings,
// ordered by file then line.
func FromResult(res *engine.Result) []Finding {
	var findings []Finding
	for _, file := range res.Files {
		for _, c := range file.Changes {
			if c.Status != engine.StatusMissing {
				continue
			}
			findings = append(findings, Finding{File: file.Path, Line: c.Line, Ref: c.Old})
		}
	}
	sort.Slice(findings, func(i, j int) bool {
		if findings[i].File != findings[j].File {
			return findings[i].File < findings[j].File
		}
		return findings[i].Line < findings[j].Line
	})
	return findings
}

// Save writes the findings as a baseline file.
func Save(path string, findings []Finding) error {
	data, err := json.MarshalIndent(File{
		Version:   1,
		CreatedAt: time.Now().UTC(),
		Findings:  findings,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// Load reads a baseline file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse baseline %s: %w", path, err)
	}
	return f, nil
}

// Compare splits current findings into new and unchanged relative to
// previous, and collects previous findings no longer present as resolved.
func Compare(current, previous []Finding) Diff {
	prevKeys := make(map[string]struct{}, len(previous))
	for _, f := range previous {
		prevKeys[f.Key()] = struct{}{}
	}
	curKeys := make(map[string]struct{}, len(current))

	var diff Diff
	for _, f := range current {
		curKeys[f.Key()] = struct{}{}
		if _, ok := prevKeys[f.Key()]; ok {
			diff.Unchanged = append(diff.Unchanged, f)
		} else {
			diff.New = append(diff.New, f)
		}
	}
	for _, f := range previous {
		if _, ok := curKeys[f.Key()]; !ok {
			diff.Resolved = append(diff.Resolved, f)
		}
	}
	return diff
}
