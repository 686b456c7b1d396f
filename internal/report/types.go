// Package report renders run results for humans and for machines.
package report

import (
	"fmt"
	"io"
	"time"

	"omnibust/internal/engine"
)

// Data is everything a reporter needs to render one run.
type Data struct {
	Tool      string         `json:"tool"`
	Version   string         `json:"version"`
	Timestamp time.Time      `json:"timestamp"`
	Root      string         `json:"root"`
	DryRun    bool           `json:"dry_run,omitempty"`
	Config    any            `json:"config,omitempty"`
	Result    *engine.Result `json:"result"`
}

// Reporter renders run data to its output.
type Reporter interface {
	Report(data Data) error
}

// New selects a reporter by format name.
func New(format string, w io.Writer) (Reporter, error) {
	switch format {
	case "", "text":
		return NewTextReporter(w), nil
	case "json":
		return NewJSONReporter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q: use text or json", format)
	}
}
