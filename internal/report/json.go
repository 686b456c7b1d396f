package report

import (
	"encoding/json"
	"io"
)

// JSONReporter writes the run data as indented JSON, one document per run.
type JSONReporter struct {
	w io.Writer
}

func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{w: w}
}

func (r *JSONReporter) Report(data Data) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
