package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"omnibust/internal/engine"
)

func sampleData() Data {
	return Data{
		Tool:      "omnibust",
		Version:   "test",
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Root:      "/project",
		Result: &engine.Result{
			Files: []engine.FileResult{
				{
					Path: "/project/page.html",
					Changes: []engine.Change{
						{Line: 3, Old: "static/app.js", New: "static/app.js?_cb_=abcd2345", Status: engine.StatusBusted},
						{Line: 7, Old: "static/gone_cb_00000000.js", Status: engine.StatusMissing},
					},
					Rewritten: true,
				},
				{Path: "/project/broken.html", Err: "permission denied"},
			},
			Summary: engine.Summary{
				FilesScanned: 2, FilesChanged: 1, FilesSkipped: 1,
				RefsFound: 2, RefsBusted: 1, RefsMissing: 1,
			},
		},
	}
}

func TestTextReport(t *testing.T) {
	var buf bytes.Buffer
	if err := NewTextReporter(&buf).Report(sampleData()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{
		"/project/page.html",
		"static/app.js?_cb_=abcd2345",
		"missing",
		"skipped (permission denied)",
		"1 busted",
		"1 missing",
		"1 files changed",
		"1 files skipped",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("color codes emitted for non-terminal writer")
	}
}

func TestTextReportDryRun(t *testing.T) {
	var buf bytes.Buffer
	data := sampleData()
	data.DryRun = true
	if err := NewTextReporter(&buf).Report(data); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "Dry run") {
		t.Errorf("dry run note missing:\n%s", buf.String())
	}
}

func TestJSONReport(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONReporter(&buf).Report(sampleData()); err != nil {
		t.Fatal(err)
	}

	var decoded Data
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.Tool != "omnibust" || decoded.Result == nil {
		t.Errorf("round trip lost fields: %+v", decoded)
	}
	if decoded.Result.Summary.RefsBusted != 1 {
		t.Errorf("summary not preserved: %+v", decoded.Result.Summary)
	}
}

func TestNewSelectsFormat(t *testing.T) {
	var buf bytes.Buffer
	if _, err := New("text", &buf); err != nil {
		t.Error(err)
	}
	if _, err := New("json", &buf); err != nil {
		t.Error(err)
	}
	if _, err := New("", &buf); err != nil {
		t.Error(err)
	}
	if _, err := New("xml", &buf); err == nil {
		t.Error("expected error for unknown format")
	}
}
