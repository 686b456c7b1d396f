package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"omnibust/internal/baseline"
	"omnibust/internal/bust"
	"omnibust/internal/engine"
	"omnibust/internal/report"
	"omnibust/internal/resolver"
	"omnibust/internal/scanner"
)

// runFlags are shared by the commands that execute a scan.
type runFlags struct {
	dryRun         bool
	force          bool
	concurrency    int
	outputFormat   string
	outputFile     string
	baselinePath   string
	updateBaseline bool
	failOnMissing  bool
	timeout        time.Duration
}

func addRunFlags(cmd *cobra.Command, fl *runFlags) {
	cmd.Flags().BoolVar(&fl.dryRun, "dry-run", false, "Report changes without writing any file")
	cmd.Flags().BoolVar(&fl.force, "force", false, "Recompute tokens even when file timestamps are unchanged")
	cmd.Flags().IntVar(&fl.concurrency, "concurrency", 8, "Max concurrently scanned files")
	cmd.Flags().StringVarP(&fl.outputFormat, "format", "f", "text", "Output format: text or json")
	cmd.Flags().StringVarP(&fl.outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&fl.baselinePath, "baseline", "", "Path to a baseline of accepted missing references")
	cmd.Flags().BoolVar(&fl.updateBaseline, "update-baseline", false, "Write current missing references as the new baseline")
	cmd.Flags().BoolVar(&fl.failOnMissing, "fail-on-missing", false, "Exit with error if missing references are found")
	cmd.Flags().DurationVar(&fl.timeout, "timeout", 0, "Total operation timeout (e.g. 5m, 30s). 0 means no timeout")
}

// executeRun is the shared pipeline: enumerate, index, scan, report.
func executeRun(fl *runFlags, mode engine.Mode, targetKind scanner.Kind) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	if fl.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, fl.timeout)
		defer cancel()
	}
	start := time.Now()

	printStatus("Scanning project: %s", project)
	static, code, err := enumerate(project, cfg)
	if err != nil {
		return enhanceError("project scan", err)
	}
	printStatus("Found %d static assets, %d code files", len(static), len(code))

	buster, err := bust.New(cfg.HashFunction, cfg.HashLength)
	if err != nil {
		return err
	}

	eng := engine.New(buster, resolver.NewIndex(static), engine.Options{
		Mode:        mode,
		PlainKind:   kindFromTarget(cfg.Target),
		TargetKind:  targetKind,
		Force:       fl.force,
		DryRun:      fl.dryRun,
		Concurrency: fl.concurrency,
		Markers:     cfg.Multibust,
	})

	res, err := eng.Run(ctx, code)
	if err != nil {
		return err
	}

	if err := renderResult(res, fl); err != nil {
		return err
	}

	if err := compareBaseline(res, fl); err != nil {
		return err
	}

	slog.Info("Run complete",
		slog.Int("files_scanned", res.Summary.FilesScanned),
		slog.Int("refs_busted", res.Summary.RefsBusted),
		slog.Int("refs_missing", res.Summary.RefsMissing),
		slog.Duration("duration", time.Since(start)),
	)

	if fl.failOnMissing && res.Summary.RefsMissing > 0 {
		return fmt.Errorf("found %d missing references", res.Summary.RefsMissing)
	}
	return nil
}

func renderResult(res *engine.Result, fl *runFlags) error {
	if fl.outputFile == "" {
		return renderTo(os.Stdout, res, fl)
	}

	f, err := os.Create(fl.outputFile)
	if err != nil {
		return enhanceError("output file creation", err)
	}
	if err := renderTo(f, res, fl); err != nil {
		_ = f.Close()
		return err
	}
	// Close flushes; a full disk surfaces here, not as a silent success.
	return f.Close()
}

func renderTo(w io.Writer, res *engine.Result, fl *runFlags) error {
	reporter, err := report.New(fl.outputFormat, w)
	if err != nil {
		return err
	}
	return reporter.Report(report.Data{
		Tool:      "omnibust",
		Version:   GetVersion(),
		Timestamp: time.Now(),
		Root:      project,
		DryRun:    fl.dryRun,
		Config:    cfg,
		Result:    res,
	})
}

func compareBaseline(res *engine.Result, fl *runFlags) error {
	if fl.baselinePath == "" {
		return nil
	}

	current := baseline.FromResult(res)

	if prev, err := baseline.Load(fl.baselinePath); err == nil {
		diff := baseline.Compare(current, prev.Findings)
		slog.Info("Baseline comparison",
			slog.Int("new", len(diff.New)),
			slog.Int("resolved", len(diff.Resolved)),
			slog.Int("unchanged", len(diff.Unchanged)),
		)
	} else if !os.IsNotExist(err) || !fl.updateBaseline {
		return enhanceError("baseline load", err)
	}

	if fl.updateBaseline {
		if err := baseline.Save(fl.baselinePath, current); err != nil {
			return enhanceError("baseline write", err)
		}
		slog.Info("Updated baseline", slog.String("path", fl.baselinePath))
	}
	return nil
}
