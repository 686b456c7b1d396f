package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"omnibust/internal/s3sync"
)

var syncFlags struct {
	bucket      string
	prefix      string
	region      string
	profile     string
	dryRun      bool
	concurrency int
	timeout     time.Duration
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Upload static assets to the configured S3 bucket",
	Long: `Uploads every static asset to an S3 bucket serving as CDN origin, keyed by
its path relative to the project directory. Busted URLs change when content
does, so objects are uploaded with a long-lived cache-control header.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncFlags.bucket, "bucket", "", "Target bucket (overrides sync.bucket)")
	syncCmd.Flags().StringVar(&syncFlags.prefix, "prefix", "", "Key prefix (overrides sync.prefix)")
	syncCmd.Flags().StringVar(&syncFlags.region, "region", "", "AWS region (overrides sync.region)")
	syncCmd.Flags().StringVar(&syncFlags.profile, "profile", "", "AWS profile (overrides sync.profile)")
	syncCmd.Flags().BoolVar(&syncFlags.dryRun, "dry-run", false, "List uploads without performing them")
	syncCmd.Flags().IntVar(&syncFlags.concurrency, "concurrency", 8, "Max concurrent uploads")
	syncCmd.Flags().DurationVar(&syncFlags.timeout, "timeout", 0, "Total operation timeout. 0 means no timeout")
}

func runSync(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	applyConfigToSyncFlags(cmd)

	ctx := context.Background()
	if syncFlags.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, syncFlags.timeout)
		defer cancel()
	}

	printStatus("Scanning project: %s", project)
	static, _, err := enumerate(project, cfg)
	if err != nil {
		return enhanceError("project scan", err)
	}
	printStatus("Found %d static assets", len(static))

	client, err := s3sync.NewClient(ctx, syncFlags.profile, syncFlags.region)
	if err != nil {
		return enhanceError("S3 client initialization", err)
	}

	uploader, err := s3sync.NewUploader(client, s3sync.Options{
		Bucket:       syncFlags.bucket,
		Prefix:       syncFlags.prefix,
		CacheControl: cfg.Sync.CacheControl,
		Concurrency:  syncFlags.concurrency,
		DryRun:       syncFlags.dryRun,
	})
	if err != nil {
		return err
	}

	summary := uploader.Upload(ctx, project, static)
	slog.Info("Sync complete",
		slog.String("bucket", syncFlags.bucket),
		slog.String("region", client.Region()),
		slog.Int("uploaded", summary.Uploaded),
		slog.Int("failed", summary.Failed),
	)
	if summary.Failed > 0 {
		return fmt.Errorf("%d uploads failed", summary.Failed)
	}
	return nil
}

func applyConfigToSyncFlags(cmd *cobra.Command) {
	if !cmd.Flags().Lookup("bucket").Changed && cfg.Sync.Bucket != "" {
		syncFlags.bucket = cfg.Sync.Bucket
	}
	if !cmd.Flags().Lookup("prefix").Changed && cfg.Sync.Prefix != "" {
		syncFlags.prefix = cfg.Sync.Prefix
	}
	if !cmd.Flags().Lookup("region").Changed && cfg.Sync.Region != "" {
		syncFlags.region = cfg.Sync.Region
	}
	if !cmd.Flags().Lookup("profile").Changed && cfg.Sync.Profile != "" {
		syncFlags.profile = cfg.Sync.Profile
	}
}
