package s3sync

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultCacheControl suits busted assets: the token in the URL changes when
// the content does, so the object itself can be cached forever.
const DefaultCacheControl = "public, max-age=31536000, immutable"

// Options configures an upload run.
type Options struct {
	Bucket       string
	Prefix       string
	CacheControl string
	Concurrency  int
	DryRun       bool
}

// Summary totals one upload run.
type Summary struct {
	Uploaded int `json:"uploaded"`
	Failed   int `json:"failed"`
}

// Uploader copies local static files into the configured bucket.
type Uploader struct {
	client *Client
	opts   Options
}

func NewUploader(client *Client, opts Options) (*Uploader, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("sync requires a bucket")
	}
	if opts.CacheControl == "" {
		opts.CacheControl = DefaultCacheControl
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	return &Uploader{client: client, opts: opts}, nil
}

// Upload puts every path under root into the bucket, keyed by prefix plus
// the path relative to root. Individual failures are counted and logged;
// the run continues.
func (u *Uploader) Upload(ctx context.Context, root string, paths []string) Summary {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		summary   Summary
		semaphore = make(chan struct{}, u.opts.Concurrency)
	)

	for _, p := range paths {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			err := u.uploadOne(ctx, root, p)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				slog.Warn("Upload failed", "path", p, "error", err)
				summary.Failed++
				return
			}
			summary.Uploaded++
		}(p)
	}

	wg.Wait()
	return summary
}

func (u *Uploader) uploadOne(ctx context.Context, root, p string) error {
	key, err := Key(u.opts.Prefix, root, p)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(p)
	if err != nil {
		return err
	}

	if u.opts.DryRun {
		slog.Info("Would upload", "path", p, "key", key)
		return nil
	}

	slog.Debug("Uploading", "path", p, "bucket", u.opts.Bucket, "key", key)
	return u.client.WithRetry(ctx, func() error {
		_, err := u.client.s3Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:       aws.String(u.opts.Bucket),
			Key:          aws.String(key),
			Body:         bytes.NewReader(data),
			ContentType:  aws.String(ContentType(p)),
			CacheControl: aws.String(u.opts.CacheControl),
		})
		return err
	})
}

// Key maps a local path to its object key: the prefix joined with the path
// relative to the sync root, always slash-separated.
func Key(prefix, root, p string) (string, error) {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	if strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside the sync root %s", p, root)
	}
	return path.Join(prefix, rel), nil
}

// ContentType guesses an asset's MIME type from its extension.
func ContentType(p string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(p))); t != "" {
		return t
	}
	return "application/octet-stream"
}
