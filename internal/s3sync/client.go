// Package s3sync uploads busted static assets to an S3 bucket serving as a
// CDN origin.
package s3sync

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client wraps the AWS S3 client with retry handling for transient errors.
type Client struct {
	s3Client *s3.Client
	region   string
}

// NewClient loads shared AWS configuration, honoring an optional named
// profile and region override.
func NewClient(ctx context.Context, profile, region string) (*Client, error) {
	opts := []func(*config.LoadOptions) error{}

	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		s3Client: s3.NewFromConfig(cfg),
		region:   cfg.Region,
	}, nil
}

// Region returns the resolved region.
func (c *Client) Region() string {
	return c.region
}

// WithRetry wraps an S3 operation with exponential backoff for transient
// errors.
func (c *Client) WithRetry(ctx context.Context, operation func() error) error {
	const maxRetries = 3
	const baseDelay = 1 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}
		if !isRetryableError(err) {
			return err
		}
		lastErr = err

		if attempt < maxRetries-1 {
			delay := time.Duration(math.Pow(2, float64(attempt))) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	retryableErrors := []string{
		"RequestLimitExceeded",
		"ServiceUnavailable",
		"SlowDown",
		"RequestTimeout",
		"TooManyRequests",
		"InternalError",
		"503",
		"429",
	}
	for _, retryable := range retryableErrors {
		if strings.Contains(errStr, retryable) {
			return true
		}
	}
	return false
}
