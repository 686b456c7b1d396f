package s3sync

import (
	"errors"
	"strings"
	"testing"
)

func TestKey(t *testing.T) {
	cases := []struct {
		prefix, root, path string
		want               string
	}{
		{"", "/proj", "/proj/static/app.js", "static/app.js"},
		{"assets", "/proj", "/proj/static/app.js", "assets/static/app.js"},
		{"assets/v2", "/proj/static", "/proj/static/img/logo.png", "assets/v2/img/logo.png"},
		{"", "/proj", "/proj/app.js", "app.js"},
	}
	for _, c := range cases {
		got, err := Key(c.prefix, c.root, c.path)
		if err != nil {
			t.Errorf("Key(%q, %q, %q): %v", c.prefix, c.root, c.path, err)
			continue
		}
		if got != c.want {
			t.Errorf("Key(%q, %q, %q) = %q, want %q", c.prefix, c.root, c.path, got, c.want)
		}
	}
}

func TestKeyOutsideRoot(t *testing.T) {
	if _, err := Key("", "/proj/static", "/proj/other/app.js"); err == nil {
		t.Error("expected error for path outside root")
	}
}

func TestContentType(t *testing.T) {
	cases := map[string]string{
		"app.css":  "text/css",
		"logo.png": "image/png",
		"data.bin": "application/octet-stream",
	}
	for p, want := range cases {
		if got := ContentType(p); !strings.HasPrefix(got, want) {
			t.Errorf("ContentType(%q) = %q, want prefix %q", p, got, want)
		}
	}
}

func TestNewUploaderValidation(t *testing.T) {
	if _, err := NewUploader(nil, Options{}); err == nil {
		t.Error("expected error without bucket")
	}
	u, err := NewUploader(nil, Options{Bucket: "cdn"})
	if err != nil {
		t.Fatal(err)
	}
	if u.opts.CacheControl != DefaultCacheControl {
		t.Errorf("cache control default not applied: %q", u.opts.CacheControl)
	}
	if u.opts.Concurrency <= 0 {
		t.Errorf("concurrency default not applied: %d", u.opts.Concurrency)
	}
}

func TestIsRetryableError(t *testing.T) {
	if isRetryableError(nil) {
		t.Error("nil is not retryable")
	}
	if !isRetryableError(errors.New("api error SlowDown: reduce request rate")) {
		t.Error("SlowDown should be retryable")
	}
	if !isRetryableError(errors.New("https response error StatusCode: 503")) {
		t.Error("503 should be retryable")
	}
	if isRetryableError(errors.New("api error AccessDenied")) {
		t.Error("AccessDenied must not be retried")
	}
}
