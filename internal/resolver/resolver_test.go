package resolver

import "testing"

func TestNewIndex(t *testing.T) {
	ix := NewIndex([]string{
		"test/test.js",
		"foo/bar.js",
		"foo/baz.js",
		"bar/bar.js",
	})
	if len(ix) != 3 {
		t.Errorf("expected 3 filenames, got %d", len(ix))
	}
	if len(ix["test.js"]) != 1 {
		t.Errorf("test.js dirs = %v", ix["test.js"])
	}
	if len(ix["bar.js"]) != 2 {
		t.Errorf("bar.js dirs = %v", ix["bar.js"])
	}
	if ix.Contains("missing.js") {
		t.Error("unexpected filename in index")
	}
}

func TestResolveSingleCandidate(t *testing.T) {
	ix := NewIndex([]string{"foo/static/app.js"})
	got, ok := ix.Resolve("bar", "/anywhere/app.js")
	if !ok || got != "foo/static/app.js" {
		t.Errorf("got %q, %v", got, ok)
	}
}

func TestResolveUnknownFilename(t *testing.T) {
	ix := NewIndex([]string{"foo/static/app.js"})
	if _, ok := ix.Resolve("foo", "/static/missing.js"); ok {
		t.Error("expected not-found for unknown filename")
	}
}

func TestResolveSuffixPhase(t *testing.T) {
	ix := NewIndex([]string{
		"foo/assets/app.js",
		"bar/static/js/app.js",
		"bar/static/lib/app.js",
	})

	got, ok := ix.Resolve("bar", "/static/js/app.js")
	if !ok || got != "bar/static/js/app.js" {
		t.Errorf("got %q, %v", got, ok)
	}

	// The suffix phase operates on the reference's own dir, not the code dir.
	got, ok = ix.Resolve("foo", "/static/js/app.js")
	if !ok || got != "bar/static/js/app.js" {
		t.Errorf("got %q, %v", got, ok)
	}

	got, ok = ix.Resolve("foo", "/lib/app.js")
	if !ok || got != "bar/static/lib/app.js" {
		t.Errorf("got %q, %v", got, ok)
	}
}

func TestResolvePrefixPhase(t *testing.T) {
	ix := NewIndex([]string{
		"foo/assets/app.js",
		"bar/static/js/app.js",
		"bar/static/lib/app.js",
	})

	// No shared suffix: all candidates survive phase 1, proximity to the
	// referencing file decides.
	got, ok := ix.Resolve("foo", "/app.js")
	if !ok || got != "foo/assets/app.js" {
		t.Errorf("got %q, %v", got, ok)
	}
}

func TestResolveSuffixBeatsPrefix(t *testing.T) {
	ix := NewIndex([]string{
		"foo/static/js/app.js",
		"foo/static/lib/app.js",
	})
	got, ok := ix.Resolve("foo/pages", "/lib/app.js")
	if !ok || got != "foo/static/lib/app.js" {
		t.Errorf("got %q, %v", got, ok)
	}
}

func TestResolveTieBreak(t *testing.T) {
	ix := NewIndex([]string{
		"zeta/img/logo.png",
		"alpha/img/logo.png",
	})
	// Identical suffix and prefix scores: lexicographically smallest wins,
	// and repeatedly so.
	for i := 0; i < 3; i++ {
		got, ok := ix.Resolve("elsewhere", "/other/logo.png")
		if !ok || got != "alpha/img/logo.png" {
			t.Errorf("got %q, %v", got, ok)
		}
	}
}
