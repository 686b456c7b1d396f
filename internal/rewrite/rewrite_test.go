package rewrite

import (
	"errors"
	"testing"

	"omnibust/internal/scanner"
)

var (
	plainRef = scanner.Reference{
		SourceDir: "foo/static", SourceFile: "test.html", Line: 123,
		FullText: "/static/app.js",
		Path:     "/static/app.js",
		Kind:     scanner.KindPlain,
	}
	qsRef = scanner.Reference{
		SourceDir: "bar/static", SourceFile: "test.html", Line: 123,
		FullText: "/static/app.js?_cb_=123456&a=b",
		Path:     "/static/app.js",
		BustCode: "123456",
		Kind:     scanner.KindQuery,
	}
	fnRef = scanner.Reference{
		SourceDir: "assets/baz", SourceFile: "test.html", Line: 123,
		FullText: "/static/app_cb_123456.js?foo=12&bar=34",
		Path:     "/static/app.js",
		BustCode: "123456",
		Kind:     scanner.KindFilename,
	}
)

func TestPlainText(t *testing.T) {
	cases := []struct {
		ref  scanner.Reference
		want string
	}{
		{plainRef, "/static/app.js"},
		{qsRef, "/static/app.js?a=b"},
		{fnRef, "/static/app.js?foo=12&bar=34"},
	}
	for _, c := range cases {
		got, err := PlainText(c.ref)
		if err != nil {
			t.Errorf("PlainText(%s): %v", c.ref.Kind, err)
			continue
		}
		if got != c.want {
			t.Errorf("PlainText(%s) = %q, want %q", c.ref.Kind, got, c.want)
		}
	}
}

func TestPlainTextStripsLoneQuery(t *testing.T) {
	ref := scanner.Reference{
		FullText: "/static/app.js?_cb_=123",
		Path:     "/static/app.js",
		BustCode: "123",
		Kind:     scanner.KindQuery,
	}
	got, err := PlainText(ref)
	if err != nil {
		t.Fatal(err)
	}
	if got != "/static/app.js" {
		t.Errorf("got %q", got)
	}
}

func TestRewriteToFilename(t *testing.T) {
	cases := []struct {
		ref  scanner.Reference
		want string
	}{
		{plainRef, "/static/app_cb_abcdef.js"},
		{qsRef, "/static/app_cb_abcdef.js?a=b"},
		{fnRef, "/static/app_cb_abcdef.js?foo=12&bar=34"},
	}
	for _, c := range cases {
		got, err := Rewrite(c.ref, "abcdef", scanner.KindFilename)
		if err != nil {
			t.Errorf("Rewrite(%s -> filename): %v", c.ref.Kind, err)
			continue
		}
		if got != c.want {
			t.Errorf("Rewrite(%s -> filename) = %q, want %q", c.ref.Kind, got, c.want)
		}
	}
}

func TestRewriteToQuery(t *testing.T) {
	cases := []struct {
		ref  scanner.Reference
		want string
	}{
		{plainRef, "/static/app.js?_cb_=abcdef"},
		{qsRef, "/static/app.js?_cb_=abcdef&a=b"},
		{fnRef, "/static/app.js?_cb_=abcdef&foo=12&bar=34"},
	}
	for _, c := range cases {
		got, err := Rewrite(c.ref, "abcdef", scanner.KindQuery)
		if err != nil {
			t.Errorf("Rewrite(%s -> querystring): %v", c.ref.Kind, err)
			continue
		}
		if got != c.want {
			t.Errorf("Rewrite(%s -> querystring) = %q, want %q", c.ref.Kind, got, c.want)
		}
	}
}

func TestRewriteSameKind(t *testing.T) {
	got, err := Rewrite(fnRef, "abcdef", scanner.KindFilename)
	if err != nil {
		t.Fatal(err)
	}
	if got != "/static/app_cb_abcdef.js?foo=12&bar=34" {
		t.Errorf("got %q", got)
	}

	got, err = Rewrite(qsRef, "abcdef", scanner.KindQuery)
	if err != nil {
		t.Fatal(err)
	}
	if got != "/static/app.js?_cb_=abcdef&a=b" {
		t.Errorf("got %q", got)
	}
}

func TestRewriteDebust(t *testing.T) {
	got, err := Rewrite(qsRef, "", scanner.KindPlain)
	if err != nil {
		t.Fatal(err)
	}
	if got != "/static/app.js?a=b" {
		t.Errorf("got %q", got)
	}

	got, err = Rewrite(fnRef, "", scanner.KindPlain)
	if err != nil {
		t.Fatal(err)
	}
	if got != "/static/app.js?foo=12&bar=34" {
		t.Errorf("got %q", got)
	}
}

func TestRewriteUnchanged(t *testing.T) {
	if _, err := Rewrite(qsRef, "123456", scanner.KindQuery); !errors.Is(err, ErrUnchanged) {
		t.Errorf("expected ErrUnchanged, got %v", err)
	}
	if _, err := Rewrite(fnRef, "123456", scanner.KindFilename); !errors.Is(err, ErrUnchanged) {
		t.Errorf("expected ErrUnchanged, got %v", err)
	}
	if _, err := Rewrite(plainRef, "zzz", scanner.KindPlain); !errors.Is(err, ErrUnchanged) {
		t.Errorf("expected ErrUnchanged, got %v", err)
	}
}

func TestRewriteRoundTrip(t *testing.T) {
	// Converting to querystring and back to the original kind with the
	// original token restores the original text, for all three kinds.
	for _, ref := range []scanner.Reference{plainRef, qsRef, fnRef} {
		mid, err := Rewrite(ref, "tmptok", scanner.KindQuery)
		if ref.Kind == scanner.KindQuery {
			// Same-kind path: token substitution only.
			if err != nil {
				t.Fatalf("round trip %s: %v", ref.Kind, err)
			}
		} else if err != nil {
			t.Fatalf("round trip %s: %v", ref.Kind, err)
		}

		parsed, err := scanner.ParseMarked(mid)
		if err != nil {
			t.Fatalf("round trip %s: %v", ref.Kind, err)
		}
		if len(parsed) != 1 {
			t.Fatalf("round trip %s: intermediate %q parsed to %d refs", ref.Kind, mid, len(parsed))
		}
		back, err := Rewrite(parsed[0], ref.BustCode, ref.Kind)
		if err != nil {
			t.Fatalf("round trip %s: %v", ref.Kind, err)
		}
		if back != ref.FullText {
			t.Errorf("round trip %s: got %q, want %q", ref.Kind, back, ref.FullText)
		}
	}
}

func TestRewriteContractViolation(t *testing.T) {
	// A filename-kind reference whose text lacks the marker was not produced
	// by the parser; the rewriter must refuse rather than corrupt text.
	bad := scanner.Reference{
		FullText: "/static/app.js",
		Path:     "/static/app.js",
		BustCode: "123456",
		Kind:     scanner.KindFilename,
	}
	if _, err := Rewrite(bad, "abcdef", scanner.KindQuery); err == nil {
		t.Error("expected contract error")
	}
}
