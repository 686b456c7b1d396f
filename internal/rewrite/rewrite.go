// Package rewrite converts a parsed reference between token encodings and
// substitutes fresh bust tokens, leaving every unrelated character of the
// reference text untouched.
package rewrite

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"omnibust/internal/scanner"
)

// ErrUnchanged signals that the new token and kind match the existing ones,
// so the caller can skip a no-op file write.
var ErrUnchanged = errors.New("reference unchanged")

// PlainText recovers the reference text with the bust token and its delimiter
// stripped. Unrelated query parameters survive: a filename-embedded reference
// keeps its query tail verbatim, and a query-param reference keeps its other
// parameters.
func PlainText(ref scanner.Reference) (string, error) {
	switch ref.Kind {
	case scanner.KindPlain:
		return ref.FullText, nil
	case scanner.KindFilename:
		plain := strings.Replace(ref.FullText, scanner.Marker+ref.BustCode, "", 1)
		if plain == ref.FullText {
			return "", contractError(ref)
		}
		return plain, nil
	case scanner.KindQuery:
		token := scanner.Marker + "=" + ref.BustCode
		plain := ref.FullText
		switch {
		case strings.Contains(plain, "?"+token):
			plain = strings.Replace(plain, "?"+token, "?", 1)
		case strings.Contains(plain, "&"+token):
			plain = strings.Replace(plain, "&"+token, "", 1)
		case strings.Contains(plain, "?"+scanner.Marker):
			// Bare marker with no value.
			plain = strings.Replace(plain, "?"+scanner.Marker, "?", 1)
		case strings.Contains(plain, "&"+scanner.Marker):
			plain = strings.Replace(plain, "&"+scanner.Marker, "", 1)
		default:
			return "", contractError(ref)
		}
		plain = strings.Replace(plain, "?&", "?", 1)
		return strings.TrimSuffix(plain, "?"), nil
	default:
		return "", contractError(ref)
	}
}

// setFilenameToken returns the reference text with token embedded in the
// filename, between stem and extension.
func setFilenameToken(ref scanner.Reference, token string) (string, error) {
	plain, err := PlainText(ref)
	if err != nil {
		return "", err
	}
	dir, file := path.Split(ref.Path)
	ext := path.Ext(file)
	if ext == "" {
		return "", contractError(ref)
	}
	stem := strings.TrimSuffix(file, ext)
	busted := dir + stem + scanner.Marker + token + ext
	out := strings.Replace(plain, ref.Path, busted, 1)
	if out == plain {
		return "", contractError(ref)
	}
	return out, nil
}

// setQueryToken returns the reference text carrying token as the first _cb_
// query parameter, ahead of any pre-existing parameters.
func setQueryToken(ref scanner.Reference, token string) (string, error) {
	plain, err := PlainText(ref)
	if err != nil {
		return "", err
	}
	param := "?" + scanner.Marker + "=" + token
	if i := strings.Index(plain, "?"); i >= 0 {
		return plain[:i] + param + "&" + plain[i+1:], nil
	}
	return plain + param, nil
}

// replaceToken substitutes the token in place for a same-kind update.
func replaceToken(ref scanner.Reference, token string) (string, error) {
	var marker string
	switch ref.Kind {
	case scanner.KindFilename:
		marker = scanner.Marker
	case scanner.KindQuery:
		marker = scanner.Marker + "="
		if ref.BustCode == "" && !strings.Contains(ref.FullText, marker) {
			// Bare "_cb_" parameter with no value.
			out := strings.Replace(ref.FullText, scanner.Marker, marker+token, 1)
			return out, nil
		}
	default:
		return "", contractError(ref)
	}
	out := strings.Replace(ref.FullText, marker+ref.BustCode, marker+token, 1)
	if out == ref.FullText && ref.BustCode != token {
		return "", contractError(ref)
	}
	return out, nil
}

// Rewrite converts ref to targetKind carrying token and returns the new
// reference text. If the token and kind are both unchanged it returns
// ErrUnchanged. Inputs that were not produced by the parser are a contract
// violation and fail loudly rather than corrupting text.
func Rewrite(ref scanner.Reference, token string, targetKind scanner.Kind) (string, error) {
	if targetKind == ref.Kind {
		if targetKind == scanner.KindPlain {
			return "", ErrUnchanged
		}
		if token == ref.BustCode {
			return "", ErrUnchanged
		}
		return replaceToken(ref, token)
	}

	switch targetKind {
	case scanner.KindPlain:
		return PlainText(ref)
	case scanner.KindFilename:
		return setFilenameToken(ref, token)
	case scanner.KindQuery:
		return setQueryToken(ref, token)
	default:
		return "", fmt.Errorf("unknown target kind %d", targetKind)
	}
}

func contractError(ref scanner.Reference) error {
	return fmt.Errorf("malformed %s reference %q: inconsistent with parser contract", ref.Kind, ref.FullText)
}
