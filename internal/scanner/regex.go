package scanner

import (
	"bufio"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// The three reference shapes. Plain references carry no token; the marked
// patterns capture an existing token plus enough of the query tail that a
// rewrite can regenerate the full original text. Token captures are bounded
// at MaxTokenLen so surrounding text is never swallowed.
var (
	plainRefRe = regexp.MustCompile(
		`(?:url\(["']?|href=["']|src=["']|["'])` +
			`(?P<path>(?P<dir>[^"')\s?#]+/)?(?P<file>[^/"')\s?#]+))`)

	fnRefRe = regexp.MustCompile(
		`(?P<path>(?P<prefix>[^"'()\s?=]+)` +
			`_cb_(?P<bust>[a-zA-Z0-9]{0,16})` +
			`(?P<ext>\.[a-zA-Z0-9]+)` +
			`(?P<query>\?[^"'()\s]*)?)`)

	qsRefRe = regexp.MustCompile(
		`(?P<path>(?P<ref>[^"'()\s?]+)` +
			`\?(?P<lead>[^"'()\s]*?&)?` +
			`_cb_(?:=(?P<bust>[a-zA-Z0-9]{0,16}))?` +
			`(?P<trail>&[^"'()\s]*)?)`)
)

var (
	plainPathIdx = plainRefRe.SubexpIndex("path")

	fnPathIdx   = fnRefRe.SubexpIndex("path")
	fnPrefixIdx = fnRefRe.SubexpIndex("prefix")
	fnBustIdx   = fnRefRe.SubexpIndex("bust")
	fnExtIdx    = fnRefRe.SubexpIndex("ext")

	qsPathIdx = qsRefRe.SubexpIndex("path")
	qsRefIdx  = qsRefRe.SubexpIndex("ref")
	qsBustIdx = qsRefRe.SubexpIndex("bust")
)

// span tracks where a match's full text sits within its line, for ordering
// and for dropping lower-fidelity matches of the same text.
type span struct {
	start, end int
	ref        Reference
}

func overlaps(spans []span, start, end int) bool {
	for _, s := range spans {
		if start < s.end && end > s.start {
			return true
		}
	}
	return false
}

func isDataURI(path string) bool {
	return strings.Contains(path, "data:")
}

// markupJunkRe rejects captures that are markup or code rather than paths.
// The bare-quote idiom ('app.js') makes the plain pattern loose enough to
// match text like "></script>", so a plain candidate must look like a file
// path: no markup characters and an extension on the final segment.
var markupJunkRe = regexp.MustCompile(`[<>={}\x60|\\^~\[\]]`)

func plausiblePath(full string) bool {
	file := full
	if i := strings.LastIndex(full, "/"); i >= 0 {
		file = full[i+1:]
	}
	return strings.Contains(file, ".") && !markupJunkRe.MatchString(full)
}

func group(line string, m []int, idx int) string {
	if m[2*idx] < 0 {
		return ""
	}
	return line[m[2*idx]:m[2*idx+1]]
}

// parseMarkedLine finds filename-embedded and query-string references in one
// line. The caller short-circuits on lines without the marker text.
func parseMarkedLine(line string, lineNo int) []span {
	var spans []span

	for _, m := range fnRefRe.FindAllStringSubmatchIndex(line, -1) {
		full := group(line, m, fnPathIdx)
		if isDataURI(full) {
			continue
		}
		spans = append(spans, span{
			start: m[2*fnPathIdx],
			end:   m[2*fnPathIdx+1],
			ref: Reference{
				Line:     lineNo,
				Col:      m[2*fnPathIdx],
				FullText: full,
				Path:     group(line, m, fnPrefixIdx) + group(line, m, fnExtIdx),
				BustCode: group(line, m, fnBustIdx),
				Kind:     KindFilename,
			},
		})
	}

	for _, m := range qsRefRe.FindAllStringSubmatchIndex(line, -1) {
		full := group(line, m, qsPathIdx)
		if isDataURI(full) {
			continue
		}
		start, end := m[2*qsPathIdx], m[2*qsPathIdx+1]
		if overlaps(spans, start, end) {
			continue
		}
		spans = append(spans, span{
			start: start,
			end:   end,
			ref: Reference{
				Line:     lineNo,
				Col:      start,
				FullText: full,
				Path:     group(line, m, qsRefIdx),
				BustCode: group(line, m, qsBustIdx),
				Kind:     KindQuery,
			},
		})
	}

	return spans
}

// parsePlainLine finds plain references, skipping any text already claimed by
// a marked match so a reference is never double-counted and an existing
// token's query context is never lost to a plain rewrite.
func parsePlainLine(line string, lineNo int, marked []span) []span {
	var spans []span
	for _, m := range plainRefRe.FindAllStringSubmatchIndex(line, -1) {
		full := group(line, m, plainPathIdx)
		if isDataURI(full) || strings.Contains(full, Marker) || !plausiblePath(full) {
			continue
		}
		start, end := m[2*plainPathIdx], m[2*plainPathIdx+1]
		if overlaps(marked, start, end) {
			continue
		}
		spans = append(spans, span{
			start: start,
			end:   end,
			ref: Reference{
				Line:     lineNo,
				Col:      start,
				FullText: full,
				Path:     full,
				Kind:     KindPlain,
			},
		})
	}
	return spans
}

func parse(content string, includePlain bool) ([]Reference, error) {
	hasMarker := strings.Contains(content, Marker)
	if !hasMarker && !includePlain {
		return nil, nil
	}

	var refs []Reference
	sc := bufio.NewScanner(strings.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()

		var marked []span
		if hasMarker && strings.Contains(line, Marker) {
			marked = parseMarkedLine(line, lineNo)
		}

		spans := marked
		if includePlain {
			spans = append(spans, parsePlainLine(line, lineNo, marked)...)
		}
		sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
		for _, s := range spans {
			refs = append(refs, s.ref)
		}
	}
	// A line beyond the scanner's buffer ends the scan early; report it so
	// the caller does not mistake a half-parsed file for a fully handled one.
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan line %d: %w", lineNo+1, err)
	}
	return refs, nil
}

// ParseMarked returns the references that already carry a bust token, ordered
// by line then column. Re-running on unchanged content yields an identical
// sequence.
func ParseMarked(content string) ([]Reference, error) {
	return parse(content, false)
}

// ParseAll returns marked and plain references, ordered by line then column.
// Text matched by a marked pattern is never also reported as plain.
func ParseAll(content string) ([]Reference, error) {
	return parse(content, true)
}
