// Package segment turns the raw text of the statute into an ordered list of
// well-bounded article records. It is heuristic segmentation: it assumes one
// monotonically increasing MADDE marker per article and a flat heading style.
package segment

import (
	"regexp"
	"strings"

	"kira-rag/internal/domain"
)

var (
	// markerPattern matches a line introducing a new article.
	// Group 1: full label ("MADDE 339"), group 2: the numeral,
	// group 3: same-line trailing text after the optional separator.
	markerPattern = regexp.MustCompile(`(?m)^(MADDE\s(\d+))[ \t]*-?[ \t]*(.*)`)

	// headerPattern matches a structural heading line: a single enumerator
	// token ("A.", "IV.", "a.", "1.") followed by heading-like text.
	headerPattern = regexp.MustCompile(
		`(?i)^\s*(?:[A-ZİÖÜÇŞĞ]\.|[IVXLCDM]+\.|[a-z]\.|\d+\.)\s+[a-zA-Z0-9ğüşıöçĞÜŞİÖÇ\s(),'/.:-]+$`)
)

// Segment parses raw statute text into ordered articles. Articles whose text
// is empty after trimming are dropped; their numbers are returned as
// diagnostics. Malformed structure degrades gracefully and never errors.
func Segment(raw string) ([]domain.Article, []string) {
	idx := markerPattern.FindAllStringSubmatchIndex(raw, -1)
	if len(idx) == 0 {
		return nil, nil
	}

	var articles []domain.Article
	var dropped []string

	for i, m := range idx {
		number := raw[m[2]:m[3]]
		tail := strings.TrimSpace(raw[m[6]:m[7]])

		// Header attribution: scan the text between the end of the previous
		// marker and the start of this one, bottom-up.
		blockStart := 0
		if i > 0 {
			blockStart = idx[i-1][1]
		}
		header := nearestHeading(raw[blockStart:m[0]])

		// Raw body span: end of this marker to start of the next marker
		// (or end of document for the last article).
		bodyStart := m[1]
		bodyEnd := len(raw)
		if i+1 < len(idx) {
			bodyEnd = idx[i+1][0]

			// Boundary correction: the span may swallow the next article's
			// heading line. Truncate the body just before it; the heading is
			// recovered independently when the next article is processed.
			inter := raw[bodyStart:bodyEnd]
			if h := nearestHeading(inter); h != "" {
				if off, ok := lineStartOffset(inter, h); ok {
					bodyEnd = bodyStart + off
				}
			}
		}

		body := strings.TrimSpace(raw[bodyStart:bodyEnd])

		var parts []string
		if tail != "" {
			parts = append(parts, tail)
		}
		if body != "" {
			parts = append(parts, body)
		}
		text := strings.TrimSpace(strings.Join(parts, "\n"))
		if text == "" {
			dropped = append(dropped, number)
			continue
		}

		articles = append(articles, domain.Article{
			Number: number,
			Header: header,
			Text:   text,
		})
	}

	return articles, dropped
}

// nearestHeading returns the bottom-most qualifying heading line in block,
// or "" if none qualifies.
func nearestHeading(block string) string {
	lines := strings.Split(strings.TrimSpace(block), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if isHeading(line) {
			return line
		}
	}
	return ""
}

// isHeading reports whether line is a structural heading candidate. Marker
// lines never qualify, so a MADDE line cannot be miscaptured as a heading.
func isHeading(line string) bool {
	return headerPattern.MatchString(line) && !strings.Contains(strings.ToUpper(line), "MADDE")
}

// lineStartOffset returns the byte offset of the first line in block whose
// trimmed content equals target. Line terminators are preserved while
// accumulating offsets so the cut lands exactly on the heading's line start.
func lineStartOffset(block, target string) (int, bool) {
	off := 0
	for _, line := range strings.SplitAfter(block, "\n") {
		if strings.TrimSpace(line) == target {
			return off, true
		}
		off += len(line)
	}
	return 0, false
}
