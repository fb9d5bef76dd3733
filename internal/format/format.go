// Package format holds the small text helpers shared by the TUI and the CLI:
// match highlighting, number and date formatting, width-aware truncation.
package format

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// Segment is a run of text that either matched a search term or did not.
type Segment struct {
	Text  string
	Match bool
}

type span struct{ start, end int }

// Highlight splits text into segments marking every case-insensitive
// occurrence of any term. Overlapping and adjacent matches are merged and the
// original casing is kept.
func Highlight(text string, terms ...string) []Segment {
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		// Case folding changed byte lengths; offsets would not line up.
		return highlightRunes(text, terms)
	}

	var spans []span
	for _, term := range terms {
		needle := strings.ToLower(strings.TrimSpace(term))
		if needle == "" {
			continue
		}
		from := 0
		for from <= len(lower)-len(needle) {
			idx := strings.Index(lower[from:], needle)
			if idx < 0 {
				break
			}
			start := from + idx
			spans = append(spans, span{start, start + len(needle)})
			from = start + len(needle)
		}
	}
	return segmentsFrom(text, mergeSpans(spans))
}

// HighlightFirst marks only the first case-insensitive occurrence of query.
func HighlightFirst(text, query string) []Segment {
	if text == "" {
		return nil
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	lower := strings.ToLower(text)
	if needle == "" || len(lower) != len(text) {
		if needle != "" {
			segs := highlightRunes(text, []string{query})
			return firstMatchOnly(segs)
		}
		return []Segment{{Text: text}}
	}
	idx := strings.Index(lower, needle)
	if idx < 0 {
		return []Segment{{Text: text}}
	}
	return segmentsFrom(text, []span{{idx, idx + len(needle)}})
}

// Plain joins segments back into a string.
func Plain(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}

func firstMatchOnly(segs []Segment) []Segment {
	out := make([]Segment, 0, len(segs))
	seen := false
	for _, s := range segs {
		if s.Match && seen {
			s.Match = false
		}
		if s.Match {
			seen = true
		}
		if n := len(out); n > 0 && !out[n-1].Match && !s.Match {
			out[n-1].Text += s.Text
			continue
		}
		out = append(out, s)
	}
	return out
}

// highlightRunes is the slow path for text whose lowercase form has a
// different byte length, matching rune by rune.
func highlightRunes(text string, terms []string) []Segment {
	src := []rune(text)
	folded := []rune(strings.ToLower(text))
	if len(folded) != len(src) {
		return []Segment{{Text: text}}
	}
	var spans []span
	for _, term := range terms {
		needle := []rune(strings.ToLower(strings.TrimSpace(term)))
		if len(needle) == 0 {
			continue
		}
		for i := 0; i+len(needle) <= len(folded); {
			if string(folded[i:i+len(needle)]) == string(needle) {
				spans = append(spans, span{i, i + len(needle)})
				i += len(needle)
				continue
			}
			i++
		}
	}
	merged := mergeSpans(spans)
	var segs []Segment
	pos := 0
	for _, sp := range merged {
		if sp.start > pos {
			segs = append(segs, Segment{Text: string(src[pos:sp.start])})
		}
		segs = append(segs, Segment{Text: string(src[sp.start:sp.end]), Match: true})
		pos = sp.end
	}
	if pos < len(src) {
		segs = append(segs, Segment{Text: string(src[pos:])})
	}
	return segs
}

func mergeSpans(spans []span) []span {
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	merged := []span{spans[0]}
	for _, sp := range spans[1:] {
		last := &merged[len(merged)-1]
		if sp.start <= last.end {
			if sp.end > last.end {
				last.end = sp.end
			}
			continue
		}
		merged = append(merged, sp)
	}
	return merged
}

func segmentsFrom(text string, spans []span) []Segment {
	if len(spans) == 0 {
		return []Segment{{Text: text}}
	}
	var segs []Segment
	pos := 0
	for _, sp := range spans {
		if sp.start > pos {
			segs = append(segs, Segment{Text: text[pos:sp.start]})
		}
		segs = append(segs, Segment{Text: text[sp.start:sp.end], Match: true})
		pos = sp.end
	}
	if pos < len(text) {
		segs = append(segs, Segment{Text: text[pos:]})
	}
	return segs
}

// Number formats n with comma thousands separators.
func Number(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(',')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Date renders t as a local date and time; the zero time renders as "-".
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// Truncate shortens s to at most width display cells, adding an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return runewidth.Truncate(s, width, "…")
}

// PadRight pads s with spaces to width display cells.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Plural returns "1 row" / "2 rows" style phrases.
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return "1 " + singular
	}
	return Number(int64(n)) + " " + plural
}

// Oneline collapses newlines and tabs so a value fits on one row.
func Oneline(s string) string {
	if !strings.ContainsAny(s, "\r\n\t") {
		return s
	}
	var b strings.Builder
	b.Grow(utf8.RuneCountInString(s))
	for _, r := range s {
		switch r {
		case '\r':
			continue
		case '\n', '\t':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
