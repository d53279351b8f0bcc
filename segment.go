package thematic

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Segment is a unit of text that codes attach to.
// Start and End are byte offsets of Text within the source.
type Segment struct {
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

var (
	paragraphBreak = regexp.MustCompile(`\n\s*\n`)
	sentenceEnd    = regexp.MustCompile(`[.!?]+(\s+|$)`)
)

// Segments splits text into paragraphs, falling back to sentences for
// paragraphs longer than DefaultMaxParagraphLength characters.
// Whitespace-only pieces are dropped; empty text yields no segments.
func Segments(text string) []Segment {
	var out []Segment
	start := 0
	for _, loc := range paragraphBreak.FindAllStringIndex(text, -1) {
		out = appendParagraph(out, text, start, loc[0])
		start = loc[1]
	}
	return appendParagraph(out, text, start, len(text))
}

func appendParagraph(out []Segment, text string, start, end int) []Segment {
	para := text[start:end]
	if utf8.RuneCountInString(strings.TrimSpace(para)) <= DefaultMaxParagraphLength {
		return appendTrimmed(out, text, start, end)
	}
	from := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(para, -1) {
		out = appendTrimmed(out, text, start+from, start+loc[1])
		from = loc[1]
	}
	return appendTrimmed(out, text, start+from, end)
}

// appendTrimmed adds text[start:end] without surrounding whitespace, if anything remains.
func appendTrimmed(out []Segment, text string, start, end int) []Segment {
	for start < end {
		r, size := utf8.DecodeRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	if start == end {
		return out
	}
	return append(out, Segment{Text: text[start:end], Start: start, End: end})
}
