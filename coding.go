package thematic

import (
	"regexp"
	"strings"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Methodology steers constructed-code generation.
type Methodology string

// Supported methodologies. Anything else codes as grounded theory.
const (
	MethodologyGrounded      Methodology = "grounded"
	MethodologyThematic      Methodology = "thematic"
	MethodologyPhenomenology Methodology = "phenomenology"
)

// CodingSummary tallies a coding run.
type CodingSummary struct {
	TotalCodes         int     `json:"totalCodes"`
	InVivo             int     `json:"inVivo"`
	Constructed        int     `json:"constructed"`
	Theoretical        int     `json:"theoretical"`
	Segments           int     `json:"segments"`
	AvgCodesPerSegment float64 `json:"avgCodesPerSegment"`
}

// CodingResult is the output of GenerateCodes.
type CodingResult struct {
	Codes    []Code        `json:"codes"`
	Segments []Segment     `json:"segments"`
	Summary  CodingSummary `json:"summary"`
}

type codingConfig struct {
	exampleCap int
}

// CodingOption adjusts a single GenerateCodes call.
type CodingOption func(*codingConfig)

// WithExampleCap limits how many excerpts each generated code keeps.
// Zero or negative leaves examples unbounded.
func WithExampleCap(n int) CodingOption {
	return func(c *codingConfig) {
		c.exampleCap = n
	}
}

var (
	quotePattern  = regexp.MustCompile(`"([^"]+)"|“([^”]+)”`)
	gerundPattern = regexp.MustCompile(`\b[A-Za-z]+ing\b`)
	affectPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(AffectVerbs, "|") + `)\s+([a-z']+)`)
)

// GenerateCodes segments text and attaches in-vivo, constructed and
// previously known codes to every segment. Identical code names fold into a
// single record whose frequency counts attachments.
func GenerateCodes(text string, existing []string, methodology Methodology, opts ...CodingOption) CodingResult {
	var cfg codingConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	segments := Segments(text)
	book := newCodebook(cfg.exampleCap)
	known := uniqueNames(existing)

	for _, seg := range segments {
		inVivoCodes(book, seg.Text)
		constructedCodes(book, seg.Text, methodology)
		existingCodes(book, seg.Text, known)
	}

	codes := book.codes()
	summary := CodingSummary{
		TotalCodes: len(codes),
		Segments:   len(segments),
	}
	for _, c := range codes {
		switch c.Type {
		case CodeInVivo:
			summary.InVivo++
		case CodeConstructed:
			summary.Constructed++
		case CodeTheoretical:
			summary.Theoretical++
		}
	}
	if len(segments) > 0 {
		summary.AvgCodesPerSegment = float64(book.attachments) / float64(len(segments))
	}

	if segments == nil {
		segments = []Segment{}
	}
	return CodingResult{Codes: codes, Segments: segments, Summary: summary}
}

func inVivoCodes(book *codebook, seg string) {
	for _, m := range quotePattern.FindAllStringSubmatch(seg, -1) {
		quote := m[1]
		if quote == "" {
			quote = m[2]
		}
		n := utf8.RuneCountInString(quote)
		if n < DefaultQuoteMinLength || n >= DefaultQuoteMaxLength {
			continue
		}
		book.attach(slugify(quote), `Participant's own words: "`+quote+`"`, CodeInVivo, seg)
	}
	for _, m := range affectPattern.FindAllStringSubmatch(seg, -1) {
		phrase := strings.ToLower(m[1] + " " + m[2])
		book.attach(slugify(phrase), `Expressed state: "`+phrase+`"`, CodeInVivo, seg)
	}
}

func constructedCodes(book *codebook, seg string, methodology Methodology) {
	switch methodology {
	case MethodologyThematic:
		for _, r := range ThematicRules.All(seg) {
			book.attach(r.Name, r.Description, CodeConstructed, seg)
		}
	case MethodologyPhenomenology:
		for _, r := range PhenomenologyRules.All(seg) {
			book.attach(r.Name, r.Description, CodeConstructed, seg)
		}
	default:
		for _, g := range gerunds(seg) {
			book.attach(g, "Process of "+g, CodeConstructed, seg)
		}
		if RelationalDynamics.Matches(seg) {
			book.attach(RelationalDynamics.Name, RelationalDynamics.Description, CodeConstructed, seg)
		}
	}
}

// gerunds returns the first unique -ing words of seg longer than five letters.
func gerunds(seg string) []string {
	var out []string
	for _, m := range gerundPattern.FindAllString(seg, -1) {
		g := strings.ToLower(m)
		if len(g) <= 5 {
			continue
		}
		out = appendUnique(out, g)
		if len(out) == DefaultGerundsPerSegment {
			break
		}
	}
	return out
}

// existingCodes re-attaches known codes whose component words occur in seg.
// Short component words match liberally; callers with terse names should expect noise.
func existingCodes(book *codebook, seg string, known []string) {
	lower := strings.ToLower(seg)
	for _, name := range known {
		for _, part := range codeNameParts(name) {
			if strings.Contains(lower, part) {
				book.attach(name, "Existing code matched in segment", CodeConstructed, seg)
				break
			}
		}
	}
}

func codeNameParts(name string) []string {
	return strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return r == '_' || r == '-' || r == ' ' || r == '\t' || r == '\n'
	})
}

func uniqueNames(names []string) []string {
	var out []string
	for _, n := range names {
		if strings.TrimSpace(n) == "" {
			continue
		}
		out = appendUnique(out, n)
	}
	return out
}

// codebook accumulates attachments in first-seen order.
type codebook struct {
	entries     *orderedmap.OrderedMap[string, *Code]
	exampleCap  int
	attachments int
}

func newCodebook(exampleCap int) *codebook {
	return &codebook{
		entries:    orderedmap.New[string, *Code](),
		exampleCap: exampleCap,
	}
}

func (b *codebook) attach(name, definition string, typ CodeType, seg string) {
	if name == "" {
		return
	}
	b.attachments++
	example := truncate(seg, DefaultExampleLength)

	code, ok := b.entries.Get(name)
	if !ok {
		b.entries.Set(name, &Code{
			Name:       name,
			Definition: definition,
			Examples:   []string{example},
			Frequency:  1,
			Type:       typ,
		})
		return
	}
	code.Frequency++
	if b.exampleCap <= 0 || len(code.Examples) < b.exampleCap {
		code.Examples = append(code.Examples, example)
	}
}

func (b *codebook) codes() []Code {
	out := make([]Code, 0, b.entries.Len())
	for pair := b.entries.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, *pair.Value)
	}
	return out
}
