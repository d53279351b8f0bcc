package thematic

import (
	"fmt"
	"sort"
	"strings"
)

// PatternType classifies a cross-code pattern.
type PatternType string

// Pattern types. PatternSequence is reserved for temporally ordered data.
const (
	PatternCoOccurrence PatternType = "co-occurrence"
	PatternContrast     PatternType = "contrast"
	PatternHierarchy    PatternType = "hierarchy"
	PatternSequence     PatternType = "sequence"
)

// Significance grades a pattern.
type Significance string

// Significance levels.
const (
	SignificanceHigh   Significance = "high"
	SignificanceMedium Significance = "medium"
	SignificanceLow    Significance = "low"
)

func (s Significance) rank() int {
	switch s {
	case SignificanceHigh:
		return 0
	case SignificanceMedium:
		return 1
	default:
		return 2
	}
}

// Pattern is a relation spanning several codes.
type Pattern struct {
	Type         PatternType  `json:"type"`
	Description  string       `json:"description"`
	Elements     []string     `json:"elements"`
	Frequency    int          `json:"frequency"`
	Significance Significance `json:"significance"`
}

// AnalyzePatterns finds co-occurrence, contrast and hierarchy patterns.
// Results are ordered by significance; equal significance keeps discovery order.
func AnalyzePatterns(codes []Code) []Pattern {
	patterns := []Pattern{}
	patterns = append(patterns, coOccurrences(codes)...)
	patterns = append(patterns, contrasts(codes)...)
	patterns = append(patterns, hierarchies(codes)...)

	sort.SliceStable(patterns, func(i, j int) bool {
		return patterns[i].Significance.rank() < patterns[j].Significance.rank()
	})
	return patterns
}

func coOccurrences(codes []Code) []Pattern {
	var out []Pattern
	for i := 0; i < len(codes); i++ {
		for j := i + 1; j < len(codes); j++ {
			shared := sharedExamples(codes[i].Examples, codes[j].Examples)
			if shared == 0 {
				continue
			}
			sig := SignificanceMedium
			if shared > 2 {
				sig = SignificanceHigh
			}
			out = append(out, Pattern{
				Type:         PatternCoOccurrence,
				Description:  fmt.Sprintf("%s and %s co-occur in %d excerpts", codes[i].Name, codes[j].Name, shared),
				Elements:     []string{codes[i].Name, codes[j].Name},
				Frequency:    shared,
				Significance: sig,
			})
		}
	}
	return out
}

// sharedExamples counts examples of a that equal or contain, or are contained by, an example of b.
func sharedExamples(a, b []string) int {
	shared := 0
	for _, ea := range a {
		for _, eb := range b {
			if ea == eb || strings.Contains(ea, eb) || strings.Contains(eb, ea) {
				shared++
				break
			}
		}
	}
	return shared
}

func contrasts(codes []Code) []Pattern {
	var out []Pattern
	for _, pair := range ContrastPairs {
		left := matchingCodes(codes, pair.Left)
		right := matchingCodes(codes, pair.Right)
		if len(left) == 0 || len(right) == 0 {
			continue
		}
		elements := append(append([]string{}, left...), right...)
		out = append(out, Pattern{
			Type: PatternContrast,
			Description: fmt.Sprintf("Contrast between %s (%s) and %s (%s)",
				pair.Left.Name, strings.Join(left, ", "), pair.Right.Name, strings.Join(right, ", ")),
			Elements:     elements,
			Frequency:    len(elements),
			Significance: SignificanceHigh,
		})
	}
	return out
}

func matchingCodes(codes []Code, r Rule) []string {
	var names []string
	for _, c := range codes {
		if r.Matches(c.Name + " " + c.Definition) {
			names = append(names, c.Name)
		}
	}
	return names
}

func hierarchies(codes []Code) []Pattern {
	var out []Pattern
	for _, parent := range codes {
		if parent.Name == "" {
			continue
		}
		var children []string
		for _, child := range codes {
			if child.Name != parent.Name && strings.HasPrefix(child.Name, parent.Name) {
				children = append(children, child.Name)
			}
		}
		if len(children) == 0 {
			continue
		}
		out = append(out, Pattern{
			Type:         PatternHierarchy,
			Description:  fmt.Sprintf("%s subsumes %s", parent.Name, strings.Join(children, ", ")),
			Elements:     append([]string{parent.Name}, children...),
			Frequency:    len(children),
			Significance: SignificanceMedium,
		})
	}
	return out
}
