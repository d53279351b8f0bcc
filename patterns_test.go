package thematic

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAnalyzePatterns(t *testing.T) {
	patterns := AnalyzePatterns(stressCodebook())

	if len(patterns) != 2 {
		t.Fatalf("expected 2 patterns, got %d: %+v", len(patterns), patterns)
	}

	contrast := patterns[0]
	if contrast.Type != PatternContrast || contrast.Significance != SignificanceHigh {
		t.Errorf("expected high contrast first, got %+v", contrast)
	}
	if !cmp.Equal(contrast.Elements, []string{"positive_outlook", "negative_outlook"}) {
		t.Errorf("unexpected contrast elements %v", contrast.Elements)
	}

	hierarchy := patterns[1]
	if hierarchy.Type != PatternHierarchy || hierarchy.Significance != SignificanceMedium {
		t.Errorf("expected medium hierarchy second, got %+v", hierarchy)
	}
	if !cmp.Equal(hierarchy.Elements, []string{"exam_stress", "exam_stress_relief"}) {
		t.Errorf("unexpected hierarchy elements %v", hierarchy.Elements)
	}
}

func TestAnalyzePatternsCoOccurrence(t *testing.T) {
	codes := []Code{
		{Name: "alpha", Examples: []string{"one", "two", "three"}},
		{Name: "beta", Examples: []string{"one", "two and more", "three"}},
		{Name: "gamma", Examples: []string{"one"}},
	}

	patterns := AnalyzePatterns(codes)

	var found []Pattern
	for _, p := range patterns {
		if p.Type == PatternCoOccurrence {
			found = append(found, p)
		}
	}
	if len(found) != 3 {
		t.Fatalf("expected 3 co-occurrences, got %d: %+v", len(found), found)
	}
	if found[0].Frequency != 3 || found[0].Significance != SignificanceHigh {
		t.Errorf("alpha/beta share three excerpts, got %+v", found[0])
	}
	for _, p := range found[1:] {
		if p.Frequency != 1 || p.Significance != SignificanceMedium {
			t.Errorf("expected single shared excerpt at medium, got %+v", p)
		}
	}
}

func TestAnalyzePatternsOrderedBySignificance(t *testing.T) {
	patterns := AnalyzePatterns(stressCodebook())
	for i := 1; i < len(patterns); i++ {
		if patterns[i].Significance.rank() < patterns[i-1].Significance.rank() {
			t.Fatalf("pattern %d out of significance order", i)
		}
	}
}

func TestAnalyzePatternsEmpty(t *testing.T) {
	patterns := AnalyzePatterns(nil)
	if patterns == nil || len(patterns) != 0 {
		t.Errorf("expected empty patterns, got %v", patterns)
	}
}
