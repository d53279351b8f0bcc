package thematic

import (
	"context"
	"fmt"

	"github.com/zoobzio/pipz"
)

// Themer is a theme extraction primitive that implements pipz.Chainable[*Study].
// It replaces the study themes with themes extracted from the codebook.
//
// Example:
//
//	themer := thematic.NewThemer("themes").WithDepth(thematic.DepthDeep)
//	study, _ = themer.Process(ctx, study)
//	for _, th := range study.Themes() {
//	    fmt.Println(th.Name, th.Prevalence)
//	}
type Themer struct {
	identity pipz.Identity
	key      string
	mode     ThemeMode
	depth    ThemeDepth
}

// NewThemer creates an inductive, surface-depth theming primitive.
func NewThemer(key string) *Themer {
	return &Themer{
		identity: pipz.NewIdentity(key, "Theme extraction primitive"),
		key:      key,
		mode:     ThemeInductive,
		depth:    DepthSurface,
	}
}

// Process implements pipz.Chainable[*Study].
func (t *Themer) Process(ctx context.Context, s *Study) (*Study, error) {
	err := runStage(ctx, s, t.key, "themes", func() (stageOutput, error) {
		themes := ExtractThemes(ThemeRequest{Codes: s.Codes(), Mode: t.mode, Depth: t.depth})
		s.update(func(s *Study) {
			s.themes = themes
		})
		return stageOutput{outputs: len(themes)}, nil
	})
	if err != nil {
		return s, fmt.Errorf("themer: %w", err)
	}
	return s, nil
}

// Identity implements pipz.Chainable[*Study].
func (t *Themer) Identity() pipz.Identity {
	return t.identity
}

// Schema implements pipz.Chainable[*Study].
func (t *Themer) Schema() pipz.Node {
	return pipz.Node{Identity: t.identity, Type: "themer"}
}

// Close implements pipz.Chainable[*Study].
func (t *Themer) Close() error {
	return nil
}

// WithMode sets inductive or deductive extraction.
func (t *Themer) WithMode(mode ThemeMode) *Themer {
	t.mode = mode
	return t
}

// WithDepth sets surface or deep extraction.
func (t *Themer) WithDepth(depth ThemeDepth) *Themer {
	t.depth = depth
	return t
}

// PatternFinder is a pattern analysis primitive that implements pipz.Chainable[*Study].
type PatternFinder struct {
	identity pipz.Identity
	key      string
}

// NewPatternFinder creates a pattern analysis primitive.
func NewPatternFinder(key string) *PatternFinder {
	return &PatternFinder{
		identity: pipz.NewIdentity(key, "Pattern analysis primitive"),
		key:      key,
	}
}

// Process implements pipz.Chainable[*Study].
func (p *PatternFinder) Process(ctx context.Context, s *Study) (*Study, error) {
	err := runStage(ctx, s, p.key, "patterns", func() (stageOutput, error) {
		patterns := AnalyzePatterns(s.Codes())
		s.update(func(s *Study) {
			s.patterns = patterns
		})
		return stageOutput{outputs: len(patterns)}, nil
	})
	if err != nil {
		return s, fmt.Errorf("pattern finder: %w", err)
	}
	return s, nil
}

// Identity implements pipz.Chainable[*Study].
func (p *PatternFinder) Identity() pipz.Identity {
	return p.identity
}

// Schema implements pipz.Chainable[*Study].
func (p *PatternFinder) Schema() pipz.Node {
	return pipz.Node{Identity: p.identity, Type: "patterns"}
}

// Close implements pipz.Chainable[*Study].
func (p *PatternFinder) Close() error {
	return nil
}

// SaturationGauge is a saturation primitive that implements pipz.Chainable[*Study].
// It reads the per-source codes added with Study.AddSource.
type SaturationGauge struct {
	identity pipz.Identity
	key      string
	level    SaturationLevel
}

// NewSaturationGauge creates a code-level saturation primitive.
func NewSaturationGauge(key string) *SaturationGauge {
	return &SaturationGauge{
		identity: pipz.NewIdentity(key, "Saturation detection primitive"),
		key:      key,
		level:    LevelCode,
	}
}

// Process implements pipz.Chainable[*Study].
func (g *SaturationGauge) Process(ctx context.Context, s *Study) (*Study, error) {
	err := runStage(ctx, s, g.key, "saturation", func() (stageOutput, error) {
		analysis := DetectSaturation(SaturationRequest{Level: g.level, Sources: s.Sources()})
		s.update(func(s *Study) {
			s.saturation = &analysis
		})
		return stageOutput{
			outputs: len(analysis.NewCodesPerSource),
			score:   float32(analysis.SaturationRate),
		}, nil
	})
	if err != nil {
		return s, fmt.Errorf("saturation gauge: %w", err)
	}
	return s, nil
}

// Identity implements pipz.Chainable[*Study].
func (g *SaturationGauge) Identity() pipz.Identity {
	return g.identity
}

// Schema implements pipz.Chainable[*Study].
func (g *SaturationGauge) Schema() pipz.Node {
	return pipz.Node{Identity: g.identity, Type: "saturation"}
}

// Close implements pipz.Chainable[*Study].
func (g *SaturationGauge) Close() error {
	return nil
}

// WithLevel sets the analytic level reported.
func (g *SaturationGauge) WithLevel(level SaturationLevel) *SaturationGauge {
	g.level = level
	return g
}

// NegativeCaseFinder is a negative case primitive that implements pipz.Chainable[*Study].
// It looks up a theme produced by an earlier Themer and searches the codebook
// for codes that contradict it.
type NegativeCaseFinder struct {
	identity  pipz.Identity
	key       string
	theme     string
	threshold Strength
}

// NewNegativeCaseFinder creates a negative case primitive for the named theme.
func NewNegativeCaseFinder(key, theme string) *NegativeCaseFinder {
	return &NegativeCaseFinder{
		identity:  pipz.NewIdentity(key, "Negative case primitive"),
		key:       key,
		theme:     theme,
		threshold: StrengthModerate,
	}
}

// Process implements pipz.Chainable[*Study].
func (n *NegativeCaseFinder) Process(ctx context.Context, s *Study) (*Study, error) {
	err := runStage(ctx, s, n.key, "negative_cases", func() (stageOutput, error) {
		theme, ok := s.Theme(n.theme)
		if !ok {
			return stageOutput{}, fmt.Errorf("theme %q: %w", n.theme, ErrMissingReference)
		}
		report := FindNegativeCases(NegativeCaseRequest{
			Theme:     theme,
			AllCodes:  s.Codes(),
			Threshold: n.threshold,
		})
		s.update(func(s *Study) {
			if s.negatives == nil {
				s.negatives = make(map[string]NegativeCaseReport)
			}
			s.negatives[theme.Name] = report
		})
		return stageOutput{outputs: len(report.NegativeCases)}, nil
	})
	if err != nil {
		return s, fmt.Errorf("negative case finder: %w", err)
	}
	return s, nil
}

// Identity implements pipz.Chainable[*Study].
func (n *NegativeCaseFinder) Identity() pipz.Identity {
	return n.identity
}

// Schema implements pipz.Chainable[*Study].
func (n *NegativeCaseFinder) Schema() pipz.Node {
	return pipz.Node{Identity: n.identity, Type: "negative_cases"}
}

// Close implements pipz.Chainable[*Study].
func (n *NegativeCaseFinder) Close() error {
	return nil
}

// WithThreshold sets the minimum contradiction strength reported.
func (n *NegativeCaseFinder) WithThreshold(threshold Strength) *NegativeCaseFinder {
	n.threshold = threshold
	return n
}
