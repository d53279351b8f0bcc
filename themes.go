package thematic

import (
	"fmt"
	"sort"
	"strings"
)

// ThemeMode selects how themes are derived.
type ThemeMode string

// Theme modes.
const (
	ThemeInductive ThemeMode = "inductive"
	ThemeDeductive ThemeMode = "deductive"
)

// ThemeDepth controls sub-theme extraction.
type ThemeDepth string

// Theme depths.
const (
	DepthSurface ThemeDepth = "surface"
	DepthDeep    ThemeDepth = "deep"
)

// Theme is a ranked grouping of related codes.
type Theme struct {
	Name            string   `json:"name" yaml:"name" validate:"required"`
	Description     string   `json:"description" yaml:"description"`
	SupportingCodes []string `json:"supportingCodes" yaml:"supportingCodes"`
	Prevalence      float64  `json:"prevalence" yaml:"prevalence"`
	Examples        []string `json:"examples" yaml:"examples"`
	SubThemes       []Theme  `json:"subThemes,omitempty" yaml:"subThemes,omitempty"`
}

// ThemeRequest is the input to ExtractThemes.
type ThemeRequest struct {
	Codes []Code
	Mode  ThemeMode
	Depth ThemeDepth
}

// ExtractThemes groups codes into themes sorted by prevalence, highest first.
// An empty codebook yields an empty slice in either mode.
func ExtractThemes(req ThemeRequest) []Theme {
	if len(req.Codes) == 0 {
		return []Theme{}
	}
	total := totalFrequency(req.Codes)

	var themes []Theme
	if req.Mode == ThemeDeductive {
		themes = deductiveThemes(req.Codes, total)
	} else {
		themes = inductiveThemes(req.Codes, total, req.Depth == DepthDeep)
	}
	sortByPrevalence(themes)
	return themes
}

// inductiveThemes clusters codes by name overlap. When deep is set, large
// groups are clustered once more into sub-themes; sub-themes never nest further.
func inductiveThemes(codes []Code, total int, deep bool) []Theme {
	groups := clusterCodes(codes, func(ratio float64) bool {
		return ratio >= DefaultThemeThreshold
	})

	themes := make([]Theme, 0, len(groups))
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		theme := buildTheme(inductiveName(members), members, total)
		theme.Description = fmt.Sprintf("Theme grouping %d related codes: %s",
			len(members), strings.Join(CodeNames(members), ", "))
		if deep && len(members) > DefaultSubThemeMinCodes {
			theme.SubThemes = inductiveThemes(members, total, false)
			sortByPrevalence(theme.SubThemes)
		}
		themes = append(themes, theme)
	}
	return themes
}

// inductiveName joins the three most frequent significant name tokens.
func inductiveName(members []Code) string {
	counter := newTermCounter()
	for _, m := range members {
		for _, w := range tokenSet(m.Name) {
			if len(w) > 3 {
				counter.add(w)
			}
		}
	}
	top := counter.top(3)
	if len(top) == 0 {
		return members[0].Name
	}
	for i, w := range top {
		top[i] = titleCase(w)
	}
	return strings.Join(top, " and ")
}

func deductiveThemes(codes []Code, total int) []Theme {
	var themes []Theme
	for _, framework := range Frameworks {
		var members []Code
		for _, c := range codes {
			if framework.Matches(c.Name + " " + c.Definition) {
				members = append(members, c)
			}
		}
		if len(members) == 0 {
			continue
		}
		theme := buildTheme(framework.Name, members, total)
		theme.Description = framework.Description
		themes = append(themes, theme)
	}
	if themes == nil {
		return []Theme{}
	}
	return themes
}

func buildTheme(name string, members []Code, total int) Theme {
	var examples []string
	for _, m := range members {
		examples = append(examples, m.Examples...)
	}
	return Theme{
		Name:            name,
		SupportingCodes: CodeNames(members),
		Prevalence:      prevalence(members, total),
		Examples:        capStrings(examples, DefaultThemeExampleCap),
	}
}

// prevalence is the share of total frequency mass held by members.
func prevalence(members []Code, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(totalFrequency(members)) / float64(total)
}

func sortByPrevalence(themes []Theme) {
	sort.SliceStable(themes, func(i, j int) bool {
		return themes[i].Prevalence > themes[j].Prevalence
	})
}
