package thematic

import "fmt"

// NegativeCase is a code that contradicts a theme.
type NegativeCase struct {
	Code          Code     `json:"code"`
	Contradiction string   `json:"contradiction"`
	Strength      Strength `json:"strength"`
}

// NegativeCaseRequest is the input to FindNegativeCases.
// Threshold defaults to StrengthModerate.
type NegativeCaseRequest struct {
	Theme     Theme
	AllCodes  []Code
	Threshold Strength
}

// NegativeCaseReport is the output of FindNegativeCases.
type NegativeCaseReport struct {
	NegativeCases  []NegativeCase `json:"negativeCases"`
	Recommendation string         `json:"recommendation"`
}

// FindNegativeCases looks for codes outside a theme whose wording opposes the
// theme name. The first matching opposition decides the strength; cases
// weaker than the threshold are dropped.
func FindNegativeCases(req NegativeCaseRequest) NegativeCaseReport {
	threshold := req.Threshold
	if threshold == "" {
		threshold = StrengthModerate
	}

	supporting := make(map[string]struct{}, len(req.Theme.SupportingCodes))
	for _, name := range req.Theme.SupportingCodes {
		supporting[name] = struct{}{}
	}

	cases := []NegativeCase{}
	for _, code := range req.AllCodes {
		if _, ok := supporting[code.Name]; ok {
			continue
		}
		nc, ok := contradiction(req.Theme.Name, code)
		if !ok || nc.Strength.rank() < threshold.rank() {
			continue
		}
		cases = append(cases, nc)
	}

	return NegativeCaseReport{
		NegativeCases:  cases,
		Recommendation: negativeCaseRecommendation(req.Theme.Name, len(cases)),
	}
}

func contradiction(themeName string, code Code) (NegativeCase, bool) {
	candidate := code.Name + " " + code.Definition
	for _, opp := range NegativeCaseOppositions {
		themePole, codePole, ok := opposes(opp, themeName, candidate)
		if !ok {
			continue
		}
		return NegativeCase{
			Code: code.clone(),
			Contradiction: fmt.Sprintf("Theme %q emphasizes %q while code %q suggests %q",
				themeName, themePole, code.Name, codePole),
			Strength: opp.Strength,
		}, true
	}
	return NegativeCase{}, false
}

// opposes checks both directions of an opposition.
func opposes(opp Opposition, theme, candidate string) (themePole, codePole string, ok bool) {
	if opp.Left.Matches(theme) && opp.Right.Matches(candidate) {
		return opp.Left.Name, opp.Right.Name, true
	}
	if opp.Right.Matches(theme) && opp.Left.Matches(candidate) {
		return opp.Right.Name, opp.Left.Name, true
	}
	return "", "", false
}

func negativeCaseRecommendation(theme string, n int) string {
	switch {
	case n == 0:
		return fmt.Sprintf("No negative cases found for %q; the theme holds across the dataset.", theme)
	case n <= 2:
		return fmt.Sprintf("Found %d negative case(s) for %q. Examine them to sharpen the theme's boundaries.", n, theme)
	default:
		return fmt.Sprintf("Found %d negative cases for %q. Consider revising or splitting the theme.", n, theme)
	}
}
