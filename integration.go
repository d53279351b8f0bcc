package thematic

import (
	"fmt"
	"math"
	"strings"
)

func integrateTheory(req TheoryRequest, core CoreCategory, categories []Category, axial []AxialCodingResult) *GroundedTheoryResult {
	coreAxial := AxialCodingResult{Phenomenon: core.Name}
	for _, ax := range axial {
		if ax.Phenomenon == core.Name {
			coreAxial = ax
			break
		}
	}

	completeness := theoryCompleteness(core, len(categories), len(axial))
	return &GroundedTheoryResult{
		CoreCategory:         core,
		SupportingCategories: categories,
		AxialResults:         axial,
		TheoreticalFramework: theoreticalFramework(req, core, categories),
		Storyline:            storyline(req.ResearchQuestion, core.Name, coreAxial),
		Stage:                TheoryStageIntegration,
		Completeness:         completeness,
		Recommendations:      theoryRecommendations(completeness, core, len(categories)),
	}
}

// theoryCompleteness scores an integrated theory out of five 20-point components.
func theoryCompleteness(core CoreCategory, categories, axialResults int) float64 {
	score := 20.0 +
		math.Min(float64(categories)*4, 20) +
		math.Min(float64(len(core.Relationships))*5, 20) +
		math.Min(float64(axialResults)*4, 20) +
		core.Centrality*20
	return score / 100
}

func paradigmOpening(paradigm string) string {
	switch strings.ToLower(strings.TrimSpace(paradigm)) {
	case "constructivist", "charmaz":
		return "Following a constructivist grounded theory approach, this theory is co-constructed from participants' meanings and the researcher's interpretations."
	case "classic", "glaserian", "objectivist":
		return "Following classic grounded theory, this theory emerged from the data through constant comparison."
	case "straussian", "systematic":
		return "Following the systematic grounded theory approach, this theory is organized through the paradigm model of conditions, actions and consequences."
	default:
		return "This grounded theory was derived inductively from the coded data."
	}
}

func theoreticalFramework(req TheoryRequest, core CoreCategory, categories []Category) string {
	paragraphs := []string{
		paradigmOpening(req.Paradigm),
		fmt.Sprintf("The core category is %q (centrality %.2f). %s.", core.Name, core.Centrality, core.Description),
	}

	if len(req.Themes) > 0 {
		names := make([]string, len(req.Themes))
		for i, th := range req.Themes {
			names[i] = th.Name
		}
		paragraphs = append(paragraphs, "Themes informing the analysis: "+strings.Join(names, ", ")+".")
	}

	listed := make([]string, len(categories))
	for i, cat := range categories {
		listed[i] = fmt.Sprintf("%s (%d codes)", cat.Name, len(cat.RelatedCodes))
	}
	paragraphs = append(paragraphs, "Categories: "+strings.Join(listed, "; ")+".")

	if len(core.Relationships) > 0 {
		rels := make([]string, len(core.Relationships))
		for i, r := range core.Relationships {
			rels[i] = r.Description
		}
		paragraphs = append(paragraphs, "Relationships: "+strings.Join(rels, "; ")+".")
	}
	return strings.Join(paragraphs, "\n\n")
}

// storyline narrates conditions, strategies and consequences of the core
// category; each paragraph appears only when its axial lists have content.
func storyline(researchQuestion, core string, ax AxialCodingResult) string {
	intro := fmt.Sprintf("This storyline centers on %q.", core)
	if researchQuestion != "" {
		intro = fmt.Sprintf("In answering %q, this storyline centers on %q.", researchQuestion, core)
	}
	paragraphs := []string{intro}

	if len(ax.CausalConditions) > 0 || len(ax.Context) > 0 {
		var p strings.Builder
		fmt.Fprintf(&p, "%s emerges", core)
		if len(ax.CausalConditions) > 0 {
			fmt.Fprintf(&p, " from %s", strings.Join(ax.CausalConditions, ", "))
		}
		if len(ax.Context) > 0 {
			fmt.Fprintf(&p, " within the context of %s", strings.Join(ax.Context, ", "))
		}
		p.WriteString(".")
		paragraphs = append(paragraphs, p.String())
	}

	if len(ax.ActionStrategies) > 0 || len(ax.InterveningConditions) > 0 {
		var p strings.Builder
		p.WriteString("Participants respond")
		if len(ax.ActionStrategies) > 0 {
			fmt.Fprintf(&p, " through %s", strings.Join(ax.ActionStrategies, ", "))
		}
		if len(ax.InterveningConditions) > 0 {
			fmt.Fprintf(&p, ", shaped by %s", strings.Join(ax.InterveningConditions, ", "))
		}
		p.WriteString(".")
		paragraphs = append(paragraphs, p.String())
	}

	if len(ax.Consequences) > 0 {
		paragraphs = append(paragraphs, fmt.Sprintf("These responses lead to %s.", strings.Join(ax.Consequences, ", ")))
	}
	return strings.Join(paragraphs, "\n\n")
}

func theoryRecommendations(completeness float64, core CoreCategory, categories int) []string {
	var recs []string
	switch {
	case completeness < 0.6:
		recs = append(recs, "The theory is still incomplete: continue data collection and coding to gather more data on emerging categories and relationships.")
	case completeness < 0.8:
		recs = append(recs, "The theory is developing: refine category properties and test relationships against new data.")
	default:
		recs = append(recs, "The theory is well integrated: validate it against negative cases and the existing literature.")
	}

	if len(core.Relationships) < 3 {
		recs = append(recs, "Explore further relationships between the core category and other categories.")
	}
	if categories < 5 {
		recs = append(recs, "Develop additional categories through theoretical sampling.")
	}
	if core.Centrality < 0.5 {
		recs = append(recs, "Core category centrality is low; check whether another category better integrates the data.")
	}

	return append(recs,
		"Write theoretical memos documenting analytic decisions as the theory evolves.",
		"Consider member checking to validate the theory with participants.",
	)
}
