package thematic

import (
	"fmt"
	"strings"
)

// CentralityScore weighs a category by how connected it is.
func CentralityScore(cat Category, axial AxialCodingResult) float64 {
	return float64(len(cat.RelatedCodes)) +
		2*float64(len(axial.CausalConditions)) +
		2*float64(len(axial.Consequences)) +
		1.5*float64(len(axial.ActionStrategies)) +
		float64(len(axial.Context)) +
		float64(len(axial.InterveningConditions))
}

// SelectiveCoding elevates the highest scoring category (first on ties) to
// the core category. categories and axial must be parallel slices.
func SelectiveCoding(categories []Category, axial []AxialCodingResult, researchQuestion string) (CoreCategory, error) {
	if len(categories) == 0 {
		return CoreCategory{}, ErrNoCategories
	}
	if len(axial) != len(categories) {
		return CoreCategory{}, fmt.Errorf("selective coding: %d categories but %d axial results", len(categories), len(axial))
	}

	best, total := 0, 0.0
	scores := make([]float64, len(categories))
	for i := range categories {
		scores[i] = CentralityScore(categories[i], axial[i])
		total += scores[i]
		if scores[i] > scores[best] {
			best = i
		}
	}

	cat, ax := categories[best], axial[best]
	core := CoreCategory{
		Name: cat.Name,
		Description: fmt.Sprintf("%s integrates %d codes and connects to %d other categories",
			cat.Name, len(cat.RelatedCodes), len(cat.RelatedCategories)),
		Relationships: coreRelationships(cat.Name, ax),
	}
	if total > 0 {
		core.Centrality = scores[best] / total
	}
	core.TheoreticalMemo = theoreticalMemo(core, ax, researchQuestion)
	return core, nil
}

func coreRelationships(core string, ax AxialCodingResult) []Relationship {
	rels := []Relationship{}
	for _, c := range ax.CausalConditions {
		rels = append(rels, Relationship{
			RelatedCategory:  c,
			RelationshipType: RelationCauses,
			Description:      fmt.Sprintf("%s creates the conditions for %s", c, core),
		})
	}
	for _, c := range ax.Consequences {
		rels = append(rels, Relationship{
			RelatedCategory:  c,
			RelationshipType: RelationLeadsTo,
			Description:      fmt.Sprintf("%s leads to %s", core, c),
		})
	}
	for _, s := range ax.ActionStrategies {
		rels = append(rels, Relationship{
			RelatedCategory:  s,
			RelationshipType: RelationInfluences,
			Description:      fmt.Sprintf("%s shapes how %s unfolds", s, core),
		})
	}
	return rels
}

func theoreticalMemo(core CoreCategory, ax AxialCodingResult, researchQuestion string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Theoretical memo: %q emerged as the core category (centrality %.2f)", core.Name, core.Centrality)
	if researchQuestion != "" {
		fmt.Fprintf(&b, " in response to the research question %q", researchQuestion)
	}
	b.WriteString(".")

	sections := []struct {
		label  string
		values []string
	}{
		{"Causal conditions", ax.CausalConditions},
		{"Context", ax.Context},
		{"Intervening conditions", ax.InterveningConditions},
		{"Action strategies", ax.ActionStrategies},
		{"Consequences", ax.Consequences},
	}
	for _, s := range sections {
		if len(s.values) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %s.", s.label, strings.Join(s.values, ", "))
	}
	return b.String()
}
