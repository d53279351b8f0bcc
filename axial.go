package thematic

// AxialCoding fills the paradigm model for every category. Other categories
// are placed into the first slot their name cues; member definitions add the
// member code to every slot their wording cues. The returned categories carry
// RelatedCategories; the input slice is left untouched.
func AxialCoding(categories []Category, codes []Code) ([]Category, []AxialCodingResult) {
	definitions := make(map[string]string, len(codes))
	for _, c := range codes {
		if _, ok := definitions[c.Name]; !ok {
			definitions[c.Name] = c.Definition
		}
	}

	out := make([]Category, len(categories))
	results := make([]AxialCodingResult, len(categories))
	for i, cat := range categories {
		res := AxialCodingResult{
			Phenomenon:            cat.Name,
			CausalConditions:      []string{},
			Context:               []string{},
			InterveningConditions: []string{},
			ActionStrategies:      []string{},
			Consequences:          []string{},
		}
		related := []string{}

		for j, other := range categories {
			if i == j {
				continue
			}
			rule, ok := AxialCrossReferences.First(other.Name)
			if !ok {
				continue
			}
			res.add(rule.Name, other.Name)
			related = appendUnique(related, other.Name)
		}

		for _, name := range cat.RelatedCodes {
			for _, rule := range AxialDefinitionCues.All(definitions[name]) {
				res.add(rule.Name, name)
			}
		}

		out[i] = cat
		out[i].RelatedCategories = related
		results[i] = res
	}
	return out, results
}

func (r *AxialCodingResult) add(slot, value string) {
	switch slot {
	case slotCausal:
		r.CausalConditions = appendUnique(r.CausalConditions, value)
	case slotContext:
		r.Context = appendUnique(r.Context, value)
	case slotIntervening:
		r.InterveningConditions = appendUnique(r.InterveningConditions, value)
	case slotStrategies:
		r.ActionStrategies = appendUnique(r.ActionStrategies, value)
	case slotConsequences:
		r.Consequences = appendUnique(r.Consequences, value)
	}
}
