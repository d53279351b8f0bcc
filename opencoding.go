package thematic

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const miscellaneousCategory = "Miscellaneous"

type categoryDraft struct {
	name        string
	description string
	members     []Code
}

// OpenCoding classifies every code into a category and merges categories
// whose names are plural variants of each other or share a word.
// A category survives with a single code, so small datasets still categorize.
func OpenCoding(codes []Code) []Category {
	drafts := orderedmap.New[string, *categoryDraft]()
	for _, c := range codes {
		name, description := classifyCode(c)
		draft, ok := drafts.Get(name)
		if !ok {
			draft = &categoryDraft{name: name, description: description}
			drafts.Set(name, draft)
		}
		draft.members = append(draft.members, c)
	}

	var merged []*categoryDraft
	for pair := drafts.Oldest(); pair != nil; pair = pair.Next() {
		d := pair.Value
		placed := false
		for _, kept := range merged {
			if relatedCategoryNames(kept.name, d.name) {
				kept.members = append(kept.members, d.members...)
				placed = true
				break
			}
		}
		if !placed {
			merged = append(merged, &categoryDraft{
				name:        d.name,
				description: d.description,
				members:     append([]Code(nil), d.members...),
			})
		}
	}

	categories := make([]Category, 0, len(merged))
	for _, d := range merged {
		categories = append(categories, buildCategory(d))
	}
	return categories
}

// classifyCode runs the category decision list over the code name, then its
// definition, before falling back to the first significant name word.
func classifyCode(c Code) (name, description string) {
	if r, ok := CategoryRules.First(c.Name); ok {
		return r.Name, r.Description
	}
	if r, ok := CategoryRules.First(c.Definition); ok {
		return r.Name, r.Description
	}
	for _, w := range words(c.Name) {
		if significant(w) {
			name = titleCase(w)
			return name, fmt.Sprintf("Category emerging from codes about %s", w)
		}
	}
	return miscellaneousCategory, "Codes that fit no other category"
}

// relatedCategoryNames reports whether two names are singular/plural variants
// or share any word.
func relatedCategoryNames(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	if pluralOf(la, lb) || pluralOf(lb, la) {
		return true
	}
	in := make(map[string]struct{})
	for _, w := range tokenSet(la) {
		in[w] = struct{}{}
	}
	for _, w := range tokenSet(lb) {
		if _, ok := in[w]; ok {
			return true
		}
	}
	return false
}

func pluralOf(plural, singular string) bool {
	switch {
	case plural == singular+"s", plural == singular+"es":
		return true
	case strings.HasSuffix(plural, "ies") && strings.HasSuffix(singular, "y"):
		return strings.TrimSuffix(plural, "ies") == strings.TrimSuffix(singular, "y")
	}
	return false
}

func buildCategory(d *categoryDraft) Category {
	counter := newTermCounter()
	var examples []string
	for _, m := range d.members {
		for _, w := range words(m.Name + " " + m.Definition) {
			if significant(w) {
				counter.add(w)
			}
		}
		examples = append(examples, m.Examples...)
	}
	properties := counter.top(DefaultCategoryProperties)

	dimensions := make([]Dimension, 0, len(properties))
	for _, p := range properties {
		dimensions = append(dimensions, Dimension{Property: p, Range: dimensionRange(p, d.members)})
	}

	return Category{
		Name:              d.name,
		Description:       d.description,
		Properties:        properties,
		Dimensions:        dimensions,
		RelatedCodes:      CodeNames(d.members),
		RelatedCategories: []string{},
		Examples:          capStrings(examples, DefaultCategoryExampleCap),
	}
}

// dimensionRange sniffs the member text mentioning a property for intensity
// or frequency language.
func dimensionRange(property string, members []Code) string {
	var text strings.Builder
	for _, m := range members {
		for _, s := range append([]string{m.Name, m.Definition}, m.Examples...) {
			if strings.Contains(strings.ToLower(s), property) {
				text.WriteString(s)
				text.WriteByte(' ')
			}
		}
	}
	switch {
	case IntensityTerms.Matches(text.String()):
		return IntensityTerms.Name
	case FrequencyTerms.Matches(text.String()):
		return FrequencyTerms.Name
	default:
		return "varies across contexts"
	}
}
