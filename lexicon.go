package thematic

import "strings"

// Rule is a declarative lexicon entry: a named label fired by trigger terms.
// Terms match as case-insensitive substrings of the inspected text. Suffixes
// match the endings of individual words longer than the suffix by at least
// three characters.
type Rule struct {
	Name        string
	Description string
	Terms       []string
	Suffixes    []string
}

// Matches reports whether any trigger fires on text.
func (r Rule) Matches(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range r.Terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	if len(r.Suffixes) == 0 {
		return false
	}
	for _, w := range words(lower) {
		for _, suffix := range r.Suffixes {
			if len(w) >= len(suffix)+3 && strings.HasSuffix(w, suffix) {
				return true
			}
		}
	}
	return false
}

// RuleSet is an ordered decision list of rules.
type RuleSet []Rule

// First returns the earliest rule that matches text.
func (rs RuleSet) First(text string) (Rule, bool) {
	for _, r := range rs {
		if r.Matches(text) {
			return r, true
		}
	}
	return Rule{}, false
}

// All returns every rule that matches text, in list order.
func (rs RuleSet) All(text string) []Rule {
	var out []Rule
	for _, r := range rs {
		if r.Matches(text) {
			out = append(out, r)
		}
	}
	return out
}

// Strength grades how sharply a negative case contradicts a theme.
type Strength string

// Contradiction strengths.
const (
	StrengthStrong   Strength = "strong"
	StrengthModerate Strength = "moderate"
	StrengthWeak     Strength = "weak"
)

// rank orders strengths for threshold filtering; unknown values rank as weak.
func (s Strength) rank() int {
	switch s {
	case StrengthStrong:
		return 3
	case StrengthModerate:
		return 2
	default:
		return 1
	}
}

// Opposition is a pair of opposing poles.
type Opposition struct {
	Name     string
	Left     Rule
	Right    Rule
	Strength Strength
}

func pole(term string) Rule {
	return Rule{Name: term, Terms: []string{term}}
}

func opposition(left, right string, strength Strength) Opposition {
	return Opposition{
		Name:     left + "/" + right,
		Left:     pole(left),
		Right:    pole(right),
		Strength: strength,
	}
}

// Coding lexicons.
var (
	// AffectVerbs introduce in-vivo expressions of feeling or cognition.
	AffectVerbs = []string{
		"feel", "feels", "felt", "feeling",
		"think", "thinks", "thought",
		"believe", "believes", "believed",
		"worry", "worried",
		"hope", "hoped",
		"fear", "feared",
	}

	// RelationalDynamics fires the grounded-theory relational code.
	RelationalDynamics = Rule{
		Name:        "relational_dynamics",
		Description: "Interpersonal dynamics shaping the participant's experience",
		Terms:       []string{"relationship", "family", "friend", "partner", "colleague", "conflict", "trust", "community", "together"},
	}

	// ThematicRules fire under a thematic-analysis methodology.
	ThematicRules = RuleSet{
		{
			Name:        "challenges_faced",
			Description: "Difficulties, barriers or problems the participant encountered",
			Terms:       []string{"challenge", "difficult", "problem", "struggle", "barrier", "obstacle", "hard"},
		},
		{
			Name:        "coping_strategies",
			Description: "Approaches the participant used to handle a situation",
			Terms:       []string{"strategy", "approach", "cope", "coping", "manage", "solution", "method", "technique"},
		},
		{
			Name:        "emotional_response",
			Description: "Emotions expressed in reaction to events",
			Terms:       []string{"happy", "sad", "angry", "anxious", "frustrated", "excited", "afraid", "worried", "stressed", "overwhelmed"},
		},
	}

	// PhenomenologyRules fire under a phenomenological methodology.
	PhenomenologyRules = RuleSet{
		{
			Name:        "lived_experience",
			Description: "First-person account of how a phenomenon was lived through",
			Terms:       []string{"experience", "felt", "lived", "moment", "meaning", "perceive", "sense of", "aware"},
		},
	}
)

// Theming lexicons.
var (
	// Frameworks are the theoretical frameworks applied by deductive theming.
	Frameworks = RuleSet{
		{
			Name:        "Challenges and Barriers",
			Description: "Obstacles, difficulties and constraints participants face",
			Terms:       []string{"challenge", "barrier", "difficult", "obstacle", "problem", "struggle", "constraint"},
		},
		{
			Name:        "Strategies and Solutions",
			Description: "Approaches and actions participants use to address their situation",
			Terms:       []string{"strategy", "solution", "cope", "coping", "approach", "manage", "technique"},
		},
		{
			Name:        "Emotional Experiences",
			Description: "Feelings and affective responses described by participants",
			Terms:       []string{"emotion", "feel", "felt", "anxious", "anxiety", "stress", "fear", "happy", "frustrat", "overwhelm"},
		},
		{
			Name:        "Relationships and Interactions",
			Description: "Social ties and interpersonal exchanges shaping experience",
			Terms:       []string{"relationship", "relational", "family", "friend", "social", "interact", "support", "colleague"},
		},
		{
			Name:        "Identity and Self-Concept",
			Description: "How participants understand and present themselves",
			Terms:       []string{"identity", "self", "role", "belong", "values"},
		},
	}

	// ContrastPairs drive contrast pattern detection.
	ContrastPairs = []Opposition{
		opposition("positive", "negative", StrengthStrong),
		opposition("easy", "difficult", StrengthStrong),
		opposition("success", "failure", StrengthStrong),
		opposition("before", "after", StrengthStrong),
		opposition("challenge", "solution", StrengthStrong),
	}

	// NegativeCaseOppositions drive negative case detection, strongest first.
	NegativeCaseOppositions = []Opposition{
		opposition("positive", "negative", StrengthStrong),
		opposition("success", "failure", StrengthStrong),
		opposition("easy", "difficult", StrengthModerate),
		opposition("support", "obstacle", StrengthModerate),
		opposition("benefit", "cost", StrengthModerate),
	}
)

// Theory lexicons.
var (
	// CategoryRules classify codes into open-coding categories.
	CategoryRules = RuleSet{
		{
			Name:        "Processes",
			Description: "Actions and processes participants engage in",
			Terms:       []string{"process", "action", "doing"},
			Suffixes:    []string{"ing"},
		},
		{
			Name:        "Conditions",
			Description: "Circumstances and conditions surrounding the phenomenon",
			Terms:       []string{"condition", "context", "circumstance", "environment", "situation"},
		},
		{
			Name:        "Strategies",
			Description: "Deliberate strategies used to handle the phenomenon",
			Terms:       []string{"strateg", "approach", "cope", "method", "technique", "solution", "tactic"},
		},
		{
			Name:        "Emotions",
			Description: "Emotional states and affective responses",
			Terms:       []string{"emotion", "feel", "felt", "anxious", "anxiety", "stress", "fear", "happy", "sad", "angry", "frustrat", "overwhelm", "worr"},
		},
		{
			Name:        "Challenges",
			Description: "Barriers and difficulties encountered",
			Terms:       []string{"challenge", "barrier", "difficult", "obstacle", "problem", "struggle"},
		},
		{
			Name:        "Outcomes",
			Description: "Results and consequences of actions and conditions",
			Terms:       []string{"outcome", "result", "consequence", "effect", "impact", "success", "failure"},
		},
		{
			Name:        "Relationships",
			Description: "Interpersonal ties and social dynamics",
			Terms:       []string{"relationship", "relational", "family", "friend", "social", "support", "trust", "colleague"},
		},
	}

	// IntensityTerms mark a property that varies in intensity.
	IntensityTerms = Rule{
		Name:  "low to high intensity",
		Terms: []string{"very", "extremely", "intense", "slightly", "somewhat", "deeply", "strongly"},
	}

	// FrequencyTerms mark a property that varies in frequency.
	FrequencyTerms = Rule{
		Name:  "rare to frequent",
		Terms: []string{"always", "often", "sometimes", "rarely", "never", "frequently", "occasionally"},
	}
)

// Axial slots.
const (
	slotCausal       = "causal"
	slotContext      = "context"
	slotIntervening  = "intervening"
	slotStrategies   = "strategies"
	slotConsequences = "consequences"
)

var (
	// AxialCrossReferences place another category into a paradigm slot by name.
	AxialCrossReferences = RuleSet{
		{Name: slotCausal, Terms: []string{"condition", "cause", "challenge", "barrier", "trigger"}},
		{Name: slotContext, Terms: []string{"context", "environment", "setting", "relationship", "social"}},
		{Name: slotIntervening, Terms: []string{"emotion", "feeling", "belief", "support"}},
		{Name: slotStrategies, Terms: []string{"strateg", "process", "action", "coping", "approach"}},
		{Name: slotConsequences, Terms: []string{"outcome", "result", "consequence", "effect", "impact"}},
	}

	// AxialDefinitionCues scan member definitions for paradigm-slot language.
	AxialDefinitionCues = RuleSet{
		{Name: slotCausal, Terms: []string{"because", "due to", "caused by", "triggered", "result of"}},
		{Name: slotContext, Terms: []string{"when ", "while ", "during", "setting", "environment"}},
		{Name: slotIntervening, Terms: []string{"however", "although", "despite", "depends", "depending"}},
		{Name: slotStrategies, Terms: []string{"manage", "cope", "strategy", "approach", "handle", "try to"}},
		{Name: slotConsequences, Terms: []string{"outcome", "led to", "leads to", "therefore", "consequently", "impact"}},
	}
)
