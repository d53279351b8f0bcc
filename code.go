package thematic

// CodeType identifies how a code was produced.
type CodeType string

// Code types.
const (
	CodeInVivo      CodeType = "in_vivo"
	CodeConstructed CodeType = "constructed"
	CodeTheoretical CodeType = "theoretical"
)

// Code is an atomic labeled observation attached to text excerpts.
// Name is a unique slug within a codebook.
type Code struct {
	Name       string   `json:"name" yaml:"name" validate:"required"`
	Definition string   `json:"definition" yaml:"definition"`
	Examples   []string `json:"examples" yaml:"examples"`
	Frequency  int      `json:"frequency" yaml:"frequency" validate:"gte=0"`
	Type       CodeType `json:"type" yaml:"type" validate:"omitempty,oneof=in_vivo constructed theoretical"`
}

// clone returns a copy of c that shares no backing arrays with it.
func (c Code) clone() Code {
	out := c
	out.Examples = append([]string(nil), c.Examples...)
	return out
}

// cloneCodes deep-copies a codebook.
func cloneCodes(codes []Code) []Code {
	if codes == nil {
		return nil
	}
	out := make([]Code, len(codes))
	for i, c := range codes {
		out[i] = c.clone()
	}
	return out
}

// CodeNames returns the names of codes in order.
func CodeNames(codes []Code) []string {
	names := make([]string, len(codes))
	for i, c := range codes {
		names[i] = c.Name
	}
	return names
}

// totalFrequency sums the frequency mass of a codebook.
func totalFrequency(codes []Code) int {
	total := 0
	for _, c := range codes {
		total += c.Frequency
	}
	return total
}
