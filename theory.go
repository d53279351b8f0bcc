package thematic

import (
	"errors"
	"fmt"
)

// ErrNoCategories is returned when open coding produces no categories.
var ErrNoCategories = errors.New("no categories: open coding produced nothing to select a core category from")

// TheoryStageIntegration is the terminal stage reported by a completed theory build.
const TheoryStageIntegration = "theory_integration"

// RelationshipType labels an edge from the core category.
type RelationshipType string

// Relationship types.
const (
	RelationCauses      RelationshipType = "causes"
	RelationLeadsTo     RelationshipType = "leads_to"
	RelationInfluences  RelationshipType = "influences"
	RelationPartOf      RelationshipType = "part_of"
	RelationContradicts RelationshipType = "contradicts"
)

// Dimension is the qualitative range a category property varies along.
type Dimension struct {
	Property string `json:"property"`
	Range    string `json:"range"`
}

// Category is an open-coding abstraction over codes.
type Category struct {
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	Properties        []string    `json:"properties"`
	Dimensions        []Dimension `json:"dimensions"`
	RelatedCodes      []string    `json:"relatedCodes"`
	RelatedCategories []string    `json:"relatedCategories"`
	Examples          []string    `json:"examples"`
}

// AxialCodingResult applies the paradigm model to one category.
type AxialCodingResult struct {
	Phenomenon            string   `json:"phenomenon"`
	CausalConditions      []string `json:"causalConditions"`
	Context               []string `json:"context"`
	InterveningConditions []string `json:"interveningConditions"`
	ActionStrategies      []string `json:"actionStrategies"`
	Consequences          []string `json:"consequences"`
}

// Relationship connects the core category to another category.
type Relationship struct {
	RelatedCategory  string           `json:"relatedCategory"`
	RelationshipType RelationshipType `json:"relationshipType"`
	Description      string           `json:"description"`
}

// CoreCategory is the category elevated as most central to the theory.
type CoreCategory struct {
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Centrality      float64        `json:"centrality"`
	Relationships   []Relationship `json:"relationships"`
	TheoreticalMemo string         `json:"theoreticalMemo"`
}

// GroundedTheoryResult is the integrated theory.
type GroundedTheoryResult struct {
	CoreCategory         CoreCategory        `json:"coreCategory"`
	SupportingCategories []Category          `json:"supportingCategories"`
	AxialResults         []AxialCodingResult `json:"axialResults"`
	TheoreticalFramework string              `json:"theoreticalFramework"`
	Storyline            string              `json:"storyline"`
	Stage                string              `json:"stage"`
	Completeness         float64             `json:"completeness"`
	Recommendations      []string            `json:"recommendations"`
}

// TheoryRequest is the input to BuildGroundedTheory. Themes are optional.
type TheoryRequest struct {
	Codes            []Code
	Themes           []Theme
	ResearchQuestion string
	Paradigm         string
}

// BuildGroundedTheory runs open, axial and selective coding followed by
// theory integration. It fails with ErrNoCategories when there is nothing to
// categorize.
func BuildGroundedTheory(req TheoryRequest) (*GroundedTheoryResult, error) {
	categories := OpenCoding(req.Codes)
	categories, axial := AxialCoding(categories, req.Codes)

	core, err := SelectiveCoding(categories, axial, req.ResearchQuestion)
	if err != nil {
		return nil, fmt.Errorf("selective coding: %w", err)
	}

	return integrateTheory(req, core, categories, axial), nil
}
