package thematic

import (
	"context"
	"fmt"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
)

// Theorist is a grounded theory primitive that implements pipz.Chainable[*Study].
// It builds a theory from the study codebook and any themes already extracted,
// answering the study research question.
//
// When the study has an archive the theory is persisted and TheoryArchived
// is emitted.
type Theorist struct {
	identity pipz.Identity
	key      string
	paradigm string
}

// NewTheorist creates a grounded theory primitive.
func NewTheorist(key string) *Theorist {
	return &Theorist{
		identity: pipz.NewIdentity(key, "Grounded theory primitive"),
		key:      key,
	}
}

// Process implements pipz.Chainable[*Study].
func (t *Theorist) Process(ctx context.Context, s *Study) (*Study, error) {
	err := runStage(ctx, s, t.key, "theory", func() (stageOutput, error) {
		paradigm := t.paradigm
		if paradigm == "" {
			paradigm = s.Paradigm
		}

		theory, err := BuildGroundedTheory(TheoryRequest{
			Codes:            s.Codes(),
			Themes:           s.Themes(),
			ResearchQuestion: s.ResearchQuestion,
			Paradigm:         paradigm,
		})
		if err != nil {
			return stageOutput{}, err
		}

		s.update(func(s *Study) {
			s.theory = theory
		})

		if s.archive != nil {
			if err := s.archive.SaveTheory(ctx, s.ID, theory); err != nil {
				return stageOutput{}, fmt.Errorf("failed to archive theory: %w", err)
			}
			capitan.Emit(ctx, TheoryArchived,
				FieldTraceID.Field(s.TraceID),
				FieldStudyID.Field(s.ID),
				FieldScore.Field(float32(theory.Completeness)),
			)
		}

		return stageOutput{
			outputs: len(theory.SupportingCategories),
			score:   float32(theory.Completeness),
		}, nil
	})
	if err != nil {
		return s, fmt.Errorf("theorist: %w", err)
	}
	return s, nil
}

// Identity implements pipz.Chainable[*Study].
func (t *Theorist) Identity() pipz.Identity {
	return t.identity
}

// Schema implements pipz.Chainable[*Study].
func (t *Theorist) Schema() pipz.Node {
	return pipz.Node{Identity: t.identity, Type: "theorist"}
}

// Close implements pipz.Chainable[*Study].
func (t *Theorist) Close() error {
	return nil
}

// WithParadigm overrides the study paradigm, e.g. "constructivist" or "straussian".
func (t *Theorist) WithParadigm(paradigm string) *Theorist {
	t.paradigm = paradigm
	return t
}
