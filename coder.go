package thematic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/pipz"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ErrNoText is returned by the coding stage when the study has no text to code.
var ErrNoText = errors.New("no text attached to study")

// Coder is a coding primitive that implements pipz.Chainable[*Study].
// It codes the study text and folds the result into the study codebook.
type Coder struct {
	identity    pipz.Identity
	key         string
	methodology Methodology
	exampleCap  int
}

// NewCoder creates a coding primitive.
//
// Names already in the study codebook are passed to GenerateCodes as existing
// codes, so re-running the coder over new text grows one codebook: matching
// codes add their frequency and examples, new codes are appended.
//
// Example:
//
//	coder := thematic.NewCoder("interviews").WithExampleCap(10)
//	study, _ = coder.Process(ctx, study)
//	codes := study.Codes()
func NewCoder(key string) *Coder {
	return &Coder{
		identity: pipz.NewIdentity(key, "Text coding primitive"),
		key:      key,
	}
}

// Process implements pipz.Chainable[*Study].
func (c *Coder) Process(ctx context.Context, s *Study) (*Study, error) {
	err := runStage(ctx, s, c.key, "coding", func() (stageOutput, error) {
		text := s.Text()
		if strings.TrimSpace(text) == "" {
			return stageOutput{}, ErrNoText
		}

		methodology := c.methodology
		if methodology == "" {
			methodology = s.Methodology
		}

		prior := s.Codes()
		result := GenerateCodes(text, CodeNames(prior), methodology, WithExampleCap(c.exampleCap))
		codes := foldCodebook(prior, result.Codes, c.exampleCap)

		s.update(func(s *Study) {
			s.codes = codes
			s.segments = result.Segments
			s.summary = &result.Summary
		})

		if err := archiveCodes(ctx, s, codes); err != nil {
			return stageOutput{}, err
		}
		return stageOutput{outputs: len(result.Codes)}, nil
	})
	if err != nil {
		return s, fmt.Errorf("coder: %w", err)
	}
	return s, nil
}

// Identity implements pipz.Chainable[*Study].
func (c *Coder) Identity() pipz.Identity {
	return c.identity
}

// Schema implements pipz.Chainable[*Study].
func (c *Coder) Schema() pipz.Node {
	return pipz.Node{Identity: c.identity, Type: "coder"}
}

// Close implements pipz.Chainable[*Study].
func (c *Coder) Close() error {
	return nil
}

// WithMethodology overrides the study methodology for this coder.
func (c *Coder) WithMethodology(m Methodology) *Coder {
	c.methodology = m
	return c
}

// WithExampleCap limits excerpts kept per code.
func (c *Coder) WithExampleCap(n int) *Coder {
	c.exampleCap = n
	return c
}

// foldCodebook adds fresh attachments to a prior codebook, keeping prior order.
func foldCodebook(prior, fresh []Code, exampleCap int) []Code {
	book := orderedmap.New[string, Code]()
	for _, c := range prior {
		book.Set(c.Name, c.clone())
	}
	for _, c := range fresh {
		existing, ok := book.Get(c.Name)
		if !ok {
			book.Set(c.Name, c.clone())
			continue
		}
		existing.Frequency += c.Frequency
		existing.Examples = append(existing.Examples, c.Examples...)
		if exampleCap > 0 {
			existing.Examples = capStrings(existing.Examples, exampleCap)
		}
		book.Set(c.Name, existing)
	}

	out := make([]Code, 0, book.Len())
	for pair := book.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Refiner is a codebook refinement primitive that implements pipz.Chainable[*Study].
// It replaces the study codebook with its refined form.
type Refiner struct {
	identity pipz.Identity
	key      string
}

// NewRefiner creates a codebook refinement primitive.
func NewRefiner(key string) *Refiner {
	return &Refiner{
		identity: pipz.NewIdentity(key, "Codebook refinement primitive"),
		key:      key,
	}
}

// Process implements pipz.Chainable[*Study].
func (r *Refiner) Process(ctx context.Context, s *Study) (*Study, error) {
	err := runStage(ctx, s, r.key, "refine", func() (stageOutput, error) {
		result := RefineCodebook(s.Codes())
		s.update(func(s *Study) {
			s.codes = result.Refined
			s.merges = result.Merges
		})
		if err := archiveCodes(ctx, s, result.Refined); err != nil {
			return stageOutput{}, err
		}
		return stageOutput{outputs: len(result.Merges)}, nil
	})
	if err != nil {
		return s, fmt.Errorf("refiner: %w", err)
	}
	return s, nil
}

// Identity implements pipz.Chainable[*Study].
func (r *Refiner) Identity() pipz.Identity {
	return r.identity
}

// Schema implements pipz.Chainable[*Study].
func (r *Refiner) Schema() pipz.Node {
	return pipz.Node{Identity: r.identity, Type: "refiner"}
}

// Close implements pipz.Chainable[*Study].
func (r *Refiner) Close() error {
	return nil
}

// archiveCodes persists the codebook when the study has an archive.
func archiveCodes(ctx context.Context, s *Study, codes []Code) error {
	if s.archive == nil {
		return nil
	}
	if err := s.archive.SaveCodes(ctx, s.ID, codes); err != nil {
		return fmt.Errorf("failed to archive codes: %w", err)
	}
	capitan.Emit(ctx, CodesArchived,
		FieldTraceID.Field(s.TraceID),
		FieldStudyID.Field(s.ID),
		FieldCodeCount.Field(len(codes)),
	)
	return nil
}
