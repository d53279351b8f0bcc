package thematic

import (
	"context"
	"errors"
)

// ErrMissingReference is returned when a lookup names a study, theme or
// other artifact that does not exist.
var ErrMissingReference = errors.New("missing reference")

// Archive defines the interface for study persistence.
// Implementations store studies, their codebooks and the theories built from them.
type Archive interface {
	// CreateStudy persists a new study and returns it with ID populated.
	CreateStudy(ctx context.Context, study *Study) (*Study, error)

	// GetStudy loads a study by ID with its codebook and latest theory.
	// Returns an error wrapping ErrMissingReference when no study matches.
	GetStudy(ctx context.Context, id string) (*Study, error)

	// SaveCodes replaces the stored codebook of a study.
	SaveCodes(ctx context.Context, studyID string, codes []Code) error

	// GetCodes loads the stored codebook of a study in codebook order.
	GetCodes(ctx context.Context, studyID string) ([]Code, error)

	// SaveTheory appends a theory to the study's history.
	SaveTheory(ctx context.Context, studyID string, theory *GroundedTheoryResult) error

	// GetTheories loads every theory built for a study, oldest first.
	GetTheories(ctx context.Context, studyID string) ([]*GroundedTheoryResult, error)

	// DeleteStudy removes a study with its codes and theories.
	DeleteStudy(ctx context.Context, id string) error
}
