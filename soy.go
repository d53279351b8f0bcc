package thematic

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/zoobzio/astql/postgres"
	"github.com/zoobzio/soy"
)

// CodeRecord is one codebook entry as stored by SoyArchive.
type CodeRecord struct {
	ID         string    `db:"id" type:"uuid" constraints:"primarykey" default:"gen_random_uuid()"`
	StudyID    string    `db:"study_id" type:"uuid" constraints:"notnull" references:"studies(id)"`
	Position   int       `db:"position" type:"integer" constraints:"notnull"`
	Name       string    `db:"name" type:"text" constraints:"notnull"`
	Definition string    `db:"definition" type:"text"`
	Type       CodeType  `db:"type" type:"text" constraints:"notnull"`
	Frequency  int       `db:"frequency" type:"integer" constraints:"notnull"`
	Examples   Excerpts  `db:"examples" type:"jsonb" default:"'[]'"`
	Created    time.Time `db:"created" type:"timestamp" constraints:"notnull"`
}

// TheoryRecord is one grounded theory as stored by SoyArchive.
type TheoryRecord struct {
	ID           string         `db:"id" type:"uuid" constraints:"primarykey" default:"gen_random_uuid()"`
	StudyID      string         `db:"study_id" type:"uuid" constraints:"notnull" references:"studies(id)"`
	CoreCategory string         `db:"core_category" type:"text" constraints:"notnull"`
	Completeness float64        `db:"completeness" type:"double precision" constraints:"notnull"`
	Document     TheoryDocument `db:"document" type:"jsonb" constraints:"notnull"`
	Created      time.Time      `db:"created" type:"timestamp" constraints:"notnull"`
}

// SoyArchive implements Archive using soy for persistence.
type SoyArchive struct {
	studies  *soy.Soy[Study]
	codes    *soy.Soy[CodeRecord]
	theories *soy.Soy[TheoryRecord]
	db       *sqlx.DB
}

// NewSoyArchive creates a new soy-backed Archive implementation.
func NewSoyArchive(db *sqlx.DB) (*SoyArchive, error) {
	renderer := postgres.New()

	studies, err := soy.New[Study](db, "studies", renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize studies table: %w", err)
	}

	codes, err := soy.New[CodeRecord](db, "codes", renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize codes table: %w", err)
	}

	theories, err := soy.New[TheoryRecord](db, "theories", renderer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize theories table: %w", err)
	}

	return &SoyArchive{
		studies:  studies,
		codes:    codes,
		theories: theories,
		db:       db,
	}, nil
}

// CreateStudy persists a new study and returns it with ID populated.
func (a *SoyArchive) CreateStudy(ctx context.Context, study *Study) (*Study, error) {
	inserted, err := a.studies.Insert().Exec(ctx, study)
	if err != nil {
		return nil, fmt.Errorf("failed to insert study: %w", err)
	}
	return inserted, nil
}

// GetStudy loads a study by ID with its codebook and latest theory.
func (a *SoyArchive) GetStudy(ctx context.Context, id string) (*Study, error) {
	study, err := a.studies.Select().
		Where("id", "=", "id").
		Exec(ctx, map[string]any{"id": id})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("study %q: %w", id, ErrMissingReference)
		}
		return nil, fmt.Errorf("failed to get study: %w", err)
	}

	if err := a.hydrateStudy(ctx, study); err != nil {
		return nil, err
	}
	return study, nil
}

// SaveCodes replaces the stored codebook of a study.
func (a *SoyArchive) SaveCodes(ctx context.Context, studyID string, codes []Code) error {
	_, err := a.codes.Remove().
		Where("study_id", "=", "study_id").
		Exec(ctx, map[string]any{"study_id": studyID})
	if err != nil {
		return fmt.Errorf("failed to clear codes: %w", err)
	}

	now := time.Now()
	for i, c := range codes {
		record := &CodeRecord{
			StudyID:    studyID,
			Position:   i,
			Name:       c.Name,
			Definition: c.Definition,
			Type:       c.Type,
			Frequency:  c.Frequency,
			Examples:   Excerpts(c.Examples),
			Created:    now,
		}
		if _, err := a.codes.Insert().Exec(ctx, record); err != nil {
			return fmt.Errorf("failed to insert code %q: %w", c.Name, err)
		}
	}

	return a.touch(ctx, studyID)
}

// GetCodes loads the stored codebook of a study in codebook order.
func (a *SoyArchive) GetCodes(ctx context.Context, studyID string) ([]Code, error) {
	records, err := a.codes.Query().
		Where("study_id", "=", "study_id").
		OrderBy("position", "asc").
		Exec(ctx, map[string]any{"study_id": studyID})
	if err != nil {
		return nil, fmt.Errorf("failed to get codes: %w", err)
	}

	codes := make([]Code, len(records))
	for i, r := range records {
		codes[i] = Code{
			Name:       r.Name,
			Definition: r.Definition,
			Examples:   []string(r.Examples),
			Frequency:  r.Frequency,
			Type:       r.Type,
		}
	}
	return codes, nil
}

// SaveTheory appends a theory to the study's history.
func (a *SoyArchive) SaveTheory(ctx context.Context, studyID string, theory *GroundedTheoryResult) error {
	record := &TheoryRecord{
		StudyID:      studyID,
		CoreCategory: theory.CoreCategory.Name,
		Completeness: theory.Completeness,
		Document:     TheoryDocument(*theory),
		Created:      time.Now(),
	}
	if _, err := a.theories.Insert().Exec(ctx, record); err != nil {
		return fmt.Errorf("failed to insert theory: %w", err)
	}
	return a.touch(ctx, studyID)
}

// GetTheories loads every theory built for a study, oldest first.
func (a *SoyArchive) GetTheories(ctx context.Context, studyID string) ([]*GroundedTheoryResult, error) {
	records, err := a.theories.Query().
		Where("study_id", "=", "study_id").
		OrderBy("created", "asc").
		Exec(ctx, map[string]any{"study_id": studyID})
	if err != nil {
		return nil, fmt.Errorf("failed to get theories: %w", err)
	}

	theories := make([]*GroundedTheoryResult, len(records))
	for i, r := range records {
		theory := GroundedTheoryResult(r.Document)
		theories[i] = &theory
	}
	return theories, nil
}

// DeleteStudy removes a study with its codes and theories.
func (a *SoyArchive) DeleteStudy(ctx context.Context, id string) error {
	// Children first (foreign key constraints)
	_, err := a.codes.Remove().
		Where("study_id", "=", "study_id").
		Exec(ctx, map[string]any{"study_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete codes: %w", err)
	}

	_, err = a.theories.Remove().
		Where("study_id", "=", "study_id").
		Exec(ctx, map[string]any{"study_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete theories: %w", err)
	}

	_, err = a.studies.Remove().
		Where("id", "=", "id").
		Exec(ctx, map[string]any{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete study: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (a *SoyArchive) Close() error {
	return a.db.Close()
}

// touch bumps a study's updated_at.
func (a *SoyArchive) touch(ctx context.Context, studyID string) error {
	_, err := a.studies.Modify().
		Set("updated_at", "updated_at").
		Where("id", "=", "id").
		Exec(ctx, map[string]any{
			"updated_at": time.Now(),
			"id":         studyID,
		})
	if err != nil {
		return fmt.Errorf("failed to update study: %w", err)
	}
	return nil
}

// hydrateStudy loads the codebook and latest theory into a study.
func (a *SoyArchive) hydrateStudy(ctx context.Context, study *Study) error {
	codes, err := a.GetCodes(ctx, study.ID)
	if err != nil {
		return err
	}
	theories, err := a.GetTheories(ctx, study.ID)
	if err != nil {
		return err
	}

	study.SetArchive(a)
	study.update(func(s *Study) {
		s.codes = codes
		if s.negatives == nil {
			s.negatives = make(map[string]NegativeCaseReport)
		}
		if len(theories) > 0 {
			s.theory = theories[len(theories)-1]
		}
	})
	return nil
}
