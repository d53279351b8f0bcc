// Package thematictest provides test utilities for thematic.
package thematictest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/zoobzio/thematic"
)

// MockArchive implements thematic.Archive for testing without a database.
type MockArchive struct {
	studies  map[string]*thematic.Study
	codes    map[string][]thematic.Code
	theories map[string][]*thematic.GroundedTheoryResult
	saveErr  error
	mu       sync.RWMutex
}

// NewMockArchive creates a new in-memory mock for thematic.Archive.
func NewMockArchive() *MockArchive {
	return &MockArchive{
		studies:  make(map[string]*thematic.Study),
		codes:    make(map[string][]thematic.Code),
		theories: make(map[string][]*thematic.GroundedTheoryResult),
	}
}

// FailSaves makes every subsequent SaveCodes and SaveTheory return err.
func (m *MockArchive) FailSaves(err error) *MockArchive {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
	return m
}

// CreateStudy persists a new study and returns it with ID populated.
func (m *MockArchive) CreateStudy(_ context.Context, study *thematic.Study) (*thematic.Study, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	study.ID = uuid.New().String()
	m.studies[study.ID] = study
	return study, nil
}

// GetStudy loads a study by ID.
func (m *MockArchive) GetStudy(_ context.Context, id string) (*thematic.Study, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	study, ok := m.studies[id]
	if !ok {
		return nil, fmt.Errorf("study %q: %w", id, thematic.ErrMissingReference)
	}
	return study, nil
}

// SaveCodes replaces the stored codebook of a study.
func (m *MockArchive) SaveCodes(_ context.Context, studyID string, codes []thematic.Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	m.codes[studyID] = append([]thematic.Code(nil), codes...)
	return nil
}

// GetCodes loads the stored codebook of a study.
func (m *MockArchive) GetCodes(_ context.Context, studyID string) ([]thematic.Code, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	codes, ok := m.codes[studyID]
	if !ok {
		return []thematic.Code{}, nil
	}
	return append([]thematic.Code(nil), codes...), nil
}

// SaveTheory appends a theory to the study's history.
func (m *MockArchive) SaveTheory(_ context.Context, studyID string, theory *thematic.GroundedTheoryResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	m.theories[studyID] = append(m.theories[studyID], theory)
	return nil
}

// GetTheories loads every theory saved for a study, oldest first.
func (m *MockArchive) GetTheories(_ context.Context, studyID string) ([]*thematic.GroundedTheoryResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]*thematic.GroundedTheoryResult{}, m.theories[studyID]...), nil
}

// DeleteStudy removes a study with its codes and theories.
func (m *MockArchive) DeleteStudy(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.studies, id)
	delete(m.codes, id)
	delete(m.theories, id)
	return nil
}

// Verify MockArchive implements thematic.Archive.
var _ thematic.Archive = (*MockArchive)(nil)

// NewTestStudy creates a Study backed by a fresh MockArchive.
func NewTestStudy(t *testing.T, researchQuestion string) *thematic.Study {
	t.Helper()
	study, err := thematic.NewStudy(context.Background(), NewMockArchive(), researchQuestion)
	if err != nil {
		t.Fatalf("failed to create test study: %v", err)
	}
	return study
}

// StressCodebook returns a small codebook about student stress that
// exercises every analysis: overlapping names for theming and refinement,
// contrasting poles for patterns and negative cases, and paradigm cues for
// axial coding.
func StressCodebook() []thematic.Code {
	return []thematic.Code{
		{Name: "exam_stress", Definition: "Pressure felt before exams", Examples: []string{"I feel anxious about exams"}, Frequency: 4, Type: thematic.CodeInVivo},
		{Name: "exam_stress_relief", Definition: "Strategies that reduce exam pressure", Examples: []string{"Managing stress through meditation"}, Frequency: 2, Type: thematic.CodeConstructed},
		{Name: "coping_support", Definition: "Support from friends because of stress", Examples: []string{"My friends help me cope"}, Frequency: 3, Type: thematic.CodeConstructed},
		{Name: "coping_obstacle", Definition: "Barriers that result in isolation", Examples: []string{"No time to see anyone"}, Frequency: 1, Type: thematic.CodeConstructed},
		{Name: "positive_outlook", Definition: "Hopeful view of the future", Examples: []string{"It will get better"}, Frequency: 2, Type: thematic.CodeInVivo},
		{Name: "negative_outlook", Definition: "Pessimistic expectations", Examples: []string{"Nothing ever changes"}, Frequency: 1, Type: thematic.CodeInVivo},
	}
}

// RequireCode asserts that the study codebook contains a code with the given name.
func RequireCode(t *testing.T, study *thematic.Study, name string) thematic.Code {
	t.Helper()
	for _, c := range study.Codes() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("expected code %q in codebook %v", name, thematic.CodeNames(study.Codes()))
	return thematic.Code{}
}

// RequireTheme asserts that the study has a theme with the given name.
func RequireTheme(t *testing.T, study *thematic.Study, name string) thematic.Theme {
	t.Helper()
	theme, ok := study.Theme(name)
	if !ok {
		t.Fatalf("expected theme %q", name)
	}
	return theme
}
