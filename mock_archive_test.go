package thematic

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// mockArchive implements Archive for testing without a database.
type mockArchive struct {
	studies  map[string]*Study
	codes    map[string][]Code
	theories map[string][]*GroundedTheoryResult
	saveErr  error
	mu       sync.RWMutex
}

func newMockArchive() *mockArchive {
	return &mockArchive{
		studies:  make(map[string]*Study),
		codes:    make(map[string][]Code),
		theories: make(map[string][]*GroundedTheoryResult),
	}
}

func (m *mockArchive) CreateStudy(_ context.Context, study *Study) (*Study, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	study.ID = uuid.New().String()
	m.studies[study.ID] = study
	return study, nil
}

func (m *mockArchive) GetStudy(_ context.Context, id string) (*Study, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	study, ok := m.studies[id]
	if !ok {
		return nil, fmt.Errorf("study %q: %w", id, ErrMissingReference)
	}
	return study, nil
}

func (m *mockArchive) SaveCodes(_ context.Context, studyID string, codes []Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	m.codes[studyID] = cloneCodes(codes)
	return nil
}

func (m *mockArchive) GetCodes(_ context.Context, studyID string) ([]Code, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneCodes(m.codes[studyID]), nil
}

func (m *mockArchive) SaveTheory(_ context.Context, studyID string, theory *GroundedTheoryResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.saveErr != nil {
		return m.saveErr
	}
	m.theories[studyID] = append(m.theories[studyID], theory)
	return nil
}

func (m *mockArchive) GetTheories(_ context.Context, studyID string) ([]*GroundedTheoryResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*GroundedTheoryResult{}, m.theories[studyID]...), nil
}

func (m *mockArchive) DeleteStudy(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.studies, id)
	delete(m.codes, id)
	delete(m.theories, id)
	return nil
}

var errArchiveDown = errors.New("archive unavailable")

// newTestStudy creates a study backed by a fresh mock archive.
func newTestStudy(researchQuestion string) *Study {
	s, err := NewStudy(context.Background(), newMockArchive(), researchQuestion)
	if err != nil {
		panic(err)
	}
	return s
}

// stressCodebook is a small codebook with overlapping names, contrasting
// poles and paradigm cues.
func stressCodebook() []Code {
	return []Code{
		{Name: "exam_stress", Definition: "Pressure felt before exams", Examples: []string{"I feel anxious about exams"}, Frequency: 4, Type: CodeInVivo},
		{Name: "exam_stress_relief", Definition: "Strategies that reduce exam pressure", Examples: []string{"Managing stress through meditation"}, Frequency: 2, Type: CodeConstructed},
		{Name: "coping_support", Definition: "Support from friends because of stress", Examples: []string{"My friends help me cope"}, Frequency: 3, Type: CodeConstructed},
		{Name: "coping_obstacle", Definition: "Barriers that result in isolation", Examples: []string{"No time to see anyone"}, Frequency: 1, Type: CodeConstructed},
		{Name: "positive_outlook", Definition: "Hopeful view of the future", Examples: []string{"It will get better"}, Frequency: 2, Type: CodeInVivo},
		{Name: "negative_outlook", Definition: "Pessimistic expectations", Examples: []string{"Nothing ever changes"}, Frequency: 1, Type: CodeInVivo},
	}
}
