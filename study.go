package thematic

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
)

// StageRecord captures one stage execution against a study.
type StageRecord struct {
	Name      string        `json:"name"`
	Type      string        `json:"type"`
	Duration  time.Duration `json:"duration"`
	Timestamp time.Time     `json:"timestamp"`
	Error     error         `json:"-"`
}

// Study is the rolling context of one analysis run: the raw material a host
// supplies (text, per-source codes, a prior codebook) and every artifact the
// stages produce from it.
//
// # Concurrency
//
// Study is safe for concurrent reads but not concurrent writes. Use Clone to
// hand independent copies to parallel branches.
type Study struct {
	// Identity
	ID               string      `db:"id" type:"uuid" constraints:"primarykey" default:"gen_random_uuid()"`
	TraceID          string      `db:"trace_id" type:"text" constraints:"notnull,unique"`
	ResearchQuestion string      `db:"research_question" type:"text" constraints:"notnull"`
	Methodology      Methodology `db:"methodology" type:"text" constraints:"notnull"`
	Paradigm         string      `db:"paradigm" type:"text"`

	// Persistence (optional)
	archive Archive

	// Inputs
	text    string
	sources []SourceCodes

	// Artifacts
	codes      []Code
	segments   []Segment
	summary    *CodingSummary
	merges     []Merge
	themes     []Theme
	patterns   []Pattern
	saturation *SaturationAnalysis
	negatives  map[string]NegativeCaseReport
	theory     *GroundedTheoryResult

	steps []StageRecord
	mu    sync.RWMutex

	// Timestamps
	CreatedAt time.Time `db:"created_at" type:"timestamp" constraints:"notnull"`
	UpdatedAt time.Time `db:"updated_at" type:"timestamp" constraints:"notnull"`
}

// NewStudy creates a study for a research question. When archive is non-nil
// the study is persisted and later stages archive their artifacts.
func NewStudy(ctx context.Context, archive Archive, researchQuestion string) (*Study, error) {
	s := &Study{
		TraceID:          uuid.New().String(),
		ResearchQuestion: researchQuestion,
		Methodology:      MethodologyGrounded,
		archive:          archive,
		negatives:        make(map[string]NegativeCaseReport),
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if archive != nil {
		persisted, err := archive.CreateStudy(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("failed to persist study: %w", err)
		}
		s.ID = persisted.ID
	} else {
		s.ID = uuid.New().String()
	}

	capitan.Emit(ctx, StudyCreated,
		FieldResearchQuestion.Field(s.ResearchQuestion),
		FieldTraceID.Field(s.TraceID),
		FieldStudyID.Field(s.ID),
	)

	return s, nil
}

// SetText replaces the raw text the coding stage segments.
func (s *Study) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
	s.UpdatedAt = time.Now()
}

// Text returns the raw text under study.
func (s *Study) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// AddSource appends the codes observed in one source. Call in collection
// order; saturation analysis depends on it.
func (s *Study) AddSource(source string, codes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sources = append(s.sources, SourceCodes{Source: source, Codes: append([]string(nil), codes...)})
	s.UpdatedAt = time.Now()
}

// Sources returns per-source codes in collection order.
func (s *Study) Sources() []SourceCodes {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SourceCodes, len(s.sources))
	for i, src := range s.sources {
		out[i] = SourceCodes{Source: src.Source, Codes: append([]string(nil), src.Codes...)}
	}
	return out
}

// SetCodes replaces the working codebook, e.g. with codes loaded by a host.
func (s *Study) SetCodes(codes []Code) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes = cloneCodes(codes)
	s.UpdatedAt = time.Now()
}

// Codes returns a copy of the working codebook.
func (s *Study) Codes() []Code {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCodes(s.codes)
}

// Segments returns the segments produced by the last coding stage.
func (s *Study) Segments() []Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Segment(nil), s.segments...)
}

// CodingSummary returns the summary of the last coding stage, if any.
func (s *Study) CodingSummary() (CodingSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.summary == nil {
		return CodingSummary{}, false
	}
	return *s.summary, true
}

// Merges returns the merges made by the last refinement stage.
func (s *Study) Merges() []Merge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Merge(nil), s.merges...)
}

// Themes returns the themes produced by the last theming stage.
func (s *Study) Themes() []Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Theme(nil), s.themes...)
}

// Theme looks up a theme by name.
func (s *Study) Theme(name string) (Theme, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, th := range s.themes {
		if th.Name == name {
			return th, true
		}
	}
	return Theme{}, false
}

// Patterns returns the patterns produced by the last pattern stage.
func (s *Study) Patterns() []Pattern {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Pattern(nil), s.patterns...)
}

// Saturation returns the last saturation analysis, if any.
func (s *Study) Saturation() (SaturationAnalysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.saturation == nil {
		return SaturationAnalysis{}, false
	}
	return *s.saturation, true
}

// NegativeCases returns the negative case report for a theme, if one was run.
func (s *Study) NegativeCases(theme string) (NegativeCaseReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.negatives[theme]
	return report, ok
}

// Theory returns the grounded theory built for this study, if any.
func (s *Study) Theory() (*GroundedTheoryResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theory, s.theory != nil
}

// Steps returns the stage execution history.
func (s *Study) Steps() []StageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]StageRecord(nil), s.steps...)
}

// Archive returns the archive backing this study, if any.
func (s *Study) Archive() Archive {
	return s.archive
}

// SetArchive sets the archive used for persistence.
// This is used when hydrating a Study from storage.
func (s *Study) SetArchive(a Archive) {
	s.archive = a
}

func (s *Study) addStep(r StageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, r)
}

// update applies fn under the write lock.
func (s *Study) update(fn func(s *Study)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
	s.UpdatedAt = time.Now()
}

// Clone creates a deep copy of the study for concurrent processing.
// Modifications to the clone do not affect the original and vice versa.
func (s *Study) Clone() *Study {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clone := &Study{
		ID:               s.ID,
		TraceID:          s.TraceID,
		ResearchQuestion: s.ResearchQuestion,
		Methodology:      s.Methodology,
		Paradigm:         s.Paradigm,
		archive:          s.archive,
		text:             s.text,
		codes:            cloneCodes(s.codes),
		segments:         append([]Segment(nil), s.segments...),
		merges:           append([]Merge(nil), s.merges...),
		themes:           append([]Theme(nil), s.themes...),
		patterns:         append([]Pattern(nil), s.patterns...),
		negatives:        make(map[string]NegativeCaseReport, len(s.negatives)),
		theory:           s.theory,
		steps:            append([]StageRecord(nil), s.steps...),
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        time.Now(),
	}
	for _, src := range s.sources {
		clone.sources = append(clone.sources, SourceCodes{Source: src.Source, Codes: append([]string(nil), src.Codes...)})
	}
	if s.summary != nil {
		summary := *s.summary
		clone.summary = &summary
	}
	if s.saturation != nil {
		sat := *s.saturation
		sat.NewCodesPerSource = append([]int(nil), s.saturation.NewCodesPerSource...)
		clone.saturation = &sat
	}
	for k, v := range s.negatives {
		clone.negatives[k] = v
	}
	return clone
}

// Compile-time check: *Study must implement pipz.Cloner[*Study].
var _ interface{ Clone() *Study } = (*Study)(nil)
