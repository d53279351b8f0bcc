package thematic

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewStudy(t *testing.T) {
	archive := newMockArchive()
	s, err := NewStudy(context.Background(), archive, "How do students cope?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID == "" || s.TraceID == "" {
		t.Errorf("expected IDs to be set, got %q/%q", s.ID, s.TraceID)
	}
	if s.Methodology != MethodologyGrounded {
		t.Errorf("expected grounded default, got %s", s.Methodology)
	}
	if s.Archive() != archive {
		t.Error("expected archive to be attached")
	}

	stored, err := archive.GetStudy(context.Background(), s.ID)
	if err != nil || stored != s {
		t.Errorf("expected study to be persisted, got %v (%v)", stored, err)
	}
}

func TestNewStudyWithoutArchive(t *testing.T) {
	s, err := NewStudy(context.Background(), nil, "rq")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID == "" {
		t.Error("expected generated ID")
	}
	if s.Archive() != nil {
		t.Error("expected no archive")
	}
}

func TestMockArchiveMissingStudy(t *testing.T) {
	_, err := newMockArchive().GetStudy(context.Background(), "nope")
	if !errors.Is(err, ErrMissingReference) {
		t.Errorf("expected ErrMissingReference, got %v", err)
	}
}

func TestStudyAccessorsCopy(t *testing.T) {
	s := newTestStudy("rq")
	s.SetCodes(stressCodebook())

	codes := s.Codes()
	codes[0].Name = "changed"
	codes[0].Examples[0] = "changed"

	if got := s.Codes()[0]; got.Name != "exam_stress" || got.Examples[0] != "I feel anxious about exams" {
		t.Errorf("mutating a returned codebook leaked into the study: %+v", got)
	}

	s.AddSource("interview-1", "c1", "c2")
	sources := s.Sources()
	sources[0].Codes[0] = "changed"
	if s.Sources()[0].Codes[0] != "c1" {
		t.Error("mutating returned sources leaked into the study")
	}
}

func TestStudyCloneIsolation(t *testing.T) {
	s := newTestStudy("rq")
	s.SetText("some text")
	s.SetCodes(stressCodebook())
	s.AddSource("s1", "c1")

	clone := s.Clone()
	if clone.ID != s.ID || clone.TraceID != s.TraceID || clone.Text() != s.Text() {
		t.Error("clone should keep identity and inputs")
	}
	if diff := cmp.Diff(s.Codes(), clone.Codes()); diff != "" {
		t.Errorf("clone codes differ (-orig +clone):\n%s", diff)
	}

	clone.SetCodes(nil)
	clone.AddSource("s2", "c2")
	clone.update(func(c *Study) {
		c.negatives["theme"] = NegativeCaseReport{Recommendation: "x"}
	})

	if len(s.Codes()) != len(stressCodebook()) {
		t.Error("clone codebook change leaked into original")
	}
	if len(s.Sources()) != 1 {
		t.Error("clone source change leaked into original")
	}
	if _, ok := s.NegativeCases("theme"); ok {
		t.Error("clone negative case change leaked into original")
	}
}
