package thematic

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"
)

func TestForkMatchesSequential(t *testing.T) {
	ctx := context.Background()

	parallel := newTestStudy("How do students cope with exams?")
	parallel.SetCodes(stressCodebook())
	fork := NewFork("analyze",
		Sequence("theming", NewThemer("themes"), NewPatternFinder("patterns")),
		NewTheorist("theory"),
	)
	if _, err := fork.Process(ctx, parallel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Branches see the study as it was before the fork, so the theory is
	// built before themes exist.
	sequential := newTestStudy("How do students cope with exams?")
	sequential.SetCodes(stressCodebook())
	for _, stage := range []interface {
		Process(context.Context, *Study) (*Study, error)
	}{NewTheorist("theory"), NewThemer("themes"), NewPatternFinder("patterns")} {
		if _, err := stage.Process(ctx, sequential); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if diff := cmp.Diff(sequential.Themes(), parallel.Themes()); diff != "" {
		t.Errorf("themes differ (-sequential +fork):\n%s", diff)
	}
	if diff := cmp.Diff(sequential.Patterns(), parallel.Patterns()); diff != "" {
		t.Errorf("patterns differ (-sequential +fork):\n%s", diff)
	}
	seqTheory, _ := sequential.Theory()
	forkTheory, _ := parallel.Theory()
	if diff := cmp.Diff(seqTheory, forkTheory); diff != "" {
		t.Errorf("theories differ (-sequential +fork):\n%s", diff)
	}

	var types []string
	for _, step := range parallel.Steps() {
		types = append(types, step.Type)
	}
	if len(types) != 4 || types[len(types)-1] != "fork" {
		t.Errorf("expected branch steps followed by the fork step, got %v", types)
	}
}

func TestForkBranchFailureLeavesStudyUntouched(t *testing.T) {
	s := newTestStudy("rq")
	s.SetCodes(stressCodebook())

	fork := NewFork("analyze",
		NewThemer("themes"),
		NewNegativeCaseFinder("negatives", "Unknown"),
	)
	_, err := fork.Process(context.Background(), s)
	if !errors.Is(err, ErrMissingReference) {
		t.Fatalf("expected branch error, got %v", err)
	}
	if len(s.Themes()) != 0 {
		t.Error("failed fork should not merge successful branches")
	}
}

func TestForkLaterBranchWins(t *testing.T) {
	s := newTestStudy("rq")
	s.SetCodes(stressCodebook())

	fork := NewFork("analyze",
		NewThemer("inductive"),
		NewThemer("deductive").WithMode(ThemeDeductive),
	)
	if _, err := fork.Process(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.Theme("Emotional Experiences"); !ok {
		t.Errorf("expected the later deductive branch to win, got %+v", s.Themes())
	}
}

func TestForkEmpty(t *testing.T) {
	s := newTestStudy("rq")
	if _, err := NewFork("empty").Process(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Steps()) != 0 {
		t.Error("an empty fork should not record a step")
	}
}

func TestForkNoGoroutineLeak(t *testing.T) {
	run := func() {
		s := newTestStudy("rq")
		s.SetCodes(stressCodebook())
		fork := NewFork("analyze", NewThemer("themes"), NewPatternFinder("patterns"), NewTheorist("theory"))
		if _, err := fork.Process(context.Background(), s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// Warm up signal dispatch so long-lived listeners predate the snapshot.
	run()
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	run()
}

func TestForkBranches(t *testing.T) {
	fork := NewFork("f", NewThemer("a"))
	fork.AddBranch(NewTheorist("b"))

	branches := fork.Branches()
	if len(branches) != 2 || branches[1].Identity().Name() != "b" {
		t.Errorf("unexpected branches %d", len(branches))
	}
	if fork.Schema().Type != "fork" {
		t.Error("expected fork schema type")
	}
}
