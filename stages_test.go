package thematic

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCoderProcess(t *testing.T) {
	s := newTestStudy("How do students experience exams?")
	s.SetText("I feel anxious about exams. Managing stress through meditation.")

	result, err := NewCoder("code").Process(context.Background(), s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := CodeNames(result.Codes())
	if !cmp.Equal(names, []string{"feel_anxious", "managing"}) {
		t.Errorf("unexpected codes %v", names)
	}
	if summary, ok := result.CodingSummary(); !ok || summary.TotalCodes != 2 {
		t.Errorf("expected coding summary with 2 codes, got %+v", summary)
	}
	if len(result.Segments()) != 1 {
		t.Errorf("expected 1 segment, got %d", len(result.Segments()))
	}

	archived, _ := s.Archive().GetCodes(context.Background(), s.ID)
	if !cmp.Equal(CodeNames(archived), names) {
		t.Errorf("expected codebook archived, got %v", CodeNames(archived))
	}

	steps := result.Steps()
	if len(steps) != 1 || steps[0].Name != "code" || steps[0].Type != "coding" || steps[0].Error != nil {
		t.Errorf("unexpected steps %+v", steps)
	}
}

func TestCoderFoldsIntoPriorCodebook(t *testing.T) {
	s := newTestStudy("rq")
	s.SetCodes([]Code{{Name: "exam_stress", Definition: "prior", Examples: []string{"old"}, Frequency: 2, Type: CodeInVivo}})
	s.SetText("Exams are tough.")

	if _, err := NewCoder("code").Process(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	codes := s.Codes()
	if len(codes) != 1 {
		t.Fatalf("expected prior code only, got %v", CodeNames(codes))
	}
	if codes[0].Frequency != 3 || codes[0].Definition != "prior" {
		t.Errorf("expected prior code to gain one attachment, got %+v", codes[0])
	}
	if !cmp.Equal(codes[0].Examples, []string{"old", "Exams are tough."}) {
		t.Errorf("unexpected examples %v", codes[0].Examples)
	}
}

func TestCoderNoText(t *testing.T) {
	s := newTestStudy("rq")

	_, err := NewCoder("code").Process(context.Background(), s)
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
	steps := s.Steps()
	if len(steps) != 1 || !errors.Is(steps[0].Error, ErrNoText) {
		t.Errorf("expected failed step to be recorded, got %+v", steps)
	}
}

func TestCoderArchiveFailure(t *testing.T) {
	archive := newMockArchive()
	s, _ := NewStudy(context.Background(), archive, "rq")
	archive.saveErr = errArchiveDown
	s.SetText("Managing stress.")

	_, err := NewCoder("code").Process(context.Background(), s)
	if !errors.Is(err, errArchiveDown) {
		t.Errorf("expected archive error, got %v", err)
	}
}

func TestCoderMethodologyOverride(t *testing.T) {
	s := newTestStudy("rq")
	s.SetText("It was a hard challenge.")

	if _, err := NewCoder("code").WithMethodology(MethodologyThematic).Process(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cmp.Equal(CodeNames(s.Codes()), []string{"challenges_faced"}) {
		t.Errorf("expected thematic coding, got %v", CodeNames(s.Codes()))
	}
}

func TestRefinerProcess(t *testing.T) {
	s := newTestStudy("rq")
	s.SetCodes(stressCodebook())

	if _, err := NewRefiner("refine").Process(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Codes()) != 5 {
		t.Errorf("expected 5 refined codes, got %v", CodeNames(s.Codes()))
	}
	if merges := s.Merges(); len(merges) != 1 || merges[0].To != "exam_stress" {
		t.Errorf("unexpected merges %+v", merges)
	}
}

func TestThemerAndPatternFinder(t *testing.T) {
	s := newTestStudy("rq")
	s.SetCodes(stressCodebook())
	ctx := context.Background()

	if _, err := NewThemer("themes").WithMode(ThemeDeductive).Process(ctx, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.Theme("Emotional Experiences"); !ok {
		t.Errorf("expected deductive theme, got %+v", s.Themes())
	}

	if _, err := NewPatternFinder("patterns").Process(ctx, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Patterns()) != 2 {
		t.Errorf("expected 2 patterns, got %d", len(s.Patterns()))
	}
}

func TestSaturationGauge(t *testing.T) {
	s := newTestStudy("rq")
	s.AddSource("s1", "c1", "c2")
	s.AddSource("s2", "c1")
	s.AddSource("s3", "c1")

	if _, err := NewSaturationGauge("saturation").WithLevel(LevelTheoretical).Process(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	analysis, ok := s.Saturation()
	if !ok || !analysis.Saturated || analysis.Level != LevelTheoretical {
		t.Errorf("unexpected analysis %+v", analysis)
	}
}

func TestNegativeCaseFinder(t *testing.T) {
	s := newTestStudy("rq")
	s.SetCodes(stressCodebook())
	ctx := context.Background()

	if _, err := NewThemer("themes").Process(ctx, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	theme := "Outlook and Positive and Negative"
	if _, err := NewNegativeCaseFinder("negatives", theme).WithThreshold(StrengthWeak).Process(ctx, s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	report, ok := s.NegativeCases(theme)
	if !ok {
		t.Fatal("expected negative case report")
	}
	for _, nc := range report.NegativeCases {
		if nc.Code.Name == "positive_outlook" || nc.Code.Name == "negative_outlook" {
			t.Errorf("supporting code %s reported as negative case", nc.Code.Name)
		}
	}
}

func TestNegativeCaseFinderMissingTheme(t *testing.T) {
	s := newTestStudy("rq")
	s.SetCodes(stressCodebook())

	_, err := NewNegativeCaseFinder("negatives", "Unknown").Process(context.Background(), s)
	if !errors.Is(err, ErrMissingReference) {
		t.Errorf("expected ErrMissingReference, got %v", err)
	}
}

func TestTheoristProcess(t *testing.T) {
	s := newTestStudy("How do students cope with exams?")
	s.SetCodes(stressCodebook())

	if _, err := NewTheorist("theory").WithParadigm("straussian").Process(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	theory, ok := s.Theory()
	if !ok {
		t.Fatal("expected theory")
	}
	if theory.CoreCategory.Name != "Processes" {
		t.Errorf("expected Processes core, got %s", theory.CoreCategory.Name)
	}

	archived, _ := s.Archive().GetTheories(context.Background(), s.ID)
	if len(archived) != 1 || archived[0] != theory {
		t.Errorf("expected theory archived once, got %d", len(archived))
	}
}

func TestTheoristNoCodes(t *testing.T) {
	s := newTestStudy("rq")

	_, err := NewTheorist("theory").Process(context.Background(), s)
	if !errors.Is(err, ErrNoCategories) {
		t.Errorf("expected ErrNoCategories, got %v", err)
	}
	if _, ok := s.Theory(); ok {
		t.Error("failed theory stage should not set a theory")
	}
}

func TestAnalysisPipeline(t *testing.T) {
	s := newTestStudy("How do students experience exams?")
	s.SetText("I feel anxious about exams.\n\nManaging stress through meditation with friends.\n\nI think exams are hard.")

	if _, err := Analysis("analysis").Process(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Codes()) == 0 {
		t.Error("expected codes")
	}
	if _, ok := s.Theory(); !ok {
		t.Error("expected theory from the parallel branch")
	}
	if _, ok := s.Saturation(); !ok {
		t.Error("expected saturation analysis from the theming branch")
	}
}

func TestStageSchemas(t *testing.T) {
	tests := []struct {
		stage interface {
			Close() error
		}
		name string
	}{
		{NewCoder("c"), "c"},
		{NewRefiner("r"), "r"},
		{NewThemer("t"), "t"},
		{NewPatternFinder("p"), "p"},
		{NewSaturationGauge("s"), "s"},
		{NewNegativeCaseFinder("n", "theme"), "n"},
		{NewTheorist("g"), "g"},
		{NewFork("f"), "f"},
	}
	for _, tt := range tests {
		if err := tt.stage.Close(); err != nil {
			t.Errorf("%s: unexpected close error: %v", tt.name, err)
		}
	}

	if NewThemer("themes").Identity().Name() != "themes" {
		t.Error("expected identity name to match key")
	}
	if NewTheorist("theory").Schema().Type != "theorist" {
		t.Error("expected theorist schema type")
	}
}
