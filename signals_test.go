package thematic

import (
	"context"
	"testing"
	"time"

	"github.com/zoobzio/capitan"
	capitantesting "github.com/zoobzio/capitan/testing"
)

// getStringField extracts a string field value from a captured event.
func getStringField(event capitantesting.CapturedEvent, keyName string) string {
	for _, f := range event.Fields {
		if f.Key().Name() == keyName {
			if v, ok := f.Value().(string); ok {
				return v
			}
		}
	}
	return ""
}

// eventsForTrace polls captured events until n events carry traceID or the timeout passes.
func eventsForTrace(events func() []capitantesting.CapturedEvent, traceID string, n int) []capitantesting.CapturedEvent {
	deadline := time.Now().Add(time.Second)
	for {
		var matched []capitantesting.CapturedEvent
		for _, e := range events() {
			if getStringField(e, FieldTraceID.Name()) == traceID {
				matched = append(matched, e)
			}
		}
		if len(matched) >= n || time.Now().After(deadline) {
			return matched
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStudyCreatedEvent(t *testing.T) {
	capture := capitantesting.NewEventCapture()
	listener := capitan.Hook(StudyCreated, capture.Handler())
	defer listener.Close()

	s := newTestStudy("How do students cope?")

	events := eventsForTrace(capture.Events, s.TraceID, 1)
	if len(events) != 1 {
		t.Fatalf("expected 1 StudyCreated event, got %d", len(events))
	}
	if rq := getStringField(events[0], FieldResearchQuestion.Name()); rq != "How do students cope?" {
		t.Errorf("expected research question, got %q", rq)
	}
	if id := getStringField(events[0], FieldStudyID.Name()); id != s.ID {
		t.Errorf("expected study_id %q, got %q", s.ID, id)
	}
}

func TestStageEvents(t *testing.T) {
	started := capitantesting.NewEventCapture()
	completed := capitantesting.NewEventCapture()
	l1 := capitan.Hook(StageStarted, started.Handler())
	l2 := capitan.Hook(StageCompleted, completed.Handler())
	defer l1.Close()
	defer l2.Close()

	s := newTestStudy("rq")
	s.SetCodes(stressCodebook())
	if _, err := NewRefiner("refine").Process(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	startEvents := eventsForTrace(started.Events, s.TraceID, 1)
	if len(startEvents) != 1 {
		t.Fatalf("expected 1 StageStarted event, got %d", len(startEvents))
	}
	if name := getStringField(startEvents[0], FieldStageName.Name()); name != "refine" {
		t.Errorf("expected stage name refine, got %q", name)
	}
	if typ := getStringField(startEvents[0], FieldStageType.Name()); typ != "refine" {
		t.Errorf("expected stage type refine, got %q", typ)
	}

	if got := eventsForTrace(completed.Events, s.TraceID, 1); len(got) != 1 {
		t.Errorf("expected 1 StageCompleted event, got %d", len(got))
	}
}

func TestStageFailedEvent(t *testing.T) {
	capture := capitantesting.NewEventCapture()
	listener := capitan.Hook(StageFailed, capture.Handler())
	defer listener.Close()

	s := newTestStudy("rq")
	if _, err := NewCoder("code").Process(context.Background(), s); err == nil {
		t.Fatal("expected error without text")
	}

	events := eventsForTrace(capture.Events, s.TraceID, 1)
	if len(events) != 1 {
		t.Fatalf("expected 1 StageFailed event, got %d", len(events))
	}
	if typ := getStringField(events[0], FieldStageType.Name()); typ != "coding" {
		t.Errorf("expected coding stage type, got %q", typ)
	}
}

func TestScoreField(t *testing.T) {
	scores := make(chan float32, 4)
	listener := capitan.Hook(StageCompleted, func(_ context.Context, e *capitan.Event) {
		if typ, _ := FieldStageType.From(e); typ != "saturation" {
			return
		}
		score, _ := FieldScore.From(e)
		select {
		case scores <- score:
		default:
		}
	})
	defer listener.Close()

	s := newTestStudy("rq")
	s.AddSource("s1", "c1")
	s.AddSource("s2", "c1")
	if _, err := NewSaturationGauge("saturation").Process(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case score := <-scores:
		if score < 0.85 {
			t.Errorf("expected saturation score above threshold, got %f", score)
		}
	case <-time.After(time.Second):
		t.Fatal("expected StageCompleted event for saturation")
	}
}

func TestArchiveEvents(t *testing.T) {
	codes := capitantesting.NewEventCapture()
	theories := capitantesting.NewEventCapture()
	l1 := capitan.Hook(CodesArchived, codes.Handler())
	l2 := capitan.Hook(TheoryArchived, theories.Handler())
	defer l1.Close()
	defer l2.Close()

	s := newTestStudy("rq")
	s.SetText("Managing stress through meditation.")
	pipeline := Sequence("p", NewCoder("code"), NewTheorist("theory"))
	if _, err := pipeline.Process(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := eventsForTrace(codes.Events, s.TraceID, 1); len(got) != 1 {
		t.Errorf("expected 1 CodesArchived event, got %d", len(got))
	}
	if got := eventsForTrace(theories.Events, s.TraceID, 1); len(got) != 1 {
		t.Errorf("expected 1 TheoryArchived event, got %d", len(got))
	}
}
