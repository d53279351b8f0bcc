//go:build integration

package integration_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/zoobzio/thematic"
	thematictest "github.com/zoobzio/thematic/testing"
)

func getTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	return db
}

func newArchive(t *testing.T) *thematic.SoyArchive {
	t.Helper()
	archive, err := thematic.NewSoyArchive(getTestDB(t))
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	t.Cleanup(func() { _ = archive.Close() })
	return archive
}

func TestSoyArchive_CreateStudy(t *testing.T) {
	archive := newArchive(t)
	ctx := context.Background()

	study, err := thematic.NewStudy(ctx, archive, "How do students cope?")
	if err != nil {
		t.Fatalf("failed to create study: %v", err)
	}
	defer func() { _ = archive.DeleteStudy(ctx, study.ID) }()

	if study.ID == "" {
		t.Error("expected study to have ID")
	}

	retrieved, err := archive.GetStudy(ctx, study.ID)
	if err != nil {
		t.Fatalf("failed to get study: %v", err)
	}
	if retrieved.ResearchQuestion != "How do students cope?" {
		t.Errorf("expected research question, got %q", retrieved.ResearchQuestion)
	}
	if retrieved.Archive() == nil {
		t.Error("expected hydrated study to carry the archive")
	}
}

func TestSoyArchive_Codes(t *testing.T) {
	archive := newArchive(t)
	ctx := context.Background()

	study, err := thematic.NewStudy(ctx, archive, "rq")
	if err != nil {
		t.Fatalf("failed to create study: %v", err)
	}
	defer func() { _ = archive.DeleteStudy(ctx, study.ID) }()

	codes := thematictest.StressCodebook()
	if err := archive.SaveCodes(ctx, study.ID, codes); err != nil {
		t.Fatalf("failed to save codes: %v", err)
	}

	stored, err := archive.GetCodes(ctx, study.ID)
	if err != nil {
		t.Fatalf("failed to get codes: %v", err)
	}
	if len(stored) != len(codes) {
		t.Fatalf("expected %d codes, got %d", len(codes), len(stored))
	}
	for i := range codes {
		if stored[i].Name != codes[i].Name || stored[i].Frequency != codes[i].Frequency {
			t.Errorf("code %d: expected %+v, got %+v", i, codes[i], stored[i])
		}
	}

	// Saving again replaces the codebook.
	if err := archive.SaveCodes(ctx, study.ID, codes[:1]); err != nil {
		t.Fatalf("failed to save codes: %v", err)
	}
	stored, _ = archive.GetCodes(ctx, study.ID)
	if len(stored) != 1 {
		t.Errorf("expected replaced codebook of 1, got %d", len(stored))
	}
}

func TestSoyArchive_TheoryStage(t *testing.T) {
	archive := newArchive(t)
	ctx := context.Background()

	study, err := thematic.NewStudy(ctx, archive, "How do students cope with exams?")
	if err != nil {
		t.Fatalf("failed to create study: %v", err)
	}
	defer func() { _ = archive.DeleteStudy(ctx, study.ID) }()

	study.SetCodes(thematictest.StressCodebook())
	if _, err := thematic.NewTheorist("theory").Process(ctx, study); err != nil {
		t.Fatalf("theorist failed: %v", err)
	}

	theories, err := archive.GetTheories(ctx, study.ID)
	if err != nil {
		t.Fatalf("failed to get theories: %v", err)
	}
	if len(theories) != 1 {
		t.Fatalf("expected 1 theory, got %d", len(theories))
	}

	built, _ := study.Theory()
	if theories[0].CoreCategory.Name != built.CoreCategory.Name {
		t.Errorf("expected core %q, got %q", built.CoreCategory.Name, theories[0].CoreCategory.Name)
	}
}

func TestSoyArchive_GetMissingStudy(t *testing.T) {
	archive := newArchive(t)

	_, err := archive.GetStudy(context.Background(), "00000000-0000-0000-0000-000000000000")
	if !errors.Is(err, thematic.ErrMissingReference) {
		t.Errorf("expected ErrMissingReference, got %v", err)
	}
}
