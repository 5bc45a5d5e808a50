package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/response-validator/internal/data/repos/testutil"
	"github.com/yungbote/response-validator/internal/domain/ecosystem"
	"github.com/yungbote/response-validator/internal/observability"
	"github.com/yungbote/response-validator/internal/platform/apperr"
	"github.com/yungbote/response-validator/internal/weights"
)

func bookTables(vuid string, ordinal int64, words ...string) ecosystem.Tables {
	b := ecosystem.NewBook(vuid, "Book "+vuid)
	b.Ordinal = ordinal
	b.DomainWords = ecosystem.NewWordSet(words...)
	p := &ecosystem.Page{VUID: "p@1", Title: "Intro", InnovationWords: map[string]float64{"mitosis": 1}}
	p.Questions = []*ecosystem.Question{{
		ExerciseUID: "1@1", Position: 1, BookVUID: vuid, PageVUID: "p@1",
		StemWords: ecosystem.NewWordSet("phase"), OptionWords: ecosystem.NewWordSet("anaphase"),
	}}
	_ = b.AddPage(p)
	return ecosystem.Flatten([]*ecosystem.Book{b})
}

func domainWords(t *testing.T, tables ecosystem.Tables, vuid string) []string {
	t.Helper()
	for _, d := range tables.Domain {
		if d.BookVUID != vuid {
			continue
		}
		ws, err := ecosystem.DecodeWords(d.Words)
		if err != nil {
			t.Fatalf("DecodeWords: %v", err)
		}
		return ws.Sorted()
	}
	return nil
}

func TestSaveBooksReplacesOnlyNamedBooks(t *testing.T) {
	db := testutil.DB(t)
	agg := NewDatasetAggregate(BaseDeps{DB: db, Log: testutil.Logger(t)})
	ctx := context.Background()

	if err := agg.SaveBooks(ctx, bookTables("a@1", 0, "alpha", "beta")); err != nil {
		t.Fatalf("SaveBooks a: %v", err)
	}
	if err := agg.SaveBooks(ctx, bookTables("b@1", 1, "gamma")); err != nil {
		t.Fatalf("SaveBooks b: %v", err)
	}
	if err := agg.SaveBooks(ctx, bookTables("a@1", 0, "delta")); err != nil {
		t.Fatalf("SaveBooks a again: %v", err)
	}

	got, err := agg.LoadTables(ctx)
	if err != nil {
		t.Fatalf("LoadTables: %v", err)
	}
	if diff := cmp.Diff([]string{"a@1", "b@1"}, got.BookVUIDs()); diff != "" {
		t.Fatalf("books (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"delta"}, domainWords(t, got, "a@1")); diff != "" {
		t.Fatalf("a domain words (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"gamma"}, domainWords(t, got, "b@1")); diff != "" {
		t.Fatalf("b domain words (-want +got):\n%s", diff)
	}
	if len(got.Questions) != 2 || len(got.Innovation) != 2 {
		t.Fatalf("expected one page and one question per book, got %d/%d", len(got.Innovation), len(got.Questions))
	}
	books, err := ecosystem.Assemble(got)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if books[0].Pages[0].Questions[0].OptionWords.Sorted()[0] != "anaphase" {
		t.Fatalf("question words not round-tripped")
	}
}

func TestSaveRegistryRoundTrip(t *testing.T) {
	db := testutil.DB(t)
	agg := NewDatasetAggregate(BaseDeps{DB: db, Log: testutil.Logger(t)})
	ctx := context.Background()

	other := weights.Weights{StemWordCount: 1, CommonWordCount: -0.5}
	change := weights.Change{
		Sets: []weights.SetRecord{
			{ID: weights.DefaultID, Hash: weights.Default.Hash(), Weights: weights.Default},
			{ID: "other", Hash: other.Hash(), Weights: other},
		},
		Defaults: []weights.DefaultRecord{{Scope: weights.GlobalScope, ID: weights.DefaultID}},
	}
	if err := agg.SaveRegistry(ctx, change); err != nil {
		t.Fatalf("SaveRegistry: %v", err)
	}
	// Re-saving a set with a known hash is ignored; defaults are upserted.
	again := weights.Change{
		Sets:     []weights.SetRecord{{ID: "dup", Hash: other.Hash(), Weights: other}},
		Defaults: []weights.DefaultRecord{{Scope: weights.GlobalScope, ID: "other"}, {Scope: "a@1", ID: weights.DefaultID}},
	}
	if err := agg.SaveRegistry(ctx, again); err != nil {
		t.Fatalf("SaveRegistry again: %v", err)
	}

	sets, defaults, err := agg.LoadRegistry(ctx)
	if err != nil {
		t.Fatalf("LoadRegistry: %v", err)
	}
	if len(sets) != 2 {
		t.Fatalf("expected 2 sets, got %d", len(sets))
	}
	byID := map[string]weights.SetRecord{}
	for _, s := range sets {
		byID[s.ID] = s
	}
	if byID[weights.DefaultID].Weights != weights.Default || byID["other"].Weights != other {
		t.Fatalf("weights not round-tripped: %+v", sets)
	}
	want := []weights.DefaultRecord{{Scope: "a@1", ID: weights.DefaultID}, {Scope: weights.GlobalScope, ID: "other"}}
	if diff := cmp.Diff(want, defaults); diff != "" {
		t.Fatalf("defaults (-want +got):\n%s", diff)
	}
}

type failingRunner struct{ err error }

func (f failingRunner) InTx(context.Context, func(tx *gorm.DB) error) error { return f.err }

func TestWriteFailuresBecomePersistenceErrors(t *testing.T) {
	db := testutil.DB(t)
	metrics := observability.NewMetrics()
	pgErr := &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
	agg := NewDatasetAggregate(BaseDeps{
		DB:     db,
		Log:    testutil.Logger(t),
		Runner: failingRunner{err: fmt.Errorf("commit: %w", pgErr)},
		Hooks:  NewObservabilityHooks(metrics),
	})
	err := agg.SaveBooks(context.Background(), bookTables("a@1", 0, "alpha"))
	if !apperr.IsCode(err, apperr.CodePersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	var got *pgconn.PgError
	if !errors.As(err, &got) || got.Code != "40001" {
		t.Fatalf("cause not preserved: %v", err)
	}
	if metrics.AggregateOperationCount("dataset.SaveBooks", string(ClassRetryable)) != 1 {
		t.Fatalf("expected a retryable operation to be observed")
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Class
	}{
		{"unique", &pgconn.PgError{Code: "23505"}, ClassConflict},
		{"fk", &pgconn.PgError{Code: "23503"}, ClassPrecondition},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, ClassRetryable},
		{"gorm duplicate", gorm.ErrDuplicatedKey, ClassConflict},
		{"not found", fmt.Errorf("load: %w", gorm.ErrRecordNotFound), ClassNotFound},
		{"deadline", context.DeadlineExceeded, ClassRetryable},
		{"sqlite unique", errors.New("UNIQUE constraint failed: book.vuid"), ClassConflict},
		{"sqlite locked", errors.New("database is locked"), ClassRetryable},
		{"other", errors.New("disk on fire"), ClassInternal},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Fatalf("%s: expected %s got %s", tc.name, tc.want, got)
		}
	}
}

func TestMapErrorKeepsExistingCode(t *testing.T) {
	in := apperr.New(apperr.CodeSchema, "x", "bad", nil)
	if got := MapError("op", in); !apperr.IsCode(got, apperr.CodeSchema) {
		t.Fatalf("expected schema code to pass through, got %v", got)
	}
	if MapError("op", nil) != nil {
		t.Fatalf("nil should map to nil")
	}
}

func TestGormTxRunnerRollsBack(t *testing.T) {
	db := testutil.DB(t)
	runner := NewGormTxRunner(db)
	boom := errors.New("boom")
	err := runner.InTx(context.Background(), func(tx *gorm.DB) error {
		row := ecosystem.BookRow{VUID: "x@1", Name: "X", CreatedAt: time.Now(), UpdatedAt: time.Now()}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	var n int64
	if err := db.Model(&ecosystem.BookRow{}).Count(&n).Error; err != nil || n != 0 {
		t.Fatalf("expected rollback, got %d rows (%v)", n, err)
	}
}
