package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jmylchreest/waxwing/internal/review"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "reviews.db"))
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReview() *review.Review {
	return &review.Review{
		Artist:       "Artist A",
		Album:        "Album B",
		YearReleased: 2020,
		Rating:       7.5,
		SmallText:    review.NotAvailable,
		Review:       "Body text.",
		Reviewer:     "Jane Doe",
		Genre:        "Electronic",
		Label:        review.NotAvailable,
		Reviewed:     review.NotAvailable,
		AlbumArtURL:  review.NotAvailable,
	}
}

func TestInsertIfAbsent_NewRecord(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	inserted, err := s.InsertIfAbsent(ctx, sampleReview())
	if err != nil {
		t.Fatalf("InsertIfAbsent(): %v", err)
	}
	if !inserted {
		t.Error("expected insert of new record")
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count(): %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 stored review, got %d", n)
	}
}

func TestInsertIfAbsent_FirstPayloadWins(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	first := sampleReview()
	if _, err := s.InsertIfAbsent(ctx, first); err != nil {
		t.Fatalf("first InsertIfAbsent(): %v", err)
	}

	second := sampleReview()
	second.Rating = 1.0
	second.Reviewer = "Someone Else"
	inserted, err := s.InsertIfAbsent(ctx, second)
	if err != nil {
		t.Fatalf("second InsertIfAbsent(): %v", err)
	}
	if inserted {
		t.Error("expected no-op for existing natural key")
	}

	stored, err := s.Get(ctx, "Artist A", "Album B")
	if err != nil {
		t.Fatalf("Get(): %v", err)
	}
	if stored == nil {
		t.Fatal("expected stored record")
	}
	if *stored != *first {
		t.Errorf("stored record changed:\ngot  %+v\nwant %+v", *stored, *first)
	}
}

func TestInsertIfAbsent_CaseSensitiveKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertIfAbsent(ctx, sampleReview()); err != nil {
		t.Fatalf("InsertIfAbsent(): %v", err)
	}

	lower := sampleReview()
	lower.Artist = "artist a"
	inserted, err := s.InsertIfAbsent(ctx, lower)
	if err != nil {
		t.Fatalf("InsertIfAbsent(): %v", err)
	}
	if !inserted {
		t.Error("keys differing in case should be distinct records")
	}
}

func TestInsertIfAbsent_ConcurrentSameKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	const workers = 10
	var wg sync.WaitGroup
	insertedCount := make(chan bool, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inserted, err := s.InsertIfAbsent(ctx, sampleReview())
			if err != nil {
				t.Errorf("InsertIfAbsent(): %v", err)
				return
			}
			insertedCount <- inserted
		}()
	}
	wg.Wait()
	close(insertedCount)

	wins := 0
	for inserted := range insertedCount {
		if inserted {
			wins++
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly 1 successful insert, got %d", wins)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count(): %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 stored review, got %d", n)
	}
}

func TestGet_AbsentKey(t *testing.T) {
	s := openTestStore(t)

	rec, err := s.Get(context.Background(), "Nobody", "Nothing")
	if err != nil {
		t.Fatalf("Get(): %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil for absent key, got %+v", rec)
	}
}

func TestAll_OrderedByNaturalKey(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	b := sampleReview()
	b.Artist = "Zeta"
	a := sampleReview()
	a.Artist = "Alpha"

	for _, rec := range []*review.Review{b, a} {
		if _, err := s.InsertIfAbsent(ctx, rec); err != nil {
			t.Fatalf("InsertIfAbsent(): %v", err)
		}
	}

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("All(): %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(all))
	}
	if all[0].Artist != "Alpha" || all[1].Artist != "Zeta" {
		t.Errorf("expected natural-key order, got %q then %q", all[0].Artist, all[1].Artist)
	}
}

func TestOpen_ReopensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	if _, err := s.InsertIfAbsent(ctx, sampleReview()); err != nil {
		t.Fatalf("InsertIfAbsent(): %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	n, err := reopened.Count(ctx)
	if err != nil {
		t.Fatalf("Count(): %v", err)
	}
	if n != 1 {
		t.Errorf("expected record to survive reopen, got count %d", n)
	}
}
