package catalog

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newStore() *MemStore {
	return NewMemStore(0)
}

func TestSeedLookups(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	all, err := s.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 10 {
		t.Fatalf("seed size=%d", len(all))
	}
	if all[1].Title != "Things Fall Apart" {
		t.Fatalf("book 1 title=%q", all[1].Title)
	}

	b, found, err := s.ByISBN(ctx, "9780385474542")
	if err != nil || !found {
		t.Fatalf("byISBN: found=%v err=%v", found, err)
	}
	if b.ID != 1 || b.Author != "Chinua Achebe" {
		t.Fatalf("byISBN got id=%d author=%q", b.ID, b.Author)
	}

	if _, found, _ := s.ByISBN(ctx, "0000000000000"); found {
		t.Fatalf("unknown isbn found")
	}

	byAuthor, err := s.ByAuthor(ctx, "Unknown")
	if err != nil {
		t.Fatalf("byAuthor: %v", err)
	}
	if len(byAuthor) != 4 {
		t.Fatalf("byAuthor len=%d", len(byAuthor))
	}
	for i, want := range []int{4, 5, 6, 7} {
		if byAuthor[i].ID != want {
			t.Fatalf("byAuthor[%d].ID=%d want=%d", i, byAuthor[i].ID, want)
		}
	}

	if got, _ := s.ByAuthor(ctx, "Nobody"); len(got) != 0 {
		t.Fatalf("byAuthor miss len=%d", len(got))
	}

	b, found, err = s.ByTitle(ctx, "Fairy tales")
	if err != nil || !found {
		t.Fatalf("byTitle: found=%v err=%v", found, err)
	}
	if b.ISBN != "9780143039525" {
		t.Fatalf("byTitle isbn=%q", b.ISBN)
	}

	if _, found, _ := s.ByTitle(ctx, "No Such Book"); found {
		t.Fatalf("unknown title found")
	}
}

func TestReviewLifecycle(t *testing.T) {
	s := newStore()
	ctx := context.Background()
	const isbn = "9780385474542"

	title, updated, err := s.UpsertReview(ctx, isbn, "alice", "great")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if updated {
		t.Fatalf("first review reported as update")
	}
	if title != "Things Fall Apart" {
		t.Fatalf("title=%q", title)
	}

	_, updated, err = s.UpsertReview(ctx, isbn, "alice", "better")
	if err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	if !updated {
		t.Fatalf("second review not reported as update")
	}

	reviews, found, err := s.Reviews(ctx, isbn)
	if err != nil || !found {
		t.Fatalf("reviews: found=%v err=%v", found, err)
	}
	if len(reviews) != 1 || reviews["alice"] != "better" {
		t.Fatalf("reviews=%v", reviews)
	}

	if err := s.DeleteReview(ctx, isbn, "alice"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	reviews, _, _ = s.Reviews(ctx, isbn)
	if len(reviews) != 0 {
		t.Fatalf("reviews after delete=%v", reviews)
	}

	if err := s.DeleteReview(ctx, isbn, "alice"); !errors.Is(err, ErrReviewNotFound) {
		t.Fatalf("delete missing review err=%v", err)
	}
	if _, _, err := s.UpsertReview(ctx, "0", "alice", "x"); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("upsert unknown book err=%v", err)
	}
	if err := s.DeleteReview(ctx, "0", "alice"); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("delete unknown book err=%v", err)
	}
}

func TestReturnedBooksAreCopies(t *testing.T) {
	s := newStore()
	ctx := context.Background()
	const isbn = "9780385474542"

	b, _, err := s.ByISBN(ctx, isbn)
	if err != nil {
		t.Fatalf("byISBN: %v", err)
	}
	b.Reviews["mallory"] = "injected"

	reviews, _, _ := s.Reviews(ctx, isbn)
	if len(reviews) != 0 {
		t.Fatalf("store mutated through returned copy: %v", reviews)
	}
}

func TestReadDelayHonorsContext(t *testing.T) {
	s := NewMemStore(1 * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := s.All(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err=%v", err)
	}
}
