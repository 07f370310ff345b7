package catalog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemStore keeps the catalog in a mutex-guarded map seeded at construction.
// Every call waits readDelay first, standing in for a database round trip;
// tests pass zero.
type MemStore struct {
	mu    sync.RWMutex
	books map[int]Book
	delay time.Duration
}

func NewMemStore(readDelay time.Duration) *MemStore {
	s := &MemStore{books: make(map[int]Book), delay: readDelay}
	for _, b := range seedBooks() {
		b.Reviews = make(map[string]string)
		s.books[b.ID] = b
	}
	return s
}

func seedBooks() []Book {
	return []Book{
		{ID: 1, Author: "Chinua Achebe", Title: "Things Fall Apart", ISBN: "9780385474542"},
		{ID: 2, Author: "Hans Christian Andersen", Title: "Fairy tales", ISBN: "9780143039525"},
		{ID: 3, Author: "Dante Alighieri", Title: "The Divine Comedy", ISBN: "9780142437223"},
		{ID: 4, Author: "Unknown", Title: "The Epic Of Gilgamesh", ISBN: "9780140449198"},
		{ID: 5, Author: "Unknown", Title: "The Book Of Job", ISBN: "9780199538895"},
		{ID: 6, Author: "Unknown", Title: "One Thousand and One Nights", ISBN: "9780140442892"},
		{ID: 7, Author: "Unknown", Title: "Njál's Saga", ISBN: "9780140447699"},
		{ID: 8, Author: "Jane Austen", Title: "Pride and Prejudice", ISBN: "9780141439518"},
		{ID: 9, Author: "Honoré de Balzac", Title: "Le Père Goriot", ISBN: "9780140449723"},
		{ID: 10, Author: "Samuel Beckett", Title: "Molloy, Malone Dies, The Unnamable, the trilogy", ISBN: "9780802144478"},
	}
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(s.delay)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *MemStore) All(ctx context.Context) (map[int]Book, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int]Book, len(s.books))
	for id, b := range s.books {
		out[id] = cloneBook(b)
	}
	return out, nil
}

func (s *MemStore) ByISBN(ctx context.Context, isbn string) (Book, bool, error) {
	if err := s.wait(ctx); err != nil {
		return Book{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.findISBN(isbn)
	if !ok {
		return Book{}, false, nil
	}
	return cloneBook(s.books[id]), true, nil
}

func (s *MemStore) ByAuthor(ctx context.Context, author string) ([]Book, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Book, 0, 4)
	for _, b := range s.books {
		if b.Author == author {
			out = append(out, cloneBook(b))
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) ByTitle(ctx context.Context, title string) (Book, bool, error) {
	if err := s.wait(ctx); err != nil {
		return Book{}, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.books {
		if b.Title == title {
			return cloneBook(b), true, nil
		}
	}
	return Book{}, false, nil
}

func (s *MemStore) Reviews(ctx context.Context, isbn string) (map[string]string, bool, error) {
	if err := s.wait(ctx); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.findISBN(isbn)
	if !ok {
		return nil, false, nil
	}
	return cloneReviews(s.books[id].Reviews), true, nil
}

func (s *MemStore) UpsertReview(ctx context.Context, isbn, username, review string) (string, bool, error) {
	if err := s.wait(ctx); err != nil {
		return "", false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.findISBN(isbn)
	if !ok {
		return "", false, ErrBookNotFound
	}

	b := s.books[id]
	_, updated := b.Reviews[username]
	b.Reviews[username] = review
	return b.Title, updated, nil
}

func (s *MemStore) DeleteReview(ctx context.Context, isbn, username string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.findISBN(isbn)
	if !ok {
		return ErrBookNotFound
	}

	b := s.books[id]
	if _, ok := b.Reviews[username]; !ok {
		return ErrReviewNotFound
	}
	delete(b.Reviews, username)
	return nil
}

// findISBN is a linear scan; the seed set is small enough that an index would
// be noise. Caller must hold the lock.
func (s *MemStore) findISBN(isbn string) (int, bool) {
	for id, b := range s.books {
		if b.ISBN == isbn {
			return id, true
		}
	}
	return 0, false
}

func cloneBook(b Book) Book {
	b.Reviews = cloneReviews(b.Reviews)
	return b
}

func cloneReviews(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
