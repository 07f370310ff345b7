package catalog

import (
	"context"
	"errors"
)

var (
	ErrBookNotFound   = errors.New("book not found")
	ErrReviewNotFound = errors.New("review not found")
)

type Book struct {
	ID      int               `json:"id"`
	Author  string            `json:"author"`
	Title   string            `json:"title"`
	ISBN    string            `json:"isbn"`
	Reviews map[string]string `json:"reviews"`
}

// Store owns the book records and is the only mutator of their reviews.
// Reviews are keyed by username, so one review per user per book.
type Store interface {
	Ping(ctx context.Context) error

	All(ctx context.Context) (map[int]Book, error)
	ByISBN(ctx context.Context, isbn string) (Book, bool, error)
	ByAuthor(ctx context.Context, author string) ([]Book, error)
	ByTitle(ctx context.Context, title string) (Book, bool, error)
	Reviews(ctx context.Context, isbn string) (map[string]string, bool, error)

	// UpsertReview sets the user's review on the book with the given ISBN and
	// reports the book title and whether an earlier review by that user was
	// overwritten. Returns ErrBookNotFound for an unknown ISBN.
	UpsertReview(ctx context.Context, isbn, username, review string) (string, bool, error)

	// DeleteReview removes the user's review. Returns ErrBookNotFound for an
	// unknown ISBN and ErrReviewNotFound when the user never reviewed it.
	DeleteReview(ctx context.Context, isbn, username string) error
}
