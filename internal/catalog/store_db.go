package catalog

import (
	"context"
	"database/sql"
	"time"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// PostgresStore is the durable alternative to MemStore, selected when the
// process is started with DATABASE_URL. Expects:
//
//	books   (id int primary key, author text, title text, isbn text unique)
//	reviews (isbn text references books(isbn), username text, body text,
//	         primary key (isbn, username))
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.PingContext(ctx)
	})
}

func (s *PostgresStore) All(ctx context.Context) (map[int]Book, error) {
	out := make(map[int]Book, 16)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, author, title, isbn
			FROM books
			ORDER BY id ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		byISBN := make(map[string]int, 16)
		for rows.Next() {
			var b Book
			if err := rows.Scan(&b.ID, &b.Author, &b.Title, &b.ISBN); err != nil {
				return err
			}
			b.Reviews = make(map[string]string)
			out[b.ID] = b
			byISBN[b.ISBN] = b.ID
		}
		if err := rows.Err(); err != nil {
			return err
		}

		rr, err := s.db.QueryContext(ctx, `SELECT isbn, username, body FROM reviews`)
		if err != nil {
			return err
		}
		defer rr.Close()

		for rr.Next() {
			var isbn, username, body string
			if err := rr.Scan(&isbn, &username, &body); err != nil {
				return err
			}
			if id, ok := byISBN[isbn]; ok {
				out[id].Reviews[username] = body
			}
		}
		return rr.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) ByISBN(ctx context.Context, isbn string) (Book, bool, error) {
	return s.oneBook(ctx, `
		SELECT id, author, title, isbn
		FROM books
		WHERE isbn = $1
	`, isbn)
}

func (s *PostgresStore) ByTitle(ctx context.Context, title string) (Book, bool, error) {
	return s.oneBook(ctx, `
		SELECT id, author, title, isbn
		FROM books
		WHERE title = $1
		ORDER BY id ASC
		LIMIT 1
	`, title)
}

func (s *PostgresStore) oneBook(ctx context.Context, query, arg string) (Book, bool, error) {
	var b Book

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		if err := s.db.QueryRowContext(ctx, query, arg).
			Scan(&b.ID, &b.Author, &b.Title, &b.ISBN); err != nil {
			return err
		}
		reviews, err := s.loadReviews(ctx, b.ISBN)
		if err != nil {
			return err
		}
		b.Reviews = reviews
		return nil
	})

	if err == sql.ErrNoRows {
		return Book{}, false, nil
	}
	if err != nil {
		return Book{}, false, err
	}
	return b, true, nil
}

func (s *PostgresStore) ByAuthor(ctx context.Context, author string) ([]Book, error) {
	var out []Book

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, author, title, isbn
			FROM books
			WHERE author = $1
			ORDER BY id ASC
		`, author)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Book, 0, 4)
		for rows.Next() {
			var b Book
			if err := rows.Scan(&b.ID, &b.Author, &b.Title, &b.ISBN); err != nil {
				return err
			}
			out = append(out, b)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		for i := range out {
			reviews, err := s.loadReviews(ctx, out[i].ISBN)
			if err != nil {
				return err
			}
			out[i].Reviews = reviews
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) Reviews(ctx context.Context, isbn string) (map[string]string, bool, error) {
	var (
		reviews map[string]string
		found   bool
	)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		if err := s.db.QueryRowContext(ctx, `
			SELECT true FROM books WHERE isbn = $1
		`, isbn).Scan(&found); err != nil {
			return err
		}

		var err error
		reviews, err = s.loadReviews(ctx, isbn)
		return err
	})

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return reviews, true, nil
}

func (s *PostgresStore) UpsertReview(ctx context.Context, isbn, username, review string) (string, bool, error) {
	var (
		title   string
		updated bool
	)

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if err := tx.QueryRowContext(ctx, `
			SELECT title FROM books WHERE isbn = $1
		`, isbn).Scan(&title); err != nil {
			if err == sql.ErrNoRows {
				return ErrBookNotFound
			}
			return err
		}

		if err := tx.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM reviews WHERE isbn = $1 AND username = $2
			)
		`, isbn, username).Scan(&updated); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO reviews (isbn, username, body)
			VALUES ($1, $2, $3)
			ON CONFLICT (isbn, username) DO UPDATE SET body = EXCLUDED.body
		`, isbn, username, review); err != nil {
			return err
		}

		return tx.Commit()
	})

	if err != nil {
		return "", false, err
	}
	return title, updated, nil
}

func (s *PostgresStore) DeleteReview(ctx context.Context, isbn, username string) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		var exists bool
		if err := s.db.QueryRowContext(ctx, `
			SELECT true FROM books WHERE isbn = $1
		`, isbn).Scan(&exists); err != nil {
			if err == sql.ErrNoRows {
				return ErrBookNotFound
			}
			return err
		}

		res, err := s.db.ExecContext(ctx, `
			DELETE FROM reviews WHERE isbn = $1 AND username = $2
		`, isbn, username)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrReviewNotFound
		}
		return nil
	})
}

func (s *PostgresStore) loadReviews(ctx context.Context, isbn string) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, body FROM reviews WHERE isbn = $1
	`, isbn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var username, body string
		if err := rows.Scan(&username, &body); err != nil {
			return nil, err
		}
		out[username] = body
	}
	return out, rows.Err()
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
