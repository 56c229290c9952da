// Package store persists harvested reviews in sqlite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jmylchreest/waxwing/internal/review"
)

const schema = `
CREATE TABLE IF NOT EXISTS reviews (
	artist TEXT,
	album TEXT,
	year_released INTEGER,
	rating REAL,
	small_text TEXT,
	review TEXT,
	reviewer TEXT,
	genre TEXT,
	label TEXT,
	reviewed TEXT,
	album_art_url TEXT
)`

const insertQuery = `
INSERT INTO reviews (
	artist, album, year_released, rating, small_text,
	review, reviewer, genre, label, reviewed, album_art_url
) VALUES (
	:artist, :album, :year_released, :rating, :small_text,
	:review, :reviewer, :genre, :label, :reviewed, :album_art_url
)`

// Store is a review repository keyed by (artist, album). Uniqueness is
// enforced at the application level: the lookup and insert run under one
// writer lock, so concurrent workers cannot both insert the same key.
type Store struct {
	mu sync.Mutex
	db *sqlx.DB
}

// Open opens (or creates) the sqlite database and bootstraps the schema.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open review store %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrap reviews table: %w", err)
	}
	return &Store{db: db}, nil
}

// InsertIfAbsent stores the record unless one already exists for the same
// (artist, album) pair. Existing data is authoritative and never
// overwritten, which makes repeated runs over overlapping URL slices safe.
// It reports whether a row was written.
func (s *Store) InsertIfAbsent(ctx context.Context, rec *review.Review) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM reviews WHERE artist = ? AND album = ?`,
		rec.Artist, rec.Album,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup review %q/%q: %w", rec.Artist, rec.Album, err)
	}
	if n > 0 {
		return false, nil
	}

	if _, err := s.db.NamedExecContext(ctx, insertQuery, rec); err != nil {
		return false, fmt.Errorf("insert review %q/%q: %w", rec.Artist, rec.Album, err)
	}
	return true, nil
}

// Get returns the stored record for a natural key, or nil if absent.
func (s *Store) Get(ctx context.Context, artist, album string) (*review.Review, error) {
	var rec review.Review
	err := s.db.GetContext(ctx, &rec,
		`SELECT * FROM reviews WHERE artist = ? AND album = ?`, artist, album)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get review %q/%q: %w", artist, album, err)
	}
	return &rec, nil
}

// All returns every stored review ordered by natural key.
func (s *Store) All(ctx context.Context) ([]review.Review, error) {
	var recs []review.Review
	if err := s.db.SelectContext(ctx, &recs,
		`SELECT * FROM reviews ORDER BY artist, album`); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return recs, nil
}

// Count returns the number of stored reviews.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(1) FROM reviews`); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
