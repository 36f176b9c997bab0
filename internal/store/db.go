package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/lib/pq"

	"github.com/baxromumarov/quote-hunter/internal/scraper"
)

type Store struct {
	db *sql.DB
}

func NewStore(connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) RunMigrations(schemaPath string) error {
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

// SaveQuotes upserts a crawl's records. (text, author) identifies a
// quote; recrawls refresh tags and link rather than duplicating rows.
func (s *Store) SaveQuotes(ctx context.Context, quotes []scraper.Quote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO quotes (text, author, tags, link, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
ON CONFLICT (text, author) DO UPDATE SET
    tags = EXCLUDED.tags,
    link = EXCLUDED.link,
    updated_at = NOW()
`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, q := range quotes {
		tags := q.Tags
		if tags == nil {
			tags = []string{}
		}
		if _, err := stmt.ExecContext(ctx, q.Text, q.Author, pq.Array(tags), q.Link); err != nil {
			return fmt.Errorf("failed to save quote %q: %w", q.Author, err)
		}
	}

	return tx.Commit()
}

// GetQuotes returns a page of stored records plus the total count.
func (s *Store) GetQuotes(ctx context.Context, limit, offset int) ([]scraper.Quote, int, error) {
	limit = clampLimit(limit, 20, 200)
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT text, author, tags, link
FROM quotes
ORDER BY id
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quotes []scraper.Quote
	for rows.Next() {
		var q scraper.Quote
		var tags pq.StringArray
		if err := rows.Scan(&q.Text, &q.Author, &tags, &q.Link); err != nil {
			return nil, 0, err
		}
		q.Tags = []string(tags)
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotes`).Scan(&total); err != nil {
		return nil, 0, err
	}

	return quotes, total, nil
}

// GetAllQuotes returns every stored record, for tag analysis.
func (s *Store) GetAllQuotes(ctx context.Context) ([]scraper.Quote, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT text, author, tags, link
FROM quotes
ORDER BY id
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotes []scraper.Quote
	for rows.Next() {
		var q scraper.Quote
		var tags pq.StringArray
		if err := rows.Scan(&q.Text, &q.Author, &tags, &q.Link); err != nil {
			return nil, err
		}
		q.Tags = []string(tags)
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

func (s *Store) DeleteOldQuotes(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := s.db.ExecContext(ctx, `
DELETE FROM quotes
WHERE updated_at < $1
`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func clampLimit(limit, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}
