// Package sqlite stores extracted papers in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // driver: sqlite

	"quiz-review-service/internal/domain"
)

const defaultDSN = "file:reviews.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"

const schema = `
CREATE TABLE IF NOT EXISTS review_papers (
  id TEXT PRIMARY KEY,
  title TEXT,
  extracted_at INTEGER NOT NULL,
  data TEXT NOT NULL
);
`

// PaperStore is a database/sql PaperStore on the modernc SQLite driver.
type PaperStore struct {
	db *sql.DB
}

// Open opens the database at dsn and ensures the schema exists.
func Open(ctx context.Context, dsn string) (*PaperStore, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &PaperStore{db: db}, nil
}

func (s *PaperStore) Close() error {
	return s.db.Close()
}

func (s *PaperStore) SavePaper(ctx context.Context, paper domain.StoredPaper) error {
	data, err := json.Marshal(paper.Paper)
	if err != nil {
		return fmt.Errorf("marshal paper: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO review_papers (id,title,extracted_at,data)
		VALUES (?,?,?,?)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, extracted_at=EXCLUDED.extracted_at, data=EXCLUDED.data`,
		paper.ID, paper.Paper.Title, paper.ExtractedAt.UnixMilli(), string(data))
	if err != nil {
		return fmt.Errorf("save paper: %w", err)
	}
	return nil
}

func (s *PaperStore) LoadPaper(ctx context.Context, id string) (domain.StoredPaper, error) {
	var (
		data        string
		extractedAt int64
	)
	row := s.db.QueryRowContext(ctx, `SELECT data, extracted_at FROM review_papers WHERE id=?`, id)
	if err := row.Scan(&data, &extractedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.StoredPaper{}, domain.ErrPaperNotFound
		}
		return domain.StoredPaper{}, fmt.Errorf("load paper: %w", err)
	}
	var paper domain.QuestionPaper
	if err := json.Unmarshal([]byte(data), &paper); err != nil {
		return domain.StoredPaper{}, fmt.Errorf("unmarshal paper: %w", err)
	}
	return domain.StoredPaper{
		ID:          id,
		ExtractedAt: time.UnixMilli(extractedAt).UTC(),
		Paper:       paper,
	}, nil
}
