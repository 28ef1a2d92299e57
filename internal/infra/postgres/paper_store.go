package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"quiz-review-service/internal/domain"
	pgmigrations "quiz-review-service/internal/infra/postgres/migrations"
)

// PaperStore keeps extracted papers as JSONB rows.
type PaperStore struct {
	pool *pgxpool.Pool
}

func NewPaperStore(pool *pgxpool.Pool) *PaperStore {
	return &PaperStore{pool: pool}
}

func (s *PaperStore) SavePaper(ctx context.Context, paper domain.StoredPaper) error {
	data, err := json.Marshal(paper.Paper)
	if err != nil {
		return fmt.Errorf("marshal paper: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO review_papers (id, title, extracted_at, data)
		VALUES ($1, $2, $3, $4::jsonb)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title, extracted_at = EXCLUDED.extracted_at, data = EXCLUDED.data`,
		paper.ID, paper.Paper.Title, paper.ExtractedAt, string(data))
	if err != nil {
		return fmt.Errorf("save paper: %w", err)
	}
	return nil
}

func (s *PaperStore) LoadPaper(ctx context.Context, id string) (domain.StoredPaper, error) {
	var (
		raw         []byte
		extractedAt time.Time
	)
	err := s.pool.QueryRow(ctx, `SELECT data, extracted_at FROM review_papers WHERE id=$1`, id).Scan(&raw, &extractedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StoredPaper{}, domain.ErrPaperNotFound
	}
	if err != nil {
		return domain.StoredPaper{}, fmt.Errorf("load paper: %w", err)
	}
	var paper domain.QuestionPaper
	if err := json.Unmarshal(raw, &paper); err != nil {
		return domain.StoredPaper{}, fmt.Errorf("unmarshal paper: %w", err)
	}
	return domain.StoredPaper{ID: id, ExtractedAt: extractedAt.UTC(), Paper: paper}, nil
}

// Migrate applies the review_papers schema to the database at dsn.
func Migrate(ctx context.Context, dsn string) error {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
