package cli

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"quiz-review-service/internal/app"
	"quiz-review-service/internal/config"
	"quiz-review-service/internal/extract"
	"quiz-review-service/internal/infra/memory"
	"quiz-review-service/internal/infra/postgres"
	redisrepo "quiz-review-service/internal/infra/redis"
	"quiz-review-service/internal/infra/sqlite"
)

func newExtractor(cfg config.Config) *extract.Extractor {
	return extract.New(extract.Options{MissingMarksAsNil: cfg.Extract.MissingMarksAsNil})
}

// buildService wires the configured store and cache. Postgres wins over
// SQLite; with neither configured papers live in memory.
func buildService(ctx context.Context, cfg config.Config) (*app.ReviewService, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var store app.PaperStore
	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, cleanup, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, pool.Close)
		store = postgres.NewPaperStore(pool)
		log.Printf("storing papers in postgres")
	case cfg.SQLite.DSN != "":
		sqliteStore, err := sqlite.Open(ctx, cfg.SQLite.DSN)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, func() { _ = sqliteStore.Close() })
		store = sqliteStore
		log.Printf("storing papers in sqlite")
	default:
		store = memory.NewPaperStore()
		log.Printf("storing papers in memory")
	}

	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 10*time.Minute)
	var papers app.PaperRepository
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = client.Close() })
		papers = redisrepo.NewPaperRepository(client, store, cacheTTL)
	} else {
		papers = memory.NewPaperRepository(store, cacheTTL)
	}

	return app.NewReviewService(newExtractor(cfg), store, papers), cleanup, nil
}
