package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quiz-review-service/internal/domain"
	"quiz-review-service/internal/infra/memory"
)

func TestPaperRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := memory.NewPaperStore()
	if err := store.SavePaper(context.Background(), samplePaper()); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	loader := &countingLoader{PaperLoader: store}
	repo := NewPaperRepository(newClient(mr), loader, time.Minute)

	got, err := repo.GetPaper(context.Background(), "paper-1")
	if err != nil {
		t.Fatalf("get paper: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if got.Paper.Title == nil || *got.Paper.Title != "Quiz 1" {
		t.Fatalf("unexpected paper %+v", got)
	}
	if !mr.Exists("review:paper:paper-1") {
		t.Fatalf("expected paper cached in redis")
	}
	if ttl := mr.TTL("review:paper:paper-1"); ttl < time.Minute {
		t.Fatalf("expected ttl of at least a minute, got %s", ttl)
	}

	// Second call should hit cache, loader not incremented.
	cached, err := repo.GetPaper(context.Background(), "paper-1")
	if err != nil {
		t.Fatalf("get cached paper: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if cached.Paper.Questions[0].State != domain.StateCorrect {
		t.Fatalf("expected cached question state to survive, got %q", cached.Paper.Questions[0].State)
	}
}

func TestPaperRepositoryMissPropagatesNotFound(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	repo := NewPaperRepository(newClient(mr), memory.NewPaperStore(), time.Minute)
	if _, err := repo.GetPaper(context.Background(), "missing"); !errors.Is(err, domain.ErrPaperNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if mr.Exists("review:paper:missing") {
		t.Fatalf("misses must not be cached")
	}
}

func TestPaperRepositoryRemember(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{PaperLoader: memory.NewPaperStore()}
	repo := NewPaperRepository(newClient(mr), loader, time.Minute)
	repo.Remember(context.Background(), samplePaper())

	if _, err := repo.GetPaper(context.Background(), "paper-1"); err != nil {
		t.Fatalf("get remembered paper: %v", err)
	}
	if loader.calls != 0 {
		t.Fatalf("expected no loader calls, got %d", loader.calls)
	}
}

type countingLoader struct {
	PaperLoader
	calls int
}

func (l *countingLoader) LoadPaper(ctx context.Context, id string) (domain.StoredPaper, error) {
	l.calls++
	return l.PaperLoader.LoadPaper(ctx, id)
}

func samplePaper() domain.StoredPaper {
	title := "Quiz 1"
	achieved, total := 1.0, 1.0
	return domain.StoredPaper{
		ID:          "paper-1",
		ExtractedAt: time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC),
		Paper: domain.QuestionPaper{
			Breadcrumbs: []string{"Dashboard"},
			Title:       &title,
			Questions: []domain.Question{
				{
					Info:  domain.QuestionInfo{MarkAchieved: &achieved, MarkTotal: &total},
					State: domain.StateCorrect,
				},
			},
		},
	}
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
