package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"quiz-review-service/internal/domain"
	"quiz-review-service/internal/extract"
)

// paperNamespace scopes the name-based UUIDs used as paper IDs.
var paperNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:quiz-review-service:paper"))

// PaperStore persists extracted papers (Postgres, SQLite, memory).
type PaperStore interface {
	SavePaper(ctx context.Context, paper domain.StoredPaper) error
	LoadPaper(ctx context.Context, id string) (domain.StoredPaper, error)
}

// PaperRepository serves papers from a cache in front of a PaperStore.
type PaperRepository interface {
	GetPaper(ctx context.Context, id string) (domain.StoredPaper, error)
	Remember(ctx context.Context, paper domain.StoredPaper)
}

// ReviewService contains the review ingestion use cases.
type ReviewService struct {
	extractor *extract.Extractor
	store     PaperStore
	papers    PaperRepository
	feed      *Feed
	now       func() time.Time
}

func NewReviewService(extractor *extract.Extractor, store PaperStore, papers PaperRepository) *ReviewService {
	return NewReviewServiceWithClock(extractor, store, papers, time.Now)
}

// NewReviewServiceWithClock is test-only for deterministic timestamps.
func NewReviewServiceWithClock(extractor *extract.Extractor, store PaperStore, papers PaperRepository, now func() time.Time) *ReviewService {
	return &ReviewService{
		extractor: extractor,
		store:     store,
		papers:    papers,
		feed:      NewFeed(),
		now:       now,
	}
}

// PaperID returns the ID a page is stored under. The same markup always maps
// to the same ID.
func PaperID(markup string) string {
	return uuid.NewSHA1(paperNamespace, []byte(markup)).String()
}

// Extract converts a page without storing it.
func (s *ReviewService) Extract(markup string) (domain.QuestionPaper, error) {
	if strings.TrimSpace(markup) == "" {
		return domain.QuestionPaper{}, domain.ErrEmptySource
	}
	return s.extractor.String(markup)
}

// Ingest extracts a page, stores it and announces it to subscribers.
// Re-ingesting a known page returns the stored copy.
func (s *ReviewService) Ingest(ctx context.Context, markup string) (domain.StoredPaper, error) {
	if strings.TrimSpace(markup) == "" {
		return domain.StoredPaper{}, domain.ErrEmptySource
	}

	id := PaperID(markup)
	existing, err := s.papers.GetPaper(ctx, id)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrPaperNotFound) {
		return domain.StoredPaper{}, err
	}

	paper, err := s.extractor.String(markup)
	if err != nil {
		return domain.StoredPaper{}, err
	}
	stored := domain.StoredPaper{
		ID:          id,
		ExtractedAt: s.now().UTC(),
		Paper:       paper,
	}
	if err := s.store.SavePaper(ctx, stored); err != nil {
		return domain.StoredPaper{}, err
	}
	s.papers.Remember(ctx, stored)

	s.feed.Publish(domain.IngestEvent{
		PaperID: stored.ID,
		Title:   paper.Title,
		Tally:   paper.Tally(),
	})
	return stored, nil
}

// Get returns a stored paper by ID.
func (s *ReviewService) Get(ctx context.Context, id string) (domain.StoredPaper, error) {
	return s.papers.GetPaper(ctx, id)
}

// Subscribe returns a channel that receives an event per newly ingested paper.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *ReviewService) Subscribe(_ context.Context) (<-chan domain.IngestEvent, func()) {
	return s.feed.Subscribe()
}
