package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-review-service/internal/domain"
)

// PaperLoader fetches papers from a backing store.
type PaperLoader interface {
	LoadPaper(ctx context.Context, id string) (domain.StoredPaper, error)
}

// PaperRepository caches papers with TTL to avoid repeated store hits.
type PaperRepository struct {
	loader PaperLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedPaper
}

type cachedPaper struct {
	paper     domain.StoredPaper
	expiresAt time.Time
}

func NewPaperRepository(loader PaperLoader, ttl time.Duration) *PaperRepository {
	return &PaperRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedPaper),
	}
}

func (r *PaperRepository) GetPaper(ctx context.Context, id string) (domain.StoredPaper, error) {
	if paper, ok := r.cached(id, r.clock()); ok {
		return paper, nil
	}

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		now := r.clock()
		if paper, ok := r.cached(id, now); ok {
			return paper, nil
		}

		paper, err := r.loader.LoadPaper(ctx, id)
		if err != nil {
			return domain.StoredPaper{}, err
		}
		r.put(paper, now)
		return paper, nil
	})
	if err != nil {
		return domain.StoredPaper{}, err
	}
	return result.(domain.StoredPaper), nil
}

// Remember caches a freshly stored paper.
func (r *PaperRepository) Remember(_ context.Context, paper domain.StoredPaper) {
	r.put(paper, r.clock())
}

func (r *PaperRepository) cached(id string, now time.Time) (domain.StoredPaper, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[id]
	if !ok || !entry.expiresAt.After(now) {
		return domain.StoredPaper{}, false
	}
	return entry.paper, true
}

func (r *PaperRepository) put(paper domain.StoredPaper, now time.Time) {
	expiresAt := now.Add(r.ttlWithJitter())
	r.mu.Lock()
	r.cache[paper.ID] = cachedPaper{paper: paper, expiresAt: expiresAt}
	r.mu.Unlock()
}

func (r *PaperRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
