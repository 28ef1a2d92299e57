package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiz-review-service/internal/domain"
)

// PaperLoader fetches papers from the backing store on a cache miss.
type PaperLoader interface {
	LoadPaper(ctx context.Context, id string) (domain.StoredPaper, error)
}

// PaperRepository caches extracted papers in Redis as JSON and falls back to
// a loader on cache miss.
// Papers are stored as: SET review:paper:{id} <json> EX ttl
type PaperRepository struct {
	client *redis.Client
	loader PaperLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewPaperRepository(client *redis.Client, loader PaperLoader, ttl time.Duration) *PaperRepository {
	return &PaperRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *PaperRepository) GetPaper(ctx context.Context, id string) (domain.StoredPaper, error) {
	if paper, ok := r.cached(ctx, id); ok {
		return paper, nil
	}

	result, err, _ := r.sf.Do(id, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if paper, ok := r.cached(ctx, id); ok {
			return paper, nil
		}

		paper, err := r.loader.LoadPaper(ctx, id)
		if err != nil {
			return domain.StoredPaper{}, err
		}
		r.Remember(ctx, paper)
		return paper, nil
	})
	if err != nil {
		return domain.StoredPaper{}, err
	}
	return result.(domain.StoredPaper), nil
}

// Remember writes a paper to the cache. Failures are logged, not returned:
// the store remains the source of truth.
func (r *PaperRepository) Remember(ctx context.Context, paper domain.StoredPaper) {
	data, err := json.Marshal(paper)
	if err != nil {
		log.Printf("cache paper %s: %v", paper.ID, err)
		return
	}
	if err := r.client.Set(ctx, r.key(paper.ID), data, r.ttlWithJitter()).Err(); err != nil {
		log.Printf("cache paper %s: %v", paper.ID, err)
	}
}

func (r *PaperRepository) cached(ctx context.Context, id string) (domain.StoredPaper, bool) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("read cached paper %s: %v", id, err)
		}
		return domain.StoredPaper{}, false
	}
	var paper domain.StoredPaper
	if err := json.Unmarshal(data, &paper); err != nil {
		log.Printf("decode cached paper %s: %v", id, err)
		return domain.StoredPaper{}, false
	}
	return paper, true
}

func (r *PaperRepository) key(id string) string {
	return "review:paper:" + id
}

func (r *PaperRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
