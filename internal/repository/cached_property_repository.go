package repository

import (
	"context"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"

	"github.com/helixir/property-service/internal/domain"
)

// CacheMetrics records cache effectiveness. *observability.Metrics satisfies it.
type CacheMetrics interface {
	RecordCacheHit()
	RecordCacheMiss()
}

// CacheConfig configures the property read cache.
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int64
}

// Compile-time interface verification.
var _ PropertyRepository = (*CachedPropertyRepository)(nil)

// generationStripes is the number of write counters ids are hashed onto.
const generationStripes = 64

// CachedPropertyRepository serves Get from an LRU cache and keeps it coherent
// on writes. List always goes to the wrapped repository.
//
// Writes invalidate rather than fill. A Get miss only stores what it read if
// no write to the same stripe finished while it was reading, so a slow read
// never reinstates a row that was updated or deleted underneath it.
type CachedPropertyRepository struct {
	next    PropertyRepository
	cache   *ccache.Cache[*domain.Property]
	ttl     time.Duration
	metrics CacheMetrics

	mu          sync.Mutex
	generations [generationStripes]uint64
}

// NewCachedPropertyRepository wraps next with a read-through cache.
// metrics may be nil.
func NewCachedPropertyRepository(next PropertyRepository, cfg CacheConfig, metrics CacheMetrics) *CachedPropertyRepository {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = 10000
	}
	if cfg.TTL <= 0 {
		cfg.TTL = time.Minute
	}
	return &CachedPropertyRepository{
		next:    next,
		cache:   ccache.New(ccache.Configure[*domain.Property]().MaxSize(cfg.MaxSize)),
		ttl:     cfg.TTL,
		metrics: metrics,
	}
}

// Close stops the cache's background worker.
func (r *CachedPropertyRepository) Close() {
	r.cache.Stop()
}

func (r *CachedPropertyRepository) List(ctx context.Context, filter PropertyFilter) ([]*domain.Property, error) {
	return r.next.List(ctx, filter)
}

func (r *CachedPropertyRepository) Get(ctx context.Context, id int64) (*domain.Property, error) {
	key := domain.FormatID(id)
	if item := r.cache.Get(key); item != nil && !item.Expired() {
		r.recordHit()
		return item.Value().Clone(), nil
	}
	r.recordMiss()

	gen := r.generation(id)
	p, err := r.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	if r.generations[stripe(id)] == gen {
		r.cache.Set(key, p.Clone(), r.ttl)
	}
	r.mu.Unlock()
	return p, nil
}

func (r *CachedPropertyRepository) Create(ctx context.Context, p *domain.Property) (*domain.Property, error) {
	return r.next.Create(ctx, p)
}

func (r *CachedPropertyRepository) Update(ctx context.Context, id int64, fn func(*domain.Property) error) (*domain.Property, error) {
	updated, err := r.next.Update(ctx, id, fn)
	r.invalidate(id)
	return updated, err
}

func (r *CachedPropertyRepository) Delete(ctx context.Context, id int64) (int64, error) {
	affected, err := r.next.Delete(ctx, id)
	r.invalidate(id)
	return affected, err
}

func (r *CachedPropertyRepository) generation(id int64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generations[stripe(id)]
}

// invalidate must run after the wrapped write has completed.
func (r *CachedPropertyRepository) invalidate(id int64) {
	r.mu.Lock()
	r.generations[stripe(id)]++
	r.cache.Delete(domain.FormatID(id))
	r.mu.Unlock()
}

func stripe(id int64) int {
	return int(uint64(id) % generationStripes)
}

func (r *CachedPropertyRepository) recordHit() {
	if r.metrics != nil {
		r.metrics.RecordCacheHit()
	}
}

func (r *CachedPropertyRepository) recordMiss() {
	if r.metrics != nil {
		r.metrics.RecordCacheMiss()
	}
}
