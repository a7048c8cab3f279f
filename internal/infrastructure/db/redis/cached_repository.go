package redis

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/authpractice/todo-service/internal/api/metrics"
	"github.com/authpractice/todo-service/internal/core/domain"
	"github.com/authpractice/todo-service/internal/core/ports"
)

// fillTimeout bounds a cache fill. Fills are detached from the request that
// started them.
const fillTimeout = 10 * time.Second

// ListCache is the subset of TodoCache used by CachedRepository.
type ListCache interface {
	GetList(ctx context.Context) ([]domain.Todo, error)
	Generation(ctx context.Context) (int64, error)
	StoreList(ctx context.Context, list []domain.Todo, gen int64) (bool, error)
	Invalidate(ctx context.Context) error
}

// CachedRepository serves ListAll from the cache and drops the cached list
// after every successful write. A fill that raced with a write is not
// stored. Cache errors degrade to the underlying repository and are never
// returned.
type CachedRepository struct {
	next   ports.TodoRepository
	cache  ListCache
	logger zerolog.Logger
	sf     singleflight.Group
}

func NewCachedRepository(next ports.TodoRepository, cache ListCache, logger zerolog.Logger) *CachedRepository {
	return &CachedRepository{next: next, cache: cache, logger: logger}
}

func (r *CachedRepository) ListAll(ctx context.Context) ([]domain.Todo, error) {
	// Concurrent callers share one fill, so it must not die with the
	// first caller's request.
	v, err, _ := r.sf.Do(keyList, func() (interface{}, error) {
		fillCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fillTimeout)
		defer cancel()
		return r.fill(fillCtx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.Todo), nil
}

func (r *CachedRepository) fill(ctx context.Context) ([]domain.Todo, error) {
	list, err := r.cache.GetList(ctx)
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		r.logger.Warn().Err(err).Msg("todo cache read failed")
	case list != nil:
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		return list, nil
	default:
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	gen, genErr := r.cache.Generation(ctx)
	if genErr != nil {
		r.logger.Warn().Err(genErr).Msg("todo cache generation read failed")
	}

	list, err = r.next.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		return list, nil
	}
	if stored, err := r.cache.StoreList(ctx, list, gen); err != nil {
		r.logger.Warn().Err(err).Msg("todo cache write failed")
	} else if !stored {
		r.logger.Debug().Int64("generation", gen).Msg("todo list changed during fill; not cached")
	}
	return list, nil
}

func (r *CachedRepository) FindByID(ctx context.Context, id int64) (*domain.Todo, error) {
	return r.next.FindByID(ctx, id)
}

func (r *CachedRepository) Insert(ctx context.Context, in domain.NewTodo) (*domain.Todo, error) {
	t, err := r.next.Insert(ctx, in)
	if err == nil {
		r.invalidate(ctx)
	}
	return t, err
}

func (r *CachedRepository) Replace(ctx context.Context, id int64, in domain.TodoReplacement) (*domain.Todo, error) {
	t, err := r.next.Replace(ctx, id, in)
	if err == nil {
		r.invalidate(ctx)
	}
	return t, err
}

func (r *CachedRepository) Merge(ctx context.Context, id int64, patch domain.TodoPatch) (*domain.Todo, error) {
	t, err := r.next.Merge(ctx, id, patch)
	if err == nil {
		r.invalidate(ctx)
	}
	return t, err
}

func (r *CachedRepository) Delete(ctx context.Context, id int64) (bool, error) {
	removed, err := r.next.Delete(ctx, id)
	if err == nil && removed {
		r.invalidate(ctx)
	}
	return removed, err
}

func (r *CachedRepository) invalidate(ctx context.Context) {
	// Later callers must not join a fill that started before this write.
	r.sf.Forget(keyList)
	if err := r.cache.Invalidate(context.WithoutCancel(ctx)); err != nil {
		r.logger.Warn().Err(err).Msg("todo cache invalidation failed")
	}
}
