package poller

import (
	"context"
	"math"
	"time"

	"github.com/nknauf/ncaa-halftime-predictor/internal/cache"
	"github.com/nknauf/ncaa-halftime-predictor/internal/metrics"
	"github.com/nknauf/ncaa-halftime-predictor/internal/models"
	"github.com/nknauf/ncaa-halftime-predictor/internal/repository"

	"github.com/rs/zerolog/log"
)

const subscribersCacheKey = "mbb:subscribers:active"

// CachedSubscriberSource serves the active subscriber list through an
// optional Redis cache. The full active list is cached once and confidence
// filtering happens in memory, so one cache entry covers every alert.
type CachedSubscriberSource struct {
	repo  *repository.SubscriberRepository
	cache *cache.RedisCache // nil disables caching
	ttl   time.Duration
}

// NewCachedSubscriberSource creates a subscriber source. Pass a nil cache to
// read straight from the database.
func NewCachedSubscriberSource(repo *repository.SubscriberRepository, c *cache.RedisCache, ttl time.Duration) *CachedSubscriberSource {
	return &CachedSubscriberSource{repo: repo, cache: c, ttl: ttl}
}

// ListActive returns active subscribers eligible at the given confidence
func (s *CachedSubscriberSource) ListActive(ctx context.Context, confidence float64) ([]*models.Subscriber, error) {
	all, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}

	var eligible []*models.Subscriber
	for _, sub := range all {
		if !sub.MinConfidence.Valid || sub.MinConfidence.Float64 <= confidence {
			eligible = append(eligible, sub)
		}
	}
	return eligible, nil
}

func (s *CachedSubscriberSource) loadAll(ctx context.Context) ([]*models.Subscriber, error) {
	if s.cache != nil {
		var cached []*models.Subscriber
		found, err := s.cache.GetJSON(ctx, subscribersCacheKey, &cached)
		if err != nil {
			log.Warn().Err(err).Msg("Subscriber cache read failed, falling back to database")
		} else if found {
			metrics.CacheHitsTotal.Inc()
			return cached, nil
		} else {
			metrics.CacheMissesTotal.Inc()
		}
	}

	subs, err := s.repo.ListActive(ctx, math.MaxFloat64)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, subscribersCacheKey, subs, s.ttl); err != nil {
			log.Warn().Err(err).Msg("Subscriber cache write failed")
		}
	}

	return subs, nil
}
