package service

import (
	"context"
	"sync"
	"time"

	"chirp/internal/cache"
	"chirp/internal/featureflags"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/observability"
	"chirp/internal/repository"
	"chirp/internal/validation"
)

const (
	DefaultTrendingLimit = 7
	MaxTrendingLimit     = 50

	recordTimeout = 5 * time.Second
)

// TrendingService counts hashtags and serves the most used ones.
type TrendingService struct {
	repo    repository.HashtagRepository
	flags   *featureflags.Manager
	pending sync.WaitGroup
}

func NewTrendingService(repo repository.HashtagRepository, flags *featureflags.Manager) *TrendingService {
	return &TrendingService{repo: repo, flags: flags}
}

// Top returns up to limit hashtags by count, highest first. Results are
// cached briefly.
func (s *TrendingService) Top(ctx context.Context, limit int) ([]models.Hashtag, error) {
	if limit <= 0 {
		limit = DefaultTrendingLimit
	}
	limit = min(limit, MaxTrendingLimit)

	var tags []models.Hashtag
	err := cache.Aside(ctx, cache.TrendingKey(limit), &tags, cache.TrendingTTL, func() error {
		var err error
		tags, err = s.repo.Top(ctx, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []models.Hashtag{}
	}
	return tags, nil
}

// Record increments the counter of every hashtag in text.
func (s *TrendingService) Record(ctx context.Context, text string) error {
	tags := validation.ExtractHashtags(text)
	if len(tags) == 0 {
		return nil
	}
	if err := s.repo.Increment(ctx, tags); err != nil {
		observability.TrendingIngestFailures.Inc()
		return err
	}
	return nil
}

// RecordAsync runs Record in the background unless ingestion is switched
// off. Failures are logged only.
func (s *TrendingService) RecordAsync(ctx context.Context, text string) {
	if s.flags.Disabled(featureflags.TrendingIngest) {
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(ctx, recordTimeout)
		defer cancel()
		if err := s.Record(ctx, text); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to record hashtags", "error", err)
		}
	}()
}

// Wait blocks until every pending RecordAsync call has finished.
func (s *TrendingService) Wait() {
	s.pending.Wait()
}
