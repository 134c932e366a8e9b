package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"rankhwa/internal/cache"
	apperrors "rankhwa/internal/errors"
	"rankhwa/internal/metrics"
	"rankhwa/internal/model"
	"rankhwa/internal/repository"
)

// RatingService records user scores and keeps the cached aggregate on the
// manhwa row in step with the ratings table.
type RatingService interface {
	// Rate upserts the score and recomputes the aggregate in one transaction.
	// The returned manhwa carries the new aggregate.
	Rate(ctx context.Context, userID, manhwaID uint, score int) (*model.Manhwa, error)
	// MyRating returns the caller's score, or 0 when unrated.
	MyRating(ctx context.Context, userID, manhwaID uint) (int, error)
}

type ratingService struct {
	store repository.Store
	cache Cache
	log   *logrus.Logger
}

// NewRatingService creates a new rating service.
func NewRatingService(store repository.Store, c Cache, log *logrus.Logger) RatingService {
	return &ratingService{store: store, cache: cacheOrNoop(c), log: log}
}

func (s *ratingService) Rate(ctx context.Context, userID, manhwaID uint, score int) (*model.Manhwa, error) {
	if !model.ValidScore(score) {
		return nil, apperrors.ErrInvalidScore
	}

	key := cache.ManhwaKey(manhwaID)
	var updated *model.Manhwa
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		// the row lock serialises concurrent raters of the same title
		if _, err := tx.Manhwa().FindByIDForUpdate(ctx, manhwaID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrManhwaNotFound
			}
			return fmt.Errorf("lock manhwa: %w", err)
		}

		rating := &model.Rating{UserID: userID, ManhwaID: manhwaID, Score: score}
		if err := tx.Ratings().Upsert(ctx, rating); err != nil {
			return fmt.Errorf("upsert rating: %w", err)
		}
		if err := tx.Manhwa().RecomputeAggregate(ctx, manhwaID); err != nil {
			return fmt.Errorf("recompute aggregate: %w", err)
		}

		m, err := tx.Manhwa().FindByID(ctx, manhwaID)
		if err != nil {
			return fmt.Errorf("reload manhwa: %w", err)
		}
		updated = m
		// written under the row lock so detail writes land in commit order
		_ = s.cache.SetJSON(ctx, key, m, manhwaCacheTTL)
		return nil
	})
	if err != nil {
		// the entry may hold an aggregate that was rolled back
		_ = s.cache.Delete(ctx, key)
		return nil, err
	}

	metrics.RecordRating()
	s.log.WithFields(logrus.Fields{
		"manhwa_id":  manhwaID,
		"avg_rating": updated.AvgRating,
		"vote_count": updated.VoteCount,
	}).Debug("rating aggregate recomputed")
	return updated, nil
}

func (s *ratingService) MyRating(ctx context.Context, userID, manhwaID uint) (int, error) {
	rating, err := s.store.Ratings().Find(ctx, userID, manhwaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("find rating: %w", err)
	}
	return rating.Score, nil
}
