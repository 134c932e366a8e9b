package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"rankhwa/internal/cache"
	apperrors "rankhwa/internal/errors"
	"rankhwa/internal/metrics"
	"rankhwa/internal/model"
	"rankhwa/internal/repository"
)

// ManhwaService serves catalog reads.
type ManhwaService interface {
	Search(ctx context.Context, criteria repository.SearchCriteria) ([]model.Manhwa, error)
	Get(ctx context.Context, id uint) (*model.Manhwa, error)
}

type manhwaService struct {
	manhwa      repository.ManhwaRepository
	cache       Cache
	maxPageSize int
}

// NewManhwaService creates a new manhwa service. Search page sizes are
// clamped to maxPageSize.
func NewManhwaService(manhwa repository.ManhwaRepository, c Cache, maxPageSize int) ManhwaService {
	if maxPageSize < 1 {
		maxPageSize = 100
	}
	return &manhwaService{manhwa: manhwa, cache: cacheOrNoop(c), maxPageSize: maxPageSize}
}

func (s *manhwaService) Search(ctx context.Context, criteria repository.SearchCriteria) ([]model.Manhwa, error) {
	if criteria.Size > s.maxPageSize {
		criteria.Size = s.maxPageSize
	}
	out, err := s.manhwa.Search(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("search manhwa: %w", err)
	}
	if out == nil {
		out = []model.Manhwa{}
	}
	return out, nil
}

func (s *manhwaService) Get(ctx context.Context, id uint) (*model.Manhwa, error) {
	key := cache.ManhwaKey(id)
	var cached model.Manhwa
	if s.cache.GetJSON(ctx, key, &cached) {
		metrics.RecordCacheLookup("manhwa", true)
		return &cached, nil
	}
	metrics.RecordCacheLookup("manhwa", false)

	m, err := s.manhwa.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrManhwaNotFound
		}
		return nil, fmt.Errorf("find manhwa: %w", err)
	}
	s.cache.AddJSON(ctx, key, m, manhwaCacheTTL)
	return m, nil
}
