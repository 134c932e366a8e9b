package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"rankhwa/internal/anilist"
	"rankhwa/internal/metrics"
	"rankhwa/internal/model"
	"rankhwa/internal/repository"
)

// DefaultPopularityThreshold is the minimum AniList popularity imported.
const DefaultPopularityThreshold = 100

// MediaSource yields pages of AniList media. An empty page ends the run.
type MediaSource interface {
	FetchPage(ctx context.Context, page, perPage int) ([]anilist.Media, error)
}

// StaticSource serves a fixed media slice as a single page.
type StaticSource []anilist.Media

// FetchPage returns everything on page 1 and nothing afterwards.
func (s StaticSource) FetchPage(_ context.Context, page, _ int) ([]anilist.Media, error) {
	if page != 1 {
		return nil, nil
	}
	return s, nil
}

// SeedOptions controls a seeding run.
type SeedOptions struct {
	Threshold int
	PerPage   int
	// MaxPages stops after this many pages; 0 means until exhausted.
	MaxPages int
}

// SeedStats summarises a seeding run.
type SeedStats struct {
	Pages   int
	Created int
	Updated int
	Skipped int
}

// SeedService imports manhwa from AniList into the catalog.
type SeedService interface {
	Seed(ctx context.Context, src MediaSource, opts SeedOptions) (SeedStats, error)
}

type seedService struct {
	store repository.Store
	log   *logrus.Logger
}

// NewSeedService creates a new seed service.
func NewSeedService(store repository.Store, log *logrus.Logger) SeedService {
	return &seedService{store: store, log: log}
}

func (s *seedService) Seed(ctx context.Context, src MediaSource, opts SeedOptions) (SeedStats, error) {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultPopularityThreshold
	}
	if opts.PerPage <= 0 {
		opts.PerPage = anilist.DefaultPerPage
	}

	var stats SeedStats
	for page := 1; opts.MaxPages == 0 || page <= opts.MaxPages; page++ {
		media, err := src.FetchPage(ctx, page, opts.PerPage)
		if err != nil {
			return stats, fmt.Errorf("fetch page %d: %w", page, err)
		}
		if len(media) == 0 {
			break
		}

		// one transaction per page, like a commit per fetched batch
		var pageStats SeedStats
		err = s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
			pageStats = SeedStats{}
			for _, m := range media {
				if !m.Allowed() || m.Popularity < opts.Threshold {
					pageStats.Skipped++
					continue
				}
				row := ManhwaFromMedia(m)
				created, err := tx.Manhwa().UpsertSeed(ctx, &row)
				if err != nil {
					return fmt.Errorf("upsert anilist %d: %w", m.ID, err)
				}
				if created {
					pageStats.Created++
				} else {
					pageStats.Updated++
				}
			}
			return nil
		})
		if err != nil {
			return stats, err
		}

		stats.Created += pageStats.Created
		stats.Updated += pageStats.Updated
		stats.Skipped += pageStats.Skipped
		metrics.RecordSeedUpserts(pageStats.Created, pageStats.Updated)
		stats.Pages++
		s.log.WithFields(logrus.Fields{"page": page, "titles": len(media)}).Info("seed page done")
	}
	return stats, nil
}

// ManhwaFromMedia maps an AniList entry onto a new catalog row. The rating
// aggregate starts empty since no ratings exist for it yet.
func ManhwaFromMedia(m anilist.Media) model.Manhwa {
	id := m.ID
	genres := m.Genres
	if genres == nil {
		genres = []string{}
	}
	return model.Manhwa{
		Title:          m.Title.Preferred(),
		Author:         m.Author,
		Description:    m.CleanDescription(),
		CoverURL:       m.CoverImage,
		BannerURL:      m.BannerImage,
		ReleaseDate:    m.StartDate.Time(),
		Genres:         genres,
		Chapters:       m.Chapters,
		AnilistID:      &id,
		SeedPopularity: m.Popularity,
		TitleNative:    m.Title.Native,
		TitleEnglish:   m.Title.English,
		Titles: model.Titles{
			Romaji:        m.Title.Romaji,
			English:       m.Title.English,
			Native:        m.Title.Native,
			UserPreferred: m.Title.UserPreferred,
		},
	}
}
