package repository

import (
	"context"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rankhwa/internal/model"
)

// ManhwaRepository defines manhwa persistence operations.
type ManhwaRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Manhwa, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Manhwa, error)
	Search(ctx context.Context, criteria SearchCriteria) ([]model.Manhwa, error)
	// RecomputeAggregate rewrites avg_rating and vote_count from the ratings
	// table in a single statement.
	RecomputeAggregate(ctx context.Context, id uint) error
	// UpsertSeed inserts m or, when a row with the same AniList id exists,
	// refreshes its seed-owned columns. created reports which happened.
	UpsertSeed(ctx context.Context, m *model.Manhwa) (created bool, err error)
}

type manhwaRepository struct {
	db *gorm.DB
}

// NewManhwaRepository creates a new manhwa repository.
func NewManhwaRepository(db *gorm.DB) ManhwaRepository {
	return &manhwaRepository{db: db}
}

// FindByID finds a manhwa by ID.
func (r *manhwaRepository) FindByID(ctx context.Context, id uint) (*model.Manhwa, error) {
	var m model.Manhwa
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByIDForUpdate finds a manhwa by ID with a row-level lock.
func (r *manhwaRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Manhwa, error) {
	var m model.Manhwa
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// Search runs an advanced search.
func (r *manhwaRepository) Search(ctx context.Context, criteria SearchCriteria) ([]model.Manhwa, error) {
	var out []model.Manhwa
	if err := applySearch(r.db.WithContext(ctx).Model(&model.Manhwa{}), criteria).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *manhwaRepository) RecomputeAggregate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE manhwa
		SET avg_rating = COALESCE((SELECT AVG(score) FROM ratings WHERE manhwa_id = ?), 0),
		    vote_count = (SELECT COUNT(*) FROM ratings WHERE manhwa_id = ?)
		WHERE id = ?`, id, id, id).Error
}

func (r *manhwaRepository) UpsertSeed(ctx context.Context, m *model.Manhwa) (bool, error) {
	if m.AnilistID == nil {
		return true, r.db.WithContext(ctx).Create(m).Error
	}

	var existing model.Manhwa
	err := r.db.WithContext(ctx).Where("anilist_id = ?", *m.AnilistID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, r.db.WithContext(ctx).Create(m).Error
	}
	if err != nil {
		return false, err
	}

	// map updates bypass the json serializer, so encode genres here
	genres, err := json.Marshal(m.GenreList())
	if err != nil {
		return false, err
	}
	updates := map[string]any{"genres": string(genres)}
	if m.TitleNative != "" {
		updates["title_native"] = m.TitleNative
	}
	if m.TitleEnglish != "" {
		updates["title_english"] = m.TitleEnglish
	}
	if m.BannerURL != "" {
		updates["banner_url"] = m.BannerURL
	}
	if m.Chapters != nil {
		updates["chapters"] = *m.Chapters
	}
	if err := r.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		return false, err
	}
	m.ID = existing.ID
	return false, nil
}
