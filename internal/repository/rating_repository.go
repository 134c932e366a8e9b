package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rankhwa/internal/model"
)

// RatingRepository defines rating persistence operations.
type RatingRepository interface {
	// Upsert writes the score for (user, manhwa), replacing any earlier one.
	Upsert(ctx context.Context, rating *model.Rating) error
	Find(ctx context.Context, userID, manhwaID uint) (*model.Rating, error)
	CountByManhwa(ctx context.Context, manhwaID uint) (int64, error)
}

type ratingRepository struct {
	db *gorm.DB
}

// NewRatingRepository creates a new rating repository.
func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Upsert(ctx context.Context, rating *model.Rating) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "manhwa_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
		}).
		Omit(clause.Associations).
		Create(rating).Error
}

func (r *ratingRepository) Find(ctx context.Context, userID, manhwaID uint) (*model.Rating, error) {
	var rating model.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND manhwa_id = ?", userID, manhwaID).
		First(&rating).Error
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (r *ratingRepository) CountByManhwa(ctx context.Context, manhwaID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Rating{}).Where("manhwa_id = ?", manhwaID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
