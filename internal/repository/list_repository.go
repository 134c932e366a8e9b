package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"rankhwa/internal/model"
)

// ListRepository defines reading list persistence operations.
type ListRepository interface {
	Create(ctx context.Context, list *model.List) error
	FindByID(ctx context.Context, id uint) (*model.List, error)
	FindByIDWithItems(ctx context.Context, id uint) (*model.List, error)
	SummariesByUser(ctx context.Context, userID uint) ([]model.ListSummary, error)
	// NameTaken reports whether userID owns a list called name other than exceptID.
	NameTaken(ctx context.Context, userID uint, name string, exceptID uint) (bool, error)
	UpdateName(ctx context.Context, id uint, name string) error
	Delete(ctx context.Context, id uint) error
	// AddItem inserts the (list, manhwa) pair; an existing pair is left as is.
	AddItem(ctx context.Context, listID, manhwaID uint) error
	RemoveItem(ctx context.Context, listID, manhwaID uint) error
	CountItems(ctx context.Context, listID uint) (int64, error)
}

type listRepository struct {
	db *gorm.DB
}

// NewListRepository creates a new list repository.
func NewListRepository(db *gorm.DB) ListRepository {
	return &listRepository{db: db}
}

func (r *listRepository) Create(ctx context.Context, list *model.List) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(list).Error
}

func (r *listRepository) FindByID(ctx context.Context, id uint) (*model.List, error) {
	var list model.List
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&list).Error; err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *listRepository) FindByIDWithItems(ctx context.Context, id uint) (*model.List, error) {
	var list model.List
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("added_at ASC, manhwa_id ASC") }).
		Where("id = ?", id).First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

func (r *listRepository) SummariesByUser(ctx context.Context, userID uint) ([]model.ListSummary, error) {
	var out []model.ListSummary
	err := r.db.WithContext(ctx).Model(&model.List{}).
		Select("lists.id, lists.name, lists.is_default, lists.created_at, COUNT(list_items.manhwa_id) AS item_count").
		Joins("LEFT JOIN list_items ON list_items.list_id = lists.id").
		Where("lists.user_id = ?", userID).
		Group("lists.id, lists.name, lists.is_default, lists.created_at").
		Order("lists.id ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *listRepository) NameTaken(ctx context.Context, userID uint, name string, exceptID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.List{}).
		Where("user_id = ? AND name = ? AND id <> ?", userID, name, exceptID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *listRepository) UpdateName(ctx context.Context, id uint, name string) error {
	return r.db.WithContext(ctx).Model(&model.List{}).Where("id = ?", id).Update("name", name).Error
}

// Delete removes the list and its items.
func (r *listRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", id).Delete(&model.ListItem{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.List{}).Error
	})
}

func (r *listRepository) AddItem(ctx context.Context, listID, manhwaID uint) error {
	item := &model.ListItem{ListID: listID, ManhwaID: manhwaID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(item).Error
}

func (r *listRepository) RemoveItem(ctx context.Context, listID, manhwaID uint) error {
	return r.db.WithContext(ctx).
		Where("list_id = ? AND manhwa_id = ?", listID, manhwaID).
		Delete(&model.ListItem{}).Error
}

func (r *listRepository) CountItems(ctx context.Context, listID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ListItem{}).Where("list_id = ?", listID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
