package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Store groups the repositories bound to one database handle so that a
// service can run several of them inside a single transaction.
type Store interface {
	Users() UserRepository
	Manhwa() ManhwaRepository
	Lists() ListRepository
	Ratings() RatingRepository
	// WithTransaction executes fn with a Store bound to a database transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	Ping(ctx context.Context) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore builds a GORM-backed Store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository     { return NewUserRepository(s.db) }
func (s *gormStore) Manhwa() ManhwaRepository  { return NewManhwaRepository(s.db) }
func (s *gormStore) Lists() ListRepository     { return NewListRepository(s.db) }
func (s *gormStore) Ratings() RatingRepository { return NewRatingRepository(s.db) }

func (s *gormStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormStore{db: tx})
	})
}

func (s *gormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}
