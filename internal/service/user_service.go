package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"rankhwa/internal/cache"
	apperrors "rankhwa/internal/errors"
	"rankhwa/internal/metrics"
	"rankhwa/internal/model"
	"rankhwa/internal/repository"
)

// PublicProfile is what anyone may see about a user.
type PublicProfile struct {
	ID          uint      `json:"id"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserService handles user profile operations.
type UserService interface {
	Me(ctx context.Context, userID uint) (*model.User, error)
	// UpdateMe applies the non-nil fields and returns the updated user.
	UpdateMe(ctx context.Context, userID uint, displayName *string) (*model.User, error)
	PublicProfile(ctx context.Context, userID uint) (*PublicProfile, error)
}

type userService struct {
	users repository.UserRepository
	cache Cache
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository, c Cache) UserService {
	return &userService{users: users, cache: cacheOrNoop(c)}
}

func (s *userService) Me(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

func (s *userService) UpdateMe(ctx context.Context, userID uint, displayName *string) (*model.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	if displayName == nil {
		return user, nil
	}

	name, err := normalizeName(*displayName)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateDisplayName(ctx, userID, name); err != nil {
		return nil, fmt.Errorf("update display name: %w", err)
	}
	_ = s.cache.Delete(ctx, cache.UserProfileKey(userID))

	updated := user.WithDisplayName(name)
	return &updated, nil
}

func (s *userService) PublicProfile(ctx context.Context, userID uint) (*PublicProfile, error) {
	key := cache.UserProfileKey(userID)
	var cached PublicProfile
	if s.cache.GetJSON(ctx, key, &cached) {
		metrics.RecordCacheLookup("user", true)
		return &cached, nil
	}
	metrics.RecordCacheLookup("user", false)

	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := &PublicProfile{ID: user.ID, DisplayName: user.DisplayName, CreatedAt: user.CreatedAt}
	s.cache.AddJSON(ctx, key, profile, profileCacheTTL)
	return profile, nil
}
