package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	apperrors "rankhwa/internal/errors"
	"rankhwa/internal/model"
	"rankhwa/internal/repository"
)

// ListService manages reading lists. Every operation on an existing list
// goes through the ownership guard first.
type ListService interface {
	ListAll(ctx context.Context, userID uint) ([]model.ListSummary, error)
	GetOwned(ctx context.Context, userID, listID uint) (*model.List, error)
	Create(ctx context.Context, userID uint, name string) (*model.List, error)
	Rename(ctx context.Context, userID, listID uint, name string) error
	Delete(ctx context.Context, userID, listID uint) error
	AddItem(ctx context.Context, userID, listID, manhwaID uint) error
	RemoveItem(ctx context.Context, userID, listID, manhwaID uint) error
	CreateDefaultListsFor(ctx context.Context, userID uint) error
}

type listService struct {
	store repository.Store
	log   *logrus.Logger
}

// NewListService creates a new list service.
func NewListService(store repository.Store, log *logrus.Logger) ListService {
	return &listService{store: store, log: log}
}

// requireOwned loads the list and checks that userID owns it.
func requireOwned(ctx context.Context, lists repository.ListRepository, userID, listID uint) (*model.List, error) {
	list, err := lists.FindByID(ctx, listID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrListNotFound
		}
		return nil, fmt.Errorf("find list: %w", err)
	}
	if !list.OwnedBy(userID) {
		return nil, apperrors.ErrForbidden
	}
	return list, nil
}

// createDefaultLists inserts the default lists through the given repository,
// which callers bind to a transaction.
func createDefaultLists(ctx context.Context, lists repository.ListRepository, userID uint) error {
	for _, name := range model.DefaultListNames {
		l := &model.List{UserID: userID, Name: name, IsDefault: true}
		if err := lists.Create(ctx, l); err != nil {
			return fmt.Errorf("create default list %q: %w", name, err)
		}
	}
	return nil
}

func (s *listService) ListAll(ctx context.Context, userID uint) ([]model.ListSummary, error) {
	out, err := s.store.Lists().SummariesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list summaries: %w", err)
	}
	if out == nil {
		out = []model.ListSummary{}
	}
	return out, nil
}

func (s *listService) GetOwned(ctx context.Context, userID, listID uint) (*model.List, error) {
	if _, err := requireOwned(ctx, s.store.Lists(), userID, listID); err != nil {
		return nil, err
	}
	list, err := s.store.Lists().FindByIDWithItems(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("load list items: %w", err)
	}
	return list, nil
}

func (s *listService) Create(ctx context.Context, userID uint, name string) (*model.List, error) {
	name, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	taken, err := s.store.Lists().NameTaken(ctx, userID, name, 0)
	if err != nil {
		return nil, fmt.Errorf("check list name: %w", err)
	}
	if taken {
		return nil, apperrors.ErrListNameTaken
	}

	list := &model.List{UserID: userID, Name: name}
	if err := s.store.Lists().Create(ctx, list); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrListNameTaken
		}
		return nil, fmt.Errorf("create list: %w", err)
	}
	list.Items = []model.ListItem{}
	return list, nil
}

func (s *listService) Rename(ctx context.Context, userID, listID uint, name string) error {
	list, err := requireOwned(ctx, s.store.Lists(), userID, listID)
	if err != nil {
		return err
	}
	if list.IsDefault {
		return apperrors.ErrDefaultList
	}

	name, err = normalizeName(name)
	if err != nil {
		return err
	}
	if name == list.Name {
		return nil
	}
	taken, err := s.store.Lists().NameTaken(ctx, userID, name, listID)
	if err != nil {
		return fmt.Errorf("check list name: %w", err)
	}
	if taken {
		return apperrors.ErrListNameTaken
	}

	renamed := list.Renamed(name)
	if err := s.store.Lists().UpdateName(ctx, renamed.ID, renamed.Name); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrListNameTaken
		}
		return fmt.Errorf("rename list: %w", err)
	}
	return nil
}

func (s *listService) Delete(ctx context.Context, userID, listID uint) error {
	list, err := requireOwned(ctx, s.store.Lists(), userID, listID)
	if err != nil {
		return err
	}
	if list.IsDefault {
		return apperrors.ErrDefaultList
	}
	if err := s.store.Lists().Delete(ctx, listID); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "list_id": listID}).Info("list deleted")
	return nil
}

func (s *listService) AddItem(ctx context.Context, userID, listID, manhwaID uint) error {
	if _, err := requireOwned(ctx, s.store.Lists(), userID, listID); err != nil {
		return err
	}
	if err := s.store.Lists().AddItem(ctx, listID, manhwaID); err != nil {
		return fmt.Errorf("add list item: %w", err)
	}
	return nil
}

func (s *listService) RemoveItem(ctx context.Context, userID, listID, manhwaID uint) error {
	if _, err := requireOwned(ctx, s.store.Lists(), userID, listID); err != nil {
		return err
	}
	if err := s.store.Lists().RemoveItem(ctx, listID, manhwaID); err != nil {
		return fmt.Errorf("remove list item: %w", err)
	}
	return nil
}

func (s *listService) CreateDefaultListsFor(ctx context.Context, userID uint) error {
	return s.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		return createDefaultLists(ctx, tx.Lists(), userID)
	})
}

// normalizeName trims a list or display name and rejects blank ones.
func normalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperrors.ErrInvalidName
	}
	return name, nil
}
