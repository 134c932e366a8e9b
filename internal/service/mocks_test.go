package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"rankhwa/internal/model"
	"rankhwa/internal/repository"
)

// MockStore is a mock implementation of repository.Store. WithTransaction
// runs fn against the same mocks.
type MockStore struct {
	mock.Mock
	users   *MockUserRepository
	lists   *MockListRepository
	manhwa  *MockManhwaRepository
	ratings *MockRatingRepository
}

func newMockStore() *MockStore {
	return &MockStore{
		users:   &MockUserRepository{},
		lists:   &MockListRepository{},
		manhwa:  &MockManhwaRepository{},
		ratings: &MockRatingRepository{},
	}
}

func (m *MockStore) Users() repository.UserRepository     { return m.users }
func (m *MockStore) Lists() repository.ListRepository     { return m.lists }
func (m *MockStore) Manhwa() repository.ManhwaRepository  { return m.manhwa }
func (m *MockStore) Ratings() repository.RatingRepository { return m.ratings }

func (m *MockStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateDisplayName(ctx context.Context, id uint, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

// MockListRepository is a mock implementation of ListRepository.
type MockListRepository struct {
	mock.Mock
}

func (m *MockListRepository) Create(ctx context.Context, list *model.List) error {
	args := m.Called(ctx, list)
	return args.Error(0)
}

func (m *MockListRepository) FindByID(ctx context.Context, id uint) (*model.List, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.List), args.Error(1)
}

func (m *MockListRepository) FindByIDWithItems(ctx context.Context, id uint) (*model.List, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.List), args.Error(1)
}

func (m *MockListRepository) SummariesByUser(ctx context.Context, userID uint) ([]model.ListSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ListSummary), args.Error(1)
}

func (m *MockListRepository) NameTaken(ctx context.Context, userID uint, name string, exceptID uint) (bool, error) {
	args := m.Called(ctx, userID, name, exceptID)
	return args.Bool(0), args.Error(1)
}

func (m *MockListRepository) UpdateName(ctx context.Context, id uint, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockListRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockListRepository) AddItem(ctx context.Context, listID, manhwaID uint) error {
	args := m.Called(ctx, listID, manhwaID)
	return args.Error(0)
}

func (m *MockListRepository) RemoveItem(ctx context.Context, listID, manhwaID uint) error {
	args := m.Called(ctx, listID, manhwaID)
	return args.Error(0)
}

func (m *MockListRepository) CountItems(ctx context.Context, listID uint) (int64, error) {
	args := m.Called(ctx, listID)
	return args.Get(0).(int64), args.Error(1)
}

// MockManhwaRepository is a mock implementation of ManhwaRepository.
type MockManhwaRepository struct {
	mock.Mock
}

func (m *MockManhwaRepository) FindByID(ctx context.Context, id uint) (*model.Manhwa, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Manhwa), args.Error(1)
}

func (m *MockManhwaRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Manhwa, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Manhwa), args.Error(1)
}

func (m *MockManhwaRepository) Search(ctx context.Context, criteria repository.SearchCriteria) ([]model.Manhwa, error) {
	args := m.Called(ctx, criteria)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Manhwa), args.Error(1)
}

func (m *MockManhwaRepository) RecomputeAggregate(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockManhwaRepository) UpsertSeed(ctx context.Context, row *model.Manhwa) (bool, error) {
	args := m.Called(ctx, row)
	return args.Bool(0), args.Error(1)
}

// MockRatingRepository is a mock implementation of RatingRepository.
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) Upsert(ctx context.Context, rating *model.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *MockRatingRepository) Find(ctx context.Context, userID, manhwaID uint) (*model.Rating, error) {
	args := m.Called(ctx, userID, manhwaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Rating), args.Error(1)
}

func (m *MockRatingRepository) CountByManhwa(ctx context.Context, manhwaID uint) (int64, error) {
	args := m.Called(ctx, manhwaID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// memCache is an in-process Cache for tests.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	deletes []string
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) GetJSON(_ context.Context, key string, dst any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.entries[key]
	if !ok {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (c *memCache) SetJSON(_ context.Context, key string, v any, _ time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = data
	return nil
}

func (c *memCache) AddJSON(_ context.Context, key string, v any, _ time.Duration) bool {
	data, err := json.Marshal(v)
	if err != nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return false
	}
	c.entries[key] = data
	return true
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
		c.deletes = append(c.deletes, k)
	}
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}
