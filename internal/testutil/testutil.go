// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"rankhwa/internal/db"
	"rankhwa/internal/model"
)

// TestSecret is a JWT key long enough to pass config validation.
const TestSecret = "test-secret-test-secret-test-secret!"

// NewDB opens a private in-memory sqlite database with the full schema.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	gormDB, err := db.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gormDB
}

// SeedManhwa inserts the given manhwa rows and fails the test on error.
func SeedManhwa(t testing.TB, gormDB *gorm.DB, rows ...*model.Manhwa) {
	t.Helper()
	for _, m := range rows {
		if m.Genres == nil {
			m.Genres = []string{}
		}
		if err := gormDB.WithContext(context.Background()).Create(m).Error; err != nil {
			t.Fatalf("seed manhwa %q: %v", m.Title, err)
		}
	}
}

// SeedUser inserts a user with a placeholder password hash.
func SeedUser(t testing.TB, gormDB *gorm.DB, email string) *model.User {
	t.Helper()
	u := &model.User{
		Email:        email,
		PasswordHash: "x",
		DisplayName:  email,
		AuthProvider: model.AuthProviderLocal,
	}
	if err := gormDB.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

// Date returns a UTC midnight date pointer.
func Date(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}
