package model

import "time"

// AuthProvider identifies how a user authenticates.
type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "LOCAL"
	AuthProviderGoogle AuthProvider = "GOOGLE"
)

// User represents a registered reader.
type User struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	Email        string       `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string       `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	DisplayName  string       `json:"display_name" gorm:"size:255;not null"`
	AuthProvider AuthProvider `json:"auth_provider" gorm:"type:varchar(16);not null;default:'LOCAL'"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// WithDisplayName returns a copy of u carrying the new display name.
func (u User) WithDisplayName(name string) User {
	u.DisplayName = name
	return u
}
