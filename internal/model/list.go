package model

import "time"

// DefaultListNames are created for every user at registration, in this order.
var DefaultListNames = []string{"Reading", "Completed", "Plan to Read", "Favorites"}

// List is a named, user-owned reading list.
type List struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_lists_user_name,priority:1;index:idx_lists_user"`
	Name      string     `json:"name" gorm:"size:255;not null;uniqueIndex:idx_lists_user_name,priority:2"`
	IsDefault bool       `json:"is_default" gorm:"not null;default:false"`
	CreatedAt time.Time  `json:"created_at"`
	Items     []ListItem `json:"items,omitempty" gorm:"foreignKey:ListID;constraint:OnDelete:CASCADE"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (List) TableName() string {
	return "lists"
}

// OwnedBy reports whether userID owns the list.
func (l List) OwnedBy(userID uint) bool {
	return l.UserID == userID
}

// Renamed returns a copy of l with the new name.
func (l List) Renamed(name string) List {
	l.Name = name
	return l
}

// ManhwaIDs returns the ids of the titles in the list.
func (l List) ManhwaIDs() []uint {
	ids := make([]uint, 0, len(l.Items))
	for _, it := range l.Items {
		ids = append(ids, it.ManhwaID)
	}
	return ids
}

// ListItem links a manhwa into a list. The composite key makes duplicate
// adds collapse into one row.
type ListItem struct {
	ListID   uint      `json:"list_id" gorm:"primaryKey;autoIncrement:false"`
	ManhwaID uint      `json:"manhwa_id" gorm:"primaryKey;autoIncrement:false;index"`
	AddedAt  time.Time `json:"added_at" gorm:"autoCreateTime"`

	Manhwa *Manhwa `json:"-" gorm:"foreignKey:ManhwaID;constraint:OnDelete:CASCADE"`
}

func (ListItem) TableName() string {
	return "list_items"
}

// ListSummary is a list row joined with its item count.
type ListSummary struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"isDefault"`
	ItemCount int       `json:"itemCount"`
	CreatedAt time.Time `json:"createdAt"`
}
