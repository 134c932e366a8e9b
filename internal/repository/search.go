package repository

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/gorm"
)

// SortKey selects the primary ordering of a manhwa search.
type SortKey string

const (
	SortRating SortKey = "rating"
	SortDate   SortKey = "date"
	SortTitle  SortKey = "title"
)

const DefaultPageSize = 20

// ParseSortKey maps a query-string value onto a SortKey, defaulting to rating.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortDate:
		return SortDate
	case SortTitle:
		return SortTitle
	default:
		return SortRating
	}
}

// SearchCriteria describes an advanced manhwa search. Nil or empty fields do
// not constrain the result.
type SearchCriteria struct {
	Query     string
	MinRating *float64
	MinVotes  *int
	Year      *int
	Genres    []string
	Sort      SortKey
	Page      int
	Size      int
}

// Limit is the page size, never below 1.
func (c SearchCriteria) Limit() int {
	if c.Size < 1 {
		return 1
	}
	return c.Size
}

// Offset is max(page,0) * max(size,1).
func (c SearchCriteria) Offset() int {
	page := c.Page
	if page < 0 {
		page = 0
	}
	return page * c.Limit()
}

// ParseGenres splits a comma separated genre list, dropping blanks.
func ParseGenres(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// applySearch composes filters, ordering and pagination onto tx.
func applySearch(tx *gorm.DB, c SearchCriteria) *gorm.DB {
	if q := strings.TrimSpace(c.Query); q != "" {
		tx = tx.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if c.MinRating != nil {
		tx = tx.Where("avg_rating >= ?", *c.MinRating)
	}
	if c.MinVotes != nil {
		tx = tx.Where("vote_count >= ?", *c.MinVotes)
	}
	if c.Year != nil {
		from := time.Date(*c.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		tx = tx.Where("release_date >= ? AND release_date < ?", from, from.AddDate(1, 0, 0))
	}
	if len(c.Genres) > 0 {
		// genres is a JSON encoded string array, so a quoted tag only matches
		// a whole element. gorm parenthesises the OR group when it is joined
		// with other conditions.
		conds := make([]string, 0, len(c.Genres))
		args := make([]any, 0, len(c.Genres))
		for _, g := range c.Genres {
			quoted, _ := json.Marshal(g)
			conds = append(conds, "genres LIKE ?")
			args = append(args, "%"+string(quoted)+"%")
		}
		tx = tx.Where(strings.Join(conds, " OR "), args...)
	}

	switch c.Sort {
	case SortDate:
		tx = tx.Order("CASE WHEN release_date IS NULL THEN 1 ELSE 0 END").Order("release_date DESC")
	case SortTitle:
		tx = tx.Order("title ASC")
	}
	tx = tx.Order("avg_rating DESC").Order("vote_count DESC").Order("id ASC")

	return tx.Limit(c.Limit()).Offset(c.Offset())
}
