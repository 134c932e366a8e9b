package model

import "time"

// Titles holds the localized title variants imported from AniList.
type Titles struct {
	Romaji        string `json:"romaji,omitempty"`
	English       string `json:"english,omitempty"`
	Native        string `json:"native,omitempty"`
	UserPreferred string `json:"userPreferred,omitempty"`
}

// Manhwa is a catalogued title. Rows are seeded externally; the service only
// mutates AvgRating and VoteCount, which mirror the ratings table.
type Manhwa struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Title          string     `json:"title" gorm:"size:512;not null;index:idx_manhwa_title"`
	Author         string     `json:"author" gorm:"size:255;index:idx_manhwa_author"`
	Description    string     `json:"description" gorm:"type:text"`
	CoverURL       string     `json:"cover_url" gorm:"size:1024"`
	BannerURL      string     `json:"banner_url" gorm:"size:1024"`
	ReleaseDate    *time.Time `json:"release_date" gorm:"type:date;index"`
	AvgRating      float64    `json:"avg_rating" gorm:"not null;default:0;index"`
	VoteCount      int        `json:"vote_count" gorm:"not null;default:0"`
	Genres         []string   `json:"genres" gorm:"type:text;serializer:json"`
	Chapters       *int       `json:"chapters"`
	AnilistID      *int64     `json:"anilist_id,omitempty" gorm:"uniqueIndex"`
	SeedPopularity int        `json:"seed_popularity" gorm:"not null;default:0"`
	TitleNative    string     `json:"title_native" gorm:"size:512"`
	TitleEnglish   string     `json:"title_english" gorm:"size:512"`
	Titles         Titles     `json:"titles" gorm:"type:text;serializer:json"`
}

func (Manhwa) TableName() string {
	return "manhwa"
}

// WithAggregate returns a copy of m carrying a recomputed rating aggregate.
func (m Manhwa) WithAggregate(avg float64, votes int) Manhwa {
	m.AvgRating = avg
	m.VoteCount = votes
	return m
}

// GenreList never returns nil so it always encodes as a JSON array.
func (m Manhwa) GenreList() []string {
	if m.Genres == nil {
		return []string{}
	}
	return m.Genres
}
