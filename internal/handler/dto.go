package handler

import (
	"time"

	"rankhwa/internal/model"
)

// UserResponse is the caller's own profile.
type UserResponse struct {
	ID          uint      `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, DisplayName: u.DisplayName, CreatedAt: u.CreatedAt}
}

// ListDetailResponse is a list with the ids of the titles it holds.
type ListDetailResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"isDefault"`
	ManhwaIDs []uint `json:"manhwaIds"`
}

func toListDetail(l *model.List) ListDetailResponse {
	return ListDetailResponse{ID: l.ID, Name: l.Name, IsDefault: l.IsDefault, ManhwaIDs: l.ManhwaIDs()}
}

// ManhwaSummary is a search result row.
type ManhwaSummary struct {
	ID           uint     `json:"id"`
	Title        string   `json:"title"`
	Author       string   `json:"author"`
	AvgRating    float64  `json:"avgRating"`
	VoteCount    int      `json:"voteCount"`
	CoverURL     string   `json:"coverUrl"`
	BannerURL    string   `json:"bannerUrl"`
	Chapters     *int     `json:"chapters"`
	Genres       []string `json:"genres"`
	TitleEnglish string   `json:"titleEnglish"`
	TitleRomaji  string   `json:"titleRomaji"`
	TitleNative  string   `json:"titleNative"`
}

func toManhwaSummary(m *model.Manhwa) ManhwaSummary {
	return ManhwaSummary{
		ID:           m.ID,
		Title:        m.Title,
		Author:       m.Author,
		AvgRating:    m.AvgRating,
		VoteCount:    m.VoteCount,
		CoverURL:     m.CoverURL,
		BannerURL:    m.BannerURL,
		Chapters:     m.Chapters,
		Genres:       m.GenreList(),
		TitleEnglish: m.TitleEnglish,
		TitleRomaji:  m.Titles.Romaji,
		TitleNative:  m.TitleNative,
	}
}

// ManhwaDetail adds the long-form fields to a summary.
type ManhwaDetail struct {
	ManhwaSummary
	Description string  `json:"description"`
	ReleaseDate *string `json:"releaseDate"`
}

func toManhwaDetail(m *model.Manhwa) ManhwaDetail {
	d := ManhwaDetail{ManhwaSummary: toManhwaSummary(m), Description: m.Description}
	if m.ReleaseDate != nil {
		s := m.ReleaseDate.Format("2006-01-02")
		d.ReleaseDate = &s
	}
	return d
}

// ScoreResponse carries a rating score; 0 means unrated.
type ScoreResponse struct {
	Score int `json:"score"`
}
