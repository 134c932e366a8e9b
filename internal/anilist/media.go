// Package anilist fetches Korean manga (manhwa) from the AniList GraphQL API.
package anilist

import (
	"errors"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// BannedGenres are never imported.
var BannedGenres = map[string]struct{}{
	"Hentai": {}, "Smut": {}, "Erotica": {}, "Ecchi": {},
	"Yaoi": {}, "Yuri": {}, "Steamy": {}, "BL": {}, "GL": {}, "Adult": {},
}

// Title holds the localized titles AniList returns.
type Title struct {
	Romaji        string
	English       string
	Native        string
	UserPreferred string
}

// Preferred picks english, then romaji, native, userPreferred.
func (t Title) Preferred() string {
	for _, s := range []string{t.English, t.Romaji, t.Native, t.UserPreferred} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return "Untitled"
}

// Date is an AniList fuzzy date; zero fields are unknown.
type Date struct {
	Year, Month, Day int
}

// Time resolves the fuzzy date. A missing month or day becomes 1 and the
// day is clamped to the length of the month. No year means no date.
func (d Date) Time() *time.Time {
	if d.Year <= 0 {
		return nil
	}
	month := d.Month
	if month < 1 || month > 12 {
		month = 1
	}
	day := d.Day
	if day < 1 {
		day = 1
	}
	// day 0 of the next month is the last day of this one
	if last := time.Date(d.Year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day(); day > last {
		day = last
	}
	t := time.Date(d.Year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}

// Media is one AniList media entry.
type Media struct {
	ID           int64
	Title        Title
	Description  string
	AverageScore int
	Popularity   int
	StartDate    Date
	CoverImage   string
	BannerImage  string
	Chapters     *int
	Genres       []string
	IsAdult      bool
	HasAdultTag  bool
	Author       string
}

// Allowed reports whether the entry passes the content filters.
func (m Media) Allowed() bool {
	if m.IsAdult || m.HasAdultTag {
		return false
	}
	for _, g := range m.Genres {
		if _, banned := BannedGenres[g]; banned {
			return false
		}
	}
	return true
}

// CleanDescription flattens carriage returns and tabs.
func (m Media) CleanDescription() string {
	return strings.NewReplacer("\r", " ", "\t", " ").Replace(m.Description)
}

// ErrMalformedResponse is returned when a payload has no media list.
var ErrMalformedResponse = errors.New("anilist: malformed response")

// ParsePage extracts data.Page.media from a GraphQL response body.
func ParsePage(body []byte) ([]Media, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedResponse
	}
	root := gjson.ParseBytes(body)
	if errs := root.Get("errors"); errs.Exists() && len(errs.Array()) > 0 {
		return nil, errors.New("anilist: " + errs.Get("0.message").String())
	}
	media := root.Get("data.Page.media")
	if !media.IsArray() {
		return nil, ErrMalformedResponse
	}
	return parseArray(media), nil
}

// ParseDump extracts media from a JSON array of AniList media objects, or
// from a saved GraphQL response.
func ParseDump(body []byte) ([]Media, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedResponse
	}
	root := gjson.ParseBytes(body)
	if root.IsArray() {
		return parseArray(root), nil
	}
	return ParsePage(body)
}

func parseArray(arr gjson.Result) []Media {
	out := make([]Media, 0, len(arr.Array()))
	arr.ForEach(func(_, v gjson.Result) bool {
		out = append(out, parseMedia(v))
		return true
	})
	return out
}

func parseMedia(v gjson.Result) Media {
	m := Media{
		ID: v.Get("id").Int(),
		Title: Title{
			Romaji:        v.Get("title.romaji").String(),
			English:       v.Get("title.english").String(),
			Native:        v.Get("title.native").String(),
			UserPreferred: v.Get("title.userPreferred").String(),
		},
		Description:  v.Get("description").String(),
		AverageScore: int(v.Get("averageScore").Int()),
		Popularity:   int(v.Get("popularity").Int()),
		StartDate: Date{
			Year:  int(v.Get("startDate.year").Int()),
			Month: int(v.Get("startDate.month").Int()),
			Day:   int(v.Get("startDate.day").Int()),
		},
		CoverImage:  v.Get("coverImage.extraLarge").String(),
		BannerImage: v.Get("bannerImage").String(),
		IsAdult:     v.Get("isAdult").Bool(),
		Author:      v.Get("staff.nodes.0.name.full").String(),
	}
	if ch := v.Get("chapters"); ch.Exists() && ch.Type == gjson.Number {
		n := int(ch.Int())
		m.Chapters = &n
	}
	v.Get("tags").ForEach(func(_, tag gjson.Result) bool {
		if tag.Get("isAdult").Bool() {
			m.HasAdultTag = true
			return false
		}
		return true
	})
	genres := v.Get("genres")
	m.Genres = make([]string, 0, len(genres.Array()))
	if genres.IsArray() {
		for _, g := range genres.Array() {
			if s := g.String(); s != "" {
				m.Genres = append(m.Genres, s)
			}
		}
	}
	return m
}
