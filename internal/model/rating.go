package model

import "time"

const (
	MinScore = 1
	MaxScore = 10
)

// Rating is one user's score for one manhwa. Last write wins.
type Rating struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	ManhwaID  uint      `json:"manhwa_id" gorm:"primaryKey;autoIncrement:false;index"`
	Score     int       `json:"score" gorm:"not null;check:chk_ratings_score,score >= 1 AND score <= 10"`
	UpdatedAt time.Time `json:"updated_at"`

	User   *User   `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Manhwa *Manhwa `json:"-" gorm:"foreignKey:ManhwaID;constraint:OnDelete:CASCADE"`
}

func (Rating) TableName() string {
	return "ratings"
}

// ValidScore reports whether s is an acceptable rating score.
func ValidScore(s int) bool {
	return s >= MinScore && s <= MaxScore
}
