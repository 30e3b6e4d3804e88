package models

import (
	"time"
)

// Score bounds for reviews.
const (
	MinScore = 1
	MaxScore = 10
)

// Review is a scored write-up of a title. A user may review a given title
// at most once; the (author_id, title_id) unique index is the authoritative
// guard, the service-layer pre-check only shapes the error message.
type Review struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	AuthorID uint      `gorm:"not null;uniqueIndex:idx_reviews_author_title" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	TitleID  uint      `gorm:"not null;uniqueIndex:idx_reviews_author_title" json:"title_id"`
	Title    Title     `gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE" json:"-"`
	Text     string    `gorm:"not null" json:"text"`
	Score    int       `gorm:"not null" json:"score"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
}

// Comment is a reply to a review.
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	AuthorID uint      `gorm:"not null" json:"author_id"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	ReviewID uint      `gorm:"not null;index" json:"review_id"`
	Review   Review    `gorm:"foreignKey:ReviewID;constraint:OnDelete:CASCADE" json:"-"`
	Text     string    `gorm:"not null" json:"text"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
}
