package models

import (
	"time"
)

// PostPreviewLength is how many characters of the text String shows.
const PostPreviewLength = 15

// Post is a single publication. AuthorID is set at creation and never
// changes afterwards.
type Post struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PubDate  time.Time `gorm:"autoCreateTime;index" json:"pub_date"`
	Image    string    `gorm:"size:255" json:"image,omitempty"`
	AuthorID uint      `gorm:"not null;index" json:"-"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID  *uint     `gorm:"index" json:"-"`
	Group    *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group"`
}

func (p Post) String() string {
	runes := []rune(p.Text)
	if len(runes) > PostPreviewLength {
		return string(runes[:PostPreviewLength])
	}
	return p.Text
}
