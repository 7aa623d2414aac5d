package models

import (
	"time"
)

// Comment is an append-only reply to a post.
type Comment struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Text     string    `gorm:"type:text;not null" json:"text"`
	PostID   uint      `gorm:"not null;index" json:"post_id"`
	Post     *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID uint      `gorm:"not null;index" json:"-"`
	Author   User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	Created  time.Time `gorm:"autoCreateTime" json:"created"`
}

func (c Comment) String() string {
	return (Post{Text: c.Text}).String()
}
