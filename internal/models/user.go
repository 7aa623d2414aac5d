// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User is an author or reader. The username is the public handle used in
// profile URLs and is immutable once created.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:254;uniqueIndex;not null" json:"-"`
	Password  string    `gorm:"not null" json:"-"`
	FirstName string    `gorm:"size:150" json:"first_name"`
	LastName  string    `gorm:"size:150" json:"last_name"`
	IsAdmin   bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt time.Time `json:"date_joined"`
	UpdatedAt time.Time `json:"-"`
}

// FullName returns "First Last", falling back to the username.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}

func (u User) String() string {
	return u.Username
}
