package models

import "time"

// User is an account that owns posts and comments.
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:150;not null;uniqueIndex"`
	Email        string    `json:"email" gorm:"size:254"`
	FirstName    string    `json:"firstName" gorm:"size:150"`
	LastName     string    `json:"lastName" gorm:"size:150"`
	PasswordHash string    `json:"-" gorm:"not null"`
	IsStaff      bool      `json:"isStaff" gorm:"not null"`
	DateJoined   time.Time `json:"dateJoined" gorm:"autoCreateTime"`
}

// FullName returns "First Last", or the username when both are empty.
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
