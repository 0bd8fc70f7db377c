package models

import "time"

const TitleMaxLength = 256

// Category groups posts under a URL slug. Managed outside the web UI.
type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"size:256;not null"`
	Description string    `json:"description" gorm:"type:text;not null"`
	Slug        string    `json:"slug" gorm:"size:64;not null;uniqueIndex"`
	IsPublished bool      `json:"isPublished" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
}
