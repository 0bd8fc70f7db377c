package models

import "time"

type Location struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:256;not null"`
	IsPublished bool      `json:"isPublished" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`
}
