package models

import "time"

const CommentMaxLength = 256

type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`

	PostID   uint `json:"postId" gorm:"not null;index"`
	Post     Post `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	AuthorID uint `json:"authorId" gorm:"not null;index"`
	Author   User `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}

func (c Comment) OwnerID() uint {
	return c.AuthorID
}
