package models

import "time"

// Post is a publication. It is visible to everyone except its author only when it is
// published, its category is published and PubDate is not in the future.
type Post struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"size:256;not null"`
	Text        string    `json:"text" gorm:"type:text;not null"`
	Image       string    `json:"image,omitempty" gorm:"size:512"`
	PubDate     time.Time `json:"pubDate" gorm:"not null;index"`
	IsPublished bool      `json:"isPublished" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt"`

	AuthorID   uint      `json:"authorId" gorm:"not null;index"`
	Author     User      `json:"author" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CategoryID *uint     `json:"categoryId,omitempty" gorm:"index"`
	Category   *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	LocationID *uint     `json:"locationId,omitempty" gorm:"index"`
	Location   *Location `json:"location,omitempty" gorm:"foreignKey:LocationID;constraint:OnDelete:SET NULL"`

	// CommentCount is only filled by listing queries that ask for it.
	CommentCount int64 `json:"commentCount" gorm:"->;-:migration"`
}

func (p Post) OwnerID() uint {
	return p.AuthorID
}
