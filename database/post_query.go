package database

import (
	"time"

	"gorm.io/gorm"
)

const commentCountColumn = "(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"

// PostQuery describes which posts a listing returns. Zero IDs mean "no restriction".
type PostQuery struct {
	CategoryID uint
	AuthorID   uint

	// RequirePublished keeps only visible posts: published, in a published
	// category and with PubDate not after Now.
	RequirePublished bool
	WithCommentCount bool

	// Now defaults to the current UTC time.
	Now time.Time
}

func (q PostQuery) now() time.Time {
	if q.Now.IsZero() {
		return time.Now().UTC()
	}
	return q.Now.UTC()
}

// apply adds the scope and visibility conditions to tx. The master table is "posts".
func (q PostQuery) apply(tx *gorm.DB) *gorm.DB {
	if q.CategoryID != 0 {
		tx = tx.Where("posts.category_id = ?", q.CategoryID)
	}

	if q.AuthorID != 0 {
		tx = tx.Where("posts.author_id = ?", q.AuthorID)
	}

	if q.RequirePublished {
		tx = tx.
			Joins("JOIN categories ON categories.id = posts.category_id").
			Where("posts.is_published = ?", true).
			Where("categories.is_published = ?", true).
			Where("posts.pub_date <= ?", q.now())
	}

	return tx
}

func (q PostQuery) columns() string {
	if q.WithCommentCount {
		return "posts.*, " + commentCountColumn
	}
	return "posts.*"
}

// withRelations eagerly loads author, category and location in one query each.
func withRelations(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Author").
		Preload("Category").
		Preload("Location")
}

// newestFirst orders by publication date; equal dates keep insertion order.
func newestFirst(tx *gorm.DB) *gorm.DB {
	return tx.
		Order("posts.pub_date DESC").
		Order("posts.id ASC")
}
