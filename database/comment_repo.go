package database

import (
	"github.com/lonlait/blogicum/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentRepo struct {
	db *gorm.DB
}

func NewCommentRepo(db *gorm.DB) *CommentRepo {
	return &CommentRepo{db}
}

// ForPost returns the comments of a post oldest first, with authors loaded.
func (r *CommentRepo) ForPost(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	return comments, err
}

// FindInPost returns the comment only when it belongs to postID.
func (r *CommentRepo) FindInPost(commentID, postID uint) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.
		Preload("Author").
		Where("id = ? AND post_id = ?", commentID, postID).
		Take(&comment).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Add inserts a new comment into the database
func (r *CommentRepo) Add(comment *models.Comment) error {
	return r.db.Omit(clause.Associations).Create(comment).Error
}

// UpdateText rewrites the text of a comment.
func (r *CommentRepo) UpdateText(comment *models.Comment) error {
	return r.db.Model(comment).Update("text", comment.Text).Error
}

func (r *CommentRepo) Delete(id uint) error {
	return r.db.Delete(&models.Comment{}, id).Error
}
