package database

import (
	"github.com/lonlait/blogicum/models"
	"gorm.io/gorm"
)

type CategoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) *CategoryRepo {
	return &CategoryRepo{db}
}

// FindAll returns every category ordered by title
func (r *CategoryRepo) FindAll() ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Order("title ASC").Order("id ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepo) FindByID(id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindPublishedBySlug returns the category only when it is published.
func (r *CategoryRepo) FindPublishedBySlug(slug string) (*models.Category, error) {
	var category models.Category
	err := r.db.
		Where("slug = ? AND is_published = ?", slug, true).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Add inserts a new category into the database
func (r *CategoryRepo) Add(category *models.Category) error {
	return r.db.Create(category).Error
}

// SetPublished flips is_published on the category with slug.
func (r *CategoryRepo) SetPublished(slug string, published bool) error {
	result := r.db.Model(&models.Category{}).
		Where("slug = ?", slug).
		Update("is_published", published)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a category; its posts keep existing without a category.
func (r *CategoryRepo) Delete(id uint) error {
	return r.db.Delete(&models.Category{}, id).Error
}
