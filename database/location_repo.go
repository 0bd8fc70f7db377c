package database

import (
	"github.com/lonlait/blogicum/models"
	"gorm.io/gorm"
)

type LocationRepo struct {
	db *gorm.DB
}

func NewLocationRepo(db *gorm.DB) *LocationRepo {
	return &LocationRepo{db}
}

func (r *LocationRepo) FindAll() ([]models.Location, error) {
	var locations []models.Location
	err := r.db.Order("name ASC").Order("id ASC").Find(&locations).Error
	return locations, err
}

func (r *LocationRepo) FindByID(id uint) (*models.Location, error) {
	var location models.Location
	if err := r.db.First(&location, id).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *LocationRepo) Add(location *models.Location) error {
	return r.db.Create(location).Error
}

func (r *LocationRepo) Delete(id uint) error {
	return r.db.Delete(&models.Location{}, id).Error
}
