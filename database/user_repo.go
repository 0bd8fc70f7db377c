package database

import (
	"github.com/lonlait/blogicum/models"
	"gorm.io/gorm"
)

type UserRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db}
}

// FindByID returns a user by its ID
func (r *UserRepo) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername returns a user by its exact username
func (r *UserRepo) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UsernameTaken reports whether another user (not exceptID) already uses username.
func (r *UserRepo) UsernameTaken(username string, exceptID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&count).Error
	return count > 0, err
}

// Add inserts a new user into the database
func (r *UserRepo) Add(user *models.User) error {
	return r.db.Create(user).Error
}

// UpdateProfile writes the self-editable profile fields of user.
func (r *UserRepo) UpdateProfile(user *models.User) error {
	return r.db.Model(user).
		Select("username", "email", "first_name", "last_name").
		Updates(map[string]any{
			"username":   user.Username,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
		}).Error
}

// Delete removes a user; their posts and comments go with them.
func (r *UserRepo) Delete(id uint) error {
	return r.db.Delete(&models.User{}, id).Error
}
