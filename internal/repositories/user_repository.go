package repositories

import (
	"errors"

	"storefront_backend/internal/auth"
	"storefront_backend/internal/models"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	Create(user *models.User) error
	FindByID(id string) (*models.User, error)
	FindByEmail(email string) (*models.User, error)
	// FindAdminIDs returns every active identity with the admin
	// capability; the dispatcher resolves global notifications
	// against this set.
	FindAdminIDs() ([]string, error)
	FindAdmins() ([]models.User, error)
}

type UserRepositoryImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

func (r *UserRepositoryImpl) Create(user *models.User) error {
	return r.db.Create(user).Error
}

func (r *UserRepositoryImpl) FindByID(id string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindAdminIDs() ([]string, error) {
	var ids []string
	err := r.db.Model(&models.User{}).
		Where("role IN ? AND is_active = ?", []string{auth.RoleAdmin, auth.RoleManager}, true).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *UserRepositoryImpl) FindAdmins() ([]models.User, error) {
	var users []models.User
	err := r.db.
		Where("role IN ? AND is_active = ?", []string{auth.RoleAdmin, auth.RoleManager}, true).
		Find(&users).Error
	return users, err
}
