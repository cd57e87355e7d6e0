package postgres

import (
	"context"

	"github.com/sefazor/ourphotos-albums/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return translateError(r.db.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *UserRepository) ListExcept(ctx context.Context, email string) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).
		Where("email <> ?", email).
		Order("email ASC").
		Find(&users).Error
	return users, translateError(err)
}
