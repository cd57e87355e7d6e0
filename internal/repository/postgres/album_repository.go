package postgres

import (
	"context"
	"encoding/json"

	"github.com/sefazor/ourphotos-albums/internal/models"
	"github.com/sefazor/ourphotos-albums/internal/repository"
	"gorm.io/gorm"
)

type AlbumRepository struct {
	db *gorm.DB
}

func NewAlbumRepository(db *gorm.DB) *AlbumRepository {
	return &AlbumRepository{
		db: db,
	}
}

func (r *AlbumRepository) Create(ctx context.Context, album *models.Album) error {
	return translateError(r.db.WithContext(ctx).Create(album).Error)
}

func (r *AlbumRepository) GetByAlbumID(ctx context.Context, albumID string) (*models.Album, error) {
	var album models.Album
	if err := r.db.WithContext(ctx).Where("album_id = ?", albumID).First(&album).Error; err != nil {
		return nil, translateError(err)
	}
	return &album, nil
}

func (r *AlbumRepository) Update(ctx context.Context, album *models.Album) error {
	return translateError(r.db.WithContext(ctx).Save(album).Error)
}

func (r *AlbumRepository) Delete(ctx context.Context, albumID string) error {
	res := r.db.WithContext(ctx).Where("album_id = ?", albumID).Delete(&models.Album{})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AlbumRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Album, error) {
	var albums []models.Album
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&albums).Error
	return albums, translateError(err)
}

// ListSharedWith uses jsonb containment so only exact email matches count.
func (r *AlbumRepository) ListSharedWith(ctx context.Context, email string) ([]models.Album, error) {
	needle, err := json.Marshal([]string{email})
	if err != nil {
		return nil, err
	}

	var albums []models.Album
	err = r.db.WithContext(ctx).
		Where("shared_users @> ?", string(needle)).
		Order("created_at DESC").
		Find(&albums).Error
	return albums, translateError(err)
}
