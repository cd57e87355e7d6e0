package postgres

import (
	"context"
	"encoding/json"

	"github.com/sefazor/ourphotos-albums/internal/models"
	"github.com/sefazor/ourphotos-albums/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ImageRepository struct {
	db *gorm.DB
}

func NewImageRepository(db *gorm.DB) *ImageRepository {
	return &ImageRepository{
		db: db,
	}
}

func (r *ImageRepository) withComments(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Comments", func(db *gorm.DB) *gorm.DB {
		return db.Order("comments.id ASC")
	})
}

func (r *ImageRepository) Create(ctx context.Context, image *models.Image) error {
	return translateError(r.db.WithContext(ctx).Create(image).Error)
}

func (r *ImageRepository) GetByID(ctx context.Context, id string) (*models.Image, error) {
	var image models.Image
	if err := r.withComments(ctx).Where("id = ?", id).First(&image).Error; err != nil {
		return nil, translateError(err)
	}
	return &image, nil
}

func (r *ImageRepository) GetByImageID(ctx context.Context, imageID string) (*models.Image, error) {
	var image models.Image
	if err := r.withComments(ctx).Where("image_id = ?", imageID).First(&image).Error; err != nil {
		return nil, translateError(err)
	}
	return &image, nil
}

func (r *ImageRepository) ListByAlbum(ctx context.Context, albumID string) ([]models.Image, error) {
	var images []models.Image
	err := r.withComments(ctx).
		Where("album_id = ?", albumID).
		Order("created_at ASC").
		Find(&images).Error
	return images, translateError(err)
}

func (r *ImageRepository) ListFavorites(ctx context.Context, albumID string) ([]models.Image, error) {
	var images []models.Image
	err := r.withComments(ctx).
		Where("album_id = ? AND is_favorite = ?", albumID, true).
		Order("created_at ASC").
		Find(&images).Error
	return images, translateError(err)
}

func (r *ImageRepository) ListByTag(ctx context.Context, albumID, tag string) ([]models.Image, error) {
	needle, err := json.Marshal([]string{tag})
	if err != nil {
		return nil, err
	}

	var images []models.Image
	err = r.withComments(ctx).
		Where("album_id = ? AND tags @> ?", albumID, string(needle)).
		Order("created_at ASC").
		Find(&images).Error
	return images, translateError(err)
}

func (r *ImageRepository) SetFavorite(ctx context.Context, id string, favorite bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Image{}).
		Where("id = ?", id).
		Update("is_favorite", favorite)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ImageRepository) AddComment(ctx context.Context, id string, comment *models.Comment) (bool, error) {
	comment.ImageRef = id
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "image_ref"}, {Name: "comment_id"}},
			DoNothing: true,
		}).
		Create(comment)
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ImageRepository) RemoveComment(ctx context.Context, id, commentID, ownerID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("image_ref = ? AND comment_id = ? AND owner_id = ?", id, commentID, ownerID).
		Delete(&models.Comment{})
	if res.Error != nil {
		return false, translateError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Image{})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ImageRepository) DeleteByAlbum(ctx context.Context, albumID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("album_id = ?", albumID).Delete(&models.Image{})
	return res.RowsAffected, translateError(res.Error)
}
