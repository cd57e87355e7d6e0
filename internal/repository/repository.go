package repository

import (
	"context"
	"errors"

	"github.com/sefazor/ourphotos-albums/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListExcept(ctx context.Context, email string) ([]models.User, error)
}

type AlbumRepository interface {
	Create(ctx context.Context, album *models.Album) error
	GetByAlbumID(ctx context.Context, albumID string) (*models.Album, error)
	// Update persists the album's description and shared users.
	Update(ctx context.Context, album *models.Album) error
	Delete(ctx context.Context, albumID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.Album, error)
	ListSharedWith(ctx context.Context, email string) ([]models.Album, error)
}

type ImageRepository interface {
	Create(ctx context.Context, image *models.Image) error
	GetByID(ctx context.Context, id string) (*models.Image, error)
	GetByImageID(ctx context.Context, imageID string) (*models.Image, error)
	ListByAlbum(ctx context.Context, albumID string) ([]models.Image, error)
	ListFavorites(ctx context.Context, albumID string) ([]models.Image, error)
	ListByTag(ctx context.Context, albumID, tag string) ([]models.Image, error)
	SetFavorite(ctx context.Context, id string, favorite bool) error
	// AddComment reports false when a comment with the same id is already attached.
	AddComment(ctx context.Context, id string, comment *models.Comment) (bool, error)
	// RemoveComment only removes a comment matching both commentID and ownerID.
	RemoveComment(ctx context.Context, id, commentID, ownerID string) (bool, error)
	Delete(ctx context.Context, id string) error
	DeleteByAlbum(ctx context.Context, albumID string) (int64, error)
}

// Store groups the repositories of one persistence backend.
type Store interface {
	Users() UserRepository
	Albums() AlbumRepository
	Images() ImageRepository
	// WithTx runs fn against a store whose writes commit or roll back together.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
