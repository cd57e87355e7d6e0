package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/sefazor/ourphotos-albums/internal/models"
	"github.com/sefazor/ourphotos-albums/internal/repository"
)

type AlbumRepository struct {
	coll *mongo.Collection
}

func (r *AlbumRepository) Create(ctx context.Context, album *models.Album) error {
	now := time.Now().UTC()
	album.CreatedAt, album.UpdatedAt = now, now
	if album.SharedUsers == nil {
		album.SharedUsers = []string{}
	}

	_, err := r.coll.InsertOne(ctx, album)
	return translateError(err)
}

func (r *AlbumRepository) GetByAlbumID(ctx context.Context, albumID string) (*models.Album, error) {
	var album models.Album
	if err := r.coll.FindOne(ctx, bson.M{"albumId": albumID}).Decode(&album); err != nil {
		return nil, translateError(err)
	}
	return &album, nil
}

func (r *AlbumRepository) Update(ctx context.Context, album *models.Album) error {
	album.UpdatedAt = time.Now().UTC()
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"albumId": album.AlbumID},
		bson.M{"$set": bson.M{
			"description": album.Description,
			"sharedUsers": album.SharedUsers,
			"updatedAt":   album.UpdatedAt,
		}},
	)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AlbumRepository) Delete(ctx context.Context, albumID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"albumId": albumID})
	if err != nil {
		return translateError(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *AlbumRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Album, error) {
	return r.find(ctx, bson.M{"ownerId": ownerID})
}

// ListSharedWith matches array elements exactly.
func (r *AlbumRepository) ListSharedWith(ctx context.Context, email string) ([]models.Album, error) {
	return r.find(ctx, bson.M{"sharedUsers": email})
}

func (r *AlbumRepository) find(ctx context.Context, filter bson.M) ([]models.Album, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, translateError(err)
	}

	var albums []models.Album
	if err := cursor.All(ctx, &albums); err != nil {
		return nil, err
	}
	return albums, nil
}
