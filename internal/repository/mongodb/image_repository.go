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

// ImageRepository keeps comments embedded in the image document.
type ImageRepository struct {
	coll *mongo.Collection
}

func (r *ImageRepository) Create(ctx context.Context, image *models.Image) error {
	now := time.Now().UTC()
	image.CreatedAt, image.UpdatedAt = now, now
	if image.Tags == nil {
		image.Tags = []string{}
	}
	// $push needs an array, not null
	if image.Comments == nil {
		image.Comments = []models.Comment{}
	}

	_, err := r.coll.InsertOne(ctx, image)
	return translateError(err)
}

func (r *ImageRepository) GetByID(ctx context.Context, id string) (*models.Image, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ImageRepository) GetByImageID(ctx context.Context, imageID string) (*models.Image, error) {
	return r.findOne(ctx, bson.M{"imageId": imageID})
}

func (r *ImageRepository) ListByAlbum(ctx context.Context, albumID string) ([]models.Image, error) {
	return r.find(ctx, bson.M{"albumId": albumID})
}

func (r *ImageRepository) ListFavorites(ctx context.Context, albumID string) ([]models.Image, error) {
	return r.find(ctx, bson.M{"albumId": albumID, "isFavorite": true})
}

func (r *ImageRepository) ListByTag(ctx context.Context, albumID, tag string) ([]models.Image, error) {
	return r.find(ctx, bson.M{"albumId": albumID, "tags": tag})
}

func (r *ImageRepository) SetFavorite(ctx context.Context, id string, favorite bool) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"isFavorite": favorite, "updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return translateError(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ImageRepository) AddComment(ctx context.Context, id string, comment *models.Comment) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "comments.commentId": bson.M{"$ne": comment.CommentID}},
		bson.M{"$push": bson.M{"comments": comment}},
	)
	if err != nil {
		return false, translateError(err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *ImageRepository) RemoveComment(ctx context.Context, id, commentID, ownerID string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$pull": bson.M{"comments": bson.M{
			"commentId":      commentID,
			"commentOwnerId": ownerID,
		}}},
	)
	if err != nil {
		return false, translateError(err)
	}
	return res.ModifiedCount > 0, nil
}

func (r *ImageRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateError(err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ImageRepository) DeleteByAlbum(ctx context.Context, albumID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"albumId": albumID})
	if err != nil {
		return 0, translateError(err)
	}
	return res.DeletedCount, nil
}

func (r *ImageRepository) findOne(ctx context.Context, filter bson.M) (*models.Image, error) {
	var image models.Image
	if err := r.coll.FindOne(ctx, filter).Decode(&image); err != nil {
		return nil, translateError(err)
	}
	return &image, nil
}

func (r *ImageRepository) find(ctx context.Context, filter bson.M) ([]models.Image, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, translateError(err)
	}

	var images []models.Image
	if err := cursor.All(ctx, &images); err != nil {
		return nil, err
	}
	return images, nil
}
