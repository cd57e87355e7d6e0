package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/sefazor/ourphotos-albums/internal/repository"
)

const (
	usersCollection  = "users"
	albumsCollection = "albums"
	imagesCollection = "images"
)

type Store struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
}

// NewStore wraps db. Multi-document transactions need a replica set, so they are opt-in.
func NewStore(client *mongo.Client, db *mongo.Database, transactions bool) *Store {
	return &Store{
		client:       client,
		db:           db,
		transactions: transactions,
	}
}

func (s *Store) Users() repository.UserRepository {
	return &UserRepository{coll: s.db.Collection(usersCollection)}
}

func (s *Store) Albums() repository.AlbumRepository {
	return &AlbumRepository{coll: s.db.Collection(albumsCollection)}
}

func (s *Store) Images() repository.ImageRepository {
	return &ImageRepository{coll: s.db.Collection(imagesCollection)}
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if !s.transactions {
		return fn(ctx, s)
	}

	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc context.Context) (any, error) {
		return nil, fn(sc, s)
	})
	return err
}

// EnsureIndexes creates the unique indexes the repositories rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		albumsCollection: {
			{Keys: bson.D{{Key: "albumId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "ownerId", Value: 1}}},
			{Keys: bson.D{{Key: "sharedUsers", Value: 1}}},
		},
		imagesCollection: {
			{Keys: bson.D{{Key: "imageId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "albumId", Value: 1}, {Key: "createdAt", Value: 1}}},
		},
	}

	for name, idx := range indexes {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", name, err)
		}
	}
	return nil
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrAlreadyExists
	}
	return err
}
