package mongodb

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sefazor/ourphotos-albums/internal/models"
	"github.com/sefazor/ourphotos-albums/internal/repository"
	"github.com/sefazor/ourphotos-albums/pkg/database"
)

// newTestStore needs a running server; set OURPHOTOS_TEST_MONGO_URI to run these tests.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("OURPHOTOS_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("OURPHOTOS_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	name := fmt.Sprintf("ourphotos_test_%d", time.Now().UnixNano())
	client, db, err := database.NewMongo(ctx, uri, name)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	store := NewStore(client, db, false)
	require.NoError(t, store.EnsureIndexes(ctx))
	return store
}

func TestImageRepository_Comments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	images := store.Images()

	img := &models.Image{ID: "img-1", ImageID: "pub-img-1", AlbumID: "a1", OwnerID: "u1", StorageID: "k1", URL: "u"}
	require.NoError(t, images.Create(ctx, img))

	comment := &models.Comment{CommentID: "c1", Text: "nice", OwnerID: "u2"}
	added, err := images.AddComment(ctx, img.ID, comment)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = images.AddComment(ctx, img.ID, comment)
	require.NoError(t, err)
	assert.False(t, added)

	got, err := images.GetByID(ctx, img.ID)
	require.NoError(t, err)
	require.Len(t, got.Comments, 1)

	// wrong author leaves the list alone
	removed, err := images.RemoveComment(ctx, img.ID, "c1", "u1")
	require.NoError(t, err)
	assert.False(t, removed)
	got, err = images.GetByID(ctx, img.ID)
	require.NoError(t, err)
	assert.Len(t, got.Comments, 1)

	removed, err = images.RemoveComment(ctx, img.ID, "c1", "u2")
	require.NoError(t, err)
	assert.True(t, removed)
	got, err = images.GetByID(ctx, img.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Comments)
}

func TestStore_AlbumCascadeAndUniqueness(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	album := &models.Album{ID: "int-1", AlbumID: "pub-1", Name: "Trip", Description: "d", OwnerID: "u1", SharedUsers: []string{"bo@example.com"}}
	require.NoError(t, store.Albums().Create(ctx, album))

	dup := &models.Album{ID: "int-2", AlbumID: "pub-2", Name: "Trip", Description: "d", OwnerID: "u1"}
	assert.ErrorIs(t, store.Albums().Create(ctx, dup), repository.ErrAlreadyExists)

	shared, err := store.Albums().ListSharedWith(ctx, "bo@example.com")
	require.NoError(t, err)
	require.Len(t, shared, 1)

	for i := 0; i < 2; i++ {
		require.NoError(t, store.Images().Create(ctx, &models.Image{
			ID: fmt.Sprintf("img-%d", i), ImageID: fmt.Sprintf("pub-img-%d", i), AlbumID: album.AlbumID, OwnerID: "u1",
		}))
	}

	err = store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		n, err := tx.Images().DeleteByAlbum(ctx, album.AlbumID)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(2), n)
		return tx.Albums().Delete(ctx, album.AlbumID)
	})
	require.NoError(t, err)

	_, err = store.Albums().GetByAlbumID(ctx, album.AlbumID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	left, err := store.Images().ListByAlbum(ctx, album.AlbumID)
	require.NoError(t, err)
	assert.Empty(t, left)
}
