package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sefazor/ourphotos-albums/internal/models"
	"github.com/sefazor/ourphotos-albums/internal/repository"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Discard,
	})
	require.NoError(t, err)
	return db, mock
}

var albumColumns = []string{"id", "album_id", "name", "description", "owner_id", "shared_users", "created_at", "updated_at"}

func TestAlbumRepository_GetByAlbumID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlbumRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "albums" WHERE album_id = \$1`).
		WillReturnRows(sqlmock.NewRows(albumColumns).
			AddRow("int-1", "pub-1", "Trip", "Summer", "u1", `["bo@example.com"]`, now, now))

	album, err := repo.GetByAlbumID(context.Background(), "pub-1")
	require.NoError(t, err)
	assert.Equal(t, "int-1", album.ID)
	assert.Equal(t, []string{"bo@example.com"}, album.SharedUsers)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAlbumRepository_GetByAlbumID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlbumRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "albums" WHERE album_id = \$1`).
		WillReturnRows(sqlmock.NewRows(albumColumns))

	_, err := repo.GetByAlbumID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAlbumRepository_ListSharedWith(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlbumRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "albums" WHERE shared_users @> \$1 ORDER BY created_at DESC`).
		WithArgs(`["bo@example.com"]`).
		WillReturnRows(sqlmock.NewRows(albumColumns).
			AddRow("int-1", "pub-1", "Trip", "Summer", "u1", `["bo@example.com"]`, now, now))

	albums, err := repo.ListSharedWith(context.Background(), "bo@example.com")
	require.NoError(t, err)
	require.Len(t, albums, 1)
	assert.Equal(t, "pub-1", albums[0].AlbumID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAlbumRepository_Delete_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAlbumRepository(db)

	mock.ExpectExec(`DELETE FROM "albums" WHERE album_id = \$1`).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestImageRepository_SetFavorite_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImageRepository(db)

	mock.ExpectExec(`UPDATE "images" SET "is_favorite"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetFavorite(context.Background(), "missing", true)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestImageRepository_RemoveComment_FiltersOnOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImageRepository(db)

	mock.ExpectExec(`DELETE FROM "comments" WHERE image_ref = \$1 AND comment_id = \$2 AND owner_id = \$3`).
		WithArgs("img-1", "c1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.RemoveComment(context.Background(), "img-1", "c1", "u2")
	require.NoError(t, err)
	assert.False(t, removed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestImageRepository_AddComment_DuplicateIsNoop(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImageRepository(db)

	mock.ExpectQuery(`INSERT INTO "comments" .*ON CONFLICT \("image_ref","comment_id"\) DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	added, err := repo.AddComment(context.Background(), "img-1", &models.Comment{CommentID: "c1", Text: "nice", OwnerID: "u2"})
	require.NoError(t, err)
	assert.False(t, added)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestImageRepository_AddComment_Inserted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImageRepository(db)

	mock.ExpectQuery(`INSERT INTO "comments" .*ON CONFLICT \("image_ref","comment_id"\) DO NOTHING`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	comment := &models.Comment{CommentID: "c1", Text: "nice", OwnerID: "u2"}
	added, err := repo.AddComment(context.Background(), "img-1", comment)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, "img-1", comment.ImageRef)
	require.NoError(t, mock.ExpectationsWereMet())
}
