package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sefazor/ourphotos-albums/internal/models"
	"github.com/sefazor/ourphotos-albums/internal/repository/memory"
	"github.com/sefazor/ourphotos-albums/pkg/storage"
)

var (
	owner    = models.Caller{UserID: "u-owner", Email: "owner@example.com"}
	friend   = models.Caller{UserID: "u-friend", Email: "friend@example.com"}
	stranger = models.Caller{UserID: "u-stranger", Email: "stranger@example.com"}
)

type fakeBlobs struct {
	mu          sync.Mutex
	uploaded    []string
	deleted     []string
	deleteCalls [][]string
	uploadCalls int
	failUpload  int // 1-based upload call that fails, 0 for never
	failDelete  error
}

func (f *fakeBlobs) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (*storage.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.uploadCalls++
	if f.uploadCalls == f.failUpload {
		return nil, errors.New("blob host unavailable")
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return nil, err
	}
	f.uploaded = append(f.uploaded, key)
	return &storage.Object{ID: key, URL: "https://cdn.test/" + key}, nil
}

func (f *fakeBlobs) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failDelete != nil {
		return f.failDelete
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBlobs) DeleteMany(_ context.Context, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteCalls = append(f.deleteCalls, append([]string(nil), ids...))
	if f.failDelete != nil {
		return f.failDelete
	}
	f.deleted = append(f.deleted, ids...)
	return nil
}

type testFile struct {
	name        string
	contentType string
	data        []byte
}

func jpeg(name string) testFile {
	return testFile{name: name, contentType: "image/jpeg", data: []byte("\xff\xd8\xff" + name)}
}

// fileHeaders builds real multipart headers by round-tripping a form body.
func fileHeaders(t *testing.T, files ...testFile) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="images"; filename="%s"`, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["images"]
}

type fixture struct {
	store  *memory.Store
	blobs  *fakeBlobs
	albums *AlbumService
	images *ImageService
}

func newFixture(t *testing.T, policy FavoritePolicy) *fixture {
	t.Helper()

	store := memory.NewStore()
	blobs := &fakeBlobs{}
	log := zap.NewNop()

	return &fixture{
		store:  store,
		blobs:  blobs,
		albums: NewAlbumService(store, blobs, nil, log),
		images: NewImageService(store, blobs, ImageServiceConfig{
			AllowedTypes:   []string{"image/jpeg", "image/png"},
			FavoritePolicy: policy,
		}, log),
	}
}

func (f *fixture) createAlbum(t *testing.T, name string, shared ...string) *models.Album {
	t.Helper()
	ctx := context.Background()

	album, err := f.albums.Create(ctx, owner, models.CreateAlbumRequest{
		Name:        name,
		Description: "desc",
		OwnerID:     owner.UserID,
	})
	require.NoError(t, err)

	if len(shared) > 0 {
		album, err = f.albums.UpdateOrShare(ctx, owner, album.AlbumID, models.UpdateAlbumRequest{SharedUsers: &shared})
		require.NoError(t, err)
	}
	return album
}

func (f *fixture) upload(t *testing.T, caller models.Caller, albumID, tags string, files ...testFile) *models.UploadResponse {
	t.Helper()
	resp, err := f.images.Upload(context.Background(), caller,
		models.UploadImagesRequest{AlbumID: albumID, Tags: tags},
		fileHeaders(t, files...),
	)
	require.NoError(t, err)
	return resp
}
