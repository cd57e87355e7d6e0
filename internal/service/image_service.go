package service

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sefazor/ourphotos-albums/internal/metrics"
	"github.com/sefazor/ourphotos-albums/internal/models"
	"github.com/sefazor/ourphotos-albums/internal/repository"
	"github.com/sefazor/ourphotos-albums/pkg/storage"
)

const (
	DefaultMaxFiles    = 10
	DefaultMaxFileSize = 11 * 1024 * 1024
)

type ImageServiceConfig struct {
	MaxFiles       int
	MaxFileSize    int64
	AllowedTypes   []string
	FavoritePolicy FavoritePolicy
}

type ImageService struct {
	store   repository.Store
	blobs   storage.BlobStore
	cfg     ImageServiceConfig
	allowed map[string]bool
	log     *zap.Logger
}

func NewImageService(store repository.Store, blobs storage.BlobStore, cfg ImageServiceConfig, log *zap.Logger) *ImageService {
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = DefaultMaxFiles
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = DefaultMaxFileSize
	}
	if cfg.FavoritePolicy == "" {
		cfg.FavoritePolicy = FavoriteAny
	}

	allowed := make(map[string]bool, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[strings.ToLower(strings.TrimSpace(t))] = true
	}

	return &ImageService{
		store:   store,
		blobs:   blobs,
		cfg:     cfg,
		allowed: allowed,
		log:     log.With(zap.String("component", "image-service")),
	}
}

// Upload stores files sequentially. If any file fails, the blobs and records
// already created by this call are removed before the error is returned.
func (s *ImageService) Upload(ctx context.Context, caller models.Caller, req models.UploadImagesRequest, files []*multipart.FileHeader) (*models.UploadResponse, error) {
	if req.AlbumID == "" {
		return nil, newError(ErrValidation, "albumId is required")
	}

	contentTypes, err := s.checkFiles(files)
	if err != nil {
		return nil, err
	}

	tags, err := parseTags(req.Tags)
	if err != nil {
		return nil, err
	}

	album, err := s.store.Albums().GetByAlbumID(ctx, req.AlbumID)
	if err != nil {
		return nil, storeError(err, "album")
	}
	if album.OwnerID != caller.UserID && !album.SharedWith(caller.Email) {
		return nil, newError(ErrForbidden, "you cannot upload to this album")
	}

	var (
		saved      []models.Image
		storageIDs []string
	)
	rollback := func(cause error) {
		metrics.UploadFailures.Inc()
		cleanupCtx := context.WithoutCancel(ctx)
		for _, img := range saved {
			if err := s.store.Images().Delete(cleanupCtx, img.ID); err != nil {
				s.log.Error("rollback: delete image record", zap.String("id", img.ID), zap.Error(err))
			}
		}
		if len(storageIDs) > 0 {
			if err := s.blobs.DeleteMany(cleanupCtx, storageIDs); err != nil {
				s.log.Error("rollback: delete blobs", zap.Strings("storageIds", storageIDs), zap.Error(err))
			}
		}
		s.log.Warn("upload rolled back",
			zap.String("albumId", album.AlbumID),
			zap.Int("saved", len(saved)),
			zap.Error(cause),
		)
	}

	for i, fh := range files {
		imageID := uuid.NewString()
		key := fmt.Sprintf("albums/%s/%s%s", album.AlbumID, imageID, strings.ToLower(filepath.Ext(fh.Filename)))

		obj, err := s.putBlob(ctx, fh, key, contentTypes[i])
		if err != nil {
			rollback(err)
			return nil, wrapError(ErrUpstream, err, "failed to upload %s", fh.Filename)
		}
		storageIDs = append(storageIDs, obj.ID)

		name := req.Name
		if name == "" {
			name = fh.Filename
		}

		img := models.Image{
			ID:         uuid.NewString(),
			ImageID:    imageID,
			URL:        obj.URL,
			StorageID:  obj.ID,
			OwnerID:    caller.UserID,
			AlbumID:    album.AlbumID,
			Name:       name,
			Tags:       append([]string{}, tags...),
			Person:     req.Person,
			IsFavorite: false,
			Comments:   []models.Comment{},
			Size:       fh.Size,
			MimeType:   contentTypes[i],
		}
		if err := s.store.Images().Create(ctx, &img); err != nil {
			rollback(err)
			return nil, wrapError(ErrPersistence, err, "failed to save %s", fh.Filename)
		}
		saved = append(saved, img)
	}

	metrics.ImagesUploaded.Add(float64(len(saved)))
	s.log.Info("images uploaded", zap.String("albumId", album.AlbumID), zap.Int("count", len(saved)))

	return &models.UploadResponse{
		Images: saved,
		Tags:   saved[0].Tags,
	}, nil
}

func (s *ImageService) putBlob(ctx context.Context, fh *multipart.FileHeader, key, contentType string) (*storage.Object, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return s.blobs.Upload(ctx, key, src, fh.Size, contentType)
}

// checkFiles validates the whole batch before anything is uploaded and returns each file's media type.
func (s *ImageService) checkFiles(files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, newError(ErrValidation, "at least one image is required")
	}
	if len(files) > s.cfg.MaxFiles {
		return nil, newError(ErrValidation, "at most %d images can be uploaded at once", s.cfg.MaxFiles)
	}

	types := make([]string, len(files))
	for i, fh := range files {
		if fh.Size > s.cfg.MaxFileSize {
			return nil, newError(ErrValidation, "%s exceeds the %d byte limit", fh.Filename, s.cfg.MaxFileSize)
		}

		mediaType, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
		if err != nil || !s.allowed[strings.ToLower(mediaType)] {
			return nil, newError(ErrValidation, "%s is not a supported image type", fh.Filename)
		}
		types[i] = strings.ToLower(mediaType)
	}
	return types, nil
}

// parseTags decodes the batch's JSON tag array. An empty string means no tags.
func parseTags(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}, nil
	}

	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, newError(ErrValidation, "tags must be a JSON array of strings")
	}
	return dedupe(tags), nil
}

func (s *ImageService) SetFavoriteByImageID(ctx context.Context, caller models.Caller, imageID string, favorite bool) (*models.Image, error) {
	img, err := s.getByImageID(ctx, imageID)
	if err != nil {
		return nil, err
	}
	return s.setFavorite(ctx, caller, img, favorite)
}

func (s *ImageService) SetFavoriteByID(ctx context.Context, caller models.Caller, id string, favorite bool) (*models.Image, error) {
	if id == "" {
		return nil, newError(ErrValidation, "id is required")
	}
	img, err := s.store.Images().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "image")
	}
	return s.setFavorite(ctx, caller, img, favorite)
}

func (s *ImageService) setFavorite(ctx context.Context, caller models.Caller, img *models.Image, favorite bool) (*models.Image, error) {
	if err := s.authorizeFavorite(ctx, caller, img); err != nil {
		return nil, err
	}

	if err := s.store.Images().SetFavorite(ctx, img.ID, favorite); err != nil {
		return nil, storeError(err, "image")
	}
	img.IsFavorite = favorite
	return img, nil
}

func (s *ImageService) authorizeFavorite(ctx context.Context, caller models.Caller, img *models.Image) error {
	switch s.cfg.FavoritePolicy {
	case FavoriteOwner:
		return AssertOwner(img.OwnerID, caller.UserID)
	case FavoriteCollaborators:
		if img.OwnerID == caller.UserID {
			return nil
		}
		album, err := s.store.Albums().GetByAlbumID(ctx, img.AlbumID)
		if err != nil {
			return storeError(err, "album")
		}
		if album.OwnerID == caller.UserID || album.SharedWith(caller.Email) {
			return nil
		}
		return newError(ErrForbidden, "only album collaborators can change favorites")
	default:
		return nil
	}
}

// AddComment is idempotent per comment id.
func (s *ImageService) AddComment(ctx context.Context, caller models.Caller, req models.AddCommentRequest) (*models.Image, error) {
	if strings.TrimSpace(req.Comment) == "" {
		return nil, newError(ErrValidation, "comment is required")
	}

	img, err := s.getByImageID(ctx, req.ImageID)
	if err != nil {
		return nil, err
	}

	commentID := req.CommentID
	if commentID == "" {
		commentID = uuid.NewString()
	}

	comment := &models.Comment{
		CommentID: commentID,
		Text:      req.Comment,
		OwnerID:   caller.UserID,
		CreatedAt: time.Now().UTC(),
	}
	added, err := s.store.Images().AddComment(ctx, img.ID, comment)
	if err != nil {
		return nil, storeError(err, "image")
	}
	if !added {
		s.log.Debug("comment already present", zap.String("imageId", img.ImageID), zap.String("commentId", commentID))
	}

	return s.reload(ctx, img.ID)
}

func (s *ImageService) RemoveComment(ctx context.Context, caller models.Caller, req models.RemoveCommentRequest) (*models.Image, error) {
	img, err := s.getByImageID(ctx, req.ImageID)
	if err != nil {
		return nil, err
	}

	comment := img.FindComment(req.CommentID)
	if comment == nil {
		return nil, newError(ErrNotFound, "comment not found")
	}
	if err := AssertOwner(comment.OwnerID, caller.UserID); err != nil {
		return nil, newError(ErrForbidden, "only the author can remove this comment")
	}

	if _, err := s.store.Images().RemoveComment(ctx, img.ID, req.CommentID, caller.UserID); err != nil {
		return nil, storeError(err, "image")
	}

	return s.reload(ctx, img.ID)
}

// Delete removes the remote blob before the record.
func (s *ImageService) Delete(ctx context.Context, caller models.Caller, imageID string) error {
	img, err := s.getByImageID(ctx, imageID)
	if err != nil {
		return err
	}

	if err := AssertOwner(img.OwnerID, caller.UserID); err != nil {
		return err
	}

	if img.StorageID != "" {
		if err := s.blobs.Delete(ctx, img.StorageID); err != nil {
			metrics.BlobDeletes.WithLabelValues("error").Inc()
			return wrapError(ErrUpstream, err, "failed to delete image from storage")
		}
		metrics.BlobDeletes.WithLabelValues("ok").Inc()
	}

	if err := s.store.Images().Delete(ctx, img.ID); err != nil {
		return storeError(err, "image")
	}
	return nil
}

// ListByAlbum returns the album's images and the union of their tags in first-seen order.
func (s *ImageService) ListByAlbum(ctx context.Context, albumID string) (*models.ImageListResponse, error) {
	if albumID == "" {
		return nil, newError(ErrValidation, "albumId is required")
	}

	images, err := s.store.Images().ListByAlbum(ctx, albumID)
	if err != nil {
		return nil, storeError(err, "images")
	}

	var all []string
	for _, img := range images {
		all = append(all, img.Tags...)
	}

	return &models.ImageListResponse{
		Images: nonNil(images),
		Tags:   dedupe(all),
	}, nil
}

func (s *ImageService) ListFavorites(ctx context.Context, albumID string) ([]models.Image, error) {
	if albumID == "" {
		return nil, newError(ErrValidation, "albumId is required")
	}

	images, err := s.store.Images().ListFavorites(ctx, albumID)
	if err != nil {
		return nil, storeError(err, "images")
	}
	return nonNil(images), nil
}

func (s *ImageService) ListByTag(ctx context.Context, albumID, tag string) ([]models.Image, error) {
	if albumID == "" {
		return nil, newError(ErrValidation, "albumId is required")
	}
	if strings.TrimSpace(tag) == "" {
		return nil, newError(ErrValidation, "tagName is required")
	}

	images, err := s.store.Images().ListByTag(ctx, albumID, tag)
	if err != nil {
		return nil, storeError(err, "images")
	}
	return nonNil(images), nil
}

func (s *ImageService) getByImageID(ctx context.Context, imageID string) (*models.Image, error) {
	if imageID == "" {
		return nil, newError(ErrValidation, "imageId is required")
	}
	img, err := s.store.Images().GetByImageID(ctx, imageID)
	if err != nil {
		return nil, storeError(err, "image")
	}
	return img, nil
}

func (s *ImageService) reload(ctx context.Context, id string) (*models.Image, error) {
	img, err := s.store.Images().GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "image")
	}
	return img, nil
}

func nonNil(images []models.Image) []models.Image {
	if images == nil {
		return []models.Image{}
	}
	return images
}
