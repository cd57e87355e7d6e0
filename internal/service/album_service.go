package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sefazor/ourphotos-albums/internal/metrics"
	"github.com/sefazor/ourphotos-albums/internal/models"
	"github.com/sefazor/ourphotos-albums/internal/repository"
	"github.com/sefazor/ourphotos-albums/pkg/qrcode"
	"github.com/sefazor/ourphotos-albums/pkg/storage"
)

type AlbumService struct {
	store repository.Store
	blobs storage.BlobStore
	qr    *qrcode.QRService
	log   *zap.Logger
}

func NewAlbumService(store repository.Store, blobs storage.BlobStore, qr *qrcode.QRService, log *zap.Logger) *AlbumService {
	return &AlbumService{
		store: store,
		blobs: blobs,
		qr:    qr,
		log:   log.With(zap.String("component", "album-service")),
	}
}

func (s *AlbumService) Create(ctx context.Context, caller models.Caller, req models.CreateAlbumRequest) (*models.Album, error) {
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	if name == "" || description == "" || req.OwnerID == "" {
		return nil, newError(ErrValidation, "name, description and ownerId are required")
	}

	if err := AssertOwner(req.OwnerID, caller.UserID); err != nil {
		return nil, newError(ErrForbidden, "albums can only be created for yourself")
	}

	album := &models.Album{
		ID:          uuid.NewString(),
		AlbumID:     uuid.NewString(),
		Name:        name,
		Description: description,
		OwnerID:     caller.UserID,
		SharedUsers: []string{},
	}

	if err := s.store.Albums().Create(ctx, album); err != nil {
		return nil, storeError(err, "album")
	}

	metrics.AlbumsCreated.Inc()
	s.log.Info("album created", zap.String("albumId", album.AlbumID), zap.String("ownerId", album.OwnerID))
	return album, nil
}

// UpdateOrShare replaces the provided fields wholesale. Shared emails are de-duplicated.
func (s *AlbumService) UpdateOrShare(ctx context.Context, caller models.Caller, albumID string, req models.UpdateAlbumRequest) (*models.Album, error) {
	album, err := s.getAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}

	if err := AssertOwner(album.OwnerID, caller.UserID); err != nil {
		return nil, err
	}

	if req.Description != nil {
		album.Description = *req.Description
	}
	if req.SharedUsers != nil {
		album.SharedUsers = dedupe(*req.SharedUsers)
	}

	if err := s.store.Albums().Update(ctx, album); err != nil {
		return nil, storeError(err, "album")
	}

	return album, nil
}

// Delete removes the album's blobs in one batch, then its image records and the album in one transaction.
// When the blob store fails nothing is deleted from the database, so the call can be retried.
func (s *AlbumService) Delete(ctx context.Context, caller models.Caller, albumID string) error {
	album, err := s.getAlbum(ctx, albumID)
	if err != nil {
		return err
	}

	if err := AssertOwner(album.OwnerID, caller.UserID); err != nil {
		return err
	}

	images, err := s.store.Images().ListByAlbum(ctx, album.AlbumID)
	if err != nil {
		return storeError(err, "images")
	}

	storageIDs := make([]string, 0, len(images))
	for _, img := range images {
		if img.StorageID != "" {
			storageIDs = append(storageIDs, img.StorageID)
		}
	}

	if len(storageIDs) > 0 {
		if err := s.blobs.DeleteMany(ctx, storageIDs); err != nil {
			metrics.BlobDeletes.WithLabelValues("error").Add(float64(len(storageIDs)))
			s.log.Error("blob delete failed", zap.String("albumId", album.AlbumID), zap.Error(err))
			return wrapError(ErrUpstream, err, "failed to delete album images from storage")
		}
		metrics.BlobDeletes.WithLabelValues("ok").Add(float64(len(storageIDs)))
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Store) error {
		if _, err := tx.Images().DeleteByAlbum(ctx, album.AlbumID); err != nil {
			return err
		}
		return tx.Albums().Delete(ctx, album.AlbumID)
	})
	if err != nil {
		return storeError(err, "album")
	}

	metrics.AlbumsDeleted.Inc()
	s.log.Info("album deleted",
		zap.String("albumId", album.AlbumID),
		zap.Int("images", len(images)),
	)
	return nil
}

func (s *AlbumService) ListOwned(ctx context.Context, caller models.Caller) ([]models.Album, error) {
	albums, err := s.store.Albums().ListByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, storeError(err, "albums")
	}
	return albums, nil
}

func (s *AlbumService) ListShared(ctx context.Context, caller models.Caller) ([]models.Album, error) {
	albums, err := s.store.Albums().ListSharedWith(ctx, caller.Email)
	if err != nil {
		return nil, storeError(err, "albums")
	}
	return albums, nil
}

func (s *AlbumService) GetDetails(ctx context.Context, albumID string) (*models.Album, error) {
	return s.getAlbum(ctx, albumID)
}

func (s *AlbumService) DetailsQRCode(ctx context.Context, albumID string, size int) (*models.AlbumQRCode, error) {
	album, err := s.getAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}

	png, err := s.qr.GenerateQRCode(album.AlbumID, size)
	if err != nil {
		return nil, wrapError(ErrPersistence, err, "failed to render QR code")
	}

	return &models.AlbumQRCode{
		AlbumID: album.AlbumID,
		URL:     s.qr.AlbumURL(album.AlbumID),
		PNG:     png,
	}, nil
}

func (s *AlbumService) getAlbum(ctx context.Context, albumID string) (*models.Album, error) {
	if albumID == "" {
		return nil, newError(ErrValidation, "albumId is required")
	}
	album, err := s.store.Albums().GetByAlbumID(ctx, albumID)
	if err != nil {
		return nil, storeError(err, "album")
	}
	return album, nil
}

// dedupe keeps the first occurrence of each non-empty value, in order.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
