package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sefazor/ourphotos-albums/internal/models"
	"github.com/sefazor/ourphotos-albums/internal/repository"
)

// Store is a process-local backend used for development and tests.
// Records are copied in and out so callers never share slices with the store.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	seq  int64

	users  map[string]models.User  // by email
	albums map[string]models.Album // by public album id
	images map[string]models.Image // by internal id
	order  map[string]int64        // insertion order of albums and images
}

func NewStore() *Store {
	return &Store{
		users:  make(map[string]models.User),
		albums: make(map[string]models.Album),
		images: make(map[string]models.Image),
		order:  make(map[string]int64),
	}
}

func (s *Store) Users() repository.UserRepository   { return &userRepository{s} }
func (s *Store) Albums() repository.AlbumRepository { return &albumRepository{s} }
func (s *Store) Images() repository.ImageRepository { return &imageRepository{s} }

// WithTx serializes transactions and restores a snapshot when fn fails.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snap := s.snapshot()
	s.mu.RUnlock()

	if err := fn(ctx, s); err != nil {
		s.mu.Lock()
		s.users, s.albums, s.images, s.order = snap.users, snap.albums, snap.images, snap.order
		s.mu.Unlock()
		return err
	}
	return nil
}

type state struct {
	users  map[string]models.User
	albums map[string]models.Album
	images map[string]models.Image
	order  map[string]int64
}

func (s *Store) snapshot() state {
	st := state{
		users:  make(map[string]models.User, len(s.users)),
		albums: make(map[string]models.Album, len(s.albums)),
		images: make(map[string]models.Image, len(s.images)),
		order:  make(map[string]int64, len(s.order)),
	}
	for k, v := range s.users {
		st.users[k] = v
	}
	for k, v := range s.albums {
		st.albums[k] = cloneAlbum(v)
	}
	for k, v := range s.images {
		st.images[k] = cloneImage(v)
	}
	for k, v := range s.order {
		st.order[k] = v
	}
	return st
}

func (s *Store) next(key string) {
	s.seq++
	s.order[key] = s.seq
}

func cloneAlbum(a models.Album) models.Album {
	if a.SharedUsers != nil {
		a.SharedUsers = append([]string(nil), a.SharedUsers...)
	}
	return a
}

func cloneImage(i models.Image) models.Image {
	if i.Tags != nil {
		i.Tags = append([]string(nil), i.Tags...)
	}
	if i.Comments != nil {
		i.Comments = append([]models.Comment(nil), i.Comments...)
	}
	return i
}

type userRepository struct{ s *Store }

func (r *userRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.Email]; ok {
		return repository.ErrAlreadyExists
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	r.s.users[user.Email] = *user
	return nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepository) ListExcept(_ context.Context, email string) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]models.User, 0, len(r.s.users))
	for e, u := range r.s.users {
		if e != email {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

type albumRepository struct{ s *Store }

func (r *albumRepository) Create(_ context.Context, album *models.Album) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.albums[album.AlbumID]; ok {
		return repository.ErrAlreadyExists
	}
	for _, a := range r.s.albums {
		if a.Name == album.Name || a.ID == album.ID {
			return repository.ErrAlreadyExists
		}
	}

	now := time.Now().UTC()
	album.CreatedAt, album.UpdatedAt = now, now
	r.s.albums[album.AlbumID] = cloneAlbum(*album)
	r.s.next(album.AlbumID)
	return nil
}

func (r *albumRepository) GetByAlbumID(_ context.Context, albumID string) (*models.Album, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	album, ok := r.s.albums[albumID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	album = cloneAlbum(album)
	return &album, nil
}

func (r *albumRepository) Update(_ context.Context, album *models.Album) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.albums[album.AlbumID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Description = album.Description
	stored.SharedUsers = append([]string(nil), album.SharedUsers...)
	stored.UpdatedAt = time.Now().UTC()
	r.s.albums[album.AlbumID] = stored
	album.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *albumRepository) Delete(_ context.Context, albumID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.albums[albumID]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.albums, albumID)
	delete(r.s.order, albumID)
	return nil
}

func (r *albumRepository) ListByOwner(_ context.Context, ownerID string) ([]models.Album, error) {
	return r.list(func(a models.Album) bool { return a.OwnerID == ownerID }), nil
}

func (r *albumRepository) ListSharedWith(_ context.Context, email string) ([]models.Album, error) {
	return r.list(func(a models.Album) bool { return a.SharedWith(email) }), nil
}

// list returns matches newest first.
func (r *albumRepository) list(match func(models.Album) bool) []models.Album {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	albums := []models.Album{}
	for _, a := range r.s.albums {
		if match(a) {
			albums = append(albums, cloneAlbum(a))
		}
	}
	sort.Slice(albums, func(i, j int) bool {
		return r.s.order[albums[i].AlbumID] > r.s.order[albums[j].AlbumID]
	})
	return albums
}

type imageRepository struct{ s *Store }

func (r *imageRepository) Create(_ context.Context, image *models.Image) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.images[image.ID]; ok {
		return repository.ErrAlreadyExists
	}
	for _, i := range r.s.images {
		if i.ImageID == image.ImageID {
			return repository.ErrAlreadyExists
		}
	}

	now := time.Now().UTC()
	image.CreatedAt, image.UpdatedAt = now, now
	r.s.images[image.ID] = cloneImage(*image)
	r.s.next(image.ID)
	return nil
}

func (r *imageRepository) GetByID(_ context.Context, id string) (*models.Image, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	image, ok := r.s.images[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	image = cloneImage(image)
	return &image, nil
}

func (r *imageRepository) GetByImageID(_ context.Context, imageID string) (*models.Image, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, image := range r.s.images {
		if image.ImageID == imageID {
			image = cloneImage(image)
			return &image, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *imageRepository) ListByAlbum(_ context.Context, albumID string) ([]models.Image, error) {
	return r.list(func(i models.Image) bool { return i.AlbumID == albumID }), nil
}

func (r *imageRepository) ListFavorites(_ context.Context, albumID string) ([]models.Image, error) {
	return r.list(func(i models.Image) bool { return i.AlbumID == albumID && i.IsFavorite }), nil
}

func (r *imageRepository) ListByTag(_ context.Context, albumID, tag string) ([]models.Image, error) {
	return r.list(func(i models.Image) bool {
		if i.AlbumID != albumID {
			return false
		}
		for _, t := range i.Tags {
			if t == tag {
				return true
			}
		}
		return false
	}), nil
}

// list returns matches in upload order.
func (r *imageRepository) list(match func(models.Image) bool) []models.Image {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	images := []models.Image{}
	for _, i := range r.s.images {
		if match(i) {
			images = append(images, cloneImage(i))
		}
	}
	sort.Slice(images, func(a, b int) bool {
		return r.s.order[images[a].ID] < r.s.order[images[b].ID]
	})
	return images
}

func (r *imageRepository) SetFavorite(_ context.Context, id string, favorite bool) error {
	return r.update(id, func(i *models.Image) bool {
		i.IsFavorite = favorite
		return true
	})
}

func (r *imageRepository) AddComment(_ context.Context, id string, comment *models.Comment) (bool, error) {
	added := false
	err := r.update(id, func(i *models.Image) bool {
		if i.HasComment(comment.CommentID) {
			return false
		}
		if comment.CreatedAt.IsZero() {
			comment.CreatedAt = time.Now().UTC()
		}
		i.Comments = append(i.Comments, *comment)
		added = true
		return true
	})
	return added, err
}

func (r *imageRepository) RemoveComment(_ context.Context, id, commentID, ownerID string) (bool, error) {
	removed := false
	err := r.update(id, func(i *models.Image) bool {
		kept := i.Comments[:0]
		for _, c := range i.Comments {
			if c.CommentID == commentID && c.OwnerID == ownerID {
				removed = true
				continue
			}
			kept = append(kept, c)
		}
		i.Comments = kept
		return removed
	})
	return removed, err
}

func (r *imageRepository) update(id string, fn func(*models.Image) bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	image, ok := r.s.images[id]
	if !ok {
		return repository.ErrNotFound
	}
	image = cloneImage(image)
	if fn(&image) {
		image.UpdatedAt = time.Now().UTC()
		r.s.images[id] = image
	}
	return nil
}

func (r *imageRepository) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.images[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.images, id)
	delete(r.s.order, id)
	return nil
}

func (r *imageRepository) DeleteByAlbum(_ context.Context, albumID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, i := range r.s.images {
		if i.AlbumID == albumID {
			delete(r.s.images, id)
			delete(r.s.order, id)
			n++
		}
	}
	return n, nil
}
