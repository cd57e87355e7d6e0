package models

import (
	"time"
)

type Album struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	AlbumID     string    `json:"albumId" gorm:"uniqueIndex;not null" bson:"albumId"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null" bson:"name"`
	Description string    `json:"description" gorm:"not null" bson:"description"`
	OwnerID     string    `json:"ownerId" gorm:"index;not null" bson:"ownerId"`
	SharedUsers []string  `json:"sharedUsers" gorm:"type:jsonb;serializer:json" bson:"sharedUsers"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// SharedWith reports whether email is in the album's shared set.
func (a *Album) SharedWith(email string) bool {
	for _, u := range a.SharedUsers {
		if u == email {
			return true
		}
	}
	return false
}

type CreateAlbumRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	OwnerID     string `json:"ownerId" validate:"required"`
}

// Nil fields are left untouched, provided fields replace the stored value.
type UpdateAlbumRequest struct {
	Description *string   `json:"description"`
	SharedUsers *[]string `json:"sharedUsers"`
}

type AlbumQRCode struct {
	AlbumID string
	URL     string
	PNG     []byte
}
