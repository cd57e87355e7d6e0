package models

import (
	"time"
)

type Image struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	ImageID    string    `json:"imageId" gorm:"uniqueIndex;not null" bson:"imageId"`
	URL        string    `json:"imgURL" gorm:"not null" bson:"imgURL"`
	StorageID  string    `json:"publicId" gorm:"not null" bson:"publicId"`
	OwnerID    string    `json:"imgOwnerId" gorm:"index;not null" bson:"imgOwnerId"`
	AlbumID    string    `json:"albumId" gorm:"index;not null" bson:"albumId"`
	Name       string    `json:"name" bson:"name"`
	Tags       []string  `json:"tags" gorm:"type:jsonb;serializer:json" bson:"tags"`
	Person     string    `json:"person" bson:"person"`
	IsFavorite bool      `json:"isFavorite" gorm:"default:false" bson:"isFavorite"`
	Comments   []Comment `json:"comments" gorm:"foreignKey:ImageRef;references:ID;constraint:OnDelete:CASCADE" bson:"comments"`
	Size       int64     `json:"size" bson:"size"`
	MimeType   string    `json:"mimeType" bson:"mimeType"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

type Comment struct {
	ID        uint      `json:"-" gorm:"primaryKey" bson:"-"`
	ImageRef  string    `json:"-" gorm:"type:varchar(36);uniqueIndex:idx_image_comment;not null" bson:"-"`
	CommentID string    `json:"commentId" gorm:"uniqueIndex:idx_image_comment;not null" bson:"commentId"`
	Text      string    `json:"comment" bson:"comment"`
	OwnerID   string    `json:"commentOwnerId" bson:"commentOwnerId"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// HasComment reports whether a comment with commentID is already attached.
func (i *Image) HasComment(commentID string) bool {
	return i.FindComment(commentID) != nil
}

func (i *Image) FindComment(commentID string) *Comment {
	for idx := range i.Comments {
		if i.Comments[idx].CommentID == commentID {
			return &i.Comments[idx]
		}
	}
	return nil
}

type UploadImagesRequest struct {
	AlbumID string `form:"albumId" validate:"required"`
	Name    string `form:"name"`
	Tags    string `form:"tags"` // JSON array of strings
	Person  string `form:"person"`
}

type FavoriteRequest struct {
	IsFavorite *bool `json:"isFavorite" validate:"required"`
}

type AddCommentRequest struct {
	ImageID   string `json:"imageId" validate:"required"`
	Comment   string `json:"comment" validate:"required"`
	CommentID string `json:"commentId"`
}

type RemoveCommentRequest struct {
	ImageID   string `json:"imageId" validate:"required"`
	CommentID string `json:"commentId" validate:"required"`
}

type ImageListResponse struct {
	Images []Image  `json:"images"`
	Tags   []string `json:"tags"`
}

type UploadResponse struct {
	Images []Image  `json:"images"`
	Tags   []string `json:"tags"`
}
