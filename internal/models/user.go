package models

import (
	"time"
)

type User struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	ProviderID string    `json:"providerId" gorm:"index" bson:"providerId"`
	Email      string    `json:"email" gorm:"unique;not null" bson:"email"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

type PeerResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Caller is the authenticated principal of a request.
type Caller struct {
	UserID string
	Email  string
}
