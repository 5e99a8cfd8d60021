package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is the single renewable session for a user. Only the SHA-256 hex of
// the refresh token is stored; a missing Session means the session is revoked.
type Session struct {
	RefreshTokenHash string    `bson:"refresh_token_hash" json:"-"`
	IssuedAt         time.Time `bson:"issued_at" json:"-"`
}

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Username string `bson:"username" json:"username"`
	Email    string `bson:"email" json:"email"`
	FullName string `bson:"full_name" json:"full_name"`
	Password string `bson:"password" json:"-"` // argon2id hash, never returned in JSON

	// Cloudinary-hosted media. Avatar is mandatory, cover image is optional.
	Avatar       string `bson:"avatar" json:"avatar"`
	AvatarID     string `bson:"avatar_id,omitempty" json:"-"`
	CoverImage   string `bson:"cover_image,omitempty" json:"cover_image,omitempty"`
	CoverImageID string `bson:"cover_image_id,omitempty" json:"-"`

	Session *Session `bson:"session,omitempty" json:"-"`

	WatchHistory []primitive.ObjectID `bson:"watch_history,omitempty" json:"-"`
}

// HasActiveSession reports whether the user holds a session eligible for
// refresh rotation.
func (u *User) HasActiveSession() bool {
	return u.Session != nil && u.Session.RefreshTokenHash != ""
}
