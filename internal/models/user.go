package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const DefaultProfilePicture = "/uploads/default-avatar.svg"

// User is an account record. Followers, Following and Posts are view fields
// resolved through the follow/post repositories; the database backend does
// not column-map them.
type User struct {
	ID             string    `json:"id" gorm:"primaryKey;size:36"`
	Username       string    `json:"username" gorm:"uniqueIndex;size:30;not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null"`
	Password       string    `json:"-"` // bcrypt hash, never serialized
	ProfilePicture string    `json:"profilePicture"`
	Bio            string    `json:"bio"`
	Followers      []string  `json:"followers" gorm:"-"`
	Following      []string  `json:"following" gorm:"-"`
	Posts          []string  `json:"posts" gorm:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}

// UserCompact is the author summary embedded into posts, comments and replies.
type UserCompact struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
}

// UserSummary is the projection returned by search and suggestions.
type UserSummary struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture"`
	Bio            string `json:"bio"`
}

// ToCompact projects a user to its embedded author summary
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:             u.ID,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
	}
}

// ToSummary projects a user to the search/suggestions shape
func (u *User) ToSummary() UserSummary {
	return UserSummary{
		ID:             u.ID,
		Username:       u.Username,
		ProfilePicture: u.ProfilePicture,
		Bio:            u.Bio,
	}
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest is a partial update: Username and ProfilePicture only
// change when non-empty, Bio changes whenever the field is present so it can
// be cleared.
type UpdateProfileRequest struct {
	Username       string  `json:"username,omitempty" validate:"omitempty,min=3,max=30"`
	Bio            *string `json:"bio,omitempty" validate:"omitempty,max=200"`
	ProfilePicture string  `json:"profilePicture,omitempty"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}
