package models

import "time"

// Comment represents a comment on a post. Replies are append-only and are
// never individually edited or deleted.
type Comment struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"userId" bson:"user_id"`
	PostID    string    `json:"postId" bson:"post_id"`
	Content   string    `json:"content" bson:"content"`
	Likes     []string  `json:"likes" bson:"likes"`
	Replies   []Reply   `json:"replies" bson:"replies"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// Reply is a nested reply on a comment
type Reply struct {
	UserID    string    `json:"userId" bson:"user_id"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	PostID  string `json:"postId" validate:"required"`
	Content string `json:"content" validate:"required,max=500"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,max=500"`
}

// ReplyRequest defines the request body for replying to a comment
type ReplyRequest struct {
	Content string `json:"content" validate:"required,max=500"`
}
