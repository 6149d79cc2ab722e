package models

import "time"

// Post represents an image post. Likes is a set of user IDs (a user appears
// at most once); Comments is the ordered list of comment IDs.
type Post struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"userId" bson:"user_id"`
	Image     string    `json:"image" bson:"image"`
	Caption   string    `json:"caption" bson:"caption"`
	Tags      []string  `json:"tags" bson:"tags"`
	Location  string    `json:"location" bson:"location"`
	Likes     []string  `json:"likes" bson:"likes"`
	Comments  []string  `json:"comments" bson:"comments"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}

// UpdatePostRequest is a partial update: only provided fields change.
// Tags arrives as a comma-joined string, consistent with the upload form.
type UpdatePostRequest struct {
	Caption  *string `json:"caption,omitempty" validate:"omitempty,max=2200"`
	Tags     *string `json:"tags,omitempty"`
	Location *string `json:"location,omitempty" validate:"omitempty,max=100"`
}
