package handlers

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/picstream/backend/internal/middleware"
	"github.com/picstream/backend/internal/models"
	"github.com/picstream/backend/internal/repositories"
)

// getUserIDFromContext returns the authenticated user id set by the JWT
// middleware, or "" for unauthenticated requests
func getUserIDFromContext(c echo.Context) string {
	if id, ok := c.Get(middleware.UserIDKey).(string); ok {
		return id
	}
	return ""
}

// buildUserView fills the derived graph and post-list fields on a user
// before it is returned to a client. Slices are always non-nil so the JSON
// carries arrays, not nulls.
func buildUserView(ctx context.Context, store *repositories.Store, user *models.User) *models.User {
	followers, err := store.Follows.FollowerIDs(ctx, user.ID)
	if err != nil || followers == nil {
		followers = []string{}
	}
	following, err := store.Follows.FollowingIDs(ctx, user.ID)
	if err != nil || following == nil {
		following = []string{}
	}
	postIDs := []string{}
	if posts, err := store.Posts.ListByUser(ctx, user.ID); err == nil {
		// ListByUser is newest first; the posts list is kept in creation order.
		for i := len(posts) - 1; i >= 0; i-- {
			postIDs = append(postIDs, posts[i].ID)
		}
	}

	view := *user
	view.Followers = followers
	view.Following = following
	view.Posts = postIDs
	return &view
}
