package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/picstream/backend/internal/repositories"
	"go.uber.org/zap"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	store  *repositories.Store
	logger *zap.Logger
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(store *repositories.Store, logger *zap.Logger) *FollowHandler {
	return &FollowHandler{store: store, logger: logger}
}

// RegisterRoutes registers follow-related routes
func (h *FollowHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/users/follow/:id", h.FollowUser)
	g.DELETE("/users/follow/:id", h.UnfollowUser)
}

// FollowUser follows a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	targetID := c.Param("id")
	ctx := c.Request().Context()

	if targetID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself")
	}
	if _, err := h.store.Users.GetByID(ctx, targetID); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		h.logger.Error("follow target lookup failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	if err := h.store.Follows.Follow(ctx, currentUserID, targetID); err != nil {
		switch err {
		case repositories.ErrAlreadyFollowing:
			return echo.NewHTTPError(http.StatusBadRequest, "Already following this user")
		case repositories.ErrNotFound:
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		h.logger.Error("follow failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "User followed successfully"})
}

// UnfollowUser unfollows a user. Unfollowing someone not currently followed
// is a silent success.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	targetID := c.Param("id")
	ctx := c.Request().Context()

	if _, err := h.store.Users.GetByID(ctx, targetID); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		h.logger.Error("unfollow target lookup failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	if err := h.store.Follows.Unfollow(ctx, currentUserID, targetID); err != nil && err != repositories.ErrNotFound {
		h.logger.Error("unfollow failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "User unfollowed successfully"})
}
