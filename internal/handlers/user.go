package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/picstream/backend/internal/feed"
	"github.com/picstream/backend/internal/models"
	"github.com/picstream/backend/internal/repositories"
	"go.uber.org/zap"
)

const (
	searchLimit      = 10
	suggestionsLimit = 5
)

// UserHandler handles profile, search and suggestion requests
type UserHandler struct {
	store     *repositories.Store
	assembler *feed.Assembler
	cache     *feed.Cache
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewUserHandler creates a new UserHandler. cache may be nil.
func NewUserHandler(store *repositories.Store, assembler *feed.Assembler, cache *feed.Cache, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		store:     store,
		assembler: assembler,
		cache:     cache,
		validate:  validator.New(),
		logger:    logger,
	}
}

// RegisterPublicRoutes registers the unauthenticated user routes
func (h *UserHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/users/profile/:id", h.GetProfile)
	g.GET("/users/search", h.SearchUsers)
}

// RegisterRoutes registers the authenticated user routes
func (h *UserHandler) RegisterRoutes(g *echo.Group) {
	g.PUT("/users/profile", h.UpdateProfile)
	g.GET("/users/suggestions", h.GetSuggestions)
}

// GetProfile returns a user together with their posts, newest first
func (h *UserHandler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.store.Users.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		h.logger.Error("profile lookup failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	posts, err := h.store.Posts.ListByUser(ctx, user.ID)
	if err != nil {
		h.logger.Error("profile posts failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":  buildUserView(ctx, h.store, user),
		"posts": h.assembler.Posts(ctx, posts),
	})
}

// UpdateProfile applies a partial update to the authenticated user's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := h.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	user, err := h.store.Users.GetByID(ctx, getUserIDFromContext(c))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		h.logger.Error("profile lookup failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.ProfilePicture != "" {
		user.ProfilePicture = req.ProfilePicture
	}

	if err := h.store.Users.Update(ctx, user); err != nil {
		h.logger.Error("profile update failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	h.cache.Invalidate(ctx, user.ID)

	return c.JSON(http.StatusOK, buildUserView(ctx, h.store, user))
}

// SearchUsers matches the query against usernames and bios
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Search query is required")
	}

	users, err := h.store.Users.Search(c.Request().Context(), query, searchLimit)
	if err != nil {
		h.logger.Error("search failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, summarize(users))
}

// GetSuggestions returns users the requester does not yet follow
func (h *UserHandler) GetSuggestions(c echo.Context) error {
	ctx := c.Request().Context()
	currentUserID := getUserIDFromContext(c)

	following, err := h.store.Follows.FollowingIDs(ctx, currentUserID)
	if err != nil && err != repositories.ErrNotFound {
		h.logger.Error("suggestions followees failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	exclude := append(following, currentUserID)
	users, err := h.store.Users.Suggestions(ctx, exclude, suggestionsLimit)
	if err != nil {
		h.logger.Error("suggestions failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, summarize(users))
}

func summarize(users []models.User) []models.UserSummary {
	summaries := make([]models.UserSummary, len(users))
	for i := range users {
		summaries[i] = users[i].ToSummary()
	}
	return summaries
}
