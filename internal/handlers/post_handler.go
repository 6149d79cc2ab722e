package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/picstream/backend/internal/feed"
	"github.com/picstream/backend/internal/models"
	"github.com/picstream/backend/internal/repositories"
	"go.uber.org/zap"
)

const (
	publicFeedLimit = 10
	maxImageSize    = 10 << 20 // 10MB
)

var allowedImageExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
}

// PostHandler handles post CRUD, likes and the feed endpoints
type PostHandler struct {
	store     *repositories.Store
	assembler *feed.Assembler
	uploadDir string
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(store *repositories.Store, assembler *feed.Assembler, uploadDir string, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		store:     store,
		assembler: assembler,
		uploadDir: uploadDir,
		validate:  validator.New(),
		logger:    logger,
	}
}

// RegisterPublicRoutes registers the unauthenticated post routes
func (h *PostHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/posts/public", h.GetPublicFeed)
	g.GET("/posts/user/:userId", h.GetUserPosts)
	g.GET("/posts/:id", h.GetPost)
}

// RegisterRoutes registers the authenticated post routes
func (h *PostHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/posts", h.GetFeed)
	g.POST("/posts", h.CreatePost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.POST("/posts/:id/like", h.ToggleLike)
}

// CreatePost stores the uploaded image and creates the post record
func (h *PostHandler) CreatePost(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Image is required")
	}
	src, err := file.Open()
	if err != nil {
		h.logger.Error("image open failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	defer src.Close()

	imagePath, err := h.storeImage(file.Filename, file.Size, src)
	if err != nil {
		if httpErr, ok := err.(*echo.HTTPError); ok {
			return httpErr
		}
		h.logger.Error("image save failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	ctx := c.Request().Context()
	post := &models.Post{
		UserID:   getUserIDFromContext(c),
		Image:    imagePath,
		Caption:  c.FormValue("caption"),
		Tags:     splitTags(c.FormValue("tags")),
		Location: c.FormValue("location"),
	}
	if err := h.store.Posts.Create(ctx, post); err != nil {
		h.logger.Error("create post failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, h.assembler.Post(ctx, post))
}

// GetFeed returns posts by the requester and everyone they follow
func (h *PostHandler) GetFeed(c echo.Context) error {
	ctx := c.Request().Context()
	currentUserID := getUserIDFromContext(c)

	following, err := h.store.Follows.FollowingIDs(ctx, currentUserID)
	if err != nil && err != repositories.ErrNotFound {
		h.logger.Error("feed followees failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	posts, err := h.store.Posts.ListByUsers(ctx, append(following, currentUserID))
	if err != nil {
		h.logger.Error("feed posts failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	details, err := h.assembler.PostsWithComments(ctx, posts)
	if err != nil {
		h.logger.Error("feed assembly failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, details)
}

// GetPublicFeed returns the newest posts across all authors, no auth needed
func (h *PostHandler) GetPublicFeed(c echo.Context) error {
	ctx := c.Request().Context()

	limit := publicFeedLimit
	if raw := c.QueryParam("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	posts, err := h.store.Posts.ListRecent(ctx, limit)
	if err != nil {
		h.logger.Error("public feed failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, h.assembler.Posts(ctx, posts))
}

// GetUserPosts returns one author's posts, newest first
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := h.store.Posts.ListByUser(ctx, c.Param("userId"))
	if err != nil {
		h.logger.Error("user posts failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, h.assembler.Posts(ctx, posts))
}

// GetPost returns a single post with its comments embedded
func (h *PostHandler) GetPost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := h.store.Posts.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		h.logger.Error("post lookup failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	details, err := h.assembler.PostsWithComments(ctx, []models.Post{*post})
	if err != nil {
		h.logger.Error("post assembly failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, details[0])
}

// UpdatePost applies a partial, owner-gated update
func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := h.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	post, err := h.store.Posts.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		h.logger.Error("post lookup failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	if post.UserID != getUserIDFromContext(c) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	if req.Caption != nil {
		post.Caption = *req.Caption
	}
	if req.Tags != nil {
		post.Tags = splitTags(*req.Tags)
	}
	if req.Location != nil {
		post.Location = *req.Location
	}

	if err := h.store.Posts.Update(ctx, post); err != nil {
		h.logger.Error("post update failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, h.assembler.Post(ctx, post))
}

// DeletePost removes a post and cascades to its comments, so no comment is
// left referencing a missing post
func (h *PostHandler) DeletePost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := h.store.Posts.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		h.logger.Error("post lookup failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	if post.UserID != getUserIDFromContext(c) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	if err := h.store.Comments.DeleteByPost(ctx, post.ID); err != nil {
		h.logger.Error("comment cascade failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	if err := h.store.Posts.Delete(ctx, post.ID); err != nil {
		h.logger.Error("post delete failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Post removed"})
}

// ToggleLike likes or unlikes a post and returns the resulting like set
func (h *PostHandler) ToggleLike(c echo.Context) error {
	likes, err := h.store.Posts.ToggleLike(c.Request().Context(), c.Param("id"), getUserIDFromContext(c))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		h.logger.Error("post like failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, echo.Map{"likes": likes})
}

// splitTags turns the comma-joined form field into a trimmed tag set
func splitTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// storeImage writes the uploaded file under the upload dir with a
// timestamp-derived name, enforcing the size limit and extension allowlist
func (h *PostHandler) storeImage(fileHeaderName string, size int64, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileHeaderName))
	if !allowedImageExts[ext] {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Only image files are allowed")
	}
	if size > maxImageSize {
		return "", echo.NewHTTPError(http.StatusBadRequest, "Image exceeds the 10MB limit")
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, io.LimitReader(src, maxImageSize)); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}
