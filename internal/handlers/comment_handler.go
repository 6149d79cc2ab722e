package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/picstream/backend/internal/feed"
	"github.com/picstream/backend/internal/models"
	"github.com/picstream/backend/internal/repositories"
	"go.uber.org/zap"
)

// CommentHandler handles comment CRUD, comment likes and replies
type CommentHandler struct {
	store     *repositories.Store
	assembler *feed.Assembler
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(store *repositories.Store, assembler *feed.Assembler, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		store:     store,
		assembler: assembler,
		validate:  validator.New(),
		logger:    logger,
	}
}

// RegisterPublicRoutes registers the unauthenticated comment routes
func (h *CommentHandler) RegisterPublicRoutes(g *echo.Group) {
	g.GET("/comments/post/:postId", h.GetPostComments)
}

// RegisterRoutes registers the authenticated comment routes
func (h *CommentHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/comments", h.CreateComment)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.POST("/comments/:id/like", h.ToggleLike)
	g.POST("/comments/:id/reply", h.AddReply)
}

// CreateComment attaches a comment to an existing post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := h.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Content and postId are required")
	}

	ctx := c.Request().Context()
	if _, err := h.store.Posts.GetByID(ctx, req.PostID); err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		h.logger.Error("comment post lookup failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	comment := &models.Comment{
		UserID:  getUserIDFromContext(c),
		PostID:  req.PostID,
		Content: req.Content,
	}
	if err := h.store.Comments.Create(ctx, comment); err != nil {
		h.logger.Error("create comment failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	if err := h.store.Posts.AddCommentRef(ctx, req.PostID, comment.ID); err != nil {
		h.logger.Error("comment ref append failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, h.assembler.Comment(ctx, comment))
}

// GetPostComments lists a post's comments, newest first
func (h *CommentHandler) GetPostComments(c echo.Context) error {
	ctx := c.Request().Context()
	comments, err := h.store.Comments.ListByPost(ctx, c.Param("postId"))
	if err != nil {
		h.logger.Error("post comments failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	// ListByPost is oldest first; this endpoint serves newest first.
	for i, j := 0, len(comments)-1; i < j; i, j = i+1, j-1 {
		comments[i], comments[j] = comments[j], comments[i]
	}
	return c.JSON(http.StatusOK, h.assembler.Comments(ctx, comments))
}

// UpdateComment edits a comment's content, owner only
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := h.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Comment content is required")
	}

	ctx := c.Request().Context()
	comment, err := h.store.Comments.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		h.logger.Error("comment lookup failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	if comment.UserID != getUserIDFromContext(c) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	comment.Content = req.Content
	if err := h.store.Comments.Update(ctx, comment); err != nil {
		h.logger.Error("comment update failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, h.assembler.Comment(ctx, comment))
}

// DeleteComment removes a comment and its reference on the parent post
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	ctx := c.Request().Context()
	comment, err := h.store.Comments.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		h.logger.Error("comment lookup failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	if comment.UserID != getUserIDFromContext(c) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authorized")
	}

	if err := h.store.Posts.RemoveCommentRef(ctx, comment.PostID, comment.ID); err != nil {
		h.logger.Error("comment ref removal failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	if err := h.store.Comments.Delete(ctx, comment.ID); err != nil {
		h.logger.Error("comment delete failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Comment removed"})
}

// ToggleLike likes or unlikes a comment and returns the resulting like set
func (h *CommentHandler) ToggleLike(c echo.Context) error {
	likes, err := h.store.Comments.ToggleLike(c.Request().Context(), c.Param("id"), getUserIDFromContext(c))
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		h.logger.Error("comment like failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}
	return c.JSON(http.StatusOK, echo.Map{"likes": likes})
}

// AddReply appends a reply to a comment and returns the updated comment
func (h *CommentHandler) AddReply(c echo.Context) error {
	var req models.ReplyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	req.Content = strings.TrimSpace(req.Content)
	if err := h.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Reply content is required")
	}

	ctx := c.Request().Context()
	reply := models.Reply{
		UserID:    getUserIDFromContext(c),
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	comment, err := h.store.Comments.AddReply(ctx, c.Param("id"), reply)
	if err != nil {
		if err == repositories.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Comment not found")
		}
		h.logger.Error("reply append failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error")
	}

	return c.JSON(http.StatusOK, h.assembler.Comment(ctx, comment))
}
