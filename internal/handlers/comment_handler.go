package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/wavelink-app/backend/internal/models"
	"github.com/wavelink-app/backend/internal/repositories"
	"github.com/wavelink-app/backend/internal/services"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
	notifier          *services.NotificationService
	logger            *slog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	notifier *services.NotificationService,
	logger *slog.Logger,
) *CommentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
		notifier:          notifier,
		logger:            logger,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetComments)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

// CreateComment adds a comment to a post, bumps the post's comment counter
// and notifies the post author.
func (h *CommentHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	postID := c.Param("post_id")
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	postObjID, err := primitive.ObjectIDFromHex(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	comment := &models.Comment{
		PostID:   postObjID,
		AuthorID: currentUserID,
		Content:  req.Content,
		Likers:   []uint{},
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.postRepository.IncrementCommentsCount(ctx, postID); err != nil {
		h.logger.WarnContext(ctx, "failed to increment comment counter",
			slog.String("post_id", postID), slog.Any("error", err))
	}

	if h.notifier != nil {
		author, err := h.userRepository.GetUserByID(currentUserID)
		if err == nil {
			// Fan-out is best-effort; the notifier suppresses self-comments.
			if _, err := h.notifier.Create(ctx, models.CreateNotificationInput{
				RecipientID: post.AuthorID,
				Type:        models.NotificationComment,
				Title:       "New comment",
				Message:     author.Name + " commented on your post",
				SenderID:    currentUserID,
				RelatedID:   postID,
				RelatedType: "post",
			}); err != nil {
				h.logger.WarnContext(ctx, "comment notification failed",
					slog.Uint64("recipient_id", uint64(post.AuthorID)), slog.Any("error", err))
			}
		}
	}

	return c.JSON(http.StatusCreated, comment)
}

// GetComments returns a page of a post's comments
func (h *CommentHandler) GetComments(c echo.Context) error {
	ctx := c.Request().Context()
	postID := c.Param("post_id")
	if _, err := h.postRepository.GetPostByID(ctx, postID); err != nil {
		return httpError(err)
	}

	skip, limit := paginationParams(c)
	comments, err := h.commentRepository.GetCommentsByPostID(ctx, postID, skip, limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments})
}

// UpdateComment edits the authenticated user's own comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx := c.Request().Context()
	comment, err := h.commentRepository.GetCommentByID(ctx, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if comment.AuthorID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Not the comment author")
	}

	if err := h.commentRepository.UpdateComment(ctx, c.Param("id"), req.Content); err != nil {
		return httpError(err)
	}
	comment.Content = req.Content
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment removes the authenticated user's own comment and drops the
// post's comment counter.
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	ctx := c.Request().Context()
	comment, err := h.commentRepository.GetCommentByID(ctx, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if comment.AuthorID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Not the comment author")
	}

	if err := h.commentRepository.DeleteComment(ctx, c.Param("id")); err != nil {
		return httpError(err)
	}
	if err := h.postRepository.DecrementCommentsCount(ctx, comment.PostID.Hex()); err != nil {
		h.logger.WarnContext(ctx, "failed to decrement comment counter",
			slog.String("post_id", comment.PostID.Hex()), slog.Any("error", err))
	}
	return c.NoContent(http.StatusNoContent)
}
