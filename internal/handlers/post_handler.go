package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/wavelink-app/backend/internal/models"
	"github.com/wavelink-app/backend/internal/repositories"
	"github.com/wavelink-app/backend/internal/services"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository repositories.PostRepository
	userRepository repositories.UserRepository
	bookmarkRepo   repositories.BookmarkRepository
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, userRepo repositories.UserRepository, bookmarkRepo repositories.BookmarkRepository) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		userRepository: userRepo,
		bookmarkRepo:   bookmarkRepo,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.GET("/users/:id/posts", h.GetPostsByAuthor)
}

// CreatePost creates a post owned by the authenticated user
func (h *PostHandler) CreatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	status := models.PostStatus(req.Status)
	if status == "" {
		status = models.PostStatusPublished
	}

	post := &models.Post{
		AuthorID:  currentUserID,
		Content:   req.Content,
		ImageURLs: req.ImageURLs,
		Status:    status,
		Likers:    []uint{},
	}
	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost returns a single post with its engagement rate
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}

	resp := echo.Map{
		"post":            post,
		"engagement_rate": services.EngagementRate(post),
	}
	if currentUserID := getUserIDFromContext(c); currentUserID != 0 {
		bookmarked, err := h.bookmarkRepo.IsBookmarked(currentUserID, post.ID.Hex())
		if err == nil {
			resp["is_bookmarked"] = bookmarked
		}
		liked := false
		for _, id := range post.Likers {
			if id == currentUserID {
				liked = true
				break
			}
		}
		resp["is_liked"] = liked
	}
	return c.JSON(http.StatusOK, resp)
}

// GetPosts returns a page of all posts
func (h *PostHandler) GetPosts(c echo.Context) error {
	skip, limit := paginationParams(c)
	posts, err := h.postRepository.GetAllPosts(c.Request().Context(), skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}

// GetPostsByAuthor returns a page of one author's posts
func (h *PostHandler) GetPostsByAuthor(c echo.Context) error {
	authorID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if _, err := h.userRepository.GetUserByID(uint(authorID)); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	skip, limit := paginationParams(c)
	posts, err := h.postRepository.GetPostsByAuthorID(c.Request().Context(), uint(authorID), skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"posts": posts})
}

// UpdatePost updates the authenticated user's own post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if post.AuthorID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Not the post author")
	}

	if req.Content != "" {
		post.Content = req.Content
	}
	if req.ImageURLs != nil {
		post.ImageURLs = req.ImageURLs
	}
	if req.Status != "" {
		post.Status = models.PostStatus(req.Status)
	}
	if err := h.postRepository.UpdatePost(c.Request().Context(), c.Param("id"), post); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes the authenticated user's own post
func (h *PostHandler) DeletePost(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if post.AuthorID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Not the post author")
	}

	if err := h.postRepository.DeletePost(c.Request().Context(), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// paginationParams reads skip/limit style pagination from page and limit
// query parameters.
func paginationParams(c echo.Context) (skip, limit int64) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 50 {
		size = 20
	}
	return int64(page-1) * int64(size), int64(size)
}
