package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/wavelink-app/backend/internal/models"
	"github.com/wavelink-app/backend/internal/repositories"
)

// BookmarkHandler serves the authenticated user's bookmark list
type BookmarkHandler struct {
	bookmarkRepository repositories.BookmarkRepository
	postRepository     repositories.PostRepository
}

// NewBookmarkHandler creates a new BookmarkHandler
func NewBookmarkHandler(bookmarkRepo repositories.BookmarkRepository, postRepo repositories.PostRepository) *BookmarkHandler {
	return &BookmarkHandler{
		bookmarkRepository: bookmarkRepo,
		postRepository:     postRepo,
	}
}

// RegisterBookmarkRoutes registers bookmark listing routes
func (h *BookmarkHandler) RegisterBookmarkRoutes(g *echo.Group) {
	g.GET("/bookmarks", h.GetBookmarks)
}

// GetBookmarks returns the user's bookmarked posts, newest bookmark first.
// Bookmarks whose post has since been deleted are listed without a post.
func (h *BookmarkHandler) GetBookmarks(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 20
	}

	bookmarks, total, err := h.bookmarkRepository.GetBookmarksByUser(currentUserID, page, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	type bookmarkedPost struct {
		Bookmark models.Bookmark `json:"bookmark"`
		Post     *models.Post    `json:"post,omitempty"`
	}
	results := make([]bookmarkedPost, 0, len(bookmarks))
	for _, b := range bookmarks {
		entry := bookmarkedPost{Bookmark: b}
		if post, err := h.postRepository.GetPostByID(c.Request().Context(), b.PostID); err == nil {
			entry.Post = post
		}
		results = append(results, entry)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    echo.Map{"bookmarks": results},
		"meta":    echo.Map{"totalItems": total, "currentPage": page, "itemsPerPage": limit},
	})
}
