package repositories

import (
	"errors"
	"fmt"

	"github.com/wavelink-app/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookmarkRepository stores bookmarks as single relation records keyed by
// (user, post). A toggle touches exactly one row; post-side counters are
// derived, never a second embedded copy of the relation.
type BookmarkRepository interface {
	// CreateBookmark inserts the relation. Returns created=false when the
	// (user, post) pair already exists.
	CreateBookmark(bookmark *models.Bookmark) (created bool, err error)
	// DeleteBookmark removes the relation. Returns deleted=false when no
	// such pair existed.
	DeleteBookmark(userID uint, postID string) (deleted bool, err error)
	IsBookmarked(userID uint, postID string) (bool, error)
	CountByPostID(postID string) (int64, error)
	GetBookmarksByUser(userID uint, page, limit int) ([]models.Bookmark, int64, error)
	GetBookmarkedPostIDs(userID uint, postIDs []string) (map[string]bool, error)
}

// PostgresBookmarkRepository implements BookmarkRepository
type PostgresBookmarkRepository struct {
	db *gorm.DB
}

// NewPostgresBookmarkRepository creates a new PostgresBookmarkRepository
func NewPostgresBookmarkRepository(db *gorm.DB) *PostgresBookmarkRepository {
	return &PostgresBookmarkRepository{db: db}
}

// CreateBookmark inserts the relation record. ON CONFLICT DO NOTHING keeps
// the insert a single atomic statement, so a concurrent duplicate toggle
// cannot create two rows.
func (r *PostgresBookmarkRepository) CreateBookmark(bookmark *models.Bookmark) (bool, error) {
	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(bookmark)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteBookmark removes the relation record.
func (r *PostgresBookmarkRepository) DeleteBookmark(userID uint, postID string) (bool, error) {
	res := r.db.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Bookmark{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IsBookmarked checks whether the user has bookmarked the post
func (r *PostgresBookmarkRepository) IsBookmarked(userID uint, postID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Bookmark{}).Where("user_id = ? AND post_id = ?", userID, postID).Count(&count).Error
	return count > 0, err
}

// CountByPostID derives the bookmark count for a post from the relation
// records.
func (r *PostgresBookmarkRepository) CountByPostID(postID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Bookmark{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// GetBookmarksByUser returns the user's bookmarks, newest first
func (r *PostgresBookmarkRepository) GetBookmarksByUser(userID uint, page, limit int) ([]models.Bookmark, int64, error) {
	var total int64
	if err := r.db.Model(&models.Bookmark{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var bookmarks []models.Bookmark
	offset := (page - 1) * limit
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&bookmarks).Error
	if err != nil {
		return nil, 0, fmt.Errorf("listing bookmarks for user %d: %w", userID, err)
	}
	return bookmarks, total, nil
}

// GetBookmarkedPostIDs returns which of the given post ids the user has
// bookmarked.
func (r *PostgresBookmarkRepository) GetBookmarkedPostIDs(userID uint, postIDs []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if len(postIDs) == 0 {
		return result, nil
	}
	var bookmarks []models.Bookmark
	err := r.db.Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&bookmarks).Error
	if err != nil {
		return nil, err
	}
	for _, b := range bookmarks {
		result[b.PostID] = true
	}
	return result, nil
}
