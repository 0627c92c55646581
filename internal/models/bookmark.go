package models

import "time"

// Bookmark is a single relation record keyed by (user, post). Bookmark
// counters on posts are derived from these records rather than from a
// second embedded array, so a toggle touches exactly one row.
type Bookmark struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;uniqueIndex:idx_user_post_bookmark"`
	PostID    string    `json:"post_id" gorm:"index;uniqueIndex:idx_user_post_bookmark"` // MongoDB ObjectID as string
	CreatedAt time.Time `json:"created_at"`
}
