package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

// SharePlatform identifies where a post was shared to.
type SharePlatform string

const (
	SharePlatformFacebook SharePlatform = "facebook"
	SharePlatformTwitter  SharePlatform = "twitter"
	SharePlatformLinkedin SharePlatform = "linkedin"
	SharePlatformWhatsapp SharePlatform = "whatsapp"
	SharePlatformEmail    SharePlatform = "email"
	SharePlatformCopyLink SharePlatform = "copy_link"
)

// ValidSharePlatform reports whether p is a recognized share platform.
func ValidSharePlatform(p SharePlatform) bool {
	switch p {
	case SharePlatformFacebook, SharePlatformTwitter, SharePlatformLinkedin,
		SharePlatformWhatsapp, SharePlatformEmail, SharePlatformCopyLink:
		return true
	}
	return false
}

// ShareRecord is an immutable entry in a post's share log. Shares are
// monotonic events, never toggled off.
type ShareRecord struct {
	ID       string        `json:"id" bson:"id"`
	UserID   uint          `json:"user_id" bson:"user_id"`
	Platform SharePlatform `json:"platform" bson:"platform"`
	Message  string        `json:"message,omitempty" bson:"message,omitempty"`
	SharedAt time.Time     `json:"shared_at" bson:"shared_at"`
}

// ViewRecord is an entry in a post's view log. UserID 0 marks an
// anonymous view.
type ViewRecord struct {
	ID       string    `json:"id" bson:"id"`
	UserID   uint      `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Metadata bson.M    `json:"metadata,omitempty" bson:"metadata,omitempty"`
	ViewedAt time.Time `json:"viewed_at" bson:"viewed_at"`
}

// Post represents a social media post stored in MongoDB. The post document
// owns its interaction state: the likers set with its derived counter, the
// share and view logs, and the bookmark/comment counters maintained by the
// interaction engine. likes_count always equals len(likers); counters never
// go below zero.
type Post struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	AuthorID       uint               `json:"author_id" bson:"author_id"`
	Content        string             `json:"content" bson:"content"`
	ImageURLs      []string           `json:"image_urls,omitempty" bson:"image_urls,omitempty"`
	Status         PostStatus         `json:"status" bson:"status"`
	Likers         []uint             `json:"-" bson:"likers"`
	LikesCount     int                `json:"likes_count" bson:"likes_count"`
	BookmarksCount int                `json:"bookmarks_count" bson:"bookmarks_count"`
	CommentsCount  int                `json:"comments_count" bson:"comments_count"`
	Shares         []ShareRecord      `json:"-" bson:"shares,omitempty"`
	SharesCount    int                `json:"shares_count" bson:"shares_count"`
	Views          []ViewRecord       `json:"-" bson:"views,omitempty"`
	ViewsCount     int                `json:"views_count" bson:"views_count"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Content   string   `json:"content" validate:"required,min=1,max=280"`
	ImageURLs []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
	Status    string   `json:"status,omitempty" validate:"omitempty,oneof=draft published"`
}

// UpdatePostRequest defines the request body for updating an existing post
type UpdatePostRequest struct {
	Content   string   `json:"content,omitempty" validate:"omitempty,min=1,max=280"`
	ImageURLs []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
	Status    string   `json:"status,omitempty" validate:"omitempty,oneof=draft published archived"`
}

// SharePostRequest defines the request body for sharing a post
type SharePostRequest struct {
	Platform      string `json:"platform" validate:"required"`
	CustomMessage string `json:"custom_message,omitempty" validate:"omitempty,max=280"`
}

// RecordViewRequest defines the request body for recording a post view
type RecordViewRequest struct {
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
