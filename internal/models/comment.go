package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment represents a comment on a post, stored in MongoDB alongside the
// posts so its likers set can be toggled with the same atomic updates.
type Comment struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	PostID     primitive.ObjectID `json:"post_id" bson:"post_id"`
	AuthorID   uint               `json:"author_id" bson:"author_id"`
	Content    string             `json:"content" bson:"content"`
	Likers     []uint             `json:"-" bson:"likers"`
	LikesCount int                `json:"likes_count" bson:"likes_count"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

// UpdateCommentRequest defines the request body for updating an existing comment
type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
