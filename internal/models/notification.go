package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationType is the closed set of notification kinds the engine will
// create. Anything else is rejected as invalid.
type NotificationType string

const (
	NotificationFollow        NotificationType = "follow"
	NotificationLikePost      NotificationType = "like_post"
	NotificationLikeComment   NotificationType = "like_comment"
	NotificationComment       NotificationType = "comment"
	NotificationReply         NotificationType = "reply"
	NotificationMention       NotificationType = "mention"
	NotificationPostPublished NotificationType = "post_published"
	NotificationAchievement   NotificationType = "achievement"
	NotificationSystem        NotificationType = "system"
	NotificationShare         NotificationType = "share"
)

// notificationTypeLabels maps each type to its human-readable label,
// in a fixed order for Types() listings.
var notificationTypeLabels = []struct {
	Type  NotificationType
	Label string
}{
	{NotificationFollow, "New follower"},
	{NotificationLikePost, "Post liked"},
	{NotificationLikeComment, "Comment liked"},
	{NotificationComment, "New comment"},
	{NotificationReply, "New reply"},
	{NotificationMention, "Mention"},
	{NotificationPostPublished, "Post published"},
	{NotificationAchievement, "Achievement unlocked"},
	{NotificationSystem, "System"},
	{NotificationShare, "Post shared"},
}

// ValidNotificationType reports whether t belongs to the closed enum.
func ValidNotificationType(t NotificationType) bool {
	for _, m := range notificationTypeLabels {
		if m.Type == t {
			return true
		}
	}
	return false
}

// NotificationTypeMeta describes one member of the notification type enum.
type NotificationTypeMeta struct {
	Type  NotificationType `json:"type"`
	Label string           `json:"label"`
}

// NotificationTypes returns metadata for every recognized notification type.
func NotificationTypes() []NotificationTypeMeta {
	metas := make([]NotificationTypeMeta, 0, len(notificationTypeLabels))
	for _, m := range notificationTypeLabels {
		metas = append(metas, NotificationTypeMeta{Type: m.Type, Label: m.Label})
	}
	return metas
}

// Notification is a per-recipient notification document. Immutable once
// created except for IsRead/ReadAt. Each recipient's log is bounded to the
// newest 100 entries; older ones are evicted silently.
type Notification struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	RecipientID uint               `json:"recipient_id" bson:"recipient_id"`
	Type        NotificationType   `json:"type" bson:"type"`
	Title       string             `json:"title" bson:"title"`
	Message     string             `json:"message" bson:"message"`
	SenderID    uint               `json:"sender_id,omitempty" bson:"sender_id,omitempty"`
	RelatedID   string             `json:"related_id,omitempty" bson:"related_id,omitempty"`
	RelatedType string             `json:"related_type,omitempty" bson:"related_type,omitempty"`
	Metadata    bson.M             `json:"metadata,omitempty" bson:"metadata,omitempty"`
	IsRead      bool               `json:"is_read" bson:"is_read"`
	ReadAt      *time.Time         `json:"read_at,omitempty" bson:"read_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

// EnrichedNotification includes the resolved sender identity.
type EnrichedNotification struct {
	Notification
	Sender *UserCompact `json:"sender,omitempty"`
}

// CreateNotificationInput carries everything needed to create one
// notification.
type CreateNotificationInput struct {
	RecipientID uint                   `json:"recipient_id" validate:"required"`
	Type        NotificationType       `json:"type" validate:"required"`
	Title       string                 `json:"title" validate:"required,max=120"`
	Message     string                 `json:"message" validate:"required,max=500"`
	SenderID    uint                   `json:"sender_id,omitempty"`
	RelatedID   string                 `json:"related_id,omitempty"`
	RelatedType string                 `json:"related_type,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// NotificationStats aggregates a recipient's current log.
type NotificationStats struct {
	Total  int                      `json:"total"`
	Unread int                      `json:"unread"`
	Read   int                      `json:"read"`
	ByType map[NotificationType]int `json:"by_type"`
	Recent []Notification           `json:"recent"`
}

// Pagination is the standard list metadata envelope.
type Pagination struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalItems      int64 `json:"totalItems"`
	ItemsPerPage    int   `json:"itemsPerPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}
