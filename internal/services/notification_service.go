package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/wavelink-app/backend/internal/models"
	"github.com/wavelink-app/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
)

// notificationLogCap bounds each recipient's log; the oldest entries are
// evicted silently once the cap is exceeded.
const notificationLogCap = 100

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 50
)

// statsRecentSize caps the recent sample returned by Stats.
const statsRecentSize = 5

// NotificationListOptions controls List filtering and pagination.
type NotificationListOptions struct {
	Page       int
	Limit      int
	UnreadOnly bool
	Types      []models.NotificationType
}

// NotificationList is the List result: an enriched page plus pagination
// metadata and the recipient's current unread count.
type NotificationList struct {
	Notifications []models.EnrichedNotification `json:"notifications"`
	Pagination    models.Pagination             `json:"pagination"`
	UnreadCount   int64                         `json:"unreadCount"`
}

// MarkReadResult reports how many entries were flipped and the unread count
// after the operation. The count is recomputed from the store, never
// decremented blindly.
type MarkReadResult struct {
	MarkedCount int64 `json:"markedCount"`
	UnreadCount int64 `json:"unreadCount"`
}

// DeleteResult reports how many entries were removed and the recomputed
// unread count.
type DeleteResult struct {
	DeletedCount int64 `json:"deletedCount"`
	UnreadCount  int64 `json:"unreadCount"`
}

// NotificationService maintains bounded per-recipient notification logs
// with unread tracking. All unread counts are derived by counting the
// store; the bounded append and the counter can therefore never drift
// apart.
type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	logger        *slog.Logger
}

// NewNotificationService creates a NotificationService with its injected
// repositories.
func NewNotificationService(notifRepo repositories.NotificationRepository, userRepo repositories.UserRepository, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{
		notifications: notifRepo,
		users:         userRepo,
		logger:        logger,
	}
}

// Create validates, stores and bounds a single notification. It returns
// (nil, nil) when sender and recipient are the same actor: self
// notifications are suppressed, not errors.
func (s *NotificationService) Create(ctx context.Context, input models.CreateNotificationInput) (*models.Notification, error) {
	if !models.ValidNotificationType(input.Type) {
		return nil, fmt.Errorf("%w: unknown notification type %q", ErrInvalidArgument, input.Type)
	}
	if input.RecipientID == 0 {
		return nil, fmt.Errorf("%w: recipient id is required", ErrInvalidArgument)
	}
	if input.Title == "" || input.Message == "" {
		return nil, fmt.Errorf("%w: title and message are required", ErrInvalidArgument)
	}

	// Self-notification suppression: deliberate no-op, not an error.
	if input.SenderID != 0 && input.SenderID == input.RecipientID {
		return nil, nil
	}

	if _, err := s.users.GetUserByID(input.RecipientID); err != nil {
		return nil, err
	}

	notification := &models.Notification{
		RecipientID: input.RecipientID,
		Type:        input.Type,
		Title:       input.Title,
		Message:     input.Message,
		SenderID:    input.SenderID,
		RelatedID:   input.RelatedID,
		RelatedType: input.RelatedType,
		IsRead:      false,
		CreatedAt:   time.Now(),
	}
	if len(input.Metadata) > 0 {
		notification.Metadata = bson.M(input.Metadata)
	}

	if err := s.notifications.Insert(ctx, notification); err != nil {
		return nil, fmt.Errorf("storing notification for user %d: %w", input.RecipientID, err)
	}

	evicted, err := s.notifications.TrimToRecent(ctx, input.RecipientID, notificationLogCap)
	if err != nil {
		// The notification itself is stored; a failed trim only delays
		// eviction until the next append.
		s.logger.WarnContext(ctx, "failed to trim notification log",
			slog.Uint64("recipient_id", uint64(input.RecipientID)),
			slog.Any("error", err),
		)
	} else if evicted > 0 {
		s.logger.DebugContext(ctx, "evicted notifications over log cap",
			slog.Uint64("recipient_id", uint64(input.RecipientID)),
			slog.Int64("evicted", evicted),
		)
	}

	return notification, nil
}

// CreateBulk pre-filters invalid and self-targeted inputs, then applies the
// rest as independent per-recipient appends. A failure for one recipient is
// logged and never blocks the others.
func (s *NotificationService) CreateBulk(ctx context.Context, inputs []models.CreateNotificationInput) []models.Notification {
	created := make([]models.Notification, 0, len(inputs))
	for _, input := range inputs {
		if !models.ValidNotificationType(input.Type) || input.RecipientID == 0 {
			continue
		}
		if input.SenderID != 0 && input.SenderID == input.RecipientID {
			continue
		}
		notification, err := s.Create(ctx, input)
		if err != nil {
			s.logger.WarnContext(ctx, "bulk notification entry failed",
				slog.Uint64("recipient_id", uint64(input.RecipientID)),
				slog.String("type", string(input.Type)),
				slog.Any("error", err),
			)
			continue
		}
		if notification != nil {
			created = append(created, *notification)
		}
	}
	return created
}

// List returns a filtered, newest-first page of the user's log enriched
// with minimal sender identity.
func (s *NotificationService) List(ctx context.Context, userID uint, opts NotificationListOptions) (*NotificationList, error) {
	if _, err := s.users.GetUserByID(userID); err != nil {
		return nil, err
	}

	if opts.Page < 0 || opts.Limit < 0 {
		return nil, fmt.Errorf("%w: page and limit must not be negative", ErrInvalidArgument)
	}
	if opts.Page == 0 {
		opts.Page = 1
	}
	if opts.Limit == 0 {
		opts.Limit = defaultNotificationLimit
	}
	if opts.Limit > maxNotificationLimit {
		opts.Limit = maxNotificationLimit
	}
	for _, t := range opts.Types {
		if !models.ValidNotificationType(t) {
			return nil, fmt.Errorf("%w: unknown notification type %q", ErrInvalidArgument, t)
		}
	}

	repoOpts := repositories.NotificationListOptions{
		Skip:       int64(opts.Page-1) * int64(opts.Limit),
		Limit:      int64(opts.Limit),
		UnreadOnly: opts.UnreadOnly,
		Types:      opts.Types,
	}
	notifications, total, err := s.notifications.ListByRecipient(ctx, userID, repoOpts)
	if err != nil {
		return nil, err
	}

	unread, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(opts.Limit)))
	return &NotificationList{
		Notifications: s.enrich(ctx, notifications),
		Pagination: models.Pagination{
			CurrentPage:     opts.Page,
			TotalPages:      totalPages,
			TotalItems:      total,
			ItemsPerPage:    opts.Limit,
			HasNextPage:     opts.Page < totalPages,
			HasPreviousPage: opts.Page > 1,
		},
		UnreadCount: unread,
	}, nil
}

// enrich resolves minimal sender identity for each notification in one
// batched lookup. Senders that no longer exist are left unresolved.
func (s *NotificationService) enrich(ctx context.Context, notifications []models.Notification) []models.EnrichedNotification {
	senderIDs := make([]uint, 0, len(notifications))
	seen := make(map[uint]bool)
	for _, n := range notifications {
		if n.SenderID != 0 && !seen[n.SenderID] {
			seen[n.SenderID] = true
			senderIDs = append(senderIDs, n.SenderID)
		}
	}

	senders := make(map[uint]models.UserCompact)
	if len(senderIDs) > 0 {
		users, err := s.users.GetUsersByIDs(senderIDs)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to resolve notification senders", slog.Any("error", err))
		}
		for _, u := range users {
			senders[u.ID] = u.ToCompact()
		}
	}

	enriched := make([]models.EnrichedNotification, len(notifications))
	for i, n := range notifications {
		enriched[i] = models.EnrichedNotification{Notification: n}
		if sender, ok := senders[n.SenderID]; ok {
			enriched[i].Sender = &sender
		}
	}
	return enriched
}

// MarkRead flips the given notifications to read, counting only entries
// that were actually unread. Unknown ids are no-ops, not errors.
func (s *NotificationService) MarkRead(ctx context.Context, userID uint, ids ...string) (*MarkReadResult, error) {
	if _, err := s.users.GetUserByID(userID); err != nil {
		return nil, err
	}

	marked, err := s.notifications.MarkRead(ctx, userID, ids)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	unread, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MarkReadResult{MarkedCount: marked, UnreadCount: unread}, nil
}

// MarkAllRead marks the user's entire log read in a single update.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (*MarkReadResult, error) {
	if _, err := s.users.GetUserByID(userID); err != nil {
		return nil, err
	}

	marked, err := s.notifications.MarkAllRead(ctx, userID)
	if err != nil {
		return nil, err
	}
	unread, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &MarkReadResult{MarkedCount: marked, UnreadCount: unread}, nil
}

// Delete removes the given notifications, then recomputes the unread count
// from what remains.
func (s *NotificationService) Delete(ctx context.Context, userID uint, ids ...string) (*DeleteResult, error) {
	if _, err := s.users.GetUserByID(userID); err != nil {
		return nil, err
	}

	deleted, err := s.notifications.DeleteByIDs(ctx, userID, ids)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	unread, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &DeleteResult{DeletedCount: deleted, UnreadCount: unread}, nil
}

// Stats aggregates the user's current log: totals, read/unread split,
// per-type counts and a small newest-first sample.
func (s *NotificationService) Stats(ctx context.Context, userID uint) (*models.NotificationStats, error) {
	if _, err := s.users.GetUserByID(userID); err != nil {
		return nil, err
	}

	// The log is bounded, so loading it whole is cheap.
	notifications, _, err := s.notifications.ListByRecipient(ctx, userID, repositories.NotificationListOptions{})
	if err != nil {
		return nil, err
	}

	stats := &models.NotificationStats{
		Total:  len(notifications),
		ByType: make(map[models.NotificationType]int),
		Recent: []models.Notification{},
	}
	for _, n := range notifications {
		if n.IsRead {
			stats.Read++
		} else {
			stats.Unread++
		}
		stats.ByType[n.Type]++
	}
	if len(notifications) > statsRecentSize {
		stats.Recent = notifications[:statsRecentSize]
	} else {
		stats.Recent = notifications
	}
	return stats, nil
}

// Types returns metadata for the closed notification type enum.
func (s *NotificationService) Types() []models.NotificationTypeMeta {
	return models.NotificationTypes()
}
