package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavelink-app/backend/internal/models"
)

func newNotificationFixture(t *testing.T) (*NotificationService, *fakeNotificationRepo, *fakeUserRepo) {
	t.Helper()
	users := newFakeUserRepo(
		models.User{ID: 1, Name: "Alice", Username: "alice"},
		models.User{ID: 2, Name: "Bob", Username: "bob"},
		models.User{ID: 3, Name: "Carol", Username: "carol"},
	)
	notifRepo := newFakeNotificationRepo()
	return NewNotificationService(notifRepo, users, nil), notifRepo, users
}

func TestNotificationService_Create(t *testing.T) {
	tests := []struct {
		name    string
		input   models.CreateNotificationInput
		wantNil bool
		wantErr error
	}{
		{
			name: "successful create",
			input: models.CreateNotificationInput{
				RecipientID: 2,
				Type:        models.NotificationLikePost,
				Title:       "Post liked",
				Message:     "Alice liked your post",
				SenderID:    1,
			},
		},
		{
			name: "unknown type rejected",
			input: models.CreateNotificationInput{
				RecipientID: 2,
				Type:        "poke",
				Title:       "Poke",
				Message:     "You got poked",
			},
			wantErr: ErrInvalidArgument,
		},
		{
			name: "missing title rejected",
			input: models.CreateNotificationInput{
				RecipientID: 2,
				Type:        models.NotificationSystem,
				Message:     "hello",
			},
			wantErr: ErrInvalidArgument,
		},
		{
			name: "self notification suppressed",
			input: models.CreateNotificationInput{
				RecipientID: 2,
				Type:        models.NotificationLikePost,
				Title:       "Post liked",
				Message:     "Bob liked your post",
				SenderID:    2,
			},
			wantNil: true,
		},
		{
			name: "unknown recipient",
			input: models.CreateNotificationInput{
				RecipientID: 99,
				Type:        models.NotificationSystem,
				Title:       "Welcome",
				Message:     "Hello",
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newNotificationFixture(t)
			got, err := svc.Create(context.Background(), tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.False(t, got.ID.IsZero())
			assert.False(t, got.IsRead)
			assert.Nil(t, got.ReadAt)
			assert.Equal(t, tt.input.RecipientID, got.RecipientID)
			assert.Equal(t, tt.input.Type, got.Type)
		})
	}
}

func TestNotificationService_LogCap(t *testing.T) {
	svc, _, _ := newNotificationFixture(t)
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		_, err := svc.Create(ctx, models.CreateNotificationInput{
			RecipientID: 2,
			Type:        models.NotificationSystem,
			Title:       "Update",
			Message:     fmt.Sprintf("update %d", i),
		})
		require.NoError(t, err)
	}

	list, err := svc.List(ctx, 2, NotificationListOptions{Limit: maxNotificationLimit})
	require.NoError(t, err)
	assert.Equal(t, int64(100), list.Pagination.TotalItems, "log must hold exactly 100 entries")
	assert.Equal(t, int64(100), list.UnreadCount)

	// The 50 oldest entries (0..49) must be gone; the newest survives.
	stats, err := svc.Stats(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 100, stats.Total)
	require.NotEmpty(t, stats.Recent)
	assert.Equal(t, "update 149", stats.Recent[0].Message)

	page2, err := svc.List(ctx, 2, NotificationListOptions{Page: 2, Limit: maxNotificationLimit})
	require.NoError(t, err)
	oldest := page2.Notifications[len(page2.Notifications)-1]
	assert.Equal(t, "update 50", oldest.Message, "entries below index 50 must be evicted")
}

func TestNotificationService_MarkRead(t *testing.T) {
	svc, _, _ := newNotificationFixture(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		n, err := svc.Create(ctx, models.CreateNotificationInput{
			RecipientID: 2,
			Type:        models.NotificationSystem,
			Title:       "Update",
			Message:     fmt.Sprintf("update %d", i),
		})
		require.NoError(t, err)
		ids = append(ids, n.ID.Hex())
	}

	res, err := svc.MarkRead(ctx, 2, ids[0], ids[1])
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.MarkedCount)
	assert.Equal(t, int64(2), res.UnreadCount)

	// Re-marking the same ids flips nothing further.
	res, err = svc.MarkRead(ctx, 2, ids[0], ids[1])
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.MarkedCount)
	assert.Equal(t, int64(2), res.UnreadCount)

	// Unknown ids are no-ops, not errors.
	res, err = svc.MarkRead(ctx, 2, "65a000000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.MarkedCount)
	assert.Equal(t, int64(2), res.UnreadCount)

	// Malformed ids are invalid arguments.
	_, err = svc.MarkRead(ctx, 2, "not-an-id")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.MarkRead(ctx, 99, ids[2])
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotificationService_MarkAllRead(t *testing.T) {
	svc, _, _ := newNotificationFixture(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := svc.Create(ctx, models.CreateNotificationInput{
			RecipientID: 3,
			Type:        models.NotificationSystem,
			Title:       "Update",
			Message:     fmt.Sprintf("update %d", i),
		})
		require.NoError(t, err)
	}

	res, err := svc.MarkAllRead(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(7), res.MarkedCount)
	assert.Equal(t, int64(0), res.UnreadCount)

	stats, err := svc.Stats(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, stats.Read)
	assert.Equal(t, 0, stats.Unread)
}

func TestNotificationService_Delete(t *testing.T) {
	svc, _, _ := newNotificationFixture(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		n, err := svc.Create(ctx, models.CreateNotificationInput{
			RecipientID: 2,
			Type:        models.NotificationSystem,
			Title:       "Update",
			Message:     fmt.Sprintf("update %d", i),
		})
		require.NoError(t, err)
		ids = append(ids, n.ID.Hex())
	}

	// Read one, then delete it together with an unread one: the unread
	// count must be recomputed from what remains.
	_, err := svc.MarkRead(ctx, 2, ids[0])
	require.NoError(t, err)

	res, err := svc.Delete(ctx, 2, ids[0], ids[1])
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.DeletedCount)
	assert.Equal(t, int64(3), res.UnreadCount)

	stats, err := svc.Stats(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 3, stats.Unread)
}

func TestNotificationService_List(t *testing.T) {
	svc, _, _ := newNotificationFixture(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		notifType := models.NotificationSystem
		if i%5 == 0 {
			notifType = models.NotificationLikePost
		}
		_, err := svc.Create(ctx, models.CreateNotificationInput{
			RecipientID: 2,
			Type:        notifType,
			Title:       "Update",
			Message:     fmt.Sprintf("update %d", i),
			SenderID:    1,
		})
		require.NoError(t, err)
	}

	t.Run("default pagination", func(t *testing.T) {
		list, err := svc.List(ctx, 2, NotificationListOptions{})
		require.NoError(t, err)
		assert.Len(t, list.Notifications, defaultNotificationLimit)
		assert.Equal(t, int64(25), list.Pagination.TotalItems)
		assert.Equal(t, 2, list.Pagination.TotalPages)
		assert.True(t, list.Pagination.HasNextPage)
		assert.False(t, list.Pagination.HasPreviousPage)
		assert.Equal(t, "update 24", list.Notifications[0].Message, "newest first")
	})

	t.Run("sender enrichment", func(t *testing.T) {
		list, err := svc.List(ctx, 2, NotificationListOptions{Limit: 1})
		require.NoError(t, err)
		require.Len(t, list.Notifications, 1)
		require.NotNil(t, list.Notifications[0].Sender)
		assert.Equal(t, "alice", list.Notifications[0].Sender.Username)
	})

	t.Run("type filter", func(t *testing.T) {
		list, err := svc.List(ctx, 2, NotificationListOptions{
			Types: []models.NotificationType{models.NotificationLikePost},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5), list.Pagination.TotalItems)
	})

	t.Run("unread only after partial read", func(t *testing.T) {
		first, err := svc.List(ctx, 2, NotificationListOptions{Limit: 5})
		require.NoError(t, err)
		var ids []string
		for _, n := range first.Notifications {
			ids = append(ids, n.ID.Hex())
		}
		_, err = svc.MarkRead(ctx, 2, ids...)
		require.NoError(t, err)

		list, err := svc.List(ctx, 2, NotificationListOptions{UnreadOnly: true, Limit: maxNotificationLimit})
		require.NoError(t, err)
		assert.Equal(t, int64(20), list.Pagination.TotalItems)
		assert.Equal(t, int64(20), list.UnreadCount)
	})

	t.Run("limit clamped to maximum", func(t *testing.T) {
		list, err := svc.List(ctx, 2, NotificationListOptions{Limit: 500})
		require.NoError(t, err)
		assert.Equal(t, maxNotificationLimit, list.Pagination.ItemsPerPage)
	})

	t.Run("negative page rejected", func(t *testing.T) {
		_, err := svc.List(ctx, 2, NotificationListOptions{Page: -1})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("unknown type filter rejected", func(t *testing.T) {
		_, err := svc.List(ctx, 2, NotificationListOptions{
			Types: []models.NotificationType{"poke"},
		})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.List(ctx, 99, NotificationListOptions{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestNotificationService_CreateBulk(t *testing.T) {
	svc, _, _ := newNotificationFixture(t)
	ctx := context.Background()

	created := svc.CreateBulk(ctx, []models.CreateNotificationInput{
		{RecipientID: 2, Type: models.NotificationSystem, Title: "A", Message: "a"},
		{RecipientID: 3, Type: models.NotificationSystem, Title: "B", Message: "b"},
		{RecipientID: 2, Type: "poke", Title: "C", Message: "c"},             // invalid type, filtered
		{RecipientID: 2, Type: models.NotificationFollow, Title: "D", Message: "d", SenderID: 2}, // self, filtered
		{RecipientID: 99, Type: models.NotificationSystem, Title: "E", Message: "e"},             // unknown recipient, skipped
	})

	require.Len(t, created, 2)
	assert.Equal(t, uint(2), created[0].RecipientID)
	assert.Equal(t, uint(3), created[1].RecipientID)
}

func TestNotificationService_Stats(t *testing.T) {
	svc, _, _ := newNotificationFixture(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		notifType := models.NotificationSystem
		if i < 3 {
			notifType = models.NotificationLikePost
		}
		_, err := svc.Create(ctx, models.CreateNotificationInput{
			RecipientID: 2,
			Type:        notifType,
			Title:       "Update",
			Message:     fmt.Sprintf("update %d", i),
		})
		require.NoError(t, err)
	}

	stats, err := svc.Stats(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 8, stats.Total)
	assert.Equal(t, 8, stats.Unread)
	assert.Equal(t, 0, stats.Read)
	assert.Equal(t, 3, stats.ByType[models.NotificationLikePost])
	assert.Equal(t, 5, stats.ByType[models.NotificationSystem])
	assert.Len(t, stats.Recent, statsRecentSize)
	assert.Equal(t, "update 7", stats.Recent[0].Message)
}

func TestNotificationService_Types(t *testing.T) {
	svc, _, _ := newNotificationFixture(t)

	metas := svc.Types()
	require.Len(t, metas, 10)

	seen := make(map[models.NotificationType]bool)
	for _, m := range metas {
		assert.NotEmpty(t, m.Label)
		seen[m.Type] = true
	}
	assert.True(t, seen[models.NotificationLikePost])
	assert.True(t, seen[models.NotificationShare])
	assert.True(t, seen[models.NotificationPostPublished])
}
