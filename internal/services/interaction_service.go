package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/wavelink-app/backend/internal/models"
	"github.com/wavelink-app/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
)

// ContentKind selects the target of a like toggle.
type ContentKind string

const (
	ContentKindPost    ContentKind = "post"
	ContentKindComment ContentKind = "comment"
)

// Trending score weights. A share carries the most signal, a raw view the
// least.
const (
	likeWeight    = 3
	commentWeight = 5
	shareWeight   = 7
	viewWeight    = 1
)

// LikeResult reports the state after a like toggle.
type LikeResult struct {
	Action    string `json:"action"` // "liked" or "unliked"
	IsLiked   bool   `json:"is_liked"`
	LikeCount int    `json:"like_count"`
}

// BookmarkResult reports the state after a bookmark toggle.
type BookmarkResult struct {
	Action        string `json:"action"` // "bookmarked" or "unbookmarked"
	IsBookmarked  bool   `json:"is_bookmarked"`
	BookmarkCount int64  `json:"bookmark_count"`
}

// ShareResult reports the share counter after appending a share.
type ShareResult struct {
	ShareCount int `json:"share_count"`
}

// ViewResult reports the view counter after recording a view.
type ViewResult struct {
	ViewCount int `json:"view_count"`
}

// BulkOutcome is the per-id result of a bulk operation. One failing id
// never aborts the rest of the batch.
type BulkOutcome struct {
	ID     string `json:"id"`
	OK     bool   `json:"ok"`
	Action string `json:"action,omitempty"`
	Error  string `json:"error,omitempty"`
}

// TrendingPost pairs a post with its computed trending score.
type TrendingPost struct {
	Post  models.Post `json:"post"`
	Score int         `json:"score"`
}

// InteractionService maintains idempotent actor-to-content relations and
// originates notification fan-out on state-introducing transitions. Every
// toggle is a single atomic storage update; there is no read-check-act
// window for concurrent toggles to race through.
type InteractionService struct {
	posts     repositories.PostRepository
	comments  repositories.CommentRepository
	users     repositories.UserRepository
	bookmarks repositories.BookmarkRepository
	reports   repositories.ReportRepository
	notifier  *NotificationService
	logger    *slog.Logger
}

// NewInteractionService creates an InteractionService with its injected
// repositories and the notification engine used for fan-out.
func NewInteractionService(
	postRepo repositories.PostRepository,
	commentRepo repositories.CommentRepository,
	userRepo repositories.UserRepository,
	bookmarkRepo repositories.BookmarkRepository,
	reportRepo repositories.ReportRepository,
	notifier *NotificationService,
	logger *slog.Logger,
) *InteractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InteractionService{
		posts:     postRepo,
		comments:  commentRepo,
		users:     userRepo,
		bookmarks: bookmarkRepo,
		reports:   reportRepo,
		notifier:  notifier,
		logger:    logger,
	}
}

// ToggleLike flips the actor's membership in the target's likers set and
// reports the resulting state. A "liked" transition on someone else's
// content fans out a like_post/like_comment notification to the author;
// unliking never retracts one.
func (s *InteractionService) ToggleLike(ctx context.Context, actorID uint, targetID string, kind ContentKind) (*LikeResult, error) {
	actor, err := s.users.GetUserByID(actorID)
	if err != nil {
		return nil, err
	}

	switch kind {
	case ContentKindPost:
		return s.togglePostLike(ctx, actor, targetID)
	case ContentKindComment:
		return s.toggleCommentLike(ctx, actor, targetID)
	default:
		return nil, fmt.Errorf("%w: unknown content kind %q", ErrInvalidArgument, kind)
	}
}

func (s *InteractionService) togglePostLike(ctx context.Context, actor *models.User, postID string) (*LikeResult, error) {
	post, ok, err := s.posts.AddLiker(ctx, postID, actor.ID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if ok {
		s.fanOut(ctx, models.CreateNotificationInput{
			RecipientID: post.AuthorID,
			Type:        models.NotificationLikePost,
			Title:       "Post liked",
			Message:     actor.Name + " liked your post",
			SenderID:    actor.ID,
			RelatedID:   post.ID.Hex(),
			RelatedType: "post",
		})
		return &LikeResult{Action: "liked", IsLiked: true, LikeCount: post.LikesCount}, nil
	}

	post, ok, err = s.posts.RemoveLiker(ctx, postID, actor.ID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if ok {
		return &LikeResult{Action: "unliked", IsLiked: false, LikeCount: post.LikesCount}, nil
	}

	// Neither half matched: the post is missing, or a concurrent toggle won
	// the race. Report the current state either way.
	post, err = s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	isLiked := containsID(post.Likers, actor.ID)
	action := "unliked"
	if isLiked {
		action = "liked"
	}
	return &LikeResult{Action: action, IsLiked: isLiked, LikeCount: post.LikesCount}, nil
}

func (s *InteractionService) toggleCommentLike(ctx context.Context, actor *models.User, commentID string) (*LikeResult, error) {
	comment, ok, err := s.comments.AddLiker(ctx, commentID, actor.ID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if ok {
		s.fanOut(ctx, models.CreateNotificationInput{
			RecipientID: comment.AuthorID,
			Type:        models.NotificationLikeComment,
			Title:       "Comment liked",
			Message:     actor.Name + " liked your comment",
			SenderID:    actor.ID,
			RelatedID:   comment.ID.Hex(),
			RelatedType: "comment",
		})
		return &LikeResult{Action: "liked", IsLiked: true, LikeCount: comment.LikesCount}, nil
	}

	comment, ok, err = s.comments.RemoveLiker(ctx, commentID, actor.ID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if ok {
		return &LikeResult{Action: "unliked", IsLiked: false, LikeCount: comment.LikesCount}, nil
	}

	comment, err = s.comments.GetCommentByID(ctx, commentID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	isLiked := containsID(comment.Likers, actor.ID)
	action := "unliked"
	if isLiked {
		action = "liked"
	}
	return &LikeResult{Action: action, IsLiked: isLiked, LikeCount: comment.LikesCount}, nil
}

// ToggleBookmark flips the (actor, post) bookmark relation record. The post
// counter is adjusted alongside, but the authoritative bookmark count is
// always derived from the relation records.
func (s *InteractionService) ToggleBookmark(ctx context.Context, actorID uint, postID string) (*BookmarkResult, error) {
	if _, err := s.users.GetUserByID(actorID); err != nil {
		return nil, err
	}
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return nil, mapRepoErr(err)
	}

	deleted, err := s.bookmarks.DeleteBookmark(actorID, postID)
	if err != nil {
		return nil, err
	}
	if deleted {
		if err := s.posts.DecrementBookmarksCount(ctx, postID); err != nil {
			// Counter drift here is degraded state, reconciled from the
			// relation records by the periodic sweep.
			s.logger.WarnContext(ctx, "failed to decrement bookmark counter",
				slog.String("post_id", postID), slog.Any("error", err))
		}
		count, err := s.bookmarks.CountByPostID(postID)
		if err != nil {
			return nil, err
		}
		return &BookmarkResult{Action: "unbookmarked", IsBookmarked: false, BookmarkCount: count}, nil
	}

	created, err := s.bookmarks.CreateBookmark(&models.Bookmark{UserID: actorID, PostID: postID})
	if err != nil {
		return nil, err
	}
	if created {
		if err := s.posts.IncrementBookmarksCount(ctx, postID); err != nil {
			s.logger.WarnContext(ctx, "failed to increment bookmark counter",
				slog.String("post_id", postID), slog.Any("error", err))
		}
	}
	count, err := s.bookmarks.CountByPostID(postID)
	if err != nil {
		return nil, err
	}
	return &BookmarkResult{Action: "bookmarked", IsBookmarked: true, BookmarkCount: count}, nil
}

// SharePost appends to the post's share log. Shares are monotonic events,
// not toggles; every call increments the counter. The author is notified
// unless sharing their own post.
func (s *InteractionService) SharePost(ctx context.Context, actorID uint, postID string, platform models.SharePlatform, customMessage string) (*ShareResult, error) {
	actor, err := s.users.GetUserByID(actorID)
	if err != nil {
		return nil, err
	}
	if !models.ValidSharePlatform(platform) {
		return nil, fmt.Errorf("%w: unknown share platform %q", ErrInvalidArgument, platform)
	}

	share := models.ShareRecord{
		ID:       uuid.NewString(),
		UserID:   actor.ID,
		Platform: platform,
		Message:  customMessage,
		SharedAt: time.Now(),
	}
	post, err := s.posts.AppendShare(ctx, postID, share)
	if err != nil {
		return nil, mapRepoErr(err)
	}

	s.fanOut(ctx, models.CreateNotificationInput{
		RecipientID: post.AuthorID,
		Type:        models.NotificationShare,
		Title:       "Post shared",
		Message:     actor.Name + " shared your post",
		SenderID:    actor.ID,
		RelatedID:   post.ID.Hex(),
		RelatedType: "post",
		Metadata:    map[string]interface{}{"platform": string(platform)},
	})
	return &ShareResult{ShareCount: post.SharesCount}, nil
}

// RecordView appends to the post's view log. actorID 0 records an anonymous
// view. Authors viewing their own post are silently ignored: no append, no
// increment, no notification.
func (s *InteractionService) RecordView(ctx context.Context, actorID uint, postID string, metadata map[string]interface{}) (*ViewResult, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if actorID != 0 && actorID == post.AuthorID {
		return &ViewResult{ViewCount: post.ViewsCount}, nil
	}

	view := models.ViewRecord{
		ID:       uuid.NewString(),
		UserID:   actorID,
		ViewedAt: time.Now(),
	}
	if len(metadata) > 0 {
		view.Metadata = bson.M(metadata)
	}
	post, err = s.posts.AppendView(ctx, postID, view)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return &ViewResult{ViewCount: post.ViewsCount}, nil
}

// ReportContent files an immutable moderation report against a post,
// comment or user. Reports never touch counters and never notify anyone.
func (s *InteractionService) ReportContent(ctx context.Context, reporterID uint, targetID string, targetType models.ReportTargetType, reason, description string) (string, error) {
	if _, err := s.users.GetUserByID(reporterID); err != nil {
		return "", err
	}
	if !models.ValidReportTarget(targetType) {
		return "", fmt.Errorf("%w: unknown report target type %q", ErrInvalidArgument, targetType)
	}
	if reason == "" {
		return "", fmt.Errorf("%w: report reason is required", ErrInvalidArgument)
	}

	switch targetType {
	case models.ReportTargetPost:
		if _, err := s.posts.GetPostByID(ctx, targetID); err != nil {
			return "", mapRepoErr(err)
		}
	case models.ReportTargetComment:
		if _, err := s.comments.GetCommentByID(ctx, targetID); err != nil {
			return "", mapRepoErr(err)
		}
	case models.ReportTargetUser:
		userID, err := strconv.ParseUint(targetID, 10, 32)
		if err != nil {
			return "", fmt.Errorf("%w: %q is not a valid user id", ErrInvalidArgument, targetID)
		}
		if _, err := s.users.GetUserByID(uint(userID)); err != nil {
			return "", err
		}
	}

	report := &models.Report{
		ID:          uuid.NewString(),
		ReporterID:  reporterID,
		TargetID:    targetID,
		TargetType:  targetType,
		Reason:      reason,
		Description: description,
		CreatedAt:   time.Now(),
	}
	if err := s.reports.CreateReport(report); err != nil {
		return "", err
	}
	return report.ID, nil
}

// TrendingScore is the weighted interaction score used to rank posts:
// 3·likes + 5·comments + 7·shares + 1·views.
func TrendingScore(post *models.Post) int {
	return likeWeight*post.LikesCount +
		commentWeight*post.CommentsCount +
		shareWeight*post.SharesCount +
		viewWeight*post.ViewsCount
}

// EngagementRate is (likes+comments+shares)/views as a percentage, rounded
// to two decimals. Zero views yields zero rather than a division error.
func EngagementRate(post *models.Post) float64 {
	if post.ViewsCount == 0 {
		return 0
	}
	engagements := post.LikesCount + post.CommentsCount + post.SharesCount
	rate := float64(engagements) / float64(post.ViewsCount) * 100
	return math.Round(rate*100) / 100
}

// TrendingPosts ranks published posts created within the window by trending
// score, highest first. The sort is stable, so ties keep storage order.
func (s *InteractionService) TrendingPosts(ctx context.Context, window time.Duration, limit int) ([]TrendingPost, error) {
	if window <= 0 {
		return nil, fmt.Errorf("%w: trending window must be positive", ErrInvalidArgument)
	}

	posts, err := s.posts.ListPublishedSince(ctx, time.Now().Add(-window), 0)
	if err != nil {
		return nil, err
	}

	ranked := make([]TrendingPost, len(posts))
	for i, p := range posts {
		ranked[i] = TrendingPost{Post: p, Score: TrendingScore(&p)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// BulkLike applies the like half of the toggle to each post id
// independently. Already-liked posts are reported as no-ops, and a failure
// for one id never aborts the rest.
func (s *InteractionService) BulkLike(ctx context.Context, actorID uint, postIDs []string) ([]BulkOutcome, error) {
	actor, err := s.users.GetUserByID(actorID)
	if err != nil {
		return nil, err
	}

	outcomes := make([]BulkOutcome, 0, len(postIDs))
	for _, id := range postIDs {
		post, ok, err := s.posts.AddLiker(ctx, id, actor.ID)
		if err != nil {
			outcomes = append(outcomes, BulkOutcome{ID: id, Error: mapRepoErr(err).Error()})
			continue
		}
		if !ok {
			if _, err := s.posts.GetPostByID(ctx, id); err != nil {
				outcomes = append(outcomes, BulkOutcome{ID: id, Error: mapRepoErr(err).Error()})
				continue
			}
			outcomes = append(outcomes, BulkOutcome{ID: id, OK: true, Action: "already_liked"})
			continue
		}
		s.fanOut(ctx, models.CreateNotificationInput{
			RecipientID: post.AuthorID,
			Type:        models.NotificationLikePost,
			Title:       "Post liked",
			Message:     actor.Name + " liked your post",
			SenderID:    actor.ID,
			RelatedID:   post.ID.Hex(),
			RelatedType: "post",
		})
		outcomes = append(outcomes, BulkOutcome{ID: id, OK: true, Action: "liked"})
	}
	return outcomes, nil
}

// BulkUnlike applies the unlike half of the toggle per id.
func (s *InteractionService) BulkUnlike(ctx context.Context, actorID uint, postIDs []string) ([]BulkOutcome, error) {
	if _, err := s.users.GetUserByID(actorID); err != nil {
		return nil, err
	}

	outcomes := make([]BulkOutcome, 0, len(postIDs))
	for _, id := range postIDs {
		_, ok, err := s.posts.RemoveLiker(ctx, id, actorID)
		if err != nil {
			outcomes = append(outcomes, BulkOutcome{ID: id, Error: mapRepoErr(err).Error()})
			continue
		}
		if !ok {
			if _, err := s.posts.GetPostByID(ctx, id); err != nil {
				outcomes = append(outcomes, BulkOutcome{ID: id, Error: mapRepoErr(err).Error()})
				continue
			}
			outcomes = append(outcomes, BulkOutcome{ID: id, OK: true, Action: "not_liked"})
			continue
		}
		outcomes = append(outcomes, BulkOutcome{ID: id, OK: true, Action: "unliked"})
	}
	return outcomes, nil
}

// BulkBookmark bookmarks each post id independently.
func (s *InteractionService) BulkBookmark(ctx context.Context, actorID uint, postIDs []string) ([]BulkOutcome, error) {
	if _, err := s.users.GetUserByID(actorID); err != nil {
		return nil, err
	}

	outcomes := make([]BulkOutcome, 0, len(postIDs))
	for _, id := range postIDs {
		if _, err := s.posts.GetPostByID(ctx, id); err != nil {
			outcomes = append(outcomes, BulkOutcome{ID: id, Error: mapRepoErr(err).Error()})
			continue
		}
		created, err := s.bookmarks.CreateBookmark(&models.Bookmark{UserID: actorID, PostID: id})
		if err != nil {
			outcomes = append(outcomes, BulkOutcome{ID: id, Error: err.Error()})
			continue
		}
		if !created {
			outcomes = append(outcomes, BulkOutcome{ID: id, OK: true, Action: "already_bookmarked"})
			continue
		}
		if err := s.posts.IncrementBookmarksCount(ctx, id); err != nil {
			s.logger.WarnContext(ctx, "failed to increment bookmark counter",
				slog.String("post_id", id), slog.Any("error", err))
		}
		outcomes = append(outcomes, BulkOutcome{ID: id, OK: true, Action: "bookmarked"})
	}
	return outcomes, nil
}

// BulkUnbookmark removes each bookmark relation independently.
func (s *InteractionService) BulkUnbookmark(ctx context.Context, actorID uint, postIDs []string) ([]BulkOutcome, error) {
	if _, err := s.users.GetUserByID(actorID); err != nil {
		return nil, err
	}

	outcomes := make([]BulkOutcome, 0, len(postIDs))
	for _, id := range postIDs {
		deleted, err := s.bookmarks.DeleteBookmark(actorID, id)
		if err != nil {
			outcomes = append(outcomes, BulkOutcome{ID: id, Error: err.Error()})
			continue
		}
		if !deleted {
			outcomes = append(outcomes, BulkOutcome{ID: id, OK: true, Action: "not_bookmarked"})
			continue
		}
		if err := s.posts.DecrementBookmarksCount(ctx, id); err != nil {
			s.logger.WarnContext(ctx, "failed to decrement bookmark counter",
				slog.String("post_id", id), slog.Any("error", err))
		}
		outcomes = append(outcomes, BulkOutcome{ID: id, OK: true, Action: "unbookmarked"})
	}
	return outcomes, nil
}

// fanOut creates a notification best-effort. The interaction itself has
// already committed; a failed fan-out is logged, never surfaced. The
// notification engine handles self-notification suppression, but callers
// still pass the real author so the suppression stays in one place.
func (s *InteractionService) fanOut(ctx context.Context, input models.CreateNotificationInput) {
	if s.notifier == nil {
		return
	}
	if _, err := s.notifier.Create(ctx, input); err != nil {
		s.logger.WarnContext(ctx, "notification fan-out failed",
			slog.Uint64("recipient_id", uint64(input.RecipientID)),
			slog.String("type", string(input.Type)),
			slog.Any("error", err),
		)
	}
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
