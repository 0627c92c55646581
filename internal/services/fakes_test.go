package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/wavelink-app/backend/internal/models"
	"github.com/wavelink-app/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repository fakes. They mirror the atomic semantics of the real
// Mongo/Postgres implementations closely enough for the engines to be
// exercised without a database.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uint]models.User
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) CreateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %d", repositories.ErrNotFound, id)
	}
	return &u, nil
}

func (r *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%w: user with email %s", repositories.ErrNotFound, email)
}

func (r *fakeUserRepo) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.FirebaseUID == firebaseUID {
			u := u
			return &u, nil
		}
	}
	return nil, fmt.Errorf("%w: user with firebase uid %s", repositories.ErrNotFound, firebaseUID)
}

func (r *fakeUserRepo) GetUsersByIDs(ids []uint) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []models.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			users = append(users, u)
		}
	}
	return users, nil
}

func (r *fakeUserRepo) UpdateUser(user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) SearchUsers(query string) ([]models.User, error) {
	return nil, nil
}

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[string]*models.Post
	order []string
}

func newFakePostRepo(posts ...*models.Post) *fakePostRepo {
	r := &fakePostRepo{posts: make(map[string]*models.Post)}
	for _, p := range posts {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		if p.Status == "" {
			p.Status = models.PostStatusPublished
		}
		r.posts[p.ID.Hex()] = p
		r.order = append(r.order, p.ID.Hex())
	}
	return r
}

func validHex(id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return fmt.Errorf("%w: %q is not a valid post id", repositories.ErrInvalidID, id)
	}
	return nil
}

func (r *fakePostRepo) CreatePost(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	r.posts[post.ID.Hex()] = post
	r.order = append(r.order, post.ID.Hex())
	return nil
}

func (r *fakePostRepo) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	if err := validHex(id); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, fmt.Errorf("%w: post %s", repositories.ErrNotFound, id)
	}
	cp := *p
	return &cp, nil
}

func (r *fakePostRepo) GetPostsByAuthorID(ctx context.Context, authorID uint, skip, limit int64) ([]models.Post, error) {
	return nil, nil
}

func (r *fakePostRepo) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	return nil, nil
}

func (r *fakePostRepo) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	return nil
}

func (r *fakePostRepo) DeletePost(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.posts, id)
	return nil
}

func (r *fakePostRepo) AddLiker(ctx context.Context, postID string, userID uint) (*models.Post, bool, error) {
	if err := validHex(postID); err != nil {
		return nil, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return nil, false, nil
	}
	for _, id := range p.Likers {
		if id == userID {
			return nil, false, nil
		}
	}
	p.Likers = append(p.Likers, userID)
	p.LikesCount++
	cp := *p
	return &cp, true, nil
}

func (r *fakePostRepo) RemoveLiker(ctx context.Context, postID string, userID uint) (*models.Post, bool, error) {
	if err := validHex(postID); err != nil {
		return nil, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return nil, false, nil
	}
	for i, id := range p.Likers {
		if id == userID {
			p.Likers = append(p.Likers[:i], p.Likers[i+1:]...)
			if p.LikesCount > 0 {
				p.LikesCount--
			}
			cp := *p
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

func (r *fakePostRepo) AppendShare(ctx context.Context, postID string, share models.ShareRecord) (*models.Post, error) {
	if err := validHex(postID); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return nil, fmt.Errorf("%w: post %s", repositories.ErrNotFound, postID)
	}
	p.Shares = append(p.Shares, share)
	p.SharesCount++
	cp := *p
	return &cp, nil
}

func (r *fakePostRepo) AppendView(ctx context.Context, postID string, view models.ViewRecord) (*models.Post, error) {
	if err := validHex(postID); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return nil, fmt.Errorf("%w: post %s", repositories.ErrNotFound, postID)
	}
	p.Views = append(p.Views, view)
	p.ViewsCount++
	cp := *p
	return &cp, nil
}

func (r *fakePostRepo) IncrementBookmarksCount(ctx context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[postID]; ok {
		p.BookmarksCount++
	}
	return nil
}

func (r *fakePostRepo) DecrementBookmarksCount(ctx context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[postID]; ok && p.BookmarksCount > 0 {
		p.BookmarksCount--
	}
	return nil
}

func (r *fakePostRepo) IncrementCommentsCount(ctx context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[postID]; ok {
		p.CommentsCount++
	}
	return nil
}

func (r *fakePostRepo) DecrementCommentsCount(ctx context.Context, postID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.posts[postID]; ok && p.CommentsCount > 0 {
		p.CommentsCount--
	}
	return nil
}

func (r *fakePostRepo) ListPublishedSince(ctx context.Context, since time.Time, limit int64) ([]models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var posts []models.Post
	for _, id := range r.order {
		p, ok := r.posts[id]
		if !ok {
			continue
		}
		if p.Status != models.PostStatusPublished || p.CreatedAt.Before(since) {
			continue
		}
		posts = append(posts, *p)
		if limit > 0 && int64(len(posts)) == limit {
			break
		}
	}
	return posts, nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[string]*models.Comment
}

func newFakeCommentRepo(comments ...*models.Comment) *fakeCommentRepo {
	r := &fakeCommentRepo{comments: make(map[string]*models.Comment)}
	for _, c := range comments {
		if c.ID.IsZero() {
			c.ID = primitive.NewObjectID()
		}
		r.comments[c.ID.Hex()] = c
	}
	return r
}

func (r *fakeCommentRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	r.comments[comment.ID.Hex()] = comment
	return nil
}

func (r *fakeCommentRepo) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	if err := validHex(id); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, fmt.Errorf("%w: comment %s", repositories.ErrNotFound, id)
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCommentRepo) GetCommentsByPostID(ctx context.Context, postID string, skip, limit int64) ([]models.Comment, error) {
	return nil, nil
}

func (r *fakeCommentRepo) UpdateComment(ctx context.Context, id string, content string) error {
	return nil
}

func (r *fakeCommentRepo) DeleteComment(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.comments, id)
	return nil
}

func (r *fakeCommentRepo) AddLiker(ctx context.Context, commentID string, userID uint) (*models.Comment, bool, error) {
	if err := validHex(commentID); err != nil {
		return nil, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[commentID]
	if !ok {
		return nil, false, nil
	}
	for _, id := range c.Likers {
		if id == userID {
			return nil, false, nil
		}
	}
	c.Likers = append(c.Likers, userID)
	c.LikesCount++
	cp := *c
	return &cp, true, nil
}

func (r *fakeCommentRepo) RemoveLiker(ctx context.Context, commentID string, userID uint) (*models.Comment, bool, error) {
	if err := validHex(commentID); err != nil {
		return nil, false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[commentID]
	if !ok {
		return nil, false, nil
	}
	for i, id := range c.Likers {
		if id == userID {
			c.Likers = append(c.Likers[:i], c.Likers[i+1:]...)
			if c.LikesCount > 0 {
				c.LikesCount--
			}
			cp := *c
			return &cp, true, nil
		}
	}
	return nil, false, nil
}

type fakeBookmarkRepo struct {
	mu        sync.Mutex
	bookmarks map[string]models.Bookmark // "userID:postID"
	nextID    uint
}

func newFakeBookmarkRepo() *fakeBookmarkRepo {
	return &fakeBookmarkRepo{bookmarks: make(map[string]models.Bookmark)}
}

func bookmarkKey(userID uint, postID string) string {
	return fmt.Sprintf("%d:%s", userID, postID)
}

func (r *fakeBookmarkRepo) CreateBookmark(bookmark *models.Bookmark) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := bookmarkKey(bookmark.UserID, bookmark.PostID)
	if _, ok := r.bookmarks[key]; ok {
		return false, nil
	}
	r.nextID++
	bookmark.ID = r.nextID
	bookmark.CreatedAt = time.Now()
	r.bookmarks[key] = *bookmark
	return true, nil
}

func (r *fakeBookmarkRepo) DeleteBookmark(userID uint, postID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := bookmarkKey(userID, postID)
	if _, ok := r.bookmarks[key]; !ok {
		return false, nil
	}
	delete(r.bookmarks, key)
	return true, nil
}

func (r *fakeBookmarkRepo) IsBookmarked(userID uint, postID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.bookmarks[bookmarkKey(userID, postID)]
	return ok, nil
}

func (r *fakeBookmarkRepo) CountByPostID(postID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, b := range r.bookmarks {
		if b.PostID == postID {
			count++
		}
	}
	return count, nil
}

func (r *fakeBookmarkRepo) GetBookmarksByUser(userID uint, page, limit int) ([]models.Bookmark, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var bookmarks []models.Bookmark
	for _, b := range r.bookmarks {
		if b.UserID == userID {
			bookmarks = append(bookmarks, b)
		}
	}
	return bookmarks, int64(len(bookmarks)), nil
}

func (r *fakeBookmarkRepo) GetBookmarkedPostIDs(userID uint, postIDs []string) (map[string]bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[string]bool)
	for _, id := range postIDs {
		if _, ok := r.bookmarks[bookmarkKey(userID, id)]; ok {
			result[id] = true
		}
	}
	return result, nil
}

type fakeReportRepo struct {
	mu      sync.Mutex
	reports []models.Report
}

func newFakeReportRepo() *fakeReportRepo {
	return &fakeReportRepo{}
}

func (r *fakeReportRepo) CreateReport(report *models.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, *report)
	return nil
}

func (r *fakeReportRepo) GetReportsByTarget(targetID string, targetType models.ReportTargetType) ([]models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var reports []models.Report
	for _, rep := range r.reports {
		if rep.TargetID == targetID && rep.TargetType == targetType {
			reports = append(reports, rep)
		}
	}
	return reports, nil
}

func (r *fakeReportRepo) GetReportsByReporter(reporterID uint) ([]models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var reports []models.Report
	for _, rep := range r.reports {
		if rep.ReporterID == reporterID {
			reports = append(reports, rep)
		}
	}
	return reports, nil
}

type fakeNotificationEntry struct {
	notification models.Notification
	seq          int
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	entries []fakeNotificationEntry
	seq     int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

// sortedByRecipient returns the recipient's entries newest-first, with
// insertion order breaking created_at ties the way _id does in Mongo.
func (r *fakeNotificationRepo) sortedByRecipient(recipientID uint) []fakeNotificationEntry {
	var entries []fakeNotificationEntry
	for _, e := range r.entries {
		if e.notification.RecipientID == recipientID {
			entries = append(entries, e)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].notification.CreatedAt, entries[j].notification.CreatedAt
		if !a.Equal(b) {
			return a.After(b)
		}
		return entries[i].seq > entries[j].seq
	})
	return entries
}

func (r *fakeNotificationRepo) Insert(ctx context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	r.seq++
	r.entries = append(r.entries, fakeNotificationEntry{notification: *notification, seq: r.seq})
	return nil
}

func (r *fakeNotificationRepo) TrimToRecent(ctx context.Context, recipientID uint, keep int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sorted := r.sortedByRecipient(recipientID)
	if int64(len(sorted)) <= keep {
		return 0, nil
	}
	evict := make(map[string]bool)
	for _, e := range sorted[keep:] {
		evict[e.notification.ID.Hex()] = true
	}
	var kept []fakeNotificationEntry
	for _, e := range r.entries {
		if !evict[e.notification.ID.Hex()] {
			kept = append(kept, e)
		}
	}
	removed := int64(len(r.entries) - len(kept))
	r.entries = kept
	return removed, nil
}

func matchesOpts(n models.Notification, opts repositories.NotificationListOptions) bool {
	if opts.UnreadOnly && n.IsRead {
		return false
	}
	if len(opts.Types) > 0 {
		found := false
		for _, t := range opts.Types {
			if n.Type == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r *fakeNotificationRepo) ListByRecipient(ctx context.Context, recipientID uint, opts repositories.NotificationListOptions) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var filtered []models.Notification
	for _, e := range r.sortedByRecipient(recipientID) {
		if matchesOpts(e.notification, opts) {
			filtered = append(filtered, e.notification)
		}
	}
	total := int64(len(filtered))

	start := opts.Skip
	if start > total {
		return []models.Notification{}, total, nil
	}
	end := total
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}
	return filtered[start:end], total, nil
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, e := range r.entries {
		if e.notification.RecipientID == recipientID && !e.notification.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(ctx context.Context, recipientID uint, ids []string) (int64, error) {
	for _, id := range ids {
		if _, err := primitive.ObjectIDFromHex(id); err != nil {
			return 0, fmt.Errorf("%w: %q is not a valid notification id", repositories.ErrInvalidID, id)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	var marked int64
	now := time.Now()
	for i := range r.entries {
		n := &r.entries[i].notification
		if n.RecipientID == recipientID && !n.IsRead && idSet[n.ID.Hex()] {
			n.IsRead = true
			n.ReadAt = &now
			marked++
		}
	}
	return marked, nil
}

func (r *fakeNotificationRepo) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var marked int64
	now := time.Now()
	for i := range r.entries {
		n := &r.entries[i].notification
		if n.RecipientID == recipientID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
			marked++
		}
	}
	return marked, nil
}

func (r *fakeNotificationRepo) DeleteByIDs(ctx context.Context, recipientID uint, ids []string) (int64, error) {
	for _, id := range ids {
		if _, err := primitive.ObjectIDFromHex(id); err != nil {
			return 0, fmt.Errorf("%w: %q is not a valid notification id", repositories.ErrInvalidID, id)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	idSet := make(map[string]bool, len(ids))
	for _, id := range ids {
		idSet[id] = true
	}
	var kept []fakeNotificationEntry
	var deleted int64
	for _, e := range r.entries {
		if e.notification.RecipientID == recipientID && idSet[e.notification.ID.Hex()] {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	r.entries = kept
	return deleted, nil
}
