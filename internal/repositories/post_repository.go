package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wavelink-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations. Toggle
// primitives (AddLiker/RemoveLiker) carry the membership predicate and the
// counter delta in one atomic update, so a concurrent double toggle by the
// same actor cannot drift the counter away from the set size.
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPostsByAuthorID(ctx context.Context, authorID uint, skip, limit int64) ([]models.Post, error)
	GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	UpdatePost(ctx context.Context, id string, post *models.Post) error
	DeletePost(ctx context.Context, id string) error

	// AddLiker adds userID to the post's likers set and increments
	// likes_count in the same update. Returns the updated post, or ok=false
	// when the user was already a member (or the post vanished).
	AddLiker(ctx context.Context, postID string, userID uint) (*models.Post, bool, error)
	// RemoveLiker removes userID from the likers set and decrements
	// likes_count. Returns ok=false when the user was not a member.
	RemoveLiker(ctx context.Context, postID string, userID uint) (*models.Post, bool, error)

	// AppendShare appends to the share log and increments shares_count.
	AppendShare(ctx context.Context, postID string, share models.ShareRecord) (*models.Post, error)
	// AppendView appends to the view log and increments views_count.
	AppendView(ctx context.Context, postID string, view models.ViewRecord) (*models.Post, error)

	IncrementBookmarksCount(ctx context.Context, postID string) error
	DecrementBookmarksCount(ctx context.Context, postID string) error
	IncrementCommentsCount(ctx context.Context, postID string) error
	DecrementCommentsCount(ctx context.Context, postID string) error

	// ListPublishedSince returns published posts created after the cutoff,
	// in storage order.
	ListPublishedSince(ctx context.Context, since time.Time, limit int64) ([]models.Post, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

func postObjectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q is not a valid post id", ErrInvalidID, id)
	}
	return objID, nil
}

// CreatePost creates a new post in MongoDB
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	post.ID = primitive.NewObjectID()
	post.CreatedAt = time.Now()
	post.UpdatedAt = post.CreatedAt
	if post.Status == "" {
		post.Status = models.PostStatusPublished
	}
	if post.Likers == nil {
		post.Likers = []uint{}
	}
	_, err := r.collection.InsertOne(ctx, post)
	return err
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := postObjectID(id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: post %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &post, nil
}

// GetPostsByAuthorID retrieves posts by a specific user from MongoDB
func (r *MongoPostRepository) GetPostsByAuthorID(ctx context.Context, authorID uint, skip, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"author_id": authorID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetAllPosts retrieves all posts from MongoDB with pagination
func (r *MongoPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost updates the mutable content fields of an existing post
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id string, post *models.Post) error {
	objID, err := postObjectID(id)
	if err != nil {
		return err
	}

	post.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"content":    post.Content,
			"image_urls": post.ImageURLs,
			"status":     post.Status,
			"updated_at": post.UpdatedAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: post %s", ErrNotFound, id)
	}
	return nil
}

// DeletePost deletes a post by ID from MongoDB
func (r *MongoPostRepository) DeletePost(ctx context.Context, id string) error {
	objID, err := postObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: post %s", ErrNotFound, id)
	}
	return nil
}

// AddLiker performs the add-if-absent half of the like toggle. The filter
// requires the user to be absent from the likers set, so the $inc can never
// fire twice for the same membership.
func (r *MongoPostRepository) AddLiker(ctx context.Context, postID string, userID uint) (*models.Post, bool, error) {
	objID, err := postObjectID(postID)
	if err != nil {
		return nil, false, err
	}

	filter := bson.M{"_id": objID, "likers": bson.M{"$ne": userID}}
	update := bson.M{
		"$addToSet": bson.M{"likers": userID},
		"$inc":      bson.M{"likes_count": 1},
		"$set":      bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &post, true, nil
}

// RemoveLiker performs the remove-if-present half of the like toggle. The
// membership predicate in the filter guarantees the decrement only applies
// when an element is actually pulled, keeping the counter non-negative.
func (r *MongoPostRepository) RemoveLiker(ctx context.Context, postID string, userID uint) (*models.Post, bool, error) {
	objID, err := postObjectID(postID)
	if err != nil {
		return nil, false, err
	}

	filter := bson.M{"_id": objID, "likers": userID, "likes_count": bson.M{"$gt": 0}}
	update := bson.M{
		"$pull": bson.M{"likers": userID},
		"$inc":  bson.M{"likes_count": -1},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &post, true, nil
}

// AppendShare appends a share record and bumps the counter. Shares are
// monotonic events, so no membership guard is needed.
func (r *MongoPostRepository) AppendShare(ctx context.Context, postID string, share models.ShareRecord) (*models.Post, error) {
	objID, err := postObjectID(postID)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$push": bson.M{"shares": share},
		"$inc":  bson.M{"shares_count": 1},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
		}
		return nil, err
	}
	return &post, nil
}

// AppendView appends a view record and bumps the counter.
func (r *MongoPostRepository) AppendView(ctx context.Context, postID string, view models.ViewRecord) (*models.Post, error) {
	objID, err := postObjectID(postID)
	if err != nil {
		return nil, err
	}

	update := bson.M{
		"$push": bson.M{"views": view},
		"$inc":  bson.M{"views_count": 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: post %s", ErrNotFound, postID)
		}
		return nil, err
	}
	return &post, nil
}

// IncrementBookmarksCount increments the bookmarks count of a post
func (r *MongoPostRepository) IncrementBookmarksCount(ctx context.Context, postID string) error {
	objID, err := postObjectID(postID)
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"bookmarks_count": 1}})
	return err
}

// DecrementBookmarksCount decrements the bookmarks count of a post,
// floored at zero.
func (r *MongoPostRepository) DecrementBookmarksCount(ctx context.Context, postID string) error {
	objID, err := postObjectID(postID)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": objID, "bookmarks_count": bson.M{"$gt": 0}}
	_, err = r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"bookmarks_count": -1}})
	return err
}

// IncrementCommentsCount increments the comments count of a post
func (r *MongoPostRepository) IncrementCommentsCount(ctx context.Context, postID string) error {
	objID, err := postObjectID(postID)
	if err != nil {
		return err
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$inc": bson.M{"comments_count": 1}})
	return err
}

// DecrementCommentsCount decrements the comments count of a post,
// floored at zero.
func (r *MongoPostRepository) DecrementCommentsCount(ctx context.Context, postID string) error {
	objID, err := postObjectID(postID)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": objID, "comments_count": bson.M{"$gt": 0}}
	_, err = r.collection.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"comments_count": -1}})
	return err
}

// ListPublishedSince returns published posts created after the cutoff.
// Storage order is preserved so trending ranking keeps a stable tie order.
func (r *MongoPostRepository) ListPublishedSince(ctx context.Context, since time.Time, limit int64) ([]models.Post, error) {
	filter := bson.M{
		"status":     models.PostStatusPublished,
		"created_at": bson.M{"$gte": since},
	}
	findOptions := options.Find()
	if limit > 0 {
		findOptions.SetLimit(limit)
	}
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.Post
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}
