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

// CommentRepository defines the interface for comment data operations.
// Comments carry the same likers-set toggle primitives as posts.
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	GetCommentsByPostID(ctx context.Context, postID string, skip, limit int64) ([]models.Comment, error)
	UpdateComment(ctx context.Context, id string, content string) error
	DeleteComment(ctx context.Context, id string) error

	AddLiker(ctx context.Context, commentID string, userID uint) (*models.Comment, bool, error)
	RemoveLiker(ctx context.Context, commentID string, userID uint) (*models.Comment, bool, error)
}

// MongoCommentRepository implements CommentRepository for MongoDB
type MongoCommentRepository struct {
	collection *mongo.Collection
}

// NewMongoCommentRepository creates a new MongoCommentRepository
func NewMongoCommentRepository(db *mongo.Database) *MongoCommentRepository {
	return &MongoCommentRepository{collection: db.Collection("comments")}
}

func commentObjectID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q is not a valid comment id", ErrInvalidID, id)
	}
	return objID, nil
}

// CreateComment creates a new comment in MongoDB
func (r *MongoCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt = time.Now()
	comment.UpdatedAt = comment.CreatedAt
	if comment.Likers == nil {
		comment.Likers = []uint{}
	}
	_, err := r.collection.InsertOne(ctx, comment)
	return err
}

// GetCommentByID retrieves a comment by ID from MongoDB
func (r *MongoCommentRepository) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	objID, err := commentObjectID(id)
	if err != nil {
		return nil, err
	}

	var comment models.Comment
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: comment %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &comment, nil
}

// GetCommentsByPostID retrieves comments for a post, oldest first
func (r *MongoCommentRepository) GetCommentsByPostID(ctx context.Context, postID string, skip, limit int64) ([]models.Comment, error) {
	objID, err := postObjectID(postID)
	if err != nil {
		return nil, err
	}

	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"post_id": objID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var comments []models.Comment
	if err = cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// UpdateComment updates the content of an existing comment
func (r *MongoCommentRepository) UpdateComment(ctx context.Context, id string, content string) error {
	objID, err := commentObjectID(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{"content": content, "updated_at": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: comment %s", ErrNotFound, id)
	}
	return nil
}

// DeleteComment deletes a comment by ID from MongoDB
func (r *MongoCommentRepository) DeleteComment(ctx context.Context, id string) error {
	objID, err := commentObjectID(id)
	if err != nil {
		return err
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: comment %s", ErrNotFound, id)
	}
	return nil
}

// AddLiker adds userID to the comment's likers set, incrementing
// likes_count in the same atomic update.
func (r *MongoCommentRepository) AddLiker(ctx context.Context, commentID string, userID uint) (*models.Comment, bool, error) {
	objID, err := commentObjectID(commentID)
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

	var comment models.Comment
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &comment, true, nil
}

// RemoveLiker removes userID from the comment's likers set, decrementing
// likes_count in the same atomic update.
func (r *MongoCommentRepository) RemoveLiker(ctx context.Context, commentID string, userID uint) (*models.Comment, bool, error) {
	objID, err := commentObjectID(commentID)
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

	var comment models.Comment
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&comment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &comment, true, nil
}
