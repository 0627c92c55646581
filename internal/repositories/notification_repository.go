package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/wavelink-app/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationListOptions filters a recipient's notification log.
type NotificationListOptions struct {
	Skip       int64
	Limit      int64
	UnreadOnly bool
	Types      []models.NotificationType
}

// NotificationRepository is an append-only per-recipient notification store.
// The bounded-log invariant (newest 100 per recipient) is enforced by
// calling TrimToRecent after each insert; unread counts are always computed
// by query, never kept as a denormalized field.
type NotificationRepository interface {
	Insert(ctx context.Context, notification *models.Notification) error
	// TrimToRecent deletes everything but the newest keep entries for the
	// recipient, returning how many were evicted.
	TrimToRecent(ctx context.Context, recipientID uint, keep int64) (int64, error)
	ListByRecipient(ctx context.Context, recipientID uint, opts NotificationListOptions) ([]models.Notification, int64, error)
	CountUnread(ctx context.Context, recipientID uint) (int64, error)
	// MarkRead flips is_read on the recipient's matching unread entries and
	// returns how many were actually flipped.
	MarkRead(ctx context.Context, recipientID uint, ids []string) (int64, error)
	MarkAllRead(ctx context.Context, recipientID uint) (int64, error)
	DeleteByIDs(ctx context.Context, recipientID uint, ids []string) (int64, error)
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

func notificationObjectIDs(ids []string) ([]primitive.ObjectID, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a valid notification id", ErrInvalidID, id)
		}
		objIDs = append(objIDs, objID)
	}
	return objIDs, nil
}

func recipientFilter(recipientID uint, opts NotificationListOptions) bson.M {
	filter := bson.M{"recipient_id": recipientID}
	if opts.UnreadOnly {
		filter["is_read"] = false
	}
	if len(opts.Types) > 0 {
		filter["type"] = bson.M{"$in": opts.Types}
	}
	return filter
}

// Insert appends a notification to the store.
func (r *MongoNotificationRepository) Insert(ctx context.Context, notification *models.Notification) error {
	if notification.ID.IsZero() {
		notification.ID = primitive.NewObjectID()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// TrimToRecent silently evicts everything older than the recipient's
// newest keep entries.
func (r *MongoNotificationRepository) TrimToRecent(ctx context.Context, recipientID uint, keep int64) (int64, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(keep).
		SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, bson.M{"recipient_id": recipientID}, findOptions)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var overflow []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &overflow); err != nil {
		return 0, err
	}
	if len(overflow) == 0 {
		return 0, nil
	}

	evicted := make([]primitive.ObjectID, len(overflow))
	for i, doc := range overflow {
		evicted[i] = doc.ID
	}
	res, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": evicted}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByRecipient returns a filtered, newest-first page of the recipient's
// log plus the total matching count.
func (r *MongoNotificationRepository) ListByRecipient(ctx context.Context, recipientID uint, opts NotificationListOptions) ([]models.Notification, int64, error) {
	filter := recipientFilter(recipientID, opts)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(opts.Skip)
	if opts.Limit > 0 {
		findOptions.SetLimit(opts.Limit)
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// CountUnread recomputes the unread count from the store.
func (r *MongoNotificationRepository) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipient_id": recipientID, "is_read": false})
}

// MarkRead flips matching unread entries and stamps read_at. The is_read
// predicate in the filter means already-read and unknown ids are no-ops.
func (r *MongoNotificationRepository) MarkRead(ctx context.Context, recipientID uint, ids []string) (int64, error) {
	objIDs, err := notificationObjectIDs(ids)
	if err != nil {
		return 0, err
	}
	if len(objIDs) == 0 {
		return 0, nil
	}

	filter := bson.M{
		"recipient_id": recipientID,
		"_id":          bson.M{"$in": objIDs},
		"is_read":      false,
	}
	update := bson.M{"$set": bson.M{"is_read": true, "read_at": time.Now()}}
	res, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// MarkAllRead marks the recipient's entire log read in one update.
func (r *MongoNotificationRepository) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	filter := bson.M{"recipient_id": recipientID, "is_read": false}
	update := bson.M{"$set": bson.M{"is_read": true, "read_at": time.Now()}}
	res, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// DeleteByIDs removes the recipient's matching entries.
func (r *MongoNotificationRepository) DeleteByIDs(ctx context.Context, recipientID uint, ids []string) (int64, error) {
	objIDs, err := notificationObjectIDs(ids)
	if err != nil {
		return 0, err
	}
	if len(objIDs) == 0 {
		return 0, nil
	}

	filter := bson.M{"recipient_id": recipientID, "_id": bson.M{"$in": objIDs}}
	res, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
