package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

func (s *mongoStore) CreateNotification(ctx context.Context, n *models.Notification) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	if _, err := s.c(colNotifs).InsertOne(ctx, n); err != nil {
		return wrapWrite(err, "duplicate notification")
	}
	return nil
}

// notExpired excludes time-limited notifications that have lapsed.
func notExpired(now time.Time) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"expires_at": bson.M{"$exists": false}},
		bson.M{"expires_at": time.Time{}},
		bson.M{"expires_at": bson.M{"$gt": now}},
	}}
}

func (s *mongoStore) ListNotifications(ctx context.Context, userID primitive.ObjectID, includeRead bool, now time.Time) ([]models.Notification, error) {
	filter := bson.M{"user_id": userID, "$and": bson.A{notExpired(now)}}
	if !includeRead {
		filter["read"] = false
	}
	var out []models.Notification
	err := findAll(ctx, s.c(colNotifs), filter, bson.D{{Key: "created_at", Value: -1}}, &out)
	return out, err
}

func (s *mongoStore) UnreadCount(ctx context.Context, userID primitive.ObjectID, now time.Time) (int64, error) {
	filter := bson.M{"user_id": userID, "read": false, "$and": bson.A{notExpired(now)}}
	n, err := s.c(colNotifs).CountDocuments(ctx, filter)
	if err != nil {
		return 0, apperr.Internal("database error", err)
	}
	return n, nil
}

// MarkNotificationRead is scoped to the owner: another user's
// notification reads as not-found, never as forbidden.
func (s *mongoStore) MarkNotificationRead(ctx context.Context, id, userID primitive.ObjectID, at time.Time) error {
	res, err := s.c(colNotifs).UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"read": true, "read_at": at}},
	)
	if err != nil {
		return apperr.Internal("database error", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("notification not found")
	}
	return nil
}

func (s *mongoStore) MarkAllNotificationsRead(ctx context.Context, userID primitive.ObjectID, at time.Time) error {
	_, err := s.c(colNotifs).UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true, "read_at": at}},
	)
	if err != nil {
		return apperr.Internal("database error", err)
	}
	return nil
}
