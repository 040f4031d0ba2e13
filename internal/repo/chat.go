package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

// EnsureGroup creates the named group if absent. The upsert makes the
// create-if-absent idempotent regardless of how many callers race.
func (s *mongoStore) EnsureGroup(ctx context.Context, name string, typ models.GroupType) (*models.ChatGroup, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	update := bson.M{
		"$setOnInsert": bson.M{
			"name":       name,
			"type":       typ,
			"created_at": time.Now(),
		},
	}
	var g models.ChatGroup
	if err := s.c(colGroups).FindOneAndUpdate(ctx, bson.M{"name": name}, update, opts).Decode(&g); err != nil {
		return nil, apperr.Internal("database error", err)
	}
	return &g, nil
}

func (s *mongoStore) GetGroupByName(ctx context.Context, name string) (*models.ChatGroup, error) {
	var g models.ChatGroup
	if err := s.c(colGroups).FindOne(ctx, bson.M{"name": name}).Decode(&g); err != nil {
		return nil, wrapFind(err, "group")
	}
	return &g, nil
}

func (s *mongoStore) CreateMessage(ctx context.Context, m *models.Message) error {
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now()
	if _, err := s.c(colMessages).InsertOne(ctx, m); err != nil {
		return wrapWrite(err, "duplicate message")
	}
	return nil
}

func (s *mongoStore) ListMessages(ctx context.Context, f MessageFilter) ([]models.Message, error) {
	filter := bson.M{}
	switch {
	case f.Group != "":
		filter["group"] = f.Group
	case f.Direct:
		filter["group"] = bson.M{"$in": bson.A{nil, ""}}
		filter["$or"] = bson.A{
			bson.M{"sender_id": f.Principal, "recipient_id": f.Other},
			bson.M{"sender_id": f.Other, "recipient_id": f.Principal},
		}
	default:
		// All conversations visible to the principal.
		filter["$or"] = bson.A{
			bson.M{"sender_id": f.Principal},
			bson.M{"recipient_id": f.Principal},
			bson.M{"broadcast": true},
		}
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}
	cur, err := s.c(colMessages).Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.Internal("database error", err)
	}
	defer cur.Close(ctx)
	var out []models.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Internal("database error", err)
	}
	return out, nil
}

// MarkMessageRead records a per-recipient read marker for group contexts.
func (s *mongoStore) MarkMessageRead(ctx context.Context, id, userID primitive.ObjectID) error {
	res, err := s.c(colMessages).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"read_by": userID}},
	)
	if err != nil {
		return apperr.Internal("database error", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("message not found")
	}
	return nil
}

// ClearGroupMessages deletes every message in a group. Invoked by the
// external scheduler for the monthly chat clearing.
func (s *mongoStore) ClearGroupMessages(ctx context.Context, group string) (int64, error) {
	res, err := s.c(colMessages).DeleteMany(ctx, bson.M{"group": group})
	if err != nil {
		return 0, apperr.Internal("database error", err)
	}
	return res.DeletedCount, nil
}

func (s *mongoStore) ListExternalMessages(ctx context.Context, group string, limit int64) ([]models.Message, error) {
	if limit <= 0 {
		limit = 10
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c(colMessages).Find(ctx, bson.M{"group": group, "external": true}, opts)
	if err != nil {
		return nil, apperr.Internal("database error", err)
	}
	defer cur.Close(ctx)
	var out []models.Message
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Internal("database error", err)
	}
	return out, nil
}
