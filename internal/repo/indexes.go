package repo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
)

// EnsureIndexes creates the unique and lookup indexes the queries rely
// on. Safe to run on every startup; replaces the source system's ad hoc
// index-repair endpoint.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	uniqueSparse := options.Index().SetUnique(true).SetSparse(true)

	specs := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		},
		colAssets: {
			{Keys: bson.D{{Key: "asset_number", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "barcode", Value: 1}}, Options: uniqueSparse},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		colWorkOrders: {
			{Keys: bson.D{{Key: "number", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		colMaint: {
			{Keys: bson.D{{Key: "asset_id", Value: 1}}},
			{Keys: bson.D{{Key: "due_date", Value: 1}}},
		},
		colAppts: {
			{Keys: bson.D{{Key: "start", Value: 1}}},
		},
		colCallouts: {
			{Keys: bson.D{{Key: "number", Value: 1}}, Options: unique},
		},
		colReports: {
			{Keys: bson.D{{Key: "number", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "callout_id", Value: 1}}},
		},
		colCerts: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
			{Keys: bson.D{{Key: "expiry_date", Value: 1}}},
		},
		colTraining: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
		colNotifs: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "read", Value: 1}}},
		},
		colGroups: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: unique},
		},
		colMessages: {
			{Keys: bson.D{{Key: "group", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for col, models := range specs {
		if _, err := db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return apperr.Internal("index creation failed", err)
		}
	}
	return nil
}
