package repo

import (
	"context"
	"regexp"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
)

// findAll runs a filtered, sorted find and decodes into out (a pointer
// to a slice).
func findAll(ctx context.Context, col *mongo.Collection, filter bson.M, sort bson.D, out any) error {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return apperr.Internal("database error", err)
	}
	defer cur.Close(ctx)
	if err := cur.All(ctx, out); err != nil {
		return apperr.Internal("database error", err)
	}
	return nil
}

func itoa(n int) string { return strconv.Itoa(n) }

// regexSearch builds a case-insensitive substring match for free-text
// search over an indexed string field. The term is quoted: search input
// is a literal, not a user-supplied pattern.
func regexSearch(q string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
}

// deleteByID removes one document, mapping a missing match to NotFound.
func deleteByID(ctx context.Context, col *mongo.Collection, filter bson.M, what string) error {
	res, err := col.DeleteOne(ctx, filter)
	if err != nil {
		return apperr.Internal("database error", err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound(what + " not found")
	}
	return nil
}

// replaceByID persists an already-merged document, mapping a missing
// match to NotFound and duplicate keys to Conflict.
func replaceByID(ctx context.Context, col *mongo.Collection, filter bson.M, doc any, what, conflictMsg string) error {
	res, err := col.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return wrapWrite(err, conflictMsg)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(what + " not found")
	}
	return nil
}
