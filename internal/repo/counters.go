package repo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
)

// NextSequence atomically increments and returns the counter for a
// prefix+year pair. The source system counted existing documents and
// could hand out duplicates under concurrent load; the upsert $inc
// closes that race.
func (s *mongoStore) NextSequence(ctx context.Context, prefix string, year int) (int64, error) {
	key := fmt.Sprintf("%s-%d", prefix, year)
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.c(colCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": key},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, apperr.Internal("database error", err)
	}
	// Counter value 1 corresponds to sequence index 0 in the formatter.
	return doc.Seq - 1, nil
}
