package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

type countRow struct {
	Key   string `bson:"_id"`
	Count int64  `bson:"count"`
}

// countBy runs a $group count over one field.
func countBy(ctx context.Context, col *mongo.Collection, field string) (map[string]int64, int64, error) {
	pipe := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
	}
	cur, err := col.Aggregate(ctx, pipe)
	if err != nil {
		return nil, 0, apperr.Internal("database error", err)
	}
	defer cur.Close(ctx)
	var rows []countRow
	if err := cur.All(ctx, &rows); err != nil {
		return nil, 0, apperr.Internal("database error", err)
	}
	out := map[string]int64{}
	var total int64
	for _, r := range rows {
		out[r.Key] = r.Count
		total += r.Count
	}
	return out, total, nil
}

func (s *mongoStore) AssetReport(ctx context.Context) (*AssetReport, error) {
	byStatus, total, err := countBy(ctx, s.c(colAssets), "status")
	if err != nil {
		return nil, err
	}
	byCategory, _, err := countBy(ctx, s.c(colAssets), "category")
	if err != nil {
		return nil, err
	}
	return &AssetReport{Total: total, ByStatus: byStatus, ByCategory: byCategory}, nil
}

func (s *mongoStore) WorkOrderReport(ctx context.Context) (*WorkOrderReport, error) {
	byStatus, total, err := countBy(ctx, s.c(colWorkOrders), "status")
	if err != nil {
		return nil, err
	}
	byPriority, _, err := countBy(ctx, s.c(colWorkOrders), "priority")
	if err != nil {
		return nil, err
	}
	r := &WorkOrderReport{Total: total, ByStatus: byStatus, ByPriority: byPriority}
	for k, v := range byStatus {
		if models.WorkOrderStatus(k).Terminal() {
			r.Closed += v
		} else {
			r.Open += v
		}
	}
	return r, nil
}

func (s *mongoStore) MaintenanceReport(ctx context.Context, now time.Time) (*MaintenanceReport, error) {
	total, err := s.c(colMaint).CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, apperr.Internal("database error", err)
	}
	overdue, err := s.c(colMaint).CountDocuments(ctx, bson.M{
		"status":   bson.M{"$in": bson.A{models.MaintenanceScheduled, models.MaintenanceInProgress}},
		"due_date": bson.M{"$lt": now},
	})
	if err != nil {
		return nil, apperr.Internal("database error", err)
	}
	// Cost sum by completion month.
	pipe := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": models.MaintenanceCompleted}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"$dateToString": bson.M{"format": "%Y-%m", "date": "$completed_at"}},
			"total": bson.M{"$sum": "$total_cost"},
		}}},
	}
	cur, err := s.c(colMaint).Aggregate(ctx, pipe)
	if err != nil {
		return nil, apperr.Internal("database error", err)
	}
	defer cur.Close(ctx)
	var rows []struct {
		Key   string  `bson:"_id"`
		Total float64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, apperr.Internal("database error", err)
	}
	costs := map[string]float64{}
	for _, r := range rows {
		costs[r.Key] = r.Total
	}
	return &MaintenanceReport{Total: total, Overdue: overdue, CostByMonth: costs}, nil
}

func (s *mongoStore) CalloutReportSummary(ctx context.Context) (*CalloutSummary, error) {
	pipe := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":         bson.M{"$dateToString": bson.M{"format": "%Y", "date": "$started_at"}},
			"count":       bson.M{"$sum": 1},
			"attendances": bson.M{"$sum": bson.M{"$size": bson.M{"$ifNull": bson.A{"$responders", bson.A{}}}}},
		}}},
	}
	cur, err := s.c(colCallouts).Aggregate(ctx, pipe)
	if err != nil {
		return nil, apperr.Internal("database error", err)
	}
	defer cur.Close(ctx)
	var rows []struct {
		Key         string `bson:"_id"`
		Count       int64  `bson:"count"`
		Attendances int64  `bson:"attendances"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, apperr.Internal("database error", err)
	}
	sum := &CalloutSummary{ByYear: map[string]int64{}}
	for _, r := range rows {
		sum.ByYear[r.Key] = r.Count
		sum.Total += r.Count
		sum.Attendances += r.Attendances
	}
	return sum, nil
}
