package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

func (s *mongoStore) CreateCallout(ctx context.Context, c *models.Callout) error {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	if _, err := s.c(colCallouts).InsertOne(ctx, c); err != nil {
		return wrapWrite(err, "callout number already in use")
	}
	return nil
}

func (s *mongoStore) GetCallout(ctx context.Context, id primitive.ObjectID) (*models.Callout, error) {
	var c models.Callout
	if err := s.c(colCallouts).FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, wrapFind(err, "callout")
	}
	return &c, nil
}

func (s *mongoStore) ListCallouts(ctx context.Context, f CalloutFilter) ([]models.Callout, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Year > 0 {
		filter["number"] = regexSearch("^CO-" + itoa(f.Year) + "-")
	}
	if f.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"title": regexSearch(f.Search)},
			bson.M{"number": regexSearch(f.Search)},
			bson.M{"location": regexSearch(f.Search)},
		}
	}
	var out []models.Callout
	err := findAll(ctx, s.c(colCallouts), filter, bson.D{{Key: "created_at", Value: -1}}, &out)
	return out, err
}

func (s *mongoStore) UpdateCallout(ctx context.Context, c *models.Callout) error {
	c.UpdatedAt = time.Now()
	return replaceByID(ctx, s.c(colCallouts), bson.M{"_id": c.ID}, c, "callout", "callout number already in use")
}

func (s *mongoStore) DeleteCallout(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.c(colCallouts), bson.M{"_id": id}, "callout")
}

// PullReportRef removes a report id from every callout that lists it.
// Referential cleanup on report delete is this component's job, not the
// database's.
func (s *mongoStore) PullReportRef(ctx context.Context, reportID primitive.ObjectID) error {
	_, err := s.c(colCallouts).UpdateMany(ctx,
		bson.M{"report_ids": reportID},
		bson.M{"$pull": bson.M{"report_ids": reportID}},
	)
	if err != nil {
		return apperr.Internal("database error", err)
	}
	return nil
}

func (s *mongoStore) CreateCalloutReport(ctx context.Context, r *models.CalloutReport) error {
	r.ID = primitive.NewObjectID()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	if _, err := s.c(colReports).InsertOne(ctx, r); err != nil {
		return wrapWrite(err, "report number already in use")
	}
	return nil
}

func (s *mongoStore) GetCalloutReport(ctx context.Context, id primitive.ObjectID) (*models.CalloutReport, error) {
	var r models.CalloutReport
	if err := s.c(colReports).FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return nil, wrapFind(err, "report")
	}
	return &r, nil
}

func (s *mongoStore) ListCalloutReports(ctx context.Context, f ReportFilter) ([]models.CalloutReport, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if !f.CalloutID.IsZero() {
		filter["callout_id"] = f.CalloutID
	}
	if !f.CreatedBy.IsZero() {
		filter["created_by"] = f.CreatedBy
	}
	var out []models.CalloutReport
	err := findAll(ctx, s.c(colReports), filter, bson.D{{Key: "created_at", Value: -1}}, &out)
	return out, err
}

func (s *mongoStore) UpdateCalloutReport(ctx context.Context, r *models.CalloutReport) error {
	r.UpdatedAt = time.Now()
	return replaceByID(ctx, s.c(colReports), bson.M{"_id": r.ID}, r, "report", "report number already in use")
}

func (s *mongoStore) DeleteCalloutReport(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.c(colReports), bson.M{"_id": id}, "report")
}
