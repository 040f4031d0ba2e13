package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

func (s *mongoStore) CreateTemplate(ctx context.Context, t *models.Template) error {
	t.ID = primitive.NewObjectID()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	if _, err := s.c(colTemplates).InsertOne(ctx, t); err != nil {
		return wrapWrite(err, "template name already in use")
	}
	return nil
}

func (s *mongoStore) GetTemplate(ctx context.Context, id primitive.ObjectID) (*models.Template, error) {
	var t models.Template
	if err := s.c(colTemplates).FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, wrapFind(err, "template")
	}
	return &t, nil
}

func (s *mongoStore) ListTemplates(ctx context.Context, f TemplateFilter) ([]models.Template, error) {
	filter := bson.M{}
	if f.Kind != "" {
		filter["kind"] = f.Kind
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	// Soft-deleted templates stay readable by id but are excluded here.
	if !f.IncludeInactive {
		filter["active"] = true
	}
	var out []models.Template
	err := findAll(ctx, s.c(colTemplates), filter, bson.D{{Key: "name", Value: 1}}, &out)
	return out, err
}

func (s *mongoStore) UpdateTemplate(ctx context.Context, t *models.Template) error {
	t.UpdatedAt = time.Now()
	return replaceByID(ctx, s.c(colTemplates), bson.M{"_id": t.ID}, t, "template", "template name already in use")
}

// IncrementTemplateUsage bumps the usage counter atomically.
func (s *mongoStore) IncrementTemplateUsage(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c(colTemplates).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"usage_count": 1}},
	)
	if err != nil {
		return apperr.Internal("database error", err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("template not found")
	}
	return nil
}

func (s *mongoStore) CreateCompletedChecklist(ctx context.Context, c *models.CompletedChecklist) error {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	if _, err := s.c(colCompleted).InsertOne(ctx, c); err != nil {
		return wrapWrite(err, "duplicate checklist")
	}
	return nil
}

func (s *mongoStore) GetCompletedChecklist(ctx context.Context, id primitive.ObjectID) (*models.CompletedChecklist, error) {
	var c models.CompletedChecklist
	if err := s.c(colCompleted).FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, wrapFind(err, "checklist")
	}
	return &c, nil
}

func (s *mongoStore) ListCompletedChecklists(ctx context.Context, f CompletedFilter) ([]models.CompletedChecklist, error) {
	filter := bson.M{}
	if !f.TemplateID.IsZero() {
		filter["template_id"] = f.TemplateID
	}
	if !f.AssetID.IsZero() {
		filter["asset_id"] = f.AssetID
	}
	if !f.CompletedBy.IsZero() {
		filter["completed_by"] = f.CompletedBy
	}
	var out []models.CompletedChecklist
	err := findAll(ctx, s.c(colCompleted), filter, bson.D{{Key: "created_at", Value: -1}}, &out)
	return out, err
}

func (s *mongoStore) UpdateCompletedChecklist(ctx context.Context, c *models.CompletedChecklist) error {
	c.UpdatedAt = time.Now()
	return replaceByID(ctx, s.c(colCompleted), bson.M{"_id": c.ID}, c, "checklist", "duplicate checklist")
}

func (s *mongoStore) DeleteCompletedChecklist(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.c(colCompleted), bson.M{"_id": id}, "checklist")
}
