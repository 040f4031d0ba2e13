package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

func (s *mongoStore) CreateQuote(ctx context.Context, q *models.Quote) error {
	q.ID = primitive.NewObjectID()
	q.CreatedAt = time.Now()
	q.UpdatedAt = q.CreatedAt
	if _, err := s.c(colQuotes).InsertOne(ctx, q); err != nil {
		return wrapWrite(err, "duplicate quote")
	}
	return nil
}

func (s *mongoStore) GetQuote(ctx context.Context, id primitive.ObjectID) (*models.Quote, error) {
	var q models.Quote
	if err := s.c(colQuotes).FindOne(ctx, bson.M{"_id": id}).Decode(&q); err != nil {
		return nil, wrapFind(err, "quote")
	}
	return &q, nil
}

func (s *mongoStore) ListQuotes(ctx context.Context, f QuoteFilter) ([]models.Quote, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if !f.AssetID.IsZero() {
		filter["asset_id"] = f.AssetID
	}
	if !f.WorkOrderID.IsZero() {
		filter["work_order_id"] = f.WorkOrderID
	}
	var out []models.Quote
	err := findAll(ctx, s.c(colQuotes), filter, bson.D{{Key: "created_at", Value: -1}}, &out)
	return out, err
}

func (s *mongoStore) UpdateQuote(ctx context.Context, q *models.Quote) error {
	q.UpdatedAt = time.Now()
	return replaceByID(ctx, s.c(colQuotes), bson.M{"_id": q.ID}, q, "quote", "duplicate quote")
}

func (s *mongoStore) DeleteQuote(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.c(colQuotes), bson.M{"_id": id}, "quote")
}

func (s *mongoStore) CreateCategory(ctx context.Context, c *models.Category) error {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	if _, err := s.c(colCategories).InsertOne(ctx, c); err != nil {
		return wrapWrite(err, "category already exists")
	}
	return nil
}

func (s *mongoStore) ListCategories(ctx context.Context, kind string) ([]models.Category, error) {
	filter := bson.M{}
	if kind != "" {
		filter["kind"] = kind
	}
	var out []models.Category
	err := findAll(ctx, s.c(colCategories), filter, bson.D{{Key: "name", Value: 1}}, &out)
	return out, err
}

func (s *mongoStore) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.c(colCategories), bson.M{"_id": id}, "category")
}
