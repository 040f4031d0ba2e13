package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

func (s *mongoStore) CreateAsset(ctx context.Context, a *models.Asset) error {
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	if _, err := s.c(colAssets).InsertOne(ctx, a); err != nil {
		return wrapWrite(err, "asset number or barcode already in use")
	}
	return nil
}

func (s *mongoStore) GetAsset(ctx context.Context, id primitive.ObjectID) (*models.Asset, error) {
	var a models.Asset
	if err := s.c(colAssets).FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, wrapFind(err, "asset")
	}
	return &a, nil
}

func (s *mongoStore) ListAssets(ctx context.Context, f AssetFilter) ([]models.Asset, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"name": regexSearch(f.Search)},
			bson.M{"asset_number": regexSearch(f.Search)},
			bson.M{"barcode": regexSearch(f.Search)},
		}
	}
	var out []models.Asset
	err := findAll(ctx, s.c(colAssets), filter, bson.D{{Key: "created_at", Value: -1}}, &out)
	return out, err
}

func (s *mongoStore) UpdateAsset(ctx context.Context, a *models.Asset) error {
	a.UpdatedAt = time.Now()
	return replaceByID(ctx, s.c(colAssets), bson.M{"_id": a.ID}, a, "asset", "asset number or barcode already in use")
}

func (s *mongoStore) DeleteAsset(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.c(colAssets), bson.M{"_id": id}, "asset")
}
