package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

func (s *mongoStore) CreateMaintenance(ctx context.Context, m *models.MaintenanceRecord) error {
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	if _, err := s.c(colMaint).InsertOne(ctx, m); err != nil {
		return wrapWrite(err, "duplicate maintenance record")
	}
	return nil
}

func (s *mongoStore) GetMaintenance(ctx context.Context, id primitive.ObjectID) (*models.MaintenanceRecord, error) {
	var m models.MaintenanceRecord
	if err := s.c(colMaint).FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		return nil, wrapFind(err, "maintenance record")
	}
	return &m, nil
}

func (s *mongoStore) ListMaintenance(ctx context.Context, f MaintenanceFilter) ([]models.MaintenanceRecord, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if !f.AssetID.IsZero() {
		filter["asset_id"] = f.AssetID
	}
	due := bson.M{}
	if !f.DueFrom.IsZero() {
		due["$gte"] = f.DueFrom
	}
	if !f.DueTo.IsZero() {
		due["$lte"] = f.DueTo
	}
	if len(due) > 0 {
		filter["due_date"] = due
	}
	var out []models.MaintenanceRecord
	err := findAll(ctx, s.c(colMaint), filter, bson.D{{Key: "due_date", Value: 1}}, &out)
	return out, err
}

func (s *mongoStore) UpdateMaintenance(ctx context.Context, m *models.MaintenanceRecord) error {
	m.UpdatedAt = time.Now()
	return replaceByID(ctx, s.c(colMaint), bson.M{"_id": m.ID}, m, "maintenance record", "duplicate maintenance record")
}

func (s *mongoStore) DeleteMaintenance(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.c(colMaint), bson.M{"_id": id}, "maintenance record")
}
