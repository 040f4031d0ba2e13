package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

func (s *mongoStore) CreateWorkOrder(ctx context.Context, wo *models.WorkOrder) error {
	wo.ID = primitive.NewObjectID()
	wo.CreatedAt = time.Now()
	wo.UpdatedAt = wo.CreatedAt
	if _, err := s.c(colWorkOrders).InsertOne(ctx, wo); err != nil {
		return wrapWrite(err, "work order number already in use")
	}
	return nil
}

func (s *mongoStore) GetWorkOrder(ctx context.Context, id primitive.ObjectID) (*models.WorkOrder, error) {
	var wo models.WorkOrder
	if err := s.c(colWorkOrders).FindOne(ctx, bson.M{"_id": id}).Decode(&wo); err != nil {
		return nil, wrapFind(err, "work order")
	}
	return &wo, nil
}

func (s *mongoStore) ListWorkOrders(ctx context.Context, f WorkOrderFilter) ([]models.WorkOrder, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if !f.AssetID.IsZero() {
		filter["asset_id"] = f.AssetID
	}
	if !f.AssignedTo.IsZero() {
		filter["assigned_to"] = f.AssignedTo
	}
	if f.Search != "" {
		filter["$or"] = bson.A{
			bson.M{"title": regexSearch(f.Search)},
			bson.M{"number": regexSearch(f.Search)},
		}
	}
	var out []models.WorkOrder
	err := findAll(ctx, s.c(colWorkOrders), filter, bson.D{{Key: "created_at", Value: -1}}, &out)
	return out, err
}

func (s *mongoStore) UpdateWorkOrder(ctx context.Context, wo *models.WorkOrder) error {
	wo.UpdatedAt = time.Now()
	return replaceByID(ctx, s.c(colWorkOrders), bson.M{"_id": wo.ID}, wo, "work order", "work order number already in use")
}

func (s *mongoStore) DeleteWorkOrder(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.c(colWorkOrders), bson.M{"_id": id}, "work order")
}
