package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

func (s *mongoStore) CreateCertificate(ctx context.Context, c *models.Certificate) error {
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	if _, err := s.c(colCerts).InsertOne(ctx, c); err != nil {
		return wrapWrite(err, "duplicate certificate")
	}
	return nil
}

func (s *mongoStore) GetCertificate(ctx context.Context, id primitive.ObjectID) (*models.Certificate, error) {
	var c models.Certificate
	if err := s.c(colCerts).FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, wrapFind(err, "certificate")
	}
	return &c, nil
}

func (s *mongoStore) ListCertificates(ctx context.Context, f CertificateFilter) ([]models.Certificate, error) {
	filter := bson.M{}
	if !f.UserID.IsZero() {
		filter["user_id"] = f.UserID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	var out []models.Certificate
	err := findAll(ctx, s.c(colCerts), filter, bson.D{{Key: "expiry_date", Value: 1}}, &out)
	return out, err
}

func (s *mongoStore) UpdateCertificate(ctx context.Context, c *models.Certificate) error {
	c.UpdatedAt = time.Now()
	return replaceByID(ctx, s.c(colCerts), bson.M{"_id": c.ID}, c, "certificate", "duplicate certificate")
}

func (s *mongoStore) DeleteCertificate(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.c(colCerts), bson.M{"_id": id}, "certificate")
}

func (s *mongoStore) CreateTraining(ctx context.Context, t *models.TrainingRecord) error {
	t.ID = primitive.NewObjectID()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	if _, err := s.c(colTraining).InsertOne(ctx, t); err != nil {
		return wrapWrite(err, "duplicate training record")
	}
	return nil
}

func (s *mongoStore) GetTraining(ctx context.Context, id primitive.ObjectID) (*models.TrainingRecord, error) {
	var t models.TrainingRecord
	if err := s.c(colTraining).FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return nil, wrapFind(err, "training record")
	}
	return &t, nil
}

func (s *mongoStore) ListTraining(ctx context.Context, f TrainingFilter) ([]models.TrainingRecord, error) {
	filter := bson.M{}
	if !f.UserID.IsZero() {
		filter["user_id"] = f.UserID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	var out []models.TrainingRecord
	err := findAll(ctx, s.c(colTraining), filter, bson.D{{Key: "created_at", Value: -1}}, &out)
	return out, err
}

func (s *mongoStore) UpdateTraining(ctx context.Context, t *models.TrainingRecord) error {
	t.UpdatedAt = time.Now()
	return replaceByID(ctx, s.c(colTraining), bson.M{"_id": t.ID}, t, "training record", "duplicate training record")
}

func (s *mongoStore) DeleteTraining(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.c(colTraining), bson.M{"_id": id}, "training record")
}
