package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

func (s *mongoStore) CreateAppointment(ctx context.Context, a *models.Appointment) error {
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	if _, err := s.c(colAppts).InsertOne(ctx, a); err != nil {
		return wrapWrite(err, "duplicate appointment")
	}
	return nil
}

func (s *mongoStore) GetAppointment(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error) {
	var a models.Appointment
	if err := s.c(colAppts).FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		return nil, wrapFind(err, "appointment")
	}
	return &a, nil
}

func (s *mongoStore) ListAppointments(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error) {
	filter := bson.M{}
	if !f.From.IsZero() {
		filter["end"] = bson.M{"$gte": f.From}
	}
	if !f.To.IsZero() {
		filter["start"] = bson.M{"$lte": f.To}
	}
	if !f.Attendee.IsZero() {
		filter["attendees.user_id"] = f.Attendee
	}
	var out []models.Appointment
	err := findAll(ctx, s.c(colAppts), filter, bson.D{{Key: "start", Value: 1}}, &out)
	return out, err
}

func (s *mongoStore) UpdateAppointment(ctx context.Context, a *models.Appointment) error {
	a.UpdatedAt = time.Now()
	return replaceByID(ctx, s.c(colAppts), bson.M{"_id": a.ID}, a, "appointment", "duplicate appointment")
}

func (s *mongoStore) DeleteAppointment(ctx context.Context, id primitive.ObjectID) error {
	return deleteByID(ctx, s.c(colAppts), bson.M{"_id": id}, "appointment")
}
