package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ExpiryStatus string

const (
	ExpiryActive       ExpiryStatus = "active"
	ExpiryExpiringSoon ExpiryStatus = "expiring_soon"
	ExpiryExpired      ExpiryStatus = "expired"
)

// Certificate is a per-user credential. Status is derived from the expiry
// date on every save, never client-set.
type Certificate struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID          primitive.ObjectID `json:"userId" bson:"user_id"`
	Holder          *UserRef           `json:"holder,omitempty" bson:"-"`
	Name            string             `json:"name" bson:"name"`
	IssuingBody     string             `json:"issuingBody,omitempty" bson:"issuing_body,omitempty"`
	IssuedDate      time.Time          `json:"issuedDate" bson:"issued_date"`
	ExpiryDate      time.Time          `json:"expiryDate" bson:"expiry_date"`
	Status          ExpiryStatus       `json:"status" bson:"status"`
	DaysUntilExpiry int                `json:"daysUntilExpiry" bson:"-"`
	FilePaths       []string           `json:"filePaths,omitempty" bson:"file_paths,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updated_at"`
}

type TrainingStatus string

const (
	TrainingPendingApproval TrainingStatus = "pending_approval"
	TrainingApproved        TrainingStatus = "approved"
	TrainingRejected        TrainingStatus = "rejected"
)

// TrainingRecord is a per-user training entry with an optional approval
// workflow and an optional link to a resulting certificate.
type TrainingRecord struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID        primitive.ObjectID `json:"userId" bson:"user_id"`
	Trainee       *UserRef           `json:"trainee,omitempty" bson:"-"`
	Course        string             `json:"course" bson:"course"`
	Provider      string             `json:"provider,omitempty" bson:"provider,omitempty"`
	CompletedOn   time.Time          `json:"completedOn" bson:"completed_on"`
	Hours         float64            `json:"hours,omitempty" bson:"hours,omitempty"`
	Status        TrainingStatus     `json:"status" bson:"status"`
	DecidedBy     primitive.ObjectID `json:"decidedBy,omitempty" bson:"decided_by,omitempty"`
	CertificateID primitive.ObjectID `json:"certificateId,omitempty" bson:"certificate_id,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updated_at"`
}
