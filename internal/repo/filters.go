package repo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

// Filter structs mirror the list query parameters each entity accepts.
// Zero values mean "no constraint".

type UserFilter struct {
	Role            models.Role
	IncludeInactive bool
	Search          string
}

type AssetFilter struct {
	Status   models.AssetStatus
	Category string
	Type     string
	Search   string // matches name, asset number, barcode
}

type WorkOrderFilter struct {
	Status     models.WorkOrderStatus
	Priority   models.Priority
	AssetID    primitive.ObjectID
	AssignedTo primitive.ObjectID
	Search     string
}

type MaintenanceFilter struct {
	Status  models.MaintenanceStatus
	AssetID primitive.ObjectID
	DueFrom time.Time
	DueTo   time.Time
}

type AppointmentFilter struct {
	From     time.Time
	To       time.Time
	Attendee primitive.ObjectID
}

type CalloutFilter struct {
	Status models.CalloutStatus
	Year   int
	Search string
}

type ReportFilter struct {
	Status    models.ReportStatus
	CalloutID primitive.ObjectID
	CreatedBy primitive.ObjectID
}

type CertificateFilter struct {
	UserID primitive.ObjectID
	Status models.ExpiryStatus
}

type TrainingFilter struct {
	UserID primitive.ObjectID
	Status models.TrainingStatus
}

type TemplateFilter struct {
	Kind            models.TemplateKind
	Category        string
	IncludeInactive bool
}

type CompletedFilter struct {
	TemplateID  primitive.ObjectID
	AssetID     primitive.ObjectID
	CompletedBy primitive.ObjectID
}

type MessageFilter struct {
	Group     string
	Direct    bool // direct conversation between Principal and Other
	Principal primitive.ObjectID
	Other     primitive.ObjectID
	Limit     int64
}

type QuoteFilter struct {
	Status      models.QuoteStatus
	AssetID     primitive.ObjectID
	WorkOrderID primitive.ObjectID
}

// Reporting result shapes.

type AssetReport struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByCategory map[string]int64 `json:"byCategory"`
}

type WorkOrderReport struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"byStatus"`
	ByPriority map[string]int64 `json:"byPriority"`
	Open       int64            `json:"open"`
	Closed     int64            `json:"closed"`
}

type MaintenanceReport struct {
	Total       int64              `json:"total"`
	Overdue     int64              `json:"overdue"`
	CostByMonth map[string]float64 `json:"costByMonth"`
}

type CalloutSummary struct {
	Total       int64            `json:"total"`
	ByYear      map[string]int64 `json:"byYear"`
	Attendances int64            `json:"attendances"`
}
