// internal/repo/repo.go
package repo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/geijin5/APSAR-Tracker-sub001/internal/apperr"
	"github.com/geijin5/APSAR-Tracker-sub001/internal/models"
)

// Store defines the data-access methods the rest of the app uses.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context, f UserFilter) ([]models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUser(ctx context.Context, id primitive.ObjectID) error
	AddPushToken(ctx context.Context, userID primitive.ObjectID, token string) error
	UserRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserRef, error)

	// Sequential numbering (atomic per prefix+year)
	NextSequence(ctx context.Context, prefix string, year int) (int64, error)

	// Assets
	CreateAsset(ctx context.Context, a *models.Asset) error
	GetAsset(ctx context.Context, id primitive.ObjectID) (*models.Asset, error)
	ListAssets(ctx context.Context, f AssetFilter) ([]models.Asset, error)
	UpdateAsset(ctx context.Context, a *models.Asset) error
	DeleteAsset(ctx context.Context, id primitive.ObjectID) error

	// Work orders
	CreateWorkOrder(ctx context.Context, wo *models.WorkOrder) error
	GetWorkOrder(ctx context.Context, id primitive.ObjectID) (*models.WorkOrder, error)
	ListWorkOrders(ctx context.Context, f WorkOrderFilter) ([]models.WorkOrder, error)
	UpdateWorkOrder(ctx context.Context, wo *models.WorkOrder) error
	DeleteWorkOrder(ctx context.Context, id primitive.ObjectID) error

	// Maintenance records
	CreateMaintenance(ctx context.Context, m *models.MaintenanceRecord) error
	GetMaintenance(ctx context.Context, id primitive.ObjectID) (*models.MaintenanceRecord, error)
	ListMaintenance(ctx context.Context, f MaintenanceFilter) ([]models.MaintenanceRecord, error)
	UpdateMaintenance(ctx context.Context, m *models.MaintenanceRecord) error
	DeleteMaintenance(ctx context.Context, id primitive.ObjectID) error

	// Appointments
	CreateAppointment(ctx context.Context, a *models.Appointment) error
	GetAppointment(ctx context.Context, id primitive.ObjectID) (*models.Appointment, error)
	ListAppointments(ctx context.Context, f AppointmentFilter) ([]models.Appointment, error)
	UpdateAppointment(ctx context.Context, a *models.Appointment) error
	DeleteAppointment(ctx context.Context, id primitive.ObjectID) error

	// Callouts
	CreateCallout(ctx context.Context, c *models.Callout) error
	GetCallout(ctx context.Context, id primitive.ObjectID) (*models.Callout, error)
	ListCallouts(ctx context.Context, f CalloutFilter) ([]models.Callout, error)
	UpdateCallout(ctx context.Context, c *models.Callout) error
	DeleteCallout(ctx context.Context, id primitive.ObjectID) error
	PullReportRef(ctx context.Context, reportID primitive.ObjectID) error

	// Callout reports
	CreateCalloutReport(ctx context.Context, r *models.CalloutReport) error
	GetCalloutReport(ctx context.Context, id primitive.ObjectID) (*models.CalloutReport, error)
	ListCalloutReports(ctx context.Context, f ReportFilter) ([]models.CalloutReport, error)
	UpdateCalloutReport(ctx context.Context, r *models.CalloutReport) error
	DeleteCalloutReport(ctx context.Context, id primitive.ObjectID) error

	// Certificates
	CreateCertificate(ctx context.Context, c *models.Certificate) error
	GetCertificate(ctx context.Context, id primitive.ObjectID) (*models.Certificate, error)
	ListCertificates(ctx context.Context, f CertificateFilter) ([]models.Certificate, error)
	UpdateCertificate(ctx context.Context, c *models.Certificate) error
	DeleteCertificate(ctx context.Context, id primitive.ObjectID) error

	// Training records
	CreateTraining(ctx context.Context, t *models.TrainingRecord) error
	GetTraining(ctx context.Context, id primitive.ObjectID) (*models.TrainingRecord, error)
	ListTraining(ctx context.Context, f TrainingFilter) ([]models.TrainingRecord, error)
	UpdateTraining(ctx context.Context, t *models.TrainingRecord) error
	DeleteTraining(ctx context.Context, id primitive.ObjectID) error

	// Templates (checklist / maintenance / work order)
	CreateTemplate(ctx context.Context, t *models.Template) error
	GetTemplate(ctx context.Context, id primitive.ObjectID) (*models.Template, error)
	ListTemplates(ctx context.Context, f TemplateFilter) ([]models.Template, error)
	UpdateTemplate(ctx context.Context, t *models.Template) error
	IncrementTemplateUsage(ctx context.Context, id primitive.ObjectID) error

	// Completed checklists
	CreateCompletedChecklist(ctx context.Context, c *models.CompletedChecklist) error
	GetCompletedChecklist(ctx context.Context, id primitive.ObjectID) (*models.CompletedChecklist, error)
	ListCompletedChecklists(ctx context.Context, f CompletedFilter) ([]models.CompletedChecklist, error)
	UpdateCompletedChecklist(ctx context.Context, c *models.CompletedChecklist) error
	DeleteCompletedChecklist(ctx context.Context, id primitive.ObjectID) error

	// Notifications
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, userID primitive.ObjectID, includeRead bool, now time.Time) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID primitive.ObjectID, now time.Time) (int64, error)
	MarkNotificationRead(ctx context.Context, id, userID primitive.ObjectID, at time.Time) error
	MarkAllNotificationsRead(ctx context.Context, userID primitive.ObjectID, at time.Time) error

	// Chat
	EnsureGroup(ctx context.Context, name string, typ models.GroupType) (*models.ChatGroup, error)
	GetGroupByName(ctx context.Context, name string) (*models.ChatGroup, error)
	CreateMessage(ctx context.Context, m *models.Message) error
	ListMessages(ctx context.Context, f MessageFilter) ([]models.Message, error)
	MarkMessageRead(ctx context.Context, id, userID primitive.ObjectID) error
	ClearGroupMessages(ctx context.Context, group string) (int64, error)
	ListExternalMessages(ctx context.Context, group string, limit int64) ([]models.Message, error)

	// Quotes
	CreateQuote(ctx context.Context, q *models.Quote) error
	GetQuote(ctx context.Context, id primitive.ObjectID) (*models.Quote, error)
	ListQuotes(ctx context.Context, f QuoteFilter) ([]models.Quote, error)
	UpdateQuote(ctx context.Context, q *models.Quote) error
	DeleteQuote(ctx context.Context, id primitive.ObjectID) error

	// Categories
	CreateCategory(ctx context.Context, c *models.Category) error
	ListCategories(ctx context.Context, kind string) ([]models.Category, error)
	DeleteCategory(ctx context.Context, id primitive.ObjectID) error

	// Reporting aggregations
	AssetReport(ctx context.Context) (*AssetReport, error)
	WorkOrderReport(ctx context.Context) (*WorkOrderReport, error)
	MaintenanceReport(ctx context.Context, now time.Time) (*MaintenanceReport, error)
	CalloutReportSummary(ctx context.Context) (*CalloutSummary, error)
}

// mongoStore implements Store on a mongo database.
type mongoStore struct{ db *mongo.Database }

// New wraps a connected database.
func New(db *mongo.Database) Store { return &mongoStore{db: db} }

// Collection names, one per entity.
const (
	colUsers      = "users"
	colAssets     = "assets"
	colWorkOrders = "work_orders"
	colMaint      = "maintenance_records"
	colAppts      = "appointments"
	colCallouts   = "callouts"
	colReports    = "callout_reports"
	colCerts      = "certificates"
	colTraining   = "training_records"
	colTemplates  = "templates"
	colCompleted  = "completed_checklists"
	colNotifs     = "notifications"
	colGroups     = "chat_groups"
	colMessages   = "messages"
	colQuotes     = "quotes"
	colCategories = "categories"
	colCounters   = "counters"
)

func (s *mongoStore) c(name string) *mongo.Collection { return s.db.Collection(name) }

// ParseID converts a client-supplied hex id. Malformed ids are treated
// as not-found, never as server errors.
func ParseID(hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound("not found")
	}
	return id, nil
}

// wrapFind maps a single-document read error.
func wrapFind(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(what + " not found")
	}
	return apperr.Internal("database error", err)
}

// wrapWrite maps a write error, surfacing duplicate-key as Conflict.
func wrapWrite(err error, conflictMsg string) error {
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict(conflictMsg)
	}
	return apperr.Internal("database error", err)
}
