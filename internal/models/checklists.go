package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateKind separates the three reusable template collections that
// share one document shape.
type TemplateKind string

const (
	TemplateChecklist   TemplateKind = "checklist"
	TemplateMaintenance TemplateKind = "maintenance"
	TemplateWorkOrder   TemplateKind = "work_order"
)

func (k TemplateKind) Valid() bool {
	switch k {
	case TemplateChecklist, TemplateMaintenance, TemplateWorkOrder:
		return true
	}
	return false
}

// Template is a reusable ordered item list. Soft-deleted via Active:
// inactive templates stay readable by id but are excluded from default
// list queries. UsageCount is incremented atomically on use.
type Template struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Kind        TemplateKind       `json:"kind" bson:"kind"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Category    string             `json:"category,omitempty" bson:"category,omitempty"`
	Items       []ChecklistItem    `json:"items" bson:"items"`
	Active      bool               `json:"active" bson:"active"`
	UsageCount  int64              `json:"usageCount" bson:"usage_count"`
	CreatedBy   primitive.ObjectID `json:"createdBy" bson:"created_by"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updated_at"`
}

// CompletedChecklist is a filled-in instance of a template. The counters
// and percentage are recomputed from Items on every save.
type CompletedChecklist struct {
	ID                primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TemplateID        primitive.ObjectID `json:"templateId" bson:"template_id"`
	AssetID           primitive.ObjectID `json:"assetId,omitempty" bson:"asset_id,omitempty"`
	Items             []ChecklistItem    `json:"items" bson:"items"`
	TotalItems        int                `json:"totalItems" bson:"total_items"`
	CompletedItems    int                `json:"completedItems" bson:"completed_items"`
	RequiredItems     int                `json:"requiredItems" bson:"required_items"`
	CompletedRequired int                `json:"completedRequiredItems" bson:"completed_required_items"`
	CompletionPercent int                `json:"completionPercentage" bson:"completion_percentage"`
	Status            string             `json:"status" bson:"status"` // completed | partial
	CompletedBy       primitive.ObjectID `json:"completedBy" bson:"completed_by"`
	Completer         *UserRef           `json:"completer,omitempty" bson:"-"`
	CreatedAt         time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updated_at"`
}
