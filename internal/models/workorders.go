package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WorkOrderStatus string

const (
	WorkOrderOpen       WorkOrderStatus = "open"
	WorkOrderAssigned   WorkOrderStatus = "assigned"
	WorkOrderInProgress WorkOrderStatus = "in_progress"
	WorkOrderOnHold     WorkOrderStatus = "on_hold"
	WorkOrderCompleted  WorkOrderStatus = "completed"
	WorkOrderCancelled  WorkOrderStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s WorkOrderStatus) Terminal() bool {
	return s == WorkOrderCompleted || s == WorkOrderCancelled
}

// workOrderNext defines the allowed status transitions.
var workOrderNext = map[WorkOrderStatus][]WorkOrderStatus{
	WorkOrderOpen:       {WorkOrderAssigned, WorkOrderCancelled},
	WorkOrderAssigned:   {WorkOrderInProgress, WorkOrderOnHold, WorkOrderCancelled},
	WorkOrderInProgress: {WorkOrderOnHold, WorkOrderCompleted, WorkOrderCancelled},
	WorkOrderOnHold:     {WorkOrderAssigned, WorkOrderInProgress, WorkOrderCancelled},
}

// CanTransition reports whether s may move to next.
func (s WorkOrderStatus) CanTransition(next WorkOrderStatus) bool {
	for _, n := range workOrderNext[s] {
		if n == next {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// WorkOrder is a task raised against an asset.
type WorkOrder struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Number      string             `json:"number" bson:"number"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	AssetID     primitive.ObjectID `json:"assetId,omitempty" bson:"asset_id,omitempty"`
	Status      WorkOrderStatus    `json:"status" bson:"status"`
	Priority    Priority           `json:"priority" bson:"priority"`
	RequestedBy primitive.ObjectID `json:"requestedBy" bson:"requested_by"`
	Requester   *UserRef           `json:"requester,omitempty" bson:"-"`
	AssignedTo  primitive.ObjectID `json:"assignedTo,omitempty" bson:"assigned_to,omitempty"`
	Assignee    *UserRef           `json:"assignee,omitempty" bson:"-"`
	DueDate     time.Time          `json:"dueDate,omitempty" bson:"due_date,omitempty"`
	CompletedAt time.Time          `json:"completedAt,omitempty" bson:"completed_at,omitempty"`
	Notes       []Note             `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updated_at"`
}

type MaintenanceStatus string

const (
	MaintenanceScheduled  MaintenanceStatus = "scheduled"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
)

// Active reports whether the record still counts towards overdue checks.
func (s MaintenanceStatus) Active() bool {
	return s == MaintenanceScheduled || s == MaintenanceInProgress
}

// PartUsed is a consumed part line item on a maintenance record.
type PartUsed struct {
	Name     string  `json:"name" bson:"name"`
	Quantity int     `json:"quantity" bson:"quantity"`
	UnitCost float64 `json:"unitCost" bson:"unit_cost"`
}

// ChecklistItem is a single line on a checklist, embedded wherever
// checklists appear (templates, maintenance, completed checklists).
type ChecklistItem struct {
	Text      string `json:"text" bson:"text"`
	Required  bool   `json:"required" bson:"required"`
	Completed bool   `json:"completed" bson:"completed"`
}

// PartsTotal rolls up the cost of the supplied line items.
func PartsTotal(parts []PartUsed) float64 {
	total := 0.0
	for _, p := range parts {
		total += float64(p.Quantity) * p.UnitCost
	}
	return total
}

// MaintenanceRecord is scheduled or completed maintenance on an asset.
type MaintenanceRecord struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AssetID     primitive.ObjectID `json:"assetId" bson:"asset_id"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Status      MaintenanceStatus  `json:"status" bson:"status"`
	DueDate     time.Time          `json:"dueDate" bson:"due_date"`
	CompletedAt time.Time          `json:"completedAt,omitempty" bson:"completed_at,omitempty"`
	Overdue     bool               `json:"overdue" bson:"-"`
	Checklist   []ChecklistItem    `json:"checklist,omitempty" bson:"checklist,omitempty"`
	PartsUsed   []PartUsed         `json:"partsUsed,omitempty" bson:"parts_used,omitempty"`
	TotalCost   float64            `json:"totalCost" bson:"total_cost"`
	CreatedBy   primitive.ObjectID `json:"createdBy" bson:"created_by"`
	Creator     *UserRef           `json:"creator,omitempty" bson:"-"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updated_at"`
}

type QuoteStatus string

const (
	QuotePending  QuoteStatus = "pending"
	QuoteApproved QuoteStatus = "approved"
	QuoteRejected QuoteStatus = "rejected"
)

// Quote is a vendor maintenance quote against an asset or work order.
type Quote struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Vendor      string             `json:"vendor" bson:"vendor"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Amount      float64            `json:"amount" bson:"amount"`
	AssetID     primitive.ObjectID `json:"assetId,omitempty" bson:"asset_id,omitempty"`
	WorkOrderID primitive.ObjectID `json:"workOrderId,omitempty" bson:"work_order_id,omitempty"`
	Status      QuoteStatus        `json:"status" bson:"status"`
	DecidedBy   primitive.ObjectID `json:"decidedBy,omitempty" bson:"decided_by,omitempty"`
	Approver    *UserRef           `json:"approver,omitempty" bson:"-"`
	DecidedAt   time.Time          `json:"decidedAt,omitempty" bson:"decided_at,omitempty"`
	CreatedBy   primitive.ObjectID `json:"createdBy" bson:"created_by"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updated_at"`
}
