package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CalloutStatus string

const (
	CalloutActive    CalloutStatus = "active"
	CalloutStoodDown CalloutStatus = "stood_down"
	CalloutClosed    CalloutStatus = "closed"
)

// Responder records a member's attendance on a callout.
type Responder struct {
	UserID     primitive.ObjectID `json:"userId" bson:"user_id"`
	User       *UserRef           `json:"user,omitempty" bson:"-"`
	CheckedIn  time.Time          `json:"checkedIn,omitempty" bson:"checked_in,omitempty"`
	CheckedOut time.Time          `json:"checkedOut,omitempty" bson:"checked_out,omitempty"`
}

// Callout is an incident/response record. Number has the form CO-<year>-<seq>.
type Callout struct {
	ID         primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Number     string               `json:"number" bson:"number"`
	Title      string               `json:"title" bson:"title"`
	Details    string               `json:"details,omitempty" bson:"details,omitempty"`
	Location   string               `json:"location,omitempty" bson:"location,omitempty"`
	Status     CalloutStatus        `json:"status" bson:"status"`
	StartedAt  time.Time            `json:"startedAt" bson:"started_at"`
	EndedAt    time.Time            `json:"endedAt,omitempty" bson:"ended_at,omitempty"`
	Responders []Responder          `json:"responders,omitempty" bson:"responders,omitempty"`
	ReportIDs  []primitive.ObjectID `json:"reportIds,omitempty" bson:"report_ids,omitempty"`
	CreatedBy  primitive.ObjectID   `json:"createdBy" bson:"created_by"`
	Creator    *UserRef             `json:"creator,omitempty" bson:"-"`
	CreatedAt  time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time            `json:"updatedAt" bson:"updated_at"`
}

type ReportStatus string

const (
	ReportDraft     ReportStatus = "draft"
	ReportSubmitted ReportStatus = "submitted"
	ReportReviewed  ReportStatus = "reviewed"
	ReportApproved  ReportStatus = "approved"
	ReportArchived  ReportStatus = "archived"
)

// reportNext defines the forward-only report workflow.
var reportNext = map[ReportStatus]ReportStatus{
	ReportDraft:     ReportSubmitted,
	ReportSubmitted: ReportReviewed,
	ReportReviewed:  ReportApproved,
	ReportApproved:  ReportArchived,
}

// CanTransition reports whether s may move to next.
func (s ReportStatus) CanTransition(next ReportStatus) bool {
	return reportNext[s] == next
}

// HistoryEntry is an append-only modification record on a report.
type HistoryEntry struct {
	EditedBy primitive.ObjectID `json:"editedBy" bson:"edited_by"`
	EditedAt time.Time          `json:"editedAt" bson:"edited_at"`
	Summary  string             `json:"summary,omitempty" bson:"summary,omitempty"`
}

// CalloutReport is a structured incident report tied to one callout.
// Number has the form RPT-<year>-<seq>.
type CalloutReport struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Number      string             `json:"number" bson:"number"`
	CalloutID   primitive.ObjectID `json:"calloutId" bson:"callout_id"`
	Title       string             `json:"title" bson:"title"`
	Body        string             `json:"body,omitempty" bson:"body,omitempty"`
	Status      ReportStatus       `json:"status" bson:"status"`
	Attachments []string           `json:"attachments,omitempty" bson:"attachments,omitempty"`
	History     []HistoryEntry     `json:"history,omitempty" bson:"history,omitempty"`
	CreatedBy   primitive.ObjectID `json:"createdBy" bson:"created_by"`
	Creator     *UserRef           `json:"creator,omitempty" bson:"-"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updated_at"`
}
