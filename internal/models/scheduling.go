package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RSVPStatus string

const (
	RSVPPending   RSVPStatus = "pending"
	RSVPAccepted  RSVPStatus = "accepted"
	RSVPDeclined  RSVPStatus = "declined"
	RSVPTentative RSVPStatus = "tentative"
)

func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPPending, RSVPAccepted, RSVPDeclined, RSVPTentative:
		return true
	}
	return false
}

// Attendee is a per-user RSVP entry on an appointment.
type Attendee struct {
	UserID primitive.ObjectID `json:"userId" bson:"user_id"`
	User   *UserRef           `json:"user,omitempty" bson:"-"`
	Status RSVPStatus         `json:"status" bson:"status"`
}

// Appointment is a calendar event. End must be after Start, except for
// all-day events where a missing end is derived as end-of-day.
type Appointment struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
	Location    string             `json:"location,omitempty" bson:"location,omitempty"`
	Start       time.Time          `json:"start" bson:"start"`
	End         time.Time          `json:"end" bson:"end"`
	AllDay      bool               `json:"allDay" bson:"all_day"`
	Recurrence  string             `json:"recurrence,omitempty" bson:"recurrence,omitempty"`
	Attendees   []Attendee         `json:"attendees,omitempty" bson:"attendees,omitempty"`
	CreatedBy   primitive.ObjectID `json:"createdBy" bson:"created_by"`
	Creator     *UserRef           `json:"creator,omitempty" bson:"-"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updated_at"`
}
