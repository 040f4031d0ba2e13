package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupType identifies the built-in chat groups; a Message may instead
// carry a custom group name.
type GroupType string

const (
	GroupGeneral    GroupType = "general"
	GroupOperations GroupType = "operations"
	GroupTraining   GroupType = "training"
)

// ChatGroup is a group container. Groups are created lazily, including
// by the webhook bridge (create-if-absent, idempotent).
type ChatGroup struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Type      GroupType          `json:"type,omitempty" bson:"type,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// Provenance records where an externally sourced message came from.
type Provenance struct {
	Source     string         `json:"source" bson:"source"`
	SenderName string         `json:"senderName,omitempty" bson:"sender_name,omitempty"`
	SenderID   string         `json:"senderId,omitempty" bson:"sender_id,omitempty"`
	SentAt     time.Time      `json:"sentAt,omitempty" bson:"sent_at,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty" bson:"metadata,omitempty"`
}

// Message is a direct or group chat message. External messages have a
// zero SenderID and a non-nil Provenance.
type Message struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Body        string               `json:"body" bson:"body"`
	SenderID    primitive.ObjectID   `json:"senderId,omitempty" bson:"sender_id,omitempty"`
	Sender      *UserRef             `json:"sender,omitempty" bson:"-"`
	RecipientID primitive.ObjectID   `json:"recipientId,omitempty" bson:"recipient_id,omitempty"`
	Group       string               `json:"group,omitempty" bson:"group,omitempty"`
	Broadcast   bool                 `json:"broadcast,omitempty" bson:"broadcast,omitempty"`
	ReadBy      []primitive.ObjectID `json:"readBy,omitempty" bson:"read_by,omitempty"`
	External    bool                 `json:"external,omitempty" bson:"external,omitempty"`
	Provenance  *Provenance          `json:"provenance,omitempty" bson:"provenance,omitempty"`
	CreatedAt   time.Time            `json:"createdAt" bson:"created_at"`
}

type NotificationType string

const (
	NotifyInfo        NotificationType = "info"
	NotifyMaintenance NotificationType = "maintenance_due"
	NotifyExpiry      NotificationType = "certificate_expiry"
	NotifyCallout     NotificationType = "callout"
	NotifyChat        NotificationType = "chat"
)

// Notification is a per-user, typed, optionally time-limited message.
// Expired notifications are excluded from default queries.
type Notification struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    primitive.ObjectID `json:"userId" bson:"user_id"`
	Type      NotificationType   `json:"type" bson:"type"`
	Title     string             `json:"title" bson:"title"`
	Body      string             `json:"body,omitempty" bson:"body,omitempty"`
	Read      bool               `json:"read" bson:"read"`
	ReadAt    time.Time          `json:"readAt,omitempty" bson:"read_at,omitempty"`
	ExpiresAt time.Time          `json:"expiresAt,omitempty" bson:"expires_at,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}
