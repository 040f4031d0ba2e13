package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AssetStatus string

const (
	AssetOperational   AssetStatus = "operational"
	AssetInMaintenance AssetStatus = "in_maintenance"
	AssetOutOfService  AssetStatus = "out_of_service"
	AssetRetired       AssetStatus = "retired"
)

// Note is a free-text annotation embedded in assets and work orders.
type Note struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Text      string             `json:"text" bson:"text"`
	AuthorID  primitive.ObjectID `json:"authorId" bson:"author_id"`
	Author    *UserRef           `json:"author,omitempty" bson:"-"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}

// AssetCertification is an embedded expiry sub-record on an asset
// (e.g. rope inspection, PAT test).
type AssetCertification struct {
	Name       string    `json:"name" bson:"name"`
	IssuedDate time.Time `json:"issuedDate" bson:"issued_date"`
	ExpiryDate time.Time `json:"expiryDate" bson:"expiry_date"`
	Status     string    `json:"status" bson:"status"`
}

// Asset is a physical equipment item. Status is operator-set, never derived.
type Asset struct {
	ID             primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	AssetNumber    string               `json:"assetNumber" bson:"asset_number"`
	Barcode        string               `json:"barcode,omitempty" bson:"barcode,omitempty"`
	Name           string               `json:"name" bson:"name"`
	Description    string               `json:"description,omitempty" bson:"description,omitempty"`
	Category       string               `json:"category" bson:"category"`
	Type           string               `json:"type,omitempty" bson:"type,omitempty"`
	Status         AssetStatus          `json:"status" bson:"status"`
	Location       string               `json:"location,omitempty" bson:"location,omitempty"`
	AssignedTo     string               `json:"assignedTo,omitempty" bson:"assigned_to,omitempty"`
	Certifications []AssetCertification `json:"certifications,omitempty" bson:"certifications,omitempty"`
	Notes          []Note               `json:"notes,omitempty" bson:"notes,omitempty"`
	ImagePaths     []string             `json:"imagePaths,omitempty" bson:"image_paths,omitempty"`
	CreatedBy      primitive.ObjectID   `json:"createdBy" bson:"created_by"`
	Creator        *UserRef             `json:"creator,omitempty" bson:"-"`
	CreatedAt      time.Time            `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time            `json:"updatedAt" bson:"updated_at"`
}

// Category is an admin-managed lookup value used by assets and templates.
type Category struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Kind      string             `json:"kind" bson:"kind"` // asset | maintenance | checklist
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}
