// Package models contains the persisted entity types and their
// request-side payload shapes.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the shared lifecycle state of projects, complaints, invoices
// and maintenances. The wire strings are fixed; "In Progress" carries a
// space.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusCancelled  Status = "Cancelled"
)

// IsValidStatus checks if a status is valid.
func IsValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// EditableField is a free-text value that tracks whether it was ever
// edited after creation.
type EditableField struct {
	Value     string    `bson:"value" json:"value"`
	IsEdited  bool      `bson:"isEdited" json:"isEdited"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// NewEditableField stamps a fresh, unedited field.
func NewEditableField(value string) EditableField {
	now := time.Now()
	return EditableField{Value: value, CreatedAt: now, UpdatedAt: now}
}

// EditableFieldInput is the request-side shape of an EditableField.
type EditableFieldInput struct {
	Value    string `json:"value"`
	IsEdited bool   `json:"isEdited"`
}

// Materialize stamps an input field with server-side timestamps.
func (in EditableFieldInput) Materialize() EditableField {
	now := time.Now()
	return EditableField{Value: in.Value, IsEdited: in.IsEdited, CreatedAt: now, UpdatedAt: now}
}

// MaterializeFields converts a request-side field list.
func MaterializeFields(in []EditableFieldInput) []EditableField {
	out := make([]EditableField, 0, len(in))
	for _, f := range in {
		out = append(out, f.Materialize())
	}
	return out
}

// UserSummary is the populated view of a user reference embedded in
// entity responses.
type UserSummary struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name"`
	Email string             `json:"email"`
	Role  Role               `json:"role"`
}

// CreatedStamp is the projection used by dashboard history feeds.
type CreatedStamp struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
