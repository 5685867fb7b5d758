package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Priority ranks a complaint.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// IsValidPriority checks if a priority is valid.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Complaint shares the project shape plus a reference, visit dates, photos
// and a priority. Its status derives exactly like a project's.
type Complaint struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	ComplaintReference string               `bson:"complaintReference" json:"complaintReference"`
	ClientName         string               `bson:"clientName" json:"clientName"`
	Description        string               `bson:"description" json:"description"`
	PO                 EditableField        `bson:"po" json:"po"`
	VisitDates         []time.Time          `bson:"visitDates" json:"visitDates"`
	DueDate            *time.Time           `bson:"dueDate" json:"dueDate"`
	CreatedBy          primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	Users              []primitive.ObjectID `bson:"users" json:"users"`
	JCReferences       []EditableField      `bson:"jcReferences" json:"jcReferences"`
	DCReferences       []EditableField      `bson:"dcReferences" json:"dcReferences"`
	Quotation          EditableField        `bson:"quotation" json:"quotation"`
	Photos             []string             `bson:"photos" json:"photos"`
	Priority           Priority             `bson:"priority" json:"priority"`
	Remarks            EditableField        `bson:"remarks" json:"remarks"`
	Status             Status               `bson:"status" json:"status"`
	CreatedAt          time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ComplaintRequest is the create/partial-update payload.
type ComplaintRequest struct {
	ComplaintReference *string              `json:"complaintReference"`
	ClientName         *string              `json:"clientName"`
	Description        *string              `json:"description"`
	PO                 *EditableFieldInput  `json:"po"`
	VisitDates         []time.Time          `json:"visitDates"`
	DueDate            *time.Time           `json:"dueDate"`
	Users              []string             `json:"users"`
	JCReferences       []EditableFieldInput `json:"jcReferences"`
	DCReferences       []EditableFieldInput `json:"dcReferences"`
	Quotation          *EditableFieldInput  `json:"quotation"`
	Photos             []string             `json:"photos"`
	Priority           *Priority            `json:"priority"`
	Remarks            *EditableFieldInput  `json:"remarks"`
}
