package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project represents a client project. Status is derived from the JC/DC
// reference lists and the assigned-user set; it is never set directly by a
// client except through soft delete.
type Project struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	ClientName   string               `bson:"clientName" json:"clientName"`
	Description  string               `bson:"description" json:"description"`
	PO           EditableField        `bson:"po" json:"po"`
	Quotation    EditableField        `bson:"quotation" json:"quotation"`
	Remarks      EditableField        `bson:"remarks" json:"remarks"`
	SurveyPhotos []string             `bson:"surveyPhotos" json:"surveyPhotos"`
	SurveyDate   *time.Time           `bson:"surveyDate" json:"surveyDate"`
	JCReferences []EditableField      `bson:"jcReferences" json:"jcReferences"`
	DCReferences []EditableField      `bson:"dcReferences" json:"dcReferences"`
	Status       Status               `bson:"status" json:"status"`
	Users        []primitive.ObjectID `bson:"users" json:"users"`
	DueDate      *time.Time           `bson:"dueDate" json:"dueDate"`
	CreatedBy    primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ProjectRequest is the create/partial-update payload. Nil slices and
// pointers mean "field not supplied"; on update the stored value is kept.
type ProjectRequest struct {
	ClientName   *string              `json:"clientName"`
	Description  *string              `json:"description"`
	PO           *EditableFieldInput  `json:"po"`
	Quotation    *EditableFieldInput  `json:"quotation"`
	Remarks      *EditableFieldInput  `json:"remarks"`
	SurveyPhotos []string             `json:"surveyPhotos"`
	SurveyDate   *time.Time           `json:"surveyDate"`
	JCReferences []EditableFieldInput `json:"jcReferences"`
	DCReferences []EditableFieldInput `json:"dcReferences"`
	Users        []string             `json:"users"`
	DueDate      *time.Time           `json:"dueDate"`
}
