package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentStatus tracks payment of a single service visit.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusPaid      PaymentStatus = "Paid"
	PaymentStatusOverdue   PaymentStatus = "Overdue"
	PaymentStatusCancelled PaymentStatus = "Cancelled"
)

// ServiceDate is one scheduled visit on a maintenance contract. Month and
// year are always recomputed server-side from ServiceDate.
type ServiceDate struct {
	ServiceDate   time.Time     `bson:"serviceDate" json:"serviceDate"`
	ActualDate    *time.Time    `bson:"actualDate" json:"actualDate"`
	JCReference   string        `bson:"jcReference" json:"jcReference"`
	InvoiceRef    string        `bson:"invoiceRef" json:"invoiceRef"`
	PaymentStatus PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	IsCompleted   bool          `bson:"isCompleted" json:"isCompleted"`
	Month         int           `bson:"month" json:"month"`
	Year          int           `bson:"year" json:"year"`
}

// Maintenance is a recurring service contract.
type Maintenance struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	ClientName   string               `bson:"clientName" json:"clientName"`
	Remarks      EditableField        `bson:"remarks" json:"remarks"`
	ServiceDates []ServiceDate        `bson:"serviceDates" json:"serviceDates"`
	Users        []primitive.ObjectID `bson:"users" json:"users"`
	Status       Status               `bson:"status" json:"status"`
	CreatedBy    primitive.ObjectID   `bson:"createdBy" json:"createdBy"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// ServiceDateInput is the request-side shape of a ServiceDate.
type ServiceDateInput struct {
	ServiceDate   time.Time     `json:"serviceDate"`
	ActualDate    *time.Time    `json:"actualDate"`
	JCReference   string        `json:"jcReference"`
	InvoiceRef    string        `json:"invoiceRef"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	IsCompleted   bool          `json:"isCompleted"`
}

// Materialize stamps an input entry, deriving month and year from the
// service date.
func (in ServiceDateInput) Materialize() ServiceDate {
	status := in.PaymentStatus
	if status == "" {
		status = PaymentStatusPending
	}
	return ServiceDate{
		ServiceDate:   in.ServiceDate,
		ActualDate:    in.ActualDate,
		JCReference:   in.JCReference,
		InvoiceRef:    in.InvoiceRef,
		PaymentStatus: status,
		IsCompleted:   in.IsCompleted,
		Month:         int(in.ServiceDate.Month()),
		Year:          in.ServiceDate.Year(),
	}
}

// MaterializeServiceDates converts a request-side service-date list.
func MaterializeServiceDates(in []ServiceDateInput) []ServiceDate {
	out := make([]ServiceDate, 0, len(in))
	for _, sd := range in {
		out = append(out, sd.Materialize())
	}
	return out
}

// MaintenanceRequest is the create/partial-update payload. Unlike projects
// and complaints, an explicit Status always overrides the derived value.
type MaintenanceRequest struct {
	ClientName   *string             `json:"clientName"`
	Remarks      *EditableFieldInput `json:"remarks"`
	ServiceDates []ServiceDateInput  `json:"serviceDates"`
	Users        []string            `json:"users"`
	Status       *Status             `json:"status"`
}
