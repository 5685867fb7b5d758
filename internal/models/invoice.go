package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentTerms distinguishes cash from credit invoices.
type PaymentTerms string

const (
	PaymentCash   PaymentTerms = "Cash"
	PaymentCredit PaymentTerms = "Credit"
)

// IsValidPaymentTerms checks if payment terms are valid.
func IsValidPaymentTerms(t PaymentTerms) bool {
	return t == PaymentCash || t == PaymentCredit
}

// Invoice belongs to exactly one project. Amount is string-typed currency,
// carried verbatim from the client.
type Invoice struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	InvoiceReference string             `bson:"invoiceReference" json:"invoiceReference"`
	InvoiceDate      *time.Time         `bson:"invoiceDate" json:"invoiceDate"`
	Amount           string             `bson:"amount" json:"amount"`
	PaymentTerms     PaymentTerms       `bson:"paymentTerms" json:"paymentTerms"`
	CreditDays       string             `bson:"creditDays" json:"creditDays"`
	DueDate          *time.Time         `bson:"dueDate" json:"dueDate"`
	Project          primitive.ObjectID `bson:"project" json:"project"`
	Status           Status             `bson:"status" json:"status"`
	CreatedBy        primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// InvoiceRequest is the create/partial-update payload.
type InvoiceRequest struct {
	InvoiceReference *string       `json:"invoiceReference"`
	Amount           *string       `json:"amount"`
	PaymentTerms     *PaymentTerms `json:"paymentTerms"`
	CreditDays       *string       `json:"creditDays"`
	DueDate          *time.Time    `json:"dueDate"`
	Project          *string       `json:"project"`
	Status           *Status       `json:"status"`
}
