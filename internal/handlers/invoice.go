package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technotrends/workflow-backend/internal/db"
	"github.com/technotrends/workflow-backend/internal/models"
	"github.com/technotrends/workflow-backend/internal/notify"
)

// InvoiceHandler handles invoice lifecycle requests.
type InvoiceHandler struct {
	invoices db.InvoiceCollection
	projects db.ProjectCollection
	users    db.UserCollection
	notifier *notify.Service
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(invoices db.InvoiceCollection, projects db.ProjectCollection, users db.UserCollection, notifier *notify.Service) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, projects: projects, users: users, notifier: notifier}
}

// Create inserts an invoice. The invoice date is stamped only when a
// reference is supplied; an unreferenced invoice has no date yet.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req models.InvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Project == nil {
		writeMessage(w, http.StatusBadRequest, "Project is required")
		return
	}
	projectID, err := primitive.ObjectIDFromHex(*req.Project)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Project is required")
		return
	}

	paymentTerms := models.PaymentCash
	if req.PaymentTerms != nil {
		if !models.IsValidPaymentTerms(*req.PaymentTerms) {
			writeMessage(w, http.StatusBadRequest, "Invalid payment terms")
			return
		}
		paymentTerms = *req.PaymentTerms
	}
	status := models.StatusPending
	if req.Status != nil {
		if !models.IsValidStatus(*req.Status) {
			writeMessage(w, http.StatusBadRequest, "Invalid status")
			return
		}
		status = *req.Status
	}

	reference := strVal(req.InvoiceReference)
	var invoiceDate *time.Time
	if reference != "" {
		now := time.Now()
		invoiceDate = &now
	}

	invoice := models.Invoice{
		InvoiceReference: reference,
		InvoiceDate:      invoiceDate,
		Amount:           orDefault(strVal(req.Amount), "0"),
		PaymentTerms:     paymentTerms,
		CreditDays:       strVal(req.CreditDays),
		DueDate:          req.DueDate,
		Project:          projectID,
		Status:           status,
		CreatedBy:        actor,
	}

	created, err := h.invoices.Insert(r.Context(), invoice)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	creator, _ := h.users.FindByID(r.Context(), actor.Hex())
	project, _ := h.projects.FindByID(r.Context(), projectID.Hex())

	pushBody := fmt.Sprintf("%s created an invoice for $%s", creatorName(creator), created.Amount)
	clientName := "Unknown"
	if project != nil {
		pushBody = fmt.Sprintf("%s (%s)", pushBody, project.ClientName)
		clientName = orDefault(project.ClientName, clientName)
	}
	h.notifier.NotifyAdmins(r.Context(),
		"New Invoice Created - TechnoTrends",
		invoiceCreatedEmail(created, project, creator),
		"💰 New Invoice Created",
		pushBody+".",
		map[string]string{
			"type":       "invoice_created",
			"invoiceId":  created.ID.Hex(),
			"amount":     created.Amount,
			"clientName": clientName,
		})

	writeJSON(w, http.StatusCreated, M{
		"message": "Invoice created successfully",
		"invoice": created,
	})
}

// List returns all non-cancelled invoices with their projects resolved.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.invoices.Find(r.Context(), bson.M{"status": bson.M{"$ne": models.StatusCancelled}})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newInvoiceViews(r.Context(), h.users, h.projects, invoices))
}

// ListOverdue returns unsettled invoices past their due date, most overdue
// first.
func (h *InvoiceHandler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.invoices.FindOverdue(r.Context(), time.Now())
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newInvoiceViews(r.Context(), h.users, h.projects, invoices))
}

// ListByStatus filters by status, keeping cancelled invoices hidden.
func (h *InvoiceHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := models.Status(mux.Vars(r)["status"])

	invoices, err := h.invoices.Find(r.Context(), bson.M{
		"status": bson.M{"$eq": status, "$ne": models.StatusCancelled},
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newInvoiceViews(r.Context(), h.users, h.projects, invoices))
}

// ListByPaymentTerms filters by payment terms.
func (h *InvoiceHandler) ListByPaymentTerms(w http.ResponseWriter, r *http.Request) {
	terms := models.PaymentTerms(mux.Vars(r)["paymentTerms"])

	invoices, err := h.invoices.Find(r.Context(), bson.M{
		"paymentTerms": terms,
		"status":       bson.M{"$ne": models.StatusCancelled},
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newInvoiceViews(r.Context(), h.users, h.projects, invoices))
}

// ListByProject returns the non-cancelled invoices of one project.
func (h *InvoiceHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := primitive.ObjectIDFromHex(mux.Vars(r)["projectId"])
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	invoices, err := h.invoices.Find(r.Context(), bson.M{
		"project": projectID,
		"status":  bson.M{"$ne": models.StatusCancelled},
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newInvoiceViews(r.Context(), h.users, h.projects, invoices))
}

// Get returns one invoice with its project and creator resolved.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	invoice, err := h.invoices.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Invoice not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newInvoiceView(r.Context(), h.users, h.projects, invoice))
}

// Update applies the supplied fields. The invoice date is recomputed from
// the reference in the request: a non-empty reference stamps it now, its
// absence clears it.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.InvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	set := bson.M{}
	if req.InvoiceReference != nil {
		set["invoiceReference"] = *req.InvoiceReference
	}
	if req.Amount != nil {
		set["amount"] = *req.Amount
	}
	if req.PaymentTerms != nil {
		if !models.IsValidPaymentTerms(*req.PaymentTerms) {
			writeMessage(w, http.StatusBadRequest, "Invalid payment terms")
			return
		}
		set["paymentTerms"] = *req.PaymentTerms
	}
	if req.CreditDays != nil {
		set["creditDays"] = *req.CreditDays
	}
	if req.DueDate != nil {
		set["dueDate"] = req.DueDate
	}
	if req.Status != nil {
		if !models.IsValidStatus(*req.Status) {
			writeMessage(w, http.StatusBadRequest, "Invalid status")
			return
		}
		set["status"] = *req.Status
	}
	if req.Project != nil {
		projectID, err := primitive.ObjectIDFromHex(*req.Project)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "Invalid project ID")
			return
		}
		set["project"] = projectID
	}
	if req.InvoiceReference != nil && *req.InvoiceReference != "" {
		now := time.Now()
		set["invoiceDate"] = now
	} else {
		set["invoiceDate"] = nil
	}

	updated, err := h.invoices.UpdateByID(r.Context(), id, bson.M{"$set": set})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Invoice not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, M{
		"message": "Invoice updated successfully",
		"invoice": newInvoiceView(r.Context(), h.users, h.projects, updated),
	})
}

// Delete soft-deletes by moving the invoice to Cancelled.
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.invoices.FindByID(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Invoice not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.invoices.SetStatus(r.Context(), id, models.StatusCancelled); err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeMessage(w, http.StatusOK, "Invoice deleted successfully")
}
