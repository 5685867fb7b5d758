package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/technotrends/workflow-backend/internal/db"
	"github.com/technotrends/workflow-backend/internal/models"
	"github.com/technotrends/workflow-backend/internal/notify"
	"github.com/technotrends/workflow-backend/internal/workflow"
)

// MaintenanceHandler handles maintenance contract requests. Unlike the
// other entities, maintenance deletes are permanent and an explicit status
// in a request overrides the derived one.
type MaintenanceHandler struct {
	maintenances db.MaintenanceCollection
	users        db.UserCollection
	notifier     *notify.Service
}

// NewMaintenanceHandler creates a new maintenance handler.
func NewMaintenanceHandler(maintenances db.MaintenanceCollection, users db.UserCollection, notifier *notify.Service) *MaintenanceHandler {
	return &MaintenanceHandler{maintenances: maintenances, users: users, notifier: notifier}
}

// Create inserts a contract with server-derived month/year stamps on every
// service date.
func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req models.MaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.ClientName == nil || *req.ClientName == "" {
		writeMessage(w, http.StatusBadRequest, "Client name is required")
		return
	}

	userIDs, err := parseObjectIDs(req.Users)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "One or more user IDs are invalid")
		return
	}

	serviceDates := models.MaterializeServiceDates(req.ServiceDates)

	status := workflow.DeriveMaintenanceStatus(serviceDates, len(userIDs))
	if req.Status != nil {
		if !models.IsValidStatus(*req.Status) {
			writeMessage(w, http.StatusBadRequest, "Invalid status")
			return
		}
		status = *req.Status
	}

	maintenance := models.Maintenance{
		ClientName:   *req.ClientName,
		Remarks:      editable(req.Remarks),
		ServiceDates: serviceDates,
		Users:        userIDs,
		Status:       status,
		CreatedBy:    actor,
	}

	created, err := h.maintenances.Insert(r.Context(), maintenance)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	creator, _ := h.users.FindByID(r.Context(), actor.Hex())
	h.notifier.NotifyAdmins(r.Context(),
		"New Maintenance Created",
		maintenanceCreatedEmail(created.ClientName, len(created.ServiceDates), creator),
		"New Maintenance Created",
		fmt.Sprintf("New maintenance for %s has been created", created.ClientName),
		map[string]string{
			"type":          "maintenance_created",
			"maintenanceId": created.ID.Hex(),
		})

	writeJSON(w, http.StatusCreated, M{
		"message":     "Maintenance created successfully",
		"maintenance": newMaintenanceView(r.Context(), h.users, created),
	})
}

// List returns all non-cancelled contracts, newest first.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	maintenances, err := h.maintenances.Find(r.Context(), bson.M{"status": bson.M{"$ne": models.StatusCancelled}})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newMaintenanceViews(r.Context(), h.users, maintenances))
}

// ListByUser returns the caller's assigned non-cancelled contracts.
func (h *MaintenanceHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	maintenances, err := h.maintenances.Find(r.Context(), bson.M{
		"users":  actor,
		"status": bson.M{"$ne": models.StatusCancelled},
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newMaintenanceViews(r.Context(), h.users, maintenances))
}

// ListByStatus filters by status, keeping cancelled contracts hidden.
func (h *MaintenanceHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := models.Status(mux.Vars(r)["status"])

	maintenances, err := h.maintenances.Find(r.Context(), bson.M{
		"status": bson.M{"$eq": status, "$ne": models.StatusCancelled},
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newMaintenanceViews(r.Context(), h.users, maintenances))
}

// ListUpcoming returns contracts with an incomplete visit due within the
// next day.
func (h *MaintenanceHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	maintenances, err := h.maintenances.FindUpcoming(r.Context(), now, now.AddDate(0, 0, 1))
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newMaintenanceViews(r.Context(), h.users, maintenances))
}

// Get returns one contract with populated user references.
func (h *MaintenanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	maintenance, err := h.maintenances.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Maintenance not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newMaintenanceView(r.Context(), h.users, maintenance))
}

// Update merges the supplied fields and runs the rollover: when a service
// date flips to completed, the following month's schedule is generated
// from the pre-update dates and appended.
func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.MaintenanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	maintenance, err := h.maintenances.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Maintenance not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	original := make([]models.ServiceDate, len(maintenance.ServiceDates))
	copy(original, maintenance.ServiceDates)

	if req.ClientName != nil {
		maintenance.ClientName = *req.ClientName
	}
	if req.Remarks != nil {
		maintenance.Remarks = req.Remarks.Materialize()
	}
	if req.Users != nil {
		userIDs, err := parseObjectIDs(req.Users)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "One or more user IDs are invalid")
			return
		}
		maintenance.Users = userIDs
	}

	if req.ServiceDates != nil {
		maintenance.ServiceDates = models.MaterializeServiceDates(req.ServiceDates)

		if first := workflow.FirstNewlyCompleted(original, maintenance.ServiceDates); first != nil {
			next := workflow.NextMonthServiceDates(first.ServiceDate, workflow.TemplateDates(original))
			maintenance.ServiceDates = append(maintenance.ServiceDates, next...)
		}
	}

	if req.Status != nil {
		if !models.IsValidStatus(*req.Status) {
			writeMessage(w, http.StatusBadRequest, "Invalid status")
			return
		}
		maintenance.Status = *req.Status
	} else {
		maintenance.Status = workflow.DeriveMaintenanceStatus(maintenance.ServiceDates, len(maintenance.Users))
	}

	updated, err := h.maintenances.Replace(r.Context(), id, *maintenance)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Maintenance not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, M{
		"message":     "Maintenance updated successfully",
		"maintenance": newMaintenanceView(r.Context(), h.users, updated),
	})
}

// Delete removes a contract permanently.
func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.maintenances.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Maintenance not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeMessage(w, http.StatusOK, "Maintenance deleted successfully")
}

// AssignUsers replaces the contract's assignment set after verifying every
// id resolves to a user, then notifies the assignees by push and email.
func (h *MaintenanceHandler) AssignUsers(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req assignUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserIDs == nil {
		writeMessage(w, http.StatusBadRequest, "User IDs are required")
		return
	}
	userIDs, err := parseObjectIDs(req.UserIDs)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "One or more user IDs are invalid")
		return
	}

	maintenance, err := h.maintenances.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Maintenance not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	found, err := h.users.FindByIDs(r.Context(), userIDs)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(found) != len(userIDs) {
		writeMessage(w, http.StatusBadRequest, "One or more user IDs are invalid")
		return
	}

	maintenance.Users = userIDs
	maintenance.Status = workflow.DeriveMaintenanceStatus(maintenance.ServiceDates, len(userIDs))

	updated, err := h.maintenances.Replace(r.Context(), id, *maintenance)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.notifier.NotifyUsers(r.Context(), userIDs,
		"New Maintenance Assignment",
		fmt.Sprintf("You have been assigned to maintenance for %s", updated.ClientName),
		map[string]string{
			"type":          "maintenance_assigned",
			"maintenanceId": id,
		},
		"New Maintenance Assignment",
		maintenanceAssignmentEmail(updated.ClientName))

	writeJSON(w, http.StatusOK, M{
		"message":     "Users assigned successfully",
		"maintenance": newMaintenanceView(r.Context(), h.users, updated),
	})
}
