package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technotrends/workflow-backend/internal/db"
	"github.com/technotrends/workflow-backend/internal/models"
	"github.com/technotrends/workflow-backend/internal/notify"
	"github.com/technotrends/workflow-backend/internal/workflow"
)

// ComplaintHandler handles complaint lifecycle requests. Complaints share
// the project status derivation but never provision invoices.
type ComplaintHandler struct {
	complaints db.ComplaintCollection
	users      db.UserCollection
	notifier   *notify.Service
}

// NewComplaintHandler creates a new complaint handler.
func NewComplaintHandler(complaints db.ComplaintCollection, users db.UserCollection, notifier *notify.Service) *ComplaintHandler {
	return &ComplaintHandler{complaints: complaints, users: users, notifier: notifier}
}

// Create inserts a complaint with a derived status, defaulting the
// priority to Medium.
func (h *ComplaintHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req models.ComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	userIDs, err := parseObjectIDs(req.Users)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "One or more user IDs are invalid")
		return
	}

	priority := models.PriorityMedium
	if req.Priority != nil {
		if !models.IsValidPriority(*req.Priority) {
			writeMessage(w, http.StatusBadRequest, "Invalid priority")
			return
		}
		priority = *req.Priority
	}

	jcRefs := models.MaterializeFields(req.JCReferences)
	dcRefs := models.MaterializeFields(req.DCReferences)

	visitDates := req.VisitDates
	if visitDates == nil {
		visitDates = []time.Time{}
	}
	photos := req.Photos
	if photos == nil {
		photos = []string{}
	}

	complaint := models.Complaint{
		ComplaintReference: strVal(req.ComplaintReference),
		ClientName:         strVal(req.ClientName),
		Description:        strVal(req.Description),
		PO:                 editable(req.PO),
		VisitDates:         visitDates,
		DueDate:            req.DueDate,
		Users:              userIDs,
		JCReferences:       jcRefs,
		DCReferences:       dcRefs,
		Quotation:          editable(req.Quotation),
		Photos:             photos,
		Priority:           priority,
		Remarks:            editable(req.Remarks),
		Status:             workflow.DeriveReferenceStatus(jcRefs, dcRefs, len(userIDs)),
		CreatedBy:          actor,
	}

	created, err := h.complaints.Insert(r.Context(), complaint)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	creator, _ := h.users.FindByID(r.Context(), actor.Hex())
	h.notifier.NotifyAdmins(r.Context(),
		"New Complaint Created - TechnoTrends",
		complaintCreatedEmail(created, creator),
		"⚠️ New Complaint Submitted",
		fmt.Sprintf("%s submitted a %s priority complaint for %s.",
			creatorName(creator), strings.ToLower(string(created.Priority)), orDefault(created.ClientName, "a client")),
		map[string]string{
			"type":        "complaint_created",
			"complaintId": created.ID.Hex(),
			"clientName":  orDefault(created.ClientName, "Unknown"),
			"priority":    string(created.Priority),
		})

	writeJSON(w, http.StatusCreated, M{
		"message":   "Complaint created successfully",
		"complaint": newComplaintView(r.Context(), h.users, created),
	})
}

// List returns all non-cancelled complaints, newest first.
func (h *ComplaintHandler) List(w http.ResponseWriter, r *http.Request) {
	complaints, err := h.complaints.Find(r.Context(), bson.M{"status": bson.M{"$ne": models.StatusCancelled}})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newComplaintViews(r.Context(), h.users, complaints))
}

// ListByUser returns the caller's assigned non-cancelled complaints.
func (h *ComplaintHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	complaints, err := h.complaints.Find(r.Context(), bson.M{
		"users":  bson.M{"$in": []primitive.ObjectID{actor}},
		"status": bson.M{"$ne": models.StatusCancelled},
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newComplaintViews(r.Context(), h.users, complaints))
}

// ListByStatus filters by status, keeping cancelled complaints hidden.
func (h *ComplaintHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := models.Status(mux.Vars(r)["status"])

	complaints, err := h.complaints.Find(r.Context(), bson.M{
		"status": bson.M{"$eq": status, "$ne": models.StatusCancelled},
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newComplaintViews(r.Context(), h.users, complaints))
}

// ListByPriority filters by priority, excluding cancelled complaints.
func (h *ComplaintHandler) ListByPriority(w http.ResponseWriter, r *http.Request) {
	priority := models.Priority(mux.Vars(r)["priority"])

	complaints, err := h.complaints.Find(r.Context(), bson.M{
		"priority": priority,
		"status":   bson.M{"$ne": models.StatusCancelled},
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newComplaintViews(r.Context(), h.users, complaints))
}

// Get returns one complaint with populated user references.
func (h *ComplaintHandler) Get(w http.ResponseWriter, r *http.Request) {
	complaint, err := h.complaints.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Complaint not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newComplaintView(r.Context(), h.users, complaint))
}

// Update merges the supplied fields over the stored complaint and
// re-derives the status from the final references and user set.
func (h *ComplaintHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req models.ComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	current, err := h.complaints.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Complaint not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	finalJC := current.JCReferences
	if req.JCReferences != nil {
		finalJC = models.MaterializeFields(req.JCReferences)
	}
	finalDC := current.DCReferences
	if req.DCReferences != nil {
		finalDC = models.MaterializeFields(req.DCReferences)
	}
	finalUsers := current.Users
	if req.Users != nil {
		finalUsers, err = parseObjectIDs(req.Users)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "One or more user IDs are invalid")
			return
		}
	}

	set := bson.M{
		"jcReferences": finalJC,
		"dcReferences": finalDC,
		"users":        finalUsers,
		"status":       workflow.DeriveReferenceStatus(finalJC, finalDC, len(finalUsers)),
	}
	if req.ComplaintReference != nil {
		set["complaintReference"] = *req.ComplaintReference
	}
	if req.ClientName != nil {
		set["clientName"] = *req.ClientName
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.PO != nil {
		set["po"] = req.PO.Materialize()
	}
	if req.VisitDates != nil {
		set["visitDates"] = req.VisitDates
	}
	if req.DueDate != nil {
		set["dueDate"] = req.DueDate
	}
	if req.Quotation != nil {
		set["quotation"] = req.Quotation.Materialize()
	}
	if req.Photos != nil {
		set["photos"] = req.Photos
	}
	if req.Priority != nil {
		if !models.IsValidPriority(*req.Priority) {
			writeMessage(w, http.StatusBadRequest, "Invalid priority")
			return
		}
		set["priority"] = *req.Priority
	}
	if req.Remarks != nil {
		set["remarks"] = req.Remarks.Materialize()
	}

	updated, err := h.complaints.UpdateByID(r.Context(), id, bson.M{"$set": set})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Complaint not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, M{
		"message":   "Complaint updated successfully",
		"complaint": newComplaintView(r.Context(), h.users, updated),
	})
}

// Delete soft-deletes by moving the complaint to Cancelled.
func (h *ComplaintHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.complaints.FindByID(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Complaint not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.complaints.SetStatus(r.Context(), id, models.StatusCancelled); err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeMessage(w, http.StatusOK, "Complaint deleted successfully")
}

// AssignUsers adds users to the complaint and notifies the newly assigned
// ones by push.
func (h *ComplaintHandler) AssignUsers(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req assignUsersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	userIDs, err := parseObjectIDs(req.UserIDs)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "One or more user IDs are invalid")
		return
	}

	current, err := h.complaints.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Complaint not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	updated, err := h.complaints.AddUsers(r.Context(), id, userIDs)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Complaint not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := workflow.DeriveReferenceStatus(current.JCReferences, current.DCReferences, len(updated.Users))
	if updated.Status != status {
		if err := h.complaints.SetStatus(r.Context(), id, status); err != nil {
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		updated.Status = status
	}

	existing := make(map[primitive.ObjectID]bool, len(current.Users))
	for _, uid := range current.Users {
		existing[uid] = true
	}
	var newlyAssigned []primitive.ObjectID
	for _, uid := range userIDs {
		if !existing[uid] {
			newlyAssigned = append(newlyAssigned, uid)
		}
	}
	if len(newlyAssigned) > 0 {
		h.notifier.NotifyUsers(r.Context(), newlyAssigned,
			"⚠️ New Complaint Assignment",
			fmt.Sprintf("You've been assigned to complaint: %s", orDefault(updated.ClientName, "Unknown Client")),
			map[string]string{
				"type":        "complaint_assigned",
				"complaintId": id,
				"clientName":  orDefault(updated.ClientName, "Unknown Client"),
				"priority":    string(updated.Priority),
			},
			"", "")
	}

	writeJSON(w, http.StatusOK, M{
		"message":   "Users assigned to complaint successfully",
		"complaint": newComplaintView(r.Context(), h.users, updated),
	})
}
