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
	"github.com/technotrends/workflow-backend/internal/events"
	"github.com/technotrends/workflow-backend/internal/models"
	"github.com/technotrends/workflow-backend/internal/notify"
	"github.com/technotrends/workflow-backend/internal/workflow"
)

// ProjectHandler handles project lifecycle requests.
type ProjectHandler struct {
	projects db.ProjectCollection
	users    db.UserCollection
	bus      *events.Bus
	notifier *notify.Service
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(projects db.ProjectCollection, users db.UserCollection, bus *events.Bus, notifier *notify.Service) *ProjectHandler {
	return &ProjectHandler{projects: projects, users: users, bus: bus, notifier: notifier}
}

func editable(in *models.EditableFieldInput) models.EditableField {
	if in == nil {
		return models.NewEditableField("")
	}
	return in.Materialize()
}

// Create inserts a project with a derived status. Projects born with a JC
// or DC reference trigger invoice provisioning before the response.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	var req models.ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	userIDs, err := parseObjectIDs(req.Users)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "One or more user IDs are invalid")
		return
	}

	jcRefs := models.MaterializeFields(req.JCReferences)
	dcRefs := models.MaterializeFields(req.DCReferences)

	surveyPhotos := req.SurveyPhotos
	if surveyPhotos == nil {
		surveyPhotos = []string{}
	}
	// Survey date marks when photos were first attached
	var surveyDate *time.Time
	if len(surveyPhotos) > 0 {
		now := time.Now()
		surveyDate = &now
	}

	project := models.Project{
		ClientName:   strVal(req.ClientName),
		Description:  strVal(req.Description),
		PO:           editable(req.PO),
		Quotation:    editable(req.Quotation),
		Remarks:      editable(req.Remarks),
		SurveyPhotos: surveyPhotos,
		SurveyDate:   surveyDate,
		JCReferences: jcRefs,
		DCReferences: dcRefs,
		Status:       workflow.DeriveReferenceStatus(jcRefs, dcRefs, len(userIDs)),
		Users:        userIDs,
		DueDate:      req.DueDate,
		CreatedBy:    actor,
	}

	created, err := h.projects.Insert(r.Context(), project)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	var invoice *models.Invoice
	if workflow.HasReferences(jcRefs, dcRefs) {
		ev := &events.ReferencesPopulated{ProjectID: created.ID, ActorID: actor}
		h.bus.PublishReferencesPopulated(r.Context(), ev)
		invoice = ev.Invoice
	}

	creator, _ := h.users.FindByID(r.Context(), actor.Hex())
	h.notifier.NotifyAdmins(r.Context(),
		"New Project Created - TechnoTrends",
		projectCreatedEmail(created, creator),
		"📋 New Project Created",
		fmt.Sprintf("%s created a new project for %s.", creatorName(creator), orDefault(created.ClientName, "a client")),
		map[string]string{
			"type":       "project_created",
			"projectId":  created.ID.Hex(),
			"clientName": orDefault(created.ClientName, "Unknown"),
		})

	resp := M{
		"message": "Project created successfully",
		"project": newProjectView(r.Context(), h.users, created),
	}
	if invoice != nil {
		resp["invoice"] = invoice
	}
	writeJSON(w, http.StatusCreated, resp)
}

// List returns all non-cancelled projects, newest first.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.Find(r.Context(), bson.M{"status": bson.M{"$ne": models.StatusCancelled}})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newProjectViews(r.Context(), h.users, projects))
}

// ListByUser returns the caller's assigned non-cancelled projects.
func (h *ProjectHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	projects, err := h.projects.Find(r.Context(), bson.M{
		"users":  bson.M{"$in": []primitive.ObjectID{actor}},
		"status": bson.M{"$ne": models.StatusCancelled},
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newProjectViews(r.Context(), h.users, projects))
}

// ListByStatus filters by status; cancelled projects stay hidden even when
// asked for directly.
func (h *ProjectHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := models.Status(mux.Vars(r)["status"])

	projects, err := h.projects.Find(r.Context(), bson.M{
		"status": bson.M{"$eq": status, "$ne": models.StatusCancelled},
	})
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newProjectViews(r.Context(), h.users, projects))
}

// Get returns one project with populated user references.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.projects.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Project not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newProjectView(r.Context(), h.users, project))
}

// Update merges the supplied fields over the stored project, re-derives the
// status and provisions an invoice when the reference lists go from empty
// to populated.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	id := mux.Vars(r)["id"]

	var req models.ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	current, err := h.projects.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Project not found")
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
	if req.ClientName != nil {
		set["clientName"] = *req.ClientName
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.PO != nil {
		set["po"] = req.PO.Materialize()
	}
	if req.Quotation != nil {
		set["quotation"] = req.Quotation.Materialize()
	}
	if req.Remarks != nil {
		set["remarks"] = req.Remarks.Materialize()
	}
	if req.SurveyPhotos != nil {
		set["surveyPhotos"] = req.SurveyPhotos
	}
	if req.SurveyDate != nil {
		set["surveyDate"] = req.SurveyDate
	}
	if req.DueDate != nil {
		set["dueDate"] = req.DueDate
	}

	updated, err := h.projects.UpdateByID(r.Context(), id, bson.M{"$set": set})
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Project not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	var invoice *models.Invoice
	suppliedRefs := len(req.JCReferences) > 0 || len(req.DCReferences) > 0
	hadRefs := workflow.HasReferences(current.JCReferences, current.DCReferences)
	if suppliedRefs && !hadRefs {
		ev := &events.ReferencesPopulated{ProjectID: updated.ID, ActorID: actor, IfAbsent: true}
		h.bus.PublishReferencesPopulated(r.Context(), ev)
		invoice = ev.Invoice
	}

	resp := M{
		"message": "Project updated successfully",
		"project": newProjectView(r.Context(), h.users, updated),
	}
	if invoice != nil {
		resp["invoice"] = invoice
	}
	writeJSON(w, http.StatusOK, resp)
}

// Delete soft-deletes by moving the project to Cancelled.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if _, err := h.projects.FindByID(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Project not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.projects.SetStatus(r.Context(), id, models.StatusCancelled); err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeMessage(w, http.StatusOK, "Project deleted successfully")
}

type assignUsersRequest struct {
	UserIDs []string `json:"userIds"`
}

// AssignUsers adds users to the project's assignment set and notifies the
// newly assigned ones. The status derivation uses the pre-assignment
// reference lists with the post-assignment user set.
func (h *ProjectHandler) AssignUsers(w http.ResponseWriter, r *http.Request) {
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

	current, err := h.projects.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Project not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	updated, err := h.projects.AddUsers(r.Context(), id, userIDs)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeMessage(w, http.StatusNotFound, "Project not found")
			return
		}
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := workflow.DeriveReferenceStatus(current.JCReferences, current.DCReferences, len(updated.Users))
	if updated.Status != status {
		if err := h.projects.SetStatus(r.Context(), id, status); err != nil {
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
			"📋 New Project Assignment",
			fmt.Sprintf("You've been assigned to project: %s", orDefault(updated.ClientName, "Unknown Client")),
			map[string]string{
				"type":       "project_assigned",
				"projectId":  id,
				"clientName": orDefault(updated.ClientName, "Unknown Client"),
			},
			"", "")
	}

	writeJSON(w, http.StatusOK, M{
		"message": "Users assigned to project successfully",
		"project": newProjectView(r.Context(), h.users, updated),
	})
}
