package handlers

import (
	"context"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technotrends/workflow-backend/internal/db"
	"github.com/technotrends/workflow-backend/internal/models"
)

const recentLimit = 5

// DashboardHandler aggregates counts, recent entities and creation-time
// feeds across the entity collections.
type DashboardHandler struct {
	projects     db.ProjectCollection
	complaints   db.ComplaintCollection
	invoices     db.InvoiceCollection
	maintenances db.MaintenanceCollection
	users        db.UserCollection
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(projects db.ProjectCollection, complaints db.ComplaintCollection, invoices db.InvoiceCollection, maintenances db.MaintenanceCollection, users db.UserCollection) *DashboardHandler {
	return &DashboardHandler{
		projects:     projects,
		complaints:   complaints,
		invoices:     invoices,
		maintenances: maintenances,
		users:        users,
	}
}

func activeFilter() bson.M {
	return bson.M{"status": bson.M{"$in": []models.Status{models.StatusInProgress, models.StatusPending}}}
}

func notCancelledFilter() bson.M {
	return bson.M{"status": bson.M{"$ne": models.StatusCancelled}}
}

func withUser(filter bson.M, userID primitive.ObjectID) bson.M {
	filter["users"] = userID
	return filter
}

// Overview serves the staff dashboard: active counts for all four
// entities, the five most recent of each (invoices excluded) and full
// creation-time histories.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := h.collect(ctx, nil)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// UserOverview serves the same aggregation scoped to the caller's
// assignments. Invoices carry no assignment and are left out.
func (h *DashboardHandler) UserOverview(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorID(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	data, err := h.collect(r.Context(), &actor)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *DashboardHandler) collect(ctx context.Context, userID *primitive.ObjectID) (M, error) {
	scoped := func(filter bson.M) bson.M {
		if userID != nil {
			return withUser(filter, *userID)
		}
		return filter
	}

	activeProjects, err := h.projects.Count(ctx, scoped(activeFilter()))
	if err != nil {
		return nil, err
	}
	activeComplaints, err := h.complaints.Count(ctx, scoped(activeFilter()))
	if err != nil {
		return nil, err
	}
	activeMaintenances, err := h.maintenances.Count(ctx, scoped(activeFilter()))
	if err != nil {
		return nil, err
	}

	recentProjects, err := h.projects.FindRecent(ctx, scoped(notCancelledFilter()), recentLimit)
	if err != nil {
		return nil, err
	}
	recentComplaints, err := h.complaints.FindRecent(ctx, scoped(notCancelledFilter()), recentLimit)
	if err != nil {
		return nil, err
	}
	recentMaintenances, err := h.maintenances.FindRecent(ctx, scoped(notCancelledFilter()), recentLimit)
	if err != nil {
		return nil, err
	}

	projectStamps, err := h.projects.FindCreatedStamps(ctx, scoped(bson.M{}))
	if err != nil {
		return nil, err
	}
	complaintStamps, err := h.complaints.FindCreatedStamps(ctx, scoped(bson.M{}))
	if err != nil {
		return nil, err
	}
	maintenanceStamps, err := h.maintenances.FindCreatedStamps(ctx, scoped(bson.M{}))
	if err != nil {
		return nil, err
	}

	data := M{
		"activeProjects":     activeProjects,
		"activeComplaints":   activeComplaints,
		"activeMaintenances": activeMaintenances,
		"recentProjects":     newProjectViews(ctx, h.users, recentProjects),
		"recentComplaints":   newComplaintViews(ctx, h.users, recentComplaints),
		"recentMaintenances": newMaintenanceViews(ctx, h.users, recentMaintenances),
	}

	if userID == nil {
		activeInvoices, err := h.invoices.Count(ctx, activeFilter())
		if err != nil {
			return nil, err
		}
		data["activeInvoices"] = activeInvoices
		data["allProjects"] = projectStamps
		data["allComplaints"] = complaintStamps
		data["allMaintenances"] = maintenanceStamps
	} else {
		data["userProjects"] = projectStamps
		data["userComplaints"] = complaintStamps
		data["userMaintenances"] = maintenanceStamps
	}
	return data, nil
}
