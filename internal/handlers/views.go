package handlers

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/technotrends/workflow-backend/internal/db"
	"github.com/technotrends/workflow-backend/internal/models"
)

// summarize resolves user ids to summary views in one query. Ids that no
// longer resolve (deleted users) are dropped from the result.
func summarize(ctx context.Context, users db.UserCollection, ids []primitive.ObjectID) map[primitive.ObjectID]models.UserSummary {
	out := map[primitive.ObjectID]models.UserSummary{}
	if len(ids) == 0 {
		return out
	}
	found, err := users.FindByIDs(ctx, ids)
	if err != nil {
		log.WithError(err).Error("failed to resolve user references")
		return out
	}
	for i := range found {
		out[found[i].ID] = found[i].Summary()
	}
	return out
}

func summaryList(ids []primitive.ObjectID, summaries map[primitive.ObjectID]models.UserSummary) []models.UserSummary {
	out := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		if s, ok := summaries[id]; ok {
			out = append(out, s)
		}
	}
	return out
}

func summaryRef(id primitive.ObjectID, summaries map[primitive.ObjectID]models.UserSummary) *models.UserSummary {
	if s, ok := summaries[id]; ok {
		return &s
	}
	return nil
}

// projectView overlays the stored user references with their resolved
// summaries. The shadowed fields win during JSON encoding.
type projectView struct {
	*models.Project
	Users     []models.UserSummary `json:"users"`
	CreatedBy *models.UserSummary  `json:"createdBy"`
}

func newProjectViews(ctx context.Context, users db.UserCollection, projects []models.Project) []projectView {
	var ids []primitive.ObjectID
	for i := range projects {
		ids = append(ids, projects[i].Users...)
		ids = append(ids, projects[i].CreatedBy)
	}
	summaries := summarize(ctx, users, ids)

	views := make([]projectView, 0, len(projects))
	for i := range projects {
		views = append(views, projectView{
			Project:   &projects[i],
			Users:     summaryList(projects[i].Users, summaries),
			CreatedBy: summaryRef(projects[i].CreatedBy, summaries),
		})
	}
	return views
}

func newProjectView(ctx context.Context, users db.UserCollection, project *models.Project) projectView {
	return newProjectViews(ctx, users, []models.Project{*project})[0]
}

type complaintView struct {
	*models.Complaint
	Users     []models.UserSummary `json:"users"`
	CreatedBy *models.UserSummary  `json:"createdBy"`
}

func newComplaintViews(ctx context.Context, users db.UserCollection, complaints []models.Complaint) []complaintView {
	var ids []primitive.ObjectID
	for i := range complaints {
		ids = append(ids, complaints[i].Users...)
		ids = append(ids, complaints[i].CreatedBy)
	}
	summaries := summarize(ctx, users, ids)

	views := make([]complaintView, 0, len(complaints))
	for i := range complaints {
		views = append(views, complaintView{
			Complaint: &complaints[i],
			Users:     summaryList(complaints[i].Users, summaries),
			CreatedBy: summaryRef(complaints[i].CreatedBy, summaries),
		})
	}
	return views
}

func newComplaintView(ctx context.Context, users db.UserCollection, complaint *models.Complaint) complaintView {
	return newComplaintViews(ctx, users, []models.Complaint{*complaint})[0]
}

type maintenanceView struct {
	*models.Maintenance
	Users     []models.UserSummary `json:"users"`
	CreatedBy *models.UserSummary  `json:"createdBy"`
}

func newMaintenanceViews(ctx context.Context, users db.UserCollection, maintenances []models.Maintenance) []maintenanceView {
	var ids []primitive.ObjectID
	for i := range maintenances {
		ids = append(ids, maintenances[i].Users...)
		ids = append(ids, maintenances[i].CreatedBy)
	}
	summaries := summarize(ctx, users, ids)

	views := make([]maintenanceView, 0, len(maintenances))
	for i := range maintenances {
		views = append(views, maintenanceView{
			Maintenance: &maintenances[i],
			Users:       summaryList(maintenances[i].Users, summaries),
			CreatedBy:   summaryRef(maintenances[i].CreatedBy, summaries),
		})
	}
	return views
}

func newMaintenanceView(ctx context.Context, users db.UserCollection, maintenance *models.Maintenance) maintenanceView {
	return newMaintenanceViews(ctx, users, []models.Maintenance{*maintenance})[0]
}

// invoiceView resolves the owning project and the creator.
type invoiceView struct {
	*models.Invoice
	Project   *models.Project     `json:"project"`
	CreatedBy *models.UserSummary `json:"createdBy"`
}

func newInvoiceViews(ctx context.Context, users db.UserCollection, projects db.ProjectCollection, invoices []models.Invoice) []invoiceView {
	var ids []primitive.ObjectID
	for i := range invoices {
		ids = append(ids, invoices[i].CreatedBy)
	}
	summaries := summarize(ctx, users, ids)

	views := make([]invoiceView, 0, len(invoices))
	for i := range invoices {
		var project *models.Project
		if !invoices[i].Project.IsZero() {
			p, err := projects.FindByID(ctx, invoices[i].Project.Hex())
			if err == nil {
				project = p
			}
		}
		views = append(views, invoiceView{
			Invoice:   &invoices[i],
			Project:   project,
			CreatedBy: summaryRef(invoices[i].CreatedBy, summaries),
		})
	}
	return views
}

func newInvoiceView(ctx context.Context, users db.UserCollection, projects db.ProjectCollection, invoice *models.Invoice) invoiceView {
	return newInvoiceViews(ctx, users, projects, []models.Invoice{*invoice})[0]
}
