// Package invoicing provisions invoices in response to project domain
// events, keeping the project and invoice services decoupled.
package invoicing

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/technotrends/workflow-backend/internal/db"
	"github.com/technotrends/workflow-backend/internal/events"
	"github.com/technotrends/workflow-backend/internal/models"
	"github.com/technotrends/workflow-backend/internal/notify"
)

// Provisioner creates a zero-amount cash invoice when a project gains its
// first JC or DC reference. All failures are logged and contained: the
// triggering mutation never fails because provisioning did.
type Provisioner struct {
	invoices db.InvoiceCollection
	projects db.ProjectCollection
	notifier *notify.Service
}

// NewProvisioner creates the provisioner.
func NewProvisioner(invoices db.InvoiceCollection, projects db.ProjectCollection, notifier *notify.Service) *Provisioner {
	return &Provisioner{invoices: invoices, projects: projects, notifier: notifier}
}

// HandleReferencesPopulated consumes the event. When IfAbsent is set, an
// existing invoice for the project suppresses provisioning (read-then-write
// check; racy under concurrent updates, accepted at human pace).
func (p *Provisioner) HandleReferencesPopulated(ctx context.Context, ev *events.ReferencesPopulated) {
	if ev.IfAbsent {
		if _, err := p.invoices.FindOneByProject(ctx, ev.ProjectID); err == nil {
			return
		} else if !errors.Is(err, db.ErrNotFound) {
			log.WithError(err).WithField("project", ev.ProjectID.Hex()).
				Error("failed to check for existing invoice")
			return
		}
	}

	invoice, err := p.invoices.Insert(ctx, models.Invoice{
		Amount:       "0",
		PaymentTerms: models.PaymentCash,
		Project:      ev.ProjectID,
		Status:       models.StatusPending,
		CreatedBy:    ev.ActorID,
	})
	if err != nil {
		log.WithError(err).WithField("project", ev.ProjectID.Hex()).
			Error("failed to auto-create invoice")
		return
	}
	ev.Invoice = invoice

	clientName := "Unknown Client"
	if project, err := p.projects.FindByID(ctx, ev.ProjectID.Hex()); err == nil {
		clientName = project.ClientName
	}

	p.notifier.NotifyAdmins(ctx,
		"Invoice Auto-Created - TechnoTrends",
		autoInvoiceEmail(clientName, invoice),
		"💰 Invoice Auto-Created",
		fmt.Sprintf("An invoice was automatically created for project: %s", clientName),
		map[string]string{
			"type":       "invoice_created",
			"invoiceId":  invoice.ID.Hex(),
			"projectId":  ev.ProjectID.Hex(),
			"clientName": clientName,
		})
}

func autoInvoiceEmail(clientName string, invoice *models.Invoice) string {
	return fmt.Sprintf(`
    <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
      <h2 style="color: #A82F39;">Invoice Automatically Created</h2>
      <p>An invoice has been automatically created due to JC/DC references being added to a project.</p>
      <div style="background-color: #f0f9ff; padding: 20px; margin: 20px 0; border-radius: 8px;">
        <h3 style="color: #A82F39; margin: 0 0 15px 0;">Invoice Details:</h3>
        <p><strong>Project Client:</strong> %s</p>
        <p><strong>Amount:</strong> %s</p>
        <p><strong>Payment Terms:</strong> %s</p>
        <p><strong>Status:</strong> %s</p>
      </div>
      <p>Please review and update the invoice details in the admin dashboard.</p>
      <hr style="margin: 30px 0;">
      <p style="color: #666; font-size: 12px;">
        This is an automated notification from TechnoTrends.
      </p>
    </div>`,
		clientName, invoice.Amount, invoice.PaymentTerms, invoice.Status)
}
