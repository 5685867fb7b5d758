package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/technotrends/workflow-backend/internal/models"
)

// Email bodies are inline-styled HTML rendered for the staff mail clients.

const emailFooter = `
      <hr style="margin: 30px 0;">
      <p style="color: #666; font-size: 12px;">
        This is an automated notification from TechnoTrends.
      </p>
    </div>`

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "Not set"
	}
	return t.Format("1/2/2006")
}

func refValues(refs []models.EditableField) string {
	values := make([]string, 0, len(refs))
	for _, ref := range refs {
		values = append(values, ref.Value)
	}
	return strings.Join(values, ", ")
}

func creatorLine(creator *models.User) string {
	name, email := "Unknown", "No email"
	if creator != nil {
		name = orDefault(creator.Name, name)
		email = orDefault(creator.Email, email)
	}
	return fmt.Sprintf("<p><strong>Created By:</strong> %s (%s)</p>", name, email)
}

func creatorName(creator *models.User) string {
	if creator == nil {
		return "Someone"
	}
	return orDefault(creator.Name, "Someone")
}

func priorityColor(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return "#DC2626"
	case models.PriorityMedium:
		return "#D97706"
	default:
		return "#059669"
	}
}

func projectCreatedEmail(p *models.Project, creator *models.User) string {
	var b strings.Builder
	b.WriteString(`
    <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
      <h2 style="color: #A82F39;">New Project Created</h2>
      <p>A new project has been created in the TechnoTrends system.</p>
      <div style="background-color: #f0f9ff; padding: 20px; margin: 20px 0; border-radius: 8px;">
        <h3 style="color: #A82F39; margin: 0 0 15px 0;">Project Details:</h3>`)
	fmt.Fprintf(&b, "\n        <p><strong>Client Name:</strong> %s</p>", orDefault(p.ClientName, "Not specified"))
	fmt.Fprintf(&b, "\n        <p><strong>Description:</strong> %s</p>", orDefault(p.Description, "No description provided"))
	fmt.Fprintf(&b, "\n        <p><strong>Status:</strong> %s</p>", p.Status)
	fmt.Fprintf(&b, "\n        <p><strong>Due Date:</strong> %s</p>", formatDate(p.DueDate))
	if p.PO.Value != "" {
		fmt.Fprintf(&b, "\n        <p><strong>PO Number:</strong> %s</p>", p.PO.Value)
	}
	if p.Quotation.Value != "" {
		fmt.Fprintf(&b, "\n        <p><strong>Quotation:</strong> %s</p>", p.Quotation.Value)
	}
	b.WriteString("\n        " + creatorLine(creator))
	fmt.Fprintf(&b, "\n        <p><strong>Created At:</strong> %s</p>", time.Now().Format("1/2/2006, 3:04:05 PM"))
	b.WriteString("\n      </div>")
	if len(p.SurveyPhotos) > 0 {
		fmt.Fprintf(&b, "\n      <p><strong>Survey Photos:</strong> %d photo(s) uploaded</p>", len(p.SurveyPhotos))
	}
	if len(p.JCReferences) > 0 {
		fmt.Fprintf(&b, "\n      <p><strong>JC References:</strong> %s</p>", refValues(p.JCReferences))
	}
	if len(p.DCReferences) > 0 {
		fmt.Fprintf(&b, "\n      <p><strong>DC References:</strong> %s</p>", refValues(p.DCReferences))
	}
	b.WriteString("\n      <p>Please review the project in the admin dashboard.</p>")
	b.WriteString(emailFooter)
	return b.String()
}

func complaintCreatedEmail(c *models.Complaint, creator *models.User) string {
	visitDates := "No visits scheduled"
	if len(c.VisitDates) > 0 {
		formatted := make([]string, 0, len(c.VisitDates))
		for _, d := range c.VisitDates {
			formatted = append(formatted, d.Format("1/2/2006"))
		}
		visitDates = strings.Join(formatted, ", ")
	}

	var b strings.Builder
	b.WriteString(`
    <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
      <h2 style="color: #A82F39;">New Complaint Created</h2>
      <p>A new complaint has been submitted in the TechnoTrends system.</p>
      <div style="background-color: #f0f9ff; padding: 20px; margin: 20px 0; border-radius: 8px;">
        <h3 style="color: #A82F39; margin: 0 0 15px 0;">Complaint Details:</h3>`)
	if c.ComplaintReference != "" {
		fmt.Fprintf(&b, "\n        <p><strong>Reference:</strong> %s</p>", c.ComplaintReference)
	}
	fmt.Fprintf(&b, "\n        <p><strong>Client Name:</strong> %s</p>", orDefault(c.ClientName, "Not specified"))
	fmt.Fprintf(&b, "\n        <p><strong>Description:</strong> %s</p>", orDefault(c.Description, "No description provided"))
	fmt.Fprintf(&b, "\n        <p><strong>Priority:</strong> <span style=\"color: %s;\">%s</span></p>",
		priorityColor(c.Priority), orDefault(string(c.Priority), string(models.PriorityMedium)))
	fmt.Fprintf(&b, "\n        <p><strong>Status:</strong> %s</p>", c.Status)
	fmt.Fprintf(&b, "\n        <p><strong>Due Date:</strong> %s</p>", formatDate(c.DueDate))
	fmt.Fprintf(&b, "\n        <p><strong>Visit Dates:</strong> %s</p>", visitDates)
	if c.PO.Value != "" {
		fmt.Fprintf(&b, "\n        <p><strong>PO Number:</strong> %s</p>", c.PO.Value)
	}
	if c.Quotation.Value != "" {
		fmt.Fprintf(&b, "\n        <p><strong>Quotation:</strong> %s</p>", c.Quotation.Value)
	}
	b.WriteString("\n        " + creatorLine(creator))
	fmt.Fprintf(&b, "\n        <p><strong>Created At:</strong> %s</p>", time.Now().Format("1/2/2006, 3:04:05 PM"))
	b.WriteString("\n      </div>")
	if len(c.Photos) > 0 {
		fmt.Fprintf(&b, "\n      <p><strong>Attachments:</strong> %d photo(s) uploaded</p>", len(c.Photos))
	}
	if len(c.JCReferences) > 0 {
		fmt.Fprintf(&b, "\n      <p><strong>JC References:</strong> %s</p>", refValues(c.JCReferences))
	}
	if len(c.DCReferences) > 0 {
		fmt.Fprintf(&b, "\n      <p><strong>DC References:</strong> %s</p>", refValues(c.DCReferences))
	}
	if c.Remarks.Value != "" {
		fmt.Fprintf(&b, "\n      <p><strong>Remarks:</strong> %s</p>", c.Remarks.Value)
	}
	b.WriteString("\n      <p>Please review the complaint in the admin dashboard.</p>")
	b.WriteString(emailFooter)
	return b.String()
}

func invoiceCreatedEmail(inv *models.Invoice, project *models.Project, creator *models.User) string {
	var b strings.Builder
	b.WriteString(`
    <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
      <h2 style="color: #A82F39;">New Invoice Created</h2>
      <p>A new invoice has been generated in the TechnoTrends system.</p>
      <div style="background-color: #f0f9ff; padding: 20px; margin: 20px 0; border-radius: 8px;">
        <h3 style="color: #A82F39; margin: 0 0 15px 0;">Invoice Details:</h3>`)
	fmt.Fprintf(&b, "\n        <p><strong>Invoice Reference:</strong> %s</p>", orDefault(inv.InvoiceReference, "Not specified"))
	fmt.Fprintf(&b, "\n        <p><strong>Amount:</strong> $%s</p>", orDefault(inv.Amount, "0"))
	fmt.Fprintf(&b, "\n        <p><strong>Payment Terms:</strong> %s</p>", inv.PaymentTerms)
	if inv.PaymentTerms == models.PaymentCredit && inv.CreditDays != "" {
		fmt.Fprintf(&b, "\n        <p><strong>Credit Days:</strong> %s days</p>", inv.CreditDays)
	}
	fmt.Fprintf(&b, "\n        <p><strong>Status:</strong> %s</p>", inv.Status)
	fmt.Fprintf(&b, "\n        <p><strong>Invoice Date:</strong> %s</p>", formatDate(inv.InvoiceDate))
	fmt.Fprintf(&b, "\n        <p><strong>Due Date:</strong> %s</p>", formatDate(inv.DueDate))
	b.WriteString("\n        " + creatorLine(creator))
	fmt.Fprintf(&b, "\n        <p><strong>Created At:</strong> %s</p>", time.Now().Format("1/2/2006, 3:04:05 PM"))
	b.WriteString("\n      </div>")
	if project != nil {
		b.WriteString(`
      <div style="background-color: #f9fafb; padding: 15px; margin: 15px 0; border-radius: 8px;">
        <h4 style="color: #374151; margin: 0 0 10px 0;">Related Project:</h4>`)
		fmt.Fprintf(&b, "\n        <p><strong>Client:</strong> %s</p>", orDefault(project.ClientName, "Not specified"))
		fmt.Fprintf(&b, "\n        <p><strong>Description:</strong> %s</p>", orDefault(project.Description, "No description"))
		fmt.Fprintf(&b, "\n        <p><strong>Project Status:</strong> %s</p>", project.Status)
		b.WriteString("\n      </div>")
	} else {
		b.WriteString("\n      <p><em>No project associated with this invoice.</em></p>")
	}
	b.WriteString("\n      <p>Please review the invoice in the admin dashboard.</p>")
	b.WriteString(emailFooter)
	return b.String()
}

func maintenanceCreatedEmail(clientName string, serviceDateCount int, creator *models.User) string {
	name := ""
	if creator != nil {
		name = creator.Name
	}
	return fmt.Sprintf(`<h2>New Maintenance Created</h2>
     <p><strong>Client:</strong> %s</p>
     <p><strong>Service Dates:</strong> %d</p>
     <p><strong>Created by:</strong> %s</p>`, clientName, serviceDateCount, name)
}

func maintenanceAssignmentEmail(clientName string) string {
	return fmt.Sprintf(`<h2>New Maintenance Assignment</h2>
     <p>You have been assigned to maintenance for <strong>%s</strong></p>
     <p>Please check your app for more details.</p>`, clientName)
}

func accountApprovedEmail(user *models.User) string {
	department := ""
	if user.Department != "" {
		department = fmt.Sprintf("\n        <p><strong>Department:</strong> %s</p>", capitalize(string(user.Department)))
	}
	return fmt.Sprintf(`
    <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
      <h2 style="color: #A82F39;">Account Approved!</h2>
      <p>Hi %s,</p>
      <p>Great news! Your account has been approved and you can now access the TechnoTrends system.</p>
      <div style="background-color: #f0f9ff; padding: 20px; margin: 20px 0; border-radius: 8px;">
        <h3 style="color: #A82F39; margin: 0 0 10px 0;">Account Details:</h3>
        <p><strong>Name:</strong> %s</p>
        <p><strong>Email:</strong> %s</p>
        <p><strong>Role:</strong> %s</p>%s
      </div>
      <p>You can now sign in to your account and start using the platform.</p>
      <div style="text-align: center; margin: 30px 0;">
        <a href="#" style="background-color: #A82F39; color: white; padding: 12px 30px; text-decoration: none; border-radius: 25px; display: inline-block;">Sign In Now</a>
      </div>
      <p>If you have any questions or need assistance, please don't hesitate to contact us.</p>
      <hr style="margin: 30px 0;">
      <p style="color: #666; font-size: 12px;">
        This is an automated message from TechnoTrends. Please do not reply to this email.
      </p>
    </div>`, user.Name, user.Name, user.Email, capitalize(string(user.Role)), department)
}

func passwordResetEmail(name, code string) string {
	return fmt.Sprintf(`
    <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
      <h2 style="color: #A82F39;">Password Reset Request</h2>
      <p>Hi %s,</p>
      <p>You have requested to reset your password. Please use the following verification code:</p>
      <div style="background-color: #f5f5f5; padding: 20px; text-align: center; margin: 20px 0;">
        <h1 style="color: #A82F39; font-size: 36px; margin: 0; letter-spacing: 5px;">%s</h1>
      </div>
      <p><strong>Important:</strong> This code will expire in 1 minute for security reasons.</p>
      <p>If you didn't request this password reset, please ignore this email.</p>
      <hr style="margin: 30px 0;">
      <p style="color: #666; font-size: 12px;">
        This is an automated message from TechnoTrends. Please do not reply to this email.
      </p>
    </div>`, name, code)
}
