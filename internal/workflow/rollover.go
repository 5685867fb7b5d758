package workflow

import (
	"time"

	"github.com/technotrends/workflow-backend/internal/models"
)

// FirstNewlyCompleted compares service dates by list position against their
// pre-update values and returns the first entry that transitioned from
// incomplete to complete, or nil. Entries appended by the update (beyond
// the original length) never count as transitions. Position matching means
// reordering entries within one update is unsupported input.
func FirstNewlyCompleted(before, after []models.ServiceDate) *models.ServiceDate {
	for i := range after {
		if i >= len(before) {
			break
		}
		if after[i].IsCompleted && !before[i].IsCompleted {
			return &after[i]
		}
	}
	return nil
}

// NextMonthServiceDates generates the following month's service-date set.
// The target month is the completed entry's date plus one calendar month;
// one fresh entry is emitted per template date with its day-of-month
// preserved, no actual date, cleared references and a pending payment.
// Only the first newly completed entry in an update triggers generation.
func NextMonthServiceDates(completed time.Time, templateDates []time.Time) []models.ServiceDate {
	next := completed.AddDate(0, 1, 0)
	nextMonth := int(next.Month())
	nextYear := next.Year()

	out := make([]models.ServiceDate, 0, len(templateDates))
	for _, tmpl := range templateDates {
		serviceDate := time.Date(nextYear, time.Month(nextMonth), tmpl.Day(), 0, 0, 0, 0, tmpl.Location())
		out = append(out, models.ServiceDate{
			ServiceDate:   serviceDate,
			ActualDate:    nil,
			JCReference:   "",
			InvoiceRef:    "",
			PaymentStatus: models.PaymentStatusPending,
			IsCompleted:   false,
			Month:         nextMonth,
			Year:          nextYear,
		})
	}
	return out
}

// TemplateDates extracts the service dates of a pre-update list for use as
// the rollover template.
func TemplateDates(serviceDates []models.ServiceDate) []time.Time {
	dates := make([]time.Time, 0, len(serviceDates))
	for _, sd := range serviceDates {
		dates = append(dates, sd.ServiceDate)
	}
	return dates
}
