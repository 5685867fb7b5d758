// Package workflow holds the pure status-derivation rules and the
// maintenance rollover logic. Every mutating operation on an entity re-runs
// the relevant rule with the final, post-merge values of its inputs.
package workflow

import (
	"github.com/technotrends/workflow-backend/internal/models"
)

// DeriveReferenceStatus computes the lifecycle status of a project or
// complaint. Evaluated in fixed priority order: any JC or DC reference wins
// over user assignment, which wins over the pending default. Cancelled is
// never produced here; it is only reachable through soft delete.
func DeriveReferenceStatus(jcRefs, dcRefs []models.EditableField, userCount int) models.Status {
	if len(jcRefs) > 0 || len(dcRefs) > 0 {
		return models.StatusCompleted
	}
	if userCount > 0 {
		return models.StatusInProgress
	}
	return models.StatusPending
}

// DeriveMaintenanceStatus computes the lifecycle status of a maintenance
// contract. User assignment takes priority over completion: an assigned
// contract is In Progress even when every service date is done.
func DeriveMaintenanceStatus(serviceDates []models.ServiceDate, userCount int) models.Status {
	if userCount > 0 {
		return models.StatusInProgress
	}
	if len(serviceDates) > 0 {
		allCompleted := true
		for _, sd := range serviceDates {
			if !sd.IsCompleted {
				allCompleted = false
				break
			}
		}
		if allCompleted {
			return models.StatusCompleted
		}
	}
	return models.StatusPending
}

// HasReferences reports whether a project or complaint carries at least one
// JC or DC reference. Used for the auto-invoice transition check.
func HasReferences(jcRefs, dcRefs []models.EditableField) bool {
	return len(jcRefs) > 0 || len(dcRefs) > 0
}
