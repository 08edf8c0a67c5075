package clearance

import (
	"time"

	"Gin_postgres_redis_clearance_tool/models"
)

// RecipientStatus is the recipient-level clearance verdict.
type RecipientStatus string

const (
	RecipientCleared RecipientStatus = "Cleared"
	RecipientPending RecipientStatus = "Pending"
	RecipientOverdue RecipientStatus = "Overdue"
)

// ItemConditions parses an item's recorded return conditions. The returned
// set is usable even when err is ErrMalformedConditionData; callers log the
// degradation.
func ItemConditions(it *models.IssuedItem) (ConditionSet, error) {
	return ParseConditionSet(it.ReturnConditions, it.Quantity)
}

// ItemResolved reports whether a Damaged/Lost item counts as resolved for
// clearance. Once a damage_clearance_status is set the state machine owns
// the row and only a terminal state resolves it; the legacy resolution
// marker inside the condition payload counts only for rows the machine
// never touched. Otherwise a rollback would be undone by the stale marker
// on the next recompute.
func ItemResolved(it *models.IssuedItem, cs ConditionSet) bool {
	if s := Status(it.DamageClearanceStatus); s != StatusNone {
		return s.Resolved()
	}
	return cs.Marker != MarkerNone
}

// ComputeStatus derives the recipient verdict from all of their issued
// items. Precedence is fixed: Overdue beats everything, then Pending, then
// Cleared. No items at all is Cleared. This is the authoritative answer;
// the persisted Clearance row is only a cache of it.
func ComputeStatus(items []*models.IssuedItem, now time.Time) RecipientStatus {
	if len(items) == 0 {
		return RecipientCleared
	}

	outstanding := false
	unresolved := false
	for _, it := range items {
		if it.Outstanding() {
			outstanding = true
			if it.ExpectedReturn != nil && it.ExpectedReturn.Before(now) {
				return RecipientOverdue
			}
			continue
		}
		cs, _ := ItemConditions(it)
		if cs.HasBad() && !ItemResolved(it, cs) {
			unresolved = true
		}
	}

	if outstanding || unresolved {
		return RecipientPending
	}
	return RecipientCleared
}
