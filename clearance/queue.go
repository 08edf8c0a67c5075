package clearance

// ActionableStatuses lists the per-item statuses a role may act on.
// Escalated items sit with the admin and leave the storekeeper's queue;
// everything the storekeeper can work is Pending or Needs Review.
func ActionableStatuses(role Role) []Status {
	switch role {
	case RoleStorekeeper:
		return []Status{StatusNeedsReview, StatusPending}
	case RoleAdmin:
		return []Status{StatusEscalated}
	}
	return nil
}

// QueueRank orders the storekeeper queue: items an admin bounced back
// (Needs Review) jump ahead of fresh Pending items.
func QueueRank(s Status) int {
	if s == StatusNeedsReview {
		return 0
	}
	return 1
}

// NextRound computes the negotiation round an audit entry records. Rounds
// start at 1; a transition that hands the item back to the storekeeper
// (reject, rollback) opens a new round. The counter only ever grows — there
// is no cap on how often an item may bounce, the round is the operational
// signal for endless back-and-forth.
func NextRound(last int, reopens bool) int {
	if last <= 0 {
		return 1
	}
	if reopens {
		return last + 1
	}
	return last
}
