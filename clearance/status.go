// Package clearance implements the damage/loss clearance workflow: the
// per-item state machine, the recipient-level status aggregation and the
// parsing of recorded return conditions. Everything here is pure; the db
// layer executes the side effects a transition declares.
package clearance

// Status is the per-item damage_clearance_status value.
type Status string

const (
	StatusNone        Status = ""
	StatusPending     Status = "Pending"
	StatusNeedsReview Status = "Needs Review"
	StatusEscalated   Status = "Escalated"
	StatusRepaired    Status = "Repaired"
	StatusReplaced    Status = "Replaced"
	StatusCleared     Status = "Cleared"
	StatusWaived      Status = "Waived"
)

// Resolved reports whether s satisfies a damaged/lost condition for
// clearance purposes.
func (s Status) Resolved() bool {
	switch s {
	case StatusRepaired, StatusReplaced, StatusCleared, StatusWaived:
		return true
	}
	return false
}

// Role identifies which side of the workflow an actor drives.
type Role string

const (
	RoleStorekeeper Role = "storekeeper"
	RoleAdmin       Role = "admin"
)

// Actor is the calling identity, passed explicitly into every transition.
// The core never reads ambient session state.
type Actor struct {
	Role       Role
	Identifier string
}

// Action is one of the fixed workflow verbs.
type Action string

const (
	ActionResolve  Action = "resolve"  // storekeeper: Pending/NeedsReview -> Repaired|Replaced
	ActionEscalate Action = "escalate" // storekeeper: Pending/NeedsReview -> Escalated
	ActionClear    Action = "clear"    // admin: Escalated -> Repaired|Replaced
	ActionWaive    Action = "waive"    // admin: Escalated -> Waived
	ActionReject   Action = "reject"   // admin: Escalated -> Pending
	ActionRollback Action = "rollback" // admin: resolved -> Needs Review
)

// Resolution is the terminal decision kind for resolve/clear.
type Resolution string

const (
	ResolutionNone     Resolution = ""
	ResolutionRepaired Resolution = "Repaired"
	ResolutionReplaced Resolution = "Replaced"
)

// Note tags rendered in the free-text audit trail.
const (
	TagStorekeeper   = "[Storekeeper]"
	TagAdminCleared  = "[Admin Cleared]"
	TagAdminWaived   = "[Admin Waived]"
	TagAdminRejected = "[Admin Rejected]"
	TagAdminRollback = "[Admin Rollback]"
)

// Effects declares the side effects the coordinator must execute atomically
// with the state change. The state machine itself never touches storage.
type Effects struct {
	NoteTag string
	// Notify names the role to alert, empty for none.
	Notify Role
	// AdjustInventory is set when a Replaced resolution must move affected
	// units from the damaged/lost counters back into the equipment pool.
	AdjustInventory bool
	// ResetRecipientCache forces the recipient's cached clearance to Pending
	// regardless of other items (a previously resolved fact was retracted).
	ResetRecipientCache bool
	// ReopensRound marks transitions that hand the item back to the
	// storekeeper, incrementing the negotiation round counter.
	ReopensRound bool
}

func workable(s Status) bool { return s == StatusPending || s == StatusNeedsReview }

// Transition validates one actor-initiated action against the current status
// and returns the next status plus the declared side effects. It is the only
// legal way to compute a damage_clearance_status change.
func Transition(current Status, actor Actor, action Action, res Resolution) (Status, Effects, error) {
	fail := func(reason string) (Status, Effects, error) {
		return current, Effects{}, &TransitionError{From: current, Role: actor.Role, Action: action, Reason: reason}
	}

	switch action {
	case ActionResolve:
		if actor.Role != RoleStorekeeper {
			return fail("only the storekeeper resolves items; admins act on escalated items via clear/waive")
		}
		if !workable(current) {
			return fail("item is not waiting on the storekeeper")
		}
		switch res {
		case ResolutionRepaired:
			return StatusRepaired, Effects{NoteTag: TagStorekeeper}, nil
		case ResolutionReplaced:
			return StatusReplaced, Effects{NoteTag: TagStorekeeper, AdjustInventory: true}, nil
		}
		return fail("resolution must be Repaired or Replaced")

	case ActionEscalate:
		if actor.Role != RoleStorekeeper {
			return fail("only the storekeeper escalates")
		}
		if !workable(current) {
			return fail("item is not waiting on the storekeeper")
		}
		return StatusEscalated, Effects{NoteTag: TagStorekeeper, Notify: RoleAdmin}, nil

	case ActionClear:
		if actor.Role != RoleAdmin {
			return fail("only an admin clears escalated items")
		}
		if current != StatusEscalated {
			return fail("item is not escalated")
		}
		switch res {
		case ResolutionRepaired:
			return StatusRepaired, Effects{NoteTag: TagAdminCleared}, nil
		case ResolutionReplaced:
			return StatusReplaced, Effects{NoteTag: TagAdminCleared, AdjustInventory: true}, nil
		}
		return fail("resolution must be Repaired or Replaced")

	case ActionWaive:
		if actor.Role != RoleAdmin {
			return fail("only an admin waives")
		}
		if current != StatusEscalated {
			return fail("item is not escalated")
		}
		return StatusWaived, Effects{NoteTag: TagAdminWaived}, nil

	case ActionReject:
		if actor.Role != RoleAdmin {
			return fail("only an admin rejects")
		}
		if current != StatusEscalated {
			return fail("item is not escalated")
		}
		return StatusPending, Effects{NoteTag: TagAdminRejected, Notify: RoleStorekeeper, ReopensRound: true}, nil

	case ActionRollback:
		if actor.Role != RoleAdmin {
			return fail("only an admin rolls back a resolution")
		}
		if !current.Resolved() {
			return fail("item is not resolved")
		}
		return StatusNeedsReview, Effects{
			NoteTag:             TagAdminRollback,
			Notify:              RoleStorekeeper,
			ResetRecipientCache: true,
			ReopensRound:        true,
		}, nil
	}

	return fail("unknown action")
}
