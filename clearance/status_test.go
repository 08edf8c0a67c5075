package clearance

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	keeper = Actor{Role: RoleStorekeeper, Identifier: "keeper-1"}
	admin  = Actor{Role: RoleAdmin, Identifier: "admin-1"}
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		actor   Actor
		action  Action
		res     Resolution
		want    Status
		wantErr bool
	}{
		{"resolve repaired from pending", StatusPending, keeper, ActionResolve, ResolutionRepaired, StatusRepaired, false},
		{"resolve replaced from pending", StatusPending, keeper, ActionResolve, ResolutionReplaced, StatusReplaced, false},
		{"resolve from needs review", StatusNeedsReview, keeper, ActionResolve, ResolutionRepaired, StatusRepaired, false},
		{"resolve without resolution", StatusPending, keeper, ActionResolve, ResolutionNone, "", true},
		{"resolve from escalated", StatusEscalated, keeper, ActionResolve, ResolutionRepaired, "", true},
		{"resolve from repaired", StatusRepaired, keeper, ActionResolve, ResolutionRepaired, "", true},

		{"escalate from pending", StatusPending, keeper, ActionEscalate, ResolutionNone, StatusEscalated, false},
		{"escalate from needs review", StatusNeedsReview, keeper, ActionEscalate, ResolutionNone, StatusEscalated, false},
		{"escalate twice", StatusEscalated, keeper, ActionEscalate, ResolutionNone, "", true},

		{"clear repaired", StatusEscalated, admin, ActionClear, ResolutionRepaired, StatusRepaired, false},
		{"clear replaced", StatusEscalated, admin, ActionClear, ResolutionReplaced, StatusReplaced, false},
		{"clear without resolution", StatusEscalated, admin, ActionClear, ResolutionNone, "", true},
		{"clear from pending", StatusPending, admin, ActionClear, ResolutionRepaired, "", true},

		{"waive", StatusEscalated, admin, ActionWaive, ResolutionNone, StatusWaived, false},
		{"waive from pending", StatusPending, admin, ActionWaive, ResolutionNone, "", true},

		{"reject", StatusEscalated, admin, ActionReject, ResolutionNone, StatusPending, false},
		{"reject from pending", StatusPending, admin, ActionReject, ResolutionNone, "", true},
		{"reject from repaired", StatusRepaired, admin, ActionReject, ResolutionNone, "", true},

		{"rollback repaired", StatusRepaired, admin, ActionRollback, ResolutionNone, StatusNeedsReview, false},
		{"rollback replaced", StatusReplaced, admin, ActionRollback, ResolutionNone, StatusNeedsReview, false},
		{"rollback waived", StatusWaived, admin, ActionRollback, ResolutionNone, StatusNeedsReview, false},
		{"rollback legacy cleared", StatusCleared, admin, ActionRollback, ResolutionNone, StatusNeedsReview, false},
		{"rollback pending", StatusPending, admin, ActionRollback, ResolutionNone, "", true},

		{"unknown action", StatusPending, keeper, Action("frobnicate"), ResolutionNone, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _, err := Transition(tt.current, tt.actor, tt.action, tt.res)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidTransition)
				// the status never changes on a rejected action
				assert.Equal(t, tt.current, next)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, next)
		})
	}
}

func TestTransitionRoleGates(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		actor  Actor
		action Action
		res    Resolution
	}{
		{"admin cannot resolve", StatusPending, admin, ActionResolve, ResolutionRepaired},
		{"admin cannot escalate", StatusPending, admin, ActionEscalate, ResolutionNone},
		{"storekeeper cannot clear", StatusEscalated, keeper, ActionClear, ResolutionRepaired},
		{"storekeeper cannot waive", StatusEscalated, keeper, ActionWaive, ResolutionNone},
		{"storekeeper cannot reject", StatusEscalated, keeper, ActionReject, ResolutionNone},
		{"storekeeper cannot rollback", StatusRepaired, keeper, ActionRollback, ResolutionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Transition(tt.status, tt.actor, tt.action, tt.res)
			require.Error(t, err)

			var te *TransitionError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.actor.Role, te.Role)
			assert.Equal(t, tt.action, te.Action)
		})
	}
}

func TestTransitionEffects(t *testing.T) {
	t.Run("replaced adjusts inventory, repaired does not", func(t *testing.T) {
		_, fx, err := Transition(StatusPending, keeper, ActionResolve, ResolutionReplaced)
		require.NoError(t, err)
		assert.True(t, fx.AdjustInventory)
		assert.Equal(t, TagStorekeeper, fx.NoteTag)

		_, fx, err = Transition(StatusPending, keeper, ActionResolve, ResolutionRepaired)
		require.NoError(t, err)
		assert.False(t, fx.AdjustInventory)
	})

	t.Run("escalate notifies admin", func(t *testing.T) {
		_, fx, err := Transition(StatusPending, keeper, ActionEscalate, ResolutionNone)
		require.NoError(t, err)
		assert.Equal(t, RoleAdmin, fx.Notify)
		assert.False(t, fx.ReopensRound)
	})

	t.Run("reject notifies storekeeper and reopens the round", func(t *testing.T) {
		_, fx, err := Transition(StatusEscalated, admin, ActionReject, ResolutionNone)
		require.NoError(t, err)
		assert.Equal(t, RoleStorekeeper, fx.Notify)
		assert.True(t, fx.ReopensRound)
		assert.False(t, fx.ResetRecipientCache)
	})

	t.Run("rollback resets the recipient cache", func(t *testing.T) {
		_, fx, err := Transition(StatusReplaced, admin, ActionRollback, ResolutionNone)
		require.NoError(t, err)
		assert.Equal(t, TagAdminRollback, fx.NoteTag)
		assert.Equal(t, RoleStorekeeper, fx.Notify)
		assert.True(t, fx.ResetRecipientCache)
		assert.True(t, fx.ReopensRound)
	})

	t.Run("waive never touches inventory", func(t *testing.T) {
		_, fx, err := Transition(StatusEscalated, admin, ActionWaive, ResolutionNone)
		require.NoError(t, err)
		assert.False(t, fx.AdjustInventory)
	})
}

// A full negotiation: escalate, reject, escalate again, admin clears with a
// replacement. Exactly one step along the way may adjust inventory.
func TestNegotiationRoundTrip(t *testing.T) {
	status := StatusPending
	adjustments := 0

	step := func(actor Actor, action Action, res Resolution) {
		t.Helper()
		next, fx, err := Transition(status, actor, action, res)
		require.NoError(t, err)
		if fx.AdjustInventory {
			adjustments++
		}
		status = next
	}

	step(keeper, ActionEscalate, ResolutionNone)
	require.Equal(t, StatusEscalated, status)

	step(admin, ActionReject, ResolutionNone)
	require.Equal(t, StatusPending, status)

	step(keeper, ActionEscalate, ResolutionNone)
	step(admin, ActionClear, ResolutionReplaced)

	assert.Equal(t, StatusReplaced, status)
	assert.Equal(t, 1, adjustments)
	assert.True(t, status.Resolved())
}

// A second identical decision on an already-decided item must fail instead of
// double-applying side effects.
func TestDoubleDecisionRejected(t *testing.T) {
	next, _, err := Transition(StatusEscalated, admin, ActionClear, ResolutionReplaced)
	require.NoError(t, err)

	_, _, err = Transition(next, admin, ActionClear, ResolutionReplaced)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

// Replaying a reject against the Pending state it produced must fail rather
// than re-fire its side effects (a second notification, another round bump).
func TestRejectTwiceFails(t *testing.T) {
	next, fx, err := Transition(StatusEscalated, admin, ActionReject, ResolutionNone)
	require.NoError(t, err)
	require.Equal(t, StatusPending, next)
	require.True(t, fx.ReopensRound)

	_, fx, err = Transition(next, admin, ActionReject, ResolutionNone)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.False(t, fx.ReopensRound)
}

func TestStatusResolved(t *testing.T) {
	for _, s := range []Status{StatusRepaired, StatusReplaced, StatusCleared, StatusWaived} {
		assert.True(t, s.Resolved(), string(s))
	}
	for _, s := range []Status{StatusNone, StatusPending, StatusNeedsReview, StatusEscalated} {
		assert.False(t, s.Resolved(), string(s))
	}
}
