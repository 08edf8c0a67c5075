package clearance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionableStatuses(t *testing.T) {
	t.Run("storekeeper works pending and needs review only", func(t *testing.T) {
		got := ActionableStatuses(RoleStorekeeper)
		assert.ElementsMatch(t, []Status{StatusPending, StatusNeedsReview}, got)
		assert.NotContains(t, got, StatusEscalated)
	})

	t.Run("admin works escalated only", func(t *testing.T) {
		assert.Equal(t, []Status{StatusEscalated}, ActionableStatuses(RoleAdmin))
	})

	t.Run("unknown role gets nothing", func(t *testing.T) {
		assert.Nil(t, ActionableStatuses(Role("auditor")))
	})

	t.Run("resolved states are in nobody's queue", func(t *testing.T) {
		for _, role := range []Role{RoleStorekeeper, RoleAdmin} {
			for _, s := range []Status{StatusRepaired, StatusReplaced, StatusCleared, StatusWaived} {
				assert.NotContains(t, ActionableStatuses(role), s)
			}
		}
	})
}

func TestQueueRank(t *testing.T) {
	// items bounced back by an admin jump ahead of fresh pending ones
	assert.Less(t, QueueRank(StatusNeedsReview), QueueRank(StatusPending))
}

func TestNextRound(t *testing.T) {
	assert.Equal(t, 1, NextRound(0, false))
	assert.Equal(t, 1, NextRound(0, true))
	assert.Equal(t, 1, NextRound(1, false))
	assert.Equal(t, 2, NextRound(1, true))
	assert.Equal(t, 3, NextRound(3, false))
	assert.Equal(t, 4, NextRound(3, true))
}

// The round counter never decreases, whatever sequence of transitions an
// item goes through.
func TestNextRoundMonotone(t *testing.T) {
	round := 0
	for i, reopens := range []bool{false, true, false, false, true, true, false} {
		next := NextRound(round, reopens)
		require.GreaterOrEqual(t, next, round, "step %d", i)
		require.GreaterOrEqual(t, next, 1)
		round = next
	}
	assert.Equal(t, 4, round)
}
