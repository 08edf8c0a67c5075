package clearance

import (
	"testing"
	"time"

	"Gin_postgres_redis_clearance_tool/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func returned(conds, clearStatus string, qty int) *models.IssuedItem {
	return &models.IssuedItem{
		Status:                models.IssueStatusReturned,
		Quantity:              qty,
		ReturnConditions:      conds,
		DamageClearanceStatus: clearStatus,
	}
}

func issued(expected *time.Time) *models.IssuedItem {
	return &models.IssuedItem{
		Status:         models.IssueStatusIssued,
		Quantity:       1,
		ExpectedReturn: expected,
	}
}

func TestComputeStatusNoItems(t *testing.T) {
	assert.Equal(t, RecipientCleared, ComputeStatus(nil, now))
	assert.Equal(t, RecipientCleared, ComputeStatus([]*models.IssuedItem{}, now))
}

func TestComputeStatusOutstanding(t *testing.T) {
	t.Run("issued with no deadline is pending", func(t *testing.T) {
		got := ComputeStatus([]*models.IssuedItem{issued(nil)}, now)
		assert.Equal(t, RecipientPending, got)
	})

	t.Run("issued past deadline is overdue", func(t *testing.T) {
		due := now.Add(-48 * time.Hour)
		got := ComputeStatus([]*models.IssuedItem{issued(&due)}, now)
		assert.Equal(t, RecipientOverdue, got)
	})

	t.Run("issued before deadline is pending", func(t *testing.T) {
		due := now.Add(48 * time.Hour)
		got := ComputeStatus([]*models.IssuedItem{issued(&due)}, now)
		assert.Equal(t, RecipientPending, got)
	})

	t.Run("partial return still counts as outstanding", func(t *testing.T) {
		it := returned(`{"SN-1":"Good"}`, "", 2)
		it.Status = models.IssueStatusPartialReturn
		got := ComputeStatus([]*models.IssuedItem{it}, now)
		assert.Equal(t, RecipientPending, got)
	})
}

// Overdue always wins, whatever else sits on the record.
func TestComputeStatusOverduePrecedence(t *testing.T) {
	due := now.Add(-time.Hour)
	items := []*models.IssuedItem{
		returned(`{"all":"Good"}`, "", 1),
		returned(`{"all":"Damaged"}`, string(StatusWaived), 1),
		issued(&due),
		issued(nil),
	}
	assert.Equal(t, RecipientOverdue, ComputeStatus(items, now))
}

func TestComputeStatusDamage(t *testing.T) {
	t.Run("good returns clear", func(t *testing.T) {
		items := []*models.IssuedItem{
			returned(`{"all":"Good"}`, "", 3),
			returned(`"good"`, "", 1),
		}
		assert.Equal(t, RecipientCleared, ComputeStatus(items, now))
	})

	t.Run("unresolved damage is pending", func(t *testing.T) {
		items := []*models.IssuedItem{returned(`{"SN-1":"Damaged"}`, string(StatusPending), 1)}
		assert.Equal(t, RecipientPending, ComputeStatus(items, now))
	})

	t.Run("escalated damage is still pending", func(t *testing.T) {
		items := []*models.IssuedItem{returned(`{"all":"Lost"}`, string(StatusEscalated), 2)}
		assert.Equal(t, RecipientPending, ComputeStatus(items, now))
	})

	t.Run("each resolved status clears", func(t *testing.T) {
		for _, s := range []Status{StatusRepaired, StatusReplaced, StatusCleared, StatusWaived} {
			items := []*models.IssuedItem{returned(`{"SN-1":"Damaged"}`, string(s), 1)}
			assert.Equal(t, RecipientCleared, ComputeStatus(items, now), string(s))
		}
	})

	t.Run("legacy marker resolves without a status", func(t *testing.T) {
		items := []*models.IssuedItem{returned(`{"all":"Lost","replaced":true}`, "", 1)}
		assert.Equal(t, RecipientCleared, ComputeStatus(items, now))
	})

	t.Run("malformed payload degrades to pending not panic", func(t *testing.T) {
		items := []*models.IssuedItem{returned(`came back damaged`, "", 1)}
		assert.Equal(t, RecipientPending, ComputeStatus(items, now))
	})

	t.Run("one unresolved item taints an otherwise clean recipient", func(t *testing.T) {
		items := []*models.IssuedItem{
			returned(`{"all":"Good"}`, "", 1),
			returned(`{"SN-2":"Damaged"}`, string(StatusRepaired), 1),
			returned(`{"SN-3":"Lost"}`, string(StatusNeedsReview), 1),
		}
		assert.Equal(t, RecipientPending, ComputeStatus(items, now))
	})
}

// A recipient with anything outstanding can never read as Cleared.
func TestComputeStatusNeverClearedWithOutstanding(t *testing.T) {
	resolved := returned(`{"all":"Damaged"}`, string(StatusRepaired), 1)
	for _, due := range []*time.Time{nil, ptr(now.Add(time.Hour)), ptr(now.Add(-time.Hour))} {
		got := ComputeStatus([]*models.IssuedItem{resolved, issued(due)}, now)
		assert.NotEqual(t, RecipientCleared, got)
	}
}

func TestItemResolved(t *testing.T) {
	it := returned(`{"all":"Damaged"}`, "", 1)
	cs, err := ItemConditions(it)
	require.NoError(t, err)
	assert.False(t, ItemResolved(it, cs))

	it.DamageClearanceStatus = string(StatusWaived)
	assert.True(t, ItemResolved(it, cs))

	it.DamageClearanceStatus = ""
	it.ReturnConditions = `{"all":"Damaged","action":"repaired"}`
	cs, err = ItemConditions(it)
	require.NoError(t, err)
	assert.True(t, ItemResolved(it, cs))

	// once the workflow owns the row, a stale payload marker cannot
	// resolve it behind the workflow's back
	it.DamageClearanceStatus = string(StatusNeedsReview)
	assert.False(t, ItemResolved(it, cs))
}

// An admin rollback must stick: the recipient stays Pending on the next
// recompute even when the old payload still carries a resolution marker.
func TestRollbackNotUndoneByLegacyMarker(t *testing.T) {
	it := returned(`{"all":"Damaged","action":"replaced"}`, string(StatusReplaced), 1)
	assert.Equal(t, RecipientCleared, ComputeStatus([]*models.IssuedItem{it}, now))

	next, fx, err := Transition(Status(it.DamageClearanceStatus), admin, ActionRollback, ResolutionNone)
	require.NoError(t, err)
	require.True(t, fx.ResetRecipientCache)
	it.DamageClearanceStatus = string(next)

	assert.Equal(t, RecipientPending, ComputeStatus([]*models.IssuedItem{it}, now))
}

func ptr(t time.Time) *time.Time { return &t }
