package db

import (
	"testing"

	"Gin_postgres_redis_clearance_tool/clearance"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeReturnConditions(t *testing.T) {
	t.Run("first recording tallies per unit", func(t *testing.T) {
		merged, good, damaged, lost, err := mergeReturnConditions(
			map[string]string{},
			map[string]clearance.Condition{
				"SN-1": clearance.CondGood,
				"SN-2": clearance.CondDamaged,
				"SN-3": clearance.CondLost,
			}, 3)
		require.NoError(t, err)
		assert.Equal(t, 1, good)
		assert.Equal(t, 1, damaged)
		assert.Equal(t, 1, lost)
		assert.Equal(t, "Damaged", merged["SN-2"])
	})

	t.Run("aggregate entry weighs the full quantity", func(t *testing.T) {
		_, good, _, _, err := mergeReturnConditions(
			map[string]string{},
			map[string]clearance.Condition{clearance.AggregateKey: clearance.CondGood}, 5)
		require.NoError(t, err)
		assert.Equal(t, 5, good)
	})

	t.Run("partial return keeps earlier entries", func(t *testing.T) {
		merged, good, damaged, _, err := mergeReturnConditions(
			map[string]string{"SN-1": "Good"},
			map[string]clearance.Condition{"SN-2": clearance.CondDamaged}, 2)
		require.NoError(t, err)
		assert.Equal(t, "Good", merged["SN-1"])
		assert.Equal(t, "Damaged", merged["SN-2"])
		// SN-1's ledger move happened on the earlier call, only SN-2 counts now
		assert.Equal(t, 0, good)
		assert.Equal(t, 1, damaged)
	})

	t.Run("re-recording a serial is rejected", func(t *testing.T) {
		// a "correction" after the shelf count moved would double-count the
		// unit: +1 quantity from the Good recording plus +1 damaged_count
		merged, good, damaged, lost, err := mergeReturnConditions(
			map[string]string{"SN-1": "Good"},
			map[string]clearance.Condition{"SN-1": clearance.CondDamaged}, 1)
		require.ErrorIs(t, err, ErrConditionAlreadyRecorded)
		assert.Nil(t, merged)
		assert.Zero(t, good)
		assert.Zero(t, damaged)
		assert.Zero(t, lost)
	})

	t.Run("re-recording the aggregate is rejected", func(t *testing.T) {
		_, _, _, _, err := mergeReturnConditions(
			map[string]string{clearance.AggregateKey: "Good"},
			map[string]clearance.Condition{clearance.AggregateKey: clearance.CondLost}, 4)
		require.ErrorIs(t, err, ErrConditionAlreadyRecorded)
	})
}
