package clearance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConditionSetPerSerial(t *testing.T) {
	cs, err := ParseConditionSet(`{"SN-001":"Good","SN-002":"Damaged","SN-003":"lost"}`, 3)
	require.NoError(t, err)

	assert.Equal(t, CondGood, cs.PerSerial["SN-001"])
	assert.Equal(t, CondDamaged, cs.PerSerial["SN-002"])
	assert.Equal(t, CondLost, cs.PerSerial["SN-003"])
	assert.Equal(t, 1, cs.DamagedUnits())
	assert.Equal(t, 1, cs.LostUnits())
	assert.True(t, cs.HasBad())
	assert.Equal(t, []string{"SN-002", "SN-003"}, cs.BadSerials())
	assert.False(t, cs.Malformed)
}

func TestParseConditionSetAggregate(t *testing.T) {
	cs, err := ParseConditionSet(`{"all":"Damaged"}`, 5)
	require.NoError(t, err)

	assert.Nil(t, cs.PerSerial)
	assert.Equal(t, CondDamaged, cs.Aggregate)
	assert.Equal(t, 5, cs.DamagedUnits())
	assert.Empty(t, cs.BadSerials())
}

func TestParseConditionSetBareString(t *testing.T) {
	cs, err := ParseConditionSet(`"Lost"`, 2)
	require.NoError(t, err)
	assert.Equal(t, CondLost, cs.Aggregate)
	assert.Equal(t, 2, cs.LostUnits())

	// good-only returns never enter the workflow
	cs, err = ParseConditionSet(`"good"`, 2)
	require.NoError(t, err)
	assert.False(t, cs.HasBad())
}

func TestParseConditionSetEmpty(t *testing.T) {
	for _, raw := range []string{"", "   "} {
		cs, err := ParseConditionSet(raw, 4)
		require.NoError(t, err)
		assert.False(t, cs.HasBad())
		assert.False(t, cs.Malformed)
	}
}

func TestParseConditionSetMarkers(t *testing.T) {
	t.Run("action key", func(t *testing.T) {
		cs, err := ParseConditionSet(`{"all":"Damaged","action":"waiver"}`, 1)
		require.NoError(t, err)
		assert.Equal(t, MarkerWaiver, cs.Marker)
		assert.True(t, cs.HasBad())
	})

	t.Run("action accepts waived spelling", func(t *testing.T) {
		cs, err := ParseConditionSet(`{"all":"Damaged","action":"waived"}`, 1)
		require.NoError(t, err)
		assert.Equal(t, MarkerWaiver, cs.Marker)
	})

	t.Run("legacy boolean flag", func(t *testing.T) {
		cs, err := ParseConditionSet(`{"all":"Lost","replaced":true}`, 1)
		require.NoError(t, err)
		assert.Equal(t, MarkerReplaced, cs.Marker)
	})

	t.Run("false flag is ignored", func(t *testing.T) {
		cs, err := ParseConditionSet(`{"SN-9":"Damaged","repaired":false}`, 1)
		// an explicit false is not a resolution, and the entry is neither a
		// valid condition, so the set degrades to malformed-but-usable
		require.ErrorIs(t, err, ErrMalformedConditionData)
		assert.Equal(t, MarkerNone, cs.Marker)
		assert.Equal(t, CondDamaged, cs.PerSerial["SN-9"])
		assert.True(t, cs.Malformed)
	})
}

func TestParseConditionSetMalformed(t *testing.T) {
	t.Run("not json at all", func(t *testing.T) {
		cs, err := ParseConditionSet(`item came back damaged, screen cracked`, 3)
		require.ErrorIs(t, err, ErrMalformedConditionData)
		assert.True(t, cs.Malformed)
		assert.Equal(t, CondDamaged, cs.Aggregate)
		assert.Equal(t, 3, cs.DamagedUnits())
	})

	t.Run("lost keyword wins over damaged", func(t *testing.T) {
		cs, err := ParseConditionSet(`damaged and then lost entirely`, 1)
		require.ErrorIs(t, err, ErrMalformedConditionData)
		assert.Equal(t, CondLost, cs.Aggregate)
	})

	t.Run("no keywords means no bad units", func(t *testing.T) {
		cs, err := ParseConditionSet(`[1,2,3]`, 1)
		require.ErrorIs(t, err, ErrMalformedConditionData)
		assert.True(t, cs.Malformed)
		assert.False(t, cs.HasBad())
	})

	t.Run("object with only junk values falls back to scan", func(t *testing.T) {
		cs, err := ParseConditionSet(`{"SN-1":"broken beyond recognition"}`, 2)
		require.ErrorIs(t, err, ErrMalformedConditionData)
		assert.True(t, cs.Malformed)
		assert.Nil(t, cs.PerSerial)
	})

	t.Run("zero quantity is clamped", func(t *testing.T) {
		cs, err := ParseConditionSet(`"Damaged"`, 0)
		require.NoError(t, err)
		assert.Equal(t, 1, cs.DamagedUnits())
	})
}

func TestNormalizeCondition(t *testing.T) {
	for in, want := range map[string]Condition{
		"good": CondGood, "Good": CondGood, " DAMAGED ": CondDamaged, "lost": CondLost,
	} {
		got, ok := NormalizeCondition(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got)
	}

	for _, in := range []string{"", "ok", "broken", "missing"} {
		_, ok := NormalizeCondition(in)
		assert.False(t, ok, in)
	}
}
