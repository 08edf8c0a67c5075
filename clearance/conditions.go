package clearance

import (
	"encoding/json"
	"sort"
	"strings"
)

// Condition is the assessed state of a returned unit.
type Condition string

const (
	CondGood    Condition = "Good"
	CondDamaged Condition = "Damaged"
	CondLost    Condition = "Lost"
)

// Marker is an explicit resolution recorded inside the condition payload.
// Legacy rows carry it instead of a damage_clearance_status.
type Marker string

const (
	MarkerNone     Marker = ""
	MarkerReplaced Marker = "replaced"
	MarkerRepaired Marker = "repaired"
	MarkerWaiver   Marker = "waiver"
)

// AggregateKey is the sentinel serial used when a loan is not serial-tracked.
const AggregateKey = "all"

// ConditionSet is the parsed return_conditions payload. Exactly one of
// PerSerial / Aggregate is populated; a set parsed from unreadable legacy
// data has Malformed set and only a conservative aggregate condition.
type ConditionSet struct {
	PerSerial    map[string]Condition
	Aggregate    Condition
	AggregateQty int
	Marker       Marker
	Malformed    bool
}

// NormalizeCondition maps free-form input ("damaged", "Lost") to a valid
// Condition; ok is false for anything else.
func NormalizeCondition(s string) (Condition, bool) { return parseCondition(s) }

func parseCondition(s string) (Condition, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "good":
		return CondGood, true
	case "damaged":
		return CondDamaged, true
	case "lost":
		return CondLost, true
	}
	return "", false
}

func parseMarker(s string) (Marker, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "replaced":
		return MarkerReplaced, true
	case "repaired":
		return MarkerRepaired, true
	case "waiver", "waived":
		return MarkerWaiver, true
	}
	return MarkerNone, false
}

// ParseConditionSet decodes the stored payload. quantity is the loan's unit
// count, used to weight aggregate conditions. Unparsable data never crashes
// the caller: the fallback scans the raw text for "damaged"/"lost" and the
// degraded set is returned together with ErrMalformedConditionData so the
// caller can log it.
func ParseConditionSet(raw string, quantity int) (ConditionSet, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ConditionSet{}, nil
	}
	if quantity < 1 {
		quantity = 1
	}

	// Common shape: {"SN-001": "Damaged", ...}, possibly with an "action"
	// marker, the "all" sentinel, or the legacy {"replaced": true} flag.
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		return parseObject(obj, quantity)
	}

	// Legacy: a bare string condition for the whole loan.
	var s string
	if err := json.Unmarshal([]byte(raw), &s); err == nil {
		if c, ok := parseCondition(s); ok {
			return ConditionSet{Aggregate: c, AggregateQty: quantity}, nil
		}
	}

	return fallbackScan(raw, quantity), ErrMalformedConditionData
}

func parseObject(obj map[string]json.RawMessage, quantity int) (ConditionSet, error) {
	cs := ConditionSet{}
	bad := false
	for k, v := range obj {
		key := strings.ToLower(strings.TrimSpace(k))

		// Resolution markers.
		if key == "action" {
			var s string
			if json.Unmarshal(v, &s) == nil {
				if m, ok := parseMarker(s); ok {
					cs.Marker = m
					continue
				}
			}
			bad = true
			continue
		}
		if m, ok := parseMarker(key); ok {
			var b bool
			if json.Unmarshal(v, &b) == nil && b {
				cs.Marker = m
				continue
			}
		}

		// Condition entries.
		var s string
		if json.Unmarshal(v, &s) != nil {
			bad = true
			continue
		}
		c, ok := parseCondition(s)
		if !ok {
			bad = true
			continue
		}
		if key == AggregateKey {
			cs.Aggregate = c
			cs.AggregateQty = quantity
			continue
		}
		if cs.PerSerial == nil {
			cs.PerSerial = map[string]Condition{}
		}
		cs.PerSerial[k] = c
	}
	if bad && cs.PerSerial == nil && cs.Aggregate == "" && cs.Marker == MarkerNone {
		raw, _ := json.Marshal(obj)
		return fallbackScan(string(raw), quantity), ErrMalformedConditionData
	}
	if bad {
		cs.Malformed = true
		return cs, ErrMalformedConditionData
	}
	return cs, nil
}

// fallbackScan is the conservative degradation for unreadable payloads:
// keyword presence decides whether the loan counts as damaged/lost.
func fallbackScan(raw string, quantity int) ConditionSet {
	lower := strings.ToLower(raw)
	cs := ConditionSet{Malformed: true}
	switch {
	case strings.Contains(lower, "lost"):
		cs.Aggregate = CondLost
		cs.AggregateQty = quantity
	case strings.Contains(lower, "damaged"):
		cs.Aggregate = CondDamaged
		cs.AggregateQty = quantity
	}
	return cs
}

// DamagedUnits counts units recorded as Damaged.
func (cs ConditionSet) DamagedUnits() int { return cs.count(CondDamaged) }

// LostUnits counts units recorded as Lost.
func (cs ConditionSet) LostUnits() int { return cs.count(CondLost) }

func (cs ConditionSet) count(c Condition) int {
	if cs.PerSerial != nil {
		n := 0
		for _, v := range cs.PerSerial {
			if v == c {
				n++
			}
		}
		return n
	}
	if cs.Aggregate == c {
		return cs.AggregateQty
	}
	return 0
}

// HasBad reports whether any unit came back Damaged or Lost. Good-only
// returns never enter the clearance state machine.
func (cs ConditionSet) HasBad() bool {
	return cs.DamagedUnits() > 0 || cs.LostUnits() > 0
}

// BadSerials lists the serials recorded Damaged or Lost, sorted for
// deterministic output. Empty for aggregate sets.
func (cs ConditionSet) BadSerials() []string {
	var out []string
	for s, c := range cs.PerSerial {
		if c == CondDamaged || c == CondLost {
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
