package domain

import (
	"sort"
	"time"
)

// Reading is one timestamped observation. Values maps field name to the
// cleaned measurement; fields that were missing or implausible in the
// source row are absent from the map. Immutable once parsed.
type Reading struct {
	Time   time.Time
	Values map[string]float64
}

// Value returns the reading's value for a field and whether it is present.
func (r Reading) Value(field string) (float64, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// Table is the ordered sequence of readings for one station, time-ordered
// with unique timestamps. Both invariants are enforced by NewTable.
type Table struct {
	Source   string
	Fields   []string
	Readings []Reading
}

// ParseStats summarizes parse quality for one load: data rows seen versus
// rows discarded (unparseable timestamp, no surviving values, or a
// duplicate timestamp).
type ParseStats struct {
	RowsRead    int `json:"rows_read"`
	RowsSkipped int `json:"rows_skipped"`
}

// NewTable builds a Table from parsed readings, sorting by timestamp and
// dropping duplicate timestamps keeping the first occurrence.
func NewTable(source string, fields []string, readings []Reading) Table {
	sorted := make([]Reading, len(readings))
	copy(sorted, readings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	deduped := sorted[:0]
	for _, r := range sorted {
		if len(deduped) > 0 && r.Time.Equal(deduped[len(deduped)-1].Time) {
			continue
		}
		deduped = append(deduped, r)
	}

	return Table{Source: source, Fields: fields, Readings: deduped}
}

// Len returns the number of readings.
func (t Table) Len() int { return len(t.Readings) }

// Empty reports whether the table has no readings.
func (t Table) Empty() bool { return len(t.Readings) == 0 }

// TimeRange returns the first and last timestamps. Zero times for an
// empty table.
func (t Table) TimeRange() (time.Time, time.Time) {
	if t.Empty() {
		return time.Time{}, time.Time{}
	}
	return t.Readings[0].Time, t.Readings[len(t.Readings)-1].Time
}

// HasField reports whether the table carries the named field.
func (t Table) HasField(field string) bool {
	for _, f := range t.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// FilterRange returns a table restricted to readings in [start, end].
// A zero start or end leaves that side open.
func (t Table) FilterRange(start, end time.Time) Table {
	out := Table{Source: t.Source, Fields: t.Fields}
	for _, r := range t.Readings {
		if !start.IsZero() && r.Time.Before(start) {
			continue
		}
		if !end.IsZero() && r.Time.After(end) {
			continue
		}
		out.Readings = append(out.Readings, r)
	}
	return out
}

// FilterFields returns a table exposing only the named fields, in the
// given order. Fields the table does not carry are dropped from the
// result's field list. Reading value maps are shared, not copied;
// readings are immutable so this is safe.
func (t Table) FilterFields(fields []string) Table {
	kept := make([]string, 0, len(fields))
	for _, f := range fields {
		if t.HasField(f) {
			kept = append(kept, f)
		}
	}
	return Table{Source: t.Source, Fields: kept, Readings: t.Readings}
}

// FieldSeries returns the timestamps and values of all readings that
// carry the named field, in time order.
func (t Table) FieldSeries(field string) ([]time.Time, []float64) {
	var times []time.Time
	var values []float64
	for _, r := range t.Readings {
		if v, ok := r.Values[field]; ok {
			times = append(times, r.Time)
			values = append(values, v)
		}
	}
	return times, values
}
