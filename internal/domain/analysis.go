package domain

import (
	"math"
	"sort"
	"strings"
	"time"
)

// Point is one (time, value) sample of a derived series.
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Spell is a run of consecutive readings beyond a threshold, such as a
// heatwave or a cold spell.
type Spell struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Records holds the extreme values of a field and when they occurred.
type Records struct {
	Max     float64   `json:"max"`
	MaxTime time.Time `json:"max_time"`
	Min     float64   `json:"min"`
	MinTime time.Time `json:"min_time"`
}

// SeasonTotal is the cumulative value of a field over one year's season
// window, flagged Low when it falls at or below the percentile cutoff
// across all years (drought detection when applied to precipitation).
type SeasonTotal struct {
	Year  int     `json:"year"`
	Total float64 `json:"total"`
	Low   bool    `json:"low"`
}

// RollingMean computes the trailing mean of a field over a time window of
// windowDays, one output point per reading that carries the field.
func RollingMean(t Table, field string, windowDays int) []Point {
	times, values := t.FieldSeries(field)
	if len(values) == 0 || windowDays <= 0 {
		return nil
	}

	window := time.Duration(windowDays) * 24 * time.Hour
	points := make([]Point, len(values))
	var sum float64
	start := 0
	for i := range values {
		sum += values[i]
		for times[i].Sub(times[start]) >= window {
			sum -= values[start]
			start++
		}
		points[i] = Point{Time: times[i], Value: sum / float64(i-start+1)}
	}
	return points
}

// Percentile returns the p-th percentile (0..100) of values using linear
// interpolation between closest ranks. NaN for an empty slice.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// DetectSpells finds runs of at least minDuration consecutive readings
// whose field value is above (above=true) or below the given percentile
// threshold of the whole series. Consecutive means adjacent readings in
// the table; source data is assumed roughly daily.
func DetectSpells(t Table, field string, percentile float64, minDuration int, above bool) []Spell {
	times, values := t.FieldSeries(field)
	if len(values) == 0 || minDuration <= 0 {
		return nil
	}

	threshold := Percentile(values, percentile)
	exceeds := func(v float64) bool {
		if above {
			return v > threshold
		}
		return v < threshold
	}

	var spells []Spell
	runStart := -1
	for i, v := range values {
		if exceeds(v) {
			if runStart == -1 {
				runStart = i
			}
			continue
		}
		if runStart != -1 && i-runStart >= minDuration {
			spells = append(spells, Spell{Start: times[runStart], End: times[i-1]})
		}
		runStart = -1
	}
	if runStart != -1 && len(values)-runStart >= minDuration {
		spells = append(spells, Spell{Start: times[runStart], End: times[len(values)-1]})
	}
	return spells
}

// EstimateTrend fits an ordinary least squares line through the annual
// means of a field and returns the slope in value units per year.
// Reports false when fewer than two years of data are available.
func EstimateTrend(t Table, field string) (slopePerYear float64, ok bool) {
	times, values := t.FieldSeries(field)
	if len(values) == 0 {
		return 0, false
	}

	sums := make(map[int]float64)
	counts := make(map[int]int)
	for i, v := range values {
		y := times[i].Year()
		sums[y] += v
		counts[y]++
	}
	if len(sums) < 2 {
		return 0, false
	}

	years := make([]int, 0, len(sums))
	for y := range sums {
		years = append(years, y)
	}
	sort.Ints(years)

	var meanX, meanY float64
	for _, y := range years {
		meanX += float64(y)
		meanY += sums[y] / float64(counts[y])
	}
	n := float64(len(years))
	meanX /= n
	meanY /= n

	var cov, varX float64
	for _, y := range years {
		dx := float64(y) - meanX
		dy := sums[y]/float64(counts[y]) - meanY
		cov += dx * dy
		varX += dx * dx
	}
	if varX == 0 {
		return 0, false
	}
	return cov / varX, true
}

// FieldRecords returns the extreme values of a field with their dates.
// Reports false when the field has no values.
func FieldRecords(t Table, field string) (Records, bool) {
	times, values := t.FieldSeries(field)
	if len(values) == 0 {
		return Records{}, false
	}
	rec := Records{Max: values[0], MaxTime: times[0], Min: values[0], MinTime: times[0]}
	for i, v := range values {
		if v > rec.Max {
			rec.Max = v
			rec.MaxTime = times[i]
		}
		if v < rec.Min {
			rec.Min = v
			rec.MinTime = times[i]
		}
	}
	return rec, true
}

// IsPrecipitation reports whether a field name denotes a precipitation
// measure, using the same naming conventions as the parser's
// plausibility bounds.
func IsPrecipitation(field string) bool {
	name := strings.ToLower(field)
	return name == "prcp" || name == "rain" || strings.HasPrefix(name, "precip")
}

// SeasonTotals sums a field over the startMonth..endMonth window of each
// year and flags totals at or below the given percentile across years.
// Readings missing the field contribute zero, matching how precipitation
// archives treat dry days.
func SeasonTotals(t Table, field string, startMonth, endMonth time.Month, percentile float64) []SeasonTotal {
	totals := make(map[int]float64)
	for _, r := range t.Readings {
		m := r.Time.Month()
		if m < startMonth || m > endMonth {
			continue
		}
		totals[r.Time.Year()] += r.Values[field]
	}
	if len(totals) == 0 {
		return nil
	}

	years := make([]int, 0, len(totals))
	values := make([]float64, 0, len(totals))
	for y, v := range totals {
		years = append(years, y)
		values = append(values, v)
	}
	sort.Ints(years)

	cutoff := Percentile(values, percentile)
	out := make([]SeasonTotal, 0, len(years))
	for _, y := range years {
		out = append(out, SeasonTotal{Year: y, Total: totals[y], Low: totals[y] <= cutoff})
	}
	return out
}
