// Package viz builds chart specifications from analyzed station data.
// Specs are plain data consumed by the dashboard's client-side plotting
// layer and by the report template; nothing here performs I/O.
package viz

import (
	"fmt"
	"sort"
	"time"

	"github.com/MidoraAholo/weather-dashboard/internal/domain"
)

// ChartSpec describes one chart. Kind selects the renderer; the section
// fields used depend on it: Series/Anomalies/Bands for "timeseries",
// Bins for "histogram", Boxes for "monthly".
type ChartSpec struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Title  string `json:"title"`
	XLabel string `json:"x_label"`
	YLabel string `json:"y_label"`

	Series    []Series             `json:"series,omitempty"`
	Anomalies []domain.Point       `json:"anomalies,omitempty"`
	Bands     []domain.Spell       `json:"bands,omitempty"`
	ColdBands []domain.Spell       `json:"cold_bands,omitempty"`
	Bins      []Bin                `json:"bins,omitempty"`
	Boxes     []MonthBox           `json:"boxes,omitempty"`
	Seasons   []domain.SeasonTotal `json:"seasons,omitempty"`
}

// Series is one named line of time/value points.
type Series struct {
	Name   string         `json:"name"`
	Points []domain.Point `json:"points"`
}

// Bin is one histogram bucket over [Low, High).
type Bin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// MonthBox is the five-number summary of a field for one calendar month
// across all years, the seasonal-distribution view.
type MonthBox struct {
	Month  time.Month `json:"month"`
	Min    float64    `json:"min"`
	Q1     float64    `json:"q1"`
	Median float64    `json:"median"`
	Q3     float64    `json:"q3"`
	Max    float64    `json:"max"`
	Count  int        `json:"count"`
}

// TimeSeries builds the main chart for a field: the raw series, an
// optional rolling-mean overlay, anomaly markers, and hot/cold spell
// bands.
func TimeSeries(t domain.Table, field string, rolling []domain.Point, anomalies []domain.Anomaly, spells, coldSpells []domain.Spell) ChartSpec {
	times, values := t.FieldSeries(field)
	points := make([]domain.Point, len(values))
	for i := range values {
		points[i] = domain.Point{Time: times[i], Value: values[i]}
	}

	spec := ChartSpec{
		ID:     "timeseries-" + field,
		Kind:   "timeseries",
		Title:  fmt.Sprintf("Time series of %s", field),
		XLabel: "Date",
		YLabel: field,
		Series:    []Series{{Name: field, Points: points}},
		Bands:     spells,
		ColdBands: coldSpells,
	}

	if len(rolling) > 0 {
		spec.Series = append(spec.Series, Series{Name: field + " (rolling mean)", Points: rolling})
	}

	for _, a := range anomalies {
		if a.Field == field {
			spec.Anomalies = append(spec.Anomalies, domain.Point{Time: a.Time, Value: a.Value})
		}
	}
	return spec
}

// Histogram buckets a field's values into the given number of equal-width
// bins. A constant series collapses into a single bin holding every value.
func Histogram(t domain.Table, field string, bins int) ChartSpec {
	spec := ChartSpec{
		ID:     "histogram-" + field,
		Kind:   "histogram",
		Title:  fmt.Sprintf("Distribution of %s", field),
		XLabel: field,
		YLabel: "Count",
	}

	_, values := t.FieldSeries(field)
	if len(values) == 0 || bins < 1 {
		return spec
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		spec.Bins = []Bin{{Low: lo, High: hi, Count: len(values)}}
		return spec
	}

	width := (hi - lo) / float64(bins)
	spec.Bins = make([]Bin, bins)
	for i := range spec.Bins {
		spec.Bins[i] = Bin{Low: lo + float64(i)*width, High: lo + float64(i+1)*width}
	}
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins { // the maximum lands in the last bin
			idx = bins - 1
		}
		spec.Bins[idx].Count++
	}
	return spec
}

// MonthlyDistribution summarizes a field per calendar month across all
// years: min, quartiles, max. Months with no data are omitted.
func MonthlyDistribution(t domain.Table, field string) ChartSpec {
	spec := ChartSpec{
		ID:     "monthly-" + field,
		Kind:   "monthly",
		Title:  fmt.Sprintf("Seasonal distribution of %s", field),
		XLabel: "Month",
		YLabel: field,
	}

	byMonth := make(map[time.Month][]float64)
	for _, r := range t.Readings {
		if v, ok := r.Values[field]; ok {
			m := r.Time.Month()
			byMonth[m] = append(byMonth[m], v)
		}
	}

	for m := time.January; m <= time.December; m++ {
		values := byMonth[m]
		if len(values) == 0 {
			continue
		}
		sort.Float64s(values)
		spec.Boxes = append(spec.Boxes, MonthBox{
			Month:  m,
			Min:    values[0],
			Q1:     domain.Percentile(values, 25),
			Median: domain.Percentile(values, 50),
			Q3:     domain.Percentile(values, 75),
			Max:    values[len(values)-1],
			Count:  len(values),
		})
	}
	return spec
}

// SeasonTotalsChart plots per-year cumulative totals with their
// low-season flags, one bar per year.
func SeasonTotalsChart(field string, totals []domain.SeasonTotal) ChartSpec {
	return ChartSpec{
		ID:      "seasons-" + field,
		Kind:    "seasons",
		Title:   fmt.Sprintf("Season totals of %s", field),
		XLabel:  "Year",
		YLabel:  field,
		Seasons: totals,
	}
}
