package domain

import (
	"fmt"
	"math"
	"time"
)

// Summary is the derived aggregate for one measured field. Computed fresh
// on demand, never persisted.
type Summary struct {
	Field    string    `json:"field"`
	Count    int       `json:"count"`
	Mean     float64   `json:"mean"`
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	MinTime  time.Time `json:"min_time"`
	MaxTime  time.Time `json:"max_time"`
	Variance float64   `json:"variance"`
	StdDev   float64   `json:"std_dev"`
}

// Anomaly flags one reading whose field value deviates beyond the
// configured threshold from that field's mean. Score is the absolute
// z-score.
type Anomaly struct {
	Time   time.Time `json:"time"`
	Field  string    `json:"field"`
	Value  float64   `json:"value"`
	Score  float64   `json:"score"`
	Reason string    `json:"reason"`
}

// Summarize computes per-field statistics for the named fields, in the
// order given (nil means all table fields). Sample mean; sample variance
// with the n-1 divisor, zero when fewer than two values. Returns an
// *AnalysisError for an empty table.
func Summarize(t Table, fields []string) ([]Summary, error) {
	if t.Empty() {
		return nil, &AnalysisError{Op: "summarize", Err: ErrEmptyTable}
	}
	if fields == nil {
		fields = t.Fields
	}

	summaries := make([]Summary, 0, len(fields))
	for _, field := range fields {
		if !t.HasField(field) {
			continue
		}
		times, values := t.FieldSeries(field)
		if len(values) == 0 {
			continue
		}
		summaries = append(summaries, summarizeField(field, times, values))
	}
	return summaries, nil
}

func summarizeField(field string, times []time.Time, values []float64) Summary {
	s := Summary{
		Field:   field,
		Count:   len(values),
		Min:     values[0],
		Max:     values[0],
		MinTime: times[0],
		MaxTime: times[0],
	}

	var sum float64
	for i, v := range values {
		sum += v
		if v < s.Min {
			s.Min = v
			s.MinTime = times[i]
		}
		if v > s.Max {
			s.Max = v
			s.MaxTime = times[i]
		}
	}
	s.Mean = sum / float64(len(values))

	if len(values) > 1 {
		var sq float64
		for _, v := range values {
			d := v - s.Mean
			sq += d * d
		}
		s.Variance = sq / float64(len(values)-1)
		s.StdDev = math.Sqrt(s.Variance)
	}
	return s
}

// DetectAnomalies flags readings whose value lies outside mean ± k·stddev
// (strict inequality). Fields with zero variance produce no anomalies
// regardless of k. The result is time-ordered, with per-reading field
// order following the summaries.
func DetectAnomalies(t Table, summaries []Summary, k float64) []Anomaly {
	var anomalies []Anomaly
	for _, r := range t.Readings {
		for _, s := range summaries {
			v, ok := r.Values[s.Field]
			if !ok || s.StdDev == 0 {
				continue
			}
			if math.Abs(v-s.Mean) > k*s.StdDev {
				anomalies = append(anomalies, Anomaly{
					Time:  r.Time,
					Field: s.Field,
					Value: v,
					Score: math.Abs(v-s.Mean) / s.StdDev,
					Reason: fmt.Sprintf("value %.6g deviates more than %.3g standard deviations from mean %.6g",
						v, k, s.Mean),
				})
			}
		}
	}
	return anomalies
}
