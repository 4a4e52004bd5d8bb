// Package domain models historical weather-station observation data.
//
// # Data Source
//
// Input files are the plain-text exports published by long-running
// observation stations (the Cambridge/DNW style archive): one header row
// naming the columns, then one row per observation. The delimiter varies
// between exports — comma, semicolon, tab, or aligned whitespace — and is
// sniffed from the header row.
//
// # Timestamp conventions
//
// The timestamp column is identified by name ("date", "datetime", "time",
// or "timestamp", case-insensitive). Some exports split the date across
// "year", "month" and "day" columns instead; those are recombined. When
// neither form is present the first column is tried as a date. Accepted
// layouts:
//
//	2006-01-02T15:04:05Z07:00 (RFC 3339)
//	2006-01-02 15:04:05
//	2006-01-02
//	2006/01/02
//	20060102
//
// # Missing values and plausibility bounds
//
// Station archives mark missing observations inconsistently. The strings
// "", "NA", "NaN", "-", "---" and "-9999" are all treated as absent.
// Values that parse but fall outside physical plausibility are also
// treated as absent rather than skipping the whole row (a sensor fault in
// one column should not discard the others):
//
//	temperature (t, temp, tmin, tmax, tavg):  -90 .. 60 °C
//	humidity (rh, hum, humidity):               0 .. 100 %
//	pressure (p, pres, pressure, slp):        870 .. 1085 hPa
//	precipitation (prcp, rain, precip):         0 .. 2000 mm
//	wind (wind, wspd, gust):                    0 .. 120 m/s
//
// The temperature bounds bracket the extremes ever recorded on Earth
// (Vostok -89.2 °C, Death Valley 56.7 °C); pressure bounds likewise
// (Agata 1083.8 hPa, Typhoon Tip 870 hPa). Unrecognized field names get
// no bounds check.
//
// A row is skipped — and counted in [ParseStats] — only when its
// timestamp cannot be parsed or no measured value survives cleaning.
// Rows repeating an earlier timestamp are dropped keeping the first
// occurrence, so a [Table] is always time-ordered with unique timestamps.
//
// # Statistics
//
// All derived numbers use fixed formulas so results are reproducible:
// sample mean; sample standard deviation with the n-1 divisor;
// percentiles by linear interpolation between closest ranks; trend slope
// by ordinary least squares over annual means. A reading is anomalous for
// a field when |value - mean| > k·stddev with strict inequality, so k = 0
// flags every value different from the mean and a zero-variance field is
// never flagged.
package domain
