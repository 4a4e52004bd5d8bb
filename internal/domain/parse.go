package domain

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// timeLayouts are the accepted timestamp formats, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"20060102",
}

// missingSentinels are the strings station archives use for absent values.
var missingSentinels = map[string]bool{
	"":      true,
	"na":    true,
	"nan":   true,
	"-":     true,
	"---":   true,
	"-9999": true,
}

// ParseTable reads a delimited station export into a Table, counting rows
// that had to be discarded. The delimiter is sniffed from the header row.
// Returns a *LoadError when the input has no header or no row survives
// cleaning; individual bad rows are counted, not reported.
func ParseTable(r io.Reader, source string) (Table, ParseStats, error) {
	rows, err := readRows(r)
	if err != nil {
		return Table{}, ParseStats{}, &LoadError{Source: source, Err: err}
	}
	if len(rows) == 0 {
		return Table{}, ParseStats{}, &LoadError{Source: source, Err: errors.New("missing header row")}
	}

	cols, err := detectColumns(rows[0])
	if err != nil {
		return Table{}, ParseStats{}, &LoadError{Source: source, Err: err}
	}

	stats := ParseStats{}
	readings := make([]Reading, 0, len(rows)-1)
	for _, row := range rows[1:] {
		stats.RowsRead++
		reading, ok := parseRow(row, cols)
		if !ok {
			continue
		}
		readings = append(readings, reading)
	}

	table := NewTable(source, cols.fieldNames(), readings)
	// Skipped covers malformed rows and duplicate timestamps alike, so
	// len(Readings) == RowsRead - RowsSkipped always holds.
	stats.RowsSkipped = stats.RowsRead - table.Len()

	if table.Empty() {
		return Table{}, stats, &LoadError{Source: source, Err: ErrNoValidRows}
	}
	return table, stats, nil
}

// readRows splits the input into rows of trimmed cells, sniffing the
// delimiter from the first non-blank line. Comma, semicolon, and tab
// delimited inputs go through encoding/csv; aligned-whitespace exports
// are split on runs of spaces.
func readRows(r io.Reader) ([][]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if len(lines) == 0 {
		return nil, nil
	}

	lines[0] = strings.TrimPrefix(lines[0], "\uFEFF")
	delim := sniffDelimiter(lines[0])

	if delim == 0 {
		rows := make([][]string, 0, len(lines))
		for _, line := range lines {
			rows = append(rows, strings.Fields(line))
		}
		return rows, nil
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(lines, "\n")))
	reader.Comma = delim
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse delimited input: %w", err)
	}
	for _, row := range rows {
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
	}
	return rows, nil
}

// sniffDelimiter picks the delimiter from a header line. Zero means
// runs of whitespace.
func sniffDelimiter(header string) rune {
	switch {
	case strings.ContainsRune(header, ','):
		return ','
	case strings.ContainsRune(header, ';'):
		return ';'
	case strings.ContainsRune(header, '\t'):
		return '\t'
	default:
		return 0
	}
}

// columnLayout maps header columns to their roles: one timestamp column
// (or a year/month/day triple) plus the measured fields.
type columnLayout struct {
	timeIdx                 int // -1 when using the year/month/day triple
	yearIdx, monthIdx, dayIdx int
	fields                  []fieldColumn
}

type fieldColumn struct {
	name string
	idx  int
}

func (c columnLayout) fieldNames() []string {
	names := make([]string, len(c.fields))
	for i, f := range c.fields {
		names[i] = f.name
	}
	return names
}

func detectColumns(header []string) (columnLayout, error) {
	layout := columnLayout{timeIdx: -1, yearIdx: -1, monthIdx: -1, dayIdx: -1}
	for i, name := range header {
		lower := strings.ToLower(strings.TrimSpace(name))
		switch {
		case lower == "date" || lower == "datetime" || lower == "time" || lower == "timestamp":
			if layout.timeIdx == -1 {
				layout.timeIdx = i
			}
		case strings.HasPrefix(lower, "year"):
			layout.yearIdx = i
		case strings.HasPrefix(lower, "month"):
			layout.monthIdx = i
		case strings.HasPrefix(lower, "day"):
			layout.dayIdx = i
		default:
			layout.fields = append(layout.fields, fieldColumn{name: strings.TrimSpace(name), idx: i})
		}
	}

	if layout.timeIdx >= 0 {
		return layout, nil
	}
	if layout.yearIdx >= 0 && layout.monthIdx >= 0 && layout.dayIdx >= 0 {
		return layout, nil
	}

	// No named timestamp column: fall back to the first column.
	if len(header) < 2 {
		return layout, errors.New("header has no timestamp column")
	}
	layout.timeIdx = 0
	layout.fields = layout.fields[:0]
	for i, name := range header[1:] {
		layout.fields = append(layout.fields, fieldColumn{name: strings.TrimSpace(name), idx: i + 1})
	}
	return layout, nil
}

// parseRow cleans one data row. Reports false when the timestamp is
// unparseable or no measured value survives.
func parseRow(row []string, cols columnLayout) (Reading, bool) {
	ts, ok := rowTime(row, cols)
	if !ok {
		return Reading{}, false
	}

	values := make(map[string]float64, len(cols.fields))
	for _, f := range cols.fields {
		if f.idx >= len(row) {
			continue
		}
		if v, ok := parseValue(f.name, row[f.idx]); ok {
			values[f.name] = v
		}
	}
	if len(values) == 0 {
		return Reading{}, false
	}
	return Reading{Time: ts, Values: values}, true
}

func rowTime(row []string, cols columnLayout) (time.Time, bool) {
	if cols.timeIdx >= 0 {
		if cols.timeIdx >= len(row) {
			return time.Time{}, false
		}
		return parseTimestamp(row[cols.timeIdx])
	}

	if cols.yearIdx >= len(row) || cols.monthIdx >= len(row) || cols.dayIdx >= len(row) {
		return time.Time{}, false
	}
	year, errY := strconv.Atoi(row[cols.yearIdx])
	month, errM := strconv.Atoi(row[cols.monthIdx])
	day, errD := strconv.Atoi(row[cols.dayIdx])
	if errY != nil || errM != nil || errD != nil || month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseValue parses one measured cell, mapping sentinels and implausible
// values to absent.
func parseValue(field, s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if missingSentinels[strings.ToLower(s)] {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if low, high, bounded := fieldBounds(field); bounded && (v < low || v > high) {
		return 0, false
	}
	return v, true
}

// fieldBounds returns the plausibility range for known field names.
// The bounds are documented in the package comment.
func fieldBounds(field string) (low, high float64, ok bool) {
	name := strings.ToLower(field)
	switch {
	case name == "t" || name == "tmin" || name == "tmax" || name == "tavg" ||
		name == "tmean" || strings.HasPrefix(name, "temp"):
		return -90, 60, true
	case name == "rh" || strings.HasPrefix(name, "hum"):
		return 0, 100, true
	case name == "p" || name == "slp" || strings.HasPrefix(name, "pres"):
		return 870, 1085, true
	case name == "prcp" || name == "rain" || strings.HasPrefix(name, "precip"):
		return 0, 2000, true
	case name == "wspd" || strings.HasPrefix(name, "wind") || strings.HasPrefix(name, "gust"):
		return 0, 120, true
	default:
		return 0, 0, false
	}
}
