package domain

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTable(t *testing.T) {
	t.Run("comma delimited", func(t *testing.T) {
		input := "date,T,TMIN,TMAX,PRCP\n2020-01-01,5,1,9,0.0\n2020-01-02,6,2,10,0.1\n"
		table, stats, err := ParseTable(strings.NewReader(input), "cam.csv")

		require.NoError(t, err)
		assert.Equal(t, []string{"T", "TMIN", "TMAX", "PRCP"}, table.Fields)
		assert.Equal(t, 2, table.Len())
		assert.Equal(t, ParseStats{RowsRead: 2, RowsSkipped: 0}, stats)
		assert.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), table.Readings[0].Time)

		v, ok := table.Readings[1].Value("TMAX")
		require.True(t, ok)
		assert.Equal(t, 10.0, v)
	})

	t.Run("whitespace delimited", func(t *testing.T) {
		input := "date        T     PRCP\n2020-01-01  5.5   0.0\n2020-01-02  6.1   0.4\n"
		table, _, err := ParseTable(strings.NewReader(input), "cam.txt")

		require.NoError(t, err)
		assert.Equal(t, []string{"T", "PRCP"}, table.Fields)
		assert.Equal(t, 2, table.Len())
	})

	t.Run("semicolon delimited", func(t *testing.T) {
		input := "date;T\n2020-01-01;5\n"
		table, _, err := ParseTable(strings.NewReader(input), "cam.csv")

		require.NoError(t, err)
		assert.Equal(t, 1, table.Len())
	})

	t.Run("year month day columns", func(t *testing.T) {
		input := "year,month,day,T\n2020,1,31,4.5\n2020,2,1,5.0\n"
		table, _, err := ParseTable(strings.NewReader(input), "ymd.csv")

		require.NoError(t, err)
		require.Equal(t, 2, table.Len())
		assert.Equal(t, time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC), table.Readings[0].Time)
		assert.Equal(t, []string{"T"}, table.Fields)
	})

	t.Run("byte order mark is stripped", func(t *testing.T) {
		input := "\uFEFFdate,T\n2020-01-01,5\n2020-01-02,6\n"
		table, _, err := ParseTable(strings.NewReader(input), "excel.csv")

		require.NoError(t, err)
		assert.Equal(t, []string{"T"}, table.Fields)
		assert.Equal(t, 2, table.Len())
	})

	t.Run("first column fallback", func(t *testing.T) {
		input := "when,T\n2020-01-01,5\n"
		table, _, err := ParseTable(strings.NewReader(input), "fallback.csv")

		require.NoError(t, err)
		assert.Equal(t, 1, table.Len())
		assert.Equal(t, []string{"T"}, table.Fields)
	})

	t.Run("malformed rows are counted not fatal", func(t *testing.T) {
		var b strings.Builder
		b.WriteString("date,T\n")
		day := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 100; i++ {
			fmt.Fprintf(&b, "%s,%d\n", day.AddDate(0, 0, i).Format("2006-01-02"), i%30)
		}
		b.WriteString("not-a-date,5\n")
		b.WriteString("2021-02-30,5\n")
		b.WriteString("2021-06-01,NA\n")
		b.WriteString("2021-06-02,garbage\n")
		b.WriteString("2021-06-03,-9999\n")

		table, stats, err := ParseTable(strings.NewReader(b.String()), "mixed.csv")

		require.NoError(t, err)
		assert.Equal(t, 100, table.Len())
		assert.Equal(t, 105, stats.RowsRead)
		assert.Equal(t, 5, stats.RowsSkipped)
		assert.Equal(t, table.Len(), stats.RowsRead-stats.RowsSkipped)
	})

	t.Run("out of range temperature dropped keeps row", func(t *testing.T) {
		input := "date,T,PRCP\n2020-01-01,9999,1.5\n"
		table, stats, err := ParseTable(strings.NewReader(input), "range.csv")

		require.NoError(t, err)
		require.Equal(t, 1, table.Len())
		assert.Equal(t, 0, stats.RowsSkipped)

		_, ok := table.Readings[0].Value("T")
		assert.False(t, ok)
		v, ok := table.Readings[0].Value("PRCP")
		require.True(t, ok)
		assert.Equal(t, 1.5, v)
	})

	t.Run("duplicate timestamps keep first", func(t *testing.T) {
		input := "date,T\n2020-01-01,5\n2020-01-01,99\n2020-01-02,6\n"
		table, stats, err := ParseTable(strings.NewReader(input), "dup.csv")

		require.NoError(t, err)
		require.Equal(t, 2, table.Len())
		assert.Equal(t, 1, stats.RowsSkipped)

		v, _ := table.Readings[0].Value("T")
		assert.Equal(t, 5.0, v)
	})

	t.Run("unsorted input is ordered", func(t *testing.T) {
		input := "date,T\n2020-01-03,7\n2020-01-01,5\n2020-01-02,6\n"
		table, _, err := ParseTable(strings.NewReader(input), "unsorted.csv")

		require.NoError(t, err)
		require.Equal(t, 3, table.Len())
		for i := 1; i < table.Len(); i++ {
			assert.True(t, table.Readings[i-1].Time.Before(table.Readings[i].Time))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		_, _, err := ParseTable(strings.NewReader(""), "empty.csv")

		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		assert.Equal(t, "empty.csv", loadErr.Source)
	})

	t.Run("no valid rows", func(t *testing.T) {
		input := "date,T\nnope,NA\nalso-bad,NaN\n"
		_, stats, err := ParseTable(strings.NewReader(input), "bad.csv")

		require.ErrorIs(t, err, ErrNoValidRows)
		assert.Equal(t, 2, stats.RowsSkipped)
	})
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   rune
	}{
		{"comma", "date,T,PRCP", ','},
		{"semicolon", "date;T;PRCP", ';'},
		{"tab", "date\tT\tPRCP", '\t'},
		{"whitespace", "date   T   PRCP", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sniffDelimiter(tt.header))
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"date only", "2020-06-15", time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"rfc3339", "2020-06-15T12:30:00Z", time.Date(2020, 6, 15, 12, 30, 0, 0, time.UTC), true},
		{"space datetime", "2020-06-15 12:30:00", time.Date(2020, 6, 15, 12, 30, 0, 0, time.UTC), true},
		{"slashes", "2020/06/15", time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"compact", "20200615", time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC), true},
		{"empty", "", time.Time{}, false},
		{"garbage", "mid-june", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseTimestamp(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, got.Equal(tt.want))
			}
		})
	}
}

func TestFieldBounds(t *testing.T) {
	tests := []struct {
		field string
		low   float64
		high  float64
		ok    bool
	}{
		{"TMAX", -90, 60, true},
		{"temperature", -90, 60, true},
		{"RH", 0, 100, true},
		{"pressure", 870, 1085, true},
		{"PRCP", 0, 2000, true},
		{"wind_speed", 0, 120, true},
		{"ozone", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			low, high, ok := fieldBounds(tt.field)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.low, low)
				assert.Equal(t, tt.high, high)
			}
		})
	}
}
