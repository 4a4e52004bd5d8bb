package loader

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MidoraAholo/weather-dashboard/internal/domain"
	"github.com/MidoraAholo/weather-dashboard/internal/observability"
)

const stationCSV = "date,T,PRCP\n2020-01-01,5,0.0\n2020-01-02,6,0.1\n2020-01-03,7,0.0\n"

func testLoader() *Loader {
	return New(5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "station.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeFixture(t, stationCSV)

	table, stats, err := testLoader().Load(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, domain.ParseStats{RowsRead: 3, RowsSkipped: 0}, stats)
	assert.Equal(t, path, table.Source)
}

func TestLoader_LoadFileMissing(t *testing.T) {
	_, _, err := testLoader().Load(context.Background(), "/does/not/exist.csv")

	var loadErr *domain.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "/does/not/exist.csv", loadErr.Source)
}

func TestLoader_LoadURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, err := io.WriteString(w, stationCSV)
		assert.NoError(t, err)
	}))
	defer srv.Close()

	table, stats, err := testLoader().Load(context.Background(), srv.URL+"/cambridge.txt")

	require.NoError(t, err)
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 3, stats.RowsRead)
}

func TestLoader_LoadURLErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, _, err := testLoader().Load(context.Background(), srv.URL)

	var loadErr *domain.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, err.Error(), "status 404")
}

func TestLoader_LoadURLUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused

	_, _, err := testLoader().Load(context.Background(), srv.URL)

	var loadErr *domain.LoadError
	require.ErrorAs(t, err, &loadErr)
}

func TestLoader_NoValidRows(t *testing.T) {
	path := writeFixture(t, "date,T\njunk,NA\n")

	_, stats, err := testLoader().Load(context.Background(), path)

	require.ErrorIs(t, err, domain.ErrNoValidRows)
	assert.Equal(t, 1, stats.RowsSkipped)
}

// countingLoader tracks how often the inner loader actually runs.
type countingLoader struct {
	inner TableLoader
	calls int
}

func (c *countingLoader) Load(ctx context.Context, source string) (domain.Table, domain.ParseStats, error) {
	c.calls++
	return c.inner.Load(ctx, source)
}

func TestCachedLoader(t *testing.T) {
	t.Run("second load hits cache", func(t *testing.T) {
		path := writeFixture(t, stationCSV)
		counting := &countingLoader{inner: testLoader()}
		cached := NewCachedLoader(counting, 4, observability.NewMetricsForTesting())

		first, _, err := cached.Load(context.Background(), path)
		require.NoError(t, err)
		second, _, err := cached.Load(context.Background(), path)
		require.NoError(t, err)

		assert.Equal(t, 1, counting.calls)
		assert.Equal(t, first, second)
	})

	t.Run("failures are not cached", func(t *testing.T) {
		counting := &countingLoader{inner: testLoader()}
		cached := NewCachedLoader(counting, 4, observability.NewMetricsForTesting())

		_, _, err := cached.Load(context.Background(), "/missing.csv")
		require.Error(t, err)
		_, _, err = cached.Load(context.Background(), "/missing.csv")
		require.Error(t, err)

		assert.Equal(t, 2, counting.calls)
	})

	t.Run("invalidate forces refetch", func(t *testing.T) {
		path := writeFixture(t, stationCSV)
		counting := &countingLoader{inner: testLoader()}
		cached := NewCachedLoader(counting, 4, observability.NewMetricsForTesting())

		_, _, err := cached.Load(context.Background(), path)
		require.NoError(t, err)
		cached.Invalidate(path)
		_, _, err = cached.Load(context.Background(), path)
		require.NoError(t, err)

		assert.Equal(t, 2, counting.calls)
	})

	t.Run("evicts least recently used", func(t *testing.T) {
		pathA := writeFixture(t, stationCSV)
		pathB := writeFixture(t, stationCSV)
		pathC := writeFixture(t, stationCSV)
		counting := &countingLoader{inner: testLoader()}
		cached := NewCachedLoader(counting, 2, observability.NewMetricsForTesting())

		for _, p := range []string{pathA, pathB, pathC} {
			_, _, err := cached.Load(context.Background(), p)
			require.NoError(t, err)
		}
		assert.Equal(t, 3, counting.calls)

		// A was evicted by C; B and C are still cached.
		_, _, err := cached.Load(context.Background(), pathB)
		require.NoError(t, err)
		_, _, err = cached.Load(context.Background(), pathA)
		require.NoError(t, err)
		assert.Equal(t, 4, counting.calls)
	})
}
