//go:build !integration

package listing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "listings.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const header = "ciudad,neighbourhood_cleansed,room_type,price,availability_365,latitude,longitude\n"

func TestLoad_CleansPrices(t *testing.T) {
	path := writeCSV(t, header+
		"madrid,Sol,Entire home/apt,45,120,40.41,-3.70\n"+ // kept
		"madrid,Sol,Entire home/apt,0,120,40.41,-3.70\n"+ // price <= 0
		"madrid,Sol,Entire home/apt,7000,120,40.41,-3.70\n"+ // >= ceiling
		"madrid,Sol,Entire home/apt,not-a-price,120,40.41,-3.70\n"+ // coercion failure
		"madrid,,Entire home/apt,45,120,40.41,-3.70\n"+ // missing neighborhood
		",Sol,Entire home/apt,45,120,40.41,-3.70\n") // missing city

	res, err := NewLoader(path, "").Load(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Listings, 1)
	assert.Equal(t, 45.0, res.Listings[0].Price)
	assert.Equal(t, "madrid", res.Listings[0].City)

	assert.Equal(t, 2, res.Dropped.MissingFields)
	assert.Equal(t, 1, res.Dropped.UnparsablePrice)
	assert.Equal(t, 1, res.Dropped.NonPositive)
	assert.Equal(t, 1, res.Dropped.PriceOutlier)
	assert.Equal(t, 5, res.Dropped.Total())
}

func TestLoad_CeilingBoundary(t *testing.T) {
	path := writeCSV(t, header+
		"madrid,Sol,Private room,6500,,,\n"+
		"madrid,Sol,Private room,6501,,,\n")

	res, err := NewLoader(path, "").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Listings, 1)
	assert.Equal(t, 6500.0, res.Listings[0].Price)
	assert.Equal(t, 1, res.Dropped.PriceOutlier)
}

func TestLoad_OptionalFields(t *testing.T) {
	path := writeCSV(t, header+
		"madrid,Sol,Private room,50,,,\n"+
		"madrid,Sol,Private room,60,200,40.1,-3.6\n")

	res, err := NewLoader(path, "").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Listings, 2)

	assert.False(t, res.Listings[0].HasAvailability)
	assert.False(t, res.Listings[0].HasCoordinates)
	assert.True(t, res.Listings[1].HasAvailability)
	assert.Equal(t, 200, res.Listings[1].Availability365)
	assert.True(t, res.Listings[1].HasCoordinates)
}

func TestLoad_EnglishHeaderAliases(t *testing.T) {
	path := writeCSV(t, "city,neighbourhood,room_type,price\nbarcelona,El Raval,Entire home/apt,80\n")

	res, err := NewLoader(path, "").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Listings, 1)
	assert.Equal(t, "El Raval", res.Listings[0].Neighborhood)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "nope.csv"), "").Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataUnavailable))
}

func TestLoad_HeaderOnly(t *testing.T) {
	path := writeCSV(t, header)

	res, err := NewLoader(path, "").Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Listings)
	assert.Zero(t, res.Dropped.Total())
}

func TestLoad_MissingRequiredColumns(t *testing.T) {
	path := writeCSV(t, "foo,bar\n1,2\n")

	_, err := NewLoader(path, "").Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataUnavailable))
}

func TestLoad_MissingRequiredColumnsLargeFile(t *testing.T) {
	// More rows than the parser's channel buffer holds. The error path must
	// drain the remaining rows so the producer goroutine can finish instead
	// of blocking forever on its send.
	var content strings.Builder
	content.WriteString("foo,bar\n")
	for i := 0; i < 500; i++ {
		content.WriteString("1,2\n")
	}
	path := writeCSV(t, content.String())

	baseline := runtime.NumGoroutine()

	_, err := NewLoader(path, "").Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDataUnavailable))

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= baseline
	}, 5*time.Second, 10*time.Millisecond, "parser goroutine still running")
}
