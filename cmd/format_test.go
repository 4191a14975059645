//go:build !integration

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/consultores-turismo/str-insights/internal/geodata"
	"github.com/consultores-turismo/str-insights/internal/model"
)

func TestFormatSummary(t *testing.T) {
	var buf bytes.Buffer
	formatSummary(&buf, newTestEnv(t))

	out := buf.String()
	assert.Contains(t, out, "Total listings")
	assert.Contains(t, out, "fallback") // tiny fixture triggers substitution
	assert.Contains(t, out, "madrid")
	assert.Contains(t, out, "barcelona")
	assert.Contains(t, out, "Rows dropped during cleaning: 0")
}

func TestFormatMatchReports(t *testing.T) {
	reports := []geodata.MatchReport{
		{City: "madrid", AggregateTotal: 3, BoundaryTotal: 2, Matched: 2,
			UnmatchedAggregates: []string{"sol nuevo"}},
	}

	var buf bytes.Buffer
	formatMatchReports(&buf, reports, false)
	assert.Contains(t, buf.String(), "madrid")
	assert.NotContains(t, buf.String(), "sol nuevo")

	buf.Reset()
	formatMatchReports(&buf, reports, true)
	assert.Contains(t, buf.String(), "dataset-only: sol nuevo")
}

func TestFormatSnapshotsList(t *testing.T) {
	snaps := []model.Snapshot{
		{
			ID:             "0123456789abcdef",
			Cities:         []string{"madrid", "mallorca"},
			TotalListings:  15000,
			DroppedRows:    12,
			UnmatchedNames: 3,
			CreatedAt:      time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	formatSnapshotsList(&buf, snaps)

	out := buf.String()
	assert.Contains(t, out, "01234567") // truncated ID
	assert.NotContains(t, out, "0123456789abcdef")
	assert.Contains(t, out, "madrid,mallorca")
	assert.Contains(t, out, "2026-08-30 10:00")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "short", truncateID("short"))
	assert.Equal(t, "12345678", truncateID("1234567890"))
}
