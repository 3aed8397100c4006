package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildQuery_EmptyCriteria tests that absent criteria produce no stray
// parameters: only the ordering key remains.
func TestBuildQuery_EmptyCriteria(t *testing.T) {
	query := BuildQuery(AnalysisEntries, Criteria{})

	assert.Equal(t, map[string]string{
		"order": "analysed_at.desc",
	}, query)
}

// TestBuildQuery_SeveritySingle tests that a one-element severity set
// renders as an equality filter.
func TestBuildQuery_SeveritySingle(t *testing.T) {
	query := BuildQuery(AnalysisEntries, Criteria{Severities: []string{"CRITICAL"}})
	assert.Equal(t, "eq.CRITICAL", query["severity_level"])
}

// TestBuildQuery_SeveritySet tests that larger sets render as in.(...) with
// caller order preserved and no internal spaces.
func TestBuildQuery_SeveritySet(t *testing.T) {
	query := BuildQuery(AnalysisEntries, Criteria{Severities: []string{"HIGH", "CRITICAL", "MEDIUM"}})
	assert.Equal(t, "in.(HIGH,CRITICAL,MEDIUM)", query["severity_level"])
}

// TestBuildQuery_ExactFilters tests per-column equality filters.
func TestBuildQuery_ExactFilters(t *testing.T) {
	query := BuildQuery(AnalysisEntries, Criteria{
		Exact: map[string]string{"source_name": "NCSC Feed"},
	})
	assert.Equal(t, "eq.NCSC Feed", query["source_name"])
}

// TestBuildQuery_Keyword tests wildcard substring matching against the
// resource's keyword column.
func TestBuildQuery_Keyword(t *testing.T) {
	query := BuildQuery(AnalysisEntries, Criteria{Keyword: "ransomware"})
	assert.Equal(t, "ilike.*ransomware*", query["title"])
}

// TestBuildQuery_KeywordUnescaped tests that wildcard characters in a
// keyword pass through unmodified (documented permissive behavior).
func TestBuildQuery_KeywordUnescaped(t *testing.T) {
	query := BuildQuery(AnalysisEntries, Criteria{Keyword: "ran*som"})
	assert.Equal(t, "ilike.*ran*som*", query["title"])
}

// TestBuildQuery_Since tests the inclusive temporal lower bound on the
// resource's timestamp column.
func TestBuildQuery_Since(t *testing.T) {
	query := BuildQuery(AnalysisEntries, Criteria{Since: "2025-06-01T00:00:00Z"})
	assert.Equal(t, "gte.2025-06-01T00:00:00Z", query["analysed_at"])

	// The timestamp column differs per resource.
	query = BuildQuery(CVEDetail, Criteria{Since: "2025-06-01T00:00:00Z"})
	assert.Equal(t, "gte.2025-06-01T00:00:00Z", query["last_seen"])
}

// TestBuildQuery_NumericAndBool tests threshold and boolean filters.
func TestBuildQuery_NumericAndBool(t *testing.T) {
	query := BuildQuery(CVEDetail, Criteria{
		NumericGTE: map[string]float64{"epss": 0.5, "cvss_base": 7},
		BoolIs:     map[string]bool{"in_kev": true},
	})

	assert.Equal(t, "gte.0.5", query["epss"])
	assert.Equal(t, "gte.7", query["cvss_base"])
	assert.Equal(t, "is.true", query["in_kev"])
}

// TestBuildQuery_Ordering tests explicit multi-term ordering and the
// per-resource default.
func TestBuildQuery_Ordering(t *testing.T) {
	query := BuildQuery(CVEDetail, Criteria{
		Ordering: []Order{
			{Field: "epss", Direction: Descending},
			{Field: "cvss_base", Direction: Descending},
		},
	})
	assert.Equal(t, "epss.desc,cvss_base.desc", query["order"])

	// Default ordering applies when the caller specifies none.
	query = BuildQuery(CampaignRollups, Criteria{})
	assert.Equal(t, "mention_count.desc", query["order"])
}

// TestBuildQuery_Projection tests that select appears only when a
// projection is requested, as a literal comma-joined list.
func TestBuildQuery_Projection(t *testing.T) {
	query := BuildQuery(AnalysisEntries, Criteria{})
	_, ok := query["select"]
	assert.False(t, ok, "no projection should emit no select parameter")

	query = BuildQuery(AnalysisEntries, Criteria{Projection: []string{"analysis_guid", "title"}})
	assert.Equal(t, "analysis_guid,title", query["select"])
}

// TestWindow_Range tests inclusive range derivation.
func TestWindow_Range(t *testing.T) {
	from, to, err := Window{Offset: 20, Limit: 10}.Range()
	require.NoError(t, err)
	assert.Equal(t, 20, from)
	assert.Equal(t, 29, to)

	from, to, err = Window{Offset: 0, Limit: 1}.Range()
	require.NoError(t, err)
	assert.Equal(t, 0, from)
	assert.Equal(t, 0, to)
}

// TestWindow_Invalid tests rejection of non-positive limits and negative
// offsets.
func TestWindow_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		window Window
	}{
		{"zero limit", Window{Offset: 0, Limit: 0}},
		{"negative limit", Window{Offset: 0, Limit: -5}},
		{"negative offset", Window{Offset: -1, Limit: 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.window.Range()
			assert.ErrorIs(t, err, ErrInvalidPagination)
		})
	}
}
