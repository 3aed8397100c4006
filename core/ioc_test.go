package core

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analysisRecord(payload string) AnalysisRecord {
	rec := AnalysisRecord{
		AnalysisGUID: "guid-1",
		Title:        "Suspicious infrastructure report",
		AnalysedAt:   "2025-06-15T09:00:00Z",
		SourceName:   "tigerblue",
	}
	if payload != "" {
		rec.KeyIOCs = json.RawMessage(payload)
	}
	return rec
}

// TestNormalizeIOCs_WellFormed tests a typed object payload: one record per
// element with the identity fields copied from the parent.
func TestNormalizeIOCs_WellFormed(t *testing.T) {
	rec := analysisRecord(`[{"type":"ip","value":"1.2.3.4","confidence":80}]`)

	iocs := NormalizeIOCs([]AnalysisRecord{rec})
	require.Len(t, iocs, 1)

	ioc := iocs[0]
	require.NotNil(t, ioc.IOCType)
	require.NotNil(t, ioc.IOCValue)
	assert.Equal(t, "ip", *ioc.IOCType)
	assert.Equal(t, "1.2.3.4", *ioc.IOCValue)
	assert.Equal(t, float64(80), ioc.Confidence)
	assert.Nil(t, ioc.Context)

	assert.Equal(t, "guid-1", ioc.AnalysisGUID)
	assert.Equal(t, "Suspicious infrastructure report", ioc.Title)
	assert.Equal(t, "2025-06-15T09:00:00Z", ioc.AnalysedAt)
	assert.Equal(t, "tigerblue", ioc.SourceName)
}

// TestNormalizeIOCs_KeyPriority tests the ordered candidate keys for type,
// value, and context extraction.
func TestNormalizeIOCs_KeyPriority(t *testing.T) {
	rec := analysisRecord(`[
		{"indicator_type":"domain","observable":"evil.example.com","note":"C2 callback"},
		{"type":"hash","ioc_type":"ignored","value":"abc","indicator":"ignored-too"}
	]`)

	iocs := NormalizeIOCs([]AnalysisRecord{rec})
	require.Len(t, iocs, 2)

	assert.Equal(t, "domain", *iocs[0].IOCType)
	assert.Equal(t, "evil.example.com", *iocs[0].IOCValue)
	assert.Equal(t, "C2 callback", *iocs[0].Context)

	// Earlier candidate keys win.
	assert.Equal(t, "hash", *iocs[1].IOCType)
	assert.Equal(t, "abc", *iocs[1].IOCValue)
}

// TestNormalizeIOCs_BareStringElement tests per-element degradation: a
// non-object element yields a value-only record, never a failure.
func TestNormalizeIOCs_BareStringElement(t *testing.T) {
	rec := analysisRecord(`["evil.example.com"]`)

	iocs := NormalizeIOCs([]AnalysisRecord{rec})
	require.Len(t, iocs, 1)

	require.NotNil(t, iocs[0].IOCValue)
	assert.Equal(t, "evil.example.com", *iocs[0].IOCValue)
	assert.Nil(t, iocs[0].IOCType)
	assert.Nil(t, iocs[0].Confidence)
	assert.Nil(t, iocs[0].Context)
}

// TestNormalizeIOCs_StringEncodedPayload tests that a payload arriving as a
// JSON-encoded string normalizes identically to the parsed form.
func TestNormalizeIOCs_StringEncodedPayload(t *testing.T) {
	rec := analysisRecord(`"[{\"indicator\":\"8.8.8.8\"}]"`)

	iocs := NormalizeIOCs([]AnalysisRecord{rec})
	require.Len(t, iocs, 1)
	require.NotNil(t, iocs[0].IOCValue)
	assert.Equal(t, "8.8.8.8", *iocs[0].IOCValue)
	assert.Nil(t, iocs[0].IOCType)
}

// TestNormalizeIOCs_UnparseableString tests the fallback: a string payload
// that is not JSON becomes a single scalar indicator.
func TestNormalizeIOCs_UnparseableString(t *testing.T) {
	rec := analysisRecord(`"evil.example.com"`)

	iocs := NormalizeIOCs([]AnalysisRecord{rec})
	require.Len(t, iocs, 1)
	require.NotNil(t, iocs[0].IOCValue)
	assert.Equal(t, "evil.example.com", *iocs[0].IOCValue)
}

// TestNormalizeIOCs_SingleObject tests that a bare object payload is
// treated as a one-element list.
func TestNormalizeIOCs_SingleObject(t *testing.T) {
	rec := analysisRecord(`{"type":"url","value":"https://evil.example.com/payload"}`)

	iocs := NormalizeIOCs([]AnalysisRecord{rec})
	require.Len(t, iocs, 1)
	assert.Equal(t, "url", *iocs[0].IOCType)
}

// TestNormalizeIOCs_EmptyShapes tests payload shapes that contribute zero
// records without erroring.
func TestNormalizeIOCs_EmptyShapes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"absent", ""},
		{"null", `null`},
		{"number", `42`},
		{"boolean", `true`},
		{"empty list", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iocs := NormalizeIOCs([]AnalysisRecord{analysisRecord(tt.payload)})
			assert.Empty(t, iocs)
		})
	}
}

// TestNormalizeIOCs_MixedList tests a list mixing objects and scalars:
// every element yields exactly one record, in payload order.
func TestNormalizeIOCs_MixedList(t *testing.T) {
	rec := analysisRecord(`[
		{"type":"ip","value":"1.2.3.4"},
		"bare-string.example.com",
		123,
		{"note":"typeless object"}
	]`)

	iocs := NormalizeIOCs([]AnalysisRecord{rec})
	require.Len(t, iocs, 4)

	assert.Equal(t, "1.2.3.4", *iocs[0].IOCValue)
	assert.Equal(t, "bare-string.example.com", *iocs[1].IOCValue)
	assert.Equal(t, "123", *iocs[2].IOCValue)
	assert.Nil(t, iocs[3].IOCValue, "object without value keys stays null")
	assert.Equal(t, "typeless object", *iocs[3].Context)
}

// TestNormalizeIOCs_OrderPreserving tests flattening across records:
// records in input order, indicators in payload order.
func TestNormalizeIOCs_OrderPreserving(t *testing.T) {
	recA := analysisRecord(`[{"value":"a1"},{"value":"a2"}]`)
	recB := analysisRecord(`[{"value":"b1"}]`)
	recB.AnalysisGUID = "guid-2"

	iocs := NormalizeIOCs([]AnalysisRecord{recA, recB})
	require.Len(t, iocs, 3)
	assert.Equal(t, "a1", *iocs[0].IOCValue)
	assert.Equal(t, "a2", *iocs[1].IOCValue)
	assert.Equal(t, "b1", *iocs[2].IOCValue)
	assert.Equal(t, "guid-2", iocs[2].AnalysisGUID)
}

// TestFilterIOCs tests the case-insensitive substring filter; null values
// never match.
func TestFilterIOCs(t *testing.T) {
	rec := analysisRecord(`[{"value":"evil.example.com"},{"value":"benign.example.org"},{"note":"no value"}]`)
	iocs := NormalizeIOCs([]AnalysisRecord{rec})
	require.Len(t, iocs, 3)

	filtered := FilterIOCs(iocs, "EVIL")
	require.Len(t, filtered, 1)
	assert.Equal(t, "evil.example.com", *filtered[0].IOCValue)

	// Empty needle is a no-op.
	assert.Len(t, FilterIOCs(iocs, ""), 3)
}

// TestDetectIOCType tests the value-format heuristics.
func TestDetectIOCType(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"1.2.3.4", "ip"},
		{"2001:db8::1", "ip"},
		{"10.0.0.0/8", "cidr"},
		{"evil.example.com", "domain"},
		{"https://evil.example.com/x", "url"},
		{"attacker@example.com", "email"},
		{"5d41402abc4b2a76b9719d911017c592", "hash"},
		{"CVE-2024-12345", "cve"},
		{"cve-2024-12345", "cve"},
		{"not an indicator", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectIOCType(tt.value))
		})
	}
}

// TestApplyDetectedTypes tests the opt-in fill pass: existing types are
// untouched, missing types come from detection.
func TestApplyDetectedTypes(t *testing.T) {
	rec := analysisRecord(`[{"type":"custom","value":"1.2.3.4"},"8.8.8.8","unrecognizable value"]`)
	iocs := NormalizeIOCs([]AnalysisRecord{rec})
	require.Len(t, iocs, 3)

	ApplyDetectedTypes(iocs)

	assert.Equal(t, "custom", *iocs[0].IOCType, "explicit type wins over detection")
	require.NotNil(t, iocs[1].IOCType)
	assert.Equal(t, "ip", *iocs[1].IOCType)
	assert.Nil(t, iocs[2].IOCType, "ambiguous values stay untyped")
}
