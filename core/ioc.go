package core

import (
	"net"
	"net/mail"
	"net/url"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
)

// AnalysisRecord is one row of the analysis listing as returned by the
// gateway. KeyIOCs is kept raw: its shape is not under our control and is
// resolved by the normalizer, never threaded through the rest of the
// program as an untyped value.
type AnalysisRecord struct {
	AnalysisGUID string          `json:"analysis_guid"`
	Title        string          `json:"title"`
	AnalysedAt   string          `json:"analysed_at"`
	SourceName   string          `json:"source_name"`
	KeyIOCs      json.RawMessage `json:"key_iocs"`
}

// IOCRecord is the flat, uniform shape every embedded indicator normalizes
// to. Nullable fields are pointers (or any, for verbatim confidence) so that
// JSON export preserves null and the table renderer can blank them.
type IOCRecord struct {
	AnalysisGUID string  `json:"analysis_guid"`
	Title        string  `json:"title"`
	AnalysedAt   string  `json:"analysed_at"`
	SourceName   string  `json:"source_name"`
	IOCType      *string `json:"ioc_type"`
	IOCValue     *string `json:"ioc_value"`
	Confidence   any     `json:"confidence"`
	Context      *string `json:"context"`
}

// Candidate key lists for best-effort extraction from loosely-shaped IOC
// objects. Evaluated in order, first non-null wins.
var (
	iocTypeKeys    = []string{"type", "ioc_type", "indicator_type"}
	iocValueKeys   = []string{"value", "indicator", "ioc", "observable"}
	iocContextKeys = []string{"context", "note", "description"}
)

// payloadKind tags the runtime shape of a key_iocs payload.
type payloadKind int

const (
	payloadAbsent payloadKind = iota
	payloadList
	payloadObject
	payloadScalar // unrecognized shape, contributes nothing
)

// iocPayload is the resolved variant of a raw key_iocs value.
type iocPayload struct {
	kind payloadKind
	list []any
}

// decodePayload resolves the raw JSON into a tagged variant. A string
// payload is re-parsed as JSON text; if that fails the string itself
// becomes a single scalar indicator.
func decodePayload(raw json.RawMessage) iocPayload {
	if len(raw) == 0 || string(raw) == "null" {
		return iocPayload{kind: payloadAbsent}
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return iocPayload{kind: payloadAbsent}
	}

	if s, ok := v.(string); ok {
		var reparsed any
		if err := json.Unmarshal([]byte(s), &reparsed); err != nil {
			return iocPayload{kind: payloadList, list: []any{s}}
		}
		v = reparsed
	}

	switch t := v.(type) {
	case nil:
		return iocPayload{kind: payloadAbsent}
	case []any:
		return iocPayload{kind: payloadList, list: t}
	case map[string]any:
		return iocPayload{kind: payloadObject, list: []any{t}}
	default:
		return iocPayload{kind: payloadScalar}
	}
}

// NormalizeIOCs flattens the embedded indicators of a sequence of analysis
// records into uniform IOC records. Order is preserved: records in input
// order, indicators in payload order. Malformed payloads degrade
// per-element; this function never fails and never drops an element of a
// recognized list.
func NormalizeIOCs(records []AnalysisRecord) []IOCRecord {
	var out []IOCRecord
	for i := range records {
		out = append(out, normalizeRecord(&records[i])...)
	}
	return out
}

func normalizeRecord(rec *AnalysisRecord) []IOCRecord {
	payload := decodePayload(rec.KeyIOCs)
	if payload.kind != payloadList && payload.kind != payloadObject {
		return nil
	}

	out := make([]IOCRecord, 0, len(payload.list))
	for _, item := range payload.list {
		ioc := IOCRecord{
			AnalysisGUID: rec.AnalysisGUID,
			Title:        rec.Title,
			AnalysedAt:   rec.AnalysedAt,
			SourceName:   rec.SourceName,
		}

		if obj, ok := item.(map[string]any); ok {
			ioc.IOCType = firstString(obj, iocTypeKeys)
			ioc.IOCValue = firstString(obj, iocValueKeys)
			ioc.Confidence = obj["confidence"]
			ioc.Context = firstString(obj, iocContextKeys)
		} else {
			v := stringify(item)
			ioc.IOCValue = &v
		}

		out = append(out, ioc)
	}
	return out
}

// firstString walks the candidate keys in order and returns the first
// non-null value, stringified. Nil when no candidate is present.
func firstString(obj map[string]any, keys []string) *string {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			s := stringify(v)
			return &s
		}
	}
	return nil
}

// stringify renders any decoded JSON value as a string. Strings are taken
// as-is; everything else round-trips through the encoder.
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// FilterIOCs keeps records whose ioc_value contains needle,
// case-insensitively. Records with a null value never match. An empty
// needle returns the input unchanged.
func FilterIOCs(iocs []IOCRecord, needle string) []IOCRecord {
	if needle == "" {
		return iocs
	}
	needle = strings.ToLower(needle)
	out := make([]IOCRecord, 0, len(iocs))
	for _, ioc := range iocs {
		if ioc.IOCValue == nil {
			continue
		}
		if strings.Contains(strings.ToLower(*ioc.IOCValue), needle) {
			out = append(out, ioc)
		}
	}
	return out
}

// Format heuristics for DetectIOCType.
var (
	hashPattern   = regexp.MustCompile(`^[a-fA-F0-9]{32}$|^[a-fA-F0-9]{40}$|^[a-fA-F0-9]{64}$|^[a-fA-F0-9]{128}$`)
	cvePattern    = regexp.MustCompile(`^CVE-\d{4}-\d{4,}$`)
	domainPattern = regexp.MustCompile(`^(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z]{2,}$`)
)

// DetectIOCType guesses an indicator type from its value format. Returns
// the empty string when the format is ambiguous. Used by the opt-in
// --detect-types pass; normalization itself never invents a type.
func DetectIOCType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}

	if cvePattern.MatchString(strings.ToUpper(value)) {
		return "cve"
	}
	if net.ParseIP(value) != nil {
		return "ip"
	}
	if _, _, err := net.ParseCIDR(value); err == nil {
		return "cidr"
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		if _, err := url.Parse(value); err == nil {
			return "url"
		}
	}
	if strings.Contains(value, "@") {
		if _, err := mail.ParseAddress(value); err == nil {
			return "email"
		}
	}
	if hashPattern.MatchString(value) {
		return "hash"
	}
	if domainPattern.MatchString(strings.ToLower(value)) && !strings.Contains(value, "/") {
		return "domain"
	}
	return ""
}

// ApplyDetectedTypes fills in ioc_type for records that lack one, using
// format detection on the value. Records already carrying a type are left
// alone.
func ApplyDetectedTypes(iocs []IOCRecord) {
	for i := range iocs {
		if iocs[i].IOCType != nil || iocs[i].IOCValue == nil {
			continue
		}
		if detected := DetectIOCType(*iocs[i].IOCValue); detected != "" {
			iocs[i].IOCType = &detected
		}
	}
}
