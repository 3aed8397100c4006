package core

// Resource describes one queryable PostgREST relation: which column keyword
// search targets, which column temporal bounds apply to, and the default
// ordering and display columns a subcommand uses when the operator does not
// override them.
type Resource struct {
	Name           string
	KeywordField   string
	TimestampField string
	DefaultOrder   []Order
	DefaultColumns []string
}

// The relations exposed by the tigerfetch gateway. These are schema
// contracts: the field names must match the upstream views exactly.
var (
	// AnalysisEntries is the lite analysis listing (excludes full content,
	// includes the key_iocs payload).
	AnalysisEntries = Resource{
		Name:           "analysis_entries_lite",
		KeywordField:   "title",
		TimestampField: "analysed_at",
		DefaultOrder:   []Order{{Field: "analysed_at", Direction: Descending}},
		DefaultColumns: []string{
			"analysis_guid", "title", "severity_level", "confidence_pct",
			"cve_count", "ioc_count", "analysed_at", "source_name",
		},
	}

	// CVEDetail is the consolidated per-CVE view (NVD + EPSS + KEV).
	CVEDetail = Resource{
		Name:           "cve_detail",
		KeywordField:   "description_en",
		TimestampField: "last_seen",
		DefaultOrder:   []Order{{Field: "epss", Direction: Descending}, {Field: "cvss_base", Direction: Descending}},
		DefaultColumns: []string{
			"cve_id", "cvss_base", "epss", "epss_percentile", "in_kev",
			"due_date", "mention_count", "last_seen", "description_en",
		},
	}

	// CampaignLatest lists campaigns by most recent sighting.
	CampaignLatest = Resource{
		Name:           "campaign_latest_seen",
		KeywordField:   "campaign_key",
		TimestampField: "last_seen",
		DefaultOrder:   []Order{{Field: "last_seen", Direction: Descending}},
		DefaultColumns: []string{
			"campaign_key", "campaign_kind", "last_seen", "cve_count",
			"item_mentions", "max_epss", "max_cvss_base",
		},
	}

	// CampaignRollups aggregates CVE mentions under a campaign key.
	CampaignRollups = Resource{
		Name:           "campaign_cve_rollups",
		KeywordField:   "description_en",
		TimestampField: "last_seen",
		DefaultOrder:   []Order{{Field: "mention_count", Direction: Descending}},
		DefaultColumns: []string{
			"cve_id", "mention_count", "item_count", "source_count",
			"epss", "cvss_base", "first_seen", "last_seen", "description_en",
		},
	}
)
