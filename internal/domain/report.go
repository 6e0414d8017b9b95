package domain

import "time"

// Verdict is the tri-state skate-safety conclusion.
type Verdict string

const (
	VerdictYes    Verdict = "YES"
	VerdictNo     Verdict = "NO"
	VerdictUnsure Verdict = "UNSURE"
)

// Source cites material backing a report summary.
type Source struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// IceStatusReport is the unit of value the service produces and caches.
type IceStatusReport struct {
	// Summary and SummaryCS carry the same finding in English and Czech.
	// SummaryCS equals Summary when the model omitted the Czech section.
	Summary   string  `json:"summary"`
	SummaryCS string  `json:"summaryCs"`
	CanSkate  Verdict `json:"canSkate"`

	// GeneratedAt is authoritative for freshness decisions; LastUpdated is
	// its human-readable rendering.
	GeneratedAt time.Time `json:"generatedAt"`
	LastUpdated string    `json:"lastUpdated"`

	Sources []Source `json:"sources"`

	// Warnings is reserved for structured caveat extraction; always empty today.
	Warnings []string `json:"warnings"`
}

// CacheEntry wraps a report with its generation instant for the durable store.
type CacheEntry struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	Report      IceStatusReport `json:"report"`
}

// lastUpdatedLayout is the display rendering of the generation instant.
const lastUpdatedLayout = "2 Jan 2006 15:04 MST"

// NewReport assembles a finished report from a parsed model answer.
// A missing verdict defaults to UNSURE; nil slices become empty so the
// serialized report always carries arrays.
func NewReport(parsed ParsedAnswer, sources []Source) IceStatusReport {
	verdict := parsed.Verdict
	if !parsed.VerdictFound {
		verdict = VerdictUnsure
	}
	if sources == nil {
		sources = []Source{}
	}

	now := clock.Now()
	return IceStatusReport{
		Summary:     parsed.Primary,
		SummaryCS:   parsed.Secondary,
		CanSkate:    verdict,
		GeneratedAt: now,
		LastUpdated: now.Format(lastUpdatedLayout),
		Sources:     sources,
		Warnings:    []string{},
	}
}
