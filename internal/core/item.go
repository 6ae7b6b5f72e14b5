package core

import "time"

// Item is one marketplace posting. URL is the canonical absolute link to
// the posting and acts as the dedup key; it must be stable across scans.
// Once written to the durable store a record is never updated or deleted.
type Item struct {
	URL        string
	Name       string
	Price      string
	ObservedAt time.Time
}

// ScoreResult is the outcome of a desirability evaluation for one item.
// It is ephemeral: the orchestrator holds it only for the notify decision.
// Score 0 doubles as the degraded sentinel when scoring was unavailable.
type ScoreResult struct {
	Score     int
	Rationale string
}

// Outcome classifies how a scan run ended.
type Outcome string

const (
	// OutcomeComplete means the listing was exhausted or the page limit
	// was reached.
	OutcomeComplete Outcome = "complete"
	// OutcomePartial means a fetch or page-level extraction failure
	// stopped the scan early. Progress made before the failure is durable
	// and the run is still considered successful.
	OutcomePartial Outcome = "partial"
)

// ScanSummary reports a single run of the scan orchestrator.
type ScanSummary struct {
	ItemsFound    int
	ItemsNotified int
	PagesScanned  int
	Outcome       Outcome
}
