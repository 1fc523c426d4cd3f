package model

import (
	"sort"
	"time"
)

// CrawlSummary aggregates the outcome of one crawl run. It is built
// from the driver's visit records after the frontier is exhausted and
// feeds the report writers and the database.
type CrawlSummary struct {
	// Seeds are the starting URLs of the crawl.
	Seeds []string `json:"seeds"`

	// Scope is a human-readable description of the scope rule.
	Scope string `json:"scope"`

	// StartedAt and FinishedAt bound the crawl run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Cancelled is true when the run stopped on a stop signal rather
	// than frontier exhaustion.
	Cancelled bool `json:"cancelled,omitempty"`

	// Counts maps terminal status names to the number of URLs that
	// ended in that status.
	Counts map[string]int `json:"counts"`

	// Failures lists every URL that ended in a failure state,
	// with its error kind.
	Failures []Failure `json:"failures,omitempty"`

	// Records holds all visit records, sorted by URL for
	// deterministic output.
	Records []*VisitRecord `json:"records"`
}

// Failure is one failed URL with its recorded error kind.
type Failure struct {
	URL       string `json:"url"`
	Status    string `json:"status"`
	ErrorKind string `json:"error_kind"`
	Detail    string `json:"detail,omitempty"`
}

// NewCrawlSummary builds a summary from visit records.
// Records are copied and sorted; the caller keeps ownership of the map.
func NewCrawlSummary(seeds []string, scope string, records map[string]*VisitRecord) *CrawlSummary {
	s := &CrawlSummary{
		Seeds:  seeds,
		Scope:  scope,
		Counts: make(map[string]int),
	}

	s.Records = make([]*VisitRecord, 0, len(records))
	for _, rec := range records {
		s.Records = append(s.Records, rec)
	}
	sort.Slice(s.Records, func(i, j int) bool { return s.Records[i].URL < s.Records[j].URL })

	for _, rec := range s.Records {
		s.Counts[rec.Status.String()]++
		if rec.Status.IsFailure() {
			s.Failures = append(s.Failures, Failure{
				URL:       rec.URL,
				Status:    rec.Status.String(),
				ErrorKind: rec.ErrorKind,
				Detail:    rec.ErrorDetail,
			})
		}
	}

	return s
}

// Total returns the number of URLs that entered the crawl.
func (s *CrawlSummary) Total() int {
	return len(s.Records)
}

// Written returns the number of successfully written artifacts.
func (s *CrawlSummary) Written() int {
	return s.Counts[StatusWritten.String()]
}

// Failed returns the number of URLs in any failure state.
func (s *CrawlSummary) Failed() int {
	return len(s.Failures)
}

// Duration returns the wall-clock duration of the run.
func (s *CrawlSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
