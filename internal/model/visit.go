package model

import "time"

// Status describes where a URL is in the crawl pipeline.
// Transitions follow the per-URL state machine:
//
//	Pending → Fetching → Fetched → Extracting → Extracted → Writing → Written
//
// with the failure exits FetchFailed, ExtractFailed and WriteFailed.
// Skipped is entered without fetching when an artifact for the URL
// already exists and skip-existing is enabled.
type Status int

// Visit statuses in pipeline order.
const (
	// StatusPending means the URL is queued but not yet dequeued.
	StatusPending Status = iota

	// StatusFetching means the fetcher currently owns the URL.
	StatusFetching

	// StatusFetched means the raw HTML arrived successfully.
	StatusFetched

	// StatusExtracting means the extractor currently owns the page.
	StatusExtracting

	// StatusExtracted means content selection succeeded.
	StatusExtracted

	// StatusWriting means the artifact write is in progress.
	StatusWriting

	// StatusWritten is the successful terminal state.
	StatusWritten

	// StatusFetchFailed is the terminal state for fetch errors
	// (network, timeout, HTTP status, unavailable page).
	StatusFetchFailed

	// StatusExtractFailed is the terminal state for malformed or
	// empty content.
	StatusExtractFailed

	// StatusWriteFailed is the terminal state for filesystem errors.
	StatusWriteFailed

	// StatusSkipped is the terminal state for URLs whose artifact
	// already existed when skip-existing was enabled.
	StatusSkipped
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFetching:
		return "fetching"
	case StatusFetched:
		return "fetched"
	case StatusExtracting:
		return "extracting"
	case StatusExtracted:
		return "extracted"
	case StatusWriting:
		return "writing"
	case StatusWritten:
		return "written"
	case StatusFetchFailed:
		return "fetch_failed"
	case StatusExtractFailed:
		return "extract_failed"
	case StatusWriteFailed:
		return "write_failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further pipeline stage is attempted
// from this status.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusWritten, StatusFetchFailed, StatusExtractFailed, StatusWriteFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// IsFailure reports whether the status is a failure terminal state.
func (s Status) IsFailure() bool {
	switch s {
	case StatusFetchFailed, StatusExtractFailed, StatusWriteFailed:
		return true
	default:
		return false
	}
}

// VisitRecord tracks one URL through the crawl. A record is created
// when the URL is first enqueued and mutated as it progresses; records
// are never deleted during a run so the final summary can enumerate
// every URL seen.
type VisitRecord struct {
	// URL is the normalized URL this record tracks.
	URL string `json:"url"`

	// Status is the current pipeline status.
	Status Status `json:"status"`

	// Attempts is the number of fetch attempts made.
	Attempts int `json:"attempts"`

	// ErrorKind names the kind of the last error, empty on success.
	ErrorKind string `json:"error_kind,omitempty"`

	// ErrorDetail is the last error message, empty on success.
	ErrorDetail string `json:"error_detail,omitempty"`

	// Referrer is the URL of the page that discovered this one.
	// Empty for seed URLs.
	Referrer string `json:"referrer,omitempty"`

	// ArtifactPath is the path of the written artifact, set once the
	// record reaches StatusWritten.
	ArtifactPath string `json:"artifact_path,omitempty"`

	// UpdatedAt is the time of the last status change.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewVisitRecord creates a pending record for a newly enqueued URL.
func NewVisitRecord(url, referrer string) *VisitRecord {
	return &VisitRecord{
		URL:       url,
		Status:    StatusPending,
		Referrer:  referrer,
		UpdatedAt: time.Now(),
	}
}

// SetStatus updates the status and the update timestamp.
func (r *VisitRecord) SetStatus(s Status) {
	r.Status = s
	r.UpdatedAt = time.Now()
}

// SetError records a failure terminal state with its error kind.
func (r *VisitRecord) SetError(s Status, kind, detail string) {
	r.SetStatus(s)
	r.ErrorKind = kind
	r.ErrorDetail = detail
}
