package fetcher

import "fmt"

// ErrorKind classifies fetch failures for the visit record and the
// final summary.
type ErrorKind int

// Fetch error kinds.
const (
	// KindNetwork covers DNS failures, connection refusals and resets.
	KindNetwork ErrorKind = iota

	// KindTimeout covers connection and read timeouts.
	KindTimeout

	// KindHTTPStatus covers non-2xx responses that survived the retry
	// policy (terminal 4xx, or 5xx after the attempt bound).
	KindHTTPStatus

	// KindUnavailable covers pages served with 200 but carrying a
	// configured "not available" body marker.
	KindUnavailable

	// KindTooManyRedirects covers redirect chains exceeding the hop bound.
	KindTooManyRedirects
)

// String returns the snake_case name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindHTTPStatus:
		return "http_status"
	case KindUnavailable:
		return "unavailable"
	case KindTooManyRedirects:
		return "too_many_redirects"
	default:
		return "unknown"
	}
}

// Error is a typed fetch failure. It records the URL, how many
// attempts were made, and the HTTP status when one was received.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// URL is the URL whose fetch failed.
	URL string

	// Attempts is the number of attempts made before giving up.
	Attempts int

	// StatusCode is the last HTTP status received, 0 if none.
	StatusCode int

	// Err is the underlying transport error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("fetch %s: status %d after %d attempt(s)", e.URL, e.StatusCode, e.Attempts)
	case KindUnavailable:
		return fmt.Sprintf("fetch %s: page marked unavailable", e.URL)
	case KindTooManyRedirects:
		return fmt.Sprintf("fetch %s: too many redirects", e.URL)
	default:
		return fmt.Sprintf("fetch %s: %s after %d attempt(s): %v", e.URL, e.Kind, e.Attempts, e.Err)
	}
}

// Unwrap returns the underlying transport error.
func (e *Error) Unwrap() error {
	return e.Err
}
