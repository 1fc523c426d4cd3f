package extractor

import "fmt"

// ErrorKind classifies extraction failures.
type ErrorKind int

// Extraction error kinds.
const (
	// KindMalformed covers input that could not be parsed as HTML at
	// all (binary data, invalid encoding, reader failures).
	KindMalformed ErrorKind = iota

	// KindNoContent covers pages where no configured content selector
	// matched anything usable.
	KindNoContent

	// KindNotHTML covers responses whose content type is not HTML.
	KindNotHTML
)

// String returns the snake_case name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindMalformed:
		return "malformed"
	case KindNoContent:
		return "no_content"
	case KindNotHTML:
		return "not_html"
	default:
		return "unknown"
	}
}

// Error is a typed extraction failure scoped to a single page.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// URL is the page whose extraction failed.
	URL string

	// Err is the underlying parse error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("extract %s: %s", e.URL, e.Kind)
}

// Unwrap returns the underlying parse error.
func (e *Error) Unwrap() error {
	return e.Err
}
