package crawler

import (
	"errors"
	"fmt"
)

// ErrNoSeedsAdmitted is returned by Driver.Run when none of the seeds
// could be admitted to the frontier.
var ErrNoSeedsAdmitted = errors.New("crawler: no seeds admitted to the frontier")

// SeedError reports a seed URL the frontier rejected, either because
// it is malformed or because it falls outside the crawl scope.
type SeedError struct {
	Seed  string
	Scope Scope
}

// Error implements the error interface.
func (e *SeedError) Error() string {
	return fmt.Sprintf("crawler: seed %q rejected (scope %s)", e.Seed, e.Scope)
}
