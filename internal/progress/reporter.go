package progress

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
)

// Reporter drives a terminal progress bar from crawl completion
// events. It satisfies the driver's observer contract: Update is
// called with the number of completed URLs and the number of URLs
// discovered so far.
type Reporter struct {
	pw      progress.Writer
	tracker *progress.Tracker
}

// NewReporter creates a Reporter rendering to out.
func NewReporter(out io.Writer) *Reporter {
	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetTrackerLength(30)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetTrackerPosition(progress.PositionRight)
	pw.SetStyle(progress.StyleDefault)
	// The total keeps growing as links are discovered, so an ETA
	// would only mislead.
	pw.Style().Visibility.ETA = false
	pw.Style().Visibility.Speed = true

	tracker := &progress.Tracker{
		Message: "crawling",
		Units:   progress.UnitsDefault,
	}
	pw.AppendTracker(tracker)

	return &Reporter{pw: pw, tracker: tracker}
}

// Start begins rendering in a background goroutine.
func (r *Reporter) Start() {
	go r.pw.Render()
}

// Update advances the bar. discovered becomes the new total, so the
// bar can move backwards in percentage terms when a page yields many
// new links.
func (r *Reporter) Update(completed, discovered int) {
	r.tracker.UpdateTotal(int64(discovered))
	r.tracker.SetValue(int64(completed))
}

// Stop finalizes the tracker and stops rendering. It blocks briefly
// until the final frame is flushed.
func (r *Reporter) Stop() {
	r.tracker.MarkAsDone()
	r.pw.Stop()
	for r.pw.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}

// Noop is an observer that discards all updates. It is used when
// progress output is disabled or when stdout is not a terminal.
type Noop struct{}

// Update implements the observer contract and does nothing.
func (Noop) Update(completed, discovered int) {}
