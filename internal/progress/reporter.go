// Package progress renders apply-session progress on the terminal for the
// CLI wizard, where there is no studio UI to animate into.
package progress

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/ashwanth2007/TheVibeCoders/internal/apply"
)

// Reporter provides progress feedback while files are generated and
// written.
type Reporter interface {
	Start(total int)
	Update(current int, message string)
	Finish()
}

// NewReporter returns a TerminalReporter if running in an interactive
// terminal, or a CIReporter if the CI environment variable is set.
func NewReporter() Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return &CIReporter{}
	}
	return &TerminalReporter{}
}

// ApplyListener adapts a Reporter to the apply engine's event stream: one
// bar step per finished file, an "applying" line for the commit, then
// Finish once the entry lands. The reload phase that follows the commit
// is server-side only and stays silent.
func ApplyListener(r Reporter) func(apply.Event) {
	return func(ev apply.Event) {
		switch ev.Type {
		case apply.EventPhase:
			if ev.Phase != apply.PhaseApplying {
				return // Start carries the total; the bar is done by reload.
			}
			r.Update(-1, string(ev.Phase))
		case apply.EventFileStarted:
			if ev.Index == 0 {
				r.Start(ev.Total)
			}
			r.Update(ev.Index, "writing "+ev.Path)
		case apply.EventFileDone:
			r.Update(ev.Index+1, "wrote "+ev.Path)
		case apply.EventCommitted:
			r.Finish()
		case apply.EventError:
			fmt.Fprintf(os.Stderr, "error: %s\n", ev.Message)
		}
	}
}

// TerminalReporter displays a progress bar in the terminal.
type TerminalReporter struct {
	bar *progressbar.ProgressBar
}

func (r *TerminalReporter) Start(total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Writing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *TerminalReporter) Update(current int, message string) {
	if r.bar == nil {
		return
	}
	r.bar.Describe(message)
	if current >= 0 {
		_ = r.bar.Set(current)
	}
}

func (r *TerminalReporter) Finish() {
	if r.bar != nil {
		_ = r.bar.Finish()
	}
}

// CIReporter prints line-by-line progress suitable for CI logs.
type CIReporter struct {
	total int
}

func (r *CIReporter) Start(total int) {
	r.total = total
	fmt.Fprintf(os.Stderr, "Writing %d files\n", total)
}

func (r *CIReporter) Update(current int, message string) {
	if current < 0 {
		fmt.Fprintf(os.Stderr, "%s\n", message)
		return
	}
	fmt.Fprintf(os.Stderr, "[%d/%d] %s\n", current, r.total, message)
}

func (r *CIReporter) Finish() {
	fmt.Fprintln(os.Stderr, "Done")
}
