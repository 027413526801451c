package main

import (
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/lucasjlepore/unevenness-grade/internal/logging"
)

// newProgress returns a progress callback drawing on stderr, or nil when
// stderr is not a terminal or quiet is set.
func newProgress(quiet bool) (func(done, total int), func()) {
	if quiet || !logging.IsTerminal(os.Stderr) {
		return nil, func() {}
	}
	return progressTo(os.Stderr)
}

func progressTo(w io.Writer) (func(done, total int), func()) {
	var bar *progressbar.ProgressBar
	update := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription("evaluating pipelines"),
				progressbar.OptionShowCount(),
				progressbar.OptionSetItsString("pipelines"),
				progressbar.OptionShowIts(),
				progressbar.OptionThrottle(100*time.Millisecond),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
	}
	finish := func() {
		if bar != nil {
			_ = bar.Finish()
		}
	}
	return update, finish
}
