package main

import (
	"io"

	"github.com/schollz/progressbar/v3"

	"github.com/JonMunkholm/importdata/internal/core"
)

// newProgressBars returns a factory drawing one bar per sheet on w.
func newProgressBars(w io.Writer) func(entity string) core.ProgressFunc {
	return func(entity string) core.ProgressFunc {
		var bar *progressbar.ProgressBar
		return func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(w),
					progressbar.OptionSetDescription(entity),
					progressbar.OptionShowCount(),
					progressbar.OptionOnCompletion(func() { io.WriteString(w, "\n") }),
					progressbar.OptionSetTheme(progressbar.Theme{
						Saucer:        "=",
						SaucerHead:    ">",
						SaucerPadding: " ",
						BarStart:      "[",
						BarEnd:        "]",
					}),
				)
			}
			_ = bar.Set(done)
		}
	}
}
