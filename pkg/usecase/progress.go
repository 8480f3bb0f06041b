package usecase

import (
	"fmt"
	"io"

	"github.com/m-mizutani/tripdata/pkg/domain/types"
)

// progressStep is the minimum change in percent between two progress lines
const progressStep = 5.0

// NewProgressPrinter returns a ProgressFunc that rewrites a "Progress: N%" line on w
// whenever the transfer advanced by at least progressStep percent.
// Nothing is printed when the total size is unknown.
func NewProgressPrinter(w io.Writer) types.ProgressFunc {
	var last float64

	return func(done, unitSize, total int64) {
		if total <= 0 {
			return
		}

		percent := float64(done*unitSize) * 100 / float64(total)
		if percent > 100 {
			percent = 100
		}

		if percent-last >= progressStep {
			_, _ = fmt.Fprintf(w, "\rProgress: %.1f%%", percent)
			last = percent
		}
	}
}
