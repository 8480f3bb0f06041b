package usecase

import "io"

var FormatBytes = formatBytes

// WithFileOpener replaces how the summary opens tabular files
func WithFileOpener(open func(name string) (io.ReadSeekCloser, error)) SummaryOption {
	return func(uc *summaryUseCase) {
		uc.openFile = open
	}
}
