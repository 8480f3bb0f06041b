package model

const (
	// RowsUnknown is reported when a tabular file could not be read
	RowsUnknown = "unknown"
	// RowsNotApplicable is reported for files that are not tabular
	RowsNotApplicable = "N/A (zip file)"
)

// Summary is the last-run snapshot written to download_summary.json
type Summary struct {
	DownloadTimestamp string        `json:"download_timestamp"`
	Files             []FileSummary `json:"files"`
}

// FileSummary describes one produced file.
// Rows holds either an int64 row count or one of the RowsUnknown / RowsNotApplicable sentinels.
type FileSummary struct {
	Filename string   `json:"filename"`
	SizeMB   float64  `json:"size_mb"`
	Rows     any      `json:"rows"`
	Columns  []string `json:"columns"`
}
