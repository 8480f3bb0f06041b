package model

import "time"

// FetchResult represents an archive retrieved from the remote dataset
type FetchResult struct {
	YearMonth YearMonth // Month the archive covers
	Path      string    // Local path of the archive
	Size      int64     // Size in bytes
}

// ExtractPolicy selects which archive members are extracted
type ExtractPolicy string

const (
	// PolicyTabularOnly extracts only members with a tabular-data suffix
	PolicyTabularOnly ExtractPolicy = "tabular"
	// PolicyAllMembers extracts every member of the archive
	PolicyAllMembers ExtractPolicy = "all"
)

// RemoteArchive is an archive published in the remote bucket
type RemoteArchive struct {
	Key          string
	YearMonth    YearMonth
	Size         int64
	LastModified time.Time
}
