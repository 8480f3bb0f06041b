package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures so callers can decide whether to continue.
// None of them is fatal to a pipeline run.
var (
	// ErrTagNotFound means the remote archive for a month does not exist
	ErrTagNotFound = goerr.NewTag("remote_not_found")
	// ErrTagTransport means the transfer failed at network or HTTP level
	ErrTagTransport = goerr.NewTag("transport")
	// ErrTagArchiveOpen means a local archive could not be opened or read
	ErrTagArchiveOpen = goerr.NewTag("archive_open")
	// ErrTagNoTabularMember means an archive holds no tabular-data member
	ErrTagNoTabularMember = goerr.NewTag("no_tabular_member")
	// ErrTagMetadataRead means file metadata could not be read for a summary
	ErrTagMetadataRead = goerr.NewTag("metadata_read")
	// ErrTagInvalidInput means user input was malformed
	ErrTagInvalidInput = goerr.NewTag("invalid_input")
)
