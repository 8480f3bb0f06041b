package model

import "path/filepath"

// SummaryFileName is the file name of the run summary in the external data directory
const SummaryFileName = "download_summary.json"

// Dirs holds the local data layout of a project
type Dirs struct {
	Raw      string // Downloaded archives and extracted tabular files
	External string // Derived artifacts such as the run summary
}

// NewDirs returns the standard layout under root: data/raw and data/external
func NewDirs(root string) Dirs {
	return Dirs{
		Raw:      filepath.Join(root, "data", "raw"),
		External: filepath.Join(root, "data", "external"),
	}
}

// SummaryPath returns the location of the run summary
func (d Dirs) SummaryPath() string {
	return filepath.Join(d.External, SummaryFileName)
}
