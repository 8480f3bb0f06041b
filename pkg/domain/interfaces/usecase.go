package interfaces

import (
	"context"

	"github.com/m-mizutani/tripdata/pkg/domain/model"
)

// FetchUseCase downloads monthly archives
type FetchUseCase interface {
	// Fetch downloads the archive for ym into the raw-data directory
	Fetch(ctx context.Context, ym model.YearMonth) (*model.FetchResult, error)
}

// ExtractUseCase unpacks downloaded archives
type ExtractUseCase interface {
	// ExtractTabular extracts the first tabular member of archive into destDir
	ExtractTabular(ctx context.Context, archive, destDir string) (string, error)

	// ExtractAll extracts every member of archive into destDir
	ExtractAll(ctx context.Context, archive, destDir string) ([]string, error)

	// ExtractDir applies policy to every archive in dir, extracting next to the archives
	ExtractDir(ctx context.Context, dir string, policy model.ExtractPolicy) ([]string, error)
}

// SummaryUseCase builds and persists the run summary
type SummaryUseCase interface {
	// Build collects metadata for the existing files among paths
	Build(ctx context.Context, paths []string) (*model.Summary, error)

	// Write persists summary and returns the file path
	Write(ctx context.Context, summary *model.Summary) (string, error)
}
