package usecase

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tripdata/pkg/domain/interfaces"
	"github.com/m-mizutani/tripdata/pkg/domain/model"
	"github.com/m-mizutani/tripdata/pkg/domain/types"
)

type fetchUseCase struct {
	client   interfaces.ArchiveClient
	dirs     model.Dirs
	template string
	console  *console
}

// FetchOption is a functional option for the fetch use case
type FetchOption func(*fetchUseCase)

// WithArchiveTemplate sets the remote object name template
func WithArchiveTemplate(template string) FetchOption {
	return func(uc *fetchUseCase) {
		uc.template = template
	}
}

// WithFetchOutput sets the writer for interactive status and progress
func WithFetchOutput(w io.Writer) FetchOption {
	return func(uc *fetchUseCase) {
		uc.console = newConsole(w)
	}
}

// NewFetch creates a new instance of FetchUseCase
func NewFetch(client interfaces.ArchiveClient, dirs model.Dirs, opts ...FetchOption) interfaces.FetchUseCase {
	uc := &fetchUseCase{
		client:   client,
		dirs:     dirs,
		template: model.DefaultArchiveTemplate,
		console:  newConsole(nil),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Fetch downloads the archive of ym into the raw-data directory.
// The transfer goes to a ".part" file that is renamed once complete.
func (uc *fetchUseCase) Fetch(ctx context.Context, ym model.YearMonth) (*model.FetchResult, error) {
	logger := ctxlog.From(ctx)

	name := ym.ArchiveName(uc.template)
	dstPath := filepath.Join(uc.dirs.Raw, name)
	partPath := dstPath + ".part"

	if err := os.MkdirAll(uc.dirs.Raw, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create raw data directory", goerr.V("dir", uc.dirs.Raw))
	}

	uc.console.printf("Downloading %s...\n", name)
	logger.Debug("Downloading archive", "year_month", ym, "name", name, "path", dstPath)

	f, err := os.Create(partPath)
	if err != nil {
		err = goerr.Wrap(err, "failed to create archive file", goerr.V("path", partPath))
		uc.reportFailure(name, err)
		return nil, err
	}

	size, err := uc.client.Download(ctx, name, f, NewProgressPrinter(uc.console.w))
	closeErr := f.Close()
	if err == nil && closeErr != nil {
		err = goerr.Wrap(closeErr, "failed to close archive file", goerr.V("path", partPath))
	}
	if err != nil {
		_ = os.Remove(partPath)
		uc.reportFailure(name, err)
		return nil, goerr.Wrap(err, "failed to fetch archive", goerr.V("year_month", ym))
	}

	if err := os.Rename(partPath, dstPath); err != nil {
		_ = os.Remove(partPath)
		err = goerr.Wrap(err, "failed to move archive into place", goerr.V("path", dstPath))
		uc.reportFailure(name, err)
		return nil, err
	}

	uc.console.printf("\n")
	uc.console.success("Downloaded %s (%s bytes)", name, formatBytes(size))
	logger.Debug("Downloaded archive", "year_month", ym, "path", dstPath, "size_bytes", size)

	return &model.FetchResult{
		YearMonth: ym,
		Path:      dstPath,
		Size:      size,
	}, nil
}

func (uc *fetchUseCase) reportFailure(name string, err error) {
	uc.console.printf("\n")

	switch {
	case goerr.HasTag(err, types.ErrTagNotFound):
		uc.console.failure("File not found - %s may not exist for this month", name)
	case goerr.HasTag(err, types.ErrTagTransport):
		uc.console.failure("Transfer error for %s: %v", name, err)
	default:
		uc.console.failure("Failed to download %s: %v", name, err)
	}
}
