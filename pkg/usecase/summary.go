package usecase

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tripdata/pkg/domain/interfaces"
	"github.com/m-mizutani/tripdata/pkg/domain/model"
	"github.com/m-mizutani/tripdata/pkg/domain/types"
)

// maxSummaryColumns is the number of header columns kept per file
const maxSummaryColumns = 5

type summaryUseCase struct {
	dirs     model.Dirs
	now      func() time.Time
	suffixes []string
	console  *console
	openFile func(name string) (io.ReadSeekCloser, error)
}

// SummaryOption is a functional option for the summary use case
type SummaryOption func(*summaryUseCase)

// WithClock replaces the time source used for the summary timestamp
func WithClock(now func() time.Time) SummaryOption {
	return func(uc *summaryUseCase) {
		uc.now = now
	}
}

// WithSummaryOutput sets the writer for interactive status lines
func WithSummaryOutput(w io.Writer) SummaryOption {
	return func(uc *summaryUseCase) {
		uc.console = newConsole(w)
	}
}

// WithSummaryTabularSuffixes sets the suffixes of files that get row and column metadata
func WithSummaryTabularSuffixes(suffixes ...string) SummaryOption {
	return func(uc *summaryUseCase) {
		if len(suffixes) > 0 {
			uc.suffixes = suffixes
		}
	}
}

// NewSummary creates a new instance of SummaryUseCase
func NewSummary(dirs model.Dirs, opts ...SummaryOption) interfaces.SummaryUseCase {
	uc := &summaryUseCase{
		dirs:     dirs,
		now:      time.Now,
		suffixes: DefaultTabularSuffixes,
		console:  newConsole(nil),
		openFile: openOSFile,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

func openOSFile(name string) (io.ReadSeekCloser, error) {
	return os.Open(name)
}

// Build collects size and, for tabular files, row and column metadata.
// Empty paths and paths that are not regular files are skipped.
func (uc *summaryUseCase) Build(ctx context.Context, paths []string) (*model.Summary, error) {
	logger := ctxlog.From(ctx)

	summary := &model.Summary{
		DownloadTimestamp: uc.now().Format(time.RFC3339Nano),
		Files:             []model.FileSummary{},
	}

	for _, path := range paths {
		if path == "" {
			continue
		}

		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		entry := model.FileSummary{
			Filename: filepath.Base(path),
			SizeMB:   math.Round(float64(info.Size())/(1024*1024)*100) / 100,
			Rows:     model.RowsNotApplicable,
			Columns:  []string{},
		}

		if hasTabularSuffix(path, uc.suffixes) {
			rows, columns, err := readTabularMetadata(uc.openFile, path)
			if err != nil {
				logger.Warn("Failed to read tabular metadata", "path", path, "error", err)
				entry.Rows = model.RowsUnknown
			} else {
				entry.Rows = rows
				entry.Columns = columns
			}
		}

		summary.Files = append(summary.Files, entry)
	}

	return summary, nil
}

// Write stores summary as indented JSON, replacing any previous summary
func (uc *summaryUseCase) Write(ctx context.Context, summary *model.Summary) (string, error) {
	path := uc.dirs.SummaryPath()

	if err := os.MkdirAll(uc.dirs.External, 0755); err != nil {
		return "", goerr.Wrap(err, "failed to create external data directory", goerr.V("dir", uc.dirs.External))
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return "", goerr.Wrap(err, "failed to marshal summary")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", goerr.Wrap(err, "failed to write summary", goerr.V("path", path))
	}

	uc.console.printf("\n📋 Summary saved to %s\n", path)
	ctxlog.From(ctx).Debug("Summary written", "path", path, "files", len(summary.Files))

	return path, nil
}

// readTabularMetadata returns the data row count (lines minus header) and the
// first header columns. The header is split on commas without quote handling.
func readTabularMetadata(open func(string) (io.ReadSeekCloser, error), path string) (int64, []string, error) {
	f, err := open(path)
	if err != nil {
		return 0, nil, goerr.Wrap(err, "failed to open file", goerr.V("path", path), goerr.T(types.ErrTagMetadataRead))
	}
	defer func() {
		_ = f.Close()
	}()

	lines, err := countLines(f)
	if err != nil {
		return 0, nil, goerr.Wrap(err, "failed to count lines", goerr.V("path", path), goerr.T(types.ErrTagMetadataRead))
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, nil, goerr.Wrap(err, "failed to rewind file", goerr.V("path", path), goerr.T(types.ErrTagMetadataRead))
	}

	header, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, nil, goerr.Wrap(err, "failed to read header", goerr.V("path", path), goerr.T(types.ErrTagMetadataRead))
	}

	columns := []string{}
	if header = strings.TrimSpace(header); header != "" {
		columns = strings.Split(header, ",")
		if len(columns) > maxSummaryColumns {
			columns = columns[:maxSummaryColumns]
		}
	}

	rows := lines - 1
	if rows < 0 {
		rows = 0
	}

	return rows, columns, nil
}

// countLines counts newline-terminated lines plus a trailing unterminated one
func countLines(r io.Reader) (int64, error) {
	buf := make([]byte, 64*1024)
	var count int64
	var last byte
	var seen bool

	for {
		n, err := r.Read(buf)
		if n > 0 {
			count += int64(bytes.Count(buf[:n], []byte{'\n'}))
			last = buf[n-1]
			seen = true
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
	}

	if seen && last != '\n' {
		count++
	}
	return count, nil
}
