package usecase

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tripdata/pkg/domain/interfaces"
	"github.com/m-mizutani/tripdata/pkg/domain/model"
	"github.com/m-mizutani/tripdata/pkg/domain/types"
)

// DefaultTabularSuffixes are the member name suffixes treated as tabular data
var DefaultTabularSuffixes = []string{".csv"}

type extractUseCase struct {
	suffixes []string
	console  *console
}

// ExtractOption is a functional option for the extract use case
type ExtractOption func(*extractUseCase)

// WithTabularSuffixes sets the suffixes that identify tabular members
func WithTabularSuffixes(suffixes ...string) ExtractOption {
	return func(uc *extractUseCase) {
		if len(suffixes) > 0 {
			uc.suffixes = suffixes
		}
	}
}

// WithExtractOutput sets the writer for interactive status lines
func WithExtractOutput(w io.Writer) ExtractOption {
	return func(uc *extractUseCase) {
		uc.console = newConsole(w)
	}
}

// NewExtract creates a new instance of ExtractUseCase
func NewExtract(opts ...ExtractOption) interfaces.ExtractUseCase {
	uc := &extractUseCase{
		suffixes: DefaultTabularSuffixes,
		console:  newConsole(nil),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ExtractTabular extracts only the first tabular member of archive
func (uc *extractUseCase) ExtractTabular(ctx context.Context, archive, destDir string) (string, error) {
	logger := ctxlog.From(ctx)

	r, err := uc.open(archive)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = r.Close()
	}()

	for _, file := range r.File {
		if !uc.isTabular(file) {
			continue
		}

		destPath, err := extractFile(file, destDir)
		if err != nil {
			uc.console.failure("Failed to extract %s: %v", filepath.Base(archive), err)
			return "", err
		}

		uc.console.success("Extracted %s", file.Name)
		logger.Debug("Extracted tabular member", "archive", archive, "member", file.Name, "path", destPath)
		return destPath, nil
	}

	uc.console.failure("No CSV file found in %s", filepath.Base(archive))
	return "", goerr.New("no tabular member in archive", goerr.V("archive", archive), goerr.T(types.ErrTagNoTabularMember))
}

// ExtractAll extracts every member of archive
func (uc *extractUseCase) ExtractAll(ctx context.Context, archive, destDir string) ([]string, error) {
	if _, err := os.Stat(archive); err != nil {
		uc.console.printf("File not found: %s\n", archive)
		return nil, goerr.Wrap(err, "archive not found", goerr.V("archive", archive), goerr.T(types.ErrTagArchiveOpen))
	}

	uc.console.printf("Extracting %s...\n", filepath.Base(archive))
	paths, err := uc.extractMatching(ctx, archive, destDir, func(*zip.File) bool { return true }, false)
	if err != nil {
		return nil, err
	}

	uc.console.success("Extraction complete!")
	return paths, nil
}

// ExtractDir applies policy to every archive in dir. A failing archive is reported and skipped.
func (uc *extractUseCase) ExtractDir(ctx context.Context, dir string, policy model.ExtractPolicy) ([]string, error) {
	logger := ctxlog.From(ctx)

	archives, err := listArchives(dir)
	if err != nil {
		return nil, err
	}
	if len(archives) == 0 {
		uc.console.printf("No zip files found in %s\n", dir)
		return []string{}, nil
	}

	match := uc.isTabular
	requireMatch := true
	if policy == model.PolicyAllMembers {
		match = func(*zip.File) bool { return true }
		requireMatch = false
	}

	uc.console.printf("Found %d zip file(s) to extract:\n", len(archives))

	var extracted []string
	for _, archive := range archives {
		if err := ctx.Err(); err != nil {
			return extracted, goerr.Wrap(err, "extraction interrupted")
		}

		uc.console.printf("\nExtracting %s...\n", filepath.Base(archive))

		paths, err := uc.extractMatching(ctx, archive, dir, match, requireMatch)
		if err != nil {
			logger.Warn("Skipping archive", "archive", archive, "error", err)
			continue
		}
		extracted = append(extracted, paths...)
	}

	return extracted, nil
}

// extractMatching extracts the members selected by match and reports each one with its size.
// With requireMatch an archive without any selected member, empty ones included, is an error.
func (uc *extractUseCase) extractMatching(ctx context.Context, archive, destDir string, match func(*zip.File) bool, requireMatch bool) ([]string, error) {
	logger := ctxlog.From(ctx)

	r, err := uc.open(archive)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = r.Close()
	}()

	paths := []string{}
	matched := 0
	for _, file := range r.File {
		if !match(file) {
			continue
		}
		matched++

		destPath, err := extractFile(file, destDir)
		if err != nil {
			uc.console.failure("Failed to extract %s: %v", filepath.Base(archive), err)
			return nil, err
		}
		if file.FileInfo().IsDir() {
			continue
		}

		paths = append(paths, destPath)
		uc.console.success("Extracted %s (%s bytes)", file.Name, formatBytes(int64(file.UncompressedSize64)))
		logger.Debug("Extracted member", "archive", archive, "member", file.Name, "path", destPath)
	}

	if requireMatch && matched == 0 {
		uc.console.failure("No CSV files found in %s", filepath.Base(archive))
		return nil, goerr.New("no matching member in archive", goerr.V("archive", archive), goerr.T(types.ErrTagNoTabularMember))
	}

	return paths, nil
}

func (uc *extractUseCase) open(archive string) (*zip.ReadCloser, error) {
	r, err := zip.OpenReader(archive)
	if err != nil {
		uc.console.failure("Failed to open archive %s: %v", filepath.Base(archive), err)
		return nil, goerr.Wrap(err, "failed to open archive", goerr.V("archive", archive), goerr.T(types.ErrTagArchiveOpen))
	}
	return r, nil
}

func (uc *extractUseCase) isTabular(file *zip.File) bool {
	if file.FileInfo().IsDir() {
		return false
	}
	return hasTabularSuffix(file.Name, uc.suffixes)
}

func hasTabularSuffix(name string, suffixes []string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range suffixes {
		if strings.HasSuffix(lower, strings.ToLower(suffix)) {
			return true
		}
	}
	return false
}

// listArchives returns the *.zip files directly under dir, sorted by name
func listArchives(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to read directory", goerr.V("dir", dir))
	}

	var archives []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".zip") {
			continue
		}
		archives = append(archives, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(archives)

	return archives, nil
}

// extractFile extracts a single member into destDir and returns the written path
func extractFile(file *zip.File, destDir string) (string, error) {
	// prevent path traversal via member names
	destPath := filepath.Join(destDir, file.Name)
	if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", goerr.New("invalid member path", goerr.V("member", file.Name), goerr.V("dest", destPath))
	}

	if file.FileInfo().IsDir() {
		if err := os.MkdirAll(destPath, 0755); err != nil {
			return "", goerr.Wrap(err, "failed to create directory", goerr.V("path", destPath))
		}
		return destPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", goerr.Wrap(err, "failed to create parent directories", goerr.V("path", filepath.Dir(destPath)))
	}

	rc, err := file.Open()
	if err != nil {
		return "", goerr.Wrap(err, "failed to open member", goerr.V("member", file.Name), goerr.T(types.ErrTagArchiveOpen))
	}
	defer func() {
		_ = rc.Close()
	}()

	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create destination file", goerr.V("path", destPath))
	}
	defer func() {
		_ = destFile.Close()
	}()

	if _, err := io.Copy(destFile, rc); err != nil {
		return "", goerr.Wrap(err, "failed to copy member content", goerr.V("path", destPath), goerr.T(types.ErrTagArchiveOpen))
	}

	return destPath, nil
}
