package usecase_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/tripdata/pkg/domain/model"
	"github.com/m-mizutani/tripdata/pkg/usecase"
)

var fixedNow = time.Date(2025, time.February, 3, 4, 5, 6, 0, time.UTC)

func TestSummary_EmptyInput(t *testing.T) {
	dirs := model.NewDirs(t.TempDir())
	uc := usecase.NewSummary(dirs, usecase.WithClock(func() time.Time { return fixedNow }))

	summary, err := uc.Build(context.Background(), nil)
	gt.NoError(t, err)
	gt.A(t, summary.Files).Length(0)

	path, err := uc.Write(context.Background(), summary)
	gt.NoError(t, err)
	gt.Value(t, path).Equal(filepath.Join(dirs.External, "download_summary.json"))

	data, err := os.ReadFile(path)
	gt.NoError(t, err)

	var doc map[string]any
	gt.NoError(t, json.Unmarshal(data, &doc))

	files, ok := doc["files"].([]any)
	gt.True(t, ok)
	gt.A(t, files).Length(0)

	ts, ok := doc["download_timestamp"].(string)
	gt.True(t, ok)
	parsed, err := time.Parse(time.RFC3339Nano, ts)
	gt.NoError(t, err)
	gt.True(t, parsed.Equal(fixedNow))
}

func TestSummary_FileMetadata(t *testing.T) {
	dirs := model.NewDirs(t.TempDir())
	gt.NoError(t, os.MkdirAll(dirs.Raw, 0755))

	csvPath := filepath.Join(dirs.Raw, "202501-citibike-tripdata.csv")
	gt.NoError(t, os.WriteFile(csvPath, []byte(tripCSV), 0644))

	noTrailingNewline := filepath.Join(dirs.Raw, "short.csv")
	gt.NoError(t, os.WriteFile(noTrailingNewline, []byte("a,b\n1,2\n3,4"), 0644))

	emptyCSV := filepath.Join(dirs.Raw, "empty.csv")
	gt.NoError(t, os.WriteFile(emptyCSV, nil, 0644))

	zipPath := filepath.Join(dirs.Raw, "202501-citibike-tripdata.csv.zip")
	gt.NoError(t, os.WriteFile(zipPath, bytes.Repeat([]byte{0}, 3*1024*1024+5000), 0644))

	uc := usecase.NewSummary(dirs, usecase.WithClock(func() time.Time { return fixedNow }))

	summary, err := uc.Build(context.Background(), []string{
		zipPath,
		"",
		filepath.Join(dirs.Raw, "missing.csv"),
		dirs.Raw,
		csvPath,
		noTrailingNewline,
		emptyCSV,
	})
	gt.NoError(t, err)
	gt.A(t, summary.Files).Length(4)

	zipEntry := summary.Files[0]
	gt.Value(t, zipEntry.Filename).Equal("202501-citibike-tripdata.csv.zip")
	gt.Value(t, zipEntry.SizeMB).Equal(3.0)
	gt.Value(t, zipEntry.Rows).Equal(any(model.RowsNotApplicable))
	gt.A(t, zipEntry.Columns).Length(0)

	csvEntry := summary.Files[1]
	gt.Value(t, csvEntry.Filename).Equal("202501-citibike-tripdata.csv")
	gt.Value(t, csvEntry.Rows).Equal(any(int64(2)))
	gt.Value(t, csvEntry.Columns).Equal([]string{"ride_id", "rideable_type", "started_at", "ended_at", "start_station_name"})

	gt.Value(t, summary.Files[2].Rows).Equal(any(int64(2)))
	gt.Value(t, summary.Files[2].Columns).Equal([]string{"a", "b"})

	gt.Value(t, summary.Files[3].Rows).Equal(any(int64(0)))
	gt.A(t, summary.Files[3].Columns).Length(0)
}

func TestSummary_WriteOverwrites(t *testing.T) {
	dirs := model.NewDirs(t.TempDir())
	gt.NoError(t, os.MkdirAll(dirs.External, 0755))
	gt.NoError(t, os.WriteFile(dirs.SummaryPath(), []byte(strings.Repeat("stale ", 1000)), 0644))

	csvPath := filepath.Join(t.TempDir(), "trips.csv")
	gt.NoError(t, os.WriteFile(csvPath, []byte(tripCSV), 0644))

	var out bytes.Buffer
	uc := usecase.NewSummary(dirs, usecase.WithSummaryOutput(&out))

	summary, err := uc.Build(context.Background(), []string{csvPath})
	gt.NoError(t, err)
	path, err := uc.Write(context.Background(), summary)
	gt.NoError(t, err)

	data, err := os.ReadFile(path)
	gt.NoError(t, err)
	gt.False(t, bytes.Contains(data, []byte("stale")))
	gt.String(t, string(data)).Contains("\n  \"files\": [")
	gt.String(t, string(data)).Contains("\"rows\": 2")
	gt.String(t, out.String()).Contains("Summary saved to")
}

// failingReader fails every read after the first bytes
type failingReader struct {
	*strings.Reader
	served bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.served {
		return 0, errors.New("device error")
	}
	r.served = true
	return r.Reader.Read(p[:4])
}

func (r *failingReader) Close() error { return nil }

func TestSummary_MetadataReadFailureDowngrades(t *testing.T) {
	dirs := model.NewDirs(t.TempDir())
	gt.NoError(t, os.MkdirAll(dirs.Raw, 0755))

	unopenable := filepath.Join(dirs.Raw, "202411-citibike-tripdata.csv")
	unreadable := filepath.Join(dirs.Raw, "202412-citibike-tripdata.csv")
	healthy := filepath.Join(dirs.Raw, "202501-citibike-tripdata.csv")
	archive := filepath.Join(dirs.Raw, "202501-citibike-tripdata.csv.zip")
	for _, p := range []string{unopenable, unreadable, healthy, archive} {
		gt.NoError(t, os.WriteFile(p, []byte(tripCSV), 0644))
	}

	opener := func(name string) (io.ReadSeekCloser, error) {
		switch name {
		case unopenable:
			return nil, errors.New("permission denied")
		case unreadable:
			return &failingReader{Reader: strings.NewReader(tripCSV)}, nil
		default:
			return os.Open(name)
		}
	}

	uc := usecase.NewSummary(dirs, usecase.WithFileOpener(opener))

	summary, err := uc.Build(context.Background(), []string{unopenable, unreadable, healthy, archive})
	gt.NoError(t, err)
	gt.A(t, summary.Files).Length(4)

	for _, entry := range summary.Files[:2] {
		gt.Value(t, entry.Rows).Equal(any(model.RowsUnknown))
		gt.A(t, entry.Columns).Length(0)
		gt.Number(t, entry.SizeMB).Equal(0.0)
	}

	gt.Value(t, summary.Files[2].Filename).Equal("202501-citibike-tripdata.csv")
	gt.Value(t, summary.Files[2].Rows).Equal(any(int64(2)))
	gt.A(t, summary.Files[2].Columns).Length(5)
	gt.Value(t, summary.Files[3].Rows).Equal(any(model.RowsNotApplicable))

	path, err := uc.Write(context.Background(), summary)
	gt.NoError(t, err)
	data, err := os.ReadFile(path)
	gt.NoError(t, err)
	gt.String(t, string(data)).Contains(`"rows": "unknown"`)
}
