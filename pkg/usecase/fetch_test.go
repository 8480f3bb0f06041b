package usecase_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/tripdata/pkg/domain/model"
	"github.com/m-mizutani/tripdata/pkg/domain/types"
	"github.com/m-mizutani/tripdata/pkg/usecase"
)

// MockArchiveClient is a mock implementation of ArchiveClient
type MockArchiveClient struct {
	downloadFunc func(ctx context.Context, name string, dst io.Writer, progress types.ProgressFunc) (int64, error)
	names        []string
}

func (m *MockArchiveClient) Download(ctx context.Context, name string, dst io.Writer, progress types.ProgressFunc) (int64, error) {
	m.names = append(m.names, name)
	if m.downloadFunc != nil {
		return m.downloadFunc(ctx, name, dst, progress)
	}
	return 0, goerr.New("mock not configured")
}

func TestFetch_Success(t *testing.T) {
	dirs := model.NewDirs(t.TempDir())
	content := []byte("zip payload")

	client := &MockArchiveClient{
		downloadFunc: func(ctx context.Context, name string, dst io.Writer, progress types.ProgressFunc) (int64, error) {
			progress(1, int64(len(content)), int64(len(content)))
			n, err := dst.Write(content)
			return int64(n), err
		},
	}

	var out bytes.Buffer
	uc := usecase.NewFetch(client, dirs, usecase.WithFetchOutput(&out))

	result, err := uc.Fetch(context.Background(), "202501")
	gt.NoError(t, err)
	gt.Value(t, result).NotNil()

	expectedPath := filepath.Join(dirs.Raw, "202501-citibike-tripdata.csv.zip")
	gt.Value(t, result.Path).Equal(expectedPath)
	gt.Value(t, result.YearMonth).Equal(model.YearMonth("202501"))
	gt.Number(t, result.Size).Equal(int64(len(content)))
	gt.A(t, client.names).Length(1)
	gt.Value(t, client.names[0]).Equal("202501-citibike-tripdata.csv.zip")

	data, err := os.ReadFile(expectedPath)
	gt.NoError(t, err)
	gt.Value(t, data).Equal(content)

	_, err = os.Stat(expectedPath + ".part")
	gt.True(t, os.IsNotExist(err))

	gt.String(t, out.String()).Contains("Downloading 202501-citibike-tripdata.csv.zip...")
	gt.String(t, out.String()).Contains("Progress: 100.0%")
	gt.String(t, out.String()).Contains("✓ Downloaded 202501-citibike-tripdata.csv.zip (11 bytes)")
}

func TestFetch_NotFound(t *testing.T) {
	dirs := model.NewDirs(t.TempDir())

	client := &MockArchiveClient{
		downloadFunc: func(ctx context.Context, name string, dst io.Writer, progress types.ProgressFunc) (int64, error) {
			return 0, goerr.New("archive not found", goerr.T(types.ErrTagNotFound))
		},
	}

	var out bytes.Buffer
	uc := usecase.NewFetch(client, dirs, usecase.WithFetchOutput(&out))

	result, err := uc.Fetch(context.Background(), "209912")
	gt.Error(t, err)
	gt.Value(t, result).Nil()
	gt.True(t, goerr.HasTag(err, types.ErrTagNotFound))
	gt.String(t, out.String()).Contains("✗ File not found - 209912-citibike-tripdata.csv.zip may not exist for this month")

	entries, err := os.ReadDir(dirs.Raw)
	gt.NoError(t, err)
	gt.A(t, entries).Length(0)
}

func TestFetch_TransportErrorRemovesPartialFile(t *testing.T) {
	dirs := model.NewDirs(t.TempDir())

	client := &MockArchiveClient{
		downloadFunc: func(ctx context.Context, name string, dst io.Writer, progress types.ProgressFunc) (int64, error) {
			_, _ = dst.Write([]byte("half"))
			return 4, goerr.New("connection reset", goerr.T(types.ErrTagTransport))
		},
	}

	var out bytes.Buffer
	uc := usecase.NewFetch(client, dirs, usecase.WithFetchOutput(&out))

	result, err := uc.Fetch(context.Background(), "202406")
	gt.Error(t, err)
	gt.Value(t, result).Nil()
	gt.True(t, goerr.HasTag(err, types.ErrTagTransport))
	gt.False(t, goerr.HasTag(err, types.ErrTagNotFound))
	gt.String(t, out.String()).Contains("✗ Transfer error for 202406-citibike-tripdata.csv.zip")

	entries, err := os.ReadDir(dirs.Raw)
	gt.NoError(t, err)
	gt.A(t, entries).Length(0)
}

func TestFetch_ArchiveTemplate(t *testing.T) {
	dirs := model.NewDirs(t.TempDir())

	client := &MockArchiveClient{
		downloadFunc: func(ctx context.Context, name string, dst io.Writer, progress types.ProgressFunc) (int64, error) {
			n, err := dst.Write([]byte("z"))
			return int64(n), err
		},
	}

	uc := usecase.NewFetch(client, dirs, usecase.WithArchiveTemplate("JC-{YYYYMM}-citibike-tripdata.csv.zip"))

	result, err := uc.Fetch(context.Background(), "202402")
	gt.NoError(t, err)
	gt.Value(t, filepath.Base(result.Path)).Equal("JC-202402-citibike-tripdata.csv.zip")
}

func TestFetch_CannotCreatePartialFile(t *testing.T) {
	dirs := model.NewDirs(t.TempDir())
	name := "202501-citibike-tripdata.csv.zip"
	// a directory squatting on the partial file name makes creation fail
	gt.NoError(t, os.MkdirAll(filepath.Join(dirs.Raw, name+".part", "busy"), 0755))

	client := &MockArchiveClient{}

	var out bytes.Buffer
	uc := usecase.NewFetch(client, dirs, usecase.WithFetchOutput(&out))

	result, err := uc.Fetch(context.Background(), "202501")
	gt.Error(t, err)
	gt.Value(t, result).Nil()
	gt.A(t, client.names).Length(0)
	gt.String(t, out.String()).Contains("✗ Failed to download " + name)
}

func TestFetch_CannotMoveArchiveIntoPlace(t *testing.T) {
	dirs := model.NewDirs(t.TempDir())
	name := "202501-citibike-tripdata.csv.zip"
	// a non-empty directory at the final path makes the rename fail
	gt.NoError(t, os.MkdirAll(filepath.Join(dirs.Raw, name, "busy"), 0755))

	client := &MockArchiveClient{
		downloadFunc: func(ctx context.Context, name string, dst io.Writer, progress types.ProgressFunc) (int64, error) {
			n, err := dst.Write([]byte("zip"))
			return int64(n), err
		},
	}

	var out bytes.Buffer
	uc := usecase.NewFetch(client, dirs, usecase.WithFetchOutput(&out))

	result, err := uc.Fetch(context.Background(), "202501")
	gt.Error(t, err)
	gt.Value(t, result).Nil()
	gt.String(t, out.String()).Contains("✗ Failed to download " + name)
	gt.False(t, bytes.Contains(out.Bytes(), []byte("✓ Downloaded")))

	_, err = os.Stat(filepath.Join(dirs.Raw, name+".part"))
	gt.True(t, os.IsNotExist(err))
}
