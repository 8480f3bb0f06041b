package usecase_test

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/m-mizutani/gt"
)

func init() {
	color.NoColor = true
}

type zipMember struct {
	name    string
	content string
}

// buildZip returns an in-memory ZIP holding members in order
func buildZip(t *testing.T, members ...zipMember) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, m := range members {
		f, err := w.Create(m.name)
		gt.NoError(t, err)
		_, err = f.Write([]byte(m.content))
		gt.NoError(t, err)
	}
	gt.NoError(t, w.Close())

	return buf.Bytes()
}

// writeZip writes a ZIP holding members to dir/name and returns its path
func writeZip(t *testing.T, dir, name string, members ...zipMember) string {
	t.Helper()

	path := filepath.Join(dir, name)
	gt.NoError(t, os.WriteFile(path, buildZip(t, members...), 0644))
	return path
}

const tripCSV = "ride_id,rideable_type,started_at,ended_at,start_station_name,start_station_id\n" +
	"A1,classic_bike,2025-01-01 00:00:01,2025-01-01 00:10:00,W 21 St,6140.05\n" +
	"B2,electric_bike,2025-01-01 00:01:00,2025-01-01 00:20:00,E 17 St,5980.07\n"
