package interfaces

import (
	"context"
	"io"

	"github.com/m-mizutani/tripdata/pkg/domain/model"
	"github.com/m-mizutani/tripdata/pkg/domain/types"
)

// ArchiveClient retrieves archives from the remote trip-data host
type ArchiveClient interface {
	// Download streams the named remote object into dst and returns the number of bytes written
	Download(ctx context.Context, name string, dst io.Writer, progress types.ProgressFunc) (int64, error)
}

// ArchiveCatalog lists archives published in the remote bucket
type ArchiveCatalog interface {
	// ListArchives returns monthly archives in ascending month order
	ListArchives(ctx context.Context) ([]*model.RemoteArchive, error)
}
