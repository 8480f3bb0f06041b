package usecase

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tripdata/pkg/domain/interfaces"
	"github.com/m-mizutani/tripdata/pkg/domain/model"
)

// Catalog reports which monthly archives the remote bucket publishes
type Catalog struct {
	catalog interfaces.ArchiveCatalog
	console *console
}

// NewCatalog creates a new Catalog writing its listing to w
func NewCatalog(catalog interfaces.ArchiveCatalog, w io.Writer) *Catalog {
	return &Catalog{
		catalog: catalog,
		console: newConsole(w),
	}
}

// List prints archives published for since or later and returns them.
// An empty since lists everything.
func (c *Catalog) List(ctx context.Context, since model.YearMonth) ([]*model.RemoteArchive, error) {
	archives, err := c.catalog.ListArchives(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list remote archives")
	}

	var selected []*model.RemoteArchive
	for _, archive := range archives {
		if since != "" && archive.YearMonth < since {
			continue
		}
		selected = append(selected, archive)
	}

	if len(selected) == 0 {
		c.console.printf("No archives published")
		if since != "" {
			c.console.printf(" since %s", since)
		}
		c.console.printf("\n")
		return selected, nil
	}

	for _, archive := range selected {
		c.console.printf("%s  %-40s %12s bytes  %s\n",
			archive.YearMonth,
			archive.Key,
			formatBytes(archive.Size),
			archive.LastModified.Format("2006-01-02"),
		)
	}
	c.console.printf("%d archive(s), latest %s\n", len(selected), selected[len(selected)-1].YearMonth)

	return selected, nil
}
