package cli

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tripdata/pkg/cli/config"
	"github.com/m-mizutani/tripdata/pkg/domain/model"
	"github.com/m-mizutani/tripdata/pkg/infra/catalog"
	"github.com/m-mizutani/tripdata/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdList(stdout io.Writer, datasetCfg *config.Dataset) *cli.Command {
	var (
		catalogCfg config.Catalog
		since      string
	)

	flags := append(catalogCfg.Flags(), &cli.StringFlag{
		Name:        "since",
		Usage:       "Only list months at or after this month (YYYYMM format)",
		Destination: &since,
	})

	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List monthly archives published in the remote bucket",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			var sinceYM model.YearMonth
			if since != "" {
				ym, err := model.ParseYearMonth(since)
				if err != nil {
					return err
				}
				sinceYM = ym
			}

			if err := datasetCfg.Resolve(); err != nil {
				return err
			}

			client, err := catalog.NewClient(ctx, catalogCfg.Options(datasetCfg.Bucket)...)
			if err != nil {
				return goerr.Wrap(err, "failed to create catalog client")
			}

			if _, err := usecase.NewCatalog(client, stdout).List(ctx, sinceYM); err != nil {
				return err
			}
			return nil
		},
	}
}
