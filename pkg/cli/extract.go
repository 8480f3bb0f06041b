package cli

import (
	"context"
	"io"
	"path/filepath"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/tripdata/pkg/cli/config"
	"github.com/m-mizutani/tripdata/pkg/domain/model"
	"github.com/m-mizutani/tripdata/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdExtract(stdout io.Writer, pathsCfg *config.Paths, datasetCfg *config.Dataset) *cli.Command {
	var (
		file string
		all  bool
	)

	return &cli.Command{
		Name:    "extract",
		Aliases: []string{"x"},
		Usage:   "Extract CSV files from downloaded zip archives",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Usage:       "Specific zip file in data/raw to extract completely",
				Destination: &file,
			},
			&cli.BoolFlag{
				Name:        "all",
				Usage:       "Extract CSV members of all zip files in data/raw (default)",
				Destination: &all,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			dirs, err := pathsCfg.Dirs()
			if err != nil {
				return err
			}
			if err := datasetCfg.Resolve(); err != nil {
				return err
			}

			uc := usecase.NewExtract(
				usecase.WithTabularSuffixes(datasetCfg.TabularSuffixes...),
				usecase.WithExtractOutput(stdout),
			)

			// --file wins over --all; no flag behaves as --all
			if file != "" {
				archive := filepath.Join(dirs.Raw, filepath.Base(file))
				paths, err := uc.ExtractAll(ctx, archive, dirs.Raw)
				if err != nil {
					logger.Warn("Extraction failed", "archive", archive, "error", err)
				} else {
					logger.Debug("Extracted archive", "archive", archive, "files", len(paths))
				}
				return nil
			}

			paths, err := uc.ExtractDir(ctx, dirs.Raw, model.PolicyTabularOnly)
			if err != nil {
				logger.Warn("Extraction stopped", "dir", dirs.Raw, "error", err)
				return nil
			}
			logger.Debug("Extracted archives", "dir", dirs.Raw, "files", len(paths))

			return nil
		},
	}
}
