package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tripdata/pkg/cli/config"
	"github.com/m-mizutani/tripdata/pkg/domain/model"
	"github.com/m-mizutani/tripdata/pkg/infra/tripdata"
	"github.com/m-mizutani/tripdata/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdFetch(stdout io.Writer, pathsCfg *config.Paths, datasetCfg *config.Dataset) *cli.Command {
	var (
		month     string
		recent    int
		noExtract bool
		summary   bool
	)

	return &cli.Command{
		Name:    "fetch",
		Aliases: []string{"f"},
		Usage:   "Download monthly trip-data archives",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "month",
				Usage:       "Specific month (YYYYMM format)",
				Destination: &month,
			},
			&cli.IntFlag{
				Name:        "recent",
				Usage:       "Number of recent months",
				Value:       3,
				Destination: &recent,
			},
			&cli.BoolFlag{
				Name:        "no-extract",
				Usage:       "Keep zip files only",
				Destination: &noExtract,
			},
			&cli.BoolFlag{
				Name:        "summary",
				Usage:       "Create data summary",
				Destination: &summary,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			input := usecase.PipelineInput{
				Recent:  recent,
				Extract: !noExtract,
				Summary: summary,
			}
			if month != "" {
				ym, err := model.ParseYearMonth(month)
				if err != nil {
					return err
				}
				input.Month = ym
			}

			dirs, err := pathsCfg.Dirs()
			if err != nil {
				return err
			}
			if err := datasetCfg.Resolve(); err != nil {
				return err
			}

			client, err := tripdata.NewClient(tripdata.WithBaseURL(datasetCfg.BaseURL))
			if err != nil {
				return goerr.Wrap(err, "failed to create archive client")
			}

			pipeline := usecase.NewPipeline(
				usecase.NewFetch(client, dirs,
					usecase.WithArchiveTemplate(datasetCfg.NameTemplate),
					usecase.WithFetchOutput(stdout),
				),
				usecase.NewExtract(
					usecase.WithTabularSuffixes(datasetCfg.TabularSuffixes...),
					usecase.WithExtractOutput(stdout),
				),
				usecase.NewSummary(dirs,
					usecase.WithSummaryTabularSuffixes(datasetCfg.TabularSuffixes...),
					usecase.WithSummaryOutput(stdout),
				),
				dirs,
				usecase.WithPipelineOutput(stdout),
			)

			logger.Debug("Running fetch",
				slog.String("raw_dir", dirs.Raw),
				slog.String("base_url", datasetCfg.BaseURL),
			)

			result, err := pipeline.Run(ctx, input)
			if err != nil {
				return err
			}

			logger.Debug("Fetch result",
				slog.Int("archives", len(result.Archives)),
				slog.Int("extracted", len(result.Extracted)),
				slog.Any("failed", result.Failed),
			)

			printClosing(stdout, "Download complete!", dirs)
			return nil
		},
	}
}

func printClosing(w io.Writer, headline string, dirs model.Dirs) {
	_, _ = io.WriteString(w, "\n🎉 "+headline+"\n")
	_, _ = io.WriteString(w, "📁 Data location: "+dirs.Raw+"\n")
	_, _ = io.WriteString(w, "💡 Next: Start analyzing the trip data in "+dirs.Raw+"\n")
}
