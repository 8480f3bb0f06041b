package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/tripdata/pkg/cli/config"
	"github.com/m-mizutani/tripdata/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

// run executes the command tree. Interactive output goes to stdout, logs to logW.
func run(ctx context.Context, args []string, stdout, logW io.Writer) error {
	var (
		loggerCfg  config.Logger
		pathsCfg   config.Paths
		datasetCfg config.Dataset
		logger     *slog.Logger
	)

	flags := append(loggerCfg.Flags(), pathsCfg.Flags()...)
	flags = append(flags, datasetCfg.Flags()...)

	app := &cli.Command{
		Name:      "tripdata",
		Usage:     "Download and extract Citi Bike trip-data archives",
		Version:   types.Version,
		Flags:     flags,
		Writer:    stdout,
		ErrWriter: logW,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure(logW)
			if err != nil {
				return nil, err
			}

			logger = logger.With("run_id", uuid.NewString())
			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdFetch(stdout, &pathsCfg, &datasetCfg),
			cmdExtract(stdout, &pathsCfg, &datasetCfg),
			cmdList(stdout, &datasetCfg),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		return err
	}

	return nil
}
