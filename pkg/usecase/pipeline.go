package usecase

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tripdata/pkg/domain/interfaces"
	"github.com/m-mizutani/tripdata/pkg/domain/model"
	"github.com/m-mizutani/tripdata/pkg/domain/types"
)

// PipelineInput selects what a pipeline run does
type PipelineInput struct {
	Month   model.YearMonth // Specific month; when empty the Recent most recent months are fetched
	Recent  int             // Number of recent months
	Extract bool            // Extract the tabular member of each archive
	Summary bool            // Write download_summary.json
}

// PipelineOutput records what a pipeline run produced
type PipelineOutput struct {
	Months      []model.YearMonth // Months attempted, in order
	Archives    []string          // Downloaded archive paths
	Extracted   []string          // Extracted tabular file paths
	Failed      []model.YearMonth // Months whose archive could not be fetched
	SummaryPath string            // Empty unless a summary was written
}

// Files returns archive paths followed by extracted file paths
func (o *PipelineOutput) Files() []string {
	files := make([]string, 0, len(o.Archives)+len(o.Extracted))
	files = append(files, o.Archives...)
	return append(files, o.Extracted...)
}

// Pipeline sequences fetch, extract and summary for one invocation
type Pipeline struct {
	fetch   interfaces.FetchUseCase
	extract interfaces.ExtractUseCase
	summary interfaces.SummaryUseCase
	dirs    model.Dirs
	now     func() time.Time
	console *console
}

// PipelineOption is a functional option for Pipeline
type PipelineOption func(*Pipeline)

// WithPipelineClock replaces the time source used to compute recent months
func WithPipelineClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		p.now = now
	}
}

// WithPipelineOutput sets the writer for interactive status lines
func WithPipelineOutput(w io.Writer) PipelineOption {
	return func(p *Pipeline) {
		p.console = newConsole(w)
	}
}

// NewPipeline creates a new Pipeline
func NewPipeline(
	fetch interfaces.FetchUseCase,
	extract interfaces.ExtractUseCase,
	summary interfaces.SummaryUseCase,
	dirs model.Dirs,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		fetch:   fetch,
		extract: extract,
		summary: summary,
		dirs:    dirs,
		now:     time.Now,
		console: newConsole(nil),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run fetches the selected months one by one. A month that cannot be fetched or
// extracted is recorded and skipped; only context cancellation stops the run early.
func (p *Pipeline) Run(ctx context.Context, input PipelineInput) (*PipelineOutput, error) {
	logger := ctxlog.From(ctx)
	out := &PipelineOutput{}

	recentMode := input.Month == ""
	if recentMode {
		out.Months = model.RecentMonths(p.now(), input.Recent)
		names := make([]string, len(out.Months))
		for i, ym := range out.Months {
			names[i] = ym.String()
		}
		p.console.printf("📅 Downloading %d months: %s\n", input.Recent, strings.Join(names, ", "))
	} else {
		out.Months = []model.YearMonth{input.Month}
		p.console.printf("📥 Downloading data for %s\n", input.Month)
	}

	logger.Info("Starting download",
		"months", out.Months,
		"extract", input.Extract,
		"summary", input.Summary,
	)

	for _, ym := range out.Months {
		if err := ctx.Err(); err != nil {
			return out, goerr.Wrap(err, "download interrupted", goerr.V("year_month", ym))
		}

		if recentMode {
			p.console.printf("\n--- Processing %s ---\n", ym)
		}

		result, err := p.fetch.Fetch(ctx, ym)
		if err != nil {
			out.Failed = append(out.Failed, ym)
			logFailure(ctx, "Skipping month", err, "year_month", ym)
			continue
		}
		out.Archives = append(out.Archives, result.Path)

		if !input.Extract {
			continue
		}

		csvPath, err := p.extract.ExtractTabular(ctx, result.Path, p.dirs.Raw)
		if err != nil {
			logFailure(ctx, "Extraction skipped", err, "year_month", ym, "archive", result.Path)
			continue
		}
		out.Extracted = append(out.Extracted, csvPath)
	}

	files := out.Files()
	if input.Summary && len(files) > 0 {
		summary, err := p.summary.Build(ctx, files)
		if err == nil {
			out.SummaryPath, err = p.summary.Write(ctx, summary)
		}
		if err != nil {
			logFailure(ctx, "Summary not written", err)
		}
	}

	logger.Info("Download finished",
		"archives", len(out.Archives),
		"extracted", len(out.Extracted),
		"failed", len(out.Failed),
	)

	return out, nil
}

// logFailure logs err at a level matching its kind. A missing remote archive is expected
// for the newest months, so it is not reported as a warning.
func logFailure(ctx context.Context, msg string, err error, args ...any) {
	logger := ctxlog.From(ctx)
	args = append(args, "error", err)

	switch {
	case goerr.HasTag(err, types.ErrTagNotFound):
		logger.Info(msg, append(args, "reason", "remote_not_found")...)
	case goerr.HasTag(err, types.ErrTagTransport):
		logger.Warn(msg, append(args, "reason", "transport")...)
	case goerr.HasTag(err, types.ErrTagNoTabularMember):
		logger.Warn(msg, append(args, "reason", "no_tabular_member")...)
	case goerr.HasTag(err, types.ErrTagArchiveOpen):
		logger.Warn(msg, append(args, "reason", "archive_open")...)
	default:
		logger.Error(msg, args...)
	}
}
