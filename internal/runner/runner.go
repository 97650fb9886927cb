// Package runner executes one extension run end to end: it reads the input
// navigation file, extends it, writes the result and records logs, metrics
// and trace spans along the way.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/signalsfoundry/ephemeris-extender/internal/config"
	"github.com/signalsfoundry/ephemeris-extender/internal/extend"
	"github.com/signalsfoundry/ephemeris-extender/internal/logging"
	"github.com/signalsfoundry/ephemeris-extender/internal/observability"
	"github.com/signalsfoundry/ephemeris-extender/internal/rinex"
	"github.com/signalsfoundry/ephemeris-extender/timectrl"
)

// ErrNotRegularFile is returned when the input path names a directory or
// other non-regular file.
var ErrNotRegularFile = errors.New("not a regular file")

// IOError reports a filesystem failure on the input or output file.
type IOError struct {
	Op   string // stat, read, mkdir, create, write
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Report summarises a completed run.
type Report struct {
	RunID      string
	Input      string
	Output     string
	Offset     rinex.Offset
	InputLines int
	Blocks     []extend.Extended
	Duration   time.Duration
}

// Modified is the number of appended blocks.
func (r Report) Modified() int { return len(r.Blocks) }

// Runner carries the collaborators shared by runs.
type Runner struct {
	log     logging.Logger
	metrics *observability.RunCollector
	clock   timectrl.Clock
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the base logger; each run derives a run-scoped child.
func WithLogger(log logging.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// WithMetrics sets the collector that records run metrics.
func WithMetrics(c *observability.RunCollector) Option {
	return func(r *Runner) { r.metrics = c }
}

// WithClock overrides the clock used to time runs.
func WithClock(c timectrl.Clock) Option {
	return func(r *Runner) {
		if c != nil {
			r.clock = c
		}
	}
}

// New constructs a Runner. Without options it logs nothing, records no
// metrics and reads the system clock.
func New(opts ...Option) *Runner {
	r := &Runner{
		log:   logging.Noop(),
		clock: timectrl.SystemClock{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run extends the file named by cfg.Input and writes the result to
// cfg.OutputPath(). The output is written even when no block qualifies.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) (rep Report, err error) {
	start := r.clock.Now()
	ctx, log := logging.WithRunLogger(ctx, r.log)

	rep = Report{
		RunID:  logging.RunIDFromContext(ctx),
		Input:  cfg.Input,
		Offset: cfg.Offset(),
	}

	ctx, span := observability.StartSpan(ctx, "ephext.run",
		attribute.String("run_id", rep.RunID),
		attribute.String("input", cfg.Input),
		attribute.Float64("offset_hours", cfg.OffsetHours),
	)
	defer func() {
		rep.Duration = timectrl.Since(r.clock, start)
		r.finish(ctx, log, cfg, rep, err)
		observability.EndSpan(span, err)
	}()

	if err := cfg.Validate(); err != nil {
		return rep, err
	}
	rep.Output = cfg.OutputPath()

	log.Info(ctx, "extension run started",
		logging.String("input", rep.Input),
		logging.String("output", rep.Output),
		logging.Float64("offset_hours", rep.Offset.Hours()),
	)

	lines, err := readLines(cfg.Input)
	if err != nil {
		return rep, err
	}
	rep.InputLines = len(lines)
	r.metrics.SetInputLines(len(lines))

	out, err := r.process(ctx, log, lines, rep.Offset)
	if err != nil {
		return rep, err
	}
	rep.Blocks = out.Blocks
	if err := ctx.Err(); err != nil {
		return rep, err
	}

	if err := r.write(ctx, cfg, out); err != nil {
		return rep, err
	}
	return rep, nil
}

func (r *Runner) process(ctx context.Context, log logging.Logger, lines []rinex.Line, off rinex.Offset) (extend.Output, error) {
	_, span := observability.StartSpan(ctx, "ephext.process", attribute.Int("lines", len(lines)))
	out, err := extend.Process(lines, off)
	span.SetAttributes(attribute.Int("blocks", out.Modified))
	observability.EndSpan(span, err)
	if err != nil {
		return extend.Output{}, err
	}

	for _, b := range out.Blocks {
		for _, o := range b.Skipped() {
			r.metrics.RecordSkipped(string(o.Field))
			log.Warn(ctx, "field left unchanged",
				logging.String("field", string(o.Field)),
				logging.Int("line", b.SourceStart+1),
				logging.Err(o.Reason),
			)
		}
		log.Debug(ctx, "block extended",
			logging.Int("line", b.SourceStart+1),
			logging.String("epoch", strings.TrimSpace(b.Block[rinex.EpochLineIndex].Text)),
		)
	}
	return out, nil
}

func (r *Runner) write(ctx context.Context, cfg *config.Config, out extend.Output) (err error) {
	path := cfg.OutputPath()
	_, span := observability.StartSpan(ctx, "ephext.write",
		attribute.String("output", path),
		attribute.Int("lines", len(out.Lines)),
	)
	defer func() { observability.EndSpan(span, err) }()

	if err := cfg.EnsureOutputDir(); err != nil {
		return &IOError{Op: "mkdir", Path: cfg.Workdir, Err: err}
	}

	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "create", Path: path, Err: err}
	}
	if err := extend.WriteLines(f, out.Lines); err != nil {
		f.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}

	for range out.Blocks {
		r.metrics.RecordBlock()
	}
	return nil
}

// finish logs the run outcome, records run metrics and flushes the metrics
// textfile when one is configured.
func (r *Runner) finish(ctx context.Context, log logging.Logger, cfg *config.Config, rep Report, err error) {
	result := observability.ResultSuccess
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		result = observability.ResultCancelled
	case err != nil:
		result = observability.ResultFailure
	case rep.Modified() == 0:
		result = observability.ResultNoBlocks
	}
	r.metrics.ObserveRun(result, rep.Duration)

	if err != nil {
		log.Error(ctx, "extension run failed", logging.Err(err), logging.String("result", result))
	} else {
		log.Info(ctx, "extension run completed",
			logging.String("output", rep.Output),
			logging.Int("blocks", rep.Modified()),
			logging.Any("duration", rep.Duration),
		)
	}

	if err := r.metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		log.Warn(ctx, "metrics textfile not written", logging.Err(err))
	}
}

func readLines(path string) ([]rinex.Line, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &IOError{Op: "stat", Path: path, Err: ErrNotRegularFile}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}
	return rinex.SplitLines(string(data)), nil
}
