package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/signalsfoundry/ephemeris-extender/internal/config"
	"github.com/signalsfoundry/ephemeris-extender/internal/extend"
	"github.com/signalsfoundry/ephemeris-extender/internal/logging"
	"github.com/signalsfoundry/ephemeris-extender/internal/observability"
	"github.com/signalsfoundry/ephemeris-extender/timectrl"
)

const header = "     2.10           N: GPS NAV DATA                         RINEX VERSION / TYPE\n" +
	"                                                            END OF HEADER\n"

// record renders an 8-line navigation record for PRN prn at hour:00 on
// 2024-06-24 with the given TOE field.
func record(prn, hour int, toe string) string {
	zero := " 0.000000000000D+00"
	orbit := "   " + strings.Repeat(zero, 4)
	return fmt.Sprintf("%2d 24  6 24%3d  0  0.0", prn, hour) + " 1.234567890123D-04-1.136868377216D-12" + zero + "\n" +
		orbit + "\n" +
		orbit + "\n" +
		"    " + toe + zero + zero + zero + "\n" +
		orbit + "\n" +
		orbit + "\n" +
		"    1.000000000000D+05\n" +
		orbit + "\n"
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "brdc1760.24n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func newTestRunner(t *testing.T, buf *bytes.Buffer) (*Runner, *observability.RunCollector) {
	t.Helper()
	metrics, err := observability.NewRunCollector(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("NewRunCollector: %v", err)
	}
	clock := timectrl.NewManualClock(time.Date(2024, 6, 24, 6, 0, 0, 0, time.UTC))
	clock.Step = 10 * time.Millisecond
	r := New(
		WithLogger(logging.New(logging.Config{Level: "debug", Format: "json", Output: buf})),
		WithMetrics(metrics),
		WithClock(clock),
	)
	return r, metrics
}

func TestRunWritesExtendedFile(t *testing.T) {
	input := header + record(10, 4, "0.144000000000D+05") + record(12, 4, "XXXXXXXXXXXXXXXXXX") + record(10, 5, "0.180000000000D+05")
	in := writeInput(t, input)
	textfile := filepath.Join(t.TempDir(), "ephext.prom")

	var logs bytes.Buffer
	r, metrics := newTestRunner(t, &logs)
	cfg, err := config.NewBuilder().Input(in).OffsetHours(2).MetricsTextfile(textfile).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	rep, err := r.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Modified() != 2 {
		t.Fatalf("Modified() = %d, want 2", rep.Modified())
	}
	if want := strings.TrimSuffix(in, ".24n") + "_eem.24n"; rep.Output != want {
		t.Fatalf("Output = %s, want %s", rep.Output, want)
	}
	if rep.Duration != 10*time.Millisecond {
		t.Fatalf("Duration = %v, want 10ms", rep.Duration)
	}
	if rep.RunID == "" {
		t.Fatal("report has no run id")
	}

	data, err := os.ReadFile(rep.Output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	got := string(data)
	if !strings.HasPrefix(got, input) {
		t.Fatal("output does not start with the original content")
	}
	appended := strings.TrimPrefix(got, input)
	if n := strings.Count(appended, "\n"); n != 16 {
		t.Fatalf("appended %d lines, want 16", n)
	}
	if !strings.HasPrefix(appended, "10 24  6 24  6  0  0.0") {
		t.Fatalf("first appended line = %q", strings.SplitN(appended, "\n", 2)[0])
	}
	if !strings.Contains(appended, "    0.216000000000D+05 ") {
		t.Fatal("shifted TOE missing from appended block")
	}
	if !strings.Contains(appended, "    XXXXXXXXXXXXXXXXXX") {
		t.Fatal("malformed TOE should be copied unchanged")
	}

	if got := testutil.ToFloat64(metrics.BlocksExtended); got != 2 {
		t.Fatalf("ephext_blocks_extended_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(metrics.FieldsSkipped.WithLabelValues("toe")); got != 1 {
		t.Fatalf("ephext_fields_skipped_total{field=toe} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(metrics.Runs.WithLabelValues(observability.ResultSuccess)); got != 1 {
		t.Fatalf("ephext_runs_total{result=success} = %v, want 1", got)
	}
	if _, err := os.Stat(textfile); err != nil {
		t.Fatalf("metrics textfile not written: %v", err)
	}

	if !strings.Contains(logs.String(), `"msg":"field left unchanged"`) {
		t.Fatalf("skipped field not logged:\n%s", logs.String())
	}
	if !strings.Contains(logs.String(), `"run_id":"`+rep.RunID+`"`) {
		t.Fatal("log lines missing run_id")
	}
}

func TestRunNoEligibleBlocksCopiesInput(t *testing.T) {
	input := header + record(10, 2, "0.144000000000D+05") + record(10, 5, "0.180000000000D+05")
	in := writeInput(t, input)
	workdir := filepath.Join(t.TempDir(), "out")

	var logs bytes.Buffer
	r, metrics := newTestRunner(t, &logs)
	cfg, err := config.NewBuilder().Input(in).Workdir(workdir).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	rep, err := r.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Modified() != 0 {
		t.Fatalf("Modified() = %d, want 0", rep.Modified())
	}
	if filepath.Dir(rep.Output) != workdir {
		t.Fatalf("Output = %s, want it under %s", rep.Output, workdir)
	}
	data, err := os.ReadFile(rep.Output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != input {
		t.Fatal("output differs from input")
	}
	if got := testutil.ToFloat64(metrics.Runs.WithLabelValues(observability.ResultNoBlocks)); got != 1 {
		t.Fatalf("ephext_runs_total{result=no_blocks} = %v, want 1", got)
	}
}

func TestRunMissingInput(t *testing.T) {
	var logs bytes.Buffer
	r, metrics := newTestRunner(t, &logs)
	cfg, err := config.NewBuilder().Input(filepath.Join(t.TempDir(), "missing.24n")).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	_, err = r.Run(context.Background(), cfg)
	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "stat" {
		t.Fatalf("Run error = %v, want stat IOError", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Run error = %v, want os.ErrNotExist", err)
	}
	if got := testutil.ToFloat64(metrics.Runs.WithLabelValues(observability.ResultFailure)); got != 1 {
		t.Fatalf("ephext_runs_total{result=failure} = %v, want 1", got)
	}
}

func TestRunRejectsDirectory(t *testing.T) {
	r := New()
	cfg, err := config.NewBuilder().Input(t.TempDir()).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if _, err := r.Run(context.Background(), cfg); !errors.Is(err, ErrNotRegularFile) {
		t.Fatalf("Run error = %v, want ErrNotRegularFile", err)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	r := New()
	cfg := config.Default()
	if _, err := r.Run(context.Background(), cfg); !errors.Is(err, config.ErrNoInput) {
		t.Fatalf("Run error = %v, want ErrNoInput", err)
	}
}

func TestRunMalformedEpochLeavesNoOutput(t *testing.T) {
	bad := strings.Replace(record(10, 5, "0.180000000000D+05"), "24  6 24", "24 13 24", 1)
	in := writeInput(t, header+record(10, 4, "0.144000000000D+05")+bad)

	cfg, err := config.NewBuilder().Input(in).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	_, err = New().Run(context.Background(), cfg)
	if !errors.Is(err, extend.ErrRequiredField) {
		t.Fatalf("Run error = %v, want ErrRequiredField", err)
	}
	if _, statErr := os.Stat(cfg.OutputPath()); !os.IsNotExist(statErr) {
		t.Fatalf("output file exists after failed run: %v", statErr)
	}
}

func TestRunCancelledContext(t *testing.T) {
	in := writeInput(t, header+record(10, 4, "0.144000000000D+05")+record(10, 5, "0.180000000000D+05"))
	cfg, err := config.NewBuilder().Input(in).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	var logs bytes.Buffer
	r, metrics := newTestRunner(t, &logs)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Run(ctx, cfg); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
	if got := testutil.ToFloat64(metrics.Runs.WithLabelValues(observability.ResultCancelled)); got != 1 {
		t.Fatalf("ephext_runs_total{result=cancelled} = %v, want 1", got)
	}
}

func TestRunUnwritableOutput(t *testing.T) {
	in := writeInput(t, header+record(10, 4, "0.144000000000D+05")+record(10, 5, "0.180000000000D+05"))
	cfg, err := config.NewBuilder().
		Input(in).
		Output(filepath.Join(t.TempDir(), "missing", "out.24n")).
		Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	_, err = New().Run(context.Background(), cfg)
	var ioErr *IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "create" {
		t.Fatalf("Run error = %v, want create IOError", err)
	}
}
