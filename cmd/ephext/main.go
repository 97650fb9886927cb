// Command ephext extends a RINEX 2 GPS navigation file by re-emitting the
// ephemeris blocks of the last complete hour shifted forward in time.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/signalsfoundry/ephemeris-extender/internal/config"
	"github.com/signalsfoundry/ephemeris-extender/internal/logging"
	"github.com/signalsfoundry/ephemeris-extender/internal/observability"
	"github.com/signalsfoundry/ephemeris-extender/internal/rinex"
	"github.com/signalsfoundry/ephemeris-extender/internal/runner"
)

var errNoInput = errors.New("provide --rinex or use --prompt for interactive mode")

type options struct {
	rinex       string
	offsetHours float64
	workdir     string
	suffix      string
	output      string
	prompt      bool
	configPath  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ephext: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "ephext",
		Short: "Extend a GPS navigation file with time-shifted ephemeris blocks",
		Long: `ephext copies a RINEX 2 GPS navigation file and appends the ephemeris
blocks of the hour before its last record, with the epoch, time of ephemeris
and transmission time moved forward by --offset-hours.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.rinex, "rinex", "", "input RINEX navigation file")
	f.Float64Var(&opts.offsetHours, "offset-hours", config.DefaultOffsetHours, "hours to add to the time fields of each extended block")
	f.StringVar(&opts.workdir, "workdir", "", "directory for the output file (default: the input's directory)")
	f.StringVar(&opts.suffix, "suffix", config.DefaultSuffix, "suffix inserted before the output file extension")
	f.StringVar(&opts.output, "output", "", "explicit output path (excludes --workdir)")
	f.BoolVar(&opts.prompt, "prompt", false, "ask for day of year and year when --rinex is not given")
	f.StringVar(&opts.configPath, "config", "", "YAML config file")
	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd.Flags(), opts, cfg)

	if cfg.Input == "" {
		if !opts.prompt {
			return errNoInput
		}
		cfg.Input, err = promptForInput(cmd.InOrStdin(), out)
		if err != nil {
			return err
		}
	}
	cfg.Input, err = resolvePath(cfg.Input)
	if err != nil {
		return err
	}
	if info, err := os.Stat(cfg.Input); err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("file not found: %s", cfg.Input)
	}
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrOutputAndWorkdir) {
			return errors.New("use either --output or --workdir (not both)")
		}
		return err
	}
	if cfg.Workdir != "" {
		if cfg.Workdir, err = resolvePath(cfg.Workdir); err != nil {
			return err
		}
	}
	if cfg.Output != "" {
		if cfg.Output, err = resolvePath(cfg.Output); err != nil {
			return err
		}
	}

	log := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cmd.ErrOrStderr(),
	})

	tracing := observability.TracingConfigFromEnv()
	tracing.Writer = cmd.ErrOrStderr()
	shutdown, err := observability.InitTracing(ctx, tracing, log)
	if err != nil {
		return err
	}
	defer observability.ShutdownWithTimeout(ctx, shutdown, log)

	metrics, err := observability.NewRunCollector(prometheus.NewRegistry())
	if err != nil {
		return err
	}

	rep, err := runner.New(
		runner.WithLogger(log),
		runner.WithMetrics(metrics),
	).Run(ctx, cfg)
	if err != nil {
		return err
	}

	printReport(out, rep)
	return nil
}

func applyFlags(f *pflag.FlagSet, opts options, cfg *config.Config) {
	if f.Changed("rinex") {
		cfg.Input = opts.rinex
	}
	if f.Changed("offset-hours") {
		cfg.OffsetHours = opts.offsetHours
	}
	if f.Changed("workdir") {
		cfg.Workdir = opts.workdir
	}
	if f.Changed("suffix") {
		cfg.Suffix = opts.suffix
	}
	if f.Changed("output") {
		cfg.Output = opts.output
	}
}

func printReport(w io.Writer, rep runner.Report) {
	if rep.Modified() > 0 {
		fmt.Fprintf(w, "Found %d block(s) to extend by %+g hour(s)\n", rep.Modified(), rep.Offset.Hours())
		for _, b := range rep.Blocks {
			fmt.Fprintf(w, "Written: %s\n", strings.TrimSpace(b.Block[rinex.EpochLineIndex].Text))
		}
	} else {
		fmt.Fprintln(w, "No eligible blocks detected; output matches the original file.")
	}
	fmt.Fprintf(w, "Extension processing completed -> %s\n", rep.Output)
}

// promptForInput asks for a day of year and a two-digit year and returns the
// matching IGS broadcast file name, brdc<ddd>0.<yy>n.
func promptForInput(r io.Reader, w io.Writer) (string, error) {
	br := bufio.NewReader(r)
	doy, err := ask(br, w, "Enter the day of year (001-366): ")
	if err != nil {
		return "", err
	}
	year, err := ask(br, w, "Enter the two-digit year (e.g. 24): ")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("brdc%s0.%sn", zfill(doy, 3), zfill(year, 2)), nil
}

func ask(br *bufio.Reader, w io.Writer, question string) (string, error) {
	fmt.Fprint(w, question)
	line, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func zfill(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

func resolvePath(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand %s: %w", p, err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	return abs, nil
}
