package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/briandowns/spinner"
	"github.com/devA2C3/cloudvisor-test/internal/config"
	"github.com/devA2C3/cloudvisor-test/internal/logging"
	"github.com/devA2C3/cloudvisor-test/internal/version"
	"github.com/devA2C3/cloudvisor-test/pkg/aws"
	"github.com/devA2C3/cloudvisor-test/pkg/etl"
	"github.com/devA2C3/cloudvisor-test/pkg/etlerr"
	"github.com/devA2C3/cloudvisor-test/pkg/formatter"
	"github.com/devA2C3/cloudvisor-test/pkg/regions"
	"github.com/devA2C3/cloudvisor-test/pkg/snapshot"
	"github.com/devA2C3/cloudvisor-test/pkg/transform"
	"github.com/devA2C3/cloudvisor-test/pkg/utils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// Process exit codes
const (
	exitOK            = 0
	exitSetupFailed   = 1 // bad configuration or unreadable region list
	exitRegionsFailed = 3 // --strict and at least one region failed
)

// exitError carries a process exit code through cobra
type exitError struct {
	code   int
	err    error
	logged bool // already reported through the logger
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// options holds the raw flag values
type options struct {
	configFile    string
	regionsFile   string
	output        string
	regionTimeout time.Duration
	logLevel      string
	logFormat     string
	s3PathStyle   bool
	metricsFile   string
	strict        bool
	showVersion   bool
	showJSON      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// execute runs the command line and maps the outcome to an exit code
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stdout, stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if !exitErr.logged {
			fmt.Fprintln(stderr, "Error:", exitErr.err)
		}
		return exitErr.code
	}

	fmt.Fprintln(stderr, "Error:", err)
	return exitSetupFailed
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	defaults := config.Default()

	rootCmd := &cobra.Command{
		Use:   "ec2etl",
		Short: "Extract, transform and store EC2 instance inventories per region",
		Long: `ec2etl reads a list of AWS regions, fetches the EC2 instance inventory of
each region, normalizes timestamps, sorts instances by launch time and writes
one JSON snapshot per region.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintln(stdout, version.Get().String())
				return nil
			}
			return runETL(cmd, opts, stdout, stderr)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	// Settings shared with subcommands
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", defaults.Output,
		"Snapshot location: a directory or s3://bucket/prefix")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", defaults.LogFormat, "Log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&opts.s3PathStyle, "s3-path-style", defaults.S3PathStyle,
		"Use path-style S3 addressing (for S3-compatible endpoints)")

	rootCmd.Flags().BoolVarP(&opts.showVersion, "version", "v", false, "Show version information")
	rootCmd.Flags().StringVarP(&opts.regionsFile, "regions-file", "f", defaults.RegionsFile, "File listing one region per line")
	rootCmd.Flags().DurationVar(&opts.regionTimeout, "region-timeout", defaults.RegionTimeout,
		"Deadline for each region's ETL cycle (0 disables it)")
	rootCmd.Flags().StringVar(&opts.metricsFile, "metrics-file", defaults.MetricsFile,
		"Write Prometheus metrics in text format to this file after the run")
	rootCmd.Flags().BoolVar(&opts.strict, "strict", defaults.Strict, "Exit with code 3 when any region fails")

	rootCmd.AddCommand(newShowCmd(opts, stdout))

	return rootCmd
}

func newShowCmd(opts *options, stdout io.Writer) *cobra.Command {
	showCmd := &cobra.Command{
		Use:   "show <region>",
		Short: "Print the stored snapshot of a region",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, opts)
			if err != nil {
				return &exitError{code: exitSetupFailed, err: err}
			}

			region := args[0]
			store, err := snapshot.New(cmd.Context(), cfg.Output, snapshot.Options{S3PathStyle: cfg.S3PathStyle})
			if err != nil {
				return &exitError{code: exitSetupFailed, err: fmt.Errorf("error opening snapshot store: %w", err)}
			}

			snap, err := store.Read(cmd.Context(), region)
			if err != nil {
				if errors.Is(err, snapshot.ErrNotFound) {
					return &exitError{code: exitSetupFailed, err: fmt.Errorf("no snapshot for region %s in %s", region, cfg.Output)}
				}
				return &exitError{code: exitSetupFailed, err: err}
			}

			if opts.showJSON {
				out, err := utils.FormatJSON(snap)
				if err != nil {
					return err
				}
				fmt.Fprintln(stdout, out)
				return nil
			}

			formatter.PrintSnapshotTable(stdout, region, snap)
			return nil
		},
	}

	showCmd.Flags().BoolVar(&opts.showJSON, "json", false, "Print the snapshot as JSON")

	return showCmd
}

// resolveConfig layers defaults, the config file, EC2ETL_* variables and explicitly set flags
func resolveConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("regions-file") {
		cfg.RegionsFile = opts.regionsFile
	}
	if flags.Changed("output") {
		cfg.Output = opts.output
	}
	if flags.Changed("region-timeout") {
		cfg.RegionTimeout = opts.regionTimeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = opts.logFormat
	}
	if flags.Changed("s3-path-style") {
		cfg.S3PathStyle = opts.s3PathStyle
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = opts.metricsFile
	}
	if flags.Changed("strict") {
		cfg.Strict = opts.strict
	}

	return cfg, cfg.Validate()
}

// runETL processes every listed region and prints the run summary
func runETL(cmd *cobra.Command, opts *options, stdout, stderr io.Writer) error {
	ctx := cmd.Context()

	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return &exitError{code: exitSetupFailed, err: err}
	}

	buildInfo := version.Get()
	logger := logging.WithRun(
		logging.New(stderr, logging.ParseLevel(cfg.LogLevel), cfg.LogFormat),
		uuid.NewString(),
		buildInfo.Version,
	)

	regionList, err := regions.NewFileSource(cfg.RegionsFile, logger).Regions(ctx)
	if err != nil {
		logger.Error("Failed to read region list, aborting run",
			"path", cfg.RegionsFile,
			"kind", etlerr.KindOf(err),
			"error", err,
		)
		return &exitError{code: exitSetupFailed, err: err, logged: true}
	}

	store, err := snapshot.New(ctx, cfg.Output, snapshot.Options{S3PathStyle: cfg.S3PathStyle})
	if err != nil {
		logger.Error("Failed to open snapshot store", "output", cfg.Output, "error", err)
		return &exitError{code: exitSetupFailed, err: err, logged: true}
	}

	registry := prometheus.NewRegistry()

	s := spinner.New(spinner.CharSets[9], 200*time.Millisecond, spinner.WithWriter(stdout))
	s.Start()

	runner := &etl.Runner{
		Extractor:     aws.NewInventoryExtractor(awsconfig.WithAppID(buildInfo.AppID())),
		Transformer:   transform.New(logger),
		Store:         store,
		Logger:        logger,
		Metrics:       etl.NewMetrics(registry),
		RegionTimeout: cfg.RegionTimeout,
		Progress: func(region string, index, total int) {
			s.Lock()
			s.Suffix = fmt.Sprintf(" Processing %s (%d/%d) ...", region, index+1, total)
			s.Unlock()
		},
	}

	startTime := time.Now()
	results := runner.Run(ctx, regionList)
	duration := time.Since(startTime)

	done, skipped, failed := etl.Summary(results)
	s.FinalMSG = fmt.Sprintf("✓ [%d regions processed] EC2 inventory extracted - Completed in %.2f seconds\n",
		len(results), duration.Seconds())
	s.Stop()

	formatter.PrintRunSummary(stdout, results, startTime, duration)

	logger.Info("ETL run finished",
		"regions", len(results),
		"done", done,
		"skipped", skipped,
		"failed", failed,
		"duration", duration,
	)

	if cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(cfg.MetricsFile, registry); err != nil {
			logger.Error("Failed to write metrics file", "path", cfg.MetricsFile, "error", err)
		}
	}

	if cfg.Strict && failed > 0 {
		return &exitError{
			code: exitRegionsFailed,
			err:  fmt.Errorf("%d of %d regions failed: %w", failed, len(results), etlerr.ErrRegionFailed),
		}
	}

	return nil
}
