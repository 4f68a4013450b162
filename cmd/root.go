package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/elnk/config"
	"github.com/s0up4200/elnk/elnk"
	"github.com/s0up4200/elnk/filter"
	"github.com/s0up4200/elnk/history"
)

// annotationStandalone marks commands that run without configuration or an API client
const annotationStandalone = "standalone"

var (
	cfgFile  string
	cfg      *config.Config
	logger   zerolog.Logger
	client   *elnk.Client
	filters  *filter.Manager
	store    *history.Store
	registry *prometheus.Registry

	// Global flags
	outputFormat string
	logLevel     string
	showMetrics  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "elnk",
	Short: "Create and manage elnk.pro short links",
	Long: `elnk is a CLI for the elnk.pro link-shortening API. It creates short links
one at a time or in bulk, lists, searches, updates and deletes them, and keeps
a local history of the links it created.`,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
	SilenceErrors:      true,
	SilenceUsage:       true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml or ~/.elnk/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatText, "output format (text or json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "log API request metrics on exit")
}

func standalone(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationStandalone] == "true" {
			return true
		}
	}
	return false
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	if outputFormat != formatText && outputFormat != formatJSON {
		return fmt.Errorf("invalid output format %q (must be %q or %q)", outputFormat, formatText, formatJSON)
	}

	if standalone(cmd) {
		logger = setupLogger(config.LoggingConfig{Level: levelOr("warn"), Format: "console", Color: true})
		return nil
	}

	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger = setupLogger(cfg.Logging)

	opts := []elnk.Option{
		elnk.WithConcurrency(cfg.Bulk.Concurrency),
		elnk.WithShortBaseURL(cfg.API.ShortBaseURL),
	}
	if showMetrics {
		registry = prometheus.NewRegistry()
		opts = append(opts, elnk.WithMetrics(elnk.NewMetrics(registry)))
	}

	client, err = elnk.NewClient(cfg.API.ClientConfig(), logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create elnk client: %w", err)
	}

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filter); err != nil {
		return fmt.Errorf("invalid filter in config: %w", err)
	}

	// History is best effort
	if cfg.History.Enabled {
		store, err = history.Open(commandContext(cmd), cfg.History.DSN, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to open history, continuing without it")
			store = nil
		}
	}

	return nil
}

// shutdownApp releases what initializeApp opened
func shutdownApp(cmd *cobra.Command, args []string) error {
	if registry != nil {
		logMetrics(registry)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close history")
		}
		store = nil
	}
	return nil
}

func levelOr(fallback string) string {
	if logLevel != "" {
		return logLevel
	}
	return fallback
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isTerminal(os.Stderr),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// logMetrics writes a summary of the collected request metrics
func logMetrics(reg prometheus.Gatherer) {
	families, err := reg.Gather()
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to gather metrics")
		return
	}

	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			event := logger.Info().Str("metric", mf.GetName())
			for _, label := range m.GetLabel() {
				event = event.Str(label.GetName(), label.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				event = event.Float64("value", m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				event = event.
					Uint64("count", m.GetHistogram().GetSampleCount()).
					Float64("sum", m.GetHistogram().GetSampleSum())
			}
			event.Msg("Request metrics")
		}
	}
}

// commandContext returns the command's context, or a background context when none is set
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
