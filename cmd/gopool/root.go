package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vnykmshr/gopool/pkg/metrics"
)

// cliConfig is the merged view of flags, GOPOOL_* environment variables and
// the optional config file, in decreasing precedence.
type cliConfig struct {
	LogLevel    string `mapstructure:"log-level"`
	LogFormat   string `mapstructure:"log-format"`
	LogFile     string `mapstructure:"log-file"`
	MetricsAddr string `mapstructure:"metrics-addr"`

	Workers int `mapstructure:"workers"`
	Tasks   int `mapstructure:"tasks"`

	RedisAddr   string        `mapstructure:"redis-addr"`
	Key         string        `mapstructure:"key"`
	ReportEvery time.Duration `mapstructure:"report-every"`
}

// app holds the state shared by every subcommand.
type app struct {
	v      *viper.Viper
	config cliConfig

	logger    *slog.Logger
	logCloser io.Closer

	promRegistry  *prometheus.Registry
	metrics       *metrics.Registry
	metricsServer *http.Server
}

func newApp() *app {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &app{
		v:            viper.New(),
		logger:       slog.Default(),
		promRegistry: reg,
		metrics:      metrics.NewRegistry(reg),
	}
}

func (a *app) rootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "gopool",
		Short: "Run tasks on a fixed-size worker pool",
		Long: `gopool runs tasks on a fixed set of workers fed from a FIFO queue.

Every flag can also be set with a GOPOOL_ environment variable (for example
GOPOOL_LOG_LEVEL=debug) or in a YAML config file passed with --config.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd, configFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "YAML config file")
	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	flags.String("log-format", "text", "Log format: text or json")
	flags.String("log-file", "", "Write logs to this file with rotation instead of stderr")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")

	root.AddCommand(a.runCmd(), a.consumeCmd(), a.pushCmd())
	return root
}

// setup merges configuration sources, then builds the logger and the
// optional metrics endpoint.
func (a *app) setup(cmd *cobra.Command, configFile string) error {
	a.v.SetEnvPrefix("GOPOOL")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error while binding flags: %w", err)
	}

	if configFile != "" {
		a.v.SetConfigFile(configFile)
		a.v.SetConfigType("yaml")
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("error while reading the config file: %w", err)
		}
	}

	if err := a.v.Unmarshal(&a.config); err != nil {
		return fmt.Errorf("error while unmarshaling the config: %w", err)
	}

	w := cmd.ErrOrStderr()
	if a.config.LogFile != "" {
		lj := newLogFile(a.config.LogFile)
		a.logCloser = lj
		w = lj
	}

	logger, err := newLogger(w, a.config.LogLevel, a.config.LogFormat)
	if err != nil {
		return err
	}
	a.logger = logger

	if a.config.MetricsAddr != "" {
		srv, addr, err := serveMetrics(a.config.MetricsAddr, a.promRegistry, a.logger)
		if err != nil {
			return err
		}
		a.metricsServer = srv
		a.logger.Info("serving metrics", "addr", addr)
	}

	return nil
}

// close releases resources acquired by setup.
func (a *app) close() error {
	var errs []error
	if a.metricsServer != nil {
		errs = append(errs, shutdownMetrics(a.metricsServer))
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}
