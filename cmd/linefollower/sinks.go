package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/calvinmclean/linefollower/monitor"
	"github.com/calvinmclean/linefollower/twchart"
)

// addMonitorFlags binds the flags shared by sim and monitor to cfg. Defaults come from the environment
func addMonitorFlags(cmd *cobra.Command, cfg *monitor.Config) {
	cmd.Flags().StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address for the latest state and the telemetry channel")
	cmd.Flags().StringVar(&cfg.TWChartAddr, "twchart", cfg.TWChartAddr, "TWChart address to record the run")
	cmd.Flags().StringVar(&cfg.RunName, "run-name", cfg.RunName, "Name of the TWChart session")
	cmd.Flags().StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "Address to serve /metrics and /status on")
	cmd.Flags().BoolVar(&cfg.EnableUI, "ui", cfg.EnableUI, "Open the dashboard")
	cmd.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	cmd.Flags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "text or json")
}

func loadConfig() monitor.Config {
	cfg, err := monitor.ConfigFromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}

// pipeline is a Monitor with every sink enabled by the config
type pipeline struct {
	monitor *monitor.Monitor
	logger  *slog.Logger
	closers []func(context.Context) error
}

func newPipeline(ctx context.Context, cfg monitor.Config) (*pipeline, error) {
	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	metrics := monitor.NewMetrics(reg)
	p := &pipeline{
		monitor: monitor.New(logger, metrics),
		logger:  logger,
	}

	if cfg.RedisAddr != "" {
		redisSink, err := monitor.NewRedisSinkFromConfig(ctx, cfg)
		if err != nil {
			return nil, err
		}
		p.monitor.AddSink("redis", redisSink)
		p.closers = append(p.closers, func(context.Context) error { return redisSink.Close() })
	}

	if cfg.TWChartAddr != "" {
		runLog := monitor.NewRunLog(twchart.NewClient(cfg.TWChartAddr), cfg.RunName)
		p.monitor.AddSink("twchart", runLog)
		p.closers = append(p.closers, runLog.Close)
	}

	if cfg.MetricsAddr != "" {
		srv := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           monitor.NewServer(p.monitor, reg),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("serving metrics", "addr", cfg.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server failed", "error", err)
			}
		}()
		p.closers = append(p.closers, srv.Shutdown)
	}

	return p, nil
}

// Close runs every closer with a fresh timeout since the run context is usually done by now
func (p *pipeline) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, c := range p.closers {
		if err := c(ctx); err != nil {
			p.logger.Error("error closing sink", "error", err)
		}
	}
}
