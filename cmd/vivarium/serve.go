package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/vivarium/internal/cli"
	"github.com/aretw0/vivarium/internal/config"
	httpAdapter "github.com/aretw0/vivarium/pkg/adapters/http"
	"github.com/aretw0/vivarium/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve [settings.yaml]",
	Short: "Run a composite and serve its records over HTTP",
	Long: `Runs the composite like 'run' while serving /configuration, /history,
/timeseries, /events and /metrics. The server keeps running after the
experiment finishes, until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(cmd, args)
		if err != nil {
			return err
		}
		logger, err := createLogger(cmd, settings)
		if err != nil {
			return err
		}
		debug, _ := cmd.Flags().GetBool("debug")

		addr := settings.MetricsAddress
		if cmd.Flags().Changed("addr") || addr == "" {
			addr, _ = cmd.Flags().GetString("addr")
		}
		if settings.Emitter.Type == config.EmitterPrint || settings.Emitter.Type == config.EmitterNull {
			return fmt.Errorf("serve needs a readable emitter, got %q", settings.Emitter.Type)
		}

		sink, err := cli.OpenSink(settings.Emitter, os.Stdout)
		if err != nil {
			return err
		}
		defer sink.Close()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		metrics := observability.NewMetrics(reg)

		server := httpAdapter.NewServer(sink.Source,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(reg),
		)

		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()

		g, ctx := errgroup.WithContext(sigCtx)
		g.Go(func() error {
			return cli.Serve(ctx, addr, server.Handler(), logger)
		})
		g.Go(func() error {
			result, err := cli.Run(ctx, sink, cli.RunOptions{
				Settings: settings,
				Debug:    debug,
				Logger:   logger,
				Hooks:    metrics.Hooks(),
				Tee:      server.Streams,
			})
			if err != nil {
				return err
			}
			cli.PrintSystemMessage(os.Stderr, "Experiment %s finished at time %g; serving on %s.", result.ExperimentID, result.Time, addr)
			return nil
		})

		if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	addSettingsFlags(serveCmd)
	serveCmd.Flags().String("addr", ":8080", "Address to listen on")
}
