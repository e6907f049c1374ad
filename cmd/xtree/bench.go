package main

import (
	"context"
	"io"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/bench"
	"github.com/benz9527/xtree/observability"
	"github.com/benz9527/xtree/xlog"
)

func newMetricsExporter(lc fx.Lifecycle, cfg *Config, out io.Writer, logger xlog.XLogger) (*observability.MetricsExporter, error) {
	kind, err := observability.ParseExporterKind(cfg.Bench.Exporter)
	if err != nil {
		return nil, err
	}
	exp, err := observability.NewMetricsExporter(kind, out)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if kind == observability.ExporterNone {
				return nil
			}
			exp.Install()
			return observability.InitAppStats("bench", nil)
		},
		OnStop: func(ctx context.Context) error {
			err := multierr.Append(exp.Flush(ctx), exp.Shutdown(ctx))
			if err != nil {
				logger.ErrorStack(err, "metrics exporter stopped with errors")
			}
			return err
		},
	})
	return exp, nil
}

func newTreeStats(exp *observability.MetricsExporter) (*observability.TreeStats, error) {
	return observability.NewTreeStats(exp.MeterProvider())
}

func newBenchRunner(cfg *Config, logger xlog.XLogger, stats *observability.TreeStats) (*bench.Runner, error) {
	rc, err := cfg.Bench.runnerConfig()
	if err != nil {
		return nil, err
	}
	return bench.NewRunner(rc, logger, stats)
}

// benchModule wires the exporter lifecycle and the runner. The runner
// itself is driven by the caller between start and stop.
func benchModule(cfg *Config, logger xlog.XLogger, out io.Writer) fx.Option {
	return fx.Options(
		fx.Provide(
			func() *Config { return cfg },
			func() xlog.XLogger { return logger },
			func() io.Writer { return out },
			newMetricsExporter,
			newTreeStats,
			newBenchRunner,
		),
		fx.WithLogger(func(l xlog.XLogger) fxevent.Logger {
			return xlog.NewFxXLogger(l)
		}),
	)
}

func runBench(ctx context.Context, cfg *Config, logger xlog.XLogger, out io.Writer) error {
	var runner *bench.Runner
	app := fx.New(benchModule(cfg, logger, out), fx.Populate(&runner))
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}

	results, err := runner.Run(ctx)
	if len(results) > 0 {
		err = multierr.Append(err, bench.WriteTable(out, results))
	}
	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	return multierr.Append(err, app.Stop(stopCtx))
}
