package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
)

type ExporterKind string

const (
	ExporterNone       ExporterKind = "none"
	ExporterStdout     ExporterKind = "stdout"
	ExporterPrometheus ExporterKind = "prometheus"
)

func ParseExporterKind(kind string) (ExporterKind, error) {
	switch k := ExporterKind(strings.ToLower(strings.TrimSpace(kind))); k {
	case "":
		return ExporterNone, nil
	case ExporterNone, ExporterStdout, ExporterPrometheus:
		return k, nil
	default:
	}
	return ExporterNone, infra.NewErrorStack("[observability] unknown metrics exporter " + kind)
}

// MetricsExporter owns a meter provider and the reader behind it.
// Flush pushes the pending points to w, the prometheus registry is
// private so it is dumped in the text exposition format.
type MetricsExporter struct {
	kind     ExporterKind
	provider *metric.MeterProvider
	registry *promclient.Registry
	w        io.Writer
}

// NewMetricsExporter writes to w, stdout when w is nil.
func NewMetricsExporter(kind ExporterKind, w io.Writer) (*MetricsExporter, error) {
	if w == nil {
		w = os.Stdout
	}
	var (
		exp = &MetricsExporter{kind: kind, w: w}
		err error
	)
	switch kind {
	case ExporterStdout:
		exp.provider, err = newConsoleMetricsExporter(w, time.Minute, 5*time.Second)
	case ExporterPrometheus:
		exp.provider, exp.registry, err = newPrometheusMetricsExporter()
	case ExporterNone:
		exp.provider = metric.NewMeterProvider()
	default:
		err = infra.NewErrorStack("[observability] unknown metrics exporter " + string(kind))
	}
	if err != nil {
		return nil, err
	}
	return exp, nil
}

func (exp *MetricsExporter) Kind() ExporterKind {
	return exp.kind
}

func (exp *MetricsExporter) MeterProvider() otelmetric.MeterProvider {
	return exp.provider
}

// Install makes the provider the otel global one.
func (exp *MetricsExporter) Install() {
	otel.SetMeterProvider(exp.provider)
}

func (exp *MetricsExporter) Flush(ctx context.Context) error {
	if err := exp.provider.ForceFlush(ctx); err != nil {
		return infra.WrapErrorStackWithMessage(err, "[observability] flush metrics")
	}
	if exp.registry == nil {
		return nil
	}
	mfs, err := exp.registry.Gather()
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "[observability] gather prometheus metrics")
	}
	var merr error
	for _, mf := range mfs {
		_, err = expfmt.MetricFamilyToText(exp.w, mf)
		merr = multierr.Append(merr, err)
	}
	return merr
}

func (exp *MetricsExporter) Shutdown(ctx context.Context) error {
	return exp.provider.Shutdown(ctx)
}

// Serves for test/dev environment.
func newConsoleMetricsExporter(w io.Writer, interval, timeout time.Duration, opts ...stdoutmetric.Option) (*metric.MeterProvider, error) {
	opts = append([]stdoutmetric.Option{stdoutmetric.WithWriter(w)}, opts...)
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	return mp, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
func newPrometheusMetricsExporter() (*metric.MeterProvider, *promclient.Registry, error) {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	return mp, registry, nil
}
