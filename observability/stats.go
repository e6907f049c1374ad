package observability

import (
	"context"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/process"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/benz9527/xtree/lib/infra"
)

func appMeterName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString("xtree/app")
	builder.WriteString("/")
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// InitAppStats registers the go runtime instrumentation and the
// process gauges on mp, the otel global provider when mp is nil.
func InitAppStats(name string, mp metric.MeterProvider) error {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return infra.WrapErrorStackWithMessage(err, "[observability] inspect current process")
	}

	meter := mp.Meter(
		appMeterName(name),
		metric.WithInstrumentationVersion(otelruntime.Version()),
	)
	_ = lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
		"app.core.goroutines",
		metric.WithDescription(`The application goroutines' info.`),
		metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
			ob.Observe(int64(runtime.NumGoroutine()))
			return nil
		}),
	))
	_ = lo.Must[metric.Int64ObservableUpDownCounter](meter.Int64ObservableUpDownCounter(
		"app.core.processes",
		metric.WithDescription(`The application processes' info.`),
		metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
			ob.Observe(int64(runtime.GOMAXPROCS(0)))
			return nil
		}),
	))
	_ = lo.Must[metric.Int64ObservableGauge](meter.Int64ObservableGauge(
		"app.process.memory.rss",
		metric.WithUnit("By"),
		metric.WithDescription(`The resident set size of the application process.`),
		metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
			mem, err := proc.MemoryInfoWithContext(ctx)
			if err != nil {
				return err
			}
			ob.Observe(int64(mem.RSS))
			return nil
		}),
	))
	return otelruntime.Start(
		otelruntime.WithMeterProvider(mp),
		otelruntime.WithMinimumReadMemStatsInterval(time.Second),
	)
}
