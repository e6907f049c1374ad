package observability

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func testCollect(t *testing.T, reader sdkmetric.Reader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	res := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			res[m.Name] = m
		}
	}
	return res
}

func TestParseExporterKind(t *testing.T) {
	testcases := []struct {
		in       string
		expected ExporterKind
		hasErr   bool
	}{
		{"", ExporterNone, false},
		{"none", ExporterNone, false},
		{"Stdout", ExporterStdout, false},
		{" prometheus ", ExporterPrometheus, false},
		{"otlp", ExporterNone, true},
	}
	for _, tc := range testcases {
		t.Run(tc.in, func(t *testing.T) {
			kind, err := ParseExporterKind(tc.in)
			if tc.hasErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, kind)
		})
	}
	_, err := NewMetricsExporter(ExporterKind("otlp"), nil)
	require.Error(t, err)
}

func TestTreeStats_ManualReader(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() {
		require.NoError(t, mp.Shutdown(context.Background()))
	}()

	stats, err := NewTreeStats(mp)
	require.NoError(t, err)
	ctx := context.Background()
	stats.RecordPhase(ctx, "rb", "sequential", PhaseInsert, 3*time.Millisecond)
	stats.RecordPhase(ctx, "rb", "sequential", PhaseInsert, 5*time.Millisecond)
	stats.RecordPhase(ctx, "avl", "random", PhaseSearch, time.Millisecond)
	stats.RecordPhase(ctx, "avl", "random", PhaseDelete, time.Millisecond)
	stats.RecordPhase(ctx, "avl", "random", Phase(7), time.Millisecond)
	stats.RecordScenario(ctx, "rb", "sequential", 17, true)

	var nilStats *TreeStats
	nilStats.RecordPhase(ctx, "rb", "sequential", PhaseInsert, time.Millisecond)
	nilStats.RecordScenario(ctx, "rb", "sequential", 1, true)

	metrics := testCollect(t, reader)
	insert, ok := metrics["xtree.insert.duration"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, insert.DataPoints, 1)
	dp := insert.DataPoints[0]
	require.Equal(t, uint64(2), dp.Count)
	require.InDelta(t, 8.0, dp.Sum, 1e-9)
	engine, ok := dp.Attributes.Value("engine")
	require.True(t, ok)
	require.Equal(t, "rb", engine.AsString())

	for _, name := range []string{"xtree.search.duration", "xtree.delete.duration"} {
		h, ok := metrics[name].Data.(metricdata.Histogram[float64])
		require.True(t, ok, name)
		require.Len(t, h.DataPoints, 1)
	}

	height, ok := metrics["xtree.height"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	require.Equal(t, int64(17), height.DataPoints[0].Sum)

	scenarios, ok := metrics["xtree.scenarios"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Equal(t, int64(1), scenarios.DataPoints[0].Value)
	require.Equal(t, "unknown", Phase(7).String())
}

func TestMetricsExporter_Prometheus(t *testing.T) {
	buf := &bytes.Buffer{}
	exp, err := NewMetricsExporter(ExporterPrometheus, buf)
	require.NoError(t, err)
	require.Equal(t, ExporterPrometheus, exp.Kind())

	stats, err := NewTreeStats(exp.MeterProvider())
	require.NoError(t, err)
	stats.RecordPhase(context.Background(), "avl", "shuffled", PhaseInsert, 2*time.Millisecond)
	require.NoError(t, exp.Flush(context.Background()))
	require.Contains(t, buf.String(), "xtree_insert_duration")
	require.Contains(t, buf.String(), `engine="avl"`)
	require.Contains(t, buf.String(), `workload="shuffled"`)
	require.NoError(t, exp.Shutdown(context.Background()))
}

func TestMetricsExporter_Stdout(t *testing.T) {
	buf := &bytes.Buffer{}
	exp, err := NewMetricsExporter(ExporterStdout, buf)
	require.NoError(t, err)

	stats, err := NewTreeStats(exp.MeterProvider())
	require.NoError(t, err)
	stats.RecordScenario(context.Background(), "rb", "random", 12, true)
	require.NoError(t, exp.Flush(context.Background()))
	require.Contains(t, buf.String(), "xtree.height")
	require.NoError(t, exp.Shutdown(context.Background()))
}

func TestMetricsExporter_Install(t *testing.T) {
	t.Cleanup(func() {
		otel.SetMeterProvider(noop.NewMeterProvider())
	})
	buf := &bytes.Buffer{}
	exp, err := NewMetricsExporter(ExporterPrometheus, buf)
	require.NoError(t, err)
	exp.Install()
	require.Same(t, exp.MeterProvider(), otel.GetMeterProvider())

	stats, err := NewTreeStats(nil)
	require.NoError(t, err)
	stats.RecordScenario(context.Background(), "avl", "reverse", 9, true)
	require.NoError(t, exp.Flush(context.Background()))
	require.Contains(t, buf.String(), "xtree_scenarios")
	require.Contains(t, buf.String(), `workload="reverse"`)
	require.NoError(t, exp.Shutdown(context.Background()))
}

func TestMetricsExporter_None(t *testing.T) {
	exp, err := NewMetricsExporter(ExporterNone, nil)
	require.NoError(t, err)
	stats, err := NewTreeStats(exp.MeterProvider())
	require.NoError(t, err)
	stats.RecordScenario(context.Background(), "rb", "random", 12, true)
	require.NoError(t, exp.Flush(context.Background()))
	require.NoError(t, exp.Shutdown(context.Background()))
}

func TestInitAppStats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() {
		require.NoError(t, mp.Shutdown(context.Background()))
	}()

	require.NoError(t, InitAppStats("test", mp))
	metrics := testCollect(t, reader)
	for _, name := range []string{
		"app.core.goroutines",
		"app.core.processes",
		"app.process.memory.rss",
	} {
		_, ok := metrics[name]
		require.True(t, ok, name)
	}
	require.Equal(t, "xtree/app/default", appMeterName(" "))
	require.Equal(t, "xtree/app/bench", appMeterName("bench"))
}
